package auth

import (
	"log/slog"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/workstack/workforce-management/internal"
)

// Credential is the subset of the employee record needed to authenticate
// and mint a token.
type Credential struct {
	EmployeeID   int64
	TenantID     int64
	Role         string
	PasswordHash string
}

type CredentialStore interface {
	FindByEmail(email string) (*Credential, error)
}

type LoginDTO struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (d LoginDTO) Validate() error {
	if strings.TrimSpace(d.Email) == "" {
		return internal.NewValidationFieldError("email", "email is required", internal.ErrCodeValidationFailed)
	}
	if d.Password == "" {
		return internal.NewValidationFieldError("password", "password is required", internal.ErrCodeValidationFailed)
	}
	return nil
}

type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

// LoginService exchanges employee credentials for a signed access token.
type LoginService struct {
	store      CredentialStore
	tokens     *TokenService
	bcryptCost int
	logger     *slog.Logger
}

func NewLoginService(store CredentialStore, tokens *TokenService, bcryptCost int, logger *slog.Logger) *LoginService {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &LoginService{
		store:      store,
		tokens:     tokens,
		bcryptCost: bcryptCost,
		logger:     logger,
	}
}

func (s *LoginService) Authenticate(dto LoginDTO) (*TokenResponse, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	cred, err := s.store.FindByEmail(strings.ToLower(strings.TrimSpace(dto.Email)))
	if err != nil {
		// Same answer whether the account is missing or the password is
		// wrong, so the endpoint cannot be used to enumerate emails.
		s.logger.Warn("login failed: unknown email", "email", dto.Email)
		return nil, internal.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(cred.PasswordHash), []byte(dto.Password)); err != nil {
		s.logger.Warn("login failed: bad password", "employee_id", cred.EmployeeID)
		return nil, internal.ErrInvalidCredentials
	}

	role, ok := ParseRole(cred.Role)
	if !ok {
		s.logger.Error("employee has unknown role", "employee_id", cred.EmployeeID, "role", cred.Role)
		return nil, internal.NewInternalError("Authentication failed", nil)
	}

	token, err := s.tokens.Generate(Identity{
		EmployeeID: cred.EmployeeID,
		TenantID:   cred.TenantID,
		Role:       role,
	})
	if err != nil {
		return nil, internal.NewInternalError("Authentication failed", err)
	}

	return &TokenResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int64(s.tokens.ttl.Seconds()),
	}, nil
}

// HashPassword is used by the seeder when provisioning demo accounts.
func (s *LoginService) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
