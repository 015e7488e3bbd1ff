package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/workstack/workforce-management/internal"
)

// Claims is the JWT payload carried by every authenticated request.
type Claims struct {
	EmployeeID int64  `json:"employee_id"`
	TenantID   int64  `json:"tenant_id"`
	Role       string `json:"role"`
	jwt.RegisteredClaims
}

// TokenService signs and validates access tokens with an HMAC secret.
type TokenService struct {
	secret []byte
	ttl    time.Duration
}

func NewTokenService(secret string, ttl time.Duration) *TokenService {
	return &TokenService{secret: []byte(secret), ttl: ttl}
}

func (s *TokenService) Generate(id Identity) (string, error) {
	now := time.Now()
	claims := &Claims{
		EmployeeID: id.EmployeeID,
		TenantID:   id.TenantID,
		Role:       string(id.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

func (s *TokenService) Validate(tokenString string) (*Identity, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, internal.ErrTokenExpired
		}
		return nil, internal.ErrInvalidToken
	}
	if !token.Valid {
		return nil, internal.ErrInvalidToken
	}

	role, ok := ParseRole(claims.Role)
	if !ok {
		return nil, internal.ErrInvalidToken
	}
	return &Identity{
		EmployeeID: claims.EmployeeID,
		TenantID:   claims.TenantID,
		Role:       role,
	}, nil
}
