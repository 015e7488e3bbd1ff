package auth_test

import (
	"log/slog"
	"os"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"golang.org/x/crypto/bcrypt"

	"github.com/workstack/workforce-management/internal"
	"github.com/workstack/workforce-management/internal/auth"
)

func TestAuth(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Auth Suite")
}

type mockCredentialStore struct {
	credentials map[string]*auth.Credential
}

func (m *mockCredentialStore) FindByEmail(email string) (*auth.Credential, error) {
	cred, ok := m.credentials[email]
	if !ok {
		return nil, internal.ErrRecordNotFound
	}
	return cred, nil
}

var _ = Describe("LoginService", func() {
	var (
		store   *mockCredentialStore
		tokens  *auth.TokenService
		service *auth.LoginService
	)

	BeforeEach(func() {
		hash, err := bcrypt.GenerateFromPassword([]byte("correct horse"), bcrypt.MinCost)
		Expect(err).NotTo(HaveOccurred())

		store = &mockCredentialStore{credentials: map[string]*auth.Credential{
			"sam@workstack.dev": {
				EmployeeID:   42,
				TenantID:     7,
				Role:         "EMPLOYEE",
				PasswordHash: string(hash),
			},
		}}
		tokens = auth.NewTokenService("test-secret-that-is-long-enough-0000", time.Hour)
		logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
		service = auth.NewLoginService(store, tokens, bcrypt.MinCost, logger)
	})

	It("returns a token that validates back to the employee's identity", func() {
		resp, err := service.Authenticate(auth.LoginDTO{Email: "sam@workstack.dev", Password: "correct horse"})
		Expect(err).NotTo(HaveOccurred())
		Expect(resp.TokenType).To(Equal("Bearer"))
		Expect(resp.ExpiresIn).To(Equal(int64(3600)))

		identity, err := tokens.Validate(resp.AccessToken)
		Expect(err).NotTo(HaveOccurred())
		Expect(identity.EmployeeID).To(Equal(int64(42)))
		Expect(identity.TenantID).To(Equal(int64(7)))
		Expect(identity.Role).To(Equal(auth.RoleEmployee))
	})

	It("normalizes the email before lookup", func() {
		_, err := service.Authenticate(auth.LoginDTO{Email: "  SAM@workstack.dev ", Password: "correct horse"})
		Expect(err).NotTo(HaveOccurred())
	})

	It("rejects a wrong password", func() {
		_, err := service.Authenticate(auth.LoginDTO{Email: "sam@workstack.dev", Password: "wrong"})
		Expect(err).To(Equal(internal.ErrInvalidCredentials))
	})

	It("answers the same for an unknown email as for a bad password", func() {
		_, err := service.Authenticate(auth.LoginDTO{Email: "nobody@workstack.dev", Password: "correct horse"})
		Expect(err).To(Equal(internal.ErrInvalidCredentials))
	})

	It("rejects an empty password without hitting the store", func() {
		_, err := service.Authenticate(auth.LoginDTO{Email: "sam@workstack.dev", Password: ""})
		appErr, ok := internal.IsAppError(err)
		Expect(ok).To(BeTrue())
		Expect(appErr.StatusCode).To(Equal(400))
	})
})
