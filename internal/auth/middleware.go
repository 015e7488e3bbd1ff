package auth

import (
	"net/http"
	"strings"

	"github.com/workstack/workforce-management/internal"
	"github.com/workstack/workforce-management/pkg/logger"
)

// Middleware authenticates the bearer token and installs the caller's
// identity and tenant into the request context.
func Middleware(tokens *TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString := extractBearer(r)
			if tokenString == "" {
				writeUnauthorized(w, "missing bearer token")
				return
			}

			identity, err := tokens.Validate(tokenString)
			if err != nil {
				writeUnauthorized(w, err.Error())
				return
			}

			ctx := ContextWithIdentity(r.Context(), identity)
			ctx = internal.ContextWithTenantID(ctx, identity.TenantID)
			ctx = logger.With(ctx,
				"employee_id", identity.EmployeeID,
				"tenant_id", identity.TenantID)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func extractBearer(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return ""
	}
	return strings.TrimPrefix(authHeader, "Bearer ")
}

func writeUnauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"code":401,"message":"` + message + `"}`))
}
