package auth

import (
	"context"
)

// Role is the closed set of workforce roles. Authorization decisions go
// through RelationsFor rather than ad-hoc string comparisons in handlers.
type Role string

const (
	RoleEmployee Role = "EMPLOYEE"
	RoleManager  Role = "MANAGER"
	RoleHR       Role = "HR"
)

func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case RoleEmployee, RoleManager, RoleHR:
		return Role(s), true
	}
	return "", false
}

// Identity is the authenticated caller attached to each request context.
type Identity struct {
	EmployeeID int64
	TenantID   int64
	Role       Role
}

type ctxKey string

const contextIdentityKey ctxKey = "identity"

func IdentityFromContext(ctx context.Context) (*Identity, bool) {
	id, ok := ctx.Value(contextIdentityKey).(*Identity)
	return id, ok
}

func ContextWithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, contextIdentityKey, id)
}
