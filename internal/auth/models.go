package auth

import (
	"context"
	"fmt"
	"time"
)

// Role is the account role. Only the values below are valid.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// ParseRole converts a stored role label into a Role.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleUser:
		return RoleUser, nil
	case RoleAdmin:
		return RoleAdmin, nil
	default:
		return "", fmt.Errorf("auth: unknown role %q", s)
	}
}

// Satisfies reports whether a holder of r may act with the required role.
func (r Role) Satisfies(required Role) bool {
	switch r {
	case RoleAdmin:
		return required == RoleAdmin || required == RoleUser
	case RoleUser:
		return required == RoleUser
	default:
		return false
	}
}

// User is an account as stored by the auth repository.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Identity is the verified caller attached to an authenticated request.
type Identity struct {
	UserID string
	Email  string
	Role   Role
}

type ctxIdentityKey struct{}

// WithIdentity returns a copy of ctx carrying id.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, ctxIdentityKey{}, id)
}

// IdentityFrom returns the caller identity stored by the auth middleware.
func IdentityFrom(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(ctxIdentityKey{}).(Identity)
	return id, ok && id.UserID != ""
}
