package auth

import (
	"context"

	"kpark/internal/db"
)

// Roles known to the system.
const (
	RoleEmployee = "employee"
	RoleManager  = "manager"
	RoleAdmin    = "admin"
)

// Principal is the authenticated caller attached to the request context.
type Principal struct {
	ID            int
	Name          string
	Email         string
	Role          string
	Phone         string
	VehicleNumber string
}

func (p *Principal) IsAdmin() bool { return p.Role == RoleAdmin }

type contextKey struct{}

// WithPrincipal returns a context carrying p.
func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, contextKey{}, p)
}

// FromContext extracts the principal set by the auth middleware.
func FromContext(ctx context.Context) (*Principal, bool) {
	p, ok := ctx.Value(contextKey{}).(*Principal)
	return p, ok
}

// ValidRole reports whether r is a known role.
func ValidRole(r string) bool {
	return r == RoleEmployee || r == RoleManager || r == RoleAdmin
}

// AccessibleCategories returns the slot categories visible to a role.
// Employees only see general slots; managers and admins see both.
func AccessibleCategories(role string) []string {
	if role == RoleManager || role == RoleAdmin {
		return []string{db.CategoryGeneral, db.CategoryManager}
	}
	return []string{db.CategoryGeneral}
}

// CanAccessCategory reports whether a role may book slots of the category.
func CanAccessCategory(role, category string) bool {
	for _, c := range AccessibleCategories(role) {
		if c == category {
			return true
		}
	}
	return false
}
