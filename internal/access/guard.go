// Package access carries the authenticated principal through a request and
// answers the authorization questions every service asks.
package access

import (
	"context"

	"libraryhub/internal/errors"
	"libraryhub/internal/model"
)

// Principal is the identity a request acts as.
type Principal struct {
	UserID    uint
	Email     string
	Name      string
	Role      model.Role
	SessionID string
}

// IsAdmin reports whether the principal holds the admin role.
func (p *Principal) IsAdmin() bool {
	return p != nil && p.Role.IsAdmin()
}

type principalKey struct{}

// WithPrincipal returns a copy of ctx carrying p.
func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// FromContext returns the principal stored in ctx, if any.
func FromContext(ctx context.Context) (*Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(*Principal)
	return p, ok && p != nil
}

// RequireAuth returns the principal or ErrNotAuthenticated.
func RequireAuth(ctx context.Context) (*Principal, error) {
	p, ok := FromContext(ctx)
	if !ok {
		return nil, errors.ErrNotAuthenticated
	}
	return p, nil
}

// RequireAdmin returns the principal when it is an administrator.
func RequireAdmin(ctx context.Context) (*Principal, error) {
	p, err := RequireAuth(ctx)
	if err != nil {
		return nil, err
	}
	if !p.IsAdmin() {
		return nil, errors.ErrForbidden
	}
	return p, nil
}

// RequireOwnerOrAdmin allows administrators and the user owning a record.
func RequireOwnerOrAdmin(ctx context.Context, ownerID uint) (*Principal, error) {
	p, err := RequireAuth(ctx)
	if err != nil {
		return nil, err
	}
	if p.IsAdmin() || p.UserID == ownerID {
		return p, nil
	}
	return nil, errors.ErrNotOwner
}

// ScopeUserID returns the user id a listing must be restricted to: zero for
// administrators, the caller's own id otherwise.
func ScopeUserID(p *Principal) uint {
	if p.IsAdmin() {
		return 0
	}
	return p.UserID
}
