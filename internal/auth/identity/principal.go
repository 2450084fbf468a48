// Package identity carries the authenticated caller through a request or a
// real-time connection.
package identity

import "context"

// Principal is the resolved caller. It is rebuilt from the user directory
// on every request, so a disabled account or a role change takes effect
// without reissuing tokens.
type Principal struct {
	Identifier string
	UserID     int64
	Role       string
	Enabled    bool
}

type ctxKey struct{}

// WithPrincipal returns a copy of ctx carrying p.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, ctxKey{}, p)
}

// FromContext returns the principal attached to ctx, if any.
func FromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(ctxKey{}).(Principal)
	return p, ok
}

// HasRole reports whether p holds any of roles.
func (p Principal) HasRole(roles ...string) bool {
	for _, r := range roles {
		if p.Role == r {
			return true
		}
	}
	return false
}
