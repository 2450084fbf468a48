package realtime

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aussiebroadwan/campus/internal/auth/identity"
	"github.com/aussiebroadwan/campus/internal/auth/service"
	"github.com/aussiebroadwan/campus/pkg/httpx"
	"github.com/aussiebroadwan/campus/pkg/jwtx"
	"github.com/aussiebroadwan/campus/pkg/slogx"
)

var (
	ErrNotConnect      = errors.New("realtime: handshake frame is not CONNECT")
	ErrMissingToken    = errors.New("realtime: no bearer token on CONNECT")
	ErrTokenRejected   = errors.New("realtime: token does not belong to user")
	ErrAccountDisabled = errors.New("realtime: account disabled")
)

// HandshakeError is returned for every refused CONNECT. The connection is
// never established when one is returned.
type HandshakeError struct {
	Err error
}

func (e *HandshakeError) Error() string {
	return fmt.Sprintf("realtime: handshake rejected: %v", e.Err)
}

func (e *HandshakeError) Unwrap() error { return e.Err }

// Tokens is the part of the token service the bridge needs.
type Tokens interface {
	Verify(token string) (jwtx.Claims, error)
	ValidateForUser(token, expected string) bool
}

// Bridge authenticates the CONNECT frame that opens a real-time session.
// Unlike the HTTP gateway it fails closed: there is no later authorization
// stage on this transport, so anything short of a verified, enabled user
// aborts the connection.
type Bridge struct {
	Tokens Tokens
	Users  service.UserLookup
}

// Handshake verifies f and returns ctx carrying the principal together with
// the principal itself. All failures are *HandshakeError.
func (b *Bridge) Handshake(ctx context.Context, f Frame) (context.Context, identity.Principal, error) {
	if f.Command != CmdConnect {
		return ctx, identity.Principal{}, &HandshakeError{Err: ErrNotConnect}
	}

	token := tokenFromFrame(f)
	if token == "" {
		return ctx, identity.Principal{}, &HandshakeError{Err: ErrMissingToken}
	}

	claims, err := b.Tokens.Verify(token)
	if err != nil {
		return ctx, identity.Principal{}, &HandshakeError{Err: err}
	}

	user, err := b.Users.FindByIdentifier(ctx, claims.Subject)
	if err != nil {
		return ctx, identity.Principal{}, &HandshakeError{Err: fmt.Errorf("lookup %q: %w", claims.Subject, err)}
	}

	if !b.Tokens.ValidateForUser(token, user.Email) {
		return ctx, identity.Principal{}, &HandshakeError{Err: ErrTokenRejected}
	}
	if !user.Enabled {
		return ctx, identity.Principal{}, &HandshakeError{Err: ErrAccountDisabled}
	}

	p := service.PrincipalFor(user)
	ctx = identity.WithPrincipal(ctx, p)
	ctx = slogx.With(ctx, "user_id", p.UserID, "identifier", p.Identifier)
	return ctx, p, nil
}

// tokenFromFrame prefers "Authorization: Bearer" and falls back to
// X-Auth-Token, which carries the raw token.
func tokenFromFrame(f Frame) string {
	if token, ok := httpx.BearerToken(f.Header(HeaderAuthorization)); ok {
		return token
	}
	return strings.TrimSpace(f.Header(HeaderAuthToken))
}
