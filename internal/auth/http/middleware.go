package http

import (
	"net/http"

	"github.com/aussiebroadwan/campus/internal/auth/identity"
	"github.com/aussiebroadwan/campus/internal/auth/service"
	"github.com/aussiebroadwan/campus/pkg/authsdk"
	"github.com/aussiebroadwan/campus/pkg/httpx"
	"github.com/aussiebroadwan/campus/pkg/jwtx"
	"github.com/aussiebroadwan/campus/pkg/slogx"
)

// TokenVerifier is the part of service.TokenService the gateway needs.
type TokenVerifier interface {
	Verify(token string) (jwtx.Claims, error)
}

// Authenticate resolves a bearer token into an identity.Principal. It never
// rejects a request: a missing, bad or expired token, or an unknown
// subject, simply leaves the request anonymous. Rejecting is left to
// RequireAuthenticated and RequireRole.
func Authenticate(tokens TokenVerifier, users service.UserLookup) httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}

			raw, ok := httpx.BearerFromRequest(r)
			if !ok {
				next.ServeHTTP(w, r)
				return
			}

			ctx := r.Context()
			log := slogx.FromContext(ctx)

			claims, err := tokens.Verify(raw)
			if err != nil {
				// A bad token is the client's problem; anything else means
				// the verifier itself is misconfigured.
				if service.IsTokenError(err) {
					log.Debug("bearer token not accepted", "err", err)
				} else {
					log.Error("bearer token verification failed", "err", err)
				}
				next.ServeHTTP(w, r)
				return
			}

			user, err := users.FindByIdentifier(ctx, claims.Subject)
			if err != nil {
				log.Debug("token subject not resolved", "subject", claims.Subject, "err", err)
				next.ServeHTTP(w, r)
				return
			}

			p := service.PrincipalFor(user)
			ctx = identity.WithPrincipal(ctx, p)
			ctx = slogx.With(ctx, "user_id", p.UserID)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAuthenticated answers 401 when no principal is attached and 403
// when the principal's account is disabled.
func RequireAuthenticated() httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, ok := identity.FromContext(r.Context())
			if !ok {
				httpx.WriteBearerError(w, http.StatusUnauthorized,
					authsdk.ErrorCodeInvalidToken, "missing or invalid access token")
				return
			}
			if !p.Enabled {
				authsdk.ErrAccountDisabled.WriteError(w)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireRole answers 403 unless the principal holds one of roles. It must
// run after RequireAuthenticated.
func RequireRole(roles ...string) httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, ok := identity.FromContext(r.Context())
			if !ok || !p.HasRole(roles...) {
				slogx.FromContext(r.Context()).Info("role check failed", "required", roles)
				authsdk.ErrForbidden.WriteError(w)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// principal fetches the caller set up by the middleware chain. Handlers
// behind RequireAuthenticated can rely on ok being true.
func principal(r *http.Request) (identity.Principal, bool) {
	return identity.FromContext(r.Context())
}
