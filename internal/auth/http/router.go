package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/aussiebroadwan/campus/internal/auth/domain"
	"github.com/aussiebroadwan/campus/internal/auth/service"
	"github.com/aussiebroadwan/campus/pkg/httpx"
	"github.com/aussiebroadwan/campus/pkg/slogx"

	_ "github.com/aussiebroadwan/campus/api/auth" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	db   Pinger
	keys SigningKeySource

	TokenService *service.TokenService
	UserService  *service.UserService
	LoginService *service.LoginService
	MFAService   *service.MFAService
	Sessions     ActiveCounter

	// Realtime serves the websocket endpoint and Notifier pushes to it.
	// Both are usually the same *realtime.Hub.
	Realtime http.Handler
	Notifier Notifier
}

func NewRouter(buildVersion string, db Pinger, keys SigningKeySource, logger *slog.Logger) *Router {
	return &Router{
		Mux:          http.NewServeMux(),
		buildVersion: buildVersion,
		startTime:    time.Now(),
		logger:       logger,
		db:           db,
		keys:         keys,
	}
}

// ApplyRoutes registers every endpoint. Services must be set beforehand.
func (r *Router) ApplyRoutes() {
	// Request logging runs first so the gateway can log through the
	// request-scoped logger.
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
		Authenticate(r.TokenService, r.UserService),
	}

	r.registerAuth()
	r.registerUsers()
	r.registerSessions()
	r.registerRealtime()
	r.registerSystem()
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			Campus Authentication Service API
//	@version		0.1.0
//	@description	Bearer token authentication for the campus platform, plus the real-time push endpoint.
//	@description
//	@description				Tokens are HS256 JWTs carrying only sub, iat and exp. Identity and role are
//	@description				resolved from the user directory on every request.
//
//	@contact.name				AussieBroadWAN Team
//	@contact.url				https://github.com/aussiebroadwan/campus
//
//	@license.name				MIT
//	@license.url				https://opensource.org/licenses/MIT
//
//	@host						localhost:8080
//	@BasePath					/
//
//	@schemes					http https
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				JWT access token. Format: "Bearer {token}".
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

// authenticated wraps h for any signed-in, enabled user.
func authenticated(h http.Handler) http.Handler {
	return httpx.Chain(h,
		RequireAuthenticated(),
		httpx.RateLimitByIP(httpx.APILimit),
	)
}

// adminOnly wraps h for enabled admins.
func adminOnly(h http.Handler) http.Handler {
	return httpx.Chain(h,
		RequireAuthenticated(),
		RequireRole(string(domain.RoleAdmin)),
		httpx.RateLimitByIP(httpx.APILimit),
	)
}

func (r *Router) registerAuth() {
	h := &AuthHandler{LoginService: r.LoginService}

	// Limited by IP + email so one address cannot spray a single account
	// and a single account cannot be sprayed from one address.
	r.Mux.Handle("POST /v1/auth/login",
		httpx.Chain(http.HandlerFunc(h.HandleLogin),
			httpx.RateLimitByIPAndFormField(httpx.LoginLimit, "email"),
		),
	)
	r.Mux.Handle("POST /v1/auth/logout", authenticated(http.HandlerFunc(h.HandleLogout)))
	r.Mux.Handle("GET /v1/auth/me", authenticated(http.HandlerFunc(h.HandleMe)))

	mfa := &MFAHandler{MFAService: r.MFAService}
	r.Mux.Handle("POST /v1/auth/mfa/totp", authenticated(http.HandlerFunc(mfa.HandleEnroll)))
	r.Mux.Handle("DELETE /v1/auth/mfa/totp", authenticated(http.HandlerFunc(mfa.HandleRemove)))
}

func (r *Router) registerUsers() {
	h := &UsersHandler{UserService: r.UserService}

	r.Mux.Handle("POST /v1/users", adminOnly(http.HandlerFunc(h.HandleCreate)))
	r.Mux.Handle("PUT /v1/users/{id}/enabled", adminOnly(http.HandlerFunc(h.HandleSetEnabled)))
}

func (r *Router) registerSessions() {
	r.Mux.Handle("GET /v1/sessions/active", adminOnly(ActiveSessionsHandler(r.Sessions)))
}

// registerRealtime mounts the websocket endpoint and the admin push.
//
//	@Summary		Real-time connection
//	@Description	Upgrades to a websocket. The first frame must be {"command":"CONNECT"} with an
//	@Description	Authorization or X-Auth-Token header; anything else is answered with ERROR and closed.
//	@Tags			Realtime
//	@Success		101	"Switching Protocols"
//	@Failure		400	"Not a websocket upgrade"
//	@Router			/v1/realtime [get].
func (r *Router) registerRealtime() {
	if r.Realtime != nil {
		// Authentication happens on the CONNECT frame, not the upgrade.
		r.Mux.Handle("GET /v1/realtime", httpx.Chain(r.Realtime,
			httpx.RateLimitByIP(httpx.APILimit),
		))
	}
	if r.Notifier != nil {
		r.Mux.Handle("POST /v1/realtime/users/{identifier}", adminOnly(&NotifyHandler{Hub: r.Notifier}))
	}
}

func (r *Router) registerSystem() {
	r.Mux.Handle("GET /livez", LivezHandler(r.startTime, r.buildVersion))
	r.Mux.Handle("GET /readyz", ReadyzHandler(r.startTime, r.buildVersion, r.db, r.keys))
	r.Mux.Handle("GET /swagger/", httpSwagger.Handler())
}
