package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpapi "github.com/aussiebroadwan/campus/internal/auth/http"
	"github.com/aussiebroadwan/campus/internal/auth/service"
	"github.com/aussiebroadwan/campus/internal/auth/store"
	"github.com/aussiebroadwan/campus/internal/auth/store/drivers/sqlite"
	"github.com/aussiebroadwan/campus/internal/auth/telemetry"
	"github.com/aussiebroadwan/campus/internal/realtime"
	"github.com/aussiebroadwan/campus/pkg/cryptox"
	"github.com/aussiebroadwan/campus/pkg/jwtx"
	"github.com/aussiebroadwan/campus/pkg/slogx"
	"go.opentelemetry.io/otel"
)

const (
	// BuildVersion should be set at build time via ldflags.
	BuildVersion = "v0.1.0"
)

// Application encapsulates the auth service application with all its dependencies
type Application struct {
	cfg    Config
	logger *slog.Logger

	db         store.Store
	keyManager *jwtx.KeyManager
	hasher     cryptox.PasswordHasher

	tokenService *service.TokenService
	userService  *service.UserService
	mfaService   *service.MFAService
	loginService *service.LoginService
	sessions     *service.SessionRegistry

	hub    *realtime.Hub
	gauges *telemetry.Gauges

	server *http.Server
	router *httpapi.Router
}

// New creates a new Application instance with all dependencies initialized.
// Nothing is served and no background work runs until Run.
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "campus-auth",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	// Keys first: without a primary key there is nothing worth opening the
	// database for.
	keyManager, err := InitAuthKeys(cfg, app.logger)
	if err != nil {
		return nil, err
	}
	app.keyManager = keyManager

	pepper, err := cryptox.LoadOrCreatePepper(cfg.PepperFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load pepper: %w", err)
	}
	app.hasher = cryptox.PasswordHasher{Pepper: pepper}

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	if err := app.initServices(); err != nil {
		_ = app.db.Close()
		return nil, err
	}

	if err := app.seedAdmin(context.Background()); err != nil {
		_ = app.db.Close()
		return nil, err
	}

	app.initRealtime()
	if err := app.initTelemetry(); err != nil {
		_ = app.db.Close()
		return nil, err
	}
	app.initHTTP()

	return app, nil
}

// Handler returns the root HTTP handler, for embedding or tests.
func (app *Application) Handler() http.Handler {
	return app.router
}

// Run starts the application and blocks until shutdown is requested
func (app *Application) Run() error {
	app.sessions.Start()

	app.logger.Info("auth service starting", "port", app.cfg.Port, "version", BuildVersion)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			_ = app.Shutdown()
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)

		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// Shutdown gracefully shuts down the application
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down auth service...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	// Hijacked websocket connections are invisible to server.Shutdown, so
	// the hub is closed explicitly.
	app.hub.Close()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	app.sessions.Stop()

	if err := app.gauges.Close(); err != nil {
		app.logger.Warn("error unregistering gauges", "error", err)
	}

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("auth service stopped")
	return nil
}

// initDatabase initializes the database and applies migrations
func (app *Application) initDatabase() error {
	db, err := sqlite.NewStore(sqlite.FileDSN(app.cfg.DatabaseFile))
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database migrations applied successfully")
	return nil
}

func (app *Application) initServices() error {
	tokens, err := service.NewTokenService(app.keyManager, app.cfg.TokenTTL)
	if err != nil {
		return fmt.Errorf("failed to create token service: %w", err)
	}
	app.tokenService = tokens

	app.userService = &service.UserService{Store: app.db, Hasher: app.hasher}
	app.mfaService = &service.MFAService{Store: app.db, Issuer: app.cfg.MFAIssuer}
	app.sessions = service.NewSessionRegistry(app.logger, app.cfg.SessionSweepInterval)

	app.loginService = &service.LoginService{
		Users:     app.userService,
		Passwords: app.hasher,
		Codes:     app.mfaService,
		Attempts:  service.NewAttemptLimiter(app.cfg.MaxAttempts),
		Tokens:    app.tokenService,
		Sessions:  app.sessions,
	}
	return nil
}

func (app *Application) seedAdmin(ctx context.Context) error {
	if app.cfg.AdminEmail == "" {
		return nil
	}

	ctx = slogx.WithContext(ctx, app.logger)
	created, err := app.userService.SeedAdmin(ctx, app.cfg.AdminEmail, app.cfg.AdminPassword)
	if err != nil {
		return fmt.Errorf("failed to seed admin: %w", err)
	}
	if !created {
		app.logger.Debug("user directory not empty, admin seed skipped")
	}
	return nil
}

func (app *Application) initRealtime() {
	bridge := &realtime.Bridge{
		Tokens: app.tokenService,
		Users:  app.userService,
	}
	app.hub = realtime.NewHub(bridge, app.logger, nil)
}

// initTelemetry registers the gauges against the global meter provider.
// Without an SDK provider installed they are no-ops.
func (app *Application) initTelemetry() error {
	gauges, err := telemetry.RegisterGauges(
		otel.Meter("github.com/aussiebroadwan/campus"),
		app.sessions,
		telemetry.CounterFunc(app.hub.ConnectionCount),
	)
	if err != nil {
		return fmt.Errorf("failed to register gauges: %w", err)
	}
	app.gauges = gauges
	return nil
}

// initHTTP initializes the HTTP router and server
func (app *Application) initHTTP() {
	router := httpapi.NewRouter(BuildVersion, app.db, app.keyManager, app.logger)

	router.TokenService = app.tokenService
	router.UserService = app.userService
	router.LoginService = app.loginService
	router.MFAService = app.mfaService
	router.Sessions = app.sessions
	router.Realtime = app.hub
	router.Notifier = app.hub
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
