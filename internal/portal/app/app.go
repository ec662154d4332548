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

	httpapi "github.com/nhatro/ownerportal/internal/portal/http"
	"github.com/nhatro/ownerportal/internal/portal/session"
	"github.com/nhatro/ownerportal/internal/portal/store"
	"github.com/nhatro/ownerportal/internal/portal/store/drivers/memory"
	"github.com/nhatro/ownerportal/internal/portal/store/drivers/redis"
	"github.com/nhatro/ownerportal/internal/portal/store/drivers/sqlite"
	"github.com/nhatro/ownerportal/pkg/authsdk"
	"github.com/nhatro/ownerportal/pkg/cryptox"
	"github.com/nhatro/ownerportal/pkg/slogx"
)

const (
	// BuildVersion is overridden at build time via ldflags.
	BuildVersion = "v0.1.0"
)

// Application wires the owner console together.
type Application struct {
	cfg    Config
	logger *slog.Logger

	db     store.Store
	client *authsdk.SDKClient
	gate   *session.Gate

	server *http.Server
	router *httpapi.Router
}

// New creates an Application with every dependency initialised. The stored
// session is not read until Run.
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "owner-portal",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
			File:    cfg.LogFile,
		}),
	}

	db, err := openStore(cfg)
	if err != nil {
		return nil, err
	}
	app.db = db
	app.logger.Info("storage ready", "driver", cfg.StorageDriver, "sealed", cfg.Sealed())

	app.client = authsdk.NewSDKClient(cfg.APIBaseURL, cfg.APITimeout)
	app.gate = session.NewGate(app.db, app.client)

	if err := app.initHTTP(); err != nil {
		_ = app.db.Close()
		return nil, err
	}

	return app, nil
}

// Run restores the stored session in the background, serves HTTP, and
// blocks until shutdown is requested.
func (app *Application) Run() error {
	app.logger.Info("owner portal starting", "addr", app.cfg.ListenAddr, "version", BuildVersion)

	// Page requests see Pending until this finishes.
	go func() {
		ctx := slogx.WithContext(context.Background(), app.logger)
		state := app.gate.Restore(ctx)
		app.logger.Info("session restore finished", "state", state.String())
	}()

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
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

// Shutdown drains in-flight requests and closes storage. The session stays
// persisted for the next start.
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down owner portal...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing storage", "error", err)
		return err
	}

	app.logger.Info("owner portal stopped")
	return nil
}

// openStore opens the configured driver, applies migrations, and wraps it
// with encryption when a master key is configured.
func openStore(cfg Config) (store.Store, error) {
	var db store.Store
	switch cfg.StorageDriver {
	case DriverSQLite:
		dsn := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL", cfg.DatabaseFile)
		s, err := sqlite.NewStore(dsn)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		db = s
	case DriverRedis:
		db = redis.NewStore(redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			Prefix:   cfg.RedisPrefix,
		})
	case DriverMemory:
		db = memory.NewStore()
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to apply storage migrations: %w", err)
	}

	if !cfg.Sealed() {
		return db, nil
	}

	key, err := cryptox.LoadOrCreateMasterKey(cfg.MasterKeyPath, cfg.MasterKey)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	sealer, err := cryptox.NewSealer(key)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return store.Sealed(db, sealer), nil
}

func (app *Application) initHTTP() error {
	formToken, err := cryptox.GenerateToken(cryptox.TokenSize128)
	if err != nil {
		return fmt.Errorf("failed to generate form token: %w", err)
	}
	views, err := httpapi.NewViews(formToken)
	if err != nil {
		return fmt.Errorf("failed to parse templates: %w", err)
	}

	router := httpapi.NewRouter(
		app.gate,
		app.client.NewSession(app.gate, app.gate.HandleUnauthorized),
		app.db,
		views,
		BuildVersion,
		app.logger,
	)
	router.LoginLimit = app.cfg.LoginLimit
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              app.cfg.ListenAddr,
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
	return nil
}
