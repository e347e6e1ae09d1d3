package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/phrazzld/habit-api/internal/config"
	"github.com/phrazzld/habit-api/internal/platform/memory"
	"github.com/phrazzld/habit-api/internal/platform/metrics"
	"github.com/phrazzld/habit-api/internal/platform/postgres"
	"github.com/phrazzld/habit-api/internal/service/auth"
	"github.com/phrazzld/habit-api/internal/service/tracker"
	"github.com/phrazzld/habit-api/internal/store"
)

// Ledger backends selectable with database.driver.
const (
	driverMemory   = "memory"
	driverPostgres = "postgres"
)

// application holds all the shared application dependencies to simplify management
// and ensure proper cleanup on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger

	// db is nil for the memory driver.
	db *sql.DB

	repo       store.TxRunner
	tracker    tracker.Service
	jwtService auth.JWTService
	metrics    *metrics.Metrics
}

// newApplication opens the configured ledger backend and builds the services.
func newApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*application, error) {
	app := &application{
		config:  cfg,
		logger:  logger,
		metrics: metrics.New(),
	}

	switch cfg.Database.Driver {
	case driverPostgres:
		db, err := postgres.Open(ctx, cfg.Database.URL, cfg.Database.MaxOpenConns)
		if err != nil {
			return nil, err
		}
		app.db = db
		logger.Info("database connection established")

		if cfg.Database.AutoMigrate {
			if err := postgres.Migrate(ctx, db, "up", logger); err != nil {
				app.cleanup()
				return nil, err
			}
		}
		app.repo = postgres.NewRepository(db, logger)
	case driverMemory:
		logger.Warn("using in-memory ledger; data is lost on shutdown")
		app.repo = memory.New(logger)
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Database.Driver)
	}

	jwtService, err := auth.NewJWTService(cfg.Auth)
	if err != nil {
		app.cleanup()
		return nil, fmt.Errorf("failed to create JWT service: %w", err)
	}
	app.jwtService = jwtService

	app.tracker = tracker.NewService(app.repo, logger,
		tracker.WithLocation(cfg.Ledger.Location()),
		tracker.WithRecorder(app.metrics),
	)

	logger.Info("application initialized",
		slog.Int("port", cfg.Server.Port),
		slog.String("driver", cfg.Database.Driver),
		slog.String("timezone", cfg.Ledger.Timezone))
	return app, nil
}

// cleanup releases the database connection, if any.
func (app *application) cleanup() {
	if app.db == nil {
		return
	}
	if err := app.db.Close(); err != nil {
		app.logger.Error("failed to close database connection", slog.String("error", err.Error()))
		return
	}
	app.db = nil
	app.logger.Info("database connection closed")
}

// startHTTPServer serves the router until ctx is cancelled, then shuts down
// gracefully within the configured timeout.
func (app *application) startHTTPServer(ctx context.Context) error {
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", app.config.Server.Port),
		Handler:           app.setupRouter(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		app.logger.Info("starting server", slog.Int("port", app.config.Server.Port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
		app.logger.Info("shutting down server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), app.config.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	app.logger.Info("server shutdown completed")
	return nil
}
