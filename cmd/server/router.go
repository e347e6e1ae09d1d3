package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/phrazzld/habit-api/internal/api"
	apiMiddleware "github.com/phrazzld/habit-api/internal/api/middleware"
)

// setupRouter creates and configures the application router with all routes and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(apiMiddleware.NewTraceMiddleware(app.logger))
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.NewMetricsMiddleware(app.metrics))

	trackerHandler := api.NewTrackerHandler(app.tracker, app.logger)
	authMiddleware := apiMiddleware.NewAuthMiddleware(app.jwtService)
	rateLimiter := apiMiddleware.NewRateLimiter(app.config.Server.RateLimit, app.config.Server.RateBurst)

	r.Route("/api", func(r chi.Router) {
		r.Use(authMiddleware.Authenticate)
		r.Use(rateLimiter.Limit)
		trackerHandler.Routes(r)
	})

	r.Get("/health", app.handleHealth)
	r.Method(http.MethodGet, "/metrics", app.metrics.Handler())

	return r
}

// handleHealth reports liveness, and database reachability when one is configured.
func (app *application) handleHealth(w http.ResponseWriter, r *http.Request) {
	if app.db != nil {
		if err := app.db.PingContext(r.Context()); err != nil {
			app.logger.Error("health check failed", "error", err)
			http.Error(w, "database unavailable", http.StatusServiceUnavailable)
			return
		}
	}
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("OK")); err != nil {
		app.logger.Error("failed to write health check response", "error", err)
	}
}
