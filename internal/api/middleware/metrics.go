package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

// HTTPRecorder receives one observation per finished request.
type HTTPRecorder interface {
	ObserveHTTP(method, route string, status int, elapsed time.Duration)
}

// unmatchedRoute labels requests that no route pattern matched, so that
// arbitrary paths cannot inflate label cardinality.
const unmatchedRoute = "unmatched"

// NewMetricsMiddleware records each request under its chi route pattern.
func NewMetricsMiddleware(rec HTTPRecorder) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			route := unmatchedRoute
			if rctx := chi.RouteContext(r.Context()); rctx != nil {
				if pattern := rctx.RoutePattern(); pattern != "" {
					route = pattern
				}
			}
			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			rec.ObserveHTTP(r.Method, route, status, time.Since(start))
		})
	}
}
