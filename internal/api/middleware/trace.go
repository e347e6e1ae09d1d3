package middleware

import (
	"log/slog"
	"net/http"
	"regexp"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/phrazzld/habit-api/internal/api/shared"
	"github.com/phrazzld/habit-api/internal/platform/logger"
)

// TraceIDHeader carries the trace ID in requests and responses.
const TraceIDHeader = "X-Trace-ID"

// validTraceID limits client-supplied trace IDs to safe log values.
var validTraceID = regexp.MustCompile(`^[A-Za-z0-9_-]{8,64}$`)

// NewTraceMiddleware returns middleware that assigns each request a trace ID,
// stores a request-scoped logger tagged with it in the context, and logs the
// request once it completes.
//
// A well-formed X-Trace-ID request header is reused; otherwise a fresh ID
// is generated. The ID is echoed in the response header.
func NewTraceMiddleware(base *slog.Logger) func(http.Handler) http.Handler {
	if base == nil {
		base = slog.Default()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			ctx := r.Context()
			if incoming := r.Header.Get(TraceIDHeader); validTraceID.MatchString(incoming) {
				ctx = shared.WithTraceID(ctx, incoming)
			} else {
				ctx = shared.SetTraceID(ctx)
			}
			traceID := shared.GetTraceID(ctx)

			log := base.With(slog.String("trace_id", traceID))
			ctx = logger.WithLogger(ctx, log)
			w.Header().Set(TraceIDHeader, traceID)

			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			log.Debug("request completed",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", status),
				slog.Int("bytes", ww.BytesWritten()),
				slog.Duration("duration", time.Since(start)))
		})
	}
}
