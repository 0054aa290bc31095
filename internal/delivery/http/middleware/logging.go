package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
)

// responseWriter wraps http.ResponseWriter to capture status code and bytes written.
type responseWriter struct {
	http.ResponseWriter
	status  int
	written int64
}

func (w *responseWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *responseWriter) Write(b []byte) (n int, err error) {
	n, err = w.ResponseWriter.Write(b)
	w.written += int64(n)
	return n, err
}

// requestLog is filled in by inner middleware while the request is served.
type requestLog struct {
	tenant string
}

func requestLogFromContext(ctx context.Context) *requestLog {
	l, _ := ctx.Value(requestLogKey).(*requestLog)
	return l
}

// Logging logs each request with method, path, status, duration, bytes and
// the chi request id when present. It does not log request or response bodies.
func Logging(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			wrapped := &responseWriter{ResponseWriter: w, status: http.StatusOK}
			entry := &requestLog{}
			next.ServeHTTP(wrapped, r.WithContext(context.WithValue(r.Context(), requestLogKey, entry)))
			attrs := []any{
				"method", r.Method,
				"path", r.URL.Path,
				"status", wrapped.status,
				"bytes", wrapped.written,
				"duration_ms", time.Since(start).Milliseconds(),
			}
			if id := chimw.GetReqID(r.Context()); id != "" {
				attrs = append(attrs, "request_id", id)
			}
			if entry.tenant != "" {
				attrs = append(attrs, "tenant", entry.tenant)
			}
			logger.Info("request", attrs...)
		})
	}
}
