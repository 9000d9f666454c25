// Package middleware holds the HTTP middleware wrapped around the site's
// routes: request logging, security headers, rate limiting and basic auth
// for the metrics endpoint.
package middleware

import (
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// RequestLoggingMiddleware logs one line per request.
type RequestLoggingMiddleware struct {
	logger *slog.Logger
}

func NewRequestLoggingMiddleware(logger *slog.Logger) *RequestLoggingMiddleware {
	return &RequestLoggingMiddleware{logger: logger}
}

// skipPrefixes are too noisy to log.
var skipPrefixes = []string{
	"/health",
	"/metrics",
	"/static/",
	"/images/",
}

// Handler logs method, path, status and latency. Server errors log at WARN.
// Event streams are logged when they close, so their duration is the
// lifetime of the stream.
func (m *RequestLoggingMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.shouldSkip(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		start := time.Now()
		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(wrapped, r)

		attrs := []any{
			"method", r.Method,
			"path", r.URL.Path,
			"status", wrapped.statusCode,
			"duration_ms", time.Since(start).Milliseconds(),
			"ip", getClientIP(r),
			"user_agent", r.UserAgent(),
		}
		if q := sanitizeQuery(r.URL.RawQuery); q != "" {
			attrs = append(attrs, "query", q)
		}

		if wrapped.statusCode >= 500 {
			m.logger.Warn("request", attrs...)
		} else {
			m.logger.Info("request", attrs...)
		}
	})
}

func (m *RequestLoggingMiddleware) shouldSkip(path string) bool {
	for _, p := range skipPrefixes {
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}

// responseWriter captures the status code. Unwrap lets
// http.ResponseController reach the underlying Flusher for event streams.
type responseWriter struct {
	http.ResponseWriter
	statusCode  int
	wroteHeader bool
}

func (rw *responseWriter) WriteHeader(code int) {
	if !rw.wroteHeader {
		rw.statusCode = code
		rw.wroteHeader = true
	}
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	rw.wroteHeader = true
	return rw.ResponseWriter.Write(b)
}

func (rw *responseWriter) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}

// sensitiveParams are redacted from logged query strings.
var sensitiveParams = map[string]bool{
	"token":  true,
	"key":    true,
	"secret": true,
}

// sanitizeQuery keeps filter parameters readable and redacts credentials.
func sanitizeQuery(rawQuery string) string {
	if rawQuery == "" {
		return ""
	}

	var safe []string
	for _, part := range strings.Split(rawQuery, "&") {
		name, _, found := strings.Cut(part, "=")
		if !found {
			continue
		}
		if sensitiveParams[strings.ToLower(name)] {
			safe = append(safe, name+"=[REDACTED]")
			continue
		}
		safe = append(safe, part)
	}
	return strings.Join(safe, "&")
}
