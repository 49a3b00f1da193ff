package middleware

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

const RequestIDKey contextKey = "request_id"

// RequestLogging tags each request with an X-Request-ID and logs method,
// path, status, size and latency once the handler returns.
func RequestLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if shouldSkipLogging(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)

		start := time.Now()
		wrapped := &statusRecorder{ResponseWriter: w, statusCode: 200}
		ctx := context.WithValue(r.Context(), RequestIDKey, id)

		next.ServeHTTP(wrapped, r.WithContext(ctx))

		log.Printf("[API] %s %s %s -> %d (%dB) in %v",
			shortID(id), r.Method, r.URL.Path, wrapped.statusCode, wrapped.bytes, time.Since(start).Round(time.Millisecond))
	})
}

// RequestIDFromContext returns the id assigned by RequestLogging
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(RequestIDKey).(string)
	return id
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func shouldSkipLogging(path string) bool {
	return path == "/metrics" || strings.HasPrefix(path, "/health") || path == "/ws"
}
