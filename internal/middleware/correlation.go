// Package middleware carries the correlation id that ties request logs,
// error envelopes and background ingestion tasks together.
package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
)

type ctxKey struct{}

var correlationKey ctxKey

// CorrelationID accepts an X-Correlation-ID header from the caller or mints
// a fresh uuid, stores it on the request context and echoes it back in the
// response header. Both ends of the request are logged with it.
func CorrelationID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Correlation-ID")
		if id == "" {
			id = uuid.New().String()
		}

		ctx := WithCorrelationID(r.Context(), id)
		w.Header().Set("X-Correlation-ID", id)

		start := time.Now()
		slog.Info("request received", "method", r.Method, "path", r.URL.Path, "correlation_id", id)

		next.ServeHTTP(w, r.WithContext(ctx))

		slog.Info("request completed", "method", r.Method, "path", r.URL.Path, "correlation_id", id, "duration", time.Since(start))
	})
}

// FromContext reports the correlation id, if the context carries one.
func FromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(correlationKey).(string)
	return id, ok && id != ""
}

// GetCorrelationID is FromContext with a placeholder for contexts outside
// any request scope, for use in error envelopes.
func GetCorrelationID(ctx context.Context) string {
	if id, ok := FromContext(ctx); ok {
		return id
	}
	return "unknown"
}

// WithCorrelationID attaches an id to a detached context, so background
// tasks keep logging under the request that spawned them.
func WithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, correlationKey, id)
}
