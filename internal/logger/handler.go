package logger

import (
	"context"
	"log/slog"
	"ragbot/internal/middleware"
)

// ContextHandler decorates every record with the correlation id from the
// context, so pipeline logs line up with the request or task that ran them.
type ContextHandler struct {
	slog.Handler
}

func NewContextHandler(h slog.Handler) *ContextHandler {
	return &ContextHandler{Handler: h}
}

func (h *ContextHandler) Handle(ctx context.Context, r slog.Record) error {
	if id, ok := middleware.FromContext(ctx); ok {
		r.AddAttrs(slog.String("correlation_id", id))
	}
	return h.Handler.Handle(ctx, r)
}
