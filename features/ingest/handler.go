package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	pipeline "ragbot/internal/ingest"
	"ragbot/internal/middleware"
)

// Ingestor runs the full extract, chunk, embed, store pipeline.
type Ingestor interface {
	Ingest(ctx context.Context, req pipeline.Request) error
}

type Handler struct {
	pipeline Ingestor
}

func NewHandler(p Ingestor) *Handler {
	return &Handler{pipeline: p}
}

// Ingest handles the synchronous ingestion endpoint. The caller blocks for
// the whole pipeline run; large sources belong on the async upload path.
func (h *Handler) Ingest(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SourceType string            `json:"source_type"`
		Data       string            `json:"data"`
		Metadata   map[string]string `json:"metadata"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(r.Context(), w, "VALIDATION_ERROR", err.Error(), http.StatusBadRequest)
		return
	}

	if req.SourceType == "" || strings.TrimSpace(req.Data) == "" {
		h.writeError(r.Context(), w, "VALIDATION_ERROR", "Missing 'source_type' or 'data' field", http.StatusBadRequest)
		return
	}

	sourceType, err := pipeline.ParseSourceType(req.SourceType)
	if err != nil {
		h.writeError(r.Context(), w, "VALIDATION_ERROR", err.Error(), http.StatusBadRequest)
		return
	}

	err = h.pipeline.Ingest(r.Context(), pipeline.Request{
		SourceType: sourceType,
		Value:      req.Data,
		Metadata:   req.Metadata,
	})
	if err != nil {
		var unsupported *pipeline.UnsupportedSourceTypeError
		var invalid *pipeline.InvalidSourceError
		if errors.As(err, &unsupported) || errors.As(err, &invalid) {
			h.writeError(r.Context(), w, "VALIDATION_ERROR", err.Error(), http.StatusBadRequest)
			return
		}
		slog.ErrorContext(r.Context(), "ingestion failed", "error", err, "source_type", sourceType)
		h.writeError(r.Context(), w, "INTERNAL_ERROR", "Failed to ingest data", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]string{"message": "Data ingested successfully"}); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) writeError(ctx context.Context, w http.ResponseWriter, code, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	resp := map[string]interface{}{
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
		"correlationId": middleware.GetCorrelationID(ctx),
	}

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to encode error response", "error", err)
	}
}
