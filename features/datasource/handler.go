package datasource

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	pipeline "ragbot/internal/ingest"
	"ragbot/internal/middleware"
	"ragbot/internal/task"
)

// Ingestor runs the full extract, chunk, embed, store pipeline.
type Ingestor interface {
	Ingest(ctx context.Context, req pipeline.Request) error
}

// Handler serves the async ingestion surface: file uploads and url/markdown
// submissions both return 202 with a task id the caller polls.
type Handler struct {
	pipeline  Ingestor
	tasks     *task.Manager
	uploadDir string
	maxBytes  int64
}

func NewHandler(p Ingestor, tasks *task.Manager, uploadDir string, maxUploadMB int64) *Handler {
	if uploadDir == "" {
		uploadDir = "./uploads"
	}
	if maxUploadMB <= 0 {
		maxUploadMB = 50
	}
	return &Handler{
		pipeline:  p,
		tasks:     tasks,
		uploadDir: uploadDir,
		maxBytes:  maxUploadMB << 20,
	}
}

// Upload accepts a PDF or Markdown file, saves it to a temporary path and
// launches background ingestion. The temporary file is removed when the task
// finishes, whatever the outcome.
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes)

	if err := r.ParseMultipartForm(h.maxBytes); err != nil {
		h.writeError(r.Context(), w, "BAD_REQUEST", "File too large", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		h.writeError(r.Context(), w, "BAD_REQUEST", "No file provided", http.StatusBadRequest)
		return
	}
	defer file.Close()

	if header.Filename == "" {
		h.writeError(r.Context(), w, "BAD_REQUEST", "No file selected", http.StatusBadRequest)
		return
	}

	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(header.Filename), "."))
	sourceType, err := pipeline.ExtensionSourceType(ext)
	if err != nil {
		h.writeError(r.Context(), w, "BAD_REQUEST", "Invalid file type. Only PDF and Markdown files are allowed", http.StatusBadRequest)
		return
	}

	if err := os.MkdirAll(h.uploadDir, 0o750); err != nil {
		slog.Error("failed to create upload directory", "error", err, "path", filepath.Clean(h.uploadDir))
		h.writeError(r.Context(), w, "INTERNAL_ERROR", "Failed to save file", http.StatusInternalServerError)
		return
	}

	filename := fmt.Sprintf("%s_%s", uuid.New().String(), filepath.Base(header.Filename))
	path := filepath.Clean(filepath.Join(h.uploadDir, filename))

	dst, err := os.Create(path) // #nosec G304 -- path is constructed from UUID + sanitized basename, not user-controlled
	if err != nil {
		slog.Error("failed to create file", "error", err, "path", path)
		h.writeError(r.Context(), w, "INTERNAL_ERROR", "Failed to save file", http.StatusInternalServerError)
		return
	}

	if _, err := io.Copy(dst, file); err != nil {
		dst.Close()
		h.removeUpload(path)
		h.writeError(r.Context(), w, "INTERNAL_ERROR", "Failed to save file", http.StatusInternalServerError)
		return
	}
	dst.Close()

	taskID := h.tasks.Create(header.Filename, string(sourceType), path)

	// The request context dies with the response; the background job gets
	// its own, keeping only the correlation id for log continuity.
	bgCtx := middleware.WithCorrelationID(context.Background(), middleware.GetCorrelationID(r.Context()))
	h.tasks.Run(bgCtx, taskID, func(ctx context.Context) error {
		return h.pipeline.Ingest(ctx, pipeline.Request{
			SourceType: sourceType,
			Value:      path,
			TaskID:     taskID,
			Metadata:   map[string]string{"filename": header.Filename},
		})
	}, func() {
		h.removeUpload(path)
	})

	h.writeJSON(w, http.StatusAccepted, map[string]string{
		"task_id":  taskID,
		"status":   "processing",
		"filename": header.Filename,
		"message":  "File upload received, processing in background",
	})
}

// Add accepts a url or raw markdown text and launches background ingestion.
// A url whose host is on the YouTube allow-list takes the audio path.
func (h *Handler) Add(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Type  string `json:"type"`
		Value string `json:"value"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(r.Context(), w, "VALIDATION_ERROR", "Missing 'type' or 'value' field", http.StatusBadRequest)
		return
	}

	if req.Type == "" || req.Value == "" {
		h.writeError(r.Context(), w, "VALIDATION_ERROR", "Missing 'type' or 'value' field", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Value) == "" {
		h.writeError(r.Context(), w, "VALIDATION_ERROR", "Source value must be a non-empty string", http.StatusBadRequest)
		return
	}

	var (
		effective pipeline.SourceType
		reported  string
	)
	switch req.Type {
	case "url":
		if !strings.HasPrefix(req.Value, "http://") && !strings.HasPrefix(req.Value, "https://") {
			h.writeError(r.Context(), w, "VALIDATION_ERROR", "URL must start with http:// or https://", http.StatusBadRequest)
			return
		}
		// A YouTube link takes the audio path and is reported as such.
		effective = pipeline.Classify(pipeline.SourceTypeURL, req.Value)
		reported = string(effective)
	case "markdown":
		// Raw markdown text, not a file path.
		effective = pipeline.SourceTypeText
		reported = "markdown"
	default:
		h.writeError(r.Context(), w, "VALIDATION_ERROR", "Invalid source type. Must be 'url' or 'markdown'", http.StatusBadRequest)
		return
	}

	taskID := h.tasks.Create("", reported, req.Value)

	value := req.Value
	bgCtx := middleware.WithCorrelationID(context.Background(), middleware.GetCorrelationID(r.Context()))
	h.tasks.Run(bgCtx, taskID, func(ctx context.Context) error {
		return h.pipeline.Ingest(ctx, pipeline.Request{
			SourceType: effective,
			Value:      value,
			TaskID:     taskID,
		})
	}, nil)

	h.writeJSON(w, http.StatusAccepted, map[string]string{
		"task_id":     taskID,
		"status":      "processing",
		"source_type": reported,
	})
}

// Status returns the current task snapshot.
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("task_id")
	t, ok := h.tasks.Get(id)
	if !ok {
		h.writeError(r.Context(), w, "NOT_FOUND", "Task not found", http.StatusNotFound)
		return
	}
	h.writeJSON(w, http.StatusOK, t)
}

func (h *Handler) removeUpload(path string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		slog.Warn("failed to clean up uploaded file", "error", err, "path", filepath.Clean(path))
	}
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
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
