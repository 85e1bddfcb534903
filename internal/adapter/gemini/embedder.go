package gemini

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"ragbot/internal/settings"
)

const embeddingModel = "gemini-embedding-001"

// Embedder computes embedding vectors through the Gemini API. The api key is
// resolved from settings on every call so a key change takes effect without
// a restart; the underlying client is rebuilt only when the key changes.
type Embedder struct {
	settingsSvc *settings.Service
	client      *genai.Client
	currentKey  string
	mu          sync.RWMutex
	clientOpts  []option.ClientOption
}

func NewEmbedder(svc *settings.Service, opts ...option.ClientOption) *Embedder {
	return &Embedder{
		settingsSvc: svc,
		clientOpts:  opts,
	}
}

// EmbedBatch vectorizes chunks in one batched call. The result is
// order-aligned with the input and always the same length; a provider
// response with missing or empty vectors is an error, never silently padded.
func (e *Embedder) EmbedBatch(ctx context.Context, chunks []string) ([][]float32, error) {
	if len(chunks) == 0 {
		return nil, fmt.Errorf("no chunks to embed")
	}

	client, err := e.resolveClient(ctx)
	if err != nil {
		return nil, err
	}

	em := client.EmbeddingModel(embeddingModel)
	batch := em.NewBatch()
	for _, c := range chunks {
		batch.AddContent(genai.Text(c))
	}

	slog.DebugContext(ctx, "embedding batch", "model", embeddingModel, "chunks", len(chunks))

	res, err := em.BatchEmbedContents(ctx, batch)
	if err != nil {
		return nil, err
	}
	if len(res.Embeddings) != len(chunks) {
		return nil, fmt.Errorf("embedding count mismatch: got %d for %d chunks", len(res.Embeddings), len(chunks))
	}

	vectors := make([][]float32, len(res.Embeddings))
	for i, emb := range res.Embeddings {
		if emb == nil || len(emb.Values) == 0 {
			return nil, fmt.Errorf("empty embedding received for chunk %d", i)
		}
		vectors[i] = emb.Values
	}
	return vectors, nil
}

// Embed vectorizes a single text. It is the query-side counterpart of
// EmbedBatch, kept for the retrieval surface; ingestion never calls it.
func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	client, err := e.resolveClient(ctx)
	if err != nil {
		return nil, err
	}

	em := client.EmbeddingModel(embeddingModel)
	res, err := em.EmbedContent(ctx, genai.Text(text))
	if err != nil {
		return nil, err
	}
	if res.Embedding == nil || len(res.Embedding.Values) == 0 {
		return nil, fmt.Errorf("empty embedding received")
	}
	return res.Embedding.Values, nil
}

func (e *Embedder) resolveClient(ctx context.Context) (*genai.Client, error) {
	s, err := e.settingsSvc.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get settings: %w", err)
	}
	if s.GeminiAPIKey == "" {
		return nil, fmt.Errorf("gemini api key not configured")
	}
	return e.getClient(ctx, s.GeminiAPIKey)
}

func (e *Embedder) getClient(ctx context.Context, key string) (*genai.Client, error) {
	e.mu.RLock()
	if e.client != nil && e.currentKey == key {
		defer e.mu.RUnlock()
		return e.client, nil
	}
	e.mu.RUnlock()

	e.mu.Lock()
	defer e.mu.Unlock()

	// Double check
	if e.client != nil && e.currentKey == key {
		return e.client, nil
	}

	if e.client != nil {
		if err := e.client.Close(); err != nil {
			slog.Warn("failed to close previous genai client", "error", err)
		}
	}

	opts := append(e.clientOpts, option.WithAPIKey(key))
	client, err := genai.NewClient(ctx, opts...)
	if err != nil {
		return nil, err
	}

	e.client = client
	e.currentKey = key
	return client, nil
}
