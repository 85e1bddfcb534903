package weaviate

import (
	"context"
	"fmt"
	"strconv"

	"github.com/weaviate/weaviate-go-client/v5/weaviate"
	"github.com/weaviate/weaviate-go-client/v5/weaviate/graphql"
	"github.com/weaviate/weaviate/entities/models"
)

// Store persists embedded document chunks in a single Weaviate class.
type Store struct {
	client    *weaviate.Client
	className string
}

func NewStore(client *weaviate.Client, className string) *Store {
	return &Store{client: client, className: className}
}

// Upsert writes one object per document in a single batch. Documents,
// vectors and metadatas must be aligned by index and of equal length;
// a mismatch means an upstream bug, never partial data, so it fails
// before anything is written.
func (s *Store) Upsert(ctx context.Context, documents []string, vectors [][]float32, metadatas []map[string]string) error {
	if len(documents) == 0 {
		return fmt.Errorf("no documents to store")
	}
	if len(documents) != len(vectors) || len(documents) != len(metadatas) {
		return fmt.Errorf("aligned input required: %d documents, %d vectors, %d metadatas",
			len(documents), len(vectors), len(metadatas))
	}

	objects := make([]*models.Object, len(documents))
	for i, doc := range documents {
		props := map[string]interface{}{
			"content":     doc,
			"chunk_index": i,
		}
		for k, v := range metadatas[i] {
			props[k] = v
		}
		objects[i] = &models.Object{
			Class:      s.className,
			Properties: props,
			Vector:     vectors[i],
		}
	}

	res, err := s.client.Batch().ObjectsBatcher().
		WithObjects(objects...).
		Do(ctx)
	if err != nil {
		return err
	}
	for _, obj := range res {
		if obj.Result != nil && obj.Result.Errors != nil && len(obj.Result.Errors.Error) > 0 {
			return fmt.Errorf("batch insert rejected: %s", obj.Result.Errors.Error[0].Message)
		}
	}
	return nil
}

// SearchResult is one retrieved chunk with its relevance score.
type SearchResult struct {
	Content  string
	Score    float32
	Metadata map[string]interface{}
}

// Search runs a hybrid query mixing keyword and vector relevance.
// Alpha 0 is pure keyword, 1 is pure vector. It backs the retrieval
// surface the chat endpoint will grow into; nothing in the HTTP layer
// calls it yet.
func (s *Store) Search(ctx context.Context, query string, vector []float32, alpha float32, limit int) ([]SearchResult, error) {
	hybrid := s.client.GraphQL().HybridArgumentBuilder().
		WithQuery(query).
		WithVector(vector).
		WithAlpha(alpha)

	fields := []graphql.Field{
		{Name: "content"},
		{Name: "source_type"},
		{Name: "task_id"},
		{Name: "url"},
		{Name: "filename"},
		{Name: "chunk_index"},
		{Name: "_additional", Fields: []graphql.Field{{Name: "score"}}},
	}

	res, err := s.client.GraphQL().Get().
		WithClassName(s.className).
		WithHybrid(hybrid).
		WithLimit(limit).
		WithFields(fields...).
		Do(ctx)
	if err != nil {
		return nil, err
	}
	if len(res.Errors) > 0 {
		return nil, fmt.Errorf("graphql error: %v", res.Errors)
	}

	var results []SearchResult
	data, ok := res.Data["Get"].(map[string]interface{})
	if !ok {
		return results, nil
	}
	raw, ok := data[s.className].([]interface{})
	if !ok {
		return results, nil
	}
	for _, c := range raw {
		props, ok := c.(map[string]interface{})
		if !ok {
			continue
		}
		result := SearchResult{Metadata: make(map[string]interface{})}
		if content, ok := props["content"].(string); ok {
			result.Content = content
		}
		for _, key := range []string{"source_type", "task_id", "url", "filename"} {
			if v, ok := props[key].(string); ok && v != "" {
				result.Metadata[key] = v
			}
		}
		if idx, ok := props["chunk_index"].(float64); ok {
			result.Metadata["chunk_index"] = int(idx)
		}
		if additional, ok := props["_additional"].(map[string]interface{}); ok {
			// Older server versions return the score as a string.
			switch score := additional["score"].(type) {
			case string:
				if f, err := strconv.ParseFloat(score, 32); err == nil {
					result.Score = float32(f)
				}
			case float64:
				result.Score = float32(score)
			}
		}
		results = append(results, result)
	}
	return results, nil
}
