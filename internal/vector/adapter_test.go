package vector_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"ragbot/internal/vector"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/weaviate/weaviate-go-client/v5/weaviate"
	"github.com/weaviate/weaviate/entities/models"
)

// newTestAdapter spins up a fake weaviate that answers /v1/meta and defers
// everything else to the given handler.
func newTestAdapter(t *testing.T, handler http.HandlerFunc) *vector.SchemaAdapter {
	t.Helper()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/v1/meta" {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte(`{"version": "1.19.0"}`))
			return
		}
		handler(w, r)
	}))
	t.Cleanup(ts.Close)

	client, err := weaviate.NewClient(weaviate.Config{Host: ts.Listener.Addr().String(), Scheme: "http"})
	require.NoError(t, err)
	return vector.NewSchemaAdapter(client)
}

func TestSchemaAdapter_ClassExists(t *testing.T) {
	t.Run("Exists", func(t *testing.T) {
		adapter := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/v1/schema/KnowledgeChunk", r.URL.Path)
			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode(&models.Class{Class: "KnowledgeChunk"})
		})

		exists, err := adapter.ClassExists(context.Background(), "KnowledgeChunk")
		assert.NoError(t, err)
		assert.True(t, exists)
	})

	t.Run("NotFound", func(t *testing.T) {
		adapter := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		})

		exists, err := adapter.ClassExists(context.Background(), "KnowledgeChunk")
		assert.NoError(t, err)
		assert.False(t, exists)
	})
}

func TestSchemaAdapter_CreateClass(t *testing.T) {
	adapter := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/schema", r.URL.Path)
		assert.Equal(t, "POST", r.Method)
		w.WriteHeader(http.StatusOK)
	})

	err := adapter.CreateClass(context.Background(), &models.Class{Class: "KnowledgeChunk"})
	assert.NoError(t, err)
}

func TestSchemaAdapter_GetClass(t *testing.T) {
	adapter := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/schema/KnowledgeChunk", r.URL.Path)
		assert.Equal(t, "GET", r.Method)
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(&models.Class{Class: "KnowledgeChunk"})
	})

	class, err := adapter.GetClass(context.Background(), "KnowledgeChunk")
	assert.NoError(t, err)
	assert.NotNil(t, class)
	assert.Equal(t, "KnowledgeChunk", class.Class)
}

func TestSchemaAdapter_AddProperty(t *testing.T) {
	adapter := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/schema/KnowledgeChunk/properties", r.URL.Path)
		assert.Equal(t, "POST", r.Method)
		w.WriteHeader(http.StatusOK)
	})

	prop := &models.Property{
		Name:     "transcription_engine",
		DataType: []string{"text"},
	}
	err := adapter.AddProperty(context.Background(), "KnowledgeChunk", prop)
	assert.NoError(t, err)
}
