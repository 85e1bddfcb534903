package app_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/weaviate/weaviate-go-client/v5/weaviate"

	"ragbot/internal/app"
	"ragbot/internal/config"
)

func newTestApp(t *testing.T) (*app.App, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"version": "1.25.0"}`))
	}))
	t.Cleanup(ts.Close)

	wClient, err := weaviate.NewClient(weaviate.Config{
		Host: ts.Listener.Addr().String(), Scheme: "http",
	})
	require.NoError(t, err)

	cfg := &config.Config{
		WeaviateClass:   "KnowledgeChunk",
		ChunkSize:       1000,
		ChunkOverlap:    200,
		ServerPort:      8081,
		UploadDir:       t.TempDir(),
		MaxUploadSizeMB: 10,
	}

	a, err := app.New(cfg, &app.Dependencies{DB: db, Weaviate: wClient})
	require.NoError(t, err)
	return a, mock
}

func TestApp_HealthRoute(t *testing.T) {
	a, _ := newTestApp(t)

	req := httptest.NewRequest("GET", "/health", nil)
	rr := httptest.NewRecorder()
	a.Handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"status":"ok"`)
}

func TestApp_CorrelationIDHeader(t *testing.T) {
	a, _ := newTestApp(t)

	req := httptest.NewRequest("POST", "/api/ingest", strings.NewReader(`{}`))
	rr := httptest.NewRecorder()
	a.Handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.NotEmpty(t, rr.Header().Get("X-Correlation-ID"))
}

func TestApp_UnknownTaskStatus(t *testing.T) {
	a, _ := newTestApp(t)

	req := httptest.NewRequest("GET", "/api/data_source/status/unknown-id", nil)
	rr := httptest.NewRecorder()
	a.Handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Contains(t, rr.Body.String(), "Task not found")
}

func TestApp_AddValidation(t *testing.T) {
	a, _ := newTestApp(t)

	req := httptest.NewRequest("POST", "/api/data_source/add",
		strings.NewReader(`{"type":"rss","value":"https://example.com"}`))
	rr := httptest.NewRecorder()
	a.Handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestApp_CORSPreflight(t *testing.T) {
	a, _ := newTestApp(t)

	req := httptest.NewRequest("OPTIONS", "/api/ingest", nil)
	rr := httptest.NewRecorder()
	a.Handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "*", rr.Header().Get("Access-Control-Allow-Origin"))
}
