package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestCorrelationID(t *testing.T) {
	handler := CorrelationID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := FromContext(r.Context())
		if !ok || id == "" {
			t.Error("correlation id missing from context")
		}
	}))

	req := httptest.NewRequest("GET", "/", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Header().Get("X-Correlation-ID") == "" {
		t.Error("header missing")
	}
}

func TestCorrelationID_ReusesCallerHeader(t *testing.T) {
	handler := CorrelationID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id, _ := FromContext(r.Context()); id != "caller-supplied" {
			t.Errorf("expected caller-supplied id, got %q", id)
		}
	}))

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("X-Correlation-ID", "caller-supplied")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if got := w.Header().Get("X-Correlation-ID"); got != "caller-supplied" {
		t.Errorf("expected echoed header, got %q", got)
	}
}

func TestCorrelationID_DetachedContext(t *testing.T) {
	ctx := WithCorrelationID(context.Background(), "task-scope")
	if id, ok := FromContext(ctx); !ok || id != "task-scope" {
		t.Errorf("expected task-scope, got %q (ok=%v)", id, ok)
	}
	if got := GetCorrelationID(context.Background()); got != "unknown" {
		t.Errorf("expected unknown placeholder, got %q", got)
	}
}
