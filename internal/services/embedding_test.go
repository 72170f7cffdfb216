package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
)

func embeddingServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

func TestEmbedFields_MapsResponseAndSkipsEmpty(t *testing.T) {
	var gotPath string
	var gotBody map[string]string
	srv := embeddingServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode request: %v", err)
		}
		resp := map[string]any{"embeddings": map[string][]float32{
			"description": {0.1, 0.2},
			"domain":      {0.3, 0.4},
		}}
		_ = json.NewEncoder(w).Encode(resp)
	})
	t.Setenv("EMBEDDING_SERVICE_URL", srv.URL)

	client := NewLocalEmbeddingClient(testLogger(t))
	vecs, err := client.EmbedFields(context.Background(), map[string]string{
		"description": "a gadget",
		"domain":      "hardware",
		"blank":       "   ",
	})
	if err != nil {
		t.Fatalf("EmbedFields: %v", err)
	}
	if gotPath != "/api/embeddings" {
		t.Fatalf("expected /api/embeddings, got %s", gotPath)
	}
	if _, ok := gotBody["blank"]; ok {
		t.Fatalf("blank field should not be sent, body: %v", gotBody)
	}
	if len(vecs) != 2 || len(vecs["description"]) != 2 {
		t.Fatalf("unexpected vectors: %v", vecs)
	}
}

func TestEmbedPaperFields_UsesPaperRoute(t *testing.T) {
	var gotPath string
	srv := embeddingServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_ = json.NewEncoder(w).Encode(map[string]any{"embeddings": map[string][]float32{
			"abstract": {1},
		}})
	})
	t.Setenv("EMBEDDING_SERVICE_URL", srv.URL)

	client := NewLocalEmbeddingClient(testLogger(t))
	if _, err := client.EmbedPaperFields(context.Background(), map[string]string{"abstract": "text"}); err != nil {
		t.Fatalf("EmbedPaperFields: %v", err)
	}
	if gotPath != "/api/paper/embeddings" {
		t.Fatalf("expected /api/paper/embeddings, got %s", gotPath)
	}
}

func TestEmbedFields_RetriesServerErrors(t *testing.T) {
	var calls int32
	srv := embeddingServer(t, func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			http.Error(w, "temporarily down", http.StatusServiceUnavailable)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"embeddings": map[string][]float32{
			"domain": {1, 2},
		}})
	})
	t.Setenv("EMBEDDING_SERVICE_URL", srv.URL)
	t.Setenv("EMBEDDING_MAX_RETRIES", "2")

	client := NewLocalEmbeddingClient(testLogger(t))
	vecs, err := client.EmbedFields(context.Background(), map[string]string{"domain": "hardware"})
	if err != nil {
		t.Fatalf("EmbedFields after retry: %v", err)
	}
	if atomic.LoadInt32(&calls) != 2 {
		t.Fatalf("expected 2 calls, got %d", calls)
	}
	if len(vecs["domain"]) != 2 {
		t.Fatalf("unexpected vectors: %v", vecs)
	}
}

func TestEmbedFields_ClientErrorIsFinal(t *testing.T) {
	var calls int32
	srv := embeddingServer(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		http.Error(w, "bad request", http.StatusBadRequest)
	})
	t.Setenv("EMBEDDING_SERVICE_URL", srv.URL)
	t.Setenv("EMBEDDING_MAX_RETRIES", "3")

	client := NewLocalEmbeddingClient(testLogger(t))
	_, err := client.EmbedFields(context.Background(), map[string]string{"domain": "hardware"})
	if !errors.Is(err, ErrEmbeddingUnavailable) {
		t.Fatalf("expected ErrEmbeddingUnavailable, got %v", err)
	}
	if atomic.LoadInt32(&calls) != 1 {
		t.Fatalf("4xx must not retry, got %d calls", calls)
	}
}
