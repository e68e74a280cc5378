package embedding

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
)

// fakeOllama answers both the legacy /embeddings and the /embed endpoints.
func fakeOllama(t *testing.T, vec []float32, calls *int32) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(calls, 1)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"embedding":  vec,
			"embeddings": [][]float32{vec},
		})
	}))
}

func TestOllamaEmbedder_Embed(t *testing.T) {
	var calls int32
	srv := fakeOllama(t, []float32{0.6, 0.8, 0}, &calls)
	defer srv.Close()

	e := NewOllamaEmbedder("all-minilm", srv.URL+"/api", 3, 10)
	emb, err := e.Embed(context.Background(), "transformers")
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	if len(emb) != 3 {
		t.Fatalf("len = %d, want 3", len(emb))
	}
	if _, err := e.Embed(context.Background(), "transformers"); err != nil {
		t.Fatal(err)
	}
	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Errorf("server calls = %d, want 1 (second call cached)", got)
	}
	if e.Dimensions() != 3 {
		t.Errorf("Dimensions = %d", e.Dimensions())
	}
}

func TestOllamaEmbedder_dimensionMismatch(t *testing.T) {
	var calls int32
	srv := fakeOllama(t, []float32{1, 0}, &calls)
	defer srv.Close()

	e := NewOllamaEmbedder("all-minilm", srv.URL+"/api", 384, 0)
	if _, err := e.Embed(context.Background(), "x"); err == nil {
		t.Error("expected dimension mismatch error")
	}
}

func TestOllamaEmbedder_serverError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	e := NewOllamaEmbedder("all-minilm", srv.URL+"/api", 0, 0)
	if _, err := e.Embed(context.Background(), "x"); err == nil {
		t.Error("expected error from failing server")
	}
}
