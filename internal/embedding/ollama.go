package embedding

import (
	"context"
	"fmt"

	"github.com/philippgille/chromem-go"
)

// OllamaEmbedder embeds text through a local Ollama server.
type OllamaEmbedder struct {
	embed      chromem.EmbeddingFunc
	model      string
	dimensions int
	cache      *EmbeddingCache
}

// NewOllamaEmbedder creates an embedder for model. An empty baseURL uses
// http://localhost:11434/api. A dimensions value of zero disables the length check.
func NewOllamaEmbedder(model, baseURL string, dimensions, cacheSize int) *OllamaEmbedder {
	return &OllamaEmbedder{
		embed:      chromem.NewEmbeddingFuncOllama(model, baseURL),
		model:      model,
		dimensions: dimensions,
		cache:      NewEmbeddingCache(cacheSize),
	}
}

// Embed returns the embedding for text, using cache when available.
func (e *OllamaEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if cached, ok := e.cache.Get(text); ok {
		return cached, nil
	}
	emb, err := e.embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("ollama embedding with %s failed: %w", e.model, err)
	}
	if e.dimensions > 0 && len(emb) != e.dimensions {
		return nil, fmt.Errorf("ollama model %s returned %d dimensions, expected %d", e.model, len(emb), e.dimensions)
	}
	e.cache.Set(text, emb)
	return emb, nil
}

// EmbedBatch calls Embed for each text.
func (e *OllamaEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	return embedEach(ctx, texts, e.Embed)
}

// Dimensions returns the configured embedding dimension.
func (e *OllamaEmbedder) Dimensions() int {
	return e.dimensions
}

// Close is a no-op; the HTTP client holds no resources.
func (e *OllamaEmbedder) Close() error {
	return nil
}
