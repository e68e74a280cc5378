package embedding

import (
	"context"
	"image"
	"strings"
	"unicode"

	"github.com/hyperjump/shiori/pkg/utils"
)

// MockEmbedder is a deterministic embedder for tests and runs without a model.
// Each lowercased word is hashed into a bucket, so texts sharing words score higher.
type MockEmbedder struct {
	dimensions int
}

// NewMockEmbedder returns an embedder that produces deterministic embeddings of the given dimensions.
func NewMockEmbedder(dimensions int) *MockEmbedder {
	if dimensions <= 0 {
		dimensions = 384
	}
	return &MockEmbedder{dimensions: dimensions}
}

// Embed returns a deterministic unit-length bag-of-words embedding.
func (e *MockEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	emb := make([]float32, e.dimensions)
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
	for _, w := range words {
		h := HashString(w)
		sign := float32(1)
		if (h>>16)&1 == 1 {
			sign = -1
		}
		emb[h%e.dimensions] += sign
	}
	if allZero(emb) {
		emb[0] = 1
	}
	utils.NormalizeL2(emb)
	return emb, nil
}

// EmbedBatch calls Embed for each text.
func (e *MockEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	return embedEach(ctx, texts, e.Embed)
}

// Dimensions returns the embedding dimension.
func (e *MockEmbedder) Dimensions() int {
	return e.dimensions
}

// Close is a no-op for MockEmbedder.
func (e *MockEmbedder) Close() error {
	return nil
}

// mockGrid is the side of the colour grid sampled by MockImageEmbedder.
const mockGrid = 4

// MockImageEmbedder embeds images by their average colour over a 4×4 grid, spread
// across the configured dimensions. Visually similar images get similar vectors.
type MockImageEmbedder struct {
	dimensions int
}

// NewMockImageEmbedder returns a deterministic image embedder.
func NewMockImageEmbedder(dimensions int) *MockImageEmbedder {
	if dimensions <= 0 {
		dimensions = 512
	}
	return &MockImageEmbedder{dimensions: dimensions}
}

// EmbedImage returns a unit-length embedding derived from the image's colour layout.
func (e *MockImageEmbedder) EmbedImage(ctx context.Context, img image.Image) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	small := ResizeSquare(img, mockGrid)
	features := make([]float32, 0, mockGrid*mockGrid*3)
	for i := 0; i < len(small.Pix); i += 4 {
		for c := 0; c < 3; c++ {
			features = append(features, float32(small.Pix[i+c])/255-0.5)
		}
	}

	emb := make([]float32, e.dimensions)
	for i := range emb {
		emb[i] = features[i%len(features)]
	}
	if allZero(emb) {
		emb[0] = 1
	}
	utils.NormalizeL2(emb)
	return emb, nil
}

// Dimensions returns the embedding dimension.
func (e *MockImageEmbedder) Dimensions() int {
	return e.dimensions
}

// Close is a no-op for MockImageEmbedder.
func (e *MockImageEmbedder) Close() error {
	return nil
}

func allZero(v []float32) bool {
	for _, x := range v {
		if x != 0 {
			return false
		}
	}
	return true
}
