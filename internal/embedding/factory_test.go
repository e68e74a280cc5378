package embedding

import (
	"path/filepath"
	"testing"

	"github.com/hyperjump/shiori/internal/config"
	"go.uber.org/zap"
)

func TestNewTextEmbedder_mock(t *testing.T) {
	cfg := config.EmbeddingConfig{Text: config.EncoderConfig{Provider: ProviderMock, Dimensions: 16}}
	e, err := NewTextEmbedder(cfg)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := e.(*MockEmbedder); !ok {
		t.Errorf("got %T, want *MockEmbedder", e)
	}
	if e.Dimensions() != 16 {
		t.Errorf("Dimensions = %d", e.Dimensions())
	}
}

func TestNewTextEmbedder_ollama(t *testing.T) {
	cfg := config.EmbeddingConfig{Text: config.EncoderConfig{Provider: ProviderOllama, OllamaModel: "all-minilm", Dimensions: 384}}
	e, err := NewTextEmbedder(cfg)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := e.(*OllamaEmbedder); !ok {
		t.Errorf("got %T, want *OllamaEmbedder", e)
	}
}

func TestNewTextEmbedder_onnxFallsBackToMock(t *testing.T) {
	dir := t.TempDir()
	cfg := config.EmbeddingConfig{
		RuntimeLibraryPath: filepath.Join(dir, "missing-onnxruntime.so"),
		Text: config.EncoderConfig{
			Provider:      ProviderONNX,
			ModelPath:     filepath.Join(dir, "missing.onnx"),
			TokenizerPath: filepath.Join(dir, "missing.json"),
			Dimensions:    384,
		},
	}
	e, err := NewTextEmbedder(cfg, WithLogger(zap.NewNop()))
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := e.(*MockEmbedder); !ok {
		t.Errorf("got %T, want *MockEmbedder fallback", e)
	}
}

func TestNewTextEmbedder_unknownProvider(t *testing.T) {
	cfg := config.EmbeddingConfig{Text: config.EncoderConfig{Provider: "tensorflow"}}
	if _, err := NewTextEmbedder(cfg); err == nil {
		t.Error("expected error for unknown provider")
	}
}

func TestNewCLIP(t *testing.T) {
	cfg := config.EmbeddingConfig{CLIP: config.EncoderConfig{Provider: ProviderMock, Dimensions: 512}}
	text, img, err := NewCLIP(cfg)
	if err != nil {
		t.Fatal(err)
	}
	if text.Dimensions() != 512 || img.Dimensions() != 512 {
		t.Errorf("dimensions = %d/%d", text.Dimensions(), img.Dimensions())
	}

	dir := t.TempDir()
	cfg = config.EmbeddingConfig{
		RuntimeLibraryPath: filepath.Join(dir, "missing-onnxruntime.so"),
		CLIP: config.EncoderConfig{
			Provider:   ProviderONNX,
			ModelPath:  filepath.Join(dir, "text.onnx"),
			VisionPath: filepath.Join(dir, "vision.onnx"),
			Dimensions: 512,
		},
	}
	text, img, err = NewCLIP(cfg)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := img.(*MockImageEmbedder); !ok {
		t.Errorf("got %T, want *MockImageEmbedder fallback", img)
	}
	if _, ok := text.(*MockEmbedder); !ok {
		t.Errorf("got %T, want *MockEmbedder fallback", text)
	}

	cfg.CLIP.Provider = ProviderOllama
	if _, _, err := NewCLIP(cfg); err == nil {
		t.Error("expected error: ollama cannot embed images")
	}
}
