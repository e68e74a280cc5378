package embedding

import (
	"fmt"

	"github.com/hyperjump/shiori/internal/config"
	"go.uber.org/zap"
)

// Provider names accepted in encoder configuration.
const (
	ProviderONNX   = "onnx"
	ProviderOllama = "ollama"
	ProviderMock   = "mock"
)

// Option configures encoder construction.
type Option func(*factory)

type factory struct {
	logger *zap.Logger
}

// WithLogger sets the logger used to report fallbacks.
func WithLogger(l *zap.Logger) Option {
	return func(f *factory) {
		f.logger = l
	}
}

func newFactory(opts []Option) *factory {
	f := &factory{logger: zap.NewNop()}
	for _, o := range opts {
		o(f)
	}
	return f
}

// NewTextEmbedder builds the paper/topic encoder from cfg.Text. When the ONNX model
// cannot be loaded it falls back to a MockEmbedder and logs a warning.
func NewTextEmbedder(cfg config.EmbeddingConfig, opts ...Option) (Embedder, error) {
	f := newFactory(opts)
	enc := cfg.Text

	switch enc.Provider {
	case ProviderMock:
		return NewMockEmbedder(enc.Dimensions), nil
	case ProviderOllama:
		return NewOllamaEmbedder(enc.OllamaModel, enc.OllamaURL, enc.Dimensions, cfg.CacheSize), nil
	case ProviderONNX, "":
		e, err := NewONNXEmbedder(f.textOptions(cfg, enc))
		if err != nil {
			f.logger.Warn("ONNX text embedder not available, using mock embedder",
				zap.String("model", enc.ModelPath), zap.Error(err))
			return NewMockEmbedder(enc.Dimensions), nil
		}
		return e, nil
	default:
		return nil, fmt.Errorf("unknown text embedding provider %q", enc.Provider)
	}
}

// NewCLIP builds the paired CLIP text and image encoders from cfg.CLIP. Both fall back
// to mocks together so that text queries and images stay in one space.
func NewCLIP(cfg config.EmbeddingConfig, opts ...Option) (Embedder, ImageEmbedder, error) {
	f := newFactory(opts)
	enc := cfg.CLIP

	switch enc.Provider {
	case ProviderMock:
		return NewMockEmbedder(enc.Dimensions), NewMockImageEmbedder(enc.Dimensions), nil
	case ProviderONNX, "":
		text, err := NewONNXEmbedder(f.textOptions(cfg, enc))
		if err != nil {
			f.logger.Warn("ONNX CLIP text encoder not available, using mock encoders",
				zap.String("model", enc.ModelPath), zap.Error(err))
			return NewMockEmbedder(enc.Dimensions), NewMockImageEmbedder(enc.Dimensions), nil
		}
		vision, err := NewONNXImageEmbedder(VisionModelOptions{
			RuntimeLibraryPath: cfg.RuntimeLibraryPath,
			ModelPath:          enc.VisionPath,
			OutputName:         enc.VisionOutput,
			Dimensions:         enc.Dimensions,
			ImageSize:          enc.ImageSize,
		})
		if err != nil {
			_ = text.Close()
			f.logger.Warn("ONNX CLIP vision encoder not available, using mock encoders",
				zap.String("model", enc.VisionPath), zap.Error(err))
			return NewMockEmbedder(enc.Dimensions), NewMockImageEmbedder(enc.Dimensions), nil
		}
		return text, vision, nil
	default:
		return nil, nil, fmt.Errorf("unsupported CLIP provider %q", enc.Provider)
	}
}

func (f *factory) textOptions(cfg config.EmbeddingConfig, enc config.EncoderConfig) TextModelOptions {
	tok, err := LoadTokenizer(enc.TokenizerPath)
	if err != nil {
		f.logger.Warn("tokenizer not available, using simple tokenizer",
			zap.String("path", enc.TokenizerPath), zap.Error(err))
		tok = &SimpleTokenizer{}
	}
	return TextModelOptions{
		RuntimeLibraryPath: cfg.RuntimeLibraryPath,
		ModelPath:          enc.ModelPath,
		Tokenizer:          tok,
		InputNames:         enc.InputNames,
		OutputName:         enc.OutputName,
		Dimensions:         enc.Dimensions,
		MaxTokens:          enc.MaxTokens,
		CacheSize:          cfg.CacheSize,
	}
}
