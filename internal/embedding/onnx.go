//go:build cgo
// +build cgo

package embedding

import (
	"context"
	"fmt"
	"image"
	"sync"

	"github.com/hyperjump/shiori/pkg/utils"
	ort "github.com/yalue/onnxruntime_go"
)

var runtimeMu sync.Mutex

// InitRuntime initializes the ONNX runtime environment once. libraryPath overrides
// the shared library location when non-empty.
func InitRuntime(libraryPath string) error {
	runtimeMu.Lock()
	defer runtimeMu.Unlock()
	if ort.IsInitialized() {
		return nil
	}
	if libraryPath != "" {
		ort.SetSharedLibraryPath(libraryPath)
	}
	if err := ort.InitializeEnvironment(); err != nil {
		return fmt.Errorf("failed to initialize ONNX runtime: %w", err)
	}
	return nil
}

// ONNXEmbedder uses ONNX Runtime to produce text embeddings. It requires CGO and the onnxruntime shared library.
type ONNXEmbedder struct {
	session    *ort.AdvancedSession
	dimensions int
	maxTokens  int
	cache      *EmbeddingCache
	tokenizer  Tokenizer
	// Pre-allocated tensors for Run(); we update input data and read output.
	inputs       []*ort.Tensor[int64]
	inputKinds   []tokenInput
	outputTensor *ort.Tensor[float32]
	mu           sync.Mutex
}

// NewONNXEmbedder creates a text embedder for opts.ModelPath.
func NewONNXEmbedder(opts TextModelOptions) (*ONNXEmbedder, error) {
	opts = opts.withDefaults()
	if err := InitRuntime(opts.RuntimeLibraryPath); err != nil {
		return nil, err
	}
	kinds, err := parseTokenInputs(opts.InputNames)
	if err != nil {
		return nil, err
	}

	e := &ONNXEmbedder{
		dimensions: opts.Dimensions,
		maxTokens:  opts.MaxTokens,
		cache:      NewEmbeddingCache(opts.CacheSize),
		tokenizer:  opts.Tokenizer,
		inputKinds: kinds,
	}

	shape := ort.NewShape(1, int64(opts.MaxTokens))
	inputs := make([]ort.ArbitraryTensor, 0, len(kinds))
	for _, name := range opts.InputNames {
		t, err := ort.NewTensor(shape, make([]int64, opts.MaxTokens))
		if err != nil {
			e.Close()
			return nil, fmt.Errorf("failed to create %s tensor: %w", name, err)
		}
		e.inputs = append(e.inputs, t)
		inputs = append(inputs, t)
	}
	e.outputTensor, err = ort.NewTensor(ort.NewShape(1, int64(opts.Dimensions)), make([]float32, opts.Dimensions))
	if err != nil {
		e.Close()
		return nil, fmt.Errorf("failed to create output tensor: %w", err)
	}

	e.session, err = ort.NewAdvancedSession(
		opts.ModelPath,
		opts.InputNames,
		[]string{opts.OutputName},
		inputs,
		[]ort.ArbitraryTensor{e.outputTensor},
		nil,
	)
	if err != nil {
		e.Close()
		return nil, fmt.Errorf("failed to create ONNX session: %w", err)
	}
	return e, nil
}

// Embed returns the embedding for text, using cache when available.
func (e *ONNXEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if cached, ok := e.cache.Get(text); ok {
		return cached, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	inputIDs, attentionMask, tokenTypeIDs := e.tokenizer.Tokenize(text, e.maxTokens)
	for i, kind := range e.inputKinds {
		switch kind {
		case inputIDsKind:
			copy(e.inputs[i].GetData(), inputIDs)
		case attentionMaskKind:
			copy(e.inputs[i].GetData(), attentionMask)
		case tokenTypeIDsKind:
			copy(e.inputs[i].GetData(), tokenTypeIDs)
		}
	}

	if err := e.session.Run(); err != nil {
		return nil, fmt.Errorf("inference failed: %w", err)
	}

	embedding := make([]float32, e.dimensions)
	copy(embedding, e.outputTensor.GetData())
	utils.NormalizeL2(embedding)
	e.cache.Set(text, embedding)
	return embedding, nil
}

// EmbedBatch calls Embed for each text.
func (e *ONNXEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	return embedEach(ctx, texts, e.Embed)
}

// Dimensions returns the embedding dimension.
func (e *ONNXEmbedder) Dimensions() int {
	return e.dimensions
}

// Close destroys the session and tensors.
func (e *ONNXEmbedder) Close() error {
	var err error
	if e.session != nil {
		err = e.session.Destroy()
		e.session = nil
	}
	for _, t := range e.inputs {
		_ = t.Destroy()
	}
	e.inputs = nil
	if e.outputTensor != nil {
		_ = e.outputTensor.Destroy()
		e.outputTensor = nil
	}
	return err
}

// ONNXImageEmbedder runs a CLIP vision model over preprocessed pixel values.
type ONNXImageEmbedder struct {
	session      *ort.AdvancedSession
	dimensions   int
	imageSize    int
	pixelTensor  *ort.Tensor[float32]
	outputTensor *ort.Tensor[float32]
	mu           sync.Mutex
}

// NewONNXImageEmbedder creates an image embedder for opts.ModelPath.
func NewONNXImageEmbedder(opts VisionModelOptions) (*ONNXImageEmbedder, error) {
	opts = opts.withDefaults()
	if err := InitRuntime(opts.RuntimeLibraryPath); err != nil {
		return nil, err
	}

	e := &ONNXImageEmbedder{dimensions: opts.Dimensions, imageSize: opts.ImageSize}
	size := int64(opts.ImageSize)
	var err error
	e.pixelTensor, err = ort.NewTensor(ort.NewShape(1, 3, size, size), make([]float32, 3*opts.ImageSize*opts.ImageSize))
	if err != nil {
		return nil, fmt.Errorf("failed to create %s tensor: %w", opts.InputName, err)
	}
	e.outputTensor, err = ort.NewTensor(ort.NewShape(1, int64(opts.Dimensions)), make([]float32, opts.Dimensions))
	if err != nil {
		e.Close()
		return nil, fmt.Errorf("failed to create output tensor: %w", err)
	}

	e.session, err = ort.NewAdvancedSession(
		opts.ModelPath,
		[]string{opts.InputName},
		[]string{opts.OutputName},
		[]ort.ArbitraryTensor{e.pixelTensor},
		[]ort.ArbitraryTensor{e.outputTensor},
		nil,
	)
	if err != nil {
		e.Close()
		return nil, fmt.Errorf("failed to create ONNX vision session: %w", err)
	}
	return e, nil
}

// EmbedImage preprocesses img and returns its normalised embedding.
func (e *ONNXImageEmbedder) EmbedImage(ctx context.Context, img image.Image) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	pixels := PreprocessCLIP(img, e.imageSize)

	e.mu.Lock()
	defer e.mu.Unlock()

	copy(e.pixelTensor.GetData(), pixels)
	if err := e.session.Run(); err != nil {
		return nil, fmt.Errorf("vision inference failed: %w", err)
	}
	embedding := make([]float32, e.dimensions)
	copy(embedding, e.outputTensor.GetData())
	utils.NormalizeL2(embedding)
	return embedding, nil
}

// Dimensions returns the embedding dimension.
func (e *ONNXImageEmbedder) Dimensions() int {
	return e.dimensions
}

// Close destroys the session and tensors.
func (e *ONNXImageEmbedder) Close() error {
	var err error
	if e.session != nil {
		err = e.session.Destroy()
		e.session = nil
	}
	if e.pixelTensor != nil {
		_ = e.pixelTensor.Destroy()
		e.pixelTensor = nil
	}
	if e.outputTensor != nil {
		_ = e.outputTensor.Destroy()
		e.outputTensor = nil
	}
	return err
}
