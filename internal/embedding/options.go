package embedding

import "fmt"

// TextModelOptions describes an ONNX text encoder.
type TextModelOptions struct {
	RuntimeLibraryPath string
	ModelPath          string
	Tokenizer          Tokenizer
	InputNames         []string
	OutputName         string
	Dimensions         int
	MaxTokens          int
	CacheSize          int
}

func (o TextModelOptions) withDefaults() TextModelOptions {
	if o.Tokenizer == nil {
		o.Tokenizer = &SimpleTokenizer{}
	}
	if len(o.InputNames) == 0 {
		o.InputNames = []string{"input_ids", "attention_mask", "token_type_ids"}
	}
	if o.OutputName == "" {
		o.OutputName = "output"
	}
	if o.Dimensions <= 0 {
		o.Dimensions = 384
	}
	if o.MaxTokens <= 0 {
		o.MaxTokens = 256
	}
	return o
}

// VisionModelOptions describes an ONNX image encoder taking [1,3,size,size] pixel values.
type VisionModelOptions struct {
	RuntimeLibraryPath string
	ModelPath          string
	InputName          string
	OutputName         string
	Dimensions         int
	ImageSize          int
}

func (o VisionModelOptions) withDefaults() VisionModelOptions {
	if o.InputName == "" {
		o.InputName = "pixel_values"
	}
	if o.OutputName == "" {
		o.OutputName = "image_embeds"
	}
	if o.Dimensions <= 0 {
		o.Dimensions = 512
	}
	if o.ImageSize <= 0 {
		o.ImageSize = 224
	}
	return o
}

type tokenInput int

const (
	inputIDsKind tokenInput = iota
	attentionMaskKind
	tokenTypeIDsKind
)

// parseTokenInputs maps model input names to the tokenizer output feeding each one.
func parseTokenInputs(names []string) ([]tokenInput, error) {
	kinds := make([]tokenInput, len(names))
	for i, name := range names {
		switch name {
		case "input_ids":
			kinds[i] = inputIDsKind
		case "attention_mask":
			kinds[i] = attentionMaskKind
		case "token_type_ids":
			kinds[i] = tokenTypeIDsKind
		default:
			return nil, fmt.Errorf("unsupported model input %q", name)
		}
	}
	return kinds, nil
}
