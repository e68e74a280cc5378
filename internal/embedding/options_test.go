package embedding

import "testing"

func TestParseTokenInputs(t *testing.T) {
	kinds, err := parseTokenInputs([]string{"attention_mask", "input_ids"})
	if err != nil {
		t.Fatal(err)
	}
	if kinds[0] != attentionMaskKind || kinds[1] != inputIDsKind {
		t.Errorf("kinds = %v", kinds)
	}
	if _, err := parseTokenInputs([]string{"pixel_values"}); err == nil {
		t.Error("expected error for unsupported input name")
	}
}

func TestTextModelOptions_withDefaults(t *testing.T) {
	o := TextModelOptions{}.withDefaults()
	if o.Dimensions != 384 || o.MaxTokens != 256 || o.OutputName != "output" {
		t.Errorf("unexpected defaults: %+v", o)
	}
	if len(o.InputNames) != 3 {
		t.Errorf("InputNames = %v", o.InputNames)
	}
	if _, ok := o.Tokenizer.(*SimpleTokenizer); !ok {
		t.Errorf("Tokenizer = %T", o.Tokenizer)
	}

	o = TextModelOptions{Dimensions: 512, InputNames: []string{"input_ids"}}.withDefaults()
	if o.Dimensions != 512 || len(o.InputNames) != 1 {
		t.Errorf("explicit values overwritten: %+v", o)
	}
}

func TestVisionModelOptions_withDefaults(t *testing.T) {
	o := VisionModelOptions{}.withDefaults()
	if o.InputName != "pixel_values" || o.OutputName != "image_embeds" || o.Dimensions != 512 || o.ImageSize != 224 {
		t.Errorf("unexpected defaults: %+v", o)
	}
}
