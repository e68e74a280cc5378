package embedding

import (
	"fmt"
	"hash/fnv"
	"strings"

	"github.com/sugarme/tokenizer"
	"github.com/sugarme/tokenizer/pretrained"
)

// Tokenizer produces fixed-length model inputs (input_ids, attention_mask, token_type_ids).
type Tokenizer interface {
	Tokenize(text string, maxTokens int) (inputIDs, attentionMask, tokenTypeIDs []int64)
}

// SimpleTokenizer is a word-split tokenizer with hash-based token IDs (for testing or fallback).
type SimpleTokenizer struct{}

// Tokenize splits text into words and produces padded token IDs up to maxTokens.
func (t *SimpleTokenizer) Tokenize(text string, maxTokens int) (inputIDs, attentionMask, tokenTypeIDs []int64) {
	if maxTokens <= 0 {
		maxTokens = 256
	}
	inputIDs = make([]int64, maxTokens)
	attentionMask = make([]int64, maxTokens)
	tokenTypeIDs = make([]int64, maxTokens)

	inputIDs[0] = 101 // [CLS]
	attentionMask[0] = 1

	pos := 1
	for _, word := range SplitWords(strings.ToLower(text)) {
		if pos >= maxTokens-1 {
			break
		}
		inputIDs[pos] = int64(HashString(word)%30000) + 1000
		attentionMask[pos] = 1
		pos++
	}
	if pos < maxTokens {
		inputIDs[pos] = 102 // [SEP]
		attentionMask[pos] = 1
	}
	return inputIDs, attentionMask, tokenTypeIDs
}

// HFTokenizer wraps a HuggingFace tokenizer.json. Sequences longer than maxTokens keep
// their final special token so pooled outputs still see the end-of-text marker.
type HFTokenizer struct {
	tk *tokenizer.Tokenizer
}

// NewHFTokenizer loads a tokenizer.json file.
func NewHFTokenizer(path string) (*HFTokenizer, error) {
	tk, err := pretrained.FromFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load tokenizer %s: %w", path, err)
	}
	return &HFTokenizer{tk: tk}, nil
}

// Tokenize encodes text with special tokens, truncating and zero-padding to maxTokens.
// Encoding failures fall back to SimpleTokenizer output.
func (t *HFTokenizer) Tokenize(text string, maxTokens int) (inputIDs, attentionMask, tokenTypeIDs []int64) {
	if maxTokens <= 0 {
		maxTokens = 256
	}
	en, err := t.tk.EncodeSingle(text, true)
	if err != nil || len(en.Ids) == 0 {
		return (&SimpleTokenizer{}).Tokenize(text, maxTokens)
	}
	return fitTokens(en.Ids, en.AttentionMask, en.TypeIds, maxTokens)
}

// fitTokens truncates or pads encoded sequences to exactly maxTokens entries.
func fitTokens(ids, mask, typeIDs []int, maxTokens int) (inputIDs, attentionMask, tokenTypeIDs []int64) {
	inputIDs = make([]int64, maxTokens)
	attentionMask = make([]int64, maxTokens)
	tokenTypeIDs = make([]int64, maxTokens)

	n := len(ids)
	truncated := n > maxTokens
	if truncated {
		n = maxTokens
	}
	for i := 0; i < n; i++ {
		inputIDs[i] = int64(ids[i])
		if i < len(mask) {
			attentionMask[i] = int64(mask[i])
		} else {
			attentionMask[i] = 1
		}
		if i < len(typeIDs) {
			tokenTypeIDs[i] = int64(typeIDs[i])
		}
	}
	if truncated {
		inputIDs[n-1] = int64(ids[len(ids)-1])
	}
	return inputIDs, attentionMask, tokenTypeIDs
}

// LoadTokenizer returns an HFTokenizer for path, or SimpleTokenizer when path is empty.
func LoadTokenizer(path string) (Tokenizer, error) {
	if path == "" {
		return &SimpleTokenizer{}, nil
	}
	return NewHFTokenizer(path)
}

// SplitWords splits text on whitespace and returns non-empty words.
func SplitWords(text string) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}
	return words
}

// HashString returns a deterministic non-negative hash for use as a simple token ID.
func HashString(s string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(s))
	return int(h.Sum32())
}
