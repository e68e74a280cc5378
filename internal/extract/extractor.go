// Package extract provides text extraction from paper files.
package extract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Extracted is the text pulled from a paper and the number of pages it came from.
type Extracted struct {
	Text  string
	Pages int
}

// Extractor extracts plain text from paper files.
type Extractor struct {
	maxPages int
}

// ExtractorOption configures an Extractor.
type ExtractorOption func(*Extractor)

// WithMaxPages limits PDF extraction to the first n pages. n <= 0 reads every page.
func WithMaxPages(n int) ExtractorOption {
	return func(e *Extractor) { e.maxPages = n }
}

// NewExtractor returns a new Extractor.
func NewExtractor(opts ...ExtractorOption) *Extractor {
	e := &Extractor{}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Supported reports whether ext (with leading dot, any case) can be extracted.
func Supported(ext string) bool {
	switch strings.ToLower(ext) {
	case ".pdf", ".txt", ".md":
		return true
	}
	return false
}

// Extract reads the file at path and returns its text content.
// PDFs are read up to the configured page limit; .txt and .md are returned as-is
// (UTF-8 sanitised). Other formats are rejected.
func (e *Extractor) Extract(path string) (*Extracted, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if !Supported(ext) {
		return nil, fmt.Errorf("unsupported paper format %q", ext)
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	return e.ExtractBytes(content, ext)
}

// ExtractBytes extracts text from content based on the given extension.
// ext should include the leading dot (e.g. ".pdf").
func (e *Extractor) ExtractBytes(content []byte, ext string) (*Extracted, error) {
	switch strings.ToLower(ext) {
	case ".pdf":
		return extractPDF(content, e.maxPages)
	case ".txt", ".md":
		return &Extracted{Text: extractPlain(content), Pages: 1}, nil
	default:
		return nil, fmt.Errorf("unsupported paper format %q", ext)
	}
}
