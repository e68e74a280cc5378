// Package keyword provides keyword (BM25) indexing and search over paper text.
package keyword

import (
	"context"
	"path/filepath"
	"strings"
	"unicode"
)

// SearchOptions optional parameters for keyword search. Nil means use defaults.
type SearchOptions struct {
	// TitleBoost multiplies the score contribution from matches in the title (filename) field.
	// Values > 1 make filename matches rank higher (e.g. 3.0).
	TitleBoost float64
	// Fuzzy enables typo-tolerant matching within Fuzziness edits (default 2).
	Fuzzy     bool
	Fuzziness int
}

// Doc is the text indexed for one paper.
type Doc struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// Index defines keyword search operations.
type Index interface {
	Index(ctx context.Context, id string, doc *Doc) error
	Search(ctx context.Context, query string, limit int, opts *SearchOptions) ([]*Result, error)
	Delete(ctx context.Context, id string) error
	// Suggest returns a corrected query built from indexed terms, or "" when every
	// term is known or has no close match.
	Suggest(query string) (string, error)
	DocCount() (uint64, error)
	Close() error
}

// Result is a single keyword search hit.
type Result struct {
	ID    string
	Score float64
}

// TitleFromFilename turns "attention_is-all_you_need.pdf" into "attention is all you need".
func TitleFromFilename(name string) string {
	base := strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
	base = strings.NewReplacer("_", " ", "-", " ").Replace(base)
	return strings.Join(strings.Fields(base), " ")
}

// tokenizeQuery splits query into lowercase letter/digit terms.
func tokenizeQuery(query string) []string {
	return strings.FieldsFunc(strings.ToLower(query), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
}
