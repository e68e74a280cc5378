package models

import "fmt"

// SearchMode selects how paper queries are answered.
type SearchMode string

const (
	// ModeSemantic ranks by embedding similarity only.
	ModeSemantic SearchMode = "semantic"
	// ModeKeyword ranks by full-text relevance only.
	ModeKeyword SearchMode = "keyword"
	// ModeHybrid fuses keyword and semantic scores.
	ModeHybrid SearchMode = "hybrid"
)

// MaxLimit caps the number of results a single query may request.
const MaxLimit = 100

// SearchQuery represents a search request.
type SearchQuery struct {
	Query    string     `json:"query"`
	Limit    int        `json:"limit,omitempty"`
	Mode     SearchMode `json:"mode,omitempty"`
	MinScore float64    `json:"min_score,omitempty"`
	Fuzzy    bool       `json:"fuzzy,omitempty"`
}

// Validate ensures the search query has valid fields and sets defaults.
// defaultLimit is used when Limit is unset; an unknown mode is an error.
func (q *SearchQuery) Validate(defaultLimit int) error {
	if q.Query == "" {
		return fmt.Errorf("query cannot be empty")
	}
	if q.Limit <= 0 {
		q.Limit = defaultLimit
	}
	if q.Limit <= 0 {
		q.Limit = 3
	}
	if q.Limit > MaxLimit {
		q.Limit = MaxLimit
	}
	switch q.Mode {
	case "":
		q.Mode = ModeSemantic
	case ModeSemantic, ModeKeyword, ModeHybrid:
	default:
		return fmt.Errorf("unknown search mode %q (use semantic, keyword, or hybrid)", q.Mode)
	}
	return nil
}
