package models

// ResultKind tells which collection a response came from.
type ResultKind string

const (
	KindPaper ResultKind = "paper"
	KindImage ResultKind = "image"
)

// SearchResult represents a single search hit.
type SearchResult struct {
	Rank          int     `json:"rank"`
	ID            string  `json:"id"`
	Filename      string  `json:"filename"`
	Path          string  `json:"path"`
	Topic         string  `json:"topic,omitempty"`
	Score         float64 `json:"score"`
	KeywordScore  float64 `json:"keyword_score,omitempty"`
	SemanticScore float64 `json:"semantic_score,omitempty"`
	Preview       string  `json:"preview,omitempty"`
}

// SearchResponse is the response for a search request.
type SearchResponse struct {
	Kind       ResultKind      `json:"kind"`
	Query      string          `json:"query"`
	Mode       SearchMode      `json:"mode,omitempty"`
	Results    []*SearchResult `json:"results"`
	Total      int             `json:"total"`
	QueryTime  int64           `json:"query_time_ms"`
	// Suggestion is a spelling-corrected query offered when keyword search found nothing.
	Suggestion string          `json:"suggestion,omitempty"`
}
