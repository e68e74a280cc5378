// Package vector provides named similarity collections for paper chunks and images.
package vector

import "context"

// Collection names used by shiori.
const (
	CollectionPapers = "papers"
	CollectionImages = "images"
)

// Record is a stored embedding with its document text and string metadata.
type Record struct {
	ID        string
	Embedding []float32
	Content   string
	Metadata  map[string]string
}

// Match is a single similarity hit. Similarity is cosine similarity in [-1, 1].
type Match struct {
	ID         string
	Similarity float64
	Content    string
	Metadata   map[string]string
}

// Collection stores precomputed embeddings under unique IDs.
type Collection interface {
	Name() string
	// Upsert inserts records, replacing any existing record with the same ID.
	Upsert(ctx context.Context, records []Record) error
	// Query returns up to k matches whose metadata contains every pair in where,
	// ordered by descending similarity. k is clamped to the collection size.
	Query(ctx context.Context, embedding []float32, k int, where map[string]string) ([]Match, error)
	// Delete removes records matching where, or the given IDs when where is
	// empty. Deleting with neither is a no-op.
	Delete(ctx context.Context, where map[string]string, ids ...string) error
	Count() int
}

// Store opens named collections.
type Store interface {
	Collection(name string) (Collection, error)
	Close() error
}

func matchesWhere(metadata, where map[string]string) bool {
	for k, v := range where {
		if metadata[k] != v {
			return false
		}
	}
	return true
}

func copyMetadata(m map[string]string) map[string]string {
	if m == nil {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
