package vector

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sort"
	"sync"

	"github.com/philippgille/chromem-go"
)

var errNoEmbedding = errors.New("records must carry precomputed embeddings")

// refuseEmbedding is the collection embedding func; shiori always embeds before storing.
func refuseEmbedding(context.Context, string) ([]float32, error) {
	return nil, errNoEmbedding
}

// ChromemStore is a Store backed by a chromem-go database. With a path the
// database persists every document to disk; without one it is in-memory.
type ChromemStore struct {
	db          *chromem.DB
	collections map[string]*ChromemCollection
	mu          sync.Mutex
}

// NewChromemStore opens (or creates) a chromem database at path.
func NewChromemStore(path string, compress bool) (*ChromemStore, error) {
	var db *chromem.DB
	if path == "" {
		db = chromem.NewDB()
	} else {
		var err error
		db, err = chromem.NewPersistentDB(path, compress)
		if err != nil {
			return nil, fmt.Errorf("failed to open vector store %s: %w", path, err)
		}
	}
	return &ChromemStore{db: db, collections: make(map[string]*ChromemCollection)}, nil
}

// Collection returns the named collection, creating it if needed.
func (s *ChromemStore) Collection(name string) (Collection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.collections[name]; ok {
		return c, nil
	}
	c, err := s.db.GetOrCreateCollection(name, map[string]string{"space": "cosine"}, refuseEmbedding)
	if err != nil {
		return nil, fmt.Errorf("failed to open collection %s: %w", name, err)
	}
	wrapped := &ChromemCollection{c: c}
	s.collections[name] = wrapped
	return wrapped, nil
}

// Close is a no-op; chromem writes documents as they are added.
func (s *ChromemStore) Close() error {
	return nil
}

// ChromemCollection adapts a chromem collection to Collection.
type ChromemCollection struct {
	c *chromem.Collection
}

// Name returns the collection name.
func (c *ChromemCollection) Name() string {
	return c.c.Name
}

// Upsert adds records; chromem replaces documents with an existing ID.
func (c *ChromemCollection) Upsert(ctx context.Context, records []Record) error {
	if len(records) == 0 {
		return nil
	}
	docs := make([]chromem.Document, len(records))
	for i, r := range records {
		if len(r.Embedding) == 0 {
			return fmt.Errorf("record %s: %w", r.ID, errNoEmbedding)
		}
		docs[i] = chromem.Document{
			ID:        r.ID,
			Content:   r.Content,
			Metadata:  copyMetadata(r.Metadata),
			Embedding: r.Embedding,
		}
	}
	if err := c.c.AddDocuments(ctx, docs, runtime.NumCPU()); err != nil {
		return fmt.Errorf("failed to upsert into %s: %w", c.c.Name, err)
	}
	return nil
}

// Query returns the k most similar documents matching where.
func (c *ChromemCollection) Query(ctx context.Context, embedding []float32, k int, where map[string]string) ([]Match, error) {
	n := c.c.Count()
	if k <= 0 || n == 0 {
		return nil, nil
	}
	if k > n {
		k = n
	}
	results, err := c.c.QueryEmbedding(ctx, embedding, k, where, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", c.c.Name, err)
	}
	matches := make([]Match, len(results))
	for i, r := range results {
		matches[i] = Match{
			ID:         r.ID,
			Similarity: float64(r.Similarity),
			Content:    r.Content,
			Metadata:   r.Metadata,
		}
	}
	sort.SliceStable(matches, func(i, j int) bool { return matches[i].Similarity > matches[j].Similarity })
	return matches, nil
}

// Delete removes documents matching where, or ids when where is empty.
func (c *ChromemCollection) Delete(ctx context.Context, where map[string]string, ids ...string) error {
	if len(where) == 0 && len(ids) == 0 {
		return nil
	}
	if err := c.c.Delete(ctx, where, nil, ids...); err != nil {
		return fmt.Errorf("failed to delete from %s: %w", c.c.Name, err)
	}
	return nil
}

// Count returns the number of documents.
func (c *ChromemCollection) Count() int {
	return c.c.Count()
}
