package vector

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/hyperjump/shiori/pkg/utils"
)

// MemoryStore is an ephemeral Store using brute-force inner product search.
// Suitable for tests and one-off runs.
type MemoryStore struct {
	collections map[string]*MemoryCollection
	mu          sync.Mutex
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{collections: make(map[string]*MemoryCollection)}
}

// Collection returns the named collection, creating it if needed.
func (s *MemoryStore) Collection(name string) (Collection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.collections[name]
	if !ok {
		c = &MemoryCollection{name: name, index: make(map[string]int)}
		s.collections[name] = c
	}
	return c, nil
}

// Close is a no-op for MemoryStore.
func (s *MemoryStore) Close() error {
	return nil
}

// MemoryCollection keeps normalized embeddings in insertion order.
type MemoryCollection struct {
	name    string
	records []Record
	index   map[string]int
	mu      sync.RWMutex
}

// Name returns the collection name.
func (m *MemoryCollection) Name() string {
	return m.name
}

// Upsert inserts or replaces records. All embeddings in a collection must share one dimension.
func (m *MemoryCollection) Upsert(ctx context.Context, records []Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range records {
		if r.ID == "" {
			return fmt.Errorf("record ID is empty")
		}
		if len(r.Embedding) == 0 {
			return fmt.Errorf("record %s: %w", r.ID, errNoEmbedding)
		}
		if len(m.records) > 0 && len(m.records[0].Embedding) != len(r.Embedding) {
			return fmt.Errorf("vector dimension mismatch: got %d, expected %d", len(r.Embedding), len(m.records[0].Embedding))
		}
		vec := make([]float32, len(r.Embedding))
		copy(vec, r.Embedding)
		utils.NormalizeL2(vec)
		stored := Record{ID: r.ID, Embedding: vec, Content: r.Content, Metadata: copyMetadata(r.Metadata)}
		if i, ok := m.index[r.ID]; ok {
			m.records[i] = stored
			continue
		}
		m.index[r.ID] = len(m.records)
		m.records = append(m.records, stored)
	}
	return nil
}

// Query returns the top-k records by inner product (normalized vectors, so cosine similarity).
func (m *MemoryCollection) Query(ctx context.Context, embedding []float32, k int, where map[string]string) ([]Match, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if k <= 0 || len(m.records) == 0 {
		return nil, nil
	}
	if dim := len(m.records[0].Embedding); len(embedding) != dim {
		return nil, fmt.Errorf("query dimension mismatch: got %d, expected %d", len(embedding), dim)
	}
	query := make([]float32, len(embedding))
	copy(query, embedding)
	utils.NormalizeL2(query)

	matches := make([]Match, 0, len(m.records))
	for _, r := range m.records {
		if !matchesWhere(r.Metadata, where) {
			continue
		}
		var dot float64
		for j := range query {
			dot += float64(query[j]) * float64(r.Embedding[j])
		}
		matches = append(matches, Match{ID: r.ID, Similarity: dot, Content: r.Content, Metadata: copyMetadata(r.Metadata)})
	}
	sort.SliceStable(matches, func(i, j int) bool { return matches[i].Similarity > matches[j].Similarity })
	if k < len(matches) {
		matches = matches[:k]
	}
	return matches, nil
}

// Delete removes records matching where, or the given ids when where is empty,
// by rebuilding the slice.
func (m *MemoryCollection) Delete(ctx context.Context, where map[string]string, ids ...string) error {
	if len(where) == 0 && len(ids) == 0 {
		return nil
	}
	removeSet := make(map[string]bool, len(ids))
	for _, id := range ids {
		removeSet[id] = true
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := make([]Record, 0, len(m.records))
	index := make(map[string]int, len(m.records))
	for _, r := range m.records {
		remove := removeSet[r.ID]
		if len(where) > 0 {
			remove = matchesWhere(r.Metadata, where)
		}
		if remove {
			continue
		}
		index[r.ID] = len(kept)
		kept = append(kept, r)
	}
	m.records = kept
	m.index = index
	return nil
}

// Count returns the number of records.
func (m *MemoryCollection) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.records)
}
