package keyword

import (
	"context"
	"fmt"
	"os"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
	"github.com/blevesearch/bleve/v2/mapping"
	blevequery "github.com/blevesearch/bleve/v2/search/query"
)

// BleveIndex implements Index using Bleve.
type BleveIndex struct {
	index bleve.Index
}

func newMapping() mapping.IndexMapping {
	im := bleve.NewIndexMapping()

	docMapping := bleve.NewDocumentMapping()
	textFieldMapping := bleve.NewTextFieldMapping()
	// Standard analyzer (lowercase + tokenize, no stemming) so "bayes" matches "Bayes"
	// without the English stemmer turning "Bayesian" into "bayesi".
	textFieldMapping.Analyzer = standard.Name
	docMapping.AddFieldMappingsAt("content", textFieldMapping)
	docMapping.AddFieldMappingsAt("title", textFieldMapping)
	im.AddDocumentMapping("paper", docMapping)
	im.DefaultType = "paper"
	im.DefaultMapping = docMapping
	return im
}

// NewBleveIndex creates or opens a Bleve index at path. An empty path creates an
// in-memory index. If you change the mapping, remove the index directory and re-add papers.
func NewBleveIndex(path string) (*BleveIndex, error) {
	if path == "" {
		index, err := bleve.NewMemOnly(newMapping())
		if err != nil {
			return nil, fmt.Errorf("failed to create in-memory Bleve index: %w", err)
		}
		return &BleveIndex{index: index}, nil
	}

	if _, err := os.Stat(path); err == nil {
		index, openErr := bleve.Open(path)
		if openErr != nil {
			return nil, fmt.Errorf("failed to open Bleve index: %w", openErr)
		}
		return &BleveIndex{index: index}, nil
	}

	index, err := bleve.New(path, newMapping())
	if err != nil {
		return nil, fmt.Errorf("failed to create Bleve index: %w", err)
	}
	return &BleveIndex{index: index}, nil
}

// Index indexes a paper's title and text by id, replacing any previous version.
func (b *BleveIndex) Index(ctx context.Context, id string, doc *Doc) error {
	if err := b.index.Index(id, doc); err != nil {
		return fmt.Errorf("failed to index %s: %w", id, err)
	}
	return nil
}

// Search returns up to limit results ordered by score.
func (b *BleveIndex) Search(ctx context.Context, query string, limit int, opts *SearchOptions) ([]*Result, error) {
	if limit <= 0 || len(tokenizeQuery(query)) == 0 {
		return nil, nil
	}
	titleBoost := 1.0
	fuzzy := false
	fuzziness := 2
	if opts != nil {
		if opts.TitleBoost > 0 {
			titleBoost = opts.TitleBoost
		}
		fuzzy = opts.Fuzzy
		if opts.Fuzziness > 0 {
			fuzziness = opts.Fuzziness
		}
	}

	title := b.fieldQuery(query, "title", fuzzy, fuzziness)
	title.SetBoost(titleBoost)
	content := b.fieldQuery(query, "content", fuzzy, fuzziness)

	req := bleve.NewSearchRequestOptions(bleve.NewDisjunctionQuery(title, content), limit, 0, false)
	results, err := b.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("Bleve search failed: %w", err)
	}
	out := make([]*Result, len(results.Hits))
	for i, hit := range results.Hits {
		out[i] = &Result{ID: hit.ID, Score: hit.Score}
	}
	return out, nil
}

type boostableQuery interface {
	blevequery.Query
	SetBoost(b float64)
}

// fieldQuery builds a match query, or an OR of per-term fuzzy queries, on field.
func (b *BleveIndex) fieldQuery(query, field string, fuzzy bool, fuzziness int) boostableQuery {
	if !fuzzy {
		mq := bleve.NewMatchQuery(query)
		mq.SetField(field)
		return mq
	}
	terms := tokenizeQuery(query)
	queries := make([]blevequery.Query, 0, len(terms))
	for _, term := range terms {
		fq := bleve.NewFuzzyQuery(term)
		fq.SetFuzziness(fuzziness)
		fq.SetField(field)
		queries = append(queries, fq)
	}
	return bleve.NewDisjunctionQuery(queries...)
}

// Delete removes a paper from the index.
func (b *BleveIndex) Delete(ctx context.Context, id string) error {
	return b.index.Delete(id)
}

// Close closes the Bleve index.
func (b *BleveIndex) Close() error {
	return b.index.Close()
}

// DocCount returns the total number of papers in the index.
func (b *BleveIndex) DocCount() (uint64, error) {
	return b.index.DocCount()
}

// termFrequencies returns the document frequency of every indexed title and content term.
func (b *BleveIndex) termFrequencies() (map[string]uint64, error) {
	freqs := make(map[string]uint64)
	for _, field := range []string{"content", "title"} {
		dict, err := b.index.FieldDict(field)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s terms: %w", field, err)
		}
		for {
			entry, err := dict.Next()
			if err != nil || entry == nil {
				break
			}
			if entry.Count > freqs[entry.Term] {
				freqs[entry.Term] = entry.Count
			}
		}
		_ = dict.Close()
	}
	return freqs, nil
}
