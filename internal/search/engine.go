package search

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hyperjump/shiori/internal/config"
	"github.com/hyperjump/shiori/internal/embedding"
	"github.com/hyperjump/shiori/internal/indexer"
	"github.com/hyperjump/shiori/internal/keyword"
	"github.com/hyperjump/shiori/internal/models"
	"github.com/hyperjump/shiori/internal/storage"
	"github.com/hyperjump/shiori/internal/vector"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Engine answers paper queries (semantic, keyword or hybrid) and text-to-image queries.
type Engine struct {
	catalog      storage.Catalog
	textEmbedder embedding.Embedder
	clipEmbedder embedding.Embedder
	papers       vector.Collection
	images       vector.Collection
	keywordIndex keyword.Index // optional
	papersCfg    config.PapersConfig
	imagesCfg    config.ImagesConfig
	logger       *zap.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets a logger for debug output.
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithKeywordIndex enables keyword and hybrid paper search.
func WithKeywordIndex(k keyword.Index) Option {
	return func(e *Engine) { e.keywordIndex = k }
}

// NewEngine creates a search engine. textEmbedder must be the encoder papers were
// indexed with; clipEmbedder is the text half of the CLIP encoder used for images.
func NewEngine(
	catalog storage.Catalog,
	textEmbedder, clipEmbedder embedding.Embedder,
	papers, images vector.Collection,
	cfg *config.Config,
	opts ...Option,
) *Engine {
	e := &Engine{
		catalog:      catalog,
		textEmbedder: textEmbedder,
		clipEmbedder: clipEmbedder,
		papers:       papers,
		images:       images,
		papersCfg:    cfg.Papers,
		imagesCfg:    cfg.Images,
		logger:       zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// SearchPapers returns the best matching papers, one result per paper.
func (e *Engine) SearchPapers(ctx context.Context, query *models.SearchQuery) (*models.SearchResponse, error) {
	startTime := time.Now()
	if err := ProcessQuery(query, e.papersCfg.ResultLimit); err != nil {
		return nil, err
	}
	if query.Mode != models.ModeSemantic && e.keywordIndex == nil {
		return nil, fmt.Errorf("%s search needs a keyword index", query.Mode)
	}

	keywordWeight, semanticWeight := e.weights(query.Mode)
	candidates := query.Limit * max(e.papersCfg.CandidateFactor, 1)

	var (
		keywordResults []*keyword.Result
		chunkMatches   []vector.Match
	)
	g, gctx := errgroup.WithContext(ctx)
	if keywordWeight > 0 {
		g.Go(func() error {
			opts := &keyword.SearchOptions{TitleBoost: 2, Fuzzy: query.Fuzzy}
			results, err := e.keywordIndex.Search(gctx, query.Query, candidates, opts)
			if err != nil {
				return fmt.Errorf("keyword search failed: %w", err)
			}
			keywordResults = results
			return nil
		})
	}
	if semanticWeight > 0 {
		g.Go(func() error {
			queryEmbedding, err := e.textEmbedder.Embed(gctx, query.Query)
			if err != nil {
				return fmt.Errorf("embedding failed: %w", err)
			}
			matches, err := e.queryChunks(gctx, queryEmbedding, candidates, query.Limit)
			if err != nil {
				return fmt.Errorf("vector search failed: %w", err)
			}
			chunkMatches = matches
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	keywordScores := NormalizeKeywordScores(keywordResults)
	semanticScores := AggregateByPaper(chunkMatches, indexer.MetaPaperID)
	fused := Fuse(keywordScores, semanticScores, keywordWeight, semanticWeight)

	if query.MinScore > 0 {
		filtered := fused[:0]
		for _, r := range fused {
			if r.Score >= query.MinScore {
				filtered = append(filtered, r)
			}
		}
		fused = filtered
	}

	ids := make([]string, len(fused))
	for i, r := range fused {
		ids[i] = r.PaperID
	}
	papers, err := e.catalog.GetPapers(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load papers: %w", err)
	}

	response := &models.SearchResponse{
		Kind:    models.KindPaper,
		Query:   query.Query,
		Mode:    query.Mode,
		Results: make([]*models.SearchResult, 0, query.Limit),
	}
	for _, r := range fused {
		paper, ok := papers[r.PaperID]
		if !ok {
			e.logger.Debug("search dropping uncatalogued paper", zap.String("paper_id", r.PaperID))
			continue
		}
		response.Total++
		if len(response.Results) == query.Limit {
			continue
		}
		response.Results = append(response.Results, &models.SearchResult{
			Rank:          len(response.Results) + 1,
			ID:            paper.ID,
			Filename:      paper.Filename,
			Path:          paper.Path,
			Topic:         paper.Topic,
			Score:         r.Score,
			KeywordScore:  r.KeywordScore,
			SemanticScore: r.SemanticScore,
			Preview:       paper.Preview,
		})
	}

	if len(response.Results) == 0 && keywordWeight > 0 {
		suggestion, err := e.keywordIndex.Suggest(query.Query)
		if err != nil {
			e.logger.Debug("search suggestion failed", zap.Error(err))
		}
		response.Suggestion = suggestion
	}
	response.QueryTime = time.Since(startTime).Milliseconds()
	e.logger.Debug("search papers done",
		zap.String("query", query.Query), zap.String("mode", string(query.Mode)),
		zap.Int("results", len(response.Results)), zap.Int64("ms", response.QueryTime))
	return response, nil
}

// SearchImages encodes the query text into the CLIP space and returns the closest
// catalogued images. Mode and Fuzzy are ignored.
func (e *Engine) SearchImages(ctx context.Context, query *models.SearchQuery) (*models.SearchResponse, error) {
	startTime := time.Now()
	query.Mode = ""
	if err := ProcessQuery(query, e.imagesCfg.ResultLimit); err != nil {
		return nil, err
	}
	queryEmbedding, err := e.clipEmbedder.Embed(ctx, query.Query)
	if err != nil {
		return nil, fmt.Errorf("embedding failed: %w", err)
	}
	matches, err := e.images.Query(ctx, queryEmbedding, query.Limit, nil)
	if err != nil {
		return nil, fmt.Errorf("vector search failed: %w", err)
	}

	response := &models.SearchResponse{
		Kind:    models.KindImage,
		Query:   query.Query,
		Results: make([]*models.SearchResult, 0, len(matches)),
	}
	for _, m := range matches {
		if query.MinScore > 0 && m.Similarity < query.MinScore {
			continue
		}
		img, err := e.catalog.GetImage(ctx, m.ID)
		if errors.Is(err, storage.ErrNotFound) {
			e.logger.Debug("search dropping uncatalogued image",
				zap.String("image_id", m.ID), zap.String("path", m.Metadata[indexer.MetaPath]))
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to load image %s: %w", m.ID, err)
		}
		response.Results = append(response.Results, &models.SearchResult{
			Rank:          len(response.Results) + 1,
			ID:            img.ID,
			Filename:      img.Filename,
			Path:          img.Path,
			Score:         m.Similarity,
			SemanticScore: m.Similarity,
		})
	}
	response.Total = len(response.Results)
	response.QueryTime = time.Since(startTime).Milliseconds()
	return response, nil
}

// queryChunks asks the papers collection for k chunks and doubles k until the
// chunks cover at least want distinct papers or the collection is exhausted.
// A long paper can otherwise fill every candidate slot on its own.
func (e *Engine) queryChunks(ctx context.Context, embedding []float32, k, want int) ([]vector.Match, error) {
	total := e.papers.Count()
	for {
		matches, err := e.papers.Query(ctx, embedding, k, nil)
		if err != nil {
			return nil, err
		}
		if len(matches) < k || k >= total || len(AggregateByPaper(matches, indexer.MetaPaperID)) >= want {
			return matches, nil
		}
		k = min(k*2, total)
	}
}

// weights returns the keyword and semantic weights for mode.
func (e *Engine) weights(mode models.SearchMode) (float64, float64) {
	switch mode {
	case models.ModeKeyword:
		return 1, 0
	case models.ModeHybrid:
		kw, sem := e.papersCfg.KeywordWeight, e.papersCfg.SemanticWeight
		if kw <= 0 && sem <= 0 {
			return 0.5, 0.5
		}
		return kw, sem
	default:
		return 0, 1
	}
}
