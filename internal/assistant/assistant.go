// Package assistant wires encoders, the vector store, the catalog and the keyword
// index into the paper and image operations exposed by the shiori CLI.
package assistant

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hyperjump/shiori/internal/classify"
	"github.com/hyperjump/shiori/internal/config"
	"github.com/hyperjump/shiori/internal/embedding"
	"github.com/hyperjump/shiori/internal/indexer"
	"github.com/hyperjump/shiori/internal/keyword"
	"github.com/hyperjump/shiori/internal/models"
	"github.com/hyperjump/shiori/internal/search"
	"github.com/hyperjump/shiori/internal/storage"
	"github.com/hyperjump/shiori/internal/vector"
	"go.uber.org/zap"
)

// Assistant owns every long-lived component. Create one per process and Close it.
type Assistant struct {
	cfg    *config.Config
	logger *zap.Logger

	textEmbedder  embedding.Embedder
	clipText      embedding.Embedder
	clipImage     embedding.ImageEmbedder
	store         vector.Store
	papers        vector.Collection
	images        vector.Collection
	catalog       storage.Catalog
	keywordIndex  keyword.Index
	indexer       *indexer.Indexer
	classifier    *classify.Classifier
	engine        *search.Engine
	closers       []func() error
}

// New opens the stores named in cfg and builds the encoders. A nil logger disables logging.
func New(cfg *config.Config, logger *zap.Logger) (*Assistant, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	a := &Assistant{cfg: cfg, logger: logger}
	if err := a.open(); err != nil {
		_ = a.Close()
		return nil, err
	}
	logger.Debug("assistant ready",
		zap.String("vector_backend", cfg.Storage.VectorBackend),
		zap.String("vector_path", cfg.Storage.VectorPath),
		zap.String("text_provider", cfg.Embedding.Text.Provider),
		zap.String("clip_provider", cfg.Embedding.CLIP.Provider))
	return a, nil
}

// open builds the components in dependency order, registering each closer as it goes.
func (a *Assistant) open() (err error) {
	cfg, logger := a.cfg, a.logger

	embOpts := []embedding.Option{embedding.WithLogger(logger)}
	if a.textEmbedder, err = embedding.NewTextEmbedder(cfg.Embedding, embOpts...); err != nil {
		return fmt.Errorf("failed to initialize text encoder: %w", err)
	}
	a.closers = append(a.closers, a.textEmbedder.Close)
	if a.clipText, a.clipImage, err = embedding.NewCLIP(cfg.Embedding, embOpts...); err != nil {
		return fmt.Errorf("failed to initialize CLIP encoder: %w", err)
	}
	a.closers = append(a.closers, a.clipText.Close, a.clipImage.Close)

	if a.store, err = vector.NewStore(cfg.Storage.VectorBackend, cfg.Storage.VectorPath, cfg.Storage.Compress); err != nil {
		return fmt.Errorf("failed to initialize vector store: %w", err)
	}
	a.closers = append(a.closers, a.store.Close)
	if a.papers, err = a.store.Collection(vector.CollectionPapers); err != nil {
		return err
	}
	if a.images, err = a.store.Collection(vector.CollectionImages); err != nil {
		return err
	}

	catalog, err := storage.NewSQLiteCatalog(cfg.Storage.CatalogPath)
	if err != nil {
		return fmt.Errorf("failed to initialize catalog: %w", err)
	}
	a.catalog = catalog
	a.closers = append(a.closers, catalog.Close)

	if p := cfg.Storage.KeywordIndexPath; p != "" {
		if err = os.MkdirAll(filepath.Dir(p), 0755); err != nil {
			return fmt.Errorf("failed to create keyword index directory: %w", err)
		}
	}
	kw, err := keyword.NewBleveIndex(cfg.Storage.KeywordIndexPath)
	if err != nil {
		return fmt.Errorf("failed to initialize keyword index: %w", err)
	}
	a.keywordIndex = kw
	a.closers = append(a.closers, kw.Close)

	a.indexer = indexer.New(a.catalog, a.textEmbedder, a.clipImage, a.papers, a.images, cfg,
		indexer.WithLogger(logger), indexer.WithKeywordIndex(a.keywordIndex))
	a.classifier = classify.New(a.textEmbedder, classify.WithLogger(logger))
	a.engine = search.NewEngine(a.catalog, a.textEmbedder, a.clipText, a.papers, a.images, cfg,
		search.WithLogger(logger), search.WithKeywordIndex(a.keywordIndex))

	return nil
}

// Close releases every component in reverse order of creation.
func (a *Assistant) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

// AddPaperResult describes what AddPaper did.
type AddPaperResult struct {
	Paper          *models.Paper            `json:"paper"`
	Classification *classify.Classification `json:"classification"`
	// MovedTo is the new location when the paper was moved into its topic folder.
	MovedTo        string                   `json:"moved_to,omitempty"`
	// MoveError is set when indexing and classification succeeded but the move did not.
	MoveError      error                    `json:"-"`
}

// AddPaper indexes the paper at path, classifies it against topics (the configured
// defaults when empty) and, when move is set, files it into <dir>/<topic>/.
// A failed move is reported in the result; the paper stays indexed at its old path.
func (a *Assistant) AddPaper(ctx context.Context, path string, topics []string, move bool) (*AddPaperResult, error) {
	if len(topics) == 0 {
		topics = classify.ParseTopics(a.cfg.Papers.DefaultTopics)
	}
	for _, t := range topics {
		if err := classify.ValidateTopic(t); err != nil {
			return nil, err
		}
	}

	indexed, err := a.indexer.IndexPaper(ctx, path)
	if err != nil {
		return nil, err
	}
	cls, err := a.classifier.Classify(ctx, indexed.Embedding, topics)
	if err != nil {
		return nil, fmt.Errorf("failed to classify paper: %w", err)
	}

	paper := indexed.Paper
	result := &AddPaperResult{Paper: paper, Classification: cls}
	if move {
		dst, err := classify.MoveToTopic(paper.Path, cls.Topic)
		if err != nil {
			a.logger.Warn("paper indexed but not moved", zap.String("path", paper.Path), zap.Error(err))
			result.MoveError = err
		} else if dst != paper.Path {
			result.MovedTo = dst
			paper.Path = dst
		}
	}

	if err := a.catalog.UpdatePaperLocation(ctx, paper.ID, paper.Path, cls.Topic, cls.Score); err != nil {
		return nil, fmt.Errorf("failed to record classification: %w", err)
	}
	paper.Topic = cls.Topic
	paper.TopicScore = cls.Score
	return result, nil
}

// SearchPapers runs a paper query.
func (a *Assistant) SearchPapers(ctx context.Context, query *models.SearchQuery) (*models.SearchResponse, error) {
	return a.engine.SearchPapers(ctx, query)
}

// IndexImages indexes every image in folder, or in the configured image folder when
// folder is empty.
func (a *Assistant) IndexImages(ctx context.Context, folder string) (*indexer.ImageReport, error) {
	if folder == "" {
		folder = a.cfg.Images.Folder
	}
	return a.indexer.IndexImages(ctx, folder)
}

// SearchImages runs a text-to-image query. With reindex set the configured image
// folder is indexed first.
func (a *Assistant) SearchImages(ctx context.Context, query *models.SearchQuery, reindex bool) (*models.SearchResponse, error) {
	if reindex {
		if _, err := a.IndexImages(ctx, ""); err != nil {
			return nil, err
		}
	}
	return a.engine.SearchImages(ctx, query)
}

// RemovePaper drops a paper from every index. The file itself is left alone.
func (a *Assistant) RemovePaper(ctx context.Context, id string) error {
	return a.indexer.RemovePaper(ctx, id)
}

// ListPapers returns catalogued papers, most recently indexed first. A limit
// below one lists every paper after offset.
func (a *Assistant) ListPapers(ctx context.Context, offset, limit int) ([]*models.Paper, error) {
	if offset < 0 {
		offset = 0
	}
	if limit < 1 {
		limit = -1
	}
	papers, err := a.catalog.ListPapers(ctx, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("list papers: %w", err)
	}
	return papers, nil
}
