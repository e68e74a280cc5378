package indexer

import (
	"context"
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/hyperjump/shiori/internal/config"
	"github.com/hyperjump/shiori/internal/embedding"
	"github.com/hyperjump/shiori/internal/extract"
	"github.com/hyperjump/shiori/internal/fileid"
	"github.com/hyperjump/shiori/internal/keyword"
	"github.com/hyperjump/shiori/internal/models"
	"github.com/hyperjump/shiori/internal/storage"
	"github.com/hyperjump/shiori/internal/vector"
	"github.com/hyperjump/shiori/pkg/utils"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Metadata keys stored with vector records.
const (
	MetaPaperID    = "paper_id"
	MetaFilename   = "filename"
	MetaChunkIndex = "chunk_index"
	MetaPath       = "path"
)

// ErrNoText is returned when a paper yields no extractable text.
var ErrNoText = errors.New("no text could be extracted")

// Indexer writes papers and images into the vector store, catalog and keyword index.
type Indexer struct {
	catalog       storage.Catalog
	textEmbedder  embedding.Embedder
	imageEmbedder embedding.ImageEmbedder
	papers        vector.Collection
	images        vector.Collection
	keywordIndex  keyword.Index // optional
	chunker       *Chunker
	extractor     *extract.Extractor
	papersCfg     config.PapersConfig
	imagesCfg     config.ImagesConfig
	logger        *zap.Logger
}

// Option configures an Indexer.
type Option func(*Indexer)

// WithLogger sets a logger for debug output (paper indexed, image skipped, etc.).
func WithLogger(l *zap.Logger) Option {
	return func(idx *Indexer) { idx.logger = l }
}

// WithKeywordIndex also indexes paper text for keyword search.
func WithKeywordIndex(k keyword.Index) Option {
	return func(idx *Indexer) { idx.keywordIndex = k }
}

// New creates an indexer. textEmbedder encodes paper chunks; imageEmbedder encodes
// images into the CLIP space.
func New(
	catalog storage.Catalog,
	textEmbedder embedding.Embedder,
	imageEmbedder embedding.ImageEmbedder,
	papers, images vector.Collection,
	cfg *config.Config,
	opts ...Option,
) *Indexer {
	idx := &Indexer{
		catalog:       catalog,
		textEmbedder:  textEmbedder,
		imageEmbedder: imageEmbedder,
		papers:        papers,
		images:        images,
		chunker:       NewChunker(cfg.Papers.ChunkSize, cfg.Papers.ChunkOverlap),
		extractor:     extract.NewExtractor(extract.WithMaxPages(cfg.Papers.MaxPages)),
		papersCfg:     cfg.Papers,
		imagesCfg:     cfg.Images,
		logger:        zap.NewNop(),
	}
	for _, opt := range opts {
		opt(idx)
	}
	return idx
}

// IndexedPaper is a catalogued paper plus its document embedding (the normalized
// mean of its chunk embeddings), used for topic classification.
type IndexedPaper struct {
	Paper     *models.Paper
	Embedding []float32
}

// IndexPaper extracts, chunks and embeds the paper at path and replaces any previous
// index entries for the same content. A previously recorded topic is kept.
func (idx *Indexer) IndexPaper(ctx context.Context, path string) (*IndexedPaper, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("absolute path: %w", err)
	}
	info, err := os.Stat(absPath)
	if err != nil {
		return nil, fmt.Errorf("stat file: %w", err)
	}
	if !info.Mode().IsRegular() {
		return nil, fmt.Errorf("not a regular file: %s", absPath)
	}
	if !extract.Supported(filepath.Ext(absPath)) {
		return nil, fmt.Errorf("unsupported paper format %q", filepath.Ext(absPath))
	}
	idx.logger.Debug("indexer indexing paper", zap.String("path", absPath))

	paperID, err := fileid.ContentID(absPath)
	if err != nil {
		return nil, err
	}
	extracted, err := idx.extractor.Extract(absPath)
	if err != nil {
		return nil, fmt.Errorf("extract content: %w", err)
	}
	text := Preprocess(extracted.Text)
	if text == "" {
		return nil, fmt.Errorf("%s: %w", filepath.Base(absPath), ErrNoText)
	}

	filename := filepath.Base(absPath)
	chunks := idx.chunker.Chunk(paperID, text)
	texts := make([]string, len(chunks))
	for i, ch := range chunks {
		texts[i] = ch.Content
	}
	embeddings, err := idx.textEmbedder.EmbedBatch(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("failed to generate embeddings: %w", err)
	}
	records := make([]vector.Record, len(chunks))
	for i, ch := range chunks {
		ch.Embedding = embeddings[i]
		records[i] = vector.Record{
			ID:        ch.ID,
			Embedding: ch.Embedding,
			Content:   ch.Content,
			Metadata: map[string]string{
				MetaPaperID:    paperID,
				MetaFilename:   filename,
				MetaChunkIndex: strconv.Itoa(ch.ChunkIndex),
			},
		}
	}

	// Chunk count may shrink on re-index; drop stale windows first.
	if err := idx.papers.Delete(ctx, map[string]string{MetaPaperID: paperID}); err != nil {
		return nil, fmt.Errorf("failed to clear previous chunks: %w", err)
	}
	if err := idx.papers.Upsert(ctx, records); err != nil {
		return nil, fmt.Errorf("failed to index vectors: %w", err)
	}

	paper := &models.Paper{
		ID:       paperID,
		Filename: filename,
		Path:     absPath,
		Preview:  utils.Prefix(text, idx.papersCfg.PreviewChars),
		Pages:    extracted.Pages,
		Chunks:   len(chunks),
	}
	if prev, err := idx.catalog.GetPaper(ctx, paperID); err == nil {
		paper.Topic = prev.Topic
		paper.TopicScore = prev.TopicScore
		paper.IndexedAt = prev.IndexedAt
	}
	if err := idx.catalog.UpsertPaper(ctx, paper); err != nil {
		return nil, fmt.Errorf("failed to store paper: %w", err)
	}

	if idx.keywordIndex != nil {
		doc := &keyword.Doc{Title: keyword.TitleFromFilename(filename), Content: text}
		if err := idx.keywordIndex.Index(ctx, paperID, doc); err != nil {
			return nil, fmt.Errorf("failed to index keywords: %w", err)
		}
	}

	idx.logger.Debug("indexer paper indexed",
		zap.String("path", absPath), zap.String("paper_id", paperID), zap.Int("chunks", len(chunks)))
	return &IndexedPaper{Paper: paper, Embedding: utils.MeanVector(embeddings)}, nil
}

// RemovePaper deletes a paper's chunks, keyword entry and catalog row.
func (idx *Indexer) RemovePaper(ctx context.Context, paperID string) error {
	idx.logger.Debug("indexer removing paper", zap.String("id", paperID))
	if _, err := idx.catalog.GetPaper(ctx, paperID); err != nil {
		return err
	}
	if err := idx.papers.Delete(ctx, map[string]string{MetaPaperID: paperID}); err != nil {
		return fmt.Errorf("failed to delete from vector store: %w", err)
	}
	if idx.keywordIndex != nil {
		if err := idx.keywordIndex.Delete(ctx, paperID); err != nil {
			return fmt.Errorf("failed to delete from keyword index: %w", err)
		}
	}
	if err := idx.catalog.DeletePaper(ctx, paperID); err != nil {
		return fmt.Errorf("failed to delete paper: %w", err)
	}
	return nil
}

// SkippedImage names an image that could not be indexed and why.
type SkippedImage struct {
	Filename string `json:"filename"`
	Reason   string `json:"reason"`
}

// ImageReport summarizes an IndexImages run.
type ImageReport struct {
	Folder  string         `json:"folder"`
	Found   int            `json:"found"`
	Indexed int            `json:"indexed"`
	Skipped []SkippedImage `json:"skipped,omitempty"`
}

// IndexImages embeds every image directly inside folder whose extension is allowed
// and upserts them in one batch. Undecodable files are skipped and reported.
func (idx *Indexer) IndexImages(ctx context.Context, folder string) (*ImageReport, error) {
	absDir, err := filepath.Abs(folder)
	if err != nil {
		return nil, fmt.Errorf("absolute path: %w", err)
	}
	info, err := os.Stat(absDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("image folder does not exist: %s", absDir)
		}
		return nil, fmt.Errorf("stat directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("not a directory: %s", absDir)
	}

	paths, err := listImages(absDir, idx.imagesCfg.Extensions)
	if err != nil {
		return nil, err
	}
	report := &ImageReport{Folder: absDir, Found: len(paths)}
	idx.logger.Debug("indexer found images", zap.String("folder", absDir), zap.Int("count", len(paths)))

	results := make([]embeddedImage, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	workers := idx.imagesCfg.Workers
	if workers <= 0 {
		workers = 1
	}
	g.SetLimit(workers)
	for i, p := range paths {
		i, p := i, p
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			img, err := embedding.DecodeImageFile(p)
			if err != nil {
				results[i].err = err
				return nil
			}
			emb, err := idx.imageEmbedder.EmbedImage(gctx, img)
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				results[i].err = err
				return nil
			}
			results[i] = newEmbeddedImage(p, img, emb)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var records []vector.Record
	var rows []*models.Image
	for i, r := range results {
		if r.err != nil {
			name := filepath.Base(paths[i])
			idx.logger.Debug("indexer skipping image", zap.String("file", name), zap.Error(r.err))
			report.Skipped = append(report.Skipped, SkippedImage{Filename: name, Reason: r.err.Error()})
			continue
		}
		records = append(records, r.record)
		rows = append(rows, r.image)
	}
	if len(records) == 0 {
		return report, nil
	}
	if err := idx.images.Upsert(ctx, records); err != nil {
		return nil, fmt.Errorf("failed to index images: %w", err)
	}
	if err := idx.catalog.UpsertImages(ctx, rows); err != nil {
		return nil, fmt.Errorf("failed to store images: %w", err)
	}
	report.Indexed = len(records)
	return report, nil
}

type embeddedImage struct {
	record vector.Record
	image  *models.Image
	err    error
}

func newEmbeddedImage(path string, img image.Image, emb []float32) embeddedImage {
	id := fileid.PathID(path)
	name := filepath.Base(path)
	b := img.Bounds()
	return embeddedImage{
		record: vector.Record{
			ID:        id,
			Embedding: emb,
			Content:   name,
			Metadata:  map[string]string{MetaFilename: name, MetaPath: path},
		},
		image: &models.Image{ID: id, Filename: name, Path: path, Width: b.Dx(), Height: b.Dy()},
	}
}

// listImages returns the regular files directly in dir whose extension is allowed, sorted by name.
func listImages(dir string, allowed []string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read directory: %w", err)
	}
	var paths []string
	for _, e := range entries {
		if e.IsDir() || !extensionAllowed(filepath.Ext(e.Name()), allowed) {
			continue
		}
		p := filepath.Join(dir, e.Name())
		// Resolve symlinks so we only index regular files
		if fi, err := os.Stat(p); err != nil || !fi.Mode().IsRegular() {
			continue
		}
		paths = append(paths, p)
	}
	return paths, nil
}

func extensionAllowed(ext string, allowed []string) bool {
	extNorm := strings.ToLower(strings.TrimPrefix(ext, "."))
	if extNorm == "" {
		return false
	}
	for _, a := range allowed {
		if strings.ToLower(strings.TrimPrefix(a, ".")) == extNorm {
			return true
		}
	}
	return false
}
