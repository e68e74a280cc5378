package assistant

import (
	"context"
	"fmt"

	"github.com/hyperjump/shiori/internal/storage"
	"go.uber.org/zap"
)

// Status summarizes what is indexed and where it is stored.
type Status struct {
	Papers        int64              `json:"papers"`
	PapersByTopic map[string]int64   `json:"papers_by_topic,omitempty"`
	PaperChunks   int                `json:"paper_chunks"`
	Images        int64              `json:"images"`
	ImageVectors  int                `json:"image_vectors"`
	KeywordDocs   uint64             `json:"keyword_docs"`
	DiskUsage     *storage.DiskUsage `json:"disk_usage,omitempty"`
	Config        *StatusConfig      `json:"config,omitempty"`
}

// StatusConfig echoes the settings that matter when reading Status.
type StatusConfig struct {
	VectorBackend    string `json:"vector_backend"`
	VectorPath       string `json:"vector_path,omitempty"`
	CatalogPath      string `json:"catalog_path,omitempty"`
	KeywordIndexPath string `json:"keyword_index_path,omitempty"`
	TextProvider     string `json:"text_provider"`
	TextDimensions   int    `json:"text_dimensions"`
	CLIPProvider     string `json:"clip_provider"`
	CLIPDimensions   int    `json:"clip_dimensions"`
	ImageFolder      string `json:"image_folder,omitempty"`
	DefaultTopics    string `json:"default_topics"`
}

// Status counts catalog rows, vector records and keyword documents.
func (a *Assistant) Status(ctx context.Context) (*Status, error) {
	papers, err := a.catalog.CountPapers(ctx)
	if err != nil {
		return nil, fmt.Errorf("count papers: %w", err)
	}
	byTopic, err := a.catalog.CountPapersByTopic(ctx)
	if err != nil {
		return nil, fmt.Errorf("count topics: %w", err)
	}
	images, err := a.catalog.CountImages(ctx)
	if err != nil {
		return nil, fmt.Errorf("count images: %w", err)
	}
	docs, err := a.keywordIndex.DocCount()
	if err != nil {
		return nil, fmt.Errorf("count keyword docs: %w", err)
	}

	cfg := a.cfg
	status := &Status{
		Papers:        papers,
		PapersByTopic: byTopic,
		PaperChunks:   a.papers.Count(),
		Images:        images,
		ImageVectors:  a.images.Count(),
		KeywordDocs:   docs,
		Config: &StatusConfig{
			VectorBackend:    cfg.Storage.VectorBackend,
			VectorPath:       cfg.Storage.VectorPath,
			CatalogPath:      cfg.Storage.CatalogPath,
			KeywordIndexPath: cfg.Storage.KeywordIndexPath,
			TextProvider:     cfg.Embedding.Text.Provider,
			TextDimensions:   a.textEmbedder.Dimensions(),
			CLIPProvider:     cfg.Embedding.CLIP.Provider,
			CLIPDimensions:   a.clipImage.Dimensions(),
			ImageFolder:      cfg.Images.Folder,
			DefaultTopics:    cfg.Papers.DefaultTopics,
		},
	}
	if usage, err := storage.MeasureDiskUsage(cfg.Storage); err == nil {
		status.DiskUsage = usage
	} else {
		a.logger.Debug("disk usage unavailable", zap.Error(err))
	}
	return status, nil
}
