// Package storage defines the catalog of indexed papers and images.
package storage

import (
	"context"
	"errors"

	"github.com/hyperjump/shiori/internal/models"
)

// ErrNotFound is returned when a catalog row does not exist.
var ErrNotFound = errors.New("not found")

// Catalog records where indexed papers and images live and what they were classified as.
// Embeddings live in the vector store; the catalog is the source of truth for paths.
type Catalog interface {
	// Paper operations
	UpsertPaper(ctx context.Context, paper *models.Paper) error
	GetPaper(ctx context.Context, id string) (*models.Paper, error)
	GetPapers(ctx context.Context, ids []string) (map[string]*models.Paper, error)
	ListPapers(ctx context.Context, offset, limit int) ([]*models.Paper, error)
	UpdatePaperLocation(ctx context.Context, id, path, topic string, score float64) error
	DeletePaper(ctx context.Context, id string) error

	// Image operations
	UpsertImages(ctx context.Context, images []*models.Image) error
	GetImage(ctx context.Context, id string) (*models.Image, error)

	// Stats
	CountPapers(ctx context.Context) (int64, error)
	CountPapersByTopic(ctx context.Context) (map[string]int64, error)
	CountImages(ctx context.Context) (int64, error)

	Close() error
}
