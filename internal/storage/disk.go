package storage

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/hyperjump/shiori/internal/config"
)

// DiskUsage is the on-disk footprint of each store, in bytes.
type DiskUsage struct {
	Vectors      int64 `json:"vectors"`
	Catalog      int64 `json:"catalog"`
	KeywordIndex int64 `json:"keyword_index"`
}

// Total sums every store.
func (u *DiskUsage) Total() int64 {
	return u.Vectors + u.Catalog + u.KeywordIndex
}

// MeasureDiskUsage sizes the stores configured in cfg. The memory vector backend
// and stores not created yet count as zero. The catalog includes its SQLite WAL
// and shared-memory files.
func MeasureDiskUsage(cfg config.StorageConfig) (*DiskUsage, error) {
	usage := &DiskUsage{}
	var err error
	if cfg.VectorBackend != "memory" {
		if usage.Vectors, err = pathSize(cfg.VectorPath); err != nil {
			return nil, err
		}
	}
	if cfg.CatalogPath != "" {
		for _, p := range []string{cfg.CatalogPath, cfg.CatalogPath + "-wal", cfg.CatalogPath + "-shm"} {
			n, err := pathSize(p)
			if err != nil {
				return nil, err
			}
			usage.Catalog += n
		}
	}
	if usage.KeywordIndex, err = pathSize(cfg.KeywordIndexPath); err != nil {
		return nil, err
	}
	return usage, nil
}

// pathSize returns the size of a file or the recursive size of a directory.
func pathSize(p string) (int64, error) {
	if p == "" {
		return 0, nil
	}
	info, err := os.Stat(p)
	if errors.Is(err, fs.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	if !info.IsDir() {
		return info.Size(), nil
	}
	var total int64
	err = filepath.WalkDir(p, func(_ string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		fi, err := d.Info()
		if err != nil {
			return err
		}
		total += fi.Size()
		return nil
	})
	return total, err
}
