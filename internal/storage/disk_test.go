package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/hyperjump/shiori/internal/config"
)

func writeSized(t *testing.T, path string, n int) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, make([]byte, n), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestMeasureDiskUsage(t *testing.T) {
	dir := t.TempDir()
	cfg := config.Default(dir).Storage
	cfg.VectorBackend = "chromem"

	// Nothing created yet.
	usage, err := MeasureDiskUsage(cfg)
	if err != nil {
		t.Fatal(err)
	}
	if usage.Total() != 0 {
		t.Errorf("fresh layout: %+v", usage)
	}

	writeSized(t, filepath.Join(cfg.VectorPath, "papers", "a.gob"), 10)
	writeSized(t, filepath.Join(cfg.VectorPath, "images", "b.gob"), 5)
	writeSized(t, cfg.CatalogPath, 100)
	writeSized(t, cfg.CatalogPath+"-wal", 7)
	writeSized(t, filepath.Join(cfg.KeywordIndexPath, "store", "root.bolt"), 30)

	usage, err = MeasureDiskUsage(cfg)
	if err != nil {
		t.Fatal(err)
	}
	if usage.Vectors != 15 || usage.Catalog != 107 || usage.KeywordIndex != 30 {
		t.Errorf("usage = %+v", usage)
	}
	if usage.Total() != 152 {
		t.Errorf("Total = %d, want 152", usage.Total())
	}

	// The memory backend keeps vectors off disk.
	cfg.VectorBackend = "memory"
	usage, err = MeasureDiskUsage(cfg)
	if err != nil {
		t.Fatal(err)
	}
	if usage.Vectors != 0 || usage.Catalog != 107 {
		t.Errorf("memory backend usage = %+v", usage)
	}
}

func TestMeasureDiskUsage_emptyPaths(t *testing.T) {
	usage, err := MeasureDiskUsage(config.StorageConfig{})
	if err != nil {
		t.Fatal(err)
	}
	if usage.Total() != 0 {
		t.Errorf("usage = %+v", usage)
	}
}
