package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "shiori.yaml")
	content := `
storage:
  vector_backend: memory
  catalog_path: "/tmp/shiori-test/catalog.db"
papers:
  max_pages: 5
  default_topics: "Robotics,Vision"
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Storage.VectorBackend != "memory" {
		t.Errorf("vector_backend: got %q", cfg.Storage.VectorBackend)
	}
	if cfg.Storage.CatalogPath != "/tmp/shiori-test/catalog.db" {
		t.Errorf("absolute catalog path should be kept, got %q", cfg.Storage.CatalogPath)
	}
	if cfg.Papers.MaxPages != 5 || cfg.Papers.DefaultTopics != "Robotics,Vision" {
		t.Errorf("unexpected papers config: %+v", cfg.Papers)
	}
	if cfg.Debug {
		t.Error("debug should default to false when unset")
	}
}

func TestLoad_debugTrue(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "shiori.yaml")
	if err := os.WriteFile(path, []byte("debug: true\n"), 0600); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if !cfg.Debug {
		t.Error("debug should be true when set in config")
	}
}

func TestLoad_invalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.yaml")
	if err := os.WriteFile(path, []byte("papers: [unclosed"), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected parse error")
	}
}

func TestLoad_missingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected read error")
	}
}

func TestLoad_expandPathDotSlashRelativeToConfigDir(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "shiori.yaml")
	content := `
storage:
  vector_path: "./data/vectors"
images:
  folder: "./photos"
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join(dir, "data", "vectors"); cfg.Storage.VectorPath != want {
		t.Errorf("vector_path = %s, want %s", cfg.Storage.VectorPath, want)
	}
	if want := filepath.Join(dir, "photos"); cfg.Images.Folder != want {
		t.Errorf("images folder = %s, want %s", cfg.Images.Folder, want)
	}
	if want := filepath.Join(dir, "db", "catalog.db"); cfg.Storage.CatalogPath != want {
		t.Errorf("default catalog path = %s, want %s", cfg.Storage.CatalogPath, want)
	}
}

func TestDefault(t *testing.T) {
	dir := t.TempDir()
	cfg := Default(dir)
	if want := filepath.Join(dir, "images"); cfg.Images.Folder != want {
		t.Errorf("images folder = %s, want %s", cfg.Images.Folder, want)
	}
	if want := filepath.Join(dir, "models", "clip-ViT-B-32", "vision_model.onnx"); cfg.Embedding.CLIP.VisionPath != want {
		t.Errorf("clip vision path = %s, want %s", cfg.Embedding.CLIP.VisionPath, want)
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)
	if cfg.Storage.VectorBackend != "chromem" {
		t.Errorf("default backend: got %s", cfg.Storage.VectorBackend)
	}
	if cfg.Papers.MaxPages != 2 {
		t.Errorf("default max pages: got %d", cfg.Papers.MaxPages)
	}
	if cfg.Papers.PreviewChars != 500 {
		t.Errorf("default preview chars: got %d", cfg.Papers.PreviewChars)
	}
	if cfg.Papers.DefaultTopics != "CV,NLP,RL" {
		t.Errorf("default topics: got %q", cfg.Papers.DefaultTopics)
	}
	if cfg.Papers.ResultLimit != 3 || cfg.Images.ResultLimit != 3 {
		t.Errorf("default result limits: papers=%d images=%d", cfg.Papers.ResultLimit, cfg.Images.ResultLimit)
	}
	if cfg.Papers.KeywordWeight != 0.5 || cfg.Papers.SemanticWeight != 0.5 {
		t.Errorf("default weights: keyword=%f semantic=%f", cfg.Papers.KeywordWeight, cfg.Papers.SemanticWeight)
	}
	if len(cfg.Images.Extensions) != 4 || cfg.Images.Extensions[0] != ".jpg" || cfg.Images.Extensions[3] != ".bmp" {
		t.Errorf("image extensions: got %v", cfg.Images.Extensions)
	}
	if cfg.Embedding.Text.Dimensions != 384 || cfg.Embedding.CLIP.Dimensions != 512 {
		t.Errorf("dimensions: text=%d clip=%d", cfg.Embedding.Text.Dimensions, cfg.Embedding.CLIP.Dimensions)
	}
	if cfg.Embedding.CLIP.MaxTokens != 77 {
		t.Errorf("clip max tokens: got %d", cfg.Embedding.CLIP.MaxTokens)
	}
	if len(cfg.Embedding.Text.InputNames) != 3 || len(cfg.Embedding.CLIP.InputNames) != 2 {
		t.Errorf("input names: text=%v clip=%v", cfg.Embedding.Text.InputNames, cfg.Embedding.CLIP.InputNames)
	}
}

func TestApplyDefaults_keepsExplicitWeights(t *testing.T) {
	cfg := &Config{Papers: PapersConfig{KeywordWeight: 0.2}}
	ApplyDefaults(cfg)
	if cfg.Papers.KeywordWeight != 0.2 || cfg.Papers.SemanticWeight != 0 {
		t.Errorf("explicit weights should be kept: keyword=%f semantic=%f", cfg.Papers.KeywordWeight, cfg.Papers.SemanticWeight)
	}
}

func TestSave(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "saved.yaml")
	cfg := &Config{
		Storage: StorageConfig{CatalogPath: "/tmp/catalog.db"},
		Papers:  PapersConfig{ResultLimit: 7},
	}
	if err := Save(path, cfg); err != nil {
		t.Fatal(err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Papers.ResultLimit != 7 {
		t.Errorf("loaded result limit: got %d", loaded.Papers.ResultLimit)
	}
}

func TestLoad_exampleConfig(t *testing.T) {
	path, err := filepath.Abs(filepath.Join("..", "..", "shiori.example.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load(example): %v", err)
	}
	want := *Default(filepath.Dir(path))
	if cfg.Storage != want.Storage || cfg.Papers != want.Papers {
		t.Errorf("example config drifted from defaults:\n got %+v %+v\nwant %+v %+v", cfg.Storage, cfg.Papers, want.Storage, want.Papers)
	}
	if cfg.Embedding.Text.ModelPath != want.Embedding.Text.ModelPath || cfg.Embedding.CLIP.VisionPath != want.Embedding.CLIP.VisionPath {
		t.Errorf("model paths = %q, %q", cfg.Embedding.Text.ModelPath, cfg.Embedding.CLIP.VisionPath)
	}
	if cfg.Images.Folder != want.Images.Folder || len(cfg.Images.Extensions) != 4 {
		t.Errorf("images = %+v", cfg.Images)
	}
}
