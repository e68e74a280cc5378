// Package config provides configuration loading and structs for shiori.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application.
type Config struct {
	Debug     bool            `yaml:"debug"`
	Storage   StorageConfig   `yaml:"storage"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Papers    PapersConfig    `yaml:"papers"`
	Images    ImagesConfig    `yaml:"images"`
}

// StorageConfig holds paths for the vector store, catalog and keyword index.
type StorageConfig struct {
	// VectorBackend is "chromem" (persistent, default) or "memory".
	VectorBackend    string `yaml:"vector_backend"`
	VectorPath       string `yaml:"vector_path"`
	Compress         bool   `yaml:"compress"`
	CatalogPath      string `yaml:"catalog_path"`
	KeywordIndexPath string `yaml:"keyword_index_path"`
}

// EmbeddingConfig holds encoder settings for both modalities.
type EmbeddingConfig struct {
	// RuntimeLibraryPath points at the onnxruntime shared library; empty uses the system default.
	RuntimeLibraryPath string        `yaml:"runtime_library_path"`
	CacheSize          int           `yaml:"cache_size"`
	Text               EncoderConfig `yaml:"text"`
	CLIP               EncoderConfig `yaml:"clip"`
}

// EncoderConfig describes one pretrained encoder.
type EncoderConfig struct {
	// Provider is "onnx", "ollama" (text only) or "mock".
	Provider      string   `yaml:"provider"`
	ModelPath     string   `yaml:"model_path"`
	VisionPath    string   `yaml:"vision_model_path"`
	TokenizerPath string   `yaml:"tokenizer_path"`
	Dimensions    int      `yaml:"dimensions"`
	MaxTokens     int      `yaml:"max_tokens"`
	InputNames    []string `yaml:"input_names"`
	OutputName    string   `yaml:"output_name"`
	VisionOutput  string   `yaml:"vision_output_name"`
	ImageSize     int      `yaml:"image_size"`
	OllamaModel   string   `yaml:"ollama_model"`
	OllamaURL     string   `yaml:"ollama_url"`
}

// PapersConfig holds paper extraction, chunking, classification and search settings.
type PapersConfig struct {
	MaxPages        int     `yaml:"max_pages"`
	PreviewChars    int     `yaml:"preview_chars"`
	ChunkSize       int     `yaml:"chunk_size"`
	ChunkOverlap    int     `yaml:"chunk_overlap"`
	DefaultTopics   string  `yaml:"default_topics"`
	ResultLimit     int     `yaml:"result_limit"`
	CandidateFactor int     `yaml:"candidate_factor"`
	KeywordWeight   float64 `yaml:"keyword_weight"`
	SemanticWeight  float64 `yaml:"semantic_weight"`
}

// ImagesConfig holds image library settings.
type ImagesConfig struct {
	Folder      string   `yaml:"folder"`
	Extensions  []string `yaml:"extensions"`
	ResultLimit int      `yaml:"result_limit"`
	Workers     int      `yaml:"workers"`
}

// Load reads and parses the config file at path, expands paths, and applies defaults.
// Returns an error if the file cannot be read or parsed.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	ApplyDefaults(&cfg)
	ExpandPaths(&cfg, filepath.Dir(path))
	return &cfg, nil
}

// Default returns a config with defaults applied and paths resolved against baseDir.
// Used when no config file exists.
func Default(baseDir string) *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	ExpandPaths(cfg, baseDir)
	return cfg
}

// Save writes the config to path.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// ExpandPaths resolves every configured path against baseDir (see expandPath).
func ExpandPaths(cfg *Config, baseDir string) {
	cfg.Storage.VectorPath = expandPath(cfg.Storage.VectorPath, baseDir)
	cfg.Storage.CatalogPath = expandPath(cfg.Storage.CatalogPath, baseDir)
	cfg.Storage.KeywordIndexPath = expandPath(cfg.Storage.KeywordIndexPath, baseDir)
	cfg.Embedding.RuntimeLibraryPath = expandPath(cfg.Embedding.RuntimeLibraryPath, baseDir)
	for _, enc := range []*EncoderConfig{&cfg.Embedding.Text, &cfg.Embedding.CLIP} {
		enc.ModelPath = expandPath(enc.ModelPath, baseDir)
		enc.VisionPath = expandPath(enc.VisionPath, baseDir)
		enc.TokenizerPath = expandPath(enc.TokenizerPath, baseDir)
	}
	cfg.Images.Folder = expandPath(cfg.Images.Folder, baseDir)
}

// expandPath converts a path to absolute. Paths starting with "./" are relative to configDir;
// other relative paths are relative to the home directory. Empty paths stay empty.
func expandPath(path string, configDir string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	if strings.HasPrefix(path, "./") || path == "." {
		return filepath.Join(configDir, path)
	}
	if strings.HasPrefix(path, "~/") {
		path = strings.TrimPrefix(path, "~/")
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, path)
	}
	return path
}
