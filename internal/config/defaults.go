package config

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Storage.VectorBackend == "" {
		cfg.Storage.VectorBackend = "chromem"
	}
	if cfg.Storage.VectorPath == "" {
		cfg.Storage.VectorPath = "./db/vectors"
	}
	if cfg.Storage.CatalogPath == "" {
		cfg.Storage.CatalogPath = "./db/catalog.db"
	}
	if cfg.Storage.KeywordIndexPath == "" {
		cfg.Storage.KeywordIndexPath = "./db/keyword"
	}
	if cfg.Embedding.CacheSize == 0 {
		cfg.Embedding.CacheSize = 10000
	}
	applyTextDefaults(&cfg.Embedding.Text)
	applyCLIPDefaults(&cfg.Embedding.CLIP)

	if cfg.Papers.MaxPages == 0 {
		cfg.Papers.MaxPages = 2
	}
	if cfg.Papers.PreviewChars == 0 {
		cfg.Papers.PreviewChars = 500
	}
	if cfg.Papers.ChunkSize == 0 {
		cfg.Papers.ChunkSize = 200
	}
	if cfg.Papers.ChunkOverlap == 0 {
		cfg.Papers.ChunkOverlap = 20
	}
	if cfg.Papers.DefaultTopics == "" {
		cfg.Papers.DefaultTopics = "CV,NLP,RL"
	}
	if cfg.Papers.ResultLimit == 0 {
		cfg.Papers.ResultLimit = 3
	}
	if cfg.Papers.CandidateFactor == 0 {
		cfg.Papers.CandidateFactor = 10
	}
	if cfg.Papers.KeywordWeight == 0 && cfg.Papers.SemanticWeight == 0 {
		cfg.Papers.KeywordWeight = 0.5
		cfg.Papers.SemanticWeight = 0.5
	}

	if cfg.Images.Folder == "" {
		cfg.Images.Folder = "./images"
	}
	if cfg.Images.Extensions == nil {
		cfg.Images.Extensions = []string{".jpg", ".jpeg", ".png", ".bmp"}
	}
	if cfg.Images.ResultLimit == 0 {
		cfg.Images.ResultLimit = 3
	}
	if cfg.Images.Workers == 0 {
		cfg.Images.Workers = 4
	}
}

// all-MiniLM-L6-v2 exported with a pooled "output" head.
func applyTextDefaults(enc *EncoderConfig) {
	if enc.Provider == "" {
		enc.Provider = "onnx"
	}
	if enc.ModelPath == "" {
		enc.ModelPath = "./models/all-MiniLM-L6-v2/model.onnx"
	}
	if enc.TokenizerPath == "" {
		enc.TokenizerPath = "./models/all-MiniLM-L6-v2/tokenizer.json"
	}
	if enc.Dimensions == 0 {
		enc.Dimensions = 384
	}
	if enc.MaxTokens == 0 {
		enc.MaxTokens = 256
	}
	if enc.InputNames == nil {
		enc.InputNames = []string{"input_ids", "attention_mask", "token_type_ids"}
	}
	if enc.OutputName == "" {
		enc.OutputName = "output"
	}
	if enc.OllamaModel == "" {
		enc.OllamaModel = "all-minilm"
	}
}

// clip-ViT-B-32 split into text and vision graphs.
func applyCLIPDefaults(enc *EncoderConfig) {
	if enc.Provider == "" {
		enc.Provider = "onnx"
	}
	if enc.ModelPath == "" {
		enc.ModelPath = "./models/clip-ViT-B-32/text_model.onnx"
	}
	if enc.VisionPath == "" {
		enc.VisionPath = "./models/clip-ViT-B-32/vision_model.onnx"
	}
	if enc.TokenizerPath == "" {
		enc.TokenizerPath = "./models/clip-ViT-B-32/tokenizer.json"
	}
	if enc.Dimensions == 0 {
		enc.Dimensions = 512
	}
	if enc.MaxTokens == 0 {
		enc.MaxTokens = 77
	}
	if enc.InputNames == nil {
		enc.InputNames = []string{"input_ids", "attention_mask"}
	}
	if enc.OutputName == "" {
		enc.OutputName = "text_embeds"
	}
	if enc.VisionOutput == "" {
		enc.VisionOutput = "image_embeds"
	}
	if enc.ImageSize == 0 {
		enc.ImageSize = 224
	}
}
