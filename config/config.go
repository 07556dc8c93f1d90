package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"ragqa/internal/adapter/collector"
)

// Config holds all configuration for the question-answering service.
type Config struct {
	Embedding  EmbeddingConfig  `yaml:"embedding"`
	VectorDB   VectorDBConfig   `yaml:"vector_db"`
	Processing ProcessingConfig `yaml:"processing"`
	RAG        RAGConfig        `yaml:"rag"`
	LLM        LLMConfig        `yaml:"llm"`
	Sources    SourcesConfig    `yaml:"sources"`
	Storage    StorageConfig    `yaml:"storage"`
	Server     ServerConfig     `yaml:"server"`
	Cache      CacheConfig      `yaml:"cache"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// EmbeddingConfig holds embedding model configuration.
type EmbeddingConfig struct {
	Provider  string `yaml:"provider"`    // "openai", "jina", "ollama", "hash"
	Model     string `yaml:"model"`       // e.g., "text-embedding-3-small"
	APIKeyEnv string `yaml:"api_key_env"` // Environment variable for API key
	BaseURL   string `yaml:"base_url"`
	Dimension int    `yaml:"dimension"`
	BatchSize int    `yaml:"batch_size"`
}

// VectorDBConfig holds vector index configuration.
type VectorDBConfig struct {
	IndexType           string  `yaml:"index_type"` // "flat_ip" or "flat_l2"
	Dimension           int     `yaml:"dimension"`
	TopK                int     `yaml:"top_k"`
	SimilarityThreshold float64 `yaml:"similarity_threshold"`
}

// ProcessingConfig holds text chunking configuration.
type ProcessingConfig struct {
	ChunkSize    int `yaml:"chunk_size"`
	ChunkOverlap int `yaml:"chunk_overlap"`
	MinChunkSize int `yaml:"min_chunk_size"`
	MaxChunkSize int `yaml:"max_chunk_size"`
}

// RAGConfig holds answer-generation configuration.
type RAGConfig struct {
	MaxContextLength int    `yaml:"max_context_length"`
	SystemPrompt     string `yaml:"system_prompt"`
}

// LLMConfig holds language model configuration.
type LLMConfig struct {
	Provider    string  `yaml:"provider"` // "openai", "deepseek", "ollama", "scripted"
	Model       string  `yaml:"model"`
	APIKeyEnv   string  `yaml:"api_key_env"`
	BaseURL     string  `yaml:"base_url"`
	MaxTokens   int     `yaml:"max_tokens"`
	Temperature float64 `yaml:"temperature"`
	TopP        float64 `yaml:"top_p"`
}

// SourcesConfig holds per-collector configuration. An empty section
// disables that collector.
type SourcesConfig struct {
	Documentation collector.DocsConfig      `yaml:"documentation"`
	Wikipedia     collector.WikipediaConfig `yaml:"wikipedia"`
	News          collector.NewsConfig      `yaml:"news"`
	GitHub        collector.GitHubConfig    `yaml:"github"`

	// GitHubTokenEnv names the env var with the API token.
	GitHubTokenEnv string `yaml:"github_token_env"`
}

// StorageConfig holds on-disk layout configuration.
type StorageConfig struct {
	RawDataDir string `yaml:"raw_data_dir"`
	IndexPath  string `yaml:"index_path"`
}

// ServerConfig holds HTTP API configuration.
type ServerConfig struct {
	Host           string `yaml:"host"`
	Port           int    `yaml:"port"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
	GinMode        string `yaml:"gin_mode"`
}

// CacheConfig holds answer cache configuration.
type CacheConfig struct {
	Enabled    bool `yaml:"enabled"`
	MaxEntries int  `yaml:"max_entries"`
	TTLMinutes int  `yaml:"ttl_minutes"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Embedding: EmbeddingConfig{
			Provider:  "openai",
			Model:     "text-embedding-3-small",
			APIKeyEnv: "OPENAI_API_KEY",
			Dimension: 1536,
			BatchSize: 100,
		},
		VectorDB: VectorDBConfig{
			IndexType:           "flat_ip",
			Dimension:           1536,
			TopK:                5,
			SimilarityThreshold: 0.7,
		},
		Processing: ProcessingConfig{
			ChunkSize:    1000,
			ChunkOverlap: 200,
			MinChunkSize: 100,
			MaxChunkSize: 2000,
		},
		RAG: RAGConfig{
			MaxContextLength: 4000,
			SystemPrompt:     "You are a helpful assistant. Answer using only the provided context.",
		},
		LLM: LLMConfig{
			Provider:    "openai",
			Model:       "gpt-4o-mini",
			APIKeyEnv:   "OPENAI_API_KEY",
			MaxTokens:   512,
			Temperature: 0.7,
			TopP:        0.9,
		},
		Sources: SourcesConfig{
			GitHubTokenEnv: "GITHUB_TOKEN",
		},
		Storage: StorageConfig{
			RawDataDir: "data/raw",
			IndexPath:  "models/index",
		},
		Server: ServerConfig{
			Host:           "0.0.0.0",
			Port:           8000,
			TimeoutSeconds: 60,
		},
		Cache: CacheConfig{
			Enabled:    true,
			MaxEntries: 100,
			TTLMinutes: 5,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load loads configuration from a YAML file.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil // Return defaults if no config file
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save writes the configuration to a YAML file.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}

	return os.WriteFile(path, data, 0o644)
}
