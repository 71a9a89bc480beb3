package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type ServerConfig struct {
	Addr           string   `yaml:"addr"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// LLMConfig configures one OpenAI-compatible or Ollama endpoint. The API key
// is never stored in the file; KeyEnv names the environment variable to read.
type LLMConfig struct {
	Provider string `yaml:"provider"`
	BaseURL  string `yaml:"base_url"`
	Model    string `yaml:"model"`
	KeyEnv   string `yaml:"key_env"`
}

type InferenceConfig struct {
	LLMConfig   `yaml:",inline"`
	MaxTokens   int     `yaml:"max_tokens"`
	Temperature float64 `yaml:"temperature"`
}

type RetrievalConfig struct {
	TopK      int     `yaml:"top_k"`
	Threshold float64 `yaml:"threshold"`
}

type IndexConfig struct {
	Type   string `yaml:"type"`   // memory or postgres
	DSN    string `yaml:"dsn"`    // postgres only
	Driver string `yaml:"driver"` // pgdriver or pq
	Debug  bool   `yaml:"debug"`
}

type CorpusConfig struct {
	Dir          string `yaml:"dir"` // empty: use the built-in documents
	ChunkSize    int    `yaml:"chunk_size"`
	ChunkOverlap int    `yaml:"chunk_overlap"`
}

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Embedder  LLMConfig       `yaml:"embedder"`
	Inference InferenceConfig `yaml:"inference"`
	Retrieval RetrievalConfig `yaml:"retrieval"`
	Index     IndexConfig     `yaml:"index"`
	Corpus    CorpusConfig    `yaml:"corpus"`
}

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	applyDefaults(&cfg)
	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":5000"
	}
	if len(cfg.Server.AllowedOrigins) == 0 {
		cfg.Server.AllowedOrigins = []string{"*"}
	}
	if cfg.Embedder.Provider == "" {
		cfg.Embedder.Provider = "openai"
	}
	if cfg.Embedder.BaseURL == "" && cfg.Embedder.Provider == "openai" {
		cfg.Embedder.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.Embedder.Model == "" {
		cfg.Embedder.Model = "text-embedding-3-small"
	}
	if cfg.Embedder.KeyEnv == "" {
		cfg.Embedder.KeyEnv = "OPENAI_API_KEY"
	}
	if cfg.Inference.Provider == "" {
		cfg.Inference.Provider = "openai"
	}
	if cfg.Inference.BaseURL == "" && cfg.Inference.Provider == "openai" {
		cfg.Inference.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.Inference.Model == "" {
		cfg.Inference.Model = "gpt-3.5-turbo"
	}
	if cfg.Inference.KeyEnv == "" {
		cfg.Inference.KeyEnv = "OPENAI_API_KEY"
	}
	if cfg.Inference.MaxTokens == 0 {
		cfg.Inference.MaxTokens = 150
	}
	if cfg.Inference.Temperature == 0 {
		cfg.Inference.Temperature = 0.7
	}
	if cfg.Retrieval.TopK == 0 {
		cfg.Retrieval.TopK = 3
	}
	if cfg.Retrieval.Threshold == 0 {
		cfg.Retrieval.Threshold = 0.6
	}
	if cfg.Index.Type == "" {
		cfg.Index.Type = "memory"
	}
	if cfg.Index.Driver == "" {
		cfg.Index.Driver = "pgdriver"
	}
	if cfg.Corpus.ChunkSize == 0 {
		cfg.Corpus.ChunkSize = 1000
	}
	if cfg.Corpus.ChunkOverlap == 0 {
		cfg.Corpus.ChunkOverlap = 200
	}
}

func validate(cfg *Config) error {
	switch cfg.Index.Type {
	case "memory":
	case "postgres":
		if cfg.Index.DSN == "" {
			return fmt.Errorf("index.dsn is required for index.type postgres")
		}
		if cfg.Index.Driver != "pgdriver" && cfg.Index.Driver != "pq" {
			return fmt.Errorf("unknown index.driver: %s", cfg.Index.Driver)
		}
	default:
		return fmt.Errorf("unknown index.type: %s", cfg.Index.Type)
	}
	if cfg.Retrieval.TopK < 1 {
		return fmt.Errorf("retrieval.top_k must be positive")
	}
	return nil
}
