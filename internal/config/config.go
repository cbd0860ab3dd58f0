package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"assessment-rag/internal/models"
)

type Config struct {
	Catalog      CatalogConfig  `yaml:"catalog"`
	RAG          RAGConfig      `yaml:"rag"`
	EmbedLLM     LLMConfig      `yaml:"embed_llm"`
	InferenceLLM LLMConfig      `yaml:"inference_llm"`
	Index        IndexConfig    `yaml:"index"`
	Database     DatabaseConfig `yaml:"database"`
	Server       ServerConfig   `yaml:"server"`
	Queue        QueueConfig    `yaml:"queue"`
	Storage      StorageConfig  `yaml:"storage"`
	Log          LogConfig      `yaml:"log"`
}

type CatalogConfig struct {
	Path  string `yaml:"path"`
	Sheet string `yaml:"sheet"`
}

type RAGConfig struct {
	ChunkSize    int     `yaml:"chunk_size"`
	ChunkOverlap int     `yaml:"chunk_overlap"`
	TopK         int     `yaml:"top_k"`
	MaxTokens    int     `yaml:"max_tokens"`
	Temperature  float64 `yaml:"temperature"`
	Strategy     string  `yaml:"strategy"`
	MaxResults   int     `yaml:"max_results"`
}

// LLMConfig describes one model backend, either for embeddings or generation.
type LLMConfig struct {
	Provider    string `yaml:"provider"`
	BaseURL     string `yaml:"base_url"`
	Key         string `yaml:"key"`
	Model       string `yaml:"model"`
	Dimension   int    `yaml:"dimension"`
	TimeoutSecs int    `yaml:"timeout_secs"`
	MaxRetries  int    `yaml:"max_retries"`
}

type IndexConfig struct {
	Backend        string `yaml:"backend"`
	CollectionName string `yaml:"collection_name"`
	ExportPath     string `yaml:"export_path"`
	Compress       bool   `yaml:"compress"`
	EncryptionKey  string `yaml:"encryption_key"`
}

type DatabaseConfig struct {
	URL      string `yaml:"url"`
	Password string `yaml:"password"`
	Driver   string `yaml:"driver"`
	Table    string `yaml:"table"`
	Debug    bool   `yaml:"debug"`
}

type ServerConfig struct {
	Addr               string `yaml:"addr"`
	MaxConcurrent      int    `yaml:"max_concurrent"`
	RequestTimeoutSecs int    `yaml:"request_timeout_secs"`
	MaxUploadBytes     int64  `yaml:"max_upload_bytes"`
}

type QueueConfig struct {
	URL     string `yaml:"url"`
	Queue   string `yaml:"queue"`
	Workers int    `yaml:"workers"`
}

// StorageConfig is used when the catalog path is an s3:// URL.
type StorageConfig struct {
	Region    string `yaml:"region"`
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

const (
	ProviderHuggingFace = "huggingface"
	ProviderOpenAI      = "openai"
	ProviderOllama      = "ollama"
	ProviderGemini      = "gemini"

	StrategyMarkers    = "markers"
	StrategyStructured = "structured"

	BackendChromem  = "chromem"
	BackendPGVector = "pgvector"
)

// LoadConfig reads the YAML file at path, loads env files and fills defaults.
// A missing config file is not an error; defaults and environment are used.
func LoadConfig(path string, envFiles ...string) (*Config, error) {
	loadEnvFiles(envFiles...)

	var cfg Config
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("%w: invalid config file %s: %v", models.ErrConfig, path, err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, err
	}

	applyEnv(&cfg)
	applyDefaults(&cfg)
	return &cfg, nil
}

// loadEnvFiles loads the given dotenv files, or config.env and .env when none
// are given. Variables already present in the environment win.
func loadEnvFiles(files ...string) {
	if len(files) == 0 {
		files = []string{"config.env", ".env"}
	}
	for _, f := range files {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		_ = godotenv.Load(f)
	}
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("SHL_CATALOG_PATH"); v != "" {
		cfg.Catalog.Path = v
	}
	for _, llm := range []*LLMConfig{&cfg.EmbedLLM, &cfg.InferenceLLM} {
		if llm.Key == "" {
			llm.Key = os.Getenv(TokenEnvVar(llm.Provider))
		}
		if llm.BaseURL == "" && llm.Provider == ProviderOllama {
			llm.BaseURL = os.Getenv("OLLAMA_HOST")
		}
	}
	if cfg.Database.URL == "" {
		cfg.Database.URL = os.Getenv("DB_URL")
	}
	if cfg.Queue.URL == "" {
		cfg.Queue.URL = os.Getenv("RABBITMQ_URL")
	}
	if cfg.Storage.AccessKey == "" {
		cfg.Storage.AccessKey = os.Getenv("AWS_ACCESS_KEY_ID")
	}
	if cfg.Storage.SecretKey == "" {
		cfg.Storage.SecretKey = os.Getenv("AWS_SECRET_ACCESS_KEY")
	}
}

// TokenEnvVar names the environment variable holding the access token for a provider.
func TokenEnvVar(provider string) string {
	switch provider {
	case ProviderHuggingFace, "":
		return "HUGGINGFACEHUB_API_TOKEN"
	case ProviderOpenAI:
		return "OPENAI_API_KEY"
	case ProviderGemini:
		return "GOOGLE_API_KEY"
	default:
		return ""
	}
}

func applyDefaults(cfg *Config) {
	if cfg.Catalog.Path == "" {
		cfg.Catalog.Path = "SHL_Assignment_Data.csv"
	}

	if cfg.RAG.ChunkSize <= 0 {
		cfg.RAG.ChunkSize = 1024
	}
	// a negative overlap disables it
	if cfg.RAG.ChunkOverlap < 0 {
		cfg.RAG.ChunkOverlap = 0
	} else if cfg.RAG.ChunkOverlap == 0 {
		cfg.RAG.ChunkOverlap = 256
	}
	if cfg.RAG.TopK <= 0 {
		cfg.RAG.TopK = 5
	}
	if cfg.RAG.MaxTokens <= 0 {
		cfg.RAG.MaxTokens = 1024
	}
	if cfg.RAG.Temperature == 0 {
		cfg.RAG.Temperature = 0.3
	}
	if cfg.RAG.Strategy == "" {
		cfg.RAG.Strategy = StrategyMarkers
	}
	if cfg.RAG.MaxResults <= 0 {
		cfg.RAG.MaxResults = 10
	}

	if cfg.EmbedLLM.Provider == "" {
		cfg.EmbedLLM.Provider = ProviderHuggingFace
	}
	if cfg.EmbedLLM.Model == "" {
		switch cfg.EmbedLLM.Provider {
		case ProviderHuggingFace:
			cfg.EmbedLLM.Model = "sentence-transformers/all-MiniLM-L6-v2"
		case ProviderOpenAI:
			cfg.EmbedLLM.Model = "text-embedding-3-small"
		case ProviderOllama:
			cfg.EmbedLLM.Model = "nomic-embed-text"
		}
	}
	if cfg.EmbedLLM.TimeoutSecs <= 0 {
		cfg.EmbedLLM.TimeoutSecs = 30
	}

	if cfg.InferenceLLM.Provider == "" {
		cfg.InferenceLLM.Provider = ProviderHuggingFace
	}
	if cfg.InferenceLLM.Model == "" {
		switch cfg.InferenceLLM.Provider {
		case ProviderHuggingFace:
			cfg.InferenceLLM.Model = "HuggingFaceH4/zephyr-7b-beta"
		case ProviderOpenAI:
			cfg.InferenceLLM.Model = "gpt-4o-mini"
		case ProviderOllama:
			cfg.InferenceLLM.Model = "llama3.2"
		case ProviderGemini:
			cfg.InferenceLLM.Model = "gemini-2.5-flash"
		}
	}
	if cfg.InferenceLLM.TimeoutSecs <= 0 {
		cfg.InferenceLLM.TimeoutSecs = 60
	}
	if cfg.InferenceLLM.MaxRetries < 0 {
		cfg.InferenceLLM.MaxRetries = 0
	} else if cfg.InferenceLLM.MaxRetries == 0 {
		cfg.InferenceLLM.MaxRetries = 2
	}

	if cfg.Index.Backend == "" {
		cfg.Index.Backend = BackendChromem
	}
	if cfg.Index.CollectionName == "" {
		cfg.Index.CollectionName = "shl_assessments"
	}
	if cfg.Database.Driver == "" {
		cfg.Database.Driver = "pgdriver"
	}
	if cfg.Database.Table == "" {
		cfg.Database.Table = "assessment_chunks"
	}

	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8000"
	}
	if cfg.Server.MaxConcurrent <= 0 {
		cfg.Server.MaxConcurrent = 8
	}
	if cfg.Server.RequestTimeoutSecs <= 0 {
		cfg.Server.RequestTimeoutSecs = 120
	}
	if cfg.Server.MaxUploadBytes <= 0 {
		cfg.Server.MaxUploadBytes = 10 << 20
	}

	if cfg.Queue.Queue == "" {
		cfg.Queue.Queue = "recommend_requests"
	}
	if cfg.Queue.Workers <= 0 {
		cfg.Queue.Workers = 3
	}

	if cfg.Storage.Region == "" {
		cfg.Storage.Region = "auto"
	}

	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
}

// Validate fails fast on configuration that would otherwise only break on
// the first query.
func (c *Config) Validate() error {
	var problems []string

	for _, llm := range []struct {
		name string
		cfg  LLMConfig
	}{{"embed_llm", c.EmbedLLM}, {"inference_llm", c.InferenceLLM}} {
		switch llm.cfg.Provider {
		case ProviderHuggingFace, ProviderOpenAI, ProviderGemini:
			if llm.cfg.Key == "" {
				problems = append(problems, fmt.Sprintf("%s: provider %q needs an access token (set %s or %s.key)",
					llm.name, llm.cfg.Provider, TokenEnvVar(llm.cfg.Provider), llm.name))
			}
		case ProviderOllama:
		default:
			problems = append(problems, fmt.Sprintf("%s: unsupported provider %q", llm.name, llm.cfg.Provider))
		}
	}
	if c.EmbedLLM.Provider == ProviderGemini {
		problems = append(problems, "embed_llm: provider \"gemini\" is only supported for inference")
	}

	switch c.RAG.Strategy {
	case StrategyMarkers, StrategyStructured:
	default:
		problems = append(problems, fmt.Sprintf("rag.strategy: unsupported strategy %q", c.RAG.Strategy))
	}
	if c.RAG.ChunkOverlap >= c.RAG.ChunkSize {
		problems = append(problems, fmt.Sprintf("rag.chunk_overlap (%d) must be smaller than rag.chunk_size (%d)",
			c.RAG.ChunkOverlap, c.RAG.ChunkSize))
	}

	switch c.Index.Backend {
	case BackendChromem:
	case BackendPGVector:
		if c.Database.URL == "" {
			problems = append(problems, "database.url is required for the pgvector backend (or set DB_URL)")
		}
		if c.Database.Driver != "pgdriver" && c.Database.Driver != "pq" {
			problems = append(problems, fmt.Sprintf("database.driver: unsupported driver %q", c.Database.Driver))
		}
	default:
		problems = append(problems, fmt.Sprintf("index.backend: unsupported backend %q", c.Index.Backend))
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", models.ErrConfig, strings.Join(problems, "; "))
	}
	return nil
}
