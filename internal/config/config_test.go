package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"assessment-rag/internal/models"
)

func clearProviderEnv(t *testing.T) {
	for _, k := range []string{"HUGGINGFACEHUB_API_TOKEN", "OPENAI_API_KEY", "GOOGLE_API_KEY", "OLLAMA_HOST", "SHL_CATALOG_PATH", "DB_URL"} {
		// register restore, then unset so dotenv files can populate the key
		t.Setenv(k, "")
		_ = os.Unsetenv(k)
	}
}

func TestLoadConfig_MissingFileUsesDefaults(t *testing.T) {
	clearProviderEnv(t)
	dir := t.TempDir()

	cfg, err := LoadConfig(filepath.Join(dir, "missing.yaml"), filepath.Join(dir, "none.env"))
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.RAG.ChunkSize != 1024 || cfg.RAG.ChunkOverlap != 256 {
		t.Fatalf("unexpected chunk settings: %+v", cfg.RAG)
	}
	if cfg.RAG.TopK != 5 || cfg.RAG.MaxTokens != 1024 || cfg.RAG.Temperature != 0.3 {
		t.Fatalf("unexpected rag defaults: %+v", cfg.RAG)
	}
	if cfg.EmbedLLM.Model != "sentence-transformers/all-MiniLM-L6-v2" {
		t.Fatalf("unexpected embedding model %q", cfg.EmbedLLM.Model)
	}
	if cfg.InferenceLLM.Model != "HuggingFaceH4/zephyr-7b-beta" {
		t.Fatalf("unexpected inference model %q", cfg.InferenceLLM.Model)
	}
	if cfg.RAG.MaxResults != 10 {
		t.Fatalf("expected max results 10, got %d", cfg.RAG.MaxResults)
	}
}

func TestLoadConfig_ParsesYAMLAndEnvFile(t *testing.T) {
	clearProviderEnv(t)
	dir := t.TempDir()
	yml := "rag:\n  top_k: 7\n  chunk_overlap: -1\ninference_llm:\n  provider: openai\n"
	cfgPath := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(cfgPath, []byte(yml), 0o644); err != nil {
		t.Fatal(err)
	}
	envPath := filepath.Join(dir, "config.env")
	if err := os.WriteFile(envPath, []byte("OPENAI_API_KEY=sk-test\nHUGGINGFACEHUB_API_TOKEN=hf-test\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(cfgPath, envPath)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.RAG.TopK != 7 {
		t.Fatalf("expected top_k 7, got %d", cfg.RAG.TopK)
	}
	if cfg.RAG.ChunkOverlap != 0 {
		t.Fatalf("negative overlap should disable overlap, got %d", cfg.RAG.ChunkOverlap)
	}
	if cfg.InferenceLLM.Key != "sk-test" {
		t.Fatalf("expected key from env file, got %q", cfg.InferenceLLM.Key)
	}
	if cfg.EmbedLLM.Key != "hf-test" {
		t.Fatalf("expected embedding token from env file, got %q", cfg.EmbedLLM.Key)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestValidate_MissingTokenFailsFast(t *testing.T) {
	clearProviderEnv(t)
	dir := t.TempDir()

	cfg, err := LoadConfig(filepath.Join(dir, "missing.yaml"), filepath.Join(dir, "none.env"))
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	err = cfg.Validate()
	if !errors.Is(err, models.ErrConfig) {
		t.Fatalf("expected ErrConfig, got %v", err)
	}
	if !strings.Contains(err.Error(), "HUGGINGFACEHUB_API_TOKEN") {
		t.Fatalf("error should name the missing variable: %v", err)
	}
}

func TestValidate_OllamaNeedsNoToken(t *testing.T) {
	cfg := &Config{}
	cfg.EmbedLLM.Provider = ProviderOllama
	cfg.InferenceLLM.Provider = ProviderOllama
	applyDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestValidate_RejectsUnknownSettings(t *testing.T) {
	cfg := &Config{}
	cfg.EmbedLLM.Provider = ProviderOllama
	cfg.InferenceLLM.Provider = ProviderOllama
	cfg.RAG.Strategy = "magic"
	cfg.Index.Backend = "faiss"
	applyDefaults(cfg)

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation error")
	}
	for _, want := range []string{"rag.strategy", "index.backend"} {
		if !strings.Contains(err.Error(), want) {
			t.Fatalf("expected %q in %v", want, err)
		}
	}
}
