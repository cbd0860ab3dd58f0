package llmservice

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"assessment-rag/internal/config"
	"assessment-rag/internal/models"
)

// Generator turns a prompt into text.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// StructuredGenerator can additionally constrain its output to a JSON
// document matching schema.
type StructuredGenerator interface {
	Generator
	GenerateJSON(ctx context.Context, prompt string, schema *Schema) (string, error)
}

// Settings are the sampling parameters shared by every backend.
type Settings struct {
	MaxTokens   int
	Temperature float64
}

// New creates the generator for the configured inference provider, wrapped
// with per-attempt timeouts and retries.
func New(ctx context.Context, cfg config.LLMConfig, settings Settings) (Generator, error) {
	log.Debug().Interface("config", map[string]any{
		"provider":    cfg.Provider,
		"base_url":    cfg.BaseURL,
		"model":       cfg.Model,
		"max_tokens":  settings.MaxTokens,
		"temperature": settings.Temperature,
	}).Msg("Creating generator")

	var (
		gen Generator
		err error
	)
	switch cfg.Provider {
	case config.ProviderHuggingFace:
		gen, err = NewHuggingFace(cfg, settings)
	case config.ProviderOpenAI:
		gen, err = NewOpenAI(cfg, settings)
	case config.ProviderOllama:
		gen, err = NewOllama(cfg, settings)
	case config.ProviderGemini:
		gen, err = NewGemini(ctx, cfg, settings)
	default:
		return nil, fmt.Errorf("%w: unsupported inference provider: %s", models.ErrConfig, cfg.Provider)
	}
	if err != nil {
		return nil, err
	}
	return WithRetry(gen, RetryPolicy{
		MaxRetries: cfg.MaxRetries,
		Timeout:    time.Duration(cfg.TimeoutSecs) * time.Second,
	}), nil
}
