package llmservice

import (
	"context"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/huggingface"
	"github.com/tmc/langchaingo/llms/openai"

	"assessment-rag/internal/config"
	"assessment-rag/internal/models"
)

// LangchainGenerator drives any langchaingo model with a single prompt.
type LangchainGenerator struct {
	llm      llms.Model
	settings Settings
	// jsonMode enables GenerateJSON through the backend's JSON mode.
	jsonMode bool
}

func NewHuggingFace(cfg config.LLMConfig, settings Settings) (*LangchainGenerator, error) {
	opts := []huggingface.Option{huggingface.WithToken(cfg.Key), huggingface.WithModel(cfg.Model)}
	if cfg.BaseURL != "" {
		opts = append(opts, huggingface.WithURL(cfg.BaseURL))
	}
	llm, err := huggingface.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create huggingface client: %v", models.ErrGeneration, err)
	}
	return &LangchainGenerator{llm: llm, settings: settings}, nil
}

func NewOpenAI(cfg config.LLMConfig, settings Settings) (*LangchainGenerator, error) {
	opts := []openai.Option{
		openai.WithToken(strings.TrimPrefix(cfg.Key, "Bearer ")),
		openai.WithModel(cfg.Model),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
	}
	llm, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create openai client: %v", models.ErrGeneration, err)
	}
	return &LangchainGenerator{llm: llm, settings: settings, jsonMode: true}, nil
}

// NewLangchain wraps an existing model. JSON output is requested through
// llms.WithJSONMode when jsonMode is set.
func NewLangchain(llm llms.Model, settings Settings, jsonMode bool) *LangchainGenerator {
	return &LangchainGenerator{llm: llm, settings: settings, jsonMode: jsonMode}
}

func (g *LangchainGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	return g.generate(ctx, prompt)
}

// GenerateJSON asks for JSON output. The schema is carried in the prompt; the
// backend only guarantees syntactically valid JSON.
func (g *LangchainGenerator) GenerateJSON(ctx context.Context, prompt string, _ *Schema) (string, error) {
	if !g.jsonMode {
		return g.generate(ctx, prompt)
	}
	return g.generate(ctx, prompt, llms.WithJSONMode())
}

func (g *LangchainGenerator) generate(ctx context.Context, prompt string, extra ...llms.CallOption) (string, error) {
	opts := append([]llms.CallOption{
		llms.WithMaxTokens(g.settings.MaxTokens),
		llms.WithTemperature(g.settings.Temperature),
	}, extra...)

	out, err := llms.GenerateFromSinglePrompt(ctx, g.llm, prompt, opts...)
	if err != nil {
		return "", fmt.Errorf("%w: %w", models.ErrGeneration, err)
	}
	return out, nil
}

// SupportsJSON reports whether GenerateJSON constrains the output format.
func (g *LangchainGenerator) SupportsJSON() bool { return g.jsonMode }
