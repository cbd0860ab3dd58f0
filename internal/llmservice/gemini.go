package llmservice

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"assessment-rag/internal/config"
	"assessment-rag/internal/models"
)

// GeminiGenerator uses the Gemini API, constraining structured output with a
// response schema.
type GeminiGenerator struct {
	client   *genai.Client
	model    string
	settings Settings
}

func NewGemini(ctx context.Context, cfg config.LLMConfig, settings Settings) (*GeminiGenerator, error) {
	cc := &genai.ClientConfig{
		APIKey:  cfg.Key,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create gemini client: %v", models.ErrGeneration, err)
	}
	return &GeminiGenerator{client: client, model: cfg.Model, settings: settings}, nil
}

func (g *GeminiGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	return g.generate(ctx, prompt, g.config())
}

func (g *GeminiGenerator) GenerateJSON(ctx context.Context, prompt string, schema *Schema) (string, error) {
	cfg := g.config()
	cfg.ResponseMIMEType = "application/json"
	cfg.ResponseSchema = schema.Gemini()
	return g.generate(ctx, prompt, cfg)
}

func (g *GeminiGenerator) config() *genai.GenerateContentConfig {
	return &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(float32(g.settings.Temperature)),
		MaxOutputTokens: int32(g.settings.MaxTokens),
	}
}

func (g *GeminiGenerator) generate(ctx context.Context, prompt string, cfg *genai.GenerateContentConfig) (string, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), cfg)
	if err != nil {
		return "", fmt.Errorf("%w: %w", models.ErrGeneration, err)
	}
	return resp.Text(), nil
}
