package llmservice

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/ollama/ollama/api"
	"github.com/ollama/ollama/envconfig"

	"assessment-rag/internal/config"
	"assessment-rag/internal/models"
)

// OllamaGenerator talks to the native Ollama API, which accepts a JSON schema
// in the format field.
type OllamaGenerator struct {
	Client   *api.Client
	Model    string
	settings Settings
}

func NewOllama(cfg config.LLMConfig, settings Settings) (*OllamaGenerator, error) {
	hostURL := envconfig.Host()
	if cfg.BaseURL != "" {
		u, err := url.Parse(cfg.BaseURL)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid ollama url %q: %v", models.ErrConfig, cfg.BaseURL, err)
		}
		hostURL = u
	}
	return &OllamaGenerator{
		Client:   api.NewClient(hostURL, http.DefaultClient),
		Model:    cfg.Model,
		settings: settings,
	}, nil
}

func (o *OllamaGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	return o.generate(ctx, prompt, nil)
}

func (o *OllamaGenerator) GenerateJSON(ctx context.Context, prompt string, schema *Schema) (string, error) {
	format, err := schema.JSON()
	if err != nil {
		return "", fmt.Errorf("%w: %v", models.ErrGeneration, err)
	}
	return o.generate(ctx, prompt, format)
}

func (o *OllamaGenerator) generate(ctx context.Context, prompt string, format []byte) (string, error) {
	stream := false
	req := api.GenerateRequest{
		Model:  o.Model,
		Prompt: prompt,
		Stream: &stream,
		Format: format,
		Options: map[string]interface{}{
			"temperature": o.settings.Temperature,
			"num_predict": o.settings.MaxTokens,
		},
	}

	var responseBuilder strings.Builder
	err := o.Client.Generate(ctx, &req, func(resp api.GenerateResponse) error {
		_, err := responseBuilder.WriteString(resp.Response)
		return err
	})
	if err != nil {
		return "", fmt.Errorf("%w: failed to generate response: %w", models.ErrGeneration, err)
	}
	return responseBuilder.String(), nil
}
