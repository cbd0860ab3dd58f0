package embedding

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/tmc/langchaingo/embeddings"
	hfembed "github.com/tmc/langchaingo/embeddings/huggingface"
	"github.com/tmc/langchaingo/llms/huggingface"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"

	"assessment-rag/internal/config"
	"assessment-rag/internal/models"
)

// NewEmbedder creates the embedder for the configured provider.
func NewEmbedder(cfg config.LLMConfig) (embeddings.Embedder, error) {
	log.Debug().Interface("config", map[string]string{
		"provider": cfg.Provider,
		"base_url": cfg.BaseURL,
		"model":    cfg.Model,
	}).Msg("Creating embedder")

	switch cfg.Provider {
	case config.ProviderHuggingFace:
		return newHuggingFaceEmbedder(cfg)
	case config.ProviderOllama:
		return newOllamaEmbedder(cfg)
	case config.ProviderOpenAI:
		return newOpenAIEmbedder(cfg)
	default:
		return nil, fmt.Errorf("%w: unsupported embedding provider: %s", models.ErrConfig, cfg.Provider)
	}
}

func newHuggingFaceEmbedder(cfg config.LLMConfig) (embeddings.Embedder, error) {
	opts := []huggingface.Option{huggingface.WithToken(cfg.Key), huggingface.WithModel(cfg.Model)}
	if cfg.BaseURL != "" {
		opts = append(opts, huggingface.WithURL(cfg.BaseURL))
	}
	client, err := huggingface.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create huggingface client: %v", models.ErrEmbedding, err)
	}
	e, err := hfembed.NewHuggingface(hfembed.WithClient(*client), hfembed.WithModel(cfg.Model))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create huggingface embedder: %v", models.ErrEmbedding, err)
	}
	return e, nil
}

func newOllamaEmbedder(cfg config.LLMConfig) (embeddings.Embedder, error) {
	opts := []ollama.Option{ollama.WithModel(cfg.Model)}
	if cfg.BaseURL != "" {
		opts = append(opts, ollama.WithServerURL(cfg.BaseURL))
	}
	llm, err := ollama.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create ollama client: %v", models.ErrEmbedding, err)
	}
	e, err := embeddings.NewEmbedder(llm)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create ollama embedder: %v", models.ErrEmbedding, err)
	}
	return e, nil
}

func newOpenAIEmbedder(cfg config.LLMConfig) (embeddings.Embedder, error) {
	opts := []openai.Option{
		openai.WithToken(strings.TrimPrefix(cfg.Key, "Bearer ")),
		openai.WithEmbeddingModel(cfg.Model),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
	}
	llm, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create openai client: %v", models.ErrEmbedding, err)
	}
	e, err := embeddings.NewEmbedder(llm)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create openai embedder: %v", models.ErrEmbedding, err)
	}
	return e, nil
}

// Service bounds every embedding call with a timeout and checks that all
// vectors share one dimensionality. It satisfies embeddings.Embedder.
type Service struct {
	embedder embeddings.Embedder
	timeout  time.Duration
	dim      atomic.Int64
}

var _ embeddings.Embedder = (*Service)(nil)

// NewService wraps e. A positive dim pins the expected vector size; otherwise
// the size of the first vector produced is used.
func NewService(e embeddings.Embedder, timeout time.Duration, dim int) *Service {
	s := &Service{embedder: e, timeout: timeout}
	if dim > 0 {
		s.dim.Store(int64(dim))
	}
	return s
}

// Dim returns the vector size, or 0 before anything was embedded.
func (s *Service) Dim() int { return int(s.dim.Load()) }

func (s *Service) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	vectors, err := s.embedder.EmbedDocuments(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to embed %d documents: %v", models.ErrEmbedding, len(texts), err)
	}
	if len(vectors) != len(texts) {
		return nil, fmt.Errorf("%w: got %d vectors for %d documents", models.ErrEmbedding, len(vectors), len(texts))
	}
	for i, v := range vectors {
		if err := s.checkDim(v); err != nil {
			return nil, fmt.Errorf("document %d: %w", i, err)
		}
	}
	return vectors, nil
}

func (s *Service) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	v, err := s.embedder.EmbedQuery(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to embed query: %v", models.ErrEmbedding, err)
	}
	if err := s.checkDim(v); err != nil {
		return nil, err
	}
	return v, nil
}

func (s *Service) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.timeout)
}

func (s *Service) checkDim(v []float32) error {
	if len(v) == 0 {
		return fmt.Errorf("%w: empty vector", models.ErrEmbedding)
	}
	// first vector fixes the size when none was configured
	s.dim.CompareAndSwap(0, int64(len(v)))
	if want := s.dim.Load(); int64(len(v)) != want {
		return fmt.Errorf("%w: vector has %d dimensions, want %d", models.ErrEmbedding, len(v), want)
	}
	return nil
}
