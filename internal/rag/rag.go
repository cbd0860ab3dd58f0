package rag

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"assessment-rag/internal/catalog"
	"assessment-rag/internal/chunker"
	"assessment-rag/internal/config"
	"assessment-rag/internal/embedding"
	"assessment-rag/internal/index"
	"assessment-rag/internal/llmservice"
	"assessment-rag/internal/models"
	"assessment-rag/internal/synth"
)

// DefaultTopK is the number of chunks retrieved per query.
const DefaultTopK = 5

// Retriever embeds a query and returns the best matching chunks.
type Retriever struct {
	index    index.Index
	embedder *embedding.Service
	topK     int
}

func NewRetriever(idx index.Index, svc *embedding.Service, topK int) *Retriever {
	if topK <= 0 {
		topK = DefaultTopK
	}
	return &Retriever{index: idx, embedder: svc, topK: topK}
}

// Retrieve returns up to k chunks ordered by similarity. k <= 0 uses the
// configured default.
func (r *Retriever) Retrieve(ctx context.Context, query string, k int) ([]models.TextChunk, error) {
	if k <= 0 {
		k = r.topK
	}
	vec, err := r.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, err
	}
	hits, err := r.index.SearchVector(ctx, vec, k)
	if err != nil {
		return nil, err
	}
	chunks := make([]models.TextChunk, len(hits))
	for i, h := range hits {
		chunks[i] = h.Chunk
	}
	return chunks, nil
}

// Service answers recommendation queries. It is read-only after Init and safe
// for concurrent use.
type Service struct {
	records   []models.AssessmentRecord
	index     index.Index
	retriever *Retriever
	strategy  synth.Strategy
}

// NewService assembles a service from already built parts.
func NewService(records []models.AssessmentRecord, idx index.Index, retriever *Retriever, strategy synth.Strategy) *Service {
	return &Service{records: records, index: idx, retriever: retriever, strategy: strategy}
}

// Init runs the offline stage: load the catalog, chunk it, embed every chunk
// and build the index, then wire the generator. It blocks until the service
// can answer queries.
func Init(ctx context.Context, cfg *config.Config) (*Service, error) {
	start := time.Now()

	records, err := LoadCatalog(ctx, cfg)
	if err != nil {
		return nil, err
	}

	chunks, err := chunker.New(cfg.RAG.ChunkSize, cfg.RAG.ChunkOverlap).Chunk(records)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrDataLoad, err)
	}

	embedder, err := embedding.NewEmbedder(cfg.EmbedLLM)
	if err != nil {
		return nil, err
	}
	svc := embedding.NewService(embedder, time.Duration(cfg.EmbedLLM.TimeoutSecs)*time.Second, cfg.EmbedLLM.Dimension)

	idx, err := index.Build(ctx, cfg, chunks, svc)
	if err != nil {
		return nil, err
	}

	gen, err := llmservice.New(ctx, cfg.InferenceLLM, llmservice.Settings{
		MaxTokens:   cfg.RAG.MaxTokens,
		Temperature: cfg.RAG.Temperature,
	})
	if err != nil {
		idx.Close()
		return nil, err
	}
	strategy, err := synth.New(cfg.RAG.Strategy, gen)
	if err != nil {
		idx.Close()
		return nil, err
	}

	log.Info().
		Int("records", len(records)).
		Int("chunks", idx.Len()).
		Int("dim", idx.Dim()).
		Str("strategy", strategy.Name()).
		Dur("took", time.Since(start)).
		Msg("Recommendation service ready")

	return NewService(records, idx, NewRetriever(idx, svc, cfg.RAG.TopK), strategy), nil
}

// LoadCatalog loads the configured catalog, fetching s3:// paths through the
// configured object store.
func LoadCatalog(ctx context.Context, cfg *config.Config) ([]models.AssessmentRecord, error) {
	opts := []catalog.Option{catalog.WithSheet(cfg.Catalog.Sheet)}
	if strings.HasPrefix(cfg.Catalog.Path, "s3://") {
		fetcher, err := catalog.NewS3Fetcher(ctx, cfg.Storage)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", models.ErrDataLoad, err)
		}
		opts = append(opts, catalog.WithFetcher(fetcher))
	}
	return catalog.Load(ctx, cfg.Catalog.Path, opts...)
}

// Recommend retrieves context for query and synthesizes assessments.
func (s *Service) Recommend(ctx context.Context, query string) (*models.Answer, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, models.ErrEmptyQuery
	}

	chunks, err := s.retriever.Retrieve(ctx, query, 0)
	if err != nil {
		return nil, err
	}
	ans, err := s.strategy.Synthesize(ctx, query, chunks)
	if err != nil {
		return nil, err
	}
	log.Debug().Str("query", query).Int("context", len(chunks)).Int("assessments", len(ans.Assessments)).Msg("Recommended")
	return ans, nil
}

func (s *Service) Records() []models.AssessmentRecord { return s.records }

func (s *Service) Strategy() string { return s.strategy.Name() }

// Close releases the index.
func (s *Service) Close() error {
	if s.index == nil {
		return nil
	}
	return s.index.Close()
}
