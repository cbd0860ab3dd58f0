package synth

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"assessment-rag/internal/config"
	"assessment-rag/internal/llmservice"
	"assessment-rag/internal/models"
	"assessment-rag/internal/parser"
)

// Strategy turns a query and its retrieved context into parsed assessments.
type Strategy interface {
	Name() string
	Synthesize(ctx context.Context, query string, chunks []models.TextChunk) (*models.Answer, error)
}

// New returns the named strategy. The structured strategy needs a generator
// with JSON support and degrades to markers otherwise.
func New(name string, gen llmservice.Generator) (Strategy, error) {
	switch name {
	case config.StrategyMarkers, "":
		return NewMarkerStrategy(gen), nil
	case config.StrategyStructured:
		sg, ok := gen.(llmservice.StructuredGenerator)
		if !ok || !supportsJSON(gen) {
			log.Warn().Msg("Generator has no structured output support, using marker strategy")
			return NewMarkerStrategy(gen), nil
		}
		return NewStructuredStrategy(sg), nil
	default:
		return nil, fmt.Errorf("%w: unsupported strategy: %s", models.ErrConfig, name)
	}
}

func supportsJSON(gen llmservice.Generator) bool {
	if s, ok := gen.(interface{ SupportsJSON() bool }); ok {
		return s.SupportsJSON()
	}
	return true
}

// BuildPrompt fills template with the chunk texts, separated by blank lines,
// and the query.
func BuildPrompt(template, query string, chunks []models.TextChunk) string {
	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}
	return fmt.Sprintf(template, strings.Join(texts, models.ContextSeparator), query)
}

// MarkerStrategy asks for marker-formatted blocks and parses them line by line.
type MarkerStrategy struct {
	gen llmservice.Generator
}

func NewMarkerStrategy(gen llmservice.Generator) *MarkerStrategy {
	return &MarkerStrategy{gen: gen}
}

func (m *MarkerStrategy) Name() string { return config.StrategyMarkers }

func (m *MarkerStrategy) Synthesize(ctx context.Context, query string, chunks []models.TextChunk) (*models.Answer, error) {
	prompt := BuildPrompt(models.RecommendPromptTemplate, query, chunks)
	raw, err := m.gen.Generate(ctx, prompt)
	if err != nil {
		return nil, err
	}
	return &models.Answer{
		Query:       query,
		Strategy:    m.Name(),
		Raw:         raw,
		Assessments: parser.Parse(raw),
		Sources:     chunks,
	}, nil
}
