package embedding

import (
	"context"
	"errors"
	"testing"
	"time"

	"assessment-rag/internal/config"
	"assessment-rag/internal/models"
)

type stubEmbedder struct {
	dims  []int
	calls int
	err   error
	wait  bool
}

func (s *stubEmbedder) vector() []float32 {
	d := s.dims[s.calls%len(s.dims)]
	s.calls++
	return make([]float32, d)
}

func (s *stubEmbedder) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	if s.wait {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if s.err != nil {
		return nil, s.err
	}
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = s.vector()
	}
	return out, nil
}

func (s *stubEmbedder) EmbedQuery(ctx context.Context, _ string) ([]float32, error) {
	vs, err := s.EmbedDocuments(ctx, []string{""})
	if err != nil {
		return nil, err
	}
	return vs[0], nil
}

func TestServiceLearnsDimension(t *testing.T) {
	s := NewService(&stubEmbedder{dims: []int{4}}, time.Second, 0)
	if _, err := s.EmbedDocuments(context.Background(), []string{"a", "b"}); err != nil {
		t.Fatalf("EmbedDocuments: %v", err)
	}
	if s.Dim() != 4 {
		t.Errorf("Dim() = %d, want 4", s.Dim())
	}
}

func TestServiceDimensionMismatch(t *testing.T) {
	tests := []struct {
		name string
		dims []int
		pin  int
	}{
		{"mixed batch", []int{4, 5}, 0},
		{"configured size", []int{4}, 8},
		{"empty vector", []int{0}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewService(&stubEmbedder{dims: tt.dims}, time.Second, tt.pin)
			_, err := s.EmbedDocuments(context.Background(), []string{"a", "b"})
			if !errors.Is(err, models.ErrEmbedding) {
				t.Fatalf("err = %v, want ErrEmbedding", err)
			}
		})
	}
}

func TestServiceQueryAfterBuild(t *testing.T) {
	stub := &stubEmbedder{dims: []int{3}}
	s := NewService(stub, time.Second, 0)
	if _, err := s.EmbedDocuments(context.Background(), []string{"a"}); err != nil {
		t.Fatal(err)
	}
	stub.dims = []int{7}
	if _, err := s.EmbedQuery(context.Background(), "q"); !errors.Is(err, models.ErrEmbedding) {
		t.Errorf("err = %v, want ErrEmbedding for mismatched query vector", err)
	}
}

func TestServiceWrapsBackendErrors(t *testing.T) {
	s := NewService(&stubEmbedder{err: errors.New("connection refused")}, time.Second, 0)
	if _, err := s.EmbedQuery(context.Background(), "q"); !errors.Is(err, models.ErrEmbedding) {
		t.Errorf("err = %v, want ErrEmbedding", err)
	}
}

func TestServiceTimeout(t *testing.T) {
	s := NewService(&stubEmbedder{wait: true}, 20*time.Millisecond, 0)
	start := time.Now()
	_, err := s.EmbedQuery(context.Background(), "q")
	if !errors.Is(err, models.ErrEmbedding) {
		t.Fatalf("err = %v, want ErrEmbedding", err)
	}
	if time.Since(start) > 2*time.Second {
		t.Error("timeout was not applied")
	}
}

func TestNewEmbedderRejectsUnknownProvider(t *testing.T) {
	_, err := NewEmbedder(config.LLMConfig{Provider: "gemini"})
	if !errors.Is(err, models.ErrConfig) {
		t.Errorf("err = %v, want ErrConfig", err)
	}
}

func TestNewEmbedderOllama(t *testing.T) {
	e, err := NewEmbedder(config.LLMConfig{Provider: config.ProviderOllama, Model: "nomic-embed-text", BaseURL: "http://127.0.0.1:1"})
	if err != nil || e == nil {
		t.Fatalf("NewEmbedder() = %v, %v", e, err)
	}
}
