package synth

import (
	"context"
	"errors"
	"strings"
	"testing"

	"assessment-rag/internal/config"
	"assessment-rag/internal/llmservice"
	"assessment-rag/internal/models"
)

type stubGenerator struct {
	out     string
	err     error
	prompts []string
}

func (s *stubGenerator) Generate(_ context.Context, prompt string) (string, error) {
	s.prompts = append(s.prompts, prompt)
	return s.out, s.err
}

type stubStructured struct {
	stubGenerator
	schema *llmservice.Schema
	json   bool
}

func (s *stubStructured) GenerateJSON(ctx context.Context, prompt string, schema *llmservice.Schema) (string, error) {
	s.schema = schema
	return s.Generate(ctx, prompt)
}

func (s *stubStructured) SupportsJSON() bool { return s.json }

var chunks = []models.TextChunk{
	{ID: "a", Text: "Assessment: Java 8"},
	{ID: "b", Text: "Assessment: Python"},
}

func TestBuildPrompt(t *testing.T) {
	p := BuildPrompt(models.RecommendPromptTemplate, "java developer", chunks)
	if !strings.Contains(p, "Assessment: Java 8\n\nAssessment: Python") {
		t.Errorf("context not joined by blank lines:\n%s", p)
	}
	if !strings.Contains(p, "Question: java developer") {
		t.Errorf("query missing:\n%s", p)
	}
	for _, m := range []string{models.MarkerName, models.MarkerTestType, models.MarkerDuration, models.MarkerURL, models.MarkerAdaptive, models.MarkerRemote} {
		if !strings.Contains(p, "\n"+m) {
			t.Errorf("marker %q missing from prompt", m)
		}
	}
}

func TestMarkerStrategy(t *testing.T) {
	gen := &stubGenerator{out: "- Assessment Name: Java 8\n- Duration: 18 minutes\n"}
	ans, err := NewMarkerStrategy(gen).Synthesize(context.Background(), "java", chunks)
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	if len(ans.Assessments) != 1 || ans.Assessments[0].Duration != 18 {
		t.Errorf("assessments = %+v", ans.Assessments)
	}
	if ans.Raw != gen.out || ans.Strategy != config.StrategyMarkers || len(ans.Sources) != 2 {
		t.Errorf("answer = %+v", ans)
	}
}

func TestMarkerStrategyFallbackText(t *testing.T) {
	gen := &stubGenerator{out: "Sorry, nothing matches."}
	ans, err := NewMarkerStrategy(gen).Synthesize(context.Background(), "q", chunks)
	if err != nil {
		t.Fatal(err)
	}
	if raw, ok := ans.Fallback(); !ok || raw != gen.out {
		t.Errorf("Fallback() = %q, %v", raw, ok)
	}
}

func TestMarkerStrategyPropagatesErrors(t *testing.T) {
	gen := &stubGenerator{err: models.ErrGeneration}
	if _, err := NewMarkerStrategy(gen).Synthesize(context.Background(), "q", chunks); !errors.Is(err, models.ErrGeneration) {
		t.Errorf("err = %v", err)
	}
}

func TestStructuredStrategy(t *testing.T) {
	gen := &stubStructured{json: true}
	gen.out = "```json\n" + `{"assessments":[
		{"name":"Java 8","test_type":"Knowledge & Skills, Simulations","duration":18,"remote_testing":true,"adaptive":"no","url":"https://x/java"},
		{"name":"","url":"https://x/ignored"}
	]}` + "\n```"

	ans, err := NewStructuredStrategy(gen).Synthesize(context.Background(), "java", chunks)
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	if gen.schema != AssessmentSchema {
		t.Error("schema not passed to generator")
	}
	if len(ans.Assessments) != 1 {
		t.Fatalf("assessments = %+v", ans.Assessments)
	}
	a := ans.Assessments[0]
	if a.Name != "Java 8" || a.Duration != 18 || a.RemoteTesting != "Yes" || a.Adaptive != "No" || a.URL != "https://x/java" {
		t.Errorf("unexpected assessment: %+v", a)
	}
	if got := a.TestTypes(); len(got) != 2 {
		t.Errorf("test types = %v", got)
	}
}

func TestStructuredStrategyFallsBackToMarkers(t *testing.T) {
	gen := &stubStructured{json: true}
	gen.out = "- Assessment Name: OPQ32r\n- URL: https://x/opq"
	ans, err := NewStructuredStrategy(gen).Synthesize(context.Background(), "q", chunks)
	if err != nil {
		t.Fatal(err)
	}
	if len(ans.Assessments) != 1 || ans.Assessments[0].Name != "OPQ32r" {
		t.Errorf("assessments = %+v", ans.Assessments)
	}
}

func TestDecodeAssessmentsDefaults(t *testing.T) {
	items, err := DecodeAssessments(`{"assessments":[{"name":"X","duration":null}]}`)
	if err != nil {
		t.Fatal(err)
	}
	if items[0].RemoteTesting != "No" || items[0].Adaptive != "No" || items[0].Duration != 0 {
		t.Errorf("defaults not applied: %+v", items[0])
	}
	if _, err := DecodeAssessments("not json"); err == nil {
		t.Error("expected decode error")
	}
}

func TestNew(t *testing.T) {
	tests := []struct {
		name     string
		strategy string
		gen      llmservice.Generator
		want     string
		wantErr  bool
	}{
		{"default", "", &stubGenerator{}, config.StrategyMarkers, false},
		{"markers", config.StrategyMarkers, &stubStructured{json: true}, config.StrategyMarkers, false},
		{"structured", config.StrategyStructured, &stubStructured{json: true}, config.StrategyStructured, false},
		{"structured without json mode", config.StrategyStructured, &stubStructured{}, config.StrategyMarkers, false},
		{"structured plain generator", config.StrategyStructured, &stubGenerator{}, config.StrategyMarkers, false},
		{"unknown", "poetry", &stubGenerator{}, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := New(tt.strategy, tt.gen)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v", err)
			}
			if err == nil && s.Name() != tt.want {
				t.Errorf("Name() = %s, want %s", s.Name(), tt.want)
			}
		})
	}
}
