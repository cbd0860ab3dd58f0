package synth

import (
	"bytes"
	"context"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"assessment-rag/internal/config"
	"assessment-rag/internal/llmservice"
	"assessment-rag/internal/models"
	"assessment-rag/internal/parser"
)

var yesNo = []string{"Yes", "No"}

// AssessmentSchema describes the JSON document requested by StructuredStrategy.
var AssessmentSchema = &llmservice.Schema{
	Type: "object",
	Properties: map[string]*llmservice.Schema{
		"assessments": {
			Type: "array",
			Items: &llmservice.Schema{
				Type: "object",
				Properties: map[string]*llmservice.Schema{
					"name":           {Type: "string"},
					"test_type":      {Type: "string", Description: "comma separated test types"},
					"description":    {Type: "string"},
					"key_features":   {Type: "string"},
					"duration":       {Type: "string", Description: "length in minutes"},
					"remote_testing": {Type: "string", Enum: yesNo},
					"adaptive":       {Type: "string", Enum: yesNo},
					"url":            {Type: "string"},
				},
				Required: []string{"name", "url"},
			},
		},
	},
	Required: []string{"assessments"},
}

// StructuredStrategy requests schema-constrained JSON. Output that does not
// decode to any assessment is run through the marker parser instead.
type StructuredStrategy struct {
	gen llmservice.StructuredGenerator
}

func NewStructuredStrategy(gen llmservice.StructuredGenerator) *StructuredStrategy {
	return &StructuredStrategy{gen: gen}
}

func (s *StructuredStrategy) Name() string { return config.StrategyStructured }

func (s *StructuredStrategy) Synthesize(ctx context.Context, query string, chunks []models.TextChunk) (*models.Answer, error) {
	prompt := BuildPrompt(models.StructuredPromptTemplate, query, chunks)
	raw, err := s.gen.GenerateJSON(ctx, prompt, AssessmentSchema)
	if err != nil {
		return nil, err
	}

	items, err := DecodeAssessments(raw)
	if err != nil {
		log.Warn().Err(err).Msg("Structured output did not decode, falling back to marker parser")
	}
	if len(items) == 0 {
		items = parser.Parse(raw)
	}
	return &models.Answer{
		Query:       query,
		Strategy:    s.Name(),
		Raw:         raw,
		Assessments: items,
		Sources:     chunks,
	}, nil
}

type structuredItem struct {
	Name          looseString `json:"name"`
	TestType      looseString `json:"test_type"`
	Description   looseString `json:"description"`
	KeyFeatures   looseString `json:"key_features"`
	Duration      looseString `json:"duration"`
	RemoteTesting looseString `json:"remote_testing"`
	Adaptive      looseString `json:"adaptive"`
	URL           looseString `json:"url"`
}

// DecodeAssessments reads {"assessments":[...]} (optionally fenced) into
// parsed assessments. Items without a name are dropped.
func DecodeAssessments(raw string) ([]models.ParsedAssessment, error) {
	var doc struct {
		Assessments []structuredItem `json:"assessments"`
	}
	if err := json.Unmarshal([]byte(llmservice.CleanJSON(raw)), &doc); err != nil {
		return nil, err
	}

	out := make([]models.ParsedAssessment, 0, len(doc.Assessments))
	for _, it := range doc.Assessments {
		name := strings.TrimSpace(string(it.Name))
		if name == "" {
			continue
		}
		duration := strings.TrimSpace(string(it.Duration))
		out = append(out, models.ParsedAssessment{
			Name:          name,
			TestType:      strings.TrimSpace(string(it.TestType)),
			Description:   strings.TrimSpace(string(it.Description)),
			KeyFeatures:   strings.TrimSpace(string(it.KeyFeatures)),
			DurationText:  duration,
			Duration:      parser.ParseDuration(duration),
			RemoteTesting: yesNoOrDefault(string(it.RemoteTesting)),
			Adaptive:      yesNoOrDefault(string(it.Adaptive)),
			URL:           strings.TrimSpace(string(it.URL)),
		})
	}
	return out, nil
}

func yesNoOrDefault(v string) string {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "yes", "true", "y":
		return "Yes"
	case "":
		return models.DefaultYesNo
	case "no", "false", "n":
		return "No"
	default:
		return strings.TrimSpace(v)
	}
}

// looseString accepts strings, numbers, booleans and null.
type looseString string

func (l *looseString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case bytes.Equal(b, []byte("null")):
		*l = ""
	case len(b) > 0 && b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*l = looseString(s)
	case bytes.Equal(b, []byte("true")), bytes.Equal(b, []byte("false")):
		v, _ := strconv.ParseBool(string(b))
		if v {
			*l = "Yes"
		} else {
			*l = "No"
		}
	default:
		var n json.Number
		if err := json.Unmarshal(b, &n); err != nil {
			return err
		}
		*l = looseString(n.String())
	}
	return nil
}
