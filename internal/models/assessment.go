package models

import "strings"

// AssessmentRecord is one normalized catalog row.
type AssessmentRecord struct {
	Name          string   `json:"name"`
	Description   string   `json:"description"`
	JobLevels     []string `json:"job_levels"`
	TestType      string   `json:"test_type"`
	Duration      string   `json:"duration"`
	RemoteTesting string   `json:"remote_testing"`
	Adaptive      string   `json:"adaptive"`
	URL           string   `json:"url"`
}

// ParsedAssessment is a recommendation recovered from model output. Every
// field carries a usable value even when the model omitted it.
type ParsedAssessment struct {
	Name          string `json:"name"`
	TestType      string `json:"test_type"`
	Description   string `json:"description"`
	KeyFeatures   string `json:"key_features"`
	DurationText  string `json:"duration_text"`
	Duration      int    `json:"duration"`
	RemoteTesting string `json:"remote_testing"`
	Adaptive      string `json:"adaptive"`
	URL           string `json:"url"`
}

// TestTypes splits the test type on commas.
func (p ParsedAssessment) TestTypes() []string {
	if strings.TrimSpace(p.TestType) == "" {
		return []string{}
	}
	parts := strings.Split(p.TestType, ",")
	out := make([]string, 0, len(parts))
	for _, t := range parts {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// Answer is the result of one recommendation request.
type Answer struct {
	Query       string             `json:"query"`
	Strategy    string             `json:"strategy"`
	Raw         string             `json:"raw"`
	Assessments []ParsedAssessment `json:"assessments"`
	Sources     []TextChunk        `json:"sources"`
}

// Fallback returns the raw model text when no assessment could be parsed.
func (a *Answer) Fallback() (string, bool) {
	if a == nil || len(a.Assessments) > 0 {
		return "", false
	}
	return a.Raw, true
}
