package parser

import "assessment-rag/internal/models"

// MaxRecommendations caps the typed response.
const MaxRecommendations = 10

// SimpleItem is the loosely typed shape served by GET /recommend.
type SimpleItem struct {
	Name          string `json:"name"`
	TestType      string `json:"test_type"`
	Features      string `json:"features"`
	Duration      string `json:"duration"`
	RemoteTesting string `json:"remote_testing"`
	Adaptive      string `json:"adaptive"`
	URL           string `json:"url"`
}

// TypedItem is the shape served by POST /recommend.
type TypedItem struct {
	URL             string   `json:"url"`
	AdaptiveSupport string   `json:"adaptive_support"`
	Description     string   `json:"description"`
	Duration        int      `json:"duration"`
	RemoteSupport   string   `json:"remote_support"`
	TestType        []string `json:"test_type"`
}

func SimpleItems(items []models.ParsedAssessment) []SimpleItem {
	out := make([]SimpleItem, 0, len(items))
	for _, a := range items {
		out = append(out, SimpleItem{
			Name:          a.Name,
			TestType:      a.TestType,
			Features:      a.KeyFeatures,
			Duration:      a.DurationText,
			RemoteTesting: a.RemoteTesting,
			Adaptive:      a.Adaptive,
			URL:           a.URL,
		})
	}
	return out
}

// TypedItems converts at most limit items. A limit outside (0, MaxRecommendations]
// is treated as MaxRecommendations.
func TypedItems(items []models.ParsedAssessment, limit int) []TypedItem {
	if limit <= 0 || limit > MaxRecommendations {
		limit = MaxRecommendations
	}
	if len(items) > limit {
		items = items[:limit]
	}
	out := make([]TypedItem, 0, len(items))
	for _, a := range items {
		out = append(out, TypedItem{
			URL:             a.URL,
			AdaptiveSupport: a.Adaptive,
			Description:     a.Description,
			Duration:        a.Duration,
			RemoteSupport:   a.RemoteTesting,
			TestType:        a.TestTypes(),
		})
	}
	return out
}
