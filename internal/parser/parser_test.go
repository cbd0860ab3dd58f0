package parser

import (
	"reflect"
	"testing"

	"assessment-rag/internal/models"
)

func TestParseSingleBlock(t *testing.T) {
	raw := "- Assessment Name: X\n- URL: http://u\n- Duration: 30 minutes\n"
	got := Parse(raw)
	if len(got) != 1 {
		t.Fatalf("got %d records, want 1", len(got))
	}
	a := got[0]
	if a.Name != "X" || a.URL != "http://u" || a.Duration != 30 || a.DurationText != "30 minutes" {
		t.Errorf("unexpected record: %+v", a)
	}
	if a.RemoteTesting != "No" || a.Adaptive != "No" {
		t.Errorf("defaults not applied: %+v", a)
	}
}

func TestParseAllFields(t *testing.T) {
	raw := `Here are my recommendations:

- Assessment Name: Java 8 (New)
- Test Type: Knowledge & Skills, Simulations
- Description: Multi-choice test of Java knowledge.
- Key Features: Adaptive item bank
- Duration: 18 minutes
- Remote Testing Support: Yes
- Adaptive/IRT Support: Yes
- URL: https://www.shl.com/java-8
`
	want := models.ParsedAssessment{
		Name:          "Java 8 (New)",
		TestType:      "Knowledge & Skills, Simulations",
		Description:   "Multi-choice test of Java knowledge.",
		KeyFeatures:   "Adaptive item bank",
		DurationText:  "18 minutes",
		Duration:      18,
		RemoteTesting: "Yes",
		Adaptive:      "Yes",
		URL:           "https://www.shl.com/java-8",
	}
	got := Parse(raw)
	if len(got) != 1 || !reflect.DeepEqual(got[0], want) {
		t.Fatalf("Parse() = %+v, want [%+v]", got, want)
	}
}

func TestParseMultipleRecords(t *testing.T) {
	raw := `- Assessment Name: A
- Test Type: Ability
- Assessment Name: B
- URL: http://b
- Duration: 12`
	got := Parse(raw)
	if len(got) != 2 {
		t.Fatalf("got %d records, want 2", len(got))
	}
	if got[0].Name != "A" || got[0].TestType != "Ability" || got[0].URL != "" {
		t.Errorf("first record = %+v", got[0])
	}
	if got[1].Name != "B" || got[1].URL != "http://b" || got[1].Duration != 12 || got[1].TestType != "" {
		t.Errorf("second record = %+v", got[1])
	}
}

func TestParseIgnoresFieldsBeforeFirstName(t *testing.T) {
	raw := "- URL: http://orphan\n- Duration: 5\n- Assessment Name: Only\n"
	got := Parse(raw)
	if len(got) != 1 || got[0].URL != "" || got[0].Duration != 0 {
		t.Fatalf("Parse() = %+v", got)
	}
}

func TestParseStripsThinking(t *testing.T) {
	raw := "<think>\n- Assessment Name: Hidden\n</think>\n- Assessment Name: Shown\n"
	got := Parse(raw)
	if len(got) != 1 || got[0].Name != "Shown" {
		t.Fatalf("Parse() = %+v", got)
	}
}

func TestParseNoMarkers(t *testing.T) {
	for _, raw := range []string{"", "I could not find anything suitable.", "  \n\n  "} {
		if got := Parse(raw); len(got) != 0 {
			t.Errorf("Parse(%q) = %+v, want empty", raw, got)
		}
	}
}

func TestParseDuration(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"30 minutes", 30},
		{"45", 45},
		{"  20 min", 20},
		{"N/A", 0},
		{"Approx. 30 min", 0},
		{"", 0},
		{"-5 minutes", -5},
		{"30-40 minutes", 0},
	}
	for _, tt := range tests {
		if got := ParseDuration(tt.in); got != tt.want {
			t.Errorf("ParseDuration(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestTypedItemsCap(t *testing.T) {
	items := make([]models.ParsedAssessment, 15)
	for i := range items {
		items[i] = models.ParsedAssessment{Name: "n", TestType: "A, ,B"}
	}
	tests := []struct {
		limit int
		want  int
	}{
		{0, 10},
		{3, 3},
		{50, 10},
	}
	for _, tt := range tests {
		got := TypedItems(items, tt.limit)
		if len(got) != tt.want {
			t.Errorf("TypedItems(limit=%d) returned %d items, want %d", tt.limit, len(got), tt.want)
		}
	}
	if got := TypedItems(items[:1], 0)[0].TestType; !reflect.DeepEqual(got, []string{"A", "B"}) {
		t.Errorf("test types = %v", got)
	}
}

func TestTypedItemsEmptyTestType(t *testing.T) {
	got := TypedItems([]models.ParsedAssessment{{Name: "x"}}, 10)
	if got[0].TestType == nil || len(got[0].TestType) != 0 {
		t.Errorf("test_type = %#v, want empty non-nil slice", got[0].TestType)
	}
}

func TestSimpleItems(t *testing.T) {
	got := SimpleItems(Parse("- Assessment Name: X\n- Key Features: fast\n- Duration: 10 min\n"))
	want := []SimpleItem{{Name: "X", Features: "fast", Duration: "10 min", RemoteTesting: "No", Adaptive: "No"}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("SimpleItems() = %+v, want %+v", got, want)
	}
}
