package chunker

import (
	"fmt"
	"reflect"
	"slices"
	"strings"
	"testing"
	"unicode/utf8"

	"assessment-rag/internal/models"
)

func sampleRecord(desc string) models.AssessmentRecord {
	return models.AssessmentRecord{
		Name:          "Verify Numerical Reasoning",
		Description:   desc,
		JobLevels:     []string{"Graduate", "Manager"},
		TestType:      "Ability & Aptitude",
		Duration:      "18",
		RemoteTesting: "Yes",
		Adaptive:      "Yes",
		URL:           "https://example.com/verify",
	}
}

func words(n int) string {
	w := make([]string, n)
	for i := range w {
		w[i] = fmt.Sprintf("w%03d", i)
	}
	return strings.Join(w, " ")
}

func TestRenderSummary(t *testing.T) {
	got := RenderSummary(sampleRecord("Numbers."))
	want := "Assessment: Verify Numerical Reasoning\n" +
		"Description: Numbers.\n" +
		"Suitable For: Graduate, Manager\n" +
		"Test Type: Ability & Aptitude\n" +
		"Duration: 18\n" +
		"Remote Testing: Yes\n" +
		"Adaptive/IRT: Yes\n" +
		"URL: https://example.com/verify"
	if got != want {
		t.Errorf("RenderSummary() =\n%s\nwant\n%s", got, want)
	}
}

func TestNewClampsSettings(t *testing.T) {
	tests := []struct {
		size, overlap         int
		wantSize, wantOverlap int
	}{
		{0, 0, DefaultChunkSize, 0},
		{-1, 10, DefaultChunkSize, 10},
		{100, -5, 100, 0},
		{100, 100, 100, 50},
		{100, 250, 100, 50},
		{1024, 256, 1024, 256},
	}
	for _, tt := range tests {
		c := New(tt.size, tt.overlap)
		if c.Size() != tt.wantSize || c.Overlap() != tt.wantOverlap {
			t.Errorf("New(%d, %d) = (%d, %d), want (%d, %d)", tt.size, tt.overlap, c.Size(), c.Overlap(), tt.wantSize, tt.wantOverlap)
		}
	}
}

func TestChunkShortRecordIsSingleChunk(t *testing.T) {
	rec := sampleRecord("Short description.")
	chunks, err := New(1024, 256).Chunk([]models.AssessmentRecord{rec})
	if err != nil {
		t.Fatalf("Chunk: %v", err)
	}
	if len(chunks) != 1 {
		t.Fatalf("got %d chunks, want 1", len(chunks))
	}
	c := chunks[0]
	if c.Text != RenderSummary(rec) || c.ID != ChunkID(0, 0) || c.Name != rec.Name || c.URL != rec.URL {
		t.Errorf("unexpected chunk: %+v", c)
	}
}

func TestChunkDeterministic(t *testing.T) {
	records := []models.AssessmentRecord{sampleRecord(words(200)), sampleRecord(words(30))}
	c := New(120, 40)
	first, err := c.Chunk(records)
	if err != nil {
		t.Fatalf("Chunk: %v", err)
	}
	second, err := c.Chunk(records)
	if err != nil {
		t.Fatalf("Chunk: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Error("chunking the same records twice gave different results")
	}
	if !slices.IsSortedFunc(first, func(a, b models.TextChunk) int { return strings.Compare(a.ID, b.ID) }) {
		t.Error("chunk IDs are not in catalog order")
	}
}

func TestSplitTextRespectsMaxSize(t *testing.T) {
	for _, size := range []int{40, 120, 1024} {
		c := New(size, size/4)
		parts, err := c.SplitText(RenderSummary(sampleRecord(words(400))))
		if err != nil {
			t.Fatalf("SplitText: %v", err)
		}
		for i, p := range parts {
			if n := utf8.RuneCountInString(p); n > size {
				t.Errorf("size %d: chunk %d has %d runes", size, i, n)
			}
		}
	}
}

func TestSplitTextOverlaps(t *testing.T) {
	c := New(40, 15)
	parts, err := c.SplitText(words(60))
	if err != nil {
		t.Fatalf("SplitText: %v", err)
	}
	if len(parts) < 3 {
		t.Fatalf("got %d chunks, want several", len(parts))
	}
	for i := 0; i+1 < len(parts); i++ {
		next := strings.Fields(parts[i+1])[0]
		if !slices.Contains(strings.Fields(parts[i]), next) {
			t.Errorf("chunk %d does not overlap chunk %d: %q / %q", i, i+1, parts[i], parts[i+1])
		}
	}
}

func TestSplitTextEmpty(t *testing.T) {
	parts, err := New(0, 0).SplitText("   ")
	if err != nil || len(parts) != 0 {
		t.Errorf("SplitText(blank) = %v, %v", parts, err)
	}
}
