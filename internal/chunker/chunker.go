package chunker

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/tmc/langchaingo/textsplitter"

	"assessment-rag/internal/models"
)

const (
	DefaultChunkSize    = 1024
	DefaultChunkOverlap = 256
)

// separators are tried coarsest first.
var separators = []string{"\n\n", "\n", " ", ""}

// Chunker renders catalog records into summaries and splits them into
// overlapping chunks. Sizes are counted in runes.
type Chunker struct {
	size     int
	overlap  int
	splitter textsplitter.RecursiveCharacter
}

// New returns a Chunker. Size <= 0 means the default, a negative overlap means
// none, and an overlap not smaller than size is halved to size/2.
func New(size, overlap int) *Chunker {
	if size <= 0 {
		size = DefaultChunkSize
	}
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= size {
		overlap = size / 2
	}
	return &Chunker{
		size:    size,
		overlap: overlap,
		splitter: textsplitter.NewRecursiveCharacter(
			textsplitter.WithChunkSize(size),
			textsplitter.WithChunkOverlap(overlap),
			textsplitter.WithSeparators(separators),
		),
	}
}

func (c *Chunker) Size() int    { return c.size }
func (c *Chunker) Overlap() int { return c.overlap }

// Chunk splits every record's summary. Chunk IDs sort in catalog order.
func (c *Chunker) Chunk(records []models.AssessmentRecord) ([]models.TextChunk, error) {
	var chunks []models.TextChunk
	for i, rec := range records {
		parts, err := c.SplitText(RenderSummary(rec))
		if err != nil {
			return nil, fmt.Errorf("failed to split summary of %q: %v", rec.Name, err)
		}
		for j, text := range parts {
			chunks = append(chunks, models.TextChunk{
				ID:          ChunkID(i, j),
				RecordIndex: i,
				Index:       j,
				Name:        rec.Name,
				URL:         rec.URL,
				Text:        text,
			})
		}
	}
	log.Debug().Int("records", len(records)).Int("chunks", len(chunks)).Msg("Chunked catalog")
	return chunks, nil
}

func (c *Chunker) SplitText(text string) ([]string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, nil
	}
	return c.splitter.SplitText(text)
}

func ChunkID(record, chunk int) string {
	return fmt.Sprintf("rec-%05d-%03d", record, chunk)
}

// RenderSummary renders the fixed-order description of a record that gets
// embedded.
func RenderSummary(rec models.AssessmentRecord) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Assessment: %s\n", rec.Name)
	fmt.Fprintf(&sb, "Description: %s\n", rec.Description)
	fmt.Fprintf(&sb, "Suitable For: %s\n", strings.Join(rec.JobLevels, ", "))
	fmt.Fprintf(&sb, "Test Type: %s\n", rec.TestType)
	fmt.Fprintf(&sb, "Duration: %s\n", rec.Duration)
	fmt.Fprintf(&sb, "Remote Testing: %s\n", rec.RemoteTesting)
	fmt.Fprintf(&sb, "Adaptive/IRT: %s\n", rec.Adaptive)
	fmt.Fprintf(&sb, "URL: %s", rec.URL)
	return sb.String()
}
