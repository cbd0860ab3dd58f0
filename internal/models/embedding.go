package models

// TextChunk is a bounded slice of one assessment's rendered summary.
type TextChunk struct {
	ID          string `json:"id"`
	RecordIndex int    `json:"record_index"`
	Index       int    `json:"chunk_index"`
	Name        string `json:"name"`
	URL         string `json:"url"`
	Text        string `json:"text"`
}

// IndexEntry pairs a chunk with its embedding vector.
type IndexEntry struct {
	Chunk     TextChunk
	Embedding []float32
}
