package index

import (
	"context"
	"fmt"
	"runtime"

	"github.com/philippgille/chromem-go"
	"github.com/rs/zerolog/log"

	"assessment-rag/internal/embedding"
	"assessment-rag/internal/helper"
	"assessment-rag/internal/models"
)

// ChromemIndex keeps the entries in an in-memory chromem-go collection.
type ChromemIndex struct {
	db         *chromem.DB
	collection *chromem.Collection
	chunks     map[string]models.TextChunk
	embedder   *embedding.Service
	dim        int
}

// NewChromemIndex loads pre-embedded entries into a fresh collection. The
// collection's embedding func is svc, so chromem never re-embeds documents.
func NewChromemIndex(ctx context.Context, collectionName string, entries []models.IndexEntry, svc *embedding.Service) (*ChromemIndex, error) {
	if len(entries) == 0 {
		return nil, fmt.Errorf("%w: no entries to index", models.ErrEmbedding)
	}
	if collectionName == "" {
		collectionName = "assessments"
	}

	db := chromem.NewDB()
	c, err := db.GetOrCreateCollection(collectionName, nil, svc.EmbedQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to create/get collection: %v", err)
	}

	dim := len(entries[0].Embedding)
	chunks := make(map[string]models.TextChunk, len(entries))
	docs := make([]chromem.Document, 0, len(entries))
	for _, e := range entries {
		if len(e.Embedding) != dim {
			return nil, fmt.Errorf("%w: chunk %s has %d dimensions, want %d", models.ErrEmbedding, e.Chunk.ID, len(e.Embedding), dim)
		}
		if _, dup := chunks[e.Chunk.ID]; dup {
			return nil, fmt.Errorf("duplicate chunk id: %s", e.Chunk.ID)
		}
		chunks[e.Chunk.ID] = e.Chunk
		docs = append(docs, chromem.Document{
			ID:        e.Chunk.ID,
			Content:   e.Chunk.Text,
			Embedding: e.Embedding,
			Metadata: map[string]string{
				"name": e.Chunk.Name,
				"url":  e.Chunk.URL,
			},
		})
	}

	if err := c.AddDocuments(ctx, docs, runtime.NumCPU()); err != nil {
		return nil, fmt.Errorf("failed to add documents: %v", err)
	}
	log.Info().Str("collection", collectionName).Int("chunks", c.Count()).Int("dim", dim).Msg("Built chromem index")

	return &ChromemIndex{db: db, collection: c, chunks: chunks, embedder: svc, dim: dim}, nil
}

func (m *ChromemIndex) Search(ctx context.Context, text string, k int) ([]Hit, error) {
	vec, err := m.embedder.EmbedQuery(ctx, text)
	if err != nil {
		return nil, err
	}
	return m.SearchVector(ctx, vec, k)
}

func (m *ChromemIndex) SearchVector(ctx context.Context, vec []float32, k int) ([]Hit, error) {
	if err := checkQuery(vec, m.dim); err != nil {
		return nil, err
	}
	total := m.collection.Count()
	if k <= 0 || total == 0 {
		return nil, nil
	}

	// chromem keeps an arbitrary member of a tie at the cutoff, so rank every
	// entry and cut after the stable sort.
	results, err := m.collection.QueryWithOptions(ctx, chromem.QueryOptions{
		QueryEmbedding: vec,
		NResults:       total,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to query by similarity: %v", models.ErrEmbedding, err)
	}

	hits := make([]Hit, 0, len(results))
	for _, r := range results {
		chunk, ok := m.chunks[r.ID]
		if !ok {
			continue
		}
		hits = append(hits, Hit{Chunk: chunk, Score: r.Similarity})
	}
	sortHits(hits)
	if len(hits) > k {
		hits = hits[:k]
	}
	return hits, nil
}

func (m *ChromemIndex) Len() int { return m.collection.Count() }

func (m *ChromemIndex) Dim() int { return m.dim }

// Export writes the collection to path for offline inspection. A non-empty
// key must be 32 bytes and enables encryption.
func (m *ChromemIndex) Export(path string, compress bool, key string) error {
	log.Debug().Str("collection", m.collection.Name).Str("path", path).Bool("compress", compress).Msg("Exporting index")
	if err := helper.CreateParentFolder(path); err != nil {
		return err
	}
	if err := m.db.ExportToFile(path, compress, key, m.collection.Name); err != nil {
		return fmt.Errorf("failed to export database: %v", err)
	}
	return nil
}

func (m *ChromemIndex) Close() error { return nil }
