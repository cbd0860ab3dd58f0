package index

import (
	"cmp"
	"context"
	"fmt"
	"slices"

	"github.com/rs/zerolog/log"

	"assessment-rag/internal/config"
	"assessment-rag/internal/embedding"
	"assessment-rag/internal/models"
)

// embedBatchSize bounds how many chunks go into one embedding request.
const embedBatchSize = 64

// Hit is one search result.
type Hit struct {
	Chunk models.TextChunk
	Score float32
}

// Index is a read-only nearest-neighbour index over catalog chunks. It is safe
// for concurrent searches once built.
type Index interface {
	// Search embeds text and returns the k most similar chunks.
	Search(ctx context.Context, text string, k int) ([]Hit, error)
	// SearchVector returns the k chunks most similar to vec, best first.
	SearchVector(ctx context.Context, vec []float32, k int) ([]Hit, error)
	Len() int
	Dim() int
	Close() error
}

// Build embeds every chunk once and loads the entries into the configured
// backend.
func Build(ctx context.Context, cfg *config.Config, chunks []models.TextChunk, svc *embedding.Service) (Index, error) {
	entries, err := EmbedChunks(ctx, svc, chunks)
	if err != nil {
		return nil, err
	}

	switch cfg.Index.Backend {
	case config.BackendChromem, "":
		idx, err := NewChromemIndex(ctx, cfg.Index.CollectionName, entries, svc)
		if err != nil {
			return nil, err
		}
		if cfg.Index.ExportPath != "" {
			if err := idx.Export(cfg.Index.ExportPath, cfg.Index.Compress, cfg.Index.EncryptionKey); err != nil {
				log.Warn().Err(err).Str("path", cfg.Index.ExportPath).Msg("Failed to export index")
			}
		}
		return idx, nil
	case config.BackendPGVector:
		db, err := OpenDB(ctx, cfg.Database)
		if err != nil {
			return nil, err
		}
		idx, err := NewPGVectorIndex(ctx, db, cfg.Database.Table, entries, svc)
		if err != nil {
			db.Close()
			return nil, err
		}
		return idx, nil
	default:
		return nil, fmt.Errorf("%w: unsupported index backend: %s", models.ErrConfig, cfg.Index.Backend)
	}
}

// EmbedChunks embeds chunk texts in batches, preserving order.
func EmbedChunks(ctx context.Context, svc *embedding.Service, chunks []models.TextChunk) ([]models.IndexEntry, error) {
	if len(chunks) == 0 {
		return nil, fmt.Errorf("%w: no chunks to index", models.ErrEmbedding)
	}

	entries := make([]models.IndexEntry, 0, len(chunks))
	for start := 0; start < len(chunks); start += embedBatchSize {
		batch := chunks[start:min(start+embedBatchSize, len(chunks))]
		texts := make([]string, len(batch))
		for i, c := range batch {
			texts[i] = c.Text
		}
		vectors, err := svc.EmbedDocuments(ctx, texts)
		if err != nil {
			return nil, err
		}
		for i, c := range batch {
			entries = append(entries, models.IndexEntry{Chunk: c, Embedding: vectors[i]})
		}
		log.Debug().Int("embedded", len(entries)).Int("total", len(chunks)).Msg("Embedding chunks")
	}
	return entries, nil
}

// sortHits orders by score descending, then chunk ID ascending.
func sortHits(hits []Hit) {
	slices.SortStableFunc(hits, func(a, b Hit) int {
		if c := cmp.Compare(b.Score, a.Score); c != 0 {
			return c
		}
		return cmp.Compare(a.Chunk.ID, b.Chunk.ID)
	})
}

func checkQuery(vec []float32, dim int) error {
	if len(vec) != dim {
		return fmt.Errorf("%w: query vector has %d dimensions, index has %d", models.ErrEmbedding, len(vec), dim)
	}
	return nil
}
