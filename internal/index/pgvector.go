package index

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"
	"strconv"
	"strings"

	_ "github.com/lib/pq"
	"github.com/rs/zerolog/log"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/extra/bundebug"

	"assessment-rag/internal/config"
	"assessment-rag/internal/embedding"
	"assessment-rag/internal/models"
)

// Vector is a pgvector value in its text form, e.g. "[1,2,3]".
type Vector []float32

func (v Vector) Value() (driver.Value, error) {
	var sb strings.Builder
	sb.WriteByte('[')
	for i, x := range v {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(strconv.FormatFloat(float64(x), 'f', -1, 32))
	}
	sb.WriteByte(']')
	return sb.String(), nil
}

func (v *Vector) Scan(src any) error {
	var s string
	switch t := src.(type) {
	case nil:
		*v = nil
		return nil
	case string:
		s = t
	case []byte:
		s = string(t)
	default:
		return fmt.Errorf("cannot scan %T into Vector", src)
	}

	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "[") || !strings.HasSuffix(s, "]") {
		return fmt.Errorf("invalid vector literal: %q", s)
	}
	s = strings.TrimSpace(s[1 : len(s)-1])
	if s == "" {
		*v = Vector{}
		return nil
	}
	parts := strings.Split(s, ",")
	out := make(Vector, len(parts))
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 32)
		if err != nil {
			return fmt.Errorf("invalid vector element %q: %v", p, err)
		}
		out[i] = float32(f)
	}
	*v = out
	return nil
}

type chunkRow struct {
	bun.BaseModel `bun:"alias:c"`

	ID          string  `bun:"id,pk"`
	RecordIndex int     `bun:"record_index,notnull"`
	ChunkIndex  int     `bun:"chunk_index,notnull"`
	Name        string  `bun:"name,notnull"`
	URL         string  `bun:"url,notnull"`
	Content     string  `bun:"content,notnull"`
	Embedding   Vector  `bun:"embedding,type:vector"`
	Distance    float64 `bun:"distance,scanonly"`
}

// OpenDB connects to Postgres with the configured driver.
func OpenDB(ctx context.Context, cfg config.DatabaseConfig) (*bun.DB, error) {
	var (
		sqldb *sql.DB
		err   error
	)
	switch cfg.Driver {
	case "pq":
		sqldb, err = sql.Open("postgres", cfg.URL)
		if err != nil {
			return nil, fmt.Errorf("failed to open database: %v", err)
		}
	default:
		opts := []pgdriver.Option{pgdriver.WithDSN(cfg.URL)}
		if cfg.Password != "" {
			opts = append(opts, pgdriver.WithPassword(cfg.Password))
		}
		sqldb = sql.OpenDB(pgdriver.NewConnector(opts...))
	}

	db := bun.NewDB(sqldb, pgdialect.New())
	if cfg.Debug {
		db.AddQueryHook(bundebug.NewQueryHook(bundebug.WithVerbose(true)))
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: failed to connect to database: %v", models.ErrEmbedding, err)
	}
	return db, nil
}

// PGVectorIndex stores entries in a Postgres table with a pgvector column and
// ranks by cosine distance.
type PGVectorIndex struct {
	db       *bun.DB
	table    string
	embedder *embedding.Service
	dim      int
	count    int
}

// NewPGVectorIndex drops and recreates table, then inserts entries. The index
// takes ownership of db.
func NewPGVectorIndex(ctx context.Context, db *bun.DB, table string, entries []models.IndexEntry, svc *embedding.Service) (*PGVectorIndex, error) {
	if len(entries) == 0 {
		return nil, fmt.Errorf("%w: no entries to index", models.ErrEmbedding)
	}
	if table == "" {
		table = "assessment_chunks"
	}
	dim := len(entries[0].Embedding)

	rows := make([]chunkRow, 0, len(entries))
	for _, e := range entries {
		if len(e.Embedding) != dim {
			return nil, fmt.Errorf("%w: chunk %s has %d dimensions, want %d", models.ErrEmbedding, e.Chunk.ID, len(e.Embedding), dim)
		}
		rows = append(rows, chunkRow{
			ID:          e.Chunk.ID,
			RecordIndex: e.Chunk.RecordIndex,
			ChunkIndex:  e.Chunk.Index,
			Name:        e.Chunk.Name,
			URL:         e.Chunk.URL,
			Content:     e.Chunk.Text,
			Embedding:   Vector(e.Embedding),
		})
	}

	err := db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.ExecContext(ctx, "CREATE EXTENSION IF NOT EXISTS vector"); err != nil {
			return fmt.Errorf("failed to enable pgvector: %v", err)
		}
		if _, err := tx.ExecContext(ctx, "DROP TABLE IF EXISTS ?", bun.Ident(table)); err != nil {
			return fmt.Errorf("failed to drop table: %v", err)
		}
		if _, err := tx.ExecContext(ctx, `CREATE TABLE ? (
	id text PRIMARY KEY,
	record_index integer NOT NULL,
	chunk_index integer NOT NULL,
	name text NOT NULL,
	url text NOT NULL,
	content text NOT NULL,
	embedding vector(?) NOT NULL
)`, bun.Ident(table), dim); err != nil {
			return fmt.Errorf("failed to create table: %v", err)
		}
		for start := 0; start < len(rows); start += embedBatchSize {
			batch := rows[start:min(start+embedBatchSize, len(rows))]
			if _, err := tx.NewInsert().Model(&batch).ModelTableExpr("?", bun.Ident(table)).Exec(ctx); err != nil {
				return fmt.Errorf("failed to insert chunks: %v", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrEmbedding, err)
	}
	log.Info().Str("table", table).Int("chunks", len(rows)).Int("dim", dim).Msg("Built pgvector index")

	return &PGVectorIndex{db: db, table: table, embedder: svc, dim: dim, count: len(rows)}, nil
}

func (p *PGVectorIndex) Search(ctx context.Context, text string, k int) ([]Hit, error) {
	vec, err := p.embedder.EmbedQuery(ctx, text)
	if err != nil {
		return nil, err
	}
	return p.SearchVector(ctx, vec, k)
}

func (p *PGVectorIndex) SearchVector(ctx context.Context, vec []float32, k int) ([]Hit, error) {
	if err := checkQuery(vec, p.dim); err != nil {
		return nil, err
	}
	if k <= 0 {
		return nil, nil
	}

	var rows []chunkRow
	err := p.db.NewSelect().
		Model(&rows).
		ModelTableExpr("? AS c", bun.Ident(p.table)).
		Column("id", "record_index", "chunk_index", "name", "url", "content").
		ColumnExpr("embedding <=> ?::vector AS distance", Vector(vec)).
		OrderExpr("distance ASC, id ASC").
		Limit(k).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to search chunks: %v", models.ErrEmbedding, err)
	}

	hits := make([]Hit, 0, len(rows))
	for _, r := range rows {
		hits = append(hits, Hit{
			Chunk: models.TextChunk{
				ID:          r.ID,
				RecordIndex: r.RecordIndex,
				Index:       r.ChunkIndex,
				Name:        r.Name,
				URL:         r.URL,
				Text:        r.Content,
			},
			Score: float32(1 - r.Distance),
		})
	}
	return hits, nil
}

func (p *PGVectorIndex) Len() int { return p.count }

func (p *PGVectorIndex) Dim() int { return p.dim }

func (p *PGVectorIndex) Close() error { return p.db.Close() }
