package index

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	"rag-api/internal/config"
	"rag-api/internal/models"

	_ "github.com/lib/pq"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/extra/bundebug"
)

type documentRow struct {
	bun.BaseModel `bun:"table:documents,alias:d"`
	ID            string  `bun:"id,pk"`
	Position      int     `bun:"position,notnull"`
	Content       string  `bun:"content,notnull"`
	Similarity    float64 `bun:"similarity,scanonly"`
}

// PostgresIndex stores the corpus in a pgvector table. Add drops and
// recreates the table, so the index always matches the corpus of the
// current run.
type PostgresIndex struct {
	db *bun.DB
}

func NewPostgresIndex(cfg *config.IndexConfig) (*PostgresIndex, error) {
	var sqldb *sql.DB
	var err error
	switch cfg.Driver {
	case "pq":
		sqldb, err = sql.Open("postgres", cfg.DSN)
		if err != nil {
			return nil, fmt.Errorf("opening postgres: %w", err)
		}
	default:
		sqldb = sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(cfg.DSN)))
	}
	db := bun.NewDB(sqldb, pgdialect.New())
	if cfg.Debug {
		db.AddQueryHook(bundebug.NewQueryHook(bundebug.WithVerbose(true)))
	}
	return &PostgresIndex{db: db}, nil
}

func (p *PostgresIndex) Close() error {
	return p.db.Close()
}

func (p *PostgresIndex) Add(ctx context.Context, docs []models.Document, vectors [][]float32) error {
	if len(docs) != len(vectors) {
		return fmt.Errorf("got %d documents but %d vectors", len(docs), len(vectors))
	}
	if len(docs) == 0 {
		return fmt.Errorf("nothing to index")
	}
	if _, err := p.db.ExecContext(ctx, "CREATE EXTENSION IF NOT EXISTS vector"); err != nil {
		return fmt.Errorf("creating vector extension: %w", err)
	}
	if _, err := p.db.NewDropTable().Model((*documentRow)(nil)).IfExists().Exec(ctx); err != nil {
		return fmt.Errorf("dropping documents: %w", err)
	}
	ddl := fmt.Sprintf(
		"CREATE TABLE documents (id text PRIMARY KEY, position int NOT NULL, content text NOT NULL, embedding vector(%d) NOT NULL)",
		len(vectors[0]))
	if _, err := p.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("creating documents: %w", err)
	}
	for i, d := range docs {
		_, err := p.db.ExecContext(ctx,
			"INSERT INTO documents (id, position, content, embedding) VALUES (?, ?, ?, ?::vector)",
			d.ID, d.Position, d.Content, vectorLiteral(vectors[i]))
		if err != nil {
			return fmt.Errorf("storing document %d: %w", d.Position, err)
		}
	}
	return nil
}

func (p *PostgresIndex) Search(ctx context.Context, vector []float32, k int) ([]models.SearchResult, error) {
	lit := vectorLiteral(vector)
	var rows []documentRow
	err := p.db.NewSelect().
		Model(&rows).
		Column("id", "position", "content").
		ColumnExpr("1 - (embedding <=> ?::vector) AS similarity", lit).
		OrderExpr("embedding <=> ?::vector", lit).
		Limit(k).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]models.SearchResult, len(rows))
	for i, r := range rows {
		out[i] = models.SearchResult{
			Document: models.Document{
				ID:       r.ID,
				Position: r.Position,
				Content:  r.Content,
			},
			Similarity: float32(r.Similarity),
		}
	}
	return out, nil
}

func (p *PostgresIndex) Count(ctx context.Context) (int, error) {
	return p.db.NewSelect().Model((*documentRow)(nil)).Count(ctx)
}

// vectorLiteral renders a pgvector input literal, e.g. [0.1,0.2,0.3].
func vectorLiteral(v []float32) string {
	var b strings.Builder
	b.WriteByte('[')
	for i, x := range v {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.FormatFloat(float64(x), 'f', -1, 32))
	}
	b.WriteByte(']')
	return b.String()
}
