package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	pgvector "github.com/pgvector/pgvector-go"
	pgxvector "github.com/pgvector/pgvector-go/pgx"

	"github.com/quotable-io/quotable/internal/models"
	"github.com/quotable-io/quotable/internal/vector"
)

// PostgresStore implements Store on PostgreSQL with the pgvector extension.
// Similarity search runs in the database via the cosine distance operator.
type PostgresStore struct {
	pool *pgxpool.Pool
	dims int
}

var (
	_ Store           = (*PostgresStore)(nil)
	_ NearestSearcher = (*PostgresStore)(nil)
)

// NewPostgresStore connects to connURL, enables the vector extension, and
// creates the quotes table sized for dims-dimensional embeddings.
func NewPostgresStore(ctx context.Context, connURL string, dims int) (*PostgresStore, error) {
	cfg, err := pgxpool.ParseConfig(connURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse postgres url: %w", err)
	}
	cfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		return pgxvector.RegisterTypes(ctx, conn)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}

	s := &PostgresStore{pool: pool, dims: dims}
	if err := s.initSchema(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return s, nil
}

func (s *PostgresStore) initSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, `CREATE EXTENSION IF NOT EXISTS vector`); err != nil {
		return err
	}
	// seq gives a stable insertion order independent of the UUID keys.
	schema := fmt.Sprintf(`
	CREATE TABLE IF NOT EXISTS quotes (
		id UUID PRIMARY KEY,
		seq BIGSERIAL,
		text TEXT NOT NULL,
		category TEXT NOT NULL,
		embedding VECTOR(%d) NOT NULL,
		created_at TIMESTAMPTZ DEFAULT now()
	)`, s.dims)
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return err
	}
	_, err := s.pool.Exec(ctx,
		`CREATE INDEX IF NOT EXISTS idx_quotes_category ON quotes (category)`)
	return err
}

func (s *PostgresStore) Insert(ctx context.Context, rec *models.QuoteRecord) error {
	if len(rec.Embedding) != s.dims {
		return &vector.DimensionError{Want: s.dims, Got: len(rec.Embedding)}
	}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO quotes (id, text, category, embedding, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		rec.ID, rec.Text, rec.Category, pgvector.NewVector(rec.Embedding), rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("%w: insert quote: %v", ErrUnavailable, err)
	}
	return nil
}

func (s *PostgresStore) FetchAll(ctx context.Context) ([]*models.QuoteRecord, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, text, category, embedding, created_at FROM quotes ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("%w: fetch quotes: %v", ErrUnavailable, err)
	}
	defer rows.Close()

	var records []*models.QuoteRecord
	for rows.Next() {
		rec := &models.QuoteRecord{}
		var emb pgvector.Vector
		if err := rows.Scan(&rec.ID, &rec.Text, &rec.Category, &emb, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("%w: scan quote: %v", ErrUnavailable, err)
		}
		rec.Embedding = emb.Slice()
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: fetch quotes: %v", ErrUnavailable, err)
	}
	return records, nil
}

func (s *PostgresStore) List(ctx context.Context) ([]*models.QuoteSummary, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT text, category FROM quotes ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("%w: list quotes: %v", ErrUnavailable, err)
	}
	defer rows.Close()

	var quotes []*models.QuoteSummary
	for rows.Next() {
		q := &models.QuoteSummary{}
		if err := rows.Scan(&q.Text, &q.Category); err != nil {
			return nil, fmt.Errorf("%w: scan quote: %v", ErrUnavailable, err)
		}
		quotes = append(quotes, q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: list quotes: %v", ErrUnavailable, err)
	}
	return quotes, nil
}

// SearchNearest ranks quotes by cosine similarity inside postgres. The <=>
// operator is cosine distance, so similarity = 1 - distance; ties fall back
// to insertion order.
func (s *PostgresStore) SearchNearest(ctx context.Context, query []float32, k int) ([]*models.ScoredQuote, error) {
	if k <= 0 {
		return []*models.ScoredQuote{}, nil
	}
	if len(query) != s.dims {
		return nil, &vector.DimensionError{Want: s.dims, Got: len(query)}
	}

	rows, err := s.pool.Query(ctx,
		`SELECT text, category, 1 - (embedding <=> $1) AS similarity
		 FROM quotes
		 ORDER BY embedding <=> $1, seq
		 LIMIT $2`,
		pgvector.NewVector(query), k,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: search quotes: %v", ErrUnavailable, err)
	}
	defer rows.Close()

	results := []*models.ScoredQuote{}
	for rows.Next() {
		sq := &models.ScoredQuote{}
		if err := rows.Scan(&sq.Text, &sq.Category, &sq.Similarity); err != nil {
			return nil, fmt.Errorf("%w: scan result: %v", ErrUnavailable, err)
		}
		results = append(results, sq)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: search quotes: %v", ErrUnavailable, err)
	}
	return results, nil
}

func (s *PostgresStore) Count(ctx context.Context) (int, error) {
	var count int
	err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM quotes`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("%w: count quotes: %v", ErrUnavailable, err)
	}
	return count, nil
}

func (s *PostgresStore) Clear(ctx context.Context) (int, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM quotes`)
	if err != nil {
		return 0, fmt.Errorf("%w: clear quotes: %v", ErrUnavailable, err)
	}
	return int(tag.RowsAffected()), nil
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	if err := s.pool.Ping(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}
