package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"

	"github.com/quotable-io/quotable/internal/models"
	"github.com/quotable-io/quotable/internal/vector"
)

// SQLiteStore implements Store on a local SQLite file. Embeddings are kept
// as little-endian float32 blobs; it has no native vector search, so ranking
// happens client-side over FetchAll.
type SQLiteStore struct {
	db *sql.DB
}

var _ Store = (*SQLiteStore)(nil)

// NewSQLiteStore opens or creates the database at dbPath and initializes the
// schema. Parent directories are created if missing.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// WAL allows concurrent readers while the server inserts.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	if err := initSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func initSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS quotes (
		id TEXT PRIMARY KEY,
		text TEXT NOT NULL,
		category TEXT NOT NULL,
		embedding BLOB NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_quotes_category ON quotes(category);
	`
	_, err := db.Exec(schema)
	return err
}

func (s *SQLiteStore) Insert(ctx context.Context, rec *models.QuoteRecord) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO quotes (id, text, category, embedding, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		rec.ID, rec.Text, rec.Category, vector.EncodeFloat32s(rec.Embedding), rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("%w: insert quote: %v", ErrUnavailable, err)
	}
	return nil
}

// FetchAll returns every stored quote with its embedding, oldest first.
func (s *SQLiteStore) FetchAll(ctx context.Context) ([]*models.QuoteRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, text, category, embedding, created_at FROM quotes ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("%w: fetch quotes: %v", ErrUnavailable, err)
	}
	defer rows.Close()

	var records []*models.QuoteRecord
	for rows.Next() {
		rec := &models.QuoteRecord{}
		var blob []byte
		if err := rows.Scan(&rec.ID, &rec.Text, &rec.Category, &blob, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("%w: scan quote: %v", ErrUnavailable, err)
		}
		rec.Embedding, err = vector.DecodeFloat32s(blob)
		if err != nil {
			return nil, fmt.Errorf("decode embedding for quote %s: %w", rec.ID, err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: fetch quotes: %v", ErrUnavailable, err)
	}
	return records, nil
}

func (s *SQLiteStore) List(ctx context.Context) ([]*models.QuoteSummary, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT text, category FROM quotes ORDER BY rowid`)
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

func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM quotes`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("%w: count quotes: %v", ErrUnavailable, err)
	}
	return count, nil
}

func (s *SQLiteStore) Clear(ctx context.Context) (int, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM quotes`)
	if err != nil {
		return 0, fmt.Errorf("%w: clear quotes: %v", ErrUnavailable, err)
	}
	removed, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%w: clear quotes: %v", ErrUnavailable, err)
	}
	return int(removed), nil
}

func (s *SQLiteStore) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
