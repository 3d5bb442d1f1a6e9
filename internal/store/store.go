// Package store persists quotes and their embeddings across sqlite, postgres,
// and qdrant backends.
package store

import (
	"context"
	"errors"

	"github.com/quotable-io/quotable/internal/models"
)

// ErrUnavailable marks store errors caused by the backend being unreachable
// or failing, as opposed to bad input.
var ErrUnavailable = errors.New("store unavailable")

// Store persists quote records. Implementations must preserve insertion
// order in FetchAll and List.
type Store interface {
	// Insert persists one record with its embedding.
	Insert(ctx context.Context, rec *models.QuoteRecord) error
	// FetchAll returns all records including embeddings, in insertion order.
	FetchAll(ctx context.Context) ([]*models.QuoteRecord, error)
	// List returns text and category of all records, in insertion order.
	List(ctx context.Context) ([]*models.QuoteSummary, error)
	// Count returns the number of stored records.
	Count(ctx context.Context) (int, error)
	// Clear removes all records and returns how many were removed.
	Clear(ctx context.Context) (int, error)
	// Ping verifies the backend is reachable.
	Ping(ctx context.Context) error
	Close() error
}

// NearestSearcher is implemented by backends with native similarity search.
// Results are ordered by descending cosine similarity; equal scores keep
// insertion order. Backends without it are ranked client-side over FetchAll.
type NearestSearcher interface {
	SearchNearest(ctx context.Context, query []float32, k int) ([]*models.ScoredQuote, error)
}
