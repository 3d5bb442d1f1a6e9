package store

import (
	"context"
	"fmt"

	"github.com/quotable-io/quotable/internal/config"
)

// Backend identifies a store implementation.
type Backend string

const (
	// BackendSQLite keeps quotes in a local file. Good default for single-node runs.
	BackendSQLite Backend = "sqlite"
	// BackendPostgres uses PostgreSQL with the pgvector extension for in-database ranking.
	BackendPostgres Backend = "postgres"
	// BackendQdrant keeps quotes in a Qdrant collection reached over gRPC.
	BackendQdrant Backend = "qdrant"
)

// Open creates the store selected by cfg.Backend, sized for dims-dimensional
// embeddings. Supported backends: "sqlite" (default), "postgres", "qdrant".
func Open(ctx context.Context, cfg *config.StoreConfig, dims int) (Store, error) {
	switch Backend(cfg.Backend) {
	case BackendSQLite, "":
		return NewSQLiteStore(cfg.DatabasePath)
	case BackendPostgres:
		if cfg.PostgresURL == "" {
			return nil, fmt.Errorf("postgres backend requires a connection url")
		}
		return NewPostgresStore(ctx, cfg.PostgresURL, dims)
	case BackendQdrant:
		return NewQdrantStore(ctx, cfg.Qdrant.Addr, cfg.Qdrant.Collection, dims)
	default:
		return nil, fmt.Errorf("unknown store backend: %s (supported: sqlite, postgres, qdrant)", cfg.Backend)
	}
}
