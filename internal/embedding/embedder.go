// Package embedding provides text embeddings from an OpenAI-compatible HTTP
// provider, with retries, caching, and a deterministic mock for tests.
package embedding

import (
	"context"
	"errors"
	"fmt"
)

// ErrEmptyText is returned when the text to embed is empty or whitespace-only.
var ErrEmptyText = errors.New("text to embed is empty")

// ProviderError reports a failed embedding provider call. Permanent errors
// (bad requests, auth failures) will not succeed on retry.
type ProviderError struct {
	StatusCode int
	Message    string
	Permanent  bool
}

func (e *ProviderError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("embedding provider: %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("embedding provider: %s", e.Message)
}

// Retryable reports whether retrying the call may succeed.
func (e *ProviderError) Retryable() bool {
	return !e.Permanent
}

// Embedder produces vector embeddings for text.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	Dimensions() int
	Close() error
}
