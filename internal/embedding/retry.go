package embedding

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/quotable-io/quotable/internal/vector"
)

// RetryConfig configures retry behavior for embedding calls.
type RetryConfig struct {
	MaxRetries int           // maximum retry attempts (0 = no retries)
	RetryDelay time.Duration // initial delay between retries
	MaxDelay   time.Duration // cap for exponential backoff
	Timeout    time.Duration // per-attempt timeout
}

// DefaultRetryConfig returns the default retry configuration.
func DefaultRetryConfig() *RetryConfig {
	return &RetryConfig{
		MaxRetries: 3,
		RetryDelay: 1 * time.Second,
		MaxDelay:   30 * time.Second,
		Timeout:    30 * time.Second,
	}
}

// RetryEmbedder wraps an Embedder with per-attempt timeouts and exponential backoff.
type RetryEmbedder struct {
	inner  Embedder
	config *RetryConfig
}

// NewRetryEmbedder wraps an existing embedder with retry logic.
func NewRetryEmbedder(inner Embedder, config *RetryConfig) *RetryEmbedder {
	if config == nil {
		config = DefaultRetryConfig()
	}
	return &RetryEmbedder{
		inner:  inner,
		config: config,
	}
}

// Embed embeds a single text with timeout and retry logic.
func (r *RetryEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	var lastErr error

	for attempt := 0; attempt <= r.config.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(r.calculateBackoff(attempt)):
			}
		}

		attemptCtx, cancel := context.WithTimeout(ctx, r.config.Timeout)
		embedding, err := r.inner.Embed(attemptCtx, text)
		cancel()

		if err == nil {
			return embedding, nil
		}
		lastErr = err

		if !retryable(err) {
			return nil, err
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
	}

	return nil, fmt.Errorf("max retries (%d) exceeded: %w", r.config.MaxRetries, lastErr)
}

// EmbedBatch embeds a batch of texts with timeout and retry logic.
func (r *RetryEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	var lastErr error

	for attempt := 0; attempt <= r.config.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(r.calculateBackoff(attempt)):
			}
		}

		attemptCtx, cancel := context.WithTimeout(ctx, r.config.Timeout)
		embeddings, err := r.inner.EmbedBatch(attemptCtx, texts)
		cancel()

		if err == nil {
			return embeddings, nil
		}
		lastErr = err

		if !retryable(err) {
			return nil, err
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
	}

	return nil, fmt.Errorf("max retries (%d) exceeded: %w", r.config.MaxRetries, lastErr)
}

// Dimensions returns the underlying embedder's dimension.
func (r *RetryEmbedder) Dimensions() int {
	return r.inner.Dimensions()
}

// Close closes the underlying embedder.
func (r *RetryEmbedder) Close() error {
	return r.inner.Close()
}

// calculateBackoff returns the delay for the given attempt: RetryDelay * 2^(attempt-1),
// capped at MaxDelay.
func (r *RetryEmbedder) calculateBackoff(attempt int) time.Duration {
	delay := r.config.RetryDelay
	for i := 1; i < attempt; i++ {
		delay *= 2
		if delay > r.config.MaxDelay {
			delay = r.config.MaxDelay
			break
		}
	}
	return delay
}

// retryable determines if an error should trigger a retry.
func retryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	if errors.Is(err, ErrEmptyText) {
		return false
	}
	var de *vector.DimensionError
	if errors.As(err, &de) {
		return false
	}
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe.Retryable()
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return netErr.Timeout()
	}
	return true
}
