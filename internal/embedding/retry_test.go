package embedding

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"
)

// stubEmbedder is a controllable embedder for wrapper tests. When fn is set
// it is consulted first with the 1-based attempt number; a nil, nil return
// falls through to a deterministic vector.
type stubEmbedder struct {
	dims  int
	fn    func(attempt int, text string) ([]float32, error)
	mu    sync.Mutex
	calls int
}

func (s *stubEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	s.mu.Lock()
	s.calls++
	attempt := s.calls
	s.mu.Unlock()

	if s.fn != nil {
		emb, err := s.fn(attempt, text)
		if err != nil {
			return nil, err
		}
		if emb != nil {
			return emb, nil
		}
	}
	emb := make([]float32, s.dims)
	for i := range emb {
		emb[i] = float32(len(text)*(i+1)) * 0.01
	}
	return emb, nil
}

func (s *stubEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		emb, err := s.Embed(ctx, t)
		if err != nil {
			return nil, err
		}
		out[i] = emb
	}
	return out, nil
}

func (s *stubEmbedder) Dimensions() int { return s.dims }
func (s *stubEmbedder) Close() error    { return nil }

func (s *stubEmbedder) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func fastRetryConfig(maxRetries int) *RetryConfig {
	return &RetryConfig{
		MaxRetries: maxRetries,
		RetryDelay: time.Millisecond,
		MaxDelay:   5 * time.Millisecond,
		Timeout:    time.Second,
	}
}

func TestRetryEmbedder_recoversFromTransientFailures(t *testing.T) {
	stub := &stubEmbedder{
		dims: 4,
		fn: func(attempt int, text string) ([]float32, error) {
			if attempt <= 2 {
				return nil, &ProviderError{StatusCode: 503, Message: "upstream down"}
			}
			return nil, nil
		},
	}
	r := NewRetryEmbedder(stub, fastRetryConfig(3))

	emb, err := r.Embed(context.Background(), "perseverance")
	if err != nil {
		t.Fatalf("expected success after retries: %v", err)
	}
	if len(emb) != 4 {
		t.Errorf("got %d dims, want 4", len(emb))
	}
	if stub.callCount() != 3 {
		t.Errorf("provider called %d times, want 3", stub.callCount())
	}
}

func TestRetryEmbedder_permanentErrorFailsFast(t *testing.T) {
	stub := &stubEmbedder{
		dims: 4,
		fn: func(attempt int, text string) ([]float32, error) {
			return nil, &ProviderError{StatusCode: 401, Message: "bad key", Permanent: true}
		},
	}
	r := NewRetryEmbedder(stub, fastRetryConfig(3))

	_, err := r.Embed(context.Background(), "x")
	if err == nil {
		t.Fatal("expected error")
	}
	var pe *ProviderError
	if !errors.As(err, &pe) || pe.StatusCode != 401 {
		t.Fatalf("expected 401 ProviderError, got %v", err)
	}
	if stub.callCount() != 1 {
		t.Errorf("permanent error retried: %d calls", stub.callCount())
	}
}

func TestRetryEmbedder_emptyTextNotRetried(t *testing.T) {
	stub := &stubEmbedder{
		dims: 4,
		fn: func(attempt int, text string) ([]float32, error) {
			return nil, ErrEmptyText
		},
	}
	r := NewRetryEmbedder(stub, fastRetryConfig(3))

	_, err := r.Embed(context.Background(), "   ")
	if !errors.Is(err, ErrEmptyText) {
		t.Fatalf("expected ErrEmptyText, got %v", err)
	}
	if stub.callCount() != 1 {
		t.Errorf("empty text retried: %d calls", stub.callCount())
	}
}

func TestRetryEmbedder_maxRetriesExceeded(t *testing.T) {
	stub := &stubEmbedder{
		dims: 4,
		fn: func(attempt int, text string) ([]float32, error) {
			return nil, &ProviderError{StatusCode: 500, Message: "boom"}
		},
	}
	r := NewRetryEmbedder(stub, fastRetryConfig(2))

	_, err := r.EmbedBatch(context.Background(), []string{"a"})
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "max retries (2) exceeded") {
		t.Errorf("error = %v, want max retries message", err)
	}
	var pe *ProviderError
	if !errors.As(err, &pe) {
		t.Errorf("wrapped provider error lost: %v", err)
	}
	if stub.callCount() != 3 {
		t.Errorf("provider called %d times, want 3 (initial + 2 retries)", stub.callCount())
	}
}

func TestRetryEmbedder_cancelledContextStops(t *testing.T) {
	stub := &stubEmbedder{
		dims: 4,
		fn: func(attempt int, text string) ([]float32, error) {
			return nil, &ProviderError{StatusCode: 503, Message: "down"}
		},
	}
	r := NewRetryEmbedder(stub, fastRetryConfig(5))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := r.Embed(ctx, "x")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if stub.callCount() > 1 {
		t.Errorf("retried after cancellation: %d calls", stub.callCount())
	}
}

func TestRetryEmbedder_backoffGrowsAndCaps(t *testing.T) {
	r := NewRetryEmbedder(&stubEmbedder{dims: 1}, &RetryConfig{
		MaxRetries: 5,
		RetryDelay: 10 * time.Millisecond,
		MaxDelay:   25 * time.Millisecond,
		Timeout:    time.Second,
	})
	want := []time.Duration{
		10 * time.Millisecond,
		20 * time.Millisecond,
		25 * time.Millisecond,
		25 * time.Millisecond,
	}
	for i, w := range want {
		if got := r.calculateBackoff(i + 1); got != w {
			t.Errorf("backoff(%d) = %v, want %v", i+1, got, w)
		}
	}
}
