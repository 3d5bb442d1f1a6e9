package quotes

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/quotable-io/quotable/internal/corpus"
	"github.com/quotable-io/quotable/internal/embedding"
)

// selectiveEmbedder fails for chosen inputs and delegates the rest.
type selectiveEmbedder struct {
	inner embedding.Embedder
	fail  map[string]bool
}

func (s *selectiveEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if s.fail[text] {
		return nil, &embedding.ProviderError{StatusCode: 500, Message: "boom"}
	}
	return s.inner.Embed(ctx, text)
}

func (s *selectiveEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		emb, err := s.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		out[i] = emb
	}
	return out, nil
}

func (s *selectiveEmbedder) Dimensions() int { return s.inner.Dimensions() }
func (s *selectiveEmbedder) Close() error    { return s.inner.Close() }

func TestService_CompareWords(t *testing.T) {
	svc, _ := newTestService(t, nil)
	ctx := context.Background()

	same, err := svc.CompareWords(ctx, "king", "king")
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(same.Similarity-1.0) > 1e-6 {
		t.Errorf("identical words should score 1.0, got %v", same.Similarity)
	}
	if same.Word1 != "king" || same.Word2 != "king" {
		t.Errorf("unexpected result %+v", same)
	}

	ab, err := svc.CompareWords(ctx, "king", "queen")
	if err != nil {
		t.Fatal(err)
	}
	ba, err := svc.CompareWords(ctx, "queen", "king")
	if err != nil {
		t.Fatal(err)
	}
	if ab.Similarity != ba.Similarity {
		t.Errorf("similarity must be symmetric: %v vs %v", ab.Similarity, ba.Similarity)
	}
}

func TestService_CompareWordsEmpty(t *testing.T) {
	svc, _ := newTestService(t, nil)

	_, err := svc.CompareWords(context.Background(), "", "queen")
	if !errors.Is(err, embedding.ErrEmptyText) {
		t.Errorf("expected ErrEmptyText, got %v", err)
	}
}

func TestService_WordPairs(t *testing.T) {
	svc, _ := newTestService(t, nil)

	results, err := svc.WordPairs(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 9 {
		t.Fatalf("expected 9 pairs, got %d", len(results))
	}

	if results[0].Word1 != "man" || results[0].Word2 != "man" {
		t.Errorf("expected man/man first, got %s/%s", results[0].Word1, results[0].Word2)
	}
	if math.Abs(results[0].Similarity-1.0) > 1e-6 {
		t.Errorf("man/man should score 1.0, got %v", results[0].Similarity)
	}

	for i := 1; i < len(results); i++ {
		if results[i].Similarity > results[i-1].Similarity {
			t.Errorf("results not sorted descending at %d: %v > %v", i, results[i].Similarity, results[i-1].Similarity)
		}
	}
	for _, r := range results {
		if r.Error != "" {
			t.Errorf("unexpected error for %s/%s: %s", r.Word1, r.Word2, r.Error)
		}
	}
}

func TestService_WordPairsPartialFailure(t *testing.T) {
	_, st := newTestService(t, nil)
	emb := &selectiveEmbedder{
		inner: embedding.NewMockEmbedder(32),
		fail:  map[string]bool{"banana": true},
	}
	svc := NewService(st, emb, corpus.NewStaticSource(nil), testSearchConfig(), 1, testLogger())

	results, err := svc.WordPairs(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 9 {
		t.Fatalf("one failing pair must not abort the rest, got %d results", len(results))
	}

	var failed int
	for _, r := range results {
		if r.Word1 == "banana" {
			failed++
			if r.Similarity != 0.0 {
				t.Errorf("failed pair should score 0.0, got %v", r.Similarity)
			}
			if r.Error == "" {
				t.Error("failed pair should carry its error")
			}
		}
	}
	if failed != 1 {
		t.Errorf("expected exactly one failed pair, got %d", failed)
	}

	if results[0].Word1 != "man" || results[0].Word2 != "man" {
		t.Errorf("expected man/man first, got %s/%s", results[0].Word1, results[0].Word2)
	}
}
