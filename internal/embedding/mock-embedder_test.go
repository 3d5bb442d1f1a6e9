package embedding

import (
	"context"
	"errors"
	"math"
	"testing"
)

func TestMockEmbedder_deterministic(t *testing.T) {
	e := NewMockEmbedder(16)
	ctx := context.Background()

	a1, err := e.Embed(ctx, "hard work")
	if err != nil {
		t.Fatal(err)
	}
	a2, err := e.Embed(ctx, "hard work")
	if err != nil {
		t.Fatal(err)
	}
	b, err := e.Embed(ctx, "kindness")
	if err != nil {
		t.Fatal(err)
	}

	if len(a1) != 16 {
		t.Fatalf("got %d dims, want 16", len(a1))
	}
	for i := range a1 {
		if a1[i] != a2[i] {
			t.Fatalf("same text produced different embeddings at %d", i)
		}
	}
	same := true
	for i := range a1 {
		if a1[i] != b[i] {
			same = false
			break
		}
	}
	if same {
		t.Error("different texts produced identical embeddings")
	}
}

func TestMockEmbedder_unitNorm(t *testing.T) {
	e := NewMockEmbedder(32)
	emb, err := e.Embed(context.Background(), "education")
	if err != nil {
		t.Fatal(err)
	}
	var sum float64
	for _, v := range emb {
		sum += float64(v) * float64(v)
	}
	if math.Abs(sum-1.0) > 1e-5 {
		t.Errorf("squared norm = %f, want 1", sum)
	}
}

func TestMockEmbedder_emptyText(t *testing.T) {
	e := NewMockEmbedder(8)
	if _, err := e.Embed(context.Background(), "   "); !errors.Is(err, ErrEmptyText) {
		t.Errorf("expected ErrEmptyText, got %v", err)
	}
}

func TestMockEmbedder_defaultDimensions(t *testing.T) {
	if d := NewMockEmbedder(0).Dimensions(); d != 384 {
		t.Errorf("default dimensions = %d, want 384", d)
	}
	if d := NewMockEmbedder(128).Dimensions(); d != 128 {
		t.Errorf("dimensions = %d, want 128", d)
	}
}

func TestMockEmbedder_batchMatchesSingle(t *testing.T) {
	e := NewMockEmbedder(8)
	ctx := context.Background()
	texts := []string{"one", "two", "three"}

	batch, err := e.EmbedBatch(ctx, texts)
	if err != nil {
		t.Fatal(err)
	}
	if len(batch) != len(texts) {
		t.Fatalf("got %d embeddings, want %d", len(batch), len(texts))
	}
	for i, text := range texts {
		single, err := e.Embed(ctx, text)
		if err != nil {
			t.Fatal(err)
		}
		for j := range single {
			if batch[i][j] != single[j] {
				t.Fatalf("batch embedding for %q differs at %d", text, j)
			}
		}
	}
}
