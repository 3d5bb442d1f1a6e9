package vector

import (
	"errors"
	"math"
	"testing"
)

func TestCosine(t *testing.T) {
	tests := []struct {
		name string
		a    []float32
		b    []float32
		want float64
	}{
		{"identical", []float32{1, 2, 3}, []float32{1, 2, 3}, 1},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 0},
		{"opposite", []float32{1, 0}, []float32{-1, 0}, -1},
		{"scaled copies", []float32{1, 1}, []float32{5, 5}, 1},
		{"zero left", []float32{0, 0}, []float32{1, 2}, 0},
		{"zero right", []float32{1, 2}, []float32{0, 0}, 0},
		{"both empty", []float32{}, []float32{}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Cosine(tt.a, tt.b)
			if err != nil {
				t.Fatalf("Cosine error: %v", err)
			}
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Cosine(%v, %v) = %f, want %f", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestCosine_dimensionMismatch(t *testing.T) {
	_, err := Cosine([]float32{1, 2, 3}, []float32{1, 2})
	if err == nil {
		t.Fatal("expected error for mismatched dimensions")
	}
	var de *DimensionError
	if !errors.As(err, &de) {
		t.Fatalf("expected DimensionError, got %T: %v", err, err)
	}
	if de.Want != 3 || de.Got != 2 {
		t.Errorf("DimensionError = want %d got %d; expected want 3 got 2", de.Want, de.Got)
	}
}

func TestCosine_negativeSimilaritySurvives(t *testing.T) {
	// Anti-correlated vectors must come back negative, not clamped to zero.
	got, err := Cosine([]float32{1, -1}, []float32{-1, 1})
	if err != nil {
		t.Fatal(err)
	}
	if got >= 0 {
		t.Errorf("expected negative similarity, got %f", got)
	}
}

func TestCosine_symmetric(t *testing.T) {
	pairs := [][2][]float32{
		{{1, 2, 3}, {4, 5, 6}},
		{{-1, 0.5}, {0.25, -2}},
		{{0, 0}, {1, 1}},
	}
	for _, p := range pairs {
		ab, err := Cosine(p[0], p[1])
		if err != nil {
			t.Fatal(err)
		}
		ba, err := Cosine(p[1], p[0])
		if err != nil {
			t.Fatal(err)
		}
		if ab != ba {
			t.Errorf("Cosine(%v, %v) = %v but reversed = %v", p[0], p[1], ab, ba)
		}
	}
}

func TestNormalize(t *testing.T) {
	v := []float32{3, 4}
	Normalize(v)
	if math.Abs(float64(v[0])-0.6) > 1e-6 || math.Abs(float64(v[1])-0.8) > 1e-6 {
		t.Errorf("Normalize([3 4]) = %v, want [0.6 0.8]", v)
	}

	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	if math.Abs(sum-1) > 1e-6 {
		t.Errorf("squared norm = %f, want 1", sum)
	}
}

func TestNormalize_zeroAndEmpty(t *testing.T) {
	zero := []float32{0, 0, 0}
	Normalize(zero)
	for i, x := range zero {
		if x != 0 {
			t.Errorf("zero vector changed at %d: %f", i, x)
		}
	}
	Normalize(nil)
}
