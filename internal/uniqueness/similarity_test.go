package uniqueness

import (
	"math"
	"testing"
)

func TestCosine_SelfSimilarityIsOne(t *testing.T) {
	a := []float32{0.3, 0.7, 0.1, 0.9}
	if got := Cosine(a, a); math.Abs(got-1.0) > 1e-9 {
		t.Fatalf("Cosine(a, a) = %v, want 1.0", got)
	}
}

func TestCosine_EmptyAndZeroVectors(t *testing.T) {
	a := []float32{1, 2, 3}
	if got := Cosine(a, nil); got != 0 {
		t.Fatalf("Cosine(a, nil) = %v, want 0", got)
	}
	if got := Cosine(nil, nil); got != 0 {
		t.Fatalf("Cosine(nil, nil) = %v, want 0", got)
	}
	if got := Cosine(a, []float32{0, 0, 0}); got != 0 {
		t.Fatalf("Cosine against zero-norm vector = %v, want 0", got)
	}
	if got := Cosine(a, []float32{1, 2}); got != 0 {
		t.Fatalf("Cosine with mismatched dims = %v, want 0", got)
	}
}

func TestCosine_OrthogonalVectors(t *testing.T) {
	if got := Cosine([]float32{1, 0}, []float32{0, 1}); got != 0 {
		t.Fatalf("orthogonal cosine = %v, want 0", got)
	}
}

func TestUniquenessFromSimilarity_Bounds(t *testing.T) {
	if got := UniquenessFromSimilarity(0); got != 100 {
		t.Fatalf("UniquenessFromSimilarity(0) = %d, want 100", got)
	}
	if got := UniquenessFromSimilarity(1); got != 0 {
		t.Fatalf("UniquenessFromSimilarity(1) = %d, want 0", got)
	}
}

func TestUniquenessFromSimilarity_Monotone(t *testing.T) {
	prev := 101
	for sim := 0.0; sim <= 1.0; sim += 0.01 {
		u := UniquenessFromSimilarity(sim)
		if u > prev {
			t.Fatalf("uniqueness increased from %d to %d at similarity %v", prev, u, sim)
		}
		prev = u
	}
}

func TestFieldSimilarity_AbsentFieldContributesZero(t *testing.T) {
	fields := []string{"a", "b"}
	newVecs := map[string][]float32{"a": {1, 0}}
	oldVecs := map[string][]float32{"a": {1, 0}, "b": {0, 1}}
	perField, overall := FieldSimilarity(newVecs, oldVecs, fields)
	if perField["b"] != 0 {
		t.Fatalf("absent field similarity = %v, want 0", perField["b"])
	}
	if math.Abs(overall-0.5) > 1e-9 {
		t.Fatalf("overall = %v, want 0.5", overall)
	}
}

func TestCombineWeighted(t *testing.T) {
	vecs := map[string][]float32{
		"abstract":   {1, 0},
		"conclusion": {0, 1},
	}
	weights := map[string]float64{"abstract": 0.6, "conclusion": 0.4}
	got := CombineWeighted(vecs, weights)
	if len(got) != 2 {
		t.Fatalf("combined length = %d, want 2", len(got))
	}
	if math.Abs(float64(got[0])-0.6) > 1e-6 || math.Abs(float64(got[1])-0.4) > 1e-6 {
		t.Fatalf("combined = %v, want [0.6 0.4]", got)
	}

	// One side missing collapses to the present vector, scaled.
	one := CombineWeighted(map[string][]float32{"abstract": {2, 2}}, weights)
	if one == nil {
		t.Fatalf("expected non-nil combination with a single present field")
	}
	if sim := Cosine(one, []float32{2, 2}); math.Abs(sim-1.0) > 1e-9 {
		t.Fatalf("scaling changed direction: cosine = %v", sim)
	}

	if got := CombineWeighted(map[string][]float32{}, weights); got != nil {
		t.Fatalf("expected nil for empty input, got %v", got)
	}
	mismatched := map[string][]float32{"abstract": {1, 0}, "conclusion": {1}}
	if got := CombineWeighted(mismatched, weights); got != nil {
		t.Fatalf("expected nil for mismatched dims, got %v", got)
	}
}
