package uniqueness

import "math"

// Cosine returns the cosine similarity of a and b. Absent, mismatched, and
// zero-norm vectors score exactly 0 so that missing embeddings never poison
// an aggregate with NaN.
func Cosine(a, b []float32) float64 {
	if len(a) == 0 || len(b) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, na, nb float64
	for i := 0; i < len(a); i++ {
		x := float64(a[i])
		y := float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

// FieldSimilarity computes per-field cosine similarity over the tracked
// field list and the unweighted mean across it. A field missing on either
// side contributes 0 to the mean.
func FieldSimilarity(newVecs, oldVecs map[string][]float32, fields []string) (map[string]float64, float64) {
	perField := make(map[string]float64, len(fields))
	var sum float64
	for _, f := range fields {
		sim := Cosine(newVecs[f], oldVecs[f])
		perField[f] = sim
		sum += sim
	}
	if len(fields) == 0 {
		return perField, 0
	}
	return perField, sum / float64(len(fields))
}

// UniquenessFromSimilarity converts a similarity in [0,1] to a 0-100
// uniqueness score.
func UniquenessFromSimilarity(sim float64) int {
	return int(math.Round((1 - sim) * 100))
}

// CombineWeighted builds a single query vector from weighted field vectors,
// used for the paper corpus search (abstract 0.6 / conclusion 0.4). Fields
// without a vector are skipped; when only one field is present the result is
// that vector scaled by its weight, which leaves cosine comparisons
// unchanged. Returns nil when nothing is present or dimensions disagree.
func CombineWeighted(vecs map[string][]float32, weights map[string]float64) []float32 {
	var out []float32
	for field, w := range weights {
		v := vecs[field]
		if len(v) == 0 {
			continue
		}
		if out == nil {
			out = make([]float32, len(v))
		} else if len(v) != len(out) {
			return nil
		}
		for i, x := range v {
			out[i] += float32(w) * x
		}
	}
	return out
}
