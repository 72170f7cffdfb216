package uniqueness

import (
	"errors"
	"fmt"
	"testing"
)

func ideaEntry(id, title string, vecs map[string][]float32, hashes map[string]string) Entry {
	return Entry{ID: id, Title: title, Vectors: vecs, Hashes: hashes}
}

func TestCheck_EmptyCorpus(t *testing.T) {
	checker := NewChecker(IdeaConfig())
	report, err := checker.Check(ideaEntry("n1", "New", map[string][]float32{
		"problemStatement": {1, 0},
	}, nil), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.UniquenessScore != 100 {
		t.Fatalf("empty corpus score = %d, want 100", report.UniquenessScore)
	}
	if len(report.Similar) != 0 {
		t.Fatalf("empty corpus similar list = %d entries, want 0", len(report.Similar))
	}
	for f, u := range report.FieldUniqueness {
		if u != 100 {
			t.Fatalf("field %s uniqueness = %d, want 100", f, u)
		}
	}
}

func TestCheck_ExactMatchShortCircuits(t *testing.T) {
	checker := NewChecker(IdeaConfig())
	existing := ideaEntry("e1", "Prior", nil, map[string]string{
		"problemStatement": Fingerprint("T"),
	})
	// All other fields wildly different and no embeddings anywhere: the hash
	// check must still fire, before any embedding work.
	newEntry := ideaEntry("n1", "New", nil, map[string]string{
		"problemStatement": Fingerprint("T"),
		"proposedSolution": Fingerprint("completely different"),
	})
	_, err := checker.Check(newEntry, []Entry{existing})
	var em *ExactMatchError
	if !errors.As(err, &em) {
		t.Fatalf("expected ExactMatchError, got %v", err)
	}
	if em.Field != "problemStatement" {
		t.Fatalf("matched field = %s, want problemStatement", em.Field)
	}
	if em.MatchID != "e1" {
		t.Fatalf("matched entry = %s, want e1", em.MatchID)
	}
	if em.Explanation == "" {
		t.Fatalf("rejection must carry an explanation")
	}
}

func TestCheck_EmptyHashDoesNotMatch(t *testing.T) {
	checker := NewChecker(IdeaConfig())
	existing := ideaEntry("e1", "Prior", nil, map[string]string{})
	newEntry := ideaEntry("n1", "New", map[string][]float32{"domain": {1}}, map[string]string{})
	if _, err := checker.Check(newEntry, []Entry{existing}); err != nil {
		t.Fatalf("entries without hashes must not collide: %v", err)
	}
}

func TestCheck_PerFieldMinimumAcrossCorpus(t *testing.T) {
	// One corpus entry matches the problem statement exactly (cosine 1.0),
	// every other field orthogonal: field uniqueness 0 for problemStatement,
	// 100 elsewhere, overall the mean 25.
	checker := NewChecker(IdeaConfig())
	newEntry := ideaEntry("n1", "New", map[string][]float32{
		"problemStatement": {1, 0},
		"proposedSolution": {1, 0},
		"description":      {1, 0},
		"domain":           {1, 0},
	}, map[string]string{"problemStatement": Fingerprint("p new")})
	existing := ideaEntry("e1", "Prior", map[string][]float32{
		"problemStatement": {1, 0},
		"proposedSolution": {0, 1},
		"description":      {0, 1},
		"domain":           {0, 1},
	}, map[string]string{"problemStatement": Fingerprint("p old")})

	report, err := checker.Check(newEntry, []Entry{existing})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := report.FieldUniqueness["problemStatement"]; got != 0 {
		t.Fatalf("problemStatement uniqueness = %d, want 0", got)
	}
	for _, f := range []string{"proposedSolution", "description", "domain"} {
		if got := report.FieldUniqueness[f]; got != 100 {
			t.Fatalf("%s uniqueness = %d, want 100", f, got)
		}
	}
	if report.UniquenessScore != 25 {
		t.Fatalf("overall = %d, want 25", report.UniquenessScore)
	}
}

func TestCheck_WorstNeighborMayDifferPerField(t *testing.T) {
	// e1 is the closest neighbor on problemStatement, e2 on domain. Both
	// minima must be kept even though no single entry drives both.
	checker := NewChecker(IdeaConfig())
	newEntry := ideaEntry("n1", "New", map[string][]float32{
		"problemStatement": {1, 0},
		"domain":           {0, 1},
	}, nil)
	e1 := ideaEntry("e1", "A", map[string][]float32{
		"problemStatement": {1, 0},
		"domain":           {1, 0},
	}, nil)
	e2 := ideaEntry("e2", "B", map[string][]float32{
		"problemStatement": {0, 1},
		"domain":           {0, 1},
	}, nil)

	report, err := checker.Check(newEntry, []Entry{e1, e2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := report.FieldUniqueness["problemStatement"]; got != 0 {
		t.Fatalf("problemStatement uniqueness = %d, want 0 (driven by e1)", got)
	}
	if got := report.FieldUniqueness["domain"]; got != 0 {
		t.Fatalf("domain uniqueness = %d, want 0 (driven by e2)", got)
	}
}

func TestCheck_TopFiveTruncation(t *testing.T) {
	checker := NewChecker(IdeaConfig())
	vecs := map[string][]float32{
		"problemStatement": {1, 0},
		"proposedSolution": {1, 0},
		"description":      {1, 0},
		"domain":           {1, 0},
	}
	corpus := make([]Entry, 0, 10)
	for i := 0; i < 10; i++ {
		corpus = append(corpus, ideaEntry(fmt.Sprintf("e%d", i), fmt.Sprintf("Idea %d", i), vecs, nil))
	}
	report, err := checker.Check(ideaEntry("n1", "New", vecs, nil), corpus)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(report.Similar) != 5 {
		t.Fatalf("similar list has %d entries, want 5", len(report.Similar))
	}
	for i := 1; i < len(report.Similar); i++ {
		if report.Similar[i].SimilarityScore > report.Similar[i-1].SimilarityScore {
			t.Fatalf("similar list not sorted descending at %d", i)
		}
	}
	// Stable sort: equal scores keep corpus order.
	for i, s := range report.Similar {
		if want := fmt.Sprintf("e%d", i); s.ID != want {
			t.Fatalf("tie-break broke insertion order: position %d is %s, want %s", i, s.ID, want)
		}
	}
}

func TestCheck_ThresholdIsExclusive(t *testing.T) {
	checker := NewChecker(IdeaConfig())
	// Two fields at cosine 3/5 = 0.6 (integer vectors keep the arithmetic
	// exact) and two orthogonal: combined similarity is exactly 0.30, the
	// threshold, and the entry must be excluded.
	newEntry := ideaEntry("n1", "New", map[string][]float32{
		"problemStatement": {1, 0},
		"proposedSolution": {1, 0},
		"description":      {1, 0},
		"domain":           {1, 0},
	}, nil)
	boundary := ideaEntry("e1", "Boundary", map[string][]float32{
		"problemStatement": {3, 4},
		"proposedSolution": {3, 4},
		"description":      {0, 1},
		"domain":           {0, 1},
	}, nil)
	report, err := checker.Check(newEntry, []Entry{boundary})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(report.Similar) != 0 {
		t.Fatalf("combined similarity exactly at threshold must be excluded, got %d entries", len(report.Similar))
	}
}

func TestCheck_EntriesWithoutEmbeddingsAreSkipped(t *testing.T) {
	checker := NewChecker(IdeaConfig())
	newEntry := ideaEntry("n1", "New", map[string][]float32{
		"problemStatement": {1, 0},
	}, nil)
	// Hash-only entry: no vectors at all. It must not drag any field's
	// uniqueness down (absent vectors would otherwise read as similarity 0,
	// which is already the neutral floor for maxima tracking).
	hashOnly := ideaEntry("e1", "HashOnly", nil, map[string]string{
		"problemStatement": Fingerprint("something else"),
	})
	report, err := checker.Check(newEntry, []Entry{hashOnly})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.UniquenessScore != 100 {
		t.Fatalf("corpus of embedding-less entries must score 100, got %d", report.UniquenessScore)
	}
	if len(report.Similar) != 0 {
		t.Fatalf("embedding-less entries must not appear as candidates")
	}
}

func TestCheck_PaperSingleFieldCorpus(t *testing.T) {
	checker := NewChecker(PaperConfig())
	query := map[string][]float32{"content": {1, 0}}
	near := ideaEntry("p1", "Close Paper", map[string][]float32{"content": {0.9, 0.435889894}}, nil)
	report, err := checker.Check(ideaEntry("n1", "New Paper", query, nil), []Entry{near})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(report.Similar) != 1 {
		t.Fatalf("expected one candidate, got %d", len(report.Similar))
	}
	if report.Similar[0].SimilarityScore != 90 {
		t.Fatalf("candidate similarity = %d, want 90", report.Similar[0].SimilarityScore)
	}
	if report.UniquenessScore != 10 {
		t.Fatalf("overall = %d, want 10", report.UniquenessScore)
	}
}
