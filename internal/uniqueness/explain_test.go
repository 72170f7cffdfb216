package uniqueness

import (
	"strings"
	"testing"
)

func TestCandidateExplanation_NamesTopTwoFields(t *testing.T) {
	perField := map[string]float64{
		"problemStatement": 0.92,
		"proposedSolution": 0.81,
		"description":      0.6,
		"domain":           0.1,
	}
	got := CandidateExplanation("Smart Irrigation", perField)
	if !strings.Contains(got, "problem statement (92% similar)") {
		t.Fatalf("missing strongest field: %q", got)
	}
	if !strings.Contains(got, "proposed solution (81% similar)") {
		t.Fatalf("missing second field: %q", got)
	}
	if strings.Contains(got, "description") {
		t.Fatalf("third field should not be named: %q", got)
	}
	if !strings.Contains(got, "Smart Irrigation") {
		t.Fatalf("candidate title missing: %q", got)
	}
}

func TestCandidateExplanation_GenericBelowThreshold(t *testing.T) {
	perField := map[string]float64{
		"problemStatement": 0.5, // exactly 0.5 does not clear the bar
		"proposedSolution": 0.4,
	}
	got := CandidateExplanation("Prior Idea", perField)
	if !strings.Contains(got, "general similarity") {
		t.Fatalf("expected generic message, got %q", got)
	}
}

func TestOverallExplanation_Buckets(t *testing.T) {
	order := []string{"problemStatement", "proposedSolution", "description", "domain"}
	fu := map[string]int{
		"problemStatement": 20,
		"proposedSolution": 80,
		"description":      90,
		"domain":           95,
	}
	cases := []struct {
		score    int
		contains string
	}{
		{95, "highly unique"},
		{90, "highly unique"},
		{75, "mostly unique"},
		{55, "moderate"},
		{35, "significant similarities"},
		{10, "low uniqueness"},
	}
	for _, tc := range cases {
		got := OverallExplanation(tc.score, fu, order)
		if !strings.Contains(got, tc.contains) {
			t.Fatalf("score %d: expected %q in %q", tc.score, tc.contains, got)
		}
	}
	// Weakest field is named in the lower buckets.
	if got := OverallExplanation(40, fu, order); !strings.Contains(got, "problem statement") {
		t.Fatalf("weakest field not named: %q", got)
	}
}

func TestOverallExplanation_WeakestTieBrokenByDeclarationOrder(t *testing.T) {
	order := []string{"problemStatement", "proposedSolution", "description", "domain"}
	fu := map[string]int{
		"problemStatement": 50,
		"proposedSolution": 10,
		"description":      10,
		"domain":           60,
	}
	got := OverallExplanation(30, fu, order)
	if !strings.Contains(got, "proposed solution") {
		t.Fatalf("tie should resolve to the earlier declared field: %q", got)
	}
}
