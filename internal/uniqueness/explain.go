package uniqueness

import (
	"fmt"
	"sort"
	"strings"
)

// candidateNameThreshold is the per-field similarity above which a field is
// worth naming in a candidate explanation.
const candidateNameThreshold = 0.5

var fieldLabels = map[string]string{
	"problemStatement": "problem statement",
	"proposedSolution": "proposed solution",
	"description":      "description",
	"domain":           "domain",
	"abstract":         "abstract",
	"conclusion":       "conclusion",
	"content":          "content",
}

func fieldLabel(f string) string {
	if l, ok := fieldLabels[f]; ok {
		return l
	}
	return f
}

// CandidateExplanation names the top two fields above the 0.5 similarity
// mark for one candidate, or falls back to a generic note when nothing
// clears it.
func CandidateExplanation(title string, perField map[string]float64) string {
	type fieldSim struct {
		field string
		sim   float64
	}
	strong := make([]fieldSim, 0, len(perField))
	for f, sim := range perField {
		if sim > candidateNameThreshold {
			strong = append(strong, fieldSim{f, sim})
		}
	}
	if len(strong) == 0 {
		return fmt.Sprintf("Shares some general similarity with %q.", title)
	}
	sort.SliceStable(strong, func(i, j int) bool {
		if strong[i].sim != strong[j].sim {
			return strong[i].sim > strong[j].sim
		}
		return strong[i].field < strong[j].field
	})
	if len(strong) > 2 {
		strong = strong[:2]
	}
	parts := make([]string, 0, len(strong))
	for _, fs := range strong {
		parts = append(parts, fmt.Sprintf("%s (%d%% similar)", fieldLabel(fs.field), roundPercent(fs.sim)))
	}
	return fmt.Sprintf("Similar to %q in %s.", title, strings.Join(parts, " and "))
}

// ExactMatchExplanation is the rejection message for a byte-identical
// exact-match-sensitive field.
func ExactMatchExplanation(field, title string) string {
	return fmt.Sprintf("The %s is identical to the one in %q. Duplicate submissions are not accepted.", fieldLabel(field), title)
}

// OverallExplanation buckets the overall uniqueness score. The weakest field
// is the one with the lowest per-field uniqueness, ties broken by field
// declaration order.
func OverallExplanation(score int, fieldUniqueness map[string]int, fieldOrder []string) string {
	weakest := weakestField(fieldUniqueness, fieldOrder)
	switch {
	case score >= 90:
		return "This submission is highly unique compared to the existing corpus."
	case score >= 70:
		return "This submission is mostly unique, with some similarities to existing entries."
	case score >= 50:
		return fmt.Sprintf("This submission shows moderate uniqueness; the %s overlaps most with existing entries.", fieldLabel(weakest))
	case score >= 30:
		return fmt.Sprintf("This submission has significant similarities to existing entries, especially in the %s.", fieldLabel(weakest))
	default:
		return fmt.Sprintf("This submission has low uniqueness; the %s closely matches existing entries.", fieldLabel(weakest))
	}
}

func weakestField(fieldUniqueness map[string]int, fieldOrder []string) string {
	weakest := ""
	lowest := 101
	for _, f := range fieldOrder {
		u, ok := fieldUniqueness[f]
		if !ok {
			continue
		}
		if u < lowest {
			lowest = u
			weakest = f
		}
	}
	return weakest
}
