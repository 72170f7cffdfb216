package uniqueness

import (
	"fmt"
	"sort"
)

// Config fixes the field lists and thresholds for one corpus kind (ideas in
// a room, papers globally). TrackedFields order is significant: it is the
// declaration order used to break ties when naming the weakest field.
type Config struct {
	TrackedFields []string
	ExactFields   []string
	// Candidates must score strictly above Threshold to be listed.
	Threshold  float64
	MaxSimilar int
}

func IdeaConfig() Config {
	return Config{
		TrackedFields: []string{"problemStatement", "proposedSolution", "description", "domain"},
		ExactFields:   []string{"problemStatement", "proposedSolution"},
		Threshold:     0.30,
		MaxSimilar:    5,
	}
}

func PaperConfig() Config {
	return Config{
		TrackedFields: []string{"content"},
		ExactFields:   []string{"abstract", "conclusion"},
		Threshold:     0.30,
		MaxSimilar:    5,
	}
}

// Entry is one submission as the comparator sees it: raw text per field (for
// hashing), embedding vectors per field, and precomputed hashes for the
// exact-match-sensitive fields.
type Entry struct {
	ID      string
	Title   string
	Vectors map[string][]float32
	Hashes  map[string]string
}

// SimilarEntry is one ranked candidate in the report.
type SimilarEntry struct {
	ID              string         `json:"id"`
	Title           string         `json:"title"`
	SimilarityScore int            `json:"similarityScore"`
	FieldSimilarity map[string]int `json:"fieldSimilarity"`
	Explanation     string         `json:"explanation"`
}

// Report is the outcome of a successful check.
type Report struct {
	UniquenessScore int            `json:"uniquenessScore"`
	FieldUniqueness map[string]int `json:"fieldUniqueness"`
	Similar         []SimilarEntry `json:"similar"`
	Explanation     string         `json:"explanation"`
}

// ExactMatchError means the submission duplicates an existing entry on an
// exact-match-sensitive field. It is a business outcome, not a fault: the
// submission must never be persisted.
type ExactMatchError struct {
	Field       string
	MatchID     string
	MatchTitle  string
	Explanation string
}

func (e *ExactMatchError) Error() string {
	return fmt.Sprintf("exact match on field %q against entry %s", e.Field, e.MatchID)
}

type Checker struct {
	cfg Config
}

func NewChecker(cfg Config) *Checker {
	if cfg.MaxSimilar <= 0 {
		cfg.MaxSimilar = 5
	}
	return &Checker{cfg: cfg}
}

func (c *Checker) Config() Config { return c.cfg }

// Check scores a new submission against the corpus snapshot.
//
// The aggregation is deliberately conservative: for every tracked field we
// keep the highest similarity seen against ANY corpus entry, so a field is
// only as unique as its closest historical neighbor on that field, even when
// that neighbor differs per field. Overall uniqueness is the mean of those
// per-field worst cases. The candidate list is independent of that
// bookkeeping: an entry is listed when its combined similarity is strictly
// above the threshold, whether or not it drove any per-field minimum.
func (c *Checker) Check(newEntry Entry, corpus []Entry) (*Report, error) {
	if err := c.checkExactMatch(newEntry, corpus); err != nil {
		return nil, err
	}

	report := &Report{
		FieldUniqueness: make(map[string]int, len(c.cfg.TrackedFields)),
		Similar:         []SimilarEntry{},
	}

	if len(corpus) == 0 {
		report.UniquenessScore = 100
		for _, f := range c.cfg.TrackedFields {
			report.FieldUniqueness[f] = 100
		}
		report.Explanation = OverallExplanation(100, report.FieldUniqueness, c.cfg.TrackedFields)
		return report, nil
	}

	maxSim := make(map[string]float64, len(c.cfg.TrackedFields))
	candidates := make([]SimilarEntry, 0)

	for _, existing := range corpus {
		if !hasVectors(existing) {
			// No stored embedding: skipped from comparison entirely, it
			// neither penalizes nor boosts scores.
			continue
		}
		perField, overall := FieldSimilarity(newEntry.Vectors, existing.Vectors, c.cfg.TrackedFields)
		for _, f := range c.cfg.TrackedFields {
			if perField[f] > maxSim[f] {
				maxSim[f] = perField[f]
			}
		}
		if overall > c.cfg.Threshold {
			fieldPct := make(map[string]int, len(perField))
			for f, sim := range perField {
				fieldPct[f] = roundPercent(sim)
			}
			candidates = append(candidates, SimilarEntry{
				ID:              existing.ID,
				Title:           existing.Title,
				SimilarityScore: roundPercent(overall),
				FieldSimilarity: fieldPct,
				Explanation:     CandidateExplanation(existing.Title, perField),
			})
		}
	}

	// Stable sort: ties keep corpus order, no secondary key.
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].SimilarityScore > candidates[j].SimilarityScore
	})
	if len(candidates) > c.cfg.MaxSimilar {
		candidates = candidates[:c.cfg.MaxSimilar]
	}
	report.Similar = candidates

	var sum int
	for _, f := range c.cfg.TrackedFields {
		u := UniquenessFromSimilarity(maxSim[f])
		report.FieldUniqueness[f] = u
		sum += u
	}
	if n := len(c.cfg.TrackedFields); n > 0 {
		report.UniquenessScore = roundDiv(sum, n)
	}
	report.Explanation = OverallExplanation(report.UniquenessScore, report.FieldUniqueness, c.cfg.TrackedFields)
	return report, nil
}

// checkExactMatch runs before any embedding work and short-circuits the
// whole pipeline. Entries without embeddings still participate here as long
// as they carry hashes.
func (c *Checker) checkExactMatch(newEntry Entry, corpus []Entry) error {
	for _, f := range c.cfg.ExactFields {
		h, ok := newEntry.Hashes[f]
		if !ok || h == "" {
			continue
		}
		for _, existing := range corpus {
			if existing.Hashes[f] == h {
				return &ExactMatchError{
					Field:       f,
					MatchID:     existing.ID,
					MatchTitle:  existing.Title,
					Explanation: ExactMatchExplanation(f, existing.Title),
				}
			}
		}
	}
	return nil
}

func hasVectors(e Entry) bool {
	for _, v := range e.Vectors {
		if len(v) > 0 {
			return true
		}
	}
	return false
}

func roundPercent(sim float64) int {
	pct := int(sim*100 + 0.5)
	if pct > 100 {
		pct = 100
	}
	if pct < 0 {
		pct = 0
	}
	return pct
}

// roundDiv is round(sum/n) without drifting through float formatting.
func roundDiv(sum, n int) int {
	return (sum*2 + n) / (n * 2)
}
