package evaluation

import "strings"

// FieldMatch scores a generated scalar field against its reference. An
// exact case-insensitive match scores 1.0; otherwise the score is the
// Jaccard overlap of the word sets. Empty expected fields score 1.0 when
// the output is also empty.
func FieldMatch(expected, got string) float64 {
	expected = strings.TrimSpace(strings.ToLower(expected))
	got = strings.TrimSpace(strings.ToLower(got))
	if expected == got {
		return 1.0
	}
	if expected == "" || got == "" {
		return 0.0
	}

	expectedSet := wordSet(expected)
	gotSet := wordSet(got)

	intersection := 0
	for w := range gotSet {
		if _, ok := expectedSet[w]; ok {
			intersection++
		}
	}
	union := len(expectedSet) + len(gotSet) - intersection
	if union == 0 {
		return 0.0
	}
	return float64(intersection) / float64(union)
}

// FindingsF1 computes the F1 score between expected and generated findings
// lists. A finding counts as matched when FieldMatch against any expected
// finding is at least 0.5. Both lists empty scores 1.0.
func FindingsF1(expected, got []string) float64 {
	if len(expected) == 0 && len(got) == 0 {
		return 1.0
	}
	if len(expected) == 0 || len(got) == 0 {
		return 0.0
	}

	matched := 0
	for _, g := range got {
		for _, e := range expected {
			if FieldMatch(e, g) >= 0.5 {
				matched++
				break
			}
		}
	}

	precision := float64(matched) / float64(len(got))
	recall := float64(matched) / float64(len(expected))
	if precision+recall == 0 {
		return 0.0
	}
	return 2 * precision * recall / (precision + recall)
}

func wordSet(s string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, w := range strings.Fields(s) {
		w = strings.Trim(w, ".,;:!?\"'")
		if w != "" {
			set[w] = struct{}{}
		}
	}
	return set
}
