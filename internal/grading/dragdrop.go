package grading

import (
	"fmt"

	"github.com/SAP-F-2025/grading-service/internal/models"
)

func evaluateDragDrop(q Question, a Answer, marks float64, f *models.FormattedAnswer) (verdict, error) {
	key := q.DragDrop
	switch key.Format {
	case models.DragDropMatching:
		return evaluateMatching(key, a, marks, f)
	case models.DragDropOrdering:
		return evaluateOrdering(key, a, marks, f)
	default:
		return evaluateMappings(key, a, marks, f)
	}
}

// evaluateMatching compares the student's pairs with the correct pairs as sets.
// Items are resolved by content, so item content must be unique on each side.
func evaluateMatching(key *DragDropKey, a Answer, marks float64, f *models.FormattedAnswer) (verdict, error) {
	if text, dup := key.AmbiguousItem(); dup {
		return verdict{}, fmt.Errorf("%w: %q appears more than once", ErrAmbiguousItems, text)
	}

	var answer any = a.Value
	if m, ok := asMap(a.Value); ok {
		if pairs, ok := lookup(m, "pairs", "matches"); ok {
			answer = pairs
		}
	}

	student := resolvePairs(rawPairs(answer, key.LeftItems), key)
	correct := resolvePairs(key.CorrectPairs, key)
	formatMatching(f, key, student, correct)

	return allOrNothing(samePairs(student, correct), marks), nil
}

func resolvePairs(raw [][2]string, key *DragDropKey) []models.Pair {
	out := make([]models.Pair, 0, len(raw))
	for _, p := range raw {
		out = append(out, pairIDs(p, key.LeftItems, key.RightItems))
	}
	return out
}

func samePairs(student, correct []models.Pair) bool {
	if len(correct) == 0 || len(student) != len(correct) {
		return false
	}
	want := make(map[models.Pair]struct{}, len(correct))
	for _, p := range correct {
		if p.DragID == "" || p.DropID == "" {
			return false
		}
		want[p] = struct{}{}
	}
	seen := make(map[models.Pair]struct{}, len(student))
	for _, p := range student {
		if _, ok := want[p]; !ok {
			return false
		}
		seen[p] = struct{}{}
	}
	return len(seen) == len(want)
}

// evaluateOrdering requires the exact correct sequence.
func evaluateOrdering(key *DragDropKey, a Answer, marks float64, f *models.FormattedAnswer) (verdict, error) {
	var answer any = a.Value
	if m, ok := asMap(a.Value); ok {
		answer, _ = lookup(m, "order", "items")
	}

	var student []string
	for _, e := range toEntries(answer) {
		student = append(student, e.key())
	}
	formatOrdering(f, key, student)

	correct := len(key.CorrectOrder) > 0 && len(student) == len(key.CorrectOrder)
	for i := 0; correct && i < len(student); i++ {
		correct = student[i] == key.CorrectOrder[i]
	}
	return allOrNothing(correct, marks), nil
}

// evaluateMappings checks every correct key. Matches are counted for display
// only; a single mismatch scores zero.
func evaluateMappings(key *DragDropKey, a Answer, marks float64, f *models.FormattedAnswer) (verdict, error) {
	student, _ := asMap(a.Value)
	if nested, ok := lookup(student, "mappings"); ok {
		if m, ok := asMap(nested); ok {
			student = m
		}
	}

	results := make([]models.MappingResult, 0, len(key.CorrectMappings))
	correctCount := 0
	for _, want := range key.CorrectMappings {
		got, present := student[want.Key]
		r := models.MappingResult{Key: want.Key, Value: canonical(got)}
		r.IsCorrect = present && r.Value == want.Value
		if r.IsCorrect {
			correctCount++
		}
		results = append(results, r)
	}
	formatMappings(f, key, results, correctCount)

	total := len(key.CorrectMappings)
	return allOrNothing(total > 0 && correctCount == total, marks), nil
}

// AmbiguousItem returns the first drag item or drop target whose content repeats.
func (k *DragDropKey) AmbiguousItem() (string, bool) {
	if text, dup := duplicateText(k.LeftItems); dup {
		return text, true
	}
	return duplicateText(k.RightItems)
}

// UnresolvedPairs returns the correct pairs that name an unknown item.
func (k *DragDropKey) UnresolvedPairs() [][2]string {
	var out [][2]string
	for _, p := range k.CorrectPairs {
		if indexOf(k.LeftItems, p[0]) < 0 || indexOf(k.RightItems, p[1]) < 0 {
			out = append(out, p)
		}
	}
	return out
}
