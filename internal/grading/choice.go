package grading

import (
	"strconv"
	"strings"

	"github.com/SAP-F-2025/grading-service/internal/models"
)

// evaluateChoice grades single- and multiple-choice questions by set equality
// of raw option values. Repeated selections count once.
func evaluateChoice(q Question, a Answer, marks float64, f *models.FormattedAnswer) (verdict, error) {
	key := q.Choice
	if len(key.Options) == 0 {
		return verdict{}, ErrNoOptions
	}

	selected := selection(a.Value)
	formatChoice(f, key, selected)
	return allOrNothing(sameSet(selected, key.Correct), marks), nil
}

// exactChoice is the case-study single-choice rule: one value, equal to the key.
func exactChoice(selected, correct []string) bool {
	selected = dedupe(selected)
	return len(selected) == 1 && len(correct) > 0 && selected[0] == correct[0]
}

// Resolves reports whether a raw key value names one of the options, either as
// an index or by content or id.
func (k *ChoiceKey) Resolves(value string) bool {
	if n, err := strconv.Atoi(strings.TrimSpace(value)); err == nil {
		return n >= 0 && n < len(k.Options)
	}
	return indexOf(k.Options, value) >= 0
}

// OptionTexts returns the display text of every option in order.
func (k *ChoiceKey) OptionTexts() []string {
	out := make([]string, len(k.Options))
	for i, o := range k.Options {
		out[i] = o.Text
	}
	return out
}
