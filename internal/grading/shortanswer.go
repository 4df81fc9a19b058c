package grading

import (
	"strings"

	"github.com/SAP-F-2025/grading-service/internal/models"
)

// evaluateShortAnswer awards credit by the share of keywords found in the answer.
// Without keywords the answer cannot be scored automatically.
func evaluateShortAnswer(q Question, a Answer, marks float64, f *models.FormattedAnswer) (verdict, error) {
	key := q.ShortAnswer
	text := answerText(a.Value)

	if len(key.Keywords) == 0 {
		formatShortAnswer(f, key, text, nil, nil)
		return verdict{}, nil
	}

	haystack := strings.ToLower(text)
	var matched []string
	for _, kw := range key.Keywords {
		if strings.Contains(haystack, strings.ToLower(kw)) {
			matched = append(matched, kw)
		}
	}

	ratio := float64(len(matched)) / float64(len(key.Keywords))
	formatShortAnswer(f, key, text, matched, &ratio)

	switch {
	case ratio >= FullCreditRatio:
		return verdict{correct: true, points: marks}, nil
	case ratio >= HalfCreditRatio:
		return verdict{points: marks * HalfCreditFactor}, nil
	default:
		return verdict{}, nil
	}
}

func answerText(v any) string {
	if m, ok := asMap(v); ok {
		if t, ok := lookup(m, "text", "answer"); ok {
			return canonical(t)
		}
		return ""
	}
	return canonical(v)
}
