package grading

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/SAP-F-2025/grading-service/internal/models"
)

// Question data and answers arrive as decoded JSON, so every helper here accepts
// any and degrades to a zero value instead of failing.

func asMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case models.QuestionData:
		return m, true
	default:
		return nil, false
	}
}

// lookup returns the first key that is present with a non-nil value.
func lookup(m map[string]any, keys ...string) (any, bool) {
	for _, k := range keys {
		if v, ok := m[k]; ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

func toSlice(v any) []any {
	switch s := v.(type) {
	case nil:
		return nil
	case []any:
		return s
	case []string:
		out := make([]any, len(s))
		for i, x := range s {
			out[i] = x
		}
		return out
	case []float64:
		out := make([]any, len(s))
		for i, x := range s {
			out[i] = x
		}
		return out
	case []int:
		out := make([]any, len(s))
		for i, x := range s {
			out[i] = x
		}
		return out
	default:
		return []any{v}
	}
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

// canonical renders a JSON value as a comparable string: 0 and "0" compare equal.
func canonical(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case bool:
		return strconv.FormatBool(x)
	case json.Number:
		return x.String()
	default:
		b, err := json.Marshal(x)
		if err != nil {
			return fmt.Sprint(x)
		}
		return string(b)
	}
}

func canonicalSlice(v any) []string {
	items := toSlice(v)
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, canonical(item))
	}
	return out
}

// entry is a list element that may be a bare value or an object with its own id.
type entry struct {
	ID   string
	Text string
}

func toEntry(v any) entry {
	m, ok := asMap(v)
	if !ok {
		return entry{Text: canonical(v)}
	}
	e := entry{}
	if id, ok := lookup(m, "id", "value"); ok {
		e.ID = canonical(id)
	}
	if text, ok := lookup(m, "text", "content", "label", "name"); ok {
		e.Text = canonical(text)
	} else {
		e.Text = e.ID
	}
	return e
}

func toEntries(v any) []entry {
	items := toSlice(v)
	out := make([]entry, 0, len(items))
	for _, item := range items {
		out = append(out, toEntry(item))
	}
	return out
}

// key is the value an entry is compared by: its own id when it has one.
func (e entry) key() string {
	if e.ID != "" {
		return e.ID
	}
	return e.Text
}

// indexOf resolves a raw value to a position by content first, then by id.
func indexOf(entries []entry, value string) int {
	for i, e := range entries {
		if e.Text == value {
			return i
		}
	}
	for i, e := range entries {
		if e.ID != "" && e.ID == value {
			return i
		}
	}
	return -1
}

func duplicateText(entries []entry) (string, bool) {
	seen := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		if _, ok := seen[e.Text]; ok {
			return e.Text, true
		}
		seen[e.Text] = struct{}{}
	}
	return "", false
}

func dedupe(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

// sameSet compares two selections as sets. An empty correct set never matches.
func sameSet(selected, correct []string) bool {
	selected, correct = dedupe(selected), dedupe(correct)
	if len(correct) == 0 || len(selected) != len(correct) {
		return false
	}
	want := make(map[string]struct{}, len(correct))
	for _, c := range correct {
		want[c] = struct{}{}
	}
	for _, s := range selected {
		if _, ok := want[s]; !ok {
			return false
		}
	}
	return true
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sanitizeMarks(marks float64) float64 {
	if math.IsNaN(marks) || math.IsInf(marks, 0) || marks < 0 {
		return 0
	}
	return marks
}
