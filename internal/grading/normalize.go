package grading

import (
	"strings"

	"github.com/SAP-F-2025/grading-service/internal/models"
)

// Legacy field names, highest priority first.
var (
	singleChoiceKeys   = []string{"correctAnswer", "correct_answer", "correctOption", "correctOptions", "correctAnswers"}
	multipleChoiceKeys = []string{"correctAnswers", "correct_answers", "correctOptions", "correctAnswer", "correct_answer"}
	optionKeys         = []string{"options", "choices"}
	questionTextKeys   = []string{"question", "questionText", "question_text", "text"}
	selectionKeys      = []string{"selectedOptions", "selected_options", "selected"}
	dragDropTypeKeys   = []string{"type", "dragDropType", "drag_drop_type"}
	subQuestionKeys    = []string{"subQuestions", "sub_questions"}
	subTypeKeys        = []string{"questionType", "question_type", "type"}
	referenceKeys      = []string{"correctAnswer", "sampleAnswer", "sample_answer", "correct_answer"}
)

// Question is a question definition with every legacy field resolved.
// Exactly one of the per-type keys is set for a supported type.
type Question struct {
	Type    models.QuestionType
	Content string

	Choice      *ChoiceKey
	DragDrop    *DragDropKey
	CaseStudy   *CaseStudyKey
	ShortAnswer *ShortAnswerKey
}

type ChoiceKey struct {
	Options []entry
	Correct []string
}

type DragDropKey struct {
	Format models.DragDropFormat

	LeftItems    []entry
	RightItems   []entry
	CorrectPairs [][2]string

	Items        []entry
	CorrectOrder []string

	CorrectMappings []models.Mapping
}

type CaseStudyKey struct {
	SubQuestions []SubQuestion
}

// SubQuestion keeps its raw definition so that a malformed one can fail on its own.
type SubQuestion struct {
	Raw    any
	ID     string
	Type   models.QuestionType
	Marks  float64
	Valid  bool
	Prompt string
	Choice ChoiceKey
}

type ShortAnswerKey struct {
	Keywords  []string
	Reference string
}

// Answer is the effective student value after unwrapping.
type Answer struct {
	Value     any
	TimeSpent any
	Raw       any
}

// Normalize resolves the question definition and unwraps the student answer.
// It never fails: absent fields become empty collections.
func Normalize(in models.GradeInput) (Question, Answer) {
	data := map[string]any(in.QuestionData)
	if data == nil {
		data = map[string]any{}
	}

	q := Question{
		Type:    in.QuestionType,
		Content: questionContent(data, in.QuestionText),
	}

	switch in.QuestionType {
	case models.SingleChoice:
		q.Choice = normalizeChoice(data, singleChoiceKeys)
	case models.MultipleChoice:
		q.Choice = normalizeChoice(data, multipleChoiceKeys)
	case models.DragDrop:
		q.DragDrop = normalizeDragDrop(data)
	case models.CaseStudy:
		q.CaseStudy = normalizeCaseStudy(data)
	case models.ShortAnswer:
		q.ShortAnswer = normalizeShortAnswer(data)
	}

	return q, UnwrapAnswer(in.StudentAnswer)
}

// UnwrapAnswer unwraps {rawAnswer, timeSpent}; bare answers pass through.
func UnwrapAnswer(raw any) Answer {
	a := Answer{Value: raw, Raw: raw}
	m, ok := asMap(raw)
	if !ok {
		return a
	}
	if _, wrapped := m["rawAnswer"]; !wrapped {
		return a
	}
	a.Value = m["rawAnswer"]
	if ts, ok := lookup(m, "timeSpent", "time_spent"); ok {
		a.TimeSpent = ts
	}
	return a
}

func questionContent(data map[string]any, fallback string) string {
	if v, ok := lookup(data, questionTextKeys...); ok {
		if s := canonical(v); s != "" {
			return s
		}
	}
	return fallback
}

func normalizeChoice(data map[string]any, correctKeys []string) *ChoiceKey {
	key := &ChoiceKey{}
	if v, ok := lookup(data, optionKeys...); ok {
		key.Options = toEntries(v)
	}
	if v, ok := lookup(data, correctKeys...); ok {
		key.Correct = canonicalSlice(v)
	}
	return key
}

// selection pulls the chosen values out of a choice answer.
func selection(v any) []string {
	if m, ok := asMap(v); ok {
		if sel, ok := lookup(m, selectionKeys...); ok {
			return canonicalSlice(sel)
		}
		return nil
	}
	return canonicalSlice(v)
}

func normalizeDragDrop(data map[string]any) *DragDropKey {
	key := &DragDropKey{Format: dragDropFormat(data)}

	switch key.Format {
	case models.DragDropMatching:
		if v, ok := lookup(data, "leftItems", "left_items"); ok {
			key.LeftItems = toEntries(v)
		}
		if v, ok := lookup(data, "rightItems", "right_items"); ok {
			key.RightItems = toEntries(v)
		}
		if v, ok := lookup(data, "correctPairs", "correct_pairs"); ok {
			key.CorrectPairs = rawPairs(v, key.LeftItems)
		}
	case models.DragDropOrdering:
		if v, ok := lookup(data, "items"); ok {
			key.Items = toEntries(v)
		}
		if v, ok := lookup(data, "correctOrder", "correct_order"); ok {
			for _, e := range toEntries(v) {
				key.CorrectOrder = append(key.CorrectOrder, e.key())
			}
		} else {
			for _, e := range key.Items {
				key.CorrectOrder = append(key.CorrectOrder, e.key())
			}
		}
		if len(key.Items) == 0 {
			for _, k := range key.CorrectOrder {
				key.Items = append(key.Items, entry{Text: k})
			}
		}
	default:
		if v, ok := lookup(data, "correctMappings", "correct_mappings"); ok {
			if m, ok := asMap(v); ok {
				for _, k := range sortedKeys(m) {
					key.CorrectMappings = append(key.CorrectMappings, models.Mapping{Key: k, Value: canonical(m[k])})
				}
			}
		}
	}
	return key
}

func dragDropFormat(data map[string]any) models.DragDropFormat {
	if v, ok := lookup(data, dragDropTypeKeys...); ok {
		switch strings.ToLower(canonical(v)) {
		case "matching":
			return models.DragDropMatching
		case "ordering", "order", "sequence":
			return models.DragDropOrdering
		default:
			return models.DragDropGeneric
		}
	}
	if _, ok := lookup(data, "leftItems", "left_items"); ok {
		return models.DragDropMatching
	}
	if _, ok := lookup(data, "correctOrder", "correct_order"); ok {
		return models.DragDropOrdering
	}
	return models.DragDropGeneric
}

// rawPairs reads (drag, drop) content pairs from either an object keyed by drag
// content or a list of pair objects. Object pairs are ordered by drag position.
func rawPairs(v any, left []entry) [][2]string {
	if m, ok := asMap(v); ok {
		keys := sortedKeys(m)
		ordered := make([]string, 0, len(keys))
		for _, e := range left {
			if _, ok := m[e.Text]; ok {
				ordered = append(ordered, e.Text)
			} else if _, ok := m[e.ID]; ok && e.ID != "" {
				ordered = append(ordered, e.ID)
			}
		}
		placed := make(map[string]struct{}, len(ordered))
		for _, k := range ordered {
			placed[k] = struct{}{}
		}
		for _, k := range keys {
			if _, ok := placed[k]; !ok {
				ordered = append(ordered, k)
			}
		}
		pairs := make([][2]string, 0, len(ordered))
		for _, k := range ordered {
			pairs = append(pairs, [2]string{k, toEntry(m[k]).key()})
		}
		return pairs
	}

	var pairs [][2]string
	for _, item := range toSlice(v) {
		if pm, ok := asMap(item); ok {
			l, _ := lookup(pm, "left", "leftItem", "drag", "dragItem", "source")
			r, _ := lookup(pm, "right", "rightItem", "drop", "dropTarget", "target")
			pairs = append(pairs, [2]string{toEntry(l).key(), toEntry(r).key()})
			continue
		}
		if tuple := toSlice(item); len(tuple) == 2 {
			pairs = append(pairs, [2]string{canonical(tuple[0]), canonical(tuple[1])})
		}
	}
	return pairs
}

func normalizeCaseStudy(data map[string]any) *CaseStudyKey {
	key := &CaseStudyKey{}
	v, _ := lookup(data, subQuestionKeys...)
	for _, raw := range toSlice(v) {
		key.SubQuestions = append(key.SubQuestions, normalizeSubQuestion(raw))
	}
	return key
}

func normalizeSubQuestion(raw any) SubQuestion {
	sq := SubQuestion{Raw: raw}
	m, ok := asMap(raw)
	if !ok {
		return sq
	}
	sq.Valid = true
	if id, ok := lookup(m, "id", "_id"); ok {
		sq.ID = canonical(id)
	}
	if t, ok := lookup(m, subTypeKeys...); ok {
		sq.Type = models.QuestionType(canonical(t))
	}
	if marks, ok := lookup(m, "marks", "points"); ok {
		if f, ok := toFloat(marks); ok {
			sq.Marks = sanitizeMarks(f)
		}
	}
	sq.Prompt = questionContent(m, "")
	switch sq.Type {
	case models.SingleChoice:
		sq.Choice = *normalizeChoice(m, singleChoiceKeys)
	case models.MultipleChoice:
		sq.Choice = *normalizeChoice(m, multipleChoiceKeys)
	}
	return sq
}

func normalizeShortAnswer(data map[string]any) *ShortAnswerKey {
	key := &ShortAnswerKey{}
	if v, ok := lookup(data, "keywords"); ok {
		var raw []string
		if s, isString := v.(string); isString {
			raw = strings.Split(s, ",")
		} else {
			raw = canonicalSlice(v)
		}
		for _, kw := range raw {
			if kw = strings.TrimSpace(kw); kw != "" {
				key.Keywords = append(key.Keywords, kw)
			}
		}
	}
	if v, ok := lookup(data, referenceKeys...); ok {
		key.Reference = canonical(v)
	}
	return key
}
