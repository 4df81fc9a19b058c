package models

type QuestionType string

const (
	SingleChoice   QuestionType = "single-choice"
	MultipleChoice QuestionType = "multiple-choice"
	DragDrop       QuestionType = "drag-drop"
	CaseStudy      QuestionType = "case-study"
	ShortAnswer    QuestionType = "short-answer"
)

// SupportedQuestionTypes lists every type the grading engine knows how to score.
var SupportedQuestionTypes = []QuestionType{
	SingleChoice,
	MultipleChoice,
	DragDrop,
	CaseStudy,
	ShortAnswer,
}

// IsSupported reports whether the engine has an evaluator for the type.
// Unsupported types are still gradable: they produce a zero-credit record.
func (t QuestionType) IsSupported() bool {
	for _, s := range SupportedQuestionTypes {
		if s == t {
			return true
		}
	}
	return false
}

type DragDropFormat string

const (
	DragDropMatching DragDropFormat = "matching"
	DragDropOrdering DragDropFormat = "ordering"
	DragDropGeneric  DragDropFormat = "generic"
)

// QuestionData is the raw, type-dependent question definition as decoded from JSON.
// Field names vary between question authoring generations, so it is kept untyped
// until the grading normalizer resolves it.
type QuestionData map[string]any

// GradeInput is everything the grading engine needs for one (attempt, question) pair.
type GradeInput struct {
	QuestionType  QuestionType `json:"question_type"`
	QuestionData  QuestionData `json:"question_data"`
	StudentAnswer any          `json:"student_answer"`
	TotalMarks    float64      `json:"total_marks"`
	QuestionText  string       `json:"question_text,omitempty"`
}
