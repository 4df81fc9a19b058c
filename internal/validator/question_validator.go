package validator

import (
	"fmt"

	"github.com/SAP-F-2025/grading-service/internal/grading"
	"github.com/SAP-F-2025/grading-service/internal/models"
)

type IssueSeverity string

const (
	SeverityError   IssueSeverity = "error"
	SeverityWarning IssueSeverity = "warning"
)

// QuestionIssue is a problem in a question definition that would make grading
// award zero or need a human. Grading itself tolerates all of them.
type QuestionIssue struct {
	Field    string        `json:"field"`
	Severity IssueSeverity `json:"severity"`
	Message  string        `json:"message"`
}

// QuestionValidator checks question definitions at authoring time
type QuestionValidator struct{}

// NewQuestionValidator creates a new question validator
func NewQuestionValidator() *QuestionValidator {
	return &QuestionValidator{}
}

// Lint reads the definition the way the grading engine does and reports every
// issue it finds. An empty result means the question can be graded automatically.
func (v *QuestionValidator) Lint(questionType models.QuestionType, data models.QuestionData) []QuestionIssue {
	l := &linter{}

	if !questionType.IsSupported() {
		l.errorf("question_type", "unsupported question type %q: every answer will score zero", questionType)
		return l.issues
	}

	q, _ := grading.Normalize(models.GradeInput{QuestionType: questionType, QuestionData: data})
	if q.Content == "" {
		l.warnf("question", "question text is empty")
	}

	switch questionType {
	case models.SingleChoice, models.MultipleChoice:
		l.choice("", questionType, q.Choice)
	case models.DragDrop:
		l.dragDrop(q.DragDrop)
	case models.CaseStudy:
		l.caseStudy(q.CaseStudy)
	case models.ShortAnswer:
		if len(q.ShortAnswer.Keywords) == 0 {
			l.warnf("keywords", "no keywords: answers require manual review")
		}
	}

	return l.issues
}

// HasErrors reports whether any issue is an error rather than a warning
func HasErrors(issues []QuestionIssue) bool {
	for _, issue := range issues {
		if issue.Severity == SeverityError {
			return true
		}
	}
	return false
}

type linter struct {
	issues []QuestionIssue
}

func (l *linter) errorf(field, format string, args ...interface{}) {
	l.issues = append(l.issues, QuestionIssue{Field: field, Severity: SeverityError, Message: fmt.Sprintf(format, args...)})
}

func (l *linter) warnf(field, format string, args ...interface{}) {
	l.issues = append(l.issues, QuestionIssue{Field: field, Severity: SeverityWarning, Message: fmt.Sprintf(format, args...)})
}

func (l *linter) choice(prefix string, questionType models.QuestionType, key *grading.ChoiceKey) {
	texts := key.OptionTexts()
	switch {
	case len(texts) == 0:
		l.errorf(prefix+"options", "no options")
	case len(texts) < 2:
		l.warnf(prefix+"options", "only one option")
	}

	seen := make(map[string]bool, len(texts))
	for _, text := range texts {
		if seen[text] {
			l.warnf(prefix+"options", "option %q appears more than once", text)
		}
		seen[text] = true
	}

	if len(key.Correct) == 0 {
		l.errorf(prefix+"correct_answer", "no correct answer: every answer will score zero")
		return
	}
	if questionType == models.SingleChoice && len(key.Correct) > 1 {
		l.warnf(prefix+"correct_answer", "single-choice question lists %d correct answers; only the first is used", len(key.Correct))
	}
	for _, value := range key.Correct {
		if len(texts) > 0 && !key.Resolves(value) {
			l.errorf(prefix+"correct_answer", "correct answer %q does not match any option", value)
		}
	}
}

func (l *linter) dragDrop(key *grading.DragDropKey) {
	switch key.Format {
	case models.DragDropMatching:
		if text, dup := key.AmbiguousItem(); dup {
			l.errorf("leftItems", "item %q appears more than once: matching items must be unique", text)
		}
		if len(key.CorrectPairs) == 0 {
			l.errorf("correctPairs", "no correct pairs")
		}
		for _, p := range key.UnresolvedPairs() {
			l.errorf("correctPairs", "pair %q -> %q names an unknown item", p[0], p[1])
		}
	case models.DragDropOrdering:
		if len(key.CorrectOrder) == 0 {
			l.errorf("correctOrder", "no correct order")
		}
	default:
		if len(key.CorrectMappings) == 0 {
			l.errorf("correctMappings", "no correct mappings")
		}
	}
}

func (l *linter) caseStudy(key *grading.CaseStudyKey) {
	if len(key.SubQuestions) == 0 {
		l.errorf("subQuestions", "no sub-questions")
		return
	}

	var total float64
	for i, sq := range key.SubQuestions {
		prefix := fmt.Sprintf("subQuestions[%d].", i)
		if !sq.Valid {
			l.errorf(prefix[:len(prefix)-1], "sub-question is not an object")
			continue
		}
		total += sq.Marks
		if sq.Marks <= 0 {
			l.warnf(prefix+"marks", "sub-question carries no marks")
		}
		switch sq.Type {
		case models.SingleChoice, models.MultipleChoice:
			key := sq.Choice
			l.choice(prefix, sq.Type, &key)
		default:
			l.warnf(prefix+"questionType", "%q sub-questions require manual review", sq.Type)
		}
	}
	if total <= 0 {
		l.errorf("subQuestions", "sub-questions carry no marks: the question can never be answered correctly")
	}
}
