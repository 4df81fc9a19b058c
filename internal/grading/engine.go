// Package grading scores a student's answer against a question definition.
//
// Grading is a pure function of its inputs: it performs no I/O, keeps no state
// between calls and is safe for concurrent use. It is also total. Malformed
// definitions or answers, unsupported question types and unexpected runtime
// failures all come back as a well-formed zero-credit GradedAnswer, never as an
// error or a panic.
package grading

import (
	"encoding/json"
	"fmt"

	"github.com/SAP-F-2025/grading-service/internal/models"
)

type evaluator func(q Question, a Answer, marks float64, f *models.FormattedAnswer) (verdict, error)

// Grade scores one answer.
func Grade(in models.GradeInput) (result models.GradedAnswer) {
	marks := sanitizeMarks(in.TotalMarks)

	defer func() {
		if r := recover(); r != nil {
			result = failure(in, marks, fmt.Errorf("%w: %v", ErrUnexpected, r))
		}
	}()

	q, a := Normalize(in)

	var eval evaluator
	switch q.Type {
	case models.SingleChoice, models.MultipleChoice:
		eval = evaluateChoice
	case models.DragDrop:
		eval = evaluateDragDrop
	case models.CaseStudy:
		eval = evaluateCaseStudy
	case models.ShortAnswer:
		eval = evaluateShortAnswer
	default:
		return unsupported(q, a, marks)
	}

	f := newFormatted(q, a, marks)
	v, err := eval(q, a, marks, &f)
	if err != nil {
		return failure(in, marks, err)
	}
	return seal(f, v, marks)
}

// GradeJSON grades JSON-encoded question data and answer. Undecodable input is
// reported the same way as any other grading failure.
func GradeJSON(questionType string, questionData, studentAnswer json.RawMessage, totalMarks float64, questionText string) models.GradedAnswer {
	in := models.GradeInput{
		QuestionType: models.QuestionType(questionType),
		TotalMarks:   totalMarks,
		QuestionText: questionText,
	}

	if len(studentAnswer) > 0 {
		if err := json.Unmarshal(studentAnswer, &in.StudentAnswer); err != nil {
			in.StudentAnswer = string(studentAnswer)
			return failure(in, sanitizeMarks(totalMarks), fmt.Errorf("%w: student answer: %v", ErrMalformedJSON, err))
		}
	}
	if len(questionData) > 0 {
		if err := json.Unmarshal(questionData, &in.QuestionData); err != nil {
			return failure(in, sanitizeMarks(totalMarks), fmt.Errorf("%w: question data: %v", ErrMalformedJSON, err))
		}
	}

	return Grade(in)
}
