package grading

import (
	"fmt"
	"strconv"

	"github.com/SAP-F-2025/grading-service/internal/models"
)

// evaluateCaseStudy grades every sub-question independently and sums the marks.
// A sub-question that fails to grade scores zero without affecting the others.
func evaluateCaseStudy(q Question, a Answer, marks float64, f *models.FormattedAnswer) (verdict, error) {
	container := subAnswers(a.Value)

	results := make([]models.SubQuestionResult, 0, len(q.CaseStudy.SubQuestions))
	var earned, possible float64
	for i, sq := range q.CaseStudy.SubQuestions {
		r := gradeSubQuestion(i, sq, container)
		earned += r.MarksEarned
		possible += r.Marks
		results = append(results, r)
	}
	formatCaseStudy(f, results, possible)

	return verdict{
		correct: possible > 0 && earned == possible,
		points:  earned,
	}, nil
}

func subAnswers(v any) any {
	if m, ok := asMap(v); ok {
		if c, ok := lookup(m, "responses", "subAnswers"); ok {
			return c
		}
	}
	return v
}

// subAnswer finds a sub-question's answer by id, falling back to position.
func subAnswer(container any, i int, id string) any {
	m, isMap := asMap(container)
	if id != "" && isMap {
		if v, ok := m[id]; ok {
			return v
		}
	}
	if list, ok := container.([]any); ok {
		if i < len(list) {
			return list[i]
		}
		return nil
	}
	if isMap {
		return m[strconv.Itoa(i)]
	}
	return nil
}

func gradeSubQuestion(i int, sq SubQuestion, container any) (r models.SubQuestionResult) {
	r = models.SubQuestionResult{
		ID:              sq.ID,
		Index:           i,
		QuestionType:    sq.Type,
		QuestionContent: sq.Prompt,
		Marks:           sq.Marks,
	}

	defer func() {
		if rec := recover(); rec != nil {
			r.IsCorrect = false
			r.MarksEarned = 0
			r.Error = fmt.Errorf("%w: %v", ErrUnexpected, rec).Error()
		}
	}()

	if !sq.Valid {
		r.Error = fmt.Errorf("%w: index %d", ErrMalformedSubQuestion, i).Error()
		return r
	}

	answer := UnwrapAnswer(subAnswer(container, i, sq.ID)).Value
	r.StudentAnswer = answer

	var correct bool
	switch sq.Type {
	case models.SingleChoice:
		selected := selection(answer)
		correct = exactChoice(selected, sq.Choice.Correct)
		formatSubChoice(&r, &sq.Choice, selected)
	case models.MultipleChoice:
		selected := selection(answer)
		correct = sameSet(selected, sq.Choice.Correct)
		formatSubChoice(&r, &sq.Choice, selected)
	default:
		// Free text and anything else is left to a human grader.
		r.RequiresManualReview = true
	}

	if correct {
		r.IsCorrect = true
		r.MarksEarned = sq.Marks
	}
	return r
}

func formatSubChoice(r *models.SubQuestionResult, key *ChoiceKey, selected []string) {
	if len(key.Options) > 0 {
		r.Options = options(key.Options)
	}
	r.SelectedOptions = optionIDs(selected, key.Options)
	r.CorrectOptions = optionIDs(key.Correct, key.Options)
}
