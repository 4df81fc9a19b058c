package grading

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/SAP-F-2025/grading-service/internal/models"
)

// Display ids (opt1, drag1, drop1, item1) are derived from the current order of
// the question's lists and exist only in the formatted record. Evaluators never
// compare against them.

func newFormatted(q Question, a Answer, marks float64) models.FormattedAnswer {
	return models.FormattedAnswer{
		QuestionType:      q.Type,
		QuestionContent:   q.Content,
		QuestionMarks:     marks,
		TimeTakenToAnswer: a.TimeSpent,
	}
}

func seal(f models.FormattedAnswer, v verdict, marks float64) models.GradedAnswer {
	points := v.points
	if points < 0 {
		points = 0
	}
	if points > marks {
		points = marks
	}
	f.IsCorrect = v.correct
	f.MarksEarned = points
	return models.GradedAnswer{
		IsCorrect:       v.correct,
		PointsEarned:    points,
		FormattedAnswer: f,
	}
}

// failure is the zero-credit record returned when grading could not complete.
func failure(in models.GradeInput, marks float64, err error) models.GradedAnswer {
	return models.GradedAnswer{
		FormattedAnswer: models.FormattedAnswer{
			QuestionType:      in.QuestionType,
			QuestionContent:   questionContent(in.QuestionData, in.QuestionText),
			Error:             err.Error(),
			StudentAnswer:     in.StudentAnswer,
			QuestionMarks:     marks,
			TimeTakenToAnswer: UnwrapAnswer(in.StudentAnswer).TimeSpent,
		},
	}
}

func unsupported(q Question, a Answer, marks float64) models.GradedAnswer {
	f := newFormatted(q, a, marks)
	f.Error = fmt.Sprintf("Unsupported question type: %s", q.Type)
	f.StudentAnswer = a.Raw
	return seal(f, verdict{}, marks)
}

func positionalID(prefix string, i int) string {
	return prefix + strconv.Itoa(i+1)
}

func options(entries []entry) []models.Option {
	out := make([]models.Option, len(entries))
	for i, e := range entries {
		out[i] = models.Option{ID: positionalID("opt", i), Text: e.Text}
	}
	return out
}

// optionID maps a raw choice value to its display id. Integer values are option
// indexes; other values are matched against option content or ids.
func optionID(value string, entries []entry) string {
	if n, err := strconv.Atoi(strings.TrimSpace(value)); err == nil {
		return positionalID("opt", n)
	}
	if i := indexOf(entries, value); i >= 0 {
		return positionalID("opt", i)
	}
	return value
}

func optionIDs(values []string, entries []entry) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		out = append(out, optionID(v, entries))
	}
	return out
}

func formatChoice(f *models.FormattedAnswer, key *ChoiceKey, selected []string) {
	f.Options = options(key.Options)
	f.SelectedOptions = optionIDs(selected, key.Options)
	f.CorrectOptions = optionIDs(key.Correct, key.Options)
}

func items(prefix string, entries []entry) []models.Item {
	out := make([]models.Item, len(entries))
	for i, e := range entries {
		out[i] = models.Item{ID: positionalID(prefix, i), Content: e.Text}
	}
	return out
}

// pairIDs resolves a content pair to display ids. Unknown content gets an empty id.
func pairIDs(p [2]string, left, right []entry) models.Pair {
	pair := models.Pair{}
	if i := indexOf(left, p[0]); i >= 0 {
		pair.DragID = positionalID("drag", i)
	}
	if i := indexOf(right, p[1]); i >= 0 {
		pair.DropID = positionalID("drop", i)
	}
	return pair
}

func formatMatching(f *models.FormattedAnswer, key *DragDropKey, student, correct []models.Pair) {
	f.DragDropType = models.DragDropMatching
	f.DragItems = items("drag", key.LeftItems)
	f.DropTargets = items("drop", key.RightItems)
	f.StudentPairs = student
	f.CorrectPairs = correct
}

func formatOrdering(f *models.FormattedAnswer, key *DragDropKey, student []string) {
	f.DragDropType = models.DragDropOrdering
	f.Items = items("item", key.Items)
	f.StudentOrder = student
	f.CorrectOrder = key.CorrectOrder
}

func formatMappings(f *models.FormattedAnswer, key *DragDropKey, student []models.MappingResult, correctCount int) {
	total := len(key.CorrectMappings)
	f.DragDropType = models.DragDropGeneric
	f.StudentMappings = student
	f.CorrectMappings = key.CorrectMappings
	f.CorrectCount = &correctCount
	f.TotalCount = &total
}

func formatShortAnswer(f *models.FormattedAnswer, key *ShortAnswerKey, text string, matched []string, ratio *float64) {
	f.StudentAnswer = text
	f.ReferenceAnswer = key.Reference
	f.Keywords = key.Keywords
	f.MatchedKeywords = matched
	f.KeywordRatio = ratio
	f.RequiresManualReview = len(key.Keywords) == 0
}

func formatCaseStudy(f *models.FormattedAnswer, subs []models.SubQuestionResult, totalPossible float64) {
	f.SubQuestions = subs
	f.TotalPossible = &totalPossible
}
