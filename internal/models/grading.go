package models

import (
	"time"

	"gorm.io/datatypes"
)

type GradingStatus string

const (
	GradingStatusAutoGraded    GradingStatus = "auto_graded"
	GradingStatusPendingReview GradingStatus = "pending_review"
	GradingStatusFailed        GradingStatus = "failed"
)

// GradedAnswerRecord is the persisted form of a GradedAnswer. One row per
// (attempt, question); regrading replaces it.
type GradedAnswerRecord struct {
	ID           uint          `json:"id" gorm:"primaryKey"`
	AttemptID    uint          `json:"attempt_id" gorm:"not null;uniqueIndex:idx_attempt_question"`
	QuestionID   uint          `json:"question_id" gorm:"not null;uniqueIndex:idx_attempt_question"`
	QuestionType QuestionType  `json:"question_type" gorm:"not null;size:50;index"`
	Status       GradingStatus `json:"status" gorm:"not null;size:30;index"`

	IsCorrect     bool    `json:"is_correct"`
	PointsEarned  float64 `json:"points_earned"`
	QuestionMarks float64 `json:"question_marks"`

	// Full FormattedAnswer, stored verbatim
	FormattedAnswer datatypes.JSON `json:"formatted_answer" gorm:"type:jsonb"`
	Fingerprint     string         `json:"fingerprint" gorm:"size:64;index"`

	GradedAt time.Time `json:"graded_at"`
}

func (GradedAnswerRecord) TableName() string {
	return "graded_answers"
}

// StatusFor derives the persisted status from a graded answer.
func StatusFor(answer *GradedAnswer) GradingStatus {
	switch {
	case answer.FormattedAnswer.Error != "" && answer.FormattedAnswer.QuestionType.IsSupported():
		return GradingStatusFailed
	case answer.NeedsReview():
		return GradingStatusPendingReview
	default:
		return GradingStatusAutoGraded
	}
}

// NeedsReview reports whether any part of the answer was left for a human grader.
func (a *GradedAnswer) NeedsReview() bool {
	if a.FormattedAnswer.RequiresManualReview {
		return true
	}
	for _, sq := range a.FormattedAnswer.SubQuestions {
		if sq.RequiresManualReview {
			return true
		}
	}
	return false
}
