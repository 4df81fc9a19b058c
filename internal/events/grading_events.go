package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/SAP-F-2025/grading-service/internal/models"
)

// EventType represents different types of grading events
type EventType string

const (
	EventAnswerGraded          EventType = "grading.answer_graded"
	EventManualGradingRequired EventType = "grading.manual_required"
	EventAttemptGraded         EventType = "attempt.graded"
)

const (
	eventSource  = "grading-service"
	eventVersion = "1.0"
)

// GradingEvent is the envelope shared by every event the service publishes
type GradingEvent struct {
	ID        string                 `json:"id"`
	Type      EventType              `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Source    string                 `json:"source"`
	Version   string                 `json:"version"`
	Data      interface{}            `json:"data"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

// Event payloads

type AnswerGradedEvent struct {
	AttemptID     uint                 `json:"attempt_id"`
	QuestionID    uint                 `json:"question_id"`
	QuestionType  models.QuestionType  `json:"question_type"`
	Status        models.GradingStatus `json:"status"`
	IsCorrect     bool                 `json:"is_correct"`
	PointsEarned  float64              `json:"points_earned"`
	QuestionMarks float64              `json:"question_marks"`
	GradedAt      time.Time            `json:"graded_at"`
}

type ManualGradingRequiredEvent struct {
	AttemptID    uint                `json:"attempt_id"`
	QuestionID   uint                `json:"question_id"`
	QuestionType models.QuestionType `json:"question_type"`
	RequiredAt   time.Time           `json:"required_at"`
}

type AttemptGradedEvent struct {
	AttemptID        uint      `json:"attempt_id"`
	GradedAt         time.Time `json:"graded_at"`
	Score            float64   `json:"score"`
	MaxScore         float64   `json:"max_score"`
	Percentage       float64   `json:"percentage"`
	AnswerCount      int       `json:"answer_count"`
	PendingReview    int       `json:"pending_review"`
	FailedCount      int       `json:"failed_count"`
	PendingReviewIDs []uint    `json:"pending_review_question_ids,omitempty"`
}

// Event factory functions

func NewAnswerGradedEvent(record *models.GradedAnswerRecord) *GradingEvent {
	return newEvent(EventAnswerGraded, AnswerGradedEvent{
		AttemptID:     record.AttemptID,
		QuestionID:    record.QuestionID,
		QuestionType:  record.QuestionType,
		Status:        record.Status,
		IsCorrect:     record.IsCorrect,
		PointsEarned:  record.PointsEarned,
		QuestionMarks: record.QuestionMarks,
		GradedAt:      record.GradedAt,
	})
}

func NewManualGradingRequiredEvent(record *models.GradedAnswerRecord) *GradingEvent {
	return newEvent(EventManualGradingRequired, ManualGradingRequiredEvent{
		AttemptID:    record.AttemptID,
		QuestionID:   record.QuestionID,
		QuestionType: record.QuestionType,
		RequiredAt:   record.GradedAt,
	})
}

func NewAttemptGradedEvent(data AttemptGradedEvent) *GradingEvent {
	return newEvent(EventAttemptGraded, data)
}

func newEvent(eventType EventType, data interface{}) *GradingEvent {
	return &GradingEvent{
		ID:        GenerateEventID(),
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		Source:    eventSource,
		Version:   eventVersion,
		Data:      data,
	}
}

// GenerateEventID returns a random UUID for a new event
func GenerateEventID() string {
	return uuid.NewString()
}
