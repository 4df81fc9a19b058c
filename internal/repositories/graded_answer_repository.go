package repositories

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/grading-service/internal/models"
)

type GradedAnswerFilters struct {
	Status       *models.GradingStatus `json:"status"`
	QuestionType *models.QuestionType  `json:"question_type"`
	Limit        int                   `json:"limit"`
	Offset       int                   `json:"offset"`
}

// GradedAnswerRepository persists engine results. Saving a record for an
// (attempt, question) pair that already has one replaces it.
type GradedAnswerRepository interface {
	Save(ctx context.Context, record *models.GradedAnswerRecord) error
	SaveBatch(ctx context.Context, records []*models.GradedAnswerRecord) error

	GetByAttemptAndQuestion(ctx context.Context, attemptID, questionID uint) (*models.GradedAnswerRecord, error)
	ListByAttempt(ctx context.Context, attemptID uint, filters GradedAnswerFilters) ([]*models.GradedAnswerRecord, error)
}

func IsNotFoundError(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
