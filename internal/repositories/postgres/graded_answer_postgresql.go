package postgres

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/SAP-F-2025/grading-service/internal/models"
	"github.com/SAP-F-2025/grading-service/internal/repositories"
)

const saveBatchSize = 100

type GradedAnswerPostgreSQL struct {
	db *gorm.DB
}

func NewGradedAnswerPostgreSQL(db *gorm.DB) repositories.GradedAnswerRepository {
	return &GradedAnswerPostgreSQL{db: db}
}

// upsert replaces the graded columns of an existing (attempt, question) row.
var upsert = clause.OnConflict{
	Columns: []clause.Column{{Name: "attempt_id"}, {Name: "question_id"}},
	DoUpdates: clause.AssignmentColumns([]string{
		"question_type", "status", "is_correct", "points_earned",
		"question_marks", "formatted_answer", "fingerprint", "graded_at",
	}),
}

func (g GradedAnswerPostgreSQL) Save(ctx context.Context, record *models.GradedAnswerRecord) error {
	return g.db.WithContext(ctx).Clauses(upsert).Create(record).Error
}

func (g GradedAnswerPostgreSQL) SaveBatch(ctx context.Context, records []*models.GradedAnswerRecord) error {
	if len(records) == 0 {
		return nil
	}
	return g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Clauses(upsert).CreateInBatches(records, saveBatchSize).Error
	})
}

func (g GradedAnswerPostgreSQL) GetByAttemptAndQuestion(ctx context.Context, attemptID, questionID uint) (*models.GradedAnswerRecord, error) {
	var record models.GradedAnswerRecord
	if err := g.db.WithContext(ctx).
		Where("attempt_id = ? AND question_id = ?", attemptID, questionID).
		First(&record).Error; err != nil {
		return nil, err
	}
	return &record, nil
}

func (g GradedAnswerPostgreSQL) ListByAttempt(ctx context.Context, attemptID uint, filters repositories.GradedAnswerFilters) ([]*models.GradedAnswerRecord, error) {
	var records []*models.GradedAnswerRecord

	query := g.db.WithContext(ctx).Where("attempt_id = ?", attemptID)
	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}
	if filters.QuestionType != nil {
		query = query.Where("question_type = ?", *filters.QuestionType)
	}
	if filters.Limit > 0 {
		query = query.Limit(filters.Limit)
	}
	if filters.Offset > 0 {
		query = query.Offset(filters.Offset)
	}

	if err := query.Order("question_id ASC").Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}
