package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
	"gorm.io/datatypes"

	"github.com/SAP-F-2025/grading-service/internal/cache"
	"github.com/SAP-F-2025/grading-service/internal/events"
	"github.com/SAP-F-2025/grading-service/internal/grading"
	"github.com/SAP-F-2025/grading-service/internal/models"
	"github.com/SAP-F-2025/grading-service/internal/repositories"
	"github.com/SAP-F-2025/grading-service/internal/validator"
)

// MaxAttemptAnswers bounds the answers graded in one attempt request.
const MaxAttemptAnswers = 500

// GradingService grades answers with the engine and records the results.
type GradingService interface {
	GradeAnswer(ctx context.Context, req *GradeAnswerRequest) (*GradingResult, error)
	GradeAttempt(ctx context.Context, req *GradeAttemptRequest) (*AttemptGradingResult, error)
	CalculateScore(ctx context.Context, questionType string, content, answer json.RawMessage, marks float64) (*models.GradedAnswer, error)

	GetGradedAnswer(ctx context.Context, attemptID, questionID uint) (*GradingResult, error)
	ListAttemptAnswers(ctx context.Context, attemptID uint, filters repositories.GradedAnswerFilters) (*AttemptGradingResult, error)
}

// ===== REQUEST / RESPONSE TYPES =====

type AnswerInput struct {
	QuestionID    uint                `json:"question_id" validate:"required"`
	QuestionType  string              `json:"question_type" validate:"question_type"`
	QuestionData  models.QuestionData `json:"question_data"`
	QuestionText  string              `json:"question_text,omitempty"`
	StudentAnswer interface{}         `json:"student_answer"`
	TotalMarks    float64             `json:"total_marks" validate:"finite_marks"`
}

func (a *AnswerInput) gradeInput() models.GradeInput {
	return models.GradeInput{
		QuestionType:  models.QuestionType(strings.TrimSpace(a.QuestionType)),
		QuestionData:  a.QuestionData,
		StudentAnswer: a.StudentAnswer,
		TotalMarks:    a.TotalMarks,
		QuestionText:  a.QuestionText,
	}
}

type GradeAnswerRequest struct {
	AttemptID uint `json:"attempt_id" validate:"required"`
	AnswerInput
}

type GradeAttemptRequest struct {
	AttemptID uint          `json:"attempt_id" validate:"required"`
	Answers   []AnswerInput `json:"answers" validate:"required,min=1,unique=QuestionID,dive"`
}

type GradingResult struct {
	AttemptID  uint                 `json:"attempt_id"`
	QuestionID uint                 `json:"question_id"`
	Status     models.GradingStatus `json:"status"`
	GradedAt   time.Time            `json:"graded_at"`
	Cached     bool                 `json:"cached"`
	models.GradedAnswer
}

type AttemptGradingResult struct {
	AttemptID     uint             `json:"attempt_id"`
	Score         float64          `json:"score"`
	MaxScore      float64          `json:"max_score"`
	Percentage    float64          `json:"percentage"`
	PendingReview int              `json:"pending_review"`
	Failed        int              `json:"failed"`
	Answers       []*GradingResult `json:"answers"`
}

// ===== SERVICE =====

type gradingService struct {
	repo      repositories.GradedAnswerRepository
	cache     *cache.GradedAnswerCache
	publisher events.EventPublisher
	logger    *slog.Logger
	log       *ServiceLogger
	validator *validator.Validator
	workers   int
}

// NewGradingService wires the grading service. cache may be nil.
func NewGradingService(
	repo repositories.GradedAnswerRepository,
	answerCache *cache.GradedAnswerCache,
	publisher events.EventPublisher,
	logger *slog.Logger,
	validator *validator.Validator,
	workers int,
) GradingService {
	if workers <= 0 {
		workers = 1
	}
	return &gradingService{
		repo:      repo,
		cache:     answerCache,
		publisher: publisher,
		logger:    logger,
		log:       NewServiceLogger(logger, LogConfig{Service: "grading-service", Component: "grading"}),
		validator: validator,
		workers:   workers,
	}
}

func (s *gradingService) GradeAnswer(ctx context.Context, req *GradeAnswerRequest) (result *GradingResult, err error) {
	op := s.log.WithOperation(ctx, "grade_answer")
	defer func() { op.LogResult(req.AttemptID, "graded_answer", err) }()

	if err := s.validator.ValidateStruct(req); err != nil {
		return nil, err
	}

	in := req.gradeInput()
	fingerprint, err := Fingerprint(in)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}
	key := cache.GradedAnswerKey(req.AttemptID, req.QuestionID, fingerprint)

	// A hit means this exact submission was already graded and stored.
	if cached := s.cachedAnswer(ctx, key); cached != nil {
		return &GradingResult{
			AttemptID:    req.AttemptID,
			QuestionID:   req.QuestionID,
			Status:       models.StatusFor(cached),
			Cached:       true,
			GradedAnswer: *cached,
		}, nil
	}

	graded := grading.Grade(in)
	record, err := newRecord(req.AttemptID, req.QuestionID, fingerprint, &graded, time.Now().UTC())
	if err != nil {
		return nil, err
	}

	if err := s.repo.Save(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to save graded answer: %w", err)
	}

	s.forgetCached(ctx, "question", func(c *cache.GradedAnswerCache) error {
		return c.PurgeQuestion(ctx, req.AttemptID, req.QuestionID)
	})
	s.cacheAnswer(ctx, key, &graded)
	s.publishAnswerEvents(ctx, record, &graded)

	return resultFor(record, graded), nil
}

func (s *gradingService) GradeAttempt(ctx context.Context, req *GradeAttemptRequest) (result *AttemptGradingResult, err error) {
	op := s.log.WithOperation(ctx, "grade_attempt")
	defer func() { op.LogResult(req.AttemptID, "attempt", err) }()

	if len(req.Answers) > MaxAttemptAnswers {
		return nil, NewBusinessRuleError("max_attempt_answers",
			fmt.Sprintf("an attempt can grade at most %d answers", MaxAttemptAnswers),
			map[string]interface{}{"answers": len(req.Answers)})
	}
	if err := s.validator.ValidateStruct(req); err != nil {
		return nil, err
	}

	gradedAt := time.Now().UTC()
	records := make([]*models.GradedAnswerRecord, len(req.Answers))
	graded := make([]models.GradedAnswer, len(req.Answers))
	fingerprints := make([]string, len(req.Answers))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i := range req.Answers {
		i := i
		answer := &req.Answers[i]
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			in := answer.gradeInput()
			fingerprint, err := Fingerprint(in)
			if err != nil {
				return fmt.Errorf("%w: question %d: %v", ErrInternalError, answer.QuestionID, err)
			}
			graded[i] = grading.Grade(in)
			record, err := newRecord(req.AttemptID, answer.QuestionID, fingerprint, &graded[i], gradedAt)
			if err != nil {
				return err
			}
			records[i] = record
			fingerprints[i] = fingerprint
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if err := s.repo.SaveBatch(ctx, records); err != nil {
		return nil, fmt.Errorf("failed to save graded attempt: %w", err)
	}

	s.forgetCached(ctx, "attempt", func(c *cache.GradedAnswerCache) error {
		return c.PurgeAttempt(ctx, req.AttemptID)
	})
	results := make([]*GradingResult, len(records))
	for i, record := range records {
		s.cacheAnswer(ctx, cache.GradedAnswerKey(req.AttemptID, record.QuestionID, fingerprints[i]), &graded[i])
		s.publishAnswerEvents(ctx, record, &graded[i])
		results[i] = resultFor(record, graded[i])
	}

	summary := summarize(req.AttemptID, results)
	s.publish(ctx, events.NewAttemptGradedEvent(attemptGradedEvent(summary, gradedAt)))

	return summary, nil
}

func (s *gradingService) CalculateScore(ctx context.Context, questionType string, content, answer json.RawMessage, marks float64) (*models.GradedAnswer, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(questionType) == "" {
		return nil, ErrInvalidQuestionType
	}
	if math.IsNaN(marks) || math.IsInf(marks, 0) || marks < 0 {
		return nil, ErrInvalidMarks
	}

	graded := grading.GradeJSON(strings.TrimSpace(questionType), content, answer, marks, "")
	return &graded, nil
}

func (s *gradingService) GetGradedAnswer(ctx context.Context, attemptID, questionID uint) (*GradingResult, error) {
	record, err := s.repo.GetByAttemptAndQuestion(ctx, attemptID, questionID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrGradedAnswerNotFound
		}
		return nil, fmt.Errorf("failed to get graded answer: %w", err)
	}
	return recordResult(record)
}

func (s *gradingService) ListAttemptAnswers(ctx context.Context, attemptID uint, filters repositories.GradedAnswerFilters) (*AttemptGradingResult, error) {
	records, err := s.repo.ListByAttempt(ctx, attemptID, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list graded answers: %w", err)
	}

	results := make([]*GradingResult, 0, len(records))
	for _, record := range records {
		result, err := recordResult(record)
		if err != nil {
			return nil, err
		}
		results = append(results, result)
	}
	return summarize(attemptID, results), nil
}

// ===== HELPERS =====

// Fingerprint identifies a grading input. encoding/json sorts map keys, so equal
// inputs always hash equally.
func Fingerprint(in models.GradeInput) (string, error) {
	data, err := json.Marshal(in)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

func newRecord(attemptID, questionID uint, fingerprint string, graded *models.GradedAnswer, gradedAt time.Time) (*models.GradedAnswerRecord, error) {
	formatted, err := json.Marshal(graded.FormattedAnswer)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to encode formatted answer: %v", ErrInternalError, err)
	}
	return &models.GradedAnswerRecord{
		AttemptID:       attemptID,
		QuestionID:      questionID,
		QuestionType:    graded.FormattedAnswer.QuestionType,
		Status:          models.StatusFor(graded),
		IsCorrect:       graded.IsCorrect,
		PointsEarned:    graded.PointsEarned,
		QuestionMarks:   graded.FormattedAnswer.QuestionMarks,
		FormattedAnswer: datatypes.JSON(formatted),
		Fingerprint:     fingerprint,
		GradedAt:        gradedAt,
	}, nil
}

func resultFor(record *models.GradedAnswerRecord, graded models.GradedAnswer) *GradingResult {
	return &GradingResult{
		AttemptID:    record.AttemptID,
		QuestionID:   record.QuestionID,
		Status:       record.Status,
		GradedAt:     record.GradedAt,
		GradedAnswer: graded,
	}
}

func recordResult(record *models.GradedAnswerRecord) (*GradingResult, error) {
	var formatted models.FormattedAnswer
	if len(record.FormattedAnswer) > 0 {
		if err := json.Unmarshal(record.FormattedAnswer, &formatted); err != nil {
			return nil, fmt.Errorf("%w: stored formatted answer for question %d is unreadable: %v", ErrInternalError, record.QuestionID, err)
		}
	}
	return resultFor(record, models.GradedAnswer{
		IsCorrect:       record.IsCorrect,
		PointsEarned:    record.PointsEarned,
		FormattedAnswer: formatted,
	}), nil
}

func summarize(attemptID uint, results []*GradingResult) *AttemptGradingResult {
	summary := &AttemptGradingResult{AttemptID: attemptID, Answers: results}
	for _, r := range results {
		summary.Score += r.PointsEarned
		summary.MaxScore += r.FormattedAnswer.QuestionMarks
		switch r.Status {
		case models.GradingStatusPendingReview:
			summary.PendingReview++
		case models.GradingStatusFailed:
			summary.Failed++
		}
	}
	if summary.MaxScore > 0 {
		summary.Percentage = math.Round(summary.Score/summary.MaxScore*10000) / 100
	}
	return summary
}

func attemptGradedEvent(summary *AttemptGradingResult, gradedAt time.Time) events.AttemptGradedEvent {
	data := events.AttemptGradedEvent{
		AttemptID:     summary.AttemptID,
		GradedAt:      gradedAt,
		Score:         summary.Score,
		MaxScore:      summary.MaxScore,
		Percentage:    summary.Percentage,
		AnswerCount:   len(summary.Answers),
		PendingReview: summary.PendingReview,
		FailedCount:   summary.Failed,
	}
	for _, r := range summary.Answers {
		if r.Status == models.GradingStatusPendingReview {
			data.PendingReviewIDs = append(data.PendingReviewIDs, r.QuestionID)
		}
	}
	return data
}

func (s *gradingService) cachedAnswer(ctx context.Context, key string) *models.GradedAnswer {
	if s.cache == nil {
		return nil
	}
	answer, err := s.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, cache.ErrCacheMiss) {
			s.logger.Warn("Graded answer cache lookup failed", "key", key, "error", err)
		}
		return nil
	}
	return answer
}

// forgetCached drops entries whose rows a save just replaced. A failed purge
// leaves the old entries to expire with their TTL.
func (s *gradingService) forgetCached(ctx context.Context, scope string, purge func(*cache.GradedAnswerCache) error) {
	if s.cache == nil {
		return
	}
	if err := purge(s.cache); err != nil {
		s.logger.Warn("Failed to purge graded answer cache", "scope", scope, "error", err)
	}
}

func (s *gradingService) cacheAnswer(ctx context.Context, key string, answer *models.GradedAnswer) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, key, answer); err != nil {
		s.logger.Warn("Failed to cache graded answer", "key", key, "error", err)
	}
}

func (s *gradingService) publishAnswerEvents(ctx context.Context, record *models.GradedAnswerRecord, graded *models.GradedAnswer) {
	s.publish(ctx, events.NewAnswerGradedEvent(record))
	if graded.NeedsReview() {
		s.publish(ctx, events.NewManualGradingRequiredEvent(record))
	}
}

// publish never fails the caller; a lost event is logged.
func (s *gradingService) publish(ctx context.Context, event *events.GradingEvent) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishGradingEvent(ctx, event); err != nil {
		s.logger.Error("Failed to publish grading event",
			"event_id", event.ID,
			"event_type", event.Type,
			"error", err)
	}
}
