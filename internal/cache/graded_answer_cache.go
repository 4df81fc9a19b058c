package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/SAP-F-2025/grading-service/internal/models"
)

const gradedAnswerPrefix = "grading:answer:"

// GradedAnswerCache remembers which (attempt, question, input) triples were
// already graded and persisted. Only the input currently stored for a question
// may be cached: callers purge the question before caching a replacement.
type GradedAnswerCache struct {
	cache CacheService
	ttl   time.Duration
}

func NewGradedAnswerCache(cache CacheService, ttl time.Duration) *GradedAnswerCache {
	return &GradedAnswerCache{cache: cache, ttl: ttl}
}

func GradedAnswerKey(attemptID, questionID uint, fingerprint string) string {
	return fmt.Sprintf("%s%d:%d:%s", gradedAnswerPrefix, attemptID, questionID, fingerprint)
}

// Get returns ErrCacheMiss when nothing is stored under the key.
func (c *GradedAnswerCache) Get(ctx context.Context, key string) (*models.GradedAnswer, error) {
	var answer models.GradedAnswer
	if err := c.cache.Get(ctx, key, &answer); err != nil {
		return nil, err
	}
	return &answer, nil
}

func (c *GradedAnswerCache) Set(ctx context.Context, key string, answer *models.GradedAnswer) error {
	return c.cache.Set(ctx, key, answer, c.ttl)
}

// PurgeQuestion drops every cached result of one question in an attempt.
func (c *GradedAnswerCache) PurgeQuestion(ctx context.Context, attemptID, questionID uint) error {
	return c.cache.DeletePattern(ctx, fmt.Sprintf("%s%d:%d:*", gradedAnswerPrefix, attemptID, questionID))
}

// PurgeAttempt drops every cached result of one attempt.
func (c *GradedAnswerCache) PurgeAttempt(ctx context.Context, attemptID uint) error {
	return c.cache.DeletePattern(ctx, fmt.Sprintf("%s%d:*", gradedAnswerPrefix, attemptID))
}
