package cache

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SAP-F-2025/grading-service/internal/models"
)

// memoryCache mimics the redis cache's JSON round trip.
type memoryCache struct {
	values map[string][]byte
	ttls   map[string]time.Duration
}

func newMemoryCache() *memoryCache {
	return &memoryCache{values: map[string][]byte{}, ttls: map[string]time.Duration{}}
}

func (m *memoryCache) Set(_ context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.values[key] = data
	m.ttls[key] = ttl
	return nil
}

func (m *memoryCache) Get(_ context.Context, key string, dest interface{}) error {
	data, ok := m.values[key]
	if !ok {
		return ErrCacheMiss
	}
	return json.Unmarshal(data, dest)
}

func (m *memoryCache) Delete(_ context.Context, key string) error {
	delete(m.values, key)
	return nil
}

func (m *memoryCache) DeletePattern(_ context.Context, pattern string) error {
	prefix := strings.TrimSuffix(pattern, "*")
	for k := range m.values {
		if strings.HasPrefix(k, prefix) {
			delete(m.values, k)
		}
	}
	return nil
}

func TestGradedAnswerCache(t *testing.T) {
	ctx := context.Background()
	store := newMemoryCache()
	c := NewGradedAnswerCache(store, time.Hour)

	key := GradedAnswerKey(7, 3, "abc")
	assert.Equal(t, "grading:answer:7:3:abc", key)

	_, err := c.Get(ctx, key)
	assert.ErrorIs(t, err, ErrCacheMiss)

	answer := &models.GradedAnswer{
		IsCorrect:    true,
		PointsEarned: 2,
		FormattedAnswer: models.FormattedAnswer{
			QuestionType:    models.SingleChoice,
			QuestionMarks:   2,
			MarksEarned:     2,
			IsCorrect:       true,
			SelectedOptions: []string{"opt1"},
		},
	}
	require.NoError(t, c.Set(ctx, key, answer))
	assert.Equal(t, time.Hour, store.ttls[key])

	got, err := c.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, answer, got)

	sibling := GradedAnswerKey(7, 4, "abc")
	require.NoError(t, c.Set(ctx, sibling, answer))
	require.NoError(t, c.PurgeQuestion(ctx, 7, 3))
	_, err = c.Get(ctx, key)
	assert.ErrorIs(t, err, ErrCacheMiss)
	_, err = c.Get(ctx, sibling)
	assert.NoError(t, err)

	require.NoError(t, c.Set(ctx, key, answer))
	other := GradedAnswerKey(8, 3, "abc")
	require.NoError(t, c.Set(ctx, other, answer))

	require.NoError(t, c.PurgeAttempt(ctx, 7))
	_, err = c.Get(ctx, key)
	assert.ErrorIs(t, err, ErrCacheMiss)
	_, err = c.Get(ctx, sibling)
	assert.ErrorIs(t, err, ErrCacheMiss)
	_, err = c.Get(ctx, other)
	assert.NoError(t, err)
}
