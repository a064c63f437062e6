// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package feedback

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/answer-engine/pkg/types"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(types.FeedbackConfig{
		DBPath: filepath.Join(t.TempDir(), "feedback.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSubmitAndList(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	fb := types.Feedback{
		RequestID:    "req-1",
		UserQuery:    "What is the role of BRCA1 in DNA repair?",
		AIResponse:   "BRCA1 participates in homologous recombination [1].",
		QuestionType: "research",
		Metrics: types.FeedbackMetrics{
			Clarity:          5,
			Interpretation:   4,
			Relevance:        5,
			Depth:            3,
			CitationsQuality: 4,
			Reasoning:        4,
		},
		Topics:       []string{"oncology", "genetics"},
		StrengthTags: []string{"well_cited"},
		WeaknessTags: []string{"too_brief"},
	}

	id, err := s.Submit(ctx, fb)
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	got, err := s.List(ctx, 10)
	require.NoError(t, err)
	require.Len(t, got, 1)

	assert.Equal(t, id, got[0].FeedbackID)
	assert.Equal(t, "req-1", got[0].RequestID)
	assert.Equal(t, fb.UserQuery, got[0].UserQuery)
	assert.Equal(t, fb.Metrics, got[0].Metrics)
	assert.Equal(t, []string{"oncology", "genetics"}, got[0].Topics)
	assert.Equal(t, []string{"well_cited"}, got[0].StrengthTags)
	assert.Equal(t, []string{"too_brief"}, got[0].WeaknessTags)
	assert.False(t, got[0].CreatedAt.IsZero())
}

func TestSubmitRequiresQueryAndResponse(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Submit(context.Background(), types.Feedback{AIResponse: "answer"})
	assert.Error(t, err)

	_, err = s.Submit(context.Background(), types.Feedback{UserQuery: "query"})
	assert.Error(t, err)
}

func TestSubmitRejectsOutOfRangeMetric(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Submit(context.Background(), types.Feedback{
		UserQuery:  "q",
		AIResponse: "a",
		Metrics:    types.FeedbackMetrics{Clarity: 6},
	})
	assert.ErrorContains(t, err, "clarity")
}

func TestListNewestFirstAndLimit(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		_, err := s.Submit(ctx, types.Feedback{
			UserQuery:  "q",
			AIResponse: "a",
			RequestID:  string(rune('a' + i)),
			CreatedAt:  base.Add(time.Duration(i) * time.Minute),
		})
		require.NoError(t, err)
	}

	got, err := s.List(ctx, 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "c", got[0].RequestID)
	assert.Equal(t, "b", got[1].RequestID)
}

func TestSubmitKeepsCallerID(t *testing.T) {
	s := newTestStore(t)

	id, err := s.Submit(context.Background(), types.Feedback{
		FeedbackID: "fixed-id",
		UserQuery:  "q",
		AIResponse: "a",
	})
	require.NoError(t, err)
	assert.Equal(t, "fixed-id", id)
}
