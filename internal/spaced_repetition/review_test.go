package spaced_repetition

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/quiztube/pkg/models"
)

var reviewNow = time.Date(2024, time.March, 10, 15, 0, 0, 0, time.UTC)

func TestScheduleNextReviewScenario(t *testing.T) {
	sm := NewSM2()
	state := models.NewSchedulingState(reviewNow)

	state, err := sm.ScheduleNextReview(state, QualityCorrectHesitation, reviewNow)
	require.NoError(t, err)
	assert.Equal(t, 1, state.ReviewIntervalDays)
	assert.Equal(t, 1, state.ReviewCount)

	state, err = sm.ScheduleNextReview(state, QualityCorrectHesitation, reviewNow)
	require.NoError(t, err)
	assert.Equal(t, 6, state.ReviewIntervalDays)
	assert.Equal(t, 2, state.ReviewCount)

	state, err = sm.ScheduleNextReview(state, QualityPerfect, reviewNow)
	require.NoError(t, err)
	assert.Greater(t, state.EaseFactor, 2.5)
	assert.Equal(t, int(math.Round(6*state.EaseFactor)), state.ReviewIntervalDays)
	assert.Equal(t, 3, state.ReviewCount)
	assert.Equal(t, models.MasteryMastered, state.MasteryLevel)
}

func TestScheduleNextReviewFailureResetsInterval(t *testing.T) {
	sm := NewSM2()
	for _, prior := range []int{1, 6, 15, 120} {
		state := models.TopicSchedulingState{
			EaseFactor:         2.5,
			ReviewIntervalDays: prior,
			ReviewCount:        4,
			NextReviewDate:     reviewNow,
			MasteryLevel:       models.MasteryFamiliar,
		}

		next, err := sm.ScheduleNextReview(state, QualityIncorrect, reviewNow)
		require.NoError(t, err)
		assert.Equal(t, 1, next.ReviewIntervalDays, "prior=%d", prior)
		assert.Equal(t, 5, next.ReviewCount)
		assert.Equal(t, models.MasteryDeveloping, next.MasteryLevel)
		// ease is updated on failure too
		assert.InDelta(t, CalculateEaseFactor(2.5, QualityIncorrect), next.EaseFactor, 1e-9)
		assert.Equal(t, reviewNow.AddDate(0, 0, 1), next.NextReviewDate)
	}
}

func TestScheduleNextReviewSetsTimestamps(t *testing.T) {
	sm := NewSM2()
	state := models.NewSchedulingState(reviewNow.Add(-48 * time.Hour))

	next, err := sm.ScheduleNextReview(state, QualityPerfect, reviewNow)
	require.NoError(t, err)
	require.NotNil(t, next.LastReviewedAt)
	assert.Equal(t, reviewNow, *next.LastReviewedAt)
	assert.Equal(t, reviewNow.AddDate(0, 0, next.ReviewIntervalDays), next.NextReviewDate)
	assert.Nil(t, state.LastReviewedAt, "input state must not change")
}

func TestScheduleNextReviewMasteryIsClamped(t *testing.T) {
	sm := NewSM2()

	top := models.TopicSchedulingState{EaseFactor: 2.5, ReviewIntervalDays: 30, ReviewCount: 9, MasteryLevel: models.MasteryMastered}
	next, err := sm.ScheduleNextReview(top, QualityPerfect, reviewNow)
	require.NoError(t, err)
	assert.Equal(t, models.MasteryMastered, next.MasteryLevel)

	bottom := models.NewSchedulingState(reviewNow)
	next, err = sm.ScheduleNextReview(bottom, QualityBlackout, reviewNow)
	require.NoError(t, err)
	assert.Equal(t, models.MasteryIntroduced, next.MasteryLevel)
}

func TestScheduleNextReviewValidation(t *testing.T) {
	sm := NewSM2()
	state := models.NewSchedulingState(reviewNow)

	for _, q := range []QualityResponse{-1, 6, 42} {
		_, err := sm.ScheduleNextReview(state, q, reviewNow)
		assert.ErrorIs(t, err, ErrInvalidQuality)
	}

	for _, ef := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		bad := state
		bad.EaseFactor = ef
		_, err := sm.ScheduleNextReview(bad, QualityPerfect, reviewNow)
		assert.ErrorIs(t, err, ErrInvalidEaseFactor)
	}
}

func TestIsDue(t *testing.T) {
	state := models.NewSchedulingState(reviewNow)
	assert.True(t, IsDue(state, reviewNow))
	assert.False(t, IsDue(state, reviewNow.Add(-time.Second)))
}
