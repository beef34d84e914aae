package spaced_repetition

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/example/quiztube/pkg/models"
)

var (
	// ErrInvalidQuality is returned for a quality outside [0, 5]
	ErrInvalidQuality = errors.New("quality must be between 0 and 5")
	// ErrInvalidEaseFactor is returned when the stored ease factor is not a finite number
	ErrInvalidEaseFactor = errors.New("ease factor must be a finite number")
)

// SM2 schedules topic reviews with the SuperMemo-2 algorithm.
//
// Every review applies the ease formula, including failed ones. A failed
// review (quality below PassThreshold) resets the interval to one day and
// demotes mastery by one level; a passed review advances the interval along
// the 1, 6, interval*EF ladder and promotes mastery by one level.
type SM2 struct {
	// Answers at or above the threshold count as a pass
	PassThreshold QualityResponse
}

// NewSM2 creates a new SM2 instance with the default pass threshold
func NewSM2() *SM2 {
	return &SM2{
		PassThreshold: QualityCorrectDifficult,
	}
}

// ScheduleNextReview produces the next scheduling state of a topic after one review.
// The input state is not modified.
func (sm *SM2) ScheduleNextReview(state models.TopicSchedulingState, quality QualityResponse, now time.Time) (models.TopicSchedulingState, error) {
	if !quality.Valid() {
		return state, fmt.Errorf("%w: got %d", ErrInvalidQuality, quality)
	}
	if math.IsNaN(state.EaseFactor) || math.IsInf(state.EaseFactor, 0) {
		return state, ErrInvalidEaseFactor
	}

	next := state
	next.EaseFactor = CalculateEaseFactor(state.EaseFactor, quality)

	if quality >= sm.PassThreshold {
		next.ReviewIntervalDays = CalculateNextInterval(state.ReviewCount+1, next.EaseFactor, state.ReviewIntervalDays)
		next.MasteryLevel = state.MasteryLevel.Promote()
	} else {
		next.ReviewIntervalDays = 1
		next.MasteryLevel = state.MasteryLevel.Demote()
	}

	reviewedAt := now
	next.ReviewCount = state.ReviewCount + 1
	next.LastReviewedAt = &reviewedAt
	next.NextReviewDate = now.AddDate(0, 0, next.ReviewIntervalDays)

	return next, nil
}

// IsDue reports whether the topic should be reviewed at now
func IsDue(state models.TopicSchedulingState, now time.Time) bool {
	return !state.NextReviewDate.After(now)
}
