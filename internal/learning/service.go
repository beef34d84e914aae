// Package learning exposes the review scheduling operations to the CLI and
// the notification batch. It owns no state besides the injected store.
package learning

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/example/quiztube/internal/apperr"
	"github.com/example/quiztube/internal/logger"
	"github.com/example/quiztube/internal/notification"
	sr "github.com/example/quiztube/internal/spaced_repetition"
	"github.com/example/quiztube/pkg/models"
)

// Store is the storage the service needs
type Store interface {
	QuestionLookup

	GetTopic(ctx context.Context, topicID int64) (*models.Topic, error)
	UpdateScheduling(ctx context.Context, topicID int64, fn func(models.TopicSchedulingState) (models.TopicSchedulingState, error)) (models.TopicSchedulingState, error)
	GetTopicsForUser(ctx context.Context, userID int64) ([]models.TopicWithStats, error)

	GetUser(ctx context.Context, userID int64) (*models.User, error)
	GetUserPreferences(ctx context.Context, userID int64) (models.UserPreferences, error)

	GetQuestion(ctx context.Context, questionID int64) (*models.Question, error)
	RecordAnswer(ctx context.Context, questionID int64, answer *string, isCorrect bool) error

	GetEmailPrompt(ctx context.Context, promptID int64) (*models.EmailPrompt, error)
	RecordPromptReply(ctx context.Context, promptID int64, response string, isCorrect bool, repliedAt time.Time) error
}

// Service implements review submission, prioritization and prompt selection
type Service struct {
	store    Store
	sm2      *sr.SM2
	selector *PromptSelector
	now      func() time.Time
	log      *logger.Logger
}

// Option customizes a Service
type Option func(*Service)

// WithClock replaces time.Now
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithPromptCandidates sets how many top topics the prompt selector inspects
func WithPromptCandidates(n int) Option {
	return func(s *Service) { s.selector = NewPromptSelector(s.store, n) }
}

func NewService(store Store, log *logger.Logger, opts ...Option) *Service {
	s := &Service{
		store:    store,
		sm2:      sr.NewSM2(),
		selector: NewPromptSelector(store, DefaultPromptCandidates),
		now:      time.Now,
		log:      log,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Now returns the service clock
func (s *Service) Now() time.Time {
	return s.now()
}

// ReviewResult is the outcome of a review submission
type ReviewResult struct {
	TopicID int64                       `json:"topic_id"`
	Quality sr.QualityResponse          `json:"quality"`
	State   models.TopicSchedulingState `json:"state"`
}

// ScheduleReview applies one review of the given quality to a topic and
// persists the new scheduling state atomically.
func (s *Service) ScheduleReview(ctx context.Context, topicID int64, quality int) (models.TopicSchedulingState, error) {
	q := sr.QualityResponse(quality)
	if !q.Valid() {
		return models.TopicSchedulingState{}, apperr.BadRequest("invalid_quality", fmt.Errorf("%w: got %d", sr.ErrInvalidQuality, quality))
	}

	now := s.now()
	state, err := s.store.UpdateScheduling(ctx, topicID, func(cur models.TopicSchedulingState) (models.TopicSchedulingState, error) {
		return s.sm2.ScheduleNextReview(cur, q, now)
	})
	if err != nil {
		return models.TopicSchedulingState{}, classify(err, "topic_not_found")
	}

	s.log.Info("review scheduled",
		"topic_id", topicID,
		"quality", quality,
		"ease_factor", state.EaseFactor,
		"interval_days", state.ReviewIntervalDays,
		"mastery", state.MasteryLevel,
		"next_review", state.NextReviewDate,
	)
	return state, nil
}

// SubmitTopicReview records answers to questions of one topic and schedules
// the topic with a quality derived from the share of correct answers.
func (s *Service) SubmitTopicReview(ctx context.Context, topicID int64, answers map[int64]bool) (ReviewResult, error) {
	if len(answers) == 0 {
		return ReviewResult{}, apperr.BadRequest("no_answers", errors.New("at least one answer is required"))
	}

	ids := make([]int64, 0, len(answers))
	for id := range answers {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	// every question is checked before any answer is written
	for _, id := range ids {
		question, err := s.store.GetQuestion(ctx, id)
		if err != nil {
			return ReviewResult{}, classify(err, "question_not_found")
		}
		if question.TopicID != topicID {
			return ReviewResult{}, apperr.BadRequest("question_topic_mismatch",
				fmt.Errorf("question %d belongs to topic %d, not %d", id, question.TopicID, topicID))
		}
	}

	correct := 0
	for _, id := range ids {
		if err := s.store.RecordAnswer(ctx, id, nil, answers[id]); err != nil {
			return ReviewResult{}, classify(err, "question_not_found")
		}
		if answers[id] {
			correct++
		}
	}

	quality := sr.PerformanceToQuality(float64(correct) / float64(len(ids)))
	state, err := s.ScheduleReview(ctx, topicID, int(quality))
	if err != nil {
		return ReviewResult{}, err
	}
	return ReviewResult{TopicID: topicID, Quality: quality, State: state}, nil
}

// GetPrioritizedTopics ranks the user's topics by urgency. A limit of zero
// or less falls back to the user's daily review cap.
func (s *Service) GetPrioritizedTopics(ctx context.Context, userID int64, limit int) ([]sr.PrioritizedTopic, error) {
	if _, err := s.store.GetUser(ctx, userID); err != nil {
		return nil, classify(err, "user_not_found")
	}
	if limit <= 0 {
		prefs, err := s.store.GetUserPreferences(ctx, userID)
		if err != nil {
			return nil, classify(err, "preferences_not_found")
		}
		limit = prefs.MaxDailyReviews
	}

	topics, err := s.store.GetTopicsForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return sr.PrioritizeTopics(topics, limit, s.now()), nil
}

// IsGoodTimeToNotify evaluates the notification gate for a user at the current time
func (s *Service) IsGoodTimeToNotify(ctx context.Context, userID int64) (notification.OptimalSendTime, error) {
	if _, err := s.store.GetUser(ctx, userID); err != nil {
		return notification.OptimalSendTime{}, classify(err, "user_not_found")
	}
	prefs, err := s.store.GetUserPreferences(ctx, userID)
	if err != nil {
		return notification.OptimalSendTime{}, classify(err, "preferences_not_found")
	}

	decision, err := notification.IsGoodTimeToNotify(prefs, s.now())
	if err != nil {
		return notification.OptimalSendTime{}, apperr.BadRequest("invalid_preferences", err)
	}
	return decision, nil
}

// GetNextTopicForPrompt chooses the question for the user's next prompt, nil if nothing can be sent
func (s *Service) GetNextTopicForPrompt(ctx context.Context, userID int64) (*NextPrompt, error) {
	if _, err := s.store.GetUser(ctx, userID); err != nil {
		return nil, classify(err, "user_not_found")
	}
	topics, err := s.store.GetTopicsForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.selector.Select(ctx, topics, s.now())
}

// RecordPromptReply stores the learner's reply to a prompt and reviews its
// topic: a correct reply counts as a perfect recall, a wrong one as a near blackout.
func (s *Service) RecordPromptReply(ctx context.Context, promptID int64, response string, isCorrect bool) (ReviewResult, error) {
	prompt, err := s.store.GetEmailPrompt(ctx, promptID)
	if err != nil {
		return ReviewResult{}, classify(err, "prompt_not_found")
	}
	if prompt.RepliedAt != nil {
		return ReviewResult{}, alreadyAnswered(promptID)
	}

	// the guarded update decides which of two concurrent replies wins
	if err := s.store.RecordPromptReply(ctx, promptID, response, isCorrect, s.now()); err != nil {
		if errors.Is(err, models.ErrPromptAnswered) {
			return ReviewResult{}, alreadyAnswered(promptID)
		}
		return ReviewResult{}, classify(err, "prompt_not_found")
	}
	if prompt.QuestionID != nil {
		if err := s.store.RecordAnswer(ctx, *prompt.QuestionID, &response, isCorrect); err != nil && !errors.Is(err, apperr.ErrNotFound) {
			return ReviewResult{}, err
		}
	}

	quality := sr.QualityIncorrect
	if isCorrect {
		quality = sr.QualityPerfect
	}
	state, err := s.ScheduleReview(ctx, prompt.TopicID, int(quality))
	if err != nil {
		return ReviewResult{}, err
	}
	return ReviewResult{TopicID: prompt.TopicID, Quality: quality, State: state}, nil
}

func alreadyAnswered(promptID int64) error {
	return apperr.BadRequest("prompt_already_answered", fmt.Errorf("prompt %d: %w", promptID, models.ErrPromptAnswered))
}

// classify maps storage and validation errors onto apperr statuses
func classify(err error, notFoundCode string) error {
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		return apperr.NotFound(notFoundCode, err)
	case errors.Is(err, sr.ErrInvalidQuality):
		return apperr.BadRequest("invalid_quality", err)
	case errors.Is(err, sr.ErrInvalidEaseFactor):
		return apperr.BadRequest("invalid_ease_factor", err)
	}
	return err
}
