package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/go-co-op/gocron"
	"golang.org/x/sync/errgroup"

	"github.com/example/quiztube/internal/learning"
	"github.com/example/quiztube/internal/logger"
	"github.com/example/quiztube/internal/notification"
	"github.com/example/quiztube/pkg/models"
)

// Defaults for the notification batch
const (
	DefaultInterval    = time.Hour
	DefaultConcurrency = 4
	DefaultUserTimeout = 30 * time.Second
	DefaultJobTimeout  = 10 * time.Minute

	// WeeklyWindow is the period the per-user prompt cap applies to
	WeeklyWindow = 7 * 24 * time.Hour
)

// Skip reasons reported in Outcome
const (
	ReasonPromptsDisabled = "prompts disabled"
	ReasonWeeklyLimit     = "weekly prompt limit reached"
	ReasonNothingToSend   = "no topic with a question"
)

// Notifier delivers prompts to learners
type Notifier interface {
	// ChannelFor names the channel SendPrompt will use for user
	ChannelFor(user models.User) string
	SendPrompt(ctx context.Context, user models.User, msg PromptMessage) error
}

// PromptMessage is what a notifier needs to render a prompt
type PromptMessage struct {
	PromptID     int64
	TopicName    string
	QuestionText string
}

// Store is the storage the batch needs
type Store interface {
	GetUser(ctx context.Context, userID int64) (*models.User, error)
	ListNotifiableUsers(ctx context.Context) ([]models.User, error)
	GetUserPreferences(ctx context.Context, userID int64) (models.UserPreferences, error)
	CountPromptsSentSince(ctx context.Context, userID int64, since time.Time) (int, error)
	CreateEmailPrompt(ctx context.Context, prompt *models.EmailPrompt) error
	DeleteEmailPrompt(ctx context.Context, promptID int64) error
}

// Learning answers the two questions a batch asks per user. Its clock is
// the one the whole batch runs on.
type Learning interface {
	Now() time.Time
	IsGoodTimeToNotify(ctx context.Context, userID int64) (notification.OptimalSendTime, error)
	GetNextTopicForPrompt(ctx context.Context, userID int64) (*learning.NextPrompt, error)
}

// Options tune the batch
type Options struct {
	Interval    time.Duration
	Concurrency int
	UserTimeout time.Duration
	JobTimeout  time.Duration
}

func (o *Options) setDefaults() {
	if o.Interval <= 0 {
		o.Interval = DefaultInterval
	}
	if o.Concurrency <= 0 {
		o.Concurrency = DefaultConcurrency
	}
	if o.UserTimeout <= 0 {
		o.UserTimeout = DefaultUserTimeout
	}
	if o.JobTimeout <= 0 {
		o.JobTimeout = DefaultJobTimeout
	}
}

// Status of one user in a batch
type Status string

const (
	StatusSent    Status = "sent"
	StatusSkipped Status = "skipped"
	StatusFailed  Status = "failed"
)

// Outcome describes what happened to one user
type Outcome struct {
	UserID   int64  `json:"user_id"`
	Status   Status `json:"status"`
	Reason   string `json:"reason,omitempty"`
	PromptID int64  `json:"prompt_id,omitempty"`
}

// BatchResult counts the outcomes of one batch
type BatchResult struct {
	Processed int `json:"processed"`
	Sent      int `json:"sent"`
	Skipped   int `json:"skipped"`
	Failed    int `json:"failed"`
}

// Scheduler manages the periodic notification batch
type Scheduler struct {
	scheduler *gocron.Scheduler
	store     Store
	learning  Learning
	notifier  Notifier
	log       *logger.Logger
	opts      Options
}

// New creates a new scheduler instance
func New(store Store, svc Learning, notifier Notifier, log *logger.Logger, opts Options) *Scheduler {
	opts.setDefaults()
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		store:     store,
		learning:  svc,
		notifier:  notifier,
		log:       log,
		opts:      opts,
	}
}

// Start schedules the batch every Interval and runs the scheduler in the background.
// A batch still running when the next tick fires is not started twice.
func (s *Scheduler) Start() error {
	s.scheduler.SingletonModeAll()
	if _, err := s.scheduler.Every(s.opts.Interval).Do(s.runScheduled); err != nil {
		return fmt.Errorf("failed to schedule notification batch: %w", err)
	}
	s.scheduler.StartAsync()
	s.log.Info("notification scheduler started", "interval", s.opts.Interval.String())
	return nil
}

// Stop terminates all scheduled tasks
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
	s.log.Info("notification scheduler stopped")
}

func (s *Scheduler) runScheduled() {
	result, err := s.RunOnce(context.Background())
	if err != nil {
		s.log.Error("notification batch failed", "error", err)
		return
	}
	s.log.Info("notification batch finished",
		"processed", result.Processed,
		"sent", result.Sent,
		"skipped", result.Skipped,
		"failed", result.Failed,
	)
}

// RunOnce processes every notifiable user once. Users are handled in parallel,
// each under its own timeout; a failing user is logged and counted and does
// not stop the others. Only failing to list users is returned as an error.
func (s *Scheduler) RunOnce(ctx context.Context) (BatchResult, error) {
	jobCtx, cancel := context.WithTimeout(ctx, s.opts.JobTimeout)
	defer cancel()

	users, err := s.store.ListNotifiableUsers(jobCtx)
	if err != nil {
		return BatchResult{}, fmt.Errorf("failed to list users: %w", err)
	}

	var sent, skipped, failed atomic.Int64
	var g errgroup.Group
	g.SetLimit(s.opts.Concurrency)

	for _, user := range users {
		user := user
		g.Go(func() error {
			outcome := s.processWithTimeout(jobCtx, user)
			switch outcome.Status {
			case StatusSent:
				sent.Add(1)
			case StatusSkipped:
				skipped.Add(1)
			default:
				failed.Add(1)
			}
			return nil
		})
	}
	_ = g.Wait()

	return BatchResult{
		Processed: len(users),
		Sent:      int(sent.Load()),
		Skipped:   int(skipped.Load()),
		Failed:    int(failed.Load()),
	}, nil
}

// RunForUser processes a single user immediately
func (s *Scheduler) RunForUser(ctx context.Context, userID int64) (Outcome, error) {
	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return Outcome{UserID: userID, Status: StatusFailed, Reason: err.Error()}, err
	}
	return s.processUser(ctx, *user)
}

func (s *Scheduler) processWithTimeout(ctx context.Context, user models.User) (outcome Outcome) {
	userCtx, cancel := context.WithTimeout(ctx, s.opts.UserTimeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			s.log.Error("panic while processing user", "user_id", user.ID, "panic", r)
			outcome = Outcome{UserID: user.ID, Status: StatusFailed, Reason: fmt.Sprint(r)}
		}
	}()

	outcome, err := s.processUser(userCtx, user)
	if err != nil {
		s.log.Warn("failed to process user", "user_id", user.ID, "error", err)
	}
	return outcome
}

// processUser runs the per-user pipeline: gate, weekly cap, prompt selection, dispatch
func (s *Scheduler) processUser(ctx context.Context, user models.User) (Outcome, error) {
	fail := func(err error) (Outcome, error) {
		return Outcome{UserID: user.ID, Status: StatusFailed, Reason: err.Error()}, err
	}
	skip := func(reason string) (Outcome, error) {
		s.log.Debug("prompt skipped", "user_id", user.ID, "reason", reason)
		return Outcome{UserID: user.ID, Status: StatusSkipped, Reason: reason}, nil
	}

	decision, err := s.learning.IsGoodTimeToNotify(ctx, user.ID)
	if err != nil {
		return fail(err)
	}
	if !decision.ShouldSend {
		return skip(decision.Reason)
	}

	prefs, err := s.store.GetUserPreferences(ctx, user.ID)
	if err != nil {
		return fail(err)
	}
	if !prefs.EmailPromptsEnabled || prefs.EmailPromptsFrequency <= 0 {
		return skip(ReasonPromptsDisabled)
	}

	now := s.learning.Now()
	count, err := s.store.CountPromptsSentSince(ctx, user.ID, now.Add(-WeeklyWindow))
	if err != nil {
		return fail(err)
	}
	if count >= prefs.EmailPromptsFrequency {
		return skip(ReasonWeeklyLimit)
	}

	next, err := s.learning.GetNextTopicForPrompt(ctx, user.ID)
	if err != nil {
		return fail(err)
	}
	if next == nil {
		return skip(ReasonNothingToSend)
	}

	questionID := next.QuestionID
	record := &models.EmailPrompt{
		UserID:        user.ID,
		TopicID:       next.TopicID,
		QuestionID:    &questionID,
		QuestionText:  next.QuestionText,
		CorrectAnswer: next.CorrectAnswer,
		Channel:       s.notifier.ChannelFor(user),
		SentAt:        now,
	}
	if err := s.store.CreateEmailPrompt(ctx, record); err != nil {
		return fail(err)
	}

	msg := PromptMessage{PromptID: record.ID, TopicName: next.TopicName, QuestionText: next.QuestionText}
	if err := s.notifier.SendPrompt(ctx, user, msg); err != nil {
		// the prompt never reached the user, so it must not count towards the weekly cap
		if delErr := s.store.DeleteEmailPrompt(context.WithoutCancel(ctx), record.ID); delErr != nil {
			err = errors.Join(err, delErr)
		}
		return fail(fmt.Errorf("failed to send prompt: %w", err))
	}

	s.log.Info("prompt sent",
		"user_id", user.ID,
		"topic_id", next.TopicID,
		"question_id", next.QuestionID,
		"channel", record.Channel,
	)
	return Outcome{UserID: user.ID, Status: StatusSent, PromptID: record.ID}, nil
}
