package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/quiztube/internal/apperr"
	"github.com/example/quiztube/internal/learning"
	"github.com/example/quiztube/internal/logger"
	"github.com/example/quiztube/internal/notification"
	"github.com/example/quiztube/pkg/models"
)

var testNow = time.Date(2024, 6, 12, 12, 0, 0, 0, time.UTC)

type fakeStore struct {
	mu      sync.Mutex
	users   []models.User
	prefs   map[int64]models.UserPreferences
	sent    map[int64]int
	prompts map[int64]*models.EmailPrompt
	nextID  int64
	listErr error
	since   time.Time
}

func newFakeStore(users ...models.User) *fakeStore {
	return &fakeStore{
		users:   users,
		prefs:   map[int64]models.UserPreferences{},
		sent:    map[int64]int{},
		prompts: map[int64]*models.EmailPrompt{},
	}
}

func (f *fakeStore) GetUser(_ context.Context, userID int64) (*models.User, error) {
	for _, u := range f.users {
		if u.ID == userID {
			u := u
			return &u, nil
		}
	}
	return nil, fmt.Errorf("user %d: %w", userID, apperr.ErrNotFound)
}

func (f *fakeStore) ListNotifiableUsers(context.Context) ([]models.User, error) {
	return f.users, f.listErr
}

func (f *fakeStore) GetUserPreferences(_ context.Context, userID int64) (models.UserPreferences, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if p, ok := f.prefs[userID]; ok {
		return p, nil
	}
	return models.DefaultPreferences(userID), nil
}

func (f *fakeStore) CountPromptsSentSince(_ context.Context, userID int64, since time.Time) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.since = since
	return f.sent[userID], nil
}

func (f *fakeStore) CreateEmailPrompt(_ context.Context, p *models.EmailPrompt) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	p.ID = f.nextID
	f.prompts[p.ID] = p
	f.sent[p.UserID]++
	return nil
}

func (f *fakeStore) DeleteEmailPrompt(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if p, ok := f.prompts[id]; ok {
		f.sent[p.UserID]--
		delete(f.prompts, id)
	}
	return nil
}

type fakeLearning struct {
	decisions map[int64]notification.OptimalSendTime
	gateErr   map[int64]error
	prompts   map[int64]*learning.NextPrompt
	panicFor  int64
}

func (f *fakeLearning) Now() time.Time { return testNow }

func (f *fakeLearning) IsGoodTimeToNotify(_ context.Context, userID int64) (notification.OptimalSendTime, error) {
	if userID == f.panicFor {
		panic("boom")
	}
	if err := f.gateErr[userID]; err != nil {
		return notification.OptimalSendTime{}, err
	}
	if d, ok := f.decisions[userID]; ok {
		return d, nil
	}
	return notification.OptimalSendTime{ShouldSend: true, Reason: notification.ReasonGoodTime}, nil
}

func (f *fakeLearning) GetNextTopicForPrompt(_ context.Context, userID int64) (*learning.NextPrompt, error) {
	return f.prompts[userID], nil
}

type fakeNotifier struct {
	mu      sync.Mutex
	failFor map[int64]bool
	got     []PromptMessage
}

func (n *fakeNotifier) ChannelFor(models.User) string { return "test" }

func (n *fakeNotifier) SendPrompt(_ context.Context, user models.User, msg PromptMessage) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.failFor[user.ID] {
		return errors.New("channel down")
	}
	n.got = append(n.got, msg)
	return nil
}

func prompt(topicID int64) *learning.NextPrompt {
	return &learning.NextPrompt{TopicID: topicID, TopicName: "topic", QuestionID: topicID * 10, QuestionText: "why?", CorrectAnswer: "because"}
}

func newTestScheduler(store *fakeStore, svc *fakeLearning, n *fakeNotifier) *Scheduler {
	return New(store, svc, n, logger.Nop(), Options{Concurrency: 2})
}

func TestRunOnceIsolatesFailures(t *testing.T) {
	store := newFakeStore(
		models.User{ID: 1}, models.User{ID: 2}, models.User{ID: 3},
		models.User{ID: 4}, models.User{ID: 5}, models.User{ID: 6},
	)
	store.sent[4] = models.DefaultEmailPromptsFrequency
	svc := &fakeLearning{
		decisions: map[int64]notification.OptimalSendTime{
			3: {ShouldSend: false, Reason: notification.ReasonQuietHours},
		},
		gateErr:  map[int64]error{2: errors.New("bad preferences")},
		prompts:  map[int64]*learning.NextPrompt{1: prompt(1), 4: prompt(4), 5: prompt(5)},
		panicFor: 6,
	}
	n := &fakeNotifier{}

	result, err := newTestScheduler(store, svc, n).RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, BatchResult{Processed: 6, Sent: 2, Skipped: 2, Failed: 2}, result)
	assert.Len(t, n.got, 2)
}

func TestRunOnceListError(t *testing.T) {
	store := newFakeStore()
	store.listErr = errors.New("db down")

	_, err := newTestScheduler(store, &fakeLearning{}, &fakeNotifier{}).RunOnce(context.Background())
	assert.Error(t, err)
}

func TestRunForUserSendsAndPersists(t *testing.T) {
	store := newFakeStore(models.User{ID: 1})
	svc := &fakeLearning{prompts: map[int64]*learning.NextPrompt{1: prompt(7)}}
	n := &fakeNotifier{}

	outcome, err := newTestScheduler(store, svc, n).RunForUser(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, StatusSent, outcome.Status)

	rec := store.prompts[outcome.PromptID]
	require.NotNil(t, rec)
	assert.Equal(t, int64(7), rec.TopicID)
	assert.Equal(t, int64(70), *rec.QuestionID)
	assert.Equal(t, "because", rec.CorrectAnswer)
	assert.Equal(t, "test", rec.Channel)
	assert.Equal(t, testNow, rec.SentAt)
	assert.Equal(t, testNow.Add(-WeeklyWindow), store.since)

	require.Len(t, n.got, 1)
	assert.Equal(t, outcome.PromptID, n.got[0].PromptID)
}

func TestRunForUserSkips(t *testing.T) {
	tests := []struct {
		name   string
		setup  func(*fakeStore, *fakeLearning)
		reason string
	}{
		{
			name: "gate closed",
			setup: func(_ *fakeStore, l *fakeLearning) {
				l.decisions = map[int64]notification.OptimalSendTime{1: {Reason: notification.ReasonTooLate}}
			},
			reason: notification.ReasonTooLate,
		},
		{
			name: "prompts disabled",
			setup: func(s *fakeStore, _ *fakeLearning) {
				p := models.DefaultPreferences(1)
				p.EmailPromptsEnabled = false
				s.prefs[1] = p
			},
			reason: ReasonPromptsDisabled,
		},
		{
			name: "weekly cap",
			setup: func(s *fakeStore, _ *fakeLearning) {
				p := models.DefaultPreferences(1)
				p.EmailPromptsFrequency = 2
				s.prefs[1] = p
				s.sent[1] = 2
			},
			reason: ReasonWeeklyLimit,
		},
		{
			name:   "nothing to send",
			setup:  func(_ *fakeStore, l *fakeLearning) { l.prompts = nil },
			reason: ReasonNothingToSend,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newFakeStore(models.User{ID: 1})
			svc := &fakeLearning{prompts: map[int64]*learning.NextPrompt{1: prompt(1)}}
			tt.setup(store, svc)
			n := &fakeNotifier{}

			outcome, err := newTestScheduler(store, svc, n).RunForUser(context.Background(), 1)
			require.NoError(t, err)
			assert.Equal(t, StatusSkipped, outcome.Status)
			assert.Equal(t, tt.reason, outcome.Reason)
			assert.Empty(t, n.got)
		})
	}
}

func TestRunForUserSendFailureRemovesRecord(t *testing.T) {
	store := newFakeStore(models.User{ID: 1})
	svc := &fakeLearning{prompts: map[int64]*learning.NextPrompt{1: prompt(1)}}
	n := &fakeNotifier{failFor: map[int64]bool{1: true}}

	outcome, err := newTestScheduler(store, svc, n).RunForUser(context.Background(), 1)
	require.Error(t, err)
	assert.Equal(t, StatusFailed, outcome.Status)
	assert.Empty(t, store.prompts)
	assert.Equal(t, 0, store.sent[1])
}

func TestRunForUserUnknownUser(t *testing.T) {
	_, err := newTestScheduler(newFakeStore(), &fakeLearning{}, &fakeNotifier{}).RunForUser(context.Background(), 42)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestStartStop(t *testing.T) {
	store := newFakeStore()
	s := New(store, &fakeLearning{}, &fakeNotifier{}, logger.Nop(), Options{Interval: time.Hour})
	require.NoError(t, s.Start())
	s.Stop()
}
