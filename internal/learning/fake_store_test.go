package learning

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/example/quiztube/internal/apperr"
	"github.com/example/quiztube/pkg/models"
)

// memStore is an in-memory Store for service tests
type memStore struct {
	mu        sync.Mutex
	users     map[int64]*models.User
	prefs     map[int64]models.UserPreferences
	topics    map[int64]*models.Topic
	questions map[int64]*models.Question
	prompts   map[int64]*models.EmailPrompt
	nextID    int64
	lookupErr error

	// staleReads hides replies from GetEmailPrompt, as a reader racing
	// another reply would see the prompt
	staleReads bool
}

func newMemStore() *memStore {
	return &memStore{
		users:     map[int64]*models.User{},
		prefs:     map[int64]models.UserPreferences{},
		topics:    map[int64]*models.Topic{},
		questions: map[int64]*models.Question{},
		prompts:   map[int64]*models.EmailPrompt{},
	}
}

func (m *memStore) id() int64 {
	m.nextID++
	return m.nextID
}

func (m *memStore) addUser(name string) *models.User {
	u := &models.User{ID: m.id(), Email: name + "@example.com", Name: name}
	m.users[u.ID] = u
	return u
}

func (m *memStore) addTopic(userID int64, name string, state models.TopicSchedulingState) *models.Topic {
	t := &models.Topic{ID: m.id(), UserID: userID, Name: name}
	t.ApplySchedulingState(state)
	m.topics[t.ID] = t
	return t
}

func (m *memStore) addQuestion(topicID int64, text string, createdAt time.Time) *models.Question {
	q := &models.Question{ID: m.id(), TopicID: topicID, QuestionText: text, CorrectAnswer: "answer to " + text, CreatedAt: createdAt}
	m.questions[q.ID] = q
	return q
}

func (m *memStore) GetTopic(_ context.Context, topicID int64) (*models.Topic, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.topics[topicID]
	if !ok {
		return nil, fmt.Errorf("topic %d: %w", topicID, apperr.ErrNotFound)
	}
	cp := *t
	return &cp, nil
}

func (m *memStore) UpdateScheduling(_ context.Context, topicID int64, fn func(models.TopicSchedulingState) (models.TopicSchedulingState, error)) (models.TopicSchedulingState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.topics[topicID]
	if !ok {
		return models.TopicSchedulingState{}, fmt.Errorf("topic %d: %w", topicID, apperr.ErrNotFound)
	}
	next, err := fn(t.SchedulingState())
	if err != nil {
		return models.TopicSchedulingState{}, err
	}
	t.ApplySchedulingState(next)
	return next, nil
}

func (m *memStore) GetTopicsForUser(_ context.Context, userID int64) ([]models.TopicWithStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.TopicWithStats
	for _, t := range m.topics {
		if t.UserID != userID {
			continue
		}
		stats := models.TopicWithStats{Topic: *t}
		for _, q := range m.questions {
			if q.TopicID != t.ID {
				continue
			}
			stats.QuestionCount++
			if q.IsCorrect != nil {
				if *q.IsCorrect {
					stats.CorrectCount++
				} else {
					stats.IncorrectCount++
				}
			}
		}
		out = append(out, stats)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memStore) GetUser(_ context.Context, userID int64) (*models.User, error) {
	u, ok := m.users[userID]
	if !ok {
		return nil, fmt.Errorf("user %d: %w", userID, apperr.ErrNotFound)
	}
	return u, nil
}

func (m *memStore) GetUserPreferences(_ context.Context, userID int64) (models.UserPreferences, error) {
	if p, ok := m.prefs[userID]; ok {
		return p, nil
	}
	return models.DefaultPreferences(userID), nil
}

func (m *memStore) GetQuestion(_ context.Context, questionID int64) (*models.Question, error) {
	q, ok := m.questions[questionID]
	if !ok {
		return nil, fmt.Errorf("question %d: %w", questionID, apperr.ErrNotFound)
	}
	return q, nil
}

func (m *memStore) LatestQuestionForTopic(_ context.Context, topicID int64) (*models.Question, error) {
	if m.lookupErr != nil {
		return nil, m.lookupErr
	}
	var latest *models.Question
	for _, q := range m.questions {
		if q.TopicID != topicID {
			continue
		}
		if latest == nil || q.CreatedAt.After(latest.CreatedAt) {
			latest = q
		}
	}
	return latest, nil
}

func (m *memStore) RecordAnswer(_ context.Context, questionID int64, answer *string, isCorrect bool) error {
	q, ok := m.questions[questionID]
	if !ok {
		return fmt.Errorf("question %d: %w", questionID, apperr.ErrNotFound)
	}
	q.UserAnswer = answer
	q.IsCorrect = &isCorrect
	return nil
}

func (m *memStore) GetEmailPrompt(_ context.Context, promptID int64) (*models.EmailPrompt, error) {
	p, ok := m.prompts[promptID]
	if !ok {
		return nil, fmt.Errorf("email prompt %d: %w", promptID, apperr.ErrNotFound)
	}
	cp := *p
	if m.staleReads {
		cp.RepliedAt = nil
	}
	return &cp, nil
}

func (m *memStore) RecordPromptReply(_ context.Context, promptID int64, response string, isCorrect bool, repliedAt time.Time) error {
	p, ok := m.prompts[promptID]
	if !ok {
		return fmt.Errorf("email prompt %d: %w", promptID, apperr.ErrNotFound)
	}
	if p.RepliedAt != nil {
		return fmt.Errorf("email prompt %d: %w", promptID, models.ErrPromptAnswered)
	}
	p.RepliedAt = &repliedAt
	p.UserResponse = &response
	p.IsCorrect = &isCorrect
	return nil
}
