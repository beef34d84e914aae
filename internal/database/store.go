package database

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/example/quiztube/pkg/models"
)

// Store groups the repositories behind one handle
type Store struct {
	db *sqlx.DB

	Users     *UserRepository
	Lessons   *LessonRepository
	Topics    *TopicRepository
	Questions *QuestionRepository
	Prompts   *EmailPromptRepository
	Stats     *StatisticsRepository
}

// NewStore builds all repositories on top of db
func NewStore(db *sqlx.DB) *Store {
	return &Store{
		db:        db,
		Users:     NewUserRepository(db),
		Lessons:   NewLessonRepository(db),
		Topics:    NewTopicRepository(db),
		Questions: NewQuestionRepository(db),
		Prompts:   NewEmailPromptRepository(db),
		Stats:     NewStatisticsRepository(db),
	}
}

// DB returns the underlying connection
func (s *Store) DB() *sqlx.DB {
	return s.db
}

// Close closes the underlying connection
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) GetTopic(ctx context.Context, topicID int64) (*models.Topic, error) {
	return s.Topics.GetByID(ctx, topicID)
}

func (s *Store) GetTopicSchedulingState(ctx context.Context, topicID int64) (models.TopicSchedulingState, error) {
	return s.Topics.GetTopicSchedulingState(ctx, topicID)
}

func (s *Store) SaveTopicSchedulingState(ctx context.Context, topicID int64, state models.TopicSchedulingState) error {
	return s.Topics.SaveTopicSchedulingState(ctx, topicID, state)
}

func (s *Store) UpdateScheduling(ctx context.Context, topicID int64, fn func(models.TopicSchedulingState) (models.TopicSchedulingState, error)) (models.TopicSchedulingState, error) {
	return s.Topics.UpdateScheduling(ctx, topicID, fn)
}

func (s *Store) GetTopicsForUser(ctx context.Context, userID int64) ([]models.TopicWithStats, error) {
	return s.Topics.GetTopicsForUser(ctx, userID)
}

func (s *Store) GetDueTopics(ctx context.Context, userID int64, now time.Time) ([]models.TopicWithStats, error) {
	return s.Topics.GetDueTopics(ctx, userID, now)
}

func (s *Store) GetUser(ctx context.Context, userID int64) (*models.User, error) {
	return s.Users.GetByID(ctx, userID)
}

func (s *Store) GetUserByTelegramChatID(ctx context.Context, chatID int64) (*models.User, error) {
	return s.Users.GetByTelegramChatID(ctx, chatID)
}

func (s *Store) GetUserPreferences(ctx context.Context, userID int64) (models.UserPreferences, error) {
	return s.Users.GetUserPreferences(ctx, userID)
}

func (s *Store) ListNotifiableUsers(ctx context.Context) ([]models.User, error) {
	return s.Users.ListNotifiable(ctx)
}

func (s *Store) GetQuestion(ctx context.Context, questionID int64) (*models.Question, error) {
	return s.Questions.GetByID(ctx, questionID)
}

func (s *Store) LatestQuestionForTopic(ctx context.Context, topicID int64) (*models.Question, error) {
	return s.Questions.LatestForTopic(ctx, topicID)
}

func (s *Store) RecordAnswer(ctx context.Context, questionID int64, answer *string, isCorrect bool) error {
	return s.Questions.RecordAnswer(ctx, questionID, answer, isCorrect)
}

func (s *Store) GetEmailPrompt(ctx context.Context, promptID int64) (*models.EmailPrompt, error) {
	return s.Prompts.GetByID(ctx, promptID)
}

func (s *Store) CreateEmailPrompt(ctx context.Context, prompt *models.EmailPrompt) error {
	return s.Prompts.Create(ctx, prompt)
}

func (s *Store) CountPromptsSentSince(ctx context.Context, userID int64, since time.Time) (int, error) {
	return s.Prompts.CountSentSince(ctx, userID, since)
}

func (s *Store) RecordPromptReply(ctx context.Context, promptID int64, response string, isCorrect bool, repliedAt time.Time) error {
	return s.Prompts.RecordReply(ctx, promptID, response, isCorrect, repliedAt)
}

func (s *Store) DeleteEmailPrompt(ctx context.Context, promptID int64) error {
	return s.Prompts.Delete(ctx, promptID)
}
