package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/example/quiztube/internal/apperr"
	"github.com/example/quiztube/pkg/models"
)

const topicColumns = `t.id, t.user_id, t.lesson_id, t.name, t.description,
	t.ease_factor, t.review_interval_days, t.review_count, t.last_reviewed_at,
	t.next_review_date, t.mastery_level, t.created_at, t.updated_at`

const schedulingColumns = `ease_factor, review_interval_days, review_count,
	last_reviewed_at, next_review_date, mastery_level`

// TopicRepository handles database operations for topics
type TopicRepository struct {
	db *sqlx.DB
}

// NewTopicRepository creates a new repository instance
func NewTopicRepository(db *sqlx.DB) *TopicRepository {
	return &TopicRepository{db: db}
}

// Create inserts a new topic. Zero scheduling fields are filled with the
// state of a never-reviewed topic, due immediately.
func (r *TopicRepository) Create(ctx context.Context, topic *models.Topic) error {
	now := time.Now().UTC()
	if topic.EaseFactor == 0 {
		topic.ApplySchedulingState(models.NewSchedulingState(now))
	}
	if topic.MasteryLevel == "" {
		topic.MasteryLevel = models.MasteryIntroduced
	}
	topic.CreatedAt, topic.UpdatedAt = now, now

	query := r.db.Rebind(`
		INSERT INTO topics (
			user_id, lesson_id, name, description,
			ease_factor, review_interval_days, review_count, last_reviewed_at,
			next_review_date, mastery_level, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id
	`)
	err := r.db.QueryRowxContext(ctx, query,
		topic.UserID,
		topic.LessonID,
		topic.Name,
		topic.Description,
		topic.EaseFactor,
		topic.ReviewIntervalDays,
		topic.ReviewCount,
		utcPtr(topic.LastReviewedAt),
		topic.NextReviewDate.UTC(),
		string(topic.MasteryLevel),
		topic.CreatedAt,
		topic.UpdatedAt,
	).Scan(&topic.ID)
	if err != nil {
		return fmt.Errorf("failed to create topic: %w", err)
	}
	return nil
}

// GetByID returns a topic by ID
func (r *TopicRepository) GetByID(ctx context.Context, topicID int64) (*models.Topic, error) {
	var topic models.Topic
	query := r.db.Rebind(`SELECT ` + topicColumns + ` FROM topics t WHERE t.id = ?`)
	if err := r.db.GetContext(ctx, &topic, query, topicID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("topic %d: %w", topicID, apperr.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get topic: %w", err)
	}
	return &topic, nil
}

// GetByLessonAndName finds a topic by its name within a lesson
func (r *TopicRepository) GetByLessonAndName(ctx context.Context, lessonID int64, name string) (*models.Topic, error) {
	var topic models.Topic
	query := r.db.Rebind(`SELECT ` + topicColumns + ` FROM topics t WHERE t.lesson_id = ? AND t.name = ?`)
	if err := r.db.GetContext(ctx, &topic, query, lessonID, name); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("topic %q: %w", name, apperr.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get topic: %w", err)
	}
	return &topic, nil
}

// GetTopicSchedulingState returns only the scheduling fields of a topic
func (r *TopicRepository) GetTopicSchedulingState(ctx context.Context, topicID int64) (models.TopicSchedulingState, error) {
	return getSchedulingState(ctx, r.db, topicID, "")
}

// SaveTopicSchedulingState overwrites the scheduling fields of a topic
func (r *TopicRepository) SaveTopicSchedulingState(ctx context.Context, topicID int64, state models.TopicSchedulingState) error {
	return saveSchedulingState(ctx, r.db, topicID, state)
}

// UpdateScheduling performs an atomic read-modify-write of a topic's
// scheduling state inside one transaction. On postgres the row is locked
// with SELECT ... FOR UPDATE; sqlite serializes writers on its single connection.
func (r *TopicRepository) UpdateScheduling(ctx context.Context, topicID int64, fn func(models.TopicSchedulingState) (models.TopicSchedulingState, error)) (models.TopicSchedulingState, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return models.TopicSchedulingState{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	lock := ""
	if r.db.DriverName() == "postgres" {
		lock = " FOR UPDATE"
	}

	current, err := getSchedulingState(ctx, tx, topicID, lock)
	if err != nil {
		return models.TopicSchedulingState{}, err
	}

	next, err := fn(current)
	if err != nil {
		return models.TopicSchedulingState{}, err
	}

	if err := saveSchedulingState(ctx, tx, topicID, next); err != nil {
		return models.TopicSchedulingState{}, err
	}
	if err := tx.Commit(); err != nil {
		return models.TopicSchedulingState{}, fmt.Errorf("failed to commit scheduling update: %w", err)
	}
	return next, nil
}

// GetTopicsForUser returns all topics of a user with the correctness counts of their questions
func (r *TopicRepository) GetTopicsForUser(ctx context.Context, userID int64) ([]models.TopicWithStats, error) {
	return r.selectWithStats(ctx, `t.user_id = ?`, userID)
}

// GetDueTopics returns the topics of a user whose next review date has passed
func (r *TopicRepository) GetDueTopics(ctx context.Context, userID int64, now time.Time) ([]models.TopicWithStats, error) {
	return r.selectWithStats(ctx, `t.user_id = ? AND t.next_review_date <= ?`, userID, now.UTC())
}

func (r *TopicRepository) selectWithStats(ctx context.Context, where string, args ...interface{}) ([]models.TopicWithStats, error) {
	query := r.db.Rebind(`
		SELECT ` + topicColumns + `,
			COALESCE(SUM(CASE WHEN q.is_correct THEN 1 ELSE 0 END), 0) AS correct_count,
			COALESCE(SUM(CASE WHEN NOT q.is_correct THEN 1 ELSE 0 END), 0) AS incorrect_count,
			COUNT(q.id) AS question_count
		FROM topics t
		LEFT JOIN questions q ON q.topic_id = t.id
		WHERE ` + where + `
		GROUP BY t.id
		ORDER BY t.next_review_date ASC, t.id ASC
	`)

	topics := []models.TopicWithStats{}
	if err := r.db.SelectContext(ctx, &topics, query, args...); err != nil {
		return nil, fmt.Errorf("failed to get topics: %w", err)
	}
	return topics, nil
}

// Delete removes a topic together with its questions
func (r *TopicRepository) Delete(ctx context.Context, topicID int64) error {
	result, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM topics WHERE id = ?`), topicID)
	if err != nil {
		return fmt.Errorf("failed to delete topic: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("topic %d: %w", topicID, apperr.ErrNotFound)
	}
	return nil
}

func getSchedulingState(ctx context.Context, q sqlx.ExtContext, topicID int64, suffix string) (models.TopicSchedulingState, error) {
	var state models.TopicSchedulingState
	query := q.Rebind(`SELECT ` + schedulingColumns + ` FROM topics WHERE id = ?` + suffix)
	if err := sqlx.GetContext(ctx, q, &state, query, topicID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return state, fmt.Errorf("topic %d: %w", topicID, apperr.ErrNotFound)
		}
		return state, fmt.Errorf("failed to get scheduling state: %w", err)
	}
	return state, nil
}

func saveSchedulingState(ctx context.Context, e sqlx.ExtContext, topicID int64, s models.TopicSchedulingState) error {
	query := e.Rebind(`
		UPDATE topics SET
			ease_factor = ?,
			review_interval_days = ?,
			review_count = ?,
			last_reviewed_at = ?,
			next_review_date = ?,
			mastery_level = ?,
			updated_at = ?
		WHERE id = ?
	`)
	result, err := e.ExecContext(ctx, query,
		s.EaseFactor,
		s.ReviewIntervalDays,
		s.ReviewCount,
		utcPtr(s.LastReviewedAt),
		s.NextReviewDate.UTC(),
		string(s.MasteryLevel),
		time.Now().UTC(),
		topicID,
	)
	if err != nil {
		return fmt.Errorf("failed to save scheduling state: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("topic %d: %w", topicID, apperr.ErrNotFound)
	}
	return nil
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
