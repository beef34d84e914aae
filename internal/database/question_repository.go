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

const questionColumns = `id, topic_id, question_text, correct_answer, explanation,
	user_answer, is_correct, created_at`

// QuestionRepository handles database operations for questions
type QuestionRepository struct {
	db *sqlx.DB
}

// NewQuestionRepository creates a new repository instance
func NewQuestionRepository(db *sqlx.DB) *QuestionRepository {
	return &QuestionRepository{db: db}
}

// Create inserts a new question
func (r *QuestionRepository) Create(ctx context.Context, q *models.Question) error {
	if q.CreatedAt.IsZero() {
		q.CreatedAt = time.Now().UTC()
	}
	query := r.db.Rebind(`
		INSERT INTO questions (
			topic_id, question_text, correct_answer, explanation,
			user_answer, is_correct, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?)
		RETURNING id
	`)
	err := r.db.QueryRowxContext(ctx, query,
		q.TopicID,
		q.QuestionText,
		q.CorrectAnswer,
		q.Explanation,
		q.UserAnswer,
		q.IsCorrect,
		q.CreatedAt.UTC(),
	).Scan(&q.ID)
	if err != nil {
		return fmt.Errorf("failed to create question: %w", err)
	}
	return nil
}

// GetByID returns a question by ID
func (r *QuestionRepository) GetByID(ctx context.Context, id int64) (*models.Question, error) {
	var q models.Question
	query := r.db.Rebind(`SELECT ` + questionColumns + ` FROM questions WHERE id = ?`)
	if err := r.db.GetContext(ctx, &q, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("question %d: %w", id, apperr.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get question: %w", err)
	}
	return &q, nil
}

// GetByTopic returns the questions of a topic, oldest first
func (r *QuestionRepository) GetByTopic(ctx context.Context, topicID int64) ([]models.Question, error) {
	questions := []models.Question{}
	query := r.db.Rebind(`SELECT ` + questionColumns + ` FROM questions WHERE topic_id = ? ORDER BY created_at ASC, id ASC`)
	if err := r.db.SelectContext(ctx, &questions, query, topicID); err != nil {
		return nil, fmt.Errorf("failed to get questions by topic: %w", err)
	}
	return questions, nil
}

// LatestForTopic returns the most recent question of a topic, or nil if it has none
func (r *QuestionRepository) LatestForTopic(ctx context.Context, topicID int64) (*models.Question, error) {
	var q models.Question
	query := r.db.Rebind(`
		SELECT ` + questionColumns + `
		FROM questions
		WHERE topic_id = ?
		ORDER BY created_at DESC, id DESC
		LIMIT 1
	`)
	if err := r.db.GetContext(ctx, &q, query, topicID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get latest question: %w", err)
	}
	return &q, nil
}

// RecordAnswer stores the learner's answer and its correctness on a question
func (r *QuestionRepository) RecordAnswer(ctx context.Context, id int64, answer *string, isCorrect bool) error {
	query := r.db.Rebind(`UPDATE questions SET user_answer = ?, is_correct = ? WHERE id = ?`)
	result, err := r.db.ExecContext(ctx, query, answer, isCorrect, id)
	if err != nil {
		return fmt.Errorf("failed to record answer: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("question %d: %w", id, apperr.ErrNotFound)
	}
	return nil
}
