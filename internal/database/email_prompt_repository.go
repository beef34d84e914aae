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

const promptColumns = `id, user_id, topic_id, question_id, question_text, correct_answer,
	channel, sent_at, replied_at, user_response, is_correct`

// EmailPromptRepository stores outbound review prompts and their replies
type EmailPromptRepository struct {
	db *sqlx.DB
}

// NewEmailPromptRepository creates a new repository instance
func NewEmailPromptRepository(db *sqlx.DB) *EmailPromptRepository {
	return &EmailPromptRepository{db: db}
}

// Create records a sent prompt
func (r *EmailPromptRepository) Create(ctx context.Context, p *models.EmailPrompt) error {
	if p.SentAt.IsZero() {
		p.SentAt = time.Now()
	}
	p.SentAt = p.SentAt.UTC()
	query := r.db.Rebind(`
		INSERT INTO email_prompts (
			user_id, topic_id, question_id, question_text, correct_answer, channel, sent_at
		) VALUES (?, ?, ?, ?, ?, ?, ?)
		RETURNING id
	`)
	err := r.db.QueryRowxContext(ctx, query,
		p.UserID,
		p.TopicID,
		p.QuestionID,
		p.QuestionText,
		p.CorrectAnswer,
		p.Channel,
		p.SentAt,
	).Scan(&p.ID)
	if err != nil {
		return fmt.Errorf("failed to create email prompt: %w", err)
	}
	return nil
}

// GetByID returns a prompt by ID
func (r *EmailPromptRepository) GetByID(ctx context.Context, id int64) (*models.EmailPrompt, error) {
	var p models.EmailPrompt
	query := r.db.Rebind(`SELECT ` + promptColumns + ` FROM email_prompts WHERE id = ?`)
	if err := r.db.GetContext(ctx, &p, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("email prompt %d: %w", id, apperr.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get email prompt: %w", err)
	}
	return &p, nil
}

// CountSentSince counts prompts sent to a user at or after since
func (r *EmailPromptRepository) CountSentSince(ctx context.Context, userID int64, since time.Time) (int, error) {
	var count int
	query := r.db.Rebind(`SELECT COUNT(*) FROM email_prompts WHERE user_id = ? AND sent_at >= ?`)
	if err := r.db.GetContext(ctx, &count, query, userID, since.UTC()); err != nil {
		return 0, fmt.Errorf("failed to count email prompts: %w", err)
	}
	return count, nil
}

// RecordReply stores the learner's reply to a prompt. Only the first reply
// is kept; later ones fail with models.ErrPromptAnswered.
func (r *EmailPromptRepository) RecordReply(ctx context.Context, id int64, response string, isCorrect bool, repliedAt time.Time) error {
	query := r.db.Rebind(`
		UPDATE email_prompts
		SET replied_at = ?, user_response = ?, is_correct = ?
		WHERE id = ? AND replied_at IS NULL
	`)
	result, err := r.db.ExecContext(ctx, query, repliedAt.UTC(), response, isCorrect, id)
	if err != nil {
		return fmt.Errorf("failed to record prompt reply: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows > 0 {
		return nil
	}

	var exists bool
	check := r.db.Rebind(`SELECT EXISTS(SELECT 1 FROM email_prompts WHERE id = ?)`)
	if err := r.db.GetContext(ctx, &exists, check, id); err != nil {
		return fmt.Errorf("failed to check email prompt: %w", err)
	}
	if !exists {
		return fmt.Errorf("email prompt %d: %w", id, apperr.ErrNotFound)
	}
	return fmt.Errorf("email prompt %d: %w", id, models.ErrPromptAnswered)
}

// Delete removes a prompt, used when dispatch fails after the record was created
func (r *EmailPromptRepository) Delete(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM email_prompts WHERE id = ?`), id); err != nil {
		return fmt.Errorf("failed to delete email prompt: %w", err)
	}
	return nil
}
