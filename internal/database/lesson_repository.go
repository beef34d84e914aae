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

// LessonRepository handles database operations for lessons
type LessonRepository struct {
	db *sqlx.DB
}

// NewLessonRepository creates a new repository instance
func NewLessonRepository(db *sqlx.DB) *LessonRepository {
	return &LessonRepository{db: db}
}

// Create inserts a new lesson
func (r *LessonRepository) Create(ctx context.Context, lesson *models.Lesson) error {
	lesson.CreatedAt = time.Now().UTC()
	query := r.db.Rebind(`
		INSERT INTO lessons (user_id, title, video_url, created_at)
		VALUES (?, ?, ?, ?)
		RETURNING id
	`)
	err := r.db.QueryRowxContext(ctx, query, lesson.UserID, lesson.Title, lesson.VideoURL, lesson.CreatedAt).Scan(&lesson.ID)
	if err != nil {
		return fmt.Errorf("failed to create lesson: %w", err)
	}
	return nil
}

// GetByTitle finds a lesson of a user by title
func (r *LessonRepository) GetByTitle(ctx context.Context, userID int64, title string) (*models.Lesson, error) {
	var lesson models.Lesson
	query := r.db.Rebind(`SELECT id, user_id, title, video_url, created_at FROM lessons WHERE user_id = ? AND title = ?`)
	if err := r.db.GetContext(ctx, &lesson, query, userID, title); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("lesson %q: %w", title, apperr.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get lesson: %w", err)
	}
	return &lesson, nil
}

// GetAllByUserID returns all lessons of a user
func (r *LessonRepository) GetAllByUserID(ctx context.Context, userID int64) ([]models.Lesson, error) {
	lessons := []models.Lesson{}
	query := r.db.Rebind(`SELECT id, user_id, title, video_url, created_at FROM lessons WHERE user_id = ? ORDER BY created_at ASC, id ASC`)
	if err := r.db.SelectContext(ctx, &lessons, query, userID); err != nil {
		return nil, fmt.Errorf("failed to get lessons: %w", err)
	}
	return lessons, nil
}
