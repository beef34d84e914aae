package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/example/quiztube/internal/apperr"
	"github.com/example/quiztube/pkg/models"
)

// UserRepository handles database operations for users and their preferences
type UserRepository struct {
	db *sqlx.DB
}

// NewUserRepository creates a new repository instance
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create inserts a new user
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	user.CreatedAt = time.Now().UTC()
	query := r.db.Rebind(`
		INSERT INTO users (email, name, telegram_chat_id, created_at)
		VALUES (?, ?, ?, ?)
		RETURNING id
	`)
	err := r.db.QueryRowxContext(ctx, query, user.Email, user.Name, user.TelegramChatID, user.CreatedAt).Scan(&user.ID)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// GetByID returns a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	var user models.User
	query := r.db.Rebind(`SELECT id, email, name, telegram_chat_id, created_at FROM users WHERE id = ?`)
	if err := r.db.GetContext(ctx, &user, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user %d: %w", id, apperr.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get user by ID: %w", err)
	}
	return &user, nil
}

// GetByEmail returns a user by email address
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	query := r.db.Rebind(`SELECT id, email, name, telegram_chat_id, created_at FROM users WHERE email = ?`)
	if err := r.db.GetContext(ctx, &user, query, email); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user %q: %w", email, apperr.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	return &user, nil
}

// GetByTelegramChatID returns the user linked to a Telegram chat
func (r *UserRepository) GetByTelegramChatID(ctx context.Context, chatID int64) (*models.User, error) {
	var user models.User
	query := r.db.Rebind(`SELECT id, email, name, telegram_chat_id, created_at FROM users WHERE telegram_chat_id = ?`)
	if err := r.db.GetContext(ctx, &user, query, chatID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("telegram chat %d: %w", chatID, apperr.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get user by telegram chat: %w", err)
	}
	return &user, nil
}

// ListNotifiable returns users that have not switched prompts off.
// Users without a preferences row get the defaults, which allow prompts.
func (r *UserRepository) ListNotifiable(ctx context.Context) ([]models.User, error) {
	users := []models.User{}
	query := `
		SELECT u.id, u.email, u.name, u.telegram_chat_id, u.created_at
		FROM users u
		LEFT JOIN user_preferences p ON p.user_id = u.id
		WHERE p.user_id IS NULL OR p.email_prompts_enabled
		ORDER BY u.id ASC
	`
	if err := r.db.SelectContext(ctx, &users, query); err != nil {
		return nil, fmt.Errorf("failed to list notifiable users: %w", err)
	}
	return users, nil
}

// preferencesRow mirrors user_preferences; preferred_days is stored comma separated
type preferencesRow struct {
	models.UserPreferences
	PreferredDays string `db:"preferred_days"`
}

// GetUserPreferences returns the user's preferences, or the defaults if none were saved
func (r *UserRepository) GetUserPreferences(ctx context.Context, userID int64) (models.UserPreferences, error) {
	var row preferencesRow
	query := r.db.Rebind(`
		SELECT user_id, timezone, preferred_time, quiet_hours_start, quiet_hours_end,
			preferred_days, max_daily_reviews, email_prompts_frequency,
			email_prompts_enabled, updated_at
		FROM user_preferences
		WHERE user_id = ?
	`)
	if err := r.db.GetContext(ctx, &row, query, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.DefaultPreferences(userID), nil
		}
		return models.UserPreferences{}, fmt.Errorf("failed to get user preferences: %w", err)
	}

	prefs := row.UserPreferences
	prefs.PreferredDays = splitDays(row.PreferredDays)
	if prefs.Timezone == "" {
		prefs.Timezone = models.DefaultTimezone
	}
	return prefs, nil
}

// SavePreferences inserts or replaces the preferences of a user
func (r *UserRepository) SavePreferences(ctx context.Context, prefs *models.UserPreferences) error {
	if (prefs.QuietHoursStart == nil) != (prefs.QuietHoursEnd == nil) {
		return apperr.BadRequest("quiet_hours", errors.New("quiet hours start and end must be set together"))
	}
	if prefs.Timezone == "" {
		prefs.Timezone = models.DefaultTimezone
	}
	prefs.UpdatedAt = time.Now().UTC()

	query := r.db.Rebind(`
		INSERT INTO user_preferences (
			user_id, timezone, preferred_time, quiet_hours_start, quiet_hours_end,
			preferred_days, max_daily_reviews, email_prompts_frequency,
			email_prompts_enabled, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id) DO UPDATE SET
			timezone = excluded.timezone,
			preferred_time = excluded.preferred_time,
			quiet_hours_start = excluded.quiet_hours_start,
			quiet_hours_end = excluded.quiet_hours_end,
			preferred_days = excluded.preferred_days,
			max_daily_reviews = excluded.max_daily_reviews,
			email_prompts_frequency = excluded.email_prompts_frequency,
			email_prompts_enabled = excluded.email_prompts_enabled,
			updated_at = excluded.updated_at
	`)
	_, err := r.db.ExecContext(ctx, query,
		prefs.UserID,
		prefs.Timezone,
		prefs.PreferredTime,
		prefs.QuietHoursStart,
		prefs.QuietHoursEnd,
		strings.Join(prefs.PreferredDays, ","),
		prefs.MaxDailyReviews,
		prefs.EmailPromptsFrequency,
		prefs.EmailPromptsEnabled,
		prefs.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save user preferences: %w", err)
	}
	return nil
}

func splitDays(s string) []string {
	var days []string
	for _, d := range strings.Split(s, ",") {
		if d = strings.TrimSpace(d); d != "" {
			days = append(days, d)
		}
	}
	return days
}
