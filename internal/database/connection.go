package database

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"github.com/example/quiztube/internal/config"
)

// Connect opens a database connection for the given driver (sqlite3 or postgres)
func Connect(driver, dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Connect(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if driver == "sqlite3" {
		// Enable foreign keys
		if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
		}
		// SQLite doesn't support multiple writers
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	}

	return db, nil
}

// Open connects using the application config and makes sure the schema exists
func Open(ctx context.Context, cfg *config.Config) (*sqlx.DB, error) {
	if cfg.DBDriver == "sqlite3" && !strings.HasPrefix(cfg.DBDSN, "file:") && cfg.DBDSN != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(cfg.DBDSN), 0755); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
	}

	db, err := Connect(cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		return nil, err
	}

	if err := InitSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// InitSchema creates necessary tables if they don't exist
func InitSchema(ctx context.Context, db *sqlx.DB) error {
	dialect := sqliteDialect
	if db.DriverName() == "postgres" {
		dialect = postgresDialect
	}

	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, dialect.Replace(stmt)); err != nil {
			return fmt.Errorf("failed to initialize schema: %w", err)
		}
	}
	return nil
}

var (
	sqliteDialect = strings.NewReplacer(
		"{{pk}}", "INTEGER PRIMARY KEY AUTOINCREMENT",
		"{{float}}", "REAL",
		"{{ts}}", "TIMESTAMP",
	)
	postgresDialect = strings.NewReplacer(
		"{{pk}}", "BIGSERIAL PRIMARY KEY",
		"{{float}}", "DOUBLE PRECISION",
		"{{ts}}", "TIMESTAMPTZ",
	)
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id {{pk}},
		email TEXT NOT NULL UNIQUE,
		name TEXT NOT NULL DEFAULT '',
		telegram_chat_id BIGINT,
		created_at {{ts}} NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS user_preferences (
		user_id BIGINT PRIMARY KEY REFERENCES users(id) ON DELETE CASCADE,
		timezone TEXT NOT NULL DEFAULT 'UTC',
		preferred_time TEXT,
		quiet_hours_start TEXT,
		quiet_hours_end TEXT,
		preferred_days TEXT NOT NULL DEFAULT '',
		max_daily_reviews INTEGER NOT NULL DEFAULT 20,
		email_prompts_frequency INTEGER NOT NULL DEFAULT 3,
		email_prompts_enabled BOOLEAN NOT NULL DEFAULT TRUE,
		updated_at {{ts}} NOT NULL DEFAULT CURRENT_TIMESTAMP,
		CHECK ((quiet_hours_start IS NULL) = (quiet_hours_end IS NULL))
	)`,
	`CREATE TABLE IF NOT EXISTS lessons (
		id {{pk}},
		user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		title TEXT NOT NULL,
		video_url TEXT NOT NULL DEFAULT '',
		created_at {{ts}} NOT NULL DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(user_id, title)
	)`,
	`CREATE TABLE IF NOT EXISTS topics (
		id {{pk}},
		user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		lesson_id BIGINT NOT NULL REFERENCES lessons(id) ON DELETE CASCADE,
		name TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		ease_factor {{float}} NOT NULL DEFAULT 2.5 CHECK (ease_factor >= 1.3),
		review_interval_days INTEGER NOT NULL DEFAULT 1 CHECK (review_interval_days >= 1),
		review_count INTEGER NOT NULL DEFAULT 0 CHECK (review_count >= 0),
		last_reviewed_at {{ts}},
		next_review_date {{ts}} NOT NULL,
		mastery_level TEXT NOT NULL DEFAULT 'INTRODUCED',
		created_at {{ts}} NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at {{ts}} NOT NULL DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(lesson_id, name)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_topics_user_next_review ON topics(user_id, next_review_date)`,
	`CREATE TABLE IF NOT EXISTS questions (
		id {{pk}},
		topic_id BIGINT NOT NULL REFERENCES topics(id) ON DELETE CASCADE,
		question_text TEXT NOT NULL,
		correct_answer TEXT NOT NULL DEFAULT '',
		explanation TEXT NOT NULL DEFAULT '',
		user_answer TEXT,
		is_correct BOOLEAN,
		created_at {{ts}} NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE INDEX IF NOT EXISTS idx_questions_topic ON questions(topic_id, created_at)`,
	`CREATE TABLE IF NOT EXISTS email_prompts (
		id {{pk}},
		user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		topic_id BIGINT NOT NULL REFERENCES topics(id) ON DELETE CASCADE,
		question_id BIGINT REFERENCES questions(id) ON DELETE SET NULL,
		question_text TEXT NOT NULL,
		correct_answer TEXT NOT NULL DEFAULT '',
		channel TEXT NOT NULL DEFAULT '',
		sent_at {{ts}} NOT NULL,
		replied_at {{ts}},
		user_response TEXT,
		is_correct BOOLEAN
	)`,
	`CREATE INDEX IF NOT EXISTS idx_email_prompts_user_sent ON email_prompts(user_id, sent_at)`,
}
