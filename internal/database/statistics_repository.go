package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/example/quiztube/pkg/models"
)

// StatisticsRepository computes progress summaries from topics, questions and prompts
type StatisticsRepository struct {
	db *sqlx.DB
}

// NewStatisticsRepository creates a new repository instance
func NewStatisticsRepository(db *sqlx.DB) *StatisticsRepository {
	return &StatisticsRepository{db: db}
}

// GetUserStatistics returns the statistics of a user at now
func (r *StatisticsRepository) GetUserStatistics(ctx context.Context, userID int64, now time.Time) (*models.Statistics, error) {
	stats := models.Statistics{UserID: userID, ByMastery: make(map[models.MasteryLevel]int)}

	topicQuery := r.db.Rebind(`
		SELECT
			COUNT(*) AS total_topics,
			COALESCE(SUM(CASE WHEN next_review_date <= ? THEN 1 ELSE 0 END), 0) AS due_topics,
			COALESCE(SUM(review_count), 0) AS total_reviews
		FROM topics
		WHERE user_id = ?
	`)
	if err := r.db.QueryRowxContext(ctx, topicQuery, now.UTC(), userID).Scan(
		&stats.TotalTopics, &stats.DueTopics, &stats.TotalReviews,
	); err != nil {
		return nil, fmt.Errorf("failed to get topic statistics: %w", err)
	}

	var levels []struct {
		Level models.MasteryLevel `db:"mastery_level"`
		Count int                 `db:"count"`
	}
	masteryQuery := r.db.Rebind(`
		SELECT mastery_level, COUNT(*) AS count
		FROM topics
		WHERE user_id = ?
		GROUP BY mastery_level
	`)
	if err := r.db.SelectContext(ctx, &levels, masteryQuery, userID); err != nil {
		return nil, fmt.Errorf("failed to get mastery statistics: %w", err)
	}
	for _, l := range levels {
		stats.ByMastery[l.Level] = l.Count
	}

	answerQuery := r.db.Rebind(`
		SELECT
			COUNT(q.is_correct) AS answered,
			COALESCE(SUM(CASE WHEN q.is_correct THEN 1 ELSE 0 END), 0) AS correct
		FROM questions q
		JOIN topics t ON t.id = q.topic_id
		WHERE t.user_id = ?
	`)
	if err := r.db.QueryRowxContext(ctx, answerQuery, userID).Scan(
		&stats.AnsweredQuestions, &stats.CorrectAnswers,
	); err != nil {
		return nil, fmt.Errorf("failed to get answer statistics: %w", err)
	}

	promptQuery := r.db.Rebind(`
		SELECT COUNT(*) AS sent, COUNT(replied_at) AS replied
		FROM email_prompts
		WHERE user_id = ?
	`)
	if err := r.db.QueryRowxContext(ctx, promptQuery, userID).Scan(
		&stats.PromptsSent, &stats.PromptsReplied,
	); err != nil {
		return nil, fmt.Errorf("failed to get prompt statistics: %w", err)
	}

	return &stats, nil
}
