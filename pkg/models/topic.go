package models

import "time"

// Topic represents a unit of learned material extracted from a lesson
type Topic struct {
	ID                 int64        `json:"id" db:"id"`
	UserID             int64        `json:"user_id" db:"user_id"`
	LessonID           int64        `json:"lesson_id" db:"lesson_id"`
	Name               string       `json:"name" db:"name"`
	Description        string       `json:"description" db:"description"`
	EaseFactor         float64      `json:"ease_factor" db:"ease_factor"`
	ReviewIntervalDays int          `json:"review_interval_days" db:"review_interval_days"`
	ReviewCount        int          `json:"review_count" db:"review_count"`
	LastReviewedAt     *time.Time   `json:"last_reviewed_at" db:"last_reviewed_at"`
	NextReviewDate     time.Time    `json:"next_review_date" db:"next_review_date"`
	MasteryLevel       MasteryLevel `json:"mastery_level" db:"mastery_level"`
	CreatedAt          time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt          time.Time    `json:"updated_at" db:"updated_at"`
}

// Default scheduling values for a freshly generated topic
const (
	DefaultEaseFactor         = 2.5
	DefaultReviewIntervalDays = 1
)

// TopicSchedulingState is the subset of a topic mutated by the review scheduler
type TopicSchedulingState struct {
	EaseFactor         float64      `json:"ease_factor" db:"ease_factor"`
	ReviewIntervalDays int          `json:"review_interval_days" db:"review_interval_days"`
	ReviewCount        int          `json:"review_count" db:"review_count"`
	LastReviewedAt     *time.Time   `json:"last_reviewed_at" db:"last_reviewed_at"`
	NextReviewDate     time.Time    `json:"next_review_date" db:"next_review_date"`
	MasteryLevel       MasteryLevel `json:"mastery_level" db:"mastery_level"`
}

// NewSchedulingState returns the state of a topic that has never been reviewed
func NewSchedulingState(now time.Time) TopicSchedulingState {
	return TopicSchedulingState{
		EaseFactor:         DefaultEaseFactor,
		ReviewIntervalDays: DefaultReviewIntervalDays,
		ReviewCount:        0,
		NextReviewDate:     now,
		MasteryLevel:       MasteryIntroduced,
	}
}

// SchedulingState extracts the scheduling fields of the topic
func (t *Topic) SchedulingState() TopicSchedulingState {
	return TopicSchedulingState{
		EaseFactor:         t.EaseFactor,
		ReviewIntervalDays: t.ReviewIntervalDays,
		ReviewCount:        t.ReviewCount,
		LastReviewedAt:     t.LastReviewedAt,
		NextReviewDate:     t.NextReviewDate,
		MasteryLevel:       t.MasteryLevel,
	}
}

// ApplySchedulingState copies the scheduling fields onto the topic
func (t *Topic) ApplySchedulingState(s TopicSchedulingState) {
	t.EaseFactor = s.EaseFactor
	t.ReviewIntervalDays = s.ReviewIntervalDays
	t.ReviewCount = s.ReviewCount
	t.LastReviewedAt = s.LastReviewedAt
	t.NextReviewDate = s.NextReviewDate
	t.MasteryLevel = s.MasteryLevel
}

// TopicWithStats is a topic together with the correctness counts of its answered questions
type TopicWithStats struct {
	Topic
	CorrectCount   int `json:"correct_count" db:"correct_count"`
	IncorrectCount int `json:"incorrect_count" db:"incorrect_count"`
	QuestionCount  int `json:"question_count" db:"question_count"`
}

// Answered returns how many questions of the topic have been answered
func (t TopicWithStats) Answered() int {
	return t.CorrectCount + t.IncorrectCount
}
