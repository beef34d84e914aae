package models

import "time"

// Question is a quiz question attached to a topic.
// IsCorrect is nil while the question is unanswered.
type Question struct {
	ID            int64     `json:"id" db:"id"`
	TopicID       int64     `json:"topic_id" db:"topic_id"`
	QuestionText  string    `json:"question_text" db:"question_text"`
	CorrectAnswer string    `json:"correct_answer" db:"correct_answer"`
	Explanation   string    `json:"explanation" db:"explanation"`
	UserAnswer    *string   `json:"user_answer" db:"user_answer"`
	IsCorrect     *bool     `json:"is_correct" db:"is_correct"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
}
