package models

import (
	"errors"
	"time"
)

// ErrPromptAnswered is returned when a reply arrives for a prompt that already has one
var ErrPromptAnswered = errors.New("prompt already answered")

// EmailPrompt records one outbound review prompt and the learner's reply
type EmailPrompt struct {
	ID            int64      `json:"id" db:"id"`
	UserID        int64      `json:"user_id" db:"user_id"`
	TopicID       int64      `json:"topic_id" db:"topic_id"`
	QuestionID    *int64     `json:"question_id" db:"question_id"`
	QuestionText  string     `json:"question_text" db:"question_text"`
	CorrectAnswer string     `json:"correct_answer" db:"correct_answer"`
	Channel       string     `json:"channel" db:"channel"`
	SentAt        time.Time  `json:"sent_at" db:"sent_at"`
	RepliedAt     *time.Time `json:"replied_at" db:"replied_at"`
	UserResponse  *string    `json:"user_response" db:"user_response"`
	IsCorrect     *bool      `json:"is_correct" db:"is_correct"`
}
