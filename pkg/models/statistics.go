package models

// Statistics summarizes a user's learning progress
type Statistics struct {
	UserID            int64                `json:"user_id" db:"user_id"`
	TotalTopics       int                  `json:"total_topics" db:"total_topics"`
	DueTopics         int                  `json:"due_topics" db:"due_topics"`
	TotalReviews      int                  `json:"total_reviews" db:"total_reviews"`
	AnsweredQuestions int                  `json:"answered_questions" db:"answered_questions"`
	CorrectAnswers    int                  `json:"correct_answers" db:"correct_answers"`
	PromptsSent       int                  `json:"prompts_sent" db:"prompts_sent"`
	PromptsReplied    int                  `json:"prompts_replied" db:"prompts_replied"`
	ByMastery         map[MasteryLevel]int `json:"by_mastery" db:"-"`
}

// Accuracy is the share of answered questions that were correct, 0 when nothing was answered
func (s Statistics) Accuracy() float64 {
	if s.AnsweredQuestions == 0 {
		return 0
	}
	return float64(s.CorrectAnswers) / float64(s.AnsweredQuestions)
}
