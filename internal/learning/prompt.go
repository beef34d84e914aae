package learning

import (
	"context"
	"fmt"
	"time"

	sr "github.com/example/quiztube/internal/spaced_repetition"
	"github.com/example/quiztube/pkg/models"
)

// DefaultPromptCandidates is how many of the most urgent topics are checked for a question
const DefaultPromptCandidates = 5

// NextPrompt is the question chosen for an outbound prompt
type NextPrompt struct {
	TopicID       int64  `json:"topic_id"`
	TopicName     string `json:"topic_name"`
	QuestionID    int64  `json:"question_id"`
	QuestionText  string `json:"question_text"`
	CorrectAnswer string `json:"-"`
}

// QuestionLookup finds the most recent question of a topic, nil if there is none
type QuestionLookup interface {
	LatestQuestionForTopic(ctx context.Context, topicID int64) (*models.Question, error)
}

// PromptSelector picks the question to send from the most urgent topics
type PromptSelector struct {
	questions  QuestionLookup
	candidates int
}

func NewPromptSelector(questions QuestionLookup, candidates int) *PromptSelector {
	if candidates <= 0 {
		candidates = DefaultPromptCandidates
	}
	return &PromptSelector{questions: questions, candidates: candidates}
}

// Select walks the top candidates in priority order and returns the first one
// that has a question. It returns nil when none of them has any.
func (p *PromptSelector) Select(ctx context.Context, topics []models.TopicWithStats, now time.Time) (*NextPrompt, error) {
	for _, candidate := range sr.PrioritizeTopics(topics, p.candidates, now) {
		q, err := p.questions.LatestQuestionForTopic(ctx, candidate.Topic.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to look up question for topic %d: %w", candidate.Topic.ID, err)
		}
		if q == nil {
			continue
		}
		return &NextPrompt{
			TopicID:       candidate.Topic.ID,
			TopicName:     candidate.Topic.Name,
			QuestionID:    q.ID,
			QuestionText:  q.QuestionText,
			CorrectAnswer: q.CorrectAnswer,
		}, nil
	}
	return nil, nil
}
