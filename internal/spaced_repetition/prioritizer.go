package spaced_repetition

import (
	"sort"
	"time"

	"github.com/example/quiztube/pkg/models"
)

// Priority weights. Overdue-ness dominates, low mastery comes second and
// historical difficulty breaks ties.
const (
	OverdueWeight    = 3.0
	MasteryWeight    = 2.0
	DifficultyWeight = 1.0

	// neutralCorrectRatio is assumed for topics without answered questions
	neutralCorrectRatio = 0.5
)

// RecommendedAction tells the caller what kind of session suits a topic
type RecommendedAction string

const (
	ActionIntroduce RecommendedAction = "introduce"
	ActionReinforce RecommendedAction = "reinforce"
	ActionReview    RecommendedAction = "review"
)

// PrioritizedTopic is a topic with its computed review urgency
type PrioritizedTopic struct {
	Topic             models.TopicWithStats `json:"topic"`
	Priority          float64               `json:"priority"`
	CorrectRatio      float64               `json:"correct_ratio"`
	Difficulty        float64               `json:"difficulty"`
	OverdueDays       float64               `json:"overdue_days"`
	RecommendedAction RecommendedAction     `json:"recommended_action"`
}

// ScoreTopic computes the priority of a single topic at now
func ScoreTopic(topic models.TopicWithStats, now time.Time) PrioritizedTopic {
	correctRatio := neutralCorrectRatio
	if answered := topic.Answered(); answered > 0 {
		correctRatio = float64(topic.CorrectCount) / float64(answered)
	}
	difficulty := 1 - correctRatio

	overdueDays := now.Sub(topic.NextReviewDate).Hours() / 24
	overdue := overdueDays
	if overdue < 0 {
		overdue = 0
	}

	masteryGap := (100 - topic.MasteryLevel.Value()) / 100

	return PrioritizedTopic{
		Topic:             topic,
		Priority:          overdue*OverdueWeight + masteryGap*MasteryWeight + difficulty*DifficultyWeight,
		CorrectRatio:      correctRatio,
		Difficulty:        difficulty,
		OverdueDays:       overdueDays,
		RecommendedAction: ActionFor(topic.MasteryLevel),
	}
}

// ActionFor maps a mastery level onto the recommended session type.
// Unknown levels are treated as INTRODUCED, as in MasteryLevel.Value.
func ActionFor(level models.MasteryLevel) RecommendedAction {
	switch level {
	case models.MasteryDeveloping, models.MasteryFamiliar:
		return ActionReinforce
	case models.MasteryMastered:
		return ActionReview
	default:
		return ActionIntroduce
	}
}

// PrioritizeTopics ranks topics by descending priority and keeps at most limit of them.
// A limit of zero or less keeps every topic. Topics with equal priority keep their input order.
func PrioritizeTopics(topics []models.TopicWithStats, limit int, now time.Time) []PrioritizedTopic {
	ranked := make([]PrioritizedTopic, 0, len(topics))
	for _, t := range topics {
		ranked = append(ranked, ScoreTopic(t, now))
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Priority > ranked[j].Priority
	})

	if limit > 0 && len(ranked) > limit {
		return ranked[:limit]
	}
	return ranked
}
