// Package notifier holds prompt delivery channels that need no external service
// and the router that picks a channel per user.
package notifier

import (
	"context"

	"github.com/example/quiztube/internal/logger"
	"github.com/example/quiztube/internal/scheduler"
	"github.com/example/quiztube/pkg/models"
)

// ChannelLog is the channel name stored on prompts that were only logged
const ChannelLog = "log"

// Log writes prompts to the logger instead of delivering them
type Log struct {
	log *logger.Logger
}

func NewLog(log *logger.Logger) *Log {
	return &Log{log: log}
}

func (l *Log) ChannelFor(models.User) string {
	return ChannelLog
}

func (l *Log) SendPrompt(_ context.Context, user models.User, msg scheduler.PromptMessage) error {
	l.log.Info("review prompt",
		"user_id", user.ID,
		"email", user.Email,
		"prompt_id", msg.PromptID,
		"topic", msg.TopicName,
		"question", msg.QuestionText,
	)
	return nil
}

// Router sends through Telegram when the user has a linked chat and falls back otherwise
type Router struct {
	telegram scheduler.Notifier
	fallback scheduler.Notifier
}

// NewRouter builds a router; a nil telegram notifier routes everything to fallback
func NewRouter(telegram, fallback scheduler.Notifier) *Router {
	return &Router{telegram: telegram, fallback: fallback}
}

func (r *Router) pick(user models.User) scheduler.Notifier {
	if r.telegram != nil && user.TelegramChatID != nil {
		return r.telegram
	}
	return r.fallback
}

func (r *Router) ChannelFor(user models.User) string {
	return r.pick(user).ChannelFor(user)
}

func (r *Router) SendPrompt(ctx context.Context, user models.User, msg scheduler.PromptMessage) error {
	return r.pick(user).SendPrompt(ctx, user, msg)
}
