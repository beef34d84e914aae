package bot

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/example/quiztube/internal/learning"
	"github.com/example/quiztube/internal/logger"
	"github.com/example/quiztube/internal/scheduler"
	sr "github.com/example/quiztube/internal/spaced_repetition"
	"github.com/example/quiztube/pkg/models"
)

// ChannelTelegram is the channel name stored on prompts sent by the bot
const ChannelTelegram = "telegram"

// MenuButton represents a button in an inline keyboard
type MenuButton struct {
	Text         string
	CallbackData string
}

// createKeyboard creates a keyboard from menu buttons
func createKeyboard(buttons [][]MenuButton) tgbotapi.InlineKeyboardMarkup {
	var keyboard [][]tgbotapi.InlineKeyboardButton
	for _, row := range buttons {
		var keyboardRow []tgbotapi.InlineKeyboardButton
		for _, button := range row {
			keyboardRow = append(keyboardRow, tgbotapi.NewInlineKeyboardButtonData(button.Text, button.CallbackData))
		}
		keyboard = append(keyboard, keyboardRow)
	}
	return tgbotapi.NewInlineKeyboardMarkup(keyboard...)
}

// api is the part of tgbotapi.BotAPI the bot uses
type api interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// Service is the learning functionality reachable from chat
type Service interface {
	RecordPromptReply(ctx context.Context, promptID int64, response string, isCorrect bool) (learning.ReviewResult, error)
	GetPrioritizedTopics(ctx context.Context, userID int64, limit int) ([]sr.PrioritizedTopic, error)
}

// Store resolves chats to users and prompts to their owners
type Store interface {
	GetUserByTelegramChatID(ctx context.Context, chatID int64) (*models.User, error)
	GetEmailPrompt(ctx context.Context, promptID int64) (*models.EmailPrompt, error)
}

// Bot delivers review prompts over Telegram and turns button presses into reviews
type Bot struct {
	api     api
	client  *tgbotapi.BotAPI
	service Service
	store   Store
	log     *logger.Logger
}

// New connects to the Telegram Bot API with the given token
func New(token string, service Service, store Store, log *logger.Logger) (*Bot, error) {
	if token == "" {
		return nil, fmt.Errorf("telegram bot token is not set")
	}
	botAPI, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("unable to create bot: %w", err)
	}
	log.Info("authorized on telegram", "account", botAPI.Self.UserName)

	b := newBot(botAPI, service, store, log)
	b.client = botAPI
	return b, nil
}

func newBot(a api, service Service, store Store, log *logger.Logger) *Bot {
	return &Bot{api: a, service: service, store: store, log: log}
}

// Start polls for updates and handles them until ctx is cancelled
func (b *Bot) Start(ctx context.Context) error {
	if b.client == nil {
		return fmt.Errorf("bot is not connected")
	}

	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 60
	updates := b.client.GetUpdatesChan(updateConfig)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			b.handleUpdate(ctx, update)
		}
	}
}

// Stop stops polling for updates
func (b *Bot) Stop() {
	if b.client != nil {
		b.client.StopReceivingUpdates()
	}
	b.log.Info("bot stopped")
}

// ChannelFor implements scheduler.Notifier
func (b *Bot) ChannelFor(models.User) string {
	return ChannelTelegram
}

// SendPrompt implements scheduler.Notifier
func (b *Bot) SendPrompt(_ context.Context, user models.User, msg scheduler.PromptMessage) error {
	if user.TelegramChatID == nil {
		return fmt.Errorf("user %d has no telegram chat", user.ID)
	}

	message := tgbotapi.NewMessage(*user.TelegramChatID, formatPrompt(msg))
	message.ReplyMarkup = createKeyboard([][]MenuButton{{
		{Text: "✅ I knew it", CallbackData: answerData(msg.PromptID, true)},
		{Text: "❌ I didn't", CallbackData: answerData(msg.PromptID, false)},
	}})
	if _, err := b.api.Send(message); err != nil {
		return fmt.Errorf("failed to send telegram message: %w", err)
	}
	return nil
}

func formatPrompt(msg scheduler.PromptMessage) string {
	var sb strings.Builder
	sb.WriteString("🧠 Time for a quick review\n\n")
	if msg.TopicName != "" {
		sb.WriteString("Topic: ")
		sb.WriteString(msg.TopicName)
		sb.WriteString("\n\n")
	}
	sb.WriteString(msg.QuestionText)
	return sb.String()
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	var err error
	switch {
	case update.CallbackQuery != nil:
		err = b.HandleCallback(ctx, update.CallbackQuery)
	case update.Message != nil && update.Message.IsCommand():
		err = b.HandleCommand(ctx, update.Message)
	}
	if err != nil {
		b.log.Warn("failed to handle telegram update", "update_id", update.UpdateID, "error", err)
	}
}

func (b *Bot) sendMessage(msg tgbotapi.Chattable) error {
	if _, err := b.api.Send(msg); err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}
	return nil
}
