package bot

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/example/quiztube/internal/apperr"
)

const (
	callbackAnswerPrefix = "answer_"
	dueListLimit         = 10
)

func answerData(promptID int64, knew bool) string {
	verdict := "0"
	if knew {
		verdict = "1"
	}
	return fmt.Sprintf("%s%d_%s", callbackAnswerPrefix, promptID, verdict)
}

func parseAnswerData(data string) (int64, bool, error) {
	rest, ok := strings.CutPrefix(data, callbackAnswerPrefix)
	if !ok {
		return 0, false, fmt.Errorf("not an answer callback: %q", data)
	}
	idPart, verdict, ok := strings.Cut(rest, "_")
	if !ok || (verdict != "0" && verdict != "1") {
		return 0, false, fmt.Errorf("malformed answer callback: %q", data)
	}
	id, err := strconv.ParseInt(idPart, 10, 64)
	if err != nil {
		return 0, false, fmt.Errorf("invalid prompt ID in callback data: %w", err)
	}
	return id, verdict == "1", nil
}

// HandleCommand handles bot commands
func (b *Bot) HandleCommand(ctx context.Context, message *tgbotapi.Message) error {
	if message == nil || message.Chat == nil {
		return fmt.Errorf("invalid message: required fields are missing")
	}
	switch message.Command() {
	case "start", "help":
		return b.handleStart(message)
	case "due":
		return b.handleDue(ctx, message)
	default:
		return b.sendMessage(tgbotapi.NewMessage(message.Chat.ID, "Unknown command. Use /help to see what I can do."))
	}
}

func (b *Bot) handleStart(message *tgbotapi.Message) error {
	text := "👋 I send you short review questions about the videos you studied.\n\n" +
		"Answer with the buttons under each question and I will plan the next review.\n\n" +
		"/due - topics that need attention\n\n" +
		fmt.Sprintf("Your chat ID is %d. Link it to your account to receive prompts here.", message.Chat.ID)
	return b.sendMessage(tgbotapi.NewMessage(message.Chat.ID, text))
}

func (b *Bot) handleDue(ctx context.Context, message *tgbotapi.Message) error {
	user, err := b.store.GetUserByTelegramChatID(ctx, message.Chat.ID)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return b.sendMessage(tgbotapi.NewMessage(message.Chat.ID, "This chat is not linked to an account yet."))
		}
		return err
	}

	topics, err := b.service.GetPrioritizedTopics(ctx, user.ID, dueListLimit)
	if err != nil {
		return err
	}
	if len(topics) == 0 {
		return b.sendMessage(tgbotapi.NewMessage(message.Chat.ID, "🎉 Nothing to review right now."))
	}

	var sb strings.Builder
	sb.WriteString("📚 Topics to review:\n")
	for i, t := range topics {
		fmt.Fprintf(&sb, "\n%d. %s (%s, %s)", i+1, t.Topic.Name, t.Topic.MasteryLevel, t.RecommendedAction)
	}
	return b.sendMessage(tgbotapi.NewMessage(message.Chat.ID, sb.String()))
}

// HandleCallback handles presses on the answer buttons of a prompt
func (b *Bot) HandleCallback(ctx context.Context, callback *tgbotapi.CallbackQuery) error {
	if callback == nil || callback.Message == nil || callback.Message.Chat == nil {
		return fmt.Errorf("invalid callback data: required fields are missing")
	}

	// Always answer the callback query to remove the loading state
	if _, err := b.api.Request(tgbotapi.NewCallback(callback.ID, "")); err != nil {
		b.log.Warn("failed to answer callback", "error", err)
	}

	chatID := callback.Message.Chat.ID
	promptID, knew, err := parseAnswerData(callback.Data)
	if err != nil {
		_ = b.sendMessage(tgbotapi.NewMessage(chatID, "⚠️ Unknown action"))
		return err
	}

	user, err := b.store.GetUserByTelegramChatID(ctx, chatID)
	if err != nil {
		return err
	}
	prompt, err := b.store.GetEmailPrompt(ctx, promptID)
	if err != nil {
		return err
	}
	if prompt.UserID != user.ID {
		return fmt.Errorf("prompt %d does not belong to user %d", promptID, user.ID)
	}

	response := "didn't know"
	if knew {
		response = "knew it"
	}
	result, err := b.service.RecordPromptReply(ctx, promptID, response, knew)
	if err != nil {
		if apperr.StatusOf(err) == http.StatusBadRequest {
			return b.sendMessage(tgbotapi.NewMessage(chatID, "This question was already answered."))
		}
		_ = b.sendMessage(tgbotapi.NewMessage(chatID, "❌ Something went wrong. Please try again later."))
		return err
	}

	text := fmt.Sprintf("%s\n\nAnswer: %s\n\nNext review in %d day(s).",
		callback.Message.Text, prompt.CorrectAnswer, result.State.ReviewIntervalDays)
	edit := tgbotapi.NewEditMessageText(chatID, callback.Message.MessageID, text)
	return b.sendMessage(edit)
}
