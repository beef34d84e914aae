package notifier

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/quiztube/internal/logger"
	"github.com/example/quiztube/internal/scheduler"
	"github.com/example/quiztube/pkg/models"
)

type recorder struct {
	name string
	got  []int64
}

func (r *recorder) ChannelFor(models.User) string { return r.name }

func (r *recorder) SendPrompt(_ context.Context, user models.User, _ scheduler.PromptMessage) error {
	r.got = append(r.got, user.ID)
	return nil
}

func TestRouterPrefersTelegramWhenLinked(t *testing.T) {
	tg := &recorder{name: "telegram"}
	fb := &recorder{name: "fallback"}
	r := NewRouter(tg, fb)

	chat := int64(9)
	linked := models.User{ID: 1, TelegramChatID: &chat}
	plain := models.User{ID: 2}

	assert.Equal(t, "telegram", r.ChannelFor(linked))
	assert.Equal(t, "fallback", r.ChannelFor(plain))

	require.NoError(t, r.SendPrompt(context.Background(), linked, scheduler.PromptMessage{}))
	require.NoError(t, r.SendPrompt(context.Background(), plain, scheduler.PromptMessage{}))
	assert.Equal(t, []int64{1}, tg.got)
	assert.Equal(t, []int64{2}, fb.got)
}

func TestRouterWithoutTelegram(t *testing.T) {
	r := NewRouter(nil, NewLog(logger.Nop()))
	chat := int64(9)
	user := models.User{ID: 1, TelegramChatID: &chat}

	assert.Equal(t, ChannelLog, r.ChannelFor(user))
	assert.NoError(t, r.SendPrompt(context.Background(), user, scheduler.PromptMessage{PromptID: 3, QuestionText: "q"}))
}
