package telegram

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orris-inc/leasebot/internal/domain/notification"
	"github.com/orris-inc/leasebot/internal/shared/logger"
)

type fakeAPI struct {
	mu       sync.Mutex
	sent     []tgbotapi.MessageConfig
	answered []string
	sendErrs []error
	calls    int
	updates  chan tgbotapi.Update
	polled   tgbotapi.UpdateConfig
	stopped  bool
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{updates: make(chan tgbotapi.Update)}
}

func (f *fakeAPI) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if len(f.sendErrs) > 0 {
		err := f.sendErrs[0]
		f.sendErrs = f.sendErrs[1:]
		if err != nil {
			return tgbotapi.Message{}, err
		}
	}
	if m, ok := c.(tgbotapi.MessageConfig); ok {
		f.sent = append(f.sent, m)
	}
	return tgbotapi.Message{}, nil
}

func (f *fakeAPI) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if cb, ok := c.(tgbotapi.CallbackConfig); ok {
		f.answered = append(f.answered, cb.CallbackQueryID)
	}
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (f *fakeAPI) GetUpdatesChan(cfg tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.polled = cfg
	return f.updates
}

func (f *fakeAPI) StopReceivingUpdates() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stopped = true
}

func (f *fakeAPI) messages() []tgbotapi.MessageConfig {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]tgbotapi.MessageConfig(nil), f.sent...)
}

func (f *fakeAPI) last(t *testing.T) tgbotapi.MessageConfig {
	t.Helper()
	msgs := f.messages()
	require.NotEmpty(t, msgs)
	return msgs[len(msgs)-1]
}

func TestNotifier_SendsHTMLWithButtons(t *testing.T) {
	api := newFakeAPI()
	n := NewNotifier(api, logger.NewNopLogger())

	err := n.Send(context.Background(), notification.Message{
		ChatID:  42,
		Text:    "<b>hi</b>",
		Buttons: []notification.Button{{Text: "Extend", Data: "extend:alice"}, {Text: "Delete", Data: "delete:alice"}},
	})
	require.NoError(t, err)

	msg := api.last(t)
	assert.Equal(t, int64(42), msg.ChatID)
	assert.Equal(t, tgbotapi.ModeHTML, msg.ParseMode)
	assert.Equal(t, "<b>hi</b>", msg.Text)
	kb, ok := msg.ReplyMarkup.(tgbotapi.InlineKeyboardMarkup)
	require.True(t, ok)
	require.Len(t, kb.InlineKeyboard, 1)
	require.Len(t, kb.InlineKeyboard[0], 2)
	require.NotNil(t, kb.InlineKeyboard[0][1].CallbackData)
	assert.Equal(t, "delete:alice", *kb.InlineKeyboard[0][1].CallbackData)
}

func TestNotifier_SplitsLongTextAndKeepsButtonsOnLastChunk(t *testing.T) {
	api := newFakeAPI()
	n := NewNotifier(api, logger.NewNopLogger())
	line := strings.Repeat("x", 99) + "\n"

	err := n.Send(context.Background(), notification.Message{
		ChatID:  1,
		Text:    strings.Repeat(line, 50),
		Buttons: []notification.Button{{Text: "Extend", Data: "extend:bob"}},
	})
	require.NoError(t, err)

	msgs := api.messages()
	require.Len(t, msgs, 2)
	assert.Nil(t, msgs[0].ReplyMarkup)
	assert.NotNil(t, msgs[1].ReplyMarkup)
	assert.Equal(t, strings.Repeat(line, 50), msgs[0].Text+msgs[1].Text)
}

func TestNotifier_RejectsInvalidMessage(t *testing.T) {
	api := newFakeAPI()
	n := NewNotifier(api, logger.NewNopLogger())

	err := n.Send(context.Background(), notification.Message{Text: "hi"})
	assert.ErrorIs(t, err, notification.ErrNoRecipient)
	assert.Zero(t, api.calls)
}

func TestNotifier_RetriesShortFloodWait(t *testing.T) {
	api := newFakeAPI()
	api.sendErrs = []error{&tgbotapi.Error{Code: 429, Message: "Too Many Requests", ResponseParameters: tgbotapi.ResponseParameters{RetryAfter: 1}}}
	n := NewNotifier(api, logger.NewNopLogger())

	require.NoError(t, n.Send(context.Background(), notification.Message{ChatID: 1, Text: "hi"}))
	assert.Equal(t, 2, api.calls)
	assert.Len(t, api.messages(), 1)
}

func TestNotifier_GivesUpOnLongFloodWait(t *testing.T) {
	api := newFakeAPI()
	api.sendErrs = []error{&tgbotapi.Error{Code: 429, ResponseParameters: tgbotapi.ResponseParameters{RetryAfter: 600}}}
	n := NewNotifier(api, logger.NewNopLogger())

	err := n.Send(context.Background(), notification.Message{ChatID: 1, Text: "hi"})
	require.Error(t, err)
	assert.Equal(t, 600, RetryAfter(err))
	assert.Equal(t, 1, api.calls)
}

func TestErrorClassification(t *testing.T) {
	blocked := &tgbotapi.Error{Code: 403, Message: "Forbidden: bot was blocked by the user"}
	assert.True(t, IsBotBlocked(blocked))
	assert.True(t, IsBotBlocked(errors.Join(errors.New("send"), blocked)))
	assert.False(t, IsBotBlocked(errors.New("network")))
	assert.Zero(t, RetryAfter(blocked))
}
