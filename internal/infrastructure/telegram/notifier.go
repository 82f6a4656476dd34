// Package telegram delivers notifications through the Telegram Bot API and
// serves the chat commands used by the admin and linked users.
package telegram

import (
	"context"
	"fmt"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/orris-inc/leasebot/internal/domain/notification"
	"github.com/orris-inc/leasebot/internal/shared/logger"
)

// maxFloodWait bounds how long Send sleeps on a 429 before giving up.
const maxFloodWait = 10 * time.Second

// Sender is the part of *tgbotapi.BotAPI used for outbound calls.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// Notifier implements notification.Notifier on top of the Bot API.
type Notifier struct {
	api    Sender
	logger logger.Interface
}

var _ notification.Notifier = (*Notifier)(nil)

func NewNotifier(api Sender, logger logger.Interface) *Notifier {
	return &Notifier{api: api, logger: logger}
}

// Send delivers msg as HTML. Long texts are split and the buttons ride on the
// last chunk.
func (n *Notifier) Send(ctx context.Context, msg notification.Message) error {
	if err := msg.Validate(); err != nil {
		return err
	}

	chunks := splitMessage(msg.Text, maxMessageLength)
	for i, chunk := range chunks {
		out := tgbotapi.NewMessage(msg.ChatID, chunk)
		out.ParseMode = tgbotapi.ModeHTML
		out.DisableWebPagePreview = true
		if i == len(chunks)-1 && len(msg.Buttons) > 0 {
			out.ReplyMarkup = inlineKeyboard(msg.Buttons)
		}
		if err := n.send(ctx, out); err != nil {
			if IsBotBlocked(err) {
				n.logger.Warnw("telegram recipient blocked the bot", "chat_id", msg.ChatID)
			}
			return fmt.Errorf("failed to send telegram message to %d: %w", msg.ChatID, err)
		}
	}
	return nil
}

// send retries once when Telegram asks for a short flood wait.
func (n *Notifier) send(ctx context.Context, c tgbotapi.Chattable) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := n.api.Send(c)
	wait := time.Duration(RetryAfter(err)) * time.Second
	if wait == 0 || wait > maxFloodWait {
		return err
	}

	n.logger.Warnw("telegram flood wait", "retry_after", wait.String())
	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
	}
	_, err = n.api.Send(c)
	return err
}

func inlineKeyboard(buttons []notification.Button) tgbotapi.InlineKeyboardMarkup {
	row := make([]tgbotapi.InlineKeyboardButton, 0, len(buttons))
	for _, b := range buttons {
		if b.URL != "" {
			row = append(row, tgbotapi.NewInlineKeyboardButtonURL(b.Text, b.URL))
			continue
		}
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(b.Text, b.Data))
	}
	return tgbotapi.NewInlineKeyboardMarkup(row)
}
