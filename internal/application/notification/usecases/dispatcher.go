package usecases

import (
	"context"

	"github.com/orris-inc/leasebot/internal/domain/notification"
	"github.com/orris-inc/leasebot/internal/domain/telegram"
	"github.com/orris-inc/leasebot/internal/shared/logger"
)

// Dispatcher resolves recipients and hands messages to the Notifier.
// Delivery failures are logged and never returned.
type Dispatcher struct {
	notifier    notification.Notifier
	links       telegram.Repository
	adminChatID int64
	logger      logger.Interface
}

func NewDispatcher(notifier notification.Notifier, links telegram.Repository, adminChatID int64, logger logger.Interface) *Dispatcher {
	return &Dispatcher{
		notifier:    notifier,
		links:       links,
		adminChatID: adminChatID,
		logger:      logger,
	}
}

// NotifyUser sends compose(greetingName) to the chat linked to userID. It
// reports whether a linked chat was found and the send succeeded.
func (d *Dispatcher) NotifyUser(ctx context.Context, userID uint, compose func(name string) string, buttons ...notification.Button) bool {
	if d == nil || d.notifier == nil {
		return false
	}
	link, err := d.links.GetByUserID(ctx, userID)
	if err != nil {
		d.logger.Warnw("failed to resolve telegram link", "user_id", userID, "error", err)
		return false
	}
	if link == nil {
		d.logger.Debugw("user has no linked chat", "user_id", userID)
		return false
	}
	return d.send(ctx, notification.Message{
		ChatID:  link.TelegramUserID(),
		Text:    compose(link.GreetingName()),
		Buttons: buttons,
	})
}

// NotifyAdmin sends text to the configured admin chat.
func (d *Dispatcher) NotifyAdmin(ctx context.Context, text string, buttons ...notification.Button) bool {
	if d == nil || d.notifier == nil || d.adminChatID == 0 {
		return false
	}
	return d.send(ctx, notification.Message{ChatID: d.adminChatID, Text: text, Buttons: buttons})
}

func (d *Dispatcher) send(ctx context.Context, msg notification.Message) bool {
	if err := d.notifier.Send(ctx, msg); err != nil {
		d.logger.Errorw("failed to deliver notification",
			"chat_id", msg.ChatID,
			"error", err,
		)
		return false
	}
	return true
}
