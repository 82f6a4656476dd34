// Package notification describes outbound chat messages and the port that
// delivers them.
package notification

import (
	"context"
	"errors"
)

var ErrNoRecipient = errors.New("notification has no recipient")

// Button is an inline action attached to a message. Data is the callback
// payload the chat client echoes back when pressed. A button with a URL opens
// the link instead.
type Button struct {
	Text string
	Data string
	URL  string
}

// Message is one chat message to one recipient.
type Message struct {
	ChatID  int64
	Text    string
	Buttons []Button
}

func (m Message) Validate() error {
	if m.ChatID == 0 {
		return ErrNoRecipient
	}
	if m.Text == "" {
		return errors.New("notification text is empty")
	}
	return nil
}

// Notifier delivers messages. Callers log failures and carry on.
type Notifier interface {
	Send(ctx context.Context, msg Message) error
}

// Action button payloads.
const (
	ActionExtend = "extend"
	ActionDelete = "delete"
)

// ActionData builds the callback payload "<action>:<username>".
func ActionData(action, username string) string {
	return action + ":" + username
}
