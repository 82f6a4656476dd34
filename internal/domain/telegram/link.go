// Package telegram associates a chat identity with a user account.
package telegram

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrLinkNotFound      = errors.New("telegram link not found")
	ErrUserAlreadyLinked = errors.New("user already linked to a telegram account")
	ErrChatAlreadyLinked = errors.New("telegram account already linked to another user")
)

// Link maps one chat identity to one user. Name fields are a display cache.
type Link struct {
	id        uint
	tgUserID  int64
	userID    uint
	username  string
	firstName string
	lastName  string
	createdAt time.Time
}

func NewLink(tgUserID int64, userID uint, username, firstName, lastName string) (*Link, error) {
	if tgUserID == 0 {
		return nil, fmt.Errorf("telegram user ID is required")
	}
	if userID == 0 {
		return nil, fmt.Errorf("user ID is required")
	}
	return &Link{
		tgUserID:  tgUserID,
		userID:    userID,
		username:  strings.TrimPrefix(username, "@"),
		firstName: firstName,
		lastName:  lastName,
		createdAt: time.Now().UTC(),
	}, nil
}

func ReconstructLink(id uint, tgUserID int64, userID uint, username, firstName, lastName string, createdAt time.Time) *Link {
	return &Link{
		id:        id,
		tgUserID:  tgUserID,
		userID:    userID,
		username:  username,
		firstName: firstName,
		lastName:  lastName,
		createdAt: createdAt,
	}
}

func (l *Link) ID() uint              { return l.id }
func (l *Link) TelegramUserID() int64 { return l.tgUserID }
func (l *Link) UserID() uint          { return l.userID }
func (l *Link) Username() string      { return l.username }
func (l *Link) FirstName() string     { return l.firstName }
func (l *Link) LastName() string      { return l.lastName }
func (l *Link) CreatedAt() time.Time  { return l.createdAt }

func (l *Link) SetID(id uint) {
	l.id = id
}

// DisplayName prefers the @username and falls back to the full name.
func (l *Link) DisplayName() string {
	if l.username != "" {
		return "@" + l.username
	}
	return strings.TrimSpace(l.firstName + " " + l.lastName)
}

// GreetingName is the name used to address the user in messages.
func (l *Link) GreetingName() string {
	if l.firstName != "" {
		return l.firstName
	}
	if l.username != "" {
		return "@" + l.username
	}
	return "there"
}

// ProfileURL links to the chat profile.
func (l *Link) ProfileURL() string {
	if l.username != "" {
		return "https://t.me/" + l.username
	}
	return fmt.Sprintf("tg://user?id=%d", l.tgUserID)
}
