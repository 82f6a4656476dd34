package telegram

import (
	"errors"
	"net/http"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func apiError(err error) (*tgbotapi.Error, bool) {
	var apiErr *tgbotapi.Error
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// IsBotBlocked reports whether the recipient blocked the bot or never started it.
func IsBotBlocked(err error) bool {
	apiErr, ok := apiError(err)
	return ok && apiErr.Code == http.StatusForbidden
}

// RetryAfter returns the flood-wait in seconds carried by a 429 response, or 0.
func RetryAfter(err error) int {
	apiErr, ok := apiError(err)
	if !ok || apiErr.Code != http.StatusTooManyRequests {
		return 0
	}
	return apiErr.RetryAfter
}
