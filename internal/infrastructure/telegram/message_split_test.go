package telegram

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestSplitMessage(t *testing.T) {
	t.Run("short text is one chunk", func(t *testing.T) {
		assert.Equal(t, []string{"hello"}, splitMessage("hello", 10))
	})

	t.Run("empty text is one empty chunk", func(t *testing.T) {
		assert.Equal(t, []string{""}, splitMessage("", 10))
	})

	t.Run("prefers paragraph break", func(t *testing.T) {
		got := splitMessage("aaaa\n\nbbbb\ncc", 10)
		assert.Equal(t, []string{"aaaa\n\n", "bbbb\ncc"}, got)
	})

	t.Run("falls back to line break", func(t *testing.T) {
		got := splitMessage("aaaa\nbbbbbbbb", 10)
		assert.Equal(t, []string{"aaaa\n", "bbbbbbbb"}, got)
	})

	t.Run("hard cut on rune boundary", func(t *testing.T) {
		text := strings.Repeat("é", 25)
		got := splitMessage(text, 10)
		assert.Len(t, got, 3)
		for _, c := range got {
			assert.True(t, utf8.ValidString(c))
			assert.LessOrEqual(t, utf8.RuneCountInString(c), 10)
		}
		assert.Equal(t, text, strings.Join(got, ""))
	})

	t.Run("non-positive limit uses the api maximum", func(t *testing.T) {
		assert.Len(t, splitMessage(strings.Repeat("a", maxMessageLength+1), 0), 2)
	})
}
