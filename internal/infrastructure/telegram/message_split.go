package telegram

import (
	"strings"
	"unicode/utf8"
)

// maxMessageLength is the Bot API text limit, counted in runes.
const maxMessageLength = 4096

// splitMessage cuts text into chunks of at most limit runes. Cuts prefer a
// blank line, then a line break, so tags that open and close on one line
// stay balanced.
func splitMessage(text string, limit int) []string {
	if limit <= 0 {
		limit = maxMessageLength
	}

	var chunks []string
	for utf8.RuneCountInString(text) > limit {
		end := byteOffset(text, limit)
		cut := end
		if i := strings.LastIndex(text[:end], "\n\n"); i > 0 {
			cut = i + 2
		} else if i := strings.LastIndex(text[:end], "\n"); i > 0 {
			cut = i + 1
		}
		chunks = append(chunks, text[:cut])
		text = text[cut:]
	}
	if text != "" || len(chunks) == 0 {
		chunks = append(chunks, text)
	}
	return chunks
}

// byteOffset returns the byte index of rune n in s, or len(s).
func byteOffset(s string, n int) int {
	for i := range s {
		if n == 0 {
			return i
		}
		n--
	}
	return len(s)
}
