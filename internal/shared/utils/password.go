package utils

import (
	"crypto/rand"
	"math/big"
	"strings"
)

var (
	passwordAdjectives = []string{
		"crazy", "sunny", "happy", "wild", "quick", "witty", "jolly", "zany",
		"lazy", "sleepy", "dopey", "grumpy", "bashful", "sneezy", "curly",
	}
	passwordNouns = []string{
		"cat", "evening", "river", "breeze", "mountain", "ocean", "sun", "moon",
		"tree", "flower", "star", "space", "forest", "meadow", "rain", "snow", "wind",
	}
)

// GeneratePassword returns an adjective, a noun and four digits, e.g. "sunnyriver4821".
func GeneratePassword() string {
	var b strings.Builder
	b.WriteString(passwordAdjectives[randomIndex(len(passwordAdjectives))])
	b.WriteString(passwordNouns[randomIndex(len(passwordNouns))])
	for range 4 {
		b.WriteByte(byte('0' + randomIndex(10)))
	}
	return b.String()
}

func randomIndex(n int) int {
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		panic("crypto/rand unavailable: " + err.Error())
	}
	return int(v.Int64())
}
