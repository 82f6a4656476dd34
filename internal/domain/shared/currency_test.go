package shared

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCurrency(t *testing.T) {
	c, err := ParseCurrency("usd")
	require.NoError(t, err)
	assert.Equal(t, CurrencyUSD, c)

	c, err = ParseCurrency("")
	require.NoError(t, err)
	assert.Equal(t, CurrencyINR, c)

	_, err = ParseCurrency("EUR")
	assert.Error(t, err)
}
