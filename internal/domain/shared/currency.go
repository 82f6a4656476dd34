// Package shared holds value types used by more than one aggregate.
package shared

import (
	"fmt"
	"strings"
)

// Currency is an ISO code accepted for rental prices and payments.
type Currency string

const (
	CurrencyINR Currency = "INR"
	CurrencyUSD Currency = "USD"
)

// BaseCurrency is the currency balances are kept in.
const BaseCurrency = CurrencyINR

func (c Currency) String() string {
	return string(c)
}

func (c Currency) IsValid() bool {
	return c == CurrencyINR || c == CurrencyUSD
}

// ParseCurrency accepts any casing and defaults to INR when empty.
func ParseCurrency(s string) (Currency, error) {
	if strings.TrimSpace(s) == "" {
		return BaseCurrency, nil
	}
	c := Currency(strings.ToUpper(strings.TrimSpace(s)))
	if !c.IsValid() {
		return "", fmt.Errorf("unsupported currency %q", s)
	}
	return c, nil
}
