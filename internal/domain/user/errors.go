package user

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	ErrUserNotFound           = errors.New("user not found")
	ErrUserDeleted            = errors.New("user deleted")
	ErrUserExists             = errors.New("user already exists")
	ErrInvalidUsername        = errors.New("invalid linux username")
	ErrInsufficientBalance    = errors.New("insufficient balance")
	ErrInvalidTransactionKind = errors.New("invalid transaction kind")
	ErrInvalidAmount          = errors.New("invalid amount")
)

func errInsufficient(balance, amount decimal.Decimal) error {
	return fmt.Errorf("%w: balance %s, requested %s", ErrInsufficientBalance, balance.StringFixed(2), amount.StringFixed(2))
}
