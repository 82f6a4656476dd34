// Package payment records money moving in or out of a user's account.
package payment

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/orris-inc/leasebot/internal/domain/shared"
)

var (
	ErrInvalidRate   = errors.New("invalid exchange rate")
	ErrZeroAmount    = errors.New("payment amount cannot be zero")
	ErrInvalidUserID = errors.New("user ID is required")
)

// Payment is immutable once created. Credits are positive, debits negative,
// and the amount is always stored in the base currency.
type Payment struct {
	id          uint
	userID      uint
	amount      decimal.Decimal
	currency    shared.Currency
	paymentDate time.Time
	createdAt   time.Time
}

// NewPayment normalizes amount to the base currency. rate is the value of one
// unit of currency in INR and is ignored for INR payments.
func NewPayment(userID uint, amount decimal.Decimal, currency shared.Currency, rate decimal.Decimal, paidAt time.Time) (*Payment, error) {
	if userID == 0 {
		return nil, ErrInvalidUserID
	}
	if amount.IsZero() {
		return nil, ErrZeroAmount
	}
	if !currency.IsValid() {
		return nil, fmt.Errorf("invalid currency: %s", currency)
	}
	if currency != shared.BaseCurrency {
		if !rate.IsPositive() {
			return nil, fmt.Errorf("%w: %s for %s", ErrInvalidRate, rate.String(), currency)
		}
		amount = amount.Mul(rate).Round(2)
	}
	return &Payment{
		userID:      userID,
		amount:      amount,
		currency:    shared.BaseCurrency,
		paymentDate: paidAt.UTC(),
		createdAt:   paidAt.UTC(),
	}, nil
}

// ReconstructPayment rebuilds a Payment from persistence.
func ReconstructPayment(id, userID uint, amount decimal.Decimal, currency shared.Currency, paymentDate, createdAt time.Time) (*Payment, error) {
	if id == 0 {
		return nil, fmt.Errorf("payment ID cannot be zero")
	}
	return &Payment{
		id:          id,
		userID:      userID,
		amount:      amount,
		currency:    currency,
		paymentDate: paymentDate,
		createdAt:   createdAt,
	}, nil
}

func (p *Payment) ID() uint                  { return p.id }
func (p *Payment) UserID() uint              { return p.userID }
func (p *Payment) Amount() decimal.Decimal   { return p.amount }
func (p *Payment) Currency() shared.Currency { return p.currency }
func (p *Payment) PaymentDate() time.Time    { return p.paymentDate }
func (p *Payment) CreatedAt() time.Time      { return p.createdAt }
func (p *Payment) IsCredit() bool            { return p.amount.IsPositive() }
func (p *Payment) IsDebit() bool             { return p.amount.IsNegative() }

// SetID is called by the repository after insert.
func (p *Payment) SetID(id uint) {
	p.id = id
}
