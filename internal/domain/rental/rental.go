// Package rental owns the lifecycle of a time-bounded account lease.
package rental

import (
	"fmt"
	"math"
	"time"

	"github.com/shopspring/decimal"

	"github.com/orris-inc/leasebot/internal/domain/shared"
)

// Rental is the lease aggregate. Times are epoch seconds.
type Rental struct {
	id                     uint
	userID                 uint
	telegramLinkID         *uint
	startTime              int64
	endTime                int64
	planDuration           int64
	amount                 decimal.Decimal
	currency               shared.Currency
	priceRate              decimal.Decimal
	isActive               bool
	isExpired              bool
	isZombie               bool
	sentExpiryNotification bool
	createdAt              time.Time
	updatedAt              time.Time
}

// NewRental starts an active lease of durationSeconds at start.
func NewRental(userID uint, start time.Time, durationSeconds int64, amount decimal.Decimal, currency shared.Currency, priceRate decimal.Decimal) (*Rental, error) {
	if userID == 0 {
		return nil, fmt.Errorf("user ID is required")
	}
	if durationSeconds < 0 {
		return nil, fmt.Errorf("%w: %d seconds", ErrInvalidDuration, durationSeconds)
	}
	if !currency.IsValid() {
		return nil, fmt.Errorf("invalid currency: %s", currency)
	}
	if priceRate.IsNegative() {
		return nil, fmt.Errorf("price rate cannot be negative")
	}
	return &Rental{
		userID:       userID,
		startTime:    start.Unix(),
		endTime:      start.Unix() + durationSeconds,
		planDuration: durationSeconds,
		amount:       amount,
		currency:     currency,
		priceRate:    priceRate,
		isActive:     true,
		createdAt:    start,
		updatedAt:    start,
	}, nil
}

// ReconstructParams carries persisted state.
type ReconstructParams struct {
	ID                     uint
	UserID                 uint
	TelegramLinkID         *uint
	StartTime              int64
	EndTime                int64
	PlanDuration           int64
	Amount                 decimal.Decimal
	Currency               shared.Currency
	PriceRate              decimal.Decimal
	IsActive               bool
	IsExpired              bool
	IsZombie               bool
	SentExpiryNotification bool
	CreatedAt              time.Time
	UpdatedAt              time.Time
}

// Reconstruct rebuilds a Rental from persistence.
func Reconstruct(p ReconstructParams) (*Rental, error) {
	if p.ID == 0 {
		return nil, fmt.Errorf("rental ID cannot be zero")
	}
	if p.UserID == 0 {
		return nil, fmt.Errorf("user ID is required")
	}
	return &Rental{
		id:                     p.ID,
		userID:                 p.UserID,
		telegramLinkID:         p.TelegramLinkID,
		startTime:              p.StartTime,
		endTime:                p.EndTime,
		planDuration:           p.PlanDuration,
		amount:                 p.Amount,
		currency:               p.Currency,
		priceRate:              p.PriceRate,
		isActive:               p.IsActive,
		isExpired:              p.IsExpired,
		isZombie:               p.IsZombie,
		sentExpiryNotification: p.SentExpiryNotification,
		createdAt:              p.CreatedAt,
		updatedAt:              p.UpdatedAt,
	}, nil
}

func (r *Rental) ID() uint                     { return r.id }
func (r *Rental) UserID() uint                 { return r.userID }
func (r *Rental) TelegramLinkID() *uint        { return r.telegramLinkID }
func (r *Rental) StartTime() int64             { return r.startTime }
func (r *Rental) EndTime() int64               { return r.endTime }
func (r *Rental) PlanDuration() int64          { return r.planDuration }
func (r *Rental) Amount() decimal.Decimal      { return r.amount }
func (r *Rental) Currency() shared.Currency    { return r.currency }
func (r *Rental) PriceRate() decimal.Decimal   { return r.priceRate }
func (r *Rental) IsActive() bool               { return r.isActive }
func (r *Rental) IsExpired() bool              { return r.isExpired }
func (r *Rental) IsZombie() bool               { return r.isZombie }
func (r *Rental) SentExpiryNotification() bool { return r.sentExpiryNotification }
func (r *Rental) CreatedAt() time.Time         { return r.createdAt }
func (r *Rental) UpdatedAt() time.Time         { return r.updatedAt }

// SetID is called by the repository after insert.
func (r *Rental) SetID(id uint) {
	r.id = id
}

// EndAt returns the expiry instant.
func (r *Rental) EndAt() time.Time {
	return time.Unix(r.endTime, 0).UTC()
}

// State derives the lifecycle state from the flags.
func (r *Rental) State() State {
	switch {
	case r.isZombie:
		return StateZombie
	case r.isExpired:
		return StateExpired
	case !r.isActive:
		return StateLapsed
	case r.sentExpiryNotification:
		return StateActiveNotified
	default:
		return StateActive
	}
}

// IsCurrent reports whether the rental still belongs to a live account.
func (r *Rental) IsCurrent() bool {
	return !r.isZombie
}

// IsBillable reports whether the deduction sweep should charge this rental.
func (r *Rental) IsBillable() bool {
	return r.isActive && !r.isExpired && !r.isZombie
}

// RemainingSeconds is the time left at now, negative once past due.
func (r *Rental) RemainingSeconds(now time.Time) int64 {
	return r.endTime - now.Unix()
}

// Extend pushes end_time forward by seconds. A past-due end_time is first
// clamped to now so lapsed time is not credited back. Negative values shorten
// the plan without the bound check Reduce applies.
func (r *Rental) Extend(seconds int64, now time.Time) error {
	if r.isZombie {
		return ErrRentalZombie
	}
	end := max(r.endTime, now.Unix())
	if seconds > 0 && (end > math.MaxInt64-seconds || r.planDuration > math.MaxInt64-seconds) {
		return ErrInvalidDuration
	}
	r.endTime = end + seconds
	r.planDuration += seconds
	r.sentExpiryNotification = false
	r.isExpired = false
	r.updatedAt = now
	return nil
}

// Reduce pulls end_time back by seconds. It refuses to move end_time into
// the past and leaves the rental untouched in that case.
func (r *Rental) Reduce(seconds int64, now time.Time) error {
	if r.isZombie {
		return ErrRentalZombie
	}
	newEnd := r.endTime - seconds
	if newEnd < now.Unix() {
		return fmt.Errorf("%w: %d seconds remaining", ErrReductionExceedsRemainingTime, r.endTime-now.Unix())
	}
	r.endTime = newEnd
	r.planDuration -= seconds
	r.updatedAt = now
	return nil
}

// Expire marks the rental as having run out of time.
func (r *Rental) Expire() error {
	if r.isZombie {
		return errInvalidTransition(r.State(), "expire")
	}
	r.isExpired = true
	r.updatedAt = time.Now()
	return nil
}

// MarkZombie closes the rental for good. Calling it again is a no-op.
func (r *Rental) MarkZombie() {
	if r.isZombie {
		return
	}
	r.isActive = false
	r.isExpired = true
	r.isZombie = true
	r.updatedAt = time.Now()
}

// DeactivateForInsufficientBalance switches the rental off without expiring it.
func (r *Rental) DeactivateForInsufficientBalance() error {
	if r.isZombie {
		return errInvalidTransition(r.State(), "deactivate")
	}
	r.isActive = false
	r.updatedAt = time.Now()
	return nil
}

// MarkNotified records that the pre-expiry notice went out.
func (r *Rental) MarkNotified() error {
	if r.isZombie {
		return errInvalidTransition(r.State(), "notify")
	}
	r.sentExpiryNotification = true
	r.updatedAt = time.Now()
	return nil
}

// LinkTelegram attaches or clears (nil) the chat identity.
func (r *Rental) LinkTelegram(linkID *uint) error {
	if r.isZombie {
		return ErrRentalZombie
	}
	r.telegramLinkID = linkID
	r.updatedAt = time.Now()
	return nil
}
