// Package user models the billing account behind a provisioned server login.
package user

import (
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var usernamePattern = regexp.MustCompile(`^[a-z_][a-z0-9_-]{0,31}$`)

// TransactionKind selects how ApplyTransaction moves the balance.
type TransactionKind string

const (
	TransactionCredit TransactionKind = "credit"
	TransactionDebit  TransactionKind = "debit"
)

// User is the account aggregate. The balance is only changed through ApplyTransaction.
type User struct {
	id                uint
	linuxUsername     string
	password          string
	uuid              string
	balance           decimal.Decimal
	lastDeductionTime int64
	deleted           bool
	createdAt         time.Time
	updatedAt         time.Time
}

// ValidateUsername checks that name is usable as a linux login.
func ValidateUsername(name string) error {
	if !usernamePattern.MatchString(name) {
		return fmt.Errorf("%w: %q", ErrInvalidUsername, name)
	}
	return nil
}

// NewUser creates an account with a zero balance whose deduction clock starts at now.
func NewUser(linuxUsername, password string, now time.Time) (*User, error) {
	if err := ValidateUsername(linuxUsername); err != nil {
		return nil, err
	}
	if password == "" {
		return nil, fmt.Errorf("password is required")
	}
	return &User{
		linuxUsername:     linuxUsername,
		password:          password,
		uuid:              uuid.NewString(),
		balance:           decimal.Zero,
		lastDeductionTime: now.Unix(),
		createdAt:         now,
		updatedAt:         now,
	}, nil
}

// ReconstructParams carries persisted state.
type ReconstructParams struct {
	ID                uint
	LinuxUsername     string
	Password          string
	UUID              string
	Balance           decimal.Decimal
	LastDeductionTime int64
	Deleted           bool
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// Reconstruct rebuilds a User from persistence.
func Reconstruct(p ReconstructParams) (*User, error) {
	if p.ID == 0 {
		return nil, fmt.Errorf("user ID cannot be zero")
	}
	if p.LinuxUsername == "" {
		return nil, fmt.Errorf("linux username is required")
	}
	return &User{
		id:                p.ID,
		linuxUsername:     p.LinuxUsername,
		password:          p.Password,
		uuid:              p.UUID,
		balance:           p.Balance,
		lastDeductionTime: p.LastDeductionTime,
		deleted:           p.Deleted,
		createdAt:         p.CreatedAt,
		updatedAt:         p.UpdatedAt,
	}, nil
}

func (u *User) ID() uint                 { return u.id }
func (u *User) LinuxUsername() string    { return u.linuxUsername }
func (u *User) Password() string         { return u.password }
func (u *User) UUID() string             { return u.uuid }
func (u *User) Balance() decimal.Decimal { return u.balance }
func (u *User) LastDeductionTime() int64 { return u.lastDeductionTime }
func (u *User) IsDeleted() bool          { return u.deleted }
func (u *User) CreatedAt() time.Time     { return u.createdAt }
func (u *User) UpdatedAt() time.Time     { return u.updatedAt }

// SetID is called by the repository after insert.
func (u *User) SetID(id uint) {
	u.id = id
}

// ApplyTransaction moves the balance. Credits add amount. Debits take a
// non-negative magnitude and fail without mutation when it exceeds the balance.
func (u *User) ApplyTransaction(amount decimal.Decimal, kind TransactionKind) error {
	switch kind {
	case TransactionCredit:
		u.balance = u.balance.Add(amount)
	case TransactionDebit:
		if amount.IsNegative() {
			return fmt.Errorf("%w: debit magnitude %s is negative", ErrInvalidAmount, amount.String())
		}
		if amount.GreaterThan(u.balance) {
			return errInsufficient(u.balance, amount)
		}
		u.balance = u.balance.Sub(amount)
	default:
		return fmt.Errorf("%w: %q", ErrInvalidTransactionKind, kind)
	}
	u.updatedAt = time.Now()
	return nil
}

// Credit adds amount to the balance.
func (u *User) Credit(amount decimal.Decimal) error {
	return u.ApplyTransaction(amount, TransactionCredit)
}

// Debit subtracts the magnitude amount from the balance.
func (u *User) Debit(amount decimal.Decimal) error {
	return u.ApplyTransaction(amount, TransactionDebit)
}

// AdvanceDeduction moves the deduction clock to the given anchor.
func (u *User) AdvanceDeduction(anchor int64) {
	u.lastDeductionTime = anchor
	u.updatedAt = time.Now()
}

// ChangePassword stores the password that provisioning applied to the login.
func (u *User) ChangePassword(password string) {
	u.password = password
	u.updatedAt = time.Now()
}

// RotateUUID issues a new link token.
func (u *User) RotateUUID() {
	u.uuid = uuid.NewString()
	u.updatedAt = time.Now()
}

// MarkDeleted soft-deletes the account.
func (u *User) MarkDeleted() {
	u.deleted = true
	u.updatedAt = time.Now()
}

// Reactivate brings a soft-deleted username back as a fresh account.
func (u *User) Reactivate(password string, now time.Time) error {
	if !u.deleted {
		return fmt.Errorf("%w: %s", ErrUserExists, u.linuxUsername)
	}
	u.password = password
	u.uuid = uuid.NewString()
	u.balance = decimal.Zero
	u.lastDeductionTime = now.Unix()
	u.deleted = false
	u.updatedAt = now
	return nil
}
