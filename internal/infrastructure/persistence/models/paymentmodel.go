package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/orris-inc/leasebot/internal/shared/constants"
)

// PaymentModel is append-only; rows are never updated.
type PaymentModel struct {
	ID          uint            `gorm:"primarykey"`
	UserID      uint            `gorm:"not null;index"`
	Amount      decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Currency    string          `gorm:"size:3;not null;default:INR;check:chk_payments_currency,currency IN ('INR','USD')"`
	PaymentDate time.Time       `gorm:"not null;index"`
	CreatedAt   time.Time
}

func (PaymentModel) TableName() string {
	return constants.TablePayments
}
