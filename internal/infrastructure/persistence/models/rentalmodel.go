package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/orris-inc/leasebot/internal/shared/constants"
)

// RentalModel is the persistence form of rental.Rental. Times are epoch seconds.
type RentalModel struct {
	ID                     uint            `gorm:"primarykey"`
	UserID                 uint            `gorm:"not null;index:idx_rental_user"`
	TelegramUserID         *uint           `gorm:"index"`
	StartTime              int64           `gorm:"not null"`
	EndTime                int64           `gorm:"not null;index:idx_rental_end"`
	PlanDuration           int64           `gorm:"not null;default:0"`
	Amount                 decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	Currency               string          `gorm:"size:3;not null;default:INR;check:chk_rentals_currency,currency IN ('INR','USD')"`
	PriceRate              decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	IsActive               bool            `gorm:"not null;index:idx_rental_flags,priority:1"`
	IsExpired              bool            `gorm:"not null;default:false;index:idx_rental_flags,priority:2"`
	IsZombie               bool            `gorm:"not null;default:false;index:idx_rental_flags,priority:3"`
	SentExpiryNotification bool            `gorm:"not null;default:false"`
	CreatedAt              time.Time
	UpdatedAt              time.Time
}

func (RentalModel) TableName() string {
	return constants.TableRentals
}
