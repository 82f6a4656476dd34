package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/orris-inc/leasebot/internal/shared/constants"
)

// UserModel is the persistence form of user.User.
type UserModel struct {
	ID                uint            `gorm:"primarykey"`
	LinuxUsername     string          `gorm:"uniqueIndex;not null;size:32"`
	Password          string          `gorm:"not null;size:128"`
	UUID              string          `gorm:"uniqueIndex;size:36"`
	Balance           decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	LastDeductionTime int64           `gorm:"not null;default:0"`
	Deleted           bool            `gorm:"not null;default:false;index"`
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

func (UserModel) TableName() string {
	return constants.TableUsers
}
