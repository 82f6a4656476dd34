package models

import (
	"time"

	"github.com/orris-inc/leasebot/internal/shared/constants"
)

type TelegramUserModel struct {
	ID        uint   `gorm:"primarykey"`
	TgUserID  int64  `gorm:"uniqueIndex;not null"`
	UserID    uint   `gorm:"uniqueIndex;not null"`
	Username  string `gorm:"size:64"`
	FirstName string `gorm:"size:128"`
	LastName  string `gorm:"size:128"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (TelegramUserModel) TableName() string {
	return constants.TableTelegramUsers
}
