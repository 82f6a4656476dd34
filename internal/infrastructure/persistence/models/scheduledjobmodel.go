package models

import (
	"time"

	"gorm.io/datatypes"

	"github.com/orris-inc/leasebot/internal/shared/constants"
)

// ScheduledJobModel is the relational job ledger used when redis is not configured.
type ScheduledJobModel struct {
	JobID        string         `gorm:"primaryKey;size:100"`
	CallbackName string         `gorm:"size:50;not null"`
	Trigger      datatypes.JSON `gorm:"not null"`
	Args         datatypes.JSON
	Category     string `gorm:"size:20;not null;index"`
	RunAt        *int64 `gorm:"index"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (ScheduledJobModel) TableName() string {
	return constants.TableScheduledJobs
}
