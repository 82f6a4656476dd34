// Package migration brings the ledger schema up to date.
package migration

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/orris-inc/leasebot/internal/infrastructure/persistence/models"
	"github.com/orris-inc/leasebot/internal/shared/logger"
)

// Strategy applies schema changes for a set of models.
type Strategy interface {
	Migrate(db *gorm.DB, models ...any) error
	GetName() string
}

// GormAutoMigrateStrategy creates missing tables, columns and indexes from the
// model definitions. It never drops anything.
type GormAutoMigrateStrategy struct{}

func NewGormAutoMigrateStrategy() Strategy {
	return &GormAutoMigrateStrategy{}
}

func (s *GormAutoMigrateStrategy) Migrate(db *gorm.DB, models ...any) error {
	return db.AutoMigrate(models...)
}

func (s *GormAutoMigrateStrategy) GetName() string {
	return "gorm_auto_migrate"
}

// Manager runs a migration strategy over the ledger models.
type Manager struct {
	strategy Strategy
	logger   logger.Interface
}

func NewManager(log logger.Interface) *Manager {
	return NewManagerWithStrategy(NewGormAutoMigrateStrategy(), log)
}

func NewManagerWithStrategy(strategy Strategy, log logger.Interface) *Manager {
	return &Manager{strategy: strategy, logger: log}
}

// Migrate migrates every ledger model.
func (m *Manager) Migrate(db *gorm.DB) error {
	all := models.All()
	m.logger.Infow("starting database migration",
		"strategy", m.strategy.GetName(),
		"models_count", len(all))

	if err := m.strategy.Migrate(db, all...); err != nil {
		m.logger.Errorw("migration failed",
			"strategy", m.strategy.GetName(),
			"error", err)
		return fmt.Errorf("migration failed with strategy %s: %w", m.strategy.GetName(), err)
	}

	m.logger.Infow("database migration completed successfully",
		"strategy", m.strategy.GetName())
	return nil
}
