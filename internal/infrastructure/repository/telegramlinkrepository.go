package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/orris-inc/leasebot/internal/domain/telegram"
	"github.com/orris-inc/leasebot/internal/infrastructure/persistence/mappers"
	"github.com/orris-inc/leasebot/internal/infrastructure/persistence/models"
	"github.com/orris-inc/leasebot/internal/shared/db"
	"github.com/orris-inc/leasebot/internal/shared/logger"
)

type TelegramLinkRepositoryImpl struct {
	db     *gorm.DB
	logger logger.Interface
}

func NewTelegramLinkRepository(db *gorm.DB, logger logger.Interface) telegram.Repository {
	return &TelegramLinkRepositoryImpl{db: db, logger: logger}
}

func (r *TelegramLinkRepositoryImpl) Create(ctx context.Context, l *telegram.Link) error {
	model := mappers.TelegramLinkToModel(l)
	if err := db.GetTxFromContext(ctx, r.db).Create(model).Error; err != nil {
		r.logger.Errorw("failed to create telegram link", "tg_user_id", l.TelegramUserID(), "error", err)
		return fmt.Errorf("failed to create telegram link: %w", err)
	}
	l.SetID(model.ID)
	return nil
}

func (r *TelegramLinkRepositoryImpl) Delete(ctx context.Context, id uint) error {
	if err := db.GetTxFromContext(ctx, r.db).Delete(&models.TelegramUserModel{}, id).Error; err != nil {
		r.logger.Errorw("failed to delete telegram link", "id", id, "error", err)
		return fmt.Errorf("failed to delete telegram link: %w", err)
	}
	return nil
}

func (r *TelegramLinkRepositoryImpl) GetByID(ctx context.Context, id uint) (*telegram.Link, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *TelegramLinkRepositoryImpl) GetByTelegramUserID(ctx context.Context, tgUserID int64) (*telegram.Link, error) {
	return r.first(ctx, "tg_user_id = ?", tgUserID)
}

func (r *TelegramLinkRepositoryImpl) GetByUserID(ctx context.Context, userID uint) (*telegram.Link, error) {
	return r.first(ctx, "user_id = ?", userID)
}

func (r *TelegramLinkRepositoryImpl) first(ctx context.Context, query string, arg any) (*telegram.Link, error) {
	var model models.TelegramUserModel
	if err := db.GetTxFromContext(ctx, r.db).Where(query, arg).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		r.logger.Errorw("failed to get telegram link", "query", query, "error", err)
		return nil, fmt.Errorf("failed to get telegram link: %w", err)
	}
	return mappers.TelegramLinkToEntity(&model), nil
}
