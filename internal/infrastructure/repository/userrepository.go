package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/orris-inc/leasebot/internal/domain/user"
	"github.com/orris-inc/leasebot/internal/infrastructure/persistence/mappers"
	"github.com/orris-inc/leasebot/internal/infrastructure/persistence/models"
	"github.com/orris-inc/leasebot/internal/shared/db"
	"github.com/orris-inc/leasebot/internal/shared/logger"
)

type UserRepositoryImpl struct {
	db     *gorm.DB
	mapper mappers.UserMapper
	logger logger.Interface
}

func NewUserRepository(db *gorm.DB, logger logger.Interface) user.Repository {
	return &UserRepositoryImpl{
		db:     db,
		mapper: mappers.NewUserMapper(),
		logger: logger,
	}
}

func (r *UserRepositoryImpl) Create(ctx context.Context, u *user.User) error {
	model := r.mapper.ToModel(u)
	if err := db.GetTxFromContext(ctx, r.db).Create(model).Error; err != nil {
		r.logger.Errorw("failed to create user", "username", u.LinuxUsername(), "error", err)
		return fmt.Errorf("failed to create user: %w", err)
	}
	u.SetID(model.ID)
	r.logger.Infow("user created", "id", model.ID, "username", model.LinuxUsername)
	return nil
}

func (r *UserRepositoryImpl) Update(ctx context.Context, u *user.User) error {
	model := r.mapper.ToModel(u)
	result := db.GetTxFromContext(ctx, r.db).Save(model)
	if result.Error != nil {
		r.logger.Errorw("failed to update user", "id", u.ID(), "error", result.Error)
		return fmt.Errorf("failed to update user: %w", result.Error)
	}
	return nil
}

func (r *UserRepositoryImpl) GetByID(ctx context.Context, id uint) (*user.User, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *UserRepositoryImpl) GetByUsername(ctx context.Context, username string) (*user.User, error) {
	return r.first(ctx, "linux_username = ?", username)
}

func (r *UserRepositoryImpl) GetByUUID(ctx context.Context, uuid string) (*user.User, error) {
	return r.first(ctx, "uuid = ?", uuid)
}

func (r *UserRepositoryImpl) first(ctx context.Context, query string, arg any) (*user.User, error) {
	var model models.UserModel
	if err := db.GetTxFromContext(ctx, r.db).Where(query, arg).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		r.logger.Errorw("failed to get user", "query", query, "error", err)
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return r.mapper.ToEntity(&model)
}

func (r *UserRepositoryImpl) List(ctx context.Context, filter user.Filter) ([]*user.User, error) {
	query := db.GetTxFromContext(ctx, r.db).Model(&models.UserModel{})
	if !filter.IncludeDeleted {
		query = query.Where("deleted = ?", false)
	}
	if filter.Username != "" {
		query = query.Where("linux_username = ?", filter.Username)
	}

	var ms []*models.UserModel
	if err := query.Order("linux_username ASC").Find(&ms).Error; err != nil {
		r.logger.Errorw("failed to list users", "error", err)
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return r.mapper.ToEntities(ms)
}
