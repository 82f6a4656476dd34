package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/orris-inc/leasebot/internal/domain/rental"
	"github.com/orris-inc/leasebot/internal/domain/user"
	"github.com/orris-inc/leasebot/internal/infrastructure/persistence/mappers"
	"github.com/orris-inc/leasebot/internal/infrastructure/persistence/models"
	"github.com/orris-inc/leasebot/internal/shared/db"
	"github.com/orris-inc/leasebot/internal/shared/logger"
)

type RentalRepositoryImpl struct {
	db         *gorm.DB
	mapper     mappers.RentalMapper
	userMapper mappers.UserMapper
	logger     logger.Interface
}

func NewRentalRepository(db *gorm.DB, logger logger.Interface) rental.Repository {
	return &RentalRepositoryImpl{
		db:         db,
		mapper:     mappers.NewRentalMapper(),
		userMapper: mappers.NewUserMapper(),
		logger:     logger,
	}
}

func (r *RentalRepositoryImpl) Create(ctx context.Context, entity *rental.Rental) error {
	model := r.mapper.ToModel(entity)
	if err := db.GetTxFromContext(ctx, r.db).Create(model).Error; err != nil {
		r.logger.Errorw("failed to create rental", "user_id", entity.UserID(), "error", err)
		return fmt.Errorf("failed to create rental: %w", err)
	}
	entity.SetID(model.ID)
	r.logger.Infow("rental created", "id", model.ID, "user_id", model.UserID, "end_time", model.EndTime)
	return nil
}

func (r *RentalRepositoryImpl) Update(ctx context.Context, entity *rental.Rental) error {
	model := r.mapper.ToModel(entity)
	if err := db.GetTxFromContext(ctx, r.db).Save(model).Error; err != nil {
		r.logger.Errorw("failed to update rental", "id", entity.ID(), "error", err)
		return fmt.Errorf("failed to update rental: %w", err)
	}
	return nil
}

func (r *RentalRepositoryImpl) GetByID(ctx context.Context, id uint) (*rental.Rental, error) {
	var model models.RentalModel
	if err := db.GetTxFromContext(ctx, r.db).First(&model, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		r.logger.Errorw("failed to get rental by ID", "id", id, "error", err)
		return nil, fmt.Errorf("failed to get rental: %w", err)
	}
	return r.mapper.ToEntity(&model)
}

func (r *RentalRepositoryImpl) GetCurrentByUserID(ctx context.Context, userID uint) (*rental.Rental, error) {
	var model models.RentalModel
	err := db.GetTxFromContext(ctx, r.db).
		Where("user_id = ? AND is_zombie = ?", userID, false).
		Order("id DESC").
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		r.logger.Errorw("failed to get current rental", "user_id", userID, "error", err)
		return nil, fmt.Errorf("failed to get current rental: %w", err)
	}
	return r.mapper.ToEntity(&model)
}

func (r *RentalRepositoryImpl) List(ctx context.Context, filter rental.Filter) ([]*rental.Rental, error) {
	var ms []*models.RentalModel
	if err := r.applyFilter(ctx, filter).Order("id ASC").Find(&ms).Error; err != nil {
		r.logger.Errorw("failed to list rentals", "error", err)
		return nil, fmt.Errorf("failed to list rentals: %w", err)
	}
	return r.mapper.ToEntities(ms)
}

// ListWithOwners loads the rentals, then their owners in one IN query.
func (r *RentalRepositoryImpl) ListWithOwners(ctx context.Context, filter rental.Filter) ([]rental.Ownership, error) {
	rentals, err := r.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	if len(rentals) == 0 {
		return nil, nil
	}

	ids := make([]uint, 0, len(rentals))
	for _, rt := range rentals {
		ids = append(ids, rt.UserID())
	}
	var userModels []*models.UserModel
	if err := db.GetTxFromContext(ctx, r.db).Where("id IN ?", ids).Find(&userModels).Error; err != nil {
		r.logger.Errorw("failed to load rental owners", "error", err)
		return nil, fmt.Errorf("failed to load rental owners: %w", err)
	}
	owners := make(map[uint]*user.User, len(userModels))
	for _, m := range userModels {
		u, err := r.userMapper.ToEntity(m)
		if err != nil {
			return nil, fmt.Errorf("failed to map rental owner: %w", err)
		}
		owners[u.ID()] = u
	}

	out := make([]rental.Ownership, 0, len(rentals))
	for _, rt := range rentals {
		owner, ok := owners[rt.UserID()]
		if !ok {
			r.logger.Warnw("rental owner missing", "rental_id", rt.ID(), "user_id", rt.UserID())
			continue
		}
		out = append(out, rental.Ownership{Rental: rt, Owner: owner})
	}
	return out, nil
}

func (r *RentalRepositoryImpl) applyFilter(ctx context.Context, filter rental.Filter) *gorm.DB {
	query := db.GetTxFromContext(ctx, r.db).Model(&models.RentalModel{})
	if !filter.IncludeZombie {
		query = query.Where("is_zombie = ?", false)
	}
	if filter.UserID != nil {
		query = query.Where("user_id = ?", *filter.UserID)
	}
	if filter.Active != nil {
		query = query.Where("is_active = ?", *filter.Active)
	}
	if filter.Expired != nil {
		query = query.Where("is_expired = ?", *filter.Expired)
	}
	return query
}
