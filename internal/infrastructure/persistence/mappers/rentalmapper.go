package mappers

import (
	"github.com/orris-inc/leasebot/internal/domain/rental"
	"github.com/orris-inc/leasebot/internal/domain/shared"
	"github.com/orris-inc/leasebot/internal/infrastructure/persistence/models"
)

type RentalMapper interface {
	ToEntity(model *models.RentalModel) (*rental.Rental, error)
	ToModel(entity *rental.Rental) *models.RentalModel
	ToEntities(models []*models.RentalModel) ([]*rental.Rental, error)
}

type rentalMapper struct{}

func NewRentalMapper() RentalMapper {
	return &rentalMapper{}
}

func (m *rentalMapper) ToEntity(model *models.RentalModel) (*rental.Rental, error) {
	if model == nil {
		return nil, nil
	}
	return rental.Reconstruct(rental.ReconstructParams{
		ID:                     model.ID,
		UserID:                 model.UserID,
		TelegramLinkID:         model.TelegramUserID,
		StartTime:              model.StartTime,
		EndTime:                model.EndTime,
		PlanDuration:           model.PlanDuration,
		Amount:                 model.Amount,
		Currency:               shared.Currency(model.Currency),
		PriceRate:              model.PriceRate,
		IsActive:               model.IsActive,
		IsExpired:              model.IsExpired,
		IsZombie:               model.IsZombie,
		SentExpiryNotification: model.SentExpiryNotification,
		CreatedAt:              model.CreatedAt,
		UpdatedAt:              model.UpdatedAt,
	})
}

func (m *rentalMapper) ToModel(entity *rental.Rental) *models.RentalModel {
	if entity == nil {
		return nil
	}
	return &models.RentalModel{
		ID:                     entity.ID(),
		UserID:                 entity.UserID(),
		TelegramUserID:         entity.TelegramLinkID(),
		StartTime:              entity.StartTime(),
		EndTime:                entity.EndTime(),
		PlanDuration:           entity.PlanDuration(),
		Amount:                 entity.Amount(),
		Currency:               entity.Currency().String(),
		PriceRate:              entity.PriceRate(),
		IsActive:               entity.IsActive(),
		IsExpired:              entity.IsExpired(),
		IsZombie:               entity.IsZombie(),
		SentExpiryNotification: entity.SentExpiryNotification(),
		CreatedAt:              entity.CreatedAt(),
		UpdatedAt:              entity.UpdatedAt(),
	}
}

func (m *rentalMapper) ToEntities(ms []*models.RentalModel) ([]*rental.Rental, error) {
	out := make([]*rental.Rental, 0, len(ms))
	for _, model := range ms {
		entity, err := m.ToEntity(model)
		if err != nil {
			return nil, err
		}
		out = append(out, entity)
	}
	return out, nil
}
