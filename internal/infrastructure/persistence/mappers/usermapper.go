package mappers

import (
	"github.com/orris-inc/leasebot/internal/domain/user"
	"github.com/orris-inc/leasebot/internal/infrastructure/persistence/models"
)

type UserMapper interface {
	ToEntity(model *models.UserModel) (*user.User, error)
	ToModel(entity *user.User) *models.UserModel
	ToEntities(models []*models.UserModel) ([]*user.User, error)
}

type userMapper struct{}

func NewUserMapper() UserMapper {
	return &userMapper{}
}

func (m *userMapper) ToEntity(model *models.UserModel) (*user.User, error) {
	if model == nil {
		return nil, nil
	}
	return user.Reconstruct(user.ReconstructParams{
		ID:                model.ID,
		LinuxUsername:     model.LinuxUsername,
		Password:          model.Password,
		UUID:              model.UUID,
		Balance:           model.Balance,
		LastDeductionTime: model.LastDeductionTime,
		Deleted:           model.Deleted,
		CreatedAt:         model.CreatedAt,
		UpdatedAt:         model.UpdatedAt,
	})
}

func (m *userMapper) ToModel(entity *user.User) *models.UserModel {
	if entity == nil {
		return nil
	}
	return &models.UserModel{
		ID:                entity.ID(),
		LinuxUsername:     entity.LinuxUsername(),
		Password:          entity.Password(),
		UUID:              entity.UUID(),
		Balance:           entity.Balance(),
		LastDeductionTime: entity.LastDeductionTime(),
		Deleted:           entity.IsDeleted(),
		CreatedAt:         entity.CreatedAt(),
		UpdatedAt:         entity.UpdatedAt(),
	}
}

func (m *userMapper) ToEntities(ms []*models.UserModel) ([]*user.User, error) {
	out := make([]*user.User, 0, len(ms))
	for _, model := range ms {
		entity, err := m.ToEntity(model)
		if err != nil {
			return nil, err
		}
		out = append(out, entity)
	}
	return out, nil
}
