package mappers

import (
	"github.com/orris-inc/leasebot/internal/domain/telegram"
	"github.com/orris-inc/leasebot/internal/infrastructure/persistence/models"
)

func TelegramLinkToEntity(model *models.TelegramUserModel) *telegram.Link {
	if model == nil {
		return nil
	}
	return telegram.ReconstructLink(model.ID, model.TgUserID, model.UserID, model.Username, model.FirstName, model.LastName, model.CreatedAt)
}

func TelegramLinkToModel(entity *telegram.Link) *models.TelegramUserModel {
	return &models.TelegramUserModel{
		ID:        entity.ID(),
		TgUserID:  entity.TelegramUserID(),
		UserID:    entity.UserID(),
		Username:  entity.Username(),
		FirstName: entity.FirstName(),
		LastName:  entity.LastName(),
		CreatedAt: entity.CreatedAt(),
	}
}
