package mappers

import (
	"github.com/orris-inc/leasebot/internal/domain/payment"
	"github.com/orris-inc/leasebot/internal/domain/shared"
	"github.com/orris-inc/leasebot/internal/infrastructure/persistence/models"
)

type PaymentMapper interface {
	ToEntity(model *models.PaymentModel) (*payment.Payment, error)
	ToModel(entity *payment.Payment) *models.PaymentModel
}

type paymentMapper struct{}

func NewPaymentMapper() PaymentMapper {
	return &paymentMapper{}
}

func (m *paymentMapper) ToEntity(model *models.PaymentModel) (*payment.Payment, error) {
	return payment.ReconstructPayment(
		model.ID,
		model.UserID,
		model.Amount,
		shared.Currency(model.Currency),
		model.PaymentDate,
		model.CreatedAt,
	)
}

func (m *paymentMapper) ToModel(entity *payment.Payment) *models.PaymentModel {
	return &models.PaymentModel{
		ID:          entity.ID(),
		UserID:      entity.UserID(),
		Amount:      entity.Amount(),
		Currency:    entity.Currency().String(),
		PaymentDate: entity.PaymentDate().UTC(),
		CreatedAt:   entity.CreatedAt(),
	}
}
