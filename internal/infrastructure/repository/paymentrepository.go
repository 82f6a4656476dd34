package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/orris-inc/leasebot/internal/domain/payment"
	"github.com/orris-inc/leasebot/internal/infrastructure/persistence/mappers"
	"github.com/orris-inc/leasebot/internal/infrastructure/persistence/models"
	"github.com/orris-inc/leasebot/internal/shared/db"
	"github.com/orris-inc/leasebot/internal/shared/logger"
)

type PaymentRepositoryImpl struct {
	db     *gorm.DB
	mapper mappers.PaymentMapper
	logger logger.Interface
}

func NewPaymentRepository(db *gorm.DB, logger logger.Interface) payment.Repository {
	return &PaymentRepositoryImpl{
		db:     db,
		mapper: mappers.NewPaymentMapper(),
		logger: logger,
	}
}

func (r *PaymentRepositoryImpl) Create(ctx context.Context, p *payment.Payment) error {
	model := r.mapper.ToModel(p)
	if err := db.GetTxFromContext(ctx, r.db).Create(model).Error; err != nil {
		r.logger.Errorw("failed to create payment", "user_id", p.UserID(), "error", err)
		return fmt.Errorf("failed to create payment: %w", err)
	}
	p.SetID(model.ID)
	r.logger.Infow("payment recorded", "id", model.ID, "user_id", model.UserID, "amount", model.Amount.String())
	return nil
}

func (r *PaymentRepositoryImpl) ListByUserID(ctx context.Context, userID uint) ([]*payment.Payment, error) {
	var ms []*models.PaymentModel
	err := db.GetTxFromContext(ctx, r.db).
		Where("user_id = ?", userID).
		Order("payment_date DESC, id DESC").
		Find(&ms).Error
	if err != nil {
		r.logger.Errorw("failed to list payments", "user_id", userID, "error", err)
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	return r.toEntities(ms)
}

func (r *PaymentRepositoryImpl) ListBetween(ctx context.Context, from, to time.Time) ([]*payment.Payment, error) {
	var ms []*models.PaymentModel
	err := db.GetTxFromContext(ctx, r.db).
		Where("payment_date >= ? AND payment_date < ?", from.UTC(), to.UTC()).
		Order("payment_date ASC").
		Find(&ms).Error
	if err != nil {
		r.logger.Errorw("failed to list payments in range", "from", from, "to", to, "error", err)
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	return r.toEntities(ms)
}

func (r *PaymentRepositoryImpl) toEntities(ms []*models.PaymentModel) ([]*payment.Payment, error) {
	out := make([]*payment.Payment, 0, len(ms))
	for _, m := range ms {
		p, err := r.mapper.ToEntity(m)
		if err != nil {
			return nil, fmt.Errorf("failed to map payment: %w", err)
		}
		out = append(out, p)
	}
	return out, nil
}
