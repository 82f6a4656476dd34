package adapters

import (
	"context"
	"errors"
	"time"

	billinguc "github.com/orris-inc/leasebot/internal/application/billing/usecases"
	notifyuc "github.com/orris-inc/leasebot/internal/application/notification/usecases"
	rentaluc "github.com/orris-inc/leasebot/internal/application/rental/usecases"
	"github.com/orris-inc/leasebot/internal/infrastructure/scheduler"
	"github.com/orris-inc/leasebot/internal/shared/biztime"
	"github.com/orris-inc/leasebot/internal/shared/logger"
)

// JobHandler routes scheduler callbacks to the use cases.
type JobHandler struct {
	expire  *rentaluc.ExpireRentalUseCase
	overdue *rentaluc.ExpireOverdueUseCase
	notify  *notifyuc.NotifyRentalUseCase
	sweep   *billinguc.DeductionSweepUseCase
	logger  logger.Interface
	now     func() time.Time
}

func NewJobHandler(
	expire *rentaluc.ExpireRentalUseCase,
	overdue *rentaluc.ExpireOverdueUseCase,
	notify *notifyuc.NotifyRentalUseCase,
	sweep *billinguc.DeductionSweepUseCase,
	logger logger.Interface,
) *JobHandler {
	return &JobHandler{
		expire:  expire,
		overdue: overdue,
		notify:  notify,
		sweep:   sweep,
		logger:  logger,
		now:     biztime.NowUTC,
	}
}

func (h *JobHandler) HandleExpireRental(ctx context.Context, rentalID uint) error {
	_, err := h.expire.Execute(ctx, rentalID)
	return err
}

func (h *JobHandler) HandleNotifyRental(ctx context.Context, rentalID uint) error {
	_, err := h.notify.Execute(ctx, rentalID)
	return err
}

// HandleDailyDeduction expires overdue rentals first so they are not charged.
func (h *JobHandler) HandleDailyDeduction(ctx context.Context) error {
	expired, overdueErr := h.overdue.Execute(ctx)
	if overdueErr != nil {
		h.logger.Errorw("overdue expiration failed, continuing with sweep", "error", overdueErr)
	}

	result, err := h.sweep.Execute(ctx, h.now())
	if err != nil {
		return errors.Join(overdueErr, err)
	}

	h.logger.Infow("daily deduction finished",
		"expired", expired,
		"charged", result.Charged,
		"lapsed", result.Lapsed,
		"total", result.Total.String(),
	)
	return overdueErr
}

var _ scheduler.Handler = (*JobHandler)(nil)
