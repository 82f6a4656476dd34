package usecases

import (
	"context"
	"fmt"
	"time"

	"github.com/orris-inc/leasebot/internal/domain/rental"
	"github.com/orris-inc/leasebot/internal/shared/biztime"
	"github.com/orris-inc/leasebot/internal/shared/logger"
)

// ExpireOverdueUseCase expires every active rental whose end_time has passed.
// It catches rentals whose one-shot expiration job was dropped on reload.
type ExpireOverdueUseCase struct {
	rentals rental.Repository
	expire  *ExpireRentalUseCase
	logger  logger.Interface
	now     func() time.Time
}

func NewExpireOverdueUseCase(rentals rental.Repository, expire *ExpireRentalUseCase, logger logger.Interface) *ExpireOverdueUseCase {
	return &ExpireOverdueUseCase{
		rentals: rentals,
		expire:  expire,
		logger:  logger,
		now:     biztime.NowUTC,
	}
}

// Execute returns the number of rentals expired.
func (uc *ExpireOverdueUseCase) Execute(ctx context.Context) (int, error) {
	rentals, err := uc.rentals.List(ctx, rental.Filter{
		Active:  rental.BoolPtr(true),
		Expired: rental.BoolPtr(false),
	})
	if err != nil {
		uc.logger.Errorw("failed to list active rentals", "error", err)
		return 0, fmt.Errorf("failed to list active rentals: %w", err)
	}

	now := uc.now().Unix()
	expired, failed := 0, 0
	for _, r := range rentals {
		if r.EndTime() >= now {
			continue
		}
		ok, err := uc.expire.Execute(ctx, r.ID())
		if err != nil {
			failed++
			continue
		}
		if ok {
			expired++
		}
	}

	if expired > 0 || failed > 0 {
		uc.logger.Infow("overdue rentals processed", "expired", expired, "failed", failed)
	}
	return expired, nil
}
