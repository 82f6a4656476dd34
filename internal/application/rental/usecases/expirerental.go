package usecases

import (
	"context"
	"fmt"
	"time"

	notifyuc "github.com/orris-inc/leasebot/internal/application/notification/usecases"
	"github.com/orris-inc/leasebot/internal/domain/rental"
	"github.com/orris-inc/leasebot/internal/domain/user"
	"github.com/orris-inc/leasebot/internal/shared/biztime"
	"github.com/orris-inc/leasebot/internal/shared/db"
	"github.com/orris-inc/leasebot/internal/shared/logger"
)

// expireSlack tolerates timers that fire marginally before end_time.
const expireSlack = 5 * time.Second

// ExpireRentalUseCase handles a rental reaching its end_time.
type ExpireRentalUseCase struct {
	users      user.Repository
	rentals    rental.Repository
	txManager  db.Runner
	revoker    AccessRevoker
	dispatcher *notifyuc.Dispatcher
	logger     logger.Interface
	now        func() time.Time
}

func NewExpireRentalUseCase(
	users user.Repository,
	rentals rental.Repository,
	txManager db.Runner,
	revoker AccessRevoker,
	dispatcher *notifyuc.Dispatcher,
	logger logger.Interface,
) *ExpireRentalUseCase {
	return &ExpireRentalUseCase{
		users:      users,
		rentals:    rentals,
		txManager:  txManager,
		revoker:    revoker,
		dispatcher: dispatcher,
		logger:     logger,
		now:        biztime.NowUTC,
	}
}

// Execute expires the rental, then revokes access and notifies the owner and
// the admin. It reports whether the rental was expired by this call.
func (uc *ExpireRentalUseCase) Execute(ctx context.Context, rentalID uint) (bool, error) {
	var (
		r    *rental.Rental
		skip string
	)
	err := uc.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		r, err = uc.rentals.GetByID(ctx, rentalID)
		if err != nil {
			return err
		}
		switch {
		case r == nil:
			skip = "rental not found"
			return nil
		case r.IsZombie():
			skip = "rental is closed"
			return nil
		case r.IsExpired():
			skip = "rental already expired"
			return nil
		case r.EndAt().After(uc.now().Add(expireSlack)):
			skip = "rental was extended"
			return nil
		}
		if err := r.Expire(); err != nil {
			return err
		}
		return uc.rentals.Update(ctx, r)
	})
	if err != nil {
		uc.logger.Errorw("failed to expire rental", "rental_id", rentalID, "error", err)
		return false, fmt.Errorf("failed to expire rental %d: %w", rentalID, err)
	}
	if skip != "" {
		uc.logger.Infow("rental expiration skipped", "rental_id", rentalID, "reason", skip)
		return false, nil
	}

	owner, err := uc.users.GetByID(ctx, r.UserID())
	if err != nil {
		return true, fmt.Errorf("failed to get rental owner: %w", err)
	}
	if owner == nil {
		uc.logger.Warnw("expired rental has no owner", "rental_id", rentalID, "user_id", r.UserID())
		return true, nil
	}
	username := owner.LinuxUsername()

	revoked, detail, err := uc.revoker.RevokeRemoteAccess(ctx, username)
	if err != nil {
		uc.logger.Errorw("failed to revoke remote access", "username", username, "error", err)
		detail = err.Error()
	}

	uc.dispatcher.NotifyUser(ctx, owner.ID(), notifyuc.ExpiredMessage)
	uc.dispatcher.NotifyAdmin(ctx, notifyuc.AdminExpiredMessage(username, revoked, detail), notifyuc.AdminActions(username)...)

	uc.logger.Infow("rental expired",
		"rental_id", rentalID,
		"username", username,
		"access_revoked", revoked,
	)
	return true, nil
}
