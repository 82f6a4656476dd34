package usecases

import (
	"context"
	"fmt"
	"time"

	"github.com/orris-inc/leasebot/internal/domain/rental"
	"github.com/orris-inc/leasebot/internal/domain/user"
	"github.com/orris-inc/leasebot/internal/shared/biztime"
	"github.com/orris-inc/leasebot/internal/shared/db"
	"github.com/orris-inc/leasebot/internal/shared/logger"
)

// NotifyRentalUseCase sends the pre-expiry notice for one rental. The
// sent_expiry_notification flag is committed before anything is delivered,
// so a rental is notified at most once per extension.
type NotifyRentalUseCase struct {
	rentals    rental.Repository
	users      user.Repository
	txManager  db.Runner
	dispatcher *Dispatcher
	logger     logger.Interface
	now        func() time.Time
}

func NewNotifyRentalUseCase(
	rentals rental.Repository,
	users user.Repository,
	txManager db.Runner,
	dispatcher *Dispatcher,
	logger logger.Interface,
) *NotifyRentalUseCase {
	return &NotifyRentalUseCase{
		rentals:    rentals,
		users:      users,
		txManager:  txManager,
		dispatcher: dispatcher,
		logger:     logger,
		now:        biztime.NowUTC,
	}
}

// Execute reports whether the notice was due. Rentals that are already
// notified, expired, lapsed or closed are skipped.
func (uc *NotifyRentalUseCase) Execute(ctx context.Context, rentalID uint) (bool, error) {
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
		if r == nil {
			skip = "rental not found"
			return nil
		}
		if state := r.State(); state != rental.StateActive {
			skip = "rental is " + state.String()
			return nil
		}
		if err := r.MarkNotified(); err != nil {
			return err
		}
		return uc.rentals.Update(ctx, r)
	})
	if err != nil {
		uc.logger.Errorw("failed to mark rental notified", "rental_id", rentalID, "error", err)
		return false, fmt.Errorf("failed to mark rental notified: %w", err)
	}
	if skip != "" {
		uc.logger.Infow("expiry notice skipped", "rental_id", rentalID, "reason", skip)
		return false, nil
	}

	owner, err := uc.users.GetByID(ctx, r.UserID())
	if err != nil {
		return true, fmt.Errorf("failed to get rental owner: %w", err)
	}
	username := fmt.Sprintf("#%d", r.UserID())
	if owner != nil {
		username = owner.LinuxUsername()
	}

	remaining := truncateToMinute(r.RemainingSeconds(uc.now()))
	uc.dispatcher.NotifyUser(ctx, r.UserID(), func(name string) string {
		return ExpiringSoonMessage(name, remaining, r.EndTime(), biztime.Location())
	})
	uc.dispatcher.NotifyAdmin(ctx, AdminExpiringSoonMessage(username, remaining), AdminActions(username)...)

	uc.logger.Infow("expiry notice sent", "rental_id", rentalID, "username", username, "remaining", remaining)
	return true, nil
}

// truncateToMinute drops the seconds component unless less than a minute is left.
func truncateToMinute(seconds int64) int64 {
	if seconds >= 60 {
		return seconds - seconds%60
	}
	return seconds
}
