package usecases

import (
	"context"
	"fmt"

	"github.com/orris-inc/leasebot/internal/domain/rental"
	"github.com/orris-inc/leasebot/internal/domain/telegram"
	"github.com/orris-inc/leasebot/internal/domain/user"
	"github.com/orris-inc/leasebot/internal/shared/db"
	apperrors "github.com/orris-inc/leasebot/internal/shared/errors"
	"github.com/orris-inc/leasebot/internal/shared/logger"
)

type DeleteUserResult struct {
	Username string
	// AccountRemoved is false when the host had no such login.
	AccountRemoved bool
	ClosedRentals  []uint
}

// DeleteUserUseCase removes the login, soft-deletes the user and closes
// every rental it owns. Rentals and payments are kept for audit.
type DeleteUserUseCase struct {
	users       user.Repository
	rentals     rental.Repository
	links       telegram.Repository
	txManager   db.Runner
	provisioner Provisioner
	scheduler   RentalScheduler
	logger      logger.Interface
}

func NewDeleteUserUseCase(
	users user.Repository,
	rentals rental.Repository,
	links telegram.Repository,
	txManager db.Runner,
	provisioner Provisioner,
	scheduler RentalScheduler,
	logger logger.Interface,
) *DeleteUserUseCase {
	return &DeleteUserUseCase{
		users:       users,
		rentals:     rentals,
		links:       links,
		txManager:   txManager,
		provisioner: provisioner,
		scheduler:   scheduler,
		logger:      logger,
	}
}

func (uc *DeleteUserUseCase) Execute(ctx context.Context, username string) (*DeleteUserResult, error) {
	u, err := uc.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get user").WithCause(err)
	}
	if u == nil || u.IsDeleted() {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("user %s not found", username))
	}

	removed, err := uc.provisioner.DeleteAccount(ctx, username)
	if err != nil {
		uc.logger.Errorw("failed to remove server account", "username", username, "error", err)
		return nil, apperrors.NewInternalError("failed to remove server account").WithCause(err)
	}
	if !removed {
		uc.logger.Warnw("server account was already absent", "username", username)
	}

	result := &DeleteUserResult{Username: username, AccountRemoved: removed}
	err = uc.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		owned, err := uc.rentals.List(ctx, rental.Filter{UserID: ptr(u.ID())})
		if err != nil {
			return err
		}
		for _, r := range owned {
			if r.IsZombie() {
				continue
			}
			r.MarkZombie()
			if err := uc.rentals.Update(ctx, r); err != nil {
				return err
			}
			result.ClosedRentals = append(result.ClosedRentals, r.ID())
		}

		u.MarkDeleted()
		if err := uc.users.Update(ctx, u); err != nil {
			return err
		}

		link, err := uc.links.GetByUserID(ctx, u.ID())
		if err != nil {
			return err
		}
		if link != nil {
			return uc.links.Delete(ctx, link.ID())
		}
		return nil
	})
	if err != nil {
		uc.logger.Errorw("failed to delete user", "username", username, "error", err)
		return nil, apperrors.NewInternalError("failed to delete user").WithCause(err)
	}

	for _, id := range result.ClosedRentals {
		if err := uc.scheduler.RemoveRentalJobs(ctx, id); err != nil {
			uc.logger.Errorw("failed to remove rental jobs", "rental_id", id, "error", err)
		}
	}

	uc.logger.Infow("user deleted",
		"username", username,
		"account_removed", removed,
		"closed_rentals", len(result.ClosedRentals),
	)
	return result, nil
}

func ptr[T any](v T) *T {
	return &v
}
