package usecases

import (
	"context"
	"fmt"

	"github.com/orris-inc/leasebot/internal/domain/user"
	apperrors "github.com/orris-inc/leasebot/internal/shared/errors"
	"github.com/orris-inc/leasebot/internal/shared/logger"
)

type ChangePasswordUseCase struct {
	users       user.Repository
	provisioner Provisioner
	logger      logger.Interface
}

func NewChangePasswordUseCase(users user.Repository, provisioner Provisioner, logger logger.Interface) *ChangePasswordUseCase {
	return &ChangePasswordUseCase{users: users, provisioner: provisioner, logger: logger}
}

// Execute rotates the login password and returns the new one.
func (uc *ChangePasswordUseCase) Execute(ctx context.Context, username string) (string, error) {
	u, err := uc.users.GetByUsername(ctx, username)
	if err != nil {
		return "", apperrors.NewInternalError("failed to get user").WithCause(err)
	}
	if u == nil || u.IsDeleted() {
		return "", apperrors.NewNotFoundError(fmt.Sprintf("user %s not found", username))
	}

	password, err := uc.provisioner.ChangePassword(ctx, username)
	if err != nil {
		uc.logger.Errorw("failed to change server password", "username", username, "error", err)
		return "", apperrors.NewInternalError("failed to change password").WithCause(err)
	}

	u.ChangePassword(password)
	if err := uc.users.Update(ctx, u); err != nil {
		// The host already uses the new password, so hand it back anyway.
		uc.logger.Errorw("failed to store new password", "username", username, "error", err)
		return password, apperrors.NewInternalError("password changed but not saved").WithCause(err)
	}

	uc.logger.Infow("password changed", "username", username)
	return password, nil
}
