package usecases

import (
	"context"

	apperrors "github.com/orris-inc/leasebot/internal/shared/errors"
	"github.com/orris-inc/leasebot/internal/shared/logger"
)

// ListSessionsUseCase reports who is logged in to the host.
type ListSessionsUseCase struct {
	sessions SessionLister
	logger   logger.Interface
}

func NewListSessionsUseCase(sessions SessionLister, logger logger.Interface) *ListSessionsUseCase {
	return &ListSessionsUseCase{sessions: sessions, logger: logger}
}

func (uc *ListSessionsUseCase) Execute(ctx context.Context) (string, error) {
	out, err := uc.sessions.Sessions(ctx)
	if err != nil {
		uc.logger.Errorw("failed to list sessions", "error", err)
		return "", apperrors.NewInternalError("failed to list connected users").WithCause(err)
	}
	return out, nil
}
