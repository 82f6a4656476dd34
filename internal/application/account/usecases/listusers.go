package usecases

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/orris-inc/leasebot/internal/domain/rental"
	"github.com/orris-inc/leasebot/internal/domain/telegram"
	"github.com/orris-inc/leasebot/internal/domain/user"
	"github.com/orris-inc/leasebot/internal/shared/biztime"
	apperrors "github.com/orris-inc/leasebot/internal/shared/errors"
	"github.com/orris-inc/leasebot/internal/shared/logger"
	"github.com/orris-inc/leasebot/internal/shared/timefmt"
)

type UserSummary struct {
	Username  string
	UUID      string
	Balance   decimal.Decimal
	RentalID  uint
	State     rental.State
	EndTime   int64
	Remaining string
	PriceRate decimal.Decimal
	Telegram  string
}

type ListUsersUseCase struct {
	users   user.Repository
	rentals rental.Repository
	links   telegram.Repository
	logger  logger.Interface
	now     func() time.Time
}

func NewListUsersUseCase(users user.Repository, rentals rental.Repository, links telegram.Repository, logger logger.Interface) *ListUsersUseCase {
	return &ListUsersUseCase{users: users, rentals: rentals, links: links, logger: logger, now: biztime.NowUTC}
}

// Execute summarizes every live account in username order.
func (uc *ListUsersUseCase) Execute(ctx context.Context) ([]UserSummary, error) {
	users, err := uc.users.List(ctx, user.Filter{})
	if err != nil {
		uc.logger.Errorw("failed to list users", "error", err)
		return nil, apperrors.NewInternalError("failed to list users").WithCause(err)
	}

	now := uc.now()
	out := make([]UserSummary, 0, len(users))
	for _, u := range users {
		s, err := uc.summarize(ctx, u, now)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

// ForTelegramUser summarizes the account linked to a chat identity.
func (uc *ListUsersUseCase) ForTelegramUser(ctx context.Context, tgUserID int64) (*UserSummary, error) {
	link, err := uc.links.GetByTelegramUserID(ctx, tgUserID)
	if err != nil {
		uc.logger.Errorw("failed to get telegram link", "tg_user_id", tgUserID, "error", err)
		return nil, apperrors.NewInternalError("failed to get telegram link").WithCause(err)
	}
	if link == nil {
		return nil, apperrors.NewNotFoundError("no account is linked to this chat")
	}
	u, err := uc.users.GetByID(ctx, link.UserID())
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get user").WithCause(err)
	}
	if u == nil || u.IsDeleted() {
		return nil, apperrors.NewNotFoundError("no account is linked to this chat")
	}
	s, err := uc.summarize(ctx, u, uc.now())
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (uc *ListUsersUseCase) summarize(ctx context.Context, u *user.User, now time.Time) (UserSummary, error) {
	s := UserSummary{
		Username:  u.LinuxUsername(),
		UUID:      u.UUID(),
		Balance:   u.Balance(),
		Remaining: timefmt.Humanize(0),
	}

	r, err := uc.rentals.GetCurrentByUserID(ctx, u.ID())
	if err != nil {
		return s, apperrors.NewInternalError("failed to get rental").WithCause(err)
	}
	if r != nil {
		s.RentalID = r.ID()
		s.State = r.State()
		s.EndTime = r.EndTime()
		s.PriceRate = r.PriceRate()
		s.Remaining = timefmt.Humanize(r.RemainingSeconds(now))
	}

	link, err := uc.links.GetByUserID(ctx, u.ID())
	if err != nil {
		return s, apperrors.NewInternalError("failed to get telegram link").WithCause(err)
	}
	if link != nil {
		s.Telegram = link.DisplayName()
	}
	return s, nil
}
