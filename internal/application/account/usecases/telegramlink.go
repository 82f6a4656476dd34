package usecases

import (
	"context"
	"errors"
	"fmt"

	notifyuc "github.com/orris-inc/leasebot/internal/application/notification/usecases"
	"github.com/orris-inc/leasebot/internal/domain/rental"
	"github.com/orris-inc/leasebot/internal/domain/telegram"
	"github.com/orris-inc/leasebot/internal/domain/user"
	"github.com/orris-inc/leasebot/internal/shared/biztime"
	"github.com/orris-inc/leasebot/internal/shared/db"
	apperrors "github.com/orris-inc/leasebot/internal/shared/errors"
	"github.com/orris-inc/leasebot/internal/shared/logger"
)

type LinkTelegramCommand struct {
	// Token is the user's UUID handed out at creation.
	Token          string
	TelegramUserID int64
	Username       string
	FirstName      string
	LastName       string
}

// TelegramLinkUseCase attaches and detaches chat identities.
type TelegramLinkUseCase struct {
	users      user.Repository
	rentals    rental.Repository
	links      telegram.Repository
	txManager  db.Runner
	dispatcher *notifyuc.Dispatcher
	logger     logger.Interface
}

func NewTelegramLinkUseCase(
	users user.Repository,
	rentals rental.Repository,
	links telegram.Repository,
	txManager db.Runner,
	dispatcher *notifyuc.Dispatcher,
	logger logger.Interface,
) *TelegramLinkUseCase {
	return &TelegramLinkUseCase{
		users:      users,
		rentals:    rentals,
		links:      links,
		txManager:  txManager,
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// Link binds the chat to the user owning cmd.Token. Both sides must be unlinked.
func (uc *TelegramLinkUseCase) Link(ctx context.Context, cmd LinkTelegramCommand) (*telegram.Link, error) {
	if cmd.Token == "" || cmd.TelegramUserID == 0 {
		return nil, apperrors.NewValidationError("link token and telegram user are required")
	}

	u, err := uc.users.GetByUUID(ctx, cmd.Token)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get user").WithCause(err)
	}
	if u == nil || u.IsDeleted() {
		return nil, apperrors.NewNotFoundError("invalid link token")
	}

	var link *telegram.Link
	var current *rental.Rental
	err = uc.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		existing, err := uc.links.GetByUserID(ctx, u.ID())
		if err != nil {
			return err
		}
		if existing != nil {
			return telegram.ErrUserAlreadyLinked
		}
		if existing, err = uc.links.GetByTelegramUserID(ctx, cmd.TelegramUserID); err != nil {
			return err
		}
		if existing != nil {
			return telegram.ErrChatAlreadyLinked
		}

		if link, err = telegram.NewLink(cmd.TelegramUserID, u.ID(), cmd.Username, cmd.FirstName, cmd.LastName); err != nil {
			return err
		}
		if err := uc.links.Create(ctx, link); err != nil {
			return err
		}

		if current, err = uc.rentals.GetCurrentByUserID(ctx, u.ID()); err != nil {
			return err
		}
		if current == nil {
			return nil
		}
		id := link.ID()
		if err := current.LinkTelegram(&id); err != nil {
			return err
		}
		return uc.rentals.Update(ctx, current)
	})
	if err != nil {
		if errors.Is(err, telegram.ErrUserAlreadyLinked) || errors.Is(err, telegram.ErrChatAlreadyLinked) {
			return nil, apperrors.NewConflictError(err.Error()).WithCause(err)
		}
		uc.logger.Errorw("failed to link telegram", "username", u.LinuxUsername(), "tg_user_id", cmd.TelegramUserID, "error", err)
		return nil, apperrors.NewInternalError("failed to link telegram").WithCause(err)
	}

	uc.logger.Infow("telegram linked", "username", u.LinuxUsername(), "tg_user_id", cmd.TelegramUserID)

	if current != nil {
		uc.dispatcher.NotifyUser(ctx, u.ID(), func(name string) string {
			return notifyuc.LinkedMessage(name, u.LinuxUsername(), u.Password(), current.EndTime(), biztime.Location())
		})
	}
	uc.dispatcher.NotifyAdmin(ctx, notifyuc.AdminLinkedMessage(u.LinuxUsername(), link.DisplayName()))
	return link, nil
}

// InviteToken returns the start token that links a chat to username, issuing
// one first when the user has none.
func (uc *TelegramLinkUseCase) InviteToken(ctx context.Context, username string) (string, error) {
	u, err := uc.users.GetByUsername(ctx, username)
	if err != nil {
		return "", apperrors.NewInternalError("failed to get user").WithCause(err)
	}
	if u == nil || u.IsDeleted() {
		return "", apperrors.NewNotFoundError(fmt.Sprintf("user %s not found", username))
	}

	link, err := uc.links.GetByUserID(ctx, u.ID())
	if err != nil {
		return "", apperrors.NewInternalError("failed to get telegram link").WithCause(err)
	}
	if link != nil {
		return "", apperrors.NewConflictError(fmt.Sprintf("user %s is already linked to a telegram account", username))
	}

	if u.UUID() == "" {
		u.RotateUUID()
		if err := uc.users.Update(ctx, u); err != nil {
			uc.logger.Errorw("failed to store link token", "username", username, "error", err)
			return "", apperrors.NewInternalError("failed to issue link token").WithCause(err)
		}
		uc.logger.Infow("link token issued", "username", username)
	}
	return u.UUID(), nil
}

// Unlink detaches the chat linked to username.
func (uc *TelegramLinkUseCase) Unlink(ctx context.Context, username string) error {
	u, err := uc.users.GetByUsername(ctx, username)
	if err != nil {
		return apperrors.NewInternalError("failed to get user").WithCause(err)
	}
	if u == nil {
		return apperrors.NewNotFoundError(fmt.Sprintf("user %s not found", username))
	}

	err = uc.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		link, err := uc.links.GetByUserID(ctx, u.ID())
		if err != nil {
			return err
		}
		if link == nil {
			return telegram.ErrLinkNotFound
		}
		if err := uc.links.Delete(ctx, link.ID()); err != nil {
			return err
		}

		current, err := uc.rentals.GetCurrentByUserID(ctx, u.ID())
		if err != nil {
			return err
		}
		if current == nil {
			return nil
		}
		if err := current.LinkTelegram(nil); err != nil {
			return err
		}
		return uc.rentals.Update(ctx, current)
	})
	if errors.Is(err, telegram.ErrLinkNotFound) {
		return apperrors.NewNotFoundError(fmt.Sprintf("user %s has no linked telegram account", username))
	}
	if err != nil {
		uc.logger.Errorw("failed to unlink telegram", "username", username, "error", err)
		return apperrors.NewInternalError("failed to unlink telegram").WithCause(err)
	}

	uc.logger.Infow("telegram unlinked", "username", username)
	return nil
}
