package telegram

import "context"

type Repository interface {
	Create(ctx context.Context, l *Link) error
	Delete(ctx context.Context, id uint) error
	GetByID(ctx context.Context, id uint) (*Link, error)
	GetByTelegramUserID(ctx context.Context, tgUserID int64) (*Link, error)
	GetByUserID(ctx context.Context, userID uint) (*Link, error)
}
