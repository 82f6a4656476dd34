package http

import (
	"github.com/orris-inc/leasebot/internal/domain/payment"
	"github.com/orris-inc/leasebot/internal/domain/rental"
	"github.com/orris-inc/leasebot/internal/domain/telegram"
	"github.com/orris-inc/leasebot/internal/domain/user"
	"github.com/orris-inc/leasebot/internal/infrastructure/repository"
	"github.com/orris-inc/leasebot/internal/shared/db"
)

// repositories holds all repository instances used by the application.
type repositories struct {
	userRepo    user.Repository
	rentalRepo  rental.Repository
	paymentRepo payment.Repository
	linkRepo    telegram.Repository
	txManager   *db.TransactionManager
}

func (c *Container) initRepositories() {
	c.repos = &repositories{
		userRepo:    repository.NewUserRepository(c.db, c.log),
		rentalRepo:  repository.NewRentalRepository(c.db, c.log),
		paymentRepo: repository.NewPaymentRepository(c.db, c.log),
		linkRepo:    repository.NewTelegramLinkRepository(c.db, c.log),
		txManager:   db.NewTransactionManager(c.db),
	}
}
