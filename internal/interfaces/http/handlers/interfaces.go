package handlers

import (
	"context"
	"time"

	"github.com/orris-inc/leasebot/internal/application/account/usecases"
	billinguc "github.com/orris-inc/leasebot/internal/application/billing/usecases"
	rentaluc "github.com/orris-inc/leasebot/internal/application/rental/usecases"
	"github.com/orris-inc/leasebot/internal/domain/job"
	"github.com/orris-inc/leasebot/internal/domain/payment"
	"github.com/orris-inc/leasebot/internal/domain/telegram"
)

// Use case interfaces for UserHandler

type createUserUseCase interface {
	Execute(ctx context.Context, cmd usecases.CreateUserCommand) (*usecases.CreateUserResult, error)
}

type deleteUserUseCase interface {
	Execute(ctx context.Context, username string) (*usecases.DeleteUserResult, error)
}

type changePasswordUseCase interface {
	Execute(ctx context.Context, username string) (string, error)
}

type listUsersUseCase interface {
	Execute(ctx context.Context) ([]usecases.UserSummary, error)
}

// Use case interfaces for RentalHandler

type modifyPlanUseCase interface {
	Extend(ctx context.Context, cmd rentaluc.ModifyPlanCommand) (*rentaluc.ModifyPlanResult, error)
	Reduce(ctx context.Context, cmd rentaluc.ModifyPlanCommand) (*rentaluc.ModifyPlanResult, error)
}

// Use case interfaces for BillingHandler

type balanceUseCase interface {
	Credit(ctx context.Context, cmd billinguc.BalanceCommand) (*billinguc.BalanceResult, error)
	Debit(ctx context.Context, cmd billinguc.BalanceCommand) (*billinguc.BalanceResult, error)
}

type paymentHistoryUseCase interface {
	Execute(ctx context.Context, username string) ([]*payment.Payment, error)
}

type earningsUseCase interface {
	Execute(ctx context.Context, from, to time.Time) (*billinguc.EarningsReport, error)
}

// Use case interfaces for TelegramHandler

type telegramLinkUseCase interface {
	Link(ctx context.Context, cmd usecases.LinkTelegramCommand) (*telegram.Link, error)
	Unlink(ctx context.Context, username string) error
}

// Scheduler surface for JobHandler

type jobScheduler interface {
	Jobs() []job.Job
	RunDeductionNow(ctx context.Context) error
}

type pinger interface {
	PingContext(ctx context.Context) error
}
