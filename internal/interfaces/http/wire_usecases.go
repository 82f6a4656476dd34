package http

import (
	accountuc "github.com/orris-inc/leasebot/internal/application/account/usecases"
	billinguc "github.com/orris-inc/leasebot/internal/application/billing/usecases"
	notifyuc "github.com/orris-inc/leasebot/internal/application/notification/usecases"
	rentaluc "github.com/orris-inc/leasebot/internal/application/rental/usecases"
	"github.com/orris-inc/leasebot/internal/infrastructure/adapters"
)

// allUseCases holds all use case instances used by the application.
type allUseCases struct {
	dispatcher *notifyuc.Dispatcher

	// Rental lifecycle
	modifyPlanUC    *rentaluc.ModifyPlanUseCase
	expireRentalUC  *rentaluc.ExpireRentalUseCase
	expireOverdueUC *rentaluc.ExpireOverdueUseCase
	notifyRentalUC  *notifyuc.NotifyRentalUseCase

	// Billing
	sweepUC    *billinguc.DeductionSweepUseCase
	balanceUC  *billinguc.BalanceUseCase
	historyUC  *billinguc.PaymentHistoryUseCase
	earningsUC *billinguc.EarningsUseCase

	// Accounts
	createUserUC     *accountuc.CreateUserUseCase
	deleteUserUC     *accountuc.DeleteUserUseCase
	changePasswordUC *accountuc.ChangePasswordUseCase
	listUsersUC      *accountuc.ListUsersUseCase
	telegramLinkUC   *accountuc.TelegramLinkUseCase
	sessionsUC       *accountuc.ListSessionsUseCase
}

func (c *Container) initUseCases() {
	r := c.repos
	log := c.log
	dispatcher := notifyuc.NewDispatcher(c.svcs.notifier, r.linkRepo, c.cfg.Telegram.AdminChatID, log.Named("notify"))

	expireRentalUC := rentaluc.NewExpireRentalUseCase(r.userRepo, r.rentalRepo, r.txManager, c.svcs.provisioner, dispatcher, log)

	c.ucs = &allUseCases{
		dispatcher: dispatcher,

		modifyPlanUC:    rentaluc.NewModifyPlanUseCase(r.userRepo, r.rentalRepo, r.paymentRepo, r.txManager, c.scheduler, c.svcs.rates, dispatcher, log),
		expireRentalUC:  expireRentalUC,
		expireOverdueUC: rentaluc.NewExpireOverdueUseCase(r.rentalRepo, expireRentalUC, log),
		notifyRentalUC:  notifyuc.NewNotifyRentalUseCase(r.rentalRepo, r.userRepo, r.txManager, dispatcher, log),

		sweepUC: billinguc.NewDeductionSweepUseCase(
			r.userRepo, r.rentalRepo, r.txManager, dispatcher,
			c.cfg.Scheduler.DeductionHour, c.cfg.Scheduler.DeductionMinute, log,
		),
		balanceUC:  billinguc.NewBalanceUseCase(r.userRepo, r.paymentRepo, r.txManager, c.svcs.rates, log),
		historyUC:  billinguc.NewPaymentHistoryUseCase(r.userRepo, r.paymentRepo, log),
		earningsUC: billinguc.NewEarningsUseCase(r.paymentRepo, log),

		createUserUC: accountuc.NewCreateUserUseCase(
			r.userRepo, r.rentalRepo, r.paymentRepo, r.txManager,
			c.svcs.provisioner, c.scheduler, c.svcs.rates, dispatcher, log,
		),
		deleteUserUC:     accountuc.NewDeleteUserUseCase(r.userRepo, r.rentalRepo, r.linkRepo, r.txManager, c.svcs.provisioner, c.scheduler, log),
		changePasswordUC: accountuc.NewChangePasswordUseCase(r.userRepo, c.svcs.provisioner, log),
		listUsersUC:      accountuc.NewListUsersUseCase(r.userRepo, r.rentalRepo, r.linkRepo, log),
		telegramLinkUC:   accountuc.NewTelegramLinkUseCase(r.userRepo, r.rentalRepo, r.linkRepo, r.txManager, dispatcher, log),
		sessionsUC:       accountuc.NewListSessionsUseCase(c.svcs.provisioner, log),
	}

	c.scheduler.SetHandler(adapters.NewJobHandler(
		c.ucs.expireRentalUC,
		c.ucs.expireOverdueUC,
		c.ucs.notifyRentalUC,
		c.ucs.sweepUC,
		log.Named("jobs"),
	))
}
