package http

import (
	"fmt"
	"time"

	"github.com/orris-inc/leasebot/internal/infrastructure/cache"
	"github.com/orris-inc/leasebot/internal/infrastructure/telegram"
	"github.com/orris-inc/leasebot/internal/interfaces/http/handlers"
	"github.com/orris-inc/leasebot/internal/interfaces/http/middleware"
)

// allHandlers holds all HTTP handler instances used by the application.
type allHandlers struct {
	userHandler     *handlers.UserHandler
	rentalHandler   *handlers.RentalHandler
	billingHandler  *handlers.BillingHandler
	telegramHandler *handlers.TelegramHandler
	jobHandler      *handlers.JobHandler
	healthHandler   *handlers.HealthHandler
}

func (c *Container) initHandlers() error {
	u := c.ucs
	log := c.log.Named("http")

	sqlDB, err := c.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get sql.DB: %w", err)
	}

	c.hdlrs = &allHandlers{
		userHandler:     handlers.NewUserHandler(u.createUserUC, u.deleteUserUC, u.changePasswordUC, u.listUsersUC, log),
		rentalHandler:   handlers.NewRentalHandler(u.modifyPlanUC, log),
		billingHandler:  handlers.NewBillingHandler(u.balanceUC, u.historyUC, u.earningsUC, log),
		telegramHandler: handlers.NewTelegramHandler(u.telegramLinkUC, log),
		jobHandler:      handlers.NewJobHandler(c.scheduler, log),
		healthHandler:   handlers.NewHealthHandler(sqlDB, log),
	}

	if c.redis != nil && c.cfg.Admin.RateLimit > 0 {
		c.rateLimiter = middleware.NewRateLimiter(c.redis, c.cfg.Admin.RateLimit, time.Minute, "leasebot", log)
	}

	if c.svcs.botAPI != nil {
		c.bot = telegram.NewBot(c.svcs.botAPI, telegram.UseCases{
			Link:           u.telegramLinkUC,
			CreateUser:     u.createUserUC,
			DeleteUser:     u.deleteUserUC,
			ChangePassword: u.changePasswordUC,
			ListUsers:      u.listUsersUC,
			ModifyPlan:     u.modifyPlanUC,
			Balance:        u.balanceUC,
			History:        u.historyUC,
			Earnings:       u.earningsUC,
			Sessions:       u.sessionsUC,
		}, c.cfg.Telegram.AdminChatID, c.log.Named("bot"))
		c.bot.SetProfile(telegram.Profile{
			BotUsername: c.svcs.botAPI.Self.UserName,
			SSHHost:     c.cfg.Telegram.SSHHost,
			SSHPort:     c.cfg.Telegram.SSHPort,
			Notes:       c.cfg.Telegram.Notes,
		})
		if c.redis != nil {
			c.bot.SetOffsetStore(cache.NewPollingOffsetStore(c.redis, ""))
		}
	}
	return nil
}
