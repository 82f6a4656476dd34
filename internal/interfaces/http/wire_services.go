package http

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/orris-inc/leasebot/internal/domain/job"
	"github.com/orris-inc/leasebot/internal/domain/notification"
	"github.com/orris-inc/leasebot/internal/infrastructure/cache"
	"github.com/orris-inc/leasebot/internal/infrastructure/exchangerate"
	"github.com/orris-inc/leasebot/internal/infrastructure/jobstore"
	"github.com/orris-inc/leasebot/internal/infrastructure/provisioning"
	"github.com/orris-inc/leasebot/internal/infrastructure/scheduler"
	"github.com/orris-inc/leasebot/internal/infrastructure/telegram"
	"github.com/orris-inc/leasebot/internal/shared/biztime"
)

// services holds the outbound collaborators of the use cases.
type services struct {
	rates       *exchangerate.Service
	provisioner *provisioning.Provisioner
	botAPI      *tgbotapi.BotAPI
	// notifier stays a nil interface when Telegram is disabled.
	notifier notification.Notifier
}

func (c *Container) initInfrastructure(ctx context.Context) error {
	if c.cfg.UsesRedis() {
		client, err := cache.NewRedisClient(ctx, c.cfg.Redis, c.log.Named("redis"))
		if err != nil {
			return err
		}
		c.redis = client
	}

	c.initRepositories()

	c.svcs = &services{
		rates:       exchangerate.NewService(c.cfg.ExchangeRate, c.log.Named("exchangerate")),
		provisioner: provisioning.NewProvisioner(c.cfg.Provisioning, c.log.Named("provisioning")),
	}

	if c.cfg.Telegram.Enabled {
		api, err := tgbotapi.NewBotAPI(c.cfg.Telegram.Token)
		if err != nil {
			return fmt.Errorf("failed to connect telegram bot: %w", err)
		}
		c.svcs.botAPI = api
		c.svcs.notifier = telegram.NewNotifier(api, c.log.Named("telegram"))
		c.log.Infow("telegram bot authorized", "bot", api.Self.UserName)
	} else {
		c.log.Infow("telegram disabled, notifications will not be sent")
	}
	return nil
}

func (c *Container) initScheduler() error {
	var store job.Store
	switch c.cfg.Scheduler.JobStore {
	case "redis":
		store = jobstore.NewRedisStore(c.redis, c.cfg.Scheduler.KeyPrefix, c.log.Named("jobstore"))
	default:
		store = jobstore.NewDBStore(c.db, c.log.Named("jobstore"))
	}

	c.jobStore = store

	engine, err := scheduler.NewGocronEngine(biztime.Location())
	if err != nil {
		return fmt.Errorf("failed to create timer engine: %w", err)
	}

	c.scheduler = scheduler.NewJobScheduler(
		engine,
		store,
		c.repos.rentalRepo,
		scheduler.OptionsFromConfig(c.cfg.Scheduler),
		c.log.Named("scheduler"),
	)
	return nil
}
