package http

import (
	"context"
	"errors"
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/orris-inc/leasebot/internal/domain/job"
	"github.com/orris-inc/leasebot/internal/infrastructure/config"
	"github.com/orris-inc/leasebot/internal/infrastructure/scheduler"
	"github.com/orris-inc/leasebot/internal/infrastructure/telegram"
	"github.com/orris-inc/leasebot/internal/interfaces/http/middleware"
	"github.com/orris-inc/leasebot/internal/shared/logger"
)

// Container holds the infrastructure, repositories, use cases and handlers of
// one process and owns their shutdown.
type Container struct {
	// Core infrastructure
	engine *gin.Engine
	db     *gorm.DB
	cfg    *config.Config
	log    logger.Interface
	redis  *redis.Client

	repos *repositories
	svcs  *services
	ucs   *allUseCases
	hdlrs *allHandlers

	scheduler   *scheduler.JobScheduler
	jobStore    job.Store
	bot         *telegram.Bot
	rateLimiter *middleware.RateLimiter
}

// NewContainer wires every component. Redis is connected only when the
// configuration needs it and the bot only when Telegram is enabled.
func NewContainer(ctx context.Context, db *gorm.DB, cfg *config.Config, log logger.Interface) (*Container, error) {
	c := &Container{
		engine: gin.New(),
		db:     db,
		cfg:    cfg,
		log:    log,
	}

	// Section 1: Infrastructure - Redis, repositories, outbound services
	if err := c.initInfrastructure(ctx); err != nil {
		c.Shutdown()
		return nil, err
	}

	// Section 2: Scheduler - job store, timer engine
	if err := c.initScheduler(); err != nil {
		c.Shutdown()
		return nil, err
	}

	// Section 3: Use cases and the scheduler callbacks
	c.initUseCases()

	// Section 4: Handlers, bot and middlewares
	if err := c.initHandlers(); err != nil {
		c.Shutdown()
		return nil, err
	}
	c.setupRoutes()

	return c, nil
}

func (c *Container) Engine() *gin.Engine { return c.engine }

func (c *Container) Scheduler() *scheduler.JobScheduler { return c.scheduler }

// JobStore returns the persisted job records backing the scheduler.
func (c *Container) JobStore() job.Store { return c.jobStore }

// Bot is nil when Telegram is disabled.
func (c *Container) Bot() *telegram.Bot { return c.bot }

// RunDeductionSweep runs one expire-overdue pass followed by one deduction
// sweep, exactly as the daily job does.
func (c *Container) RunDeductionSweep(ctx context.Context) error {
	if c.scheduler == nil {
		return errors.New("scheduler is not initialized")
	}
	if err := c.scheduler.RunDeductionNow(ctx); err != nil {
		return fmt.Errorf("deduction sweep failed: %w", err)
	}
	return nil
}

// Shutdown stops the scheduler and closes Redis. The database is owned by
// the caller.
func (c *Container) Shutdown() {
	if c.scheduler != nil {
		if err := c.scheduler.Stop(); err != nil {
			c.log.Errorw("failed to stop job scheduler", "error", err)
		}
	}
	if c.redis != nil {
		if err := c.redis.Close(); err != nil {
			c.log.Warnw("failed to close redis client", "error", err)
		}
		c.redis = nil
	}
}
