package http

import (
	"github.com/gin-gonic/gin"

	"github.com/orris-inc/leasebot/internal/interfaces/http/middleware"
	"github.com/orris-inc/leasebot/internal/shared/utils"
)

// setupRoutes configures the admin API. Every route except /health needs the
// admin bearer token.
func (c *Container) setupRoutes() {
	log := c.log.Named("http")
	utils.UseJSONFieldNames()
	c.engine.Use(middleware.Recovery(log))
	c.engine.Use(middleware.Logger(log))
	c.engine.Use(middleware.ErrorHandler(log))

	h := c.hdlrs
	admin := middleware.IsAdmin(c.cfg.Admin.APIToken)
	guard := func(handler gin.HandlerFunc) gin.HandlerFunc {
		return middleware.Guard(handler, admin)
	}

	v1 := c.engine.Group("/api/v1")
	v1.GET("/health", h.healthHandler.Health)

	if c.rateLimiter != nil {
		v1.Use(c.rateLimiter.Limit())
	}

	users := v1.Group("/users")
	{
		users.POST("", guard(h.userHandler.CreateUser))
		users.GET("", guard(h.userHandler.ListUsers))
		users.DELETE("/:username", guard(h.userHandler.DeleteUser))
		users.POST("/:username/password", guard(h.userHandler.ChangePassword))
		users.POST("/:username/credit", guard(h.billingHandler.Credit))
		users.POST("/:username/debit", guard(h.billingHandler.Debit))
		users.GET("/:username/payments", guard(h.billingHandler.PaymentHistory))
	}

	rentals := v1.Group("/rentals")
	{
		rentals.POST("/:username/extend", guard(h.rentalHandler.ExtendPlan))
		rentals.POST("/:username/reduce", guard(h.rentalHandler.ReducePlan))
	}

	v1.GET("/earnings", guard(h.billingHandler.Earnings))

	tg := v1.Group("/telegram")
	{
		tg.POST("/link", guard(h.telegramHandler.Link))
		tg.DELETE("/:username", guard(h.telegramHandler.Unlink))
	}

	jobs := v1.Group("/jobs")
	{
		jobs.GET("", guard(h.jobHandler.ListJobs))
		jobs.POST("/deduction/run", guard(h.jobHandler.RunDeduction))
	}
}
