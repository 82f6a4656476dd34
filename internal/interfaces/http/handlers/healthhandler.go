package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/orris-inc/leasebot/internal/shared/logger"
	"github.com/orris-inc/leasebot/internal/shared/utils"
)

const healthTimeout = 2 * time.Second

type HealthHandler struct {
	db     pinger
	logger logger.Interface
}

func NewHealthHandler(db pinger, logger logger.Interface) *HealthHandler {
	return &HealthHandler{db: db, logger: logger}
}

type HealthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
}

func (h *HealthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
	defer cancel()

	if err := h.db.PingContext(ctx); err != nil {
		h.logger.Warnw("health check failed", "error", err)
		c.JSON(http.StatusServiceUnavailable, utils.APIResponse{
			Success: false,
			Data:    HealthResponse{Status: "degraded", Database: "unreachable"},
			Error:   &utils.ErrorInfo{Type: "unavailable", Message: "database unreachable"},
		})
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "", HealthResponse{Status: "ok", Database: "ok"})
}
