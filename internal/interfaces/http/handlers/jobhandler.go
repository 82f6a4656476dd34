package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/orris-inc/leasebot/internal/shared/errors"
	"github.com/orris-inc/leasebot/internal/shared/logger"
	"github.com/orris-inc/leasebot/internal/shared/utils"
)

type JobHandler struct {
	scheduler jobScheduler
	logger    logger.Interface
}

func NewJobHandler(scheduler jobScheduler, logger logger.Interface) *JobHandler {
	return &JobHandler{scheduler: scheduler, logger: logger}
}

type JobResponse struct {
	ID       string     `json:"id"`
	Kind     string     `json:"kind"`
	Category string     `json:"category"`
	Trigger  string     `json:"trigger"`
	RunAt    *time.Time `json:"run_at,omitempty"`
	RentalID uint       `json:"rental_id,omitempty"`
}

// ListJobs returns the live timer set.
func (h *JobHandler) ListJobs(c *gin.Context) {
	jobs := h.scheduler.Jobs()
	items := make([]JobResponse, 0, len(jobs))
	for _, j := range jobs {
		item := JobResponse{
			ID:       j.ID,
			Kind:     string(j.Kind),
			Category: string(j.Category),
			Trigger:  j.Trigger.String(),
			RentalID: j.RentalID,
		}
		if j.Trigger.IsOneShot() {
			runAt := j.Trigger.RunAt
			item.RunAt = &runAt
		}
		items = append(items, item)
	}
	utils.ListSuccessResponse(c, items, len(items))
}

// RunDeduction runs the daily deduction callback now and waits for it.
func (h *JobHandler) RunDeduction(c *gin.Context) {
	if err := h.scheduler.RunDeductionNow(c.Request.Context()); err != nil {
		h.logger.Errorw("manual deduction run failed", "error", err)
		utils.ErrorResponseWithError(c, errors.NewInternalError("deduction run failed").WithCause(err))
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "Deduction sweep completed", nil)
}
