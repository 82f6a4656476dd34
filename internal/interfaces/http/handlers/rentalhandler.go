package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	rentaluc "github.com/orris-inc/leasebot/internal/application/rental/usecases"
	"github.com/orris-inc/leasebot/internal/shared/logger"
	"github.com/orris-inc/leasebot/internal/shared/utils"
)

// RentalHandler extends and reduces plans. The username "all" targets every
// active rental.
type RentalHandler struct {
	modifyPlanUC modifyPlanUseCase
	logger       logger.Interface
}

func NewRentalHandler(modifyPlanUC modifyPlanUseCase, logger logger.Interface) *RentalHandler {
	return &RentalHandler{modifyPlanUC: modifyPlanUC, logger: logger}
}

// ModifyPlanRequest optionally carries a payment recorded with an extension.
type ModifyPlanRequest struct {
	Duration string           `json:"duration" binding:"required"`
	Amount   *decimal.Decimal `json:"amount,omitempty"`
	Currency string           `json:"currency,omitempty" binding:"omitempty,oneof=INR USD inr usd"`
}

type PlanChangeResponse struct {
	Username string `json:"username"`
	RentalID uint   `json:"rental_id"`
	EndTime  int64  `json:"end_time"`
	Error    string `json:"error,omitempty"`
}

type ModifyPlanResponse struct {
	Seconds int64                `json:"seconds"`
	Changes []PlanChangeResponse `json:"changes"`
	Payment *PaymentResponse     `json:"payment,omitempty"`
	Balance *decimal.Decimal     `json:"balance,omitempty"`
}

func (h *RentalHandler) ExtendPlan(c *gin.Context) {
	h.modify(c, h.modifyPlanUC.Extend, "Plan extended")
}

func (h *RentalHandler) ReducePlan(c *gin.Context) {
	h.modify(c, h.modifyPlanUC.Reduce, "Plan reduced")
}

func (h *RentalHandler) modify(
	c *gin.Context,
	apply func(context.Context, rentaluc.ModifyPlanCommand) (*rentaluc.ModifyPlanResult, error),
	message string,
) {
	var req ModifyPlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warnw("invalid request body for plan change", "error", err)
		utils.ErrorResponseWithError(c, utils.BindingError(err))
		return
	}

	cmd := rentaluc.ModifyPlanCommand{
		Username: c.Param("username"),
		Duration: req.Duration,
		Currency: req.Currency,
	}
	if req.Amount != nil {
		cmd.Amount = *req.Amount
	}
	result, err := apply(c.Request.Context(), cmd)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	resp := ModifyPlanResponse{Seconds: result.Seconds, Changes: make([]PlanChangeResponse, 0, len(result.Changes))}
	for _, ch := range result.Changes {
		item := PlanChangeResponse{Username: ch.Username, RentalID: ch.RentalID, EndTime: ch.EndTime}
		if ch.Err != nil {
			item.Error = ch.Err.Error()
		}
		resp.Changes = append(resp.Changes, item)
	}
	if result.Payment != nil {
		paid := toPaymentResponse(result.Payment)
		resp.Payment = &paid
		resp.Balance = &result.Balance
	}
	utils.SuccessResponse(c, http.StatusOK, message, resp)
}
