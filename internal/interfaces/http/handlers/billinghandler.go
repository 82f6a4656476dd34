package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	billinguc "github.com/orris-inc/leasebot/internal/application/billing/usecases"
	"github.com/orris-inc/leasebot/internal/domain/payment"
	"github.com/orris-inc/leasebot/internal/shared/biztime"
	"github.com/orris-inc/leasebot/internal/shared/errors"
	"github.com/orris-inc/leasebot/internal/shared/logger"
	"github.com/orris-inc/leasebot/internal/shared/utils"
)

type BillingHandler struct {
	balanceUC  balanceUseCase
	historyUC  paymentHistoryUseCase
	earningsUC earningsUseCase
	logger     logger.Interface
	now        func() time.Time
}

func NewBillingHandler(
	balanceUC balanceUseCase,
	historyUC paymentHistoryUseCase,
	earningsUC earningsUseCase,
	logger logger.Interface,
) *BillingHandler {
	return &BillingHandler{
		balanceUC:  balanceUC,
		historyUC:  historyUC,
		earningsUC: earningsUC,
		logger:     logger,
		now:        biztime.NowUTC,
	}
}

type BalanceRequest struct {
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency" binding:"omitempty,oneof=INR USD inr usd"`
}

type BalanceResponse struct {
	Username  string          `json:"username"`
	PaymentID uint            `json:"payment_id"`
	Amount    decimal.Decimal `json:"amount"`
	Currency  string          `json:"currency"`
	Balance   decimal.Decimal `json:"balance"`
}

type PaymentResponse struct {
	ID          uint            `json:"id"`
	Amount      decimal.Decimal `json:"amount"`
	Currency    string          `json:"currency"`
	PaymentDate time.Time       `json:"payment_date"`
}

type EarningsResponse struct {
	From    time.Time                  `json:"from"`
	To      time.Time                  `json:"to"`
	Count   int                        `json:"count"`
	Credits decimal.Decimal            `json:"credits"`
	Refunds decimal.Decimal            `json:"refunds"`
	Totals  map[string]decimal.Decimal `json:"totals"`
}

func (h *BillingHandler) Credit(c *gin.Context) {
	h.balance(c, h.balanceUC.Credit, "Balance credited")
}

// Debit refunds a positive amount from the balance.
func (h *BillingHandler) Debit(c *gin.Context) {
	h.balance(c, h.balanceUC.Debit, "Balance debited")
}

func (h *BillingHandler) balance(
	c *gin.Context,
	apply func(context.Context, billinguc.BalanceCommand) (*billinguc.BalanceResult, error),
	message string,
) {
	var req BalanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warnw("invalid request body for balance change", "error", err)
		utils.ErrorResponseWithError(c, utils.BindingError(err))
		return
	}

	result, err := apply(c.Request.Context(), billinguc.BalanceCommand{
		Username: c.Param("username"),
		Amount:   req.Amount,
		Currency: strings.ToUpper(req.Currency),
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, message, BalanceResponse{
		Username:  result.Username,
		PaymentID: result.Payment.ID(),
		Amount:    result.Payment.Amount(),
		Currency:  string(result.Payment.Currency()),
		Balance:   result.Balance,
	})
}

func (h *BillingHandler) PaymentHistory(c *gin.Context) {
	payments, err := h.historyUC.Execute(c.Request.Context(), c.Param("username"))
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	items := make([]PaymentResponse, 0, len(payments))
	for _, p := range payments {
		items = append(items, toPaymentResponse(p))
	}
	utils.ListSuccessResponse(c, items, len(items))
}

func toPaymentResponse(p *payment.Payment) PaymentResponse {
	return PaymentResponse{
		ID:          p.ID(),
		Amount:      p.Amount(),
		Currency:    string(p.Currency()),
		PaymentDate: p.PaymentDate(),
	}
}

// Earnings sums payments between the from and to dates (YYYY-MM-DD, business
// timezone, both inclusive). Missing bounds mean all time.
func (h *BillingHandler) Earnings(c *gin.Context) {
	from := time.Unix(0, 0).UTC()
	to := h.now().Add(time.Second)

	if s := c.Query("from"); s != "" {
		t, err := biztime.ParseDateInBizTimezone(s)
		if err != nil {
			utils.ErrorResponseWithError(c, errors.NewValidationError("from must be YYYY-MM-DD", err.Error()))
			return
		}
		from = t
	}
	if s := c.Query("to"); s != "" {
		t, err := biztime.ParseDateInBizTimezone(s)
		if err != nil {
			utils.ErrorResponseWithError(c, errors.NewValidationError("to must be YYYY-MM-DD", err.Error()))
			return
		}
		to = t.AddDate(0, 0, 1)
	}
	if !to.After(from) {
		utils.ErrorResponseWithError(c, errors.NewValidationError("to must not be before from"))
		return
	}

	report, err := h.earningsUC.Execute(c.Request.Context(), from, to)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	totals := make(map[string]decimal.Decimal, len(report.Totals))
	for cur, amount := range report.Totals {
		totals[string(cur)] = amount
	}
	utils.SuccessResponse(c, http.StatusOK, "", EarningsResponse{
		From:    report.From,
		To:      report.To,
		Count:   report.Count,
		Credits: report.Credits,
		Refunds: report.Refunds,
		Totals:  totals,
	})
}
