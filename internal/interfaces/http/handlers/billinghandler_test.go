package handlers

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	billinguc "github.com/orris-inc/leasebot/internal/application/billing/usecases"
	"github.com/orris-inc/leasebot/internal/domain/payment"
	"github.com/orris-inc/leasebot/internal/domain/shared"
	"github.com/orris-inc/leasebot/internal/interfaces/http/handlers/testutil"
	"github.com/orris-inc/leasebot/internal/shared/biztime"
	"github.com/orris-inc/leasebot/internal/shared/errors"
	"github.com/orris-inc/leasebot/internal/shared/logger"
)

type mockBalanceUC struct {
	op     string
	cmd    billinguc.BalanceCommand
	result *billinguc.BalanceResult
	err    error
}

func (m *mockBalanceUC) Credit(ctx context.Context, cmd billinguc.BalanceCommand) (*billinguc.BalanceResult, error) {
	m.op, m.cmd = "credit", cmd
	return m.result, m.err
}

func (m *mockBalanceUC) Debit(ctx context.Context, cmd billinguc.BalanceCommand) (*billinguc.BalanceResult, error) {
	m.op, m.cmd = "debit", cmd
	return m.result, m.err
}

type mockPaymentHistoryUC struct {
	result []*payment.Payment
	err    error
}

func (m *mockPaymentHistoryUC) Execute(ctx context.Context, username string) ([]*payment.Payment, error) {
	return m.result, m.err
}

type mockEarningsUC struct {
	from, to time.Time
	result   *billinguc.EarningsReport
	err      error
}

func (m *mockEarningsUC) Execute(ctx context.Context, from, to time.Time) (*billinguc.EarningsReport, error) {
	m.from, m.to = from, to
	if m.result != nil {
		m.result.From, m.result.To = from, to
	}
	return m.result, m.err
}

func createTestPayment(t *testing.T, id uint, amount int64) *payment.Payment {
	t.Helper()
	p, err := payment.ReconstructPayment(id, 1, decimal.NewFromInt(amount), shared.CurrencyINR, testNow, testNow)
	require.NoError(t, err)
	return p
}

func newTestBillingHandler(balance balanceUseCase, history paymentHistoryUseCase, earnings earningsUseCase) *BillingHandler {
	h := NewBillingHandler(balance, history, earnings, logger.NewNopLogger())
	h.now = func() time.Time { return testNow }
	return h
}

func TestBillingHandler_Credit(t *testing.T) {
	mockUC := &mockBalanceUC{result: &billinguc.BalanceResult{
		Username: "alice",
		Payment:  createTestPayment(t, 3, 8350),
		Balance:  decimal.NewFromInt(8400),
	}}
	handler := newTestBillingHandler(mockUC, nil, nil)

	c, w := testutil.NewTestContext(http.MethodPost, "/api/v1/users/alice/credit", map[string]any{"amount": "100", "currency": "usd"})
	testutil.SetURLParam(c, "username", "alice")

	handler.Credit(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "credit", mockUC.op)
	assert.Equal(t, "alice", mockUC.cmd.Username)
	assert.Equal(t, "USD", mockUC.cmd.Currency)

	var data BalanceResponse
	_, err := testutil.ParseData(w, &data)
	require.NoError(t, err)
	assert.Equal(t, uint(3), data.PaymentID)
	assert.Equal(t, "INR", data.Currency)
	assert.True(t, data.Balance.Equal(decimal.NewFromInt(8400)))
}

func TestBillingHandler_DebitInsufficientBalance(t *testing.T) {
	mockUC := &mockBalanceUC{err: errors.NewValidationError("insufficient balance")}
	handler := newTestBillingHandler(mockUC, nil, nil)

	c, w := testutil.NewTestContext(http.MethodPost, "/api/v1/users/alice/debit", map[string]any{"amount": 500})
	testutil.SetURLParam(c, "username", "alice")

	handler.Debit(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "debit", mockUC.op)
	assert.True(t, mockUC.cmd.Amount.Equal(decimal.NewFromInt(500)))
	assert.Contains(t, w.Body.String(), "insufficient balance")
}

func TestBillingHandler_PaymentHistory(t *testing.T) {
	mockUC := &mockPaymentHistoryUC{result: []*payment.Payment{createTestPayment(t, 2, -50), createTestPayment(t, 1, 200)}}
	handler := newTestBillingHandler(nil, mockUC, nil)

	c, w := testutil.NewTestContext(http.MethodGet, "/api/v1/users/alice/payments", nil)
	testutil.SetURLParam(c, "username", "alice")

	handler.PaymentHistory(c)

	require.Equal(t, http.StatusOK, w.Code)
	var data struct {
		Items []PaymentResponse `json:"items"`
		Total int               `json:"total"`
	}
	_, err := testutil.ParseData(w, &data)
	require.NoError(t, err)
	require.Equal(t, 2, data.Total)
	assert.Equal(t, uint(2), data.Items[0].ID)
	assert.True(t, data.Items[0].Amount.Equal(decimal.NewFromInt(-50)))
}

func TestBillingHandler_EarningsDefaultsToAllTime(t *testing.T) {
	mockUC := &mockEarningsUC{result: &billinguc.EarningsReport{
		Count:   2,
		Credits: decimal.NewFromInt(200),
		Refunds: decimal.NewFromInt(50),
		Totals:  map[shared.Currency]decimal.Decimal{shared.CurrencyINR: decimal.NewFromInt(150)},
	}}
	handler := newTestBillingHandler(nil, nil, mockUC)

	c, w := testutil.NewTestContext(http.MethodGet, "/api/v1/earnings", nil)

	handler.Earnings(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(0), mockUC.from.Unix())
	assert.Equal(t, testNow.Add(time.Second), mockUC.to)

	var data EarningsResponse
	_, err := testutil.ParseData(w, &data)
	require.NoError(t, err)
	assert.Equal(t, 2, data.Count)
	assert.True(t, data.Totals["INR"].Equal(decimal.NewFromInt(150)))
}

func TestBillingHandler_EarningsRangeIsInclusive(t *testing.T) {
	mockUC := &mockEarningsUC{result: &billinguc.EarningsReport{Totals: map[shared.Currency]decimal.Decimal{}}}
	handler := newTestBillingHandler(nil, nil, mockUC)

	c, w := testutil.NewTestContext(http.MethodGet, "/api/v1/earnings", nil)
	testutil.SetQueryParams(c, map[string]string{"from": "2026-02-01", "to": "2026-02-28"})

	handler.Earnings(c)

	require.Equal(t, http.StatusOK, w.Code)
	from, err := biztime.ParseDateInBizTimezone("2026-02-01")
	require.NoError(t, err)
	to, err := biztime.ParseDateInBizTimezone("2026-03-01")
	require.NoError(t, err)
	assert.Equal(t, from, mockUC.from)
	assert.Equal(t, to, mockUC.to)
}

func TestBillingHandler_EarningsInvalidRange(t *testing.T) {
	tests := []struct {
		name  string
		query map[string]string
	}{
		{"bad from", map[string]string{"from": "01/02/2026"}},
		{"bad to", map[string]string{"to": "tomorrow"}},
		{"reversed", map[string]string{"from": "2026-03-01", "to": "2026-02-01"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockUC := &mockEarningsUC{}
			handler := newTestBillingHandler(nil, nil, mockUC)
			c, w := testutil.NewTestContext(http.MethodGet, "/api/v1/earnings", nil)
			testutil.SetQueryParams(c, tt.query)

			handler.Earnings(c)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.True(t, mockUC.from.IsZero())
		})
	}
}
