package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/orris-inc/leasebot/internal/application/account/usecases"
	"github.com/orris-inc/leasebot/internal/shared/logger"
	"github.com/orris-inc/leasebot/internal/shared/utils"
)

type UserHandler struct {
	createUserUC     createUserUseCase
	deleteUserUC     deleteUserUseCase
	changePasswordUC changePasswordUseCase
	listUsersUC      listUsersUseCase
	logger           logger.Interface
}

func NewUserHandler(
	createUserUC createUserUseCase,
	deleteUserUC deleteUserUseCase,
	changePasswordUC changePasswordUseCase,
	listUsersUC listUsersUseCase,
	logger logger.Interface,
) *UserHandler {
	return &UserHandler{
		createUserUC:     createUserUC,
		deleteUserUC:     deleteUserUC,
		changePasswordUC: changePasswordUC,
		listUsersUC:      listUsersUC,
		logger:           logger,
	}
}

type CreateUserRequest struct {
	Username  string          `json:"username" binding:"required,max=32"`
	Duration  string          `json:"duration" binding:"required"`
	PriceRate decimal.Decimal `json:"price_rate"`
	Amount    decimal.Decimal `json:"amount"`
	Currency  string          `json:"currency" binding:"omitempty,oneof=INR USD inr usd"`
}

type CreateUserResponse struct {
	Username    string `json:"username"`
	UUID        string `json:"uuid"`
	Password    string `json:"password"`
	RentalID    uint   `json:"rental_id"`
	EndTime     int64  `json:"end_time"`
	Reactivated bool   `json:"reactivated"`
}

type DeleteUserResponse struct {
	Username       string `json:"username"`
	AccountRemoved bool   `json:"account_removed"`
	ClosedRentals  []uint `json:"closed_rentals"`
}

type PasswordResponse struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type UserResponse struct {
	Username  string          `json:"username"`
	UUID      string          `json:"uuid"`
	Balance   decimal.Decimal `json:"balance"`
	RentalID  uint            `json:"rental_id,omitempty"`
	State     string          `json:"state,omitempty"`
	EndTime   int64           `json:"end_time,omitempty"`
	Remaining string          `json:"remaining,omitempty"`
	PriceRate decimal.Decimal `json:"price_rate"`
	Telegram  string          `json:"telegram,omitempty"`
}

func (h *UserHandler) CreateUser(c *gin.Context) {
	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warnw("invalid request body for create user", "error", err)
		utils.ErrorResponseWithError(c, utils.BindingError(err))
		return
	}

	result, err := h.createUserUC.Execute(c.Request.Context(), usecases.CreateUserCommand{
		Username:  req.Username,
		Duration:  req.Duration,
		PriceRate: req.PriceRate,
		Amount:    req.Amount,
		Currency:  strings.ToUpper(req.Currency),
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.CreatedResponse(c, CreateUserResponse{
		Username:    result.User.LinuxUsername(),
		UUID:        result.User.UUID(),
		Password:    result.Password,
		RentalID:    result.Rental.ID(),
		EndTime:     result.Rental.EndTime(),
		Reactivated: result.Reactivated,
	}, "User created successfully")
}

func (h *UserHandler) DeleteUser(c *gin.Context) {
	result, err := h.deleteUserUC.Execute(c.Request.Context(), c.Param("username"))
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	closed := result.ClosedRentals
	if closed == nil {
		closed = []uint{}
	}
	utils.SuccessResponse(c, http.StatusOK, "User deleted successfully", DeleteUserResponse{
		Username:       result.Username,
		AccountRemoved: result.AccountRemoved,
		ClosedRentals:  closed,
	})
}

func (h *UserHandler) ChangePassword(c *gin.Context) {
	username := c.Param("username")
	password, err := h.changePasswordUC.Execute(c.Request.Context(), username)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Password changed successfully", PasswordResponse{
		Username: username,
		Password: password,
	})
}

func (h *UserHandler) ListUsers(c *gin.Context) {
	summaries, err := h.listUsersUC.Execute(c.Request.Context())
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	items := make([]UserResponse, 0, len(summaries))
	for _, s := range summaries {
		items = append(items, UserResponse{
			Username:  s.Username,
			UUID:      s.UUID,
			Balance:   s.Balance,
			RentalID:  s.RentalID,
			State:     string(s.State),
			EndTime:   s.EndTime,
			Remaining: s.Remaining,
			PriceRate: s.PriceRate,
			Telegram:  s.Telegram,
		})
	}
	utils.ListSuccessResponse(c, items, len(items))
}
