package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/orris-inc/leasebot/internal/application/account/usecases"
	"github.com/orris-inc/leasebot/internal/shared/logger"
	"github.com/orris-inc/leasebot/internal/shared/utils"
)

// TelegramHandler links chat identities on behalf of users who cannot
// reach the bot's /start flow.
type TelegramHandler struct {
	linkUC telegramLinkUseCase
	logger logger.Interface
}

func NewTelegramHandler(linkUC telegramLinkUseCase, logger logger.Interface) *TelegramHandler {
	return &TelegramHandler{linkUC: linkUC, logger: logger}
}

type LinkTelegramRequest struct {
	Token          string `json:"token" binding:"required"`
	TelegramUserID int64  `json:"telegram_user_id" binding:"required"`
	Username       string `json:"username"`
	FirstName      string `json:"first_name"`
	LastName       string `json:"last_name"`
}

type TelegramLinkResponse struct {
	TelegramUserID int64  `json:"telegram_user_id"`
	Username       string `json:"username,omitempty"`
	DisplayName    string `json:"display_name"`
}

func (h *TelegramHandler) Link(c *gin.Context) {
	var req LinkTelegramRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warnw("invalid request body for telegram link", "error", err)
		utils.ErrorResponseWithError(c, utils.BindingError(err))
		return
	}

	link, err := h.linkUC.Link(c.Request.Context(), usecases.LinkTelegramCommand{
		Token:          req.Token,
		TelegramUserID: req.TelegramUserID,
		Username:       req.Username,
		FirstName:      req.FirstName,
		LastName:       req.LastName,
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.CreatedResponse(c, TelegramLinkResponse{
		TelegramUserID: link.TelegramUserID(),
		Username:       link.Username(),
		DisplayName:    link.DisplayName(),
	}, "Telegram account linked")
}

func (h *TelegramHandler) Unlink(c *gin.Context) {
	if err := h.linkUC.Unlink(c.Request.Context(), c.Param("username")); err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "Telegram account unlinked", nil)
}
