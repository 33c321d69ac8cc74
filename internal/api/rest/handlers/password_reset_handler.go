package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/metrix-hardline/subscription-service/internal/domain"
	"github.com/metrix-hardline/subscription-service/internal/service"
	"github.com/metrix-hardline/subscription-service/pkg/logger"
)

// PasswordResetHandler обработчик повторной отправки письма установки пароля
type PasswordResetHandler struct {
	reset service.ResetService
	log   *logger.Logger
}

// NewPasswordResetHandler создает новый обработчик сброса пароля
func NewPasswordResetHandler(reset service.ResetService, log *logger.Logger) *PasswordResetHandler {
	return &PasswordResetHandler{reset: reset, log: log}
}

type resendRequest struct {
	Email string `json:"email" binding:"required"`
}

// ResendSetupLink обрабатывает запрос на повторную отправку ссылки
func (h *PasswordResetHandler) ResendSetupLink(c *gin.Context) {
	var req resendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Email required"})
		return
	}

	err := h.reset.Resend(c.Request.Context(), req.Email)
	if errors.Is(err, domain.ErrSubscriptionInactive) {
		c.JSON(http.StatusForbidden, gin.H{"error": "No active subscription for this email"})
		return
	}
	if err != nil {
		h.log.Errorw("Failed to resend setup link", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to send email"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true})
}
