package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/metrix-hardline/subscription-service/internal/api/rest/middleware"
	"github.com/metrix-hardline/subscription-service/internal/metrics"
	"github.com/metrix-hardline/subscription-service/internal/service"
	"github.com/metrix-hardline/subscription-service/pkg/logger"
)

// PushHandler обработчик отправки push-уведомлений
type PushHandler struct {
	push    service.PushService
	metrics metrics.BillingMetrics
	log     *logger.Logger
}

// NewPushHandler создает новый обработчик push-уведомлений
func NewPushHandler(push service.PushService, billingMetrics metrics.BillingMetrics, log *logger.Logger) *PushHandler {
	return &PushHandler{push: push, metrics: billingMetrics, log: log}
}

type pushRequest struct {
	Title string `json:"title" binding:"required"`
	Body  string `json:"body" binding:"required"`
	URL   string `json:"url"`
}

// SendPush отправляет уведомление на все устройства принципала
func (h *PushHandler) SendPush(c *gin.Context) {
	principalID := c.GetString(middleware.PrincipalIDKey)
	if principalID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req pushRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Title and body required"})
		return
	}

	sent, failed, err := h.push.Send(c.Request.Context(), principalID, req.Title, req.Body, req.URL)
	if err != nil {
		h.log.Errorw("Failed to send push notification", "error", err, "principal_id", principalID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to send notification"})
		return
	}

	h.metrics.AddPushResults(sent, failed)
	c.JSON(http.StatusOK, gin.H{"ok": true, "sent": sent, "failed": failed})
}
