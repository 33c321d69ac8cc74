package handlers

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/metrix-hardline/subscription-service/internal/domain"
	"github.com/metrix-hardline/subscription-service/internal/metrics"
	"github.com/metrix-hardline/subscription-service/internal/service"
	"github.com/metrix-hardline/subscription-service/pkg/logger"
)

const signatureHeader = "Stripe-Signature"

// outcomeProcessed метка результата для успешно примененных событий
const outcomeProcessed = "processed"

// BillingEventSource проверяет подпись вебхука и классифицирует событие
type BillingEventSource interface {
	VerifyAndClassify(payload []byte, sigHeader string) (domain.BillingEvent, error)
}

// EventMarker отмечает уже обработанные события биллинга. Опционален:
// при nil дедупликация по доставкам отключена.
type EventMarker interface {
	AlreadyProcessed(ctx context.Context, eventID string) (bool, error)
	MarkProcessed(ctx context.Context, eventID string) error
}

// OutcomePublisher публикует итоги реконсиляции в аудит-поток. Опционален.
type OutcomePublisher interface {
	PublishSyncOutcome(ctx context.Context, ev domain.BillingEvent, result service.SyncResult) error
}

// WebhookHandler обработчик вебхуков биллинга
type WebhookHandler struct {
	events    BillingEventSource
	sync      service.SyncService
	marker    EventMarker
	publisher OutcomePublisher
	metrics   metrics.BillingMetrics
	log       *logger.Logger
}

// NewWebhookHandler создает новый обработчик вебхуков биллинга
func NewWebhookHandler(
	events BillingEventSource,
	sync service.SyncService,
	marker EventMarker,
	publisher OutcomePublisher,
	billingMetrics metrics.BillingMetrics,
	log *logger.Logger,
) *WebhookHandler {
	return &WebhookHandler{
		events:    events,
		sync:      sync,
		marker:    marker,
		publisher: publisher,
		metrics:   billingMetrics,
		log:       log,
	}
}

// HandleBillingWebhook обрабатывает POST-запрос с событием биллинга
func (h *WebhookHandler) HandleBillingWebhook(c *gin.Context) {
	start := time.Now()
	ctx := c.Request.Context()

	sigHeader := c.GetHeader(signatureHeader)
	if sigHeader == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing signature header"})
		return
	}

	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		h.log.Warnw("Failed to read webhook body", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read request body"})
		return
	}

	ev, err := h.events.VerifyAndClassify(payload, sigHeader)
	if err != nil {
		h.log.Warnw("Webhook rejected", "error", err)
		h.metrics.IncWebhookEvent(ev.RawType, "rejected")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if h.marker != nil && ev.Type != domain.BillingEventUnhandled {
		processed, err := h.marker.AlreadyProcessed(ctx, ev.ID)
		if err != nil {
			// Маркер недоступен: событие обрабатываем как обычно
			h.log.Warnw("Event marker lookup failed", "error", err, "event_id", ev.ID)
		} else if processed {
			h.log.Infow("Duplicate event delivery skipped", "event_id", ev.ID, "type", ev.RawType)
			h.metrics.IncWebhookEvent(ev.RawType, domain.IgnoreDuplicate)
			c.JSON(http.StatusOK, gin.H{"received": true, "ignored": domain.IgnoreDuplicate})
			return
		}
	}

	result, err := h.sync.ProcessEvent(ctx, ev)
	if err != nil {
		h.log.Errorw("Billing event processing failed", "error", err, "event_id", ev.ID, "type", ev.RawType)
		h.metrics.IncWebhookEvent(ev.RawType, "error")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if h.marker != nil && result.Ignored == "" {
		if err := h.marker.MarkProcessed(ctx, ev.ID); err != nil {
			h.log.Warnw("Failed to mark event as processed", "error", err, "event_id", ev.ID)
		}
	}

	if h.publisher != nil {
		if err := h.publisher.PublishSyncOutcome(ctx, ev, result); err != nil {
			h.log.Warnw("Failed to publish sync outcome", "error", err, "event_id", ev.ID)
		}
	}

	outcome := result.Ignored
	if outcome == "" {
		outcome = outcomeProcessed
	}
	h.metrics.IncWebhookEvent(ev.RawType, outcome)
	h.metrics.ObserveWebhookDuration(time.Since(start).Seconds())
	if result.EmailSent {
		h.metrics.IncSetupEmailSent()
	}

	resp := gin.H{"received": true}
	if result.Ignored != "" {
		resp["ignored"] = result.Ignored
	}
	c.JSON(http.StatusOK, resp)
}
