package handlers_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/metrix-hardline/subscription-service/internal/api/rest/handlers"
	"github.com/metrix-hardline/subscription-service/internal/domain"
	"github.com/metrix-hardline/subscription-service/internal/metrics"
	"github.com/metrix-hardline/subscription-service/internal/service"
	"github.com/metrix-hardline/subscription-service/pkg/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testLogger() *logger.Logger {
	return logger.New(logger.ERROR)
}

func testMetrics() metrics.BillingMetrics {
	return metrics.NewBillingMetrics(prometheus.NewRegistry(), testLogger())
}

type fakeEventSource struct {
	ev  domain.BillingEvent
	err error
}

func (f *fakeEventSource) VerifyAndClassify(_ []byte, _ string) (domain.BillingEvent, error) {
	return f.ev, f.err
}

type fakeSync struct {
	result service.SyncResult
	err    error
	calls  int
}

func (f *fakeSync) ProcessEvent(_ context.Context, _ domain.BillingEvent) (service.SyncResult, error) {
	f.calls++
	return f.result, f.err
}

type fakeMarker struct {
	processed map[string]bool
	marked    []string
	checkErr  error
	markErr   error
}

func newFakeMarker() *fakeMarker {
	return &fakeMarker{processed: make(map[string]bool)}
}

func (f *fakeMarker) AlreadyProcessed(_ context.Context, eventID string) (bool, error) {
	if f.checkErr != nil {
		return false, f.checkErr
	}
	return f.processed[eventID], nil
}

func (f *fakeMarker) MarkProcessed(_ context.Context, eventID string) error {
	if f.markErr != nil {
		return f.markErr
	}
	f.marked = append(f.marked, eventID)
	return nil
}

type fakePublisher struct {
	published int
	err       error
}

func (f *fakePublisher) PublishSyncOutcome(_ context.Context, _ domain.BillingEvent, _ service.SyncResult) error {
	f.published++
	return f.err
}

func webhookRouter(h *handlers.WebhookHandler) *gin.Engine {
	r := gin.New()
	r.POST("/webhooks/stripe", h.HandleBillingWebhook)
	return r
}

func postWebhook(r *gin.Engine, body, signature string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/webhooks/stripe", strings.NewReader(body))
	if signature != "" {
		req.Header.Set("Stripe-Signature", signature)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func checkoutBillingEvent() domain.BillingEvent {
	return domain.BillingEvent{
		ID:      "evt_1",
		Type:    domain.BillingEventCheckoutCompleted,
		RawType: string(domain.BillingEventCheckoutCompleted),
		Checkout: &domain.CheckoutPayload{
			PaymentStatus:        "paid",
			CustomerDetailsEmail: "buyer@example.com",
		},
	}
}

func TestHandleBillingWebhook_MissingSignature(t *testing.T) {
	sync := &fakeSync{}
	h := handlers.NewWebhookHandler(&fakeEventSource{}, sync, nil, nil, testMetrics(), testLogger())

	w := postWebhook(webhookRouter(h), `{}`, "")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Zero(t, sync.calls)
}

func TestHandleBillingWebhook_InvalidSignature(t *testing.T) {
	source := &fakeEventSource{err: errors.New("webhook signature verification failed")}
	sync := &fakeSync{}
	h := handlers.NewWebhookHandler(source, sync, nil, nil, testMetrics(), testLogger())

	w := postWebhook(webhookRouter(h), `{}`, "t=1,v1=bad")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "signature verification failed")
	assert.Zero(t, sync.calls)
}

func TestHandleBillingWebhook_Processed(t *testing.T) {
	source := &fakeEventSource{ev: checkoutBillingEvent()}
	sync := &fakeSync{result: service.SyncResult{PrincipalID: "uid-1", EmailSent: true}}
	marker := newFakeMarker()
	publisher := &fakePublisher{}
	h := handlers.NewWebhookHandler(source, sync, marker, publisher, testMetrics(), testLogger())

	w := postWebhook(webhookRouter(h), `{}`, "t=1,v1=ok")

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"received":true}`, w.Body.String())
	assert.Equal(t, 1, sync.calls)
	assert.Equal(t, []string{"evt_1"}, marker.marked)
	assert.Equal(t, 1, publisher.published)
}

func TestHandleBillingWebhook_IgnoredIsNotMarked(t *testing.T) {
	ev := checkoutBillingEvent()
	ev.Checkout.PaymentStatus = "unpaid"
	source := &fakeEventSource{ev: ev}
	sync := &fakeSync{result: service.SyncResult{Ignored: domain.IgnoreNotPaid}}
	marker := newFakeMarker()
	h := handlers.NewWebhookHandler(source, sync, marker, nil, testMetrics(), testLogger())

	w := postWebhook(webhookRouter(h), `{}`, "t=1,v1=ok")

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"received":true,"ignored":"not_paid"}`, w.Body.String())
	assert.Empty(t, marker.marked)
}

func TestHandleBillingWebhook_DuplicateDeliverySkipsSync(t *testing.T) {
	source := &fakeEventSource{ev: checkoutBillingEvent()}
	sync := &fakeSync{}
	marker := newFakeMarker()
	marker.processed["evt_1"] = true
	h := handlers.NewWebhookHandler(source, sync, marker, nil, testMetrics(), testLogger())

	w := postWebhook(webhookRouter(h), `{}`, "t=1,v1=ok")

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"received":true,"ignored":"duplicate"}`, w.Body.String())
	assert.Zero(t, sync.calls)
}

func TestHandleBillingWebhook_MarkerFailureDoesNotBlock(t *testing.T) {
	source := &fakeEventSource{ev: checkoutBillingEvent()}
	sync := &fakeSync{result: service.SyncResult{PrincipalID: "uid-1"}}
	marker := newFakeMarker()
	marker.checkErr = errors.New("redis unavailable")
	h := handlers.NewWebhookHandler(source, sync, marker, nil, testMetrics(), testLogger())

	w := postWebhook(webhookRouter(h), `{}`, "t=1,v1=ok")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, sync.calls)
}

func TestHandleBillingWebhook_SyncErrorIs500(t *testing.T) {
	source := &fakeEventSource{ev: checkoutBillingEvent()}
	sync := &fakeSync{err: errors.New("firestore unavailable")}
	marker := newFakeMarker()
	h := handlers.NewWebhookHandler(source, sync, marker, nil, testMetrics(), testLogger())

	w := postWebhook(webhookRouter(h), `{}`, "t=1,v1=ok")

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "firestore unavailable")
	// Упавшее событие не помечается обработанным
	assert.Empty(t, marker.marked)
}

func TestHandleBillingWebhook_PublisherFailureIsNotFatal(t *testing.T) {
	source := &fakeEventSource{ev: checkoutBillingEvent()}
	sync := &fakeSync{result: service.SyncResult{PrincipalID: "uid-1"}}
	publisher := &fakePublisher{err: errors.New("kafka unavailable")}
	h := handlers.NewWebhookHandler(source, sync, nil, publisher, testMetrics(), testLogger())

	w := postWebhook(webhookRouter(h), `{}`, "t=1,v1=ok")

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestHandleBillingWebhook_UnhandledTypePassesThrough(t *testing.T) {
	source := &fakeEventSource{ev: domain.BillingEvent{
		ID:      "evt_other",
		Type:    domain.BillingEventUnhandled,
		RawType: "invoice.paid",
	}}
	sync := &fakeSync{result: service.SyncResult{Ignored: domain.IgnoreUnhandledType}}
	marker := newFakeMarker()
	marker.processed["evt_other"] = true
	h := handlers.NewWebhookHandler(source, sync, marker, nil, testMetrics(), testLogger())

	w := postWebhook(webhookRouter(h), `{}`, "t=1,v1=ok")

	require.Equal(t, http.StatusOK, w.Code)
	// Нераспознанные типы не дедуплицируются, они и так no-op
	assert.Equal(t, 1, sync.calls)
	assert.JSONEq(t, `{"received":true,"ignored":"unhandled_type"}`, w.Body.String())
}
