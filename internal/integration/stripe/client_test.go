package stripe_test

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/metrix-hardline/subscription-service/internal/domain"
	stripeclient "github.com/metrix-hardline/subscription-service/internal/integration/stripe"
	"github.com/metrix-hardline/subscription-service/pkg/logger"
)

const webhookSecret = "whsec_test_secret"

func newTestClient() *stripeclient.Client {
	return stripeclient.NewClient(stripeclient.Config{
		SecretKey:     "sk_test_key",
		WebhookSecret: webhookSecret,
	}, logger.New(logger.ERROR))
}

// sign строит заголовок Stripe-Signature для тела запроса
func sign(payload []byte, secret string, ts time.Time) string {
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d.%s", ts.Unix(), payload)
	return fmt.Sprintf("t=%d,v1=%s", ts.Unix(), hex.EncodeToString(mac.Sum(nil)))
}

func TestVerifyAndClassify_ValidCheckoutEvent(t *testing.T) {
	payload := []byte(`{
		"id": "evt_1",
		"object": "event",
		"type": "checkout.session.completed",
		"data": {
			"object": {
				"id": "cs_1",
				"object": "checkout.session",
				"payment_status": "paid",
				"customer": "cus_1",
				"subscription": "sub_1",
				"customer_email": "fallback@example.com",
				"customer_details": {"email": "buyer@example.com"},
				"metadata": {"email": "metadata@example.com"}
			}
		}
	}`)

	ev, err := newTestClient().VerifyAndClassify(payload, sign(payload, webhookSecret, time.Now()))
	require.NoError(t, err)

	assert.Equal(t, "evt_1", ev.ID)
	assert.Equal(t, domain.BillingEventCheckoutCompleted, ev.Type)
	require.NotNil(t, ev.Checkout)
	assert.Equal(t, "paid", ev.Checkout.PaymentStatus)
	assert.Equal(t, "buyer@example.com", ev.Checkout.CustomerDetailsEmail)
	assert.Equal(t, "fallback@example.com", ev.Checkout.CustomerEmail)
	assert.Equal(t, "metadata@example.com", ev.Checkout.MetadataEmail)
	assert.Equal(t, "cus_1", ev.Checkout.CustomerID)
	assert.Equal(t, "sub_1", ev.Checkout.SubscriptionID)
}

func TestVerifyAndClassify_ValidSubscriptionEvent(t *testing.T) {
	payload := []byte(`{
		"id": "evt_2",
		"object": "event",
		"type": "customer.subscription.deleted",
		"data": {
			"object": {
				"id": "sub_1",
				"object": "subscription",
				"customer": "cus_1",
				"status": "canceled",
				"current_period_end": 1767225600
			}
		}
	}`)

	ev, err := newTestClient().VerifyAndClassify(payload, sign(payload, webhookSecret, time.Now()))
	require.NoError(t, err)

	assert.Equal(t, domain.BillingEventSubscriptionDeleted, ev.Type)
	require.NotNil(t, ev.Subscription)
	assert.Equal(t, "sub_1", ev.Subscription.SubscriptionID)
	assert.Equal(t, "cus_1", ev.Subscription.CustomerID)
	assert.Equal(t, domain.SubscriptionStatusCanceled, ev.Subscription.Status)
	assert.Equal(t, int64(1767225600), ev.Subscription.CurrentPeriodEnd)
}

func TestVerifyAndClassify_UnhandledTypePassesThrough(t *testing.T) {
	payload := []byte(`{
		"id": "evt_3",
		"object": "event",
		"type": "invoice.paid",
		"data": {"object": {"id": "in_1", "object": "invoice"}}
	}`)

	ev, err := newTestClient().VerifyAndClassify(payload, sign(payload, webhookSecret, time.Now()))
	require.NoError(t, err)

	assert.Equal(t, domain.BillingEventUnhandled, ev.Type)
	assert.Equal(t, "invoice.paid", ev.RawType)
	assert.Nil(t, ev.Checkout)
	assert.Nil(t, ev.Subscription)
}

func TestVerifyAndClassify_WrongSecret(t *testing.T) {
	payload := []byte(`{"id": "evt_4", "object": "event", "type": "checkout.session.completed", "data": {"object": {}}}`)

	_, err := newTestClient().VerifyAndClassify(payload, sign(payload, "whsec_other_secret", time.Now()))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "signature verification failed")
}

func TestVerifyAndClassify_TamperedPayload(t *testing.T) {
	payload := []byte(`{"id": "evt_5", "object": "event", "type": "checkout.session.completed", "data": {"object": {}}}`)
	header := sign(payload, webhookSecret, time.Now())

	tampered := []byte(`{"id": "evt_5", "object": "event", "type": "checkout.session.completed", "data": {"object": {"payment_status": "paid"}}}`)

	_, err := newTestClient().VerifyAndClassify(tampered, header)
	require.Error(t, err)
}

func TestVerifyAndClassify_StaleTimestamp(t *testing.T) {
	payload := []byte(`{"id": "evt_6", "object": "event", "type": "invoice.paid", "data": {"object": {}}}`)

	_, err := newTestClient().VerifyAndClassify(payload, sign(payload, webhookSecret, time.Now().Add(-time.Hour)))
	require.Error(t, err)
}

func TestVerifyAndClassify_MalformedHeader(t *testing.T) {
	payload := []byte(`{"id": "evt_7", "object": "event", "type": "invoice.paid", "data": {"object": {}}}`)

	_, err := newTestClient().VerifyAndClassify(payload, "not-a-signature")
	require.Error(t, err)
}
