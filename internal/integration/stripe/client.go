package stripe

import (
	"context"
	"fmt"

	"github.com/metrix-hardline/subscription-service/internal/domain"
	"github.com/metrix-hardline/subscription-service/pkg/logger"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
	"github.com/stripe/stripe-go/v76/webhook"
)

// Client представляет клиент для работы с API Stripe.
// Создается один раз при старте и переиспользуется всеми обработчиками.
type Client struct {
	api           *client.API
	webhookSecret string
	log           *logger.Logger
}

// Config конфигурация для клиента Stripe
type Config struct {
	SecretKey     string
	WebhookSecret string
}

// NewClient создает новый клиент Stripe
func NewClient(cfg Config, log *logger.Logger) *Client {
	return &Client{
		api:           client.New(cfg.SecretKey, nil),
		webhookSecret: cfg.WebhookSecret,
		log:           log,
	}
}

// VerifyWebhook проверяет подпись webhook-события по сырому телу запроса
// и заголовку подписи. Возвращает разобранное событие Stripe.
func (c *Client) VerifyWebhook(payload []byte, sigHeader string) (stripe.Event, error) {
	event, err := webhook.ConstructEventWithOptions(payload, sigHeader, c.webhookSecret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return stripe.Event{}, fmt.Errorf("webhook signature verification failed: %w", err)
	}
	return event, nil
}

// VerifyAndClassify проверяет подпись webhook-события и отображает его
// в доменное событие биллинга.
func (c *Client) VerifyAndClassify(payload []byte, sigHeader string) (domain.BillingEvent, error) {
	event, err := c.VerifyWebhook(payload, sigHeader)
	if err != nil {
		return domain.BillingEvent{}, err
	}
	return ClassifyEvent(event)
}

// GetSubscription получает актуальное состояние подписки из Stripe
func (c *Client) GetSubscription(ctx context.Context, subscriptionID string) (domain.SubscriptionState, error) {
	c.log.Debug("Getting Stripe subscription with ID: %s", subscriptionID)

	params := &stripe.SubscriptionParams{Params: stripe.Params{Context: ctx}}
	sub, err := c.api.Subscriptions.Get(subscriptionID, params)
	if err != nil {
		return domain.SubscriptionState{}, fmt.Errorf("stripe API error: %w", err)
	}

	state := domain.SubscriptionState{
		SubscriptionID:   sub.ID,
		Status:           domain.SubscriptionStatus(sub.Status),
		CurrentPeriodEnd: sub.CurrentPeriodEnd,
	}
	if sub.Customer != nil {
		state.CustomerID = sub.Customer.ID
	}

	c.log.Debug("Successfully retrieved Stripe subscription: %s, status: %s", sub.ID, sub.Status)
	return state, nil
}
