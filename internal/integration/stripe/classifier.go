package stripe

import (
	"encoding/json"
	"fmt"

	"github.com/metrix-hardline/subscription-service/internal/domain"
	"github.com/stripe/stripe-go/v76"
)

// ClassifyEvent отображает событие Stripe в доменное событие биллинга.
// Закрытое множество распознаваемых типов; все прочее помечается как
// unhandled — никогда не ошибка.
func ClassifyEvent(ev stripe.Event) (domain.BillingEvent, error) {
	out := domain.BillingEvent{
		ID:      ev.ID,
		RawType: string(ev.Type),
		Type:    domain.BillingEventUnhandled,
	}

	switch string(ev.Type) {
	case string(domain.BillingEventCheckoutCompleted):
		payload, err := checkoutPayload(ev)
		if err != nil {
			return out, err
		}
		out.Type = domain.BillingEventCheckoutCompleted
		out.Checkout = payload

	case string(domain.BillingEventSubscriptionUpdated):
		payload, err := subscriptionPayload(ev)
		if err != nil {
			return out, err
		}
		out.Type = domain.BillingEventSubscriptionUpdated
		out.Subscription = payload

	case string(domain.BillingEventSubscriptionDeleted):
		payload, err := subscriptionPayload(ev)
		if err != nil {
			return out, err
		}
		out.Type = domain.BillingEventSubscriptionDeleted
		out.Subscription = payload
	}

	return out, nil
}

// checkoutPayload извлекает данные checkout-сессии из события
func checkoutPayload(ev stripe.Event) (*domain.CheckoutPayload, error) {
	var session stripe.CheckoutSession
	if err := json.Unmarshal(ev.Data.Raw, &session); err != nil {
		return nil, fmt.Errorf("failed to parse checkout session payload: %w", err)
	}

	payload := &domain.CheckoutPayload{
		PaymentStatus: string(session.PaymentStatus),
		CustomerEmail: session.CustomerEmail,
		MetadataEmail: session.Metadata["email"],
	}
	if session.CustomerDetails != nil {
		payload.CustomerDetailsEmail = session.CustomerDetails.Email
	}
	if session.Customer != nil {
		payload.CustomerID = session.Customer.ID
	}
	if session.Subscription != nil {
		payload.SubscriptionID = session.Subscription.ID
	}

	return payload, nil
}

// subscriptionPayload извлекает данные подписки из события
func subscriptionPayload(ev stripe.Event) (*domain.SubscriptionPayload, error) {
	var sub stripe.Subscription
	if err := json.Unmarshal(ev.Data.Raw, &sub); err != nil {
		return nil, fmt.Errorf("failed to parse subscription payload: %w", err)
	}

	payload := &domain.SubscriptionPayload{
		SubscriptionID:   sub.ID,
		Status:           domain.SubscriptionStatus(sub.Status),
		CurrentPeriodEnd: sub.CurrentPeriodEnd,
	}
	if sub.Customer != nil {
		payload.CustomerID = sub.Customer.ID
	}

	return payload, nil
}
