package domain

// BillingEventType тип события от платежной системы
type BillingEventType string

const (
	BillingEventCheckoutCompleted   BillingEventType = "checkout.session.completed"
	BillingEventSubscriptionUpdated BillingEventType = "customer.subscription.updated"
	BillingEventSubscriptionDeleted BillingEventType = "customer.subscription.deleted"

	// BillingEventUnhandled — событие нераспознанного типа, no-op
	BillingEventUnhandled BillingEventType = "unhandled"
)

// BillingEvent представляет верифицированное и классифицированное событие
// биллинга. Заполнен ровно один из payload-указателей в зависимости от типа.
type BillingEvent struct {
	ID           string               `json:"id"`
	Type         BillingEventType     `json:"type"`
	RawType      string               `json:"raw_type"`
	Checkout     *CheckoutPayload     `json:"checkout,omitempty"`
	Subscription *SubscriptionPayload `json:"subscription,omitempty"`
}

// CheckoutPayload данные события завершения checkout-сессии
type CheckoutPayload struct {
	PaymentStatus        string `json:"payment_status"`
	CustomerDetailsEmail string `json:"customer_details_email"`
	CustomerEmail        string `json:"customer_email"`
	MetadataEmail        string `json:"metadata_email"`
	CustomerID           string `json:"customer_id"`
	SubscriptionID       string `json:"subscription_id"`
}

// SubscriptionPayload данные события жизненного цикла подписки.
// Email в таких событиях отсутствует — принципал ищется по вторичным ключам.
type SubscriptionPayload struct {
	SubscriptionID   string             `json:"subscription_id"`
	CustomerID       string             `json:"customer_id"`
	Status           SubscriptionStatus `json:"status"`
	CurrentPeriodEnd int64              `json:"current_period_end"`
}

// SubscriptionState актуальное состояние подписки по данным платежной системы
type SubscriptionState struct {
	SubscriptionID   string             `json:"subscription_id"`
	CustomerID       string             `json:"customer_id"`
	Status           SubscriptionStatus `json:"status"`
	CurrentPeriodEnd int64              `json:"current_period_end"`
}

// Причины, по которым событие распознано, но не требует действий
const (
	IgnoreUnhandledType = "unhandled_type"
	IgnoreNotPaid       = "not_paid"
	IgnoreNoEmail       = "no_email"
	IgnoreUserNotFound  = "user_not_found_for_subscription"
	IgnoreDuplicate     = "duplicate"
)
