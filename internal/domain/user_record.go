package domain

import "time"

// SubscriptionStatus статус подписки в платежной системе
type SubscriptionStatus string

const (
	SubscriptionStatusActive   SubscriptionStatus = "active"
	SubscriptionStatusTrialing SubscriptionStatus = "trialing"
	SubscriptionStatusPastDue  SubscriptionStatus = "past_due"
	SubscriptionStatusCanceled SubscriptionStatus = "canceled"
	SubscriptionStatusUnpaid   SubscriptionStatus = "unpaid"
	SubscriptionStatusUnknown  SubscriptionStatus = "unknown"
)

// IsActive сообщает, дает ли статус доступ к продукту
func (s SubscriptionStatus) IsActive() bool {
	return s == SubscriptionStatusActive || s == SubscriptionStatusTrialing
}

// Названия полей документа пользователя в хранилище
const (
	FieldEmail              = "email"
	FieldSubscriptionActive = "subscriptionActive"
	FieldSubscriptionStatus = "subscriptionStatus"
	FieldCurrentPeriodEnd   = "currentPeriodEnd"
	FieldBillingCustomerID  = "stripeCustomerId"
	FieldSubscriptionID     = "subscriptionId"
)

// Principal представляет учетную запись подписчика в каталоге идентичности
type Principal struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// UserRecord представляет запись пользователя, ключ — ID принципала.
// Запись никогда не удаляется: деактивация моделируется как
// SubscriptionActive = false.
type UserRecord struct {
	PrincipalID           string             `json:"principal_id" firestore:"-"`
	Email                 string             `json:"email" firestore:"email"`
	SubscriptionActive    bool               `json:"subscription_active" firestore:"subscriptionActive"`
	SubscriptionStatus    SubscriptionStatus `json:"subscription_status" firestore:"subscriptionStatus"`
	CurrentPeriodEnd      *time.Time         `json:"current_period_end,omitempty" firestore:"currentPeriodEnd"`
	BillingCustomerID     string             `json:"billing_customer_id,omitempty" firestore:"stripeCustomerId"`
	BillingSubscriptionID string             `json:"billing_subscription_id,omitempty" firestore:"subscriptionId"`
}

// RecordPatch представляет merge-patch полей записи пользователя.
// Поля, отсутствующие в патче, остаются нетронутыми в хранилище.
type RecordPatch map[string]interface{}
