package reconciler

import (
	"time"

	"github.com/metrix-hardline/subscription-service/internal/domain"
)

// TargetResolution способ, которым исполнитель должен найти принципала
type TargetResolution int

const (
	// ResolveNone принципал не требуется (событие игнорируется)
	ResolveNone TargetResolution = iota

	// ResolveByEmail поиск по email с созданием принципала при отсутствии
	ResolveByEmail

	// ResolveBySecondaryKey поиск по ID подписки, затем по ID клиента
	ResolveBySecondaryKey
)

// Decision результат реконсиляции: целевой принципал, merge-patch записи
// и набор инструкций для side-эффектов. Вычисление решения отделено от
// его исполнения, чтобы ветки были тестируемы без сети.
type Decision struct {
	IgnoredReason string

	Resolution     TargetResolution
	Email          string
	CustomerID     string
	SubscriptionID string

	// NeedsStatusLookup требует запросить актуальный статус подписки
	// у платежной системы перед записью
	NeedsStatusLookup bool

	Patch          domain.RecordPatch
	SendSetupEmail bool
}

// Ignored сообщает, что событие распознано, но действий не требует
func (d Decision) Ignored() bool {
	return d.IgnoredReason != ""
}

// Упорядоченная цепочка извлечения email из checkout-события:
// первый непустой результат побеждает
var emailExtractors = []func(*domain.CheckoutPayload) string{
	func(p *domain.CheckoutPayload) string { return p.CustomerDetailsEmail },
	func(p *domain.CheckoutPayload) string { return p.CustomerEmail },
	func(p *domain.CheckoutPayload) string { return p.MetadataEmail },
}

// Reconcile отображает верифицированное событие биллинга в решение.
// Чистая функция: нераспознанный тип — no-op, никогда не ошибка.
func Reconcile(ev domain.BillingEvent) Decision {
	switch ev.Type {
	case domain.BillingEventCheckoutCompleted:
		return reconcileCheckout(ev.Checkout)
	case domain.BillingEventSubscriptionUpdated, domain.BillingEventSubscriptionDeleted:
		return reconcileSubscription(ev.Subscription)
	default:
		return Decision{IgnoredReason: domain.IgnoreUnhandledType}
	}
}

// reconcileCheckout обрабатывает завершение checkout-сессии
func reconcileCheckout(p *domain.CheckoutPayload) Decision {
	if p == nil {
		return Decision{IgnoredReason: domain.IgnoreUnhandledType}
	}

	if p.PaymentStatus != "" && p.PaymentStatus != "paid" {
		return Decision{IgnoredReason: domain.IgnoreNotPaid}
	}

	email := resolveEmail(p)
	if email == "" {
		return Decision{IgnoredReason: domain.IgnoreNoEmail}
	}

	patch := domain.RecordPatch{
		domain.FieldEmail: email,
	}
	if p.CustomerID != "" {
		patch[domain.FieldBillingCustomerID] = p.CustomerID
	}

	needsLookup := false
	if p.SubscriptionID != "" {
		// Статус подписки берется живым запросом к платежной системе
		patch[domain.FieldSubscriptionID] = p.SubscriptionID
		needsLookup = true
	} else {
		// Разовая покупка без подписки
		patch[domain.FieldSubscriptionActive] = true
		patch[domain.FieldSubscriptionStatus] = string(domain.SubscriptionStatusUnknown)
	}

	return Decision{
		Resolution:        ResolveByEmail,
		Email:             email,
		CustomerID:        p.CustomerID,
		SubscriptionID:    p.SubscriptionID,
		NeedsStatusLookup: needsLookup,
		Patch:             patch,
		SendSetupEmail:    true,
	}
}

// reconcileSubscription обрабатывает события жизненного цикла подписки.
// Такие события синхронизируют статус молча — без уведомлений.
func reconcileSubscription(p *domain.SubscriptionPayload) Decision {
	if p == nil {
		return Decision{IgnoredReason: domain.IgnoreUnhandledType}
	}

	status := p.Status
	if status == "" {
		status = domain.SubscriptionStatusUnknown
	}

	patch := domain.RecordPatch{
		domain.FieldSubscriptionActive: status.IsActive(),
		domain.FieldSubscriptionStatus: string(status),
	}
	if p.SubscriptionID != "" {
		patch[domain.FieldSubscriptionID] = p.SubscriptionID
	}
	if p.CustomerID != "" {
		patch[domain.FieldBillingCustomerID] = p.CustomerID
	}
	if p.CurrentPeriodEnd > 0 {
		patch[domain.FieldCurrentPeriodEnd] = time.Unix(p.CurrentPeriodEnd, 0).UTC()
	}

	return Decision{
		Resolution:     ResolveBySecondaryKey,
		CustomerID:     p.CustomerID,
		SubscriptionID: p.SubscriptionID,
		Patch:          patch,
	}
}

// StatusPatch строит merge-patch из актуального состояния подписки.
// Правило активности одно на весь пакет: active или trialing.
func StatusPatch(state domain.SubscriptionState) domain.RecordPatch {
	patch := domain.RecordPatch{
		domain.FieldSubscriptionActive: state.Status.IsActive(),
		domain.FieldSubscriptionStatus: string(state.Status),
	}
	if state.CurrentPeriodEnd > 0 {
		patch[domain.FieldCurrentPeriodEnd] = time.Unix(state.CurrentPeriodEnd, 0).UTC()
	}
	return patch
}

// resolveEmail пробует извлечь email по цепочке приоритетов
func resolveEmail(p *domain.CheckoutPayload) string {
	for _, extract := range emailExtractors {
		if email := extract(p); email != "" {
			return email
		}
	}
	return ""
}
