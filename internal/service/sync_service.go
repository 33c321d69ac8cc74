package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/metrix-hardline/subscription-service/internal/domain"
	"github.com/metrix-hardline/subscription-service/internal/reconciler"
	"github.com/metrix-hardline/subscription-service/pkg/logger"
)

// SyncService интерфейс сервиса синхронизации состояния подписки
type SyncService interface {
	// ProcessEvent реконсилирует событие биллинга и исполняет инструкции
	// решения. Безопасен для повторного запуска на каждой редоставке.
	ProcessEvent(ctx context.Context, ev domain.BillingEvent) (SyncResult, error)
}

// SyncResult итог обработки события биллинга
type SyncResult struct {
	Ignored     string `json:"ignored,omitempty"`
	PrincipalID string `json:"principal_id,omitempty"`
	EmailSent   bool   `json:"email_sent"`
}

// syncService реализация сервиса синхронизации
type syncService struct {
	directory     IdentityDirectory
	store         UserRecordStore
	subscriptions SubscriptionSource
	email         EmailSender
	setupLinkURL  string
	log           *logger.Logger
}

// NewSyncService создает новый сервис синхронизации подписок
func NewSyncService(
	directory IdentityDirectory,
	store UserRecordStore,
	subscriptions SubscriptionSource,
	email EmailSender,
	setupLinkURL string,
	log *logger.Logger,
) SyncService {
	return &syncService{
		directory:     directory,
		store:         store,
		subscriptions: subscriptions,
		email:         email,
		setupLinkURL:  setupLinkURL,
		log:           log,
	}
}

// ProcessEvent реконсилирует событие и исполняет решение
func (s *syncService) ProcessEvent(ctx context.Context, ev domain.BillingEvent) (SyncResult, error) {
	decision := reconciler.Reconcile(ev)
	if decision.Ignored() {
		s.log.Infow("Billing event ignored", "event_id", ev.ID, "type", ev.RawType, "reason", decision.IgnoredReason)
		return SyncResult{Ignored: decision.IgnoredReason}, nil
	}

	switch decision.Resolution {
	case reconciler.ResolveByEmail:
		return s.applyCheckout(ctx, decision)
	case reconciler.ResolveBySecondaryKey:
		return s.applyStatusSync(ctx, decision)
	default:
		return SyncResult{Ignored: domain.IgnoreUnhandledType}, nil
	}
}

// applyCheckout исполняет решение по завершенной checkout-сессии:
// find-or-create принципала, merge-upsert записи, ссылка установки
// пароля и письмо с ней.
func (s *syncService) applyCheckout(ctx context.Context, d reconciler.Decision) (SyncResult, error) {
	principal, err := s.directory.GetPrincipalByEmail(ctx, d.Email)
	if errors.Is(err, domain.ErrNotFound) {
		// Первый платеж покупателя — принципала еще нет
		principal, err = s.directory.CreatePrincipal(ctx, d.Email)
	}
	if err != nil {
		return SyncResult{}, fmt.Errorf("failed to resolve principal: %w", err)
	}

	patch := d.Patch
	if d.NeedsStatusLookup {
		state, err := s.subscriptions.GetSubscription(ctx, d.SubscriptionID)
		if err != nil {
			return SyncResult{}, fmt.Errorf("failed to get subscription %s: %w", d.SubscriptionID, err)
		}
		for field, value := range reconciler.StatusPatch(state) {
			patch[field] = value
		}
		if state.CustomerID != "" {
			patch[domain.FieldBillingCustomerID] = state.CustomerID
		}
	}

	if err := s.store.MergeUpsert(ctx, principal.ID, patch); err != nil {
		return SyncResult{}, fmt.Errorf("failed to upsert user record: %w", err)
	}

	link, err := s.directory.GenerateSetupLink(ctx, d.Email, s.setupLinkURL)
	if err != nil {
		return SyncResult{}, fmt.Errorf("failed to generate setup link: %w", err)
	}

	if err := s.email.Send(ctx, d.Email, setupEmailSubject, setupEmailHTML(link)); err != nil {
		return SyncResult{}, fmt.Errorf("failed to send setup email: %w", err)
	}

	s.log.Infow("Checkout reconciled", "principal_id", principal.ID, "subscription_id", d.SubscriptionID)
	return SyncResult{PrincipalID: principal.ID, EmailSent: true}, nil
}

// applyStatusSync исполняет молчаливую синхронизацию статуса подписки.
// Принципал ищется только по вторичным ключам: email в таких событиях нет.
func (s *syncService) applyStatusSync(ctx context.Context, d reconciler.Decision) (SyncResult, error) {
	principalID, err := s.resolveBySecondaryKey(ctx, d)
	if errors.Is(err, domain.ErrNotFound) {
		// Ожидаемая гонка: update пришел раньше, чем checkout персистнулся
		s.log.Warnw("No user record for subscription event", "subscription_id", d.SubscriptionID, "customer_id", d.CustomerID)
		return SyncResult{Ignored: domain.IgnoreUserNotFound}, nil
	}
	if err != nil {
		return SyncResult{}, fmt.Errorf("failed to resolve principal by billing ids: %w", err)
	}

	if err := s.store.MergeUpsert(ctx, principalID, d.Patch); err != nil {
		return SyncResult{}, fmt.Errorf("failed to upsert user record: %w", err)
	}

	s.log.Infow("Subscription status synced", "principal_id", principalID, "subscription_id", d.SubscriptionID)
	return SyncResult{PrincipalID: principalID}, nil
}

// resolveBySecondaryKey ищет принципала по ID подписки, затем по ID клиента
func (s *syncService) resolveBySecondaryKey(ctx context.Context, d reconciler.Decision) (string, error) {
	if d.SubscriptionID != "" {
		principalID, err := s.store.FindBySubscriptionID(ctx, d.SubscriptionID)
		if err == nil {
			return principalID, nil
		}
		if !errors.Is(err, domain.ErrNotFound) {
			return "", err
		}
	}

	if d.CustomerID != "" {
		return s.store.FindByCustomerID(ctx, d.CustomerID)
	}

	return "", domain.ErrNotFound
}
