package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/metrix-hardline/subscription-service/internal/domain"
	"github.com/metrix-hardline/subscription-service/pkg/logger"
)

// ResetService интерфейс повторной выдачи ссылки установки пароля
type ResetService interface {
	// Resend выпускает новую ссылку установки пароля и отправляет ее
	// на указанный email. Неизвестный email — молчаливый успех, чтобы
	// не раскрывать существование аккаунта. Неактивная подписка —
	// domain.ErrSubscriptionInactive.
	Resend(ctx context.Context, email string) error
}

// resetService реализация сервиса повторной выдачи ссылки
type resetService struct {
	directory    IdentityDirectory
	store        UserRecordStore
	email        EmailSender
	setupLinkURL string
	log          *logger.Logger
}

// NewResetService создает новый сервис повторной выдачи ссылки
func NewResetService(
	directory IdentityDirectory,
	store UserRecordStore,
	email EmailSender,
	setupLinkURL string,
	log *logger.Logger,
) ResetService {
	return &resetService{
		directory:    directory,
		store:        store,
		email:        email,
		setupLinkURL: setupLinkURL,
		log:          log,
	}
}

// Resend выпускает и отправляет новую ссылку установки пароля
func (s *resetService) Resend(ctx context.Context, email string) error {
	principal, err := s.directory.GetPrincipalByEmail(ctx, email)
	if errors.Is(err, domain.ErrNotFound) {
		// Не раскрываем, существует ли аккаунт
		s.log.Infow("Reset requested for unknown email", "email", email)
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to look up principal: %w", err)
	}

	record, err := s.store.GetRecord(ctx, principal.ID)
	if errors.Is(err, domain.ErrNotFound) {
		// Принципал без записи пользователя приравнивается к неактивной подписке
		return domain.ErrSubscriptionInactive
	}
	if err != nil {
		return fmt.Errorf("failed to load user record: %w", err)
	}
	if !record.SubscriptionActive {
		return domain.ErrSubscriptionInactive
	}

	link, err := s.directory.GenerateSetupLink(ctx, email, s.setupLinkURL)
	if err != nil {
		return fmt.Errorf("failed to generate setup link: %w", err)
	}

	if err := s.email.Send(ctx, email, resetEmailSubject, resetEmailHTML(link)); err != nil {
		return fmt.Errorf("failed to send reset email: %w", err)
	}

	s.log.Infow("Password setup link re-sent", "principal_id", principal.ID)
	return nil
}
