package service

import (
	"context"
	"fmt"

	"github.com/metrix-hardline/subscription-service/pkg/logger"
)

// PushService интерфейс отправки push-уведомлений принципалу
type PushService interface {
	// Send доставляет multicast push на все токены устройств принципала.
	// Частичные отказы по токенам считаются, но не ретраятся и не
	// проваливают запрос целиком.
	Send(ctx context.Context, principalID, title, body, clickAction string) (sent, failed int, err error)
}

// pushService реализация сервиса push-уведомлений
type pushService struct {
	store              UserRecordStore
	push               PushSender
	defaultClickAction string
	log                *logger.Logger
}

// NewPushService создает новый сервис push-уведомлений
func NewPushService(store UserRecordStore, push PushSender, defaultClickAction string, log *logger.Logger) PushService {
	return &pushService{
		store:              store,
		push:               push,
		defaultClickAction: defaultClickAction,
		log:                log,
	}
}

// Send доставляет push-сообщение на токены устройств принципала
func (s *pushService) Send(ctx context.Context, principalID, title, body, clickAction string) (int, int, error) {
	tokens, err := s.store.DeviceTokens(ctx, principalID)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to load device tokens: %w", err)
	}
	if len(tokens) == 0 {
		s.log.Debugw("No device tokens registered", "principal_id", principalID)
		return 0, 0, nil
	}

	if clickAction == "" {
		clickAction = s.defaultClickAction
	}

	sent, failed, err := s.push.SendMulticast(ctx, tokens, title, body, clickAction)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to send multicast push: %w", err)
	}

	s.log.Infow("Push dispatched", "principal_id", principalID, "sent", sent, "failed", failed)
	return sent, failed, nil
}
