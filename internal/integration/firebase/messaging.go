package firebase

import (
	"context"
	"fmt"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"

	"github.com/metrix-hardline/subscription-service/pkg/logger"
)

// Messenger реализует multicast-доставку push-сообщений через FCM
type Messenger struct {
	client *messaging.Client
	log    *logger.Logger
}

// NewMessenger создает новый отправитель push-сообщений
func NewMessenger(ctx context.Context, app *firebase.App, log *logger.Logger) (*Messenger, error) {
	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize messaging client: %w", err)
	}

	return &Messenger{
		client: client,
		log:    log,
	}, nil
}

// SendMulticast доставляет сообщение на набор токенов устройств.
// Отказы по отдельным токенам считаются, но не являются ошибкой вызова.
func (m *Messenger) SendMulticast(ctx context.Context, tokens []string, title, body, clickAction string) (int, int, error) {
	message := &messaging.MulticastMessage{
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
		Data: map[string]string{
			"click_action": clickAction,
		},
		Tokens: tokens,
	}

	resp, err := m.client.SendEachForMulticast(ctx, message)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to send multicast message: %w", err)
	}

	if resp.FailureCount > 0 {
		m.log.Warnw("Some push tokens failed", "sent", resp.SuccessCount, "failed", resp.FailureCount)
	}

	return resp.SuccessCount, resp.FailureCount, nil
}
