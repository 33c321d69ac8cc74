package service

import (
	"context"

	"github.com/metrix-hardline/subscription-service/internal/domain"
)

// IdentityDirectory интерфейс каталога идентичности (внешняя способность).
// Возвращает domain.ErrNotFound, если принципал с таким email отсутствует.
type IdentityDirectory interface {
	// GetPrincipalByEmail возвращает принципала по email
	GetPrincipalByEmail(ctx context.Context, email string) (domain.Principal, error)

	// CreatePrincipal создает нового принципала с указанным email
	CreatePrincipal(ctx context.Context, email string) (domain.Principal, error)

	// GenerateSetupLink выпускает одноразовую ссылку установки пароля,
	// привязанную к return URL. Ссылка не персистится: повторный вызов
	// просто выпускает новую.
	GenerateSetupLink(ctx context.Context, email, returnURL string) (string, error)
}

// UserRecordStore интерфейс документного хранилища записей пользователей
type UserRecordStore interface {
	// MergeUpsert создает запись или сливает поля патча в существующую.
	// Поля вне патча остаются нетронутыми.
	MergeUpsert(ctx context.Context, principalID string, patch domain.RecordPatch) error

	// GetRecord возвращает запись пользователя по ID принципала
	GetRecord(ctx context.Context, principalID string) (domain.UserRecord, error)

	// FindBySubscriptionID ищет ID принципала по ID подписки
	FindBySubscriptionID(ctx context.Context, subscriptionID string) (string, error)

	// FindByCustomerID ищет ID принципала по ID клиента платежной системы
	FindByCustomerID(ctx context.Context, customerID string) (string, error)

	// DeviceTokens возвращает зарегистрированные push-токены принципала
	DeviceTokens(ctx context.Context, principalID string) ([]string, error)
}

// SubscriptionSource интерфейс запроса актуального состояния подписки
type SubscriptionSource interface {
	// GetSubscription возвращает текущее состояние подписки по ее ID
	GetSubscription(ctx context.Context, subscriptionID string) (domain.SubscriptionState, error)
}

// EmailSender интерфейс транзакционной почты
type EmailSender interface {
	// Send отправляет письмо с HTML-телом указанному получателю
	Send(ctx context.Context, to, subject, html string) error
}

// PushSender интерфейс multicast-доставки push-сообщений
type PushSender interface {
	// SendMulticast доставляет сообщение на набор токенов устройств.
	// Частичные отказы по токенам считаются, но не являются ошибкой.
	SendMulticast(ctx context.Context, tokens []string, title, body, clickAction string) (sent, failed int, err error)
}
