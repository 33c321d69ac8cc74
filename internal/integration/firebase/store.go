package firebase

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/metrix-hardline/subscription-service/internal/domain"
	"github.com/metrix-hardline/subscription-service/pkg/logger"
)

// Подколлекция документа пользователя: токены устройств, ключ документа — токен
const tokensSubcollection = "fcmTokens"

// RecordStore реализует документное хранилище записей пользователей
// поверх Firestore
type RecordStore struct {
	client     *firestore.Client
	collection string
	log        *logger.Logger
}

// NewRecordStore создает новое хранилище записей пользователей
func NewRecordStore(ctx context.Context, app *firebase.App, collection string, log *logger.Logger) (*RecordStore, error) {
	client, err := app.Firestore(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize firestore client: %w", err)
	}

	return &RecordStore{
		client:     client,
		collection: collection,
		log:        log,
	}, nil
}

// Close закрывает соединение с Firestore
func (s *RecordStore) Close() error {
	return s.client.Close()
}

// MergeUpsert создает документ или сливает поля патча в существующий.
// Поля вне патча остаются нетронутыми — повторное применение того же
// патча не меняет состояние.
func (s *RecordStore) MergeUpsert(ctx context.Context, principalID string, patch domain.RecordPatch) error {
	if len(patch) == 0 {
		return nil
	}

	_, err := s.client.Collection(s.collection).Doc(principalID).Set(ctx, map[string]interface{}(patch), firestore.MergeAll)
	if err != nil {
		return fmt.Errorf("failed to merge user record: %w", err)
	}

	s.log.Debugw("User record merged", "principal_id", principalID, "fields", len(patch))
	return nil
}

// GetRecord возвращает запись пользователя по ID принципала
func (s *RecordStore) GetRecord(ctx context.Context, principalID string) (domain.UserRecord, error) {
	doc, err := s.client.Collection(s.collection).Doc(principalID).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return domain.UserRecord{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.UserRecord{}, fmt.Errorf("failed to get user record: %w", err)
	}

	var record domain.UserRecord
	if err := doc.DataTo(&record); err != nil {
		return domain.UserRecord{}, fmt.Errorf("failed to decode user record: %w", err)
	}
	record.PrincipalID = doc.Ref.ID

	return record, nil
}

// FindBySubscriptionID ищет ID принципала по ID подписки
func (s *RecordStore) FindBySubscriptionID(ctx context.Context, subscriptionID string) (string, error) {
	return s.findByField(ctx, domain.FieldSubscriptionID, subscriptionID)
}

// FindByCustomerID ищет ID принципала по ID клиента платежной системы
func (s *RecordStore) FindByCustomerID(ctx context.Context, customerID string) (string, error) {
	return s.findByField(ctx, domain.FieldBillingCustomerID, customerID)
}

// findByField возвращает ID первого документа с указанным значением поля
func (s *RecordStore) findByField(ctx context.Context, field, value string) (string, error) {
	iter := s.client.Collection(s.collection).Where(field, "==", value).Limit(1).Documents(ctx)
	defer iter.Stop()

	doc, err := iter.Next()
	if err == iterator.Done {
		return "", domain.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to query user records by %s: %w", field, err)
	}

	return doc.Ref.ID, nil
}

// DeviceTokens возвращает зарегистрированные push-токены принципала
func (s *RecordStore) DeviceTokens(ctx context.Context, principalID string) ([]string, error) {
	iter := s.client.Collection(s.collection).Doc(principalID).Collection(tokensSubcollection).Documents(ctx)
	defer iter.Stop()

	var tokens []string
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to list device tokens: %w", err)
		}
		if doc.Ref.ID != "" {
			tokens = append(tokens, doc.Ref.ID)
		}
	}

	return tokens, nil
}
