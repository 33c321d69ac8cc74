package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/metrix-hardline/subscription-service/pkg/logger"
)

const (
	// Префикс ключей обработанных событий биллинга
	processedKeyPrefix = "billing_event:"

	// TTL маркера: платежная система не редоставляет события дольше
	defaultMarkerTTL = 72 * time.Hour
)

// EventMarker отмечает обработанные события биллинга в Redis.
// Реконсиляция идемпотентна сама по себе, поэтому маркер нужен только
// чтобы не отправить повторное письмо при редоставке события.
type EventMarker struct {
	client *redis.Client
	ttl    time.Duration
	log    *logger.Logger
}

// NewEventMarker создает новый маркер обработанных событий
func NewEventMarker(redisAddr, redisPassword string, redisDB int, log *logger.Logger) (*EventMarker, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     redisAddr,
		Password: redisPassword,
		DB:       redisDB,
	})

	// Проверяем соединение с Redis
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		log.Errorw("Failed to connect to Redis", "error", err)
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	log.Infow("Connected to Redis successfully", "addr", redisAddr)
	return &EventMarker{
		client: client,
		ttl:    defaultMarkerTTL,
		log:    log,
	}, nil
}

// Close закрывает соединение с Redis
func (m *EventMarker) Close() error {
	return m.client.Close()
}

// AlreadyProcessed сообщает, было ли событие уже обработано
func (m *EventMarker) AlreadyProcessed(ctx context.Context, eventID string) (bool, error) {
	key := processedKeyPrefix + eventID

	n, err := m.client.Exists(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check event marker: %w", err)
	}

	return n > 0, nil
}

// MarkProcessed помечает событие обработанным. Вызывается только после
// успешной обработки: упавшее событие должно быть обработано при редоставке.
func (m *EventMarker) MarkProcessed(ctx context.Context, eventID string) error {
	key := processedKeyPrefix + eventID

	if err := m.client.Set(ctx, key, 1, m.ttl).Err(); err != nil {
		return fmt.Errorf("failed to mark event processed: %w", err)
	}

	m.log.Debugw("Event marked processed", "event_id", eventID)
	return nil
}
