package producer

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/IBM/sarama"
	"github.com/google/uuid"

	"github.com/metrix-hardline/subscription-service/internal/domain"
	"github.com/metrix-hardline/subscription-service/internal/service"
	"github.com/metrix-hardline/subscription-service/pkg/logger"
)

// SyncEvent представляет результат реконсиляции для аудит-потока
type SyncEvent struct {
	ID             string    `json:"id"`
	BillingEventID string    `json:"billing_event_id"`
	Type           string    `json:"type"`
	PrincipalID    string    `json:"principal_id,omitempty"`
	Ignored        string    `json:"ignored,omitempty"`
	EmailSent      bool      `json:"email_sent"`
	Timestamp      time.Time `json:"timestamp"`
}

// SyncProducer интерфейс публикации результатов реконсиляции
type SyncProducer interface {
	// PublishSyncOutcome публикует итог обработки события биллинга
	PublishSyncOutcome(ctx context.Context, ev domain.BillingEvent, result service.SyncResult) error
	Close() error
}

// kafkaSyncProducer реализация продюсера на sarama
type kafkaSyncProducer struct {
	producer sarama.SyncProducer
	topic    string
	log      *logger.Logger
}

// NewKafkaSyncProducer создает новый продюсер результатов реконсиляции
func NewKafkaSyncProducer(p sarama.SyncProducer, topic string, log *logger.Logger) SyncProducer {
	return &kafkaSyncProducer{
		producer: p,
		topic:    topic,
		log:      log,
	}
}

// PublishSyncOutcome публикует итог обработки события биллинга
func (p *kafkaSyncProducer) PublishSyncOutcome(ctx context.Context, ev domain.BillingEvent, result service.SyncResult) error {
	event := SyncEvent{
		ID:             uuid.New().String(),
		BillingEventID: ev.ID,
		Type:           ev.RawType,
		PrincipalID:    result.PrincipalID,
		Ignored:        result.Ignored,
		EmailSent:      result.EmailSent,
		Timestamp:      time.Now().UTC(),
	}

	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal sync event: %w", err)
	}

	// Ключ — ID принципала, чтобы события одного подписчика попадали
	// в одну партицию; для проигнорированных событий — ID события.
	key := result.PrincipalID
	if key == "" {
		key = ev.ID
	}

	msg := &sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(key),
		Value: sarama.ByteEncoder(value),
	}

	partition, offset, err := p.producer.SendMessage(msg)
	if err != nil {
		p.log.Errorw("Failed to publish sync event", "error", err, "billing_event_id", ev.ID)
		return fmt.Errorf("failed to publish sync event: %w", err)
	}

	p.log.Debugw("Sync event published", "topic", p.topic, "partition", partition, "offset", offset)
	return nil
}

// Close закрывает продюсер
func (p *kafkaSyncProducer) Close() error {
	return p.producer.Close()
}
