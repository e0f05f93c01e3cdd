package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aplose/erp-migrate/pkg/common/config"
	"github.com/aplose/erp-migrate/pkg/common/logger"
	"github.com/aplose/erp-migrate/pkg/common/models"
	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

const (
	headerEventType = "event-type"
	headerSource    = "source"
	headerKey       = "partition-key"
)

type Producer struct {
	writer *kafka.Writer
}

// NewProducer writes synchronously with acks from all replicas.
func NewProducer(topic string) *Producer {
	cfg := config.Load()
	return &Producer{writer: &kafka.Writer{
		Addr:         kafka.TCP(cfg.KafkaBrokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		BatchSize:    1,
		BatchTimeout: 10 * time.Millisecond,
		WriteTimeout: 10 * time.Second,
	}}
}

// PublishEvent writes one event. A non-empty key (the tenant id for import
// events) keeps a tenant's events on one partition.
func (p *Producer) PublishEvent(ctx context.Context, eventType, source, key string, data map[string]interface{}) error {
	event := models.Event{
		ID:        uuid.New().String(),
		Type:      eventType,
		Source:    source,
		Key:       key,
		Data:      data,
		Timestamp: time.Now().UTC(),
	}
	message, err := buildMessage(event)
	if err != nil {
		return err
	}

	fields := map[string]interface{}{
		"event_id":   event.ID,
		"event_type": eventType,
		"topic":      p.writer.Topic,
	}
	if err := p.writer.WriteMessages(ctx, message); err != nil {
		logger.Log.WithError(err).WithFields(fields).Error("Failed to publish event")
		return fmt.Errorf("publishing %s: %w", eventType, err)
	}
	logger.Log.WithFields(fields).Debug("Event published")
	return nil
}

// buildMessage encodes the envelope and falls back to the event id as the
// partition key.
func buildMessage(event models.Event) (kafka.Message, error) {
	value, err := json.Marshal(event)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("failed to marshal event: %w", err)
	}
	key := event.Key
	if key == "" {
		key = event.ID
	}
	return kafka.Message{
		Key:   []byte(key),
		Value: value,
		Time:  event.Timestamp,
		Headers: []kafka.Header{
			{Key: headerEventType, Value: []byte(event.Type)},
			{Key: headerSource, Value: []byte(event.Source)},
			{Key: headerKey, Value: []byte(key)},
		},
	}, nil
}

func (p *Producer) Close() error {
	return p.writer.Close()
}
