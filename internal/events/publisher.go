// Package events publishes domain events about users and posts to Kafka.
package events

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	"github.com/dan47bennett/typescript-reddit/internal/logger"
	"github.com/dan47bennett/typescript-reddit/internal/models"
)

//go:generate mockgen -source=publisher.go -destination=mock_kafka_writer.go -package=events

// KafkaWriter defines a Kafka writer abstraction.
type KafkaWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Publisher emits events. Publishing is best effort: failures are logged
// and never reach the caller.
type Publisher struct {
	writer KafkaWriter
}

// NewPublisher returns a Publisher; a nil writer disables publishing.
func NewPublisher(writer KafkaWriter) *Publisher {
	return &Publisher{writer: writer}
}

// NewKafkaWriter builds a writer for topic. It returns nil when no brokers are given.
func NewKafkaWriter(brokers []string, topic string) *kafka.Writer {
	if len(brokers) == 0 {
		return nil
	}
	return &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		AllowAutoTopicCreation: true,
	}
}

func (p *Publisher) Publish(ctx context.Context, eventType string, userID, postID int) {
	event := models.Event{
		EventID:    uuid.NewString(),
		Type:       eventType,
		UserID:     userID,
		PostID:     postID,
		OccurredAt: time.Now().UTC(),
	}

	if p == nil || p.writer == nil {
		logger.Log.Debugw("kafka writer not configured, skipping event", "event_id", event.EventID, "type", eventType)
		return
	}

	data, err := json.Marshal(event)
	if err != nil {
		logger.Log.Errorw("failed to marshal event", "event_id", event.EventID, "error", err)
		return
	}

	msg := kafka.Message{
		Key:   []byte(strconv.Itoa(userID)),
		Value: data,
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		logger.Log.Errorw("failed to publish event", "event_id", event.EventID, "type", eventType, "error", err)
		return
	}
	logger.Log.Infow("event published", "event_id", event.EventID, "type", eventType, "user_id", userID)
}

// Close flushes and closes the underlying writer.
func (p *Publisher) Close() error {
	if p == nil || p.writer == nil {
		return nil
	}
	return p.writer.Close()
}
