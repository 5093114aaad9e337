package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/Redoni18/scriba-aggregator/internal/domain"
)

type KafkaConfig struct {
	Brokers []string
	Topic   string
}

// messageWriter is the part of *kafka.Writer the publisher uses.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type Kafka struct {
	writer messageWriter
	logger *slog.Logger
}

func NewKafka(cfg KafkaConfig, logger *slog.Logger) (*Kafka, error) {
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("kafka: no brokers configured")
	}
	if cfg.Topic == "" {
		return nil, fmt.Errorf("kafka: topic is required")
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		Async:        false,
	}

	logger = logger.With("component", "publisher", "driver", "kafka")
	logger.Info("kafka writer initialized", "brokers", cfg.Brokers, "topic", cfg.Topic)

	return &Kafka{writer: writer, logger: logger}, nil
}

// Publish writes the event keyed by article id so every event for one article
// lands on the same partition.
func (k *Kafka) Publish(ctx context.Context, event *domain.ArticleEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(event.Article.ID.String()),
		Value: body,
		Time:  time.Now(),
		Headers: []kafka.Header{
			{Key: "action", Value: []byte(event.Action)},
		},
	}

	if err := k.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("write message to kafka: %w", err)
	}

	k.logger.Debug("published article event",
		"external_id", event.Article.ExternalID,
		"action", event.Action,
	)
	return nil
}

func (k *Kafka) Close() error {
	return k.writer.Close()
}
