package repository

import (
	"context"

	"FxPulse/internal/domain/models"
	domrepo "FxPulse/internal/domain/repository"
	pkgkafka "FxPulse/pkg/kafka"
)

// KafkaAlertPublisher publishes emitted alerts to a Kafka topic for
// downstream consumers (notification fan-out, audit).
type KafkaAlertPublisher struct {
	producer *pkgkafka.Producer
	topic    string
}

// NewKafkaAlertPublisher creates a Kafka-backed alert publisher.
func NewKafkaAlertPublisher(producer *pkgkafka.Producer, topic string) domrepo.AlertPublisher {
	return &KafkaAlertPublisher{producer: producer, topic: topic}
}

func (p *KafkaAlertPublisher) Publish(ctx context.Context, a *models.Alert) error {
	return p.producer.Publish(ctx, p.topic, []byte(a.Pair), a)
}

func (p *KafkaAlertPublisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}
