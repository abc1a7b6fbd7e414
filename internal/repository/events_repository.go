package repository

import (
	"context"

	"github.com/pavankpatil043-source/e-chart-Pr-sub001/internal/domain/repository"
	"github.com/pavankpatil043-source/e-chart-Pr-sub001/pkg/kafka"
)

// KafkaEvents publishes resolution outcomes to a Kafka topic, keyed by
// symbol so a partition sees a symbol's events in order.
type KafkaEvents struct {
	producer *kafka.Producer
	topic    string
}

// NewKafkaEvents creates the Kafka-backed resolution event publisher.
func NewKafkaEvents(producer *kafka.Producer, topic string) repository.EventPublisher {
	return &KafkaEvents{producer: producer, topic: topic}
}

func (p *KafkaEvents) PublishResolution(ctx context.Context, e repository.ResolutionEvent) error {
	return p.producer.Publish(ctx, p.topic, []byte(e.Symbol), e)
}

func (p *KafkaEvents) Close() error {
	return p.producer.Close()
}
