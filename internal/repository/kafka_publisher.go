package repository

import (
	"context"

	"github.com/pral10/SmartIoT/internal/domain/models"
	"github.com/pral10/SmartIoT/internal/domain/repository"
	pkgkafka "github.com/pral10/SmartIoT/pkg/kafka"
)

// KafkaPublisher implements Publisher on the readings topic. Messages are
// keyed by device id so per-device ordering is preserved.
type KafkaPublisher struct {
	producer *pkgkafka.Producer
	topic    string
}

// NewKafkaPublisher creates a Kafka publisher.
func NewKafkaPublisher(producer *pkgkafka.Producer, topic string) repository.Publisher {
	return &KafkaPublisher{producer: producer, topic: topic}
}

func (p *KafkaPublisher) Publish(ctx context.Context, r *models.Reading) error {
	return p.producer.Publish(ctx, p.topic, []byte(r.DeviceID), r)
}

func (p *KafkaPublisher) PublishBatch(ctx context.Context, readings []*models.Reading) error {
	if len(readings) == 0 {
		return nil
	}
	msgs := make([]pkgkafka.Message, len(readings))
	for i, r := range readings {
		msgs[i] = pkgkafka.Message{
			Key:   []byte(r.DeviceID),
			Value: r,
		}
	}
	return p.producer.PublishBatch(ctx, p.topic, msgs)
}

func (p *KafkaPublisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}
