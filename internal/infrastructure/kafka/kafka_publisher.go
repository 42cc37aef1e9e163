package publisher

import (
	"context"
	"encoding/json"
	"time"

	"github.com/openbay/auction-service/internal/domain"
	"github.com/segmentio/kafka-go"
)

type DefaultKafkaPublisher struct {
	writer *kafka.Writer
}

func NewDefaultKafkaPublisher(brokers []string) *DefaultKafkaPublisher {
	return &DefaultKafkaPublisher{
		writer: &kafka.Writer{
			Addr:     kafka.TCP(brokers...),
			Balancer: &kafka.LeastBytes{},
		},
	}
}

func (k *DefaultKafkaPublisher) Publish(topic string, msgs ...domain.Message) error {
	var km []kafka.Message
	for _, m := range msgs {
		km = append(km, kafka.Message{
			Key:   m.Key,
			Value: m.Value,
			Time:  time.Now(),
			Topic: topic,
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return k.writer.WriteMessages(ctx, km...)
}

// PublishJSON marshals the event and publishes it keyed by the entity id,
// so per-entity ordering survives partitioning.
func (k *DefaultKafkaPublisher) PublishJSON(topic, key string, event any) error {
	v, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return k.Publish(topic, domain.Message{Key: []byte(key), Value: v})
}

func (k *DefaultKafkaPublisher) Close() error {
	return k.writer.Close()
}
