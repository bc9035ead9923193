package kafka

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/corray333/backend-labs/shop/internal/service/models/outbox"
	"github.com/segmentio/kafka-go"
	"github.com/spf13/viper"
)

// Producer writes outbox messages to Kafka. The routing key is the topic and
// the message key keeps events of one order on one partition.
type Producer struct {
	w *kafka.Writer
}

func NewProducer(brokers []string) *Producer {
	return &Producer{
		w: &kafka.Writer{
			Addr:                   kafka.TCP(brokers...),
			Balancer:               &kafka.Hash{},
			RequiredAcks:           kafka.RequireAll,
			AllowAutoTopicCreation: true,
		},
	}
}

// MustNewProducer creates a producer for the brokers in broker.kafka.brokers.
func MustNewProducer() *Producer {
	brokers := viper.GetStringSlice("broker.kafka.brokers")
	if len(brokers) == 0 {
		panic("broker.kafka.brokers is empty")
	}

	slog.Info("Kafka producer configured", "brokers", brokers)

	return NewProducer(brokers)
}

func (p *Producer) Publish(ctx context.Context, msg outbox.OutboxMessage) error {
	err := p.w.WriteMessages(ctx, kafka.Message{
		Topic: msg.RoutingKey,
		Key:   []byte(msg.MessageKey),
		Value: msg.Payload,
		Time:  msg.CreatedAt,
		Headers: []kafka.Header{
			{Key: "content-type", Value: []byte(msg.ContentType)},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to write kafka message: %w", err)
	}

	return nil
}

func (p *Producer) Close() error {
	return p.w.Close()
}
