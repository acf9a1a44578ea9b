package kafka

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/segmentio/kafka-go"

	"github.com/vigipay/vigipay-backend/internal/domain"
)

// DefaultTopic receives transfer.completed events
const DefaultTopic = "transfer.completed"

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Publisher writes ledger events to Kafka
type Publisher struct {
	writer messageWriter
}

// NewPublisher creates a publisher writing to topic on brokers
func NewPublisher(brokers []string, topic string) *Publisher {
	if topic == "" {
		topic = DefaultTopic
	}
	return &Publisher{
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(brokers...),
			Topic:                  topic,
			Balancer:               &kafka.LeastBytes{},
			AllowAutoTopicCreation: true,
		},
	}
}

// PublishTransferCompleted implements domain.EventPublisher.
// Messages are keyed by transfer ID so retries land on the same partition.
func (p *Publisher) PublishTransferCompleted(ctx context.Context, event domain.TransferCompleted) error {
	msg, err := buildMessage(event)
	if err != nil {
		return err
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to publish transfer event: %w", err)
	}
	return nil
}

// Close flushes pending messages and closes the writer
func (p *Publisher) Close() error {
	return p.writer.Close()
}

func buildMessage(event domain.TransferCompleted) (kafka.Message, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("failed to encode transfer event: %w", err)
	}
	return kafka.Message{
		Key:   []byte(event.TransferID.String()),
		Value: data,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte("transfer.completed")},
		},
		Time: event.OccurredAt,
	}, nil
}

var _ domain.EventPublisher = (*Publisher)(nil)
