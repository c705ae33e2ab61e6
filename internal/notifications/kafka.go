package notifications

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"inventory-service/internal/inventory"

	"github.com/segmentio/kafka-go"
)

type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaConsumer reads every inventory topic as part of a consumer group.
// Offsets are committed after each message is handled.
type KafkaConsumer struct {
	reader  messageReader
	handler *Handler
	logger  *slog.Logger
}

func NewKafkaConsumer(brokers []string, groupID string, handler *Handler, logger *slog.Logger) *KafkaConsumer {
	return &KafkaConsumer{
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers:     brokers,
			GroupID:     groupID,
			GroupTopics: inventory.Topics,
			MinBytes:    1,
			MaxBytes:    10e6,
		}),
		handler: handler,
		logger:  logger,
	}
}

func (c *KafkaConsumer) Listen(ctx context.Context) error {
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, context.Canceled) {
				return nil
			}
			return fmt.Errorf("fetch message: %w", err)
		}

		if err := c.handler.Handle(ctx, msg.Topic, msg.Value); err != nil {
			c.logger.Error("handle message failed",
				"topic", msg.Topic,
				"partition", msg.Partition,
				"offset", msg.Offset,
				"error", err,
			)
		}

		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("commit offset %d: %w", msg.Offset, err)
		}
	}
}

func (c *KafkaConsumer) Close() error {
	return c.reader.Close()
}
