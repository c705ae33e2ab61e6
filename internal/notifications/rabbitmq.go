package notifications

import (
	"context"
	"fmt"
	"log/slog"

	"inventory-service/internal/inventory"

	amqp "github.com/rabbitmq/amqp091-go"
)

const consumerTag = "notifications-service"

// RabbitConsumer reads inventory events from a durable queue bound to the
// events exchange for every inventory topic.
type RabbitConsumer struct {
	channel *amqp.Channel
	queue   string
	handler *Handler
	logger  *slog.Logger
}

func NewRabbitConsumer(conn *amqp.Connection, exchange, queue string, handler *Handler, logger *slog.Logger) (*RabbitConsumer, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("open channel: %w", err)
	}

	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("declare exchange %q: %w", exchange, err)
	}

	_, err = ch.QueueDeclare(
		queue,
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("declare queue %q: %w", queue, err)
	}

	for _, topic := range inventory.Topics {
		if err := ch.QueueBind(queue, topic, exchange, false, nil); err != nil {
			_ = ch.Close()
			return nil, fmt.Errorf("bind queue %q to %q: %w", queue, topic, err)
		}
	}

	return &RabbitConsumer{
		channel: ch,
		queue:   queue,
		handler: handler,
		logger:  logger,
	}, nil
}

func (c *RabbitConsumer) Listen(ctx context.Context) error {
	msgs, err := c.channel.Consume(
		c.queue,
		consumerTag,
		false, // manual ack
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("consume queue %q: %w", c.queue, err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-msgs:
			if !ok {
				return nil
			}

			if err := c.handler.Handle(ctx, msg.RoutingKey, msg.Body); err != nil {
				// Undecodable events would fail again on redelivery.
				c.logger.Error("handle message failed", "routing_key", msg.RoutingKey, "error", err)
				_ = msg.Nack(false, false)
				continue
			}

			_ = msg.Ack(false)
		}
	}
}

func (c *RabbitConsumer) Close() error {
	return c.channel.Close()
}
