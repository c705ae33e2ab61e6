package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	contentTypeJSON = "application/json"
	exchangeKind    = "topic"
)

// RabbitPublisher publishes every event to one topic exchange, using the
// event topic as routing key.
type RabbitPublisher struct {
	channel  *amqp.Channel
	exchange string
}

func NewRabbitPublisher(conn *amqp.Connection, exchange string) (*RabbitPublisher, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("open channel: %w", err)
	}

	if err := ch.ExchangeDeclare(
		exchange,
		exchangeKind,
		true,
		false,
		false,
		false,
		nil,
	); err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("declare exchange %q: %w", exchange, err)
	}

	return &RabbitPublisher{
		channel:  ch,
		exchange: exchange,
	}, nil
}

func (p *RabbitPublisher) Publish(ctx context.Context, topic, key string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", topic, err)
	}

	if err := p.channel.PublishWithContext(
		ctx,
		p.exchange,
		topic,
		false,
		false,
		amqp.Publishing{
			ContentType:   contentTypeJSON,
			DeliveryMode:  amqp.Persistent,
			MessageId:     uuid.NewString(),
			CorrelationId: key,
			Timestamp:     time.Now().UTC(),
			Type:          topic,
			Body:          body,
		},
	); err != nil {
		return fmt.Errorf("publish to %q/%q: %w", p.exchange, topic, err)
	}

	return nil
}

func (p *RabbitPublisher) Close() error {
	return p.channel.Close()
}
