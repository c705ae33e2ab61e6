package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
)

// LogPublisher stands in for a broker when none is configured: events are
// encoded and written to the log instead of being sent anywhere.
type LogPublisher struct {
	logger *slog.Logger
}

func NewLogPublisher(logger *slog.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

func (p *LogPublisher) Publish(ctx context.Context, topic, key string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", topic, err)
	}

	p.logger.DebugContext(ctx, "event published",
		"topic", topic,
		"key", key,
		"payload", json.RawMessage(body),
	)
	return nil
}

func (p *LogPublisher) Close() error { return nil }
