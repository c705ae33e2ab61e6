package notifications

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"inventory-service/internal/inventory"
)

var ErrUnknownTopic = errors.New("unknown event topic")

// Handler turns inventory events into notification log lines. Stock alerts
// are logged at warn level.
type Handler struct {
	logger *slog.Logger
}

func NewHandler(logger *slog.Logger) *Handler {
	return &Handler{logger: logger}
}

func (h *Handler) Handle(ctx context.Context, topic string, body []byte) error {
	switch topic {
	case inventory.TopicProductCreated, inventory.TopicProductUpdated:
		var p inventory.Product
		if err := decode(body, &p); err != nil {
			return fmt.Errorf("%s: %w", topic, err)
		}
		h.logger.InfoContext(ctx, "notification event",
			"event_type", topic,
			"product_id", p.ID,
			"name", p.Name,
			"quantity", p.Quantity,
			"updated_at", p.UpdatedAt,
		)

	case inventory.TopicInventoryUpdated:
		var ev inventory.InventoryUpdated
		if err := decode(body, &ev); err != nil {
			return fmt.Errorf("%s: %w", topic, err)
		}
		h.logger.InfoContext(ctx, "notification event",
			"event_type", topic,
			"product_id", ev.ProductID,
			"old_quantity", ev.OldQuantity,
			"new_quantity", ev.NewQuantity,
		)

	case inventory.TopicInventoryAlert:
		var alert inventory.InventoryAlert
		if err := decode(body, &alert); err != nil {
			return fmt.Errorf("%s: %w", topic, err)
		}
		h.logger.WarnContext(ctx, "inventory alert",
			"event_type", topic,
			"product_id", alert.ProductID,
			"product_name", alert.ProductName,
			"stock_level", string(alert.StockLevel),
			"current_quantity", alert.CurrentQuantity,
			"threshold", alert.Threshold,
			"timestamp", alert.Timestamp,
		)

	default:
		return fmt.Errorf("%w: %q", ErrUnknownTopic, topic)
	}
	return nil
}

func decode(body []byte, v any) error {
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("unmarshal event: %w", err)
	}
	return nil
}
