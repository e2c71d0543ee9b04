// Package notification provides Notifier adapters for operational alerts.
package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"distrisur/internal/domain/inventory"
	"distrisur/pkg/logger"
)

// KafkaNotifier publishes alerts to a Kafka topic. Delivery is
// fire-and-forget from the caller's perspective; the inventory service
// already logs and swallows notifier errors.
type KafkaNotifier struct {
	writer *kafka.Writer
}

// NewKafkaNotifier creates a notifier publishing to the given broker/topic.
func NewKafkaNotifier(brokerAddr, topic string) *KafkaNotifier {
	return &KafkaNotifier{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokerAddr),
			Topic:        topic,
			Balancer:     &kafka.LeastBytes{},
			BatchTimeout: 10 * time.Millisecond,
			BatchSize:    100,
		},
	}
}

type alertMessage struct {
	Kind  string                  `json:"kind"`
	Text  string                  `json:"text,omitempty"`
	Items []inventory.LowStockItem `json:"items,omitempty"`
	At    time.Time               `json:"at"`
}

// SendLowStockAlert publishes a low-stock event keyed by the first product.
func (n *KafkaNotifier) SendLowStockAlert(ctx context.Context, items []inventory.LowStockItem) error {
	if len(items) == 0 {
		return nil
	}

	payload, err := json.Marshal(alertMessage{
		Kind:  "LOW_STOCK",
		Items: items,
		At:    time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("marshal alert: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(items[0].ProductID.String()),
		Value: payload,
	}
	if err := n.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish low stock alert: %w", err)
	}

	return nil
}

// SendAlert publishes a free-form operational alert.
func (n *KafkaNotifier) SendAlert(ctx context.Context, text string) error {
	payload, err := json.Marshal(alertMessage{
		Kind: "OPS",
		Text: text,
		At:   time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("marshal alert: %w", err)
	}

	if err := n.writer.WriteMessages(ctx, kafka.Message{Value: payload}); err != nil {
		return fmt.Errorf("publish alert: %w", err)
	}

	return nil
}

// Close flushes and closes the underlying writer.
func (n *KafkaNotifier) Close() error {
	return n.writer.Close()
}

// LogNotifier writes alerts to the application log. Used when no broker
// is configured.
type LogNotifier struct{}

// NewLogNotifier creates a log-only notifier.
func NewLogNotifier() *LogNotifier {
	return &LogNotifier{}
}

// SendLowStockAlert logs the items under threshold.
func (n *LogNotifier) SendLowStockAlert(ctx context.Context, items []inventory.LowStockItem) error {
	for _, item := range items {
		logger.Warn(ctx, "low stock alert",
			"product_id", item.ProductID,
			"sku", item.SKU,
			"name", item.Name,
			"quantity", item.Quantity,
		)
	}
	return nil
}

// SendAlert logs a free-form operational alert.
func (n *LogNotifier) SendAlert(ctx context.Context, text string) error {
	logger.Warn(ctx, "ops alert", "text", text)
	return nil
}

// Ensure interface compliance.
var (
	_ inventory.Notifier = (*KafkaNotifier)(nil)
	_ inventory.Notifier = (*LogNotifier)(nil)
)
