package consumer

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/prudhivi99/Distributed-Systems/commerce-api/internal/db"
	"github.com/prudhivi99/Distributed-Systems/commerce-api/internal/models"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
)

// LowStockAlert reports a product whose stock fell to the alert threshold.
type LowStockAlert struct {
	ProductID string
	Name      string
	Quantity  int
	Threshold int
}

// InventoryConsumer watches order events and raises low-stock alerts for
// the products they touched.
type InventoryConsumer struct {
	repo      db.ProductRepository
	threshold int
	logger    *logrus.Logger
}

func NewInventoryConsumer(repo db.ProductRepository, threshold int, logger *logrus.Logger) *InventoryConsumer {
	return &InventoryConsumer{repo: repo, threshold: threshold, logger: logger}
}

// ProcessOrderEvents handles deliveries until the channel closes or ctx is done
func (c *InventoryConsumer) ProcessOrderEvents(ctx context.Context, messages <-chan amqp.Delivery) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-messages:
			if !ok {
				return
			}
			c.process(ctx, msg)
		}
	}
}

func (c *InventoryConsumer) process(ctx context.Context, msg amqp.Delivery) {
	var event models.OrderEvent
	if err := json.Unmarshal(msg.Body, &event); err != nil {
		c.logger.WithError(err).Error("Failed to parse order event")
		msg.Nack(false, false) // Don't requeue bad messages
		return
	}

	if _, err := c.Check(ctx, event); err != nil {
		c.logger.WithError(err).WithField("order_id", event.OrderID).Warn("Order event partially failed, requeued")
		msg.Nack(false, true) // Requeue for retry
		return
	}

	msg.Ack(false)
}

// Check looks up every product in the event and returns the ones at or below
// the threshold. Products that no longer exist are ignored. Status changes
// move no stock and are only acknowledged.
func (c *InventoryConsumer) Check(ctx context.Context, event models.OrderEvent) ([]LowStockAlert, error) {
	c.logger.WithFields(logrus.Fields{
		"event":    event.Type,
		"order_id": event.OrderID,
	}).Debug("Received order event")

	if event.Type == models.EventOrderStatusChanged {
		return nil, nil
	}

	var alerts []LowStockAlert
	seen := make(map[string]bool, len(event.Items))
	for _, item := range event.Items {
		if seen[item.ProductID] {
			continue
		}
		seen[item.ProductID] = true

		product, err := c.repo.GetByID(ctx, item.ProductID)
		if err != nil {
			return alerts, fmt.Errorf("failed to load product %s: %w", item.ProductID, err)
		}
		if product == nil || product.Inventory.Quantity > c.threshold {
			continue
		}

		alert := LowStockAlert{
			ProductID: product.ID,
			Name:      product.Name,
			Quantity:  product.Inventory.Quantity,
			Threshold: c.threshold,
		}
		alerts = append(alerts, alert)
		c.logger.WithFields(logrus.Fields{
			"product_id": alert.ProductID,
			"product":    alert.Name,
			"quantity":   alert.Quantity,
			"threshold":  alert.Threshold,
			"order_id":   event.OrderID,
		}).Warn("Low stock")
	}
	return alerts, nil
}
