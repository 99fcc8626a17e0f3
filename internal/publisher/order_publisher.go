package publisher

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/prudhivi99/Distributed-Systems/commerce-api/internal/models"
)

// Topics are the queue (RabbitMQ) or topic (Kafka) names order events go to.
var Topics = []string{
	models.EventOrderCreated,
	models.EventOrderStatusChanged,
	models.EventOrderDeleted,
}

type Broker interface {
	Publish(ctx context.Context, topic, key string, body []byte) error
}

// QueueDeclarer is implemented by brokers that need queues created up front.
type QueueDeclarer interface {
	DeclareQueue(name string) error
}

type OrderPublisher struct {
	broker Broker
}

func NewOrderPublisher(broker Broker) (*OrderPublisher, error) {
	if declarer, ok := broker.(QueueDeclarer); ok {
		for _, topic := range Topics {
			if err := declarer.DeclareQueue(topic); err != nil {
				return nil, err
			}
		}
	}

	return &OrderPublisher{broker: broker}, nil
}

// PublishOrderEvent publishes event to the topic named by its type
func (p *OrderPublisher) PublishOrderEvent(ctx context.Context, event models.OrderEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	return p.broker.Publish(ctx, event.Type, event.OrderID, data)
}
