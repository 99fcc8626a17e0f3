package models

import "time"

const (
	EventOrderCreated       = "order.created"
	EventOrderStatusChanged = "order.status_changed"
	EventOrderDeleted       = "order.deleted"
)

// OrderEvent is published after an order is created, re-statused or deleted.
type OrderEvent struct {
	Type        string           `json:"type"`
	OrderID     string           `json:"orderId"`
	OrderNumber string           `json:"orderNumber"`
	CustomerID  string           `json:"customerId"`
	Status      OrderStatus      `json:"status"`
	Total       float64          `json:"total"`
	Items       []OrderItemEvent `json:"items"`
	EventTime   time.Time        `json:"eventTime"`
}

type OrderItemEvent struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

func NewOrderEvent(eventType string, order *Order, now time.Time) OrderEvent {
	event := OrderEvent{
		Type:        eventType,
		OrderID:     order.ID,
		OrderNumber: order.OrderNumber,
		CustomerID:  order.CustomerID,
		Status:      order.Status,
		Total:       order.Total,
		EventTime:   now,
	}
	for _, item := range order.Items {
		event.Items = append(event.Items, OrderItemEvent{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
		})
	}
	return event
}
