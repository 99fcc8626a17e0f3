package models

import "time"

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "Pending"
	OrderStatusProcessing OrderStatus = "Processing"
	OrderStatusShipped    OrderStatus = "Shipped"
	OrderStatusDelivered  OrderStatus = "Delivered"
	OrderStatusCancelled  OrderStatus = "Cancelled"
)

// OrderStatuses lists every accepted status in display order.
var OrderStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusProcessing,
	OrderStatusShipped,
	OrderStatusDelivered,
	OrderStatusCancelled,
}

func (s OrderStatus) Valid() bool {
	for _, v := range OrderStatuses {
		if s == v {
			return true
		}
	}
	return false
}

type Order struct {
	ID              string      `json:"id" bson:"_id"`
	OrderNumber     string      `json:"orderNumber" bson:"orderNumber"`
	CustomerID      string      `json:"customerId" bson:"customerId"`
	CustomerName    string      `json:"customerName" bson:"customerName"`
	Items           []OrderItem `json:"items" bson:"items"`
	Subtotal        float64     `json:"subtotal" bson:"subtotal"`
	Tax             float64     `json:"tax" bson:"tax"`
	ShippingCost    float64     `json:"shippingCost" bson:"shippingCost"`
	Total           float64     `json:"total" bson:"total"`
	Status          OrderStatus `json:"status" bson:"status"`
	ShippingAddress Address     `json:"shippingAddress" bson:"shippingAddress"`
	Notes           string      `json:"notes,omitempty" bson:"notes,omitempty"`
	OrderDate       time.Time   `json:"orderDate" bson:"orderDate"`
	CreatedAt       time.Time   `json:"createdAt" bson:"createdAt"`
	UpdatedAt       time.Time   `json:"updatedAt" bson:"updatedAt"`
}

// OrderItem is a line item; name and unit price are captured at order time.
type OrderItem struct {
	ProductID   string  `json:"productId" bson:"productId"`
	ProductName string  `json:"productName" bson:"productName"`
	Quantity    int     `json:"quantity" bson:"quantity"`
	UnitPrice   float64 `json:"unitPrice" bson:"unitPrice"`
	Subtotal    float64 `json:"subtotal" bson:"subtotal"`
}

func (o *Order) Touch(now time.Time) {
	if o.CreatedAt.IsZero() {
		o.CreatedAt = now
		o.OrderDate = now
	}
	o.UpdatedAt = now
}

type CreateOrderRequest struct {
	CustomerID      string                   `json:"customerId"`
	Items           []CreateOrderItemRequest `json:"items"`
	ShippingAddress *Address                 `json:"shippingAddress"`
	Notes           string                   `json:"notes"`
	Tax             float64                  `json:"tax"`
	ShippingCost    float64                  `json:"shippingCost"`
}

type CreateOrderItemRequest struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

type UpdateOrderStatusRequest struct {
	Status string `json:"status"`
}
