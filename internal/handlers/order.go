package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prudhivi99/Distributed-Systems/commerce-api/internal/models"
	"github.com/prudhivi99/Distributed-Systems/commerce-api/internal/service"
)

type OrderHandler struct {
	service *service.OrderService
}

func NewOrderHandler(svc *service.OrderService) *OrderHandler {
	return &OrderHandler{service: svc}
}

// ListOrders returns all orders
func (h *OrderHandler) ListOrders(c *gin.Context) {
	orders, err := h.service.List(c.Request.Context())
	if err != nil {
		respondError(c, err, "Error retrieving orders")
		return
	}

	c.JSON(http.StatusOK, gin.H{"count": len(orders), "orders": orders})
}

// ListCustomerOrders returns the orders placed by one customer
func (h *OrderHandler) ListCustomerOrders(c *gin.Context) {
	orders, err := h.service.ListByCustomer(c.Request.Context(), c.Param("customerId"))
	if err != nil {
		respondError(c, err, "Error retrieving orders")
		return
	}

	c.JSON(http.StatusOK, gin.H{"count": len(orders), "orders": orders})
}

// GetOrder returns a single order with items
func (h *OrderHandler) GetOrder(c *gin.Context) {
	order, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "Error retrieving order")
		return
	}

	c.JSON(http.StatusOK, order)
}

// CreateOrder creates a new order and reserves its inventory
func (h *OrderHandler) CreateOrder(c *gin.Context) {
	var req models.CreateOrderRequest
	if !bindJSON(c, &req) {
		return
	}

	order, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, err, "Error creating order")
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Order created successfully", "order": order})
}

// UpdateOrderStatus updates the order status
func (h *OrderHandler) UpdateOrderStatus(c *gin.Context) {
	var req models.UpdateOrderStatusRequest
	if !bindJSON(c, &req) {
		return
	}

	order, err := h.service.UpdateStatus(c.Request.Context(), c.Param("id"), req.Status)
	if err != nil {
		respondError(c, err, "Error updating order")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Order status updated successfully", "order": order})
}

// DeleteOrder removes the order and restores its inventory
func (h *OrderHandler) DeleteOrder(c *gin.Context) {
	order, err := h.service.Delete(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "Error deleting order")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Order deleted successfully", "order": order})
}
