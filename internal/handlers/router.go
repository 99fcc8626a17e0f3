package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type Handlers struct {
	Health    *HealthHandler
	Customers *CustomerHandler
	Products  *ProductHandler
	Orders    *OrderHandler
}

func NewRouter(h Handlers, logger *logrus.Logger) *gin.Engine {
	router := gin.New()
	router.Use(RequestLogger(logger), gin.Recovery())

	router.GET("/health", h.Health.HealthCheck)

	api := router.Group("/api")
	api.GET("/health", h.Health.HealthCheck)

	customers := api.Group("/customers")
	customers.POST("", h.Customers.CreateCustomer)
	customers.GET("", h.Customers.ListCustomers)
	customers.GET("/:id", h.Customers.GetCustomer)
	customers.PUT("/:id", h.Customers.UpdateCustomer)
	customers.DELETE("/:id", h.Customers.DeleteCustomer)

	products := api.Group("/products")
	products.POST("", h.Products.CreateProduct)
	products.GET("", h.Products.ListProducts)
	products.GET("/:id", h.Products.GetProduct)
	products.PUT("/:id", h.Products.UpdateProduct)
	products.PUT("/:id/inventory", h.Products.UpdateInventory)
	products.DELETE("/:id", h.Products.DeleteProduct)

	orders := api.Group("/orders")
	orders.POST("", h.Orders.CreateOrder)
	orders.GET("", h.Orders.ListOrders)
	orders.GET("/customer/:customerId", h.Orders.ListCustomerOrders)
	orders.GET("/:id", h.Orders.GetOrder)
	orders.PUT("/:id/status", h.Orders.UpdateOrderStatus)
	orders.PATCH("/:id/status", h.Orders.UpdateOrderStatus)
	orders.DELETE("/:id", h.Orders.DeleteOrder)

	return router
}
