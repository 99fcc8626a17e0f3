package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prudhivi99/Distributed-Systems/commerce-api/internal/models"
	"github.com/prudhivi99/Distributed-Systems/commerce-api/internal/service"
)

type CustomerHandler struct {
	service *service.CustomerService
}

func NewCustomerHandler(svc *service.CustomerService) *CustomerHandler {
	return &CustomerHandler{service: svc}
}

func (h *CustomerHandler) ListCustomers(c *gin.Context) {
	customers, err := h.service.List(c.Request.Context())
	if err != nil {
		respondError(c, err, "Error retrieving customers")
		return
	}

	c.JSON(http.StatusOK, gin.H{"count": len(customers), "customers": customers})
}

func (h *CustomerHandler) GetCustomer(c *gin.Context) {
	customer, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "Error retrieving customer")
		return
	}

	c.JSON(http.StatusOK, customer)
}

func (h *CustomerHandler) CreateCustomer(c *gin.Context) {
	var req models.CreateCustomerRequest
	if !bindJSON(c, &req) {
		return
	}

	customer, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, err, "Error creating customer")
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Customer created successfully", "customer": customer})
}

func (h *CustomerHandler) UpdateCustomer(c *gin.Context) {
	var req models.UpdateCustomerRequest
	if !bindJSON(c, &req) {
		return
	}

	customer, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		respondError(c, err, "Error updating customer")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Customer updated successfully", "customer": customer})
}

func (h *CustomerHandler) DeleteCustomer(c *gin.Context) {
	customer, err := h.service.Delete(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "Error deleting customer")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Customer deleted successfully", "customer": customer})
}
