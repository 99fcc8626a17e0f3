package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prudhivi99/Distributed-Systems/commerce-api/internal/models"
	"github.com/prudhivi99/Distributed-Systems/commerce-api/internal/service"
)

type ProductHandler struct {
	service *service.ProductService
}

func NewProductHandler(svc *service.ProductService) *ProductHandler {
	return &ProductHandler{service: svc}
}

// ListProducts returns all products
func (h *ProductHandler) ListProducts(c *gin.Context) {
	products, err := h.service.List(c.Request.Context())
	if err != nil {
		respondError(c, err, "Error retrieving products")
		return
	}

	c.JSON(http.StatusOK, gin.H{"count": len(products), "products": products})
}

// GetProduct returns a single product
func (h *ProductHandler) GetProduct(c *gin.Context) {
	product, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "Error retrieving product")
		return
	}

	c.JSON(http.StatusOK, product)
}

// CreateProduct creates a new product
func (h *ProductHandler) CreateProduct(c *gin.Context) {
	var req models.CreateProductRequest
	if !bindJSON(c, &req) {
		return
	}

	product, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, err, "Error creating product")
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Product created successfully", "product": product})
}

func (h *ProductHandler) UpdateProduct(c *gin.Context) {
	var req models.UpdateProductRequest
	if !bindJSON(c, &req) {
		return
	}

	product, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		respondError(c, err, "Error updating product")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Product updated successfully", "product": product})
}

// UpdateInventory overwrites the stock count of a product
func (h *ProductHandler) UpdateInventory(c *gin.Context) {
	var req models.UpdateInventoryRequest
	if !bindJSON(c, &req) {
		return
	}

	product, err := h.service.SetInventory(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		respondError(c, err, "Error updating inventory")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Inventory updated successfully", "product": product})
}

// DeleteProduct removes a product
func (h *ProductHandler) DeleteProduct(c *gin.Context) {
	product, err := h.service.Delete(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "Error deleting product")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Product deleted successfully", "product": product})
}
