package models

import "time"

type Inventory struct {
	Quantity int `json:"quantity" bson:"quantity"`
}

type Product struct {
	ID           string    `json:"id" bson:"_id"`
	Name         string    `json:"name" bson:"name"`
	Description  string    `json:"description,omitempty" bson:"description,omitempty"`
	Price        float64   `json:"price" bson:"price"`
	Category     string    `json:"category" bson:"category"`
	SKU          string    `json:"sku" bson:"sku"`
	Manufacturer string    `json:"manufacturer,omitempty" bson:"manufacturer,omitempty"`
	Inventory    Inventory `json:"inventory" bson:"inventory"`
	CreatedAt    time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt" bson:"updatedAt"`
}

func (p *Product) Touch(now time.Time) {
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now
}

type CreateProductRequest struct {
	Name         string     `json:"name"`
	Description  string     `json:"description"`
	Price        *float64   `json:"price"`
	Category     string     `json:"category"`
	SKU          string     `json:"sku"`
	Manufacturer string     `json:"manufacturer"`
	Inventory    *Inventory `json:"inventory"`
}

type UpdateProductRequest struct {
	Name         string     `json:"name"`
	Description  string     `json:"description"`
	Price        *float64   `json:"price"`
	Category     string     `json:"category"`
	SKU          string     `json:"sku"`
	Manufacturer string     `json:"manufacturer"`
	Inventory    *Inventory `json:"inventory"`
}

type UpdateInventoryRequest struct {
	Quantity *int `json:"quantity"`
}
