package dto

import (
	"time"

	"distrisur/internal/domain/catalogs/product"
	"distrisur/internal/domain/catalogs/warehouse"
)

// --- Product DTOs ---

// CreateProductRequest for POST /products.
type CreateProductRequest struct {
	SKU            string  `json:"sku" binding:"required"`
	Name           string  `json:"name" binding:"required"`
	Category       string  `json:"category"`
	BasePrice      string  `json:"basePrice" binding:"required"`
	WholesalePrice *string `json:"wholesalePrice"`
	CostPrice      *string `json:"costPrice"`
}

// ProductResponse represents a product in API responses.
type ProductResponse struct {
	ID             string    `json:"id"`
	SKU            string    `json:"sku"`
	Name           string    `json:"name"`
	Category       string    `json:"category,omitempty"`
	BasePrice      string    `json:"basePrice"`
	WholesalePrice *string   `json:"wholesalePrice,omitempty"`
	CostPrice      *string   `json:"costPrice,omitempty"`
	IsActive       bool      `json:"isActive"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// FromProduct converts a domain product to a response DTO.
func FromProduct(p *product.Product) ProductResponse {
	resp := ProductResponse{
		ID:        p.ID.String(),
		SKU:       p.SKU,
		Name:      p.Name,
		Category:  p.Category,
		BasePrice: p.BasePrice.String(),
		IsActive:  p.IsActive,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
	if p.WholesalePrice != nil {
		s := p.WholesalePrice.String()
		resp.WholesalePrice = &s
	}
	if p.CostPrice != nil {
		s := p.CostPrice.String()
		resp.CostPrice = &s
	}
	return resp
}

// --- Warehouse DTOs ---

// CreateWarehouseRequest for POST /warehouses.
type CreateWarehouseRequest struct {
	Name    string  `json:"name" binding:"required"`
	Type    string  `json:"type" binding:"required"`
	Address *string `json:"address"`
}

// WarehouseResponse represents a warehouse in API responses.
type WarehouseResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Type      string    `json:"type"`
	Address   *string   `json:"address,omitempty"`
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// FromWarehouse converts a domain warehouse to a response DTO.
func FromWarehouse(w *warehouse.Warehouse) WarehouseResponse {
	return WarehouseResponse{
		ID:        w.ID.String(),
		Name:      w.Name,
		Type:      string(w.Type),
		Address:   w.Address,
		IsActive:  w.IsActive,
		CreatedAt: w.CreatedAt,
		UpdatedAt: w.UpdatedAt,
	}
}
