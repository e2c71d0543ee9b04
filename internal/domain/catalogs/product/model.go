// Package product provides the Product catalog.
// Products are reference data for the operational core: the ledger and the
// settlement engine read them but never mutate them.
package product

import (
	"context"
	"strings"
	"time"

	"distrisur/internal/core/apperror"
	"distrisur/internal/core/id"
	"distrisur/internal/core/types"
)

// Product represents a sellable beverage item.
type Product struct {
	ID       id.ID  `db:"id" json:"id"`
	SKU      string `db:"sku" json:"sku"`
	Name     string `db:"name" json:"name"`
	Category string `db:"category" json:"category,omitempty"`

	// BasePrice is the default retail unit price.
	BasePrice types.Money `db:"base_price" json:"basePrice"`

	// WholesalePrice overrides BasePrice for wholesale customers.
	WholesalePrice *types.Money `db:"wholesale_price" json:"wholesalePrice,omitempty"`

	// CostPrice is the last known acquisition cost, used for margin reports.
	CostPrice *types.Money `db:"cost_price" json:"costPrice,omitempty"`

	IsActive  bool      `db:"is_active" json:"isActive"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// NewProduct creates a product with required fields.
func NewProduct(sku, name string, basePrice types.Money) *Product {
	now := time.Now().UTC()
	return &Product{
		ID:        id.New(),
		SKU:       sku,
		Name:      name,
		BasePrice: basePrice,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Validate checks required fields.
func (p *Product) Validate(ctx context.Context) error {
	if strings.TrimSpace(p.SKU) == "" {
		return apperror.NewValidation("sku is required").WithDetail("field", "sku")
	}
	if strings.TrimSpace(p.Name) == "" {
		return apperror.NewValidation("name is required").WithDetail("field", "name")
	}
	if p.BasePrice.IsNegative() {
		return apperror.NewValidation("base price must not be negative").WithDetail("field", "basePrice")
	}
	return nil
}
