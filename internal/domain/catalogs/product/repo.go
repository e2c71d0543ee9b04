package product

import (
	"context"

	"distrisur/internal/core/id"
)

// Repository defines persistence operations for products.
type Repository interface {
	Create(ctx context.Context, p *Product) error
	Update(ctx context.Context, p *Product) error
	GetByID(ctx context.Context, productID id.ID) (*Product, error)
	GetBySKU(ctx context.Context, sku string) (*Product, error)
	List(ctx context.Context, filter ListFilter) ([]*Product, error)
}

// ListFilter narrows product listings.
type ListFilter struct {
	Category   string
	OnlyActive bool
	Limit      int
	Offset     int
}
