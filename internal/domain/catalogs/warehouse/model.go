// Package warehouse provides the Warehouse catalog.
// Warehouses represent physical locations for storing goods and inventory.
package warehouse

import (
	"context"
	"strings"
	"time"

	"distrisur/internal/core/apperror"
	"distrisur/internal/core/id"
)

// Type defines the warehouse category.
type Type string

const (
	TypeDepot   Type = "DEPOT"   // central depot, the default stock location
	TypeRetail  Type = "RETAIL"  // storefront stock
	TypeTransit Type = "TRANSIT" // goods on trucks between locations
)

// DefaultDepotName is the name given to the lazily provisioned depot.
const DefaultDepotName = "Depósito Central"

// Warehouse represents a storage location for goods.
type Warehouse struct {
	ID   id.ID  `db:"id" json:"id"`
	Name string `db:"name" json:"name"`

	// Type defines the warehouse category
	Type Type `db:"type" json:"type"`

	// Address is the physical address
	Address *string `db:"address" json:"address,omitempty"`

	// IsActive indicates if warehouse is operational
	IsActive bool `db:"is_active" json:"isActive"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// NewWarehouse creates a new Warehouse with required fields.
func NewWarehouse(name string, whType Type) *Warehouse {
	now := time.Now().UTC()
	return &Warehouse{
		ID:        id.New(),
		Name:      name,
		Type:      whType,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Validate checks required fields.
func (w *Warehouse) Validate(ctx context.Context) error {
	if strings.TrimSpace(w.Name) == "" {
		return apperror.NewValidation("name is required").WithDetail("field", "name")
	}

	if !isValidType(w.Type) {
		return apperror.NewValidation("invalid warehouse type").
			WithDetail("field", "type").
			WithDetail("value", string(w.Type))
	}

	return nil
}

// CanAcceptStock returns true if warehouse can accept stock.
func (w *Warehouse) CanAcceptStock() bool {
	return w.IsActive
}

func isValidType(t Type) bool {
	switch t {
	case TypeDepot, TypeRetail, TypeTransit:
		return true
	}
	return false
}
