package warehouse

import (
	"context"

	"distrisur/internal/core/id"
)

// Repository defines persistence operations for warehouses.
type Repository interface {
	Create(ctx context.Context, w *Warehouse) error
	GetByID(ctx context.Context, warehouseID id.ID) (*Warehouse, error)
	List(ctx context.Context) ([]*Warehouse, error)

	// FirstByType returns the oldest warehouse of the given type,
	// or a NotFound error when none exists.
	FirstByType(ctx context.Context, whType Type) (*Warehouse, error)

	// EnsureDepot atomically provisions a depot with the given name when no
	// depot exists yet, and returns the winning row. Concurrent first
	// callers must converge on the same warehouse.
	EnsureDepot(ctx context.Context, name string) (*Warehouse, error)
}
