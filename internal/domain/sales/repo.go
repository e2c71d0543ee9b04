package sales

import (
	"context"
	"time"

	"distrisur/internal/core/id"
)

// ListFilter narrows sale listings.
type ListFilter struct {
	Channel  *Channel
	Status   *Status
	FromDate *time.Time
	ToDate   *time.Time
	Limit    int
	Offset   int
}

// Repository defines persistence operations for sales.
type Repository interface {
	// CreateSale persists the sale with its items and payments.
	// Must be called inside a transaction.
	CreateSale(ctx context.Context, sale *Sale) error

	// GetByID returns the sale with items and payments loaded.
	GetByID(ctx context.Context, saleID id.ID) (*Sale, error)

	List(ctx context.Context, filter ListFilter) ([]*Sale, error)

	UpdateStatus(ctx context.Context, saleID id.ID, status Status) error

	// DeleteCascade hard-deletes payments, items and the sale row.
	// Invoice deletion is handled by the fiscal repository.
	DeleteCascade(ctx context.Context, saleID id.ID) error

	// NextCode produces the next human-readable sale code for a channel
	// prefix, e.g. POS-000042.
	NextCode(ctx context.Context, prefix string) (string, error)
}
