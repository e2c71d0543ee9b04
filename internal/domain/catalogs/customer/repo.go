package customer

import (
	"context"

	"distrisur/internal/core/id"
)

// Repository defines persistence operations for customers.
type Repository interface {
	Create(ctx context.Context, c *Customer) error
	Update(ctx context.Context, c *Customer) error
	GetByID(ctx context.Context, customerID id.ID) (*Customer, error)
	GetByEmail(ctx context.Context, email string) (*Customer, error)

	// UpsertByEmail inserts the customer or, when the email already exists,
	// refreshes name/phone and returns the stored row.
	UpsertByEmail(ctx context.Context, c *Customer) (*Customer, error)
}
