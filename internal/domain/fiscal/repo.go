package fiscal

import (
	"context"

	"distrisur/internal/core/id"
)

// Repository defines persistence operations for invoices.
type Repository interface {
	Create(ctx context.Context, inv *Invoice) error

	GetByID(ctx context.Context, invoiceID id.ID) (*Invoice, error)

	// GetBySaleID returns the sale's invoice or a NotFound error.
	GetBySaleID(ctx context.Context, saleID id.ID) (*Invoice, error)

	UpdateStatus(ctx context.Context, invoiceID id.ID, status Status) error

	// Delete removes an invoice. Callers must ensure it carries no CAE.
	Delete(ctx context.Context, invoiceID id.ID) error
}

// Gateway is the outbound tax-authority port.
// CreateCreditNote may fail; the sale-void flow treats that as non-fatal.
type Gateway interface {
	CreateCreditNote(ctx context.Context, invoiceID id.ID, reason string) (*Invoice, error)
}
