// Package fiscalgw provides the outbound tax-authority gateway.
//
// The real authority protocol (web services, certificates, request signing)
// is out of scope; this gateway records credit notes locally with a
// generated number so the void flow has a complete compensation trail.
package fiscalgw

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"distrisur/internal/core/id"
	"distrisur/internal/domain/fiscal"
	"distrisur/pkg/logger"
)

// StubGateway implements fiscal.Gateway without talking to the authority.
type StubGateway struct {
	invoices fiscal.Repository
	seq      atomic.Int64
}

// NewStubGateway creates a local-only gateway.
func NewStubGateway(invoices fiscal.Repository) *StubGateway {
	return &StubGateway{invoices: invoices}
}

// CreateCreditNote issues a credit note compensating the given invoice.
// The note is persisted as an authorized fiscal document of its own.
func (g *StubGateway) CreateCreditNote(ctx context.Context, invoiceID id.ID, reason string) (*fiscal.Invoice, error) {
	original, err := g.invoices.GetByID(ctx, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("load invoice: %w", err)
	}

	now := time.Now().UTC()
	cae := fmt.Sprintf("NC%d%06d", now.Year(), g.seq.Add(1))
	expiry := now.AddDate(0, 0, 10)

	note := &fiscal.Invoice{
		ID:        id.New(),
		SaleID:    original.SaleID,
		Number:    fmt.Sprintf("NC-%s", original.Number),
		Status:    fiscal.StatusAuthorized,
		CAE:       &cae,
		CAEExpiry: &expiry,
		Total:     original.Total.Neg(),
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := g.invoices.Create(ctx, note); err != nil {
		return nil, fmt.Errorf("persist credit note: %w", err)
	}

	logger.Info(ctx, "credit note issued",
		"invoice_id", invoiceID,
		"note_number", note.Number,
		"reason", reason,
	)
	return note, nil
}

// Ensure interface compliance.
var _ fiscal.Gateway = (*StubGateway)(nil)
