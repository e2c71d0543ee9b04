// Package fiscal provides electronic invoice records and the tax-authority
// gateway port. The wire protocol of the tax authority itself is out of
// scope; the core only tracks invoice state and authorization codes.
package fiscal

import (
	"time"

	"distrisur/internal/core/id"
	"distrisur/internal/core/types"
)

// Status is the lifecycle of an invoice.
type Status string

const (
	StatusDraft      Status = "DRAFT"
	StatusPending    Status = "PENDING"
	StatusAuthorized Status = "AUTHORIZED"
	StatusCancelled  Status = "CANCELLED"
)

// Invoice is a fiscal document linked to a sale.
type Invoice struct {
	ID     id.ID  `db:"id" json:"id"`
	SaleID id.ID  `db:"sale_id" json:"saleId"`
	Number string `db:"number" json:"number"`
	Status Status `db:"status" json:"status"`

	// CAE is the tax-authority authorization code. Once present the
	// invoice is immutable: corrections require a credit note.
	CAE       *string     `db:"cae" json:"cae,omitempty"`
	CAEExpiry *time.Time  `db:"cae_expiry" json:"caeExpiry,omitempty"`
	Total     types.Money `db:"total" json:"total"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// HasCAE reports whether the invoice carries an authorization code.
func (i *Invoice) HasCAE() bool {
	return i.CAE != nil && *i.CAE != ""
}

// IsAuthorized reports whether the tax authority accepted the invoice.
func (i *Invoice) IsAuthorized() bool {
	return i.Status == StatusAuthorized
}
