// Package customer provides the Customer catalog.
package customer

import (
	"context"
	"regexp"
	"strings"
	"time"

	"distrisur/internal/core/apperror"
	"distrisur/internal/core/id"
)

// Segment classifies a customer for price resolution.
type Segment string

const (
	SegmentRetail    Segment = "RETAIL"
	SegmentWholesale Segment = "WHOLESALE"
)

// Customer represents a buyer, either a walk-in POS account or an
// e-commerce shopper identified by email.
type Customer struct {
	ID      id.ID   `db:"id" json:"id"`
	Name    string  `db:"name" json:"name"`
	Email   string  `db:"email" json:"email,omitempty"`
	Phone   string  `db:"phone" json:"phone,omitempty"`
	Segment Segment `db:"segment" json:"segment"`

	// PriceListID links the customer to a negotiated price list, resolved
	// by the external pricing collaborator.
	PriceListID *id.ID `db:"price_list_id" json:"priceListId,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// NewCustomer creates a customer with required fields.
func NewCustomer(name string, segment Segment) *Customer {
	now := time.Now().UTC()
	return &Customer{
		ID:        id.New(),
		Name:      name,
		Segment:   segment,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// IsWholesale reports whether wholesale pricing applies.
func (c *Customer) IsWholesale() bool {
	return c.Segment == SegmentWholesale
}

var emailRe = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// Validate checks required fields.
func (c *Customer) Validate(ctx context.Context) error {
	if strings.TrimSpace(c.Name) == "" {
		return apperror.NewValidation("name is required").WithDetail("field", "name")
	}
	switch c.Segment {
	case SegmentRetail, SegmentWholesale:
	default:
		return apperror.NewValidation("invalid customer segment").
			WithDetail("field", "segment").
			WithDetail("value", string(c.Segment))
	}
	if c.Email != "" && !emailRe.MatchString(c.Email) {
		return apperror.NewValidation("invalid email").WithDetail("field", "email")
	}
	return nil
}
