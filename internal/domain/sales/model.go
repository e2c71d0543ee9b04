// Package sales provides the sale settlement engine: price resolution,
// payment validation, atomic persistence of a sale plus stock allocation,
// and void/refund compensation.
package sales

import (
	"time"

	"distrisur/internal/core/apperror"
	"distrisur/internal/core/id"
	"distrisur/internal/core/types"
)

// Channel identifies where a sale originated.
type Channel string

const (
	ChannelPOS       Channel = "POS"
	ChannelEcommerce Channel = "ECOMMERCE"
)

// Status is the sale state machine:
// PENDING -> COMPLETED -> CANCELLED, and PENDING -> CANCELLED for unpaid
// e-commerce orders. CANCELLED and REFUNDED are terminal.
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusCompleted Status = "COMPLETED"
	StatusCancelled Status = "CANCELLED"
	StatusRefunded  Status = "REFUNDED"
)

// PaymentMethod is how a payment was declared. Payments are declarative
// records; no gateway settlement happens here.
type PaymentMethod string

const (
	PaymentCash         PaymentMethod = "CASH"
	PaymentCard         PaymentMethod = "CARD"
	PaymentTransfer     PaymentMethod = "TRANSFER"
	PaymentMercadoPago  PaymentMethod = "MERCADO_PAGO"
	PaymentCheckingAcct PaymentMethod = "CUENTA_CORRIENTE"
)

// Sale is a settled transaction. Items and payments are created together
// with the sale and are immutable after commit; only status and invoice
// linkage change afterwards.
type Sale struct {
	ID      id.ID   `db:"id" json:"id"`
	Code    string  `db:"code" json:"code"`
	Channel Channel `db:"channel" json:"channel"`
	Status  Status  `db:"status" json:"status"`

	TotalAmount    types.Money `db:"total_amount" json:"totalAmount"`
	DiscountAmount types.Money `db:"discount_amount" json:"discountAmount"`
	TaxAmount      types.Money `db:"tax_amount" json:"taxAmount"`
	ShippingFee    types.Money `db:"shipping_fee" json:"shippingFee"`

	DeliveryMethod string `db:"delivery_method" json:"deliveryMethod,omitempty"`

	CustomerID  *id.ID `db:"customer_id" json:"customerId,omitempty"`
	WarehouseID id.ID  `db:"warehouse_id" json:"warehouseId"`

	// StockCommitted reports whether stock was allocated at creation.
	// Quotes never commit stock, so voiding one must not restore any.
	StockCommitted bool `db:"stock_committed" json:"stockCommitted"`

	Items    []SaleItem `db:"-" json:"items"`
	Payments []Payment  `db:"-" json:"payments"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// SaleItem is one line of a sale.
type SaleItem struct {
	ID         id.ID       `db:"id" json:"id"`
	SaleID     id.ID       `db:"sale_id" json:"saleId"`
	ProductID  id.ID       `db:"product_id" json:"productId"`
	Quantity   int64       `db:"quantity" json:"quantity"`
	UnitPrice  types.Money `db:"unit_price" json:"unitPrice"`
	TotalPrice types.Money `db:"total_price" json:"totalPrice"`
}

// Payment is a declarative payment record attached to a sale.
type Payment struct {
	ID     id.ID         `db:"id" json:"id"`
	SaleID id.ID         `db:"sale_id" json:"saleId"`
	Method PaymentMethod `db:"method" json:"method"`
	Amount types.Money   `db:"amount" json:"amount"`
}

// IsTerminal reports whether no further mutation is permitted.
func (s Status) IsTerminal() bool {
	return s == StatusCancelled || s == StatusRefunded
}

// CanVoid returns an error when the sale is already in a terminal state.
// Re-entering void on a terminal sale is an error, not a no-op.
func (s *Sale) CanVoid() error {
	if s.Status.IsTerminal() {
		return apperror.NewSaleAlreadyVoided(s.ID.String())
	}
	return nil
}

// PaidTotal sums the declared payments.
func (s *Sale) PaidTotal() types.Money {
	total := types.Zero()
	for _, p := range s.Payments {
		total = total.Add(p.Amount)
	}
	return total
}
