package sales

import (
	"context"

	"distrisur/internal/core/apperror"
	"distrisur/internal/core/id"
	"distrisur/internal/core/types"
	"distrisur/internal/domain/catalogs/customer"
	"distrisur/pkg/logger"
)

// CheckoutInput describes an e-commerce order request. The customer is
// identified by email and upserted on the fly.
type CheckoutInput struct {
	Email        string
	CustomerName string

	Items    []ItemInput
	Payments []PaymentInput

	ShippingFee    types.Money
	DeliveryMethod string
	CouponCode     string

	// Quote produces a PRESUPUESTO: the order is priced and persisted but
	// no stock is committed and no payment is expected.
	Quote bool
}

// CheckoutSummary is a priced preview of a cart, without persistence.
type CheckoutSummary struct {
	Items       []SaleItem  `json:"items"`
	Subtotal    types.Money `json:"subtotal"`
	Discount    types.Money `json:"discount"`
	ShippingFee types.Money `json:"shippingFee"`
	Total       types.Money `json:"total"`
}

// GenerateCheckout prices a cart without creating anything. Used by the
// storefront to show totals before the customer confirms.
func (s *Service) GenerateCheckout(ctx context.Context, email string, itemInputs []ItemInput, shippingFee types.Money) (*CheckoutSummary, error) {
	if err := validateItems(itemInputs); err != nil {
		return nil, err
	}

	cust, err := s.findCustomerByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	items, subtotal, err := s.priceItems(ctx, itemInputs, cust)
	if err != nil {
		return nil, err
	}

	discount, err := s.computeDiscount(ctx, items, types.Zero())
	if err != nil {
		return nil, err
	}

	total := subtotal.Sub(discount).Add(shippingFee)
	if total.IsNegative() {
		total = types.Zero()
	}

	return &CheckoutSummary{
		Items:       items,
		Subtotal:    subtotal,
		Discount:    discount,
		ShippingFee: shippingFee,
		Total:       total,
	}, nil
}

// CreateEcommerceSale settles an e-commerce order. Orders with payments
// covering the total complete immediately; orders without payments stay
// PENDING (no CASH default for the online channel). Quotes skip stock
// allocation entirely.
func (s *Service) CreateEcommerceSale(ctx context.Context, in CheckoutInput) (*Sale, error) {
	if err := validateItems(in.Items); err != nil {
		return nil, err
	}
	if in.Email == "" {
		return nil, apperror.NewValidation("email is required").WithDetail("field", "email")
	}
	if in.ShippingFee.IsNegative() {
		return nil, apperror.NewValidation("shipping fee must not be negative").WithDetail("field", "shippingFee")
	}

	cust, err := s.customers.EnsureByEmail(ctx, in.Email, in.CustomerName)
	if err != nil {
		return nil, err
	}

	items, subtotal, err := s.priceItems(ctx, in.Items, cust)
	if err != nil {
		return nil, err
	}

	discount, err := s.computeDiscount(ctx, items, types.Zero())
	if err != nil {
		return nil, err
	}

	total := subtotal.Sub(discount)
	if total.IsNegative() {
		total = types.Zero()
	}
	total = total.Add(in.ShippingFee)

	status := StatusPending
	var payments []Payment
	if !in.Quote && len(in.Payments) > 0 {
		payments, err = resolvePayments(in.Payments, total)
		if err != nil {
			return nil, err
		}
		status = StatusCompleted
	}

	sale := &Sale{
		ID:             id.New(),
		Channel:        ChannelEcommerce,
		Status:         status,
		TotalAmount:    total,
		DiscountAmount: discount,
		TaxAmount:      types.Zero(),
		ShippingFee:    in.ShippingFee,
		DeliveryMethod: in.DeliveryMethod,
		CustomerID:     &cust.ID,
		Items:          items,
		Payments:       payments,
		StockCommitted: !in.Quote,
	}

	allocations, err := s.settle(ctx, sale, nil, "EC", !in.Quote)
	if err != nil {
		return nil, err
	}

	s.recordCoupon(ctx, in.CouponCode, sale.ID)

	for _, alloc := range allocations {
		s.ledger.EmitLowStockAlert(ctx, alloc)
	}

	logger.Info(ctx, "ecommerce order created",
		"sale_id", sale.ID,
		"code", sale.Code,
		"status", sale.Status,
		"quote", in.Quote,
		"total", sale.TotalAmount,
	)
	return sale, nil
}

// recordCoupon registers coupon usage after commit. Best-effort: a failure
// here never unwinds the order.
func (s *Service) recordCoupon(ctx context.Context, code string, saleID id.ID) {
	if code == "" || s.coupons == nil {
		return
	}
	if err := s.coupons.RecordUsage(ctx, code, saleID); err != nil {
		logger.Warn(ctx, "coupon usage recording failed",
			"coupon", code,
			"sale_id", saleID,
			"error", err,
		)
	}
}

func (s *Service) findCustomerByEmail(ctx context.Context, email string) (*customer.Customer, error) {
	if email == "" {
		return nil, nil
	}
	cust, err := s.customers.GetByEmail(ctx, email)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return cust, nil
}
