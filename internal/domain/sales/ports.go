package sales

import (
	"context"

	"distrisur/internal/core/id"
	"distrisur/internal/core/types"
)

// PricedItem is one sale line as seen by the promotion engine.
type PricedItem struct {
	ProductID id.ID       `json:"productId"`
	Quantity  int64       `json:"quantity"`
	UnitPrice types.Money `json:"unitPrice"`
	Category  string      `json:"category,omitempty"`
}

// PromotionResult is the outcome of promotion calculation.
type PromotionResult struct {
	Discount types.Money `json:"discount"`
	Applied  []string    `json:"applied,omitempty"`
}

// PricingResolver looks up customer-specific list prices.
// A nil price means no list entry; the engine falls through to segment
// and base pricing.
type PricingResolver interface {
	GetPrice(ctx context.Context, productID id.ID, customerID *id.ID) (*types.Money, error)
}

// PromotionEngine computes percentage/BOGO discounts over the cart.
// Called before the settlement transaction opens (pure read).
type PromotionEngine interface {
	ApplyPromotions(ctx context.Context, items []PricedItem) (PromotionResult, error)
}

// CouponRecorder registers coupon usage for an order. Best-effort:
// failures are logged and never abort the sale.
type CouponRecorder interface {
	RecordUsage(ctx context.Context, code string, saleID id.ID) error
}
