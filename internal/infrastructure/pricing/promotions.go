package pricing

import (
	"context"

	"distrisur/internal/core/types"
	"distrisur/internal/domain/sales"
)

// PromotionRule is one configured discount rule. Rules apply per line and
// their discounts accumulate.
type PromotionRule struct {
	Name string

	// Category restricts the rule to lines of one category; empty matches all.
	Category string

	// MinQuantity is the line quantity needed for the rule to fire.
	MinQuantity int64

	// Percent is the discount over the line total, 0-100.
	Percent types.Money
}

// RuleEngine implements sales.PromotionEngine over a static rule set loaded
// at startup.
type RuleEngine struct {
	rules []PromotionRule
}

// NewRuleEngine creates a promotion engine with the given rules.
func NewRuleEngine(rules []PromotionRule) *RuleEngine {
	return &RuleEngine{rules: rules}
}

var hundred = types.MustMoney("100")

// ApplyPromotions computes the accumulated discount over the cart.
func (e *RuleEngine) ApplyPromotions(ctx context.Context, items []sales.PricedItem) (sales.PromotionResult, error) {
	result := sales.PromotionResult{Discount: types.Zero()}

	for _, rule := range e.rules {
		applied := false
		for _, item := range items {
			if rule.Category != "" && item.Category != rule.Category {
				continue
			}
			if item.Quantity < rule.MinQuantity {
				continue
			}

			lineTotal := item.UnitPrice.Mul(types.NewMoney(float64(item.Quantity)))
			result.Discount = result.Discount.Add(lineTotal.Mul(rule.Percent).Div(hundred))
			applied = true
		}
		if applied {
			result.Applied = append(result.Applied, rule.Name)
		}
	}

	return result, nil
}

// Ensure interface compliance.
var _ sales.PromotionEngine = (*RuleEngine)(nil)
