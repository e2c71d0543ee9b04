// Package pricing provides the settlement engine's pricing collaborators:
// a price-list resolver backed by Postgres, a rule-based promotion engine
// and a coupon usage recorder.
package pricing

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"distrisur/internal/core/id"
	"distrisur/internal/core/types"
	"distrisur/internal/domain/sales"
	"distrisur/internal/infrastructure/storage/postgres"
)

const priceListItemsTable = "cat_price_list_items"

// PriceListResolver implements sales.PricingResolver against negotiated
// price lists. A customer without a price list, or a list without an entry
// for the product, resolves to nil and the engine falls through.
type PriceListResolver struct {
	txManager *postgres.TxManager
	builder   squirrel.StatementBuilderType
}

// NewPriceListResolver creates a Postgres-backed price resolver.
func NewPriceListResolver(txManager *postgres.TxManager) *PriceListResolver {
	return &PriceListResolver{
		txManager: txManager,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// GetPrice returns the customer's negotiated price for the product, or nil
// when no list entry applies.
func (r *PriceListResolver) GetPrice(ctx context.Context, productID id.ID, customerID *id.ID) (*types.Money, error) {
	if customerID == nil {
		return nil, nil
	}

	sql := `
		SELECT pli.price
		FROM cat_price_list_items pli
		JOIN cat_customers c ON c.price_list_id = pli.price_list_id
		WHERE c.id = $1 AND pli.product_id = $2
		LIMIT 1
	`

	var price types.Money
	querier := r.txManager.GetQuerier(ctx)
	err := querier.QueryRow(ctx, sql, *customerID, productID).Scan(&price)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("price list lookup: %w", err)
	}

	return &price, nil
}

// Ensure interface compliance.
var _ sales.PricingResolver = (*PriceListResolver)(nil)
