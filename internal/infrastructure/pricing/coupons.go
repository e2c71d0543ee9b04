package pricing

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"

	"distrisur/internal/core/id"
	"distrisur/internal/domain/sales"
	"distrisur/internal/infrastructure/storage/postgres"
)

const couponUsagesTable = "doc_coupon_usages"

// CouponRecorder implements sales.CouponRecorder. Usage rows are an audit
// trail; the checkout flow treats recording failures as non-fatal.
type CouponRecorder struct {
	txManager *postgres.TxManager
	builder   squirrel.StatementBuilderType
}

// NewCouponRecorder creates a Postgres-backed coupon recorder.
func NewCouponRecorder(txManager *postgres.TxManager) *CouponRecorder {
	return &CouponRecorder{
		txManager: txManager,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// RecordUsage registers one coupon redemption for an order.
func (r *CouponRecorder) RecordUsage(ctx context.Context, code string, saleID id.ID) error {
	q := r.builder.Insert(couponUsagesTable).
		Columns("id", "code", "sale_id", "used_at").
		Values(id.New(), code, saleID, squirrel.Expr("now()"))

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("record coupon usage: %w", err)
	}

	return nil
}

// Ensure interface compliance.
var _ sales.CouponRecorder = (*CouponRecorder)(nil)
