// Package sales_repo provides PostgreSQL implementations for the sale
// settlement and fiscal repositories.
package sales_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"distrisur/internal/core/apperror"
	"distrisur/internal/core/id"
	"distrisur/internal/domain/sales"
	"distrisur/internal/infrastructure/storage/postgres"
)

const (
	salesTable    = "doc_sales"
	itemsTable    = "doc_sale_items"
	paymentsTable = "doc_sale_payments"
)

var saleColumns = []string{
	"id", "code", "channel", "status",
	"total_amount", "discount_amount", "tax_amount", "shipping_fee",
	"delivery_method", "customer_id", "warehouse_id", "stock_committed",
	"created_at", "updated_at",
}

var itemColumns = []string{
	"id", "sale_id", "product_id", "quantity", "unit_price", "total_price",
}

var paymentColumns = []string{
	"id", "sale_id", "method", "amount",
}

// SaleRepo implements sales.Repository.
type SaleRepo struct {
	txManager *postgres.TxManager
	builder   squirrel.StatementBuilderType
}

// NewSaleRepo creates a new sale repository.
func NewSaleRepo(txManager *postgres.TxManager) *SaleRepo {
	return &SaleRepo{
		txManager: txManager,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// CreateSale persists the sale with its items and payments.
// Must be called inside a transaction so a later allocation failure
// unwinds all three inserts.
func (r *SaleRepo) CreateSale(ctx context.Context, sale *sales.Sale) error {
	querier := r.txManager.GetQuerier(ctx)

	q := r.builder.Insert(salesTable).
		Columns(saleColumns...).
		Values(sale.ID, sale.Code, sale.Channel, sale.Status,
			sale.TotalAmount, sale.DiscountAmount, sale.TaxAmount, sale.ShippingFee,
			sale.DeliveryMethod, sale.CustomerID, sale.WarehouseID, sale.StockCommitted,
			squirrel.Expr("now()"), squirrel.Expr("now()"))

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert sale: %w", err)
	}

	if len(sale.Items) > 0 {
		q := r.builder.Insert(itemsTable).Columns(itemColumns...)
		for _, item := range sale.Items {
			q = q.Values(item.ID, item.SaleID, item.ProductID,
				item.Quantity, item.UnitPrice, item.TotalPrice)
		}
		sql, args, err := q.ToSql()
		if err != nil {
			return fmt.Errorf("build items insert: %w", err)
		}
		if _, err := querier.Exec(ctx, sql, args...); err != nil {
			return fmt.Errorf("insert sale items: %w", err)
		}
	}

	if len(sale.Payments) > 0 {
		q := r.builder.Insert(paymentsTable).Columns(paymentColumns...)
		for _, p := range sale.Payments {
			q = q.Values(p.ID, p.SaleID, p.Method, p.Amount)
		}
		sql, args, err := q.ToSql()
		if err != nil {
			return fmt.Errorf("build payments insert: %w", err)
		}
		if _, err := querier.Exec(ctx, sql, args...); err != nil {
			return fmt.Errorf("insert sale payments: %w", err)
		}
	}

	return nil
}

// GetByID returns the sale with items and payments loaded.
func (r *SaleRepo) GetByID(ctx context.Context, saleID id.ID) (*sales.Sale, error) {
	q := r.builder.Select(saleColumns...).
		From(salesTable).
		Where(squirrel.Eq{"id": saleID}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var sale sales.Sale
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &sale, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("sale", saleID.String())
		}
		return nil, fmt.Errorf("get sale: %w", err)
	}

	if err := r.loadItems(ctx, &sale); err != nil {
		return nil, err
	}
	if err := r.loadPayments(ctx, &sale); err != nil {
		return nil, err
	}

	return &sale, nil
}

// List retrieves sales matching the filter, newest first.
// Items and payments are not loaded; use GetByID for the full document.
func (r *SaleRepo) List(ctx context.Context, filter sales.ListFilter) ([]*sales.Sale, error) {
	q := r.builder.Select(saleColumns...).
		From(salesTable)

	if filter.Channel != nil {
		q = q.Where(squirrel.Eq{"channel": *filter.Channel})
	}
	if filter.Status != nil {
		q = q.Where(squirrel.Eq{"status": *filter.Status})
	}
	if filter.FromDate != nil {
		q = q.Where(squirrel.GtOrEq{"created_at": *filter.FromDate})
	}
	if filter.ToDate != nil {
		q = q.Where(squirrel.LtOrEq{"created_at": *filter.ToDate})
	}

	q = q.OrderBy("created_at DESC")

	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		q = q.Offset(uint64(filter.Offset))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var result []*sales.Sale
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &result, sql, args...); err != nil {
		return nil, fmt.Errorf("list sales: %w", err)
	}

	return result, nil
}

// UpdateStatus transitions a sale's status.
func (r *SaleRepo) UpdateStatus(ctx context.Context, saleID id.ID, status sales.Status) error {
	q := r.builder.Update(salesTable).
		Set("status", status).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": saleID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	result, err := querier.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update sale status: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("sale", saleID.String())
	}

	return nil
}

// DeleteCascade hard-deletes payments, items and the sale row, in
// dependency order. Must be called inside a transaction.
func (r *SaleRepo) DeleteCascade(ctx context.Context, saleID id.ID) error {
	querier := r.txManager.GetQuerier(ctx)

	for _, table := range []string{paymentsTable, itemsTable} {
		q := r.builder.Delete(table).Where(squirrel.Eq{"sale_id": saleID})
		sql, args, err := q.ToSql()
		if err != nil {
			return fmt.Errorf("build delete: %w", err)
		}
		if _, err := querier.Exec(ctx, sql, args...); err != nil {
			return fmt.Errorf("delete from %s: %w", table, err)
		}
	}

	q := r.builder.Delete(salesTable).Where(squirrel.Eq{"id": saleID})
	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}

	result, err := querier.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("delete sale: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("sale", saleID.String())
	}

	return nil
}

// NextCode produces the next sale code from a per-channel sequence,
// e.g. POS-000042. Sequences must exist per prefix (seq_sales_pos,
// seq_sales_ec).
func (r *SaleRepo) NextCode(ctx context.Context, prefix string) (string, error) {
	var seq string
	switch prefix {
	case "POS":
		seq = "seq_sales_pos"
	case "EC":
		seq = "seq_sales_ec"
	default:
		return "", fmt.Errorf("unknown sale code prefix %q", prefix)
	}

	var n int64
	querier := r.txManager.GetQuerier(ctx)
	if err := querier.QueryRow(ctx, "SELECT nextval($1)", seq).Scan(&n); err != nil {
		return "", fmt.Errorf("next sale code: %w", err)
	}

	return fmt.Sprintf("%s-%06d", prefix, n), nil
}

func (r *SaleRepo) loadItems(ctx context.Context, sale *sales.Sale) error {
	q := r.builder.Select(itemColumns...).
		From(itemsTable).
		Where(squirrel.Eq{"sale_id": sale.ID}).
		OrderBy("id")

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &sale.Items, sql, args...); err != nil {
		return fmt.Errorf("load sale items: %w", err)
	}
	return nil
}

func (r *SaleRepo) loadPayments(ctx context.Context, sale *sales.Sale) error {
	q := r.builder.Select(paymentColumns...).
		From(paymentsTable).
		Where(squirrel.Eq{"sale_id": sale.ID}).
		OrderBy("id")

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &sale.Payments, sql, args...); err != nil {
		return fmt.Errorf("load sale payments: %w", err)
	}
	return nil
}

// Ensure interface compliance.
var _ sales.Repository = (*SaleRepo)(nil)
