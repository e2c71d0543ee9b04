// Package inventory_repo provides the PostgreSQL implementation of the
// batch-level inventory ledger.
package inventory_repo

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"

	"distrisur/internal/core/apperror"
	"distrisur/internal/core/id"
	"distrisur/internal/domain/inventory"
	"distrisur/internal/infrastructure/storage/postgres"
)

const (
	batchesTable      = "inv_batches"
	transactionsTable = "inv_transactions"
)

// fefoOrder is the allocation order: soonest expiration first, batches
// without expiration last, ties broken by receipt order.
const fefoOrder = "expiration_date ASC NULLS LAST, created_at ASC"

var batchColumns = []string{
	"id", "product_id", "warehouse_id", "batch_number", "location_zone",
	"quantity", "expiration_date", "created_at", "updated_at",
}

var transactionColumns = []string{
	"id", "product_id", "quantity", "type", "reference_id", "user_id", "created_at",
}

// LedgerRepo implements inventory.Repository.
type LedgerRepo struct {
	txManager *postgres.TxManager
	builder   squirrel.StatementBuilderType
}

// NewLedgerRepo creates a new inventory ledger repository.
func NewLedgerRepo(txManager *postgres.TxManager) *LedgerRepo {
	return &LedgerRepo{
		txManager: txManager,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// UpsertBatch increments the batch matching key, creating it when absent.
// The batch identity is (product, warehouse, batch number, zone); the
// expiration date is set on insert and never changed by later receipts.
func (r *LedgerRepo) UpsertBatch(ctx context.Context, key inventory.BatchKey, quantity int64, expiration *time.Time) (*inventory.Batch, error) {
	sql := `
		INSERT INTO inv_batches
			(id, product_id, warehouse_id, batch_number, location_zone,
			 quantity, expiration_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, now(), now())
		ON CONFLICT (product_id, warehouse_id, batch_number, location_zone)
		DO UPDATE SET
			quantity = inv_batches.quantity + EXCLUDED.quantity,
			updated_at = now()
		RETURNING id, product_id, warehouse_id, batch_number, location_zone,
			quantity, expiration_date, created_at, updated_at
	`

	var batch inventory.Batch
	querier := r.txManager.GetQuerier(ctx)
	err := pgxscan.Get(ctx, querier, &batch, sql,
		id.New(), key.ProductID, key.WarehouseID, key.BatchNumber, key.LocationZone,
		quantity, expiration)
	if err != nil {
		return nil, fmt.Errorf("upsert batch: %w", err)
	}

	return &batch, nil
}

// LockBatchesForAllocation returns non-empty batches for the product in
// FEFO order, locked FOR UPDATE for the duration of the transaction.
func (r *LedgerRepo) LockBatchesForAllocation(ctx context.Context, productID id.ID, filter inventory.BatchFilter) ([]*inventory.Batch, error) {
	q := r.builder.Select(batchColumns...).
		From(batchesTable).
		Where(squirrel.Eq{"product_id": productID}).
		Where(squirrel.Gt{"quantity": int64(0)})

	q = applyBatchFilter(q, filter)
	q = q.OrderBy(fefoOrder).Suffix("FOR UPDATE")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var batches []*inventory.Batch
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &batches, sql, args...); err != nil {
		return nil, fmt.Errorf("lock batches: %w", err)
	}

	return batches, nil
}

// LockExactBatch returns the single batch matching key FOR UPDATE.
func (r *LedgerRepo) LockExactBatch(ctx context.Context, key inventory.BatchKey) (*inventory.Batch, error) {
	q := r.builder.Select(batchColumns...).
		From(batchesTable).
		Where(squirrel.Eq{
			"product_id":    key.ProductID,
			"warehouse_id":  key.WarehouseID,
			"batch_number":  key.BatchNumber,
			"location_zone": key.LocationZone,
		}).
		Suffix("FOR UPDATE")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var batch inventory.Batch
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &batch, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("batch", key.BatchNumber)
		}
		return nil, fmt.Errorf("lock batch: %w", err)
	}

	return &batch, nil
}

// DeductBatch decrements a batch only when it still holds the quantity.
// Zero rows affected means a concurrent writer got there first.
func (r *LedgerRepo) DeductBatch(ctx context.Context, batchID id.ID, quantity int64) error {
	sql := `
		UPDATE inv_batches
		SET quantity = quantity - $2, updated_at = now()
		WHERE id = $1 AND quantity >= $2
	`

	querier := r.txManager.GetQuerier(ctx)
	tag, err := querier.Exec(ctx, sql, batchID, quantity)
	if err != nil {
		return fmt.Errorf("deduct batch: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewConflict("batch quantity changed concurrently").
			WithDetail("batch_id", batchID.String())
	}

	return nil
}

// TotalAvailable sums quantity across the product's batches.
func (r *LedgerRepo) TotalAvailable(ctx context.Context, productID id.ID, filter inventory.BatchFilter) (int64, error) {
	q := r.builder.Select("COALESCE(SUM(quantity), 0)").
		From(batchesTable).
		Where(squirrel.Eq{"product_id": productID})

	q = applyBatchFilter(q, filter)

	sql, args, err := q.ToSql()
	if err != nil {
		return 0, fmt.Errorf("build query: %w", err)
	}

	var total int64
	querier := r.txManager.GetQuerier(ctx)
	if err := querier.QueryRow(ctx, sql, args...).Scan(&total); err != nil {
		if err == pgx.ErrNoRows {
			return 0, nil
		}
		return 0, fmt.Errorf("sum quantity: %w", err)
	}

	return total, nil
}

// ListBatchesByProduct returns all of a product's batches, empty included.
func (r *LedgerRepo) ListBatchesByProduct(ctx context.Context, productID id.ID) ([]*inventory.Batch, error) {
	q := r.builder.Select(batchColumns...).
		From(batchesTable).
		Where(squirrel.Eq{"product_id": productID}).
		OrderBy(fefoOrder)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var batches []*inventory.Batch
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &batches, sql, args...); err != nil {
		return nil, fmt.Errorf("select batches: %w", err)
	}

	return batches, nil
}

// ListActiveBatches returns all non-empty batches for expiry reporting.
func (r *LedgerRepo) ListActiveBatches(ctx context.Context, warehouseID *id.ID) ([]*inventory.Batch, error) {
	q := r.builder.Select(batchColumns...).
		From(batchesTable).
		Where(squirrel.Gt{"quantity": int64(0)})

	if warehouseID != nil {
		q = q.Where(squirrel.Eq{"warehouse_id": *warehouseID})
	}

	q = q.OrderBy(fefoOrder)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var batches []*inventory.Batch
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &batches, sql, args...); err != nil {
		return nil, fmt.Errorf("select active batches: %w", err)
	}

	return batches, nil
}

// LowStockItems returns products whose summed batch quantity is below
// threshold, joined to the catalog for alerting identity.
func (r *LedgerRepo) LowStockItems(ctx context.Context, threshold int64) ([]inventory.LowStockItem, error) {
	sql := `
		SELECT p.id AS product_id, p.sku, p.name, COALESCE(SUM(b.quantity), 0) AS quantity
		FROM cat_products p
		LEFT JOIN inv_batches b ON b.product_id = p.id
		WHERE p.is_active
		GROUP BY p.id, p.sku, p.name
		HAVING COALESCE(SUM(b.quantity), 0) < $1
		ORDER BY quantity ASC, p.name ASC
	`

	var items []inventory.LowStockItem
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &items, sql, threshold); err != nil {
		return nil, fmt.Errorf("select low stock: %w", err)
	}

	return items, nil
}

// AppendTransactions appends ledger entries.
// Uses COPY when inside a transaction, which is the normal path.
func (r *LedgerRepo) AppendTransactions(ctx context.Context, txs []inventory.Transaction) error {
	if len(txs) == 0 {
		return nil
	}

	if tx := r.txManager.GetTx(ctx); tx != nil {
		inserter := postgres.NewBatchInserter(r.txManager)
		rows := make([][]any, 0, len(txs))
		for _, t := range txs {
			rows = append(rows, []any{
				t.ID, t.ProductID, t.Quantity, t.Type, t.ReferenceID, t.UserID, t.CreatedAt,
			})
		}
		if _, err := inserter.CopyFromSlice(ctx, transactionsTable, transactionColumns, rows); err != nil {
			return fmt.Errorf("copy transactions: %w", err)
		}
		return nil
	}

	q := r.builder.Insert(transactionsTable).Columns(transactionColumns...)
	for _, t := range txs {
		q = q.Values(t.ID, t.ProductID, t.Quantity, t.Type, t.ReferenceID, t.UserID, t.CreatedAt)
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert transactions: %w", err)
	}

	return nil
}

// ListTransactions returns ledger history for a product, newest first.
func (r *LedgerRepo) ListTransactions(ctx context.Context, productID id.ID, filter inventory.TransactionFilter) ([]inventory.Transaction, error) {
	q := r.builder.Select(transactionColumns...).
		From(transactionsTable).
		Where(squirrel.Eq{"product_id": productID})

	if filter.Type != nil {
		q = q.Where(squirrel.Eq{"type": *filter.Type})
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

	var entries []inventory.Transaction
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &entries, sql, args...); err != nil {
		return nil, fmt.Errorf("select transactions: %w", err)
	}

	return entries, nil
}

func applyBatchFilter(q squirrel.SelectBuilder, filter inventory.BatchFilter) squirrel.SelectBuilder {
	if filter.WarehouseID != nil {
		q = q.Where(squirrel.Eq{"warehouse_id": *filter.WarehouseID})
	}
	if filter.BatchNumber != nil {
		q = q.Where(squirrel.Eq{"batch_number": *filter.BatchNumber})
	}
	return q
}

// Ensure interface compliance.
var _ inventory.Repository = (*LedgerRepo)(nil)
