package inventory

import (
	"context"
	"time"

	"distrisur/internal/core/id"
)

// BatchFilter narrows allocation and availability queries.
type BatchFilter struct {
	WarehouseID *id.ID
	BatchNumber *string
}

// TransactionFilter narrows ledger history queries.
type TransactionFilter struct {
	Type     *TransactionType
	FromDate *time.Time
	ToDate   *time.Time
	Limit    int
	Offset   int
}

// Repository defines persistence operations for batches and the ledger.
//
// Mutating methods must be called inside a transaction (the TxManager
// carries it in context). LockBatchesForAllocation takes row locks for the
// duration of the enclosing transaction, and DeductBatch is a conditional
// decrement, so concurrent allocators cannot over-deduct.
type Repository interface {
	// UpsertBatch increments the batch matching key, creating it with the
	// given expiration when absent. Returns the stored row.
	UpsertBatch(ctx context.Context, key BatchKey, quantity int64, expiration *time.Time) (*Batch, error)

	// LockBatchesForAllocation returns non-empty batches for the product in
	// FEFO order (expiration ascending, nulls last, then created_at), locked
	// FOR UPDATE.
	LockBatchesForAllocation(ctx context.Context, productID id.ID, filter BatchFilter) ([]*Batch, error)

	// LockExactBatch returns the single batch matching key FOR UPDATE,
	// or a NotFound error.
	LockExactBatch(ctx context.Context, key BatchKey) (*Batch, error)

	// DeductBatch atomically decrements a batch, failing when the batch no
	// longer holds the quantity (quantity = quantity - n WHERE quantity >= n,
	// verified via rows affected).
	DeductBatch(ctx context.Context, batchID id.ID, quantity int64) error

	// TotalAvailable sums quantity across the product's batches.
	TotalAvailable(ctx context.Context, productID id.ID, filter BatchFilter) (int64, error)

	// ListBatchesByProduct returns all batches for a product, empty ones
	// included (audit/history view).
	ListBatchesByProduct(ctx context.Context, productID id.ID) ([]*Batch, error)

	// ListActiveBatches returns all non-empty batches, optionally scoped to
	// one warehouse, for expiry reporting.
	ListActiveBatches(ctx context.Context, warehouseID *id.ID) ([]*Batch, error)

	// LowStockItems returns products whose summed batch quantity is below
	// threshold, with catalog identity for alerting.
	LowStockItems(ctx context.Context, threshold int64) ([]LowStockItem, error)

	// AppendTransactions appends ledger entries. Entries are never updated
	// or deleted.
	AppendTransactions(ctx context.Context, txs []Transaction) error

	// ListTransactions returns ledger history for a product, newest first.
	ListTransactions(ctx context.Context, productID id.ID, filter TransactionFilter) ([]Transaction, error)
}
