package inventory

import (
	"context"
	"fmt"
	"time"

	"distrisur/internal/core/apperror"
	appctx "distrisur/internal/core/context"
	"distrisur/internal/core/id"
	"distrisur/internal/core/tx"
	"distrisur/internal/domain/catalogs/product"
	"distrisur/internal/domain/catalogs/warehouse"
	"distrisur/pkg/logger"
)

// Notifier is the outbound alerting port. Calls are fire-and-forget:
// the ledger never fails or rolls back because an alert could not be sent.
type Notifier interface {
	SendLowStockAlert(ctx context.Context, items []LowStockItem) error
	SendAlert(ctx context.Context, message string) error
}

// Service owns all quantity-mutating operations on batches.
type Service struct {
	repo       Repository
	products   product.Repository
	warehouses *warehouse.Service
	txManager  tx.Manager
	notifier   Notifier
	threshold  int64
}

// NewService creates the inventory ledger service.
// threshold <= 0 falls back to DefaultLowStockThreshold.
func NewService(
	repo Repository,
	products product.Repository,
	warehouses *warehouse.Service,
	txManager tx.Manager,
	notifier Notifier,
	threshold int64,
) *Service {
	if threshold <= 0 {
		threshold = DefaultLowStockThreshold
	}
	return &Service{
		repo:       repo,
		products:   products,
		warehouses: warehouses,
		txManager:  txManager,
		notifier:   notifier,
		threshold:  threshold,
	}
}

// --- Receive ---

// ReceiveInput describes an inbound goods receipt.
type ReceiveInput struct {
	ProductID      id.ID
	WarehouseID    *id.ID // default depot when nil
	BatchNumber    string
	LocationZone   string
	Quantity       int64
	ExpirationDate *time.Time
}

// Receive upserts the matching batch and appends a PURCHASE_RECEIPT entry.
// Inbound only, so no availability check is needed.
func (s *Service) Receive(ctx context.Context, in ReceiveInput) (*Batch, error) {
	if in.Quantity <= 0 {
		return nil, apperror.NewValidation("quantity must be positive").WithDetail("field", "quantity")
	}
	if in.BatchNumber == "" {
		return nil, apperror.NewValidation("batch number is required").WithDetail("field", "batchNumber")
	}
	if in.LocationZone == "" {
		return nil, apperror.NewValidation("location zone is required").WithDetail("field", "locationZone")
	}

	if _, err := s.products.GetByID(ctx, in.ProductID); err != nil {
		return nil, err
	}

	var batch *Batch
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		warehouseID, err := s.resolveWarehouse(ctx, in.WarehouseID)
		if err != nil {
			return err
		}

		key := BatchKey{
			ProductID:    in.ProductID,
			WarehouseID:  warehouseID,
			BatchNumber:  in.BatchNumber,
			LocationZone: in.LocationZone,
		}

		batch, err = s.repo.UpsertBatch(ctx, key, in.Quantity, in.ExpirationDate)
		if err != nil {
			return fmt.Errorf("upsert batch: %w", err)
		}

		entry := NewTransaction(in.ProductID, in.Quantity, TypePurchaseReceipt,
			fmt.Sprintf("batch %s @ %s", in.BatchNumber, in.LocationZone), appctx.UserID(ctx))
		return s.repo.AppendTransactions(ctx, []Transaction{entry})
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "stock received",
		"product_id", in.ProductID,
		"batch", in.BatchNumber,
		"quantity", in.Quantity,
	)
	return batch, nil
}

// --- Allocate ---

// Allocate deducts quantity from the product's batches in FEFO order:
// earliest expiration first, null expirations last, creation time as the
// tie-break. The availability check and the per-batch decrements run inside
// one transaction over row-locked batches, so concurrent allocators cannot
// both pass the check on a stale total.
//
// One ledger entry of txType is written per batch touched, carrying the
// per-batch amount. On any failure nothing is committed.
func (s *Service) Allocate(ctx context.Context, productID id.ID, quantity int64, filter BatchFilter, txType TransactionType, referenceID string) (*AllocationResult, error) {
	if quantity <= 0 {
		return nil, apperror.NewValidation("quantity must be positive").WithDetail("field", "quantity")
	}
	if txType != TypeSaleDeduction && txType != TypeAdjustment {
		return nil, apperror.NewValidation("allocation supports SALE_DEDUCTION and ADJUSTMENT entries only").
			WithDetail("type", string(txType))
	}

	var result *AllocationResult
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		result, err = s.allocateLocked(ctx, productID, quantity, filter, txType, referenceID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// allocateLocked performs the check-then-deduct walk. Must run inside a
// transaction: the row locks taken here are what serializes concurrent
// allocations of the same product.
func (s *Service) allocateLocked(ctx context.Context, productID id.ID, quantity int64, filter BatchFilter, txType TransactionType, referenceID string) (*AllocationResult, error) {
	batches, err := s.repo.LockBatchesForAllocation(ctx, productID, filter)
	if err != nil {
		return nil, fmt.Errorf("lock batches: %w", err)
	}

	var available int64
	for _, b := range batches {
		available += b.Quantity
	}

	if available < quantity {
		return nil, apperror.NewInsufficientStock(productID.String(), quantity, available)
	}

	result := &AllocationResult{
		ProductID:   productID,
		Requested:   quantity,
		TotalBefore: available,
		TotalAfter:  available - quantity,
	}

	userID := appctx.UserID(ctx)
	entries := make([]Transaction, 0, len(batches))

	remaining := quantity
	for _, b := range batches {
		if remaining == 0 {
			break
		}

		take := b.Quantity
		if take > remaining {
			take = remaining
		}

		if err := s.repo.DeductBatch(ctx, b.ID, take); err != nil {
			return nil, fmt.Errorf("deduct batch %s: %w", b.ID, err)
		}

		entry := NewTransaction(productID, -take, txType, referenceID, userID)
		entries = append(entries, entry)

		result.Deductions = append(result.Deductions, Deduction{
			BatchID:      b.ID,
			BatchNumber:  b.BatchNumber,
			LocationZone: b.LocationZone,
			Quantity:     take,
		})
		result.EntryIDs = append(result.EntryIDs, entry.ID)

		remaining -= take
	}

	if err := s.repo.AppendTransactions(ctx, entries); err != nil {
		return nil, fmt.Errorf("append ledger entries: %w", err)
	}

	return result, nil
}

// --- Restore ---

// Restore adds quantity back into the RETURN/RETURNS pseudo-batch and logs
// a RETURN entry. Returned units deliberately lose their original batch and
// expiration attribution; the sale-time ledger entries keep the breakdown
// for reconciliation.
func (s *Service) Restore(ctx context.Context, productID id.ID, warehouseID *id.ID, quantity int64, referenceID string) (*Batch, error) {
	if quantity <= 0 {
		return nil, apperror.NewValidation("quantity must be positive").WithDetail("field", "quantity")
	}

	var batch *Batch
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		whID, err := s.resolveWarehouse(ctx, warehouseID)
		if err != nil {
			return err
		}

		key := BatchKey{
			ProductID:    productID,
			WarehouseID:  whID,
			BatchNumber:  ReturnBatchNumber,
			LocationZone: ReturnLocationZone,
		}

		batch, err = s.repo.UpsertBatch(ctx, key, quantity, nil)
		if err != nil {
			return fmt.Errorf("upsert return batch: %w", err)
		}

		entry := NewTransaction(productID, quantity, TypeReturn, referenceID, appctx.UserID(ctx))
		return s.repo.AppendTransactions(ctx, []Transaction{entry})
	})
	if err != nil {
		return nil, err
	}

	return batch, nil
}

// --- Adjust ---

// AdjustInput describes a manual stock correction.
type AdjustInput struct {
	ProductID   id.ID
	Delta       int64 // signed; negative removes stock
	Reason      AdjustmentReason
	Notes       string
	WarehouseID *id.ID
	BatchNumber *string
}

// AdjustResult reports the applied correction.
type AdjustResult struct {
	TransactionID id.ID `json:"transactionId"`
	Adjustment    int64 `json:"adjustment"`
	CurrentStock  int64 `json:"currentStock"`
}

// Adjust applies a signed stock correction. Negative deltas follow the same
// FEFO walk as Allocate, scoped by the optional warehouse/batch filters.
// Positive deltas land in the AJUSTE pseudo-batch rather than any real lot.
func (s *Service) Adjust(ctx context.Context, in AdjustInput) (*AdjustResult, error) {
	if in.Delta == 0 {
		return nil, apperror.NewValidation("delta must not be zero").WithDetail("field", "delta")
	}
	if !in.Reason.Valid() {
		return nil, apperror.NewValidation("invalid adjustment reason").
			WithDetail("field", "reason").
			WithDetail("value", string(in.Reason))
	}

	referenceID := string(in.Reason)
	if in.Notes != "" {
		referenceID = fmt.Sprintf("%s: %s", in.Reason, in.Notes)
	}

	var result *AdjustResult
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if in.Delta < 0 {
			filter := BatchFilter{WarehouseID: in.WarehouseID, BatchNumber: in.BatchNumber}
			alloc, err := s.allocateLocked(ctx, in.ProductID, -in.Delta, filter, TypeAdjustment, referenceID)
			if err != nil {
				return err
			}
			result = &AdjustResult{
				TransactionID: alloc.EntryIDs[0],
				Adjustment:    in.Delta,
				CurrentStock:  alloc.TotalAfter,
			}
			return nil
		}

		warehouseID, err := s.resolveWarehouse(ctx, in.WarehouseID)
		if err != nil {
			return err
		}

		batchNumber := AdjustLocationZone
		if in.BatchNumber != nil && *in.BatchNumber != "" {
			batchNumber = *in.BatchNumber
		}

		key := BatchKey{
			ProductID:    in.ProductID,
			WarehouseID:  warehouseID,
			BatchNumber:  batchNumber,
			LocationZone: AdjustLocationZone,
		}
		if _, err := s.repo.UpsertBatch(ctx, key, in.Delta, nil); err != nil {
			return fmt.Errorf("upsert adjustment batch: %w", err)
		}

		entry := NewTransaction(in.ProductID, in.Delta, TypeAdjustment, referenceID, appctx.UserID(ctx))
		if err := s.repo.AppendTransactions(ctx, []Transaction{entry}); err != nil {
			return err
		}

		total, err := s.repo.TotalAvailable(ctx, in.ProductID, BatchFilter{})
		if err != nil {
			return fmt.Errorf("total available: %w", err)
		}

		result = &AdjustResult{
			TransactionID: entry.ID,
			Adjustment:    in.Delta,
			CurrentStock:  total,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "stock adjusted",
		"product_id", in.ProductID,
		"delta", in.Delta,
		"reason", in.Reason,
		"current_stock", result.CurrentStock,
	)
	return result, nil
}

// --- Transfer ---

// TransferInput describes a movement between location zones.
type TransferInput struct {
	ProductID       id.ID
	Quantity        int64
	BatchNumber     string
	FromZone        string
	ToZone          string
	FromWarehouseID *id.ID
	ToWarehouseID   *id.ID
}

// Transfer moves quantity from an exact source batch to the destination
// location, preserving the source expiration. No FEFO search happens here:
// the caller names the physical batch being moved, and a missing or short
// source batch is an insufficient-stock failure.
func (s *Service) Transfer(ctx context.Context, in TransferInput) error {
	if in.Quantity <= 0 {
		return apperror.NewValidation("quantity must be positive").WithDetail("field", "quantity")
	}
	if in.BatchNumber == "" {
		return apperror.NewValidation("batch number is required").WithDetail("field", "batchNumber")
	}
	if in.FromZone == in.ToZone && equalIDPtr(in.FromWarehouseID, in.ToWarehouseID) {
		return apperror.NewValidation("source and destination are the same location")
	}

	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		fromWh, err := s.resolveWarehouse(ctx, in.FromWarehouseID)
		if err != nil {
			return err
		}
		toWh := fromWh
		if in.ToWarehouseID != nil {
			toWh = *in.ToWarehouseID
		}

		sourceKey := BatchKey{
			ProductID:    in.ProductID,
			WarehouseID:  fromWh,
			BatchNumber:  in.BatchNumber,
			LocationZone: in.FromZone,
		}

		source, err := s.repo.LockExactBatch(ctx, sourceKey)
		if err != nil {
			if apperror.IsNotFound(err) {
				return apperror.NewInsufficientStock(in.ProductID.String(), in.Quantity, 0).
					WithDetail("location_zone", in.FromZone)
			}
			return err
		}

		if source.Quantity < in.Quantity {
			return apperror.NewInsufficientStock(in.ProductID.String(), in.Quantity, source.Quantity).
				WithDetail("location_zone", in.FromZone)
		}

		if err := s.repo.DeductBatch(ctx, source.ID, in.Quantity); err != nil {
			return fmt.Errorf("deduct source batch: %w", err)
		}

		destKey := BatchKey{
			ProductID:    in.ProductID,
			WarehouseID:  toWh,
			BatchNumber:  in.BatchNumber,
			LocationZone: in.ToZone,
		}
		if _, err := s.repo.UpsertBatch(ctx, destKey, in.Quantity, source.ExpirationDate); err != nil {
			return fmt.Errorf("upsert destination batch: %w", err)
		}

		entry := NewTransaction(in.ProductID, in.Quantity, TypeTransfer,
			fmt.Sprintf("%s -> %s", in.FromZone, in.ToZone), appctx.UserID(ctx))
		return s.repo.AppendTransactions(ctx, []Transaction{entry})
	})
}

// --- Low-stock alerting ---

// EmitLowStockAlert dispatches a low-stock notification when the allocation
// crossed the threshold. Call after the enclosing transaction committed.
// Dispatch is fire-and-forget; failures are logged and swallowed.
func (s *Service) EmitLowStockAlert(ctx context.Context, res *AllocationResult) {
	if res == nil || !res.CrossedThreshold(s.threshold) {
		return
	}
	if s.notifier == nil {
		return
	}

	p, err := s.products.GetByID(ctx, res.ProductID)
	if err != nil {
		logger.Warn(ctx, "low stock alert skipped, product lookup failed",
			"product_id", res.ProductID, "error", err)
		return
	}

	item := LowStockItem{
		ProductID: p.ID,
		SKU:       p.SKU,
		Name:      p.Name,
		Quantity:  res.TotalAfter,
	}

	// Detached from the request: the alert must survive request completion
	// and must never block it.
	alertCtx := context.WithoutCancel(ctx)
	go func() {
		if err := s.notifier.SendLowStockAlert(alertCtx, []LowStockItem{item}); err != nil {
			logger.Error(alertCtx, "low stock alert dispatch failed",
				"product_id", item.ProductID, "error", err)
		}
	}()
}

// LowStock returns products whose total stock is under threshold
// (default when threshold <= 0).
func (s *Service) LowStock(ctx context.Context, threshold int64) ([]LowStockItem, error) {
	if threshold <= 0 {
		threshold = s.threshold
	}
	return s.repo.LowStockItems(ctx, threshold)
}

// --- Expiration queries ---

// ExpirationReport buckets non-empty batches by expiry proximity.
func (s *Service) ExpirationReport(ctx context.Context, warehouseID *id.ID) (ExpirationReport, error) {
	batches, err := s.repo.ListActiveBatches(ctx, warehouseID)
	if err != nil {
		return ExpirationReport{}, err
	}
	return BuildExpirationReport(batches, time.Now().UTC()), nil
}

// ExpiringItems returns non-empty batches expiring within the given window.
func (s *Service) ExpiringItems(ctx context.Context, days int) ([]ExpirationItem, error) {
	if days <= 0 {
		days = 30
	}

	batches, err := s.repo.ListActiveBatches(ctx, nil)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	deadline := now.Add(time.Duration(days) * 24 * time.Hour)

	var items []ExpirationItem
	for _, b := range batches {
		if b.ExpirationDate == nil || b.ExpirationDate.Before(now) || b.ExpirationDate.After(deadline) {
			continue
		}
		items = append(items, newExpirationItem(b, now))
	}
	return items, nil
}

// ExpiredItems returns non-empty batches already past expiration.
func (s *Service) ExpiredItems(ctx context.Context) ([]ExpirationItem, error) {
	batches, err := s.repo.ListActiveBatches(ctx, nil)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	var items []ExpirationItem
	for _, b := range batches {
		if !b.IsExpired(now) {
			continue
		}
		items = append(items, newExpirationItem(b, now))
	}
	return items, nil
}

// IsProductFullyExpired reports whether every remaining unit of the product
// sits in an expired batch. A product with no stock at all is not considered
// expired (allocation fails on availability instead).
func (s *Service) IsProductFullyExpired(ctx context.Context, productID id.ID) (bool, error) {
	batches, err := s.repo.ListBatchesByProduct(ctx, productID)
	if err != nil {
		return false, err
	}

	now := time.Now().UTC()
	hasStock := false
	for _, b := range batches {
		if b.Quantity <= 0 {
			continue
		}
		hasStock = true
		if !b.IsExpired(now) {
			return false, nil
		}
	}
	return hasStock, nil
}

// --- Read-only views ---

// ProductStock is the per-product snapshot: batches plus total.
type ProductStock struct {
	ProductID id.ID    `json:"productId"`
	Total     int64    `json:"total"`
	Batches   []*Batch `json:"batches"`
}

// Stock returns the batch-level snapshot for one product.
func (s *Service) Stock(ctx context.Context, productID id.ID) (*ProductStock, error) {
	batches, err := s.repo.ListBatchesByProduct(ctx, productID)
	if err != nil {
		return nil, err
	}

	snapshot := &ProductStock{ProductID: productID, Batches: batches}
	for _, b := range batches {
		snapshot.Total += b.Quantity
	}
	return snapshot, nil
}

// History returns the product's ledger entries, newest first.
func (s *Service) History(ctx context.Context, productID id.ID, filter TransactionFilter) ([]Transaction, error) {
	return s.repo.ListTransactions(ctx, productID, filter)
}

// --- helpers ---

func (s *Service) resolveWarehouse(ctx context.Context, warehouseID *id.ID) (id.ID, error) {
	if warehouseID != nil && !id.IsNil(*warehouseID) {
		return *warehouseID, nil
	}
	wh, err := s.warehouses.EnsureDefault(ctx)
	if err != nil {
		return id.Nil(), err
	}
	return wh.ID, nil
}

func equalIDPtr(a, b *id.ID) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
