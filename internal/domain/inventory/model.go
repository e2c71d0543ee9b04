// Package inventory provides the batch-level inventory ledger.
//
// Stock is kept per batch: one product, one warehouse, one batch number,
// one location zone. Every quantity change appends an immutable ledger
// transaction, one per physical movement, so the full history of a batch
// is reconstructible.
package inventory

import (
	"time"

	"distrisur/internal/core/id"
)

// TransactionType is the closed set of ledger movement kinds.
// Every consumer must handle all variants.
type TransactionType string

const (
	TypePurchaseReceipt TransactionType = "PURCHASE_RECEIPT"
	TypeSaleDeduction   TransactionType = "SALE_DEDUCTION"
	TypeAdjustment      TransactionType = "ADJUSTMENT"
	TypeTransfer        TransactionType = "TRANSFER"
	TypeReturn          TransactionType = "RETURN"
)

// Valid reports whether t is a known transaction type.
func (t TransactionType) Valid() bool {
	switch t {
	case TypePurchaseReceipt, TypeSaleDeduction, TypeAdjustment, TypeTransfer, TypeReturn:
		return true
	}
	return false
}

// AdjustmentReason is the closed set of manual adjustment causes.
type AdjustmentReason string

const (
	ReasonRotura     AdjustmentReason = "ROTURA"     // breakage
	ReasonMerma      AdjustmentReason = "MERMA"      // shrinkage
	ReasonVencido    AdjustmentReason = "VENCIDO"    // expired stock write-off
	ReasonConteo     AdjustmentReason = "CONTEO"     // cycle count correction
	ReasonDevolucion AdjustmentReason = "DEVOLUCION" // supplier return
	ReasonOtro       AdjustmentReason = "OTRO"
)

// Valid reports whether r is a known adjustment reason.
func (r AdjustmentReason) Valid() bool {
	switch r {
	case ReasonRotura, ReasonMerma, ReasonVencido, ReasonConteo, ReasonDevolucion, ReasonOtro:
		return true
	}
	return false
}

// Pseudo-batch sentinels. Returns and positive adjustments land in
// bookkeeping batches rather than real received lots.
const (
	ReturnBatchNumber  = "RETURN"
	ReturnLocationZone = "RETURNS"
	AdjustLocationZone = "AJUSTE"
)

// DefaultLowStockThreshold is the alerting threshold when none is configured.
const DefaultLowStockThreshold int64 = 10

// BatchKey uniquely identifies one batch.
type BatchKey struct {
	ProductID    id.ID
	WarehouseID  id.ID
	BatchNumber  string
	LocationZone string
}

// Batch is the unit of stockkeeping.
// Quantity never goes below zero; emptied batches are retained for audit.
type Batch struct {
	ID             id.ID      `db:"id" json:"id"`
	ProductID      id.ID      `db:"product_id" json:"productId"`
	WarehouseID    id.ID      `db:"warehouse_id" json:"warehouseId"`
	BatchNumber    string     `db:"batch_number" json:"batchNumber"`
	LocationZone   string     `db:"location_zone" json:"locationZone"`
	Quantity       int64      `db:"quantity" json:"quantity"`
	ExpirationDate *time.Time `db:"expiration_date" json:"expirationDate,omitempty"`
	CreatedAt      time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt      time.Time  `db:"updated_at" json:"updatedAt"`
}

// Key returns the batch's unique key.
func (b *Batch) Key() BatchKey {
	return BatchKey{
		ProductID:    b.ProductID,
		WarehouseID:  b.WarehouseID,
		BatchNumber:  b.BatchNumber,
		LocationZone: b.LocationZone,
	}
}

// IsExpired reports whether the batch expired before now.
// Batches without an expiration date never expire.
func (b *Batch) IsExpired(now time.Time) bool {
	return b.ExpirationDate != nil && b.ExpirationDate.Before(now)
}

// Transaction is an immutable, append-only ledger entry.
// Negative quantity is outflow. One entry is written per batch touched.
type Transaction struct {
	ID        id.ID           `db:"id" json:"id"`
	ProductID id.ID           `db:"product_id" json:"productId"`
	Quantity  int64           `db:"quantity" json:"quantity"`
	Type      TransactionType `db:"type" json:"type"`

	// ReferenceID is free-form context: sale code, adjustment reason and
	// notes, transfer route.
	ReferenceID string    `db:"reference_id" json:"referenceId,omitempty"`
	UserID      string    `db:"user_id" json:"userId"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
}

// NewTransaction creates a ledger entry stamped now.
func NewTransaction(productID id.ID, quantity int64, txType TransactionType, referenceID, userID string) Transaction {
	return Transaction{
		ID:          id.New(),
		ProductID:   productID,
		Quantity:    quantity,
		Type:        txType,
		ReferenceID: referenceID,
		UserID:      userID,
		CreatedAt:   time.Now().UTC(),
	}
}

// Deduction records how much was taken from one batch during an allocation.
type Deduction struct {
	BatchID      id.ID  `json:"batchId"`
	BatchNumber  string `json:"batchNumber"`
	LocationZone string `json:"locationZone"`
	Quantity     int64  `json:"quantity"`
}

// AllocationResult is the outcome of one multi-batch allocation.
type AllocationResult struct {
	ProductID   id.ID       `json:"productId"`
	Requested   int64       `json:"requested"`
	Deductions  []Deduction `json:"deductions"`
	TotalBefore int64       `json:"totalBefore"`
	TotalAfter  int64       `json:"totalAfter"`

	// EntryIDs are the ledger entries written for this allocation,
	// in deduction order.
	EntryIDs []id.ID `json:"-"`
}

// CrossedThreshold reports whether this allocation is the one that pushed
// the product's total below the threshold. Repeated deductions while
// already below must not re-fire alerts.
func (r *AllocationResult) CrossedThreshold(threshold int64) bool {
	return r.TotalAfter < threshold && r.TotalBefore >= threshold
}

// LowStockItem is one product whose summed batch quantity is under threshold.
type LowStockItem struct {
	ProductID id.ID  `db:"product_id" json:"productId"`
	SKU       string `db:"sku" json:"sku"`
	Name      string `db:"name" json:"name"`
	Quantity  int64  `db:"quantity" json:"quantity"`
}
