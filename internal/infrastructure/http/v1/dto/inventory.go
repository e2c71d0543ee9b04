package dto

import (
	"time"

	"distrisur/internal/domain/inventory"
)

// --- Request DTOs ---

// ReceiveStockRequest for POST /inventory/receive.
type ReceiveStockRequest struct {
	ProductID      string     `json:"productId" binding:"required"`
	WarehouseID    *string    `json:"warehouseId"`
	BatchNumber    string     `json:"batchNumber" binding:"required"`
	LocationZone   string     `json:"locationZone" binding:"required"`
	Quantity       int64      `json:"quantity" binding:"required,gt=0"`
	ExpirationDate *time.Time `json:"expirationDate"`
}

// AdjustStockRequest for POST /inventory/adjust.
type AdjustStockRequest struct {
	ProductID   string  `json:"productId" binding:"required"`
	Delta       int64   `json:"delta" binding:"required"`
	Reason      string  `json:"reason" binding:"required"`
	Notes       string  `json:"notes"`
	WarehouseID *string `json:"warehouseId"`
	BatchNumber *string `json:"batchNumber"`
}

// TransferStockRequest for POST /inventory/transfer.
type TransferStockRequest struct {
	ProductID       string  `json:"productId" binding:"required"`
	Quantity        int64   `json:"quantity" binding:"required,gt=0"`
	BatchNumber     string  `json:"batchNumber" binding:"required"`
	FromZone        string  `json:"fromZone" binding:"required"`
	ToZone          string  `json:"toZone" binding:"required"`
	FromWarehouseID *string `json:"fromWarehouseId"`
	ToWarehouseID   *string `json:"toWarehouseId"`
}

// --- Response DTOs ---

// BatchResponse represents a batch in API responses.
type BatchResponse struct {
	ID             string     `json:"id"`
	ProductID      string     `json:"productId"`
	WarehouseID    string     `json:"warehouseId"`
	BatchNumber    string     `json:"batchNumber"`
	LocationZone   string     `json:"locationZone"`
	Quantity       int64      `json:"quantity"`
	ExpirationDate *time.Time `json:"expirationDate,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
}

// FromBatch converts a domain batch to a response DTO.
func FromBatch(b *inventory.Batch) BatchResponse {
	return BatchResponse{
		ID:             b.ID.String(),
		ProductID:      b.ProductID.String(),
		WarehouseID:    b.WarehouseID.String(),
		BatchNumber:    b.BatchNumber,
		LocationZone:   b.LocationZone,
		Quantity:       b.Quantity,
		ExpirationDate: b.ExpirationDate,
		CreatedAt:      b.CreatedAt,
		UpdatedAt:      b.UpdatedAt,
	}
}

// ProductStockResponse is the per-product snapshot.
type ProductStockResponse struct {
	ProductID string          `json:"productId"`
	Total     int64           `json:"total"`
	Batches   []BatchResponse `json:"batches"`
}

// FromProductStock converts a domain snapshot to a response DTO.
func FromProductStock(s *inventory.ProductStock) ProductStockResponse {
	batches := make([]BatchResponse, len(s.Batches))
	for i, b := range s.Batches {
		batches[i] = FromBatch(b)
	}
	return ProductStockResponse{
		ProductID: s.ProductID.String(),
		Total:     s.Total,
		Batches:   batches,
	}
}

// AdjustResultResponse reports an applied correction.
type AdjustResultResponse struct {
	TransactionID string `json:"transactionId"`
	Adjustment    int64  `json:"adjustment"`
	CurrentStock  int64  `json:"currentStock"`
}

// FromAdjustResult converts a domain adjust result to a response DTO.
func FromAdjustResult(r *inventory.AdjustResult) AdjustResultResponse {
	return AdjustResultResponse{
		TransactionID: r.TransactionID.String(),
		Adjustment:    r.Adjustment,
		CurrentStock:  r.CurrentStock,
	}
}

// TransactionResponse represents a ledger entry.
type TransactionResponse struct {
	ID          string    `json:"id"`
	ProductID   string    `json:"productId"`
	Quantity    int64     `json:"quantity"`
	Type        string    `json:"type"`
	ReferenceID string    `json:"referenceId,omitempty"`
	UserID      string    `json:"userId"`
	CreatedAt   time.Time `json:"createdAt"`
}

// FromTransaction converts a ledger entry to a response DTO.
func FromTransaction(t inventory.Transaction) TransactionResponse {
	return TransactionResponse{
		ID:          t.ID.String(),
		ProductID:   t.ProductID.String(),
		Quantity:    t.Quantity,
		Type:        string(t.Type),
		ReferenceID: t.ReferenceID,
		UserID:      t.UserID,
		CreatedAt:   t.CreatedAt,
	}
}

// LowStockItemResponse is one product under the alert threshold.
type LowStockItemResponse struct {
	ProductID string `json:"productId"`
	SKU       string `json:"sku"`
	Name      string `json:"name"`
	Quantity  int64  `json:"quantity"`
}

// FromLowStockItem converts a domain item to a response DTO.
func FromLowStockItem(i inventory.LowStockItem) LowStockItemResponse {
	return LowStockItemResponse{
		ProductID: i.ProductID.String(),
		SKU:       i.SKU,
		Name:      i.Name,
		Quantity:  i.Quantity,
	}
}

// ExpirationItemResponse is one batch in an expiry report.
type ExpirationItemResponse struct {
	BatchID         string     `json:"batchId"`
	ProductID       string     `json:"productId"`
	BatchNumber     string     `json:"batchNumber"`
	LocationZone    string     `json:"locationZone"`
	Quantity        int64      `json:"quantity"`
	ExpirationDate  *time.Time `json:"expirationDate,omitempty"`
	Status          string     `json:"status"`
	DaysUntilExpiry *int       `json:"daysUntilExpiry,omitempty"`
	DaysExpired     *int       `json:"daysExpired,omitempty"`
}

// FromExpirationItem converts a domain item to a response DTO.
func FromExpirationItem(i inventory.ExpirationItem) ExpirationItemResponse {
	return ExpirationItemResponse{
		BatchID:         i.BatchID.String(),
		ProductID:       i.ProductID.String(),
		BatchNumber:     i.BatchNumber,
		LocationZone:    i.LocationZone,
		Quantity:        i.Quantity,
		ExpirationDate:  i.ExpirationDate,
		Status:          string(i.Status),
		DaysUntilExpiry: i.DaysUntilExpiry,
		DaysExpired:     i.DaysExpired,
	}
}

// ExpirationReportResponse buckets batches by expiry proximity.
type ExpirationReportResponse struct {
	Expired  []ExpirationItemResponse `json:"expired"`
	Critical []ExpirationItemResponse `json:"critical"`
	Warning  []ExpirationItemResponse `json:"warning"`
	OK       []ExpirationItemResponse `json:"ok"`
}

// FromExpirationReport converts a domain report to a response DTO.
func FromExpirationReport(r inventory.ExpirationReport) ExpirationReportResponse {
	convert := func(items []inventory.ExpirationItem) []ExpirationItemResponse {
		out := make([]ExpirationItemResponse, len(items))
		for i, item := range items {
			out[i] = FromExpirationItem(item)
		}
		return out
	}
	return ExpirationReportResponse{
		Expired:  convert(r.Expired),
		Critical: convert(r.Critical),
		Warning:  convert(r.Warning),
		OK:       convert(r.OK),
	}
}
