package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"distrisur/internal/core/id"
	"distrisur/internal/domain/inventory"
	"distrisur/internal/infrastructure/http/v1/dto"
)

// InventoryHandler handles HTTP requests for the inventory ledger.
type InventoryHandler struct {
	*BaseHandler
	service *inventory.Service
}

// NewInventoryHandler creates a new inventory handler.
func NewInventoryHandler(base *BaseHandler, service *inventory.Service) *InventoryHandler {
	return &InventoryHandler{BaseHandler: base, service: service}
}

// Receive handles POST /inventory/receive
func (h *InventoryHandler) Receive(c *gin.Context) {
	var req dto.ReceiveStockRequest
	if !h.BindJSON(c, &req) {
		return
	}

	productID, ok := h.ParseID(c, "productId", req.ProductID)
	if !ok {
		return
	}
	warehouseID, ok := h.ParseOptionalID(c, "warehouseId", req.WarehouseID)
	if !ok {
		return
	}

	batch, err := h.service.Receive(c.Request.Context(), inventory.ReceiveInput{
		ProductID:      productID,
		WarehouseID:    warehouseID,
		BatchNumber:    req.BatchNumber,
		LocationZone:   req.LocationZone,
		Quantity:       req.Quantity,
		ExpirationDate: req.ExpirationDate,
	})
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.FromBatch(batch))
}

// Adjust handles POST /inventory/adjust
func (h *InventoryHandler) Adjust(c *gin.Context) {
	var req dto.AdjustStockRequest
	if !h.BindJSON(c, &req) {
		return
	}

	productID, ok := h.ParseID(c, "productId", req.ProductID)
	if !ok {
		return
	}
	warehouseID, ok := h.ParseOptionalID(c, "warehouseId", req.WarehouseID)
	if !ok {
		return
	}

	result, err := h.service.Adjust(c.Request.Context(), inventory.AdjustInput{
		ProductID:   productID,
		Delta:       req.Delta,
		Reason:      inventory.AdjustmentReason(req.Reason),
		Notes:       req.Notes,
		WarehouseID: warehouseID,
		BatchNumber: req.BatchNumber,
	})
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromAdjustResult(result))
}

// Transfer handles POST /inventory/transfer
func (h *InventoryHandler) Transfer(c *gin.Context) {
	var req dto.TransferStockRequest
	if !h.BindJSON(c, &req) {
		return
	}

	productID, ok := h.ParseID(c, "productId", req.ProductID)
	if !ok {
		return
	}
	fromWh, ok := h.ParseOptionalID(c, "fromWarehouseId", req.FromWarehouseID)
	if !ok {
		return
	}
	toWh, ok := h.ParseOptionalID(c, "toWarehouseId", req.ToWarehouseID)
	if !ok {
		return
	}

	err := h.service.Transfer(c.Request.Context(), inventory.TransferInput{
		ProductID:       productID,
		Quantity:        req.Quantity,
		BatchNumber:     req.BatchNumber,
		FromZone:        req.FromZone,
		ToZone:          req.ToZone,
		FromWarehouseID: fromWh,
		ToWarehouseID:   toWh,
	})
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.SuccessResponse{Success: true})
}

// GetStock handles GET /inventory/stock/:productId
func (h *InventoryHandler) GetStock(c *gin.Context) {
	productID, ok := h.ParseID(c, "productId", c.Param("productId"))
	if !ok {
		return
	}

	snapshot, err := h.service.Stock(c.Request.Context(), productID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromProductStock(snapshot))
}

// GetHistory handles GET /inventory/history/:productId
func (h *InventoryHandler) GetHistory(c *gin.Context) {
	productID, ok := h.ParseID(c, "productId", c.Param("productId"))
	if !ok {
		return
	}

	filter := inventory.TransactionFilter{
		Limit:  h.ParseIntQuery(c, "limit", 100),
		Offset: h.ParseIntQuery(c, "offset", 0),
	}
	if t := c.Query("type"); t != "" {
		txType := inventory.TransactionType(t)
		filter.Type = &txType
	}

	entries, err := h.service.History(c.Request.Context(), productID, filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	items := make([]dto.TransactionResponse, len(entries))
	for i, e := range entries {
		items[i] = dto.FromTransaction(e)
	}
	h.OK(c, dto.ListResponse{Items: items})
}

// GetLowStock handles GET /inventory/alerts/low-stock
func (h *InventoryHandler) GetLowStock(c *gin.Context) {
	threshold := int64(h.ParseIntQuery(c, "threshold", 0))

	lowStock, err := h.service.LowStock(c.Request.Context(), threshold)
	if err != nil {
		h.Error(c, err)
		return
	}

	items := make([]dto.LowStockItemResponse, len(lowStock))
	for i, item := range lowStock {
		items[i] = dto.FromLowStockItem(item)
	}
	h.OK(c, dto.ListResponse{Items: items})
}

// GetExpirationReport handles GET /inventory/expiration/report
func (h *InventoryHandler) GetExpirationReport(c *gin.Context) {
	var warehouseID *id.ID
	if whStr := c.Query("warehouseId"); whStr != "" {
		parsed, ok := h.ParseID(c, "warehouseId", whStr)
		if !ok {
			return
		}
		warehouseID = &parsed
	}

	report, err := h.service.ExpirationReport(c.Request.Context(), warehouseID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromExpirationReport(report))
}

// GetExpiring handles GET /inventory/expiration/expiring
func (h *InventoryHandler) GetExpiring(c *gin.Context) {
	days := h.ParseIntQuery(c, "days", 30)

	expiring, err := h.service.ExpiringItems(c.Request.Context(), days)
	if err != nil {
		h.Error(c, err)
		return
	}

	items := make([]dto.ExpirationItemResponse, len(expiring))
	for i, item := range expiring {
		items[i] = dto.FromExpirationItem(item)
	}
	h.OK(c, dto.ListResponse{Items: items})
}

// GetExpired handles GET /inventory/expiration/expired
func (h *InventoryHandler) GetExpired(c *gin.Context) {
	expired, err := h.service.ExpiredItems(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}

	items := make([]dto.ExpirationItemResponse, len(expired))
	for i, item := range expired {
		items[i] = dto.FromExpirationItem(item)
	}
	h.OK(c, dto.ListResponse{Items: items})
}
