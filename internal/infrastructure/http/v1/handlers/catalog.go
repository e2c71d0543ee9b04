package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"distrisur/internal/core/apperror"
	"distrisur/internal/core/types"
	"distrisur/internal/domain/catalogs/product"
	"distrisur/internal/domain/catalogs/warehouse"
	"distrisur/internal/infrastructure/http/v1/dto"
)

// ProductHandler handles HTTP requests for the product catalog.
type ProductHandler struct {
	*BaseHandler
	service *product.Service
}

// NewProductHandler creates a new product handler.
func NewProductHandler(base *BaseHandler, service *product.Service) *ProductHandler {
	return &ProductHandler{BaseHandler: base, service: service}
}

// Create handles POST /products
func (h *ProductHandler) Create(c *gin.Context) {
	var req dto.CreateProductRequest
	if !h.BindJSON(c, &req) {
		return
	}

	basePrice, err := types.NewMoneyFromString(req.BasePrice)
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid base price").WithDetail("field", "basePrice"))
		return
	}

	p := product.NewProduct(req.SKU, req.Name, basePrice)
	p.Category = req.Category

	if req.WholesalePrice != nil {
		wp, err := types.NewMoneyFromString(*req.WholesalePrice)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid wholesale price").WithDetail("field", "wholesalePrice"))
			return
		}
		p.WholesalePrice = &wp
	}
	if req.CostPrice != nil {
		cp, err := types.NewMoneyFromString(*req.CostPrice)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid cost price").WithDetail("field", "costPrice"))
			return
		}
		p.CostPrice = &cp
	}

	if err := h.service.Create(c.Request.Context(), p); err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.FromProduct(p))
}

// Get handles GET /products/:id
func (h *ProductHandler) Get(c *gin.Context) {
	productID, ok := h.ParseID(c, "id", c.Param("id"))
	if !ok {
		return
	}

	p, err := h.service.GetByID(c.Request.Context(), productID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromProduct(p))
}

// List handles GET /products
func (h *ProductHandler) List(c *gin.Context) {
	filter := product.ListFilter{
		Category:   c.Query("category"),
		OnlyActive: c.Query("includeInactive") != "true",
		Limit:      h.ParseIntQuery(c, "limit", 100),
		Offset:     h.ParseIntQuery(c, "offset", 0),
	}

	list, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	items := make([]dto.ProductResponse, len(list))
	for i, p := range list {
		items[i] = dto.FromProduct(p)
	}
	h.OK(c, dto.ListResponse{Items: items})
}

// WarehouseHandler handles HTTP requests for the warehouse catalog.
type WarehouseHandler struct {
	*BaseHandler
	service *warehouse.Service
}

// NewWarehouseHandler creates a new warehouse handler.
func NewWarehouseHandler(base *BaseHandler, service *warehouse.Service) *WarehouseHandler {
	return &WarehouseHandler{BaseHandler: base, service: service}
}

// Create handles POST /warehouses
func (h *WarehouseHandler) Create(c *gin.Context) {
	var req dto.CreateWarehouseRequest
	if !h.BindJSON(c, &req) {
		return
	}

	w := warehouse.NewWarehouse(req.Name, warehouse.Type(req.Type))
	w.Address = req.Address

	if err := h.service.Create(c.Request.Context(), w); err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.FromWarehouse(w))
}

// Get handles GET /warehouses/:id
func (h *WarehouseHandler) Get(c *gin.Context) {
	warehouseID, ok := h.ParseID(c, "id", c.Param("id"))
	if !ok {
		return
	}

	w, err := h.service.GetByID(c.Request.Context(), warehouseID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromWarehouse(w))
}

// List handles GET /warehouses
func (h *WarehouseHandler) List(c *gin.Context) {
	list, err := h.service.List(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}

	items := make([]dto.WarehouseResponse, len(list))
	for i, w := range list {
		items[i] = dto.FromWarehouse(w)
	}
	h.OK(c, dto.ListResponse{Items: items})
}
