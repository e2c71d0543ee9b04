package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"distrisur/internal/core/apperror"
	"distrisur/internal/core/types"
	"distrisur/internal/domain/sales"
	"distrisur/internal/infrastructure/http/v1/dto"
)

// SalesHandler handles HTTP requests for sale settlement.
type SalesHandler struct {
	*BaseHandler
	service *sales.Service
}

// NewSalesHandler creates a new sales handler.
func NewSalesHandler(base *BaseHandler, service *sales.Service) *SalesHandler {
	return &SalesHandler{BaseHandler: base, service: service}
}

// Create handles POST /sales
func (h *SalesHandler) Create(c *gin.Context) {
	var req dto.CreateSaleRequest
	if !h.BindJSON(c, &req) {
		return
	}

	items, ok := h.parseItems(c, req.Items)
	if !ok {
		return
	}
	payments, ok := h.parsePayments(c, req.Payments)
	if !ok {
		return
	}
	customerID, ok := h.ParseOptionalID(c, "customerId", req.CustomerID)
	if !ok {
		return
	}
	warehouseID, ok := h.ParseOptionalID(c, "warehouseId", req.WarehouseID)
	if !ok {
		return
	}
	discount, ok := h.parseMoney(c, "discount", req.Discount)
	if !ok {
		return
	}

	sale, err := h.service.CreateTransaction(c.Request.Context(), sales.CreateInput{
		Items:          items,
		Payments:       payments,
		CustomerID:     customerID,
		WarehouseID:    warehouseID,
		DeliveryMethod: req.DeliveryMethod,
		Discount:       discount,
	})
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.FromSale(sale))
}

// Checkout handles POST /checkout
func (h *SalesHandler) Checkout(c *gin.Context) {
	var req dto.CheckoutRequest
	if !h.BindJSON(c, &req) {
		return
	}

	items, ok := h.parseItems(c, req.Items)
	if !ok {
		return
	}
	payments, ok := h.parsePayments(c, req.Payments)
	if !ok {
		return
	}
	shippingFee, ok := h.parseMoney(c, "shippingFee", req.ShippingFee)
	if !ok {
		return
	}

	sale, err := h.service.CreateEcommerceSale(c.Request.Context(), sales.CheckoutInput{
		Email:          req.Email,
		CustomerName:   req.CustomerName,
		Items:          items,
		Payments:       payments,
		ShippingFee:    shippingFee,
		DeliveryMethod: req.DeliveryMethod,
		CouponCode:     req.CouponCode,
		Quote:          req.Quote,
	})
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.FromSale(sale))
}

// Preview handles POST /checkout/preview
func (h *SalesHandler) Preview(c *gin.Context) {
	var req dto.CheckoutRequest
	if !h.BindJSON(c, &req) {
		return
	}

	items, ok := h.parseItems(c, req.Items)
	if !ok {
		return
	}
	shippingFee, ok := h.parseMoney(c, "shippingFee", req.ShippingFee)
	if !ok {
		return
	}

	summary, err := h.service.GenerateCheckout(c.Request.Context(), req.Email, items, shippingFee)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromCheckoutSummary(summary))
}

// Get handles GET /sales/:id
func (h *SalesHandler) Get(c *gin.Context) {
	saleID, ok := h.ParseID(c, "id", c.Param("id"))
	if !ok {
		return
	}

	sale, err := h.service.GetByID(c.Request.Context(), saleID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromSale(sale))
}

// List handles GET /sales
func (h *SalesHandler) List(c *gin.Context) {
	filter := sales.ListFilter{
		Limit:  h.ParseIntQuery(c, "limit", 50),
		Offset: h.ParseIntQuery(c, "offset", 0),
	}
	if ch := c.Query("channel"); ch != "" {
		channel := sales.Channel(ch)
		filter.Channel = &channel
	}
	if st := c.Query("status"); st != "" {
		status := sales.Status(st)
		filter.Status = &status
	}

	list, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	items := make([]dto.SaleResponse, len(list))
	for i, s := range list {
		items[i] = dto.FromSale(s)
	}
	h.OK(c, dto.ListResponse{Items: items})
}

// Void handles POST /sales/:id/void
func (h *SalesHandler) Void(c *gin.Context) {
	saleID, ok := h.ParseID(c, "id", c.Param("id"))
	if !ok {
		return
	}

	var req dto.VoidSaleRequest
	if !h.BindJSON(c, &req) {
		return
	}

	sale, err := h.service.Void(c.Request.Context(), saleID, req.Reason)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromSale(sale))
}

// Delete handles DELETE /sales/:id
func (h *SalesHandler) Delete(c *gin.Context) {
	saleID, ok := h.ParseID(c, "id", c.Param("id"))
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), saleID); err != nil {
		h.Error(c, err)
		return
	}

	h.NoContent(c)
}

// --- parsing helpers ---

func (h *SalesHandler) parseItems(c *gin.Context, reqs []dto.SaleItemRequest) ([]sales.ItemInput, bool) {
	items := make([]sales.ItemInput, 0, len(reqs))
	for _, r := range reqs {
		productID, ok := h.ParseID(c, "items.productId", r.ProductID)
		if !ok {
			return nil, false
		}
		items = append(items, sales.ItemInput{ProductID: productID, Quantity: r.Quantity})
	}
	return items, true
}

func (h *SalesHandler) parsePayments(c *gin.Context, reqs []dto.PaymentRequest) ([]sales.PaymentInput, bool) {
	payments := make([]sales.PaymentInput, 0, len(reqs))
	for _, r := range reqs {
		amount, ok := h.parseMoney(c, "payments.amount", r.Amount)
		if !ok {
			return nil, false
		}
		payments = append(payments, sales.PaymentInput{
			Method: sales.PaymentMethod(r.Method),
			Amount: amount,
		})
	}
	return payments, true
}

func (h *SalesHandler) parseMoney(c *gin.Context, field, value string) (types.Money, bool) {
	if value == "" {
		return types.Zero(), true
	}
	m, err := types.NewMoneyFromString(value)
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid amount").WithDetail("field", field))
		return types.Money{}, false
	}
	return m, true
}
