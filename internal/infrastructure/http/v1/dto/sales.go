package dto

import (
	"time"

	"distrisur/internal/domain/sales"
)

// --- Request DTOs ---

// SaleItemRequest is one requested sale line.
type SaleItemRequest struct {
	ProductID string `json:"productId" binding:"required"`
	Quantity  int64  `json:"quantity" binding:"required,gt=0"`
}

// PaymentRequest is one declared payment.
type PaymentRequest struct {
	Method string `json:"method" binding:"required"`
	Amount string `json:"amount" binding:"required"`
}

// CreateSaleRequest for POST /sales.
type CreateSaleRequest struct {
	Items          []SaleItemRequest `json:"items" binding:"required,min=1,dive"`
	Payments       []PaymentRequest  `json:"payments" binding:"dive"`
	CustomerID     *string           `json:"customerId"`
	WarehouseID    *string           `json:"warehouseId"`
	DeliveryMethod string            `json:"deliveryMethod"`
	Discount       string            `json:"discount"`
}

// VoidSaleRequest for POST /sales/:id/void.
type VoidSaleRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// CheckoutRequest for POST /checkout.
type CheckoutRequest struct {
	Email          string            `json:"email" binding:"required,email"`
	CustomerName   string            `json:"customerName"`
	Items          []SaleItemRequest `json:"items" binding:"required,min=1,dive"`
	Payments       []PaymentRequest  `json:"payments" binding:"dive"`
	ShippingFee    string            `json:"shippingFee"`
	DeliveryMethod string            `json:"deliveryMethod"`
	CouponCode     string            `json:"couponCode"`
	Quote          bool              `json:"quote"`
}

// --- Response DTOs ---

// SaleItemResponse is one sale line.
type SaleItemResponse struct {
	ID         string `json:"id"`
	ProductID  string `json:"productId"`
	Quantity   int64  `json:"quantity"`
	UnitPrice  string `json:"unitPrice"`
	TotalPrice string `json:"totalPrice"`
}

// PaymentResponse is one payment record.
type PaymentResponse struct {
	ID     string `json:"id"`
	Method string `json:"method"`
	Amount string `json:"amount"`
}

// SaleResponse represents a sale in API responses.
type SaleResponse struct {
	ID             string             `json:"id"`
	Code           string             `json:"code"`
	Channel        string             `json:"channel"`
	Status         string             `json:"status"`
	TotalAmount    string             `json:"totalAmount"`
	DiscountAmount string             `json:"discountAmount"`
	TaxAmount      string             `json:"taxAmount"`
	ShippingFee    string             `json:"shippingFee"`
	DeliveryMethod string             `json:"deliveryMethod,omitempty"`
	CustomerID     *string            `json:"customerId,omitempty"`
	WarehouseID    string             `json:"warehouseId"`
	Items          []SaleItemResponse `json:"items"`
	Payments       []PaymentResponse  `json:"payments"`
	CreatedAt      time.Time          `json:"createdAt"`
	UpdatedAt      time.Time          `json:"updatedAt"`
}

// FromSale converts a domain sale to a response DTO.
func FromSale(s *sales.Sale) SaleResponse {
	resp := SaleResponse{
		ID:             s.ID.String(),
		Code:           s.Code,
		Channel:        string(s.Channel),
		Status:         string(s.Status),
		TotalAmount:    s.TotalAmount.String(),
		DiscountAmount: s.DiscountAmount.String(),
		TaxAmount:      s.TaxAmount.String(),
		ShippingFee:    s.ShippingFee.String(),
		DeliveryMethod: s.DeliveryMethod,
		WarehouseID:    s.WarehouseID.String(),
		Items:          make([]SaleItemResponse, len(s.Items)),
		Payments:       make([]PaymentResponse, len(s.Payments)),
		CreatedAt:      s.CreatedAt,
		UpdatedAt:      s.UpdatedAt,
	}

	if s.CustomerID != nil {
		custID := s.CustomerID.String()
		resp.CustomerID = &custID
	}

	for i, item := range s.Items {
		resp.Items[i] = SaleItemResponse{
			ID:         item.ID.String(),
			ProductID:  item.ProductID.String(),
			Quantity:   item.Quantity,
			UnitPrice:  item.UnitPrice.String(),
			TotalPrice: item.TotalPrice.String(),
		}
	}

	for i, p := range s.Payments {
		resp.Payments[i] = PaymentResponse{
			ID:     p.ID.String(),
			Method: string(p.Method),
			Amount: p.Amount.String(),
		}
	}

	return resp
}

// CheckoutSummaryResponse is a priced cart preview.
type CheckoutSummaryResponse struct {
	Items       []SaleItemResponse `json:"items"`
	Subtotal    string             `json:"subtotal"`
	Discount    string             `json:"discount"`
	ShippingFee string             `json:"shippingFee"`
	Total       string             `json:"total"`
}

// FromCheckoutSummary converts a domain summary to a response DTO.
func FromCheckoutSummary(s *sales.CheckoutSummary) CheckoutSummaryResponse {
	items := make([]SaleItemResponse, len(s.Items))
	for i, item := range s.Items {
		items[i] = SaleItemResponse{
			ID:         item.ID.String(),
			ProductID:  item.ProductID.String(),
			Quantity:   item.Quantity,
			UnitPrice:  item.UnitPrice.String(),
			TotalPrice: item.TotalPrice.String(),
		}
	}
	return CheckoutSummaryResponse{
		Items:       items,
		Subtotal:    s.Subtotal.String(),
		Discount:    s.Discount.String(),
		ShippingFee: s.ShippingFee.String(),
		Total:       s.Total.String(),
	}
}
