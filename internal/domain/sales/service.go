package sales

import (
	"context"
	"fmt"

	"distrisur/internal/core/apperror"
	"distrisur/internal/core/id"
	"distrisur/internal/core/tx"
	"distrisur/internal/core/types"
	"distrisur/internal/domain/catalogs/customer"
	"distrisur/internal/domain/catalogs/product"
	"distrisur/internal/domain/catalogs/warehouse"
	"distrisur/internal/domain/fiscal"
	"distrisur/internal/domain/inventory"
	"distrisur/pkg/logger"
)

// Service orchestrates sale settlement: pricing, discounts, payment
// validation, and the atomic persist-plus-allocate unit of work.
type Service struct {
	repo       Repository
	invoices   fiscal.Repository
	gateway    fiscal.Gateway
	customers  *customer.Service
	products   product.Repository
	warehouses *warehouse.Service
	ledger     *inventory.Service
	pricing    PricingResolver
	promotions PromotionEngine
	coupons    CouponRecorder
	txManager  tx.Manager
}

// Config wires the settlement engine's collaborators.
type Config struct {
	Repo       Repository
	Invoices   fiscal.Repository
	Gateway    fiscal.Gateway
	Customers  *customer.Service
	Products   product.Repository
	Warehouses *warehouse.Service
	Ledger     *inventory.Service
	Pricing    PricingResolver
	Promotions PromotionEngine
	Coupons    CouponRecorder
	TxManager  tx.Manager
}

// NewService creates the sale settlement engine.
func NewService(cfg Config) *Service {
	return &Service{
		repo:       cfg.Repo,
		invoices:   cfg.Invoices,
		gateway:    cfg.Gateway,
		customers:  cfg.Customers,
		products:   cfg.Products,
		warehouses: cfg.Warehouses,
		ledger:     cfg.Ledger,
		pricing:    cfg.Pricing,
		promotions: cfg.Promotions,
		coupons:    cfg.Coupons,
		txManager:  cfg.TxManager,
	}
}

// ItemInput is one requested sale line.
type ItemInput struct {
	ProductID id.ID `json:"productId"`
	Quantity  int64 `json:"quantity"`
}

// PaymentInput is one declared payment.
type PaymentInput struct {
	Method PaymentMethod `json:"method"`
	Amount types.Money   `json:"amount"`
}

// CreateInput describes a POS sale request.
type CreateInput struct {
	Items          []ItemInput
	Payments       []PaymentInput
	CustomerID     *id.ID
	WarehouseID    *id.ID
	DeliveryMethod string
	Discount       types.Money // manual discount on top of promotions
}

// CreateTransaction settles a POS sale.
//
// Price resolution and promotion calculation are pure reads and happen
// before the transaction opens. The transaction then persists the sale with
// items and payments and allocates stock per item; a failure at any point
// rolls back everything, including allocations already performed for
// earlier items of the same sale.
func (s *Service) CreateTransaction(ctx context.Context, in CreateInput) (*Sale, error) {
	if err := validateItems(in.Items); err != nil {
		return nil, err
	}
	if in.Discount.IsNegative() {
		return nil, apperror.NewValidation("discount must not be negative").WithDetail("field", "discount")
	}

	cust, err := s.loadCustomer(ctx, in.CustomerID)
	if err != nil {
		return nil, err
	}

	items, subtotal, err := s.priceItems(ctx, in.Items, cust)
	if err != nil {
		return nil, err
	}

	discount, err := s.computeDiscount(ctx, items, in.Discount)
	if err != nil {
		return nil, err
	}

	total := subtotal.Sub(discount)
	if total.IsNegative() {
		total = types.Zero()
	}

	payments, err := resolvePayments(in.Payments, total)
	if err != nil {
		return nil, err
	}

	sale := &Sale{
		ID:             id.New(),
		Channel:        ChannelPOS,
		Status:         StatusCompleted,
		TotalAmount:    total,
		DiscountAmount: discount,
		TaxAmount:      types.Zero(),
		ShippingFee:    types.Zero(),
		DeliveryMethod: in.DeliveryMethod,
		CustomerID:     in.CustomerID,
		Items:          items,
		Payments:       payments,
		StockCommitted: true,
	}

	allocations, err := s.settle(ctx, sale, in.WarehouseID, "POS", true)
	if err != nil {
		return nil, err
	}

	for _, alloc := range allocations {
		s.ledger.EmitLowStockAlert(ctx, alloc)
	}

	logger.Info(ctx, "sale settled",
		"sale_id", sale.ID,
		"code", sale.Code,
		"total", sale.TotalAmount,
		"items", len(sale.Items),
	)
	return sale, nil
}

// settle runs the atomic unit of work: sale persistence plus per-item stock
// allocation. Returns the allocation results for post-commit alerting.
func (s *Service) settle(ctx context.Context, sale *Sale, warehouseID *id.ID, codePrefix string, allocate bool) ([]*inventory.AllocationResult, error) {
	var allocations []*inventory.AllocationResult

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		wh, err := s.resolveWarehouse(ctx, warehouseID)
		if err != nil {
			return err
		}
		sale.WarehouseID = wh

		code, err := s.repo.NextCode(ctx, codePrefix)
		if err != nil {
			return fmt.Errorf("next sale code: %w", err)
		}
		sale.Code = code

		for i := range sale.Items {
			sale.Items[i].SaleID = sale.ID
		}
		for i := range sale.Payments {
			sale.Payments[i].SaleID = sale.ID
		}

		if err := s.repo.CreateSale(ctx, sale); err != nil {
			return fmt.Errorf("create sale: %w", err)
		}

		if !allocate {
			return nil
		}

		filter := inventory.BatchFilter{WarehouseID: &wh}
		for _, item := range sale.Items {
			alloc, err := s.ledger.Allocate(ctx, item.ProductID, item.Quantity, filter,
				inventory.TypeSaleDeduction, "sale "+sale.Code)
			if err != nil {
				return err
			}
			allocations = append(allocations, alloc)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return allocations, nil
}

// Void cancels a sale: stock is restored per item, the linked invoice is
// cancelled or compensated with a credit note, and status becomes CANCELLED.
func (s *Service) Void(ctx context.Context, saleID id.ID, reason string) (*Sale, error) {
	sale, err := s.repo.GetByID(ctx, saleID)
	if err != nil {
		return nil, err
	}

	if err := sale.CanVoid(); err != nil {
		return nil, err
	}

	invoice, err := s.loadInvoice(ctx, saleID)
	if err != nil {
		return nil, err
	}

	refID := fmt.Sprintf("void %s: %s", sale.Code, reason)

	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if sale.StockCommitted {
			for _, item := range sale.Items {
				if _, err := s.ledger.Restore(ctx, item.ProductID, &sale.WarehouseID, item.Quantity, refID); err != nil {
					return err
				}
			}
		}

		// Draft/pending invoices are cancelled in place; no external call.
		if invoice != nil && !invoice.IsAuthorized() {
			if err := s.invoices.UpdateStatus(ctx, invoice.ID, fiscal.StatusCancelled); err != nil {
				return fmt.Errorf("cancel invoice: %w", err)
			}
		}

		return s.repo.UpdateStatus(ctx, saleID, StatusCancelled)
	})
	if err != nil {
		return nil, err
	}

	// Authorized invoices need a fiscal credit note. The call happens after
	// commit and is non-fatal: local consistency wins, reconciliation picks
	// up the stragglers.
	if invoice != nil && invoice.IsAuthorized() {
		if _, err := s.gateway.CreateCreditNote(ctx, invoice.ID, reason); err != nil {
			fiscalErr := apperror.NewFiscalIntegration(err)
			logger.Error(ctx, "credit note issuance failed, sale voided locally",
				"sale_id", saleID,
				"invoice_id", invoice.ID,
				"error", fiscalErr,
			)
		}
	}

	sale.Status = StatusCancelled
	logger.Info(ctx, "sale voided", "sale_id", saleID, "code", sale.Code, "reason", reason)
	return sale, nil
}

// Delete hard-deletes a sale and its dependents. Forbidden once the linked
// invoice carries a CAE; such sales must be voided with a credit note.
func (s *Service) Delete(ctx context.Context, saleID id.ID) error {
	sale, err := s.repo.GetByID(ctx, saleID)
	if err != nil {
		return err
	}

	invoice, err := s.loadInvoice(ctx, saleID)
	if err != nil {
		return err
	}

	if invoice != nil && invoice.HasCAE() {
		return apperror.NewInvoiceAuthorized(saleID.String())
	}

	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if invoice != nil {
			if err := s.invoices.Delete(ctx, invoice.ID); err != nil {
				return fmt.Errorf("delete invoice: %w", err)
			}
		}
		return s.repo.DeleteCascade(ctx, saleID)
	})
	if err != nil {
		return err
	}

	logger.Info(ctx, "sale deleted", "sale_id", saleID, "code", sale.Code)
	return nil
}

// GetByID returns a sale with items and payments.
func (s *Service) GetByID(ctx context.Context, saleID id.ID) (*Sale, error) {
	return s.repo.GetByID(ctx, saleID)
}

// List returns sales matching the filter.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]*Sale, error) {
	return s.repo.List(ctx, filter)
}

// --- pricing and payment helpers ---

// priceItems resolves a unit price per line: customer price list first,
// wholesale override second, product base price last. Products whose whole
// remaining stock is expired are rejected up front.
func (s *Service) priceItems(ctx context.Context, inputs []ItemInput, cust *customer.Customer) ([]SaleItem, types.Money, error) {
	items := make([]SaleItem, 0, len(inputs))
	subtotal := types.Zero()

	var customerID *id.ID
	if cust != nil {
		customerID = &cust.ID
	}

	for _, in := range inputs {
		p, err := s.products.GetByID(ctx, in.ProductID)
		if err != nil {
			return nil, types.Money{}, err
		}

		expired, err := s.ledger.IsProductFullyExpired(ctx, p.ID)
		if err != nil {
			return nil, types.Money{}, err
		}
		if expired {
			return nil, types.Money{}, apperror.NewBusinessRule(apperror.CodeBusinessRule,
				"all remaining stock of this product is expired").
				WithDetail("product_id", p.ID.String()).
				WithDetail("sku", p.SKU)
		}

		unitPrice, err := s.resolvePrice(ctx, p, cust, customerID)
		if err != nil {
			return nil, types.Money{}, err
		}

		lineTotal := unitPrice.Mul(types.NewMoney(float64(in.Quantity)))
		items = append(items, SaleItem{
			ID:         id.New(),
			ProductID:  p.ID,
			Quantity:   in.Quantity,
			UnitPrice:  unitPrice,
			TotalPrice: lineTotal,
		})
		subtotal = subtotal.Add(lineTotal)
	}

	return items, subtotal, nil
}

func (s *Service) resolvePrice(ctx context.Context, p *product.Product, cust *customer.Customer, customerID *id.ID) (types.Money, error) {
	if s.pricing != nil {
		listPrice, err := s.pricing.GetPrice(ctx, p.ID, customerID)
		if err != nil {
			return types.Money{}, fmt.Errorf("price list lookup: %w", err)
		}
		if listPrice != nil {
			return *listPrice, nil
		}
	}

	if cust != nil && cust.IsWholesale() && p.WholesalePrice != nil {
		return *p.WholesalePrice, nil
	}

	return p.BasePrice, nil
}

func (s *Service) computeDiscount(ctx context.Context, items []SaleItem, manual types.Money) (types.Money, error) {
	discount := manual

	if s.promotions != nil {
		priced := make([]PricedItem, 0, len(items))
		for _, item := range items {
			category := ""
			if p, err := s.products.GetByID(ctx, item.ProductID); err == nil {
				category = p.Category
			}
			priced = append(priced, PricedItem{
				ProductID: item.ProductID,
				Quantity:  item.Quantity,
				UnitPrice: item.UnitPrice,
				Category:  category,
			})
		}

		promo, err := s.promotions.ApplyPromotions(ctx, priced)
		if err != nil {
			return types.Money{}, fmt.Errorf("apply promotions: %w", err)
		}
		discount = discount.Add(promo.Discount)

		if len(promo.Applied) > 0 {
			logger.Debug(ctx, "promotions applied", "names", promo.Applied, "discount", promo.Discount)
		}
	}

	return discount, nil
}

// resolvePayments validates declared payments against the amount due.
// No payments declared means a single CASH payment for the full total.
// The declared sum must cover the total within PaymentTolerance.
func resolvePayments(inputs []PaymentInput, total types.Money) ([]Payment, error) {
	if len(inputs) == 0 {
		return []Payment{{
			ID:     id.New(),
			Method: PaymentCash,
			Amount: total,
		}}, nil
	}

	paid := types.Zero()
	payments := make([]Payment, 0, len(inputs))
	for _, in := range inputs {
		if in.Amount.IsNegative() {
			return nil, apperror.NewValidation("payment amount must not be negative").
				WithDetail("method", string(in.Method))
		}
		payments = append(payments, Payment{
			ID:     id.New(),
			Method: in.Method,
			Amount: in.Amount,
		})
		paid = paid.Add(in.Amount)
	}

	if total.Sub(paid).GreaterThan(types.PaymentTolerance) {
		return nil, apperror.NewInsufficientPayment(total.String(), paid.String())
	}

	return payments, nil
}

func validateItems(items []ItemInput) error {
	if len(items) == 0 {
		return apperror.NewValidation("at least one item is required").WithDetail("field", "items")
	}
	for i, item := range items {
		if id.IsNil(item.ProductID) {
			return apperror.NewValidation("product is required").
				WithDetail("field", "items").
				WithDetail("line", i+1)
		}
		if item.Quantity <= 0 {
			return apperror.NewValidation("quantity must be positive").
				WithDetail("field", "items").
				WithDetail("line", i+1)
		}
	}
	return nil
}

func (s *Service) loadCustomer(ctx context.Context, customerID *id.ID) (*customer.Customer, error) {
	if customerID == nil || id.IsNil(*customerID) {
		return nil, nil
	}
	return s.customers.GetByID(ctx, *customerID)
}

func (s *Service) loadInvoice(ctx context.Context, saleID id.ID) (*fiscal.Invoice, error) {
	invoice, err := s.invoices.GetBySaleID(ctx, saleID)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return invoice, nil
}

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
