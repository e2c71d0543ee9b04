package sales_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"distrisur/internal/core/apperror"
	"distrisur/internal/core/id"
	"distrisur/internal/domain/fiscal"
	"distrisur/internal/infrastructure/storage/postgres"
)

const invoicesTable = "doc_invoices"

var invoiceColumns = []string{
	"id", "sale_id", "number", "status", "cae", "cae_expiry", "total",
	"created_at", "updated_at",
}

// InvoiceRepo implements fiscal.Repository.
type InvoiceRepo struct {
	txManager *postgres.TxManager
	builder   squirrel.StatementBuilderType
}

// NewInvoiceRepo creates a new invoice repository.
func NewInvoiceRepo(txManager *postgres.TxManager) *InvoiceRepo {
	return &InvoiceRepo{
		txManager: txManager,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Create inserts a new invoice.
func (r *InvoiceRepo) Create(ctx context.Context, inv *fiscal.Invoice) error {
	q := r.builder.Insert(invoicesTable).
		Columns(invoiceColumns...).
		Values(inv.ID, inv.SaleID, inv.Number, inv.Status,
			inv.CAE, inv.CAEExpiry, inv.Total,
			squirrel.Expr("now()"), squirrel.Expr("now()"))

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert invoice: %w", err)
	}

	return nil
}

// GetByID retrieves an invoice by ID.
func (r *InvoiceRepo) GetByID(ctx context.Context, invoiceID id.ID) (*fiscal.Invoice, error) {
	q := r.builder.Select(invoiceColumns...).
		From(invoicesTable).
		Where(squirrel.Eq{"id": invoiceID}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var inv fiscal.Invoice
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &inv, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("invoice", invoiceID.String())
		}
		return nil, fmt.Errorf("get invoice: %w", err)
	}

	return &inv, nil
}

// GetBySaleID returns the sale's invoice or a NotFound error.
func (r *InvoiceRepo) GetBySaleID(ctx context.Context, saleID id.ID) (*fiscal.Invoice, error) {
	q := r.builder.Select(invoiceColumns...).
		From(invoicesTable).
		Where(squirrel.Eq{"sale_id": saleID}).
		OrderBy("created_at ASC").
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var inv fiscal.Invoice
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &inv, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("invoice", saleID.String())
		}
		return nil, fmt.Errorf("get invoice: %w", err)
	}

	return &inv, nil
}

// UpdateStatus transitions an invoice's status.
func (r *InvoiceRepo) UpdateStatus(ctx context.Context, invoiceID id.ID, status fiscal.Status) error {
	q := r.builder.Update(invoicesTable).
		Set("status", status).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": invoiceID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	result, err := querier.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update invoice status: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("invoice", invoiceID.String())
	}

	return nil
}

// Delete removes an invoice. Callers must ensure it carries no CAE.
func (r *InvoiceRepo) Delete(ctx context.Context, invoiceID id.ID) error {
	q := r.builder.Delete(invoicesTable).
		Where(squirrel.Eq{"id": invoiceID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	result, err := querier.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("delete invoice: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("invoice", invoiceID.String())
	}

	return nil
}

// Ensure interface compliance.
var _ fiscal.Repository = (*InvoiceRepo)(nil)
