package catalog_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"distrisur/internal/core/apperror"
	"distrisur/internal/core/id"
	"distrisur/internal/domain/catalogs/customer"
	"distrisur/internal/infrastructure/storage/postgres"
)

const customerTable = "cat_customers"

var customerColumns = []string{
	"id", "name", "email", "phone", "segment", "price_list_id",
	"created_at", "updated_at",
}

// CustomerRepo implements customer.Repository.
type CustomerRepo struct {
	txManager *postgres.TxManager
	builder   squirrel.StatementBuilderType
}

// NewCustomerRepo creates a new customer repository.
func NewCustomerRepo(txManager *postgres.TxManager) *CustomerRepo {
	return &CustomerRepo{
		txManager: txManager,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Create inserts a new customer.
func (r *CustomerRepo) Create(ctx context.Context, c *customer.Customer) error {
	q := r.builder.Insert(customerTable).
		Columns(customerColumns...).
		Values(c.ID, c.Name, c.Email, c.Phone, c.Segment, c.PriceListID,
			c.CreatedAt, c.UpdatedAt)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		if isUniqueViolation(err) {
			return apperror.NewDuplicate("customer", "email", c.Email).WithCause(err)
		}
		return fmt.Errorf("insert customer: %w", err)
	}

	return nil
}

// Update modifies an existing customer.
func (r *CustomerRepo) Update(ctx context.Context, c *customer.Customer) error {
	q := r.builder.Update(customerTable).
		Set("name", c.Name).
		Set("email", c.Email).
		Set("phone", c.Phone).
		Set("segment", c.Segment).
		Set("price_list_id", c.PriceListID).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": c.ID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	result, err := querier.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update customer: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("customer", c.ID.String())
	}

	return nil
}

// GetByID retrieves a customer by ID.
func (r *CustomerRepo) GetByID(ctx context.Context, customerID id.ID) (*customer.Customer, error) {
	q := r.builder.Select(customerColumns...).
		From(customerTable).
		Where(squirrel.Eq{"id": customerID}).
		Limit(1)

	return r.findOne(ctx, q, customerID.String())
}

// GetByEmail retrieves a customer by email.
func (r *CustomerRepo) GetByEmail(ctx context.Context, email string) (*customer.Customer, error) {
	q := r.builder.Select(customerColumns...).
		From(customerTable).
		Where(squirrel.Eq{"email": email}).
		Limit(1)

	return r.findOne(ctx, q, email)
}

// UpsertByEmail inserts the customer or, when the email already exists,
// refreshes name and phone and returns the stored row.
func (r *CustomerRepo) UpsertByEmail(ctx context.Context, c *customer.Customer) (*customer.Customer, error) {
	sql := `
		INSERT INTO cat_customers
			(id, name, email, phone, segment, price_list_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (email)
		DO UPDATE SET
			name = CASE WHEN EXCLUDED.name <> '' THEN EXCLUDED.name ELSE cat_customers.name END,
			phone = CASE WHEN EXCLUDED.phone <> '' THEN EXCLUDED.phone ELSE cat_customers.phone END,
			updated_at = now()
		RETURNING id, name, email, phone, segment, price_list_id, created_at, updated_at
	`

	var stored customer.Customer
	querier := r.txManager.GetQuerier(ctx)
	err := pgxscan.Get(ctx, querier, &stored, sql,
		c.ID, c.Name, c.Email, c.Phone, c.Segment, c.PriceListID,
		c.CreatedAt, c.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("upsert customer: %w", err)
	}

	return &stored, nil
}

func (r *CustomerRepo) findOne(ctx context.Context, q squirrel.SelectBuilder, ident string) (*customer.Customer, error) {
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var c customer.Customer
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &c, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("customer", ident)
		}
		return nil, fmt.Errorf("get customer: %w", err)
	}

	return &c, nil
}

// Ensure interface compliance.
var _ customer.Repository = (*CustomerRepo)(nil)
