package catalog_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"distrisur/internal/core/apperror"
	"distrisur/internal/core/id"
	"distrisur/internal/domain/catalogs/warehouse"
	"distrisur/internal/infrastructure/storage/postgres"
)

const warehouseTable = "cat_warehouses"

var warehouseColumns = []string{
	"id", "name", "type", "address", "is_active", "created_at", "updated_at",
}

// WarehouseRepo implements warehouse.Repository.
type WarehouseRepo struct {
	txManager *postgres.TxManager
	builder   squirrel.StatementBuilderType
}

// NewWarehouseRepo creates a new warehouse repository.
func NewWarehouseRepo(txManager *postgres.TxManager) *WarehouseRepo {
	return &WarehouseRepo{
		txManager: txManager,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Create inserts a new warehouse.
func (r *WarehouseRepo) Create(ctx context.Context, w *warehouse.Warehouse) error {
	q := r.builder.Insert(warehouseTable).
		Columns(warehouseColumns...).
		Values(w.ID, w.Name, w.Type, w.Address, w.IsActive, w.CreatedAt, w.UpdatedAt)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert warehouse: %w", err)
	}

	return nil
}

// GetByID retrieves a warehouse by ID.
func (r *WarehouseRepo) GetByID(ctx context.Context, warehouseID id.ID) (*warehouse.Warehouse, error) {
	q := r.builder.Select(warehouseColumns...).
		From(warehouseTable).
		Where(squirrel.Eq{"id": warehouseID}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var w warehouse.Warehouse
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &w, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("warehouse", warehouseID.String())
		}
		return nil, fmt.Errorf("get warehouse: %w", err)
	}

	return &w, nil
}

// List retrieves all warehouses.
func (r *WarehouseRepo) List(ctx context.Context) ([]*warehouse.Warehouse, error) {
	q := r.builder.Select(warehouseColumns...).
		From(warehouseTable).
		OrderBy("created_at ASC")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var warehouses []*warehouse.Warehouse
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &warehouses, sql, args...); err != nil {
		return nil, fmt.Errorf("list warehouses: %w", err)
	}

	return warehouses, nil
}

// FirstByType returns the oldest warehouse of the given type.
func (r *WarehouseRepo) FirstByType(ctx context.Context, whType warehouse.Type) (*warehouse.Warehouse, error) {
	q := r.builder.Select(warehouseColumns...).
		From(warehouseTable).
		Where(squirrel.Eq{"type": whType, "is_active": true}).
		OrderBy("created_at ASC").
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var w warehouse.Warehouse
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &w, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("warehouse", string(whType))
		}
		return nil, fmt.Errorf("first by type: %w", err)
	}

	return &w, nil
}

// EnsureDepot provisions the depot when none exists yet. Concurrent first
// callers race on a partial unique index over depot rows; losers fall
// through to reading the winner.
func (r *WarehouseRepo) EnsureDepot(ctx context.Context, name string) (*warehouse.Warehouse, error) {
	sql := `
		INSERT INTO cat_warehouses
			(id, name, type, address, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, NULL, true, now(), now())
		ON CONFLICT (type) WHERE type = 'DEPOT'
		DO NOTHING
		RETURNING id, name, type, address, is_active, created_at, updated_at
	`

	var w warehouse.Warehouse
	querier := r.txManager.GetQuerier(ctx)
	err := pgxscan.Get(ctx, querier, &w, sql, id.New(), name, warehouse.TypeDepot)
	if err == nil {
		return &w, nil
	}
	if !pgxscan.NotFound(err) {
		return nil, fmt.Errorf("ensure depot: %w", err)
	}

	// Lost the race: another caller inserted the depot.
	return r.FirstByType(ctx, warehouse.TypeDepot)
}

// Ensure interface compliance.
var _ warehouse.Repository = (*WarehouseRepo)(nil)
