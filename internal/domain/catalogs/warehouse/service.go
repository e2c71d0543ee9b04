package warehouse

import (
	"context"

	"distrisur/internal/core/apperror"
	"distrisur/internal/core/id"
	"distrisur/pkg/logger"
)

// Service provides business logic for the Warehouse catalog.
type Service struct {
	repo Repository
}

// NewService creates a new warehouse service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Create validates and persists a new warehouse.
func (s *Service) Create(ctx context.Context, w *Warehouse) error {
	if err := w.Validate(ctx); err != nil {
		return err
	}

	if err := s.repo.Create(ctx, w); err != nil {
		return err
	}

	logger.Info(ctx, "warehouse created", "id", w.ID, "name", w.Name, "type", w.Type)
	return nil
}

// GetByID retrieves a warehouse.
func (s *Service) GetByID(ctx context.Context, warehouseID id.ID) (*Warehouse, error) {
	return s.repo.GetByID(ctx, warehouseID)
}

// List retrieves all warehouses.
func (s *Service) List(ctx context.Context) ([]*Warehouse, error) {
	return s.repo.List(ctx)
}

// EnsureDefault returns the default depot, provisioning "Depósito Central"
// on first use. Provisioning is idempotent: the repository upserts against
// a unique constraint, so concurrent first callers get the same row.
func (s *Service) EnsureDefault(ctx context.Context) (*Warehouse, error) {
	wh, err := s.repo.FirstByType(ctx, TypeDepot)
	if err == nil {
		return wh, nil
	}
	if !apperror.IsNotFound(err) {
		return nil, err
	}

	wh, err = s.repo.EnsureDepot(ctx, DefaultDepotName)
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "default depot provisioned", "id", wh.ID, "name", wh.Name)
	return wh, nil
}
