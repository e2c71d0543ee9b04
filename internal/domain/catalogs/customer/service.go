package customer

import (
	"context"

	"distrisur/internal/core/apperror"
	"distrisur/internal/core/id"
	"distrisur/pkg/logger"
)

// Service provides business logic for the Customer catalog.
type Service struct {
	repo Repository
}

// NewService creates a new customer service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Create validates and persists a new customer.
func (s *Service) Create(ctx context.Context, c *Customer) error {
	if err := c.Validate(ctx); err != nil {
		return err
	}
	return s.repo.Create(ctx, c)
}

// GetByID retrieves a customer.
func (s *Service) GetByID(ctx context.Context, customerID id.ID) (*Customer, error) {
	return s.repo.GetByID(ctx, customerID)
}

// GetByEmail retrieves a customer by email.
func (s *Service) GetByEmail(ctx context.Context, email string) (*Customer, error) {
	return s.repo.GetByEmail(ctx, email)
}

// EnsureByEmail returns the customer with the given email, creating one
// when unknown. Used by e-commerce order intake.
func (s *Service) EnsureByEmail(ctx context.Context, email, name string) (*Customer, error) {
	if email == "" {
		return nil, apperror.NewValidation("email is required").WithDetail("field", "email")
	}
	if name == "" {
		name = email
	}

	c := NewCustomer(name, SegmentRetail)
	c.Email = email
	if err := c.Validate(ctx); err != nil {
		return nil, err
	}

	stored, err := s.repo.UpsertByEmail(ctx, c)
	if err != nil {
		return nil, err
	}

	if stored.ID == c.ID {
		logger.Info(ctx, "customer created from checkout", "id", stored.ID, "email", email)
	}
	return stored, nil
}
