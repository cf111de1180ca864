package customers

import (
	"context"
	"fmt"
	"strings"

	"github.com/warebill/warebill/internal/billing"
	"github.com/warebill/warebill/internal/platform/httpx"
)

// Service handles customer registry business logic.
type Service struct {
	repo Repository
}

// NewService builds a Service instance.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// List returns customers matching the filters.
func (s *Service) List(ctx context.Context, filters ListFilters) ([]Customer, error) {
	return s.repo.List(ctx, filters)
}

// Get returns one customer.
func (s *Service) Get(ctx context.Context, id string) (Customer, error) {
	if id == "" {
		return Customer{}, fmt.Errorf("customer id required: %w", httpx.ErrValidation)
	}
	return s.repo.Get(ctx, id)
}

// BillingCustomer resolves the billing view of an active customer. The run
// orchestrator uses this as its CustomerSource.
func (s *Service) BillingCustomer(ctx context.Context, id string) (billing.Customer, error) {
	c, err := s.Get(ctx, id)
	if err != nil {
		return billing.Customer{}, err
	}
	if c.Status != StatusActive {
		return billing.Customer{}, fmt.Errorf("customer %s is %s: %w", id, c.Status, httpx.ErrValidation)
	}
	return c.Billing(), nil
}

// Create validates and inserts a customer. IDs are caller-assigned codes
// (for example C2201), not generated.
func (s *Service) Create(ctx context.Context, c Customer) (Customer, error) {
	if strings.TrimSpace(c.ID) == "" {
		return Customer{}, fmt.Errorf("customer id required: %w", httpx.ErrValidation)
	}
	if err := validate(c); err != nil {
		return Customer{}, err
	}
	if c.Status == "" {
		c.Status = StatusActive
	}
	return s.repo.Create(ctx, c)
}

// Update validates and replaces a customer record.
func (s *Service) Update(ctx context.Context, id string, c Customer) error {
	if id == "" {
		return fmt.Errorf("customer id required: %w", httpx.ErrValidation)
	}
	if err := validate(c); err != nil {
		return err
	}
	return s.repo.Update(ctx, id, c)
}

// Delete removes a customer record.
func (s *Service) Delete(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("customer id required: %w", httpx.ErrValidation)
	}
	return s.repo.Delete(ctx, id)
}
