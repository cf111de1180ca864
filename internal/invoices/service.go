package invoices

import (
	"context"
	"fmt"
	"time"

	"github.com/warebill/warebill/internal/billing"
	"github.com/warebill/warebill/internal/platform/httpx"
)

// Service handles stored-invoice business logic and acts as the billing
// run's invoice sink.
type Service struct {
	repo Repository
}

// NewService builds a Service instance.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// SaveInvoice persists an assembled invoice.
func (s *Service) SaveInvoice(ctx context.Context, inv *billing.Invoice) error {
	if inv.ID == "" {
		return fmt.Errorf("invoice id required: %w", httpx.ErrValidation)
	}
	return s.repo.Save(ctx, inv)
}

// Get returns one stored invoice.
func (s *Service) Get(ctx context.Context, id string) (*billing.Invoice, error) {
	if id == "" {
		return nil, fmt.Errorf("invoice id required: %w", httpx.ErrValidation)
	}
	return s.repo.Get(ctx, id)
}

// HasInvoiceFor reports whether an invoice already covers the customer's
// period starting at periodStart.
func (s *Service) HasInvoiceFor(ctx context.Context, customerID string, periodStart time.Time) (bool, error) {
	return s.repo.Exists(ctx, customerID, periodStart)
}

// List returns invoice headers, optionally narrowed to one customer.
func (s *Service) List(ctx context.Context, customerID string) ([]Summary, error) {
	return s.repo.List(ctx, customerID)
}
