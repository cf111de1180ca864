package ratecards

import (
	"context"
	"fmt"
	"strings"

	"github.com/warebill/warebill/internal/billing"
	"github.com/warebill/warebill/internal/platform/httpx"
)

// Service handles rate-card registry business logic.
type Service struct {
	repo Repository
}

// NewService builds a Service instance.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// List returns entries matching the filters.
func (s *Service) List(ctx context.Context, filters ListFilters) ([]Entry, error) {
	return s.repo.List(ctx, filters)
}

// Get returns one entry.
func (s *Service) Get(ctx context.Context, id int64) (Entry, error) {
	if id <= 0 {
		return Entry{}, fmt.Errorf("rate entry id required: %w", httpx.ErrValidation)
	}
	return s.repo.Get(ctx, id)
}

// RateCard resolves a customer's full card as engine rate entries. The run
// orchestrator uses this as its RateSource.
func (s *Service) RateCard(ctx context.Context, customerID string) ([]billing.RateCardEntry, error) {
	entries, err := s.repo.List(ctx, ListFilters{CustomerID: customerID})
	if err != nil {
		return nil, err
	}
	out := make([]billing.RateCardEntry, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Billing())
	}
	return out, nil
}

// Create validates and inserts a rate entry.
func (s *Service) Create(ctx context.Context, e Entry) (Entry, error) {
	if err := validate(e); err != nil {
		return Entry{}, err
	}
	return s.repo.Create(ctx, e)
}

// Update validates and replaces the price fields of an entry.
func (s *Service) Update(ctx context.Context, id int64, e Entry) error {
	if id <= 0 {
		return fmt.Errorf("rate entry id required: %w", httpx.ErrValidation)
	}
	if err := validate(e); err != nil {
		return err
	}
	return s.repo.Update(ctx, id, e)
}

// Delete removes an entry.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return fmt.Errorf("rate entry id required: %w", httpx.ErrValidation)
	}
	return s.repo.Delete(ctx, id)
}

func validate(e Entry) error {
	if strings.TrimSpace(e.CustomerID) == "" {
		return fmt.Errorf("customer id is required: %w", httpx.ErrValidation)
	}
	if !validServiceTypes[e.ServiceType] {
		return fmt.Errorf("unknown service type %q: %w", e.ServiceType, httpx.ErrValidation)
	}
	if strings.TrimSpace(e.ChargeType) == "" {
		return fmt.Errorf("charge type is required: %w", httpx.ErrValidation)
	}
	if e.Rate.IsNegative() {
		return fmt.Errorf("rate must be non-negative: %w", httpx.ErrValidation)
	}
	if len(e.Currency) != 3 {
		return fmt.Errorf("currency must be a three-letter ISO code: %w", httpx.ErrValidation)
	}
	if !validUnits[e.Unit] {
		return fmt.Errorf("unknown unit %q: %w", e.Unit, httpx.ErrValidation)
	}
	return nil
}
