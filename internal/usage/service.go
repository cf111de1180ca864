package usage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/warebill/warebill/internal/billing"
	"github.com/warebill/warebill/internal/platform/httpx"
)

// Service handles usage ledger business logic.
type Service struct {
	repo Repository
}

// NewService builds a Service instance.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Record validates and appends usage records. Negative quantities are
// rejected at the edge with the same error the engine would raise;
// corrections need their own explicit flow, not negative usage.
func (s *Service) Record(ctx context.Context, records []billing.UsageRecord) error {
	if len(records) == 0 {
		return fmt.Errorf("no usage records supplied: %w", httpx.ErrValidation)
	}
	for _, rec := range records {
		if strings.TrimSpace(rec.CustomerID) == "" {
			return fmt.Errorf("usage record missing customer id: %w", httpx.ErrValidation)
		}
		if strings.TrimSpace(rec.ChargeType) == "" {
			return fmt.Errorf("usage record missing charge type: %w", httpx.ErrValidation)
		}
		if rec.OccurredAt.IsZero() {
			return fmt.Errorf("usage record missing timestamp: %w", httpx.ErrValidation)
		}
		if rec.Quantity.IsNegative() {
			return &billing.InvalidUsageError{
				CustomerID:  rec.CustomerID,
				ServiceType: rec.ServiceType,
				ChargeType:  rec.ChargeType,
				Quantity:    rec.Quantity,
			}
		}
	}
	return s.repo.Insert(ctx, records)
}

// Usage returns a customer's records inside the inclusive window. The run
// orchestrator uses this as its UsageSource.
func (s *Service) Usage(ctx context.Context, customerID string, start, end time.Time) ([]billing.UsageRecord, error) {
	if end.Before(start) {
		return nil, fmt.Errorf("usage window end before start: %w", httpx.ErrValidation)
	}
	return s.repo.ListRange(ctx, customerID, start, end)
}
