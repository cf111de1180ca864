// Package runs orchestrates billing runs: it gathers the customer, rate
// card and usage for a billing window, computes the invoice and persists
// it. The pure pricing rules live in the billing package; this package
// owns locking, persistence and observability around them.
package runs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/warebill/warebill/internal/billing"
	"github.com/warebill/warebill/internal/observability"
	"github.com/warebill/warebill/internal/platform/httpx"
	"github.com/warebill/warebill/internal/shared"
)

// ErrRunInProgress reports that another run holds the customer's lock.
var ErrRunInProgress = fmt.Errorf("billing run already in progress: %w", httpx.ErrConflict)

// lockTTL bounds how long a crashed run can block its customer.
const lockTTL = 5 * time.Minute

// CustomerSource supplies billable customers.
type CustomerSource interface {
	BillingCustomer(ctx context.Context, id string) (billing.Customer, error)
}

// RateSource supplies a customer's rate card in stored order.
type RateSource interface {
	RateCard(ctx context.Context, customerID string) ([]billing.RateCardEntry, error)
}

// UsageSource supplies a customer's usage inside an inclusive window.
type UsageSource interface {
	Usage(ctx context.Context, customerID string, start, end time.Time) ([]billing.UsageRecord, error)
}

// InvoiceSink persists assembled invoices.
type InvoiceSink interface {
	SaveInvoice(ctx context.Context, inv *billing.Invoice) error
}

// Locker serializes runs per customer.
type Locker interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Unlock(ctx context.Context, key string) error
}

// Service executes billing runs.
type Service struct {
	logger    *slog.Logger
	customers CustomerSource
	rates     RateSource
	usage     UsageSource
	invoices  InvoiceSink
	locker    Locker
	metrics   *observability.Metrics
	now       func() time.Time
	newID     func() string
}

// NewService wires a run orchestrator. metrics may be nil in tests.
func NewService(logger *slog.Logger, customers CustomerSource, rates RateSource, usage UsageSource, invoices InvoiceSink, locker Locker, metrics *observability.Metrics) *Service {
	return &Service{
		logger:    logger,
		customers: customers,
		rates:     rates,
		usage:     usage,
		invoices:  invoices,
		locker:    locker,
		metrics:   metrics,
		now:       time.Now,
		newID:     uuid.NewString,
	}
}

// Run executes a billing run for one customer and period start, persists
// the invoice and returns it. A failure in any step aborts the run; no
// partial invoice is ever stored.
func (s *Service) Run(ctx context.Context, customerID string, startDate time.Time) (*billing.Invoice, error) {
	started := s.now()

	key := shared.BillingLockKey(customerID)
	ok, err := s.locker.TryLock(ctx, key, lockTTL)
	if err != nil {
		s.observe("error", started)
		return nil, err
	}
	if !ok {
		s.observe("locked", started)
		return nil, fmt.Errorf("customer %s: %w", customerID, ErrRunInProgress)
	}
	defer func() {
		if err := s.locker.Unlock(context.WithoutCancel(ctx), key); err != nil {
			s.logger.Warn("release billing lock", slog.String("key", key), slog.Any("error", err))
		}
	}()

	inv, err := s.compute(ctx, customerID, startDate)
	if err != nil {
		s.observe(outcomeFor(err), started)
		return nil, err
	}

	inv.ID = s.newID()
	inv.CreatedAt = s.now().UTC()
	if err := s.invoices.SaveInvoice(ctx, inv); err != nil {
		s.observe("error", started)
		return nil, err
	}

	s.observe("success", started)
	s.logger.Info("billing run complete",
		slog.String("customer_id", customerID),
		slog.String("invoice_id", inv.ID),
		slog.String("period_start", inv.Period.StartDate.Format("2006-01-02")),
		slog.String("period_end", inv.Period.EndDate.Format("2006-01-02")),
		slog.String("total", inv.TotalAmount.StringFixed(2)),
		slog.Int("lines", len(inv.Lines)),
	)
	return inv, nil
}

// Preview computes the invoice without persisting it or stamping an ID.
// It takes the customer lock so a preview never races a real run.
func (s *Service) Preview(ctx context.Context, customerID string, startDate time.Time) (*billing.Invoice, error) {
	key := shared.BillingLockKey(customerID)
	ok, err := s.locker.TryLock(ctx, key, lockTTL)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("customer %s: %w", customerID, ErrRunInProgress)
	}
	defer func() {
		if err := s.locker.Unlock(context.WithoutCancel(ctx), key); err != nil {
			s.logger.Warn("release billing lock", slog.String("key", key), slog.Any("error", err))
		}
	}()
	return s.compute(ctx, customerID, startDate)
}

func (s *Service) compute(ctx context.Context, customerID string, startDate time.Time) (*billing.Invoice, error) {
	customer, err := s.customers.BillingCustomer(ctx, customerID)
	if err != nil {
		return nil, err
	}

	period, err := billing.NewPeriod(customerID, startDate, customer.BillingFrequencyDays)
	if err != nil {
		return nil, err
	}

	rates, err := s.rates.RateCard(ctx, customerID)
	if err != nil {
		return nil, err
	}
	records, err := s.usage.Usage(ctx, customerID, period.StartDate, period.EndDate)
	if err != nil {
		return nil, err
	}

	return billing.ComputeInvoice(customer, startDate, rates, records)
}

func (s *Service) observe(outcome string, started time.Time) {
	s.metrics.ObserveRun(outcome, s.now().Sub(started))
}

// outcomeFor maps run failures onto metric labels without losing the
// distinction between bad input and operational faults.
func outcomeFor(err error) string {
	if kind := billing.ErrorKind(err); kind != "internal" {
		return kind
	}
	if errors.Is(err, httpx.ErrNotFound) || errors.Is(err, httpx.ErrValidation) {
		return "rejected"
	}
	return "error"
}
