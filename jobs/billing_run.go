package jobs

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
	"golang.org/x/sync/errgroup"

	"github.com/warebill/warebill/internal/billing"
	"github.com/warebill/warebill/internal/masterdata/customers"
)

// batchConcurrency caps how many customers a batch bills at once.
const batchConcurrency = 4

// timeNow is swapped in tests.
var timeNow = time.Now

// Runner executes billing runs for the task handlers.
type Runner interface {
	Run(ctx context.Context, customerID string, startDate time.Time) (*billing.Invoice, error)
}

// CustomerLister enumerates customers for batch fan-out.
type CustomerLister interface {
	List(ctx context.Context, filters customers.ListFilters) ([]customers.Customer, error)
}

// InvoiceChecker reports whether a period has already been billed.
type InvoiceChecker interface {
	HasInvoiceFor(ctx context.Context, customerID string, periodStart time.Time) (bool, error)
}

// NewBillingRunHandler processes TaskTypeBillingRun tasks.
func NewBillingRunHandler(logger *slog.Logger, runner Runner) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		var payload BillingRunPayload
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return asynq.SkipRetry
		}
		start, err := time.Parse("2006-01-02", payload.StartDate)
		if err != nil {
			logger.Error("billing task bad start date", slog.String("start_date", payload.StartDate))
			return asynq.SkipRetry
		}
		inv, err := runner.Run(ctx, payload.CustomerID, start)
		if err != nil {
			// Bad input never heals on retry; only operational faults do.
			if kind := billing.ErrorKind(err); kind != "internal" {
				logger.Error("billing task rejected",
					slog.String("customer_id", payload.CustomerID),
					slog.String("kind", kind),
					slog.Any("error", err))
				return asynq.SkipRetry
			}
			return err
		}
		logger.Info("billing task complete",
			slog.String("customer_id", payload.CustomerID),
			slog.String("invoice_id", inv.ID))
		return nil
	}
}

// defaultBatchStart picks the first day of the previous month, the period
// a month-boundary cron fire is expected to bill.
func defaultBatchStart(now time.Time) time.Time {
	return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -1, 0)
}

// NewBillingBatchHandler processes TaskTypeBillingBatch tasks. The period
// start is resolved at execution time when the payload leaves it empty,
// so a long-lived scheduler bills each month as it closes instead of the
// month the worker booted in. A customer is due when its cycle for that
// start has completed and no invoice covers the period yet; everyone else
// is skipped. One customer failing does not stop the others; the batch
// reports an error only when every due customer failed.
func NewBillingBatchHandler(logger *slog.Logger, lister CustomerLister, checker InvoiceChecker, runner Runner) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		var payload BillingBatchPayload
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return asynq.SkipRetry
		}
		now := timeNow().UTC()
		start := defaultBatchStart(now)
		if payload.StartDate != "" {
			var err error
			start, err = time.Parse("2006-01-02", payload.StartDate)
			if err != nil {
				return asynq.SkipRetry
			}
		}
		today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

		active, err := lister.List(ctx, customers.ListFilters{Status: customers.StatusActive})
		if err != nil {
			return err
		}

		var due []customers.Customer
		skipped := 0
		for _, c := range active {
			end, err := billing.ResolvePeriod(start, c.BillingFrequencyDays)
			if err != nil {
				logger.Error("batch customer unbillable",
					slog.String("customer_id", c.ID),
					slog.Any("error", err))
				skipped++
				continue
			}
			if !end.Before(today) {
				// Cycle still open.
				skipped++
				continue
			}
			billed, err := checker.HasInvoiceFor(ctx, c.ID, start)
			if err != nil {
				return err
			}
			if billed {
				skipped++
				continue
			}
			due = append(due, c)
		}

		var (
			g    errgroup.Group
			errs = make([]error, len(due))
		)
		g.SetLimit(batchConcurrency)
		for i, c := range due {
			i, c := i, c
			g.Go(func() error {
				if _, err := runner.Run(ctx, c.ID, start); err != nil {
					logger.Error("batch customer failed",
						slog.String("customer_id", c.ID),
						slog.String("kind", billing.ErrorKind(err)),
						slog.Any("error", err))
					errs[i] = err
				}
				return nil
			})
		}
		_ = g.Wait()

		failed := 0
		var first error
		for _, err := range errs {
			if err != nil {
				failed++
				if first == nil {
					first = err
				}
			}
		}
		logger.Info("billing batch complete",
			slog.String("start_date", start.Format("2006-01-02")),
			slog.Int("due", len(due)),
			slog.Int("skipped", skipped),
			slog.Int("failed", failed))
		if first != nil && failed == len(due) {
			// Everything failing points at an operational fault worth a retry.
			return first
		}
		return nil
	}
}
