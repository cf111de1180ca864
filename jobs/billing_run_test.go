package jobs

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/require"

	"github.com/warebill/warebill/internal/billing"
	"github.com/warebill/warebill/internal/masterdata/customers"
)

type stubRunner struct {
	mu     sync.Mutex
	runs   []string
	starts []time.Time
	errs   map[string]error
}

func (s *stubRunner) Run(ctx context.Context, customerID string, startDate time.Time) (*billing.Invoice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs = append(s.runs, customerID)
	s.starts = append(s.starts, startDate)
	if err := s.errs[customerID]; err != nil {
		return nil, err
	}
	return &billing.Invoice{ID: "inv-" + customerID, CustomerID: customerID}, nil
}

type stubLister struct {
	customers []customers.Customer
}

func (s *stubLister) List(ctx context.Context, filters customers.ListFilters) ([]customers.Customer, error) {
	return s.customers, nil
}

type stubChecker struct {
	billed map[string]bool
}

func (s *stubChecker) HasInvoiceFor(ctx context.Context, customerID string, periodStart time.Time) (bool, error) {
	return s.billed[customerID], nil
}

// fixedClock pins the batch execution time to 2024-04-01.
func fixedClock(t *testing.T) {
	t.Helper()
	orig := timeNow
	timeNow = func() time.Time { return time.Date(2024, time.April, 1, 3, 0, 0, 0, time.UTC) }
	t.Cleanup(func() { timeNow = orig })
}

func monthly(id string) customers.Customer {
	return customers.Customer{ID: id, BillingFrequencyDays: 30, Status: customers.StatusActive}
}

func TestBillingRunHandler(t *testing.T) {
	runner := &stubRunner{}
	handler := NewBillingRunHandler(slog.Default(), runner)

	task, err := NewBillingRunTask(BillingRunPayload{CustomerID: "C2201", StartDate: "2024-03-01"})
	require.NoError(t, err)
	require.NoError(t, handler(context.Background(), task))
	require.Equal(t, []string{"C2201"}, runner.runs)
}

func TestBillingRunHandlerSkipsRetryOnBadInput(t *testing.T) {
	runner := &stubRunner{errs: map[string]error{
		"C2201": &billing.MissingRateError{CustomerID: "C2201"},
	}}
	handler := NewBillingRunHandler(slog.Default(), runner)

	task, err := NewBillingRunTask(BillingRunPayload{CustomerID: "C2201", StartDate: "2024-03-01"})
	require.NoError(t, err)
	require.ErrorIs(t, handler(context.Background(), task), asynq.SkipRetry)
}

func TestBillingRunHandlerRetriesOperationalFaults(t *testing.T) {
	boom := errors.New("pg down")
	runner := &stubRunner{errs: map[string]error{"C2201": boom}}
	handler := NewBillingRunHandler(slog.Default(), runner)

	task, err := NewBillingRunTask(BillingRunPayload{CustomerID: "C2201", StartDate: "2024-03-01"})
	require.NoError(t, err)
	got := handler(context.Background(), task)
	require.ErrorIs(t, got, boom)
	require.NotErrorIs(t, got, asynq.SkipRetry)
}

func TestBillingBatchHandlerFansOut(t *testing.T) {
	fixedClock(t)
	// One bad customer never stops the rest of the batch.
	runner := &stubRunner{errs: map[string]error{
		"C2": &billing.MissingRateError{CustomerID: "C2"},
	}}
	lister := &stubLister{customers: []customers.Customer{
		monthly("C1"), monthly("C2"), monthly("C3"),
	}}
	handler := NewBillingBatchHandler(slog.Default(), lister, &stubChecker{}, runner)

	task, err := NewBillingBatchTask(BillingBatchPayload{StartDate: "2024-03-01"})
	require.NoError(t, err)
	require.NoError(t, handler(context.Background(), task))
	require.ElementsMatch(t, []string{"C1", "C2", "C3"}, runner.runs)
}

func TestBillingBatchSkipsCustomersNotDue(t *testing.T) {
	fixedClock(t)
	runner := &stubRunner{}
	lister := &stubLister{customers: []customers.Customer{
		monthly("C-due"),
		// 45-day cycle from March 1 runs through April 14, still open on
		// April 1.
		{ID: "C-open", BillingFrequencyDays: 45, Status: customers.StatusActive},
		monthly("C-billed"),
		// Broken registry row; the batch must not abort for it.
		{ID: "C-broken", BillingFrequencyDays: 0, Status: customers.StatusActive},
	}}
	checker := &stubChecker{billed: map[string]bool{"C-billed": true}}
	handler := NewBillingBatchHandler(slog.Default(), lister, checker, runner)

	task, err := NewBillingBatchTask(BillingBatchPayload{StartDate: "2024-03-01"})
	require.NoError(t, err)
	require.NoError(t, handler(context.Background(), task))
	require.Equal(t, []string{"C-due"}, runner.runs)
}

func TestBillingBatchDefaultsStartToPreviousMonth(t *testing.T) {
	fixedClock(t)
	runner := &stubRunner{}
	lister := &stubLister{customers: []customers.Customer{monthly("C1")}}
	handler := NewBillingBatchHandler(slog.Default(), lister, &stubChecker{}, runner)

	// Empty payload: the start date is resolved when the task executes,
	// not when it was enqueued.
	task, err := NewBillingBatchTask(BillingBatchPayload{})
	require.NoError(t, err)
	require.NoError(t, handler(context.Background(), task))
	require.Equal(t, []string{"C1"}, runner.runs)
	require.Equal(t, []time.Time{time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)}, runner.starts)
}

func TestBillingBatchHandlerReportsTotalFailure(t *testing.T) {
	fixedClock(t)
	boom := errors.New("pg down")
	runner := &stubRunner{errs: map[string]error{"C1": boom, "C2": boom}}
	lister := &stubLister{customers: []customers.Customer{monthly("C1"), monthly("C2")}}
	handler := NewBillingBatchHandler(slog.Default(), lister, &stubChecker{}, runner)

	task, err := NewBillingBatchTask(BillingBatchPayload{StartDate: "2024-03-01"})
	require.NoError(t, err)
	require.ErrorIs(t, handler(context.Background(), task), boom)
}
