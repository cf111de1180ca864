package usage

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/warebill/warebill/internal/billing"
	"github.com/warebill/warebill/internal/platform/httpx"
)

type memoryRepo struct {
	records []billing.UsageRecord
}

func (r *memoryRepo) Insert(ctx context.Context, records []billing.UsageRecord) error {
	r.records = append(r.records, records...)
	return nil
}

func (r *memoryRepo) ListRange(ctx context.Context, customerID string, start, end time.Time) ([]billing.UsageRecord, error) {
	var out []billing.UsageRecord
	for _, rec := range r.records {
		if rec.CustomerID != customerID {
			continue
		}
		if rec.OccurredAt.Before(start) || rec.OccurredAt.After(end.AddDate(0, 0, 1)) {
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}

func record(customerID, charge, qty string, occurred time.Time) billing.UsageRecord {
	return billing.UsageRecord{
		CustomerID:  customerID,
		ServiceType: billing.ServiceStorage,
		ChargeType:  charge,
		Quantity:    decimal.RequireFromString(qty),
		OccurredAt:  occurred,
	}
}

func TestRecordAppendsToLedger(t *testing.T) {
	repo := &memoryRepo{}
	svc := NewService(repo)

	occurred := time.Date(2024, time.March, 5, 10, 0, 0, 0, time.UTC)
	err := svc.Record(context.Background(), []billing.UsageRecord{
		record("C2201", "Ambient", "12.5", occurred),
		record("C2201", "Dry", "4", occurred),
	})
	require.NoError(t, err)
	require.Len(t, repo.records, 2)
}

func TestRecordRejectsNegativeQuantity(t *testing.T) {
	repo := &memoryRepo{}
	svc := NewService(repo)

	err := svc.Record(context.Background(), []billing.UsageRecord{
		record("C2201", "Ambient", "-1", time.Now()),
	})
	var invalid *billing.InvalidUsageError
	require.ErrorAs(t, err, &invalid)
	// Nothing lands in the ledger when any record is invalid.
	require.Empty(t, repo.records)
}

func TestRecordValidatesShape(t *testing.T) {
	svc := NewService(&memoryRepo{})
	cases := map[string][]billing.UsageRecord{
		"empty batch":       {},
		"missing customer":  {record("", "Ambient", "1", time.Now())},
		"missing charge":    {record("C2201", " ", "1", time.Now())},
		"missing timestamp": {record("C2201", "Ambient", "1", time.Time{})},
	}
	for name, records := range cases {
		t.Run(name, func(t *testing.T) {
			err := svc.Record(context.Background(), records)
			require.ErrorIs(t, err, httpx.ErrValidation)
		})
	}
}

func TestUsageRejectsInvertedWindow(t *testing.T) {
	svc := NewService(&memoryRepo{})
	start := time.Date(2024, time.March, 31, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)
	_, err := svc.Usage(context.Background(), "C2201", start, end)
	require.ErrorIs(t, err, httpx.ErrValidation)
}
