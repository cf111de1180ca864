package ratecards

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/warebill/warebill/internal/billing"
	"github.com/warebill/warebill/internal/platform/httpx"
)

type memoryRepo struct {
	entries []Entry
	nextID  int64
}

type entryKey struct {
	customerID  string
	serviceType billing.ServiceType
	chargeType  string
}

func (r *memoryRepo) List(ctx context.Context, filters ListFilters) ([]Entry, error) {
	var out []Entry
	for _, e := range r.entries {
		if filters.CustomerID != "" && e.CustomerID != filters.CustomerID {
			continue
		}
		if filters.ServiceType != "" && string(e.ServiceType) != filters.ServiceType {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

func (r *memoryRepo) Get(ctx context.Context, id int64) (Entry, error) {
	for _, e := range r.entries {
		if e.ID == id {
			return e, nil
		}
	}
	return Entry{}, httpx.ErrNotFound
}

func (r *memoryRepo) Create(ctx context.Context, e Entry) (Entry, error) {
	key := entryKey{e.CustomerID, e.ServiceType, e.ChargeType}
	for _, existing := range r.entries {
		if (entryKey{existing.CustomerID, existing.ServiceType, existing.ChargeType}) == key {
			return Entry{}, &billing.DuplicateRateError{
				CustomerID:  e.CustomerID,
				ServiceType: e.ServiceType,
				ChargeType:  e.ChargeType,
			}
		}
	}
	r.nextID++
	e.ID = r.nextID
	r.entries = append(r.entries, e)
	return e, nil
}

func (r *memoryRepo) Update(ctx context.Context, id int64, e Entry) error {
	for i := range r.entries {
		if r.entries[i].ID == id {
			r.entries[i].Rate = e.Rate
			r.entries[i].Currency = e.Currency
			r.entries[i].Unit = e.Unit
			return nil
		}
	}
	return httpx.ErrNotFound
}

func (r *memoryRepo) Delete(ctx context.Context, id int64) error {
	for i := range r.entries {
		if r.entries[i].ID == id {
			r.entries = append(r.entries[:i], r.entries[i+1:]...)
			return nil
		}
	}
	return httpx.ErrNotFound
}

func validEntry() Entry {
	return Entry{
		CustomerID:  "C2201",
		ServiceType: billing.ServiceStorage,
		ChargeType:  "Ambient",
		Rate:        decimal.RequireFromString("2.00"),
		Currency:    "AED",
		Unit:        billing.UnitM3,
	}
}

func TestCreateAndResolveRateCard(t *testing.T) {
	svc := NewService(&memoryRepo{})
	_, err := svc.Create(context.Background(), validEntry())
	require.NoError(t, err)

	other := validEntry()
	other.ChargeType = "Freezer"
	other.Rate = decimal.RequireFromString("3.00")
	_, err = svc.Create(context.Background(), other)
	require.NoError(t, err)

	card, err := svc.RateCard(context.Background(), "C2201")
	require.NoError(t, err)
	require.Len(t, card, 2)
	require.Equal(t, "Ambient", card[0].ChargeType)
	require.Equal(t, "Freezer", card[1].ChargeType)
}

func TestCreateRejectsDuplicateKey(t *testing.T) {
	svc := NewService(&memoryRepo{})
	_, err := svc.Create(context.Background(), validEntry())
	require.NoError(t, err)

	dup := validEntry()
	dup.Rate = decimal.RequireFromString("2.50")
	_, err = svc.Create(context.Background(), dup)
	var dupErr *billing.DuplicateRateError
	require.ErrorAs(t, err, &dupErr)
	require.Equal(t, "C2201", dupErr.CustomerID)
}

func TestCreateValidation(t *testing.T) {
	svc := NewService(&memoryRepo{})
	cases := map[string]func(*Entry){
		"missing customer": func(e *Entry) { e.CustomerID = "" },
		"bad service type": func(e *Entry) { e.ServiceType = "PARKING" },
		"missing charge":   func(e *Entry) { e.ChargeType = " " },
		"negative rate":    func(e *Entry) { e.Rate = decimal.RequireFromString("-1") },
		"bad currency":     func(e *Entry) { e.Currency = "DIRHAM" },
		"bad unit":         func(e *Entry) { e.Unit = "KG" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			e := validEntry()
			mutate(&e)
			_, err := svc.Create(context.Background(), e)
			require.ErrorIs(t, err, httpx.ErrValidation)
		})
	}
}

func TestZeroRateIsAllowed(t *testing.T) {
	// Waived charges are modeled as a zero rate, not a missing entry.
	svc := NewService(&memoryRepo{})
	e := validEntry()
	e.Rate = decimal.Zero
	_, err := svc.Create(context.Background(), e)
	require.NoError(t, err)
}
