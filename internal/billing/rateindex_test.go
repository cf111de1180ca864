package billing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func rate(customerID string, service ServiceType, charge string, amount string, unit Unit) RateCardEntry {
	return RateCardEntry{
		CustomerID:  customerID,
		ServiceType: service,
		ChargeType:  charge,
		Rate:        decimal.RequireFromString(amount),
		Currency:    "AED",
		Unit:        unit,
	}
}

func TestBuildRateIndexLookup(t *testing.T) {
	idx, err := BuildRateIndex([]RateCardEntry{
		rate("C2201", ServiceStorage, "Ambient", "2.00", UnitM3),
		rate("C2201", ServiceStorage, "Freezer", "3.00", UnitM3),
		rate("2005070", ServiceStorage, "Ambient", "2.50", UnitM3),
	})
	require.NoError(t, err)

	entry, ok := idx.Lookup("C2201", ServiceStorage, "Freezer")
	require.True(t, ok)
	require.True(t, entry.Rate.Equal(decimal.RequireFromString("3.00")))

	// Same charge type under a different customer resolves independently.
	entry, ok = idx.Lookup("2005070", ServiceStorage, "Ambient")
	require.True(t, ok)
	require.True(t, entry.Rate.Equal(decimal.RequireFromString("2.50")))
}

func TestBuildRateIndexAbsenceIsNotAnError(t *testing.T) {
	idx, err := BuildRateIndex(nil)
	require.NoError(t, err)
	_, ok := idx.Lookup("C2201", ServiceStorage, "Ambient")
	require.False(t, ok)
}

func TestBuildRateIndexRejectsDuplicateKey(t *testing.T) {
	_, err := BuildRateIndex([]RateCardEntry{
		rate("C2201", ServiceStorage, "Ambient", "2.00", UnitM3),
		rate("C2201", ServiceStorage, "Ambient", "2.10", UnitM3),
	})
	var dup *DuplicateRateError
	require.ErrorAs(t, err, &dup)
	require.Equal(t, "C2201", dup.CustomerID)
	require.Equal(t, ServiceStorage, dup.ServiceType)
	require.Equal(t, "Ambient", dup.ChargeType)
}
