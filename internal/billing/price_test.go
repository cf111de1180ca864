package billing

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func totalsFrom(t *testing.T, records ...UsageRecord) *UsageTotals {
	t.Helper()
	totals, err := AggregateUsage(records, "C2201", marchPeriod(t))
	require.NoError(t, err)
	return totals
}

func TestPriceUsageMultipliesQuantityByRate(t *testing.T) {
	idx, err := BuildRateIndex([]RateCardEntry{
		rate("C2201", ServiceStorage, "Ambient", "2.00", UnitM3),
		rate("C2201", ServiceOutboundHandling, "Outbound Each", "0.16", UnitEA),
	})
	require.NoError(t, err)

	totals := totalsFrom(t,
		usage("C2201", ServiceStorage, "Ambient", "10", date(2024, time.March, 5)),
		usage("C2201", ServiceOutboundHandling, "Outbound Each", "50", date(2024, time.March, 6)),
	)

	lines, err := PriceUsage(totals, idx, "C2201")
	require.NoError(t, err)
	require.Len(t, lines, 2)
	require.Equal(t, "20", lines[0].Amount.String())
	require.Equal(t, "8", lines[1].Amount.String())
	require.Equal(t, "AED", lines[0].Currency)
}

func TestPriceUsageIsLinearForUnitRates(t *testing.T) {
	idx, err := BuildRateIndex([]RateCardEntry{
		rate("C2201", ServiceScrapHandling, "Scrap Normal", "300.00", UnitTON),
	})
	require.NoError(t, err)

	single := totalsFrom(t, usage("C2201", ServiceScrapHandling, "Scrap Normal", "1.5", date(2024, time.March, 3)))
	double := totalsFrom(t, usage("C2201", ServiceScrapHandling, "Scrap Normal", "3", date(2024, time.March, 3)))

	singleLines, err := PriceUsage(single, idx, "C2201")
	require.NoError(t, err)
	doubleLines, err := PriceUsage(double, idx, "C2201")
	require.NoError(t, err)
	require.True(t, doubleLines[0].Amount.Equal(singleLines[0].Amount.Mul(decimal.NewFromInt(2))))
}

func TestPriceUsageRoundsHalfUpOncePerLine(t *testing.T) {
	idx, err := BuildRateIndex([]RateCardEntry{
		rate("C2201", ServiceOutboundHandling, "Outbound Each", "0.01", UnitEA),
	})
	require.NoError(t, err)

	// 12.5 x 0.01 = 0.125, half-up at the cent boundary gives 0.13.
	totals := totalsFrom(t, usage("C2201", ServiceOutboundHandling, "Outbound Each", "12.5", date(2024, time.March, 3)))
	lines, err := PriceUsage(totals, idx, "C2201")
	require.NoError(t, err)
	require.Equal(t, "0.13", lines[0].Amount.String())
}

func TestPriceUsageChargesPerPeriodEntriesOnce(t *testing.T) {
	idx, err := BuildRateIndex([]RateCardEntry{
		rate("C2201", ServiceFixedCharge, "Inventory Management", "5000.00", UnitMON),
	})
	require.NoError(t, err)

	// Many usage records against a MON entry still bill a single period
	// amount with quantity one.
	totals := totalsFrom(t,
		usage("C2201", ServiceFixedCharge, "Inventory Management", "4", date(2024, time.March, 3)),
		usage("C2201", ServiceFixedCharge, "Inventory Management", "9", date(2024, time.March, 17)),
	)
	lines, err := PriceUsage(totals, idx, "C2201")
	require.NoError(t, err)
	require.Len(t, lines, 1)
	require.True(t, lines[0].Quantity.Equal(decimal.NewFromInt(1)))
	require.Equal(t, "5000", lines[0].Amount.String())
}

func TestPriceUsageFailsOnMissingRate(t *testing.T) {
	idx, err := BuildRateIndex(nil)
	require.NoError(t, err)

	totals := totalsFrom(t, usage("C2201", ServiceScrapHandling, "Scrap Normal", "2", date(2024, time.March, 3)))
	_, err = PriceUsage(totals, idx, "C2201")
	var missing *MissingRateError
	require.ErrorAs(t, err, &missing)
	require.Equal(t, "C2201", missing.CustomerID)
	require.Equal(t, ServiceScrapHandling, missing.ServiceType)
	require.Equal(t, "Scrap Normal", missing.ChargeType)
}

func TestPerPeriodChargesBillWithoutUsage(t *testing.T) {
	entries := []RateCardEntry{
		rate("C2201", ServiceFixedCharge, "Inventory Management", "5000.00", UnitMON),
		rate("C2201", ServiceStorage, "Ambient", "2.00", UnitM3),
		rate("C2105", ServiceFixedCharge, "Inventory Management", "750.00", UnitMON),
	}

	lines := PerPeriodCharges(entries, "C2201", totalsFrom(t))
	require.Len(t, lines, 1)
	require.Equal(t, ServiceFixedCharge, lines[0].ServiceType)
	require.True(t, lines[0].Quantity.Equal(decimal.NewFromInt(1)))
	require.Equal(t, "5000", lines[0].Amount.String())
}

func TestPerPeriodChargesSkipAlreadyBilledBuckets(t *testing.T) {
	entries := []RateCardEntry{
		rate("C2201", ServiceFixedCharge, "Inventory Management", "5000.00", UnitMON),
	}
	totals := totalsFrom(t, usage("C2201", ServiceFixedCharge, "Inventory Management", "1", date(2024, time.March, 3)))
	require.Empty(t, PerPeriodCharges(entries, "C2201", totals))
}
