package billing

import "github.com/shopspring/decimal"

var one = decimal.NewFromInt(1)

// PriceUsage turns aggregated usage into invoice lines, preserving bucket
// order. Usage with no matching rate fails with MissingRateError; a run
// must halt rather than silently omit a charged activity.
//
// Per-period entries (MON unit, which covers the FixedCharge service) bill
// quantity one regardless of how much usage landed in the window; the rate
// already is the per-period amount. Every other unit multiplies quantity
// by rate. Amounts round half-up to two decimals, once per line.
func PriceUsage(totals *UsageTotals, idx *RateIndex, customerID string) ([]InvoiceLine, error) {
	lines := make([]InvoiceLine, 0, totals.Len())
	for _, k := range totals.Keys() {
		entry, ok := idx.Lookup(customerID, k.ServiceType, k.ChargeType)
		if !ok {
			return nil, &MissingRateError{
				CustomerID:  customerID,
				ServiceType: k.ServiceType,
				ChargeType:  k.ChargeType,
			}
		}
		lines = append(lines, newLine(entry, totals.Quantity(k)))
	}
	return lines, nil
}

// PerPeriodCharges emits one line per MON-unit rate entry that produced no
// usage bucket. Fixed charges are owed whether or not any activity was
// recorded in the period.
func PerPeriodCharges(entries []RateCardEntry, customerID string, billed *UsageTotals) []InvoiceLine {
	var lines []InvoiceLine
	for _, e := range entries {
		if e.CustomerID != customerID || e.Unit != UnitMON {
			continue
		}
		if billed.Has(UsageKey{ServiceType: e.ServiceType, ChargeType: e.ChargeType}) {
			continue
		}
		lines = append(lines, newLine(e, decimal.Zero))
	}
	return lines
}

func newLine(entry RateCardEntry, quantity decimal.Decimal) InvoiceLine {
	billed := quantity
	if entry.Unit == UnitMON {
		billed = one
	}
	// Round applies half away from zero; over non-negative amounts that is
	// round-half-up. The total never re-rounds line amounts.
	return InvoiceLine{
		ServiceType: entry.ServiceType,
		ChargeType:  entry.ChargeType,
		Quantity:    billed,
		UnitRate:    entry.Rate,
		Unit:        entry.Unit,
		Currency:    entry.Currency,
		Amount:      billed.Mul(entry.Rate).Round(2),
	}
}
