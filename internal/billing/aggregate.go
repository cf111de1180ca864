package billing

import "github.com/shopspring/decimal"

// UsageKey identifies one aggregation bucket.
type UsageKey struct {
	ServiceType ServiceType
	ChargeType  string
}

// UsageTotals holds per-bucket quantity sums. Keys keep the order of their
// first occurrence in the input; that order is an observable contract for
// invoice line ordering.
type UsageTotals struct {
	totals map[UsageKey]decimal.Decimal
	order  []UsageKey
}

// Keys returns the bucket keys in first-occurrence order.
func (t *UsageTotals) Keys() []UsageKey {
	return t.order
}

// Quantity returns the summed quantity for a bucket.
func (t *UsageTotals) Quantity(k UsageKey) decimal.Decimal {
	return t.totals[k]
}

// Has reports whether the bucket received any usage.
func (t *UsageTotals) Has(k UsageKey) bool {
	_, ok := t.totals[k]
	return ok
}

// Len returns the number of buckets.
func (t *UsageTotals) Len() int {
	return len(t.order)
}

// AggregateUsage sums usage quantities per (service type, charge type) for
// one customer inside the period, inclusive on both ends. Buckets with no
// matching records are omitted; no zero-quantity lines are synthesized.
// A negative quantity on a record in scope fails with InvalidUsageError.
func AggregateUsage(records []UsageRecord, customerID string, period BillingPeriod) (*UsageTotals, error) {
	totals := &UsageTotals{totals: make(map[UsageKey]decimal.Decimal)}
	for _, rec := range records {
		if rec.CustomerID != customerID || !period.Contains(rec.OccurredAt) {
			continue
		}
		if rec.Quantity.IsNegative() {
			return nil, &InvalidUsageError{
				CustomerID:  rec.CustomerID,
				ServiceType: rec.ServiceType,
				ChargeType:  rec.ChargeType,
				Quantity:    rec.Quantity,
			}
		}
		k := UsageKey{ServiceType: rec.ServiceType, ChargeType: rec.ChargeType}
		if cur, ok := totals.totals[k]; ok {
			totals.totals[k] = cur.Add(rec.Quantity)
			continue
		}
		totals.totals[k] = rec.Quantity
		totals.order = append(totals.order, k)
	}
	return totals, nil
}
