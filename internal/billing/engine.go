package billing

import "time"

// ComputeInvoice runs the whole pipeline over already-fetched collections:
// resolve the period, aggregate usage inside it, index and match rates,
// price each bucket, append per-period fixed charges, assemble the
// invoice. Pure and deterministic; any error aborts the run with no
// partial invoice.
//
// Line order: usage buckets in first-occurrence order, then MON-unit
// entries without usage in rate-card order.
func ComputeInvoice(customer Customer, startDate time.Time, rates []RateCardEntry, usage []UsageRecord) (*Invoice, error) {
	period, err := NewPeriod(customer.ID, startDate, customer.BillingFrequencyDays)
	if err != nil {
		return nil, err
	}
	totals, err := AggregateUsage(usage, customer.ID, period)
	if err != nil {
		return nil, err
	}
	idx, err := BuildRateIndex(rates)
	if err != nil {
		return nil, err
	}
	lines, err := PriceUsage(totals, idx, customer.ID)
	if err != nil {
		return nil, err
	}
	lines = append(lines, PerPeriodCharges(rates, customer.ID, totals)...)
	return AssembleInvoice(customer, period, lines)
}
