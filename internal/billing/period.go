package billing

import "time"

// ResolvePeriod maps a start date and billing frequency to the inclusive
// period end date. The default window covers frequencyDays days, so the
// end date is startDate plus frequencyDays minus one.
//
// Monthly billing is flagged as a 30-day frequency: a run anchored to the
// first calendar day of a month covers that whole month, whether it has
// 28, 29, 30 or 31 days. This is a named business rule, not rounding.
func ResolvePeriod(startDate time.Time, frequencyDays int) (time.Time, error) {
	if frequencyDays <= 0 {
		return time.Time{}, &InvalidPeriodError{FrequencyDays: frequencyDays}
	}
	start := atMidnightUTC(startDate)
	if frequencyDays == 30 && start.Day() == 1 {
		return start.AddDate(0, 1, -1), nil
	}
	return start.AddDate(0, 0, frequencyDays-1), nil
}

// NewPeriod resolves the end date and builds the full period value.
func NewPeriod(customerID string, startDate time.Time, frequencyDays int) (BillingPeriod, error) {
	end, err := ResolvePeriod(startDate, frequencyDays)
	if err != nil {
		return BillingPeriod{}, err
	}
	return BillingPeriod{
		CustomerID:    customerID,
		StartDate:     atMidnightUTC(startDate),
		EndDate:       end,
		FrequencyDays: frequencyDays,
	}, nil
}

// Contains reports whether a timestamp falls inside the period, inclusive
// on both ends. Comparison happens at day precision.
func (p BillingPeriod) Contains(t time.Time) bool {
	day := atMidnightUTC(t)
	return !day.Before(p.StartDate) && !day.After(p.EndDate)
}
