package billing

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// InvalidPeriodError reports unusable billing-period inputs.
type InvalidPeriodError struct {
	FrequencyDays int
}

func (e *InvalidPeriodError) Error() string {
	return fmt.Sprintf("billing: invalid frequency %d days, must be positive", e.FrequencyDays)
}

// DuplicateRateError reports two active rate-card entries sharing a
// (customer, service type, charge type) key. This is a data-integrity
// fault in the rate-card registry and is surfaced, never deduplicated.
type DuplicateRateError struct {
	CustomerID  string
	ServiceType ServiceType
	ChargeType  string
}

func (e *DuplicateRateError) Error() string {
	return fmt.Sprintf("billing: duplicate rate for customer %s service %s charge %q",
		e.CustomerID, e.ServiceType, e.ChargeType)
}

// InvalidUsageError reports a negative usage quantity. Corrections must be
// modeled explicitly, not summed as negative usage.
type InvalidUsageError struct {
	CustomerID  string
	ServiceType ServiceType
	ChargeType  string
	Quantity    decimal.Decimal
}

func (e *InvalidUsageError) Error() string {
	return fmt.Sprintf("billing: negative usage quantity %s for customer %s service %s charge %q",
		e.Quantity, e.CustomerID, e.ServiceType, e.ChargeType)
}

// MissingRateError reports billable usage with no matching rate-card
// entry. A run halts rather than undercharge.
type MissingRateError struct {
	CustomerID  string
	ServiceType ServiceType
	ChargeType  string
}

func (e *MissingRateError) Error() string {
	return fmt.Sprintf("billing: no rate for customer %s service %s charge %q",
		e.CustomerID, e.ServiceType, e.ChargeType)
}

// CurrencyMismatchError reports lines in more than one currency on a
// single invoice.
type CurrencyMismatchError struct {
	CustomerID string
	Want       string
	Got        string
}

func (e *CurrencyMismatchError) Error() string {
	return fmt.Sprintf("billing: mixed currencies %s and %s on invoice for customer %s",
		e.Want, e.Got, e.CustomerID)
}

// ErrorKind returns a short label for the billing error taxonomy, used for
// metrics and problem responses. Unknown errors map to "internal".
func ErrorKind(err error) string {
	var (
		invalidPeriod    *InvalidPeriodError
		duplicateRate    *DuplicateRateError
		invalidUsage     *InvalidUsageError
		missingRate      *MissingRateError
		currencyMismatch *CurrencyMismatchError
	)
	switch {
	case errors.As(err, &invalidPeriod):
		return "invalid_period"
	case errors.As(err, &duplicateRate):
		return "duplicate_rate"
	case errors.As(err, &invalidUsage):
		return "invalid_usage"
	case errors.As(err, &missingRate):
		return "missing_rate"
	case errors.As(err, &currencyMismatch):
		return "currency_mismatch"
	default:
		return "internal"
	}
}
