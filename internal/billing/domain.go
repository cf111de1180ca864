// Package billing implements the warehouse-service billing computation
// engine: period resolution, rate lookup, usage aggregation, charge pricing
// and invoice assembly. The package is pure; it performs no I/O and owns no
// clock. Fetching customers, rate cards and usage records belongs to the
// caller (see internal/runs).
package billing

import (
	"time"

	"github.com/shopspring/decimal"
)

// ServiceType enumerates the billable warehouse services.
type ServiceType string

const (
	ServiceFixedCharge      ServiceType = "FIXED_CHARGE"
	ServiceStorage          ServiceType = "STORAGE"
	ServiceInboundHandling  ServiceType = "INBOUND_HANDLING"
	ServiceOutboundHandling ServiceType = "OUTBOUND_HANDLING"
	ServiceReturnHandling   ServiceType = "RETURN_HANDLING"
	ServiceScrapHandling    ServiceType = "SCRAP_HANDLING"
	ServiceLabellingVAS     ServiceType = "LABELLING_VAS"
)

// Unit enumerates the quantity bases a rate is expressed per.
type Unit string

const (
	UnitM3  Unit = "M3"  // cubic meters
	UnitPAL Unit = "PAL" // pallets
	UnitEA  Unit = "EA"  // each
	UnitTON Unit = "TON" // tonnes
	UnitMON Unit = "MON" // fixed amount per billing period
)

// CustomerType distinguishes group companies from third parties.
type CustomerType string

const (
	CustomerInternal CustomerType = "Internal"
	CustomerExternal CustomerType = "External"
)

// Customer is the billing view of a customer record. It is immutable for
// the duration of a billing run; the registry owns the full record.
type Customer struct {
	ID                   string
	Name                 string
	Type                 CustomerType
	BillingFrequencyDays int
}

// RateCardEntry is one negotiated price. At most one active entry may
// exist per (customer, service type, charge type).
type RateCardEntry struct {
	ID          int64
	CustomerID  string
	ServiceType ServiceType
	ChargeType  string
	Rate        decimal.Decimal
	Currency    string
	Unit        Unit
}

// UsageRecord is a timestamped, quantified occurrence of a billable
// activity, supplied by the usage ledger.
type UsageRecord struct {
	CustomerID  string
	ServiceType ServiceType
	ChargeType  string
	Quantity    decimal.Decimal
	OccurredAt  time.Time
}

// BillingPeriod is the date window an invoice covers, inclusive on both
// ends.
type BillingPeriod struct {
	CustomerID    string
	StartDate     time.Time
	EndDate       time.Time
	FrequencyDays int
}

// InvoiceLine is one priced charge. Amount is Quantity times UnitRate
// rounded to two decimal places.
type InvoiceLine struct {
	ServiceType ServiceType
	ChargeType  string
	Quantity    decimal.Decimal
	UnitRate    decimal.Decimal
	Unit        Unit
	Currency    string
	Amount      decimal.Decimal
}

// Invoice is the assembled billing artifact for one customer and period.
// It is never mutated after assembly. ID and CreatedAt are stamped by the
// caller when the invoice is persisted.
type Invoice struct {
	ID          string
	CustomerID  string
	Period      BillingPeriod
	Lines       []InvoiceLine
	TotalAmount decimal.Decimal
	Currency    string
	CreatedAt   time.Time
}

// ServiceSubtotal sums line amounts for one service type.
type ServiceSubtotal struct {
	ServiceType ServiceType
	Amount      decimal.Decimal
}

// ServiceSubtotals groups line amounts by service type, preserving the
// order in which each service first appears on the invoice.
func (inv *Invoice) ServiceSubtotals() []ServiceSubtotal {
	sums := make(map[ServiceType]decimal.Decimal, len(inv.Lines))
	var order []ServiceType
	for _, ln := range inv.Lines {
		if cur, ok := sums[ln.ServiceType]; ok {
			sums[ln.ServiceType] = cur.Add(ln.Amount)
			continue
		}
		sums[ln.ServiceType] = ln.Amount
		order = append(order, ln.ServiceType)
	}
	out := make([]ServiceSubtotal, 0, len(order))
	for _, st := range order {
		out = append(out, ServiceSubtotal{ServiceType: st, Amount: sums[st]})
	}
	return out
}

// atMidnightUTC truncates a timestamp to day precision in UTC. Periods and
// usage filtering operate on whole days.
func atMidnightUTC(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
