// Package ratecards is the rate-card registry: negotiated prices per
// customer, service and charge type. The database enforces the
// one-active-entry-per-key invariant; violations surface as
// billing.DuplicateRateError, never as silent deduplication.
package ratecards

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/warebill/warebill/internal/billing"
)

// Entry is the registry record behind billing.RateCardEntry.
type Entry struct {
	ID          int64               `json:"id"`
	CustomerID  string              `json:"customer_id"`
	ServiceType billing.ServiceType `json:"service_type"`
	ChargeType  string              `json:"charge_type"`
	Rate        decimal.Decimal     `json:"rate"`
	Currency    string              `json:"currency"`
	Unit        billing.Unit        `json:"unit"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
}

// Billing projects the registry record onto the engine's rate type.
func (e Entry) Billing() billing.RateCardEntry {
	return billing.RateCardEntry{
		ID:          e.ID,
		CustomerID:  e.CustomerID,
		ServiceType: e.ServiceType,
		ChargeType:  e.ChargeType,
		Rate:        e.Rate,
		Currency:    e.Currency,
		Unit:        e.Unit,
	}
}

// ListFilters narrows rate-card listings.
type ListFilters struct {
	CustomerID  string
	ServiceType string
}

var validServiceTypes = map[billing.ServiceType]bool{
	billing.ServiceFixedCharge:      true,
	billing.ServiceStorage:          true,
	billing.ServiceInboundHandling:  true,
	billing.ServiceOutboundHandling: true,
	billing.ServiceReturnHandling:   true,
	billing.ServiceScrapHandling:    true,
	billing.ServiceLabellingVAS:     true,
}

var validUnits = map[billing.Unit]bool{
	billing.UnitM3:  true,
	billing.UnitPAL: true,
	billing.UnitEA:  true,
	billing.UnitTON: true,
	billing.UnitMON: true,
}
