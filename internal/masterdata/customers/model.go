// Package customers is the customer registry: the system of record for
// who gets billed and how often.
package customers

import (
	"time"

	"github.com/warebill/warebill/internal/billing"
)

// Customer statuses.
const (
	StatusActive   = "Active"
	StatusInactive = "Inactive"
)

// Customer is the registry record behind billing.Customer.
type Customer struct {
	ID                   string               `json:"id"`
	Name                 string               `json:"name"`
	Type                 billing.CustomerType `json:"type"`
	BillingFrequencyDays int                  `json:"billing_frequency_days"`
	Status               string               `json:"status"`
	CreatedAt            time.Time            `json:"created_at"`
	UpdatedAt            time.Time            `json:"updated_at"`
}

// Billing projects the registry record onto the immutable view the billing
// engine consumes.
func (c Customer) Billing() billing.Customer {
	return billing.Customer{
		ID:                   c.ID,
		Name:                 c.Name,
		Type:                 c.Type,
		BillingFrequencyDays: c.BillingFrequencyDays,
	}
}

// ListFilters narrows customer listings.
type ListFilters struct {
	Type   string
	Status string
	Search string
}
