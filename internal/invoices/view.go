package invoices

import (
	"time"

	"github.com/warebill/warebill/internal/billing"
)

// LineView is the wire shape of one invoice line.
type LineView struct {
	ServiceType string `json:"service_type"`
	ChargeType  string `json:"charge_type"`
	Quantity    string `json:"quantity"`
	UnitRate    string `json:"unit_rate"`
	Unit        string `json:"unit"`
	Currency    string `json:"currency"`
	Amount      string `json:"amount"`
}

// SubtotalView is the wire shape of one per-service subtotal.
type SubtotalView struct {
	ServiceType string `json:"service_type"`
	Amount      string `json:"amount"`
}

// View is the wire shape of a full invoice. Monetary values are rendered
// as strings so clients never touch binary floats.
type View struct {
	ID            string         `json:"id"`
	CustomerID    string         `json:"customer_id"`
	PeriodStart   string         `json:"period_start"`
	PeriodEnd     string         `json:"period_end"`
	FrequencyDays int            `json:"frequency_days"`
	Lines         []LineView     `json:"lines"`
	Subtotals     []SubtotalView `json:"subtotals"`
	Currency      string         `json:"currency"`
	TotalAmount   string         `json:"total_amount"`
	CreatedAt     time.Time      `json:"created_at"`
}

// NewView projects a domain invoice into its wire shape.
func NewView(inv *billing.Invoice) View {
	v := View{
		ID:            inv.ID,
		CustomerID:    inv.CustomerID,
		PeriodStart:   inv.Period.StartDate.Format("2006-01-02"),
		PeriodEnd:     inv.Period.EndDate.Format("2006-01-02"),
		FrequencyDays: inv.Period.FrequencyDays,
		Lines:         make([]LineView, 0, len(inv.Lines)),
		Currency:      inv.Currency,
		TotalAmount:   inv.TotalAmount.StringFixed(2),
		CreatedAt:     inv.CreatedAt,
	}
	for _, ln := range inv.Lines {
		v.Lines = append(v.Lines, LineView{
			ServiceType: string(ln.ServiceType),
			ChargeType:  ln.ChargeType,
			Quantity:    ln.Quantity.String(),
			UnitRate:    ln.UnitRate.String(),
			Unit:        string(ln.Unit),
			Currency:    ln.Currency,
			Amount:      ln.Amount.StringFixed(2),
		})
	}
	for _, sub := range inv.ServiceSubtotals() {
		v.Subtotals = append(v.Subtotals, SubtotalView{
			ServiceType: string(sub.ServiceType),
			Amount:      sub.Amount.StringFixed(2),
		})
	}
	return v
}
