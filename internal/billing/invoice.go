package billing

import "github.com/shopspring/decimal"

// AssembleInvoice combines priced lines into the final invoice. Line order
// is preserved exactly as received. All lines must share one currency;
// the total is the exact sum of the already-rounded line amounts.
func AssembleInvoice(customer Customer, period BillingPeriod, lines []InvoiceLine) (*Invoice, error) {
	var currency string
	total := decimal.Zero
	for _, ln := range lines {
		if currency == "" {
			currency = ln.Currency
		} else if ln.Currency != currency {
			return nil, &CurrencyMismatchError{
				CustomerID: customer.ID,
				Want:       currency,
				Got:        ln.Currency,
			}
		}
		total = total.Add(ln.Amount)
	}
	return &Invoice{
		CustomerID:  customer.ID,
		Period:      period,
		Lines:       lines,
		TotalAmount: total,
		Currency:    currency,
	}, nil
}
