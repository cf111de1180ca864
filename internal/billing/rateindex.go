package billing

type rateKey struct {
	customerID  string
	serviceType ServiceType
	chargeType  string
}

// RateIndex is an in-memory lookup over rate-card entries keyed by
// (customer, service type, charge type). Built once per run.
type RateIndex struct {
	entries map[rateKey]RateCardEntry
}

// BuildRateIndex indexes the given entries. Two entries sharing a key make
// the rate card ambiguous and fail the build with DuplicateRateError.
func BuildRateIndex(entries []RateCardEntry) (*RateIndex, error) {
	idx := &RateIndex{entries: make(map[rateKey]RateCardEntry, len(entries))}
	for _, e := range entries {
		k := rateKey{customerID: e.CustomerID, serviceType: e.ServiceType, chargeType: e.ChargeType}
		if _, exists := idx.entries[k]; exists {
			return nil, &DuplicateRateError{
				CustomerID:  e.CustomerID,
				ServiceType: e.ServiceType,
				ChargeType:  e.ChargeType,
			}
		}
		idx.entries[k] = e
	}
	return idx, nil
}

// Lookup returns the entry for the key. Absence is not an error at this
// layer; the charge calculator decides how to react.
func (idx *RateIndex) Lookup(customerID string, service ServiceType, charge string) (RateCardEntry, bool) {
	e, ok := idx.entries[rateKey{customerID: customerID, serviceType: service, chargeType: charge}]
	return e, ok
}
