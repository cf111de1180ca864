package customers

import (
	"fmt"
	"strings"

	"github.com/warebill/warebill/internal/billing"
	"github.com/warebill/warebill/internal/platform/httpx"
)

func validate(c Customer) error {
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("customer name is required: %w", httpx.ErrValidation)
	}
	if c.Type != billing.CustomerInternal && c.Type != billing.CustomerExternal {
		return fmt.Errorf("customer type must be Internal or External: %w", httpx.ErrValidation)
	}
	if c.BillingFrequencyDays <= 0 {
		return fmt.Errorf("billing frequency must be positive: %w", httpx.ErrValidation)
	}
	if c.Status != "" && c.Status != StatusActive && c.Status != StatusInactive {
		return fmt.Errorf("customer status must be Active or Inactive: %w", httpx.ErrValidation)
	}
	return nil
}
