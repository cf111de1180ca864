package httpx

import (
	"errors"
	"net/http"

	"github.com/warebill/warebill/internal/billing"
)

// Sentinel errors for the service layer.
var (
	ErrNotFound   = errors.New("resource not found")
	ErrDuplicate  = errors.New("duplicate entry")
	ErrValidation = errors.New("validation failed")
	ErrConflict   = errors.New("conflicting operation in progress")
)

// RespondError maps service and billing errors to RFC7807 responses. The
// billing taxonomy is unprocessable input or registry state, never an
// internal fault, so it surfaces with the offending identifiers intact.
func RespondError(w http.ResponseWriter, err error) {
	var (
		invalidPeriod    *billing.InvalidPeriodError
		duplicateRate    *billing.DuplicateRateError
		invalidUsage     *billing.InvalidUsageError
		missingRate      *billing.MissingRateError
		currencyMismatch *billing.CurrencyMismatchError
	)
	switch {
	case errors.Is(err, ErrNotFound):
		Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, ErrDuplicate), errors.As(err, &duplicateRate):
		Problem(w, http.StatusConflict, "Duplicate", err.Error())
	case errors.Is(err, ErrConflict):
		Problem(w, http.StatusConflict, "Conflict", err.Error())
	case errors.Is(err, ErrValidation), errors.As(err, &invalidPeriod), errors.As(err, &invalidUsage):
		Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	case errors.As(err, &missingRate), errors.As(err, &currencyMismatch):
		Problem(w, http.StatusUnprocessableEntity, "Billing Run Failed", err.Error())
	default:
		Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
