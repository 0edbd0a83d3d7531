package inventory

import (
	"strings"

	"github.com/shopspring/decimal"

	"freshsave/internal/core/apperror"
)

// QuantityStep is the increment used by the quick +/- controls.
const QuantityStep = 1.0

// AdjustQuantity applies delta to current and clamps the result at zero.
// Arithmetic goes through decimal so repeated 0.1 steps do not drift.
// An adjustment that leaves the quantity unchanged is rejected.
func AdjustQuantity(current, delta float64) (float64, error) {
	next := decimal.NewFromFloat(current).Add(decimal.NewFromFloat(delta))
	if next.IsNegative() {
		next = decimal.Zero
	}
	v := next.InexactFloat64()
	if v == current {
		return current, apperror.NewValidation(MsgQuantityUnchanged).
			WithDetail("quantity", current).
			WithDetail("delta", delta)
	}
	return v, nil
}

// ValidateStoredQuantity rejects quantities that must never be persisted.
func ValidateStoredQuantity(q float64) error {
	if q < 0 {
		return apperror.NewValidation(MsgQuantityNegative).WithDetail("quantity", q)
	}
	return nil
}

// SavingsPlaceholder is shown until savings tracking exists.
func SavingsPlaceholder() string {
	return "$" + decimal.Zero.StringFixed(2)
}

// ParseQuantity parses a quantity typed into the entry form, returning the
// field message on failure.
func ParseQuantity(raw string) (float64, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, FieldErrors{"quantity": MsgQuantityRequired}.Err()
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, FieldErrors{"quantity": MsgQuantityInvalid}.Err()
	}
	if !d.IsPositive() {
		return 0, FieldErrors{"quantity": MsgQuantityPositive}.Err()
	}
	return d.InexactFloat64(), nil
}
