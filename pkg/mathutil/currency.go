// Package mathutil provides common mathematical utility functions.
package mathutil

import (
	"errors"
	"fmt"
	"math"

	"github.com/iwvelando/installment-plans/pkg/constants"
	"github.com/shopspring/decimal"
)

// ErrNotFinite is returned when a NaN or infinite amount reaches the
// currency boundary.
var ErrNotFinite = errors.New("amount is not a finite number")

// RoundCents rounds a value to whole cents using round-half-even. This is the
// single rounding rule applied at the presentation and export boundary.
// NaN and infinities are returned unchanged.
func RoundCents(val float64) float64 {
	d, err := CentsDecimal(val)
	if err != nil {
		return val
	}
	f, _ := d.Float64()
	return f
}

// CentsDecimal returns val as a decimal rounded half-even to cents.
func CentsDecimal(val float64) (decimal.Decimal, error) {
	if !IsFinite(val) {
		return decimal.Zero, fmt.Errorf("%w: %v", ErrNotFinite, val)
	}
	return decimal.NewFromFloat(val).RoundBank(constants.CentsPlaces), nil
}

// IsZero checks if a value is effectively zero (within tolerance)
func IsZero(val float64) bool {
	return math.Abs(val) <= constants.CurrencyTolerance
}

// IsFinite reports whether val is neither NaN nor infinite.
func IsFinite(val float64) bool {
	return !math.IsNaN(val) && !math.IsInf(val, 0)
}

// WithinTolerance checks if two values are within a specified tolerance
func WithinTolerance(val1, val2, tolerance float64) bool {
	return math.Abs(val1-val2) <= tolerance
}

// PercentToMonthlyRate converts an annual percentage rate into the fractional
// rate applied each month.
func PercentToMonthlyRate(annualRatePercent float64) float64 {
	return annualRatePercent / constants.MonthsPerYear / constants.PercentageMultiplier
}
