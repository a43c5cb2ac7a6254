// Package amortization computes equal-installment repayment plans.
//
// The calculation functions are pure: they hold no state, perform no I/O and
// never log. Values are returned at full float64 precision; rounding to cents
// is left to the presentation and export layers.
package amortization

import (
	"math"

	"github.com/iwvelando/installment-plans/pkg/constants"
	"github.com/iwvelando/installment-plans/pkg/mathutil"
)

// PlanQuote holds the computed values for one plan duration.
type PlanQuote struct {
	DurationMonths     int     `json:"durationMonths"`
	AdvancePayment     float64 `json:"advancePayment"`
	MonthlyInstallment float64 `json:"monthlyInstallment"`
	TotalPayment       float64 `json:"totalPayment"`
}

// DefaultDurations returns the plan durations offered when the caller does not
// supply any.
func DefaultDurations() []int {
	return constants.DefaultDurations()
}

// ComputeInstallment calculates the equal monthly installment that repays
// principal over the given number of months at annualRatePercent.
func ComputeInstallment(principal, annualRatePercent float64, months int) (float64, error) {
	if months < 1 {
		return 0, NewInvalidInputError("months", float64(months), "must be at least 1")
	}

	monthlyRate := mathutil.PercentToMonthlyRate(annualRatePercent)
	if monthlyRate == 0 {
		// (1+0)^n - 1 is zero, so split the principal evenly instead.
		return principal / float64(months), nil
	}

	// Same as r(1+r)^n / ((1+r)^n - 1). Log1p/Expm1 keep the denominator
	// nonzero for tiny r and finite for large n.
	denominator := -math.Expm1(-float64(months) * math.Log1p(monthlyRate))
	installment := principal * monthlyRate / denominator
	if !mathutil.IsFinite(installment) {
		return 0, NewInvalidInputError("principal", principal, "is too large to quote at this rate")
	}
	return installment, nil
}

// ComputeTotalPayment returns the total paid under a plan: every installment
// plus the advance payment.
func ComputeTotalPayment(installment float64, months int, advancePayment float64) float64 {
	return installment*float64(months) + advancePayment
}

// ComputePlans quotes one plan per duration, in the order given. Any invalid
// input rejects the whole batch and no plans are returned.
func ComputePlans(principal, annualRatePercent, advancePayment float64, durations []int) ([]PlanQuote, error) {
	if err := ValidateInputs(principal, annualRatePercent, advancePayment, durations); err != nil {
		return nil, err
	}

	plans := make([]PlanQuote, 0, len(durations))
	for _, months := range durations {
		installment, err := ComputeInstallment(principal, annualRatePercent, months)
		if err != nil {
			return nil, err
		}
		total := ComputeTotalPayment(installment, months, advancePayment)
		if !mathutil.IsFinite(total) {
			return nil, NewInvalidInputError("principal", principal, "is too large to quote at this rate")
		}
		plans = append(plans, PlanQuote{
			DurationMonths:     months,
			AdvancePayment:     advancePayment,
			MonthlyInstallment: installment,
			TotalPayment:       total,
		})
	}
	return plans, nil
}

// ValidateInputs checks the numeric preconditions shared by every plan
// calculation.
func ValidateInputs(principal, annualRatePercent, advancePayment float64, durations []int) error {
	amounts := []struct {
		field string
		value float64
	}{
		{"principal", principal},
		{"annualRatePercent", annualRatePercent},
		{"advancePayment", advancePayment},
	}
	for _, amount := range amounts {
		// NaN fails the comparison too
		if !(amount.value >= 0) {
			return NewInvalidInputError(amount.field, amount.value, "must be non-negative")
		}
		if !mathutil.IsFinite(amount.value) {
			return NewInvalidInputError(amount.field, amount.value, "must be finite")
		}
	}
	for _, months := range durations {
		if months < 1 {
			return NewInvalidInputError("durations", float64(months), "must be at least 1 month")
		}
	}
	return nil
}
