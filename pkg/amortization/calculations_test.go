package amortization

import (
	"errors"
	"math"
	"testing"

	"github.com/iwvelando/installment-plans/pkg/mathutil"
)

func TestComputeInstallment(t *testing.T) {
	tests := []struct {
		name              string
		principal         float64
		annualRatePercent float64
		months            int
		expectedRange     []float64 // [min, max] expected range
	}{
		{
			name:              "Twelve month plan at five percent",
			principal:         1000,
			annualRatePercent: 5.0,
			months:            12,
			expectedRange:     []float64{85.60, 85.61}, // 85.6075
		},
		{
			name:              "Single month plan",
			principal:         1000,
			annualRatePercent: 5.0,
			months:            1,
			expectedRange:     []float64{1004.16, 1004.17}, // one month of interest
		},
		{
			name:              "Zero interest",
			principal:         1200,
			annualRatePercent: 0.0,
			months:            4,
			expectedRange:     []float64{300, 300},
		},
		{
			name:              "Zero principal",
			principal:         0,
			annualRatePercent: 18.0,
			months:            8,
			expectedRange:     []float64{0, 0},
		},
		{
			name:              "High interest",
			principal:         10000,
			annualRatePercent: 18.0,
			months:            36,
			expectedRange:     []float64{360, 380}, // Around $361.52
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := ComputeInstallment(tt.principal, tt.annualRatePercent, tt.months)
			if err != nil {
				t.Fatalf("ComputeInstallment() error = %v", err)
			}

			if result < tt.expectedRange[0] || result > tt.expectedRange[1] {
				t.Errorf("ComputeInstallment() = %.4f, expected range [%.2f, %.2f]",
					result, tt.expectedRange[0], tt.expectedRange[1])
			}
		})
	}
}

func TestComputeInstallmentZeroRateIsExactDivision(t *testing.T) {
	cases := []struct {
		principal float64
		months    int
	}{
		{1000, 3},
		{1200, 4},
		{999.99, 7},
		{0.01, 12},
	}

	for _, c := range cases {
		result, err := ComputeInstallment(c.principal, 0, c.months)
		if err != nil {
			t.Fatalf("ComputeInstallment() error = %v", err)
		}
		if result != c.principal/float64(c.months) {
			t.Errorf("ComputeInstallment(%v, 0, %d) = %v, expected exactly %v",
				c.principal, c.months, result, c.principal/float64(c.months))
		}
	}
}

func TestComputeInstallmentRejectsZeroMonths(t *testing.T) {
	_, err := ComputeInstallment(1000, 5, 0)
	if err == nil {
		t.Fatal("expected error for zero months")
	}

	var invalid *InvalidInputError
	if !errors.As(err, &invalid) {
		t.Fatalf("expected InvalidInputError, got %T", err)
	}
	if invalid.Field != "months" {
		t.Errorf("expected field months, got %s", invalid.Field)
	}
}

func TestComputeInstallmentNonNegative(t *testing.T) {
	for _, principal := range []float64{0, 1, 250, 1000, 1e7} {
		for _, rate := range []float64{0, 1e-14, 0.5, 5, 29.99, 100} {
			for months := 1; months <= 24; months++ {
				result, err := ComputeInstallment(principal, rate, months)
				if err != nil {
					t.Fatalf("ComputeInstallment(%v, %v, %d) error = %v", principal, rate, months, err)
				}
				if result < 0 {
					t.Errorf("ComputeInstallment(%v, %v, %d) = %v, expected non-negative", principal, rate, months, result)
				}
			}
		}
	}
}

func TestComputeInstallmentExtremeTerms(t *testing.T) {
	tests := []struct {
		name      string
		principal float64
		rate      float64
		months    int
		expected  float64
		tolerance float64
	}{
		{"Tiny rate tends to even split", 1000, 1e-14, 12, 1000.0 / 12, 1e-6},
		{"Tiny rate with zero principal", 0, 1e-14, 12, 0, 0},
		{"Subnormal rate", 1000, 5e-320, 4, 250, 1e-6},
		{"Million months tends to interest only", 1000, 5, 1_000_000, 1000 * 5.0 / 1200, 1e-9},
		{"Million months at tiny rate", 1000, 1e-14, 1_000_000, 1000.0 / 1_000_000, 1e-9},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := ComputeInstallment(tt.principal, tt.rate, tt.months)
			if err != nil {
				t.Fatalf("ComputeInstallment() error = %v", err)
			}
			if !mathutil.IsFinite(result) || result < 0 {
				t.Fatalf("ComputeInstallment(%v, %v, %d) = %v, expected finite and non-negative",
					tt.principal, tt.rate, tt.months, result)
			}
			if math.Abs(result-tt.expected) > tt.tolerance {
				t.Errorf("ComputeInstallment(%v, %v, %d) = %v, expected about %v",
					tt.principal, tt.rate, tt.months, result, tt.expected)
			}
		})
	}
}

func TestComputePlansExtremeInputsStayFinite(t *testing.T) {
	cases := []struct {
		principal float64
		rate      float64
		durations []int
	}{
		{1000, 1e-14, []int{12}},
		{0, 1e-14, []int{12}},
		{1000, 5, []int{1_000_000}},
	}

	for _, c := range cases {
		plans, err := ComputePlans(c.principal, c.rate, 0, c.durations)
		if err != nil {
			t.Fatalf("ComputePlans(%v, %v, 0, %v) error = %v", c.principal, c.rate, c.durations, err)
		}
		for _, plan := range plans {
			if !mathutil.IsFinite(plan.MonthlyInstallment) || !mathutil.IsFinite(plan.TotalPayment) {
				t.Errorf("ComputePlans(%v, %v, 0, %v) returned non-finite plan %+v", c.principal, c.rate, c.durations, plan)
			}
		}
	}
}

func TestComputePlansRejectsUnrepresentableTotals(t *testing.T) {
	_, err := ComputePlans(math.MaxFloat64, 1e300, 0, []int{12})
	if !IsInvalidInput(err) {
		t.Fatalf("expected InvalidInputError for overflowing installment, got %v", err)
	}

	_, err = ComputePlans(math.MaxFloat64/2, 0, math.MaxFloat64, []int{1})
	if !IsInvalidInput(err) {
		t.Fatalf("expected InvalidInputError for overflowing total, got %v", err)
	}
}

func TestComputeInstallmentDecreasesWithDuration(t *testing.T) {
	previous := math.Inf(1)
	for months := 1; months <= 60; months++ {
		result, err := ComputeInstallment(1000, 5, months)
		if err != nil {
			t.Fatalf("ComputeInstallment() error = %v", err)
		}
		if result >= previous {
			t.Fatalf("installment for %d months (%v) should be below %d months (%v)", months, result, months-1, previous)
		}
		previous = result
	}
}

func TestComputeTotalPayment(t *testing.T) {
	tests := []struct {
		name        string
		installment float64
		months      int
		advance     float64
		expected    float64
	}{
		{"No advance", 300, 4, 0, 1200},
		{"With advance", 85.5, 12, 100, 1126},
		{"Zero installment", 0, 8, 250, 250},
		{"Fractional installment", 0.25, 3, 0.5, 1.25},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ComputeTotalPayment(tt.installment, tt.months, tt.advance)
			if result != tt.installment*float64(tt.months)+tt.advance {
				t.Errorf("ComputeTotalPayment() = %v, expected identity value", result)
			}
			if math.Abs(result-tt.expected) > 1e-9 {
				t.Errorf("ComputeTotalPayment() = %v, expected %v", result, tt.expected)
			}
		})
	}
}

func TestComputeTotalPaymentPropagatesNonFinite(t *testing.T) {
	if result := ComputeTotalPayment(math.NaN(), 4, 10); !math.IsNaN(result) {
		t.Errorf("expected NaN to propagate, got %v", result)
	}
	if result := ComputeTotalPayment(10, 4, math.Inf(1)); !math.IsInf(result, 1) {
		t.Errorf("expected +Inf to propagate, got %v", result)
	}
}

func TestComputePlans(t *testing.T) {
	plans, err := ComputePlans(1000, 5, 100, DefaultDurations())
	if err != nil {
		t.Fatalf("ComputePlans() error = %v", err)
	}
	if len(plans) != 4 {
		t.Fatalf("expected 4 plans, got %d", len(plans))
	}

	expected := []struct {
		months      int
		installment float64
		total       float64
	}{
		{1, 1004.17, 1104.17},
		{4, 252.61, 1110.44},
		{8, 127.36, 1118.84},
		{12, 85.61, 1127.29},
	}

	for i, want := range expected {
		plan := plans[i]
		if plan.DurationMonths != want.months {
			t.Errorf("plan %d: duration = %d, expected %d", i, plan.DurationMonths, want.months)
		}
		if plan.AdvancePayment != 100 {
			t.Errorf("plan %d: advance = %v, expected 100", i, plan.AdvancePayment)
		}
		if got := mathutil.RoundCents(plan.MonthlyInstallment); got != want.installment {
			t.Errorf("plan %d: installment = %.2f, expected %.2f", i, got, want.installment)
		}
		if got := mathutil.RoundCents(plan.TotalPayment); got != want.total {
			t.Errorf("plan %d: total = %.2f, expected %.2f", i, got, want.total)
		}
		if plan.TotalPayment < plan.AdvancePayment {
			t.Errorf("plan %d: total %v below advance %v", i, plan.TotalPayment, plan.AdvancePayment)
		}
	}
}

func TestComputePlansZeroRate(t *testing.T) {
	plans, err := ComputePlans(1200, 0, 0, []int{4})
	if err != nil {
		t.Fatalf("ComputePlans() error = %v", err)
	}
	if plans[0].MonthlyInstallment != 300 {
		t.Errorf("installment = %v, expected 300", plans[0].MonthlyInstallment)
	}
	if plans[0].TotalPayment != 1200 {
		t.Errorf("total = %v, expected 1200", plans[0].TotalPayment)
	}
}

func TestComputePlansPreservesOrder(t *testing.T) {
	durations := []int{12, 1, 8, 4, 8}
	plans, err := ComputePlans(5000, 7.5, 0, durations)
	if err != nil {
		t.Fatalf("ComputePlans() error = %v", err)
	}
	if len(plans) != len(durations) {
		t.Fatalf("expected %d plans, got %d", len(durations), len(plans))
	}
	for i, months := range durations {
		if plans[i].DurationMonths != months {
			t.Errorf("plan %d: duration = %d, expected %d", i, plans[i].DurationMonths, months)
		}
	}
}

func TestComputePlansEmptyDurations(t *testing.T) {
	plans, err := ComputePlans(1000, 5, 0, nil)
	if err != nil {
		t.Fatalf("ComputePlans() error = %v", err)
	}
	if len(plans) != 0 {
		t.Errorf("expected no plans, got %d", len(plans))
	}
}

func TestComputePlansRejectsInvalidInput(t *testing.T) {
	tests := []struct {
		name      string
		principal float64
		rate      float64
		advance   float64
		durations []int
		field     string
	}{
		{"Negative principal", -1, 5, 100, []int{1}, "principal"},
		{"Negative rate", 1000, -0.5, 100, []int{1}, "annualRatePercent"},
		{"Negative advance", 1000, 5, -100, []int{1}, "advancePayment"},
		{"Zero duration", 1000, 5, 100, []int{0}, "durations"},
		{"Negative duration after valid ones", 1000, 5, 100, []int{1, 4, -8}, "durations"},
		{"NaN principal", math.NaN(), 5, 100, []int{1}, "principal"},
		{"Infinite rate", 1000, math.Inf(1), 100, []int{1}, "annualRatePercent"},
		{"Infinite advance", 1000, 5, math.Inf(1), []int{1}, "advancePayment"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plans, err := ComputePlans(tt.principal, tt.rate, tt.advance, tt.durations)
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if plans != nil {
				t.Errorf("expected no partial results, got %d plans", len(plans))
			}
			if !errors.Is(err, ErrInvalidInput) {
				t.Errorf("expected errors.Is(err, ErrInvalidInput), got %v", err)
			}

			var invalid *InvalidInputError
			if !errors.As(err, &invalid) {
				t.Fatalf("expected InvalidInputError, got %T", err)
			}
			if invalid.Field != tt.field {
				t.Errorf("expected field %s, got %s", tt.field, invalid.Field)
			}
		})
	}
}

func TestComputePlansIsDeterministic(t *testing.T) {
	first, err := ComputePlans(2500, 12.5, 300, DefaultDurations())
	if err != nil {
		t.Fatalf("ComputePlans() error = %v", err)
	}
	second, err := ComputePlans(2500, 12.5, 300, DefaultDurations())
	if err != nil {
		t.Fatalf("ComputePlans() error = %v", err)
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("plan %d differs between calls: %+v vs %+v", i, first[i], second[i])
		}
	}
}

func TestIsInvalidInput(t *testing.T) {
	if IsInvalidInput(errors.New("other")) {
		t.Error("plain error should not be reported as invalid input")
	}
	if !IsInvalidInput(NewInvalidInputError("principal", -1, "must be non-negative")) {
		t.Error("InvalidInputError should be reported as invalid input")
	}
}
