package amortization

import (
	"fmt"

	"github.com/iwvelando/installment-plans/pkg/constants"
	"github.com/iwvelando/installment-plans/pkg/mathutil"
	"go.uber.org/zap"
)

// Payment holds the values for a given installment.
type Payment struct {
	Month              int     `json:"month"`
	Payment            float64 `json:"payment"`
	Principal          float64 `json:"principal"`
	Interest           float64 `json:"interest"`
	RemainingPrincipal float64 `json:"remainingPrincipal"`
}

// CalculateInterestPayment calculates the interest portion of a payment.
func CalculateInterestPayment(remainingPrincipal, annualRatePercent float64) float64 {
	return remainingPrincipal * mathutil.PercentToMonthlyRate(annualRatePercent)
}

// ScheduleGenerator breaks a plan down into its monthly principal and interest.
type ScheduleGenerator struct {
	logger *zap.Logger
}

// NewScheduleGenerator creates a new generator instance
func NewScheduleGenerator(logger *zap.Logger) *ScheduleGenerator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScheduleGenerator{logger: logger}
}

// Generate creates the month-by-month amortization schedule for repaying
// principal over months at annualRatePercent. The final row clears any
// floating point residue so the remaining principal ends at exactly zero.
func (g *ScheduleGenerator) Generate(principal, annualRatePercent float64, months int) ([]Payment, error) {
	if err := ValidateInputs(principal, annualRatePercent, 0, []int{months}); err != nil {
		return nil, err
	}
	if months > constants.MaxDurationMonths {
		return nil, NewInvalidInputError("months", float64(months),
			fmt.Sprintf("must be at most %d", constants.MaxDurationMonths))
	}

	installment, err := ComputeInstallment(principal, annualRatePercent, months)
	if err != nil {
		return nil, err
	}

	schedule := make([]Payment, 0, months)
	balance := principal
	for month := 1; month <= months; month++ {
		var current Payment
		current.Month = month
		current.Payment = installment
		current.Interest = CalculateInterestPayment(balance, annualRatePercent)
		current.Principal = installment - current.Interest

		if month == months {
			residue := balance - current.Principal
			if !mathutil.IsZero(residue) {
				g.logger.Debug(fmt.Sprintf("final installment leaves residue %.6f, clearing it", residue),
					zap.String("op", "amortization.Generate"),
					zap.Int("months", months),
				)
			}
			// We will get machine error otherwise so just set to 0.
			current.RemainingPrincipal = 0
		} else {
			current.RemainingPrincipal = balance - current.Principal
		}

		schedule = append(schedule, current)
		balance = current.RemainingPrincipal
	}

	g.logger.Debug("generated amortization schedule",
		zap.String("op", "amortization.Generate"),
		zap.Float64("principal", principal),
		zap.Float64("annualRatePercent", annualRatePercent),
		zap.Int("months", months),
		zap.Float64("installment", installment),
	)
	return schedule, nil
}

// TotalInterest sums the interest paid across a schedule.
func TotalInterest(schedule []Payment) float64 {
	total := 0.0
	for _, payment := range schedule {
		total += payment.Interest
	}
	return total
}
