// Package testutil provides common utility functions for testing.
package testutil

import (
	"github.com/iwvelando/installment-plans/internal/quote"
	"github.com/iwvelando/installment-plans/pkg/amortization"
)

// FindQuote finds a quote by customer name in the results slice.
// Returns nil if no quote matches.
func FindQuote(quotes []*quote.Quote, customer string) *quote.Quote {
	for _, q := range quotes {
		if q != nil && q.CustomerName == customer {
			return q
		}
	}
	return nil
}

// FindPlan returns the plan for the given duration, or nil.
func FindPlan(plans []amortization.PlanQuote, months int) *amortization.PlanQuote {
	for i := range plans {
		if plans[i].DurationMonths == months {
			return &plans[i]
		}
	}
	return nil
}
