// Package format renders quote values for display.
package format

import (
	"fmt"
	"strings"

	"github.com/iwvelando/installment-plans/pkg/constants"
	"github.com/iwvelando/installment-plans/pkg/mathutil"
)

// CurrencyWithSymbol returns amount with the given symbol and thousands
// separators (e.g., "$1,127.29", "-$3.46").
func CurrencyWithSymbol(symbol string, amount float64) (string, error) {
	formatted, err := NumericCurrency(amount)
	if err != nil {
		return "", err
	}
	if strings.HasPrefix(formatted, "-") {
		return "-" + symbol + formatted[1:], nil
	}
	return symbol + formatted, nil
}

// NumericCurrency returns a currency string without a currency symbol but with separators (e.g., "-1,234.56").
func NumericCurrency(amount float64) (string, error) {
	fixed, err := Fixed(amount)
	if err != nil {
		return "", err
	}
	sign := ""
	if strings.HasPrefix(fixed, "-") {
		sign = "-"
		fixed = fixed[1:]
	}

	parts := strings.SplitN(fixed, ".", 2)
	intPart := parts[0]
	decPart := "00"
	if len(parts) == 2 {
		decPart = parts[1]
	}

	if len(intPart) > 3 {
		var builder strings.Builder
		for i, digit := range intPart {
			if i > 0 && (len(intPart)-i)%3 == 0 {
				builder.WriteByte(',')
			}
			builder.WriteRune(digit)
		}
		intPart = builder.String()
	}

	return sign + intPart + "." + decPart, nil
}

// Fixed rounds amount to cents and prints it with exactly two decimals and no
// separators (e.g., "1127.29"). NaN and infinities are rejected.
func Fixed(amount float64) (string, error) {
	cents, err := mathutil.CentsDecimal(amount)
	if err != nil {
		return "", err
	}
	fixed := cents.StringFixed(constants.CentsPlaces)
	if fixed == "-0.00" {
		return "0.00", nil
	}
	return fixed, nil
}

// PlanLabel names a plan by its duration (e.g., "12 Month Plan").
func PlanLabel(months int) string {
	return fmt.Sprintf("%d Month Plan", months)
}
