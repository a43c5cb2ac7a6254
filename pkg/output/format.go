// Package output provides utilities for formatting and displaying quotes.
package output

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/iwvelando/installment-plans/internal/quote"
	"github.com/iwvelando/installment-plans/pkg/amortization"
	"github.com/iwvelando/installment-plans/pkg/constants"
	"github.com/iwvelando/installment-plans/pkg/format"
	"github.com/iwvelando/installment-plans/pkg/mathutil"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// CSVHeader is the column layout written by CsvFormatTo.
var CSVHeader = []string{
	"quote", "customer", "item", "plan", "durationMonths",
	"advancePayment", "totalPayment", "monthlyInstallment",
}

// PrettyFormatTo writes the human-readable table to w.
func PrettyFormatTo(w io.Writer, quotes []*quote.Quote) error {
	p := message.NewPrinter(language.English)
	for i, q := range quotes {
		if _, err := fmt.Fprintf(w, "--- Available plans for %s (%s) ---\n", q.ItemName, q.CustomerName); err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "Plan           | Advance Payment | Total Payment | Monthly Installment\n"); err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "____           | _______________ | _____________ | ___________________\n"); err != nil {
			return err
		}
		for _, plan := range q.Plans {
			amounts, err := roundedAmounts(plan)
			if err != nil {
				return fmt.Errorf("%s: %w", format.PlanLabel(plan.DurationMonths), err)
			}
			_, err = p.Fprintf(w, "%-14s | $%.2f | $%.2f | $%.2f\n",
				format.PlanLabel(plan.DurationMonths), amounts[0], amounts[1], amounts[2])
			if err != nil {
				return err
			}
		}
		if len(quotes) > 1 && i < len(quotes)-1 {
			if _, err := fmt.Fprintf(w, "\n"); err != nil {
				return err
			}
		}
	}
	return nil
}

// roundedAmounts returns advance, total and installment rounded to cents.
func roundedAmounts(plan amortization.PlanQuote) ([3]float64, error) {
	var rounded [3]float64
	for i, amount := range []float64{plan.AdvancePayment, plan.TotalPayment, plan.MonthlyInstallment} {
		cents, err := mathutil.CentsDecimal(amount)
		if err != nil {
			return rounded, err
		}
		rounded[i], _ = cents.Float64()
	}
	return rounded, nil
}

// CsvFormatTo writes one CSV row per plan to w, in plan order.
func CsvFormatTo(w io.Writer, quotes []*quote.Quote) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(CSVHeader); err != nil {
		return err
	}
	for _, q := range quotes {
		for _, plan := range q.Plans {
			record := []string{
				q.ID,
				q.CustomerName,
				q.ItemName,
				format.PlanLabel(plan.DurationMonths),
				strconv.Itoa(plan.DurationMonths),
			}
			for _, amount := range []float64{plan.AdvancePayment, plan.TotalPayment, plan.MonthlyInstallment} {
				fixed, err := format.Fixed(amount)
				if err != nil {
					return fmt.Errorf("quote %s, %s: %w", q.ID, format.PlanLabel(plan.DurationMonths), err)
				}
				record = append(record, fixed)
			}
			if err := writer.Write(record); err != nil {
				return err
			}
		}
	}
	writer.Flush()
	return writer.Error()
}

// CsvString returns the CSV representation as a string.
func CsvString(quotes []*quote.Quote) string {
	var buf bytes.Buffer
	if err := CsvFormatTo(&buf, quotes); err != nil {
		return ""
	}
	return buf.String()
}

// JSONFormatTo writes the quotes as indented JSON, full precision.
func JSONFormatTo(w io.Writer, quotes []*quote.Quote) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(quotes)
}

// Write dispatches to the writer for the named output format.
func Write(w io.Writer, outputFormat string, quotes []*quote.Quote) error {
	switch outputFormat {
	case constants.OutputFormatPretty:
		return PrettyFormatTo(w, quotes)
	case constants.OutputFormatCSV:
		return CsvFormatTo(w, quotes)
	case constants.OutputFormatJSON:
		return JSONFormatTo(w, quotes)
	}
	return fmt.Errorf("unsupported output format %q", outputFormat)
}
