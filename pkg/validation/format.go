// Package validation provides common validation utilities.
package validation

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/iwvelando/installment-plans/pkg/constants"
)

// ValidateOutputFormat checks if the output format is one of the supported formats.
func ValidateOutputFormat(format string) error {
	switch format {
	case constants.OutputFormatPretty, constants.OutputFormatCSV, constants.OutputFormatJSON:
		return nil
	}
	return fmt.Errorf("expected output format of %s, %s or %s, got %s",
		constants.OutputFormatPretty, constants.OutputFormatCSV, constants.OutputFormatJSON, format)
}

// ValidateExportFormat checks if the export format is one of the supported formats.
func ValidateExportFormat(format string) error {
	if format != constants.ExportFormatPDF && format != constants.ExportFormatCSV {
		return fmt.Errorf("expected export format of %s or %s, got %s",
			constants.ExportFormatPDF, constants.ExportFormatCSV, format)
	}
	return nil
}

// ValidateDurations checks that every plan duration is between one month and
// constants.MaxDurationMonths.
func ValidateDurations(durations []int) error {
	for _, months := range durations {
		if months < 1 {
			return fmt.Errorf("plan duration must be at least 1 month, got %d", months)
		}
		if months > constants.MaxDurationMonths {
			return fmt.Errorf("plan duration must be at most %d months, got %d", constants.MaxDurationMonths, months)
		}
	}
	return nil
}

// ParseDurations parses a comma separated list of month counts such as
// "1,4,8,12". Blank input yields nil so callers can fall back to defaults.
func ParseDurations(value string) ([]int, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil, nil
	}

	fields := strings.Split(trimmed, ",")
	durations := make([]int, 0, len(fields))
	for _, field := range fields {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		months, err := strconv.Atoi(field)
		if err != nil {
			return nil, fmt.Errorf("invalid duration %q: %w", field, err)
		}
		durations = append(durations, months)
	}

	if err := ValidateDurations(durations); err != nil {
		return nil, err
	}
	return durations, nil
}
