// Package constants provides shared constants for the installment-plans application.
package constants

// IssueDateLayout is the date format printed on exported quote documents.
const IssueDateLayout = "2006-01-02"

// Financial constants
const (
	// MonthsPerYear is the number of months in a year
	MonthsPerYear = 12

	// CentsPlaces is the number of decimal places kept when rounding currency
	CentsPlaces = 2

	// PercentageMultiplier is used for percentage conversions
	PercentageMultiplier = 100.0

	// CurrencyTolerance is the tolerance for currency comparisons (1 cent)
	CurrencyTolerance = 0.01
)

// DefaultDurations returns the plan durations, in months, offered when none
// are configured. A new slice is returned on every call.
func DefaultDurations() []int {
	return []int{1, 4, 8, 12}
}

// Output format constants
const (
	// OutputFormatPretty is the human-readable output format
	OutputFormatPretty = "pretty"

	// OutputFormatCSV is the CSV output format
	OutputFormatCSV = "csv"

	// OutputFormatJSON is the JSON output format
	OutputFormatJSON = "json"
)

// Export format constants
const (
	// ExportFormatPDF is the printable summary document
	ExportFormatPDF = "pdf"

	// ExportFormatCSV is the spreadsheet-friendly summary document
	ExportFormatCSV = "csv"
)

// Document defaults
const (
	// DefaultDocumentTitle is the heading printed on exported documents
	DefaultDocumentTitle = "Electronics Plan Details"

	// DefaultItemName is used when a quote does not name the item
	DefaultItemName = "Sample Item"

	// DefaultCustomerName is used when a quote does not name the customer
	DefaultCustomerName = "John Doe"

	// DefaultCurrencySymbol prefixes formatted currency values
	DefaultCurrencySymbol = "$"

	// ExportFileSuffix is appended to the item name to form download file names
	ExportFileSuffix = "_Installment_Plan"
)

// DefaultFooter returns the fixed footer lines printed on exported documents.
func DefaultFooter() []string {
	return []string{
		"Opp. Tariq Cash And Carry Sunder Road, Raiwind",
		"Made by Patla",
	}
}

// Configuration file constants
const (
	// DefaultConfigFile is the default configuration file name
	DefaultConfigFile = "config.yaml"

	// ExampleConfigFile is the example configuration file name
	ExampleConfigFile = "config.yaml.example"

	// DefaultServerConfigFile is the default server configuration file name
	DefaultServerConfigFile = "server-config.yaml"

	// EnvPrefix is the prefix for environment variable overrides
	EnvPrefix = "INSTALLMENT"
)

// Server configuration defaults
const (
	// DefaultServerAddress is the default HTTP listen address for the web UI
	DefaultServerAddress = ":8080"

	// DefaultMaxBodySizeBytes is the default maximum request body size (256 KB)
	DefaultMaxBodySizeBytes int64 = 256 * 1024

	// DefaultBatchConcurrency bounds the number of quotes computed in parallel
	DefaultBatchConcurrency = 8

	// MaxBatchSize is the largest number of requests accepted in one batch
	MaxBatchSize = 1000

	// MaxDurationMonths is the longest plan quoted or scheduled (50 years)
	MaxDurationMonths = 600
)
