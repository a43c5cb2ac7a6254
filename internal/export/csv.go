package export

import (
	"fmt"
	"io"

	"github.com/iwvelando/installment-plans/internal/quote"
	"github.com/iwvelando/installment-plans/pkg/constants"
	"github.com/iwvelando/installment-plans/pkg/output"
	"go.uber.org/zap"
)

// CSVExporter writes the plan table as CSV, one row per plan.
type CSVExporter struct {
	logger *zap.Logger
}

// NewCSVExporter creates a CSV exporter.
func NewCSVExporter(logger *zap.Logger) *CSVExporter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CSVExporter{logger: logger}
}

// Format implements Exporter.
func (e *CSVExporter) Format() string { return constants.ExportFormatCSV }

// ContentType implements Exporter.
func (e *CSVExporter) ContentType() string { return "text/csv" }

// Export implements Exporter.
func (e *CSVExporter) Export(w io.Writer, doc Document) error {
	if doc.Quote == nil {
		return fmt.Errorf("export requires a quote")
	}
	if err := output.CsvFormatTo(w, []*quote.Quote{doc.Quote}); err != nil {
		return fmt.Errorf("failed to write CSV: %w", err)
	}

	e.logger.Debug("exported quote document",
		zap.String("op", "export.CSVExporter.Export"),
		zap.String("quote", doc.Quote.ID),
		zap.Int("rows", len(doc.Quote.Plans)),
	)
	return nil
}
