// Package export renders a priced quote as a downloadable summary document.
package export

import (
	"fmt"
	"io"
	"strings"
	"time"
	"unicode"

	"github.com/iwvelando/installment-plans/internal/config"
	"github.com/iwvelando/installment-plans/internal/quote"
	"github.com/iwvelando/installment-plans/pkg/constants"
	"github.com/iwvelando/installment-plans/pkg/validation"
	"go.uber.org/zap"
)

// Document is everything printed on an exported summary. Plans are printed in
// the order they appear on the quote.
type Document struct {
	Title          string
	Footer         []string
	CurrencySymbol string
	FontFile       string
	Quote          *quote.Quote
}

// NewDocument pairs a quote with the configured document styling.
func NewDocument(q *quote.Quote, cfg config.ExportConfig) Document {
	doc := Document{
		Title:          cfg.Title,
		Footer:         append([]string(nil), cfg.Footer...),
		CurrencySymbol: cfg.CurrencySymbol,
		FontFile:       cfg.FontFile,
		Quote:          q,
	}
	if doc.Title == "" {
		doc.Title = constants.DefaultDocumentTitle
	}
	if cfg.Footer == nil {
		doc.Footer = constants.DefaultFooter()
	}
	if doc.CurrencySymbol == "" {
		doc.CurrencySymbol = constants.DefaultCurrencySymbol
	}
	return doc
}

// IssueDate returns the quote's issue date in the printed layout.
func (d Document) IssueDate() string {
	issued := d.Quote.IssuedAt
	if issued.IsZero() {
		issued = time.Now()
	}
	return issued.Format(constants.IssueDateLayout)
}

// Exporter writes a Document in one file format.
type Exporter interface {
	Format() string
	ContentType() string
	Export(w io.Writer, doc Document) error
}

// ForFormat returns the exporter registered for format.
func ForFormat(format string, logger *zap.Logger) (Exporter, error) {
	if err := validation.ValidateExportFormat(format); err != nil {
		return nil, err
	}

	switch format {
	case constants.ExportFormatPDF:
		return NewPDFExporter(logger), nil
	case constants.ExportFormatCSV:
		return NewCSVExporter(logger), nil
	}
	return nil, fmt.Errorf("no exporter for format %s", format)
}

// FileName builds the download name for an item, e.g.
// "Sample Item_Installment_Plan.pdf". Path separators and control characters
// in the item name are replaced.
func FileName(itemName, format string) string {
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case r == '/' || r == '\\' || r == ':' || r == '"' || r == '*' || r == '?' || r == '<' || r == '>' || r == '|':
			return '_'
		case unicode.IsControl(r):
			return -1
		}
		return r
	}, strings.TrimSpace(itemName))

	cleaned = strings.Trim(cleaned, ". ")
	if cleaned == "" {
		cleaned = constants.DefaultItemName
	}
	return cleaned + constants.ExportFileSuffix + "." + format
}
