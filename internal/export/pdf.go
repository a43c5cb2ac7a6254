package export

import (
	"fmt"
	"io"

	"github.com/go-pdf/fpdf"
	"github.com/iwvelando/installment-plans/pkg/constants"
	"github.com/iwvelando/installment-plans/pkg/format"
	"go.uber.org/zap"
	"golang.org/x/text/encoding/charmap"
)

const (
	pdfFontFamily     = "Arial"
	pdfUTF8FontFamily = "QuoteUTF8"
	pdfColumnWidth    = 45.0
	pdfLineHeight     = 10.0
)

var pdfColumns = []string{"Plan", "Advance Payment", "Total Payment", "Monthly Installment"}

// PDFExporter renders the printable plan summary.
//
// The built-in Arial font only covers Windows-1252. Names in other scripts
// (Urdu, Arabic, CJK) need Document.FontFile pointing at a UTF-8 TrueType
// font; without one those characters are not printable and a warning is
// logged.
type PDFExporter struct {
	logger   *zap.Logger
	compress bool
}

// NewPDFExporter creates a PDF exporter.
func NewPDFExporter(logger *zap.Logger) *PDFExporter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PDFExporter{logger: logger, compress: true}
}

// Format implements Exporter.
func (e *PDFExporter) Format() string { return constants.ExportFormatPDF }

// ContentType implements Exporter.
func (e *PDFExporter) ContentType() string { return "application/pdf" }

// Export implements Exporter.
func (e *PDFExporter) Export(w io.Writer, doc Document) error {
	if doc.Quote == nil {
		return fmt.Errorf("export requires a quote")
	}

	header := []string{
		"Customer: " + doc.Quote.CustomerName,
		"Date: " + doc.IssueDate(),
		"Item: " + doc.Quote.ItemName,
	}
	rows := make([][]string, 0, len(doc.Quote.Plans))
	for _, plan := range doc.Quote.Plans {
		row := []string{format.PlanLabel(plan.DurationMonths)}
		for _, amount := range []float64{plan.AdvancePayment, plan.TotalPayment, plan.MonthlyInstallment} {
			fixed, err := format.Fixed(amount)
			if err != nil {
				return fmt.Errorf("failed to format %s: %w", row[0], err)
			}
			row = append(row, doc.CurrencySymbol+fixed)
		}
		rows = append(rows, row)
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetCompression(e.compress)
	pdf.SetCreationDate(doc.Quote.IssuedAt)
	pdf.SetTitle(doc.Title, true)
	pdf.SetCreator("installment-plans", true)

	family := pdfFontFamily
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	if doc.FontFile != "" {
		for _, style := range []string{"", "B", "I"} {
			pdf.AddUTF8Font(pdfUTF8FontFamily, style, doc.FontFile)
		}
		if err := pdf.Error(); err != nil {
			return fmt.Errorf("failed to load font %s: %w", doc.FontFile, err)
		}
		family = pdfUTF8FontFamily
		tr = func(s string) string { return s }
	} else if unprintable := outsideWindows1252(doc, header); len(unprintable) > 0 {
		e.logger.Warn("document text outside Windows-1252 will not print correctly; set export.fontFile",
			zap.String("op", "export.PDFExporter.Export"),
			zap.String("quote", doc.Quote.ID),
			zap.Strings("text", unprintable),
		)
	}

	pdf.SetHeaderFunc(func() {
		pdf.SetFont(family, "B", 12)
		pdf.CellFormat(0, pdfLineHeight, tr(doc.Title), "0", 1, "C", false, 0, "")
		pdf.Ln(pdfLineHeight)
	})

	pdf.SetFooterFunc(func() {
		pdf.SetFont(family, "I", 8)
		offset := -5.0 * float64(len(doc.Footer)+1)
		for i, line := range doc.Footer {
			pdf.SetY(offset + 5.0*float64(i))
			align := "L"
			if i == len(doc.Footer)-1 && i > 0 {
				align = "C"
			}
			pdf.CellFormat(0, pdfLineHeight, tr(line), "0", 0, align, false, 0, "")
		}
	})

	pdf.AddPage()

	pdf.SetFont(family, "B", 12)
	for _, line := range header {
		pdf.CellFormat(0, pdfLineHeight, tr(line), "0", 1, "L", false, 0, "")
	}
	pdf.Ln(pdfLineHeight)

	for _, column := range pdfColumns {
		pdf.CellFormat(pdfColumnWidth, pdfLineHeight, column, "1", 0, "", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont(family, "", 12)
	for _, row := range rows {
		for _, cell := range row {
			pdf.CellFormat(pdfColumnWidth, pdfLineHeight, tr(cell), "1", 0, "", false, 0, "")
		}
		pdf.Ln(-1)
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("failed to render PDF: %w", err)
	}

	e.logger.Debug("exported quote document",
		zap.String("op", "export.PDFExporter.Export"),
		zap.String("quote", doc.Quote.ID),
		zap.Int("rows", len(rows)),
	)
	return nil
}

// outsideWindows1252 returns the document strings the core fonts cannot print.
func outsideWindows1252(doc Document, header []string) []string {
	encoder := charmap.Windows1252.NewEncoder()
	var unprintable []string
	lines := append([]string{doc.Title, doc.CurrencySymbol}, header...)
	lines = append(lines, doc.Footer...)
	for _, line := range lines {
		if _, err := encoder.String(line); err != nil {
			unprintable = append(unprintable, line)
		}
	}
	return unprintable
}
