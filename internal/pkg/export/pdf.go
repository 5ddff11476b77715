package export

import (
	"fmt"
	"io"
	"time"

	"github.com/cmlabs-hris/worklog-backend-go/internal/domain/worklog"
	"github.com/jung-kurt/gofpdf"
)

var pdfWidths = []float64{22, 38, 55, 38, 38, 22, 14}

func writePDF(w io.Writer, report *worklog.FlatReport, rows [][]string) error {
	pdf := gofpdf.New("L", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(40, 10, "Daily Worklog Report")
	pdf.Ln(10)

	pdf.SetFont("Arial", "", 11)
	pdf.Cell(40, 8, fmt.Sprintf("Timezone: %s", report.Timezone))
	pdf.Ln(6)
	pdf.Cell(40, 8, fmt.Sprintf("Entries: %d", report.Count))
	pdf.Ln(10)

	pdf.SetFont("Arial", "B", 10)
	pdf.SetFillColor(68, 114, 196)
	pdf.SetTextColor(255, 255, 255)
	for i, h := range header {
		pdf.CellFormat(pdfWidths[i], 8, h, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 9)
	pdf.SetTextColor(0, 0, 0)
	for _, rec := range rows {
		for i, v := range rec {
			pdf.CellFormat(pdfWidths[i], 7, tr(v), "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}

	pdf.Ln(6)
	pdf.SetFont("Arial", "I", 8)
	pdf.Cell(0, 10, fmt.Sprintf("Generated at: %s", time.Now().UTC().Format(time.RFC1123)))

	if err := pdf.Error(); err != nil {
		return fmt.Errorf("render pdf: %w", err)
	}
	return pdf.Output(w)
}
