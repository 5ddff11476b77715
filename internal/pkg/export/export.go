// Package export renders a flat daily report as CSV, XLSX or PDF.
package export

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/cmlabs-hris/worklog-backend-go/internal/domain/worklog"
	"github.com/cmlabs-hris/worklog-backend-go/internal/pkg/timecalc"
)

type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
	FormatPDF  Format = "pdf"
)

var ErrUnsupportedFormat = errors.New("unsupported export format")

var header = []string{"Date", "Name", "Email", "Start", "End", "Total Hours", "Rating"}

const timeLayout = "2006-01-02 15:04:05"

func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatCSV, FormatXLSX, FormatPDF:
		return f, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
}

func (f Format) ContentType() string {
	switch f {
	case FormatCSV:
		return "text/csv; charset=utf-8"
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case FormatPDF:
		return "application/pdf"
	}
	return "application/octet-stream"
}

// Filename returns the attachment name for a report generated at now.
func (f Format) Filename(now time.Time) string {
	return fmt.Sprintf("worklog-report-%s.%s", now.Format("20060102-150405"), f)
}

// Write renders report in format to w.
func Write(w io.Writer, format Format, report *worklog.FlatReport) error {
	loc, err := timecalc.LoadZone(report.Timezone)
	if err != nil {
		return err
	}
	rows := records(report, loc)

	switch format {
	case FormatCSV:
		return writeCSV(w, rows)
	case FormatXLSX:
		return writeXLSX(w, report, rows)
	case FormatPDF:
		return writePDF(w, report, rows)
	}
	return fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
}

// records renders report rows as strings with times shown in loc.
func records(report *worklog.FlatReport, loc *time.Location) [][]string {
	out := make([][]string, 0, len(report.Data))
	for _, r := range report.Data {
		end, hours := "", ""
		if r.EndTime != nil {
			end = r.EndTime.In(loc).Format(timeLayout)
		}
		if r.TotalHours != nil {
			hours = timecalc.FormatHours(*r.TotalHours)
		}
		out = append(out, []string{
			r.Date,
			r.Name,
			r.Email,
			r.StartTime.In(loc).Format(timeLayout),
			end,
			hours,
			fmt.Sprintf("%g", r.Rating),
		})
	}
	return out
}
