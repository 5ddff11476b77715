package export

import (
	"fmt"
	"io"
	"strconv"

	"github.com/cmlabs-hris/worklog-backend-go/internal/domain/worklog"
	"github.com/xuri/excelize/v2"
)

const sheetName = "Worklogs"

func writeXLSX(w io.Writer, report *worklog.FlatReport, rows [][]string) error {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return fmt.Errorf("create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("delete default sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return fmt.Errorf("create style: %w", err)
	}

	f.SetCellValue(sheetName, "A1", "DAILY WORKLOG REPORT")
	f.SetCellValue(sheetName, "A2", fmt.Sprintf("Timezone: %s", report.Timezone))
	f.SetCellValue(sheetName, "A3", fmt.Sprintf("Entries: %d", report.Count))

	const headerRow = 5
	for i, h := range header {
		cell, _ := excelize.CoordinatesToCellName(i+1, headerRow)
		f.SetCellValue(sheetName, cell, h)
		f.SetCellStyle(sheetName, cell, cell, headerStyle)
	}

	for r, rec := range rows {
		for c, v := range rec {
			cell, _ := excelize.CoordinatesToCellName(c+1, headerRow+1+r)
			// Hours and rating are written as numbers so they can be summed.
			if c >= 5 && v != "" {
				if n, err := strconv.ParseFloat(v, 64); err == nil {
					f.SetCellValue(sheetName, cell, n)
					continue
				}
			}
			f.SetCellValue(sheetName, cell, v)
		}
	}

	f.SetColWidth(sheetName, "A", "A", 12)
	f.SetColWidth(sheetName, "B", "C", 28)
	f.SetColWidth(sheetName, "D", "E", 20)
	f.SetColWidth(sheetName, "F", "G", 12)

	return f.Write(w)
}
