package export

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/cmlabs-hris/worklog-backend-go/internal/domain/worklog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func sampleReport() *worklog.FlatReport {
	start := time.Date(2024, 3, 1, 23, 30, 0, 0, time.UTC)
	end := start.Add(2 * time.Hour)
	hours := 2.0
	return &worklog.FlatReport{
		Format:   worklog.FormatFlat,
		Timezone: "Asia/Kolkata",
		Count:    2,
		Data: []worklog.FlatRow{
			{Date: "2024-03-02", Name: "Jane", Email: "jane@example.com", StartTime: start, EndTime: &end, TotalHours: &hours, Rating: 4},
			{Date: "2024-03-02", Name: "John", Email: "john@example.com", StartTime: start},
		},
	}
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat(" XLSX ")
	require.NoError(t, err)
	assert.Equal(t, FormatXLSX, f)

	_, err = ParseFormat("docx")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestFormatMetadata(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, "worklog-report-20240301-120000.csv", FormatCSV.Filename(now))
	assert.Equal(t, "application/pdf", FormatPDF.ContentType())
}

func TestWrite_CSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatCSV, sampleReport()))

	recs, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, recs, 3)
	assert.Equal(t, header, recs[0])
	assert.Equal(t, []string{"2024-03-02", "Jane", "jane@example.com", "2024-03-02 05:00:00", "2024-03-02 07:00:00", "2.00", "4"}, recs[1])
	assert.Equal(t, "", recs[2][4])
	assert.Equal(t, "", recs[2][5])
}

func TestWrite_XLSX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatXLSX, sampleReport()))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{sheetName}, f.GetSheetList())
	name, err := f.GetCellValue(sheetName, "B6")
	require.NoError(t, err)
	assert.Equal(t, "Jane", name)
	hours, err := f.GetCellValue(sheetName, "F6")
	require.NoError(t, err)
	assert.Equal(t, "2", hours)
}

func TestWrite_PDF(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatPDF, sampleReport()))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF")))
}

func TestWrite_Errors(t *testing.T) {
	var buf bytes.Buffer
	assert.ErrorIs(t, Write(&buf, Format("docx"), sampleReport()), ErrUnsupportedFormat)

	bad := sampleReport()
	bad.Timezone = "Nowhere/Else"
	assert.Error(t, Write(&buf, FormatCSV, bad))
}
