package worklog

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/cmlabs-hris/worklog-backend-go/internal/pkg/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve_Defaults(t *testing.T) {
	cfg, err := DailyReportRequest{}.Resolve()
	require.NoError(t, err)

	assert.Equal(t, "UTC", cfg.TZ)
	assert.Equal(t, time.UTC.String(), cfg.Location.String())
	assert.Equal(t, 1, cfg.Days)
	assert.False(t, cfg.IncludeOpen)
	assert.Equal(t, FormatGrouped, cfg.Format)
	assert.Nil(t, cfg.Filter.Email)
	assert.Nil(t, cfg.Filter.Start)
}

func TestResolve_ParsesEveryField(t *testing.T) {
	cfg, err := DailyReportRequest{
		TZ:          "Asia/Kolkata",
		Days:        "7",
		IncludeOpen: "yes",
		Format:      "FLAT",
		Start:       "2024-03-01",
		End:         "2024-03-05T18:00:00+05:30",
		Email:       " Jane@Example.com ",
		Name:        "Jane",
	}.Resolve()
	require.NoError(t, err)

	assert.Equal(t, "Asia/Kolkata", cfg.TZ)
	assert.Equal(t, 7, cfg.Days)
	assert.True(t, cfg.IncludeOpen)
	assert.True(t, cfg.Filter.IncludeOpen)
	assert.Equal(t, FormatFlat, cfg.Format)
	assert.True(t, cfg.Filter.Start.Equal(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)))
	assert.True(t, cfg.Filter.End.Equal(time.Date(2024, 3, 5, 12, 30, 0, 0, time.UTC)))
	assert.Equal(t, "jane@example.com", *cfg.Filter.Email)
	assert.Equal(t, "Jane", *cfg.Filter.Name)
}

func TestResolve_ConfigErrors(t *testing.T) {
	tests := []struct {
		name  string
		req   DailyReportRequest
		field string
	}{
		{"unknown zone", DailyReportRequest{TZ: "Mars/Olympus"}, "tz"},
		{"local zone", DailyReportRequest{TZ: "Local"}, "tz"},
		{"zero days", DailyReportRequest{Days: "0"}, "days"},
		{"negative days", DailyReportRequest{Days: "-3"}, "days"},
		{"text days", DailyReportRequest{Days: "two"}, "days"},
		{"bad includeOpen", DailyReportRequest{IncludeOpen: "sometimes"}, "includeOpen"},
		{"bad format", DailyReportRequest{Format: "tree"}, "format"},
		{"config before validation", DailyReportRequest{Days: "0", Start: "yesterday"}, "days"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.req.Resolve()

			var cerr *ConfigError
			require.True(t, errors.As(err, &cerr), "got %v", err)
			assert.Equal(t, tt.field, cerr.Field)
			assert.ErrorIs(t, err, ErrInvalidConfig)
			assert.False(t, errors.Is(err, validator.ErrValidation))
		})
	}
}

func TestResolve_MalformedBoundsAreValidationErrors(t *testing.T) {
	_, err := DailyReportRequest{Start: "03/01/2024", End: "soon"}.Resolve()

	var verrs validator.ValidationErrors
	require.True(t, errors.As(err, &verrs))
	assert.Len(t, verrs, 2)
	assert.Equal(t, "start", verrs[0].Field)
	assert.Equal(t, "end", verrs[1].Field)
	assert.False(t, errors.Is(err, ErrInvalidConfig))
}

func TestParseBool(t *testing.T) {
	for _, s := range []string{"1", "true", "TRUE", "yes", "Yes"} {
		v, ok := ParseBool(s)
		assert.True(t, ok, s)
		assert.True(t, v, s)
	}
	for _, s := range []string{"0", "false", "no", "NO"} {
		v, ok := ParseBool(s)
		assert.True(t, ok, s)
		assert.False(t, v, s)
	}
	_, ok := ParseBool("on")
	assert.False(t, ok)
}

func TestRowFilter_Match(t *testing.T) {
	end := t0.Add(2 * time.Hour)
	closed := Row{Name: "Jane", Email: "jane@example.com", Log: WorkLog{StartTime: t0, EndTime: &end}}
	open := Row{Name: "Jane", Email: "jane@example.com", Log: WorkLog{StartTime: t0}}

	email := "jane@example.com"
	other := "john@example.com"
	name := "Jane"
	before := t0.Add(-time.Hour)
	after := t0.Add(time.Hour)

	tests := []struct {
		name   string
		filter RowFilter
		row    Row
		want   bool
	}{
		{"closed passes default", RowFilter{}, closed, true},
		{"open dropped by default", RowFilter{}, open, false},
		{"open kept with includeOpen", RowFilter{IncludeOpen: true}, open, true},
		{"zero start dropped with includeOpen", RowFilter{IncludeOpen: true}, Row{}, false},
		{"email match", RowFilter{Email: &email}, closed, true},
		{"email mismatch", RowFilter{Email: &other}, closed, false},
		{"name match", RowFilter{Name: &name}, closed, true},
		{"inclusive start bound", RowFilter{Start: &t0}, closed, true},
		{"inclusive end bound", RowFilter{End: &t0}, closed, true},
		{"before start", RowFilter{Start: &after}, closed, false},
		{"after end", RowFilter{End: &before}, closed, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.filter.Match(tt.row))
		})
	}
}

func TestDailyReport_MarshalsSelectedShape(t *testing.T) {
	flat := DailyReport{Format: FormatFlat, Flat: &FlatReport{Format: FormatFlat, Timezone: "UTC", Data: []FlatRow{}}}
	b, err := json.Marshal(flat)
	require.NoError(t, err)
	assert.JSONEq(t, `{"format":"flat","timezone":"UTC","count":0,"data":[]}`, string(b))

	grouped := DailyReport{Format: FormatGrouped, Grouped: &GroupedReport{Format: FormatGrouped, Timezone: "UTC", Days: 1, Data: []DayReport{}}}
	b, err = json.Marshal(grouped)
	require.NoError(t, err)
	assert.JSONEq(t, `{"format":"grouped","timezone":"UTC","days":1,"data":[]}`, string(b))
}
