package worklog

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/cmlabs-hris/worklog-backend-go/internal/pkg/timecalc"
	"github.com/cmlabs-hris/worklog-backend-go/internal/pkg/validator"
)

type ReportFormat string

const (
	FormatGrouped ReportFormat = "grouped"
	FormatFlat    ReportFormat = "flat"
)

const (
	DefaultReportTZ   = "UTC"
	DefaultReportDays = 1
)

// DailyReportRequest carries the raw report parameters as they arrive on the
// query string or command line. Empty fields take their defaults.
type DailyReportRequest struct {
	TZ          string
	Days        string
	IncludeOpen string
	Format      string
	Start       string
	End         string
	Email       string
	Name        string
}

// ReportConfig is a resolved DailyReportRequest.
type ReportConfig struct {
	Location    *time.Location
	TZ          string
	Days        int
	IncludeOpen bool
	Format      ReportFormat
	Filter      RowFilter
}

// Resolve applies defaults and validates the request. Configuration problems
// (tz, days, includeOpen, format) are reported as *ConfigError before any
// malformed start/end bound is reported as a validation error.
func (r DailyReportRequest) Resolve() (ReportConfig, error) {
	cfg := ReportConfig{
		TZ:     DefaultReportTZ,
		Days:   DefaultReportDays,
		Format: FormatGrouped,
	}

	if tz := strings.TrimSpace(r.TZ); tz != "" {
		cfg.TZ = tz
	}
	loc, err := timecalc.LoadZone(cfg.TZ)
	if err != nil {
		return ReportConfig{}, &ConfigError{Field: "tz", Message: "unknown IANA timezone " + strconv.Quote(cfg.TZ)}
	}
	cfg.Location = loc

	if d := strings.TrimSpace(r.Days); d != "" {
		n, err := strconv.Atoi(d)
		if err != nil || n < 1 {
			return ReportConfig{}, &ConfigError{Field: "days", Message: "days must be a positive integer"}
		}
		cfg.Days = n
	}

	if s := strings.TrimSpace(r.IncludeOpen); s != "" {
		b, ok := ParseBool(s)
		if !ok {
			return ReportConfig{}, &ConfigError{Field: "includeOpen", Message: "includeOpen must be a boolean"}
		}
		cfg.IncludeOpen = b
	}

	switch ReportFormat(strings.ToLower(strings.TrimSpace(r.Format))) {
	case "", FormatGrouped:
		cfg.Format = FormatGrouped
	case FormatFlat:
		cfg.Format = FormatFlat
	default:
		return ReportConfig{}, &ConfigError{Field: "format", Message: "format must be 'grouped' or 'flat'"}
	}

	var errs validator.ValidationErrors
	cfg.Filter.IncludeOpen = cfg.IncludeOpen
	if s := strings.TrimSpace(r.Start); s != "" {
		t, ok := validator.IsValidInstant(s)
		if !ok {
			errs = append(errs, validator.ValidationError{Field: "start", Message: "start must be an ISO8601 timestamp or YYYY-MM-DD date"})
		} else {
			cfg.Filter.Start = &t
		}
	}
	if s := strings.TrimSpace(r.End); s != "" {
		t, ok := validator.IsValidInstant(s)
		if !ok {
			errs = append(errs, validator.ValidationError{Field: "end", Message: "end must be an ISO8601 timestamp or YYYY-MM-DD date"})
		} else {
			cfg.Filter.End = &t
		}
	}
	if len(errs) > 0 {
		return ReportConfig{}, errs
	}

	if s := strings.TrimSpace(r.Email); s != "" {
		email := NormalizeEmail(s)
		cfg.Filter.Email = &email
	}
	if s := strings.TrimSpace(r.Name); s != "" {
		cfg.Filter.Name = &s
	}

	return cfg, nil
}

// ParseBool accepts 1/0, true/false and yes/no in any letter case.
func ParseBool(s string) (value bool, ok bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes":
		return true, true
	case "0", "false", "no":
		return false, true
	}
	return false, false
}

type FlatRow struct {
	Date       string     `json:"date"`
	Name       string     `json:"name"`
	Email      string     `json:"email"`
	StartTime  time.Time  `json:"startTime"`
	EndTime    *time.Time `json:"endTime"`
	TotalHours *float64   `json:"totalHours"`
	Rating     float64    `json:"rating"`
}

type FlatReport struct {
	Format   ReportFormat `json:"format"`
	Timezone string       `json:"timezone"`
	Count    int          `json:"count"`
	Data     []FlatRow    `json:"data"`
}

type ReportLog struct {
	StartTime  time.Time  `json:"startTime"`
	EndTime    *time.Time `json:"endTime"`
	TotalHours *float64   `json:"totalHours"`
	Rating     float64    `json:"rating"`
}

type EmployeeDayEntry struct {
	EmployeeID       string      `json:"employeeId"`
	Name             string      `json:"name"`
	Email            string      `json:"email"`
	TotalHoursForDay float64     `json:"totalHoursForDay"`
	Logs             []ReportLog `json:"logs"`
}

type DayReport struct {
	Date            string             `json:"date"`
	GrandTotalHours float64            `json:"grandTotalHours"`
	Entries         []EmployeeDayEntry `json:"entries"`
}

type GroupedReport struct {
	Format   ReportFormat `json:"format"`
	Timezone string       `json:"timezone"`
	Days     int          `json:"days"`
	Data     []DayReport  `json:"data"`
}

// DailyReport holds exactly one of Flat or Grouped, selected by Format.
type DailyReport struct {
	Format  ReportFormat
	Flat    *FlatReport
	Grouped *GroupedReport
}

func (r DailyReport) MarshalJSON() ([]byte, error) {
	if r.Format == FormatFlat {
		return json.Marshal(r.Flat)
	}
	return json.Marshal(r.Grouped)
}
