package report

import (
	"sort"

	"github.com/cmlabs-hris/worklog-backend-go/internal/domain/worklog"
	"github.com/cmlabs-hris/worklog-backend-go/internal/pkg/timecalc"
)

func shapeFlat(rows []bucketedRow, tz string) *worklog.FlatReport {
	sorted := make([]bucketedRow, len(rows))
	copy(sorted, rows)
	sort.SliceStable(sorted, func(a, b int) bool {
		if !sorted[a].Day.Start.Equal(sorted[b].Day.Start) {
			return sorted[a].Day.Start.After(sorted[b].Day.Start)
		}
		return sorted[a].Log.StartTime.Before(sorted[b].Log.StartTime)
	})

	data := make([]worklog.FlatRow, 0, len(sorted))
	for _, row := range sorted {
		data = append(data, worklog.FlatRow{
			Date:       row.Day.Key,
			Name:       row.Name,
			Email:      row.Email,
			StartTime:  row.Log.StartTime,
			EndTime:    row.Log.EndTime,
			TotalHours: roundPtr(row.Hours),
			Rating:     row.Log.Rating,
		})
	}

	return &worklog.FlatReport{
		Format:   worklog.FormatFlat,
		Timezone: tz,
		Count:    len(data),
		Data:     data,
	}
}

func shapeGrouped(days []dayGroup, tz string, n int) *worklog.GroupedReport {
	data := make([]worklog.DayReport, 0, len(days))
	for _, day := range days {
		entries := make([]worklog.EmployeeDayEntry, 0, len(day.Entries))
		for _, e := range day.Entries {
			logs := make([]worklog.ReportLog, 0, len(e.Logs))
			for _, l := range e.Logs {
				logs = append(logs, worklog.ReportLog{
					StartTime:  l.Log.StartTime,
					EndTime:    l.Log.EndTime,
					TotalHours: roundPtr(l.Hours),
					Rating:     l.Log.Rating,
				})
			}
			entries = append(entries, worklog.EmployeeDayEntry{
				EmployeeID:       e.EmployeeID,
				Name:             e.Name,
				Email:            e.Email,
				TotalHoursForDay: timecalc.Round2(e.Total),
				Logs:             logs,
			})
		}
		data = append(data, worklog.DayReport{
			Date:            day.Day.Key,
			GrandTotalHours: timecalc.Round2(day.GrandTotal),
			Entries:         entries,
		})
	}

	return &worklog.GroupedReport{
		Format:   worklog.FormatGrouped,
		Timezone: tz,
		Days:     n,
		Data:     data,
	}
}

func roundPtr(h *float64) *float64 {
	if h == nil {
		return nil
	}
	r := timecalc.Round2(*h)
	return &r
}
