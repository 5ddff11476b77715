package report

import (
	"sort"

	"github.com/cmlabs-hris/worklog-backend-go/internal/pkg/timecalc"
)

// employeeDay is one employee's logs within one day bucket. Total is the
// unrounded sum of coalesced hours with open logs counted as zero.
type employeeDay struct {
	Day        timecalc.DayBucket
	EmployeeID string
	Name       string
	Email      string
	Logs       []bucketedRow
	Total      float64
}

type dayGroup struct {
	Day        timecalc.DayBucket
	Entries    []employeeDay
	GrandTotal float64
}

type employeeDayKey struct {
	day        string
	employeeID string
}

// groupByEmployeeDay is the first grouping pass: rows are folded per
// (day, employee). Logs inside a group are ordered by start time.
func groupByEmployeeDay(rows []bucketedRow) []employeeDay {
	index := make(map[employeeDayKey]int)
	var groups []employeeDay

	for _, row := range rows {
		key := employeeDayKey{day: row.Day.Key, employeeID: row.EmployeeID}
		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, employeeDay{
				Day:        row.Day,
				EmployeeID: row.EmployeeID,
				Name:       row.Name,
				Email:      row.Email,
			})
		}
		groups[i].Logs = append(groups[i].Logs, row)
		if row.Hours != nil {
			groups[i].Total += *row.Hours
		}
	}

	for i := range groups {
		logs := groups[i].Logs
		sort.SliceStable(logs, func(a, b int) bool {
			return logs[a].Log.StartTime.Before(logs[b].Log.StartTime)
		})
	}
	return groups
}

// groupByDay is the second grouping pass: employee groups are folded per
// day, latest day first. Entries are ordered by name, email, then id.
func groupByDay(entries []employeeDay) []dayGroup {
	index := make(map[string]int)
	var days []dayGroup

	for _, entry := range entries {
		i, ok := index[entry.Day.Key]
		if !ok {
			i = len(days)
			index[entry.Day.Key] = i
			days = append(days, dayGroup{Day: entry.Day})
		}
		days[i].Entries = append(days[i].Entries, entry)
		days[i].GrandTotal += entry.Total
	}

	for i := range days {
		es := days[i].Entries
		sort.SliceStable(es, func(a, b int) bool {
			if es[a].Name != es[b].Name {
				return es[a].Name < es[b].Name
			}
			if es[a].Email != es[b].Email {
				return es[a].Email < es[b].Email
			}
			return es[a].EmployeeID < es[b].EmployeeID
		})
	}
	sort.SliceStable(days, func(a, b int) bool {
		return days[a].Day.Start.After(days[b].Day.Start)
	})
	return days
}

// latest keeps the first n day groups.
func latest(days []dayGroup, n int) []dayGroup {
	if n < len(days) {
		return days[:n]
	}
	return days
}
