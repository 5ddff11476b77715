package worklog

import (
	"time"

	"github.com/cmlabs-hris/worklog-backend-go/internal/pkg/timecalc"
)

type Action string

const (
	ActionStart Action = "start"
	ActionEnd   Action = "end"
)

// WorkLog is one punch-in/punch-out interval. EndTime and TotalHours are nil
// while the interval is open.
type WorkLog struct {
	StartTime  time.Time
	EndTime    *time.Time
	TotalHours *float64
	Rating     float64
}

type Employee struct {
	ID string
	// UserID links the employee to the account that punches for it. Seeded
	// employees start unlinked and are claimed by email on first access.
	UserID           string
	Name             string
	Email            string
	Age              *int
	StartWorkingDate *time.Time
	Rating           float64
	WorkLogs         []WorkLog
	Version          int64
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// IsOpen reports whether the interval has not been closed yet.
func (l WorkLog) IsOpen() bool {
	return l.EndTime == nil
}

// CoalescedHours returns the stored duration, recomputing it for closed logs
// that were persisted without one. Open logs yield nil.
func (l WorkLog) CoalescedHours() *float64 {
	if l.TotalHours != nil {
		h := *l.TotalHours
		return &h
	}
	if l.EndTime == nil {
		return nil
	}
	h := timecalc.Hours(l.StartTime, *l.EndTime)
	return &h
}

// LastLog returns the most recent work log, or nil when there are none.
func (e *Employee) LastLog() *WorkLog {
	if len(e.WorkLogs) == 0 {
		return nil
	}
	return &e.WorkLogs[len(e.WorkLogs)-1]
}

// OpenLog returns the trailing open work log, if any.
func (e *Employee) OpenLog() *WorkLog {
	last := e.LastLog()
	if last == nil || !last.IsOpen() {
		return nil
	}
	return last
}

func (e *Employee) HasOpenLog() bool {
	return e.OpenLog() != nil
}

// Row is one (employee, work log) pair produced by expanding an employee's
// embedded logs.
type Row struct {
	EmployeeID string
	Name       string
	Email      string
	Log        WorkLog
}

// Expand flattens employees into one row per work log, preserving employee
// order and log insertion order.
func Expand(employees []Employee) []Row {
	var rows []Row
	for _, e := range employees {
		for _, l := range e.WorkLogs {
			rows = append(rows, Row{
				EmployeeID: e.ID,
				Name:       e.Name,
				Email:      e.Email,
				Log:        l,
			})
		}
	}
	return rows
}
