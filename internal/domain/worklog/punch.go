package worklog

import (
	"strings"
	"time"

	"github.com/cmlabs-hris/worklog-backend-go/internal/pkg/timecalc"
	"github.com/cmlabs-hris/worklog-backend-go/internal/pkg/validator"
)

// ParseAction accepts "start" or "end" in any letter case.
func ParseAction(s string) (Action, error) {
	switch Action(strings.ToLower(strings.TrimSpace(s))) {
	case ActionStart:
		return ActionStart, nil
	case ActionEnd:
		return ActionEnd, nil
	}
	return "", validator.Field("action", "action must be either 'start' or 'end'")
}

// StartLog opens a new work log at now. It fails with ErrSessionAlreadyRunning
// when the employee's last log is still open.
func StartLog(e *Employee, now time.Time) (WorkLog, error) {
	if e.HasOpenLog() {
		return WorkLog{}, ErrSessionAlreadyRunning
	}
	l := WorkLog{StartTime: now}
	e.WorkLogs = append(e.WorkLogs, l)
	return l, nil
}

// EndLog closes the employee's open work log at now and stores its duration.
// The employee is left untouched on error.
func EndLog(e *Employee, now time.Time) (WorkLog, error) {
	open := e.OpenLog()
	if open == nil {
		return WorkLog{}, ErrNoActiveSession
	}
	closed, err := CloseLog(*open, now)
	if err != nil {
		return WorkLog{}, err
	}
	if err := ValidateRating("rating", closed.Rating); err != nil {
		return WorkLog{}, err
	}
	*open = closed
	return closed, nil
}

// CloseLog returns l closed at end with TotalHours computed.
func CloseLog(l WorkLog, end time.Time) (WorkLog, error) {
	if !end.After(l.StartTime) {
		return WorkLog{}, validator.Field("end_time", "end_time must be after start_time")
	}
	hours := timecalc.Hours(l.StartTime, end)
	l.EndTime = &end
	l.TotalHours = &hours
	return l, nil
}

// ApplyPunch dispatches action against the employee's work logs.
func ApplyPunch(e *Employee, action Action, now time.Time) (WorkLog, error) {
	switch action {
	case ActionStart:
		return StartLog(e, now)
	case ActionEnd:
		return EndLog(e, now)
	}
	return WorkLog{}, validator.Field("action", "action must be either 'start' or 'end'")
}

// ValidateRating checks the shared [0,5] rating range.
func ValidateRating(field string, r float64) error {
	if r < 0 || r > 5 {
		return validator.Field(field, field+" must be between 0 and 5")
	}
	return nil
}
