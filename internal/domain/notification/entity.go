package notification

import (
	"time"
)

// EventType represents the kind of punch being announced
type EventType string

const (
	TypeWorkStarted EventType = "work_started"
	TypeWorkEnded   EventType = "work_ended"
)

// PunchEvent describes a completed punch for the notification collaborator.
type PunchEvent struct {
	Type         EventType
	EmployeeID   string
	EmployeeName string
	Email        string
	StartTime    time.Time
	EndTime      *time.Time
	TotalHours   *float64
}
