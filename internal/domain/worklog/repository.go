package worklog

import (
	"context"
	"time"
)

// RowFilter narrows the expanded (employee, work log) rows scanned for a
// report. Storage backends push it down where they can; Match is the
// reference semantics every backend must agree with.
type RowFilter struct {
	Email       *string
	Name        *string
	IncludeOpen bool
	Start       *time.Time
	End         *time.Time
}

// Match reports whether row passes the equality, openness and inclusive
// start-time range filters.
func (f RowFilter) Match(row Row) bool {
	if f.Email != nil && row.Email != *f.Email {
		return false
	}
	if f.Name != nil && row.Name != *f.Name {
		return false
	}
	if f.IncludeOpen {
		if row.Log.StartTime.IsZero() {
			return false
		}
	} else if row.Log.EndTime == nil {
		return false
	}
	if f.Start != nil && row.Log.StartTime.Before(*f.Start) {
		return false
	}
	if f.End != nil && row.Log.StartTime.After(*f.End) {
		return false
	}
	return true
}

// EmployeeRepository persists employees together with their embedded work logs.
type EmployeeRepository interface {
	// GetByID returns ErrEmployeeNotFound when no employee has the id.
	GetByID(ctx context.Context, id string) (Employee, error)

	// GetByUserID returns ErrEmployeeNotFound when no employee is linked to
	// the user.
	GetByUserID(ctx context.Context, userID string) (Employee, error)

	// GetByEmail looks up by the lower-cased email. Returns ErrEmployeeNotFound
	// when absent.
	GetByEmail(ctx context.Context, email string) (Employee, error)

	// Create inserts a new employee. Returns ErrEmailExists on a duplicate email.
	Create(ctx context.Context, e Employee) (Employee, error)

	// UpdateProfile overwrites the linked user, name, email, age, start working
	// date and rating. Returns ErrEmailExists on a duplicate email.
	UpdateProfile(ctx context.Context, e Employee) (Employee, error)

	// MutateLogs loads the employee inside an exclusive per-employee scope,
	// runs fn, and persists the last work log if fn returns nil. Concurrent
	// callers for the same employee are serialized or rejected with a
	// conflict error; they never both succeed on the same prior state.
	MutateLogs(ctx context.Context, id string, fn func(e *Employee) error) (Employee, error)

	// ListRows returns rows matching filter, ordered by employee then log
	// insertion order.
	ListRows(ctx context.Context, filter RowFilter) ([]Row, error)

	// CountOpenLogs returns how many employees currently have an open log.
	CountOpenLogs(ctx context.Context) (int, error)
}
