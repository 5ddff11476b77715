package worklog

import (
	"errors"
	"fmt"
)

// Error categories. Every error below wraps exactly one of them.
var (
	ErrConflict      = errors.New("conflict")
	ErrNotFound      = errors.New("not found")
	ErrInvalidConfig = errors.New("invalid report configuration")
)

var (
	ErrSessionAlreadyRunning error = &categorized{msg: "session already running", kind: ErrConflict}
	ErrNoActiveSession       error = &categorized{msg: "no active session", kind: ErrConflict}
	ErrConcurrentUpdate      error = &categorized{msg: "employee was modified concurrently, retry", kind: ErrConflict}
	ErrEmailExists           error = &categorized{msg: "email already registered", kind: ErrConflict}
	ErrEmployeeNotFound      error = &categorized{msg: "employee not found", kind: ErrNotFound}
)

type categorized struct {
	msg  string
	kind error
}

func (e *categorized) Error() string { return e.msg }

func (e *categorized) Unwrap() error { return e.kind }

// ConfigError reports an unusable aggregation parameter such as an unknown
// timezone or a non-positive day count.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

func (e *ConfigError) Unwrap() error { return ErrInvalidConfig }
