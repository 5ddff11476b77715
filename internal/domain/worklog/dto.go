package worklog

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/cmlabs-hris/worklog-backend-go/internal/pkg/validator"
)

type PunchRequest struct {
	Action string `json:"action"`
}

func (r *PunchRequest) Validate() error {
	_, err := ParseAction(r.Action)
	return err
}

type WorkLogResponse struct {
	StartTime  time.Time  `json:"startTime"`
	EndTime    *time.Time `json:"endTime"`
	TotalHours *float64   `json:"totalHours"`
	Rating     float64    `json:"rating"`
}

func NewWorkLogResponse(l WorkLog) WorkLogResponse {
	return WorkLogResponse{
		StartTime:  l.StartTime,
		EndTime:    l.EndTime,
		TotalHours: l.TotalHours,
		Rating:     l.Rating,
	}
}

type PunchResponse struct {
	Message string          `json:"message"`
	Entry   WorkLogResponse `json:"entry"`
}

type PunchStatusResponse struct {
	HasOpenLog bool             `json:"hasOpenLog"`
	LastEntry  *WorkLogResponse `json:"lastEntry"`
}

type EmployeeResponse struct {
	ID               string     `json:"id"`
	Name             string     `json:"name"`
	Email            string     `json:"email"`
	Age              *int       `json:"age"`
	StartWorkingDate *time.Time `json:"startWorkingDate"`
	Rating           float64    `json:"rating"`
	WorkLogCount     int        `json:"workLogCount"`
	HasOpenLog       bool       `json:"hasOpenLog"`
	CreatedAt        time.Time  `json:"createdAt"`
	UpdatedAt        time.Time  `json:"updatedAt"`
}

func NewEmployeeResponse(e Employee) EmployeeResponse {
	return EmployeeResponse{
		ID:               e.ID,
		Name:             e.Name,
		Email:            e.Email,
		Age:              e.Age,
		StartWorkingDate: e.StartWorkingDate,
		Rating:           e.Rating,
		WorkLogCount:     len(e.WorkLogs),
		HasOpenLog:       e.HasOpenLog(),
		CreatedAt:        e.CreatedAt,
		UpdatedAt:        e.UpdatedAt,
	}
}

// UpdateProfileRequest changes a single profile field. Value is a string or a
// number depending on the field; null or "" clears optional fields.
type UpdateProfileRequest struct {
	Field string      `json:"field"`
	Value interface{} `json:"value"`
}

var profileFields = []string{"name", "email", "age", "startWorkingDate"}

func (r *UpdateProfileRequest) Validate() error {
	scratch := Employee{}
	return r.Apply(&scratch)
}

// Apply validates the request and writes the new value into e. The stored
// rating must still be in range for the edited record to be saved.
func (r *UpdateProfileRequest) Apply(e *Employee) error {
	if err := r.applyField(e); err != nil {
		return err
	}
	return ValidateRating("rating", e.Rating)
}

func (r *UpdateProfileRequest) applyField(e *Employee) error {
	if !validator.IsInSlice(r.Field, profileFields) {
		return validator.Field("field", "field must be one of "+strings.Join(profileFields, ", "))
	}

	switch r.Field {
	case "name":
		s, ok := r.Value.(string)
		s = strings.TrimSpace(s)
		if !ok || len(s) < 2 || len(s) > 60 {
			return validator.Field("value", "name must be between 2 and 60 characters")
		}
		e.Name = s
	case "email":
		s, ok := r.Value.(string)
		s = NormalizeEmail(s)
		if !ok || !validator.IsValidEmail(s) {
			return validator.Field("value", "email must be a valid email address")
		}
		e.Email = s
	case "age":
		age, err := optionalInt(r.Value)
		if err != nil {
			return validator.Field("value", "age must be a whole number")
		}
		if age != nil && (*age < 0 || *age > 120) {
			return validator.Field("value", "age must be between 0 and 120")
		}
		e.Age = age
	case "startWorkingDate":
		s, _ := r.Value.(string)
		if r.Value == nil || validator.IsEmpty(s) {
			e.StartWorkingDate = nil
			return nil
		}
		t, ok := validator.IsValidInstant(strings.TrimSpace(s))
		if !ok {
			return validator.Field("value", "startWorkingDate must be a YYYY-MM-DD date or ISO8601 timestamp")
		}
		t = t.UTC()
		e.StartWorkingDate = &t
	}
	return nil
}

func optionalInt(v interface{}) (*int, error) {
	switch x := v.(type) {
	case nil:
		return nil, nil
	case float64:
		if x != math.Trunc(x) {
			return nil, fmt.Errorf("not an integer: %v", x)
		}
		n := int(x)
		return &n, nil
	case string:
		x = strings.TrimSpace(x)
		if x == "" {
			return nil, nil
		}
		n, err := strconv.Atoi(x)
		if err != nil {
			return nil, err
		}
		return &n, nil
	}
	return nil, fmt.Errorf("unsupported type %T", v)
}

// NormalizeEmail lower-cases and trims an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
