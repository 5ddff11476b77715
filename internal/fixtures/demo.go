package fixtures

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/worklog-backend-go/internal/domain/worklog"
)

const (
	DemoEmployeeName  = "Demo Employee"
	DemoEmployeeEmail = "demo.employee@example.com"
	demoEmployeeAge   = 26
	demoRating        = 3
)

func intPtr(i int) *int { return &i }

// DemoEmployee returns the unlinked employee inserted by SeedDemo.
func DemoEmployee(now time.Time) worklog.Employee {
	start := now.UTC()
	return worklog.Employee{
		Name:             DemoEmployeeName,
		Email:            DemoEmployeeEmail,
		Age:              intPtr(demoEmployeeAge),
		StartWorkingDate: &start,
		Rating:           demoRating,
	}
}

// SeedDemo inserts the demo employee unless an employee with its email
// already exists. The returned bool reports whether a record was created.
func SeedDemo(ctx context.Context, repo worklog.EmployeeRepository, now time.Time) (worklog.Employee, bool, error) {
	existing, err := repo.GetByEmail(ctx, DemoEmployeeEmail)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, worklog.ErrEmployeeNotFound) {
		return worklog.Employee{}, false, fmt.Errorf("failed to look up demo employee: %w", err)
	}

	demo := DemoEmployee(now)
	if err := worklog.ValidateRating("rating", demo.Rating); err != nil {
		return worklog.Employee{}, false, err
	}
	created, err := repo.Create(ctx, demo)
	if errors.Is(err, worklog.ErrEmailExists) {
		existing, err := repo.GetByEmail(ctx, DemoEmployeeEmail)
		return existing, false, err
	}
	if err != nil {
		return worklog.Employee{}, false, fmt.Errorf("failed to create demo employee: %w", err)
	}
	return created, true, nil
}
