package worklog

import (
	"context"
	"time"

	"github.com/cmlabs-hris/worklog-backend-go/internal/domain/auth"
)

type WorklogService interface {
	// ResolveEmployee returns the employee record for identity, creating it
	// from the identity's name and email on first access.
	ResolveEmployee(ctx context.Context, identity auth.Identity) (Employee, error)

	GetProfile(ctx context.Context, identity auth.Identity) (EmployeeResponse, error)
	UpdateProfile(ctx context.Context, identity auth.Identity, req UpdateProfileRequest) (EmployeeResponse, error)

	// Punch starts or ends a work session for the employee at now.
	Punch(ctx context.Context, employeeID string, action Action, now time.Time) (PunchResponse, error)
	GetPunchStatus(ctx context.Context, employeeID string) (PunchStatusResponse, error)
}

type ReportService interface {
	// DailyReport aggregates work logs into day buckets in the requested
	// timezone and shapes them as a grouped or flat report.
	DailyReport(ctx context.Context, req DailyReportRequest) (DailyReport, error)
}
