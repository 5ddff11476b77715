package worklog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/cmlabs-hris/worklog-backend-go/internal/domain/auth"
	"github.com/cmlabs-hris/worklog-backend-go/internal/domain/notification"
	"github.com/cmlabs-hris/worklog-backend-go/internal/domain/worklog"
	"github.com/cmlabs-hris/worklog-backend-go/internal/metrics"
	"github.com/cmlabs-hris/worklog-backend-go/internal/pkg/validator"
)

const notifyTimeout = 30 * time.Second

type WorklogServiceImpl struct {
	employeeRepo worklog.EmployeeRepository
	notifier     notification.Notifier
	metrics      metrics.MetricsCollector

	// pending tracks in-flight notifications so shutdown can drain them.
	pending sync.WaitGroup
}

// NewWorklogService wires the punch service. notifier and m may be nil.
func NewWorklogService(employeeRepo worklog.EmployeeRepository, notifier notification.Notifier, m metrics.MetricsCollector) *WorklogServiceImpl {
	if m == nil {
		m = metrics.Nop{}
	}
	return &WorklogServiceImpl{
		employeeRepo: employeeRepo,
		notifier:     notifier,
		metrics:      m,
	}
}

// ResolveEmployee implements worklog.WorklogService.
func (s *WorklogServiceImpl) ResolveEmployee(ctx context.Context, identity auth.Identity) (worklog.Employee, error) {
	if identity.UserID != "" {
		e, err := s.employeeRepo.GetByUserID(ctx, identity.UserID)
		if err == nil {
			return e, nil
		}
		if !errors.Is(err, worklog.ErrEmployeeNotFound) {
			return worklog.Employee{}, fmt.Errorf("failed to get employee by user: %w", err)
		}
	}

	email := worklog.NormalizeEmail(identity.Email)
	if email == "" {
		return worklog.Employee{}, worklog.ErrEmployeeNotFound
	}

	e, err := s.claimByEmail(ctx, identity, email)
	if err == nil || !errors.Is(err, worklog.ErrEmployeeNotFound) {
		return e, err
	}

	name := strings.TrimSpace(identity.Name)
	if name == "" {
		name = email
	}
	now := time.Now().UTC()
	created, err := s.employeeRepo.Create(ctx, worklog.Employee{
		UserID:           identity.UserID,
		Name:             name,
		Email:            email,
		StartWorkingDate: &now,
	})
	if errors.Is(err, worklog.ErrEmailExists) {
		// Lost a creation race with a concurrent request for the same user.
		return s.claimByEmail(ctx, identity, email)
	}
	if err != nil {
		return worklog.Employee{}, fmt.Errorf("failed to create employee: %w", err)
	}

	slog.Info("Employee created on first access", "employee_id", created.ID, "email", created.Email)
	return created, nil
}

// claimByEmail returns the employee registered under email, linking it to
// the identity's user when it is not linked yet.
func (s *WorklogServiceImpl) claimByEmail(ctx context.Context, identity auth.Identity, email string) (worklog.Employee, error) {
	e, err := s.employeeRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, worklog.ErrEmployeeNotFound) {
			return worklog.Employee{}, err
		}
		return worklog.Employee{}, fmt.Errorf("failed to get employee by email: %w", err)
	}

	switch {
	case identity.UserID == "" || e.UserID == identity.UserID:
		return e, nil
	case e.UserID != "":
		return worklog.Employee{}, worklog.ErrEmailExists
	}

	e.UserID = identity.UserID
	linked, err := s.employeeRepo.UpdateProfile(ctx, e)
	if err != nil {
		return worklog.Employee{}, fmt.Errorf("failed to link employee: %w", err)
	}
	return linked, nil
}

// GetProfile implements worklog.WorklogService.
func (s *WorklogServiceImpl) GetProfile(ctx context.Context, identity auth.Identity) (worklog.EmployeeResponse, error) {
	e, err := s.ResolveEmployee(ctx, identity)
	if err != nil {
		return worklog.EmployeeResponse{}, err
	}
	return worklog.NewEmployeeResponse(e), nil
}

// UpdateProfile implements worklog.WorklogService.
func (s *WorklogServiceImpl) UpdateProfile(ctx context.Context, identity auth.Identity, req worklog.UpdateProfileRequest) (worklog.EmployeeResponse, error) {
	if err := req.Validate(); err != nil {
		return worklog.EmployeeResponse{}, err
	}

	e, err := s.ResolveEmployee(ctx, identity)
	if err != nil {
		return worklog.EmployeeResponse{}, err
	}
	if err := req.Apply(&e); err != nil {
		return worklog.EmployeeResponse{}, err
	}

	updated, err := s.employeeRepo.UpdateProfile(ctx, e)
	if err != nil {
		if errors.Is(err, worklog.ErrEmailExists) {
			return worklog.EmployeeResponse{}, err
		}
		return worklog.EmployeeResponse{}, fmt.Errorf("failed to update employee: %w", err)
	}
	return worklog.NewEmployeeResponse(updated), nil
}

// Punch implements worklog.WorklogService.
func (s *WorklogServiceImpl) Punch(ctx context.Context, employeeID string, action worklog.Action, now time.Time) (worklog.PunchResponse, error) {
	// Millisecond precision is what every storage backend keeps.
	now = now.UTC().Truncate(time.Millisecond)

	var entry worklog.WorkLog
	e, err := s.employeeRepo.MutateLogs(ctx, employeeID, func(e *worklog.Employee) error {
		var err error
		entry, err = worklog.ApplyPunch(e, action, now)
		return err
	})
	if err != nil {
		s.metrics.RecordPunch(string(action), punchOutcome(err))
		if errors.Is(err, worklog.ErrConflict) || errors.Is(err, worklog.ErrNotFound) || errors.Is(err, validator.ErrValidation) {
			return worklog.PunchResponse{}, err
		}
		return worklog.PunchResponse{}, fmt.Errorf("failed to record punch: %w", err)
	}
	s.metrics.RecordPunch(string(action), metrics.OutcomeSuccess)

	s.notify(ctx, e, action, entry)

	message := "Work started"
	if action == worklog.ActionEnd {
		message = "Work ended"
	}
	return worklog.PunchResponse{
		Message: message,
		Entry:   worklog.NewWorkLogResponse(entry),
	}, nil
}

// GetPunchStatus implements worklog.WorklogService.
func (s *WorklogServiceImpl) GetPunchStatus(ctx context.Context, employeeID string) (worklog.PunchStatusResponse, error) {
	e, err := s.employeeRepo.GetByID(ctx, employeeID)
	if err != nil {
		if errors.Is(err, worklog.ErrEmployeeNotFound) {
			return worklog.PunchStatusResponse{}, err
		}
		return worklog.PunchStatusResponse{}, fmt.Errorf("failed to get employee: %w", err)
	}

	resp := worklog.PunchStatusResponse{HasOpenLog: e.HasOpenLog()}
	if last := e.LastLog(); last != nil {
		entry := worklog.NewWorkLogResponse(*last)
		resp.LastEntry = &entry
	}
	return resp, nil
}

// RefreshOpenSessions updates the open sessions gauge.
func (s *WorklogServiceImpl) RefreshOpenSessions(ctx context.Context) error {
	n, err := s.employeeRepo.CountOpenLogs(ctx)
	if err != nil {
		return fmt.Errorf("failed to count open sessions: %w", err)
	}
	s.metrics.SetOpenSessions(n)
	return nil
}

// Wait blocks until every dispatched notification has finished.
func (s *WorklogServiceImpl) Wait() {
	s.pending.Wait()
}

func (s *WorklogServiceImpl) notify(ctx context.Context, e worklog.Employee, action worklog.Action, entry worklog.WorkLog) {
	if s.notifier == nil {
		return
	}

	event := notification.PunchEvent{
		Type:         notification.TypeWorkStarted,
		EmployeeID:   e.ID,
		EmployeeName: e.Name,
		Email:        e.Email,
		StartTime:    entry.StartTime,
		EndTime:      entry.EndTime,
		TotalHours:   entry.TotalHours,
	}
	if action == worklog.ActionEnd {
		event.Type = notification.TypeWorkEnded
	}

	s.pending.Add(1)
	go func() {
		defer s.pending.Done()
		nctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), notifyTimeout)
		defer cancel()

		err := s.notifier.NotifyPunch(nctx, event)
		s.metrics.RecordNotification(err)
		if err != nil {
			slog.Error("Punch notification failed", "error", err, "employee_id", event.EmployeeID, "type", event.Type)
		}
	}()
}

func punchOutcome(err error) string {
	switch {
	case errors.Is(err, worklog.ErrConflict):
		return metrics.OutcomeConflict
	case errors.Is(err, validator.ErrValidation), errors.Is(err, worklog.ErrNotFound):
		return metrics.OutcomeInvalid
	}
	return metrics.OutcomeError
}

var _ worklog.WorklogService = (*WorklogServiceImpl)(nil)
