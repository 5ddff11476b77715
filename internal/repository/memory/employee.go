// Package memory provides process-local repositories used by the memory
// storage driver and by tests.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/cmlabs-hris/worklog-backend-go/internal/domain/worklog"
	"github.com/google/uuid"
)

type employeeRepositoryImpl struct {
	mu        sync.RWMutex
	employees map[string]*worklog.Employee
	order     []string
	// locks serializes MutateLogs per employee.
	locks map[string]*sync.Mutex
	now   func() time.Time
}

func NewEmployeeRepository() worklog.EmployeeRepository {
	return &employeeRepositoryImpl{
		employees: make(map[string]*worklog.Employee),
		locks:     make(map[string]*sync.Mutex),
		now:       time.Now,
	}
}

// GetByID implements worklog.EmployeeRepository.
func (r *employeeRepositoryImpl) GetByID(ctx context.Context, id string) (worklog.Employee, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.employees[id]
	if !ok {
		return worklog.Employee{}, worklog.ErrEmployeeNotFound
	}
	return clone(*e), nil
}

// GetByUserID implements worklog.EmployeeRepository.
func (r *employeeRepositoryImpl) GetByUserID(ctx context.Context, userID string) (worklog.Employee, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, id := range r.order {
		if e := r.employees[id]; e.UserID != "" && e.UserID == userID {
			return clone(*e), nil
		}
	}
	return worklog.Employee{}, worklog.ErrEmployeeNotFound
}

// GetByEmail implements worklog.EmployeeRepository.
func (r *employeeRepositoryImpl) GetByEmail(ctx context.Context, email string) (worklog.Employee, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	email = worklog.NormalizeEmail(email)
	for _, id := range r.order {
		if e := r.employees[id]; e.Email == email {
			return clone(*e), nil
		}
	}
	return worklog.Employee{}, worklog.ErrEmployeeNotFound
}

// Create implements worklog.EmployeeRepository.
func (r *employeeRepositoryImpl) Create(ctx context.Context, e worklog.Employee) (worklog.Employee, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e.Email = worklog.NormalizeEmail(e.Email)
	if r.emailTaken(e.Email, "") {
		return worklog.Employee{}, worklog.ErrEmailExists
	}
	if e.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return worklog.Employee{}, err
		}
		e.ID = id.String()
	}
	now := r.now().UTC()
	e.CreatedAt, e.UpdatedAt = now, now
	e.Version = 1

	stored := clone(e)
	r.employees[e.ID] = &stored
	r.order = append(r.order, e.ID)
	r.locks[e.ID] = &sync.Mutex{}
	return clone(stored), nil
}

// UpdateProfile implements worklog.EmployeeRepository.
func (r *employeeRepositoryImpl) UpdateProfile(ctx context.Context, e worklog.Employee) (worklog.Employee, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.employees[e.ID]
	if !ok {
		return worklog.Employee{}, worklog.ErrEmployeeNotFound
	}
	email := worklog.NormalizeEmail(e.Email)
	if r.emailTaken(email, e.ID) {
		return worklog.Employee{}, worklog.ErrEmailExists
	}

	stored.UserID = e.UserID
	stored.Name = e.Name
	stored.Email = email
	stored.Age = e.Age
	stored.StartWorkingDate = e.StartWorkingDate
	stored.Rating = e.Rating
	stored.UpdatedAt = r.now().UTC()
	stored.Version++
	return clone(*stored), nil
}

// MutateLogs implements worklog.EmployeeRepository.
func (r *employeeRepositoryImpl) MutateLogs(ctx context.Context, id string, fn func(e *worklog.Employee) error) (worklog.Employee, error) {
	r.mu.RLock()
	lock, ok := r.locks[id]
	r.mu.RUnlock()
	if !ok {
		return worklog.Employee{}, worklog.ErrEmployeeNotFound
	}

	lock.Lock()
	defer lock.Unlock()

	if err := ctx.Err(); err != nil {
		return worklog.Employee{}, err
	}

	current, err := r.GetByID(ctx, id)
	if err != nil {
		return worklog.Employee{}, err
	}
	if err := fn(&current); err != nil {
		return worklog.Employee{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	stored := r.employees[id]
	stored.WorkLogs = clone(current).WorkLogs
	stored.UpdatedAt = r.now().UTC()
	stored.Version++
	return clone(*stored), nil
}

// ListRows implements worklog.EmployeeRepository.
func (r *employeeRepositoryImpl) ListRows(ctx context.Context, filter worklog.RowFilter) ([]worklog.Row, error) {
	r.mu.RLock()
	employees := make([]worklog.Employee, 0, len(r.order))
	for _, id := range r.order {
		employees = append(employees, clone(*r.employees[id]))
	}
	r.mu.RUnlock()

	var rows []worklog.Row
	for _, row := range worklog.Expand(employees) {
		if filter.Match(row) {
			rows = append(rows, row)
		}
	}
	return rows, nil
}

// CountOpenLogs implements worklog.EmployeeRepository.
func (r *employeeRepositoryImpl) CountOpenLogs(ctx context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n := 0
	for _, e := range r.employees {
		if e.HasOpenLog() {
			n++
		}
	}
	return n, nil
}

func (r *employeeRepositoryImpl) emailTaken(email, exceptID string) bool {
	for id, e := range r.employees {
		if id != exceptID && e.Email == email {
			return true
		}
	}
	return false
}

// clone copies e so that callers never share work log storage with the map.
func clone(e worklog.Employee) worklog.Employee {
	if e.WorkLogs != nil {
		logs := make([]worklog.WorkLog, len(e.WorkLogs))
		copy(logs, e.WorkLogs)
		e.WorkLogs = logs
	}
	return e
}
