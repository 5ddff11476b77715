package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/cmlabs-hris/worklog-backend-go/internal/domain/worklog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmployeeRepository_CreateAndLookup(t *testing.T) {
	ctx := context.Background()
	repo := NewEmployeeRepository()

	created, err := repo.Create(ctx, worklog.Employee{UserID: "u1", Name: "Jane", Email: " Jane@Example.com"})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "jane@example.com", created.Email)

	byEmail, err := repo.GetByEmail(ctx, "JANE@example.com")
	require.NoError(t, err)
	assert.Equal(t, created.ID, byEmail.ID)

	byUser, err := repo.GetByUserID(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, created.ID, byUser.ID)

	_, err = repo.Create(ctx, worklog.Employee{Name: "Other", Email: "jane@example.com"})
	assert.ErrorIs(t, err, worklog.ErrEmailExists)

	_, err = repo.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, worklog.ErrEmployeeNotFound)
	_, err = repo.GetByUserID(ctx, "")
	assert.ErrorIs(t, err, worklog.ErrEmployeeNotFound)
}

func TestEmployeeRepository_UpdateProfileRejectsTakenEmail(t *testing.T) {
	ctx := context.Background()
	repo := NewEmployeeRepository()
	a, err := repo.Create(ctx, worklog.Employee{Name: "A", Email: "a@example.com"})
	require.NoError(t, err)
	_, err = repo.Create(ctx, worklog.Employee{Name: "B", Email: "b@example.com"})
	require.NoError(t, err)

	a.Email = "b@example.com"
	_, err = repo.UpdateProfile(ctx, a)
	assert.ErrorIs(t, err, worklog.ErrEmailExists)

	a.Email = "a2@example.com"
	a.Name = "Alice"
	updated, err := repo.UpdateProfile(ctx, a)
	require.NoError(t, err)
	assert.Equal(t, "Alice", updated.Name)
	assert.Equal(t, "a2@example.com", updated.Email)
}

func TestEmployeeRepository_MutateLogsDiscardsOnError(t *testing.T) {
	ctx := context.Background()
	repo := NewEmployeeRepository()
	e, err := repo.Create(ctx, worklog.Employee{Name: "A", Email: "a@example.com"})
	require.NoError(t, err)

	boom := errors.New("boom")
	_, err = repo.MutateLogs(ctx, e.ID, func(e *worklog.Employee) error {
		e.WorkLogs = append(e.WorkLogs, worklog.WorkLog{StartTime: time.Now()})
		return boom
	})
	assert.ErrorIs(t, err, boom)

	got, err := repo.GetByID(ctx, e.ID)
	require.NoError(t, err)
	assert.Empty(t, got.WorkLogs)

	_, err = repo.MutateLogs(ctx, "missing", func(*worklog.Employee) error { return nil })
	assert.ErrorIs(t, err, worklog.ErrEmployeeNotFound)
}

func TestEmployeeRepository_ConcurrentStartsLeaveOneOpenLog(t *testing.T) {
	ctx := context.Background()
	repo := NewEmployeeRepository()
	e, err := repo.Create(ctx, worklog.Employee{Name: "A", Email: "a@example.com"})
	require.NoError(t, err)

	const workers = 16
	var wg sync.WaitGroup
	var mu sync.Mutex
	var successes, conflicts int
	now := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := repo.MutateLogs(ctx, e.ID, func(e *worklog.Employee) error {
				_, err := worklog.ApplyPunch(e, worklog.ActionStart, now)
				return err
			})
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				successes++
			} else if errors.Is(err, worklog.ErrSessionAlreadyRunning) {
				conflicts++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, successes)
	assert.Equal(t, workers-1, conflicts)

	got, err := repo.GetByID(ctx, e.ID)
	require.NoError(t, err)
	assert.Len(t, got.WorkLogs, 1)

	open, err := repo.CountOpenLogs(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, open)
}

func TestEmployeeRepository_ListRowsAppliesFilter(t *testing.T) {
	ctx := context.Background()
	repo := NewEmployeeRepository()
	start := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	end := start.Add(time.Hour)

	for _, email := range []string{"a@example.com", "b@example.com"} {
		e, err := repo.Create(ctx, worklog.Employee{Name: email, Email: email})
		require.NoError(t, err)
		_, err = repo.MutateLogs(ctx, e.ID, func(e *worklog.Employee) error {
			e.WorkLogs = []worklog.WorkLog{{StartTime: start, EndTime: &end}, {StartTime: end.Add(time.Hour)}}
			return nil
		})
		require.NoError(t, err)
	}

	rows, err := repo.ListRows(ctx, worklog.RowFilter{})
	require.NoError(t, err)
	assert.Len(t, rows, 2)

	rows, err = repo.ListRows(ctx, worklog.RowFilter{IncludeOpen: true})
	require.NoError(t, err)
	assert.Len(t, rows, 4)

	email := "b@example.com"
	rows, err = repo.ListRows(ctx, worklog.RowFilter{Email: &email, IncludeOpen: true})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "b@example.com", rows[0].Email)
	assert.Equal(t, start, rows[0].Log.StartTime)
}
