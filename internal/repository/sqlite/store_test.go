package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/cmlabs-hris/worklog-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/worklog-backend-go/internal/domain/worklog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewMemory()
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStore_MigrateIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "worklog.db")

	s, err := New(path)
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = New(path)
	require.NoError(t, err)
	defer s.Close()

	var version int
	require.NoError(t, s.db.QueryRow("PRAGMA user_version").Scan(&version))
	assert.Equal(t, currentVersion, version)
}

func TestTimeLayout_SortsLexically(t *testing.T) {
	early := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	late := early.Add(1500 * time.Millisecond)
	assert.Less(t, formatTime(early), formatTime(late))
	assert.Len(t, formatTime(early), len(timeLayout))

	parsed, err := parseTime(formatTime(late))
	require.NoError(t, err)
	assert.True(t, parsed.Equal(late))
}

func TestUserRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository(newTestStore(t))

	hash := "hash"
	created, err := repo.Create(ctx, user.User{Name: "Jane", Email: " Jane@Example.com", PasswordHash: &hash})
	require.NoError(t, err)
	assert.Equal(t, "jane@example.com", created.Email)
	assert.True(t, created.HasPassword())

	_, err = repo.Create(ctx, user.User{Name: "Dup", Email: "jane@example.com"})
	assert.ErrorIs(t, err, user.ErrUserEmailExists)

	byEmail, err := repo.GetByEmail(ctx, "JANE@example.com")
	require.NoError(t, err)
	assert.Equal(t, created.ID, byEmail.ID)

	linked, err := repo.LinkGoogleAccount(ctx, "g-1", "jane@example.com")
	require.NoError(t, err)
	require.NotNil(t, linked.OAuthProviderID)
	assert.Equal(t, "g-1", *linked.OAuthProviderID)

	_, err = repo.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, user.ErrUserNotFound)
	_, err = repo.LinkGoogleAccount(ctx, "g-2", "nobody@example.com")
	assert.ErrorIs(t, err, user.ErrUserNotFound)
}

func TestEmployeeRepository_CreateAndUpdate(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	users := NewUserRepository(s)
	repo := NewEmployeeRepository(s)

	u, err := users.Create(ctx, user.User{Name: "Jane", Email: "jane@example.com"})
	require.NoError(t, err)

	age := 26
	swd := time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC)
	created, err := repo.Create(ctx, worklog.Employee{UserID: u.ID, Name: "Jane", Email: "Jane@example.com", Age: &age, StartWorkingDate: &swd, Rating: 3})
	require.NoError(t, err)
	assert.Equal(t, "jane@example.com", created.Email)
	require.NotNil(t, created.Age)
	assert.Equal(t, 26, *created.Age)
	require.NotNil(t, created.StartWorkingDate)
	assert.True(t, created.StartWorkingDate.Equal(swd))
	assert.EqualValues(t, 1, created.Version)

	byUser, err := repo.GetByUserID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, byUser.ID)

	_, err = repo.Create(ctx, worklog.Employee{Name: "Other", Email: "other@example.com"})
	require.NoError(t, err)

	created.Email = "other@example.com"
	_, err = repo.UpdateProfile(ctx, created)
	assert.ErrorIs(t, err, worklog.ErrEmailExists)

	created.Email = "jane@example.com"
	created.Name = "Janet"
	created.Age = nil
	updated, err := repo.UpdateProfile(ctx, created)
	require.NoError(t, err)
	assert.Equal(t, "Janet", updated.Name)
	assert.Nil(t, updated.Age)
	assert.EqualValues(t, 2, updated.Version)

	_, err = repo.UpdateProfile(ctx, worklog.Employee{ID: "missing", Email: "x@example.com"})
	assert.ErrorIs(t, err, worklog.ErrEmployeeNotFound)
}

func TestEmployeeRepository_PunchRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := NewEmployeeRepository(newTestStore(t))
	e, err := repo.Create(ctx, worklog.Employee{Name: "A", Email: "a@example.com"})
	require.NoError(t, err)

	start := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	_, err = repo.MutateLogs(ctx, e.ID, func(e *worklog.Employee) error {
		_, err := worklog.ApplyPunch(e, worklog.ActionStart, start)
		return err
	})
	require.NoError(t, err)

	open, err := repo.CountOpenLogs(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, open)

	_, err = repo.MutateLogs(ctx, e.ID, func(e *worklog.Employee) error {
		_, err := worklog.ApplyPunch(e, worklog.ActionEnd, start.Add(2*time.Hour))
		return err
	})
	require.NoError(t, err)

	got, err := repo.GetByID(ctx, e.ID)
	require.NoError(t, err)
	require.Len(t, got.WorkLogs, 1)
	require.NotNil(t, got.WorkLogs[0].EndTime)
	assert.InDelta(t, 2.0, *got.WorkLogs[0].TotalHours, 1e-9)
	assert.EqualValues(t, 3, got.Version)

	boom := errors.New("boom")
	_, err = repo.MutateLogs(ctx, e.ID, func(e *worklog.Employee) error {
		e.WorkLogs = append(e.WorkLogs, worklog.WorkLog{StartTime: start.Add(3 * time.Hour)})
		return boom
	})
	assert.ErrorIs(t, err, boom)

	got, err = repo.GetByID(ctx, e.ID)
	require.NoError(t, err)
	assert.Len(t, got.WorkLogs, 1)

	_, err = repo.MutateLogs(ctx, "missing", func(*worklog.Employee) error { return nil })
	assert.ErrorIs(t, err, worklog.ErrEmployeeNotFound)
}

func TestEmployeeRepository_OpenIndexRejectsSecondOpenLog(t *testing.T) {
	ctx := context.Background()
	repo := NewEmployeeRepository(newTestStore(t))
	e, err := repo.Create(ctx, worklog.Employee{Name: "A", Email: "a@example.com"})
	require.NoError(t, err)

	start := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	_, err = repo.MutateLogs(ctx, e.ID, func(e *worklog.Employee) error {
		e.WorkLogs = append(e.WorkLogs, worklog.WorkLog{StartTime: start})
		return nil
	})
	require.NoError(t, err)

	// Bypass ApplyPunch so only the index guards the invariant.
	_, err = repo.MutateLogs(ctx, e.ID, func(e *worklog.Employee) error {
		e.WorkLogs = append(e.WorkLogs, worklog.WorkLog{StartTime: start.Add(time.Hour)})
		return nil
	})
	assert.ErrorIs(t, err, worklog.ErrSessionAlreadyRunning)
}

func TestEmployeeRepository_ConcurrentStartsLeaveOneOpenLog(t *testing.T) {
	ctx := context.Background()
	repo := NewEmployeeRepository(newTestStore(t))
	e, err := repo.Create(ctx, worklog.Employee{Name: "A", Email: "a@example.com"})
	require.NoError(t, err)

	const workers = 8
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
}

func TestEmployeeRepository_ListRowsPushesDownFilter(t *testing.T) {
	ctx := context.Background()
	repo := NewEmployeeRepository(newTestStore(t))

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

	name := "b@example.com"
	rows, err = repo.ListRows(ctx, worklog.RowFilter{Name: &name, IncludeOpen: true})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.True(t, rows[0].Log.StartTime.Equal(start))
	assert.True(t, rows[0].Log.EndTime.Equal(end))

	from, to := end, end.Add(time.Hour)
	rows, err = repo.ListRows(ctx, worklog.RowFilter{IncludeOpen: true, Start: &from, End: &to})
	require.NoError(t, err)
	assert.Len(t, rows, 2)
	for _, row := range rows {
		assert.Nil(t, row.Log.EndTime)
	}
}
