package mongodb

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/cmlabs-hris/worklog-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/worklog-backend-go/internal/domain/worklog"
	"github.com/cmlabs-hris/worklog-backend-go/internal/pkg/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

func newTestDatabase(t *testing.T) *mongo.Database {
	t.Helper()
	uri := os.Getenv("TEST_MONGO_URI")
	if uri == "" {
		t.Skip("TEST_MONGO_URI not set")
	}

	ctx := context.Background()
	m, err := database.NewMongoDB(ctx, uri, fmt.Sprintf("worklog_test_%d", time.Now().UnixNano()))
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = m.DB.Drop(context.Background())
		_ = m.Close(context.Background())
	})

	require.NoError(t, EnsureIndexes(ctx, m.DB))
	return m.DB
}

func TestRowPipeline_StagesFollowFilter(t *testing.T) {
	pipeline := rowPipeline(worklog.RowFilter{IncludeOpen: true})
	require.Len(t, pipeline, 3)
	assert.Equal(t, "$unwind", pipeline[0][0].Key)
	assert.Equal(t, "$sort", pipeline[1][0].Key)

	email := "a@example.com"
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	pipeline = rowPipeline(worklog.RowFilter{Email: &email, Start: &start})
	require.Len(t, pipeline, 5)
	assert.Equal(t, "$match", pipeline[0][0].Key)
	assert.Equal(t, bson.D{{Key: "email", Value: email}}, pipeline[0][0].Value)

	logMatch, ok := pipeline[2][0].Value.(bson.D)
	require.True(t, ok)
	require.Len(t, logMatch, 2)
	assert.Equal(t, "workLogs.endTime", logMatch[0].Key)
	assert.Equal(t, bson.M{"$gte": start}, logMatch[1].Value)
}

func TestDocuments_RoundTripEmployee(t *testing.T) {
	age := 30
	end := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	hours := 1.0
	e := worklog.Employee{
		ID:     "e1",
		Name:   "Jane",
		Email:  "Jane@Example.com",
		Age:    &age,
		Rating: 4,
		WorkLogs: []worklog.WorkLog{
			{StartTime: end.Add(-time.Hour), EndTime: &end, TotalHours: &hours},
		},
	}

	doc := toEmployeeDocument(e)
	assert.Nil(t, doc.UserID)
	assert.Equal(t, "jane@example.com", doc.Email)

	back := doc.toDomain()
	assert.Equal(t, "", back.UserID)
	require.Len(t, back.WorkLogs, 1)
	assert.Equal(t, e.WorkLogs[0], back.WorkLogs[0])
}

func TestEmployeeRepository_Integration(t *testing.T) {
	db := newTestDatabase(t)
	ctx := context.Background()
	users := NewUserRepository(db)
	repo := NewEmployeeRepository(db)

	u, err := users.Create(ctx, user.User{Name: "Jane", Email: "jane@example.com"})
	require.NoError(t, err)
	_, err = users.Create(ctx, user.User{Name: "Dup", Email: "JANE@example.com"})
	assert.ErrorIs(t, err, user.ErrUserEmailExists)

	e, err := repo.Create(ctx, worklog.Employee{UserID: u.ID, Name: "Jane", Email: "jane@example.com"})
	require.NoError(t, err)
	_, err = repo.Create(ctx, worklog.Employee{Name: "Other", Email: "jane@example.com"})
	assert.ErrorIs(t, err, worklog.ErrEmailExists)

	// Two unlinked employees must not collide on the userId index.
	_, err = repo.Create(ctx, worklog.Employee{Name: "B", Email: "b@example.com"})
	require.NoError(t, err)
	_, err = repo.Create(ctx, worklog.Employee{Name: "C", Email: "c@example.com"})
	require.NoError(t, err)

	byUser, err := repo.GetByUserID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, e.ID, byUser.ID)

	start := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	_, err = repo.MutateLogs(ctx, e.ID, func(e *worklog.Employee) error {
		_, err := worklog.ApplyPunch(e, worklog.ActionStart, start)
		return err
	})
	require.NoError(t, err)

	open, err := repo.CountOpenLogs(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, open)

	rows, err := repo.ListRows(ctx, worklog.RowFilter{})
	require.NoError(t, err)
	assert.Empty(t, rows)

	_, err = repo.MutateLogs(ctx, e.ID, func(e *worklog.Employee) error {
		_, err := worklog.ApplyPunch(e, worklog.ActionEnd, start.Add(30*time.Minute))
		return err
	})
	require.NoError(t, err)

	email := "jane@example.com"
	rows, err = repo.ListRows(ctx, worklog.RowFilter{Email: &email})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, e.ID, rows[0].EmployeeID)
	assert.True(t, rows[0].Log.StartTime.Equal(start))
	require.NotNil(t, rows[0].Log.TotalHours)
	assert.InDelta(t, 0.5, *rows[0].Log.TotalHours, 1e-9)
}

func TestEmployeeRepository_ConcurrentStartsLeaveOneOpenLog(t *testing.T) {
	db := newTestDatabase(t)
	ctx := context.Background()
	repo := NewEmployeeRepository(db)

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
			} else if errors.Is(err, worklog.ErrConflict) {
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
}
