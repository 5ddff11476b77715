package fixtures

import (
	"context"
	"testing"
	"time"

	"github.com/cmlabs-hris/worklog-backend-go/internal/repository/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeedDemo_CreatesOnce(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewEmployeeRepository()
	now := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

	first, created, err := SeedDemo(ctx, repo, now)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, DemoEmployeeName, first.Name)
	assert.Equal(t, DemoEmployeeEmail, first.Email)
	require.NotNil(t, first.Age)
	assert.Equal(t, 26, *first.Age)
	assert.Equal(t, 3.0, first.Rating)
	assert.Empty(t, first.UserID)
	assert.Empty(t, first.WorkLogs)

	second, created, err := SeedDemo(ctx, repo, now.Add(time.Hour))
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)
}
