package repository

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/cmlabs-hris/worklog-backend-go/internal/config"
	"github.com/cmlabs-hris/worklog-backend-go/internal/domain/worklog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen_Memory(t *testing.T) {
	repos, err := Open(context.Background(), &config.Config{Database: config.DatabaseConfig{Driver: config.DriverMemory}})
	require.NoError(t, err)
	defer repos.Close(context.Background())

	assert.Equal(t, config.DriverMemory, repos.Driver)
	_, err = repos.Employees.GetByID(context.Background(), "missing")
	assert.ErrorIs(t, err, worklog.ErrEmployeeNotFound)
}

func TestOpen_SQLite(t *testing.T) {
	cfg := &config.Config{
		Database: config.DatabaseConfig{Driver: config.DriverSQLite},
		SQLite:   config.SQLiteConfig{Path: filepath.Join(t.TempDir(), "worklog.db")},
	}
	repos, err := Open(context.Background(), cfg)
	require.NoError(t, err)
	defer repos.Close(context.Background())

	created, err := repos.Employees.Create(context.Background(), worklog.Employee{Name: "A", Email: "a@example.com"})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), &config.Config{Database: config.DatabaseConfig{Driver: "oracle"}})
	assert.Error(t, err)
}
