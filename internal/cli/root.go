// Package cli implements worklogctl, the operator command line for schema
// migrations, report exports and demo data.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/cmlabs-hris/worklog-backend-go/internal/config"
	"github.com/cmlabs-hris/worklog-backend-go/internal/pkg/logger"
	"github.com/cmlabs-hris/worklog-backend-go/internal/repository"
	"github.com/spf13/cobra"
)

// Env carries the collaborators commands reach for. Tests replace them.
type Env struct {
	LoadConfig func() (*config.Config, error)
	Open       func(ctx context.Context, cfg *config.Config) (*repository.Repositories, error)
	Migrate    func(databaseURL string, up bool) error
	CreateFile func(name string) (io.WriteCloser, error)
	Stdout     io.Writer
}

// NewRootCommand builds the worklogctl command tree.
func NewRootCommand(env Env) *cobra.Command {
	root := &cobra.Command{
		Use:   "worklogctl",
		Short: "Operate the worklog backend",
		Long: `worklogctl manages the worklog database and produces daily reports
from the command line. It reads the same environment as the API server.`,
		SilenceUsage: true,
	}
	if env.Stdout != nil {
		root.SetOut(env.Stdout)
	}

	root.AddCommand(newMigrateCommand(env))
	root.AddCommand(newReportCommand(env))
	root.AddCommand(newSeedCommand(env))
	return root
}

// DefaultEnv wires commands to the real configuration and storage.
func DefaultEnv() Env {
	return Env{
		LoadConfig: config.Load,
		Open:       repository.Open,
		Migrate:    migrateDatabase,
		CreateFile: createFile,
		Stdout:     os.Stdout,
	}
}

// Execute is the entry point called from main.
func Execute() {
	if err := NewRootCommand(DefaultEnv()).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func createFile(name string) (io.WriteCloser, error) {
	return os.Create(name)
}

func loadConfig(env Env) (*config.Config, error) {
	cfg, err := env.LoadConfig()
	if err != nil {
		return nil, err
	}
	logger.SetupDefault(logger.Options{
		Level:   cfg.App.LogLevel,
		App:     "worklogctl",
		Version: cfg.App.Version,
		Env:     cfg.App.Env,
	})
	return cfg, nil
}

func openRepositories(cmd *cobra.Command, env Env) (*repository.Repositories, error) {
	cfg, err := loadConfig(env)
	if err != nil {
		return nil, err
	}
	return env.Open(cmd.Context(), cfg)
}
