package cli

import (
	"fmt"

	"github.com/cmlabs-hris/worklog-backend-go/internal/config"
	"github.com/cmlabs-hris/worklog-backend-go/internal/pkg/database"
	"github.com/spf13/cobra"
)

func migrateDatabase(databaseURL string, up bool) error {
	if up {
		return database.RunMigrations(databaseURL)
	}
	return database.RollbackMigrations(databaseURL)
}

func newMigrateCommand(env Env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or roll back the PostgreSQL schema",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply every pending migration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrate(cmd, env, true)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Revert every applied migration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrate(cmd, env, false)
		},
	})
	return cmd
}

func runMigrate(cmd *cobra.Command, env Env, up bool) error {
	cfg, err := loadConfig(env)
	if err != nil {
		return err
	}
	// sqlite and mongodb manage their schema on open
	if cfg.Database.Driver != config.DriverPostgres {
		return fmt.Errorf("migrate requires STORAGE_DRIVER=%s, got %q", config.DriverPostgres, cfg.Database.Driver)
	}
	if err := env.Migrate(cfg.DatabaseURL(), up); err != nil {
		return err
	}

	direction := "applied"
	if !up {
		direction = "rolled back"
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Migrations %s\n", direction)
	return nil
}
