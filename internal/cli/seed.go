package cli

import (
	"fmt"
	"time"

	"github.com/cmlabs-hris/worklog-backend-go/internal/fixtures"
	"github.com/spf13/cobra"
)

func newSeedCommand(env Env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Insert fixture data",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "demo",
		Short: "Insert the demo employee if it does not exist",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			repos, err := openRepositories(cmd, env)
			if err != nil {
				return err
			}
			defer repos.Close(cmd.Context())

			e, created, err := fixtures.SeedDemo(cmd.Context(), repos.Employees, time.Now())
			if err != nil {
				return err
			}
			if created {
				fmt.Fprintf(cmd.OutOrStdout(), "Inserted demo employee %s (%s)\n", e.Email, e.ID)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "Demo employee %s already exists\n", e.Email)
			}
			return nil
		},
	})
	return cmd
}
