package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/cmlabs-hris/worklog-backend-go/internal/domain/worklog"
	"github.com/cmlabs-hris/worklog-backend-go/internal/pkg/export"
	reportService "github.com/cmlabs-hris/worklog-backend-go/internal/service/report"
	"github.com/spf13/cobra"
)

const outputJSON = "json"

type reportFlags struct {
	tz          string
	days        int
	includeOpen bool
	format      string
	start       string
	end         string
	email       string
	name        string
	output      string
	out         string
}

func (f reportFlags) request(cmd *cobra.Command) worklog.DailyReportRequest {
	req := worklog.DailyReportRequest{
		TZ:     f.tz,
		Format: f.format,
		Start:  f.start,
		End:    f.end,
		Email:  f.email,
		Name:   f.name,
	}
	if cmd.Flags().Changed("days") {
		req.Days = strconv.Itoa(f.days)
	}
	if cmd.Flags().Changed("include-open") {
		req.IncludeOpen = strconv.FormatBool(f.includeOpen)
	}
	return req
}

func newReportCommand(env Env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Build work log reports",
	}

	var flags reportFlags
	daily := &cobra.Command{
		Use:   "daily",
		Short: "Aggregate work logs into per-day totals",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDailyReport(cmd, env, flags)
		},
	}
	daily.Flags().StringVar(&flags.tz, "tz", worklog.DefaultReportTZ, "IANA timezone for day boundaries")
	daily.Flags().IntVar(&flags.days, "days", worklog.DefaultReportDays, "Number of most recent days to keep")
	daily.Flags().BoolVar(&flags.includeOpen, "include-open", false, "Include sessions that have not ended")
	daily.Flags().StringVar(&flags.format, "format", string(worklog.FormatGrouped), "JSON shape: grouped or flat")
	daily.Flags().StringVar(&flags.start, "start", "", "Earliest start time (ISO8601 or YYYY-MM-DD)")
	daily.Flags().StringVar(&flags.end, "end", "", "Latest start time (ISO8601 or YYYY-MM-DD)")
	daily.Flags().StringVar(&flags.email, "email", "", "Only this employee email")
	daily.Flags().StringVar(&flags.name, "name", "", "Only employees with exactly this name")
	daily.Flags().StringVar(&flags.output, "output", outputJSON, "Output: json, csv, xlsx, pdf")
	daily.Flags().StringVar(&flags.out, "out", "", "Write to this file instead of stdout")

	cmd.AddCommand(daily)
	return cmd
}

func runDailyReport(cmd *cobra.Command, env Env, flags reportFlags) error {
	output := strings.ToLower(strings.TrimSpace(flags.output))
	var format export.Format
	if output != outputJSON {
		f, err := export.ParseFormat(output)
		if err != nil {
			return err
		}
		format = f
		flags.format = string(worklog.FormatFlat)
	}

	repos, err := openRepositories(cmd, env)
	if err != nil {
		return err
	}
	defer repos.Close(cmd.Context())

	report, err := reportService.NewReportService(repos.Employees, nil).DailyReport(cmd.Context(), flags.request(cmd))
	if err != nil {
		return err
	}

	if flags.out == "" {
		return writeReport(cmd.OutOrStdout(), output, format, report)
	}

	f, err := env.CreateFile(flags.out)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", flags.out, err)
	}
	if err := writeReport(f, output, format, report); err != nil {
		_ = f.Close()
		return err
	}
	// buffered export data is flushed on close
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to write %s: %w", flags.out, err)
	}
	return nil
}

func writeReport(w io.Writer, output string, format export.Format, report worklog.DailyReport) error {
	if output == outputJSON {
		return writeJSON(w, report)
	}
	return export.Write(w, format, report.Flat)
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
