package report

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/worklog-backend-go/internal/domain/worklog"
	"github.com/cmlabs-hris/worklog-backend-go/internal/metrics"
)

type ReportServiceImpl struct {
	employeeRepo worklog.EmployeeRepository
	metrics      metrics.MetricsCollector
}

func NewReportService(employeeRepo worklog.EmployeeRepository, m metrics.MetricsCollector) worklog.ReportService {
	if m == nil {
		m = metrics.Nop{}
	}
	return &ReportServiceImpl{
		employeeRepo: employeeRepo,
		metrics:      m,
	}
}

// DailyReport implements worklog.ReportService.
func (s *ReportServiceImpl) DailyReport(ctx context.Context, req worklog.DailyReportRequest) (worklog.DailyReport, error) {
	began := time.Now()

	cfg, err := req.Resolve()
	if err != nil {
		s.metrics.RecordReport(formatLabel(req.Format), metrics.OutcomeInvalid, time.Since(began))
		return worklog.DailyReport{}, err
	}

	report, err := s.build(ctx, cfg)
	if err != nil {
		s.metrics.RecordReport(string(cfg.Format), metrics.OutcomeError, time.Since(began))
		return worklog.DailyReport{}, err
	}

	s.metrics.RecordReport(string(cfg.Format), metrics.OutcomeSuccess, time.Since(began))
	return report, nil
}

func (s *ReportServiceImpl) build(ctx context.Context, cfg worklog.ReportConfig) (worklog.DailyReport, error) {
	rows, err := s.employeeRepo.ListRows(ctx, cfg.Filter)
	if err != nil {
		return worklog.DailyReport{}, fmt.Errorf("failed to list work logs: %w", err)
	}

	bucketed := bucketize(filterRows(rows, cfg.Filter), cfg.Location)

	if cfg.Format == worklog.FormatFlat {
		return worklog.DailyReport{
			Format: worklog.FormatFlat,
			Flat:   shapeFlat(bucketed, cfg.TZ),
		}, nil
	}

	days := latest(groupByDay(groupByEmployeeDay(bucketed)), cfg.Days)
	return worklog.DailyReport{
		Format:  worklog.FormatGrouped,
		Grouped: shapeGrouped(days, cfg.TZ, cfg.Days),
	}, nil
}

// formatLabel keeps metric label cardinality bounded for rejected requests.
func formatLabel(raw string) string {
	switch worklog.ReportFormat(raw) {
	case "":
		return string(worklog.FormatGrouped)
	case worklog.FormatFlat, worklog.FormatGrouped:
		return raw
	}
	return "unknown"
}
