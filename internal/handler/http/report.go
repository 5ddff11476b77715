package http

import (
	"bytes"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/cmlabs-hris/worklog-backend-go/internal/domain/worklog"
	"github.com/cmlabs-hris/worklog-backend-go/internal/handler/http/response"
	"github.com/cmlabs-hris/worklog-backend-go/internal/pkg/export"
)

type ReportHandler interface {
	// Daily work-log report, grouped or flat
	GetDailyReport(w http.ResponseWriter, r *http.Request)

	// Flat daily report as a csv, xlsx or pdf download
	ExportDailyReport(w http.ResponseWriter, r *http.Request)
}

type reportHandlerImpl struct {
	reportService worklog.ReportService
}

func NewReportHandler(reportService worklog.ReportService) ReportHandler {
	return &reportHandlerImpl{
		reportService: reportService,
	}
}

func dailyReportRequest(r *http.Request) worklog.DailyReportRequest {
	q := r.URL.Query()
	return worklog.DailyReportRequest{
		TZ:          q.Get("tz"),
		Days:        q.Get("days"),
		IncludeOpen: q.Get("includeOpen"),
		Format:      q.Get("format"),
		Start:       q.Get("start"),
		End:         q.Get("end"),
		Email:       q.Get("email"),
		Name:        q.Get("name"),
	}
}

// GetDailyReport handles GET /worklogs/daily
func (h *reportHandlerImpl) GetDailyReport(w http.ResponseWriter, r *http.Request) {
	result, err := h.reportService.DailyReport(r.Context(), dailyReportRequest(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, result)
}

// ExportDailyReport handles GET /worklogs/daily/export?type=csv|xlsx|pdf
func (h *reportHandlerImpl) ExportDailyReport(w http.ResponseWriter, r *http.Request) {
	format, err := export.ParseFormat(r.URL.Query().Get("type"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	req := dailyReportRequest(r)
	req.Format = string(worklog.FormatFlat)

	result, err := h.reportService.DailyReport(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	var buf bytes.Buffer
	if err := export.Write(&buf, format, result.Flat); err != nil {
		slog.Error("Failed to render report export", "format", format, "error", err)
		response.HandleError(w, err)
		return
	}

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", `attachment; filename="`+format.Filename(time.Now())+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}
