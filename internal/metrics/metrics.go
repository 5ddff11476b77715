// Package metrics collects and exposes Prometheus metrics for punches,
// reports and notifications.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Punch and report outcomes used as label values.
const (
	OutcomeSuccess  = "success"
	OutcomeConflict = "conflict"
	OutcomeInvalid  = "invalid"
	OutcomeError    = "error"
)

// MetricsCollector is the interface services record through.
type MetricsCollector interface {
	RecordPunch(action string, outcome string)
	RecordReport(format string, outcome string, duration time.Duration)
	RecordNotification(err error)
	SetOpenSessions(n int)
}

// Collector is the Prometheus-backed MetricsCollector.
type Collector struct {
	punches       *prometheus.CounterVec
	reports       *prometheus.CounterVec
	reportLatency prometheus.Histogram
	notifySent    prometheus.Counter
	notifyFailed  prometheus.Counter
	openSessions  prometheus.Gauge
}

// NewCollector creates a Collector and registers its metrics with reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		punches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "worklog_punch_total",
			Help: "Punch requests by action and outcome",
		}, []string{"action", "outcome"}),
		reports: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "worklog_report_total",
			Help: "Daily report requests by format and outcome",
		}, []string{"format", "outcome"}),
		reportLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "worklog_report_duration_seconds",
			Help:    "Time spent building a daily report",
			Buckets: prometheus.DefBuckets,
		}),
		notifySent: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "worklog_notification_sent_total",
			Help: "Punch notifications delivered",
		}),
		notifyFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "worklog_notification_failed_total",
			Help: "Punch notifications that failed to deliver",
		}),
		openSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "worklog_open_sessions",
			Help: "Employees with a work session currently running",
		}),
	}

	reg.MustRegister(
		c.punches,
		c.reports,
		c.reportLatency,
		c.notifySent,
		c.notifyFailed,
		c.openSessions,
	)

	return c
}

func (c *Collector) RecordPunch(action string, outcome string) {
	c.punches.WithLabelValues(action, outcome).Inc()
}

func (c *Collector) RecordReport(format string, outcome string, duration time.Duration) {
	c.reports.WithLabelValues(format, outcome).Inc()
	c.reportLatency.Observe(duration.Seconds())
}

// RecordNotification counts a delivery attempt; a nil err counts as sent.
func (c *Collector) RecordNotification(err error) {
	if err != nil {
		c.notifyFailed.Inc()
		return
	}
	c.notifySent.Inc()
}

func (c *Collector) SetOpenSessions(n int) {
	c.openSessions.Set(float64(n))
}

// Handler returns the scrape handler for gatherer.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// Nop discards every measurement.
type Nop struct{}

func (Nop) RecordPunch(string, string)                 {}
func (Nop) RecordReport(string, string, time.Duration) {}
func (Nop) RecordNotification(error)                   {}
func (Nop) SetOpenSessions(int)                        {}
