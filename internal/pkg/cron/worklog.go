package cron

import (
	"context"
	"time"
)

// OpenSessionRefresher recounts running sessions and publishes the gauge.
type OpenSessionRefresher interface {
	RefreshOpenSessions(ctx context.Context) error
}

// RegisterWorklogJobs schedules the periodic open-session gauge refresh.
func RegisterWorklogJobs(scheduler *Scheduler, refresher OpenSessionRefresher, interval time.Duration) {
	scheduler.AddJob("refresh_open_sessions", interval, refresher.RefreshOpenSessions)
}
