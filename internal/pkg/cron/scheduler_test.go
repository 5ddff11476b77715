package cron

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cmlabs-hris/worklog-backend-go/internal/pkg/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingRefresher struct {
	calls atomic.Int32
}

func (c *countingRefresher) RefreshOpenSessions(ctx context.Context) error {
	c.calls.Add(1)
	return nil
}

func TestScheduler_RunsImmediatelyAndOnInterval(t *testing.T) {
	s := NewScheduler()
	r := &countingRefresher{}
	RegisterWorklogJobs(s, r, 10*time.Millisecond)

	s.Start(context.Background())
	require.Eventually(t, func() bool { return r.calls.Load() >= 3 }, time.Second, 5*time.Millisecond)
	s.Stop()

	stopped := r.calls.Load()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, stopped, r.calls.Load())
}

func TestScheduler_StopsWithParentContext(t *testing.T) {
	s := NewScheduler()
	r := &countingRefresher{}
	RegisterWorklogJobs(s, r, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	s.Start(ctx)
	require.Eventually(t, func() bool { return r.calls.Load() == 1 }, time.Second, 5*time.Millisecond)

	cancel()
	done := make(chan struct{})
	go func() {
		s.Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop")
	}
}

func TestScheduler_RunOnceReportsFailuresAndPanics(t *testing.T) {
	s := NewScheduler()
	boom := errors.New("boom")
	var ran []string
	s.AddJob("fails", time.Minute, func(ctx context.Context) error {
		ran = append(ran, "fails")
		return boom
	})
	s.AddJob("panics", time.Minute, func(ctx context.Context) error {
		ran = append(ran, "panics")
		panic("unexpected")
	})
	s.AddJob("ok", time.Minute, func(ctx context.Context) error {
		ran = append(ran, "ok")
		_, hasDeadline := ctx.Deadline()
		assert.True(t, hasDeadline)
		return nil
	})

	err := s.RunOnce(context.Background())
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, []string{"fails", "panics", "ok"}, ran)
}

func TestScheduler_StopWithoutStart(t *testing.T) {
	assert.NotPanics(t, func() { NewScheduler().Stop() })
}

func TestRegisterAuthJobs_PrunesExpiredRevocations(t *testing.T) {
	js := jwt.NewJWTService("test-secret", "-1h", false)
	token, _, err := js.GenerateAccessToken("u1", "Jane", "jane@example.com")
	require.NoError(t, err)
	js.RevokeToken(token)
	require.True(t, js.IsTokenRevoked(token))

	s := NewScheduler()
	RegisterAuthJobs(s, js, RevokedTokenPruneInterval)

	require.NoError(t, s.RunOnce(context.Background()))
	assert.False(t, js.IsTokenRevoked(token))
}
