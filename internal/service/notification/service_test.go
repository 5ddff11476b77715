package notification

import (
	"context"
	"testing"
	"time"

	"github.com/cmlabs-hris/worklog-backend-go/internal/domain/notification"
	"github.com/cmlabs-hris/worklog-backend-go/internal/pkg/email"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMailer struct {
	to      string
	started *email.WorkStartedData
	ended   *email.WorkEndedData
}

func (m *fakeMailer) SendWorkStarted(ctx context.Context, to string, data email.WorkStartedData) error {
	m.to, m.started = to, &data
	return nil
}

func (m *fakeMailer) SendWorkEnded(ctx context.Context, to string, data email.WorkEndedData) error {
	m.to, m.ended = to, &data
	return nil
}

func TestNotifyPunch_WorkStartedRendersInZone(t *testing.T) {
	mailer := &fakeMailer{}
	n, err := NewEmailNotifier(mailer, "Asia/Kolkata")
	require.NoError(t, err)

	err = n.NotifyPunch(context.Background(), notification.PunchEvent{
		Type:         notification.TypeWorkStarted,
		EmployeeName: "Jane",
		Email:        "jane@example.com",
		StartTime:    time.Date(2024, 3, 1, 23, 30, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	require.NotNil(t, mailer.started)
	assert.Equal(t, "jane@example.com", mailer.to)
	assert.Equal(t, "2/3/2024", mailer.started.Date)
	assert.Equal(t, "5:00:00 am", mailer.started.StartTime)
}

func TestNotifyPunch_WorkEnded(t *testing.T) {
	mailer := &fakeMailer{}
	n, err := NewEmailNotifier(mailer, "UTC")
	require.NoError(t, err)
	start := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	end := start.Add(90 * time.Minute)
	hours := 1.5

	err = n.NotifyPunch(context.Background(), notification.PunchEvent{
		Type:       notification.TypeWorkEnded,
		Email:      "jane@example.com",
		StartTime:  start,
		EndTime:    &end,
		TotalHours: &hours,
	})
	require.NoError(t, err)

	require.NotNil(t, mailer.ended)
	assert.Equal(t, "9:00:00 am", mailer.ended.StartTime)
	assert.Equal(t, "10:30:00 am", mailer.ended.EndTime)
	assert.Equal(t, "1.50", mailer.ended.Hours)
}

func TestNotifyPunch_Errors(t *testing.T) {
	n, err := NewEmailNotifier(&fakeMailer{}, "UTC")
	require.NoError(t, err)
	ctx := context.Background()

	assert.ErrorIs(t, n.NotifyPunch(ctx, notification.PunchEvent{Type: notification.TypeWorkStarted}), notification.ErrNoRecipient)
	assert.ErrorIs(t, n.NotifyPunch(ctx, notification.PunchEvent{Type: "lunch", Email: "a@example.com"}), notification.ErrUnsupportedEvent)
	assert.ErrorIs(t, n.NotifyPunch(ctx, notification.PunchEvent{Type: notification.TypeWorkEnded, Email: "a@example.com"}), notification.ErrUnsupportedEvent)

	_, err = NewEmailNotifier(&fakeMailer{}, "Atlantis/Capital")
	assert.Error(t, err)
}
