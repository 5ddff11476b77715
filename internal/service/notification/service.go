package notification

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cmlabs-hris/worklog-backend-go/internal/domain/notification"
	"github.com/cmlabs-hris/worklog-backend-go/internal/pkg/email"
	"github.com/cmlabs-hris/worklog-backend-go/internal/pkg/timecalc"
)

const (
	dateLayout = "2/1/2006"
	timeLayout = "3:04:05 PM"
)

type emailNotifier struct {
	mailer   email.EmailService
	location *time.Location
}

// NewEmailNotifier renders punch events in tz and mails them to the employee.
func NewEmailNotifier(mailer email.EmailService, tz string) (notification.Notifier, error) {
	loc, err := timecalc.LoadZone(tz)
	if err != nil {
		return nil, fmt.Errorf("notification timezone: %w", err)
	}
	return &emailNotifier{mailer: mailer, location: loc}, nil
}

// NotifyPunch implements notification.Notifier.
func (n *emailNotifier) NotifyPunch(ctx context.Context, event notification.PunchEvent) error {
	if strings.TrimSpace(event.Email) == "" {
		return notification.ErrNoRecipient
	}

	start := event.StartTime.In(n.location)
	switch event.Type {
	case notification.TypeWorkStarted:
		return n.mailer.SendWorkStarted(ctx, event.Email, email.WorkStartedData{
			Name:      event.EmployeeName,
			Date:      start.Format(dateLayout),
			StartTime: n.clock(start),
		})
	case notification.TypeWorkEnded:
		if event.EndTime == nil {
			return fmt.Errorf("%w: work ended without end time", notification.ErrUnsupportedEvent)
		}
		hours := ""
		if event.TotalHours != nil {
			hours = timecalc.FormatHours(*event.TotalHours)
		}
		return n.mailer.SendWorkEnded(ctx, event.Email, email.WorkEndedData{
			Name:      event.EmployeeName,
			Date:      start.Format(dateLayout),
			StartTime: n.clock(start),
			EndTime:   n.clock(event.EndTime.In(n.location)),
			Hours:     hours,
		})
	}
	return fmt.Errorf("%w: %q", notification.ErrUnsupportedEvent, event.Type)
}

func (n *emailNotifier) clock(t time.Time) string {
	return strings.ToLower(t.Format(timeLayout))
}
