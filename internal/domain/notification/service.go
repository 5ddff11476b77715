package notification

import (
	"context"
)

// Notifier delivers punch notifications. Implementations may fail; callers
// treat delivery as best effort.
type Notifier interface {
	NotifyPunch(ctx context.Context, event PunchEvent) error
}
