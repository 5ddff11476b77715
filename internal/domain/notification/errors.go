package notification

import "errors"

// Notification domain errors
var (
	ErrUnsupportedEvent = errors.New("unsupported notification event")
	ErrNoRecipient      = errors.New("notification has no recipient")
)
