package timecalc

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// DateLayout is the calendar-day label format used for day buckets.
const DateLayout = "2006-01-02"

var ErrUnknownZone = errors.New("unknown timezone")

// DayBucket identifies one calendar day in a specific timezone.
type DayBucket struct {
	// Start is local midnight of the day, used as the sort key.
	Start time.Time
	// Key is the YYYY-MM-DD label of the day.
	Key string
}

// LoadZone resolves an IANA timezone name. "Local" is rejected because its
// meaning depends on the host the process runs on.
func LoadZone(name string) (*time.Location, error) {
	name = strings.TrimSpace(name)
	if name == "" || strings.EqualFold(name, "local") {
		return nil, fmt.Errorf("%w: %q", ErrUnknownZone, name)
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownZone, name)
	}
	return loc, nil
}

// BucketOf returns the day bucket containing t as observed in loc.
func BucketOf(t time.Time, loc *time.Location) DayBucket {
	local := t.In(loc)
	start := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	return DayBucket{
		Start: start,
		Key:   local.Format(DateLayout),
	}
}
