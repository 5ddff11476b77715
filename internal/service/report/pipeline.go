package report

import (
	"time"

	"github.com/cmlabs-hris/worklog-backend-go/internal/domain/worklog"
	"github.com/cmlabs-hris/worklog-backend-go/internal/pkg/timecalc"
)

// bucketedRow is a filtered row tagged with its day bucket and coalesced
// duration. Hours is nil for open logs.
type bucketedRow struct {
	worklog.Row
	Day   timecalc.DayBucket
	Hours *float64
}

// filterRows re-applies filter on the client side so that every storage
// backend yields the same rows regardless of how much it pushed down.
func filterRows(rows []worklog.Row, filter worklog.RowFilter) []worklog.Row {
	out := make([]worklog.Row, 0, len(rows))
	for _, row := range rows {
		if filter.Match(row) {
			out = append(out, row)
		}
	}
	return out
}

func bucketize(rows []worklog.Row, loc *time.Location) []bucketedRow {
	out := make([]bucketedRow, 0, len(rows))
	for _, row := range rows {
		out = append(out, bucketedRow{
			Row:   row,
			Day:   timecalc.BucketOf(row.Log.StartTime, loc),
			Hours: row.Log.CoalescedHours(),
		})
	}
	return out
}
