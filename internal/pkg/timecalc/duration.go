package timecalc

import (
	"math"
	"strconv"
	"time"
)

const millisPerHour = 3_600_000

// Round2 rounds x to two decimal places, halves away from zero.
func Round2(x float64) float64 {
	return math.Round(x*100) / 100
}

// Hours returns the elapsed time between start and end in hours, rounded to
// two decimals. The subtraction happens at millisecond precision first, so a
// value stored at punch time and one recomputed later always agree.
func Hours(start, end time.Time) float64 {
	ms := end.Sub(start).Milliseconds()
	return Round2(float64(ms) / millisPerHour)
}

// FormatHours renders hours with exactly two decimals, e.g. "7.50".
func FormatHours(h float64) string {
	return strconv.FormatFloat(Round2(h), 'f', 2, 64)
}
