// Package schedule decides which counter value belongs to a calendar
// day. The schedule is a pure function of the date, so repeated runs
// on the same day always agree.
package schedule

import (
	"os"
	"time"
)

// ExpectedCounter returns the counter value that should exist on
// today's date for a campaign starting at start with counter min.
// It returns 0 when the date falls before the start or past the day
// of max; the final day (counter == max) is inside the schedule.
func ExpectedCounter(today, start time.Time, min, max int) int {
	count := daysBetween(start, today) + min
	if count < min || count > max {
		return 0
	}
	return count
}

// daysBetween returns whole calendar days from start to today,
// negative when today precedes start. Both are normalized to
// midnight so the time of day never shifts the result.
func daysBetween(start, today time.Time) int {
	s := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
	t := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
	return int(t.Sub(s) / (24 * time.Hour))
}

// IsCI reports whether the process runs under a CI system. Used only
// to pick the backoff strategy: fail fast and let the scheduler retry,
// instead of sleeping through a cooldown in-process.
func IsCI() bool {
	return os.Getenv("CI") != "" || os.Getenv("GITHUB_ACTIONS") != ""
}
