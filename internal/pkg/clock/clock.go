// Package clock supplies the calendar-day arithmetic shared by all
// daily-cycle logic. Streaks and per-day quotas compare stored YYYY-MM-DD
// strings against the current day at the moment of use; there is no
// background scheduler.
package clock

import "time"

// DateLayout is the calendar-day format stored on user records.
const DateLayout = "2006-01-02"

// Clock provides the current time. Services take a Clock so tests can pin
// the calendar day.
type Clock interface {
	Now() time.Time
}

// Real is a Clock backed by the system time.
type Real struct{}

// Now returns the current system time.
func (Real) Now() time.Time { return time.Now() }

// Today formats the clock's current day as YYYY-MM-DD.
func Today(c Clock) string {
	return c.Now().Format(DateLayout)
}

// Yesterday formats the day before the clock's current day as YYYY-MM-DD.
func Yesterday(c Clock) string {
	return c.Now().AddDate(0, 0, -1).Format(DateLayout)
}

// IsNewDay reports whether a stored day marker differs from today.
// An empty marker counts as a new day: the counter has never been touched.
func IsNewDay(lastDate, today string) bool {
	return lastDate != today
}
