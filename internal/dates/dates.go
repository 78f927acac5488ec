// Package dates provides calendar-aware month arithmetic for due-date
// scheduling and month-bucketed reporting.
package dates

import "time"

// AddMonths shifts t by the given number of calendar months, clamping the
// day of month to the target month's length (Jan 31 + 1 month = Feb 28/29).
// This matches how humans read "one month later", not a fixed 30 days.
func AddMonths(t time.Time, months int) time.Time {
	year, month, day := t.Date()
	hour, minute, sec := t.Clock()

	// First of the target month, then clamp the day.
	first := time.Date(year, month+time.Month(months), 1, hour, minute, sec, t.Nanosecond(), t.Location())
	if last := daysIn(first.Year(), first.Month()); day > last {
		day = last
	}
	return time.Date(first.Year(), first.Month(), day, hour, minute, sec, t.Nanosecond(), t.Location())
}

// NextMonth returns t plus one calendar month.
func NextMonth(t time.Time) time.Time {
	return AddMonths(t, 1)
}

// PrevMonth returns t minus one calendar month.
func PrevMonth(t time.Time) time.Time {
	return AddMonths(t, -1)
}

// MonthBounds returns the inclusive start and end instants of the given
// month in loc, suitable for BETWEEN queries over transaction dates.
func MonthBounds(year int, month time.Month, loc *time.Location) (time.Time, time.Time) {
	start := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	end := start.AddDate(0, 1, 0).Add(-time.Nanosecond)
	return start, end
}

func daysIn(year int, month time.Month) int {
	// Day 0 of the next month is the last day of this one.
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
