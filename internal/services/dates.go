package services

import "time"

const DateLayout = "2006-01-02"

// DateOf returns the calendar date of t in t's own location, as midnight UTC.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// WeekStarting returns the Monday of the ISO week containing t, using t's
// own location to decide the calendar day.
func WeekStarting(t time.Time) time.Time {
	offset := (int(t.Weekday()) + 6) % 7
	return DateOf(t.AddDate(0, 0, -offset))
}
