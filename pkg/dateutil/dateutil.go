package dateutil

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the civil date layout used in configuration and output
const DateLayout = "2006-01-02"

// DateTimeLayout is the minute-precision layout used by the CLI
const DateTimeLayout = "2006-01-02 15:04"

// StartOfDay returns the start of the day (00:00:00) for the given date
func StartOfDay(date time.Time) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
}

// TimeOfDay returns the wall-clock offset of t from its midnight.
// It is computed from the clock fields, so DST shifts do not skew it.
func TimeOfDay(t time.Time) time.Duration {
	return time.Duration(t.Hour())*time.Hour +
		time.Duration(t.Minute())*time.Minute +
		time.Duration(t.Second())*time.Second +
		time.Duration(t.Nanosecond())
}

// AtTimeOfDay returns the instant on t's date whose wall clock reads offset
func AtTimeOfDay(t time.Time, offset time.Duration) time.Time {
	h := int(offset / time.Hour)
	offset -= time.Duration(h) * time.Hour
	m := int(offset / time.Minute)
	offset -= time.Duration(m) * time.Minute
	s := int(offset / time.Second)
	offset -= time.Duration(s) * time.Second
	return time.Date(t.Year(), t.Month(), t.Day(), h, m, s, int(offset), t.Location())
}

// AddDays moves t by n calendar days keeping the wall-clock time
func AddDays(t time.Time, n int) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day()+n,
		t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

// DateKey packs a civil date into a sortable integer (yyyymmdd)
func DateKey(year int, month time.Month, day int) int {
	return year*10000 + int(month)*100 + day
}

// MonthDayKey packs a month and day into a sortable integer (mmdd)
func MonthDayKey(month time.Month, day int) int {
	return int(month)*100 + day
}

// KeyOf returns the DateKey of t's date
func KeyOf(t time.Time) int {
	return DateKey(t.Year(), t.Month(), t.Day())
}

// DaysIn returns the number of days in the given month
func DaysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// IsSameDay returns true if two dates are on the same day
func IsSameDay(date1, date2 time.Time) bool {
	return date1.Year() == date2.Year() &&
		date1.Month() == date2.Month() &&
		date1.Day() == date2.Day()
}

// ParseDateTime parses a CLI timestamp in loc.
// Accepted: "2006-01-02 15:04", "2006-01-02T15:04", "2006-01-02" and RFC 3339.
func ParseDateTime(value string, loc *time.Location) (time.Time, error) {
	value = strings.TrimSpace(value)
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}

	formats := []string{
		DateTimeLayout,
		"2006-01-02T15:04",
		"2006-01-02 15:04:05",
		DateLayout,
	}

	for _, format := range formats {
		if t, err := time.ParseInLocation(format, value, loc); err == nil {
			return t, nil
		}
	}

	return time.Time{}, fmt.Errorf("unrecognized date/time %q", value)
}
