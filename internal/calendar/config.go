package calendar

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	DefaultHoursPerDay = 8
	DefaultDaysPerWeek = 5
	DefaultDayStart    = 9 * time.Hour
)

// Config holds the calendar tunables. It is copied into the BusinessCalendar
// at construction and never mutated afterwards.
type Config struct {
	HoursPerDay int
	// DaysPerWeek is a unit-conversion factor only; WeekendDays decides
	// which days are skipped.
	DaysPerWeek int
	WeekendDays []time.Weekday
	// DayStart is the offset of the working window from midnight
	DayStart time.Duration
	Holidays []HolidayPeriod
}

// DefaultConfig returns an 8-hour, Monday to Friday calendar starting at 09:00
func DefaultConfig() Config {
	return Config{
		HoursPerDay: DefaultHoursPerDay,
		DaysPerWeek: DefaultDaysPerWeek,
		WeekendDays: []time.Weekday{time.Saturday, time.Sunday},
		DayStart:    DefaultDayStart,
	}
}

// DayEnd returns the offset of the end of the working window from midnight
func (c Config) DayEnd() time.Duration {
	return c.DayStart + time.Duration(c.HoursPerDay)*time.Hour
}

// Validate checks the structural invariants of the calendar
func (c Config) Validate() error {
	if c.HoursPerDay <= 0 {
		return fmt.Errorf("%w: hours-per-day must be positive, got %d", ErrInvalidConfiguration, c.HoursPerDay)
	}
	if c.DaysPerWeek <= 0 || c.DaysPerWeek > 7 {
		return fmt.Errorf("%w: days-per-week must be between 1 and 7, got %d", ErrInvalidConfiguration, c.DaysPerWeek)
	}
	if c.DayStart < 0 {
		return fmt.Errorf("%w: day-start must not be negative", ErrInvalidConfiguration)
	}
	if c.DayEnd() > 24*time.Hour {
		return fmt.Errorf("%w: working window %s + %dh runs past midnight",
			ErrInvalidConfiguration, formatClock(c.DayStart), c.HoursPerDay)
	}

	seen := make(map[time.Weekday]bool, len(c.WeekendDays))
	for _, wd := range c.WeekendDays {
		if wd < time.Sunday || wd > time.Saturday {
			return fmt.Errorf("%w: invalid weekend day %d", ErrInvalidConfiguration, int(wd))
		}
		seen[wd] = true
	}
	if len(seen) == 7 {
		return fmt.Errorf("%w: every day of the week is a weekend day", ErrInvalidConfiguration)
	}

	return nil
}

var weekdayNames = map[string]time.Weekday{
	"sunday": time.Sunday, "sun": time.Sunday,
	"monday": time.Monday, "mon": time.Monday,
	"tuesday": time.Tuesday, "tue": time.Tuesday,
	"wednesday": time.Wednesday, "wed": time.Wednesday,
	"thursday": time.Thursday, "thu": time.Thursday,
	"friday": time.Friday, "fri": time.Friday,
	"saturday": time.Saturday, "sat": time.Saturday,
}

// ParseWeekendDays parses weekday names ("saturday", "sat") or integers
// using time.Weekday numbering (0=Sunday .. 6=Saturday)
func ParseWeekendDays(values []string) ([]time.Weekday, error) {
	days := make([]time.Weekday, 0, len(values))
	for _, raw := range values {
		v := strings.ToLower(strings.TrimSpace(raw))
		if v == "" {
			continue
		}
		if wd, ok := weekdayNames[v]; ok {
			days = append(days, wd)
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 || n > 6 {
			return nil, fmt.Errorf("%w: unknown weekend day %q", ErrInvalidConfiguration, raw)
		}
		days = append(days, time.Weekday(n))
	}
	return days, nil
}

// ParseDayStart parses an "HH:MM" time of day
func ParseDayStart(value string) (time.Duration, error) {
	t, err := time.Parse("15:04", strings.TrimSpace(value))
	if err != nil {
		return 0, fmt.Errorf("%w: day-start %q is not HH:MM", ErrInvalidConfiguration, value)
	}
	return time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute, nil
}

func formatClock(offset time.Duration) string {
	return fmt.Sprintf("%02d:%02d", int(offset/time.Hour), int(offset%time.Hour/time.Minute))
}
