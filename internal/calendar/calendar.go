package calendar

import (
	"fmt"
	"time"

	"github.com/username/business-calendar/pkg/dateutil"
	"go.uber.org/zap"
)

// maxScanDays bounds every search for a working date
const maxScanDays = 730

// BusinessCalendar advances instants by business time.
// It is immutable after New and safe for concurrent use.
type BusinessCalendar struct {
	cfg      Config
	weekend  [7]bool
	holidays []HolidayPeriod
	clock    Clock
	logger   *zap.Logger
}

// New validates cfg and creates a BusinessCalendar.
// A nil clock means the system clock; a nil logger disables logging.
func New(cfg Config, clock Clock, logger *zap.Logger) (*BusinessCalendar, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if clock == nil {
		clock = RealClock{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	bc := &BusinessCalendar{
		cfg:      cfg,
		holidays: append([]HolidayPeriod(nil), cfg.Holidays...),
		clock:    clock,
		logger:   logger,
	}
	bc.cfg.WeekendDays = append([]time.Weekday(nil), cfg.WeekendDays...)
	bc.cfg.Holidays = bc.holidays
	for _, wd := range cfg.WeekendDays {
		bc.weekend[wd] = true
	}

	if bc.recurringYearClosed() {
		return nil, fmt.Errorf("%w: weekend days and recurring holidays cover the whole year", ErrInvalidConfiguration)
	}

	logger.Info("Business calendar created",
		zap.Int("hours_per_day", cfg.HoursPerDay),
		zap.Int("days_per_week", cfg.DaysPerWeek),
		zap.String("day_start", formatClock(cfg.DayStart)),
		zap.String("day_end", formatClock(cfg.DayEnd())),
		zap.Int("weekend_days", len(cfg.WeekendDays)),
		zap.Int("holiday_periods", len(bc.holidays)))

	return bc, nil
}

// recurringYearClosed reports whether weekends plus wildcard holidays leave
// no working day in a leap year. Absolute periods are left to the bounded
// scan at calculation time.
func (bc *BusinessCalendar) recurringYearClosed() bool {
	day := time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 366; i++ {
		date := day.AddDate(0, 0, i)
		if bc.weekend[date.Weekday()] {
			continue
		}
		covered := false
		for _, p := range bc.holidays {
			if p.Wildcard() && p.Contains(date) {
				covered = true
				break
			}
		}
		if !covered {
			return false
		}
	}
	return true
}

// Config returns a copy of the calendar configuration
func (bc *BusinessCalendar) Config() Config {
	cfg := bc.cfg
	cfg.WeekendDays = append([]time.Weekday(nil), bc.cfg.WeekendDays...)
	cfg.Holidays = append([]HolidayPeriod(nil), bc.holidays...)
	return cfg
}

// IsWeekend reports whether date falls on a configured weekend day
func (bc *BusinessCalendar) IsWeekend(date time.Time) bool {
	return bc.weekend[date.Weekday()]
}

// IsHoliday reports whether date is inside any holiday period
func (bc *BusinessCalendar) IsHoliday(date time.Time) bool {
	_, ok := bc.holidayAt(date)
	return ok
}

// IsNonWorkingDay reports whether date is a weekend day or a holiday
func (bc *BusinessCalendar) IsNonWorkingDay(date time.Time) bool {
	return bc.IsWeekend(date) || bc.IsHoliday(date)
}

// NextWorkingDay returns the first working date after date, keeping the time of day
func (bc *BusinessCalendar) NextWorkingDay(date time.Time) (time.Time, error) {
	return bc.stepForward(date, bc.IsNonWorkingDay)
}

func (bc *BusinessCalendar) holidayAt(date time.Time) (HolidayPeriod, bool) {
	for _, p := range bc.holidays {
		if p.Contains(date) {
			return p, true
		}
	}
	return HolidayPeriod{}, false
}

// CalculateBusinessTime advances the clock's current instant by expr.
// The clock is read exactly once per call.
func (bc *BusinessCalendar) CalculateBusinessTime(expr string) (time.Time, error) {
	d, err := ParseDuration(expr)
	if err != nil {
		return time.Time{}, err
	}
	return bc.Advance(bc.clock.Now(), d)
}

// CalculateBusinessTimeFrom advances start by expr
func (bc *BusinessCalendar) CalculateBusinessTimeFrom(start time.Time, expr string) (time.Time, error) {
	d, err := ParseDuration(expr)
	if err != nil {
		return time.Time{}, err
	}
	return bc.Advance(start, d)
}

// Normalize moves t forward to the nearest working instant.
// Advance(t, Duration{}) always equals Normalize(t).
func (bc *BusinessCalendar) Normalize(t time.Time) (time.Time, error) {
	aligned, err := bc.alignToWindow(t)
	if err != nil {
		return time.Time{}, err
	}
	return bc.settle(aligned)
}

// Advance moves start forward by d business time.
//
// The start is first aligned to the working window and off weekend days.
// Each day of d then steps at least one calendar day forward, skipping
// weekend days and keeping the time of day. Hours and minutes are added
// within the current day; an overflow resumes once at the start of the next
// working date and the leftover is added there without another capacity
// check. A result that lands on a holiday is moved to the next working date
// at the same time of day.
func (bc *BusinessCalendar) Advance(start time.Time, d Duration) (time.Time, error) {
	if err := d.validate(); err != nil {
		return time.Time{}, err
	}

	cur, err := bc.alignToWindow(start)
	if err != nil {
		return time.Time{}, err
	}

	for i := 0; i < d.Days; i++ {
		if cur, err = bc.stepForward(cur, bc.IsWeekend); err != nil {
			return time.Time{}, err
		}
	}

	if rest := d.SubDay(); rest > 0 {
		capacity := bc.cfg.DayEnd() - dateutil.TimeOfDay(cur)
		if rest <= capacity {
			cur = cur.Add(rest)
		} else {
			next, err := bc.stepForward(cur, bc.IsNonWorkingDay)
			if err != nil {
				return time.Time{}, err
			}
			cur = dateutil.AtTimeOfDay(next, bc.cfg.DayStart).Add(rest - capacity)
		}
	}

	result, err := bc.settle(cur)
	if err != nil {
		return time.Time{}, err
	}

	bc.logger.Debug("Business time calculated",
		zap.Time("start", start),
		zap.String("duration", d.String()),
		zap.Time("result", result))

	return result, nil
}

// alignToWindow moves t into the working window of a non-weekend date
func (bc *BusinessCalendar) alignToWindow(t time.Time) (time.Time, error) {
	tod := dateutil.TimeOfDay(t)
	switch {
	case tod < bc.cfg.DayStart:
		t = dateutil.AtTimeOfDay(t, bc.cfg.DayStart)
	case tod >= bc.cfg.DayEnd():
		t = dateutil.AtTimeOfDay(dateutil.AddDays(t, 1), bc.cfg.DayStart)
	}

	if bc.IsWeekend(t) {
		next, err := bc.stepForward(t, bc.IsWeekend)
		if err != nil {
			return time.Time{}, err
		}
		t = dateutil.AtTimeOfDay(next, bc.cfg.DayStart)
	}

	return t, nil
}

// settle moves t off a non-working date, keeping the time of day
func (bc *BusinessCalendar) settle(t time.Time) (time.Time, error) {
	if !bc.IsNonWorkingDay(t) {
		return t, nil
	}
	return bc.stepForward(t, bc.IsNonWorkingDay)
}

// stepForward returns the first date after t for which skip is false,
// at t's time of day
func (bc *BusinessCalendar) stepForward(t time.Time, skip func(time.Time) bool) (time.Time, error) {
	for i := 1; i <= maxScanDays; i++ {
		next := dateutil.AddDays(t, i)
		if !skip(next) {
			return next, nil
		}
	}

	bc.logger.Warn("No working day found",
		zap.Time("from", t),
		zap.Int("scanned_days", maxScanDays))

	return time.Time{}, fmt.Errorf("%w: no working day within %d days after %s",
		ErrInvalidConfiguration, maxScanDays, t.Format(dateutil.DateLayout))
}
