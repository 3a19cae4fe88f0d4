package calendar

import (
	"time"

	"github.com/username/business-calendar/pkg/dateutil"
)

// DayType represents the type of day
type DayType int

const (
	DayTypeWorkday DayType = iota + 1
	DayTypeWeekend
	DayTypeHoliday
)

func (t DayType) String() string {
	switch t {
	case DayTypeWorkday:
		return "workday"
	case DayTypeWeekend:
		return "weekend"
	case DayTypeHoliday:
		return "holiday"
	default:
		return "unknown"
	}
}

// DayInfo represents information about a specific day
type DayInfo struct {
	Date         time.Time
	Type         DayType
	WorkingHours int
	IsWorkday    bool
	Note         string
}

// MonthInfo represents calendar information for a month
type MonthInfo struct {
	Year         int
	Month        time.Month
	WorkingHours int // Total working hours in the month
	WorkDays     int
	Weekends     int
	Holidays     int
	Days         []DayInfo
}

// DayInfo classifies a single date. A holiday on a weekend day is
// reported as a weekend, with the holiday note kept.
func (bc *BusinessCalendar) DayInfo(date time.Time) DayInfo {
	info := DayInfo{Date: dateutil.StartOfDay(date)}

	period, holiday := bc.holidayAt(date)
	if holiday {
		info.Note = period.Note
	}

	switch {
	case bc.IsWeekend(date):
		info.Type = DayTypeWeekend
	case holiday:
		info.Type = DayTypeHoliday
	default:
		info.Type = DayTypeWorkday
		info.IsWorkday = true
		info.WorkingHours = bc.cfg.HoursPerDay
	}

	return info
}

// MonthInfo returns the per-day breakdown of a month in loc
func (bc *BusinessCalendar) MonthInfo(year int, month time.Month, loc *time.Location) MonthInfo {
	if loc == nil {
		loc = time.Local
	}

	daysInMonth := dateutil.DaysIn(year, month)
	monthInfo := MonthInfo{
		Year:  year,
		Month: month,
		Days:  make([]DayInfo, 0, daysInMonth),
	}

	for day := 1; day <= daysInMonth; day++ {
		info := bc.DayInfo(time.Date(year, month, day, 0, 0, 0, 0, loc))

		switch info.Type {
		case DayTypeWorkday:
			monthInfo.WorkDays++
			monthInfo.WorkingHours += info.WorkingHours
		case DayTypeWeekend:
			monthInfo.Weekends++
		case DayTypeHoliday:
			monthInfo.Holidays++
		}

		monthInfo.Days = append(monthInfo.Days, info)
	}

	return monthInfo
}
