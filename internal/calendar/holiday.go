package calendar

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/username/business-calendar/pkg/dateutil"
)

// WildcardYear marks a holiday date that recurs every year
const WildcardYear = "*"

// DateToken is one end of a holiday period: an absolute date, or a
// month/day pair when Wildcard is set
type DateToken struct {
	Year     int
	Month    time.Month
	Day      int
	Wildcard bool
}

func (t DateToken) key() int {
	return dateutil.DateKey(t.Year, t.Month, t.Day)
}

func (t DateToken) monthDay() int {
	return dateutil.MonthDayKey(t.Month, t.Day)
}

// String renders the token in yyyy-MM-dd form ("*" for a wildcard year)
func (t DateToken) String() string {
	year := strconv.Itoa(t.Year)
	if t.Wildcard {
		year = WildcardYear
	}
	return fmt.Sprintf("%s-%02d-%02d", year, int(t.Month), t.Day)
}

// HolidayPeriod is an inclusive range of non-working dates
type HolidayPeriod struct {
	Start DateToken
	End   DateToken
	Note  string
}

// SingleDay creates a one-day absolute holiday
func SingleDay(date time.Time, note string) HolidayPeriod {
	tok := DateToken{Year: date.Year(), Month: date.Month(), Day: date.Day()}
	return HolidayPeriod{Start: tok, End: tok, Note: note}
}

// Wildcard reports whether the period recurs every year
func (p HolidayPeriod) Wildcard() bool {
	return p.Start.Wildcard
}

// String renders the period in the configuration grammar
func (p HolidayPeriod) String() string {
	if p.Start == p.End {
		return p.Start.String()
	}
	return p.Start.String() + ":" + p.End.String()
}

// Contains reports whether date falls inside the period.
// Wildcard periods whose end month-day precedes the start month-day wrap
// over the year boundary (e.g. *-12-31:*-01-01).
func (p HolidayPeriod) Contains(date time.Time) bool {
	if !p.Wildcard() {
		key := dateutil.KeyOf(date)
		return p.Start.key() <= key && key <= p.End.key()
	}

	year := date.Year()
	md := dateutil.MonthDayKey(date.Month(), date.Day())
	key := dateutil.KeyOf(date)

	var from, to int
	if p.End.monthDay() < p.Start.monthDay() {
		if md >= p.Start.monthDay() {
			from = dateutil.DateKey(year, p.Start.Month, p.Start.Day)
			to = dateutil.DateKey(year+1, p.End.Month, p.End.Day)
		} else {
			from = dateutil.DateKey(year-1, p.Start.Month, p.Start.Day)
			to = dateutil.DateKey(year, p.End.Month, p.End.Day)
		}
	} else {
		from = dateutil.DateKey(year, p.Start.Month, p.Start.Day)
		to = dateutil.DateKey(year, p.End.Month, p.End.Day)
	}

	return from <= key && key <= to
}

// ParseHolidays parses a list of holiday entries separated by ';' or ','.
// Each entry is a single date or a "start:end" range; dates use yyyy-MM-dd
// and the year may be "*". Empty input yields no periods.
func ParseHolidays(text string) ([]HolidayPeriod, error) {
	entries := strings.FieldsFunc(text, func(r rune) bool {
		return r == ';' || r == ','
	})

	periods := make([]HolidayPeriod, 0, len(entries))
	for _, entry := range entries {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		p, err := ParseHolidayPeriod(entry)
		if err != nil {
			return nil, err
		}
		periods = append(periods, p)
	}

	return periods, nil
}

// ParseHolidayPeriod parses one "date" or "date:date" entry
func ParseHolidayPeriod(entry string) (HolidayPeriod, error) {
	parts := strings.Split(strings.TrimSpace(entry), ":")
	if len(parts) > 2 {
		return HolidayPeriod{}, fmt.Errorf("%w: too many ':' in %q", ErrMalformedHolidayConfig, entry)
	}

	start, err := parseDateToken(parts[0])
	if err != nil {
		return HolidayPeriod{}, err
	}
	end := start
	if len(parts) == 2 {
		if end, err = parseDateToken(parts[1]); err != nil {
			return HolidayPeriod{}, err
		}
	}

	if start.Wildcard != end.Wildcard {
		return HolidayPeriod{}, fmt.Errorf("%w: %q mixes wildcard and absolute dates", ErrMalformedHolidayConfig, entry)
	}
	if !start.Wildcard && end.key() < start.key() {
		return HolidayPeriod{}, fmt.Errorf("%w: %q ends before it starts", ErrMalformedHolidayConfig, entry)
	}

	return HolidayPeriod{Start: start, End: end}, nil
}

func parseDateToken(s string) (DateToken, error) {
	s = strings.TrimSpace(s)
	fields := strings.Split(s, "-")
	if len(fields) != 3 || len(fields[1]) != 2 || len(fields[2]) != 2 {
		return DateToken{}, fmt.Errorf("%w: %q is not yyyy-MM-dd", ErrMalformedHolidayConfig, s)
	}

	var tok DateToken
	if fields[0] == WildcardYear {
		tok.Wildcard = true
	} else {
		if len(fields[0]) != 4 {
			return DateToken{}, fmt.Errorf("%w: %q is not yyyy-MM-dd", ErrMalformedHolidayConfig, s)
		}
		year, err := atoiDigits(fields[0])
		if err != nil {
			return DateToken{}, fmt.Errorf("%w: bad year in %q", ErrMalformedHolidayConfig, s)
		}
		tok.Year = year
	}

	month, err := atoiDigits(fields[1])
	if err != nil || month < 1 || month > 12 {
		return DateToken{}, fmt.Errorf("%w: bad month in %q", ErrMalformedHolidayConfig, s)
	}
	tok.Month = time.Month(month)

	day, err := atoiDigits(fields[2])
	if err != nil || day < 1 {
		return DateToken{}, fmt.Errorf("%w: bad day in %q", ErrMalformedHolidayConfig, s)
	}
	// a wildcard date is checked against a leap year so *-02-29 is accepted
	refYear := tok.Year
	if tok.Wildcard {
		refYear = 2000
	}
	if day > dateutil.DaysIn(refYear, tok.Month) {
		return DateToken{}, fmt.Errorf("%w: day out of range in %q", ErrMalformedHolidayConfig, s)
	}
	tok.Day = day

	return tok, nil
}

func atoiDigits(s string) (int, error) {
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, fmt.Errorf("non-digit %q", r)
		}
	}
	return strconv.Atoi(s)
}
