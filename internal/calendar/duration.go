package calendar

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Duration is a quantity of business time.
// Minutes stay below 60 after parsing; hours are never folded into days
// because days and hours are advanced by different rules.
type Duration struct {
	Days    int
	Hours   int
	Minutes int
}

// ParseDuration parses a compact expression such as "3h", "30m" or "6d4h80m".
// Tokens may come in any order; repeated units are summed.
func ParseDuration(expr string) (Duration, error) {
	s := strings.TrimSpace(expr)
	if s == "" {
		return Duration{}, fmt.Errorf("%w: empty expression", ErrMalformedDuration)
	}

	var d Duration
	totalMinutes := 0
	for i := 0; i < len(s); {
		start := i
		for i < len(s) && s[i] >= '0' && s[i] <= '9' {
			i++
		}
		if start == i {
			return Duration{}, fmt.Errorf("%w: expected digits at offset %d in %q", ErrMalformedDuration, start, expr)
		}
		if i == len(s) {
			return Duration{}, fmt.Errorf("%w: missing unit after %q in %q", ErrMalformedDuration, s[start:], expr)
		}

		value, err := strconv.Atoi(s[start:i])
		if err != nil {
			return Duration{}, fmt.Errorf("%w: %q: %v", ErrMalformedDuration, s[start:i], err)
		}

		switch s[i] {
		case 'd':
			d.Days, err = addChecked(d.Days, value)
		case 'h':
			d.Hours, err = addChecked(d.Hours, value)
		case 'm':
			totalMinutes, err = addChecked(totalMinutes, value)
		default:
			return Duration{}, fmt.Errorf("%w: unknown unit %q in %q", ErrMalformedDuration, s[i], expr)
		}
		if err != nil {
			return Duration{}, fmt.Errorf("%w: %v in %q", ErrMalformedDuration, err, expr)
		}
		i++
	}

	hours, err := addChecked(d.Hours, totalMinutes/60)
	if err != nil {
		return Duration{}, fmt.Errorf("%w: %v in %q", ErrMalformedDuration, err, expr)
	}
	d.Hours = hours
	d.Minutes = totalMinutes % 60

	if err := d.validate(); err != nil {
		return Duration{}, fmt.Errorf("%w in %q", err, expr)
	}
	return d, nil
}

// maxHours is the largest hour count whose SubDay still fits in a time.Duration
const maxHours = math.MaxInt64 / int64(time.Hour)

// validate rejects negative components and hour/minute parts that overflow SubDay
func (d Duration) validate() error {
	if d.Days < 0 || d.Hours < 0 || d.Minutes < 0 {
		return fmt.Errorf("%w: negative component in %+v", ErrMalformedDuration, d)
	}
	if int64(d.Hours) > maxHours {
		return fmt.Errorf("%w: %d hours is out of range", ErrMalformedDuration, d.Hours)
	}
	spare := math.MaxInt64 - int64(d.Hours)*int64(time.Hour)
	if int64(d.Minutes) > spare/int64(time.Minute) {
		return fmt.Errorf("%w: %dh%dm is out of range", ErrMalformedDuration, d.Hours, d.Minutes)
	}
	return nil
}

// MustParseDuration is like ParseDuration but panics on error
func MustParseDuration(expr string) Duration {
	d, err := ParseDuration(expr)
	if err != nil {
		panic(err)
	}
	return d
}

func addChecked(a, b int) (int, error) {
	sum := a + b
	if sum < a {
		return 0, fmt.Errorf("value overflow")
	}
	return sum, nil
}

// IsZero reports whether d has no days, hours or minutes
func (d Duration) IsZero() bool {
	return d.Days == 0 && d.Hours == 0 && d.Minutes == 0
}

// SubDay returns the hour and minute part as a single wall-clock amount
func (d Duration) SubDay() time.Duration {
	return time.Duration(d.Hours)*time.Hour + time.Duration(d.Minutes)*time.Minute
}

// String renders the canonical expression, e.g. "6d5h20m"
func (d Duration) String() string {
	if d.IsZero() {
		return "0m"
	}

	var b strings.Builder
	if d.Days > 0 {
		b.WriteString(strconv.Itoa(d.Days) + "d")
	}
	if d.Hours > 0 {
		b.WriteString(strconv.Itoa(d.Hours) + "h")
	}
	if d.Minutes > 0 {
		b.WriteString(strconv.Itoa(d.Minutes) + "m")
	}
	return b.String()
}
