package calendar

import (
	"errors"
	"testing"
	"time"
)

func TestParseDuration(t *testing.T) {
	tests := []struct {
		name string
		expr string
		want Duration
	}{
		{"hours", "3h", Duration{Hours: 3}},
		{"minutes", "30m", Duration{Minutes: 30}},
		{"days", "6d", Duration{Days: 6}},
		{"minutes carry into hours", "80m", Duration{Hours: 1, Minutes: 20}},
		{"all units", "6d4h80m", Duration{Days: 6, Hours: 5, Minutes: 20}},
		{"hours are not carried into days", "30h", Duration{Hours: 30}},
		{"any order", "20m2d4h", Duration{Days: 2, Hours: 4, Minutes: 20}},
		{"repeated units are summed", "1h30m2h45m", Duration{Hours: 4, Minutes: 15}},
		{"surrounding whitespace", "  2d  ", Duration{Days: 2}},
		{"zero", "0m", Duration{}},
		{"largest sub-day hours", "2562047h", Duration{Hours: 2562047}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDuration(tt.expr)
			if err != nil {
				t.Fatalf("ParseDuration(%q) error = %v", tt.expr, err)
			}
			if got != tt.want {
				t.Errorf("ParseDuration(%q) = %+v, want %+v", tt.expr, got, tt.want)
			}
		})
	}
}

func TestParseDuration_Malformed(t *testing.T) {
	tests := []struct {
		name string
		expr string
	}{
		{"empty", ""},
		{"blank", "   "},
		{"unknown unit", "3x"},
		{"letters only", "abc"},
		{"week unit", "1w"},
		{"upper case unit", "3H"},
		{"missing unit", "3"},
		{"missing digits", "h"},
		{"trailing digits", "3h30"},
		{"trailing text", "3hours"},
		{"inner space", "3h 30m"},
		{"negative", "-3h"},
		{"decimal", "1.5h"},
		{"overflow", "99999999999999999999999h"},
		{"hours beyond sub-day range", "3000000h"},
		{"minute carry overflow", "9223372036854775807h60m"},
		{"minutes beyond sub-day range", "2562047h999999m"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseDuration(tt.expr)
			if !errors.Is(err, ErrMalformedDuration) {
				t.Errorf("ParseDuration(%q) error = %v, want ErrMalformedDuration", tt.expr, err)
			}
		})
	}
}

func TestDuration_String(t *testing.T) {
	tests := []struct {
		in   Duration
		want string
	}{
		{Duration{}, "0m"},
		{Duration{Days: 6, Hours: 5, Minutes: 20}, "6d5h20m"},
		{Duration{Hours: 3}, "3h"},
		{Duration{Days: 2, Minutes: 30}, "2d30m"},
	}

	for _, tt := range tests {
		if got := tt.in.String(); got != tt.want {
			t.Errorf("%+v.String() = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestDuration_SubDay(t *testing.T) {
	d := MustParseDuration("2d4h80m")
	if got := d.SubDay(); got != 5*time.Hour+20*time.Minute {
		t.Errorf("SubDay() = %v, want 5h20m", got)
	}
	if d.IsZero() {
		t.Error("IsZero() = true for non-zero duration")
	}
}
