package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/username/business-calendar/internal/calendar"
	"go.uber.org/zap"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestLoad_File(t *testing.T) {
	path := writeConfig(t, `
calendar:
  hours-per-day: 6
  days-per-week: 4
  day-start: "10:30"
  weekend-days: [friday, 6, sun]
  holidays: "2012-05-10:2012-05-19;*-12-25"
timers:
  state-file: /tmp/timers.json
daemon:
  check-interval: 30s
  log-level: debug
  metrics-addr: ":9120"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Calendar.HoursPerDay != 6 {
		t.Errorf("HoursPerDay = %d, want 6", cfg.Calendar.HoursPerDay)
	}
	if cfg.Calendar.DaysPerWeek != 4 {
		t.Errorf("DaysPerWeek = %d, want 4", cfg.Calendar.DaysPerWeek)
	}
	if cfg.Calendar.DayStart != "10:30" {
		t.Errorf("DayStart = %q, want 10:30", cfg.Calendar.DayStart)
	}
	if len(cfg.Calendar.WeekendDays) != 3 {
		t.Errorf("WeekendDays = %v, want 3 entries", cfg.Calendar.WeekendDays)
	}
	if cfg.Timers.StateFile != "/tmp/timers.json" {
		t.Errorf("StateFile = %q", cfg.Timers.StateFile)
	}
	if got := cfg.Daemon.GetCheckInterval(); got != 30*time.Second {
		t.Errorf("GetCheckInterval() = %v, want 30s", got)
	}
	if cfg.Daemon.MetricsAddr != ":9120" {
		t.Errorf("MetricsAddr = %q", cfg.Daemon.MetricsAddr)
	}

	engine, err := cfg.Calendar.BuildCalendar(context.Background(), zap.NewNop())
	if err != nil {
		t.Fatalf("BuildCalendar() error = %v", err)
	}
	if engine.DayStart != 10*time.Hour+30*time.Minute {
		t.Errorf("DayStart = %v, want 10h30m", engine.DayStart)
	}
	wantWeekend := []time.Weekday{time.Friday, time.Saturday, time.Sunday}
	for i, wd := range wantWeekend {
		if engine.WeekendDays[i] != wd {
			t.Errorf("WeekendDays[%d] = %v, want %v", i, engine.WeekendDays[i], wd)
		}
	}
	if len(engine.Holidays) != 2 {
		t.Errorf("Holidays = %v, want 2 periods", engine.Holidays)
	}
}

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Calendar.HoursPerDay != calendar.DefaultHoursPerDay {
		t.Errorf("HoursPerDay = %d, want %d", cfg.Calendar.HoursPerDay, calendar.DefaultHoursPerDay)
	}
	if cfg.Calendar.DaysPerWeek != calendar.DefaultDaysPerWeek {
		t.Errorf("DaysPerWeek = %d, want %d", cfg.Calendar.DaysPerWeek, calendar.DefaultDaysPerWeek)
	}
	if cfg.Timers.StateFile != "timers.json" {
		t.Errorf("StateFile = %q, want timers.json", cfg.Timers.StateFile)
	}
	if got := cfg.Daemon.GetCheckInterval(); got != time.Minute {
		t.Errorf("GetCheckInterval() = %v, want 1m", got)
	}

	engine, err := cfg.Calendar.BuildCalendar(context.Background(), zap.NewNop())
	if err != nil {
		t.Fatalf("BuildCalendar() error = %v", err)
	}
	def := calendar.DefaultConfig()
	if engine.DayStart != def.DayStart || engine.HoursPerDay != def.HoursPerDay {
		t.Errorf("BuildCalendar() = %+v, want defaults", engine)
	}
	if len(engine.WeekendDays) != 2 || len(engine.Holidays) != 0 {
		t.Errorf("BuildCalendar() = %+v, want weekend only", engine)
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	path := writeConfig(t, "calendar:\n  hours-per-day: 6\n")
	t.Setenv("BIZCAL_CALENDAR_HOURS_PER_DAY", "7")
	t.Setenv("BIZCAL_DAEMON_LOG_LEVEL", "warn")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Calendar.HoursPerDay != 7 {
		t.Errorf("HoursPerDay = %d, want 7 from environment", cfg.Calendar.HoursPerDay)
	}
	if cfg.Daemon.LogLevel != "warn" {
		t.Errorf("LogLevel = %q, want warn", cfg.Daemon.LogLevel)
	}
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("Load() error = nil for missing explicit file")
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name       string
		content    string
		wantConfig bool
	}{
		{"zero hours per day", "calendar:\n  hours-per-day: 0\n", true},
		{"eight days per week", "calendar:\n  days-per-week: 8\n", true},
		{"window past midnight", "calendar:\n  day-start: \"20:00\"\n", true},
		{"bad day start", "calendar:\n  day-start: \"9am\"\n", true},
		{"unknown weekend day", "calendar:\n  weekend-days: [caturday]\n", true},
		{"weekday number out of range", "calendar:\n  weekend-days: [7]\n", true},
		{"remote url without year", "calendar:\n  remote:\n    url: http://example.com/calendar.json\n    years: [2025]\n", false},
		{"bad check interval", "daemon:\n  check-interval: often\n", false},
		{"negative check interval", "daemon:\n  check-interval: -1m\n", false},
		{"unknown log level", "daemon:\n  log-level: loud\n", false},
		{"empty state file", "timers:\n  state-file: \"\"\n", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			if err == nil {
				t.Fatal("Load() error = nil, want error")
			}
			if tt.wantConfig && !errors.Is(err, calendar.ErrInvalidConfiguration) {
				t.Errorf("Load() error = %v, want ErrInvalidConfiguration", err)
			}
		})
	}
}

func TestBuildCalendar_HolidaysFile(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "holidays.txt")
	if err := os.WriteFile(file, []byte("# national\n*-01-01:*-01-08 New Year\n2025-05-09 Victory Day\n"), 0644); err != nil {
		t.Fatalf("failed to write holidays: %v", err)
	}

	c := CalendarConfig{
		HoursPerDay:  8,
		DaysPerWeek:  5,
		WeekendDays:  []string{"saturday", "sunday"},
		Holidays:     "*-12-25",
		HolidaysFile: file,
	}

	cfg, err := c.BuildCalendar(context.Background(), zap.NewNop())
	if err != nil {
		t.Fatalf("BuildCalendar() error = %v", err)
	}
	if len(cfg.Holidays) != 3 {
		t.Fatalf("Holidays = %v, want 3 periods", cfg.Holidays)
	}
	if cfg.Holidays[1].Note != "New Year" {
		t.Errorf("Holidays[1].Note = %q, want New Year", cfg.Holidays[1].Note)
	}

	c.HolidaysFile = filepath.Join(dir, "missing.txt")
	if _, err := c.BuildCalendar(context.Background(), zap.NewNop()); err == nil {
		t.Error("BuildCalendar() error = nil for missing holidays file")
	}
}

func TestHolidaySources(t *testing.T) {
	tests := []struct {
		name string
		cfg  CalendarConfig
		want int
	}{
		{"inline only", CalendarConfig{}, 1},
		{"file", CalendarConfig{HolidaysFile: "h.txt"}, 2},
		{"remote", CalendarConfig{Remote: RemoteConfig{URL: "http://x/{year}", Years: []int{2025}}}, 2},
		{"remote with file fallback", CalendarConfig{HolidaysFile: "h.txt", Remote: RemoteConfig{URL: "http://x/{year}", Years: []int{2025}}}, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := len(tt.cfg.HolidaySources(zap.NewNop())); got != tt.want {
				t.Errorf("HolidaySources() returned %d sources, want %d", got, tt.want)
			}
		})
	}
}

func TestGetters(t *testing.T) {
	tests := []struct {
		name string
		got  time.Duration
		want time.Duration
	}{
		{"empty check interval", (&DaemonConfig{}).GetCheckInterval(), time.Minute},
		{"bad check interval", (&DaemonConfig{CheckInterval: "soon"}).GetCheckInterval(), time.Minute},
		{"check interval", (&DaemonConfig{CheckInterval: "5m"}).GetCheckInterval(), 5 * time.Minute},
		{"empty timeout", (&RemoteConfig{}).GetTimeout(), 10 * time.Second},
		{"timeout", (&RemoteConfig{Timeout: "3s"}).GetTimeout(), 3 * time.Second},
	}

	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s = %v, want %v", tt.name, tt.got, tt.want)
		}
	}
}
