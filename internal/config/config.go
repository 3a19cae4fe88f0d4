package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
	"github.com/username/business-calendar/internal/calendar"
	"github.com/username/business-calendar/internal/holidays"
	"go.uber.org/zap"
)

// EnvPrefix is prepended to every environment override, e.g. BIZCAL_CALENDAR_HOURS_PER_DAY
const EnvPrefix = "BIZCAL"

// Config represents application configuration
type Config struct {
	Calendar CalendarConfig `mapstructure:"calendar"`
	Timers   TimersConfig   `mapstructure:"timers"`
	Daemon   DaemonConfig   `mapstructure:"daemon"`
}

// CalendarConfig represents business calendar configuration
type CalendarConfig struct {
	HoursPerDay  int          `mapstructure:"hours-per-day"`
	DaysPerWeek  int          `mapstructure:"days-per-week"`
	DayStart     string       `mapstructure:"day-start"`    // HH:MM
	WeekendDays  []string     `mapstructure:"weekend-days"` // names or 0=Sunday..6=Saturday
	Holidays     string       `mapstructure:"holidays"`
	HolidaysFile string       `mapstructure:"holidays-file"`
	Remote       RemoteConfig `mapstructure:"remote"`
}

// RemoteConfig represents the production calendar download
type RemoteConfig struct {
	URL     string `mapstructure:"url"` // must contain {year}
	Years   []int  `mapstructure:"years"`
	Timeout string `mapstructure:"timeout"`
}

// TimersConfig represents timer state storage configuration
type TimersConfig struct {
	StateFile string `mapstructure:"state-file"`
}

// DaemonConfig represents daemon mode configuration
type DaemonConfig struct {
	CheckInterval string `mapstructure:"check-interval"`
	LogFile       string `mapstructure:"log-file"`
	LogLevel      string `mapstructure:"log-level"`
	SystemTray    bool   `mapstructure:"system-tray"` // Show system tray icon (Windows only)
	MetricsAddr   string `mapstructure:"metrics-addr"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("calendar.hours-per-day", calendar.DefaultHoursPerDay)
	v.SetDefault("calendar.days-per-week", calendar.DefaultDaysPerWeek)
	v.SetDefault("calendar.day-start", "09:00")
	v.SetDefault("calendar.weekend-days", []string{"saturday", "sunday"})
	v.SetDefault("calendar.holidays", "")
	v.SetDefault("calendar.holidays-file", "")
	v.SetDefault("calendar.remote.url", holidays.DefaultRemoteURL)
	v.SetDefault("calendar.remote.years", []int{})
	v.SetDefault("calendar.remote.timeout", "10s")

	v.SetDefault("timers.state-file", "timers.json")

	v.SetDefault("daemon.check-interval", "1m")
	v.SetDefault("daemon.log-file", "")
	v.SetDefault("daemon.log-level", "info")
	v.SetDefault("daemon.system-tray", false)
	v.SetDefault("daemon.metrics-addr", "")
}

// Load loads configuration from file and environment.
// With an empty configPath the default locations are searched and a
// missing file yields the defaults.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	// Set config file
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.business-calendar")
		v.AddConfigPath("/etc/business-calendar")
	}

	// Read environment variables
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configPath != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	config.ExpandEnvVars()

	// Validate config
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	// Validate Calendar config
	cfg, err := c.Calendar.engineConfig()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if len(c.Calendar.Remote.Years) > 0 && !strings.Contains(c.Calendar.Remote.URL, "{year}") {
		return fmt.Errorf("calendar.remote.url must contain {year}")
	}
	if c.Calendar.Remote.Timeout != "" {
		if _, err := time.ParseDuration(c.Calendar.Remote.Timeout); err != nil {
			return fmt.Errorf("calendar.remote.timeout: %w", err)
		}
	}

	// Validate Timers config
	if c.Timers.StateFile == "" {
		return fmt.Errorf("timers.state-file is required")
	}

	// Validate Daemon config
	if c.Daemon.CheckInterval != "" {
		d, err := time.ParseDuration(c.Daemon.CheckInterval)
		if err != nil {
			return fmt.Errorf("daemon.check-interval: %w", err)
		}
		if d <= 0 {
			return fmt.Errorf("daemon.check-interval must be positive")
		}
	}
	switch strings.ToLower(c.Daemon.LogLevel) {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("daemon.log-level must be debug, info, warn or error, got '%s'", c.Daemon.LogLevel)
	}

	return nil
}

// engineConfig converts the scalar calendar settings; holidays are added by BuildCalendar
func (c *CalendarConfig) engineConfig() (calendar.Config, error) {
	weekend, err := calendar.ParseWeekendDays(c.WeekendDays)
	if err != nil {
		return calendar.Config{}, err
	}

	dayStart := calendar.DefaultDayStart
	if c.DayStart != "" {
		if dayStart, err = calendar.ParseDayStart(c.DayStart); err != nil {
			return calendar.Config{}, err
		}
	}

	return calendar.Config{
		HoursPerDay: c.HoursPerDay,
		DaysPerWeek: c.DaysPerWeek,
		WeekendDays: weekend,
		DayStart:    dayStart,
	}, nil
}

// HolidaySources returns the configured holiday sources in load order.
// The remote production calendar takes precedence over the holidays file,
// which becomes its fallback.
func (c *CalendarConfig) HolidaySources(logger *zap.Logger) []holidays.Source {
	sources := []holidays.Source{holidays.Inline(c.Holidays)}

	var file, remote holidays.Source
	if c.HolidaysFile != "" {
		file = holidays.NewFileSource(c.HolidaysFile, logger)
	}
	if len(c.Remote.Years) > 0 {
		remote = holidays.NewRemoteSource(c.Remote.URL, c.Remote.Years, c.Remote.GetTimeout(), logger)
	}

	switch {
	case remote != nil && file != nil:
		sources = append(sources, holidays.NewCompositeSource(remote, file, logger))
	case remote != nil:
		sources = append(sources, remote)
	case file != nil:
		sources = append(sources, file)
	}

	return sources
}

// BuildCalendar assembles the engine configuration, loading every holiday source
func (c *CalendarConfig) BuildCalendar(ctx context.Context, logger *zap.Logger) (calendar.Config, error) {
	cfg, err := c.engineConfig()
	if err != nil {
		return calendar.Config{}, err
	}

	cfg.Holidays, err = holidays.Collect(ctx, logger, c.HolidaySources(logger)...)
	if err != nil {
		return calendar.Config{}, err
	}

	return cfg, nil
}

// GetTimeout returns the remote download timeout
func (c *RemoteConfig) GetTimeout() time.Duration {
	if c.Timeout == "" {
		return 10 * time.Second
	}
	duration, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 10 * time.Second
	}
	return duration
}

// GetCheckInterval returns daemon check interval duration
func (c *DaemonConfig) GetCheckInterval() time.Duration {
	if c.CheckInterval == "" {
		return time.Minute
	}
	duration, err := time.ParseDuration(c.CheckInterval)
	if err != nil || duration <= 0 {
		return time.Minute
	}
	return duration
}

// ExpandEnvVars expands environment variables in file paths
func (c *Config) ExpandEnvVars() {
	c.Calendar.HolidaysFile = os.ExpandEnv(c.Calendar.HolidaysFile)
	c.Timers.StateFile = os.ExpandEnv(c.Timers.StateFile)
	c.Daemon.LogFile = os.ExpandEnv(c.Daemon.LogFile)
}
