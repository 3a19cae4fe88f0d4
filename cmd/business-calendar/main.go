package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/username/business-calendar/internal/calendar"
	"github.com/username/business-calendar/internal/config"
	"github.com/username/business-calendar/internal/metrics"
	"github.com/username/business-calendar/internal/timer"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	configPath string
	appConfig  *config.Config
	logger     = zap.NewNop()
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "business-calendar",
		Short:         "Business time calculator",
		Long:          "Calculate deadlines in working hours, skipping weekends and holidays, and fire business-time timers",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			appConfig = cfg

			if cfg.Daemon.LogFile != "" {
				logger, err = initFileLogger(cfg.Daemon.LogFile, cfg.Daemon.LogLevel)
				if err != nil {
					initLogger(cfg.Daemon.LogLevel) // Fallback to console
				}
			} else {
				initLogger(cfg.Daemon.LogLevel) // Default console logger
			}
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = logger.Sync()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file path (default: ./config.yaml, ~/.business-calendar, /etc/business-calendar)")

	rootCmd.AddCommand(calcCmd())
	rootCmd.AddCommand(checkCmd())
	rootCmd.AddCommand(monthCmd())
	rootCmd.AddCommand(holidaysCmd())
	rootCmd.AddCommand(timerCmd())
	rootCmd.AddCommand(daemonCmd())

	return rootCmd
}

// initializeCalendar builds the business calendar, loading every holiday source
func initializeCalendar(ctx context.Context, clock calendar.Clock) (*calendar.BusinessCalendar, error) {
	calCfg, err := appConfig.Calendar.BuildCalendar(ctx, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to build calendar: %w", err)
	}

	bc, err := calendar.New(calCfg, clock, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create calendar: %w", err)
	}
	return bc, nil
}

// initializeTimers builds the timer manager on top of the calendar and loads its state
func initializeTimers(ctx context.Context, reg prometheus.Registerer) (*timer.Manager, *metrics.Metrics, error) {
	clock := calendar.RealClock{}

	bc, err := initializeCalendar(ctx, clock)
	if err != nil {
		return nil, nil, err
	}

	var m *metrics.Metrics
	if reg != nil {
		m = metrics.New(reg)
	}

	store := timer.NewStore(appConfig.Timers.StateFile, logger)
	manager := timer.NewManager(bc, clock, store, m, logger)
	if err := manager.Load(); err != nil {
		return nil, nil, fmt.Errorf("failed to load timers: %w", err)
	}

	return manager, m, nil
}

func initLogger(level string) {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	if lvl, err := zap.ParseAtomicLevel(level); err == nil {
		config.Level = lvl
	}

	var err error
	logger, err = config.Build()
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
}

func initFileLogger(logFile string, level string) (*zap.Logger, error) {
	// Setup lumberjack for log rotation
	logWriter := &lumberjack.Logger{
		Filename:   logFile,
		MaxSize:    100,  // MB
		MaxBackups: 3,    // Keep max 3 old log files
		MaxAge:     28,   // days
		Compress:   true, // Compress old logs with gzip
	}

	// Setup encoder
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "timestamp"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	// Parse log level
	var zapLevel zapcore.Level
	if err := zapLevel.UnmarshalText([]byte(level)); err != nil {
		zapLevel = zapcore.InfoLevel
	}

	// Create core with lumberjack writer
	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderConfig),
		zapcore.AddSync(logWriter),
		zapLevel,
	)

	return zap.New(core), nil
}

func outPrintf(w io.Writer, format string, a ...interface{}) {
	fmt.Fprintf(w, format, a...)
}

func outPrintln(w io.Writer, a ...interface{}) {
	fmt.Fprintln(w, a...)
}
