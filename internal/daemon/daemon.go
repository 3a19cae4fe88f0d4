package daemon

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/username/business-calendar/internal/calendar"
	"github.com/username/business-calendar/internal/metrics"
	"github.com/username/business-calendar/internal/timer"
	"go.uber.org/zap"
)

// Options configures a Daemon
type Options struct {
	CheckInterval time.Duration
	SystemTray    bool   // Show system tray icon (Windows only)
	MetricsAddr   string // empty disables the /metrics endpoint
	Gatherer      prometheus.Gatherer
}

// Daemon fires due timers on a fixed interval
type Daemon struct {
	manager       *timer.Manager
	clock         calendar.Clock
	metrics       *metrics.Metrics
	checkInterval time.Duration
	systemTray    bool
	metricsAddr   string
	gatherer      prometheus.Gatherer
	logger        *zap.Logger
	ctx           context.Context
	cancel        context.CancelFunc
	trayApp       *TrayApp
	mu            sync.Mutex // Protect against concurrent checks
	checkRunning  bool
	lastCheck     time.Time
}

// NewDaemon creates a new daemon instance
func NewDaemon(manager *timer.Manager, clock calendar.Clock, m *metrics.Metrics, opts Options, logger *zap.Logger) *Daemon {
	ctx, cancel := context.WithCancel(context.Background())

	if clock == nil {
		clock = calendar.RealClock{}
	}
	if opts.CheckInterval <= 0 {
		opts.CheckInterval = time.Minute
	}
	if opts.Gatherer == nil {
		opts.Gatherer = prometheus.DefaultGatherer
	}

	return &Daemon{
		manager:       manager,
		clock:         clock,
		metrics:       m,
		checkInterval: opts.CheckInterval,
		systemTray:    opts.SystemTray,
		metricsAddr:   opts.MetricsAddr,
		gatherer:      opts.Gatherer,
		logger:        logger,
		ctx:           ctx,
		cancel:        cancel,
	}
}

// Start starts the daemon and blocks until it is stopped
func (d *Daemon) Start() error {
	// Initialize system tray if enabled (Windows only)
	if d.systemTray {
		d.logger.Info("Initializing system tray")
		trayApp, err := NewTrayApp(d, d.logger)
		if err != nil {
			d.logger.Warn("Failed to initialize system tray", zap.Error(err))
			// Fall back to non-tray mode
			return d.Run()
		}
		d.trayApp = trayApp
		// Run tray (blocks until Quit)
		d.trayApp.Run()
		return nil
	}

	d.logger.Info("Running without system tray")
	return d.Run()
}

// Run runs the check loop until Stop is called or a termination signal arrives
func (d *Daemon) Run() error {
	d.logger.Info("Daemon started",
		zap.Duration("check_interval", d.checkInterval),
		zap.Int("pending_timers", d.manager.Pending()))

	srv, err := d.startMetricsServer()
	if err != nil {
		return err
	}
	defer d.shutdownMetricsServer(srv)

	// Setup signal handling
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	// Run initial check immediately
	d.CheckNow()

	ticker := time.NewTicker(d.checkInterval)
	defer ticker.Stop()

	for {
		select {
		case <-d.ctx.Done():
			d.logger.Info("Daemon stopped")
			if d.trayApp != nil {
				d.trayApp.Stop()
			}
			return nil

		case sig := <-sigChan:
			d.logger.Info("Received signal, shutting down",
				zap.String("signal", sig.String()))
			if d.trayApp != nil {
				d.trayApp.Stop()
			}
			d.Stop()
			return nil

		case <-ticker.C:
			d.CheckNow()
		}
	}
}

// Stop stops the daemon
func (d *Daemon) Stop() {
	d.cancel()
}

// CheckNow fires every timer that is due and returns the fired timers.
// A check already in progress makes this call a no-op.
func (d *Daemon) CheckNow() []timer.Timer {
	d.mu.Lock()
	if d.checkRunning {
		d.mu.Unlock()
		d.logger.Warn("Check already running, skipping concurrent execution")
		return nil
	}
	d.checkRunning = true
	d.mu.Unlock()

	started := time.Now()
	defer func() {
		d.metrics.ObserveCheck(started)
		d.mu.Lock()
		d.checkRunning = false
		d.mu.Unlock()
	}()

	now := d.clock.Now()
	var fired []timer.Timer

	for _, t := range d.manager.Due(now) {
		if err := d.manager.MarkFired(t.ID, now); err != nil {
			d.logger.Error("Failed to mark timer fired",
				zap.String("id", t.ID.String()),
				zap.Error(err))
			continue
		}

		d.logger.Info("Timer fired",
			zap.String("id", t.ID.String()),
			zap.String("name", t.Name),
			zap.Time("due_at", t.DueAt),
			zap.Duration("late_by", now.Sub(t.DueAt)))

		if d.trayApp != nil {
			d.trayApp.ShowNotification("Timer due", fmt.Sprintf("%s (due %s)", t.Name, t.DueAt.Format("2006-01-02 15:04")))
		}
		fired = append(fired, t)
	}

	d.mu.Lock()
	d.lastCheck = now
	d.mu.Unlock()

	if len(fired) > 0 {
		d.logger.Info("Check completed",
			zap.Int("fired", len(fired)),
			zap.Int("pending", d.manager.Pending()))
	}

	return fired
}

// GetStatus returns daemon status
func (d *Daemon) GetStatus() map[string]interface{} {
	d.mu.Lock()
	lastCheck := d.lastCheck
	d.mu.Unlock()

	status := map[string]interface{}{
		"running":        d.ctx.Err() == nil,
		"check_interval": d.checkInterval.String(),
		"pending_timers": d.manager.Pending(),
	}
	if !lastCheck.IsZero() {
		status["last_check"] = lastCheck.Format("2006-01-02 15:04:05")
	}

	for _, t := range d.manager.List() {
		if !t.Fired() {
			status["next_due"] = map[string]interface{}{
				"name":   t.Name,
				"due_at": t.DueAt.Format("2006-01-02 15:04"),
			}
			break
		}
	}

	return status
}

func (d *Daemon) startMetricsServer() (*http.Server, error) {
	if d.metricsAddr == "" {
		return nil, nil
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler(d.gatherer))
	srv := &http.Server{
		Addr:              d.metricsAddr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	ln, err := net.Listen("tcp", d.metricsAddr)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on metrics address: %w", err)
	}

	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			d.logger.Error("Metrics server failed", zap.Error(err))
		}
	}()

	d.logger.Info("Metrics endpoint started", zap.String("addr", ln.Addr().String()))
	return srv, nil
}

func (d *Daemon) shutdownMetricsServer(srv *http.Server) {
	if srv == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		d.logger.Warn("Failed to stop metrics server", zap.Error(err))
	}
}
