package daemon

import (
	"bytes"
	"encoding/binary"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/username/business-calendar/internal/calendar"
	"github.com/username/business-calendar/internal/metrics"
	"github.com/username/business-calendar/internal/timer"
	"go.uber.org/zap"
)

func newTestDaemon(t *testing.T, clock *calendar.FixedClock, opts Options) (*Daemon, *timer.Manager, *metrics.Metrics) {
	t.Helper()
	logger, _ := zap.NewDevelopment()

	bc, err := calendar.New(calendar.DefaultConfig(), clock, logger)
	if err != nil {
		t.Fatalf("calendar.New() error = %v", err)
	}

	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	store := timer.NewStore(filepath.Join(t.TempDir(), "timers.json"), logger)
	mgr := timer.NewManager(bc, clock, store, m, logger)

	opts.Gatherer = reg
	return NewDaemon(mgr, clock, m, opts, logger), mgr, m
}

func TestDaemon_CheckNow(t *testing.T) {
	start := time.Date(2012, time.May, 4, 13, 45, 0, 0, time.UTC)
	clock := calendar.NewFixedClock(start)
	d, mgr, m := newTestDaemon(t, clock, Options{})

	first, err := mgr.Schedule("first", "1h")
	if err != nil {
		t.Fatalf("Schedule() error = %v", err)
	}
	second, err := mgr.Schedule("second", "7h")
	if err != nil {
		t.Fatalf("Schedule() error = %v", err)
	}

	if fired := d.CheckNow(); len(fired) != 0 {
		t.Fatalf("CheckNow() before any deadline fired %v", fired)
	}

	clock.Advance(time.Hour)
	fired := d.CheckNow()
	if len(fired) != 1 || fired[0].ID != first.ID {
		t.Fatalf("CheckNow() fired %v, want %s", fired, first.ID)
	}
	if fired := d.CheckNow(); len(fired) != 0 {
		t.Errorf("CheckNow() fired %v again", fired)
	}

	// Monday 12:45 is the second deadline
	clock.Set(time.Date(2012, time.May, 7, 12, 45, 0, 0, time.UTC))
	fired = d.CheckNow()
	if len(fired) != 1 || fired[0].ID != second.ID {
		t.Fatalf("CheckNow() fired %v, want %s", fired, second.ID)
	}

	if got := mgr.Pending(); got != 0 {
		t.Errorf("Pending() = %d, want 0", got)
	}
	if got := testutil.ToFloat64(m.TimersFired); got != 2 {
		t.Errorf("timers_fired_total = %v, want 2", got)
	}
	if n := testutil.CollectAndCount(m.CheckDuration); n != 1 {
		t.Errorf("check_duration_seconds series = %d, want 1", n)
	}
}

func TestDaemon_GetStatus(t *testing.T) {
	clock := calendar.NewFixedClock(time.Date(2012, time.May, 4, 13, 45, 0, 0, time.UTC))
	d, mgr, _ := newTestDaemon(t, clock, Options{CheckInterval: 30 * time.Second})

	if _, err := mgr.Schedule("review", "3h"); err != nil {
		t.Fatalf("Schedule() error = %v", err)
	}
	d.CheckNow()

	status := d.GetStatus()
	if status["running"] != true {
		t.Errorf("running = %v, want true", status["running"])
	}
	if status["check_interval"] != "30s" {
		t.Errorf("check_interval = %v, want 30s", status["check_interval"])
	}
	if status["pending_timers"] != 1 {
		t.Errorf("pending_timers = %v, want 1", status["pending_timers"])
	}
	if status["last_check"] != "2012-05-04 13:45:00" {
		t.Errorf("last_check = %v", status["last_check"])
	}
	next, ok := status["next_due"].(map[string]interface{})
	if !ok || next["name"] != "review" || next["due_at"] != "2012-05-04 16:45" {
		t.Errorf("next_due = %v", status["next_due"])
	}

	d.Stop()
	if status := d.GetStatus(); status["running"] != false {
		t.Errorf("running after Stop = %v, want false", status["running"])
	}
}

func TestDaemon_RunStops(t *testing.T) {
	clock := calendar.NewFixedClock(time.Date(2012, time.May, 4, 13, 45, 0, 0, time.UTC))
	d, mgr, _ := newTestDaemon(t, clock, Options{CheckInterval: 10 * time.Millisecond})

	if _, err := mgr.Schedule("soon", "1m"); err != nil {
		t.Fatalf("Schedule() error = %v", err)
	}
	clock.Advance(time.Minute)

	done := make(chan error, 1)
	go func() { done <- d.Run() }()

	deadline := time.After(2 * time.Second)
	for mgr.Pending() != 0 {
		select {
		case <-deadline:
			t.Fatal("timer was not fired by the daemon loop")
		case <-time.After(5 * time.Millisecond):
		}
	}

	d.Stop()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run() error = %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run() did not return after Stop()")
	}
}

func TestDaemon_RunBadMetricsAddr(t *testing.T) {
	clock := calendar.NewFixedClock(time.Date(2012, time.May, 4, 13, 45, 0, 0, time.UTC))
	d, _, _ := newTestDaemon(t, clock, Options{MetricsAddr: "not-an-address"})

	if err := d.Run(); err == nil {
		t.Error("Run() error = nil for bad metrics address")
	}
}

func TestGetClockIcon(t *testing.T) {
	icon := getClockIcon()

	var header struct {
		Reserved, Type, Count uint16
	}
	if err := binary.Read(bytes.NewReader(icon), binary.LittleEndian, &header); err != nil {
		t.Fatalf("failed to read icon header: %v", err)
	}
	if header.Type != 1 || header.Count != 1 {
		t.Errorf("icon header = %+v, want one icon image", header)
	}

	want := 6 + 16 + 40 + iconSize*iconSize*4 + iconSize*4
	if len(icon) != want {
		t.Errorf("icon size = %d bytes, want %d", len(icon), want)
	}
}
