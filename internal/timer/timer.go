// Package timer schedules deadlines measured in business time and keeps
// them in a JSON state file.
package timer

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/username/business-calendar/internal/calendar"
	"github.com/username/business-calendar/internal/metrics"
	"go.uber.org/zap"
)

// ErrTimerNotFound is returned for an unknown timer ID
var ErrTimerNotFound = errors.New("timer not found")

// Timer is a named deadline
type Timer struct {
	ID        uuid.UUID  `json:"id" yaml:"id"`
	Name      string     `json:"name" yaml:"name"`
	Duration  string     `json:"duration" yaml:"duration"`
	CreatedAt time.Time  `json:"created_at" yaml:"created_at"`
	DueAt     time.Time  `json:"due_at" yaml:"due_at"`
	FiredAt   *time.Time `json:"fired_at,omitempty" yaml:"fired_at,omitempty"`
}

// Fired reports whether the timer has already fired
func (t Timer) Fired() bool {
	return t.FiredAt != nil
}

// Calculator advances an instant by business time
type Calculator interface {
	Advance(start time.Time, d calendar.Duration) (time.Time, error)
}

// Manager owns the set of timers. It is safe for concurrent use.
type Manager struct {
	calc    Calculator
	clock   calendar.Clock
	store   *Store
	metrics *metrics.Metrics
	logger  *zap.Logger

	mu     sync.Mutex
	timers []Timer
}

// NewManager creates a new timer manager. m and logger may be nil.
func NewManager(calc Calculator, clock calendar.Clock, store *Store, m *metrics.Metrics, logger *zap.Logger) *Manager {
	if clock == nil {
		clock = calendar.RealClock{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		calc:    calc,
		clock:   clock,
		store:   store,
		metrics: m,
		logger:  logger,
		timers:  []Timer{},
	}
}

// Load replaces the in-memory timers with the stored ones
func (m *Manager) Load() error {
	timers, err := m.store.Load()
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.timers = timers
	m.metrics.SetPending(m.pendingLocked())
	return nil
}

// Schedule creates a timer due expr business time after now
func (m *Manager) Schedule(name, expr string) (Timer, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Timer{}, fmt.Errorf("timer name is required")
	}

	d, err := calendar.ParseDuration(expr)
	if err != nil {
		m.metrics.ObserveCalculation(err)
		return Timer{}, fmt.Errorf("failed to parse duration: %w", err)
	}

	now := m.clock.Now()
	due, err := m.calc.Advance(now, d)
	m.metrics.ObserveCalculation(err)
	if err != nil {
		return Timer{}, fmt.Errorf("failed to calculate due time: %w", err)
	}

	t := Timer{
		ID:        uuid.New(),
		Name:      name,
		Duration:  d.String(),
		CreatedAt: now,
		DueAt:     due,
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	next := append(append([]Timer(nil), m.timers...), t)
	if err := m.commitLocked(next); err != nil {
		return Timer{}, err
	}
	m.metrics.TimerScheduled()

	m.logger.Info("Timer scheduled",
		zap.String("id", t.ID.String()),
		zap.String("name", t.Name),
		zap.String("duration", t.Duration),
		zap.Time("due_at", t.DueAt))

	return t, nil
}

// Due returns the unfired timers whose due instant is not after now,
// earliest first
func (m *Manager) Due(now time.Time) []Timer {
	m.mu.Lock()
	defer m.mu.Unlock()

	var due []Timer
	for _, t := range m.timers {
		if !t.Fired() && !t.DueAt.After(now) {
			due = append(due, t)
		}
	}
	sortByDue(due)
	return due
}

// MarkFired records that timer id fired at at
func (m *Manager) MarkFired(id uuid.UUID, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.indexLocked(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrTimerNotFound, id)
	}
	if m.timers[i].Fired() {
		return nil
	}

	next := append([]Timer(nil), m.timers...)
	firedAt := at
	next[i].FiredAt = &firedAt
	if err := m.commitLocked(next); err != nil {
		return err
	}
	m.metrics.TimersFiredAdd(1)
	return nil
}

// List returns all timers, earliest due first
func (m *Manager) List() []Timer {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := append([]Timer(nil), m.timers...)
	sortByDue(out)
	return out
}

// Get returns the timer with the given id
func (m *Manager) Get(id uuid.UUID) (Timer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.indexLocked(id)
	if i < 0 {
		return Timer{}, fmt.Errorf("%w: %s", ErrTimerNotFound, id)
	}
	return m.timers[i], nil
}

// Remove deletes the timer with the given id
func (m *Manager) Remove(id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.indexLocked(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrTimerNotFound, id)
	}

	next := make([]Timer, 0, len(m.timers)-1)
	next = append(next, m.timers[:i]...)
	next = append(next, m.timers[i+1:]...)
	if err := m.commitLocked(next); err != nil {
		return err
	}

	m.logger.Info("Timer removed", zap.String("id", id.String()))
	return nil
}

// Pending returns the number of timers that have not fired
func (m *Manager) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pendingLocked()
}

// commitLocked saves next and makes it the current state
func (m *Manager) commitLocked(next []Timer) error {
	if err := m.store.Save(next); err != nil {
		return err
	}
	m.timers = next
	m.metrics.SetPending(m.pendingLocked())
	return nil
}

func (m *Manager) pendingLocked() int {
	n := 0
	for _, t := range m.timers {
		if !t.Fired() {
			n++
		}
	}
	return n
}

func (m *Manager) indexLocked(id uuid.UUID) int {
	for i, t := range m.timers {
		if t.ID == id {
			return i
		}
	}
	return -1
}

func sortByDue(timers []Timer) {
	sort.SliceStable(timers, func(i, j int) bool {
		return timers[i].DueAt.Before(timers[j].DueAt)
	})
}
