package timer

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

// state is the on-disk layout of the timer state file
type state struct {
	Timers []Timer `json:"timers"`
}

// Store persists timers to a JSON file
type Store struct {
	stateFile string
	logger    *zap.Logger
}

// NewStore creates a new store
func NewStore(stateFile string, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		stateFile: stateFile,
		logger:    logger,
	}
}

// Load loads timers from the state file. A missing file is an empty state.
func (s *Store) Load() ([]Timer, error) {
	data, err := os.ReadFile(s.stateFile)
	if err != nil {
		if os.IsNotExist(err) {
			// File doesn't exist yet - will be created on first save
			return []Timer{}, nil
		}
		return nil, fmt.Errorf("failed to read state file: %w", err)
	}

	var st state
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, fmt.Errorf("failed to parse state file: %w", err)
	}
	if st.Timers == nil {
		st.Timers = []Timer{}
	}

	s.logger.Info("Timer state loaded",
		zap.String("file", s.stateFile),
		zap.Int("timers", len(st.Timers)))

	return st.Timers, nil
}

// Save writes timers to the state file, replacing it atomically
func (s *Store) Save(timers []Timer) error {
	data, err := json.MarshalIndent(state{Timers: timers}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.stateFile), ".timers-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp state file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write state file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write state file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.stateFile); err != nil {
		return fmt.Errorf("failed to replace state file: %w", err)
	}

	s.logger.Debug("Timer state saved",
		zap.String("file", s.stateFile),
		zap.Int("timers", len(timers)))

	return nil
}
