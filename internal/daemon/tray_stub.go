//go:build !windows
// +build !windows

package daemon

import (
	"errors"

	"go.uber.org/zap"
)

// ErrTrayUnsupported is returned by NewTrayApp where there is no tray icon
var ErrTrayUnsupported = errors.New("system tray is only supported on Windows")

// TrayApp stands in for the tray icon; the timer daemon runs headless here
type TrayApp struct {
	logger *zap.Logger
}

// NewTrayApp always fails, so Start falls back to the headless check loop
func NewTrayApp(daemon *Daemon, logger *zap.Logger) (*TrayApp, error) {
	return nil, ErrTrayUnsupported
}

// Run returns at once; Daemon.Run owns the check loop
func (t *TrayApp) Run() {
}

// Stop has no menu to tear down
func (t *TrayApp) Stop() {
}

// ShowNotification drops timer-due notices; the daemon log records fired timers
func (t *TrayApp) ShowNotification(title, message string) {
}
