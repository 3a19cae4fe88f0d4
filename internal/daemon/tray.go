//go:build windows
// +build windows

package daemon

import (
	"fmt"
	"syscall"
	"unsafe"

	"fyne.io/systray"
	"go.uber.org/zap"
)

var (
	user32      = syscall.NewLazyDLL("user32.dll")
	messageBoxW = user32.NewProc("MessageBoxW")
)

const (
	MB_OK              = 0x00000000
	MB_ICONINFORMATION = 0x00000040
)

// TrayApp represents system tray application
type TrayApp struct {
	daemon *Daemon
	logger *zap.Logger
	quit   chan struct{}
}

// NewTrayApp creates a new system tray application
func NewTrayApp(daemon *Daemon, logger *zap.Logger) (*TrayApp, error) {
	return &TrayApp{
		daemon: daemon,
		logger: logger,
		quit:   make(chan struct{}),
	}, nil
}

// Run starts the system tray application (blocks until Quit)
func (t *TrayApp) Run() {
	systray.Run(t.onReady, t.onExit)
}

func (t *TrayApp) onReady() {
	systray.SetIcon(getClockIcon())
	systray.SetTitle("BC")
	systray.SetTooltip("Business Calendar timers")

	// Add menu items
	mCheckNow := systray.AddMenuItem("Check Now", "Fire due timers immediately")
	systray.AddSeparator()
	mStatus := systray.AddMenuItem("Status", "Show pending timers")
	systray.AddSeparator()
	mQuit := systray.AddMenuItem("Quit", "Exit the application")

	// Start daemon loop in background
	go func() {
		if err := t.daemon.Run(); err != nil {
			t.logger.Error("Daemon loop failed", zap.Error(err))
			systray.Quit()
		}
	}()

	// Handle menu item clicks
	go func() {
		for {
			select {
			case <-mCheckNow.ClickedCh:
				t.logger.Info("Check Now clicked from tray")
				go t.daemon.CheckNow()
			case <-mStatus.ClickedCh:
				t.logger.Info("Status clicked from tray")
				t.showStatus()
			case <-mQuit.ClickedCh:
				t.logger.Info("Quit clicked from tray")
				t.daemon.Stop()
				systray.Quit()
				return
			case <-t.quit:
				systray.Quit()
				return
			}
		}
	}()
}

func (t *TrayApp) onExit() {
	t.logger.Info("System tray exited")
}

// Stop stops the system tray application
func (t *TrayApp) Stop() {
	select {
	case <-t.quit:
	default:
		close(t.quit)
	}
}

// ShowNotification shows a notification (Windows only)
func (t *TrayApp) ShowNotification(title, message string) {
	// fyne.io/systray doesn't have built-in notification support
	systray.SetTooltip(title + ": " + message)
	t.logger.Info("Notification", zap.String("title", title), zap.String("message", message))
}

// showStatus shows pending timers
func (t *TrayApp) showStatus() {
	status := t.daemon.GetStatus()
	t.logger.Info("Current status", zap.Any("status", status))

	message := fmt.Sprintf("Pending timers: %v", status["pending_timers"])
	if next, ok := status["next_due"].(map[string]interface{}); ok {
		message += fmt.Sprintf("\nNext: %v at %v", next["name"], next["due_at"])
	}
	if last, ok := status["last_check"]; ok {
		message += fmt.Sprintf("\nLast check: %v", last)
	}
	systray.SetTooltip(message)

	showMessageBox("Business Calendar Status", message)
}

func showMessageBox(title, message string) {
	titlePtr, _ := syscall.UTF16PtrFromString(title)
	messagePtr, _ := syscall.UTF16PtrFromString(message)
	messageBoxW.Call(
		0,
		uintptr(unsafe.Pointer(messagePtr)),
		uintptr(unsafe.Pointer(titlePtr)),
		uintptr(MB_OK|MB_ICONINFORMATION),
	)
}
