package tray

import (
	"fmt"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver/desktop"
)

// Callbacks defines tray action handlers.
type Callbacks struct {
	OnShowControls func()
	OnTogglePlay   func()
	OnStop         func()
	OnRestart      func()
	OnQuit         func()
}

// Manager handles system tray state.
type Manager struct {
	app         desktop.App
	statusItem  *fyne.MenuItem
	playItem    *fyne.MenuItem
	stopItem    *fyne.MenuItem
	restartItem *fyne.MenuItem
	callbacks   Callbacks
	playing     bool
	trackLabel  string
	statusLabel string
}

// New creates a tray manager with the provided callbacks.
func New(app desktop.App, callbacks Callbacks) *Manager {
	manager := &Manager{
		app:       app,
		callbacks: callbacks,
	}

	manager.statusItem = fyne.NewMenuItem("Status: idle", nil)
	manager.statusItem.Disabled = true

	manager.playItem = fyne.NewMenuItem("Play", func() {
		if manager.callbacks.OnTogglePlay != nil {
			manager.callbacks.OnTogglePlay()
		}
	})

	manager.stopItem = fyne.NewMenuItem("Stop", func() {
		if manager.callbacks.OnStop != nil {
			manager.callbacks.OnStop()
		}
	})
	manager.stopItem.Disabled = true

	manager.restartItem = fyne.NewMenuItem("Restart from top", func() {
		if manager.callbacks.OnRestart != nil {
			manager.callbacks.OnRestart()
		}
	})

	manager.refreshMenu()
	return manager
}

// SetTrack updates the displayed track title.
func (manager *Manager) SetTrack(title string) {
	manager.trackLabel = title
	manager.refreshStatus()
}

// SetStatus updates the status label.
func (manager *Manager) SetStatus(status string) {
	manager.statusLabel = status
	manager.refreshStatus()
}

// SetPlaying updates the play/pause toggle state.
func (manager *Manager) SetPlaying(playing bool) {
	manager.playing = playing
	if playing {
		manager.playItem.Label = "Pause"
	} else {
		manager.playItem.Label = "Play"
	}
	manager.stopItem.Disabled = !playing
	manager.refreshMenu()
}

func (manager *Manager) refreshStatus() {
	status := manager.statusLabel
	if manager.trackLabel != "" {
		status = fmt.Sprintf("%s - %s", manager.trackLabel, status)
	}
	manager.statusItem.Label = fmt.Sprintf("Status: %s", status)
	manager.refreshMenu()
}

func (manager *Manager) refreshMenu() {
	if manager.app == nil {
		return
	}
	manager.app.SetSystemTrayMenu(fyne.NewMenu("Lyrica",
		manager.statusItem,
		fyne.NewMenuItem("Controls", func() {
			if manager.callbacks.OnShowControls != nil {
				manager.callbacks.OnShowControls()
			}
		}),
		manager.playItem,
		manager.stopItem,
		manager.restartItem,
		fyne.NewMenuItem("Quit", func() {
			if manager.callbacks.OnQuit != nil {
				manager.callbacks.OnQuit()
			}
		}),
	))
}
