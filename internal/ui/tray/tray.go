package tray

import (
	"fyne.io/fyne/v2"

	"ezlockin/internal/core/cycle"
	"ezlockin/internal/ui/display"
)

const menuTitle = "EZLockIn"

// Host is the part of desktop.App the tray needs.
type Host interface {
	SetSystemTrayMenu(menu *fyne.Menu)
}

// Callbacks defines tray action handlers.
type Callbacks struct {
	OnStart         func()
	OnPause         func()
	OnResetCycle    func()
	OnClearStats    func()
	OnOpenLogFolder func()
	OnShowTimer     func()
	OnPreferences   func()
	OnQuit          func()
}

// Manager handles system tray state.
type Manager struct {
	host      Host
	callbacks Callbacks

	statusItem   *fyne.MenuItem
	estimateItem *fyne.MenuItem
	totalItem    *fyne.MenuItem
	startItem    *fyne.MenuItem
	pauseItem    *fyne.MenuItem
	resetItem    *fyne.MenuItem

	menu *fyne.Menu
}

// New creates a tray manager with the provided callbacks.
func New(host Host, callbacks Callbacks) *Manager {
	manager := &Manager{
		host:      host,
		callbacks: callbacks,
	}

	manager.statusItem = disabledItem("Idle")
	manager.estimateItem = disabledItem("")
	manager.totalItem = disabledItem("")

	manager.startItem = fyne.NewMenuItem("Start", invoke(&manager.callbacks.OnStart))
	manager.pauseItem = fyne.NewMenuItem("Pause", invoke(&manager.callbacks.OnPause))
	manager.resetItem = fyne.NewMenuItem("Reset Current Cycle", invoke(&manager.callbacks.OnResetCycle))

	manager.SetStatus(cycle.Status{Phase: cycle.PhaseIdle})
	return manager
}

// Menu returns the menu most recently handed to the host.
func (manager *Manager) Menu() *fyne.Menu {
	return manager.menu
}

// SetStatus updates labels and enabled commands from status. Callers on
// other goroutines must wrap it in fyne.Do.
func (manager *Manager) SetStatus(status cycle.Status) {
	manager.statusItem.Label = display.StatusLine(status)
	manager.estimateItem.Label = display.LongBreakEstimate(status)
	manager.totalItem.Label = display.TotalFocus(status.Lifetime)

	state := commandsFor(status)
	manager.startItem.Label = state.startLabel
	manager.startItem.Disabled = !state.canStart
	manager.pauseItem.Disabled = !state.canPause
	manager.resetItem.Disabled = !state.canReset

	manager.refreshMenu()
}

type commandState struct {
	startLabel string
	canStart   bool
	canPause   bool
	canReset   bool
}

func commandsFor(status cycle.Status) commandState {
	switch {
	case status.Phase == cycle.PhaseIdle:
		return commandState{startLabel: "Start", canStart: true}
	case status.Phase == cycle.PhasePaused:
		return commandState{startLabel: "Resume", canStart: true, canReset: true}
	default:
		return commandState{startLabel: "Start", canPause: true, canReset: true}
	}
}

func (manager *Manager) refreshMenu() {
	items := []*fyne.MenuItem{
		manager.statusItem,
		manager.estimateItem,
		manager.totalItem,
		fyne.NewMenuItemSeparator(),
		manager.startItem,
		manager.pauseItem,
		manager.resetItem,
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Show Timer", invoke(&manager.callbacks.OnShowTimer)),
		fyne.NewMenuItem("Open Log Folder", invoke(&manager.callbacks.OnOpenLogFolder)),
		fyne.NewMenuItem("Preferences", invoke(&manager.callbacks.OnPreferences)),
		fyne.NewMenuItem("Clear All Statistics...", invoke(&manager.callbacks.OnClearStats)),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Quit", invoke(&manager.callbacks.OnQuit)),
	}

	manager.menu = fyne.NewMenu(menuTitle, items...)
	if manager.host != nil {
		manager.host.SetSystemTrayMenu(manager.menu)
	}
}

func disabledItem(label string) *fyne.MenuItem {
	item := fyne.NewMenuItem(label, nil)
	item.Disabled = true
	return item
}

func invoke(handler *func()) func() {
	return func() {
		if *handler != nil {
			(*handler)()
		}
	}
}
