// Package desktop runs the tray and status window front-end.
package desktop

import (
	"context"
	"errors"
	"fmt"

	"fyne.io/fyne/v2"
	fyneapp "fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	"github.com/rs/zerolog/log"

	"ezlockin/internal/app"
	"ezlockin/internal/core/cycle"
	"ezlockin/internal/platform"
	"ezlockin/internal/storage"
	"ezlockin/internal/ui/overlay"
	"ezlockin/internal/ui/preferences"
	"ezlockin/internal/ui/tray"
)

const appID = "io.ezlockin.app"

// ErrTrayUnsupported is returned when the driver has no system tray.
var ErrTrayUnsupported = errors.New("system tray unsupported on this platform")

// Run starts the tray front-end for opened and blocks until the user quits.
func Run(opened *app.App) error {
	guard, err := opened.Lock()
	if err != nil {
		return err
	}
	defer guard.Release()

	fyneApp := fyneapp.NewWithID(appID)
	fyneApp.SetIcon(iconFor(cycle.Status{Phase: cycle.PhaseIdle}))
	desktopApp, ok := fyneApp.(desktop.App)
	if !ok {
		return ErrTrayUnsupported
	}

	machine := opened.NewMachine()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	statusWindow := overlay.New(fyneApp, windowConfig(opened.Settings))
	prefsWindow := preferences.New(fyneApp, opened.Settings, func(settings preferences.Settings) error {
		if err := storage.SaveSettings(opened.DataDir, settings); err != nil {
			log.Error().Err(err).Msg("save preferences")
			return fmt.Errorf("could not save preferences: %w", err)
		}
		statusWindow.UpdateConfig(windowConfig(settings))
		log.Info().Msg("preferences saved")
		return nil
	})

	trayManager := tray.New(desktopApp, tray.Callbacks{
		OnStart:      func() { runCommand("start", machine.Start) },
		OnPause:      func() { runCommand("pause", machine.Pause) },
		OnResetCycle: func() { runCommand("reset cycle", machine.ResetCurrentCycle) },
		OnClearStats: func() {
			confirmClear(fyneApp, func() {
				runCommand("reset statistics", func() error { return machine.ResetAllStatistics(true) })
			})
		},
		OnOpenLogFolder: func() {
			if err := platform.OpenFolder(opened.DataDir); err != nil {
				log.Warn().Err(err).Str("path", opened.DataDir).Msg("open log folder")
			}
		},
		OnShowTimer:   statusWindow.Show,
		OnPreferences: prefsWindow.Show,
		OnQuit:        fyneApp.Quit,
	})
	desktopApp.SetSystemTrayIcon(iconFor(machine.Status()))

	events := machine.Subscribe(64)
	go func() {
		notifications := newNotifier()
		for event := range events {
			status := event.Status
			notification, notify := notifications.next(event)
			fyne.Do(func() {
				trayManager.SetStatus(status)
				statusWindow.SetStatus(status)
				if event.Type == cycle.EventPhaseChange {
					desktopApp.SetSystemTrayIcon(iconFor(status))
				}
				if notify {
					fyneApp.SendNotification(notification)
				}
			})
		}
	}()

	runErr := make(chan error, 1)
	go func() {
		runErr <- opened.Run(ctx, machine, opened.LoadSounds(), func() {
			fyne.Do(func() {
				fyneApp.SendNotification(fyne.NewNotification(app.Name, "Config changed on disk, restart to apply"))
			})
		})
	}()

	statusWindow.Show()
	fyneApp.Run()

	quitErr := machine.Quit()
	cancel()
	return errors.Join(quitErr, <-runErr)
}

func windowConfig(settings preferences.Settings) overlay.Config {
	return overlay.Config{
		Opacity:     overlay.OpacityToAlpha(settings.WindowOpacity),
		AlwaysOnTop: settings.AlwaysOnTop,
	}
}

// iconFor picks the tray icon for the active phase.
func iconFor(status cycle.Status) fyne.Resource {
	switch status.Phase {
	case cycle.PhaseFocus:
		return theme.MediaPlayIcon()
	case cycle.PhaseShortBreak, cycle.PhaseLongBreak:
		return theme.HistoryIcon()
	case cycle.PhasePaused:
		return theme.MediaPauseIcon()
	default:
		return theme.MediaStopIcon()
	}
}

// runCommand logs the outcome of a tray command. Commands that do not apply
// to the current phase are expected from a menu and logged at debug level.
func runCommand(name string, command func() error) {
	err := command()
	if err == nil {
		return
	}
	var commandErr *cycle.CommandError
	if errors.As(err, &commandErr) {
		log.Debug().Err(err).Str("command", name).Msg("command ignored")
		return
	}
	log.Warn().Err(err).Str("command", name).Msg("command failed")
}

func confirmClear(fyneApp fyne.App, onConfirm func()) {
	window := fyneApp.NewWindow("Clear All Statistics")
	message := widget.NewLabel("Reset total and accumulated focus time to zero?\nThe session log is kept.")

	clearButton := widget.NewButton("Clear", func() {
		window.Close()
		onConfirm()
	})
	clearButton.Importance = widget.DangerImportance
	cancelButton := widget.NewButton("Cancel", window.Close)

	window.SetContent(container.NewBorder(nil,
		container.NewHBox(layout.NewSpacer(), cancelButton, clearButton),
		nil, nil, message))
	window.Resize(fyne.NewSize(360, 140))
	window.CenterOnScreen()
	window.Show()
}
