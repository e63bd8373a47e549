// Package app resolves the data directory and wires storage, the cycle
// machine and its side effects for the front-ends.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"ezlockin/internal/core/cycle"
	"ezlockin/internal/core/duration"
	"ezlockin/internal/core/model"
	"ezlockin/internal/platform"
	"ezlockin/internal/storage"
	"ezlockin/internal/ui/preferences"
	"ezlockin/internal/watcher"
)

const (
	// Name is the application name used for the data directory and windows.
	Name = "EZLockIn"

	// LogFileName is the zerolog output inside the data directory.
	LogFileName = "ezlockin.log"
)

// Options controls how the application is opened.
type Options struct {
	Debug bool
	// Console receives human readable logs in addition to the log file.
	// Nil keeps the terminal quiet.
	Console io.Writer
}

// App holds the loaded configuration and storage for one run.
type App struct {
	DataDir     string
	Settings    preferences.Settings
	Totals      model.Totals
	StatsStatus storage.LoadStatus

	Stats      *storage.StatsStore
	SessionLog *storage.SessionLog
	History    *storage.History

	logFile        *os.File
	previousLogger zerolog.Logger
}

// Open prepares the data directory, logging, configuration and storage.
// Only a data directory that cannot be created is fatal; every other
// problem is logged and replaced with a default.
func Open(options Options) (*App, error) {
	dataDir, err := platform.EnsureDataDir(Name)
	if err != nil {
		return nil, err
	}

	app := &App{DataDir: dataDir, previousLogger: log.Logger}
	if err := app.setupLogging(options); err != nil {
		fmt.Fprintf(os.Stderr, "ezlockin: %v\n", err)
	}

	settings, err := storage.LoadSettings(dataDir)
	if err != nil {
		var configErr *storage.ConfigError
		if errors.As(err, &configErr) {
			log.Warn().Err(err).Msg("config problems, affected keys use defaults")
		} else {
			log.Error().Err(err).Msg("config unavailable, using defaults")
		}
	}
	app.Settings = settings

	app.Stats = storage.NewStatsStore(dataDir)
	app.Totals, app.StatsStatus, err = app.Stats.Load()
	switch app.StatsStatus {
	case storage.StatsCorrupt:
		log.Warn().Err(err).Str("path", app.Stats.Path()).Msg("stats unreadable, starting from zero")
	case storage.StatsAbsent:
		log.Info().Str("path", app.Stats.Path()).Msg("no stats yet, starting from zero")
	}

	app.SessionLog = storage.NewSessionLog(dataDir)

	history, err := storage.OpenHistory(filepath.Join(dataDir, storage.HistoryFileName))
	if err != nil {
		log.Warn().Err(err).Msg("session history disabled")
	} else {
		app.History = history
	}

	log.Info().
		Str("data_dir", dataDir).
		Dur("lifetime", app.Totals.Lifetime).
		Dur("accumulated", app.Totals.Accumulated).
		Msg("opened")
	return app, nil
}

func (app *App) setupLogging(options Options) error {
	level := zerolog.InfoLevel
	if options.Debug {
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)

	var writers []io.Writer
	if options.Console != nil {
		writers = append(writers, zerolog.ConsoleWriter{Out: options.Console, NoColor: true})
	}

	logPath := filepath.Join(app.DataDir, LogFileName)
	file, err := os.OpenFile(logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err == nil {
		app.logFile = file
		writers = append(writers, file)
	}

	switch len(writers) {
	case 0:
		log.Logger = zerolog.Nop()
	case 1:
		log.Logger = zerolog.New(writers[0]).With().Timestamp().Logger()
	default:
		log.Logger = zerolog.New(zerolog.MultiLevelWriter(writers...)).With().Timestamp().Logger()
	}

	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	return nil
}

// Recorder returns the session sinks for completed focus phases.
func (app *App) Recorder() *storage.MultiRecorder {
	if app.History == nil {
		return storage.NewMultiRecorder(app.SessionLog)
	}
	return storage.NewMultiRecorder(app.SessionLog, app.History)
}

// NewMachine builds an Idle cycle machine seeded with the loaded totals.
func (app *App) NewMachine() *cycle.Machine {
	machine := cycle.New(app.Settings.CycleConfig(), cycle.Config{
		Durations: duration.NewRandom(),
		Recorder:  app.Recorder(),
		Stats:     app.Stats,
		Totals:    app.Totals,
	})
	if app.Settings.IdlePauseAfter > 0 {
		machine.SetIdleChecker(platform.NewIdleProvider())
	}
	return machine
}

// SoundFolder returns the cue folder, resolving relative paths against the data directory.
func (app *App) SoundFolder() string {
	folder := app.Settings.SoundFolder
	if folder == "" || filepath.IsAbs(folder) {
		return folder
	}
	return filepath.Join(app.DataDir, folder)
}

// LoadSounds decodes the configured cues. It returns nil when sounds are
// disabled or none could be loaded.
func (app *App) LoadSounds() *platform.SoundPlayer {
	if !app.Settings.SoundEnabled {
		return nil
	}
	player, err := platform.LoadSounds(app.SoundFolder(), app.Settings.SoundFiles)
	if errors.Is(err, platform.ErrNoSounds) {
		log.Warn().Err(err).Str("folder", app.SoundFolder()).Msg("sound cues disabled")
		return nil
	}
	if err != nil {
		log.Warn().Err(err).Msg("some sound cues could not be loaded")
	}
	player.SetVolume(app.Settings.SoundVolume)
	return player
}

// Run drives machine until ctx is cancelled or the machine quits. It plays
// cues on phase changes, logs notable events and reports edits of the
// config document through onConfigChange.
func (app *App) Run(ctx context.Context, machine *cycle.Machine, sounds *platform.SoundPlayer, onConfigChange func()) error {
	group, ctx := errgroup.WithContext(ctx)
	events := machine.Subscribe(64)

	group.Go(func() error {
		machine.Run(ctx)
		return nil
	})

	group.Go(func() error {
		for {
			select {
			case <-ctx.Done():
				return nil
			case event, ok := <-events:
				if !ok {
					return nil
				}
				observe(event, sounds)
			}
		}
	})

	if onConfigChange != nil {
		configWatcher, err := watcher.New(storage.ConfigPath(app.DataDir), onConfigChange)
		if err == nil {
			err = configWatcher.Start()
		}
		if err != nil {
			log.Warn().Err(err).Msg("config watcher unavailable")
		} else {
			group.Go(func() error {
				select {
				case <-ctx.Done():
				case <-machine.Done():
				}
				return configWatcher.Stop()
			})
		}
	}

	return group.Wait()
}

// Close releases storage and restores the previous global logger.
func (app *App) Close() error {
	var errs []error
	if app.History != nil {
		if err := app.History.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close history: %w", err))
		}
	}
	log.Logger = app.previousLogger
	if app.logFile != nil {
		if err := app.logFile.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close log file: %w", err))
		}
	}
	return errors.Join(errs...)
}

func observe(event cycle.Event, sounds *platform.SoundPlayer) {
	switch event.Type {
	case cycle.EventPhaseChange:
		log.Debug().
			Str("from", string(event.Previous)).
			Str("to", string(event.Status.Phase)).
			Dur("remaining", event.Status.Remaining).
			Msg("phase change")
	case cycle.EventSessionLogged:
		log.Info().
			Time("start", event.Record.Start).
			Dur("duration", event.Record.Duration).
			Msg("focus session logged")
	case cycle.EventPersistenceError, cycle.EventIdleError:
		log.Warn().Err(event.Err).Msg(string(event.Type))
	case cycle.EventIdlePause:
		log.Info().Msg(event.Message)
	case cycle.EventStatsReset:
		log.Info().Msg("statistics reset")
	}

	if cue, ok := CueFor(event); ok {
		sounds.Play(cue)
	}
}

// CueFor maps a cycle transition to the sound that announces it.
func CueFor(event cycle.Event) (model.Cue, bool) {
	if event.Type != cycle.EventPhaseChange {
		return "", false
	}
	switch event.Status.Phase {
	case cycle.PhaseFocus:
		switch event.Previous {
		case cycle.PhaseLongBreak:
			return model.CueEndLongBreak, true
		case cycle.PhaseIdle, cycle.PhaseShortBreak:
			return model.CueStartFocus, true
		}
	case cycle.PhaseShortBreak:
		if event.Previous == cycle.PhaseFocus {
			return model.CueStartShortBreak, true
		}
	case cycle.PhaseLongBreak:
		if event.Previous == cycle.PhaseFocus {
			return model.CueStartLongBreak, true
		}
	}
	return "", false
}

// Lock takes the single-instance lock for this data directory.
func (app *App) Lock() (*platform.InstanceGuard, error) {
	return platform.AcquireSingleInstance(app.DataDir)
}

// ResetStatistics zeroes the persisted totals while no timer is running.
// The session log and history are left untouched.
func (app *App) ResetStatistics() error {
	guard, err := app.Lock()
	if err != nil {
		return fmt.Errorf("reset statistics: stop the running timer first: %w", err)
	}
	defer guard.Release()

	machine := cycle.New(app.Settings.CycleConfig(), cycle.Config{Stats: app.Stats, Totals: app.Totals})
	if err := machine.ResetAllStatistics(true); err != nil {
		return fmt.Errorf("reset statistics: %w", err)
	}
	if err := machine.Quit(); err != nil {
		return fmt.Errorf("reset statistics: %w", err)
	}
	app.Totals = model.Totals{}
	log.Info().Msg("statistics reset")
	return nil
}

// Snapshot returns the Idle status for the loaded totals without touching storage.
func (app *App) Snapshot() cycle.Status {
	machine := cycle.New(app.Settings.CycleConfig(), cycle.Config{Totals: app.Totals})
	defer machine.Quit()
	return machine.Status()
}
