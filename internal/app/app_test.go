package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ezlockin/internal/core/cycle"
	"ezlockin/internal/core/model"
	"ezlockin/internal/platform"
	"ezlockin/internal/storage"
)

func openTestApp(t *testing.T) *App {
	t.Helper()
	t.Setenv(platform.HomeEnv, t.TempDir())
	app, err := Open(Options{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.Close() })
	return app
}

func TestOpenCreatesDataFiles(t *testing.T) {
	app := openTestApp(t)

	assert.FileExists(t, filepath.Join(app.DataDir, storage.ConfigFileName))
	assert.FileExists(t, filepath.Join(app.DataDir, LogFileName))
	assert.FileExists(t, filepath.Join(app.DataDir, storage.HistoryFileName))
	assert.Equal(t, storage.StatsAbsent, app.StatsStatus)
	assert.Equal(t, model.Totals{}, app.Totals)
	assert.Equal(t, 180*time.Second, app.Settings.StudyMin)
}

func TestOpenFailsWhenDataDirCannotBeCreated(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "blocker")
	require.NoError(t, os.WriteFile(blocker, nil, 0o644))
	t.Setenv(platform.HomeEnv, filepath.Join(blocker, "data"))

	_, err := Open(Options{})
	assert.Error(t, err)
}

func TestOpenRecoversFromCorruptStats(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(platform.HomeEnv, dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, storage.StatsFileName), []byte("{nope"), 0o644))

	app, err := Open(Options{})
	require.NoError(t, err)
	defer app.Close()

	assert.Equal(t, storage.StatsCorrupt, app.StatsStatus)
	assert.Equal(t, model.Totals{}, app.Totals)
}

func TestNewMachineRestoresTotals(t *testing.T) {
	app := openTestApp(t)
	require.NoError(t, app.Stats.Save(model.Totals{Accumulated: 40 * time.Second, Lifetime: 4000 * time.Second}))

	reopened, err := Open(Options{})
	require.NoError(t, err)
	defer reopened.Close()

	machine := reopened.NewMachine()
	defer machine.Quit()
	status := machine.Status()
	assert.Equal(t, cycle.PhaseIdle, status.Phase)
	assert.Equal(t, 40*time.Second, status.Accumulated)
	assert.Equal(t, 4000*time.Second, status.Lifetime)
}

func TestResetStatisticsZeroesStatsButKeepsLog(t *testing.T) {
	app := openTestApp(t)
	require.NoError(t, app.Stats.Save(model.Totals{Accumulated: 40 * time.Second, Lifetime: 4000 * time.Second}))
	now := time.Now()
	require.NoError(t, app.SessionLog.Append(model.SessionRecord{Start: now, End: now.Add(3 * time.Minute), Duration: 3 * time.Minute}))

	require.NoError(t, app.ResetStatistics())

	totals, status, err := app.Stats.Load()
	require.NoError(t, err)
	assert.Equal(t, storage.StatsOK, status)
	assert.Equal(t, model.Totals{}, totals)
	assert.FileExists(t, app.SessionLog.Path())
}

func TestRunReturnsAfterQuit(t *testing.T) {
	app := openTestApp(t)
	machine := app.NewMachine()

	changes := make(chan struct{}, 1)
	done := make(chan error, 1)
	go func() {
		done <- app.Run(context.Background(), machine, nil, func() { changes <- struct{}{} })
	}()

	require.NoError(t, machine.Start())
	require.NoError(t, machine.Quit())

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("run did not return after quit")
	}
}

func TestSoundFolderResolvesRelativePaths(t *testing.T) {
	app := openTestApp(t)

	app.Settings.SoundFolder = "study_music"
	assert.Equal(t, filepath.Join(app.DataDir, "study_music"), app.SoundFolder())

	absolute := filepath.Join(t.TempDir(), "cues")
	app.Settings.SoundFolder = absolute
	assert.Equal(t, absolute, app.SoundFolder())

	app.Settings.SoundEnabled = true
	assert.Nil(t, app.LoadSounds())
}

func TestCueFor(t *testing.T) {
	cases := []struct {
		name     string
		previous cycle.Phase
		next     cycle.Phase
		want     model.Cue
		ok       bool
	}{
		{"start from idle", cycle.PhaseIdle, cycle.PhaseFocus, model.CueStartFocus, true},
		{"short break ends", cycle.PhaseShortBreak, cycle.PhaseFocus, model.CueStartFocus, true},
		{"long break ends", cycle.PhaseLongBreak, cycle.PhaseFocus, model.CueEndLongBreak, true},
		{"short break starts", cycle.PhaseFocus, cycle.PhaseShortBreak, model.CueStartShortBreak, true},
		{"long break starts", cycle.PhaseFocus, cycle.PhaseLongBreak, model.CueStartLongBreak, true},
		{"resume", cycle.PhasePaused, cycle.PhaseFocus, "", false},
		{"pause", cycle.PhaseFocus, cycle.PhasePaused, "", false},
		{"reset", cycle.PhaseFocus, cycle.PhaseIdle, "", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cue, ok := CueFor(cycle.Event{
				Type:     cycle.EventPhaseChange,
				Previous: tc.previous,
				Status:   cycle.Status{Phase: tc.next},
			})
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.want, cue)
		})
	}

	_, ok := CueFor(cycle.Event{Type: cycle.EventProgress, Status: cycle.Status{Phase: cycle.PhaseFocus}})
	assert.False(t, ok)
}
