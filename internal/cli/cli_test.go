package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ezlockin/internal/app"
	"ezlockin/internal/core/model"
	"ezlockin/internal/platform"
	"ezlockin/internal/storage"
)

func executeCommand(root *cobra.Command, args ...string) (output string, err error) {
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs(args)
	_, err = root.ExecuteC()
	return buf.String(), err
}

func useTempHome(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv(platform.HomeEnv, dir)
	return dir
}

func stubInteractive(t *testing.T, interactive bool, answer bool) *int {
	t.Helper()
	previousInteractive, previousConfirm := isInteractive, confirmReset
	t.Cleanup(func() { isInteractive, confirmReset = previousInteractive, previousConfirm })

	prompts := 0
	isInteractive = func() bool { return interactive }
	confirmReset = func() (bool, error) {
		prompts++
		return answer, nil
	}
	return &prompts
}

func TestConfigPathAndShow(t *testing.T) {
	home := useTempHome(t)

	output, err := executeCommand(NewRootCmd(Launcher{}), "config", "path")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, storage.ConfigFileName)+"\n", output)

	output, err = executeCommand(NewRootCmd(Launcher{}), "config", "show")
	require.NoError(t, err)
	assert.Contains(t, output, "study_time_min: 180")
	assert.Contains(t, output, "long_break_threshold: 5400")
}

func TestStatsCommand(t *testing.T) {
	home := useTempHome(t)
	require.NoError(t, storage.NewStatsStore(home).Save(model.Totals{
		Accumulated: 30 * time.Minute,
		Lifetime:    2*time.Hour + 30*time.Minute,
	}))

	output, err := executeCommand(NewRootCmd(Launcher{}), "stats")
	require.NoError(t, err)
	assert.Contains(t, output, "Total focus: 2h 30m")
	assert.Contains(t, output, "Since last long break: 30m 0s")
	assert.Contains(t, output, "Long break in ~60m")
	assert.Contains(t, output, "Last 7 days: 0 sessions")
}

func TestHistoryCommand(t *testing.T) {
	home := useTempHome(t)

	output, err := executeCommand(NewRootCmd(Launcher{}), "history")
	require.NoError(t, err)
	assert.Contains(t, output, "No focus sessions in the last 7 days.")

	history, err := storage.OpenHistory(filepath.Join(home, storage.HistoryFileName))
	require.NoError(t, err)
	start := time.Now().Add(-time.Hour).Truncate(time.Second)
	require.NoError(t, history.Append(model.SessionRecord{Start: start, End: start.Add(200 * time.Second), Duration: 200 * time.Second}))
	require.NoError(t, history.Close())

	output, err = executeCommand(NewRootCmd(Launcher{}), "history", "--days", "2")
	require.NoError(t, err)
	assert.Contains(t, output, "START")
	assert.Contains(t, output, start.Format(storage.TimestampLayout))
	assert.Contains(t, output, "3m 20s")

	_, err = executeCommand(NewRootCmd(Launcher{}), "history", "--days", "0")
	assert.Error(t, err)
}

func TestResetStatsRequiresConfirmation(t *testing.T) {
	home := useTempHome(t)
	stubInteractive(t, false, false)
	store := storage.NewStatsStore(home)
	require.NoError(t, store.Save(model.Totals{Lifetime: time.Hour}))

	_, err := executeCommand(NewRootCmd(Launcher{}), "reset-stats")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--yes")

	totals, _, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, time.Hour, totals.Lifetime)
}

func TestResetStatsDeclinedPrompt(t *testing.T) {
	home := useTempHome(t)
	prompts := stubInteractive(t, true, false)
	store := storage.NewStatsStore(home)
	require.NoError(t, store.Save(model.Totals{Lifetime: time.Hour}))

	output, err := executeCommand(NewRootCmd(Launcher{}), "reset-stats")
	require.NoError(t, err)
	assert.Contains(t, output, "Statistics kept.")
	assert.Equal(t, 1, *prompts)

	totals, _, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, time.Hour, totals.Lifetime)
}

func TestResetStatsYesZeroesStatsAndKeepsLog(t *testing.T) {
	home := useTempHome(t)
	prompts := stubInteractive(t, true, false)
	store := storage.NewStatsStore(home)
	require.NoError(t, store.Save(model.Totals{Accumulated: time.Minute, Lifetime: time.Hour}))

	sessionLog := storage.NewSessionLog(home)
	now := time.Now()
	require.NoError(t, sessionLog.Append(model.SessionRecord{Start: now, End: now.Add(time.Minute), Duration: time.Minute}))
	before, err := os.ReadFile(sessionLog.Path())
	require.NoError(t, err)

	output, err := executeCommand(NewRootCmd(Launcher{}), "reset-stats", "--yes")
	require.NoError(t, err)
	assert.Contains(t, output, "Statistics reset.")
	assert.Zero(t, *prompts)

	totals, status, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, storage.StatsOK, status)
	assert.Equal(t, model.Totals{}, totals)

	after, err := os.ReadFile(sessionLog.Path())
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestLaunchersReceiveOpenedApp(t *testing.T) {
	home := useTempHome(t)
	var desktopDir, terminalDir string
	launcher := Launcher{
		Desktop: func(opened *app.App) error {
			desktopDir = opened.DataDir
			return nil
		},
		Terminal: func(opened *app.App) error {
			terminalDir = opened.DataDir
			return nil
		},
	}

	_, err := executeCommand(NewRootCmd(launcher))
	require.NoError(t, err)
	assert.Equal(t, home, desktopDir)

	_, err = executeCommand(NewRootCmd(launcher), "tui")
	require.NoError(t, err)
	assert.Equal(t, home, terminalDir)
}

func TestRootWithoutDesktopShowsHelp(t *testing.T) {
	useTempHome(t)
	output, err := executeCommand(NewRootCmd(Launcher{}))
	require.NoError(t, err)
	assert.Contains(t, output, "reset-stats")
}
