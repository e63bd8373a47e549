package watcher

import (
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startWatcher(t *testing.T, target string, calls *atomic.Int32) *Watcher {
	t.Helper()
	w, err := New(target, func() { calls.Add(1) }, WithDebounce(50*time.Millisecond))
	require.NoError(t, err)
	require.NoError(t, w.Start())
	t.Cleanup(func() { _ = w.Stop() })
	return w
}

func TestWatcherReportsEditsOnce(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(target, []byte("study_time_min: 180\n"), 0o644))

	var calls atomic.Int32
	startWatcher(t, target, &calls)

	for i := 0; i < 3; i++ {
		require.NoError(t, os.WriteFile(target, []byte("study_time_min: 200\n"), 0o644))
	}

	require.Eventually(t, func() bool { return calls.Load() >= 1 }, 3*time.Second, 10*time.Millisecond)
	time.Sleep(200 * time.Millisecond)
	assert.Equal(t, int32(1), calls.Load())
}

func TestWatcherIgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(target, nil, 0o644))

	var calls atomic.Int32
	startWatcher(t, target, &calls)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "stats.json"), []byte("{}"), 0o644))
	time.Sleep(150 * time.Millisecond)
	assert.Zero(t, calls.Load())
}

func TestWatcherStopIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	w, err := New(filepath.Join(dir, "config.yaml"), nil)
	require.NoError(t, err)
	require.NoError(t, w.Start())
	require.NoError(t, w.Stop())
	require.NoError(t, w.Stop())
}

func TestWatcherStartFailsForMissingDirectory(t *testing.T) {
	w, err := New(filepath.Join(t.TempDir(), "missing", "config.yaml"), nil)
	require.NoError(t, err)
	assert.Error(t, w.Start())

	assert.ErrorIs(t, w.watcher.Add(t.TempDir()), fsnotify.ErrClosed)
	assert.ErrorIs(t, w.Start(), ErrClosed)
	assert.NoError(t, w.Stop())
}
