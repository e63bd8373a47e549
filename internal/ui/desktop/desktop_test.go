package desktop

import (
	"errors"
	"testing"

	"fyne.io/fyne/v2/theme"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ezlockin/internal/core/cycle"
	"ezlockin/internal/ui/preferences"
)

func TestIconForPhase(t *testing.T) {
	assert.Equal(t, theme.MediaStopIcon(), iconFor(cycle.Status{Phase: cycle.PhaseIdle}))
	assert.Equal(t, theme.MediaPlayIcon(), iconFor(cycle.Status{Phase: cycle.PhaseFocus}))
	assert.Equal(t, theme.HistoryIcon(), iconFor(cycle.Status{Phase: cycle.PhaseShortBreak}))
	assert.Equal(t, theme.HistoryIcon(), iconFor(cycle.Status{Phase: cycle.PhaseLongBreak}))
	assert.Equal(t, theme.MediaPauseIcon(), iconFor(cycle.Status{Phase: cycle.PhasePaused, Suspended: cycle.PhaseFocus}))
}

func TestWindowConfigFromSettings(t *testing.T) {
	settings := preferences.DefaultSettings()
	settings.WindowOpacity = 1
	settings.AlwaysOnTop = false

	config := windowConfig(settings)

	assert.Equal(t, uint8(255), config.Opacity)
	assert.False(t, config.AlwaysOnTop)
}

func TestRunCommandSwallowsErrors(t *testing.T) {
	calls := 0
	assert.NotPanics(t, func() {
		runCommand("pause", func() error {
			calls++
			return &cycle.CommandError{Command: "pause", Phase: cycle.PhaseIdle, Err: cycle.ErrNotRunning}
		})
		runCommand("start", func() error {
			calls++
			return errors.New("disk full")
		})
	})
	assert.Equal(t, 2, calls)
}

func TestNotificationForEvents(t *testing.T) {
	cases := map[string]struct {
		event cycle.Event
		title string
	}{
		"persistence failure": {
			event: cycle.Event{Type: cycle.EventPersistenceError, Message: "save stats: disk full"},
			title: "Could not save progress",
		},
		"idle error": {
			event: cycle.Event{Type: cycle.EventIdleError, Message: "idle detection unsupported"},
			title: "Idle detection unavailable",
		},
		"idle pause": {
			event: cycle.Event{Type: cycle.EventIdlePause, Message: "idle for 3m0s"},
			title: "Timer paused",
		},
		"long break finished": {
			event: cycle.Event{Type: cycle.EventPhaseChange, Previous: cycle.PhaseLongBreak, Status: cycle.Status{Phase: cycle.PhaseFocus, Round: 5}},
			title: "Break Finished",
		},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			notification, ok := notificationFor(tc.event)
			require.True(t, ok)
			assert.Equal(t, tc.title, notification.Title)
			assert.NotEmpty(t, notification.Content)
		})
	}

	notification, _ := notificationFor(cases["long break finished"].event)
	assert.Equal(t, "Back to focus, round 5.", notification.Content)
	notification, _ = notificationFor(cases["persistence failure"].event)
	assert.Equal(t, "save stats: disk full", notification.Content)
}

func TestNotificationForQuietEvents(t *testing.T) {
	quiet := []cycle.Event{
		{Type: cycle.EventProgress, Status: cycle.Status{Phase: cycle.PhaseFocus}},
		{Type: cycle.EventSessionLogged},
		{Type: cycle.EventCommandRejected, Message: "pause while idle"},
		{Type: cycle.EventPhaseChange, Previous: cycle.PhaseShortBreak, Status: cycle.Status{Phase: cycle.PhaseFocus}},
		{Type: cycle.EventPhaseChange, Previous: cycle.PhaseFocus, Status: cycle.Status{Phase: cycle.PhaseLongBreak}},
		{Type: cycle.EventPhaseChange, Previous: cycle.PhasePaused, Status: cycle.Status{Phase: cycle.PhaseFocus}},
	}
	for _, event := range quiet {
		_, ok := notificationFor(event)
		assert.False(t, ok, "event %s from %s", event.Type, event.Previous)
	}
}

func TestNotifierThrottlesErrorsPerPhase(t *testing.T) {
	notifications := newNotifier()
	failure := cycle.Event{Type: cycle.EventPersistenceError, Message: "append session record: disk full"}
	idleFailure := cycle.Event{Type: cycle.EventIdleError, Message: "xprintidle failed"}

	_, ok := notifications.next(failure)
	assert.True(t, ok)
	_, ok = notifications.next(failure)
	assert.False(t, ok)
	_, ok = notifications.next(idleFailure)
	assert.True(t, ok)
	_, ok = notifications.next(cycle.Event{Type: cycle.EventProgress})
	assert.False(t, ok)
	_, ok = notifications.next(failure)
	assert.False(t, ok)

	_, ok = notifications.next(cycle.Event{Type: cycle.EventPhaseChange, Previous: cycle.PhaseFocus, Status: cycle.Status{Phase: cycle.PhaseShortBreak}})
	assert.False(t, ok)
	_, ok = notifications.next(failure)
	assert.True(t, ok)
}

func TestNotifierAlwaysAnnouncesIdlePause(t *testing.T) {
	notifications := newNotifier()
	pause := cycle.Event{Type: cycle.EventIdlePause, Message: "idle for 2m0s"}

	_, ok := notifications.next(pause)
	assert.True(t, ok)
	_, ok = notifications.next(pause)
	assert.True(t, ok)
}
