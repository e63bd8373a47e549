package display

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"ezlockin/internal/core/cycle"
)

func TestCountdownAndClock(t *testing.T) {
	assert.Equal(t, "3m 5s", Countdown(185*time.Second))
	assert.Equal(t, "0m 0s", Countdown(-time.Second))
	assert.Equal(t, "03:05", Clock(185*time.Second))
	assert.Equal(t, "20:00", Clock(20*time.Minute))
}

func TestTotalFocus(t *testing.T) {
	assert.Equal(t, "Total focus: 0h 0m", TotalFocus(0))
	assert.Equal(t, "Total focus: 2h 5m", TotalFocus(2*time.Hour+5*time.Minute+59*time.Second))
	assert.Equal(t, "Total focus: 26h 0m", TotalFocus(26*time.Hour))
}

func TestStatusLine(t *testing.T) {
	assert.Equal(t, "Idle", StatusLine(cycle.Status{Phase: cycle.PhaseIdle}))
	assert.Equal(t, "Focus: 2m 5s", StatusLine(cycle.Status{Phase: cycle.PhaseFocus, Remaining: 125 * time.Second}))
	assert.Equal(t, "Short break: 0m 9s", StatusLine(cycle.Status{Phase: cycle.PhaseShortBreak, Remaining: 9 * time.Second}))
	assert.Equal(t, "Paused (Long break): 19m 0s", StatusLine(cycle.Status{
		Phase:     cycle.PhasePaused,
		Suspended: cycle.PhaseLongBreak,
		Remaining: 19 * time.Minute,
	}))
}

func TestLongBreakEstimate(t *testing.T) {
	assert.Equal(t, "Long break in ~75m", LongBreakEstimate(cycle.Status{UntilLongBreak: 75*time.Minute + 30*time.Second}))
	assert.Equal(t, "Long break in ~0m", LongBreakEstimate(cycle.Status{UntilLongBreak: 30 * time.Second}))
	assert.Equal(t, "Long break available", LongBreakEstimate(cycle.Status{}))
}

func TestHeadline(t *testing.T) {
	assert.Equal(t, "Studying... (Round 3)", Headline(cycle.Status{Phase: cycle.PhaseFocus, Round: 3}))
	assert.Equal(t, "Ready to focus", Headline(cycle.Status{Phase: cycle.PhaseIdle}))
	assert.Equal(t, "Paused", Headline(cycle.Status{Phase: cycle.PhasePaused}))
}
