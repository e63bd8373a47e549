// Package display formats cycle status for the front-ends.
package display

import (
	"fmt"
	"time"

	"ezlockin/internal/core/cycle"
)

// Countdown renders a remaining duration as "Xm Ys".
func Countdown(remaining time.Duration) string {
	if remaining < 0 {
		remaining = 0
	}
	seconds := int64(remaining / time.Second)
	return fmt.Sprintf("%dm %ds", seconds/60, seconds%60)
}

// Clock renders a remaining duration as "MM:SS".
func Clock(remaining time.Duration) string {
	if remaining < 0 {
		remaining = 0
	}
	seconds := int64(remaining / time.Second)
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}

// TotalFocus renders lifetime focus time as "Total focus: Hh Mm".
func TotalFocus(lifetime time.Duration) string {
	seconds := int64(lifetime / time.Second)
	return fmt.Sprintf("Total focus: %dh %dm", seconds/3600, (seconds/60)%60)
}

// StatusLine renders the tray status line, e.g. "Focus: 2m 5s".
func StatusLine(status cycle.Status) string {
	switch status.Phase {
	case cycle.PhaseIdle:
		return "Idle"
	case cycle.PhasePaused:
		return fmt.Sprintf("Paused (%s): %s", status.Suspended.Label(), Countdown(status.Remaining))
	default:
		return fmt.Sprintf("%s: %s", status.Phase.Label(), Countdown(status.Remaining))
	}
}

// LongBreakEstimate renders the focus time still needed for a long break.
func LongBreakEstimate(status cycle.Status) string {
	if status.UntilLongBreak <= 0 {
		return "Long break available"
	}
	minutes := int64(status.UntilLongBreak / time.Minute)
	return fmt.Sprintf("Long break in ~%dm", minutes)
}

// Headline renders the main status window text.
func Headline(status cycle.Status) string {
	switch status.Phase {
	case cycle.PhaseFocus:
		return fmt.Sprintf("Studying... (Round %d)", status.Round)
	case cycle.PhaseShortBreak:
		return "Short break..."
	case cycle.PhaseLongBreak:
		return "Long break..."
	case cycle.PhasePaused:
		return "Paused"
	default:
		return "Ready to focus"
	}
}
