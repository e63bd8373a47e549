package cycle

import (
	"time"

	"ezlockin/internal/core/model"
)

// Phase represents the current cycle mode.
type Phase string

const (
	PhaseIdle       Phase = "idle"
	PhaseFocus      Phase = "focus"
	PhaseShortBreak Phase = "short_break"
	PhaseLongBreak  Phase = "long_break"
	PhasePaused     Phase = "paused"
)

// Running reports whether the phase counts down on each tick.
func (phase Phase) Running() bool {
	return phase == PhaseFocus || phase == PhaseShortBreak || phase == PhaseLongBreak
}

// IsBreak reports whether the phase is a short or long break.
func (phase Phase) IsBreak() bool {
	return phase == PhaseShortBreak || phase == PhaseLongBreak
}

// Label returns a human readable phase name.
func (phase Phase) Label() string {
	switch phase {
	case PhaseIdle:
		return "Idle"
	case PhaseFocus:
		return "Focus"
	case PhaseShortBreak:
		return "Short break"
	case PhaseLongBreak:
		return "Long break"
	case PhasePaused:
		return "Paused"
	default:
		return string(phase)
	}
}

// EventType defines the type of cycle event.
type EventType string

const (
	EventPhaseChange      EventType = "phase_change"
	EventProgress         EventType = "progress"
	EventSessionLogged    EventType = "session_logged"
	EventPersistenceError EventType = "persistence_error"
	EventStatsReset       EventType = "stats_reset"
	EventIdlePause        EventType = "idle_pause"
	EventIdleError        EventType = "idle_error"
	EventCommandRejected  EventType = "command_rejected"
)

// Status is a consistent snapshot of the cycle state.
type Status struct {
	Phase Phase
	// Suspended is the phase a Paused machine will resume into.
	Suspended Phase

	Remaining     time.Duration
	PhaseLength   time.Duration
	FocusDuration time.Duration

	Accumulated time.Duration
	Lifetime    time.Duration

	// UntilLongBreak is max(0, threshold - accumulated). Outside of Focus it
	// refers to the focus time still needed after the current phase.
	UntilLongBreak time.Duration

	Round int
}

// Active returns the phase that is counting down, or would be after resume.
func (status Status) Active() Phase {
	if status.Phase == PhasePaused {
		return status.Suspended
	}
	return status.Phase
}

// Progress returns the fraction of the current phase already elapsed.
func (status Status) Progress() float64 {
	if status.PhaseLength <= 0 {
		return 0
	}
	progress := float64(status.PhaseLength-status.Remaining) / float64(status.PhaseLength)
	if progress < 0 {
		return 0
	}
	if progress > 1 {
		return 1
	}
	return progress
}

// Event represents a cycle update for observers.
type Event struct {
	Type     EventType
	Status   Status
	Previous Phase
	Record   *model.SessionRecord
	Err      error
	Message  string
	At       time.Time
}
