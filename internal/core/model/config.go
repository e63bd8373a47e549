package model

import "time"

// FocusRange bounds the randomized length of a focus phase.
type FocusRange struct {
	Min time.Duration
	Max time.Duration
}

// CycleConfig contains runtime settings for the focus/break cycle.
// It is read once at startup and never changed while the process runs.
type CycleConfig struct {
	Focus FocusRange

	ShortBreak time.Duration
	LongBreak  time.Duration

	// LongBreakThreshold is the accumulated focus time that promotes the
	// next break to a long one.
	LongBreakThreshold time.Duration

	// IdlePauseAfter pauses a running focus phase once the user has been
	// idle this long. Zero disables the check.
	IdlePauseAfter    time.Duration
	IdleCheckInterval time.Duration
}

// Totals holds the persisted focus counters.
type Totals struct {
	Accumulated time.Duration
	Lifetime    time.Duration
}

// SessionRecord describes one fully completed focus phase.
//
// Duration is the net focus time of the phase. Paused time is not counted,
// so for a phase that was paused Duration is shorter than End minus Start.
type SessionRecord struct {
	Start    time.Time
	End      time.Time
	Duration time.Duration
}

// Cue names a sound played on a phase change.
type Cue string

const (
	CueStartFocus      Cue = "start_study"
	CueStartShortBreak Cue = "start_short_break"
	CueStartLongBreak  Cue = "start_long_break"
	CueEndLongBreak    Cue = "end_long_break"
)

// Cues lists every cue in a stable order.
func Cues() []Cue {
	return []Cue{CueStartFocus, CueStartShortBreak, CueStartLongBreak, CueEndLongBreak}
}
