package cycle

import (
	"errors"
	"fmt"
)

var (
	// ErrIdleUnsupported indicates idle detection is not available on this system.
	ErrIdleUnsupported = errors.New("idle detection unsupported")

	ErrNotRunning           = errors.New("no phase is running")
	ErrNotPaused            = errors.New("timer is not paused")
	ErrConfirmationRequired = errors.New("confirmation required")
	ErrStopped              = errors.New("timer has quit")
)

// CommandError reports a command that is invalid for the current phase.
// The machine treats it as a no-op.
type CommandError struct {
	Command string
	Phase   Phase
	Err     error
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("%s while %s: %v", e.Command, e.Phase, e.Err)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}
