package platform

import "time"

// IdleProvider returns the duration since last user input.
// Providers return cycle.ErrIdleUnsupported when the desktop offers no way
// to measure it.
type IdleProvider interface {
	IdleDuration() (time.Duration, error)
}

// NewIdleProvider returns a platform-specific idle provider.
func NewIdleProvider() IdleProvider {
	return newIdleProvider()
}
