//go:build !linux && !darwin && !windows

package platform

import (
	"time"

	"ezlockin/internal/core/cycle"
)

type idleProvider struct{}

func newIdleProvider() IdleProvider {
	return idleProvider{}
}

func (idleProvider) IdleDuration() (time.Duration, error) {
	return 0, cycle.ErrIdleUnsupported
}
