// Package duration picks randomized focus-phase lengths.
package duration

import (
	"math/rand"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// Pick returns a whole-second duration drawn uniformly from [min, max].
// Sub-second parts of the bounds are truncated. When min > max the bounds
// are misconfigured and min is returned; corrected reports that case.
func Pick(rng *rand.Rand, min, max time.Duration) (value time.Duration, corrected bool) {
	minSeconds := int64(min / time.Second)
	maxSeconds := int64(max / time.Second)
	if minSeconds > maxSeconds {
		return time.Duration(minSeconds) * time.Second, true
	}
	if minSeconds == maxSeconds {
		return time.Duration(minSeconds) * time.Second, false
	}
	span := maxSeconds - minSeconds + 1
	return time.Duration(minSeconds+rng.Int63n(span)) * time.Second, false
}

// Generator is a seedable source of focus durations safe for concurrent use.
type Generator struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// New returns a Generator seeded with seed.
func New(seed int64) *Generator {
	return &Generator{rng: rand.New(rand.NewSource(seed))}
}

// NewRandom returns a Generator seeded from the current time.
func NewRandom() *Generator {
	return New(time.Now().UnixNano())
}

// NextFocusDuration returns the length of the next focus phase.
func (generator *Generator) NextFocusDuration(min, max time.Duration) time.Duration {
	generator.mu.Lock()
	value, corrected := Pick(generator.rng, min, max)
	generator.mu.Unlock()

	if corrected {
		log.Warn().
			Dur("study_time_min", min).
			Dur("study_time_max", max).
			Msg("focus range min exceeds max, using min")
	}
	return value
}
