// Package clock contains the default [domain.Clock] implementation.
package clock

import (
	"time"

	"github.com/firelite-db/firelite/domain"
)

// Clock implements domain.Clock using the system time.
type Clock struct{}

// NewClock returns a new implementation of domain.Clock.
func NewClock() domain.Clock {
	return &Clock{}
}

// Now implements domain.Clock.
func (c *Clock) Now() time.Time {
	return time.Now()
}

// Fixed implements domain.Clock with a constant instant, for deterministic
// commit timestamps in tests.
type Fixed struct {
	Instant time.Time
}

// NewFixed returns a clock frozen at the given instant.
func NewFixed(instant time.Time) *Fixed {
	return &Fixed{Instant: instant}
}

// Now implements domain.Clock.
func (f *Fixed) Now() time.Time {
	return f.Instant
}
