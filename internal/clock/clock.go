// Package clock tracks session-elapsed time for the presentation loop.
// The scheduler reasons in session seconds, never wall-clock time, so a
// session can be driven in virtual time at any tick rate.
package clock

// Session accumulates elapsed seconds in fixed per-tick increments.
type Session struct {
	delta   float64
	elapsed float64
}

// NewSession creates a session clock that advances by 1/ticksPerSecond
// seconds per tick. A non-positive rate falls back to 20 ticks/second,
// the presentation loop's default cadence.
func NewSession(ticksPerSecond int) *Session {
	if ticksPerSecond <= 0 {
		ticksPerSecond = 20
	}
	return &Session{delta: 1.0 / float64(ticksPerSecond)}
}

// Tick advances the session by one fixed delta and returns the delta.
func (s *Session) Tick() float64 {
	s.elapsed += s.delta
	return s.delta
}

// Now returns seconds elapsed since session start.
func (s *Session) Now() float64 {
	return s.elapsed
}

// Delta returns the fixed per-tick increment in seconds.
func (s *Session) Delta() float64 {
	return s.delta
}
