// Package weather runs the slow clear/cloudy state machine that feeds
// event eligibility. Transitions are long smoothstep blends between
// randomized hold windows; the tint and cloud-band rendering built on the
// strength signal live in the presentation layer.
package weather

import (
	"math/rand"

	opensimplex "github.com/ojrac/opensimplex-go"
)

// Weather labels.
const (
	Clear  = "clear"
	Cloudy = "cloudy"
)

// Labels lists every label the system can produce.
var Labels = []string{Clear, Cloudy}

// System manages long-form transitions between clear and cloudy states.
// All timing is absolute session time, so the system can be driven in
// virtual time by the burn-in harness.
type System struct {
	MinTransition float64
	MaxTransition float64
	MinHold       float64
	MaxHold       float64

	rng   *rand.Rand
	noise opensimplex.Noise

	current         string
	target          string
	transitionStart float64
	transitionEnd   float64
	nextChange      float64
}

// New creates a weather system with the default 2–5 minute hold and
// transition windows. The random source is caller-injected for
// deterministic sessions; the noise seed derives from the same source.
func New(rng *rand.Rand) *System {
	s := &System{
		MinTransition: 120,
		MaxTransition: 300,
		MinHold:       120,
		MaxHold:       300,
		rng:           rng,
		noise:         opensimplex.NewNormalized(rng.Int63()),
		current:       Clear,
		target:        Clear,
	}
	s.nextChange = s.holdDuration()
	return s
}

func (s *System) holdDuration() float64 {
	return s.MinHold + s.rng.Float64()*(s.MaxHold-s.MinHold)
}

func smoothstep(t float64) float64 {
	if t < 0 {
		t = 0
	}
	if t > 1 {
		t = 1
	}
	return t * t * (3 - 2*t)
}

// blend returns the raw clear→cloudy blend at the given session time,
// ignoring noise texture.
func (s *System) blend(sessionTime float64) float64 {
	if s.transitionEnd <= s.transitionStart {
		if s.current == Cloudy {
			return 1
		}
		return 0
	}

	t := smoothstep((sessionTime - s.transitionStart) / (s.transitionEnd - s.transitionStart))
	switch {
	case s.current == Clear && s.target == Cloudy:
		return t
	case s.current == Cloudy && s.target == Clear:
		return 1 - t
	case s.current == Cloudy:
		return 1
	default:
		return 0
	}
}

func (s *System) beginTransition(sessionTime float64) {
	s.current = s.Current(sessionTime)
	if s.current == Clear {
		s.target = Cloudy
	} else {
		s.target = Clear
	}
	s.transitionStart = sessionTime
	s.transitionEnd = sessionTime + s.MinTransition + s.rng.Float64()*(s.MaxTransition-s.MinTransition)
}

// Update advances weather state using absolute session time.
func (s *System) Update(sessionTime float64) {
	if s.transitionEnd > s.transitionStart && sessionTime >= s.transitionEnd {
		s.current = s.target
		s.transitionStart = 0
		s.transitionEnd = 0
		s.nextChange = sessionTime + s.holdDuration()
	}

	if s.transitionEnd <= s.transitionStart && sessionTime >= s.nextChange {
		s.beginTransition(sessionTime)
	}
}

// Current returns the dominant weather label at the given session time.
func (s *System) Current(sessionTime float64) string {
	if s.blend(sessionTime) >= 0.5 {
		return Cloudy
	}
	return Clear
}

// CloudStrength returns the 0..1 cloud coverage signal for the rendering
// layer: the transition blend textured with a slow simplex shimmer so
// cloud cover breathes instead of holding perfectly flat.
func (s *System) CloudStrength(sessionTime float64) float64 {
	base := s.blend(sessionTime)
	if base <= 0 {
		return 0
	}
	shimmer := (s.noise.Eval2(sessionTime*0.01, 0) - 0.5) * 0.1
	strength := base + shimmer*base
	if strength < 0 {
		return 0
	}
	if strength > 1 {
		return 1
	}
	return strength
}
