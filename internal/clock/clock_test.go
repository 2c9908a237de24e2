package clock_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/norddeich/castaway/internal/clock"
)

func TestSessionAccumulatesFixedDelta(t *testing.T) {
	s := clock.NewSession(20)

	assert.Equal(t, 0.0, s.Now())
	assert.Equal(t, 0.05, s.Delta())

	for i := 0; i < 20; i++ {
		assert.Equal(t, 0.05, s.Tick())
	}
	assert.InDelta(t, 1.0, s.Now(), 1e-9)

	for i := 0; i < 20*59; i++ {
		s.Tick()
	}
	assert.InDelta(t, 60.0, s.Now(), 1e-6)
}

func TestSessionFallbackRate(t *testing.T) {
	for _, rate := range []int{0, -5} {
		s := clock.NewSession(rate)
		assert.Equal(t, 0.05, s.Delta(), "non-positive rates fall back to 20 ticks/second")
	}
}

func TestSessionTimeIsMonotonic(t *testing.T) {
	s := clock.NewSession(60)
	prev := s.Now()
	for i := 0; i < 1000; i++ {
		s.Tick()
		assert.Greater(t, s.Now(), prev)
		prev = s.Now()
	}
}
