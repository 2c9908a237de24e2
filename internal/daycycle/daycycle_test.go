package daycycle_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/norddeich/castaway/internal/daycycle"
)

func TestTimeOfDayThresholds(t *testing.T) {
	c := daycycle.Cycle{DayLength: 100}

	cases := []struct {
		at   float64
		want string
	}{
		{0, daycycle.Dawn},
		{19.9, daycycle.Dawn},
		{20, daycycle.Day},
		{54.9, daycycle.Day},
		{55, daycycle.Sunset},
		{74.9, daycycle.Sunset},
		{75, daycycle.Night},
		{99.9, daycycle.Night},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, c.TimeOfDay(tc.at), "at t=%.1f", tc.at)
	}
}

func TestCycleWraps(t *testing.T) {
	c := daycycle.Cycle{DayLength: 100}

	assert.Equal(t, daycycle.Dawn, c.TimeOfDay(100))
	assert.Equal(t, daycycle.Day, c.TimeOfDay(230))
	assert.Equal(t, daycycle.Night, c.TimeOfDay(1080))
}

func TestDefaultCycle(t *testing.T) {
	c := daycycle.New()
	assert.Equal(t, 1800.0, c.DayLength)
	assert.Equal(t, daycycle.Dawn, c.TimeOfDay(0))
	assert.Equal(t, daycycle.Night, c.TimeOfDay(1799))
}

func TestDegenerateDayLength(t *testing.T) {
	c := daycycle.Cycle{DayLength: 0}
	assert.Equal(t, daycycle.Dawn, c.TimeOfDay(12345))
}

func TestEveryLabelIsReachable(t *testing.T) {
	c := daycycle.New()
	seen := map[string]bool{}
	for tm := 0.0; tm < c.DayLength; tm += 1 {
		seen[c.TimeOfDay(tm)] = true
	}
	for _, label := range daycycle.Labels {
		assert.True(t, seen[label], "label %q never produced", label)
	}
}
