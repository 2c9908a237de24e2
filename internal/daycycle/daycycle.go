// Package daycycle derives the coarse time-of-day label from session
// time. The label feeds event eligibility; lighting is the rendering
// layer's concern.
package daycycle

import "math"

// Time-of-day labels, in cycle order.
const (
	Dawn   = "dawn"
	Day    = "day"
	Sunset = "sunset"
	Night  = "night"
)

// Labels lists every label the cycle can produce.
var Labels = []string{Dawn, Day, Sunset, Night}

// Cycle maps absolute session time onto a repeating day.
type Cycle struct {
	DayLength float64 // full cycle length in seconds
}

// New returns a cycle with the default 30-minute day.
func New() Cycle {
	return Cycle{DayLength: 30 * 60}
}

func (c Cycle) progress(sessionTime float64) float64 {
	if c.DayLength <= 0 {
		return 0
	}
	return math.Mod(sessionTime, c.DayLength) / c.DayLength
}

// TimeOfDay returns the label for the given session time. Dawn covers the
// first fifth of the cycle, day through 0.55, sunset through 0.75, night
// the rest.
func (c Cycle) TimeOfDay(sessionTime float64) string {
	p := c.progress(sessionTime)
	switch {
	case p < 0.20:
		return Dawn
	case p < 0.55:
		return Day
	case p < 0.75:
		return Sunset
	default:
		return Night
	}
}
