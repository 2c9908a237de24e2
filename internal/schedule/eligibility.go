package schedule

import (
	"slices"

	"github.com/norddeich/castaway/internal/catalog"
)

// Environment carries the labels supplied fresh each tick by the
// day-cycle and weather collaborators.
type Environment struct {
	TimeOfDay string
	Weather   string
}

// Eligible reports whether the definition's conditions match the current
// environment. An axis with no declared restriction is always satisfied;
// unknown labels simply fail to match, they are never an error.
func Eligible(def *catalog.Definition, env Environment) bool {
	if len(def.Conditions.TimeOfDay) > 0 && !slices.Contains(def.Conditions.TimeOfDay, env.TimeOfDay) {
		return false
	}
	if len(def.Conditions.Weather) > 0 && !slices.Contains(def.Conditions.Weather, env.Weather) {
		return false
	}
	return true
}

// Ready reports whether cooldown and minimum-runtime gates allow the
// definition to fire at the given session time. Cooldowns are measured
// from the previous instance's completion, stamped in state.
func Ready(def *catalog.Definition, st *State, now float64) bool {
	if now < def.MinRuntime {
		return false
	}
	if fired, ok := st.lastFired[def.ID]; ok && now-fired < def.Cooldown {
		return false
	}
	return true
}
