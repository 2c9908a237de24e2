package schedule

import (
	"github.com/google/uuid"

	"github.com/norddeich/castaway/internal/catalog"
)

// Instance is the one active event, if any. Owned exclusively by the
// scheduler; created on selection, destroyed when the last phase's
// duration elapses.
type Instance struct {
	def        *catalog.Definition
	id         uuid.UUID
	startedAt  float64
	phaseIndex int
}

func newInstance(def *catalog.Definition, now float64) *Instance {
	return &Instance{def: def, id: uuid.New(), startedAt: now}
}

func (in *Instance) elapsed(now float64) float64 {
	return now - in.startedAt
}

// advance moves the phase index to the last phase whose offset has been
// reached. Phases are strictly monotonic, so this is a forward-only scan
// from the current index; it never rewinds.
func (in *Instance) advance(now float64) {
	elapsed := in.elapsed(now)
	for in.phaseIndex+1 < len(in.def.Phases) && in.def.Phases[in.phaseIndex+1].Offset <= elapsed {
		in.phaseIndex++
	}
}

// completed reports whether elapsed time has reached the final phase's
// offset plus that phase's duration.
func (in *Instance) completed(now float64) bool {
	return in.elapsed(now) >= in.def.Duration()
}

// Snapshot is the read-only view exposed to the rendering layer.
type Snapshot struct {
	EventID    string
	InstanceID string
	Pool       catalog.Pool
	PhaseIndex int
	PhaseType  string
	Elapsed    float64
}

func (in *Instance) snapshot(now float64) Snapshot {
	return Snapshot{
		EventID:    in.def.ID,
		InstanceID: in.id.String(),
		Pool:       in.def.Pool,
		PhaseIndex: in.phaseIndex,
		PhaseType:  in.def.Phases[in.phaseIndex].Type,
		Elapsed:    in.elapsed(now),
	}
}
