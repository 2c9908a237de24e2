// Package schedule decides, once per tick, whether to keep the active
// ambient or rare event running, let it finish, or start a new one. It
// enforces per-event cooldowns, minimum session-runtime gates, pool-level
// pacing intervals, and a strict single-active-event invariant, with a
// two-tier priority system for rare events.
package schedule

import (
	"log/slog"
	"math/rand"

	"github.com/norddeich/castaway/internal/catalog"
)

// mark is a timestamp that knows whether it has ever been set. Session
// time starts at zero, so zero alone cannot mean "never".
type mark struct {
	at  float64
	set bool
}

// State is the scheduler's mutable bookkeeping. It is an explicit value
// owned by one Scheduler, never package-level, so independent schedulers
// can run side by side in the burn-in harness.
type State struct {
	lastFired       map[string]float64 // event id -> completion time
	lastRareFired   mark
	lastRareAttempt mark // set when a rare slot opened but found no candidate
	lastAmbient     mark
	active          *Instance
}

// NewState returns empty bookkeeping for a fresh session.
func NewState() *State {
	return &State{lastFired: make(map[string]float64)}
}

// Scheduler is the tick-driven state machine. Single-threaded by design:
// the presentation loop calls Tick exactly once per frame period with a
// monotonically non-decreasing session time.
type Scheduler struct {
	cat   *catalog.Catalog
	rng   *rand.Rand
	state *State
	now   float64
}

// New creates a scheduler over an immutable catalog. The random source is
// caller-injected so tests and the burn-in harness can fix seeds.
func New(cat *catalog.Catalog, rng *rand.Rand) *Scheduler {
	return &Scheduler{cat: cat, rng: rng, state: NewState()}
}

// Tick advances the scheduler by one decision step. Precedence is fixed:
// an active instance is driven first (completion ends the tick); then a
// due rare slot is attempted tier 1 before tier 2; a deferred rare slot
// falls through to ambient selection in the same tick.
func (s *Scheduler) Tick(now float64, env Environment) {
	s.now = now
	st := s.state

	if st.active != nil {
		if st.active.completed(now) {
			s.complete(now)
		} else {
			st.active.advance(now)
		}
		return
	}

	if s.rareSlotOpen(now) {
		if s.startRare(now, env) {
			return
		}
		// Slot stays open but unfilled; back off before re-checking, and
		// let ambient pacing continue below.
		st.lastRareAttempt = mark{at: now, set: true}
	}

	s.startAmbient(now, env)
}

// rareSlotOpen reports whether a rare selection should be attempted at
// this session time. Before the first rare firing the interval is
// measured from session start, so rare events never open the session.
func (s *Scheduler) rareSlotOpen(now float64) bool {
	st := s.state
	lastRare := 0.0
	if st.lastRareFired.set {
		lastRare = st.lastRareFired.at
	}
	if now-lastRare < s.cat.Params.RareMinInterval {
		return false
	}
	if st.lastRareAttempt.set && now-st.lastRareAttempt.at < s.cat.Params.RareRetryInterval {
		return false
	}
	return true
}

// startRare tries tier 1 then tier 2 and activates the first hit.
func (s *Scheduler) startRare(now float64, env Environment) bool {
	for _, tier := range [][]*catalog.Definition{s.cat.RareTier1, s.cat.RareTier2} {
		def := WeightedChoice(s.rng, s.eligibleSet(tier, now, env))
		if def == nil {
			continue
		}
		s.activate(def, now)
		s.state.lastRareFired = mark{at: now, set: true}
		s.state.lastRareAttempt = mark{}
		return true
	}
	return false
}

// startAmbient draws from the ambient pool when pool-level spacing
// allows. Spacing is keyed strictly to the most recent ambient firing; a
// rare firing does not reset it.
func (s *Scheduler) startAmbient(now float64, env Environment) {
	st := s.state
	if st.lastAmbient.set && now-st.lastAmbient.at < s.cat.Params.AmbientMinInterval {
		return
	}
	def := WeightedChoice(s.rng, s.eligibleSet(s.cat.Ambient, now, env))
	if def == nil {
		return
	}
	s.activate(def, now)
	st.lastAmbient = mark{at: now, set: true}
}

// eligibleSet filters a pool through the condition evaluator and the
// cooldown/runtime gate.
func (s *Scheduler) eligibleSet(pool []*catalog.Definition, now float64, env Environment) []*catalog.Definition {
	var out []*catalog.Definition
	for _, def := range pool {
		if def.Weight > 0 && Eligible(def, env) && Ready(def, s.state, now) {
			out = append(out, def)
		}
	}
	return out
}

func (s *Scheduler) activate(def *catalog.Definition, now float64) {
	in := newInstance(def, now)
	s.state.active = in
	slog.Info("event started",
		"event", def.ID,
		"instance", in.id.String(),
		"pool", def.Pool,
		"tier", def.Tier,
		"session_time", now,
	)
}

// complete closes the active instance and stamps cooldown bookkeeping
// with the completion instant, so a cooldown begins only after the event
// fully finishes.
func (s *Scheduler) complete(now float64) {
	st := s.state
	def := st.active.def
	st.lastFired[def.ID] = now
	if def.Pool == catalog.PoolRare {
		st.lastRareFired = mark{at: now, set: true}
	}
	slog.Debug("event complete", "event", def.ID, "session_time", now)
	st.active = nil
}

// CurrentInstance returns the active instance snapshot, if any, for the
// rendering layer.
func (s *Scheduler) CurrentInstance() (Snapshot, bool) {
	if s.state.active == nil {
		return Snapshot{}, false
	}
	return s.state.active.snapshot(s.now), true
}

// Idle reports whether no instance is active.
func (s *Scheduler) Idle() bool {
	return s.state.active == nil
}

// LastFired returns the completion time of the most recent firing of an
// event id.
func (s *Scheduler) LastFired(id string) (float64, bool) {
	at, ok := s.state.lastFired[id]
	return at, ok
}

// RareSlotOpen exposes the rare-slot check for eligibility diagnostics.
func (s *Scheduler) RareSlotOpen(now float64) bool {
	return s.rareSlotOpen(now)
}

// Catalog returns the catalog the scheduler selects from.
func (s *Scheduler) Catalog() *catalog.Catalog {
	return s.cat
}
