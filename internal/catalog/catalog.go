// Package catalog loads the declarative event catalog that drives the
// ambient presentation loop. Definitions are validated individually:
// a malformed entry is skipped and reported, the rest of the catalog
// still loads.
package catalog

// Pool identifies which selection pool a definition belongs to.
type Pool string

const (
	PoolAmbient Pool = "ambient"
	PoolRare    Pool = "rare"
)

// Rare tiers. Tier 1 events carry environmental conditions and are
// preferred when a rare slot opens; tier 2 events are the unconditioned
// fallback so a rare slot is rarely wasted.
const (
	TierConditioned = 1
	TierFallback    = 2
)

// Phase is one timed sub-step of an event. Offset is seconds from the
// event's start; offsets within a definition are strictly increasing and
// the first phase starts at 0.
type Phase struct {
	Type     string
	Offset   float64
	Duration float64
}

// Conditions restricts when a definition is eligible. An empty axis
// means "always allowed" for that axis.
type Conditions struct {
	TimeOfDay []string
	Weather   []string
}

// Empty reports whether no axis carries a restriction.
func (c Conditions) Empty() bool {
	return len(c.TimeOfDay) == 0 && len(c.Weather) == 0
}

// Definition is one immutable event entry.
type Definition struct {
	ID         string
	Pool       Pool
	Tier       int // meaningful only for PoolRare
	Weight     float64
	Cooldown   float64
	MinRuntime float64
	Conditions Conditions
	Phases     []Phase
}

// Duration returns the total lifetime of an instance of this event:
// the final phase's offset plus that phase's duration.
func (d *Definition) Duration() float64 {
	if len(d.Phases) == 0 {
		return 0
	}
	last := d.Phases[len(d.Phases)-1]
	return last.Offset + last.Duration
}

// Params are the global pacing knobs read from the catalog source.
type Params struct {
	RareMinInterval    float64 // seconds between rare firings
	RareRetryInterval  float64 // backoff after a deferred rare slot
	AmbientMinInterval float64 // seconds between ambient firings
}

// DefaultParams returns the pacing values used when the source omits them.
func DefaultParams() Params {
	return Params{
		RareMinInterval:    300,
		RareRetryInterval:  20,
		AmbientMinInterval: 30,
	}
}

// Catalog holds all loaded definitions, partitioned by pool and tier.
// Immutable once loaded; safe to share by reference.
type Catalog struct {
	Ambient   []*Definition
	RareTier1 []*Definition
	RareTier2 []*Definition
	Params    Params

	byID map[string]*Definition
}

// Lookup returns the definition for an id, or nil.
func (c *Catalog) Lookup(id string) *Definition {
	return c.byID[id]
}

// Len returns the total number of loaded definitions.
func (c *Catalog) Len() int {
	return len(c.byID)
}

// Definitions returns all definitions in source order.
func (c *Catalog) Definitions() []*Definition {
	out := make([]*Definition, 0, c.Len())
	out = append(out, c.Ambient...)
	out = append(out, c.RareTier1...)
	out = append(out, c.RareTier2...)
	return out
}

// Rare returns both rare tiers in tier order.
func (c *Catalog) Rare() []*Definition {
	out := make([]*Definition, 0, len(c.RareTier1)+len(c.RareTier2))
	out = append(out, c.RareTier1...)
	out = append(out, c.RareTier2...)
	return out
}

// Empty reports whether no definition survived loading. The scheduler
// treats this as a valid steady state, not an error.
func (c *Catalog) Empty() bool {
	return c.Len() == 0
}
