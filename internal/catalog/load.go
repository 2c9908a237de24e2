package catalog

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
)

// Diagnostic describes one skipped catalog entry. The load itself still
// succeeds; the surrounding system logs these without interrupting the
// presentation loop.
type Diagnostic struct {
	Index  int    // position in the source events list
	ID     string // entry id if one was present
	Reason string
}

func (d Diagnostic) String() string {
	if d.ID != "" {
		return fmt.Sprintf("event[%d] %q: %s", d.Index, d.ID, d.Reason)
	}
	return fmt.Sprintf("event[%d]: %s", d.Index, d.Reason)
}

type rawPhase struct {
	Type     string   `json:"type"`
	Duration *float64 `json:"duration"`
}

type rawEvent struct {
	ID         string              `json:"id"`
	Type       string              `json:"type"`
	RareTier   *int                `json:"rare_tier"`
	Weight     *float64            `json:"weight"`
	Cooldown   *float64            `json:"cooldown"`
	MinRuntime *float64            `json:"min_runtime"`
	Duration   *float64            `json:"duration"`
	Phases     []rawPhase          `json:"phases"`
	Conditions map[string][]string `json:"conditions"`
}

type rawFile struct {
	RareMinInterval    *float64   `json:"rare_min_interval"`
	RareRetryInterval  *float64   `json:"rare_retry_interval"`
	AmbientMinInterval *float64   `json:"ambient_min_interval"`
	Events             []rawEvent `json:"events"`
}

// Load reads and parses the catalog file at path.
func Load(path string) (*Catalog, []Diagnostic, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("read catalog: %w", err)
	}
	return Parse(data)
}

// Parse builds a catalog from JSON source. Individual invalid entries are
// skipped with a diagnostic; only unparsable source is an error.
func Parse(data []byte) (*Catalog, []Diagnostic, error) {
	var raw rawFile
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, nil, fmt.Errorf("parse catalog: %w", err)
	}

	params := DefaultParams()
	if raw.RareMinInterval != nil && *raw.RareMinInterval >= 0 {
		params.RareMinInterval = *raw.RareMinInterval
	}
	if raw.RareRetryInterval != nil && *raw.RareRetryInterval >= 0 {
		params.RareRetryInterval = *raw.RareRetryInterval
	}
	if raw.AmbientMinInterval != nil && *raw.AmbientMinInterval >= 0 {
		params.AmbientMinInterval = *raw.AmbientMinInterval
	}

	cat := &Catalog{
		Params: params,
		byID:   make(map[string]*Definition, len(raw.Events)),
	}

	var diags []Diagnostic
	skip := func(index int, id, reason string) {
		slog.Warn("skipping catalog entry", "index", index, "id", id, "reason", reason)
		diags = append(diags, Diagnostic{Index: index, ID: id, Reason: reason})
	}

	for i, entry := range raw.Events {
		def, reason := parseEntry(entry)
		if def == nil {
			skip(i, entry.ID, reason)
			continue
		}
		if _, dup := cat.byID[def.ID]; dup {
			skip(i, def.ID, "duplicate id")
			continue
		}

		cat.byID[def.ID] = def
		switch {
		case def.Pool == PoolAmbient:
			cat.Ambient = append(cat.Ambient, def)
		case def.Tier == TierConditioned:
			cat.RareTier1 = append(cat.RareTier1, def)
		default:
			cat.RareTier2 = append(cat.RareTier2, def)
		}
	}

	if cat.Empty() {
		slog.Warn("catalog loaded with zero usable events")
	}
	return cat, diags, nil
}

// parseEntry validates one raw entry. Returns nil and a reason on any
// per-entry failure.
func parseEntry(entry rawEvent) (*Definition, string) {
	if entry.ID == "" {
		return nil, "missing id"
	}

	pool := Pool(entry.Type)
	if pool == "" {
		pool = PoolAmbient
	}
	if pool != PoolAmbient && pool != PoolRare {
		return nil, fmt.Sprintf("unknown pool %q", entry.Type)
	}

	if entry.Weight == nil || *entry.Weight <= 0 {
		return nil, "weight must be > 0"
	}
	cooldown := 0.0
	if entry.Cooldown != nil {
		cooldown = *entry.Cooldown
	}
	if cooldown < 0 {
		return nil, "cooldown must be >= 0"
	}
	minRuntime := 0.0
	if entry.MinRuntime != nil {
		minRuntime = *entry.MinRuntime
	}
	if minRuntime < 0 {
		return nil, "min_runtime must be >= 0"
	}

	phases, reason := parsePhases(entry)
	if phases == nil {
		return nil, reason
	}

	conds := Conditions{
		TimeOfDay: entry.Conditions["time_of_day"],
		Weather:   entry.Conditions["weather"],
	}

	tier := 0
	if pool == PoolRare {
		if entry.RareTier != nil && (*entry.RareTier == TierConditioned || *entry.RareTier == TierFallback) {
			tier = *entry.RareTier
		} else if !conds.Empty() {
			tier = TierConditioned
		} else {
			tier = TierFallback
		}
	}

	return &Definition{
		ID:         entry.ID,
		Pool:       pool,
		Tier:       tier,
		Weight:     *entry.Weight,
		Cooldown:   cooldown,
		MinRuntime: minRuntime,
		Conditions: conds,
		Phases:     phases,
	}, ""
}

// parsePhases converts per-phase durations into derived offsets. A bare
// "duration" field becomes a single phase at offset 0. Non-positive phase
// durations are rejected since they would collapse the offset ordering.
func parsePhases(entry rawEvent) ([]Phase, string) {
	if len(entry.Phases) == 0 {
		if entry.Duration == nil {
			return nil, "missing phases and duration"
		}
		if *entry.Duration <= 0 {
			return nil, "duration must be > 0"
		}
		return []Phase{{Type: "main", Offset: 0, Duration: *entry.Duration}}, ""
	}

	phases := make([]Phase, 0, len(entry.Phases))
	cursor := 0.0
	for i, p := range entry.Phases {
		if p.Type == "" {
			return nil, fmt.Sprintf("phase[%d] missing type", i)
		}
		if p.Duration == nil || *p.Duration <= 0 {
			return nil, fmt.Sprintf("phase[%d] duration must be > 0", i)
		}
		phases = append(phases, Phase{Type: p.Type, Offset: cursor, Duration: *p.Duration})
		cursor += *p.Duration
	}
	return phases, ""
}
