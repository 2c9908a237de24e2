package schedule

import (
	"math/rand"

	"github.com/norddeich/castaway/internal/catalog"
)

// WeightedChoice draws one definition proportionally to weight: a single
// uniform sample over the cumulative weight range, mapped back to the
// smallest index whose cumulative sum exceeds it. Definitions with
// non-positive weight are treated as ineligible rather than
// zero-probability entries. Returns nil for an empty set.
func WeightedChoice(rng *rand.Rand, defs []*catalog.Definition) *catalog.Definition {
	total := 0.0
	for _, def := range defs {
		if def.Weight > 0 {
			total += def.Weight
		}
	}
	if total <= 0 {
		return nil
	}

	sample := rng.Float64() * total
	cum := 0.0
	for _, def := range defs {
		if def.Weight <= 0 {
			continue
		}
		cum += def.Weight
		if sample < cum {
			return def
		}
	}
	// Floating-point accumulation can land the sample a hair past the
	// final cumulative sum.
	for i := len(defs) - 1; i >= 0; i-- {
		if defs[i].Weight > 0 {
			return defs[i]
		}
	}
	return nil
}
