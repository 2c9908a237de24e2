// Package sim runs headless, deterministic burn-in sessions of the event
// system at the presentation loop's fixed cadence. No window is opened
// and no wall clock is consulted; session time is purely virtual.
package sim

import (
	"math"
	"math/rand"
	"runtime"

	"github.com/norddeich/castaway/internal/catalog"
	"github.com/norddeich/castaway/internal/clock"
	"github.com/norddeich/castaway/internal/daycycle"
	"github.com/norddeich/castaway/internal/schedule"
	"github.com/norddeich/castaway/internal/weather"
)

// Rejection reasons tracked by the rare eligibility summary.
const (
	ReasonEligible          = "eligible"
	ReasonWeatherMismatch   = "weather mismatch"
	ReasonTimeOfDayMismatch = "time_of_day mismatch"
	ReasonCooldown          = "cooldown"
	ReasonMinRuntime        = "min_runtime"
	ReasonNoConditions      = "no conditions"
)

// Config controls one burn-in session.
type Config struct {
	Hours            float64
	Seed             int64
	TicksPerSecond   int // defaults to 20
	ProfileClimate   bool
	DebugEligibility bool
}

// Stats aggregates counters and metrics captured during a session.
type Stats struct {
	Hours       float64
	Seed        int64
	TotalFrames int
	TotalEvents int

	EventCounts     map[string]int
	AverageInterval float64 // NaN when fewer than two triggers
	IntervalByEvent map[string]float64
	RareEventTotal  int

	MaxSimultaneous           int
	CooldownViolations        int
	MinRuntimeViolations      int
	RareIntervalViolations    int
	AmbientIntervalViolations int

	TimingDriftSeconds float64
	HeapBaselineBytes  uint64
	HeapEndBytes       uint64

	RareRatioWarning string

	WeatherFrames   map[string]int
	TimeOfDayFrames map[string]int
	RareEligibility map[string]map[string]int
}

// Run executes a burn-in session against the given catalog and returns
// the captured metrics. Identical configs yield identical stats: all
// randomness flows from the seeded source.
func Run(cat *catalog.Catalog, cfg Config) Stats {
	fps := cfg.TicksPerSecond
	if fps <= 0 {
		fps = 20
	}
	totalFrames := int(cfg.Hours * 3600 * float64(fps))

	rng := rand.New(rand.NewSource(cfg.Seed))
	session := clock.NewSession(fps)
	cycle := daycycle.New()
	wx := weather.New(rng)
	sched := schedule.New(cat, rng)

	stats := Stats{
		Hours:           cfg.Hours,
		Seed:            cfg.Seed,
		TotalFrames:     totalFrames,
		EventCounts:     make(map[string]int),
		IntervalByEvent: make(map[string]float64),
		WeatherFrames:   make(map[string]int),
		TimeOfDayFrames: make(map[string]int),
		RareEligibility: make(map[string]map[string]int),
	}
	if cfg.DebugEligibility {
		for _, def := range cat.Rare() {
			stats.RareEligibility[def.ID] = map[string]int{
				ReasonEligible:          0,
				ReasonWeatherMismatch:   0,
				ReasonTimeOfDayMismatch: 0,
				ReasonCooldown:          0,
				ReasonMinRuntime:        0,
				ReasonNoConditions:      0,
			}
		}
	}

	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)
	stats.HeapBaselineBytes = mem.HeapAlloc

	lastTriggerByEvent := make(map[string]float64)
	intervalsByEvent := make(map[string][]float64)
	var allIntervals []float64
	var prevTrigger, prevRare, prevAmbient float64
	var prevTriggerSet, prevRareSet, prevAmbientSet bool

	for frame := 0; frame < totalFrames; frame++ {
		now := session.Now()

		wx.Update(now)
		env := schedule.Environment{
			TimeOfDay: cycle.TimeOfDay(now),
			Weather:   wx.Current(now),
		}

		if cfg.ProfileClimate {
			stats.WeatherFrames[env.Weather]++
			stats.TimeOfDayFrames[env.TimeOfDay]++
		}

		if cfg.DebugEligibility && sched.Idle() && sched.RareSlotOpen(now) {
			recordEligibility(&stats, sched, cat, now, env)
		}

		_, activeBefore := sched.CurrentInstance()
		sched.Tick(now, env)
		snap, activeAfter := sched.CurrentInstance()

		active := 0
		if activeAfter {
			active = 1
		}
		if active > stats.MaxSimultaneous {
			stats.MaxSimultaneous = active
		}

		if !activeBefore && activeAfter {
			def := cat.Lookup(snap.EventID)
			stats.EventCounts[def.ID]++
			stats.TotalEvents++

			if now < def.MinRuntime {
				stats.MinRuntimeViolations++
			}

			if prev, ok := lastTriggerByEvent[def.ID]; ok {
				interval := now - prev
				intervalsByEvent[def.ID] = append(intervalsByEvent[def.ID], interval)
				if interval+1e-9 < def.Cooldown {
					stats.CooldownViolations++
				}
			}
			lastTriggerByEvent[def.ID] = now

			if def.Pool == catalog.PoolRare {
				if prevRareSet && now-prevRare+1e-9 < cat.Params.RareMinInterval {
					stats.RareIntervalViolations++
				}
				prevRare, prevRareSet = now, true
				stats.RareEventTotal++
			} else {
				if prevAmbientSet && now-prevAmbient+1e-9 < cat.Params.AmbientMinInterval {
					stats.AmbientIntervalViolations++
				}
				prevAmbient, prevAmbientSet = now, true
			}

			if prevTriggerSet {
				allIntervals = append(allIntervals, now-prevTrigger)
			}
			prevTrigger, prevTriggerSet = now, true
		}

		session.Tick()
	}

	stats.TimingDriftSeconds = session.Now() - float64(totalFrames)/float64(fps)

	stats.AverageInterval = math.NaN()
	if len(allIntervals) > 0 {
		stats.AverageInterval = mean(allIntervals)
	}
	for id, intervals := range intervalsByEvent {
		stats.IntervalByEvent[id] = mean(intervals)
	}

	stats.RareRatioWarning = rareRatioWarning(cat, stats)

	runtime.ReadMemStats(&mem)
	stats.HeapEndBytes = mem.HeapAlloc

	return stats
}

func mean(values []float64) float64 {
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// recordEligibility logs why each rare definition is or is not eligible
// while a rare slot is open.
func recordEligibility(stats *Stats, sched *schedule.Scheduler, cat *catalog.Catalog, now float64, env schedule.Environment) {
	for _, def := range cat.Rare() {
		summary := stats.RareEligibility[def.ID]
		if summary == nil {
			continue
		}

		if schedule.Eligible(def, env) && gateOpen(sched, def, now) {
			summary[ReasonEligible]++
			continue
		}

		if now < def.MinRuntime {
			summary[ReasonMinRuntime]++
		}
		if fired, ok := sched.LastFired(def.ID); ok && now-fired < def.Cooldown {
			summary[ReasonCooldown]++
		}
		if len(def.Conditions.Weather) > 0 && !contains(def.Conditions.Weather, env.Weather) {
			summary[ReasonWeatherMismatch]++
		}
		if len(def.Conditions.TimeOfDay) > 0 && !contains(def.Conditions.TimeOfDay, env.TimeOfDay) {
			summary[ReasonTimeOfDayMismatch]++
		}
		if def.Conditions.Empty() {
			summary[ReasonNoConditions]++
		}
	}
}

func gateOpen(sched *schedule.Scheduler, def *catalog.Definition, now float64) bool {
	if now < def.MinRuntime {
		return false
	}
	if fired, ok := sched.LastFired(def.ID); ok && now-fired < def.Cooldown {
		return false
	}
	return true
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}

// rareRatioWarning flags observed rare frequency drifting more than 3x
// from the static weight ratio.
func rareRatioWarning(cat *catalog.Catalog, stats Stats) string {
	if stats.TotalEvents == 0 {
		return ""
	}
	totalWeight, rareWeight := 0.0, 0.0
	for _, def := range cat.Definitions() {
		totalWeight += def.Weight
		if def.Pool == catalog.PoolRare {
			rareWeight += def.Weight
		}
	}
	if totalWeight <= 0 || rareWeight <= 0 {
		return ""
	}
	expected := rareWeight / totalWeight
	observed := float64(stats.RareEventTotal) / float64(stats.TotalEvents)
	if observed > expected*3 || observed < expected/3 {
		return fmtRatioWarning(observed, expected)
	}
	return ""
}
