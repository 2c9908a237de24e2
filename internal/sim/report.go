package sim

import (
	"fmt"
	"io"
	"math"
	"sort"
)

func fmtRatioWarning(observed, expected float64) string {
	return fmt.Sprintf(
		"rare-event frequency deviates from static weight ratio: observed=%.4f, expected~=%.4f",
		observed, expected)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func percentage(count, total int) string {
	if total <= 0 {
		return "0.00%"
	}
	return fmt.Sprintf("%.2f%%", 100*float64(count)/float64(total))
}

// WriteReport prints the burn-in report in the harness's canonical layout.
func (st Stats) WriteReport(w io.Writer, profileClimate, debugEligibility bool) {
	fmt.Fprintf(w, "\n=== Burn-In Simulation Report ===\n")
	fmt.Fprintf(w, "Total simulated hours: %.2f\n", st.Hours)
	fmt.Fprintf(w, "Total frames processed: %d\n", st.TotalFrames)
	fmt.Fprintf(w, "Total events: %d\n", st.TotalEvents)

	fmt.Fprintf(w, "\nEvent distribution:\n")
	if len(st.EventCounts) == 0 {
		fmt.Fprintln(w, "  (none)")
	} else {
		for _, id := range sortedKeys(st.EventCounts) {
			fmt.Fprintf(w, "  %-24s : %d\n", id, st.EventCounts[id])
		}
	}

	avgText := "n/a"
	if !math.IsNaN(st.AverageInterval) {
		avgText = fmt.Sprintf("%.6fs", st.AverageInterval)
	}
	fmt.Fprintf(w, "\nRare event count: %d\n", st.RareEventTotal)
	fmt.Fprintf(w, "Average interval between events: %s\n", avgText)
	fmt.Fprintf(w, "Max simultaneous events: %d\n", st.MaxSimultaneous)

	fmt.Fprintf(w, "Heap baseline: %d bytes\n", st.HeapBaselineBytes)
	fmt.Fprintf(w, "Heap end: %d bytes\n", st.HeapEndBytes)
	fmt.Fprintf(w, "Timing drift (session_time - expected): %.12fs\n", st.TimingDriftSeconds)

	fmt.Fprintf(w, "\nValidation checks:\n")
	fmt.Fprintf(w, "  Min runtime violations: %d\n", st.MinRuntimeViolations)
	fmt.Fprintf(w, "  Cooldown violations: %d\n", st.CooldownViolations)
	fmt.Fprintf(w, "  Rare interval violations: %d\n", st.RareIntervalViolations)
	fmt.Fprintf(w, "  Ambient interval violations: %d\n", st.AmbientIntervalViolations)
	overlap := st.MaxSimultaneous - 1
	if overlap < 0 {
		overlap = 0
	}
	fmt.Fprintf(w, "  One-active-event invariant violations: %d\n", overlap)

	if len(st.IntervalByEvent) > 0 {
		fmt.Fprintf(w, "\nAverage interval by event id:\n")
		for _, id := range sortedKeys(st.IntervalByEvent) {
			fmt.Fprintf(w, "  %-24s : %.6fs\n", id, st.IntervalByEvent[id])
		}
	}

	if st.RareRatioWarning != "" {
		fmt.Fprintf(w, "WARNING: %s\n", st.RareRatioWarning)
	}

	if profileClimate {
		fmt.Fprintf(w, "\n=== Climate Distribution ===\n")
		fmt.Fprintf(w, "\nWeather distribution (%% of frames):\n")
		for _, name := range sortedKeys(st.WeatherFrames) {
			fmt.Fprintf(w, "  %s: %s\n", name, percentage(st.WeatherFrames[name], st.TotalFrames))
		}
		fmt.Fprintf(w, "\nTime-of-day distribution (%% of frames):\n")
		for _, name := range []string{"day", "sunset", "night", "dawn"} {
			fmt.Fprintf(w, "  %s: %s\n", name, percentage(st.TimeOfDayFrames[name], st.TotalFrames))
		}
	}

	if debugEligibility {
		fmt.Fprintf(w, "\n=== Rare Eligibility Summary ===\n")
		for _, id := range sortedKeys(st.RareEligibility) {
			counts := st.RareEligibility[id]
			fmt.Fprintf(w, "\n%s:\n", id)
			fmt.Fprintf(w, "  Times eligible: %d\n", counts[ReasonEligible])
			fmt.Fprintf(w, "  Rejected (weather mismatch): %d\n", counts[ReasonWeatherMismatch])
			fmt.Fprintf(w, "  Rejected (time_of_day mismatch): %d\n", counts[ReasonTimeOfDayMismatch])
			fmt.Fprintf(w, "  Rejected (cooldown): %d\n", counts[ReasonCooldown])
			fmt.Fprintf(w, "  Rejected (min_runtime): %d\n", counts[ReasonMinRuntime])
		}
	}
}
