// Command burnin runs a headless, deterministic burn-in simulation of
// the event system and prints a long-run stability report. Results can
// optionally be recorded to SQLite for comparison across catalog
// revisions.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/norddeich/castaway/internal/catalog"
	"github.com/norddeich/castaway/internal/sim"
	"github.com/norddeich/castaway/internal/store"
)

func main() {
	var (
		catalogPath      = flag.String("events", "events/events.json", "path to the event catalog")
		seed             = flag.Int64("seed", 0, "fixed RNG seed for deterministic runs (0 = wall clock)")
		hours            = flag.Float64("hours", 8.0, "simulated hours to run")
		tickRate         = flag.Int("tick-rate", 20, "simulation ticks per second")
		profileClimate   = flag.Bool("profile-climate", false, "enable climate distribution diagnostics")
		debugEligibility = flag.Bool("debug-eligibility", false, "print rare-slot eligibility summary")
		dbPath           = flag.String("db", "", "record the run to this SQLite database")
	)
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}))
	slog.SetDefault(logger)

	cat, diags, err := catalog.Load(*catalogPath)
	if err != nil {
		slog.Error("failed to load event catalog", "path", *catalogPath, "error", err)
		os.Exit(1)
	}
	for _, d := range diags {
		slog.Warn("catalog entry skipped", "diagnostic", d.String())
	}

	runSeed := *seed
	if runSeed == 0 {
		runSeed = time.Now().UnixNano()
	}

	stats := sim.Run(cat, sim.Config{
		Hours:            *hours,
		Seed:             runSeed,
		TicksPerSecond:   *tickRate,
		ProfileClimate:   *profileClimate,
		DebugEligibility: *debugEligibility,
	})

	stats.WriteReport(os.Stdout, *profileClimate, *debugEligibility)

	if *dbPath != "" {
		db, err := store.Open(*dbPath)
		if err != nil {
			slog.Error("failed to open run store", "path", *dbPath, "error", err)
			os.Exit(1)
		}
		defer db.Close()

		runID, err := db.SaveRun(stats, diags)
		if err != nil {
			slog.Error("failed to record run", "error", err)
			os.Exit(1)
		}
		fmt.Printf("\nRun recorded: id=%d db=%s\n", runID, *dbPath)
	}
}
