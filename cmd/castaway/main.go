// Command castaway runs the ambient presentation loop headless: session
// clock, day cycle, weather, and the event scheduler, observable over
// HTTP. Rendering clients poll the API and draw whatever phase the
// active instance is in.
package main

import (
	"log/slog"
	"math/rand"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/norddeich/castaway/internal/api"
	"github.com/norddeich/castaway/internal/catalog"
	"github.com/norddeich/castaway/internal/clock"
	"github.com/norddeich/castaway/internal/config"
	"github.com/norddeich/castaway/internal/daycycle"
	"github.com/norddeich/castaway/internal/loop"
	"github.com/norddeich/castaway/internal/schedule"
	"github.com/norddeich/castaway/internal/weather"
)

// statusBoard holds the latest per-tick observation for concurrent API
// readers. The loop goroutine writes, HTTP handlers read.
type statusBoard struct {
	mu     sync.Mutex
	status api.Status
}

func (b *statusBoard) Status() api.Status {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.status
}

func (b *statusBoard) set(st api.Status) {
	b.mu.Lock()
	b.status = st
	b.mu.Unlock()
}

func logLevel(name string) slog.Level {
	switch name {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func main() {
	godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel(cfg.LogLevel),
	}))
	slog.SetDefault(logger)

	cat, diags, err := catalog.Load(cfg.CatalogPath)
	if err != nil {
		slog.Error("failed to load event catalog", "path", cfg.CatalogPath, "error", err)
		os.Exit(1)
	}
	slog.Info("event catalog loaded",
		"path", cfg.CatalogPath,
		"events", cat.Len(),
		"ambient", len(cat.Ambient),
		"rare_tier1", len(cat.RareTier1),
		"rare_tier2", len(cat.RareTier2),
		"skipped", len(diags),
	)
	if cat.Empty() {
		slog.Warn("catalog has no usable events; the loop will stay idle")
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	slog.Info("session seed", "seed", seed)

	rng := rand.New(rand.NewSource(seed))
	session := clock.NewSession(cfg.TicksPerSecond)
	cycle := daycycle.New()
	cycle.DayLength = cfg.DayLength
	wx := weather.New(rng)
	sched := schedule.New(cat, rng)

	lp := loop.New(cfg.TicksPerSecond)
	board := &statusBoard{}

	lp.OnTick = func(tick uint64) {
		now := session.Now()
		wx.Update(now)
		env := schedule.Environment{
			TimeOfDay: cycle.TimeOfDay(now),
			Weather:   wx.Current(now),
		}
		sched.Tick(now, env)

		st := api.Status{
			Tick:           tick,
			SessionSeconds: now,
			TimeOfDay:      env.TimeOfDay,
			Weather:        env.Weather,
			CloudStrength:  wx.CloudStrength(now),
			Speed:          lp.Speed(),
		}
		if snap, ok := sched.CurrentInstance(); ok {
			st.Instance = &api.InstanceView{
				EventID:        snap.EventID,
				InstanceID:     snap.InstanceID,
				Pool:           string(snap.Pool),
				PhaseIndex:     snap.PhaseIndex,
				PhaseType:      snap.PhaseType,
				ElapsedSeconds: snap.Elapsed,
			}
		}
		board.set(st)

		session.Tick()
	}

	if cfg.APIPort > 0 {
		apiServer := &api.Server{
			Source:      board,
			Catalog:     cat,
			Diagnostics: diags,
			Control:     lp,
			Port:        cfg.APIPort,
			AdminKey:    cfg.AdminKey,
		}
		apiServer.Start()
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Info("received signal, shutting down", "signal", sig)
		lp.Stop()
	}()

	lp.Run()
}
