// Package loop paces the presentation tick at a fixed cadence.
package loop

import (
	"log/slog"
	"sync"
	"time"
)

// Loop invokes OnTick at a fixed frame period, adjusted by a speed
// multiplier. The scheduler behind OnTick is single-threaded; only the
// pacing knobs are safe to touch from other goroutines.
type Loop struct {
	Interval time.Duration
	OnTick   func(tick uint64)

	mu      sync.Mutex
	speed   float64
	running bool
	tick    uint64
}

// New creates a loop ticking at the given rate. A non-positive rate falls
// back to the 20 FPS presentation default.
func New(ticksPerSecond int) *Loop {
	if ticksPerSecond <= 0 {
		ticksPerSecond = 20
	}
	return &Loop{
		Interval: time.Second / time.Duration(ticksPerSecond),
		speed:    1.0,
	}
}

// Run starts the loop. Blocks until Stop is called.
func (l *Loop) Run() {
	l.mu.Lock()
	l.running = true
	l.mu.Unlock()
	slog.Info("presentation loop started", "interval", l.Interval)

	for {
		l.mu.Lock()
		running := l.running
		speed := l.speed
		l.mu.Unlock()
		if !running {
			break
		}

		if speed <= 0 {
			// Paused.
			time.Sleep(100 * time.Millisecond)
			continue
		}

		start := time.Now()

		l.mu.Lock()
		l.tick++
		tick := l.tick
		l.mu.Unlock()

		if l.OnTick != nil {
			l.OnTick(tick)
		}

		elapsed := time.Since(start)
		target := time.Duration(float64(l.Interval) / speed)
		if elapsed < target {
			time.Sleep(target - elapsed)
		}
	}

	slog.Info("presentation loop stopped", "tick", l.Tick())
}

// Stop halts the loop after the current tick.
func (l *Loop) Stop() {
	l.mu.Lock()
	l.running = false
	l.mu.Unlock()
}

// SetSpeed adjusts the pacing multiplier. Zero or below pauses the loop.
func (l *Loop) SetSpeed(v float64) {
	l.mu.Lock()
	l.speed = v
	l.mu.Unlock()
}

// Speed returns the current pacing multiplier.
func (l *Loop) Speed() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.speed
}

// Tick returns the number of completed ticks.
func (l *Loop) Tick() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.tick
}
