package loop_test

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/norddeich/castaway/internal/loop"
)

func TestLoopInvokesOnTick(t *testing.T) {
	l := loop.New(200)

	var calls atomic.Uint64
	done := make(chan struct{})
	l.OnTick = func(tick uint64) {
		if calls.Add(1) == 10 {
			l.Stop()
			close(done)
		}
	}

	go l.Run()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		l.Stop()
		t.Fatal("loop never reached 10 ticks")
	}

	assert.GreaterOrEqual(t, calls.Load(), uint64(10))
	assert.GreaterOrEqual(t, l.Tick(), uint64(10))
}

func TestTickNumbersAreSequential(t *testing.T) {
	l := loop.New(500)

	var last uint64
	done := make(chan struct{})
	l.OnTick = func(tick uint64) {
		require.Equal(t, last+1, tick)
		last = tick
		if tick == 25 {
			l.Stop()
			close(done)
		}
	}

	go l.Run()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		l.Stop()
		t.Fatal("loop never reached 25 ticks")
	}
}

func TestStopBeforeRunReturnsImmediately(t *testing.T) {
	l := loop.New(20)
	l.OnTick = func(uint64) {}

	stopped := make(chan struct{})
	go func() {
		l.Run()
		close(stopped)
	}()

	time.Sleep(50 * time.Millisecond)
	l.Stop()

	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after Stop")
	}
}

func TestZeroSpeedPausesTicking(t *testing.T) {
	l := loop.New(200)
	l.SetSpeed(0)

	var calls atomic.Uint64
	l.OnTick = func(uint64) { calls.Add(1) }

	go l.Run()
	time.Sleep(250 * time.Millisecond)
	before := calls.Load()
	assert.Equal(t, uint64(0), before, "paused loop must not tick")

	l.SetSpeed(1)
	time.Sleep(250 * time.Millisecond)
	l.Stop()
	assert.Greater(t, calls.Load(), before, "resumed loop ticks again")
}

func TestSpeedAccessors(t *testing.T) {
	l := loop.New(20)
	assert.Equal(t, 1.0, l.Speed())

	l.SetSpeed(4)
	assert.Equal(t, 4.0, l.Speed())
}

func TestDefaultRate(t *testing.T) {
	l := loop.New(0)
	assert.Equal(t, 50*time.Millisecond, l.Interval)
}
