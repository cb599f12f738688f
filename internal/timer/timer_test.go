package timer

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sadopc/timetag/internal/entry"
	"github.com/sadopc/timetag/internal/zone"
)

type fakeSink struct {
	mu      sync.Mutex
	entries []entry.TimeEntry
	fail    bool
}

func (f *fakeSink) Append(e entry.TimeEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return entry.ErrPersistence
	}
	f.entries = append(f.entries, e)
	return nil
}

type fixedZone string

func (z fixedZone) CurrentZone() string { return string(z) }

type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time { return c.now }
func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newEngine(sink *fakeSink, clock *fakeClock, z string) *Engine {
	return NewEngine(sink, fixedZone(z), zerolog.Nop(), WithClock(clock.Now))
}

var work = entry.Known("work-id")

func TestLifecycle(t *testing.T) {
	sink := &fakeSink{}
	clock := &fakeClock{now: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)}
	e := newEngine(sink, clock, "UTC")

	assert.Equal(t, Idle, e.Snapshot().State)
	require.NoError(t, e.Start(work))
	snap := e.Snapshot()
	assert.Equal(t, Running, snap.State)
	assert.Equal(t, work, snap.Category)
	assert.True(t, snap.StartedAt.Equal(clock.now))

	e.Tick()
	e.Tick()
	require.NoError(t, e.Pause())
	e.Tick()
	assert.Equal(t, int64(2), e.Snapshot().ElapsedSeconds)

	require.NoError(t, e.Resume())
	e.Tick()
	clock.Advance(3 * time.Second)

	got, err := e.Stop(work)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, int64(3), got.DurationSeconds)
	assert.Equal(t, work, got.Category)
	assert.Len(t, sink.entries, 1)

	snap = e.Snapshot()
	assert.Equal(t, Idle, snap.State)
	assert.Zero(t, snap.ElapsedSeconds)
	assert.True(t, snap.Category.IsUncategorized())
}

func TestInvalidTransitionsLeaveStateAlone(t *testing.T) {
	sink := &fakeSink{}
	e := newEngine(sink, &fakeClock{now: time.Now()}, "UTC")

	assert.ErrorIs(t, e.Pause(), ErrInvalidTransition)
	assert.ErrorIs(t, e.Resume(), ErrInvalidTransition)
	_, err := e.Stop(work)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Equal(t, Idle, e.Snapshot().State)

	require.NoError(t, e.Start(work))
	e.Tick()
	assert.ErrorIs(t, e.Start(work), ErrInvalidTransition)
	assert.ErrorIs(t, e.Resume(), ErrInvalidTransition)
	require.NoError(t, e.Pause())
	assert.ErrorIs(t, e.Pause(), ErrInvalidTransition)

	snap := e.Snapshot()
	assert.Equal(t, Paused, snap.State)
	assert.Equal(t, int64(1), snap.ElapsedSeconds)
	assert.Empty(t, sink.entries)
}

func TestZeroElapsedStopPersistsNothing(t *testing.T) {
	sink := &fakeSink{}
	e := newEngine(sink, &fakeClock{now: time.Now()}, "UTC")

	require.NoError(t, e.Start(work))
	got, err := e.Stop(work)
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.Empty(t, sink.entries)
	assert.Equal(t, Idle, e.Snapshot().State)

	// Paused before any tick.
	require.NoError(t, e.Start(work))
	require.NoError(t, e.Pause())
	got, err = e.Stop(entry.Uncategorized)
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.Empty(t, sink.entries)
}

func TestStopPersistFailureKeepsSession(t *testing.T) {
	sink := &fakeSink{fail: true}
	e := newEngine(sink, &fakeClock{now: time.Now()}, "UTC")

	require.NoError(t, e.Start(work))
	for i := 0; i < 5; i++ {
		e.Tick()
	}
	require.NoError(t, e.Pause())

	got, err := e.Stop(work)
	assert.ErrorIs(t, err, entry.ErrPersistence)
	assert.Nil(t, got)
	snap := e.Snapshot()
	assert.Equal(t, Paused, snap.State)
	assert.Equal(t, int64(5), snap.ElapsedSeconds)

	sink.fail = false
	got, err = e.Stop(work)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, int64(5), got.DurationSeconds)
}

func TestStopCategoryOverridesStart(t *testing.T) {
	sink := &fakeSink{}
	e := newEngine(sink, &fakeClock{now: time.Now()}, "UTC")
	require.NoError(t, e.Start(entry.Uncategorized))
	e.Tick()
	got, err := e.Stop(work)
	require.NoError(t, err)
	assert.Equal(t, work, got.Category)
}

func TestTokyoScenario(t *testing.T) {
	sink := &fakeSink{}
	clock := &fakeClock{now: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)}
	e := newEngine(sink, clock, "Asia/Tokyo")

	require.NoError(t, e.Start(work))
	for i := 0; i < 90; i++ {
		clock.Advance(time.Second)
		e.Tick()
	}
	got, err := e.Stop(work)
	require.NoError(t, err)
	require.NotNil(t, got)

	assert.Equal(t, int64(90), got.DurationSeconds)
	assert.Equal(t, "2024-03-01T00:01:30Z", got.OccurredAtUTC.Format(time.RFC3339))
	assert.Equal(t, "Asia/Tokyo", got.OriginTimeZone)

	local, err := zone.FormatInZone(got.OccurredAtUTC, got.OriginTimeZone, zone.FullLayout)
	require.NoError(t, err)
	assert.Equal(t, "2024-03-01 09:01:30", local)
}

// Elapsed equals the number of ticks delivered while Running, for any
// script of operations.
func TestScriptedTickSequences(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	ops := []string{"start", "tick", "tick", "tick", "pause", "resume", "stop", "discard"}

	for run := 0; run < 200; run++ {
		sink := &fakeSink{}
		e := newEngine(sink, &fakeClock{now: time.Now()}, "UTC")

		var want int64
		var persisted []int64
		for step := 0; step < 60; step++ {
			before := e.Snapshot().State
			switch ops[rng.Intn(len(ops))] {
			case "start":
				if err := e.Start(work); err == nil {
					want = 0
				}
			case "tick":
				e.Tick()
				if before == Running {
					want++
				}
			case "pause":
				_ = e.Pause()
			case "resume":
				_ = e.Resume()
			case "stop":
				got, err := e.Stop(work)
				if err == nil {
					if want > 0 {
						require.NotNil(t, got)
						persisted = append(persisted, want)
					} else {
						require.Nil(t, got)
					}
					want = 0
				}
			case "discard":
				if e.Discard() == nil {
					want = 0
				}
			}
			require.Equal(t, want, e.Snapshot().ElapsedSeconds, "run %d step %d", run, step)
		}

		require.Len(t, sink.entries, len(persisted))
		for i, te := range sink.entries {
			assert.Equal(t, persisted[i], te.DurationSeconds)
		}
	}
}

func TestRunTicksUntilCancelled(t *testing.T) {
	sink := &fakeSink{}
	e := newEngine(sink, &fakeClock{now: time.Now()}, "UTC")
	require.NoError(t, e.Start(work))

	ctx, cancel := context.WithCancel(context.Background())
	ticks := make(chan Snapshot, 16)
	done := make(chan error, 1)
	go func() {
		done <- e.Run(ctx, time.Millisecond, func(s Snapshot) {
			select {
			case ticks <- s:
			default:
			}
		})
	}()

	for i := 0; i < 3; i++ {
		select {
		case <-ticks:
		case <-time.After(2 * time.Second):
			t.Fatal("no tick received")
		}
	}
	cancel()
	assert.True(t, errors.Is(<-done, context.Canceled))
	assert.GreaterOrEqual(t, e.Snapshot().ElapsedSeconds, int64(3))
}

func TestConcurrentTicksAreSerialized(t *testing.T) {
	e := newEngine(&fakeSink{}, &fakeClock{now: time.Now()}, "UTC")
	require.NoError(t, e.Start(work))

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				e.Tick()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, int64(1000), e.Snapshot().ElapsedSeconds)
}

func TestToggle(t *testing.T) {
	e := newEngine(&fakeSink{}, &fakeClock{now: time.Now()}, "UTC")
	assert.ErrorIs(t, e.Toggle(), ErrInvalidTransition)

	require.NoError(t, e.Start(work))
	require.NoError(t, e.Toggle())
	assert.Equal(t, Paused, e.Snapshot().State)
	require.NoError(t, e.Toggle())
	assert.Equal(t, Running, e.Snapshot().State)
}

func TestConcurrentTogglesNeverFail(t *testing.T) {
	e := newEngine(&fakeSink{}, &fakeClock{now: time.Now()}, "UTC")
	require.NoError(t, e.Start(work))

	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		failed int
	)
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := e.Toggle(); err != nil {
				mu.Lock()
				failed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Zero(t, failed)
	assert.Equal(t, Running, e.Snapshot().State)
}
