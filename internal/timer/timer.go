// Package timer is the stopwatch state machine that turns a tracked
// session into a persisted time entry.
package timer

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/sadopc/timetag/internal/entry"
)

type State int

const (
	Idle State = iota
	Running
	Paused
	// Stopped is held only while the finalized entry is being persisted.
	Stopped
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Running:
		return "running"
	case Paused:
		return "paused"
	case Stopped:
		return "stopped"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

var ErrInvalidTransition = errors.New("invalid timer transition")

// Sink receives finalized entries. entry.Store satisfies it.
type Sink interface {
	Append(entry.TimeEntry) error
}

// ZoneSource names the zone recorded as an entry's origin.
type ZoneSource interface {
	CurrentZone() string
}

// Snapshot is a point-in-time view of the engine for rendering.
type Snapshot struct {
	State          State
	ElapsedSeconds int64
	Category       entry.CategoryRef
	StartedAt      time.Time
}

// Elapsed returns the accumulated time as a duration.
func (s Snapshot) Elapsed() time.Duration {
	return time.Duration(s.ElapsedSeconds) * time.Second
}

// Active reports whether a session is in progress.
func (s Snapshot) Active() bool {
	return s.State == Running || s.State == Paused
}

type Option func(*Engine)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// Engine serializes ticks and transitions behind one mutex. Elapsed time
// only grows through Tick, so pauses and process suspension never count.
type Engine struct {
	mu    sync.Mutex
	sink  Sink
	zones ZoneSource
	now   func() time.Time
	log   zerolog.Logger

	state     State
	elapsed   int64
	category  entry.CategoryRef
	startedAt time.Time
}

func NewEngine(sink Sink, zones ZoneSource, log zerolog.Logger, opts ...Option) *Engine {
	e := &Engine{
		sink:  sink,
		zones: zones,
		now:   time.Now,
		log:   log.With().Str("component", "timer").Logger(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) invalid(op string) error {
	e.log.Debug().Str("op", op).Stringer("state", e.state).Msg("rejected transition")
	return fmt.Errorf("%w: %s while %s", ErrInvalidTransition, op, e.state)
}

// Start begins a session from Idle.
func (e *Engine) Start(category entry.CategoryRef) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state != Idle {
		return e.invalid("start")
	}
	e.state = Running
	e.elapsed = 0
	e.category = category
	e.startedAt = e.now().UTC()
	e.log.Debug().Str("category", category.String()).Msg("session started")
	return nil
}

// Pause is valid only while Running.
func (e *Engine) Pause() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.pause()
}

func (e *Engine) pause() error {
	if e.state != Running {
		return e.invalid("pause")
	}
	e.state = Paused
	e.log.Debug().Int64("elapsed", e.elapsed).Msg("session paused")
	return nil
}

// Resume is valid only while Paused.
func (e *Engine) Resume() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.resume()
}

func (e *Engine) resume() error {
	if e.state != Paused {
		return e.invalid("resume")
	}
	e.state = Running
	e.log.Debug().Int64("elapsed", e.elapsed).Msg("session resumed")
	return nil
}

// Toggle pauses a running session or resumes a paused one.
func (e *Engine) Toggle() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state == Paused {
		return e.resume()
	}
	return e.pause()
}

// Tick adds one second while Running and is a no-op otherwise.
func (e *Engine) Tick() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state == Running {
		e.elapsed++
	}
}

// SetCategory changes the category of the active session.
func (e *Engine) SetCategory(category entry.CategoryRef) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state != Running && e.state != Paused {
		return e.invalid("set category")
	}
	e.category = category
	return nil
}

// Stop finalizes the session. A session with no elapsed time returns a
// nil entry and persists nothing. The call blocks until the entry is
// durable; if persisting fails the session is left as it was before Stop.
func (e *Engine) Stop(category entry.CategoryRef) (*entry.TimeEntry, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state != Running && e.state != Paused {
		return nil, e.invalid("stop")
	}

	if e.elapsed == 0 {
		e.reset()
		e.log.Debug().Msg("empty session discarded")
		return nil, nil
	}

	te, err := entry.New(e.elapsed, category, e.now(), e.zones.CurrentZone())
	if err != nil {
		return nil, err
	}

	prev := e.state
	e.state = Stopped
	if err := e.sink.Append(te); err != nil {
		e.state = prev
		e.log.Error().Err(err).Int64("elapsed", e.elapsed).Msg("could not save session")
		return nil, err
	}

	e.reset()
	e.log.Info().Str("entry", te.ID).Int64("seconds", te.DurationSeconds).Str("category", te.Category.String()).Msg("session saved")
	return &te, nil
}

// Discard abandons the active session without persisting it.
func (e *Engine) Discard() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state != Running && e.state != Paused {
		return e.invalid("discard")
	}
	e.reset()
	return nil
}

func (e *Engine) reset() {
	e.state = Idle
	e.elapsed = 0
	e.category = entry.Uncategorized
	e.startedAt = time.Time{}
}

func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return Snapshot{
		State:          e.state,
		ElapsedSeconds: e.elapsed,
		Category:       e.category,
		StartedAt:      e.startedAt,
	}
}

// Run calls Tick every interval until ctx is cancelled. onTick, when set,
// receives a snapshot after every tick.
func (e *Engine) Run(ctx context.Context, interval time.Duration, onTick func(Snapshot)) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			e.Tick()
			if onTick != nil {
				onTick(e.Snapshot())
			}
		}
	}
}
