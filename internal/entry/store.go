package entry

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// HistoryKey is the durable key holding the serialized entry collection.
const HistoryKey = "timeHistory"

var ErrPersistence = errors.New("persistence failure")

// KV is the durable key/value contract the store writes through.
type KV interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
}

// Store is the process-wide, append-only collection of entries. It is
// hydrated from durable storage on first read and served from memory after.
type Store struct {
	mu      sync.RWMutex
	kv      KV
	log     zerolog.Logger
	loaded  bool
	entries []TimeEntry
	ids     map[string]struct{}
}

func NewStore(kv KV, log zerolog.Logger) *Store {
	return &Store{kv: kv, log: log.With().Str("component", "entries").Logger()}
}

// hydrate must be called with s.mu held for writing.
func (s *Store) hydrate() error {
	if s.loaded {
		return nil
	}
	payload, ok, err := s.kv.Get(HistoryKey)
	if err != nil {
		s.log.Error().Err(err).Msg("reading history failed")
		return fmt.Errorf("%w: load history: %v", ErrPersistence, err)
	}

	var entries []TimeEntry
	if ok && payload != "" {
		entries, err = Decode(payload)
		if err != nil {
			// Keep the app usable after partial corruption.
			s.log.Warn().Err(err).Msg("stored history is malformed, starting from an empty collection")
			entries = nil
		}
	}

	s.entries = entries
	s.ids = make(map[string]struct{}, len(entries))
	for _, e := range entries {
		s.ids[e.ID] = struct{}{}
	}
	s.loaded = true
	s.log.Debug().Int("entries", len(entries)).Msg("history hydrated")
	return nil
}

// LoadAll returns every persisted entry in insertion order. The returned
// slice is a copy and safe to modify.
func (s *Store) LoadAll() ([]TimeEntry, error) {
	s.mu.RLock()
	if s.loaded {
		out := make([]TimeEntry, len(s.entries))
		copy(out, s.entries)
		s.mu.RUnlock()
		return out, nil
	}
	s.mu.RUnlock()

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.hydrate(); err != nil {
		return nil, err
	}
	out := make([]TimeEntry, len(s.entries))
	copy(out, s.entries)
	return out, nil
}

// Append durably persists e. On a failed write the in-memory collection is
// left exactly as it was and the failure is returned.
func (s *Store) Append(e TimeEntry) error {
	if err := e.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.hydrate(); err != nil {
		return err
	}
	if _, dup := s.ids[e.ID]; dup {
		return fmt.Errorf("%w: duplicate id %q", ErrInvalidEntry, e.ID)
	}

	next := make([]TimeEntry, len(s.entries), len(s.entries)+1)
	copy(next, s.entries)
	next = append(next, e)

	if err := s.flush(next); err != nil {
		s.log.Error().Err(err).Str("entry", e.ID).Msg("append rolled back")
		return err
	}

	s.entries = next
	s.ids[e.ID] = struct{}{}
	s.log.Debug().Str("entry", e.ID).Int64("seconds", e.DurationSeconds).Msg("entry appended")
	return nil
}

// Clear wipes the whole history.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.flush(nil); err != nil {
		return err
	}
	s.entries = nil
	s.ids = make(map[string]struct{})
	s.loaded = true
	s.log.Info().Msg("history cleared")
	return nil
}

func (s *Store) flush(entries []TimeEntry) error {
	payload, err := Encode(entries)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if err := s.kv.Set(HistoryKey, payload); err != nil {
		return fmt.Errorf("%w: write history: %v", ErrPersistence, err)
	}
	return nil
}

// FilterRecent returns the entries that occurred in [now-windowDays, now).
// It is a view filter; nothing is deleted.
func FilterRecent(entries []TimeEntry, windowDays int, now time.Time) []TimeEntry {
	from := now.Add(-time.Duration(windowDays) * 24 * time.Hour)
	var out []TimeEntry
	for _, e := range entries {
		if !e.OccurredAtUTC.Before(from) && e.OccurredAtUTC.Before(now) {
			out = append(out, e)
		}
	}
	return out
}
