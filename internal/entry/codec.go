package entry

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

var ErrMalformedStoredData = errors.New("malformed stored data")

// wireEntry is the persisted JSON shape. The legacy fields (time, date,
// timeZone) are accepted on read so history written by earlier releases
// stays visible; only the canonical fields are written.
type wireEntry struct {
	ID              string  `json:"id"`
	DurationSeconds *int64  `json:"durationSeconds,omitempty"`
	Category        *string `json:"category"`
	OccurredAtUTC   string  `json:"occurredAtUtc,omitempty"`
	OriginTimeZone  string  `json:"originTimeZone,omitempty"`

	LegacyTime     *int64 `json:"time,omitempty"`
	LegacyDate     string `json:"date,omitempty"`
	LegacyTimeZone string `json:"timeZone,omitempty"`
}

func (e TimeEntry) MarshalJSON() ([]byte, error) {
	cat := e.Category.String()
	dur := e.DurationSeconds
	return json.Marshal(wireEntry{
		ID:              e.ID,
		DurationSeconds: &dur,
		Category:        &cat,
		OccurredAtUTC:   e.OccurredAtUTC.UTC().Format(time.RFC3339Nano),
		OriginTimeZone:  e.OriginTimeZone,
	})
}

func (e *TimeEntry) UnmarshalJSON(data []byte) error {
	var w wireEntry
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}

	dur := w.DurationSeconds
	if dur == nil {
		dur = w.LegacyTime
	}
	if dur == nil {
		return fmt.Errorf("%w: entry %q has no duration", ErrMalformedStoredData, w.ID)
	}

	stamp := w.OccurredAtUTC
	if stamp == "" {
		stamp = w.LegacyDate
	}
	at, err := time.Parse(time.RFC3339Nano, stamp)
	if err != nil {
		return fmt.Errorf("%w: entry %q timestamp: %v", ErrMalformedStoredData, w.ID, err)
	}

	zone := w.OriginTimeZone
	if zone == "" {
		zone = w.LegacyTimeZone
	}
	if zone == "" {
		zone = "UTC"
	}

	cat := Uncategorized
	if w.Category != nil {
		cat = Known(*w.Category)
	}

	*e = TimeEntry{
		ID:              w.ID,
		DurationSeconds: *dur,
		Category:        cat,
		OccurredAtUTC:   at.UTC(),
		OriginTimeZone:  zone,
	}
	return nil
}

// Encode serializes entries into the timeHistory payload.
func Encode(entries []TimeEntry) (string, error) {
	if entries == nil {
		entries = []TimeEntry{}
	}
	data, err := json.Marshal(entries)
	if err != nil {
		return "", fmt.Errorf("encode history: %w", err)
	}
	return string(data), nil
}

// Decode parses a timeHistory payload. Entries that decode but violate the
// model invariants are reported as malformed too.
func Decode(payload string) ([]TimeEntry, error) {
	var entries []TimeEntry
	if err := json.Unmarshal([]byte(payload), &entries); err != nil {
		if errors.Is(err, ErrMalformedStoredData) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrMalformedStoredData, err)
	}
	for i, e := range entries {
		if err := e.Validate(); err != nil {
			return nil, fmt.Errorf("%w: entry %d: %v", ErrMalformedStoredData, i, err)
		}
	}
	return entries, nil
}
