package export

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/sadopc/timetag/internal/entry"
)

type jsonExport struct {
	ExportedAt string      `json:"exported_at"`
	TimeZone   string      `json:"time_zone"`
	Count      int         `json:"count"`
	Entries    []jsonEntry `json:"entries"`
}

type jsonEntry struct {
	ID             string `json:"id"`
	Category       string `json:"category"`
	CategoryID     string `json:"category_id"`
	OccurredAtUTC  string `json:"occurred_at_utc"`
	OccurredAt     string `json:"occurred_at"`
	OriginTimeZone string `json:"origin_time_zone"`
	DurationSec    int64  `json:"duration_seconds"`
	Duration       string `json:"duration"`
}

type JSONWriter struct {
	Options Options
	Now     func() time.Time
}

func (w *JSONWriter) Extension() string { return "json" }

func (w *JSONWriter) Write(path string, entries []entry.TimeEntry) error {
	now := time.Now
	if w.Now != nil {
		now = w.Now
	}
	export := jsonExport{
		ExportedAt: now().UTC().Format(time.RFC3339),
		TimeZone:   w.Options.Zone,
		Count:      len(entries),
		Entries:    []jsonEntry{},
	}

	for _, e := range entries {
		local, err := w.Options.localTime(e)
		if err != nil {
			return err
		}
		export.Entries = append(export.Entries, jsonEntry{
			ID:             e.ID,
			Category:       w.Options.label(e.Category),
			CategoryID:     e.Category.String(),
			OccurredAtUTC:  e.OccurredAtUTC.Format(time.RFC3339),
			OccurredAt:     local,
			OriginTimeZone: e.OriginTimeZone,
			DurationSec:    e.DurationSeconds,
			Duration:       FormatDuration(e.DurationSeconds),
		})
	}

	data, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write json file: %w", err)
	}
	return nil
}

// FormatDuration renders seconds as HH:MM:SS.
func FormatDuration(secs int64) string {
	h := secs / 3600
	m := (secs % 3600) / 60
	s := secs % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}
