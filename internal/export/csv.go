package export

import (
	"fmt"
	"os"

	"github.com/sadopc/timetag/internal/entry"
	"github.com/sadopc/timetag/internal/report"
)

// CSVWriter writes the report CSV text unchanged.
type CSVWriter struct {
	Options Options
}

func (w *CSVWriter) Extension() string { return "csv" }

func (w *CSVWriter) Write(path string, entries []entry.TimeEntry) error {
	text, err := report.ToCSV(entries, w.Options.Zone, w.Options.Variant, w.Options.Labels)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		return fmt.Errorf("write csv file: %w", err)
	}
	return nil
}
