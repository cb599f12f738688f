// Package export writes time entries to shareable files.
package export

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sadopc/timetag/internal/entry"
	"github.com/sadopc/timetag/internal/report"
	"github.com/sadopc/timetag/internal/zone"
)

type Writer interface {
	Write(path string, entries []entry.TimeEntry) error
	Extension() string
}

// Options shape how entries are rendered.
type Options struct {
	Zone    string
	Variant report.CSVVariant
	Labels  report.Labeler
}

func (o Options) label(c entry.CategoryRef) string {
	if o.Labels == nil {
		return c.String()
	}
	return o.Labels.Label(c)
}

func (o Options) localTime(e entry.TimeEntry) (string, error) {
	return zone.FormatInZone(e.OccurredAtUTC, o.Zone, zone.FullLayout)
}

// Formats lists the supported export formats.
var Formats = []string{"csv", "json", "xlsx"}

func WriterForFormat(format string, opts Options) (Writer, error) {
	switch normalizeFormat(format) {
	case "csv":
		return &CSVWriter{Options: opts}, nil
	case "json":
		return &JSONWriter{Options: opts, Now: time.Now}, nil
	case "excel", "xlsx":
		return &ExcelWriter{Options: opts}, nil
	default:
		return nil, fmt.Errorf("unsupported export format: %s", format)
	}
}

func normalizeFormat(value string) string {
	return strings.TrimSpace(strings.ToLower(value))
}

// Exporter writes entitled exports into Dir.
type Exporter struct {
	Dir     string
	Gate    *report.Gate
	Options Options
	Now     func() time.Time
}

// FileName is the export file name for a given day.
func FileName(day time.Time, ext string) string {
	return fmt.Sprintf("timetag-export-%s.%s", day.Format("2006-01-02"), ext)
}

// Export writes entries in format and returns the file path. Every format
// requires the pro entitlement.
func (x Exporter) Export(format string, entries []entry.TimeEntry) (string, error) {
	if x.Gate != nil && !x.Gate.Entitled() {
		return "", report.ErrEntitlementRequired
	}
	w, err := WriterForFormat(format, x.Options)
	if err != nil {
		return "", err
	}
	loc, err := zone.Load(x.Options.Zone)
	if err != nil {
		return "", err
	}

	now := time.Now
	if x.Now != nil {
		now = x.Now
	}
	if err := os.MkdirAll(x.Dir, 0o755); err != nil {
		return "", fmt.Errorf("create export directory: %w", err)
	}
	path := filepath.Join(x.Dir, FileName(now().In(loc), w.Extension()))
	if err := w.Write(path, entries); err != nil {
		return "", err
	}
	return path, nil
}
