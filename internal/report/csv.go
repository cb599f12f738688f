package report

import (
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"

	"github.com/sadopc/timetag/internal/entry"
	"github.com/sadopc/timetag/internal/zone"
)

// CSVVariant selects the export column set. Headers and column order are
// a compatibility contract.
type CSVVariant string

const (
	CSVBasic    CSVVariant = "basic"
	CSVExtended CSVVariant = "extended"
)

var (
	basicHeader    = []string{"Date", "Time (min)", "Category"}
	extendedHeader = []string{"ID", "Time (seconds)", "Category", "Date", "TimeZone"}
)

// Labeler renders a category reference for display.
type Labeler interface {
	Label(entry.CategoryRef) string
}

// ToCSV renders entries with dates shown as wall time in zoneName. Rows
// are separated by "\n". A nil labeler writes raw category ids.
func ToCSV(entries []entry.TimeEntry, zoneName string, variant CSVVariant, labels Labeler) (string, error) {
	if _, err := zone.Load(zoneName); err != nil {
		return "", err
	}

	var b strings.Builder
	w := csv.NewWriter(&b)

	header := basicHeader
	switch variant {
	case CSVBasic, "":
	case CSVExtended:
		header = extendedHeader
	default:
		return "", fmt.Errorf("unknown csv variant %q", variant)
	}
	if err := w.Write(header); err != nil {
		return "", err
	}

	for _, e := range entries {
		date, err := zone.FormatInZone(e.OccurredAtUTC, zoneName, zone.FullLayout)
		if err != nil {
			return "", err
		}
		label := e.Category.String()
		if labels != nil {
			label = labels.Label(e.Category)
		}

		var row []string
		if variant == CSVExtended {
			row = []string{e.ID, strconv.FormatInt(e.DurationSeconds, 10), label, date, e.OriginTimeZone}
		} else {
			row = []string{date, strconv.FormatInt(floorDiv(e.DurationSeconds, 60), 10), label}
		}
		if err := w.Write(row); err != nil {
			return "", err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("write csv: %w", err)
	}
	return b.String(), nil
}

func floorDiv(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
