// Package report derives totals, trends and CSV text from a set of time
// entries. Every function is pure: no I/O and no hidden state.
package report

import (
	"sort"
	"time"

	"github.com/sadopc/timetag/internal/entry"
)

// CategoryTotal is the tracked time attributed to one category.
type CategoryTotal struct {
	Category     entry.CategoryRef
	TotalSeconds int64
}

// TotalsByCategory sums durations per category. Entries without a
// category land in the entry.Uncategorized bucket.
func TotalsByCategory(entries []entry.TimeEntry) map[entry.CategoryRef]int64 {
	totals := make(map[entry.CategoryRef]int64)
	for _, e := range entries {
		totals[e.Category] += e.DurationSeconds
	}
	return totals
}

// SortTotals orders totals by descending time, ties broken by category id.
func SortTotals(totals map[entry.CategoryRef]int64) []CategoryTotal {
	out := make([]CategoryTotal, 0, len(totals))
	for c, secs := range totals {
		out = append(out, CategoryTotal{Category: c, TotalSeconds: secs})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].TotalSeconds != out[j].TotalSeconds {
			return out[i].TotalSeconds > out[j].TotalSeconds
		}
		return out[i].Category.String() < out[j].Category.String()
	})
	return out
}

// Sum returns the total duration of entries in seconds.
func Sum(entries []entry.TimeEntry) int64 {
	var total int64
	for _, e := range entries {
		total += e.DurationSeconds
	}
	return total
}

// Between keeps entries with start <= occurredAt <= endInclusive.
func Between(entries []entry.TimeEntry, start, endInclusive time.Time) []entry.TimeEntry {
	var out []entry.TimeEntry
	for _, e := range entries {
		if !e.OccurredAtUTC.Before(start) && !e.OccurredAtUTC.After(endInclusive) {
			out = append(out, e)
		}
	}
	return out
}

// CategoryTrend totals the entries in [start, endInclusive] per category,
// dropping categories with no time.
func CategoryTrend(entries []entry.TimeEntry, start, endInclusive time.Time) []CategoryTotal {
	all := SortTotals(TotalsByCategory(Between(entries, start, endInclusive)))
	out := all[:0]
	for _, ct := range all {
		if ct.TotalSeconds > 0 {
			out = append(out, ct)
		}
	}
	return out
}
