package report

import (
	"errors"
	"time"

	"github.com/sadopc/timetag/internal/entry"
)

// FreeWindowDays is how far back the free tier can see.
const FreeWindowDays = 7

var ErrEntitlementRequired = errors.New("pro entitlement required")

// Checker answers whether the paid tier is unlocked.
type Checker interface {
	IsEntitled() bool
}

// Gate applies entitlement rules in front of the pure aggregations.
// Without entitlement entry views are limited to the last FreeWindowDays
// and trends and exports are refused.
type Gate struct {
	check Checker
	now   func() time.Time
}

func NewGate(check Checker) *Gate {
	return &Gate{check: check, now: time.Now}
}

// WithClock replaces time.Now for the free-tier window.
func (g *Gate) WithClock(now func() time.Time) *Gate {
	g.now = now
	return g
}

func (g *Gate) Entitled() bool {
	return g.check.IsEntitled()
}

// Visible returns the entries the caller may see.
func (g *Gate) Visible(entries []entry.TimeEntry) []entry.TimeEntry {
	if g.Entitled() {
		return entries
	}
	return entry.FilterRecent(entries, FreeWindowDays, g.now())
}

// Totals aggregates the visible entries per category.
func (g *Gate) Totals(entries []entry.TimeEntry) []CategoryTotal {
	return SortTotals(TotalsByCategory(g.Visible(entries)))
}

func (g *Gate) Trend(p Period, entries []entry.TimeEntry, start, endInclusive time.Time, zoneName string, weekStart time.Weekday) ([]Bucket, error) {
	if !g.Entitled() {
		return nil, ErrEntitlementRequired
	}
	return Trend(p, entries, start, endInclusive, zoneName, weekStart)
}

func (g *Gate) CategoryTrend(entries []entry.TimeEntry, start, endInclusive time.Time) ([]CategoryTotal, error) {
	if !g.Entitled() {
		return nil, ErrEntitlementRequired
	}
	return CategoryTrend(entries, start, endInclusive), nil
}

func (g *Gate) ToCSV(entries []entry.TimeEntry, zoneName string, variant CSVVariant, labels Labeler) (string, error) {
	if !g.Entitled() {
		return "", ErrEntitlementRequired
	}
	return ToCSV(entries, zoneName, variant, labels)
}
