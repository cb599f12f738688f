package zone

import (
	"fmt"
	"time"
)

// ToAbsoluteUTC interprets the wall-clock fields of wall (its own location is
// ignored) as local time in zone and returns the matching UTC instant.
//
// Around DST transitions the offset in force before the transition wins:
// an ambiguous wall time resolves to its earlier instant, and a wall time
// inside a gap is shifted forward by the length of the gap.
func ToAbsoluteUTC(wall time.Time, zone string) (time.Time, error) {
	loc, err := Load(zone)
	if err != nil {
		return time.Time{}, err
	}
	return toAbsolute(wall, loc), nil
}

func toAbsolute(wall time.Time, loc *time.Location) time.Time {
	y, mo, d := wall.Date()
	h, mi, s := wall.Clock()
	naive := time.Date(y, mo, d, h, mi, s, wall.Nanosecond(), time.UTC)

	_, before := naive.Add(-24 * time.Hour).In(loc).Zone()
	_, after := naive.Add(24 * time.Hour).In(loc).Zone()

	early := naive.Add(-time.Duration(before) * time.Second)
	late := naive.Add(-time.Duration(after) * time.Second)

	var best time.Time
	for _, cand := range []time.Time{early, late} {
		if sameWall(cand.In(loc), naive) && (best.IsZero() || cand.Before(best)) {
			best = cand
		}
	}
	if best.IsZero() {
		// Nonexistent local time.
		best = early
	}
	return best.UTC()
}

func sameWall(a, b time.Time) bool {
	ay, amo, ad := a.Date()
	by, bmo, bd := b.Date()
	ah, ami, as := a.Clock()
	bh, bmi, bs := b.Clock()
	return ay == by && amo == bmo && ad == bd && ah == bh && ami == bmi && as == bs
}

// FormatInZone renders instant as wall time in zone using a Go layout.
func FormatInZone(instant time.Time, zone, layout string) (string, error) {
	loc, err := Load(zone)
	if err != nil {
		return "", err
	}
	return instant.In(loc).Format(layout), nil
}

// ParseInZone parses text as wall time in zone and returns the UTC instant.
func ParseInZone(text, zone, layout string) (time.Time, error) {
	loc, err := Load(zone)
	if err != nil {
		return time.Time{}, err
	}
	wall, err := time.Parse(layout, text)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse %q: %w", text, err)
	}
	return toAbsolute(wall, loc), nil
}

// LocalDate returns the calendar date of instant in loc as YYYY-MM-DD.
func LocalDate(instant time.Time, loc *time.Location) string {
	return instant.In(loc).Format(DateLayout)
}
