package report

import (
	"fmt"
	"time"

	"github.com/sadopc/timetag/internal/entry"
	"github.com/sadopc/timetag/internal/zone"
)

// Bucket is one contiguous local period of a trend.
type Bucket struct {
	Label        string
	Start        time.Time // local midnight of the first day
	TotalSeconds int64
}

// Period selects the bucket size of a trend.
type Period string

const (
	Daily   Period = "daily"
	Weekly  Period = "weekly"
	Monthly Period = "monthly"
)

const dateLayout = "2006-01-02"

// civil is a calendar date with no zone attached. Day arithmetic happens
// in UTC, where every day has 24 hours.
type civil struct{ t time.Time }

func civilOf(instant time.Time, loc *time.Location) civil {
	y, m, d := instant.In(loc).Date()
	return civil{time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

func (c civil) addDays(n int) civil { return civil{c.t.AddDate(0, 0, n)} }

func (c civil) addMonths(n int) civil { return civil{c.t.AddDate(0, n, 0)} }

func (c civil) after(o civil) bool { return c.t.After(o.t) }

func (c civil) String() string { return c.t.Format(dateLayout) }

func (c civil) in(loc *time.Location) time.Time {
	y, m, d := c.t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

func (c civil) weekStart(first time.Weekday) civil {
	back := (int(c.t.Weekday()) - int(first) + 7) % 7
	return c.addDays(-back)
}

func (c civil) monthStart() civil {
	y, m, _ := c.t.Date()
	return civil{time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)}
}

func weekLabel(start civil, first time.Weekday) string {
	if first != time.Monday {
		return start.String()
	}
	y, w := start.t.ISOWeek()
	return fmt.Sprintf("%04d-W%02d", y, w)
}

// DailyTrend returns one bucket per local calendar day in zoneName from
// the day of start through the day of endInclusive. Days without entries
// report zero.
func DailyTrend(entries []entry.TimeEntry, start, endInclusive time.Time, zoneName string) ([]Bucket, error) {
	loc, err := zone.Load(zoneName)
	if err != nil {
		return nil, err
	}
	first, last := civilOf(start, loc), civilOf(endInclusive, loc)

	var buckets []Bucket
	index := make(map[string]int)
	for d := first; !d.after(last); d = d.addDays(1) {
		index[d.String()] = len(buckets)
		buckets = append(buckets, Bucket{Label: d.String(), Start: d.in(loc)})
	}
	for _, e := range Between(entries, start, endInclusive) {
		if i, ok := index[civilOf(e.OccurredAtUTC, loc).String()]; ok {
			buckets[i].TotalSeconds += e.DurationSeconds
		}
	}
	return buckets, nil
}

// WeeklyTrend buckets by local weeks beginning on weekStart. Monday weeks
// are labelled with their ISO week ("2024-W09"), others with their first
// day.
func WeeklyTrend(entries []entry.TimeEntry, start, endInclusive time.Time, zoneName string, weekStart time.Weekday) ([]Bucket, error) {
	loc, err := zone.Load(zoneName)
	if err != nil {
		return nil, err
	}
	first := civilOf(start, loc).weekStart(weekStart)
	last := civilOf(endInclusive, loc).weekStart(weekStart)

	var buckets []Bucket
	index := make(map[string]int)
	for w := first; !w.after(last); w = w.addDays(7) {
		index[w.String()] = len(buckets)
		buckets = append(buckets, Bucket{Label: weekLabel(w, weekStart), Start: w.in(loc)})
	}
	for _, e := range Between(entries, start, endInclusive) {
		if i, ok := index[civilOf(e.OccurredAtUTC, loc).weekStart(weekStart).String()]; ok {
			buckets[i].TotalSeconds += e.DurationSeconds
		}
	}
	return buckets, nil
}

// MonthlyTrend buckets by local calendar month, labelled "2024-03".
func MonthlyTrend(entries []entry.TimeEntry, start, endInclusive time.Time, zoneName string) ([]Bucket, error) {
	loc, err := zone.Load(zoneName)
	if err != nil {
		return nil, err
	}
	first := civilOf(start, loc).monthStart()
	last := civilOf(endInclusive, loc).monthStart()

	var buckets []Bucket
	index := make(map[string]int)
	for m := first; !m.after(last); m = m.addMonths(1) {
		index[m.String()] = len(buckets)
		buckets = append(buckets, Bucket{Label: m.t.Format("2006-01"), Start: m.in(loc)})
	}
	for _, e := range Between(entries, start, endInclusive) {
		if i, ok := index[civilOf(e.OccurredAtUTC, loc).monthStart().String()]; ok {
			buckets[i].TotalSeconds += e.DurationSeconds
		}
	}
	return buckets, nil
}

// Trend dispatches on period.
func Trend(p Period, entries []entry.TimeEntry, start, endInclusive time.Time, zoneName string, weekStart time.Weekday) ([]Bucket, error) {
	switch p {
	case Daily:
		return DailyTrend(entries, start, endInclusive, zoneName)
	case Weekly:
		return WeeklyTrend(entries, start, endInclusive, zoneName, weekStart)
	case Monthly:
		return MonthlyTrend(entries, start, endInclusive, zoneName)
	}
	return nil, fmt.Errorf("unknown period %q", p)
}
