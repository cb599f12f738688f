// Package app wires the timetag services around one durable store.
package app

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/sadopc/timetag/internal/category"
	"github.com/sadopc/timetag/internal/config"
	"github.com/sadopc/timetag/internal/entitlement"
	"github.com/sadopc/timetag/internal/entry"
	"github.com/sadopc/timetag/internal/export"
	"github.com/sadopc/timetag/internal/i18n"
	"github.com/sadopc/timetag/internal/report"
	"github.com/sadopc/timetag/internal/store"
	"github.com/sadopc/timetag/internal/timer"
	"github.com/sadopc/timetag/internal/zone"
)

// App holds every service the CLI and TUI work with. Services are
// injected; nothing here is a package-level global.
type App struct {
	Config      *config.Config
	Log         zerolog.Logger
	Store       *store.Store
	Entries     *entry.Store
	Zones       *zone.Adapter
	Categories  *category.Registry
	Entitlement *entitlement.Store
	Translator  *i18n.Translator
	Timer       *timer.Engine
	Gate        *report.Gate
	Now         func() time.Time
}

// Open opens the database named by cfg and wires the services.
func Open(cfg *config.Config, log zerolog.Logger) (*App, error) {
	s, err := store.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	a, err := New(cfg, s, log)
	if err != nil {
		s.Close()
		return nil, err
	}
	return a, nil
}

// New wires the services over an already opened store.
func New(cfg *config.Config, s *store.Store, log zerolog.Logger) (*App, error) {
	cats, err := category.Load(s, log)
	if err != nil {
		return nil, err
	}

	entries := entry.NewStore(s, log)
	zones := zone.NewAdapter(s, log)
	ent := entitlement.NewStore(s, log)

	a := &App{
		Config:      cfg,
		Log:         log,
		Store:       s,
		Entries:     entries,
		Zones:       zones,
		Categories:  cats,
		Entitlement: ent,
		Translator:  i18n.NewTranslator(s, cfg.Language, log),
		Now:         time.Now,
	}
	clock := func() time.Time { return a.Now() }
	a.Timer = timer.NewEngine(entries, zones, log, timer.WithClock(clock))
	a.Gate = report.NewGate(ent).WithClock(clock)
	log.Debug().Str("db", cfg.DBPath).Str("zone", zones.CurrentZone()).Msg("app wired")
	return a, nil
}

func (a *App) Close() error {
	return a.Store.Close()
}

// Visible loads the history and applies the free-tier window.
func (a *App) Visible() ([]entry.TimeEntry, error) {
	all, err := a.Entries.LoadAll()
	if err != nil {
		return nil, err
	}
	return a.Gate.Visible(all), nil
}

// Label renders a category reference, using the translated label for
// uncategorized entries.
func (a *App) Label(ref entry.CategoryRef) string {
	if ref.IsUncategorized() {
		return a.Translator.T(i18n.NoCategory)
	}
	return a.Categories.Label(ref)
}

// Exporter returns an exporter configured for the current zone.
func (a *App) Exporter() export.Exporter {
	return export.Exporter{
		Dir:  a.Config.ExportDir,
		Gate: a.Gate,
		Options: export.Options{
			Zone:    a.Zones.CurrentZone(),
			Variant: report.CSVVariant(a.Config.CSVVariant),
			Labels:  a,
		},
		Now: a.Now,
	}
}

// Trend computes a gated trend over the trailing days ending now.
func (a *App) Trend(p report.Period, days int) ([]report.Bucket, error) {
	all, err := a.Entries.LoadAll()
	if err != nil {
		return nil, err
	}
	start, now := a.window(days)
	return a.Gate.Trend(p, all, start, now, a.Zones.CurrentZone(), a.Config.Weekday())
}

// CategoryTrend totals the last days local days per category, busiest
// first. It needs the paid tier.
func (a *App) CategoryTrend(days int) ([]report.CategoryTotal, error) {
	all, err := a.Entries.LoadAll()
	if err != nil {
		return nil, err
	}
	start, now := a.window(days)
	return a.Gate.CategoryTrend(all, start, now)
}

// window spans from local midnight days-1 days ago up to now.
func (a *App) window(days int) (start, now time.Time) {
	now = a.Now()
	loc := a.Zones.Location()
	y, m, d := now.In(loc).Date()
	return time.Date(y, m, d-days+1, 0, 0, 0, 0, loc), now
}

// Today returns the entries that occurred on the current local day.
func (a *App) Today() ([]entry.TimeEntry, error) {
	all, err := a.Entries.LoadAll()
	if err != nil {
		return nil, err
	}
	loc := a.Zones.Location()
	now := a.Now()
	today := zone.LocalDate(now, loc)
	var out []entry.TimeEntry
	for _, e := range all {
		if zone.LocalDate(e.OccurredAtUTC, loc) == today {
			out = append(out, e)
		}
	}
	return out, nil
}
