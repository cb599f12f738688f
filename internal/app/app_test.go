package app

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sadopc/timetag/internal/config"
	"github.com/sadopc/timetag/internal/entry"
	"github.com/sadopc/timetag/internal/report"
	"github.com/sadopc/timetag/internal/store"
)

func testApp(t *testing.T) *App {
	t.Helper()
	s, err := store.NewMemory()
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	cfg := &config.Config{
		DBPath:     ":memory:",
		ExportDir:  t.TempDir(),
		WeekStart:  "monday",
		CSVVariant: "basic",
		Language:   "en",
	}
	a, err := New(cfg, s, zerolog.Nop())
	require.NoError(t, err)
	require.NoError(t, a.Zones.SetZone("Asia/Tokyo"))
	return a
}

func TestTrackedSessionIsVisible(t *testing.T) {
	a := testApp(t)
	work, err := a.Categories.Resolve("Work")
	require.NoError(t, err)

	require.NoError(t, a.Timer.Start(work.Ref()))
	for i := 0; i < 90; i++ {
		a.Timer.Tick()
	}
	saved, err := a.Timer.Stop(work.Ref())
	require.NoError(t, err)
	require.NotNil(t, saved)
	assert.Equal(t, "Asia/Tokyo", saved.OriginTimeZone)

	visible, err := a.Visible()
	require.NoError(t, err)
	require.Len(t, visible, 1)
	assert.Equal(t, "Work", a.Label(visible[0].Category))

	today, err := a.Today()
	require.NoError(t, err)
	assert.Len(t, today, 1)
}

func TestFreeTierHidesOldEntriesAndTrends(t *testing.T) {
	a := testApp(t)
	now := time.Date(2024, 3, 31, 12, 0, 0, 0, time.UTC)
	a.Now = func() time.Time { return now }

	for d := 0; d < 30; d++ {
		e, err := entry.New(60, entry.Uncategorized, now.AddDate(0, 0, -d).Add(-time.Minute), "UTC")
		require.NoError(t, err)
		require.NoError(t, a.Entries.Append(e))
	}

	visible, err := a.Visible()
	require.NoError(t, err)
	assert.Len(t, visible, 7)

	_, err = a.Trend(report.Daily, 7)
	assert.ErrorIs(t, err, report.ErrEntitlementRequired)
	_, err = a.Exporter().Export("csv", visible)
	assert.ErrorIs(t, err, report.ErrEntitlementRequired)

	require.NoError(t, a.Entitlement.SetPurchased(true))
	visible, err = a.Visible()
	require.NoError(t, err)
	assert.Len(t, visible, 30)

	buckets, err := a.Trend(report.Daily, 7)
	require.NoError(t, err)
	assert.Len(t, buckets, 7)
	for _, b := range buckets {
		assert.Equal(t, int64(60), b.TotalSeconds, b.Label)
	}
}

func TestCategoryTrendCoversWindow(t *testing.T) {
	a := testApp(t)
	now := time.Date(2024, 3, 31, 12, 0, 0, 0, time.UTC)
	a.Now = func() time.Time { return now }

	work, err := a.Categories.Resolve("Work")
	require.NoError(t, err)
	for _, at := range []time.Time{now.Add(-time.Hour), now.AddDate(0, 0, -3), now.AddDate(0, 0, -10)} {
		e, err := entry.New(600, work.Ref(), at, "UTC")
		require.NoError(t, err)
		require.NoError(t, a.Entries.Append(e))
	}

	_, err = a.CategoryTrend(7)
	assert.ErrorIs(t, err, report.ErrEntitlementRequired)

	require.NoError(t, a.Entitlement.SetPurchased(true))
	totals, err := a.CategoryTrend(7)
	require.NoError(t, err)
	require.Len(t, totals, 1)
	assert.Equal(t, work.Ref(), totals[0].Category)
	assert.Equal(t, int64(1200), totals[0].TotalSeconds)

	totals, err = a.CategoryTrend(30)
	require.NoError(t, err)
	assert.Equal(t, int64(1800), totals[0].TotalSeconds)
}

func TestExporterUsesConfig(t *testing.T) {
	a := testApp(t)
	require.NoError(t, a.Entitlement.SetPurchased(true))
	a.Now = func() time.Time { return time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC) }

	e, err := entry.New(120, entry.Uncategorized, a.Now(), "UTC")
	require.NoError(t, err)

	path, err := a.Exporter().Export("csv", []entry.TimeEntry{e})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(a.Config.ExportDir, "timetag-export-2024-03-01.csv"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "Date,Time (min),Category\n2024-03-01 09:00:00,2,No Category\n", string(data))
}

func TestLabelFollowsLanguage(t *testing.T) {
	a := testApp(t)
	require.NoError(t, a.Translator.SetLanguage("es"))
	assert.Equal(t, "Sin categoría", a.Label(entry.Uncategorized))
	assert.Equal(t, "Unknown category", a.Label(entry.Known("gone")))
}

func TestOpenCreatesDatabase(t *testing.T) {
	cfg := &config.Config{DBPath: filepath.Join(t.TempDir(), "db", "timetag.db"), ExportDir: t.TempDir(), Language: "en"}
	a, err := Open(cfg, zerolog.Nop())
	require.NoError(t, err)
	require.NoError(t, a.Close())

	_, err = os.Stat(cfg.DBPath)
	assert.False(t, errors.Is(err, os.ErrNotExist))
}
