package cli

import (
	"bytes"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sadopc/timetag/internal/app"
	"github.com/sadopc/timetag/internal/config"
	"github.com/sadopc/timetag/internal/entry"
	"github.com/sadopc/timetag/internal/report"
	"github.com/sadopc/timetag/internal/store"
)

// testRuntime wires a runtime around an in-memory store.
func testRuntime(t *testing.T) *runtime {
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
	a, err := app.New(cfg, s, zerolog.Nop())
	require.NoError(t, err)
	require.NoError(t, a.Zones.SetZone("UTC"))

	return &runtime{
		app:           a,
		isInteractive: func() bool { return false },
		runTUI:        func(*app.App) error { return nil },
	}
}

// executeCmd runs a cobra command and captures stdout/stderr.
func executeCmd(t *testing.T, r *runtime, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd(r)
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs(args)
	err := root.Execute()
	return buf.String(), err
}

func seed(t *testing.T, r *runtime, category string, secs int64, at time.Time) {
	t.Helper()
	ref := entry.Uncategorized
	if category != "" {
		c, err := r.app.Categories.Resolve(category)
		require.NoError(t, err)
		ref = c.Ref()
	}
	e, err := entry.New(secs, ref, at, "UTC")
	require.NoError(t, err)
	require.NoError(t, r.app.Entries.Append(e))
}

func TestRootWithoutTTYPrintsHelp(t *testing.T) {
	r := testRuntime(t)
	out, err := executeCmd(t, r)
	require.NoError(t, err)
	assert.Contains(t, out, "Personal time tracker")
}

func TestRootLaunchesTUIOnTTY(t *testing.T) {
	r := testRuntime(t)
	r.isInteractive = func() bool { return true }
	launched := false
	r.runTUI = func(a *app.App) error {
		launched = a == r.app
		return nil
	}
	_, err := executeCmd(t, r)
	require.NoError(t, err)
	assert.True(t, launched)
}

func TestTrackSavesEntry(t *testing.T) {
	r := testRuntime(t)
	out, err := executeCmd(t, r, "track", "Work", "--for", "200ms", "--tick", "5ms")
	require.NoError(t, err)
	assert.Contains(t, out, "Saved")
	assert.Contains(t, out, "Work")

	all, err := r.app.Entries.LoadAll()
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Positive(t, all[0].DurationSeconds)
	assert.Equal(t, "Work", r.app.Label(all[0].Category))
}

func TestTrackUnknownCategory(t *testing.T) {
	r := testRuntime(t)
	_, err := executeCmd(t, r, "track", "Gardening", "--for", "10ms")
	assert.Error(t, err)
}

func TestHistoryAndTotals(t *testing.T) {
	r := testRuntime(t)
	now := time.Now()
	seed(t, r, "Work", 600, now.Add(-2*time.Hour))
	seed(t, r, "Work", 300, now.Add(-time.Hour))
	seed(t, r, "Study", 120, now.Add(-30*time.Minute))
	seed(t, r, "Study", 999, now.AddDate(0, 0, -20))

	out, err := executeCmd(t, r, "history")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	assert.Contains(t, lines[0], "Study")
	assert.Contains(t, lines[0], "ago")
	assert.NotContains(t, out, "00:16:39", "entries older than the free window are hidden")
	assert.Contains(t, out, "Upgrade to Pro")

	out, err = executeCmd(t, r, "totals")
	require.NoError(t, err)
	assert.Contains(t, out, "Work                 00:15:00")
	assert.Contains(t, out, "Study                00:02:00")
	assert.Contains(t, out, "Total                00:17:00")

	_, err = executeCmd(t, r, "pro", "enable")
	require.NoError(t, err)
	out, err = executeCmd(t, r, "history", "--limit", "0")
	require.NoError(t, err)
	assert.Contains(t, out, "00:16:39")
}

func TestHistorySince(t *testing.T) {
	r := testRuntime(t)
	now := time.Now()
	seed(t, r, "Work", 300, now.Add(-time.Hour))
	seed(t, r, "Study", 120, now.AddDate(0, 0, -3))

	since := now.UTC().AddDate(0, 0, -1).Format("2006-01-02")
	out, err := executeCmd(t, r, "history", "--since", since)
	require.NoError(t, err)
	assert.Contains(t, out, "Work")
	assert.NotContains(t, out, "Study")

	_, err = executeCmd(t, r, "history", "--since", "last tuesday")
	assert.Error(t, err)
}

func TestTrendAndExportNeedPro(t *testing.T) {
	r := testRuntime(t)
	seed(t, r, "Work", 600, time.Now().Add(-time.Hour))

	_, err := executeCmd(t, r, "trend")
	assert.ErrorIs(t, err, report.ErrEntitlementRequired)
	_, err = executeCmd(t, r, "export")
	assert.ErrorIs(t, err, report.ErrEntitlementRequired)

	_, err = executeCmd(t, r, "pro", "enable")
	require.NoError(t, err)

	out, err := executeCmd(t, r, "trend", "daily", "--days", "3")
	require.NoError(t, err)
	assert.Len(t, strings.Split(strings.TrimSpace(out), "\n"), 3)

	out, err = executeCmd(t, r, "trend", "weekly")
	require.NoError(t, err)
	assert.Contains(t, out, "-W")

	out, err = executeCmd(t, r, "export", "json")
	require.NoError(t, err)
	assert.Contains(t, out, "Exported 1 entries")
	files, _ := os.ReadDir(r.app.Config.ExportDir)
	require.Len(t, files, 1)
	assert.True(t, strings.HasSuffix(files[0].Name(), ".json"))

	_, err = executeCmd(t, r, "trend", "hourly")
	assert.Error(t, err)
}

func TestCategoryCommands(t *testing.T) {
	r := testRuntime(t)

	out, err := executeCmd(t, r, "category", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Work")
	assert.Contains(t, out, "briefcase")

	_, err = executeCmd(t, r, "category", "add", "Reading", "--icon", "book-open")
	require.NoError(t, err)
	_, err = executeCmd(t, r, "category", "add", "Reading")
	assert.Error(t, err)

	seed(t, r, "Reading", 60, time.Now().Add(-time.Minute))
	_, err = executeCmd(t, r, "category", "rm", "Reading")
	require.NoError(t, err)

	out, err = executeCmd(t, r, "history")
	require.NoError(t, err)
	assert.Contains(t, out, "Unknown category")
}

func TestZoneLangPro(t *testing.T) {
	r := testRuntime(t)

	_, err := executeCmd(t, r, "zone", "set", "Asia/Tokyo")
	require.NoError(t, err)
	out, err := executeCmd(t, r, "zone", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "active: Asia/Tokyo")
	_, err = executeCmd(t, r, "zone", "set", "Mars/Base")
	assert.Error(t, err)

	out, err = executeCmd(t, r, "lang", "set", "ja")
	require.NoError(t, err)
	assert.Contains(t, out, "TimeTag")
	out, err = executeCmd(t, r, "lang", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "ja")
	_, err = executeCmd(t, r, "lang", "set", "xx")
	assert.Error(t, err)

	out, err = executeCmd(t, r, "pro", "status")
	require.NoError(t, err)
	assert.Contains(t, out, "pro: false")
	_, err = executeCmd(t, r, "pro", "enable")
	require.NoError(t, err)
	out, _ = executeCmd(t, r, "pro", "status")
	assert.Contains(t, out, "pro: true")
	_, _ = executeCmd(t, r, "pro", "disable")
	out, _ = executeCmd(t, r, "pro", "status")
	assert.Contains(t, out, "pro: false")
}

func TestClearRequiresConfirmation(t *testing.T) {
	r := testRuntime(t)
	seed(t, r, "", 60, time.Now().Add(-time.Minute))

	_, err := executeCmd(t, r, "clear")
	assert.Error(t, err)
	all, _ := r.app.Entries.LoadAll()
	assert.Len(t, all, 1)

	_, err = executeCmd(t, r, "clear", "--yes")
	require.NoError(t, err)
	all, _ = r.app.Entries.LoadAll()
	assert.Empty(t, all)

	out, err := executeCmd(t, r, "history")
	require.NoError(t, err)
	assert.Contains(t, out, "No entries yet")
}

func TestConfigExample(t *testing.T) {
	out, err := executeCmd(t, testRuntime(t), "config", "example")
	require.NoError(t, err)
	assert.Contains(t, out, "week_start")
}
