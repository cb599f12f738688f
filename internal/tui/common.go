package tui

import (
	"fmt"
	"time"

	"github.com/sadopc/timetag/internal/entry"
	"github.com/sadopc/timetag/internal/i18n"
)

// viewState represents the currently active view.
type viewState int

const (
	viewDashboard viewState = iota
	viewCategories
	viewReports
	viewSettings
)

const viewCount = 4

// viewKeys are the message keys of the tab titles. The dashboard has no
// catalog entry and keeps its English name.
var viewKeys = []string{"", i18n.Categories, i18n.Reports, i18n.Settings}

var viewNames = []string{"Dashboard", "Categories", "Reports", "Settings"}

// --- Messages ---

type timerStartedMsg struct{}

type timerStoppedMsg struct {
	entry *entry.TimeEntry
}

type statusMsg struct {
	text    string
	isError bool
}

type tickMsg time.Time

type exportDoneMsg struct {
	path string
}

// --- Helpers ---

func formatDuration(d time.Duration) string {
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

func formatSeconds(secs int64) string {
	return formatDuration(time.Duration(secs) * time.Second)
}

func formatHours(secs int64) string {
	h := float64(secs) / 3600
	return fmt.Sprintf("%.1fh", h)
}

func errStatus(prefix string, err error) statusMsg {
	return statusMsg{text: fmt.Sprintf("%s: %v", prefix, err), isError: true}
}
