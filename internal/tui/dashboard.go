package tui

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/sadopc/timetag/internal/app"
	"github.com/sadopc/timetag/internal/category"
	"github.com/sadopc/timetag/internal/entry"
	"github.com/sadopc/timetag/internal/i18n"
	"github.com/sadopc/timetag/internal/report"
	"github.com/sadopc/timetag/internal/timer"
)

const recentLimit = 5

type pickPurpose int

const (
	pickStart pickPurpose = iota
	pickRetag
)

type dashboardModel struct {
	app    *app.App
	width  int
	height int

	todayTotal    int64
	todayTotals   []report.CategoryTotal
	recentEntries []entry.TimeEntry
	categories    []category.Category

	// Category picker state
	picking      bool
	purpose      pickPurpose
	pickerCursor int
}

func newDashboardModel(a *app.App) dashboardModel {
	return dashboardModel{app: a}
}

func (d dashboardModel) Init() tea.Cmd {
	return d.loadData()
}

func (d *dashboardModel) setSize(w, h int) {
	d.width = w
	d.height = h
}

type dashboardDataMsg struct {
	todayTotal    int64
	todayTotals   []report.CategoryTotal
	recentEntries []entry.TimeEntry
	categories    []category.Category
}

func (d dashboardModel) loadData() tea.Cmd {
	return func() tea.Msg {
		today, err := d.app.Today()
		if err != nil {
			return errStatus("Load error", err)
		}
		visible, err := d.app.Visible()
		if err != nil {
			return errStatus("Load error", err)
		}
		return dashboardDataMsg{
			todayTotal:    report.Sum(today),
			todayTotals:   report.SortTotals(report.TotalsByCategory(today)),
			recentEntries: mostRecent(visible, recentLimit),
			categories:    d.app.Categories.List(),
		}
	}
}

// mostRecent returns up to n entries, newest first.
func mostRecent(entries []entry.TimeEntry, n int) []entry.TimeEntry {
	out := append([]entry.TimeEntry(nil), entries...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].OccurredAtUTC.After(out[j].OccurredAtUTC)
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}

// pickerRefs lists the picker choices: every category, then uncategorized.
func (d dashboardModel) pickerRefs() []entry.CategoryRef {
	refs := make([]entry.CategoryRef, 0, len(d.categories)+1)
	for _, c := range d.categories {
		refs = append(refs, c.Ref())
	}
	return append(refs, entry.Uncategorized)
}

func (d dashboardModel) update(msg tea.Msg) (dashboardModel, tea.Cmd) {
	switch msg := msg.(type) {
	case dashboardDataMsg:
		d.todayTotal = msg.todayTotal
		d.todayTotals = msg.todayTotals
		d.recentEntries = msg.recentEntries
		d.categories = msg.categories
		return d, nil

	case tea.KeyMsg:
		if d.picking {
			return d.updatePicker(msg)
		}

		snap := d.app.Timer.Snapshot()
		switch {
		case key.Matches(msg, keys.Start):
			if snap.Active() {
				return d, nil
			}
			d.picking = true
			d.purpose = pickStart
			d.pickerCursor = 0
			return d, nil

		case key.Matches(msg, keys.Retag):
			if !snap.Active() {
				return d, nil
			}
			d.picking = true
			d.purpose = pickRetag
			d.pickerCursor = d.indexOf(snap.Category)
			return d, nil

		case key.Matches(msg, keys.Stop):
			if !snap.Active() {
				return d, nil
			}
			return d.stopTimer(snap.Category)

		case key.Matches(msg, keys.Discard):
			if err := d.app.Timer.Discard(); err != nil {
				return d, nil
			}
			return d, func() tea.Msg { return statusMsg{text: "Session discarded"} }

		case key.Matches(msg, keys.Pause):
			if err := d.app.Timer.Toggle(); err != nil && !errors.Is(err, timer.ErrInvalidTransition) {
				return d, func() tea.Msg { return errStatus("Error", err) }
			}
			return d, nil
		}
	}
	return d, nil
}

func (d dashboardModel) indexOf(ref entry.CategoryRef) int {
	for i, r := range d.pickerRefs() {
		if r == ref {
			return i
		}
	}
	return 0
}

func (d dashboardModel) updatePicker(msg tea.KeyMsg) (dashboardModel, tea.Cmd) {
	refs := d.pickerRefs()
	switch {
	case key.Matches(msg, keys.Up):
		if d.pickerCursor > 0 {
			d.pickerCursor--
		}
	case key.Matches(msg, keys.Down):
		if d.pickerCursor < len(refs)-1 {
			d.pickerCursor++
		}
	case key.Matches(msg, keys.Enter):
		ref := refs[d.pickerCursor]
		d.picking = false
		if d.purpose == pickRetag {
			if err := d.app.Timer.SetCategory(ref); err != nil {
				return d, func() tea.Msg { return errStatus("Error", err) }
			}
			return d, nil
		}
		return d.startTimer(ref)
	case key.Matches(msg, keys.Back):
		d.picking = false
	}
	return d, nil
}

func (d dashboardModel) startTimer(ref entry.CategoryRef) (dashboardModel, tea.Cmd) {
	if err := d.app.Timer.Start(ref); err != nil {
		return d, func() tea.Msg { return errStatus("Error", err) }
	}
	return d, func() tea.Msg { return timerStartedMsg{} }
}

func (d dashboardModel) stopTimer(ref entry.CategoryRef) (dashboardModel, tea.Cmd) {
	saved, err := d.app.Timer.Stop(ref)
	if err != nil {
		return d, func() tea.Msg { return errStatus("Could not save session", err) }
	}
	return d, tea.Batch(
		d.loadData(),
		func() tea.Msg { return timerStoppedMsg{entry: saved} },
	)
}

func (d dashboardModel) colorOf(ref entry.CategoryRef) lipgloss.Color {
	id, ok := ref.ID()
	if !ok {
		return colorMuted
	}
	for i, c := range d.categories {
		if c.ID == id {
			return categoryColor(i)
		}
	}
	return colorMuted
}

func (d dashboardModel) dot(ref entry.CategoryRef) string {
	return lipgloss.NewStyle().Foreground(d.colorOf(ref)).Render("●")
}

func (d dashboardModel) view() string {
	if d.width < 20 {
		return "Terminal too small"
	}

	contentWidth := d.width - 4

	timerPanel := d.renderTimerPanel(contentWidth)
	summaryPanel := d.renderSummaryPanel(contentWidth)

	var bottomPanel string
	if d.picking {
		bottomPanel = d.renderCategoryPicker(contentWidth)
	} else {
		bottomPanel = d.renderRecentPanel(contentWidth)
	}

	return lipgloss.JoinVertical(lipgloss.Left, timerPanel, summaryPanel, bottomPanel)
}

func (d dashboardModel) renderTimerPanel(w int) string {
	tr := d.app.Translator
	snap := d.app.Timer.Snapshot()

	if snap.Active() {
		clock := tr.Clock(snap.ElapsedSeconds)
		var timeDisplay, indicator string
		if snap.State == timer.Paused {
			timeDisplay = timerPausedStyle.Width(w - 6).Render(clock)
			indicator = warningStyle.Render("⏸  " + strings.ToUpper(tr.T(i18n.Pause)))
		} else {
			timeDisplay = timerRunningStyle.Width(w - 6).Render(clock)
			indicator = successStyle.Render("●  " + strings.ToUpper(tr.T(i18n.Start)))
		}
		categoryLine := d.dot(snap.Category) + " " + highlightStyle.Render(d.app.Label(snap.Category))

		content := lipgloss.JoinVertical(lipgloss.Center, timeDisplay, indicator, categoryLine)
		return activePanelStyle.Width(w).Render(content)
	}

	timeDisplay := timerStyle.Width(w - 6).Render(tr.Clock(0))
	indicator := mutedStyle.Render("■  " + strings.ToUpper(tr.T(i18n.Stop)))
	hint := mutedStyle.Render(fmt.Sprintf("s: %s", tr.T(i18n.StartTracking)))

	content := lipgloss.JoinVertical(lipgloss.Center, timeDisplay, indicator, hint)
	return panelStyle.Width(w).Render(content)
}

func (d dashboardModel) renderSummaryPanel(w int) string {
	tr := d.app.Translator
	title := titleStyle.Render(tr.T(i18n.Total))
	total := highlightStyle.Render(formatSeconds(d.todayTotal))
	header := fmt.Sprintf("%s  %s", title, total)

	if len(d.todayTotals) == 0 {
		content := lipgloss.JoinVertical(lipgloss.Left,
			header,
			mutedStyle.Render(tr.T(i18n.NoEntries)),
		)
		return panelStyle.Width(w).Render(content)
	}

	var rows []string
	rows = append(rows, header)
	for _, t := range d.todayTotals {
		row := fmt.Sprintf("  %s %-20s %s",
			d.dot(t.Category),
			d.app.Label(t.Category),
			formatSeconds(t.TotalSeconds),
		)
		rows = append(rows, row)
	}

	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

func (d dashboardModel) renderRecentPanel(w int) string {
	tr := d.app.Translator
	title := titleStyle.Render(tr.T(i18n.History))
	if len(d.recentEntries) == 0 {
		content := lipgloss.JoinVertical(lipgloss.Left,
			title,
			mutedStyle.Render(tr.T(i18n.NoEntries)),
		)
		return panelStyle.Width(w).Render(content)
	}

	loc := d.app.Zones.Location()
	var rows []string
	rows = append(rows, title)
	for _, e := range d.recentEntries {
		row := fmt.Sprintf("  %s %s  %-16s %s  %s",
			d.dot(e.Category),
			e.Local(loc).Format("01-02 15:04"),
			d.app.Label(e.Category),
			formatSeconds(e.DurationSeconds),
			mutedStyle.Render(humanize.RelTime(e.OccurredAtUTC, d.app.Now(), "ago", "from now")),
		)
		rows = append(rows, row)
	}

	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

func (d dashboardModel) renderCategoryPicker(w int) string {
	title := titleStyle.Render(d.app.Translator.T(i18n.Categories))

	var rows []string
	rows = append(rows, title)
	for i, ref := range d.pickerRefs() {
		cursor := "  "
		style := normalItemStyle
		if i == d.pickerCursor {
			cursor = "> "
			style = selectedItemStyle
		}
		rows = append(rows, style.Render(fmt.Sprintf("%s%s %s", cursor, d.dot(ref), d.app.Label(ref))))
	}
	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  enter: select  esc: cancel"))

	return activePanelStyle.Width(w).Render(strings.Join(rows, "\n"))
}
