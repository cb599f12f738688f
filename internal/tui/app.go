// Package tui is the interactive terminal interface.
package tui

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/timetag/internal/app"
	"github.com/sadopc/timetag/internal/export"
	"github.com/sadopc/timetag/internal/i18n"
	"github.com/sadopc/timetag/internal/report"
	"github.com/sadopc/timetag/internal/timer"
)

// Run starts the full-screen interface and blocks until the user quits.
// A session still running at that point is saved.
func Run(a *app.App) error {
	p := tea.NewProgram(NewApp(a), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run tui: %w", err)
	}
	return saveActive(a)
}

func saveActive(a *app.App) error {
	snap := a.Timer.Snapshot()
	if !snap.Active() {
		return nil
	}
	saved, err := a.Timer.Stop(snap.Category)
	if err != nil {
		return fmt.Errorf("save running session: %w", err)
	}
	if saved != nil {
		a.Log.Info().Str("entry", saved.ID).Msg("running session saved on exit")
	}
	return nil
}

// App is the root Bubble Tea model.
type App struct {
	app    *app.App
	width  int
	height int

	activeView    viewState
	showHelp      bool
	exportPicking bool
	exportCursor  int

	dashboard  dashboardModel
	categories categoriesModel
	reports    reportsModel
	settings   settingsModel

	help    help.Model
	status  string
	errored bool
}

func NewApp(a *app.App) App {
	h := help.New()
	h.ShowAll = false

	return App{
		app:        a,
		activeView: viewDashboard,
		dashboard:  newDashboardModel(a),
		categories: newCategoriesModel(a),
		reports:    newReportsModel(a),
		settings:   newSettingsModel(a),
		help:       h,
	}
}

func (a App) Init() tea.Cmd {
	return tea.Batch(
		a.dashboard.Init(),
		tickCmd(),
	)
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.help.Width = msg.Width
		contentHeight := a.height - 4 // header + footer
		a.dashboard.setSize(a.width, contentHeight)
		a.categories.setSize(a.width, contentHeight)
		a.reports.setSize(a.width, contentHeight)
		a.settings.setSize(a.width, contentHeight)
		return a, nil

	case tea.KeyMsg:
		if a.exportPicking {
			return a.updateExportPicker(msg)
		}

		// If a child view is capturing input (e.g. form), delegate first.
		if a.isFormActive() {
			return a.updateActiveView(msg)
		}

		switch {
		case key.Matches(msg, keys.Export):
			a.exportPicking = true
			a.exportCursor = 0
			return a, nil
		case key.Matches(msg, keys.Quit):
			return a, tea.Quit
		case key.Matches(msg, keys.Help):
			a.showHelp = !a.showHelp
			a.help.ShowAll = a.showHelp
			return a, nil
		case key.Matches(msg, keys.Tab1):
			return a.switchTo(viewDashboard)
		case key.Matches(msg, keys.Tab2):
			return a.switchTo(viewCategories)
		case key.Matches(msg, keys.Tab3):
			return a.switchTo(viewReports)
		case key.Matches(msg, keys.Tab4):
			return a.switchTo(viewSettings)
		case key.Matches(msg, keys.Tab):
			return a.switchTo((a.activeView + 1) % viewCount)
		}

	case tickMsg:
		// Elapsed time only advances on ticks, whichever view is open.
		a.app.Timer.Tick()
		return a, tickCmd()

	case statusMsg:
		a.status = msg.text
		a.errored = msg.isError
		return a, nil

	case timerStoppedMsg:
		a.errored = false
		if msg.entry == nil {
			a.status = "Nothing recorded"
		} else {
			a.status = fmt.Sprintf("Saved %s to %s", formatSeconds(msg.entry.DurationSeconds), a.app.Label(msg.entry.Category))
		}
		return a, nil

	case timerStartedMsg:
		a.status = "Timer started"
		a.errored = false
		return a, nil

	case exportDoneMsg:
		a.status = "Exported to " + msg.path
		a.errored = false
		a.exportPicking = false
		return a, nil
	}

	return a.updateActiveView(msg)
}

func (a App) switchTo(v viewState) (tea.Model, tea.Cmd) {
	a.activeView = v
	return a, a.refreshCurrentView()
}

func (a App) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch a.activeView {
	case viewDashboard:
		a.dashboard, cmd = a.dashboard.update(msg)
	case viewCategories:
		a.categories, cmd = a.categories.update(msg)
	case viewReports:
		a.reports, cmd = a.reports.update(msg)
	case viewSettings:
		a.settings, cmd = a.settings.update(msg)
	}
	return a, cmd
}

func (a App) isFormActive() bool {
	switch a.activeView {
	case viewDashboard:
		return a.dashboard.picking
	case viewCategories:
		return a.categories.formActive
	case viewSettings:
		return a.settings.formActive
	}
	return false
}

func (a App) refreshCurrentView() tea.Cmd {
	switch a.activeView {
	case viewDashboard:
		return a.dashboard.loadData()
	case viewCategories:
		return a.categories.refresh()
	case viewReports:
		return a.reports.refresh()
	case viewSettings:
		return a.settings.refresh()
	}
	return nil
}

func (a App) View() string {
	if a.width == 0 {
		return "Loading..."
	}

	header := a.renderHeader()
	footer := a.renderFooter()

	var content string
	switch a.activeView {
	case viewDashboard:
		content = a.dashboard.view()
	case viewCategories:
		content = a.categories.view()
	case viewReports:
		content = a.reports.view()
	case viewSettings:
		content = a.settings.view()
	}

	headerHeight := lipgloss.Height(header)
	footerHeight := lipgloss.Height(footer)
	contentHeight := a.height - headerHeight - footerHeight
	if contentHeight < 1 {
		contentHeight = 1
	}

	if a.exportPicking {
		content = a.renderExportPicker()
	}

	content = lipgloss.NewStyle().
		Width(a.width).
		Height(contentHeight).
		Render(content)

	return lipgloss.JoinVertical(lipgloss.Left, header, content, footer)
}

func (a App) tabTitle(v viewState) string {
	if k := viewKeys[v]; k != "" {
		return a.app.Translator.T(k)
	}
	return viewNames[v]
}

func (a App) renderHeader() string {
	var tabs []string
	for i := range viewNames {
		name := a.tabTitle(viewState(i))
		if viewState(i) == a.activeView {
			tabs = append(tabs, activeTabStyle.Render(name))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(name))
		}
	}

	tabRow := lipgloss.JoinHorizontal(lipgloss.Bottom, tabs...)

	title := lipgloss.NewStyle().Bold(true).Foreground(colorPrimary).Render("timetag")
	if a.app.Gate.Entitled() {
		title += " " + proBadgeStyle.Render("PRO")
	}
	gap := a.width - lipgloss.Width(title) - lipgloss.Width(tabRow) - 4
	if gap < 1 {
		gap = 1
	}
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return headerStyle.Render(
		lipgloss.JoinHorizontal(lipgloss.Bottom, title, spacer, tabRow),
	)
}

func (a App) renderFooter() string {
	helpView := a.help.View(keys)

	status := ""
	if a.status != "" {
		style := mutedStyle
		if a.errored {
			style = errorStyle
		}
		status = style.Render(" " + a.status)
	}

	timerInfo := ""
	if snap := a.app.Timer.Snapshot(); snap.Active() {
		elapsed := formatDuration(snap.Elapsed())
		timerInfo = successStyle.Render(" ● " + elapsed)
		if snap.State == timer.Paused {
			timerInfo = warningStyle.Render(" ⏸ " + elapsed)
		}
	}

	left := footerStyle.Render(helpView)
	right := timerInfo + status

	gap := a.width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if gap < 1 {
		gap = 1
	}
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return lipgloss.JoinHorizontal(lipgloss.Bottom, left, spacer, right)
}

func (a App) renderExportPicker() string {
	title := titleStyle.Render("Export Format")
	var rows []string
	rows = append(rows, title)
	rows = append(rows, "")
	if !a.app.Gate.Entitled() {
		rows = append(rows, upsellPanelStyle.Render(a.app.Translator.T(i18n.Upsell)))
		rows = append(rows, "")
	}
	for i, f := range export.Formats {
		cursor := "  "
		style := normalItemStyle
		if i == a.exportCursor {
			cursor = "> "
			style = selectedItemStyle
		}
		rows = append(rows, style.Render(cursor+strings.ToUpper(f)))
	}
	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  enter: export  esc: cancel"))
	rows = append(rows, mutedStyle.Render("  to "+a.app.Config.ExportDir))

	w := a.width - 4
	return activePanelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (a App) updateExportPicker(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		if a.exportCursor > 0 {
			a.exportCursor--
		}
	case key.Matches(msg, keys.Down):
		if a.exportCursor < len(export.Formats)-1 {
			a.exportCursor++
		}
	case key.Matches(msg, keys.Enter):
		a.exportPicking = false
		return a, a.doExport(export.Formats[a.exportCursor])
	case key.Matches(msg, keys.Back):
		a.exportPicking = false
	}
	return a, nil
}

func (a App) doExport(format string) tea.Cmd {
	return func() tea.Msg {
		entries, err := a.app.Visible()
		if err != nil {
			return errStatus("Export error", err)
		}
		path, err := a.app.Exporter().Export(format, entries)
		if errors.Is(err, report.ErrEntitlementRequired) {
			return statusMsg{text: a.app.Translator.T(i18n.Upsell), isError: true}
		}
		if err != nil {
			return errStatus("Export error", err)
		}
		return exportDoneMsg{path: path}
	}
}
