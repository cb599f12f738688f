package tui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/timetag/internal/app"
	"github.com/sadopc/timetag/internal/category"
	"github.com/sadopc/timetag/internal/i18n"
	"github.com/sadopc/timetag/internal/report"
)

type reportMode struct {
	name   string
	period report.Period
	days   int
}

var reportModes = []reportMode{
	{"Daily", report.Daily, 7},
	{"Weekly", report.Weekly, 28},
	{"Monthly", report.Monthly, 180},
}

type reportsModel struct {
	app    *app.App
	width  int
	height int

	mode       int
	entitled   bool
	buckets    []report.Bucket
	totals     []report.CategoryTotal
	categories []category.Category

	chart barchart.Model
}

func newReportsModel(a *app.App) reportsModel {
	return reportsModel{
		app:   a,
		chart: barchart.New(60, 12),
	}
}

func (r *reportsModel) setSize(w, h int) {
	r.width = w
	r.height = h
}

type reportsDataMsg struct {
	entitled   bool
	buckets    []report.Bucket
	totals     []report.CategoryTotal
	categories []category.Category
}

func (r reportsModel) refresh() tea.Cmd {
	m := reportModes[r.mode]
	return func() tea.Msg {
		visible, err := r.app.Visible()
		if err != nil {
			return errStatus("Report error", err)
		}
		msg := reportsDataMsg{
			entitled:   r.app.Gate.Entitled(),
			totals:     report.SortTotals(report.TotalsByCategory(visible)),
			categories: r.app.Categories.List(),
		}
		buckets, err := r.app.Trend(m.period, m.days)
		switch {
		case errors.Is(err, report.ErrEntitlementRequired):
			return msg
		case err != nil:
			return errStatus("Report error", err)
		}
		msg.buckets = buckets

		totals, err := r.app.CategoryTrend(m.days)
		switch {
		case errors.Is(err, report.ErrEntitlementRequired):
		case err != nil:
			return errStatus("Report error", err)
		default:
			msg.totals = totals
		}
		return msg
	}
}

func (r reportsModel) update(msg tea.Msg) (reportsModel, tea.Cmd) {
	switch msg := msg.(type) {
	case reportsDataMsg:
		r.entitled = msg.entitled
		r.buckets = msg.buckets
		r.totals = msg.totals
		r.categories = msg.categories
		r.buildChart()
		return r, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Left):
			r.mode = (r.mode + len(reportModes) - 1) % len(reportModes)
			return r, r.refresh()
		case key.Matches(msg, keys.Right):
			r.mode = (r.mode + 1) % len(reportModes)
			return r, r.refresh()
		}
	}
	return r, nil
}

func (r *reportsModel) buildChart() {
	chartWidth := r.width - 8
	if chartWidth < 20 {
		chartWidth = 20
	}
	chartHeight := 12
	if r.height > 30 {
		chartHeight = 16
	}

	r.chart = barchart.New(chartWidth, chartHeight)
	if len(r.buckets) == 0 {
		return
	}

	bars := make([]barchart.BarData, 0, len(r.buckets))
	for _, b := range r.buckets {
		style := lipgloss.NewStyle().Foreground(colorPrimary)
		if b.TotalSeconds == 0 {
			style = lipgloss.NewStyle().Foreground(colorSubtle)
		}
		value := barchart.BarValue{
			Name:  b.Label,
			Value: float64(b.TotalSeconds) / 3600.0,
			Style: style,
		}
		bars = append(bars, barchart.BarData{
			Label:  shortLabel(b.Label),
			Values: []barchart.BarValue{value},
		})
	}

	r.chart.PushAll(bars)
	r.chart.Draw()
}

// shortLabel trims a daily label to MM-DD so narrow bars stay readable.
func shortLabel(label string) string {
	if len(label) == len("2006-01-02") {
		return label[5:]
	}
	return label
}

func (r reportsModel) view() string {
	w := r.width - 4
	tr := r.app.Translator

	var tabs []string
	for i, m := range reportModes {
		if i == r.mode {
			tabs = append(tabs, activeTabStyle.Render(m.name))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(m.name))
		}
	}
	modeTabs := lipgloss.JoinHorizontal(lipgloss.Bottom, tabs...)

	m := reportModes[r.mode]
	rangeLabel := mutedStyle.Render(fmt.Sprintf("last %d days  %s", m.days, r.app.Zones.CurrentZone()))
	header := lipgloss.JoinHorizontal(lipgloss.Bottom,
		titleStyle.Render(tr.T(i18n.Reports)), "  ", modeTabs, "  ", rangeLabel,
	)

	var trend string
	if r.entitled {
		trend = lipgloss.JoinVertical(lipgloss.Left, r.chart.View(), "", r.renderBucketTotal())
	} else {
		trend = upsellPanelStyle.Render(tr.T(i18n.Upsell))
	}

	nav := mutedStyle.Render("  ←/→: switch period  e: export")

	return panelStyle.Width(w).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			header, "", trend, "", r.renderTotalsTable(w), "", nav,
		),
	)
}

func (r reportsModel) renderBucketTotal() string {
	var sum int64
	for _, b := range r.buckets {
		sum += b.TotalSeconds
	}
	return fmt.Sprintf("  %s %s", r.app.Translator.T(i18n.Total), highlightStyle.Render(formatHours(sum)))
}

func (r reportsModel) renderTotalsTable(w int) string {
	tr := r.app.Translator
	if len(r.totals) == 0 {
		return mutedStyle.Render("  " + tr.T(i18n.NoEntries))
	}

	var rows []string
	rows = append(rows, mutedStyle.Render(fmt.Sprintf("  %-22s %10s %7s", tr.T(i18n.Categories), "Duration", "Share")))
	rows = append(rows, mutedStyle.Render("  "+strings.Repeat("─", max(0, min(w-6, 41)))))

	var sum int64
	for _, t := range r.totals {
		sum += t.TotalSeconds
	}
	for _, t := range r.totals {
		idx := -1
		if id, ok := t.Category.ID(); ok {
			for i, c := range r.categories {
				if c.ID == id {
					idx = i
					break
				}
			}
		}
		colorDot := lipgloss.NewStyle().Foreground(categoryColor(idx)).Render("●")
		share := 0.0
		if sum > 0 {
			share = 100 * float64(t.TotalSeconds) / float64(sum)
		}
		rows = append(rows, fmt.Sprintf("  %s %-20s %10s %6.1f%%",
			colorDot, r.app.Label(t.Category), formatSeconds(t.TotalSeconds), share,
		))
	}
	rows = append(rows, fmt.Sprintf("  %-22s %10s", tr.T(i18n.Total), formatSeconds(sum)))

	return strings.Join(rows, "\n")
}
