package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/sadopc/timetag/internal/app"
	"github.com/sadopc/timetag/internal/i18n"
	"github.com/sadopc/timetag/internal/store"
	"github.com/sadopc/timetag/internal/zone"
)

type setting struct {
	label string
	value string
}

type settingsModel struct {
	app    *app.App
	width  int
	height int

	settings   []setting
	records    []store.Record
	formActive bool
	form       *huh.Form

	// Form values as pointers (survive value copies)
	zoneName *string
	language *string
	pro      *bool
}

func newSettingsModel(a *app.App) settingsModel {
	z, lang, pro := "", "", false
	return settingsModel{
		app:      a,
		zoneName: &z,
		language: &lang,
		pro:      &pro,
	}
}

func (s *settingsModel) setSize(w, h int) {
	s.width = w
	s.height = h
}

type settingsDataMsg struct {
	settings []setting
	records  []store.Record
}

func (s settingsModel) refresh() tea.Cmd {
	return func() tea.Msg {
		records, err := s.app.Store.All()
		if err != nil {
			return errStatus("Settings error", err)
		}
		return settingsDataMsg{settings: s.current(), records: records}
	}
}

func (s settingsModel) current() []setting {
	cfg := s.app.Config
	pro := "free"
	if s.app.Entitlement.IsEntitled() {
		pro = "pro"
	}
	return []setting{
		{"Time zone", s.app.Zones.CurrentZone()},
		{s.app.Translator.T(i18n.Language), s.app.Translator.Language()},
		{"Plan", pro},
		{"Week starts on", cfg.WeekStart},
		{"CSV layout", cfg.CSVVariant},
		{"Export directory", cfg.ExportDir},
		{"Database", cfg.DBPath},
	}
}

func (s settingsModel) update(msg tea.Msg) (settingsModel, tea.Cmd) {
	if s.formActive && s.form != nil {
		return s.updateForm(msg)
	}

	switch msg := msg.(type) {
	case settingsDataMsg:
		s.settings = msg.settings
		s.records = msg.records
		return s, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Enter), key.Matches(msg, keys.New):
			return s.showForm()
		}
	}
	return s, nil
}

func validateZone(v string) error {
	if !zone.Valid(strings.TrimSpace(v)) {
		return zone.ErrUnknownZone
	}
	return nil
}

func (s settingsModel) showForm() (settingsModel, tea.Cmd) {
	*s.zoneName = s.app.Zones.CurrentZone()
	*s.language = s.app.Translator.Language()
	*s.pro = s.app.Entitlement.IsEntitled()

	langOptions := make([]huh.Option[string], 0, len(i18n.Supported()))
	for _, code := range i18n.Supported() {
		langOptions = append(langOptions, huh.NewOption(code, code))
	}

	s.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Time zone (IANA name)").Value(s.zoneName).Validate(validateZone),
			huh.NewSelect[string]().Title(s.app.Translator.T(i18n.Language)).Options(langOptions...).Value(s.language),
		).Title("General"),
		huh.NewGroup(
			huh.NewConfirm().Title("Pro unlocked").Affirmative("Yes").Negative("No").Value(s.pro),
		).Title("Plan"),
	).WithShowHelp(true).WithShowErrors(true)

	s.formActive = true
	return s, s.form.Init()
}

func (s settingsModel) updateForm(msg tea.Msg) (settingsModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			s.formActive = false
			s.form = nil
			return s, nil
		}
	}

	form, cmd := s.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		s.form = f
	}

	if s.form.State == huh.StateCompleted {
		s.formActive = false
		s.form = nil
		if err := s.save(); err != nil {
			return s, tea.Batch(s.refresh(), func() tea.Msg { return errStatus("Save failed", err) })
		}
		return s, tea.Batch(s.refresh(), func() tea.Msg { return statusMsg{text: "Settings saved"} })
	}

	return s, cmd
}

// save applies only the values that changed.
func (s settingsModel) save() error {
	if z := strings.TrimSpace(*s.zoneName); z != s.app.Zones.CurrentZone() {
		if err := s.app.Zones.SetZone(z); err != nil {
			return err
		}
	}
	if *s.language != s.app.Translator.Language() {
		if err := s.app.Translator.SetLanguage(*s.language); err != nil {
			return err
		}
	}
	if *s.pro != s.app.Entitlement.IsEntitled() {
		if err := s.app.Entitlement.SetPurchased(*s.pro); err != nil {
			return err
		}
	}
	return nil
}

func (s settingsModel) view() string {
	w := s.width - 4
	title := titleStyle.Render(s.app.Translator.T(i18n.Settings))

	if s.formActive && s.form != nil {
		return panelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left, title, "", s.form.View()),
		)
	}

	var rows []string
	rows = append(rows, title)
	rows = append(rows, "")

	for _, st := range s.settings {
		label := lipgloss.NewStyle().Width(24).Render(st.label)
		value := highlightStyle.Render(st.value)
		if st.value == "pro" {
			value = proBadgeStyle.Render("★ pro")
		}
		rows = append(rows, fmt.Sprintf("  %s %s", label, value))
	}

	if len(s.records) > 0 {
		rows = append(rows, "")
		rows = append(rows, mutedStyle.Render("  Stored keys"))
		for _, r := range s.records {
			rows = append(rows, mutedStyle.Render(fmt.Sprintf("    %-18s %8s  updated %s",
				r.Key, humanize.Bytes(uint64(len(r.Value))), humanize.Time(r.UpdatedAt))))
		}
	}

	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("Press enter to edit settings"))

	return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}
