package tui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/timetag/internal/app"
	"github.com/sadopc/timetag/internal/category"
	"github.com/sadopc/timetag/internal/i18n"
)

var categoryIcons = []string{"briefcase", "book", "user", "code", "heart", "dumbbell", "music", "star"}

type categoriesModel struct {
	app    *app.App
	width  int
	height int

	categories []category.Category
	cursor     int
	confirming bool // true while waiting for a second "d"

	formActive bool
	form       *huh.Form

	// Form field pointers (survive value copies)
	formName *string
	formIcon *string
}

func newCategoriesModel(a *app.App) categoriesModel {
	name, icon := "", categoryIcons[0]
	return categoriesModel{
		app:      a,
		formName: &name,
		formIcon: &icon,
	}
}

func (c *categoriesModel) setSize(w, h int) {
	c.width = w
	c.height = h
}

type categoriesDataMsg struct {
	categories []category.Category
}

func (c categoriesModel) refresh() tea.Cmd {
	return func() tea.Msg {
		return categoriesDataMsg{categories: c.app.Categories.List()}
	}
}

func (c categoriesModel) update(msg tea.Msg) (categoriesModel, tea.Cmd) {
	if c.formActive && c.form != nil {
		return c.updateForm(msg)
	}

	switch msg := msg.(type) {
	case categoriesDataMsg:
		c.categories = msg.categories
		if c.cursor >= len(c.categories) {
			c.cursor = max(0, len(c.categories)-1)
		}
		return c, nil

	case tea.KeyMsg:
		return c.updateList(msg)
	}
	return c, nil
}

func (c categoriesModel) updateList(msg tea.KeyMsg) (categoriesModel, tea.Cmd) {
	if !key.Matches(msg, keys.Delete) {
		c.confirming = false
	}
	switch {
	case key.Matches(msg, keys.Up):
		if c.cursor > 0 {
			c.cursor--
		}
	case key.Matches(msg, keys.Down):
		if c.cursor < len(c.categories)-1 {
			c.cursor++
		}
	case key.Matches(msg, keys.New):
		return c.showNewCategoryForm()
	case key.Matches(msg, keys.Delete):
		if len(c.categories) == 0 {
			return c, nil
		}
		if !c.confirming {
			c.confirming = true
			return c, nil
		}
		c.confirming = false
		cat := c.categories[c.cursor]
		if err := c.app.Categories.Remove(cat.ID); err != nil {
			return c, func() tea.Msg { return errStatus("Remove failed", err) }
		}
		return c, tea.Batch(c.refresh(), func() tea.Msg {
			return statusMsg{text: fmt.Sprintf("Removed %s", cat.DisplayName)}
		})
	}
	return c, nil
}

func validateCategoryName(existing []category.Category) func(string) error {
	return func(s string) error {
		name := strings.TrimSpace(s)
		if name == "" {
			return category.ErrEmptyName
		}
		for _, c := range existing {
			if c.DisplayName == name {
				return category.ErrDuplicateName
			}
		}
		return nil
	}
}

func (c categoriesModel) showNewCategoryForm() (categoriesModel, tea.Cmd) {
	*c.formName = ""
	*c.formIcon = categoryIcons[0]

	iconOptions := make([]huh.Option[string], len(categoryIcons))
	for i, icon := range categoryIcons {
		iconOptions[i] = huh.NewOption(icon, icon)
	}

	c.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Category Name").Value(c.formName).Validate(validateCategoryName(c.categories)),
			huh.NewSelect[string]().Title("Icon").Options(iconOptions...).Value(c.formIcon),
		),
	).WithShowHelp(true).WithShowErrors(true)

	c.formActive = true
	return c, c.form.Init()
}

func (c categoriesModel) updateForm(msg tea.Msg) (categoriesModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			c.formActive = false
			c.form = nil
			return c, nil
		}
	}

	form, cmd := c.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		c.form = f
	}

	if c.form.State == huh.StateCompleted {
		c.formActive = false
		c.form = nil
		added, err := c.app.Categories.Add(*c.formName, *c.formIcon)
		if err != nil {
			if errors.Is(err, category.ErrEmptyName) {
				return c, nil
			}
			return c, func() tea.Msg { return errStatus("Add failed", err) }
		}
		return c, tea.Batch(c.refresh(), func() tea.Msg {
			return statusMsg{text: fmt.Sprintf("Added %s", added.DisplayName)}
		})
	}

	return c, cmd
}

func (c categoriesModel) view() string {
	w := c.width - 4
	if c.formActive && c.form != nil {
		title := titleStyle.Render("New Category")
		content := lipgloss.JoinVertical(lipgloss.Left, title, "", c.form.View())
		return panelStyle.Width(w).Render(content)
	}

	title := titleStyle.Render(c.app.Translator.T(i18n.Categories))
	if len(c.categories) == 0 {
		content := lipgloss.JoinVertical(lipgloss.Left,
			title,
			"",
			mutedStyle.Render("No categories yet. Press n to create one."),
		)
		return panelStyle.Width(w).Render(content)
	}

	var rows []string
	rows = append(rows, title)
	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render(fmt.Sprintf("  %-3s %-24s %-12s", "", "Name", "Icon")))

	for i, cat := range c.categories {
		colorDot := lipgloss.NewStyle().Foreground(categoryColor(i)).Render("●")
		cursor := "  "
		style := normalItemStyle
		if i == c.cursor {
			cursor = "> "
			style = selectedItemStyle
		}
		rows = append(rows, style.Render(fmt.Sprintf("%s%s %-24s %-12s", cursor, colorDot, cat.DisplayName, cat.Icon)))
	}

	rows = append(rows, "")
	if c.confirming && len(c.categories) > 0 {
		rows = append(rows, warningStyle.Render(fmt.Sprintf("  press d again to remove %s", c.categories[c.cursor].DisplayName)))
	} else {
		rows = append(rows, mutedStyle.Render("  n: new  d: remove"))
	}

	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}
