package tui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// HelpModel is the help screen model
type HelpModel struct{}

// NewHelpModel creates a new help model
func NewHelpModel() HelpModel {
	return HelpModel{}
}

// Init initializes the help screen
func (m HelpModel) Init() tea.Cmd {
	return nil
}

// Update handles messages
func (m HelpModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	return m, nil
}

// View renders the help screen
func (m HelpModel) View() string {
	var sections []string

	sections = append(sections, cardTitleStyle.Render("Keyboard Shortcuts"))

	sections = append(sections, m.renderSection("Navigation", []keyHelp{
		{"1", "Weekly view"},
		{"2", "Weekly summaries"},
		{"3", "Activities list"},
		{"4", "Training blocks"},
		{"5", "Sync screen"},
		{"?", "Help (this screen)"},
		{"esc", "Back / close help"},
		{"q", "Quit"},
	}))

	sections = append(sections, m.renderSection("Weekly View", []keyHelp{
		{"h / left", "Older week"},
		{"l / right", "Newer week"},
		{"f", "Refetch from Strava"},
		{"r", "Reload"},
	}))

	sections = append(sections, m.renderSection("Activities List", []keyHelp{
		{"j / down", "Move cursor down"},
		{"k / up", "Move cursor up"},
		{"pgdn / pgup", "Next / previous page"},
		{"e", "Rename activity"},
		{"enter / esc", "Save / cancel rename"},
		{"r", "Reload"},
	}))

	sections = append(sections, m.renderSection("Training Blocks", []keyHelp{
		{"n", "New block"},
		{"e", "Edit block"},
		{"d", "Delete block"},
		{"enter", "Show block weeks"},
		{"tab", "Next form field"},
	}))

	sections = append(sections, m.renderSection("Sync Screen", []keyHelp{
		{"s / enter", "Start sync"},
	}))

	sections = append(sections, m.renderNotes())

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

type keyHelp struct {
	key  string
	desc string
}

func (m HelpModel) renderSection(title string, keys []keyHelp) string {
	lines := []string{"", sectionStyle.Render(title)}
	for _, k := range keys {
		lines = append(lines, "  "+RenderKeyHelp(k.key, k.desc))
	}
	return strings.Join(lines, "\n")
}

func (m HelpModel) renderNotes() string {
	lines := []string{"", sectionStyle.Render("Notes"), ""}

	notes := []struct {
		name string
		desc string
	}{
		{"Weeks", "Run Monday through Sunday in local time."},
		{"Pace", "Average minutes per mile over the week's total time and distance."},
		{"Training block week", "Week 1 starts on the block's start date, in 7-day steps."},
	}

	for _, n := range notes {
		lines = append(lines, "  "+helpKeyStyle.Render(n.name))
		lines = append(lines, "  "+helpDescStyle.Render(n.desc))
		lines = append(lines, "")
	}
	return strings.Join(lines, "\n")
}
