package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"runlog/internal/analysis"
	"runlog/internal/types"
)

// ActivitiesModel is the activities list screen model
type ActivitiesModel struct {
	api        API
	activities []types.Activity // newest first
	cursor     int
	offset     int
	pageSize   int
	loading    bool
	err        error

	// Rename state
	renaming bool
	saving   bool
	input    textinput.Model
	status   string
}

// NewActivitiesModel creates a new activities model
func NewActivitiesModel(api API) ActivitiesModel {
	ti := textinput.New()
	ti.Placeholder = "Activity name"
	ti.CharLimit = 255
	ti.Width = 40

	return ActivitiesModel{
		api:      api,
		pageSize: 15,
		loading:  true,
		input:    ti,
	}
}

// Init initializes the activities screen
func (m ActivitiesModel) Init() tea.Cmd {
	return m.load
}

type activitiesLoadedMsg struct {
	activities []types.Activity
	err        error
}

type activityRenamedMsg struct {
	id   string
	name string
	err  error
}

func (m ActivitiesModel) load() tea.Msg {
	ctx, cancel := withTimeout()
	defer cancel()
	activities, err := m.api.Activities(ctx, "")
	return activitiesLoadedMsg{activities: activities, err: err}
}

func (m ActivitiesModel) rename(id, name string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := withTimeout()
		defer cancel()
		err := m.api.RenameActivity(ctx, id, name)
		return activityRenamedMsg{id: id, name: name, err: err}
	}
}

// editing reports whether the rename input has focus
func (m ActivitiesModel) editing() bool {
	return m.renaming
}

func (m ActivitiesModel) selected() (types.Activity, bool) {
	i := m.offset + m.cursor
	if i < 0 || i >= len(m.activities) {
		return types.Activity{}, false
	}
	return m.activities[i], true
}

// pageLen is the number of rows on the current page
func (m ActivitiesModel) pageLen() int {
	n := len(m.activities) - m.offset
	if n > m.pageSize {
		n = m.pageSize
	}
	if n < 0 {
		n = 0
	}
	return n
}

// Update handles messages
func (m ActivitiesModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case activitiesLoadedMsg:
		m.loading = false
		m.err = msg.err
		m.activities = msg.activities
		if m.offset >= len(m.activities) {
			m.offset, m.cursor = 0, 0
		}
		if m.cursor >= m.pageLen() {
			m.cursor = 0
		}
		return m, nil

	case activityRenamedMsg:
		m.saving = false
		if msg.err != nil {
			m.status = errorStyle.Render(fmt.Sprintf("Rename failed: %v", msg.err))
			return m, nil
		}
		for i := range m.activities {
			if m.activities[i].ID == msg.id {
				m.activities[i].Name = msg.name
			}
		}
		m.status = successStyle.Render("Activity renamed")
		return m, nil

	case tea.KeyMsg:
		if m.renaming {
			return m.updateRename(msg)
		}
		return m.updateList(msg)
	}
	return m, nil
}

func (m ActivitiesModel) updateRename(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.renaming = false
		m.input.Blur()
		m.status = ""
		return m, nil
	case "enter":
		name := strings.TrimSpace(m.input.Value())
		if name == "" {
			m.status = errorStyle.Render("Name is required")
			return m, nil
		}
		a, ok := m.selected()
		if !ok {
			m.renaming = false
			return m, nil
		}
		m.renaming = false
		m.saving = true
		m.input.Blur()
		m.status = warningStyle.Render("Saving...")
		return m, m.rename(a.ID, name)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m ActivitiesModel) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		} else if m.offset > 0 {
			m.offset -= m.pageSize
			m.cursor = m.pageSize - 1
		}
	case "down", "j":
		if m.cursor < m.pageLen()-1 {
			m.cursor++
		} else if m.offset+m.pageSize < len(m.activities) {
			m.offset += m.pageSize
			m.cursor = 0
		}
	case "pgup":
		if m.offset > 0 {
			m.offset -= m.pageSize
			if m.offset < 0 {
				m.offset = 0
			}
			m.cursor = 0
		}
	case "pgdown":
		if m.offset+m.pageSize < len(m.activities) {
			m.offset += m.pageSize
			m.cursor = 0
		}
	case "r":
		m.loading = true
		m.status = ""
		return m, m.load
	case "e":
		a, ok := m.selected()
		if !ok || m.saving {
			return m, nil
		}
		m.renaming = true
		m.status = ""
		m.input.SetValue(a.Name)
		m.input.CursorEnd()
		return m, m.input.Focus()
	}
	return m, nil
}

// View renders the activities list
func (m ActivitiesModel) View() string {
	if m.loading {
		return "\n  Loading activities..."
	}

	if m.err != nil {
		return errorStyle.Render(fmt.Sprintf("\n  Error: %v", m.err))
	}

	if len(m.activities) == 0 {
		return "\n  No activities found. Press '5' to sync with Strava."
	}

	var sections []string

	startNum := m.offset + 1
	endNum := m.offset + m.pageLen()
	sections = append(sections, cardTitleStyle.Render(fmt.Sprintf("Activities (%d-%d of %d)", startNum, endNum, len(m.activities))))

	header := tableHeaderStyle.Render(fmt.Sprintf("  %-10s  %-30s  %8s  %8s  %7s  %4s",
		"Date", "Name", "Distance", "Time", "Pace", "HR"))
	sections = append(sections, header)

	for i := 0; i < m.pageLen(); i++ {
		a := m.activities[m.offset+i]

		pace, ok := analysis.CalculatePace(a.Distance, a.MovingTime)
		if !ok {
			pace = "-"
		}
		hr := "-"
		if a.AverageHeartrate != nil {
			hr = fmt.Sprintf("%.0f", *a.AverageHeartrate)
		}

		cursor := "  "
		if i == m.cursor {
			cursor = "> "
		}

		row := fmt.Sprintf("%s%-10s  %-30s  %6.2fmi  %8s  %7s  %4s",
			cursor,
			a.StartDateLocal.Format("Jan 02"),
			analysis.Truncate(a.Name, 30),
			a.Distance,
			analysis.FormatTimeFromSeconds(a.MovingTime),
			pace,
			hr,
		)

		if i == m.cursor {
			sections = append(sections, tableSelectedStyle.Render(row))
		} else {
			sections = append(sections, tableRowStyle.Render(row))
		}
	}

	if m.renaming {
		sections = append(sections, "", "  Rename: "+m.input.View(),
			statusStyle.Render("  enter: save  esc: cancel"))
	} else {
		if m.status != "" {
			sections = append(sections, "", "  "+m.status)
		}
		sections = append(sections, statusStyle.Render("  j/k: navigate  pgup/pgdn: page  e: rename  r: refresh"))
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}
