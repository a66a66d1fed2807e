package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"runlog/internal/analysis"
	"runlog/internal/types"
)

type blocksMode int

const (
	blocksList blocksMode = iota
	blocksForm
	blocksConfirmDelete
	blocksWeeks
)

// Form field order
const (
	fieldRaceName = iota
	fieldIdentifier
	fieldRaceDate
	fieldStartDate
	fieldDurationWeeks
	fieldCount
)

var fieldLabels = [fieldCount]string{"Race name", "Identifier", "Race date", "Start date", "Weeks"}

// BlocksModel manages training blocks
type BlocksModel struct {
	api     API
	blocks  []types.TrainingBlock
	cursor  int
	mode    blocksMode
	loading bool
	err     error
	status  string

	// Form state. editID is empty when creating.
	inputs   [fieldCount]textinput.Model
	focus    int
	editID   string
	original types.TrainingBlock

	// Weeks view
	detail   *types.TrainingBlockWeeks
	viewport viewport.Model
	width    int
	height   int
	ready    bool
}

// NewBlocksModel creates a new training blocks model
func NewBlocksModel(api API, width, height int) BlocksModel {
	m := BlocksModel{
		api:     api,
		loading: true,
		width:   width,
		height:  height,
	}

	placeholders := [fieldCount]string{"Boston Marathon", "boston-2025", "YYYY-MM-DD", "YYYY-MM-DD", "16"}
	for i := range m.inputs {
		ti := textinput.New()
		ti.Placeholder = placeholders[i]
		ti.CharLimit = 100
		ti.Width = 30
		m.inputs[i] = ti
	}

	if width > 0 && height > 0 {
		m.viewport = viewport.New(width, height-8)
		m.ready = true
	}
	return m
}

// Init loads the blocks
func (m BlocksModel) Init() tea.Cmd {
	return m.load
}

type blocksLoadedMsg struct {
	blocks []types.TrainingBlock
	err    error
}

type blockSavedMsg struct {
	block types.TrainingBlock
	err   error
}

type blockDeletedMsg struct {
	err error
}

type blockWeeksLoadedMsg struct {
	weeks types.TrainingBlockWeeks
	err   error
}

func (m BlocksModel) load() tea.Msg {
	ctx, cancel := withTimeout()
	defer cancel()
	blocks, err := m.api.TrainingBlocks(ctx)
	return blocksLoadedMsg{blocks: blocks, err: err}
}

func (m BlocksModel) loadWeeks(id string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := withTimeout()
		defer cancel()
		weeks, err := m.api.TrainingBlockWeeks(ctx, id)
		return blockWeeksLoadedMsg{weeks: weeks, err: err}
	}
}

func (m BlocksModel) remove(id string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := withTimeout()
		defer cancel()
		return blockDeletedMsg{err: m.api.DeleteTrainingBlock(ctx, id)}
	}
}

// editing reports whether the form has focus
func (m BlocksModel) editing() bool {
	return m.mode == blocksForm
}

func (m BlocksModel) selected() (types.TrainingBlock, bool) {
	if m.cursor < 0 || m.cursor >= len(m.blocks) {
		return types.TrainingBlock{}, false
	}
	return m.blocks[m.cursor], true
}

// Update handles messages
func (m BlocksModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case blocksLoadedMsg:
		m.loading = false
		m.err = msg.err
		m.blocks = msg.blocks
		if m.cursor >= len(m.blocks) {
			m.cursor = max(len(m.blocks)-1, 0)
		}
		return m, nil

	case blockSavedMsg:
		if msg.err != nil {
			m.status = errorStyle.Render(fmt.Sprintf("Save failed: %v", msg.err))
			return m, nil
		}
		m.mode = blocksList
		m.status = successStyle.Render(fmt.Sprintf("Saved %s", msg.block.RaceName))
		return m, m.load

	case blockDeletedMsg:
		m.mode = blocksList
		if msg.err != nil {
			m.status = errorStyle.Render(fmt.Sprintf("Delete failed: %v", msg.err))
			return m, nil
		}
		m.status = successStyle.Render("Training block deleted")
		return m, m.load

	case blockWeeksLoadedMsg:
		if msg.err != nil {
			m.mode = blocksList
			m.status = errorStyle.Render(fmt.Sprintf("Loading weeks failed: %v", msg.err))
			return m, nil
		}
		weeks := msg.weeks
		m.detail = &weeks
		if m.ready {
			m.viewport.SetContent(m.renderWeeks())
			m.viewport.GotoTop()
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if !m.ready {
			m.viewport = viewport.New(msg.Width, msg.Height-8)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = msg.Height - 8
		}
		if m.detail != nil {
			m.viewport.SetContent(m.renderWeeks())
		}
		return m, nil

	case tea.KeyMsg:
		switch m.mode {
		case blocksForm:
			return m.updateForm(msg)
		case blocksConfirmDelete:
			return m.updateConfirm(msg)
		case blocksWeeks:
			return m.updateWeeks(msg)
		}
		return m.updateList(msg)
	}
	return m, nil
}

func (m BlocksModel) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.blocks)-1 {
			m.cursor++
		}
	case "r":
		m.loading = true
		m.status = ""
		return m, m.load
	case "n":
		return m.openForm(types.TrainingBlock{})
	case "e":
		if b, ok := m.selected(); ok {
			return m.openForm(b)
		}
	case "d":
		if _, ok := m.selected(); ok {
			m.mode = blocksConfirmDelete
			m.status = ""
		}
	case "enter":
		if b, ok := m.selected(); ok {
			m.mode = blocksWeeks
			m.detail = nil
			m.status = ""
			return m, m.loadWeeks(b.ID)
		}
	}
	return m, nil
}

func (m BlocksModel) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y":
		if b, ok := m.selected(); ok {
			m.status = warningStyle.Render("Deleting...")
			return m, m.remove(b.ID)
		}
		m.mode = blocksList
	case "n", "esc":
		m.mode = blocksList
	}
	return m, nil
}

func (m BlocksModel) updateWeeks(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "esc" || msg.String() == "backspace" {
		m.mode = blocksList
		m.detail = nil
		return m, nil
	}
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// openForm shows the form, prefilled from b when editing
func (m BlocksModel) openForm(b types.TrainingBlock) (tea.Model, tea.Cmd) {
	m.mode = blocksForm
	m.status = ""
	m.editID = b.ID
	m.original = b

	values := [fieldCount]string{b.RaceName, b.Identifier, b.RaceDate, b.StartDate, ""}
	if b.DurationWeeks > 0 {
		values[fieldDurationWeeks] = strconv.Itoa(b.DurationWeeks)
	}
	for i := range m.inputs {
		m.inputs[i].SetValue(values[i])
		m.inputs[i].Blur()
	}
	m.focus = fieldRaceName
	return m, m.inputs[m.focus].Focus()
}

func (m BlocksModel) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.mode = blocksList
		m.status = ""
		return m, nil
	case "tab", "down":
		return m.focusField((m.focus + 1) % fieldCount)
	case "shift+tab", "up":
		return m.focusField((m.focus + fieldCount - 1) % fieldCount)
	case "enter":
		return m.submit()
	}

	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd
}

func (m BlocksModel) focusField(i int) (tea.Model, tea.Cmd) {
	m.inputs[m.focus].Blur()
	m.focus = i
	return m, m.inputs[m.focus].Focus()
}

func (m BlocksModel) value(field int) string {
	return strings.TrimSpace(m.inputs[field].Value())
}

// submit sends a create, or an update carrying only the changed fields
func (m BlocksModel) submit() (tea.Model, tea.Cmd) {
	weeks := 0
	if raw := m.value(fieldDurationWeeks); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			m.status = errorStyle.Render("Weeks must be a whole number")
			return m, nil
		}
		weeks = n
	}

	api := m.api
	m.status = warningStyle.Render("Saving...")

	if m.editID == "" {
		req := types.CreateTrainingBlockRequest{
			RaceName:      m.value(fieldRaceName),
			Identifier:    m.value(fieldIdentifier),
			RaceDate:      m.value(fieldRaceDate),
			StartDate:     m.value(fieldStartDate),
			DurationWeeks: weeks,
		}
		return m, func() tea.Msg {
			ctx, cancel := withTimeout()
			defer cancel()
			b, err := api.CreateTrainingBlock(ctx, req)
			return blockSavedMsg{block: b, err: err}
		}
	}

	orig := m.original
	var req types.UpdateTrainingBlockRequest
	changed := func(v, old string) *string {
		if v == old {
			return nil
		}
		return &v
	}
	req.RaceName = changed(m.value(fieldRaceName), orig.RaceName)
	req.Identifier = changed(m.value(fieldIdentifier), orig.Identifier)
	req.RaceDate = changed(m.value(fieldRaceDate), orig.RaceDate)
	req.StartDate = changed(m.value(fieldStartDate), orig.StartDate)
	if weeks != orig.DurationWeeks {
		req.DurationWeeks = &weeks
	}

	id := m.editID
	return m, func() tea.Msg {
		ctx, cancel := withTimeout()
		defer cancel()
		b, err := api.UpdateTrainingBlock(ctx, id, req)
		return blockSavedMsg{block: b, err: err}
	}
}

// View renders the training blocks screen
func (m BlocksModel) View() string {
	if m.loading {
		return "\n  Loading training blocks..."
	}
	if m.err != nil {
		return errorStyle.Render(fmt.Sprintf("\n  Error: %v", m.err))
	}

	switch m.mode {
	case blocksForm:
		return m.renderForm()
	case blocksWeeks:
		if m.detail == nil {
			return "\n  Loading block weeks..."
		}
		if !m.ready {
			return "\n  Initializing..."
		}
		footer := statusStyle.Render("  j/k: scroll  esc: back")
		return lipgloss.JoinVertical(lipgloss.Left, m.viewport.View(), footer)
	}

	var sections []string
	sections = append(sections, cardTitleStyle.Render("Training Blocks"))

	if len(m.blocks) == 0 {
		sections = append(sections, "  No training blocks yet. Press 'n' to create one.")
	} else {
		header := tableHeaderStyle.Render(fmt.Sprintf("  %-24s  %-16s  %-10s  %-10s  %5s  %9s",
			"Race", "Identifier", "Race date", "Start", "Weeks", "Remaining"))
		sections = append(sections, header)

		for i, b := range m.blocks {
			cursor := "  "
			if i == m.cursor {
				cursor = "> "
			}
			row := fmt.Sprintf("%s%-24s  %-16s  %-10s  %-10s  %5d  %9d",
				cursor,
				analysis.Truncate(b.RaceName, 24),
				analysis.Truncate(b.Identifier, 16),
				b.RaceDate,
				b.StartDate,
				b.DurationWeeks,
				b.WeeksRemaining,
			)
			if i == m.cursor {
				sections = append(sections, tableSelectedStyle.Render(row))
			} else {
				sections = append(sections, tableRowStyle.Render(row))
			}
		}
	}

	if m.mode == blocksConfirmDelete {
		if b, ok := m.selected(); ok {
			sections = append(sections, "", warningStyle.Render(fmt.Sprintf("  Delete %s? (y/n)", b.RaceName)))
		}
	} else if m.status != "" {
		sections = append(sections, "", "  "+m.status)
	}

	sections = append(sections, statusStyle.Render("  n: new  e: edit  d: delete  enter: weeks  r: refresh"))
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m BlocksModel) renderForm() string {
	title := "New Training Block"
	if m.editID != "" {
		title = "Edit " + m.original.RaceName
	}

	lines := []string{cardTitleStyle.Render(title)}
	for i := range m.inputs {
		label := metricLabelStyle.Render(fieldLabels[i])
		if i == m.focus {
			label = helpKeyStyle.Width(16).Render(fieldLabels[i])
		}
		lines = append(lines, label+m.inputs[i].View())
	}
	form := cardStyle.Render(strings.Join(lines, "\n"))

	sections := []string{form}
	if m.status != "" {
		sections = append(sections, "  "+m.status)
	}
	sections = append(sections, statusStyle.Render("  tab/shift+tab: field  enter: save  esc: cancel"))
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m BlocksModel) renderWeeks() string {
	if m.detail == nil {
		return ""
	}
	d := m.detail
	b := d.Block

	var lines []string
	lines = append(lines, cardTitleStyle.Render(fmt.Sprintf("%s - %s", b.RaceName, b.RaceDate)))
	lines = append(lines, RenderMetric("Starts", b.StartDate))
	lines = append(lines, RenderMetric("Duration", fmt.Sprintf("%d weeks", b.DurationWeeks)))
	lines = append(lines, RenderMetric("Weeks to race", strconv.Itoa(b.WeeksRemaining)))
	lines = append(lines, "")

	peak := 0.0
	for _, w := range d.Weeks {
		peak = max(peak, w.Summary.TotalMiles)
	}

	lines = append(lines, tableHeaderStyle.Render(fmt.Sprintf("%4s  %-10s  %-10s  %4s  %7s  %8s  %7s  %s",
		"Week", "Start", "End", "Runs", "Miles", "Time", "Pace", "")))
	for _, w := range d.Weeks {
		pace := w.AveragePace
		if pace == "" {
			pace = "-"
		}
		lines = append(lines, tableRowStyle.Render(fmt.Sprintf("%4d  %-10s  %-10s  %4d  %7.2f  %8s  %7s  %s",
			w.WeekNumber,
			w.WeekStart,
			w.WeekEnd,
			w.Summary.TotalRuns,
			w.Summary.TotalMiles,
			analysis.FormatTimeSimple(w.Summary.TotalTime),
			pace,
			RenderBar(w.Summary.TotalMiles, peak, 20),
		)))
	}
	return strings.Join(lines, "\n")
}
