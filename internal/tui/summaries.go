package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"runlog/internal/analysis"
	"runlog/internal/types"
)

// chartWeeks is how many of the latest weeks the mileage chart covers
const chartWeeks = 16

// SummariesModel lists every week with activity, newest first, under a
// mileage trend chart
type SummariesModel struct {
	api      API
	weeks    []analysis.NumberedWeek
	cursor   int
	offset   int
	pageSize int
	loading  bool
	err      error
}

// NewSummariesModel creates a new summaries model
func NewSummariesModel(api API) SummariesModel {
	return SummariesModel{api: api, pageSize: 12, loading: true}
}

// Init loads the activities
func (m SummariesModel) Init() tea.Cmd {
	return m.load
}

type summariesLoadedMsg struct {
	weeks []analysis.NumberedWeek
	err   error
}

func (m SummariesModel) load() tea.Msg {
	ctx, cancel := withTimeout()
	defer cancel()
	activities, err := m.api.Activities(ctx, "")
	if err != nil {
		return summariesLoadedMsg{err: err}
	}
	return summariesLoadedMsg{weeks: analysis.WeeklySummaries(types.Entries(activities))}
}

// Update handles messages
func (m SummariesModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case summariesLoadedMsg:
		m.loading = false
		m.err = msg.err
		m.weeks = msg.weeks
		m.cursor, m.offset = 0, 0

	case tea.KeyMsg:
		switch msg.String() {
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
				if m.cursor < m.offset {
					m.offset = m.cursor
				}
			}
		case "down", "j":
			if m.cursor < len(m.weeks)-1 {
				m.cursor++
				if m.cursor >= m.offset+m.pageSize {
					m.offset = m.cursor - m.pageSize + 1
				}
			}
		case "r":
			m.loading = true
			return m, m.load
		}
	}
	return m, nil
}

// chartSeries returns weekly miles for the latest weeks, oldest first
func (m SummariesModel) chartSeries() []float64 {
	n := len(m.weeks)
	if n > chartWeeks {
		n = chartWeeks
	}
	series := make([]float64, n)
	for i := 0; i < n; i++ {
		series[n-1-i] = m.weeks[i].Summary.TotalMiles
	}
	return series
}

// View renders the summaries screen
func (m SummariesModel) View() string {
	if m.loading {
		return "\n  Loading weekly summaries..."
	}
	if m.err != nil {
		return errorStyle.Render(fmt.Sprintf("\n  Error: %v", m.err))
	}
	if len(m.weeks) == 0 {
		return "\n  No activities yet. Press '5' to sync with Strava."
	}

	var sections []string

	if series := m.chartSeries(); len(series) > 1 {
		graph := asciigraph.Plot(series,
			asciigraph.Height(8),
			asciigraph.Width(60),
			asciigraph.Precision(1),
			asciigraph.Caption("miles per week"),
		)
		sections = append(sections, cardStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
			cardTitleStyle.Render(fmt.Sprintf("Weekly Mileage - last %d weeks", len(series))), graph)))
	}

	header := tableHeaderStyle.Render(fmt.Sprintf("  %4s  %-14s  %4s  %8s  %8s  %7s  %6s",
		"Week", "Starting", "Runs", "Miles", "Time", "Pace", "HR"))
	sections = append(sections, header)

	end := m.offset + m.pageSize
	if end > len(m.weeks) {
		end = len(m.weeks)
	}
	for i := m.offset; i < end; i++ {
		w := m.weeks[i]
		pace := "-"
		if p, ok := analysis.AveragePace(w.Summary); ok {
			pace = p
		}
		hr := "-"
		if v, ok := w.Summary.AverageHeartRate(); ok {
			hr = fmt.Sprintf("%.0f", v)
		}

		cursor := "  "
		if i == m.cursor {
			cursor = "> "
		}
		row := fmt.Sprintf("%s%4d  %-14s  %4d  %8.2f  %8s  %7s  %6s",
			cursor,
			w.Number,
			analysis.FormatDate(w.Start),
			w.Summary.TotalRuns,
			w.Summary.TotalMiles,
			analysis.FormatTimeFromHours(float64(w.Summary.TotalTime)/3600),
			pace,
			hr,
		)
		if i == m.cursor {
			sections = append(sections, tableSelectedStyle.Render(row))
		} else {
			sections = append(sections, tableRowStyle.Render(row))
		}
	}

	sections = append(sections, statusStyle.Render(fmt.Sprintf("  %d weeks  j/k: navigate  r: reload", len(m.weeks))))
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}
