package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"runlog/internal/analysis"
	"runlog/internal/types"
)

// WeeklyModel shows one Monday-to-Sunday week at a time
type WeeklyModel struct {
	api        API
	entries    []analysis.Entry
	weeks      []time.Time // most recent first
	current    time.Time
	week       analysis.Week
	loading    bool
	refetching bool
	status     string
	err        error
}

// NewWeeklyModel creates a new weekly model
func NewWeeklyModel(api API) WeeklyModel {
	return WeeklyModel{api: api, loading: true}
}

// Init loads the activities
func (m WeeklyModel) Init() tea.Cmd {
	return m.load
}

type weeklyLoadedMsg struct {
	activities []types.Activity
	err        error
}

func (m WeeklyModel) load() tea.Msg {
	ctx, cancel := withTimeout()
	defer cancel()
	activities, err := m.api.Activities(ctx, "")
	return weeklyLoadedMsg{activities: activities, err: err}
}

// Update handles messages
func (m WeeklyModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case weeklyLoadedMsg:
		m.loading = false
		m.err = msg.err
		if msg.err != nil {
			return m, nil
		}
		m.entries = types.Entries(msg.activities)
		m.weeks = analysis.AvailableWeeks(m.entries)
		if m.current.IsZero() || !containsWeek(m.weeks, m.current) {
			m.current = analysis.MondayOf(time.Now())
			if len(m.weeks) > 0 {
				m.current = m.weeks[0]
			}
		}
		m.week = analysis.WeekData(m.entries, m.current)

	case RefetchDoneMsg:
		if !m.refetching {
			return m, nil
		}
		m.refetching = false
		if msg.Err != nil {
			m.status = errorStyle.Render(fmt.Sprintf("Refetch failed: %v", msg.Err))
			return m, nil
		}
		m.status = successStyle.Render(fmt.Sprintf("Fetched %d activities, %d stored", msg.Result.Fetched, msg.Result.Total))
		m.loading = true
		return m, m.load

	case tea.KeyMsg:
		switch msg.String() {
		case "left", "h":
			m = m.step(1)
		case "right", "l":
			m = m.step(-1)
		case "r":
			m.loading = true
			return m, m.load
		case "f":
			// The trigger stays disabled until the in-flight refetch returns
			if m.refetching {
				return m, nil
			}
			m.refetching = true
			m.status = warningStyle.Render("Refetching from Strava...")
			return m, refetchCmd(m.api)
		}
	}
	return m, nil
}

// step moves to an adjacent week: +1 older, -1 newer
func (m WeeklyModel) step(dir int) WeeklyModel {
	if next, ok := analysis.AdjacentWeek(m.weeks, m.current, dir); ok {
		m.current = next
		m.week = analysis.WeekData(m.entries, m.current)
	}
	return m
}

func containsWeek(weeks []time.Time, w time.Time) bool {
	for _, x := range weeks {
		if x.Equal(w) {
			return true
		}
	}
	return false
}

// View renders the weekly screen
func (m WeeklyModel) View() string {
	if m.loading {
		return "\n  Loading activities..."
	}
	if m.err != nil {
		return errorStyle.Render(fmt.Sprintf("\n  Error: %v", m.err))
	}
	if len(m.weeks) == 0 {
		return lipgloss.JoinVertical(lipgloss.Left,
			"\n  No activities yet. Press 'f' to fetch from Strava.",
			"  "+m.status,
		)
	}

	title := cardTitleStyle.Render(fmt.Sprintf("Week of %s - %s",
		m.week.Start.Format("Jan 2"), m.week.End().Format("Jan 2, 2006")))

	days := cardStyle.Render(lipgloss.JoinVertical(lipgloss.Left, title, m.renderDays()))
	summary := cardStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
		cardTitleStyle.Render("Summary"), m.renderSummary()))

	help := statusStyle.Render("  h/l: older/newer week  f: refetch from Strava  r: reload")
	return lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.JoinHorizontal(lipgloss.Top, days, " ", summary),
		"  "+m.status,
		help,
	)
}

func (m WeeklyModel) renderDays() string {
	var peak float64
	for _, d := range m.week.Days {
		if d.Miles > peak {
			peak = d.Miles
		}
	}

	lines := make([]string, 0, len(m.week.Days))
	for _, d := range m.week.Days {
		timeStr := "-"
		if d.Time > 0 {
			timeStr = analysis.FormatTimeSimple(d.Time)
		}
		lines = append(lines, fmt.Sprintf("%-7s %s %6.2f mi  %7s",
			d.Label, RenderBar(d.Miles, peak, 20), d.Miles, timeStr))
	}
	return strings.Join(lines, "\n")
}

func (m WeeklyModel) renderSummary() string {
	s := m.week.Summary
	pace := "N/A"
	if p, ok := analysis.AveragePace(s); ok {
		pace = p + " /mi"
	}
	hr := "N/A"
	if v, ok := s.AverageHeartRate(); ok {
		hr = fmt.Sprintf("%.0f bpm", v)
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		RenderMetric("Runs", fmt.Sprintf("%d", s.TotalRuns)),
		RenderMetric("Distance", fmt.Sprintf("%.2f mi", s.TotalMiles)),
		RenderMetric("Time", analysis.FormatTimeFromSeconds(s.TotalTime)),
		RenderMetric("Avg pace", pace),
		RenderMetric("Avg heart rate", hr),
		RenderMetric("Calories", fmt.Sprintf("%.0f", s.TotalCalories)),
	)
}
