package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"runlog/internal/apiclient"
	"runlog/internal/types"
)

// refetchTimeout covers a full sync plus a browser authorization
const refetchTimeout = apiclient.RefetchTimeout

// RefetchDoneMsg is sent when a refetch finishes
type RefetchDoneMsg struct {
	Result types.RefetchResponse
	Err    error
}

func refetchCmd(api API) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), refetchTimeout)
		defer cancel()
		res, err := api.Refetch(ctx)
		return RefetchDoneMsg{Result: res, Err: err}
	}
}

// SyncModel is the sync screen model
type SyncModel struct {
	api     API
	syncing bool
	done    bool
	result  types.RefetchResponse
	err     error

	token    *types.TokenStatus
	tokenErr error
}

// NewSyncModel creates a new sync model
func NewSyncModel(api API) SyncModel {
	return SyncModel{api: api}
}

// Init loads the token status
func (m SyncModel) Init() tea.Cmd {
	return m.loadToken
}

type tokenLoadedMsg struct {
	status types.TokenStatus
	err    error
}

func (m SyncModel) loadToken() tea.Msg {
	ctx, cancel := withTimeout()
	defer cancel()
	st, err := m.api.TokenStatus(ctx)
	return tokenLoadedMsg{status: st, err: err}
}

// Update handles messages
func (m SyncModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tokenLoadedMsg:
		m.tokenErr = msg.err
		if msg.err == nil {
			st := msg.status
			m.token = &st
		}

	case RefetchDoneMsg:
		if !m.syncing {
			return m, nil
		}
		m.syncing = false
		m.done = true
		m.result = msg.Result
		m.err = msg.Err
		// A sync may have refreshed or reauthorized the token
		return m, m.loadToken

	case tea.KeyMsg:
		if !m.syncing {
			switch msg.String() {
			case "enter", "s":
				m.syncing = true
				m.done = false
				m.err = nil
				return m, refetchCmd(m.api)
			}
		}
	}
	return m, nil
}

// View renders the sync screen
func (m SyncModel) View() string {
	var sections []string

	sections = append(sections, cardTitleStyle.Render("Strava Sync"))
	sections = append(sections, m.renderToken())

	switch {
	case m.syncing:
		sections = append(sections, warningStyle.Render("\n  Syncing with Strava..."),
			statusStyle.Render("  This may take a moment..."))
	case m.err != nil:
		sections = append(sections, errorStyle.Render(fmt.Sprintf("\n  Error: %v", m.err)),
			statusStyle.Render("  Press 's' or Enter to retry"))
	case m.done:
		sections = append(sections, successStyle.Render("\n  Sync complete!"),
			fmt.Sprintf("  %d activities fetched, %d stored in total", m.result.Fetched, m.result.Total),
			statusStyle.Render("  Press '1' to go to the weekly view"))
	default:
		sections = append(sections, m.renderStartPrompt())
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m SyncModel) renderToken() string {
	if m.tokenErr != nil {
		return errorStyle.Render(fmt.Sprintf("  Token status unavailable: %v", m.tokenErr))
	}
	if m.token == nil {
		return statusStyle.Render("  Checking token...")
	}

	t := m.token
	if !t.HasToken {
		return warningStyle.Render("  Not connected to Strava. Run `runlog auth login`.")
	}

	yesNo := func(ok bool) string {
		if ok {
			return successStyle.Render("yes")
		}
		return warningStyle.Render("no")
	}
	lines := []string{
		RenderMetric("  Read scope", yesNo(t.HasReadScope)),
		RenderMetric("  Write scope", yesNo(t.HasWriteScope)),
	}
	if len(t.Scopes) > 0 {
		lines = append(lines, RenderMetric("  Scopes", strings.Join(t.Scopes, ", ")))
	}
	if t.ExpiresAt != nil {
		lines = append(lines, RenderMetric("  Expires", t.ExpiresAt.Local().Format("Jan 2 15:04")))
	}
	return strings.Join(lines, "\n")
}

func (m SyncModel) renderStartPrompt() string {
	lines := []string{
		"",
		"  This will pull your recent Strava activities,",
		"  fetch details for runs and store everything locally.",
		"",
		statusStyle.Render("  Press 's' or Enter to start sync"),
	}
	return strings.Join(lines, "\n")
}
