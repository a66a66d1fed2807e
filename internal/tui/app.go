package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"runlog/internal/types"
)

// requestTimeout bounds every API call except refetch
const requestTimeout = 15 * time.Second

// API is the slice of the HTTP API the dashboard uses
type API interface {
	Activities(ctx context.Context, activityType string) ([]types.Activity, error)
	RenameActivity(ctx context.Context, id, name string) error
	Refetch(ctx context.Context) (types.RefetchResponse, error)
	TokenStatus(ctx context.Context) (types.TokenStatus, error)
	TrainingBlocks(ctx context.Context) ([]types.TrainingBlock, error)
	CreateTrainingBlock(ctx context.Context, req types.CreateTrainingBlockRequest) (types.TrainingBlock, error)
	UpdateTrainingBlock(ctx context.Context, id string, req types.UpdateTrainingBlockRequest) (types.TrainingBlock, error)
	DeleteTrainingBlock(ctx context.Context, id string) error
	TrainingBlockWeeks(ctx context.Context, id string) (types.TrainingBlockWeeks, error)
}

// Screen identifiers
type Screen int

const (
	ScreenWeekly Screen = iota
	ScreenSummaries
	ScreenActivities
	ScreenBlocks
	ScreenSync
	ScreenHelp
)

// App is the root Bubble Tea model
type App struct {
	screen     Screen
	prevScreen Screen

	// Screen models
	weekly     WeeklyModel
	summaries  SummariesModel
	activities ActivitiesModel
	blocks     BlocksModel
	syncScreen SyncModel
	help       HelpModel

	api API

	// Window dimensions
	width  int
	height int
}

// NewApp creates a new App backed by api
func NewApp(api API) *App {
	return &App{
		screen:     ScreenWeekly,
		api:        api,
		weekly:     NewWeeklyModel(api),
		summaries:  NewSummariesModel(api),
		activities: NewActivitiesModel(api),
		blocks:     NewBlocksModel(api, 0, 0),
		syncScreen: NewSyncModel(api),
		help:       NewHelpModel(),
	}
}

// Init initializes the app
func (a *App) Init() tea.Cmd {
	return a.weekly.Init()
}

// capturing reports whether the current screen owns every key, e.g. while
// a text input has focus
func (a *App) capturing() bool {
	switch a.screen {
	case ScreenActivities:
		return a.activities.editing()
	case ScreenBlocks:
		return a.blocks.editing()
	}
	return false
}

// Update handles messages
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}
		if !a.capturing() {
			switch msg.String() {
			case "q":
				return a, tea.Quit
			case "1":
				return a, a.switchTo(ScreenWeekly)
			case "2":
				return a, a.switchTo(ScreenSummaries)
			case "3":
				return a, a.switchTo(ScreenActivities)
			case "4":
				return a, a.switchTo(ScreenBlocks)
			case "5":
				return a, a.switchTo(ScreenSync)
			case "?":
				a.prevScreen = a.screen
				a.screen = ScreenHelp
				return a, nil
			case "esc":
				if a.screen == ScreenHelp {
					a.screen = a.prevScreen
					return a, nil
				}
			}
		}

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height

	case RefetchDoneMsg:
		// Both refetch triggers see the result, whichever screen is showing
		var m tea.Model
		var syncCmd, weeklyCmd tea.Cmd
		m, syncCmd = a.syncScreen.Update(msg)
		a.syncScreen = m.(SyncModel)
		m, weeklyCmd = a.weekly.Update(msg)
		a.weekly = m.(WeeklyModel)
		return a, tea.Batch(syncCmd, weeklyCmd)
	}

	// Delegate to current screen
	var cmd tea.Cmd
	var m tea.Model
	switch a.screen {
	case ScreenWeekly:
		m, cmd = a.weekly.Update(msg)
		a.weekly = m.(WeeklyModel)
	case ScreenSummaries:
		m, cmd = a.summaries.Update(msg)
		a.summaries = m.(SummariesModel)
	case ScreenActivities:
		m, cmd = a.activities.Update(msg)
		a.activities = m.(ActivitiesModel)
	case ScreenBlocks:
		m, cmd = a.blocks.Update(msg)
		a.blocks = m.(BlocksModel)
	case ScreenSync:
		m, cmd = a.syncScreen.Update(msg)
		a.syncScreen = m.(SyncModel)
	case ScreenHelp:
		m, cmd = a.help.Update(msg)
		a.help = m.(HelpModel)
	}
	return a, cmd
}

// switchTo changes screen. Screen state is not kept across navigation, so
// each visit reloads.
func (a *App) switchTo(s Screen) tea.Cmd {
	a.screen = s
	switch s {
	case ScreenWeekly:
		a.weekly = NewWeeklyModel(a.api)
		return a.weekly.Init()
	case ScreenSummaries:
		a.summaries = NewSummariesModel(a.api)
		return a.summaries.Init()
	case ScreenActivities:
		a.activities = NewActivitiesModel(a.api)
		return a.activities.Init()
	case ScreenBlocks:
		a.blocks = NewBlocksModel(a.api, a.width, a.height)
		return a.blocks.Init()
	case ScreenSync:
		if !a.syncScreen.syncing {
			a.syncScreen = NewSyncModel(a.api)
		}
		return a.syncScreen.Init()
	}
	return nil
}

// View renders the app
func (a *App) View() string {
	var content string
	switch a.screen {
	case ScreenWeekly:
		content = a.weekly.View()
	case ScreenSummaries:
		content = a.summaries.View()
	case ScreenActivities:
		content = a.activities.View()
	case ScreenBlocks:
		content = a.blocks.View()
	case ScreenSync:
		content = a.syncScreen.View()
	case ScreenHelp:
		content = a.help.View()
	}

	return lipgloss.JoinVertical(lipgloss.Left, a.renderHeader(), a.renderNav(), content)
}

func (a *App) renderHeader() string {
	return headerStyle.Render("runlog")
}

func (a *App) renderNav() string {
	items := []struct {
		key    string
		label  string
		screen Screen
	}{
		{"1", "Weekly", ScreenWeekly},
		{"2", "Summaries", ScreenSummaries},
		{"3", "Activities", ScreenActivities},
		{"4", "Training Blocks", ScreenBlocks},
		{"5", "Sync", ScreenSync},
		{"?", "Help", ScreenHelp},
	}

	var nav string
	for i, item := range items {
		if i > 0 {
			nav += "  "
		}

		label := "[" + item.key + "] " + item.label
		if a.screen == item.screen {
			nav += navActiveStyle.Render(label)
		} else {
			nav += navInactiveStyle.Render(label)
		}
	}

	nav += "  " + navInactiveStyle.Render("[q] Quit")

	return navStyle.Render(nav)
}

func withTimeout() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), requestTimeout)
}
