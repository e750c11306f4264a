package ui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/armankhan8150/taskscape-front/internal/sync"
	"github.com/armankhan8150/taskscape-front/internal/ui/views"
)

// Currently active view
type View int

const (
	ViewProjects View = iota
	ViewBoard
	ViewTeam
)

type App struct {
	client      *sync.Client
	currentView View
	projectList *views.ProjectListView
	board       *views.BoardView
	team        *views.TeamView
	width       int
	height      int
}

// Creates a new application
func NewApp(client *sync.Client) *App {
	return &App{
		client:      client,
		currentView: ViewProjects,
		projectList: views.NewProjectListView(client),
		team:        views.NewTeamView(client),
	}
}

func (a *App) Init() tea.Cmd {
	return tea.Batch(a.projectList.Init(), a.waitForChange())
}

// waitForChange blocks on the client's change channel and wakes the render
// loop. Changes are coalesced client-side, so a single message can stand
// for any number of store and cache transitions.
func (a *App) waitForChange() tea.Cmd {
	return func() tea.Msg {
		if _, ok := <-a.client.Changes(); !ok {
			return nil
		}
		return views.SyncChangedMsg{}
	}
}

func (a *App) openBoard(msg views.SelectedProject) tea.Cmd {
	a.projectList.Release()
	a.currentView = ViewBoard
	a.board = views.NewBoardView(a.client, msg.Project)

	return tea.Batch(
		a.board.Init(),
		func() tea.Msg {
			return tea.WindowSizeMsg{Width: a.width, Height: a.height}
		},
	)
}

func (a *App) backToProjects() tea.Cmd {
	if a.board != nil {
		a.board.Release()
		a.board = nil
	}
	a.team.Release()
	a.currentView = ViewProjects
	return tea.Batch(
		a.projectList.Init(),
		func() tea.Msg {
			return tea.WindowSizeMsg{Width: a.width, Height: a.height}
		},
	)
}

func (a *App) openTeam() tea.Cmd {
	a.projectList.Release()
	a.currentView = ViewTeam
	return tea.Batch(
		a.team.Init(),
		func() tea.Msg {
			return tea.WindowSizeMsg{Width: a.width, Height: a.height}
		},
	)
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		// Always update project list size since it persists
		a.projectList.Update(msg)

	case views.SyncChangedMsg:
		// fan out to every live view, then re-arm the wait
		a.projectList.Update(msg)
		a.team.Update(msg)
		if a.board != nil {
			a.board.Update(msg)
		}
		return a, a.waitForChange()

	case views.SelectedProject:
		return a, a.openBoard(msg)

	case views.OpenTeam:
		return a, a.openTeam()

	case views.BackToProjects:
		return a, a.backToProjects()
	}

	var cmd tea.Cmd
	switch a.currentView {
	case ViewProjects:
		_, cmd = a.projectList.Update(msg)
	case ViewBoard:
		_, cmd = a.board.Update(msg)
	case ViewTeam:
		_, cmd = a.team.Update(msg)
	}

	return a, cmd
}

func (a *App) View() string {
	switch a.currentView {
	case ViewBoard:
		if a.board != nil {
			return a.board.View()
		}
	case ViewTeam:
		return a.team.View()
	}
	return a.projectList.View()
}
