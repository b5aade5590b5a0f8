package ui

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/replay/internal/history"
	"github.com/desertthunder/replay/internal/tasks"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	SyncView ViewState = iota
	HistoryListView
	StatsView
)

// Model represents the TUI application state.
type Model struct {
	ctx          context.Context
	view         ViewState
	engine       tasks.Engine
	width        int
	height       int
	set          history.Set
	window       history.Window
	playList     list.Model
	listReady    bool
	progressChan chan tasks.ProgressUpdate
	progress     tasks.ProgressUpdate
	err          error
	help         help.Model
	keys         keyMap

	// outcome of the in-flight sync, read once the progress channel
	// closes
	pendingResult *tasks.SyncResult
	pendingErr    error
}

// NewModel creates a new TUI model with the provided dependencies.
func NewModel(ctx context.Context, engine tasks.Engine) *Model {
	return &Model{
		ctx:    ctx,
		view:   SyncView,
		engine: engine,
		window: history.WindowAll,
		help:   help.New(),
		keys:   newKeyMap(),
	}
}

// Init kicks off the first sync cycle.
func (m *Model) Init() tea.Cmd {
	return m.startSync()
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.listReady {
			m.playList.SetSize(msg.Width-4, msg.Height-8)
		}
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case HistoryListView:
			return m.handleHistoryKeys(msg)
		case StatsView:
			return m.handleStatsKeys(msg)
		case SyncView:
			if msg.String() == "q" || msg.String() == "ctrl+c" {
				return m, tea.Quit
			}
		}

	case progressUpdateMsg:
		m.progress = tasks.ProgressUpdate(msg)
		return m, m.waitForProgress()

	case syncCompleteMsg:
		m.err = msg.err
		if m.progressChan != nil {
			m.progressChan = nil
		}
		if msg.err != nil {
			m.view = HistoryListView
			return m, nil
		}
		m.set = msg.result.Records
		m.rebuildList()
		m.view = HistoryListView
		return m, nil
	}

	if m.view == HistoryListView && m.listReady {
		var cmd tea.Cmd
		m.playList, cmd = m.playList.Update(msg)
		return m, cmd
	}

	return m, nil
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	switch m.view {
	case SyncView:
		return m.renderSync()
	case HistoryListView:
		return m.renderHistory()
	case StatsView:
		return m.renderStats()
	default:
		return ""
	}
}

func (m *Model) handleHistoryKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.refresh):
		m.view = SyncView
		return m, m.startSync()
	case key.Matches(msg, m.keys.stats):
		m.view = StatsView
		return m, nil
	case key.Matches(msg, m.keys.all):
		return m.setWindow(history.WindowAll)
	case key.Matches(msg, m.keys.today):
		return m.setWindow(history.WindowToday)
	case key.Matches(msg, m.keys.yesterday):
		return m.setWindow(history.WindowYesterday)
	case key.Matches(msg, m.keys.week):
		return m.setWindow(history.WindowWeek)
	case key.Matches(msg, m.keys.month):
		return m.setWindow(history.WindowMonth)
	}

	// The list is only built once a sync succeeds; a failed first sync
	// lands here with no list to scroll.
	if !m.listReady {
		return m, nil
	}

	var cmd tea.Cmd
	m.playList, cmd = m.playList.Update(msg)
	return m, cmd
}

func (m *Model) handleStatsKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.stats):
		m.view = HistoryListView
		return m, nil
	}
	return m, nil
}

func (m *Model) setWindow(w history.Window) (tea.Model, tea.Cmd) {
	m.window = w
	m.rebuildList()
	return m, nil
}

// rebuildList repopulates the play list from the current set and
// window. The window is evaluated against the wall clock on every
// rebuild, so a filter selected before midnight is fresh after it.
func (m *Model) rebuildList() {
	view := m.window.Apply(m.set, time.Now())

	if !m.listReady {
		m.playList = list.New(playItems(view), list.NewDefaultDelegate(), 0, 0)
		m.playList.SetSize(m.width-4, m.height-8)
		m.listReady = true
	} else {
		m.playList.SetItems(playItems(view))
	}

	m.playList.Title = fmt.Sprintf("Listening History • %s (%d plays)", m.window.Label(), len(view))
}

func (m *Model) startSync() tea.Cmd {
	m.err = nil
	m.progressChan = make(chan tasks.ProgressUpdate, 50)
	progressChan := m.progressChan

	go func() {
		result, err := m.engine.Sync(m.ctx, progressChan)
		m.pendingResult = result
		m.pendingErr = err
		close(progressChan)
	}()

	return m.waitForProgress()
}

func (m *Model) waitForProgress() tea.Cmd {
	return func() tea.Msg {
		if m.progressChan == nil {
			return syncCompleteMsg{result: m.pendingResult, err: m.pendingErr}
		}

		update, ok := <-m.progressChan
		if !ok {
			return syncCompleteMsg{result: m.pendingResult, err: m.pendingErr}
		}
		return progressUpdateMsg(update)
	}
}

func (m *Model) renderSync() string {
	title := styles.title.Render("Syncing Listening History")
	return fmt.Sprintf("%s\n\n%s\n\n%s", title, m.progress.Message, styles.help.Render("q to quit"))
}

func (m *Model) renderHistory() string {
	var body string
	if m.listReady {
		body = m.playList.View()
	} else {
		body = "No history yet. Press r to sync."
	}

	if m.err != nil {
		body = fmt.Sprintf("%s\n%s", styles.err.Render(fmt.Sprintf("Sync failed: %v", m.err)), body)
	}

	helpKeys := []key.Binding{m.keys.all, m.keys.today, m.keys.yesterday, m.keys.week, m.keys.month, m.keys.refresh, m.keys.stats, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)
	return fmt.Sprintf("%s\n\n%s", body, helpView)
}

func (m *Model) renderStats() string {
	stats := history.Summarize(m.set, time.Now())

	title := styles.title.Render("Listening Stats")
	info := fmt.Sprintf(
		"\nTotal plays: %d\nUnique artists: %d\nUnique albums: %d\nDays of history: %d\n",
		stats.TotalPlays,
		stats.UniqueArtists,
		stats.UniqueAlbums,
		stats.DaysOfHistory,
	)

	helpKeys := []key.Binding{m.keys.stats, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)
	return fmt.Sprintf("%s%s\n%s", title, info, helpView)
}
