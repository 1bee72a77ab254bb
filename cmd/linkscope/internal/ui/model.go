// Package ui is the terminal front end: a bubbletea program that drives the
// graph session's frame loop and maps key and mouse input onto the
// interaction controller.
package ui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tracive/linkscope/pkg/client"
	"github.com/tracive/linkscope/pkg/viewer"
)

const (
	// cellWidth/cellHeight map simulation pixels onto terminal cells. The
	// 1:2 ratio corrects the aspect of a typical terminal font, so a round
	// layout stays round on screen.
	cellWidth  = 6.0
	cellHeight = 12.0

	frameInterval = time.Second / 30

	headerRows = 1
	footerRows = 1

	fitPadding = 60.0

	loadTimeout = 30 * time.Second
)

// KeyMap defines all keyboard shortcuts.
type KeyMap struct {
	Up      key.Binding
	Down    key.Binding
	Left    key.Binding
	Right   key.Binding
	ZoomIn  key.Binding
	ZoomOut key.Binding
	Fit     key.Binding
	Refresh key.Binding
	Clear   key.Binding
	Help    key.Binding
	Quit    key.Binding
}

var DefaultKeyMap = KeyMap{
	Up: key.NewBinding(
		key.WithKeys("up", "k"),
		key.WithHelp("↑/k", "pan up"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "j"),
		key.WithHelp("↓/j", "pan down"),
	),
	Left: key.NewBinding(
		key.WithKeys("left", "h"),
		key.WithHelp("←/h", "pan left"),
	),
	Right: key.NewBinding(
		key.WithKeys("right", "l"),
		key.WithHelp("→/l", "pan right"),
	),
	ZoomIn: key.NewBinding(
		key.WithKeys("+", "="),
		key.WithHelp("+", "zoom in"),
	),
	ZoomOut: key.NewBinding(
		key.WithKeys("-", "_"),
		key.WithHelp("-", "zoom out"),
	),
	Fit: key.NewBinding(
		key.WithKeys("f"),
		key.WithHelp("f", "fit graph"),
	),
	Refresh: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "refresh"),
	),
	Clear: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "clear selection"),
	),
	Help: key.NewBinding(
		key.WithKeys("?"),
		key.WithHelp("?", "help"),
	),
	Quit: key.NewBinding(
		key.WithKeys("ctrl+c", "q"),
		key.WithHelp("q", "quit"),
	),
}

// Messages
type frameMsg time.Time
type loadedMsg struct{ err error }
type liveMsg client.Notification
type liveClosedMsg struct{}

// Model is the TUI application state. The session owns the simulation; the
// model only schedules ticks and translates input.
type Model struct {
	session *viewer.Session
	scope   string
	live    <-chan client.Notification

	spinner spinner.Model

	width, height    int
	canvasW, canvasH int

	liveDown bool
	showHelp bool
	quitting bool
}

// NewModel creates the TUI around a prepared session. The live channel may be
// nil when no update subscription is active.
func NewModel(session *viewer.Session, scope string, live <-chan client.Notification) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(primaryColor)

	return Model{
		session: session,
		scope:   scope,
		live:    live,
		spinner: s,
	}
}

// Init kicks off the initial load and the frame loop.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.load(m.scope), m.frameTick(), m.waitLive())
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.canvasW = msg.Width
		m.canvasH = msg.Height - headerRows - footerRows
		if m.canvasH < 1 {
			m.canvasH = 1
		}
		m.syncCanvas()
		m.fitView()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		m.handleMouse(msg)
		return m, nil

	case frameMsg:
		m.session.Step()
		return m, m.frameTick()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case loadedMsg:
		if msg.err == nil {
			m.syncCanvas()
			m.fitView()
		}
		return m, nil

	case liveMsg:
		if msg.Type == client.NotifyGraphUpdate {
			return m, tea.Batch(m.refresh(), m.waitLive())
		}
		return m, m.waitLive()

	case liveClosedMsg:
		m.liveDown = true
		return m, nil
	}

	return m, nil
}

// frameTick schedules the next simulation step.
func (m Model) frameTick() tea.Cmd {
	return tea.Tick(frameInterval, func(t time.Time) tea.Msg {
		return frameMsg(t)
	})
}

// load fetches the graph for a scope on a worker goroutine.
func (m Model) load(scope string) tea.Cmd {
	sess := m.session
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()
		return loadedMsg{err: sess.Load(ctx, scope)}
	}
}

// refresh re-fetches the current scope.
func (m Model) refresh() tea.Cmd {
	sess := m.session
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()
		return loadedMsg{err: sess.Refresh(ctx)}
	}
}

// waitLive blocks on the live channel for the next server notification.
func (m Model) waitLive() tea.Cmd {
	ch := m.live
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		n, ok := <-ch
		if !ok {
			return liveClosedMsg{}
		}
		return liveMsg(n)
	}
}

// syncCanvas tells the controller the rendering surface size in simulation
// pixels.
func (m Model) syncCanvas() {
	if c := m.session.Controller(); c != nil {
		c.SetCanvasSize(float64(m.canvasW)*cellWidth, float64(m.canvasH)*cellHeight)
	}
}

// fitView frames the whole graph in the canvas.
func (m Model) fitView() {
	if m.canvasW == 0 || m.canvasH == 0 {
		return
	}
	m.session.FitView(float64(m.canvasW)*cellWidth, float64(m.canvasH)*cellHeight, fitPadding)
}
