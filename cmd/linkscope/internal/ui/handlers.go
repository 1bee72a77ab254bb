package ui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// panStep is the keyboard pan distance in cells.
const panStep = 2

// wheelDelta is the synthetic scroll amount for one wheel notch. Terminals
// report discrete notches, not pixel deltas.
const wheelDelta = 120.0

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, DefaultKeyMap.Quit):
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, DefaultKeyMap.Help):
		m.showHelp = !m.showHelp
		return m, nil

	case key.Matches(msg, DefaultKeyMap.Refresh):
		return m, m.refresh()

	case key.Matches(msg, DefaultKeyMap.Fit):
		m.fitView()
		return m, nil

	case key.Matches(msg, DefaultKeyMap.Clear):
		if c := m.session.Controller(); c != nil {
			c.ClearSelection()
		}
		return m, nil

	case key.Matches(msg, DefaultKeyMap.ZoomIn):
		if c := m.session.Controller(); c != nil {
			c.ZoomIn()
		}
		return m, nil

	case key.Matches(msg, DefaultKeyMap.ZoomOut):
		if c := m.session.Controller(); c != nil {
			c.ZoomOut()
		}
		return m, nil

	case key.Matches(msg, DefaultKeyMap.Up):
		m.session.Transform().Pan(0, panStep*cellHeight)
		return m, nil

	case key.Matches(msg, DefaultKeyMap.Down):
		m.session.Transform().Pan(0, -panStep*cellHeight)
		return m, nil

	case key.Matches(msg, DefaultKeyMap.Left):
		m.session.Transform().Pan(panStep*cellWidth, 0)
		return m, nil

	case key.Matches(msg, DefaultKeyMap.Right):
		m.session.Transform().Pan(-panStep*cellWidth, 0)
		return m, nil
	}

	return m, nil
}

// handleMouse maps terminal mouse events onto the pointer protocol. Cell
// coordinates become simulation pixels at the cell center.
func (m Model) handleMouse(msg tea.MouseMsg) {
	c := m.session.Controller()
	if c == nil {
		return
	}

	sx := (float64(msg.X) + 0.5) * cellWidth
	sy := (float64(msg.Y-headerRows) + 0.5) * cellHeight

	switch msg.Action {
	case tea.MouseActionPress:
		switch msg.Button {
		case tea.MouseButtonWheelUp:
			c.Wheel(sx, sy, -wheelDelta)
		case tea.MouseButtonWheelDown:
			c.Wheel(sx, sy, wheelDelta)
		case tea.MouseButtonLeft:
			if msg.Y >= headerRows && msg.Y < headerRows+m.canvasH {
				c.PointerDown(sx, sy)
			}
		}
	case tea.MouseActionMotion:
		c.PointerMove(sx, sy)
	case tea.MouseActionRelease:
		c.PointerUp(sx, sy)
	}
}
