package ui

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/tracive/linkscope/pkg/graph"
	"github.com/tracive/linkscope/pkg/viewer"
)

// Style definitions
var (
	// Colors
	primaryColor = lipgloss.Color("#3b82f6") // Blue
	errorColor   = lipgloss.Color("#ef4444") // Red
	warningColor = lipgloss.Color("#f59e0b") // Yellow
	mutedColor   = lipgloss.Color("#64748b") // Gray

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primaryColor)

	headerStyle = lipgloss.NewStyle().
			Foreground(mutedColor)

	errorStyle = lipgloss.NewStyle().
			Foreground(errorColor).
			Bold(true)

	warningStyle = lipgloss.NewStyle().
			Foreground(warningColor)

	linkStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#334155"))

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#94a3b8"))

	selectedStyle = lipgloss.NewStyle().
			Bold(true).
			Reverse(true)

	pinnedStyle = lipgloss.NewStyle().
			Bold(true)

	panelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#cbd5e1"))

	panelTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primaryColor)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(primaryColor).
			Padding(1, 2)

	footerStyle = lipgloss.NewStyle().
			Foreground(mutedColor)
)

// nodeStyles caches one foreground style per entity type. View runs on the
// program goroutine only.
var nodeStyles = map[graph.Type]lipgloss.Style{}

func styleFor(t graph.Type) lipgloss.Style {
	st, ok := nodeStyles[t]
	if !ok {
		st = lipgloss.NewStyle().Foreground(lipgloss.Color(t.Style().Color))
		nodeStyles[t] = st
	}
	return st
}

const (
	panelWidth    = 32
	maxLabelRunes = 14
)

// cell is one canvas position.
type cell struct {
	r      rune
	style  lipgloss.Style
	styled bool
}

// View renders the UI.
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Initializing..."
	}
	if m.quitting {
		return ""
	}
	if m.showHelp {
		return m.renderHelp()
	}

	frame := m.session.Frame()
	return m.renderHeader(frame) + "\n" + m.renderCanvas(frame) + m.renderFooter()
}

// renderHeader renders the single status line above the canvas.
func (m Model) renderHeader(f viewer.Frame) string {
	scope := m.session.Scope()
	if scope == "" {
		scope = "all investigations"
	}

	parts := []string{
		titleStyle.Render("linkscope"),
		scope,
		fmt.Sprintf("%d nodes", f.NodeCount),
		fmt.Sprintf("%d links", f.LinkCount),
		fmt.Sprintf("%s α=%.2f", f.State, f.Alpha),
	}
	if f.Loading {
		parts = append(parts, m.spinner.View()+" loading")
	}
	if m.liveDown {
		parts = append(parts, warningStyle.Render("live updates disconnected"))
	}
	line := headerStyle.Render(" " + strings.Join(parts, " • "))
	if f.Err != nil {
		line += "  " + errorStyle.Render(f.Err.Error())
	}
	return lipgloss.NewStyle().MaxWidth(m.width).Render(line)
}

// renderCanvas rasterizes the frame into a cell grid: links first, then node
// glyphs and labels, the selection detail panel on top.
func (m Model) renderCanvas(f viewer.Frame) string {
	w, h := m.canvasW, m.canvasH
	if w < 1 || h < 1 {
		return ""
	}

	grid := make([][]cell, h)
	for y := range grid {
		grid[y] = make([]cell, w)
		for x := range grid[y] {
			grid[y][x].r = ' '
		}
	}

	for _, l := range f.Links {
		x1, y1 := toCell(l.X1, l.Y1)
		x2, y2 := toCell(l.X2, l.Y2)
		drawLine(grid, x1, y1, x2, y2)
	}

	for _, n := range f.Nodes {
		if n.Selected {
			continue // drawn last so it wins overlaps
		}
		drawNode(grid, n)
	}
	for _, n := range f.Nodes {
		if n.Selected {
			drawNode(grid, n)
		}
	}

	if f.Selection != nil {
		m.overlayDetail(grid, f.Selection)
	}

	var b strings.Builder
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := grid[y][x]
			if c.styled {
				b.WriteString(c.style.Render(string(c.r)))
			} else {
				b.WriteRune(c.r)
			}
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// toCell maps simulation pixels to canvas cells.
func toCell(x, y float64) (int, int) {
	return int(math.Floor(x / cellWidth)), int(math.Floor(y / cellHeight))
}

func inGrid(grid [][]cell, x, y int) bool {
	return y >= 0 && y < len(grid) && x >= 0 && x < len(grid[0])
}

// drawLine traces a link with Bresenham steps.
func drawLine(grid [][]cell, x1, y1, x2, y2 int) {
	dx := abs(x2 - x1)
	dy := -abs(y2 - y1)
	sx, sy := 1, 1
	if x1 > x2 {
		sx = -1
	}
	if y1 > y2 {
		sy = -1
	}
	err := dx + dy

	x, y := x1, y1
	for {
		if inGrid(grid, x, y) && grid[y][x].r == ' ' {
			grid[y][x] = cell{r: '·', style: linkStyle, styled: true}
		}
		if x == x2 && y == y2 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			if x == x2 {
				return
			}
			err += dy
			x += sx
		}
		if e2 <= dx {
			if y == y2 {
				return
			}
			err += dx
			y += sy
		}
	}
}

// drawNode places the type glyph and a short name label.
func drawNode(grid [][]cell, n viewer.NodeView) {
	x, y := toCell(n.X, n.Y)
	if !inGrid(grid, x, y) {
		return
	}

	st := styleFor(n.Type)
	switch {
	case n.Selected:
		st = selectedStyle.Foreground(lipgloss.Color(n.Type.Style().Color))
	case n.Pinned:
		st = pinnedStyle.Foreground(lipgloss.Color(n.Type.Style().Color))
	}
	grid[y][x] = cell{r: n.Type.Style().Glyph, style: st, styled: true}

	label := []rune(n.Name)
	if len(label) > maxLabelRunes {
		label = append(label[:maxLabelRunes-1], '…')
	}
	for i, r := range label {
		lx := x + 2 + i
		if !inGrid(grid, lx, y) {
			break
		}
		// Labels yield to glyphs and other labels, never the reverse.
		if grid[y][lx].r != ' ' && grid[y][lx].r != '·' {
			break
		}
		grid[y][lx] = cell{r: r, style: labelStyle, styled: true}
	}
}

// overlayDetail floats the selected node's property panel over the top-right
// corner of the canvas.
func (m Model) overlayDetail(grid [][]cell, d *viewer.Detail) {
	w := panelWidth
	if w > m.canvasW-2 {
		w = m.canvasW - 2
	}
	if w < 8 {
		return
	}
	col := m.canvasW - w - 1
	inner := w - 4

	lines := []struct {
		text  string
		style lipgloss.Style
	}{
		{d.Name, panelTitleStyle},
		{string(d.Type), labelStyle},
	}
	if len(d.Properties) > 0 {
		lines = append(lines, struct {
			text  string
			style lipgloss.Style
		}{strings.Repeat("─", inner), panelStyle})
		for _, p := range d.Properties {
			lines = append(lines, struct {
				text  string
				style lipgloss.Style
			}{fmt.Sprintf("%s: %v", p.Key, p.Value), panelStyle})
		}
	}

	maxLines := len(grid) - 2
	if len(lines) > maxLines {
		lines = lines[:maxLines]
	}

	writeRow(grid, 0, col, "╭"+strings.Repeat("─", w-2)+"╮", panelStyle)
	for i, l := range lines {
		text := []rune(l.text)
		if len(text) > inner {
			text = append(text[:inner-1], '…')
		}
		pad := strings.Repeat(" ", inner-len(text))
		writeRow(grid, 1+i, col, "│ ", panelStyle)
		writeRow(grid, 1+i, col+2, string(text), l.style)
		writeRow(grid, 1+i, col+2+len(text), pad+" │", panelStyle)
	}
	writeRow(grid, 1+len(lines), col, "╰"+strings.Repeat("─", w-2)+"╯", panelStyle)
}

func writeRow(grid [][]cell, y, x int, s string, st lipgloss.Style) {
	for i, r := range []rune(s) {
		if !inGrid(grid, x+i, y) {
			return
		}
		grid[y][x+i] = cell{r: r, style: st, styled: true}
	}
}

// renderFooter renders the keybinding hint line.
func (m Model) renderFooter() string {
	keys := []string{
		"drag: move node",
		"wheel: zoom",
		"r: refresh",
		"f: fit",
		"esc: clear",
		"?: help",
		"q: quit",
	}
	return footerStyle.MaxWidth(m.width).Render(" " + strings.Join(keys, " • "))
}

// renderHelp renders the full-screen shortcut reference.
func (m Model) renderHelp() string {
	title := titleStyle.Render("Keyboard & Mouse")

	shortcuts := [][]string{
		{"click node", "select, show details"},
		{"drag node", "pin and move it"},
		{"drag background", "pan the view"},
		{"wheel", "zoom at pointer"},
		{"+/-", "zoom at center"},
		{"↑/↓/←/→, hjkl", "pan"},
		{"f", "fit graph to view"},
		{"r", "refresh from source"},
		{"esc", "clear selection"},
		{"?", "toggle this help"},
		{"q, Ctrl+C", "quit"},
	}

	var rows []string
	for _, s := range shortcuts {
		rows = append(rows, fmt.Sprintf("%s  %s",
			panelTitleStyle.Render(fmt.Sprintf("%-16s", s[0])),
			s[1]))
	}

	content := lipgloss.JoinVertical(
		lipgloss.Left,
		title,
		"",
		boxStyle.Render(strings.Join(rows, "\n")),
		footerStyle.Render("\nPress ? to close help"),
	)

	return lipgloss.Place(
		m.width,
		m.height,
		lipgloss.Center,
		lipgloss.Center,
		content,
	)
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
