package viewer

import (
	"github.com/tracive/linkscope/pkg/force"
	"github.com/tracive/linkscope/pkg/graph"
)

// NodeView is one node projected into screen space.
type NodeView struct {
	ID       string
	Name     string
	Type     graph.Type
	X, Y     float64
	Selected bool
	Pinned   bool
}

// LinkView is one link projected into screen space. Weight carries the
// link's strength property for rendering emphasis.
type LinkView struct {
	Type           string
	Weight         float64
	X1, Y1, X2, Y2 float64
}

// Detail is the selected node's content for the floating detail panel.
type Detail struct {
	ID         string
	Name       string
	Type       graph.Type
	Properties graph.Properties
}

// Frame is an immutable snapshot taken after a tick completes. Renderers
// consume frames and never touch live simulation state, which keeps the tick
// step the single writer of node positions.
type Frame struct {
	Nodes     []NodeView
	Links     []LinkView
	NodeCount int
	LinkCount int
	Alpha     float64
	State     force.State
	Loading   bool
	Err       error
	Selection *Detail
}

// Frame snapshots the current view in screen coordinates.
func (s *Session) Frame() Frame {
	s.mu.Lock()
	defer s.mu.Unlock()

	f := Frame{Loading: s.loading, Err: s.err}
	if s.engine == nil {
		return f
	}

	m := s.engine.Model()
	f.NodeCount = m.NodeCount()
	f.LinkCount = m.LinkCount()
	f.Alpha = s.engine.Alpha()
	f.State = s.engine.State()

	selected := ""
	if s.controller != nil {
		selected = s.controller.Selected()
	}

	f.Links = make([]LinkView, 0, len(m.Links()))
	for _, l := range m.Links() {
		src, sok := m.Node(l.Source)
		tgt, tok := m.Node(l.Target)
		if !sok || !tok {
			continue
		}
		x1, y1 := s.transform.WorldToScreen(src.X, src.Y)
		x2, y2 := s.transform.WorldToScreen(tgt.X, tgt.Y)
		f.Links = append(f.Links, LinkView{
			Type:   l.Type,
			Weight: l.Strength(),
			X1:     x1, Y1: y1, X2: x2, Y2: y2,
		})
	}

	f.Nodes = make([]NodeView, 0, len(m.Nodes()))
	for _, n := range m.Nodes() {
		x, y := s.transform.WorldToScreen(n.X, n.Y)
		f.Nodes = append(f.Nodes, NodeView{
			ID:       n.ID,
			Name:     n.Name,
			Type:     n.Type,
			X:        x,
			Y:        y,
			Selected: n.ID == selected,
			Pinned:   n.Pinned(),
		})
		if n.ID == selected {
			f.Selection = &Detail{
				ID:         n.ID,
				Name:       n.Name,
				Type:       n.Type,
				Properties: n.Properties,
			}
		}
	}
	return f
}
