package graph

import (
	"errors"
	"fmt"
)

// ErrDuplicateNode is returned when two input nodes share an id.
var ErrDuplicateNode = errors.New("graph: duplicate node id")

// ErrDanglingLink is returned under RejectDangling when a link references a
// node that is not present in the same input set.
var ErrDanglingLink = errors.New("graph: link references missing node")

// DanglingLinkPolicy decides what Build does with a link whose endpoint is
// missing. Whichever policy is chosen applies uniformly to every such link in
// one build call.
type DanglingLinkPolicy int

const (
	// DropDangling silently discards the offending link and counts it; the
	// count is surfaced via Model.DroppedLinks so callers can log it.
	DropDangling DanglingLinkPolicy = iota
	// RejectDangling fails the whole build on the first offending link.
	RejectDangling
)

// BuildOptions configures model construction.
type BuildOptions struct {
	DanglingLinks DanglingLinkPolicy
}

func (o *BuildOptions) withDefaults() BuildOptions {
	if o == nil {
		return BuildOptions{DanglingLinks: DropDangling}
	}
	return *o
}

// Build validates the raw collections and produces a fresh Model. Every node
// and link is copied, so the simulation can mutate positions without touching
// caller-owned data. Build never starts a simulation.
func Build(nodes []Node, links []Link, opts *BuildOptions) (*Model, error) {
	o := opts.withDefaults()

	m := &Model{
		nodes: make([]*Node, 0, len(nodes)),
		links: make([]*Link, 0, len(links)),
		byID:  make(map[string]*Node, len(nodes)),
	}

	for i := range nodes {
		n := nodes[i] // copy
		if _, exists := m.byID[n.ID]; exists {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateNode, n.ID)
		}
		n.Properties = n.Properties.clone()
		n.X = sanitize(n.X)
		n.Y = sanitize(n.Y)
		n.pinned = false
		m.nodes = append(m.nodes, &n)
		m.byID[n.ID] = &n
	}

	for i := range links {
		l := links[i] // copy
		_, srcOK := m.byID[l.Source]
		_, tgtOK := m.byID[l.Target]
		if !srcOK || !tgtOK {
			if o.DanglingLinks == RejectDangling {
				return nil, fmt.Errorf("%w: %s -> %s", ErrDanglingLink, l.Source, l.Target)
			}
			m.dropped++
			continue
		}
		l.Properties = l.Properties.clone()
		m.links = append(m.links, &l)
	}

	return m, nil
}
