// Package graph holds the data model for one relationship graph: entity
// nodes, typed links between them, and the validated Model the force
// simulation runs against. Input collections are deep-copied on build so a
// running simulation never mutates caller-owned data.
package graph

import (
	"encoding/json"
	"math"
	"strings"

	"gopkg.in/yaml.v3"
)

// Type classifies an entity node. The set is closed: every member has an
// exhaustive Style mapping, so adding a member is a compile-visible change
// rather than a stringly-typed branch scattered through renderers.
type Type string

const (
	TypePerson       Type = "person"
	TypeCompany      Type = "company"
	TypeSocialMedia  Type = "social_media"
	TypeWebsite      Type = "website"
	TypeOrganization Type = "organization"
	// TypeOther is the fallback for labels outside the closed set.
	TypeOther Type = "other"
)

// ParseType normalizes a raw label (graph databases emit CamelCase labels
// like "Person" or "SocialMedia") into the closed set.
func ParseType(raw string) Type {
	s := strings.ToLower(strings.TrimSpace(raw))
	s = strings.ReplaceAll(s, " ", "_")
	s = strings.ReplaceAll(s, "-", "_")
	switch s {
	case "person":
		return TypePerson
	case "company":
		return TypeCompany
	case "social_media", "socialmedia", "social":
		return TypeSocialMedia
	case "website", "domain":
		return TypeWebsite
	case "organization", "organisation", "org":
		return TypeOrganization
	default:
		return TypeOther
	}
}

// Style is the visual identity of a node type.
type Style struct {
	Glyph rune
	Color string
}

// Style returns the glyph and color for the type. The switch is exhaustive
// over the closed set; TypeOther is the only fallthrough.
func (t Type) Style() Style {
	switch t {
	case TypePerson:
		return Style{Glyph: '●', Color: "#6ea8fe"}
	case TypeCompany:
		return Style{Glyph: '■', Color: "#f59e0b"}
	case TypeSocialMedia:
		return Style{Glyph: '◆', Color: "#10b981"}
	case TypeWebsite:
		return Style{Glyph: '▲', Color: "#a78bfa"}
	case TypeOrganization:
		return Style{Glyph: '⬢', Color: "#ef4444"}
	default:
		return Style{Glyph: '○', Color: "#94a3b8"}
	}
}

// UnmarshalJSON accepts any label the collaborator API emits and folds it
// into the closed set.
func (t *Type) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*t = ParseType(s)
	return nil
}

// UnmarshalYAML does the same for dataset files.
func (t *Type) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	*t = ParseType(s)
	return nil
}

// Node is one entity in the graph. X and Y are the simulated position and
// belong to whichever engine currently owns the model; they are not part of
// the wire format. A pinned node ignores integration and sits exactly at its
// pinned coordinates until unpinned.
type Node struct {
	ID         string     `json:"id" yaml:"id"`
	Name       string     `json:"name" yaml:"name"`
	Type       Type       `json:"type" yaml:"type"`
	Properties Properties `json:"properties,omitempty" yaml:"properties,omitempty"`

	X float64 `json:"-" yaml:"-"`
	Y float64 `json:"-" yaml:"-"`

	pinned     bool
	pinX, pinY float64
}

// Pin fixes the node at (x, y), overriding integration.
func (n *Node) Pin(x, y float64) {
	n.pinned = true
	n.pinX, n.pinY = x, y
	n.X, n.Y = x, y
}

// Unpin releases the node back to the simulation.
func (n *Node) Unpin() { n.pinned = false }

// Pinned reports whether the node has a fixed position.
func (n *Node) Pinned() bool { return n.pinned }

// PinnedAt returns the fixed position; only meaningful while Pinned.
func (n *Node) PinnedAt() (x, y float64) { return n.pinX, n.pinY }

// Link is a typed relationship between two nodes, referenced by id. Both
// endpoints must resolve within the same Model.
type Link struct {
	Source     string     `json:"source" yaml:"source"`
	Target     string     `json:"target" yaml:"target"`
	Type       string     `json:"type" yaml:"type"`
	Properties Properties `json:"properties,omitempty" yaml:"properties,omitempty"`
}

// Strength returns the numeric "strength" property used to scale rendering
// weight, defaulting to 1 when absent or non-numeric.
func (l *Link) Strength() float64 {
	v, ok := l.Properties.Get("strength")
	if !ok {
		return 1
	}
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	case json.Number:
		if f, err := n.Float64(); err == nil {
			return f
		}
	}
	return 1
}

// Model owns the node and link collections for one simulation run. It is
// created fresh on every successful fetch and discarded wholesale when a new
// fetch supersedes it.
type Model struct {
	nodes   []*Node
	links   []*Link
	byID    map[string]*Node
	dropped int
}

// Nodes returns the node slice. Callers other than the owning engine must
// treat positions as read-only.
func (m *Model) Nodes() []*Node { return m.nodes }

// Links returns the link slice.
func (m *Model) Links() []*Link { return m.links }

// Node looks a node up by id.
func (m *Model) Node(id string) (*Node, bool) {
	n, ok := m.byID[id]
	return n, ok
}

// NodeCount returns the number of nodes.
func (m *Model) NodeCount() int { return len(m.nodes) }

// LinkCount returns the number of links kept in the model.
func (m *Model) LinkCount() int { return len(m.links) }

// DroppedLinks reports how many links were discarded for dangling endpoints
// during Build under the DropDangling policy.
func (m *Model) DroppedLinks() int { return m.dropped }

// sanitize replaces non-finite coordinates so malformed input never reaches
// the integrator.
func sanitize(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
