// Package dataset loads investigation graph data from YAML files. It backs
// the development server and the local-file viewer mode, standing in for the
// production graph database.
package dataset

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/tracive/linkscope/pkg/graph"
)

// Investigation is one scoped graph in a dataset file.
type Investigation struct {
	ID    string       `yaml:"id"`
	Title string       `yaml:"title,omitempty"`
	Nodes []graph.Node `yaml:"nodes"`
	Links []graph.Link `yaml:"links"`
}

// Dataset is the root of a dataset file.
type Dataset struct {
	Investigations []Investigation `yaml:"investigations"`
}

// Load parses a dataset file.
func Load(path string) (*Dataset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read dataset: %w", err)
	}
	var d Dataset
	if err := yaml.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("parse dataset %s: %w", path, err)
	}
	return &d, nil
}

// Graph returns the node and link collections for a scope. An empty scope
// returns the union across investigations, deduplicating shared entities by
// id (the first occurrence wins), mirroring the backend's unscoped sample.
// limit caps the node count; links referencing cut nodes are excluded.
func (d *Dataset) Graph(scope string, limit int) ([]graph.Node, []graph.Link, error) {
	var invs []Investigation
	if scope == "" {
		invs = d.Investigations
	} else {
		for _, inv := range d.Investigations {
			if inv.ID == scope {
				invs = append(invs, inv)
				break
			}
		}
		if len(invs) == 0 {
			return nil, nil, fmt.Errorf("unknown investigation %q", scope)
		}
	}

	seen := make(map[string]bool)
	var nodes []graph.Node
	for _, inv := range invs {
		for _, n := range inv.Nodes {
			if seen[n.ID] {
				continue
			}
			if limit > 0 && len(nodes) >= limit {
				break
			}
			seen[n.ID] = true
			nodes = append(nodes, n)
		}
	}

	var links []graph.Link
	for _, inv := range invs {
		for _, l := range inv.Links {
			if seen[l.Source] && seen[l.Target] {
				links = append(links, l)
			}
		}
	}
	return nodes, links, nil
}

// Neighborhood returns the subgraph within depth hops of the entity,
// breadth-first over the union graph.
func (d *Dataset) Neighborhood(entityID string, depth int) ([]graph.Node, []graph.Link, error) {
	allNodes, allLinks, err := d.Graph("", 0)
	if err != nil {
		return nil, nil, err
	}

	byID := make(map[string]graph.Node, len(allNodes))
	for _, n := range allNodes {
		byID[n.ID] = n
	}
	if _, ok := byID[entityID]; !ok {
		return nil, nil, fmt.Errorf("unknown entity %q", entityID)
	}

	adj := make(map[string][]string)
	for _, l := range allLinks {
		adj[l.Source] = append(adj[l.Source], l.Target)
		adj[l.Target] = append(adj[l.Target], l.Source)
	}

	reached := map[string]bool{entityID: true}
	frontier := []string{entityID}
	for hop := 0; hop < depth && len(frontier) > 0; hop++ {
		var next []string
		for _, id := range frontier {
			for _, nb := range adj[id] {
				if !reached[nb] {
					reached[nb] = true
					next = append(next, nb)
				}
			}
		}
		frontier = next
	}

	var nodes []graph.Node
	for _, n := range allNodes {
		if reached[n.ID] {
			nodes = append(nodes, n)
		}
	}
	var links []graph.Link
	for _, l := range allLinks {
		if reached[l.Source] && reached[l.Target] {
			links = append(links, l)
		}
	}
	return nodes, links, nil
}

// Fetcher adapts a dataset file to the viewer's Fetcher interface for the
// serverless local mode.
type Fetcher struct {
	path string
}

// NewFetcher wraps a dataset file path. The file is re-read on every fetch so
// a manual refresh picks up edits.
func NewFetcher(path string) *Fetcher { return &Fetcher{path: path} }

// FetchGraph implements viewer.Fetcher.
func (f *Fetcher) FetchGraph(_ context.Context, scope string) ([]graph.Node, []graph.Link, error) {
	d, err := Load(f.path)
	if err != nil {
		return nil, nil, err
	}
	return d.Graph(scope, 0)
}
