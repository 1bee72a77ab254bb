package dataset

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tracive/linkscope/pkg/graph"
)

const sampleDataset = `
investigations:
  - id: inv-1
    title: Phishing ring
    nodes:
      - id: e1
        name: Jane Doe
        type: Person
        properties:
          username: jdoe
          followers: 1200
      - id: e2
        name: ACME
        type: company
      - id: e3
        name: acme.example
        type: website
    links:
      - source: e1
        target: e2
        type: works_at
      - source: e2
        target: e3
        type: operates
  - id: inv-2
    title: Shell companies
    nodes:
      - id: e2
        name: ACME
        type: company
      - id: e4
        name: Globex
        type: company
    links:
      - source: e2
        target: e4
        type: subsidiary_of
`

func writeDataset(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "dataset.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	d, err := Load(writeDataset(t, sampleDataset))
	require.NoError(t, err)
	require.Len(t, d.Investigations, 2)
	assert.Equal(t, "Phishing ring", d.Investigations[0].Title)

	// YAML types fold into the closed set with order-preserving properties.
	n := d.Investigations[0].Nodes[0]
	assert.Equal(t, graph.TypePerson, n.Type)
	assert.Equal(t, "username", n.Properties[0].Key)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestLoadMalformed(t *testing.T) {
	_, err := Load(writeDataset(t, "investigations: [:::"))
	assert.Error(t, err)
}

func TestGraphScoped(t *testing.T) {
	d, err := Load(writeDataset(t, sampleDataset))
	require.NoError(t, err)

	nodes, links, err := d.Graph("inv-2", 0)
	require.NoError(t, err)
	assert.Len(t, nodes, 2)
	assert.Len(t, links, 1)
	assert.Equal(t, "subsidiary_of", links[0].Type)
}

func TestGraphUnknownScope(t *testing.T) {
	d, err := Load(writeDataset(t, sampleDataset))
	require.NoError(t, err)

	_, _, err = d.Graph("inv-404", 0)
	assert.Error(t, err)
}

func TestGraphUnionDeduplicates(t *testing.T) {
	d, err := Load(writeDataset(t, sampleDataset))
	require.NoError(t, err)

	nodes, links, err := d.Graph("", 0)
	require.NoError(t, err)

	// e2 appears in both investigations and must be kept once.
	assert.Len(t, nodes, 4)
	assert.Len(t, links, 3)

	ids := make(map[string]int)
	for _, n := range nodes {
		ids[n.ID]++
	}
	assert.Equal(t, 1, ids["e2"])
}

func TestGraphLimitCutsLinksToo(t *testing.T) {
	d, err := Load(writeDataset(t, sampleDataset))
	require.NoError(t, err)

	nodes, links, err := d.Graph("inv-1", 2)
	require.NoError(t, err)
	assert.Len(t, nodes, 2)

	// Links to cut nodes are excluded rather than left dangling.
	for _, l := range links {
		assert.NotEqual(t, "e3", l.Source)
		assert.NotEqual(t, "e3", l.Target)
	}
	assert.Len(t, links, 1)
}

func TestNeighborhood(t *testing.T) {
	d, err := Load(writeDataset(t, sampleDataset))
	require.NoError(t, err)

	// Depth 1 around e1: e1 plus its direct neighbor e2.
	nodes, links, err := d.Neighborhood("e1", 1)
	require.NoError(t, err)
	assert.Len(t, nodes, 2)
	assert.Len(t, links, 1)

	// Depth 2 reaches e3 and e4 through e2.
	nodes, links, err = d.Neighborhood("e1", 2)
	require.NoError(t, err)
	assert.Len(t, nodes, 4)
	assert.Len(t, links, 3)
}

func TestNeighborhoodUnknownEntity(t *testing.T) {
	d, err := Load(writeDataset(t, sampleDataset))
	require.NoError(t, err)

	_, _, err = d.Neighborhood("ghost", 1)
	assert.Error(t, err)
}

func TestFetcherRereadsFile(t *testing.T) {
	path := writeDataset(t, sampleDataset)
	f := NewFetcher(path)

	nodes, _, err := f.FetchGraph(context.Background(), "inv-1")
	require.NoError(t, err)
	assert.Len(t, nodes, 3)

	smaller := `
investigations:
  - id: inv-1
    nodes:
      - id: e1
        name: Jane Doe
        type: person
    links: []
`
	require.NoError(t, os.WriteFile(path, []byte(smaller), 0o644))

	nodes, _, err = f.FetchGraph(context.Background(), "inv-1")
	require.NoError(t, err)
	assert.Len(t, nodes, 1, "refresh picks up file edits")
}
