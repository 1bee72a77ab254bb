package viewer

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tracive/linkscope/pkg/graph"
)

// stubFetcher serves canned data and records the scopes it was asked for.
type stubFetcher struct {
	nodes  []graph.Node
	links  []graph.Link
	err    error
	scopes []string
}

func (f *stubFetcher) FetchGraph(_ context.Context, scope string) ([]graph.Node, []graph.Link, error) {
	f.scopes = append(f.scopes, scope)
	if f.err != nil {
		return nil, nil, f.err
	}
	return f.nodes, f.links, nil
}

func twoNodeData() ([]graph.Node, []graph.Link) {
	nodes := []graph.Node{
		{ID: "e1", Name: "Jane Doe", Type: graph.TypePerson, X: 100, Y: 50},
		{ID: "e2", Name: "ACME", Type: graph.TypeCompany, X: 300, Y: 50},
	}
	links := []graph.Link{{Source: "e1", Target: "e2", Type: "works_at"}}
	return nodes, links
}

func TestLoadInstallsEngine(t *testing.T) {
	nodes, links := twoNodeData()
	f := &stubFetcher{nodes: nodes, links: links}
	s := NewSession(f, nil, nil)

	require.NoError(t, s.Load(context.Background(), "inv-1"))

	assert.Equal(t, "inv-1", s.Scope())
	assert.False(t, s.Loading())
	assert.NoError(t, s.Err())
	assert.NotNil(t, s.Controller())
	require.NotNil(t, s.Engine())

	n, l := s.Counts()
	assert.Equal(t, 2, n)
	assert.Equal(t, 1, l)

	frame := s.Frame()
	assert.Len(t, frame.Nodes, 2)
	assert.Len(t, frame.Links, 1)
	assert.Greater(t, frame.Alpha, 0.0)
}

func TestLoadFailureKeepsPreviousGraph(t *testing.T) {
	nodes, links := twoNodeData()
	f := &stubFetcher{nodes: nodes, links: links}
	s := NewSession(f, nil, nil)
	require.NoError(t, s.Load(context.Background(), ""))
	engine := s.Engine()

	f.err = errors.New("backend down")
	err := s.Load(context.Background(), "")
	require.Error(t, err)

	// The failed load is user-visible, but the previous graph stays rendered.
	assert.Error(t, s.Err())
	assert.Same(t, engine, s.Engine())
	assert.False(t, engine.Stopped())
	n, _ := s.Counts()
	assert.Equal(t, 2, n)
	assert.False(t, s.Loading())

	// A successful reload clears the error.
	f.err = nil
	require.NoError(t, s.Load(context.Background(), ""))
	assert.NoError(t, s.Err())
}

func TestReloadReplacesEngineAndResetsView(t *testing.T) {
	nodes, links := twoNodeData()
	f := &stubFetcher{nodes: nodes, links: links}
	s := NewSession(f, nil, nil)
	require.NoError(t, s.Load(context.Background(), ""))

	old := s.Engine()
	s.Transform().Pan(40, 40)

	require.NoError(t, s.Load(context.Background(), ""))

	assert.True(t, old.Stopped(), "superseded engine must be stopped")
	assert.NotSame(t, old, s.Engine())

	tx, ty := s.Transform().Translation()
	assert.Equal(t, 0.0, tx)
	assert.Equal(t, 0.0, ty)
	assert.Equal(t, 1.0, s.Transform().Scale())
}

func TestRefreshUsesCurrentScope(t *testing.T) {
	nodes, _ := twoNodeData()
	f := &stubFetcher{nodes: nodes}
	s := NewSession(f, nil, nil)

	require.NoError(t, s.Load(context.Background(), "inv-7"))
	require.NoError(t, s.Refresh(context.Background()))

	assert.Equal(t, []string{"inv-7", "inv-7"}, f.scopes)
}

// gatedFetcher blocks its first fetch until released, so a second load can
// overtake it.
type gatedFetcher struct {
	started chan struct{}
	gate    chan struct{}
	calls   int32
}

func (f *gatedFetcher) FetchGraph(_ context.Context, _ string) ([]graph.Node, []graph.Link, error) {
	if atomic.AddInt32(&f.calls, 1) == 1 {
		close(f.started)
		<-f.gate
		return []graph.Node{{ID: "stale"}}, nil, nil
	}
	return []graph.Node{{ID: "fresh-1"}, {ID: "fresh-2"}}, nil, nil
}

func TestSupersededLoadInstallsNothing(t *testing.T) {
	f := &gatedFetcher{started: make(chan struct{}), gate: make(chan struct{})}
	s := NewSession(f, nil, nil)

	done := make(chan error, 1)
	go func() { done <- s.Load(context.Background(), "") }()
	<-f.started

	// The second load wins the generation race.
	require.NoError(t, s.Load(context.Background(), ""))
	close(f.gate)
	require.NoError(t, <-done, "superseded load reports no error and installs nothing")

	n, _ := s.Counts()
	assert.Equal(t, 2, n, "the newer load owns the view")
	_, ok := s.Engine().Model().Node("stale")
	assert.False(t, ok)
}

func TestStepDrivesEngineToIdle(t *testing.T) {
	nodes, links := twoNodeData()
	f := &stubFetcher{nodes: nodes, links: links}
	s := NewSession(f, nil, nil)

	assert.False(t, s.Step(), "no engine before first load")

	require.NoError(t, s.Load(context.Background(), ""))
	require.True(t, s.Step())

	ticks := 1
	for s.Step() {
		ticks++
		require.Less(t, ticks, 1000)
	}
	assert.False(t, s.Step())
}

func TestCloseIsTerminal(t *testing.T) {
	nodes, _ := twoNodeData()
	f := &stubFetcher{nodes: nodes}
	s := NewSession(f, nil, nil)
	require.NoError(t, s.Load(context.Background(), ""))
	engine := s.Engine()

	s.Close()
	s.Close()

	assert.True(t, engine.Stopped())
	assert.Nil(t, s.Controller())
	assert.ErrorIs(t, s.Load(context.Background(), ""), ErrClosed)
	assert.ErrorIs(t, s.Refresh(context.Background()), ErrClosed)
	assert.False(t, s.Step())
}

func TestFrameSelectionDetail(t *testing.T) {
	nodes, links := twoNodeData()
	nodes[0].Properties = graph.Properties{
		{Key: "username", Value: "jdoe"},
		{Key: "followers", Value: 1200},
	}
	f := &stubFetcher{nodes: nodes, links: links}
	s := NewSession(f, nil, nil)
	require.NoError(t, s.Load(context.Background(), ""))

	// Click the node at its world position (identity transform after load).
	c := s.Controller()
	c.PointerDown(100, 50)
	c.PointerUp(100, 50)

	frame := s.Frame()
	require.NotNil(t, frame.Selection)
	assert.Equal(t, "e1", frame.Selection.ID)
	assert.Equal(t, "Jane Doe", frame.Selection.Name)
	assert.Equal(t, []string{"username", "followers"}, []string{
		frame.Selection.Properties[0].Key,
		frame.Selection.Properties[1].Key,
	})

	for _, n := range frame.Nodes {
		assert.Equal(t, n.ID == "e1", n.Selected)
	}
}

// The TUI runs Load on a worker goroutine while pan and zoom keys mutate the
// transform on the event loop; the shared transform must survive that. Run
// with -race.
func TestViewMutationDuringLoad(t *testing.T) {
	nodes, links := twoNodeData()
	f := &stubFetcher{nodes: nodes, links: links}
	s := NewSession(f, nil, nil)
	require.NoError(t, s.Load(context.Background(), ""))

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 50; i++ {
			_ = s.Load(context.Background(), "")
		}
	}()

	tr := s.Transform()
	for i := 0; i < 500; i++ {
		tr.Pan(1, 1)
		tr.ZoomAt(10, 10, 1.01)
		s.Step()
	}
	<-done

	assert.GreaterOrEqual(t, tr.Scale(), 0.5)
	assert.LessOrEqual(t, tr.Scale(), 3.0)
	assert.NoError(t, s.Err())
}

func TestFitViewFramesGraph(t *testing.T) {
	nodes, _ := twoNodeData()
	f := &stubFetcher{nodes: nodes}
	s := NewSession(f, nil, nil)

	s.FitView(800, 600, 40) // no engine yet: no-op
	assert.Equal(t, 1.0, s.Transform().Scale())

	require.NoError(t, s.Load(context.Background(), ""))
	s.FitView(800, 600, 40)

	// Both nodes project inside the padded viewport.
	frame := s.Frame()
	for _, n := range frame.Nodes {
		assert.GreaterOrEqual(t, n.X, 0.0)
		assert.LessOrEqual(t, n.X, 800.0)
		assert.GreaterOrEqual(t, n.Y, 0.0)
		assert.LessOrEqual(t, n.Y, 600.0)
	}
}
