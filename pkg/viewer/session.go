package viewer

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/tracive/linkscope/pkg/force"
	"github.com/tracive/linkscope/pkg/graph"
	"github.com/tracive/linkscope/pkg/viewport"
)

// ErrClosed is returned by Load and Refresh after Close.
var ErrClosed = errors.New("viewer: session closed")

// Fetcher is the collaborator that produces raw graph data for a scope (an
// investigation id, or "" for the unscoped sample).
type Fetcher interface {
	FetchGraph(ctx context.Context, scope string) ([]graph.Node, []graph.Link, error)
}

// Options configures a session.
type Options struct {
	Force    *force.Options
	Viewport *viewport.Options
	Build    *graph.BuildOptions
	// PickRadius is the node hit-test radius in world units; defaults to
	// the collision radius.
	PickRadius float64
}

// Session coordinates the view lifecycle: fetch → model rebuild → simulation
// (re)start → teardown. It guarantees that at most one engine is ever live
// against the rendering surface: installing a new model stops and discards
// the previous engine, and a generation counter makes stale fetches inert.
//
// Methods are safe for concurrent use; the expected pattern is the host frame
// loop calling Step/Frame while Load runs on another goroutine.
type Session struct {
	fetcher Fetcher
	logger  *zap.Logger
	opts    Options

	mu         sync.Mutex
	transform  *viewport.Transform
	engine     *force.Engine
	controller *Controller
	scope      string
	gen        uint64
	loading    bool
	err        error
	closed     bool
}

// NewSession creates a session with no graph loaded yet.
func NewSession(fetcher Fetcher, opts *Options, logger *zap.Logger) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	o := Options{}
	if opts != nil {
		o = *opts
	}
	return &Session{
		fetcher:   fetcher,
		logger:    logger,
		opts:      o,
		transform: viewport.New(o.Viewport),
	}
}

// Load fetches the graph for the scope, builds a fresh model, and swaps the
// simulation. On failure the previous graph stays rendered and the error
// becomes user-visible state. A Load that is superseded by a newer one while
// fetching installs nothing.
func (s *Session) Load(ctx context.Context, scope string) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	s.gen++
	gen := s.gen
	s.loading = true
	s.err = nil
	s.scope = scope
	s.mu.Unlock()

	nodes, links, err := s.fetcher.FetchGraph(ctx, scope)
	if err != nil {
		err = fmt.Errorf("fetch graph: %w", err)
		s.fail(gen, err)
		return err
	}

	model, err := graph.Build(nodes, links, s.opts.Build)
	if err != nil {
		err = fmt.Errorf("build graph model: %w", err)
		s.fail(gen, err)
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || gen != s.gen {
		return nil // superseded; the newer load owns the view
	}
	if s.engine != nil {
		s.engine.Stop()
	}
	if n := model.DroppedLinks(); n > 0 {
		s.logger.Warn("dropped links with missing endpoints",
			zap.Int("dropped", n),
			zap.String("scope", scope),
		)
	}

	pick := s.opts.PickRadius
	if pick == 0 && s.opts.Force != nil {
		pick = s.opts.Force.CollideRadius
	}
	s.engine = force.New(model, s.opts.Force)
	s.controller = newController(s.engine, s.transform, pick)
	s.transform.Reset()
	s.loading = false

	s.logger.Info("graph loaded",
		zap.String("scope", scope),
		zap.Int("nodes", model.NodeCount()),
		zap.Int("links", model.LinkCount()),
	)
	return nil
}

func (s *Session) fail(gen uint64, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || gen != s.gen {
		return
	}
	s.loading = false
	s.err = err
	s.logger.Error("graph load failed", zap.String("scope", s.scope), zap.Error(err))
}

// Refresh re-runs the load for the current scope.
func (s *Session) Refresh(ctx context.Context) error {
	s.mu.Lock()
	scope := s.scope
	s.mu.Unlock()
	return s.Load(ctx, scope)
}

// Step advances the simulation one tick. It reports whether positions
// changed; an Idle or missing engine does no work.
func (s *Session) Step() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.engine == nil {
		return false
	}
	return s.engine.Tick()
}

// Close tears the session down: the current engine is stopped
// unconditionally and no further loads are accepted. Idempotent.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	s.gen++ // invalidate in-flight loads
	if s.engine != nil {
		s.engine.Stop()
	}
	s.controller = nil
}

// FitView frames the current node positions inside a width×height viewport.
// No-op before the first successful load.
func (s *Session) FitView(width, height, padding float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.engine == nil {
		return
	}
	nodes := s.engine.Model().Nodes()
	if len(nodes) == 0 {
		return
	}
	x0, y0 := nodes[0].X, nodes[0].Y
	x1, y1 := x0, y0
	for _, n := range nodes[1:] {
		if n.X < x0 {
			x0 = n.X
		}
		if n.X > x1 {
			x1 = n.X
		}
		if n.Y < y0 {
			y0 = n.Y
		}
		if n.Y > y1 {
			y1 = n.Y
		}
	}
	s.transform.Fit(x0, y0, x1, y1, width, height, padding)
}

// Loading reports whether a fetch is in flight.
func (s *Session) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// Err returns the user-visible error from the most recent failed load, nil
// once a load succeeds.
func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Scope returns the currently requested scope.
func (s *Session) Scope() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.scope
}

// Controller returns the interaction controller for the current graph, nil
// before the first successful load.
func (s *Session) Controller() *Controller {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.controller
}

// Transform returns the authoritative view transform. It survives reloads
// (Load resets it to the identity as policy).
func (s *Session) Transform() *viewport.Transform { return s.transform }

// Engine exposes the live engine; primarily for tests and diagnostics.
func (s *Session) Engine() *force.Engine {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine
}

// Counts returns the node and link counts of the current model.
func (s *Session) Counts() (nodes, links int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.engine == nil {
		return 0, 0
	}
	m := s.engine.Model()
	return m.NodeCount(), m.LinkCount()
}
