// Package client fetches relationship graph data from the dashboard API. It
// speaks the collaborator's wire format: a node collection and a link
// collection, optionally scoped to one investigation.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/tracive/linkscope/pkg/graph"
)

// DefaultLimit mirrors the backend's default node cap.
const DefaultLimit = 100

// Client is a read-only graph API client. Failures surface to the caller;
// there are no silent retries; the refresh control is the retry affordance.
type Client struct {
	base   string
	http   *http.Client
	logger *zap.Logger
	limit  int
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient swaps the underlying http.Client (tests, custom transport).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithLogger attaches a logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithLimit overrides the node cap sent to the backend.
func WithLimit(n int) Option {
	return func(c *Client) { c.limit = n }
}

// New creates a client for the API at baseURL (e.g. "http://localhost:8780").
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		base:   baseURL,
		http:   &http.Client{Timeout: 15 * time.Second},
		logger: zap.NewNop(),
		limit:  DefaultLimit,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// payload is the wire shape shared by both graph endpoints.
type payload struct {
	Nodes []graph.Node `json:"nodes"`
	Links []graph.Link `json:"links"`
}

// FetchGraph retrieves the graph for an investigation scope; an empty scope
// asks for the unscoped sample. Implements viewer.Fetcher.
func (c *Client) FetchGraph(ctx context.Context, scope string) ([]graph.Node, []graph.Link, error) {
	q := url.Values{}
	if scope != "" {
		q.Set("investigation_id", scope)
	}
	q.Set("limit", strconv.Itoa(c.limit))
	return c.get(ctx, "/graph?"+q.Encode())
}

// FetchEntity retrieves the neighborhood graph centered on one entity, up to
// depth hops away.
func (c *Client) FetchEntity(ctx context.Context, entityID string, depth int) ([]graph.Node, []graph.Link, error) {
	if depth < 1 {
		depth = 1
	}
	q := url.Values{}
	q.Set("depth", strconv.Itoa(depth))
	return c.get(ctx, "/graph/entity/"+url.PathEscape(entityID)+"?"+q.Encode())
}

func (c *Client) get(ctx context.Context, path string) ([]graph.Node, []graph.Link, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+path, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("graph api: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, nil, fmt.Errorf("graph api: unexpected status %s", resp.Status)
	}

	var p payload
	if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
		return nil, nil, fmt.Errorf("graph api: decode response: %w", err)
	}

	c.logger.Debug("graph fetched",
		zap.String("path", path),
		zap.Int("nodes", len(p.Nodes)),
		zap.Int("links", len(p.Links)),
		zap.Duration("duration", time.Since(start)),
	)
	return p.Nodes, p.Links, nil
}
