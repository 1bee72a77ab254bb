package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tracive/linkscope/pkg/graph"
)

const testDataset = `
investigations:
  - id: inv-1
    nodes:
      - id: e1
        name: Jane Doe
        type: Person
      - id: e2
        name: ACME
        type: company
    links:
      - source: e1
        target: e2
        type: works_at
`

func newTestServer(t *testing.T) (*Server, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "dataset.yaml")
	require.NoError(t, os.WriteFile(path, []byte(testDataset), 0o644))
	srv, err := New(path, zap.NewNop())
	require.NoError(t, err)
	return srv, path
}

func getJSON(t *testing.T, ts *httptest.Server, path string, out any) int {
	t.Helper()
	resp, err := http.Get(ts.URL + path)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	return resp.StatusCode
}

func TestHealthz(t *testing.T) {
	srv, _ := newTestServer(t)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	var body map[string]string
	status := getJSON(t, ts, "/healthz", &body)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ok", body["status"])
}

func TestGraphEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	var body struct {
		Nodes []graph.Node `json:"nodes"`
		Links []graph.Link `json:"links"`
	}
	status := getJSON(t, ts, "/graph?investigation_id=inv-1", &body)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, body.Nodes, 2)
	assert.Len(t, body.Links, 1)
	assert.Equal(t, graph.TypePerson, body.Nodes[0].Type)
}

func TestGraphUnknownScope(t *testing.T) {
	srv, _ := newTestServer(t)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	var body map[string]string
	status := getJSON(t, ts, "/graph?investigation_id=inv-404", &body)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Contains(t, body["detail"], "inv-404")
}

func TestGraphLimitValidation(t *testing.T) {
	srv, _ := newTestServer(t)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	for _, raw := range []string{"0", "-5", "abc"} {
		var body map[string]string
		status := getJSON(t, ts, "/graph?limit="+raw, &body)
		assert.Equal(t, http.StatusBadRequest, status, "limit=%s", raw)
		assert.NotEmpty(t, body["detail"])
	}
}

func TestEntityEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	var body struct {
		Nodes []graph.Node `json:"nodes"`
	}
	status := getJSON(t, ts, "/graph/entity/e1?depth=1", &body)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, body.Nodes, 2)

	var errBody map[string]string
	status = getJSON(t, ts, "/graph/entity/ghost", &errBody)
	assert.Equal(t, http.StatusNotFound, status)

	status = getJSON(t, ts, "/graph/entity/e1?depth=0", &errBody)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestReloadServesNewData(t *testing.T) {
	srv, path := newTestServer(t)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	updated := strings.Replace(testDataset, "Jane Doe", "J. Doe", 1)
	require.NoError(t, os.WriteFile(path, []byte(updated), 0o644))
	require.NoError(t, srv.Reload())

	var body struct {
		Nodes []graph.Node `json:"nodes"`
	}
	status := getJSON(t, ts, "/graph?investigation_id=inv-1", &body)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "J. Doe", body.Nodes[0].Name)
}

func TestReloadKeepsDataOnBadFile(t *testing.T) {
	srv, path := newTestServer(t)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	require.NoError(t, os.WriteFile(path, []byte(":::"), 0o644))
	require.Error(t, srv.Reload())

	var body struct {
		Nodes []graph.Node `json:"nodes"`
	}
	status := getJSON(t, ts, "/graph?investigation_id=inv-1", &body)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, body.Nodes, 2, "previous dataset keeps serving")
}

func TestLiveBroadcastOnReload(t *testing.T) {
	srv, _ := newTestServer(t)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/live"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	// Registration is asynchronous with the upgrade response; give the hub a
	// moment before broadcasting.
	time.Sleep(50 * time.Millisecond)
	require.NoError(t, srv.Reload())

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var n struct {
		Type string `json:"type"`
	}
	require.NoError(t, json.Unmarshal(data, &n))
	assert.Equal(t, "graph:update", n.Type)
}
