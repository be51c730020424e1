package mcp

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/aretw0/flowstep/pkg/adapters/memory"
	"github.com/aretw0/flowstep/pkg/domain"
	"github.com/aretw0/flowstep/pkg/session"
	"github.com/aretw0/flowstep/pkg/view"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const network = `
nodes: 4
edges:
  - [0, 1, 3]
  - [1, 3, 2]
  - [0, 2, 1]
  - [2, 3, 4]
`

func newTestServer(t *testing.T) *Server {
	t.Helper()
	s := NewServer(session.NewManager(memory.NewStore()), nil)
	_, err := s.handleCreateSession(context.Background(), mcp.CallToolRequest{}, CreateSessionArgs{SessionID: "s1", Network: network})
	require.NoError(t, err)
	return s
}

func TestCreateSession(t *testing.T) {
	s := NewServer(session.NewManager(memory.NewStore()), nil)
	ctx := context.Background()

	v, err := s.handleCreateSession(ctx, mcp.CallToolRequest{}, CreateSessionArgs{
		Network: "nodes = 2\nedges = [[0, 1, 5]]\n[options]\ngranularity = \"select\"\n",
		Format:  "TOML",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, v.ID)
	assert.Equal(t, domain.GranularitySelect, v.Config.Granularity)

	_, err = s.handleCreateSession(ctx, mcp.CallToolRequest{}, CreateSessionArgs{Network: "nodes: 1"})
	assert.ErrorIs(t, err, domain.ErrConfiguration)
}

func TestStepUndoSolve(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	res, err := s.handleStep(ctx, mcp.CallToolRequest{}, SessionArgs{SessionID: "s1"})
	require.NoError(t, err)
	assert.Equal(t, domain.KindScan, res.Kind)
	assert.Equal(t, []int{0, 1, 2}, res.Session.Labeled)

	res, err = s.handleUndo(ctx, mcp.CallToolRequest{}, SessionArgs{SessionID: "s1"})
	require.NoError(t, err)
	assert.Equal(t, domain.KindUndo, res.Kind)

	_, err = s.handleUndo(ctx, mcp.CallToolRequest{}, SessionArgs{SessionID: "s1"})
	assert.ErrorIs(t, err, domain.ErrNothingToUndo)

	res, err = s.handleSolve(ctx, mcp.CallToolRequest{}, SolveArgs{SessionID: "s1"})
	require.NoError(t, err)
	assert.Equal(t, domain.KindTerminate, res.Kind)
	assert.Equal(t, int64(3), res.Session.FlowValue)

	_, err = s.handleSolve(ctx, mcp.CallToolRequest{}, SolveArgs{SessionID: "s1", MaxSteps: -2})
	assert.Error(t, err)
	_, err = s.handleStep(ctx, mcp.CallToolRequest{}, SessionArgs{SessionID: "ghost"})
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	_, err = s.handleStep(ctx, mcp.CallToolRequest{}, SessionArgs{})
	assert.Error(t, err)
}

func TestGetState(t *testing.T) {
	s := newTestServer(t)
	v, err := s.handleGetState(context.Background(), mcp.CallToolRequest{}, SessionArgs{SessionID: "s1"})
	require.NoError(t, err)
	assert.Equal(t, 4, v.NumberOfNodes)
	assert.Len(t, v.Edges, 4)
}

func TestRenderView(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	out, err := s.handleRenderView(ctx, mcp.CallToolRequest{}, RenderViewArgs{SessionID: "s1"})
	require.NoError(t, err)
	assert.Equal(t, "json", out.Format)
	var g view.Graph
	require.NoError(t, json.Unmarshal([]byte(out.Content), &g))
	assert.Equal(t, view.KindNetwork, g.Kind)

	out, err = s.handleRenderView(ctx, mcp.CallToolRequest{}, RenderViewArgs{SessionID: "s1", Kind: "residual", Format: "mermaid"})
	require.NoError(t, err)
	assert.Equal(t, view.KindResidual, out.Kind)
	assert.Contains(t, out.Content, "graph LR")

	out, err = s.handleRenderView(ctx, mcp.CallToolRequest{}, RenderViewArgs{SessionID: "s1", Format: "dot"})
	require.NoError(t, err)
	assert.Contains(t, out.Content, "digraph")

	_, err = s.handleRenderView(ctx, mcp.CallToolRequest{}, RenderViewArgs{SessionID: "s1", Format: "gif"})
	assert.Error(t, err)
	_, err = s.handleRenderView(ctx, mcp.CallToolRequest{}, RenderViewArgs{SessionID: "s1", Kind: "layout"})
	assert.Error(t, err)
}

func TestToolsRegistered(t *testing.T) {
	s := newTestServer(t)
	resp := s.MCPServer().HandleMessage(context.Background(),
		json.RawMessage(`{"jsonrpc":"2.0","id":1,"method":"tools/list"}`))
	raw, err := json.Marshal(resp)
	require.NoError(t, err)
	for _, name := range []string{"create_session", "step", "undo", "solve", "get_state", "render_view"} {
		assert.Contains(t, string(raw), `"name":"`+name+`"`)
	}
}
