package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aretw0/flowstep/internal/dto"
	"github.com/aretw0/flowstep/pkg/domain"
	"github.com/aretw0/flowstep/pkg/runner"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const example = "testdata/example.yaml"

func TestOverrides_Apply(t *testing.T) {
	cfg, err := Overrides{Granularity: "select", HistoryLimit: 5}.Apply(domain.DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, domain.Config{Granularity: domain.GranularitySelect, Labeling: domain.LabelingResidual, HistoryLimit: 5}, cfg)

	cfg, err = NoOverrides.Apply(domain.Config{Labeling: domain.LabelingForward, HistoryLimit: 2})
	require.NoError(t, err)
	assert.Equal(t, domain.GranularityScan, cfg.Granularity)
	assert.Equal(t, 2, cfg.HistoryLimit)

	_, err = Overrides{Labeling: "sideways", HistoryLimit: -1}.Apply(domain.DefaultConfig())
	assert.ErrorIs(t, err, domain.ErrConfiguration)
}

func firstEvent(t *testing.T, out string) runner.Event {
	t.Helper()
	line, _, _ := strings.Cut(out, "\n")
	var ev runner.Event
	require.NoError(t, json.Unmarshal([]byte(line), &ev))
	return ev
}

func runJSON(t *testing.T, opts RunOptions, input string) string {
	t.Helper()
	out := &bytes.Buffer{}
	opts.JSON = true
	opts.In = strings.NewReader(input)
	opts.Out = out
	require.NoError(t, RunSession(context.Background(), opts))
	return out.String()
}

func TestRunSession_Resume(t *testing.T) {
	t.Setenv(EnvStoreKey, "")
	t.Setenv(EnvRedisURL, "")
	opts := RunOptions{
		File:      example,
		SessionID: "demo",
		Store:     StoreOptions{Dir: t.TempDir()},
		Overrides: NoOverrides,
	}

	runJSON(t, opts, "n\nn\nq\n")

	ev := firstEvent(t, runJSON(t, opts, "q\n"))
	require.NotNil(t, ev.Session)
	assert.Equal(t, 2, ev.Session.StepCounter)
	assert.Equal(t, 2, ev.Session.HistoryDepth)

	opts.Fresh = true
	ev = firstEvent(t, runJSON(t, opts, "q\n"))
	assert.Zero(t, ev.Session.StepCounter)
}

func TestRunSession_ChangedNetworkStartsOver(t *testing.T) {
	t.Setenv(EnvStoreKey, "")
	t.Setenv(EnvRedisURL, "")
	dir := t.TempDir()
	path := filepath.Join(dir, "net.yaml")
	require.NoError(t, os.WriteFile(path, []byte("nodes: 2\nedges: [[0, 1, 5]]\n"), 0o644))

	opts := RunOptions{File: path, SessionID: "s", Store: StoreOptions{Dir: dir}, Overrides: NoOverrides}
	runJSON(t, opts, "n\n")

	require.NoError(t, os.WriteFile(path, []byte("nodes: 2\nedges: [[0, 1, 6]]\n"), 0o644))
	ev := firstEvent(t, runJSON(t, opts, "q\n"))
	assert.Zero(t, ev.Session.StepCounter)
}

func TestRunSession_Text(t *testing.T) {
	out := &bytes.Buffer{}
	err := RunSession(context.Background(), RunOptions{
		File:      example,
		Overrides: NoOverrides,
		In:        strings.NewReader("s\nq\n"),
		Out:       out,
	})
	require.NoError(t, err)
	assert.Contains(t, out.String(), "s t e p")
	assert.Contains(t, out.String(), "## Step 12")
	assert.Contains(t, out.String(), ">>> Finished at step 12: flow 3, minimum cut [0 1] with capacity 3.")
}

func TestRunSession_BadFile(t *testing.T) {
	err := RunSession(context.Background(), RunOptions{File: "testdata/missing.yaml", Overrides: NoOverrides, Out: &bytes.Buffer{}})
	assert.Error(t, err)
}

func TestSolve(t *testing.T) {
	out := &bytes.Buffer{}
	require.NoError(t, Solve(context.Background(), SolveOptions{File: example, Overrides: NoOverrides, Trace: true}, out))

	s := out.String()
	assert.Contains(t, s, "   1  scan s, labeled {1, 2}\n")
	assert.Contains(t, s, "   3  augment {s, 1, t} by 2\n")
	assert.Contains(t, s, "  12  terminate\n")
	assert.Contains(t, s, "flow value: 3\n")
	assert.Contains(t, s, "min cut:    {s, 1} (capacity 3)\n")
	assert.Contains(t, s, "  s -> 1  2/3\n")
}

func TestSolve_StepLimitAndJSON(t *testing.T) {
	out := &bytes.Buffer{}
	require.NoError(t, Solve(context.Background(), SolveOptions{File: example, Overrides: NoOverrides, MaxSteps: 3}, out))
	assert.Contains(t, out.String(), "step limit reached")

	out.Reset()
	require.NoError(t, Solve(context.Background(), SolveOptions{File: example, Overrides: NoOverrides, JSON: true}, out))
	var v dto.SessionView
	require.NoError(t, json.Unmarshal(out.Bytes(), &v))
	assert.Equal(t, "example", v.ID)
	assert.Equal(t, int64(3), v.FlowValue)
	require.NotNil(t, v.MinCut)
	assert.Equal(t, int64(3), v.MinCut.Capacity)
}

func TestGraph(t *testing.T) {
	ctx := context.Background()
	out := &bytes.Buffer{}

	require.NoError(t, Graph(ctx, GraphOptions{File: example, Overrides: NoOverrides}, out))
	assert.True(t, strings.HasPrefix(out.String(), "graph LR"))

	out.Reset()
	require.NoError(t, Graph(ctx, GraphOptions{File: example, Overrides: NoOverrides, View: "residual", Format: FormatDOT, Steps: -1}, out))
	assert.Contains(t, out.String(), "digraph G")

	out.Reset()
	require.NoError(t, Graph(ctx, GraphOptions{File: example, Overrides: NoOverrides, Format: FormatJSON, Steps: 3}, out))
	assert.Contains(t, out.String(), `"label": "2/3"`)

	assert.ErrorContains(t, Graph(ctx, GraphOptions{File: example, Overrides: NoOverrides, Format: "png"}, out), `unknown format "png"`)
	assert.ErrorContains(t, Graph(ctx, GraphOptions{File: example, Overrides: NoOverrides, View: "layout"}, out), `unknown view "layout"`)
}

func TestValidate(t *testing.T) {
	out := &bytes.Buffer{}
	require.NoError(t, Validate(example, out))
	assert.Equal(t, "Network 'example' is valid: 4 nodes, 4 edges, source capacity 4 (granularity=scan labeling=residual)\n", out.String())

	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("nodes: 2\nedges: [[0, 5, 1]]\n"), 0o644))
	assert.ErrorIs(t, Validate(bad, out), domain.ErrConfiguration)
}
