package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/aretw0/flowstep"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	out := &bytes.Buffer{}
	rootCmd.SetOut(out)
	rootCmd.SetErr(out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "flowstep version "+strings.TrimSpace(flowstep.Version)+"\n", out)
}

func TestSolveCommand(t *testing.T) {
	out, err := execute(t, "solve", "testdata/example.yaml", "--granularity", "select")
	require.NoError(t, err)
	assert.Contains(t, out, "flow value: 3")
	assert.Contains(t, out, "min cut:    {s, 1} (capacity 3)")
}

func TestGraphCommand(t *testing.T) {
	out, err := execute(t, "graph", "testdata/example.yaml", "--view", "residual", "--solve", "-f", "dot")
	require.NoError(t, err)
	assert.Contains(t, out, "digraph G")
}

func TestValidateCommand(t *testing.T) {
	out, err := execute(t, "validate", "testdata/example.yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "Network 'example' is valid")

	_, err = execute(t, "validate")
	assert.Error(t, err)
}

func TestSessionCommands(t *testing.T) {
	t.Setenv("FLOWSTEP_REDIS_URL", "")
	t.Setenv("FLOWSTEP_STORE_KEY", "")
	dir := t.TempDir()

	out, err := execute(t, "session", "ls", "--dir", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "No sessions found.")

	_, err = execute(t, "session", "inspect", "ghost", "--dir", dir)
	assert.ErrorContains(t, err, "error loading session 'ghost'")
}
