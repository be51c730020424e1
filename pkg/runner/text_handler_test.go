package runner

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/aretw0/flowstep/pkg/domain"
	"github.com/aretw0/flowstep/pkg/view"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSession(t *testing.T) *domain.Session {
	t.Helper()
	net, err := domain.NewNetwork(3, []domain.EdgeSpec{{From: 0, To: 1, Capacity: 2}, {From: 1, To: 2, Capacity: 1}})
	require.NoError(t, err)
	return &domain.Session{ID: "t", Config: domain.DefaultConfig(), Current: domain.NewSnapshot(net)}
}

func TestTextHandler_Output(t *testing.T) {
	out := &bytes.Buffer{}
	handler := NewTextHandler(strings.NewReader(""), out, WithTextHandlerRenderer(func(s string) (string, error) {
		return "Rendered: " + s, nil
	}))

	require.NoError(t, handler.Output(context.Background(), testSession(t), nil))
	assert.Contains(t, out.String(), "Rendered: ## Step 0")
	assert.Contains(t, out.String(), "| s → 1 | 0 | 2 |")
}

func TestTextHandler_ShowView(t *testing.T) {
	out := &bytes.Buffer{}
	handler := NewTextHandler(strings.NewReader(""), out)
	sess := testSession(t)

	require.NoError(t, handler.ShowView(context.Background(), view.Residual(&sess.Current)))
	assert.Contains(t, out.String(), "### residual view")
	assert.Contains(t, out.String(), "graph LR")
}

func TestTextHandler_Input(t *testing.T) {
	out := &bytes.Buffer{}
	handler := NewTextHandler(strings.NewReader("  solve  \n"), out)

	val, err := handler.Input(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "solve", val)
	assert.Equal(t, "> ", out.String())

	_, err = handler.Input(context.Background())
	assert.ErrorIs(t, err, io.EOF)
}

func TestTextHandler_InputRetriesOnInvalid(t *testing.T) {
	out := &bytes.Buffer{}
	handler := NewTextHandler(strings.NewReader("\xff\xfe\nq\n"), out)

	val, err := handler.Input(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "q", val)
	assert.Contains(t, out.String(), "Please try again")
}

func TestTextHandler_InputCancelled(t *testing.T) {
	pr, pw := io.Pipe()
	defer pw.Close()
	handler := NewTextHandler(pr, io.Discard)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := handler.Input(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestTextHandler_SystemOutput(t *testing.T) {
	out := &bytes.Buffer{}
	handler := NewTextHandler(strings.NewReader(""), out)
	require.NoError(t, handler.SystemOutput(context.Background(), "nothing to undo"))
	assert.Equal(t, "\n[System] nothing to undo\n", out.String())
}
