package tui

import (
	"bytes"
	"testing"

	"github.com/aretw0/flowstep/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func snapshot(t *testing.T) domain.Snapshot {
	t.Helper()
	net, err := domain.NewNetwork(3, []domain.EdgeSpec{
		{From: 0, To: 1, Capacity: 4},
		{From: 1, To: 2, Capacity: 3},
	})
	require.NoError(t, err)
	return domain.NewSnapshot(net)
}

func TestStatusMarkdown_Augment(t *testing.T) {
	snap := snapshot(t)
	snap.Network.Edges[0].Flow = 3
	snap.Network.Edges[1].Flow = 3
	snap.State.StepCounter = 3

	md := StatusMarkdown(&snap, &domain.StepResult{Kind: domain.KindAugment, Path: []int{0, 1, 2}, Amount: 3})
	assert.Contains(t, md, "## Step 3")
	assert.Contains(t, md, "**augment** along `s → 1 → t` by 3")
	assert.Contains(t, md, "Flow value: **3**")
	assert.Contains(t, md, "| s → 1 | 3 | 4 |")
}

func TestStatusMarkdown_Scan(t *testing.T) {
	snap := snapshot(t)
	snap.State.Labeled = []int{0, 1}
	snap.State.Scanned = []int{0}
	snap.State.Predecessor = map[int]int{1: 0}
	zero := 0

	md := StatusMarkdown(&snap, &domain.StepResult{Kind: domain.KindScan, Node: &zero, Labeled: []int{1}})
	assert.Contains(t, md, "**scan** node s, labeled {1}")
	assert.Contains(t, md, "Labeled: {s, 1}")
	assert.Contains(t, md, "| s → 1 | 0 | 4 | yes |")
}

func TestStatusMarkdown_Terminated(t *testing.T) {
	snap := snapshot(t)
	snap.Network.Edges[0].Flow = 3
	snap.Network.Edges[1].Flow = 3
	snap.State.Labeled = []int{0, 1}
	snap.State.Terminated = true

	md := StatusMarkdown(&snap, nil)
	assert.Contains(t, md, "minimum cut {s, 1} with capacity 3")
	assert.Contains(t, md, "Scanned: none")
}

func TestPrintBanner(t *testing.T) {
	var buf bytes.Buffer
	PrintBanner(&buf)
	assert.Contains(t, buf.String(), "s t e p")
}

func TestPlainRenderer(t *testing.T) {
	out, err := PlainRenderer("# hi")
	require.NoError(t, err)
	assert.Equal(t, "# hi", out)
}
