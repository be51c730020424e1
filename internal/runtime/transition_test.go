package runtime_test

import (
	"testing"

	"github.com/aretw0/flowstep/internal/runtime"
	"github.com/aretw0/flowstep/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scenarioEdges() []domain.EdgeSpec {
	return []domain.EdgeSpec{
		{From: 0, To: 1, Capacity: 5},
		{From: 0, To: 2, Capacity: 6},
		{From: 1, To: 3, Capacity: 1},
		{From: 1, To: 4, Capacity: 2},
		{From: 2, To: 4, Capacity: 1},
		{From: 3, To: 5, Capacity: 2},
		{From: 4, To: 5, Capacity: 3},
	}
}

// crossingEdges has a greedy first path 0-1-4-5 that can only be undone
// through the backward residual of 1->4.
func crossingEdges() []domain.EdgeSpec {
	return []domain.EdgeSpec{
		{From: 0, To: 1, Capacity: 1},
		{From: 0, To: 2, Capacity: 1},
		{From: 1, To: 4, Capacity: 1},
		{From: 1, To: 3, Capacity: 1},
		{From: 2, To: 4, Capacity: 1},
		{From: 4, To: 5, Capacity: 1},
		{From: 3, To: 5, Capacity: 1},
	}
}

func bootstrap(t *testing.T, nodes int, edges []domain.EdgeSpec) domain.Snapshot {
	t.Helper()
	net, err := domain.NewNetwork(nodes, edges)
	require.NoError(t, err)
	return domain.NewSnapshot(net)
}

func runToEnd(t *testing.T, snap domain.Snapshot, cfg domain.Config) (domain.Snapshot, []domain.StepResult) {
	t.Helper()
	var results []domain.StepResult
	for i := 0; i < 1000 && !snap.State.Terminated; i++ {
		next, res, err := runtime.Transition(snap, cfg)
		require.NoError(t, err)
		results = append(results, res)
		snap = next
	}
	require.True(t, snap.State.Terminated, "run did not terminate")
	return snap, results
}

func kinds(results []domain.StepResult) []domain.StepKind {
	out := make([]domain.StepKind, len(results))
	for i, r := range results {
		out[i] = r.Kind
	}
	return out
}

func TestTransition_Scenario(t *testing.T) {
	for _, mode := range []domain.LabelingMode{domain.LabelingResidual, domain.LabelingForward} {
		t.Run(string(mode), func(t *testing.T) {
			cfg := domain.Config{Granularity: domain.GranularityScan, Labeling: mode}
			final, results := runToEnd(t, bootstrap(t, 6, scenarioEdges()), cfg)

			assert.Equal(t, int64(4), final.Network.FlowValue())
			assert.Equal(t, []int{0, 1, 2}, final.State.Labeled)
			assert.Equal(t, 22, final.State.StepCounter)
			assert.Equal(t, int64(4), final.Network.CutCapacity(final.State.Labeled))

			for _, pair := range [][2]int{{1, 3}, {1, 4}, {2, 4}} {
				e, ok := final.Network.Edge(pair[0], pair[1])
				require.True(t, ok)
				assert.Equal(t, e.Capacity, e.Flow, "edge %v should be saturated", pair)
			}

			var augments []domain.StepResult
			for _, r := range results {
				if r.Kind == domain.KindAugment {
					augments = append(augments, r)
				}
			}
			require.Len(t, augments, 3)
			assert.Equal(t, []int{0, 1, 3, 5}, augments[0].Path)
			assert.Equal(t, int64(1), augments[0].Amount)
			assert.Equal(t, []int{0, 1, 4, 5}, augments[1].Path)
			assert.Equal(t, int64(2), augments[1].Amount)
			assert.Equal(t, []int{0, 2, 4, 5}, augments[2].Path)
			assert.Equal(t, int64(1), augments[2].Amount)
		})
	}
}

func TestTransition_FirstRound(t *testing.T) {
	_, results := runToEnd(t, bootstrap(t, 6, scenarioEdges()), domain.DefaultConfig())

	assert.Equal(t, []domain.StepKind{
		domain.KindScan, domain.KindScan, domain.KindScan, domain.KindScan,
		domain.KindAugment, domain.KindResetIntermediate,
	}, kinds(results[:6]))

	first := results[0]
	require.NotNil(t, first.Node)
	assert.Equal(t, 0, *first.Node)
	assert.Equal(t, []int{1, 2}, first.Labeled)
	assert.Equal(t, map[int]int{1: 0, 2: 0}, first.Snapshot.State.Predecessor)

	aug := results[4].Snapshot.State
	assert.True(t, aug.Intermediate)
	assert.Equal(t, []int{0}, aug.Labeled)
	assert.Empty(t, aug.Scanned)
	assert.Equal(t, map[int]int{1: 0, 3: 1, 5: 3}, aug.Predecessor, "predecessor shows the augmenting path")

	reset := results[5].Snapshot.State
	assert.False(t, reset.Intermediate)
	assert.Empty(t, reset.Predecessor)
	assert.Equal(t, 6, reset.StepCounter)
}

func TestTransition_Disconnected(t *testing.T) {
	snap := bootstrap(t, 4, []domain.EdgeSpec{
		{From: 0, To: 1, Capacity: 3},
		{From: 2, To: 3, Capacity: 2},
	})
	final, results := runToEnd(t, snap, domain.DefaultConfig())

	assert.Equal(t, []domain.StepKind{domain.KindScan, domain.KindScan, domain.KindTerminate}, kinds(results))
	assert.Zero(t, final.Network.FlowValue())
	assert.Equal(t, []int{0, 1}, final.State.Labeled)
	assert.Equal(t, int64(0), final.Network.CutCapacity(final.State.Labeled))
}

func TestTransition_SelectGranularity(t *testing.T) {
	cfg := domain.Config{Granularity: domain.GranularitySelect, Labeling: domain.LabelingResidual}
	final, results := runToEnd(t, bootstrap(t, 6, scenarioEdges()), cfg)

	assert.Equal(t, int64(4), final.Network.FlowValue())
	assert.Equal(t, []int{0, 1, 2}, final.State.Labeled)
	assert.Equal(t, 37, final.State.StepCounter)
	assert.Nil(t, final.State.CurrentNode)

	assert.Equal(t, domain.KindSelect, results[0].Kind)
	require.NotNil(t, results[0].Snapshot.State.CurrentNode)
	assert.Equal(t, 0, *results[0].Snapshot.State.CurrentNode)
	assert.Equal(t, []int{0}, results[0].Snapshot.State.Labeled, "selecting does not label")

	assert.Equal(t, domain.KindScan, results[1].Kind)
	assert.Nil(t, results[1].Snapshot.State.CurrentNode)
	assert.Equal(t, []int{0, 1, 2}, results[1].Snapshot.State.Labeled)

	assert.Equal(t, domain.KindTerminate, results[len(results)-1].Kind)
}

func TestTransition_LabelingModes(t *testing.T) {
	t.Run("forward labeling stops short", func(t *testing.T) {
		cfg := domain.Config{Granularity: domain.GranularityScan, Labeling: domain.LabelingForward}
		final, _ := runToEnd(t, bootstrap(t, 6, crossingEdges()), cfg)
		assert.Equal(t, int64(1), final.Network.FlowValue())
		assert.Equal(t, []int{0, 2, 4}, final.State.Labeled)
	})

	t.Run("residual labeling cancels flow", func(t *testing.T) {
		final, results := runToEnd(t, bootstrap(t, 6, crossingEdges()), domain.DefaultConfig())
		assert.Equal(t, int64(2), final.Network.FlowValue())
		assert.Equal(t, []int{0}, final.State.Labeled)
		assert.Equal(t, final.Network.FlowValue(), final.Network.CutCapacity(final.State.Labeled))

		var paths [][]int
		for _, r := range results {
			if r.Kind == domain.KindAugment {
				paths = append(paths, r.Path)
			}
		}
		assert.Equal(t, [][]int{{0, 1, 4, 5}, {0, 2, 4, 1, 3, 5}}, paths)

		back, ok := final.Network.Edge(1, 4)
		require.True(t, ok)
		assert.Zero(t, back.Flow)
	})
}

func TestTransition_TerminatedIsAbsorbing(t *testing.T) {
	final, _ := runToEnd(t, bootstrap(t, 6, scenarioEdges()), domain.DefaultConfig())
	for i := 0; i < 3; i++ {
		next, res, err := runtime.Transition(final, domain.DefaultConfig())
		require.NoError(t, err)
		assert.Equal(t, domain.KindNoopTerminated, res.Kind)
		assert.Equal(t, final, next)
	}
}

func TestTransition_DoesNotMutateInput(t *testing.T) {
	snap := bootstrap(t, 6, scenarioEdges())
	before := snap.Clone()
	_, _, err := runtime.Transition(snap, domain.DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, before, snap)
}

func TestTransition_InternalInconsistency(t *testing.T) {
	t.Run("broken predecessor chain", func(t *testing.T) {
		snap := bootstrap(t, 4, []domain.EdgeSpec{{From: 0, To: 1, Capacity: 1}, {From: 1, To: 3, Capacity: 1}})
		snap.State.Labeled = []int{0, 3}
		snap.State.Predecessor = map[int]int{}

		next, _, err := runtime.Transition(snap, domain.DefaultConfig())
		assert.ErrorIs(t, err, domain.ErrInternalInconsistency)
		assert.Equal(t, snap, next)
	})

	t.Run("predecessor across a missing edge", func(t *testing.T) {
		snap := bootstrap(t, 4, []domain.EdgeSpec{{From: 0, To: 1, Capacity: 1}, {From: 1, To: 3, Capacity: 1}})
		snap.State.Labeled = []int{0, 3}
		snap.State.Predecessor = map[int]int{3: 0}

		_, _, err := runtime.Transition(snap, domain.DefaultConfig())
		assert.ErrorIs(t, err, domain.ErrInternalInconsistency)
	})

	t.Run("predecessor cycle", func(t *testing.T) {
		snap := bootstrap(t, 4, []domain.EdgeSpec{{From: 0, To: 1, Capacity: 1}, {From: 1, To: 3, Capacity: 1}})
		snap.State.Labeled = []int{0, 1, 3}
		snap.State.Predecessor = map[int]int{3: 1, 1: 3}

		_, _, err := runtime.Transition(snap, domain.DefaultConfig())
		var incErr *domain.InconsistencyError
		require.ErrorAs(t, err, &incErr)
		assert.Contains(t, incErr.Reason, "cycle")
	})
}
