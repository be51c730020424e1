package runtime_test

import (
	"context"
	"testing"

	"github.com/aretw0/flowstep/internal/runtime"
	"github.com/aretw0/flowstep/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEngine_StepUndoExactness(t *testing.T) {
	ctx := context.Background()
	eng := runtime.NewEngine(bootstrap(t, 6, scenarioEdges()), domain.DefaultConfig())

	for !eng.State().Terminated {
		before := eng.Current()

		_, err := eng.Step(ctx)
		require.NoError(t, err)
		after := eng.Current()

		res, ok := eng.Undo(ctx)
		require.True(t, ok)
		assert.Equal(t, domain.KindUndo, res.Kind)
		assert.Equal(t, before, eng.Current(), "undo must restore the pre-step snapshot at step %d", before.State.StepCounter)

		_, err = eng.Step(ctx)
		require.NoError(t, err)
		assert.Equal(t, after, eng.Current(), "replaying the step must be deterministic")
	}
}

func TestEngine_UndoToBootstrap(t *testing.T) {
	ctx := context.Background()
	start := bootstrap(t, 6, scenarioEdges())
	eng := runtime.NewEngine(start, domain.DefaultConfig())

	steps := 0
	for !eng.State().Terminated {
		_, err := eng.Step(ctx)
		require.NoError(t, err)
		steps++
	}
	assert.Equal(t, steps, eng.History().Len())

	for {
		if _, ok := eng.Undo(ctx); !ok {
			break
		}
	}
	assert.Equal(t, start, eng.Current())
	assert.Zero(t, eng.State().StepCounter)

	_, ok := eng.Undo(ctx)
	assert.False(t, ok, "undo on empty history is a no-op")
	assert.Equal(t, start, eng.Current())
}

func TestEngine_NoopTerminatedSkipsHistory(t *testing.T) {
	ctx := context.Background()
	eng := runtime.NewEngine(bootstrap(t, 2, nil), domain.DefaultConfig())

	res, err := eng.Step(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.KindScan, res.Kind)

	res, err = eng.Step(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.KindTerminate, res.Kind)
	depth := eng.History().Len()

	for i := 0; i < 3; i++ {
		res, err = eng.Step(ctx)
		require.NoError(t, err)
		assert.Equal(t, domain.KindNoopTerminated, res.Kind)
	}
	assert.Equal(t, depth, eng.History().Len())
	assert.Equal(t, 2, eng.State().StepCounter)
}

func TestEngine_Hooks(t *testing.T) {
	ctx := context.Background()
	var steps, undos, augments, terminates int
	var lastFlow int64
	hooks := domain.LifecycleHooks{
		OnStep: func(_ context.Context, _ *domain.StepEvent) { steps++ },
		OnUndo: func(_ context.Context, _ *domain.StepEvent) { undos++ },
		OnAugment: func(_ context.Context, e *domain.AugmentEvent) {
			augments++
			lastFlow = e.FlowValue
		},
		OnTerminate: func(_ context.Context, e *domain.TerminateEvent) {
			terminates++
			assert.Equal(t, e.FlowValue, e.CutCapacity)
		},
	}
	eng := runtime.NewEngine(bootstrap(t, 6, scenarioEdges()), domain.DefaultConfig(), runtime.WithLifecycleHooks(hooks))

	for !eng.State().Terminated {
		_, err := eng.Step(ctx)
		require.NoError(t, err)
	}
	eng.Undo(ctx)

	assert.Equal(t, 22, steps)
	assert.Equal(t, 3, augments)
	assert.Equal(t, int64(4), lastFlow)
	assert.Equal(t, 1, terminates)
	assert.Equal(t, 1, undos)
}

func TestEngine_WithHistory(t *testing.T) {
	ctx := context.Background()
	start := bootstrap(t, 6, scenarioEdges())
	first := runtime.NewEngine(start, domain.DefaultConfig())
	for i := 0; i < 4; i++ {
		_, err := first.Step(ctx)
		require.NoError(t, err)
	}

	resumed := runtime.NewEngine(first.Current(), domain.DefaultConfig(), runtime.WithHistory(first.History().Entries()))
	assert.Equal(t, 4, resumed.History().Len())
	for i := 0; i < 4; i++ {
		_, ok := resumed.Undo(ctx)
		require.True(t, ok)
	}
	assert.Equal(t, start, resumed.Current())
}
