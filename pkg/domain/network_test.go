package domain_test

import (
	"errors"
	"testing"

	"github.com/aretw0/flowstep/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewNetwork_Validation(t *testing.T) {
	tests := []struct {
		name      string
		nodes     int
		edges     []domain.EdgeSpec
		wantField string
	}{
		{"too few nodes", 1, nil, "nodes"},
		{"from out of range", 3, []domain.EdgeSpec{{From: -1, To: 2, Capacity: 1}}, "from"},
		{"to out of range", 3, []domain.EdgeSpec{{From: 0, To: 3, Capacity: 1}}, "to"},
		{"self loop", 3, []domain.EdgeSpec{{From: 1, To: 1, Capacity: 1}}, "to"},
		{"negative capacity", 3, []domain.EdgeSpec{{From: 0, To: 1, Capacity: -4}}, "capacity"},
		{"duplicate pair", 3, []domain.EdgeSpec{{From: 0, To: 1, Capacity: 1}, {From: 0, To: 1, Capacity: 2}}, "edge"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			net, err := domain.NewNetwork(tt.nodes, tt.edges)
			require.Error(t, err)
			assert.Nil(t, net)
			assert.ErrorIs(t, err, domain.ErrConfiguration)

			var cfgErr *domain.ConfigurationError
			require.ErrorAs(t, err, &cfgErr)
			assert.Equal(t, tt.wantField, cfgErr.Field)
		})
	}
}

func TestNewNetwork_AggregatesProblems(t *testing.T) {
	_, err := domain.NewNetwork(3, []domain.EdgeSpec{
		{From: 0, To: 0, Capacity: 1},
		{From: 0, To: 1, Capacity: -1},
		{From: 1, To: 2, Capacity: 3},
	})
	require.Error(t, err)

	var aggr *domain.AggregateError
	require.True(t, errors.As(err, &aggr))
	assert.Len(t, aggr.Errors, 2)
	assert.Len(t, domain.ConfigurationErrors(err), 2)
	assert.ErrorIs(t, err, domain.ErrConfiguration)
}

func TestNewNetwork_AntiparallelEdgesAllowed(t *testing.T) {
	net, err := domain.NewNetwork(2, []domain.EdgeSpec{
		{From: 0, To: 1, Capacity: 2},
		{From: 1, To: 0, Capacity: 3},
	})
	require.NoError(t, err)
	assert.Len(t, net.Edges, 2)
	for _, e := range net.Edges {
		assert.Zero(t, e.Flow)
	}
}

func TestNetwork_Residual(t *testing.T) {
	net, err := domain.NewNetwork(3, []domain.EdgeSpec{
		{From: 0, To: 1, Capacity: 5},
		{From: 1, To: 2, Capacity: 2},
	})
	require.NoError(t, err)
	net.Edges[0].Flow = 3

	assert.Equal(t, int64(2), net.Residual(0, 1), "forward residual is cap-flow")
	assert.Equal(t, int64(3), net.Residual(1, 0), "backward residual is the reverse flow")
	assert.Equal(t, int64(0), net.Residual(0, 2), "no edge in either direction")
	assert.Equal(t, int64(0), net.Residual(2, 1), "reverse edge without flow")
}

func TestNetwork_ApplyAugmentation(t *testing.T) {
	newNet := func(t *testing.T) *domain.Network {
		net, err := domain.NewNetwork(4, []domain.EdgeSpec{
			{From: 0, To: 1, Capacity: 4},
			{From: 1, To: 3, Capacity: 2},
			{From: 0, To: 2, Capacity: 2},
			{From: 2, To: 1, Capacity: 3},
		})
		require.NoError(t, err)
		return net
	}

	t.Run("forward path", func(t *testing.T) {
		net := newNet(t)
		require.NoError(t, net.ApplyAugmentation([]int{0, 1, 3}, 2))
		e, _ := net.Edge(1, 3)
		assert.Equal(t, int64(2), e.Flow)
		assert.Equal(t, int64(2), net.FlowValue())
	})

	t.Run("backward step cancels flow", func(t *testing.T) {
		net := newNet(t)
		require.NoError(t, net.ApplyAugmentation([]int{0, 2, 1, 3}, 1))
		// 1 -> 2 is traversed against the stored edge 2 -> 1.
		require.NoError(t, net.ApplyAugmentation([]int{0, 1, 2}, 1))
		e, _ := net.Edge(2, 1)
		assert.Zero(t, e.Flow)
	})

	t.Run("missing edge", func(t *testing.T) {
		net := newNet(t)
		err := net.ApplyAugmentation([]int{0, 3}, 1)
		assert.ErrorIs(t, err, domain.ErrInternalInconsistency)
	})

	t.Run("amount above residual leaves network untouched", func(t *testing.T) {
		net := newNet(t)
		before := net.Clone()
		err := net.ApplyAugmentation([]int{0, 1, 3}, 3)
		var incErr *domain.InconsistencyError
		require.ErrorAs(t, err, &incErr)
		assert.Equal(t, 1, incErr.From)
		assert.Equal(t, 3, incErr.To)
		assert.Equal(t, before, net)
	})
}

func TestNetwork_CutAndNames(t *testing.T) {
	net, err := domain.NewNetwork(4, []domain.EdgeSpec{
		{From: 0, To: 1, Capacity: 4},
		{From: 0, To: 2, Capacity: 1},
		{From: 1, To: 3, Capacity: 2},
		{From: 2, To: 3, Capacity: 7},
	})
	require.NoError(t, err)

	assert.Equal(t, int64(5), net.CutCapacity([]int{0}))
	assert.Equal(t, int64(3), net.CutCapacity([]int{0, 1}))
	assert.Equal(t, "s", net.NodeName(0))
	assert.Equal(t, "t", net.NodeName(3))
	assert.Equal(t, "2", net.NodeName(2))
}

func TestSnapshot_CloneIsDeep(t *testing.T) {
	net, err := domain.NewNetwork(3, []domain.EdgeSpec{{From: 0, To: 1, Capacity: 1}, {From: 1, To: 2, Capacity: 1}})
	require.NoError(t, err)
	snap := domain.NewSnapshot(net)
	node := 1
	snap.State.CurrentNode = &node
	snap.State.Predecessor[1] = 0

	cp := snap.Clone()
	require.Equal(t, snap, cp)

	cp.Network.Edges[0].Flow = 1
	cp.State.Labeled = append(cp.State.Labeled, 1)
	cp.State.Predecessor[2] = 1
	*cp.State.CurrentNode = 2

	assert.Zero(t, snap.Network.Edges[0].Flow)
	assert.Equal(t, []int{0}, snap.State.Labeled)
	assert.NotContains(t, snap.State.Predecessor, 2)
	assert.Equal(t, 1, *snap.State.CurrentNode)
}
