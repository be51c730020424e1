package runtime

import (
	"fmt"

	"github.com/aretw0/flowstep/pkg/domain"
)

// Transition computes the successor of snap. It never mutates snap: the
// returned snapshot shares no memory with it. Branches are tried in a fixed
// priority: terminated, sink labeled, intermediate hold, select or scan.
func Transition(snap domain.Snapshot, cfg domain.Config) (domain.Snapshot, domain.StepResult, error) {
	if snap.State.Terminated {
		return snap, domain.StepResult{Kind: domain.KindNoopTerminated, Snapshot: snap.Clone()}, nil
	}

	next := snap.Clone()
	var res domain.StepResult
	var err error

	switch {
	case next.State.IsLabeled(next.Network.Sink()):
		res, err = augment(&next)
	case next.State.Intermediate:
		next.State.Intermediate = false
		next.State.Predecessor = map[int]int{}
		res = domain.StepResult{Kind: domain.KindResetIntermediate}
	default:
		res = label(&next, cfg)
	}
	if err != nil {
		return snap, domain.StepResult{}, err
	}

	next.State.StepCounter++
	res.Snapshot = next.Clone()
	return next, res, nil
}

func augment(snap *domain.Snapshot) (domain.StepResult, error) {
	path, err := augmentingPath(&snap.Network, &snap.State)
	if err != nil {
		return domain.StepResult{}, err
	}

	amount := bottleneck(&snap.Network, path)
	if err := snap.Network.ApplyAugmentation(path, amount); err != nil {
		return domain.StepResult{}, fmt.Errorf("augment along %v: %w", path, err)
	}

	pred := make(map[int]int, len(path)-1)
	for i := 0; i+1 < len(path); i++ {
		pred[path[i+1]] = path[i]
	}
	source := snap.Network.Source()
	snap.State.Predecessor = pred
	snap.State.Labeled = []int{source}
	snap.State.Scanned = []int{}
	snap.State.CurrentNode = nil
	snap.State.Intermediate = true

	return domain.StepResult{Kind: domain.KindAugment, Path: path, Amount: amount}, nil
}

// augmentingPath walks the predecessor map back from the sink. The result
// starts at the source.
func augmentingPath(n *domain.Network, s *domain.State) ([]int, error) {
	source, sink := n.Source(), n.Sink()
	path := []int{sink}
	seen := map[int]bool{sink: true}
	for v := sink; v != source; {
		u, ok := s.Predecessor[v]
		if !ok {
			return nil, &domain.InconsistencyError{From: -1, To: v, Reason: "labeled node has no predecessor"}
		}
		if seen[u] {
			return nil, &domain.InconsistencyError{From: u, To: v, Reason: "predecessor cycle"}
		}
		seen[u] = true
		path = append([]int{u}, path...)
		v = u
	}
	return path, nil
}

func bottleneck(n *domain.Network, path []int) int64 {
	amount := n.Residual(path[0], path[1])
	for i := 1; i+1 < len(path); i++ {
		amount = min(amount, n.Residual(path[i], path[i+1]))
	}
	return amount
}

func label(snap *domain.Snapshot, cfg domain.Config) domain.StepResult {
	st := &snap.State

	if cfg.Granularity == domain.GranularitySelect && st.CurrentNode == nil {
		i, ok := st.NextUnscanned()
		if !ok {
			st.Terminated = true
			return domain.StepResult{Kind: domain.KindTerminate}
		}
		st.CurrentNode = &i
		return domain.StepResult{Kind: domain.KindSelect, Node: &i}
	}

	var i int
	if st.CurrentNode != nil {
		i = *st.CurrentNode
		st.CurrentNode = nil
	} else {
		var ok bool
		if i, ok = st.NextUnscanned(); !ok {
			st.Terminated = true
			return domain.StepResult{Kind: domain.KindTerminate}
		}
	}

	var discovered []int
	for _, to := range neighbors(&snap.Network, i, cfg.Labeling) {
		if st.IsLabeled(to) || snap.Network.Residual(i, to) <= 0 {
			continue
		}
		st.Labeled = append(st.Labeled, to)
		if st.Predecessor == nil {
			st.Predecessor = map[int]int{}
		}
		st.Predecessor[to] = i
		discovered = append(discovered, to)
	}
	st.Scanned = append(st.Scanned, i)

	return domain.StepResult{Kind: domain.KindScan, Node: &i, Labeled: discovered}
}

// neighbors lists candidate nodes reachable from i in edge insertion order.
// Forward labeling only looks at outgoing edges.
func neighbors(n *domain.Network, i int, mode domain.LabelingMode) []int {
	out := make([]int, 0, 4)
	for _, e := range n.Edges {
		switch {
		case e.From == i:
			out = append(out, e.To)
		case e.To == i && mode != domain.LabelingForward:
			out = append(out, e.From)
		}
	}
	return out
}
