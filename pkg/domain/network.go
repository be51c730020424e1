package domain

import (
	"fmt"
	"strconv"
)

// EdgeSpec is the construction input for a single directed edge.
type EdgeSpec struct {
	From     int   `json:"from" yaml:"from"`
	To       int   `json:"to" yaml:"to"`
	Capacity int64 `json:"capacity" yaml:"capacity"`
}

// Edge is a stored network edge carrying flow.
type Edge struct {
	From     int   `json:"from"`
	To       int   `json:"to"`
	Flow     int64 `json:"flow"`
	Capacity int64 `json:"capacity"`
}

// Key returns the "from->to" identifier used by diffs and views.
func (e Edge) Key() string {
	return EdgeKey(e.From, e.To)
}

// EdgeKey formats an ordered node pair.
func EdgeKey(from, to int) string {
	return strconv.Itoa(from) + "->" + strconv.Itoa(to)
}

// Network is a directed capacitated graph. Node 0 is the source and node
// NumberOfNodes-1 is the sink. Edges keep their insertion order.
type Network struct {
	NumberOfNodes int    `json:"number_of_nodes"`
	Edges         []Edge `json:"edges"`
}

// NewNetwork validates the edge list and returns a network with zero flow.
// Every problem found is reported; a single problem is returned as a
// *ConfigurationError, several as an *AggregateError.
func NewNetwork(numberOfNodes int, specs []EdgeSpec) (*Network, error) {
	var errs []error
	if numberOfNodes < 2 {
		errs = append(errs, &ConfigurationError{
			Field:  "nodes",
			Reason: "a network needs at least a source and a sink",
			Value:  numberOfNodes,
			Index:  -1,
		})
	}

	seen := make(map[[2]int]int, len(specs))
	edges := make([]Edge, 0, len(specs))
	for i, s := range specs {
		switch {
		case s.From < 0 || s.From >= numberOfNodes:
			errs = append(errs, &ConfigurationError{Field: "from", Reason: "node out of range", Value: s.From, Index: i})
			continue
		case s.To < 0 || s.To >= numberOfNodes:
			errs = append(errs, &ConfigurationError{Field: "to", Reason: "node out of range", Value: s.To, Index: i})
			continue
		case s.From == s.To:
			errs = append(errs, &ConfigurationError{Field: "to", Reason: "self loops are not allowed", Value: s.To, Index: i})
			continue
		case s.Capacity < 0:
			errs = append(errs, &ConfigurationError{Field: "capacity", Reason: "capacity must not be negative", Value: s.Capacity, Index: i})
			continue
		}
		pair := [2]int{s.From, s.To}
		if first, dup := seen[pair]; dup {
			errs = append(errs, &ConfigurationError{
				Field:  "edge",
				Reason: fmt.Sprintf("duplicate of edge #%d", first),
				Value:  EdgeKey(s.From, s.To),
				Index:  i,
			})
			continue
		}
		seen[pair] = i
		edges = append(edges, Edge{From: s.From, To: s.To, Capacity: s.Capacity})
	}

	switch len(errs) {
	case 0:
		return &Network{NumberOfNodes: numberOfNodes, Edges: edges}, nil
	case 1:
		return nil, errs[0]
	default:
		return nil, &AggregateError{Errors: errs}
	}
}

// Source returns the distinguished source node.
func (n *Network) Source() int { return 0 }

// Sink returns the distinguished sink node.
func (n *Network) Sink() int { return n.NumberOfNodes - 1 }

func (n *Network) indexOf(from, to int) int {
	for i := range n.Edges {
		if n.Edges[i].From == from && n.Edges[i].To == to {
			return i
		}
	}
	return -1
}

// Edge returns the stored edge (from,to), if any.
func (n *Network) Edge(from, to int) (Edge, bool) {
	if i := n.indexOf(from, to); i >= 0 {
		return n.Edges[i], true
	}
	return Edge{}, false
}

// Residual returns the capacity still usable from u to v: cap-flow on the
// forward edge (u,v) when it exists, otherwise the flow on the reverse edge
// (v,u), otherwise zero.
func (n *Network) Residual(u, v int) int64 {
	if i := n.indexOf(u, v); i >= 0 {
		return n.Edges[i].Capacity - n.Edges[i].Flow
	}
	if i := n.indexOf(v, u); i >= 0 {
		return n.Edges[i].Flow
	}
	return 0
}

// ApplyAugmentation pushes amount units along path. A forward pair raises the
// flow of its edge, a backward pair cancels flow on the reverse edge. The
// whole path is checked before any edge is touched.
func (n *Network) ApplyAugmentation(path []int, amount int64) error {
	if len(path) < 2 {
		return &InconsistencyError{From: -1, To: -1, Reason: "augmenting path has no edges"}
	}
	if amount <= 0 {
		return &InconsistencyError{From: path[0], To: path[len(path)-1], Reason: fmt.Sprintf("non-positive augmentation %d", amount)}
	}

	type move struct {
		edge  int
		delta int64
	}
	moves := make([]move, 0, len(path)-1)
	for i := 0; i+1 < len(path); i++ {
		u, v := path[i], path[i+1]
		if fwd := n.indexOf(u, v); fwd >= 0 {
			if r := n.Edges[fwd].Capacity - n.Edges[fwd].Flow; amount > r {
				return &InconsistencyError{From: u, To: v, Reason: fmt.Sprintf("amount %d exceeds residual %d", amount, r)}
			}
			moves = append(moves, move{edge: fwd, delta: amount})
			continue
		}
		if rev := n.indexOf(v, u); rev >= 0 {
			if r := n.Edges[rev].Flow; amount > r {
				return &InconsistencyError{From: u, To: v, Reason: fmt.Sprintf("amount %d exceeds backward residual %d", amount, r)}
			}
			moves = append(moves, move{edge: rev, delta: -amount})
			continue
		}
		return &InconsistencyError{From: u, To: v, Reason: "edge missing"}
	}

	for _, m := range moves {
		n.Edges[m.edge].Flow += m.delta
	}
	return nil
}

// FlowValue is the net flow leaving the source.
func (n *Network) FlowValue() int64 {
	return -n.Excess(n.Source())
}

// Excess returns inflow minus outflow at v.
func (n *Network) Excess(v int) int64 {
	var total int64
	for _, e := range n.Edges {
		if e.To == v {
			total += e.Flow
		}
		if e.From == v {
			total -= e.Flow
		}
	}
	return total
}

// CutCapacity sums the capacity of edges leaving the node set.
func (n *Network) CutCapacity(set []int) int64 {
	in := make(map[int]bool, len(set))
	for _, v := range set {
		in[v] = true
	}
	var total int64
	for _, e := range n.Edges {
		if in[e.From] && !in[e.To] {
			total += e.Capacity
		}
	}
	return total
}

// NodeName renders a node the way the labeling literature does: s, t, or the id.
func (n *Network) NodeName(v int) string {
	switch v {
	case n.Source():
		return "s"
	case n.Sink():
		return "t"
	default:
		return strconv.Itoa(v)
	}
}

// Clone returns a deep copy.
func (n *Network) Clone() *Network {
	if n == nil {
		return nil
	}
	out := &Network{NumberOfNodes: n.NumberOfNodes}
	if n.Edges != nil {
		out.Edges = make([]Edge, len(n.Edges))
		copy(out.Edges, n.Edges)
	}
	return out
}
