// Package view derives renderable graphs from a snapshot. Views are never
// stored; they are rebuilt from the current network and algorithm state.
package view

import (
	"strconv"

	"github.com/aretw0/flowstep/pkg/domain"
)

// Kind names a view.
type Kind string

const (
	KindNetwork  Kind = "network"
	KindResidual Kind = "residual"
)

// ParseKind accepts "" as the network view.
func ParseKind(s string) (Kind, bool) {
	switch Kind(s) {
	case "", KindNetwork:
		return KindNetwork, true
	case KindResidual:
		return KindResidual, true
	}
	return "", false
}

// Node and edge classes.
const (
	ClassSource   = "source"
	ClassSink     = "sink"
	ClassLabeled  = "labeled"
	ClassScanned  = "scanned"
	ClassCurrent  = "current"
	ClassPath     = "path"
	ClassBackward = "backward"
	ClassFull     = "saturated"
)

// Node is a visual node.
type Node struct {
	ID      int      `json:"id"`
	Label   string   `json:"label"`
	Classes []string `json:"classes,omitempty"`
}

// Edge is a visual edge.
type Edge struct {
	ID      string   `json:"id"`
	From    int      `json:"from"`
	To      int      `json:"to"`
	Label   string   `json:"label"`
	Classes []string `json:"classes,omitempty"`
}

// HasClass reports whether c is set on the edge.
func (e Edge) HasClass(c string) bool { return hasClass(e.Classes, c) }

// HasClass reports whether c is set on the node.
func (n Node) HasClass(c string) bool { return hasClass(n.Classes, c) }

func hasClass(classes []string, c string) bool {
	for _, x := range classes {
		if x == c {
			return true
		}
	}
	return false
}

// Graph is a renderable projection of a snapshot.
type Graph struct {
	Kind  Kind   `json:"kind"`
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// Build dispatches on kind.
func Build(kind Kind, snap *domain.Snapshot) Graph {
	if kind == KindResidual {
		return Residual(snap)
	}
	return Network(snap)
}

func nodes(snap *domain.Snapshot) []Node {
	st := &snap.State
	out := make([]Node, 0, snap.Network.NumberOfNodes)
	for v := 0; v < snap.Network.NumberOfNodes; v++ {
		var classes []string
		switch v {
		case snap.Network.Source():
			classes = append(classes, ClassSource)
		case snap.Network.Sink():
			classes = append(classes, ClassSink)
		}
		if st.CurrentNode != nil && *st.CurrentNode == v {
			classes = append(classes, ClassCurrent)
		} else if st.IsLabeled(v) {
			classes = append(classes, ClassLabeled)
		}
		if st.IsScanned(v) {
			classes = append(classes, ClassScanned)
		}
		out = append(out, Node{ID: v, Label: snap.Network.NodeName(v), Classes: classes})
	}
	return out
}

// Network builds the forward view: every edge labeled "flow/capacity",
// marked as on the path when the predecessor map records it.
func Network(snap *domain.Snapshot) Graph {
	g := Graph{Kind: KindNetwork, Nodes: nodes(snap), Edges: make([]Edge, 0, len(snap.Network.Edges))}
	for _, e := range snap.Network.Edges {
		var classes []string
		if p, ok := snap.State.Predecessor[e.To]; ok && p == e.From {
			classes = append(classes, ClassPath)
		}
		if e.Capacity > 0 && e.Flow == e.Capacity {
			classes = append(classes, ClassFull)
		}
		g.Edges = append(g.Edges, Edge{
			ID:      e.Key(),
			From:    e.From,
			To:      e.To,
			Label:   strconv.FormatInt(e.Flow, 10) + "/" + strconv.FormatInt(e.Capacity, 10),
			Classes: classes,
		})
	}
	return g
}

// Residual builds the residual view: a forward edge for spare capacity and
// a reverse edge for existing flow.
func Residual(snap *domain.Snapshot) Graph {
	g := Graph{Kind: KindResidual, Nodes: nodes(snap)}
	for _, e := range snap.Network.Edges {
		if r := e.Capacity - e.Flow; r > 0 {
			g.Edges = append(g.Edges, Edge{
				ID:    e.Key(),
				From:  e.From,
				To:    e.To,
				Label: strconv.FormatInt(r, 10),
			})
		}
		if e.Flow > 0 {
			g.Edges = append(g.Edges, Edge{
				ID:      domain.EdgeKey(e.To, e.From) + "~",
				From:    e.To,
				To:      e.From,
				Label:   strconv.FormatInt(e.Flow, 10),
				Classes: []string{ClassBackward},
			})
		}
	}
	return g
}
