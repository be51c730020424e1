package dsl

import (
	"github.com/aretw0/flowstep"
	"github.com/aretw0/flowstep/pkg/domain"
)

// Builder collects nodes, edges and engine options.
type Builder struct {
	numberOfNodes int
	edges         []domain.EdgeSpec
	cfg           domain.Config
	opts          []flowstep.Option
}

// New creates a builder for a network of numberOfNodes nodes. Node 0 is the
// source and node numberOfNodes-1 the sink.
func New(numberOfNodes int) *Builder {
	return &Builder{numberOfNodes: numberOfNodes, cfg: domain.DefaultConfig()}
}

// Node returns the builder for node id.
func (b *Builder) Node(id int) *NodeBuilder {
	return &NodeBuilder{id: id, builder: b}
}

// Source returns the builder for the source node.
func (b *Builder) Source() *NodeBuilder { return b.Node(0) }

// SinkID is the index of the sink.
func (b *Builder) SinkID() int { return b.numberOfNodes - 1 }

// Edge adds a directed edge. Edges keep the order in which they were added.
func (b *Builder) Edge(from, to int, capacity int64) *Builder {
	b.edges = append(b.edges, domain.EdgeSpec{From: from, To: to, Capacity: capacity})
	return b
}

func (b *Builder) Granularity(g domain.Granularity) *Builder {
	b.cfg.Granularity = g
	return b
}

func (b *Builder) Labeling(m domain.LabelingMode) *Builder {
	b.cfg.Labeling = m
	return b
}

// HistoryLimit caps the undo depth of the built engine.
func (b *Builder) HistoryLimit(n int) *Builder {
	b.cfg.HistoryLimit = n
	return b
}

// With appends engine options such as hooks or a logger.
func (b *Builder) With(opts ...flowstep.Option) *Builder {
	b.opts = append(b.opts, opts...)
	return b
}

// Network validates the collected edges.
func (b *Builder) Network() (*domain.Network, error) {
	return domain.NewNetwork(b.numberOfNodes, b.edges)
}

// Specs returns what was collected, without validation.
func (b *Builder) Specs() (int, []domain.EdgeSpec, domain.Config) {
	return b.numberOfNodes, append([]domain.EdgeSpec(nil), b.edges...), b.cfg
}

// Build validates the network and returns an engine at its initial state.
func (b *Builder) Build() (*flowstep.Engine, error) {
	opts := append([]flowstep.Option{flowstep.WithConfig(b.cfg)}, b.opts...)
	return flowstep.New(b.numberOfNodes, b.edges, opts...)
}
