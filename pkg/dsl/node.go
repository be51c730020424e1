package dsl

// NodeBuilder adds edges leaving one node.
type NodeBuilder struct {
	id      int
	builder *Builder
}

// To adds an edge from this node to target.
func (n *NodeBuilder) To(target int, capacity int64) *NodeBuilder {
	n.builder.Edge(n.id, target, capacity)
	return n
}

// ToSink adds an edge from this node to the sink.
func (n *NodeBuilder) ToSink(capacity int64) *NodeBuilder {
	return n.To(n.builder.SinkID(), capacity)
}

// ID is the node index.
func (n *NodeBuilder) ID() int { return n.id }

// Done returns the parent builder.
func (n *NodeBuilder) Done() *Builder { return n.builder }
