package domain

// Snapshot pairs a network with the algorithm state that belongs to it. It is
// the unit stored in history and in sessions.
type Snapshot struct {
	Network Network `json:"network"`
	State   State   `json:"state"`
}

// NewSnapshot builds the bootstrap snapshot for a network.
func NewSnapshot(n *Network) Snapshot {
	return Snapshot{
		Network: *n.Clone(),
		State:   NewState(n.Source()),
	}
}

// Clone returns a copy sharing no memory with s.
func (s Snapshot) Clone() Snapshot {
	return Snapshot{
		Network: *s.Network.Clone(),
		State:   s.State.Clone(),
	}
}

// StepKind identifies which branch of the step function fired.
type StepKind string

const (
	// KindLabelSource is part of the result vocabulary only. The source is
	// labeled when the state is created, so no step reports it.
	KindLabelSource       StepKind = "label_source_noop"
	KindAugment           StepKind = "augment"
	KindResetIntermediate StepKind = "reset_intermediate"
	KindSelect            StepKind = "select"
	KindScan              StepKind = "scan"
	KindTerminate         StepKind = "terminate"
	KindNoopTerminated    StepKind = "noop_terminated"
	KindUndo              StepKind = "undo"
)

// Mutating reports whether a step of this kind records history.
func (k StepKind) Mutating() bool {
	switch k {
	case KindNoopTerminated, KindLabelSource, KindUndo:
		return false
	}
	return true
}

// StepResult describes one step (or undo) and the snapshot it produced.
type StepResult struct {
	Kind StepKind `json:"kind"`

	// Path and Amount are set for augmentations, source first.
	Path   []int `json:"path,omitempty"`
	Amount int64 `json:"amount,omitempty"`

	// Node is the selected or scanned node.
	Node *int `json:"node,omitempty"`

	// Labeled lists nodes newly labeled by a scan.
	Labeled []int `json:"labeled,omitempty"`

	Snapshot Snapshot `json:"snapshot"`
}
