package domain

import (
	"maps"
	"slices"
)

// SnapshotDiff represents the changes between two snapshots.
// It is designed to be serialized to JSON for partial updates on the client.
type SnapshotDiff struct {
	// SessionID is always present to identify the target.
	SessionID string `json:"session_id"`

	// An emptied set is a change, so empty values stay on the wire.
	Labeled     []int       `json:"labeled,omitzero"`
	Scanned     []int       `json:"scanned,omitzero"`
	Predecessor map[int]int `json:"predecessor,omitzero"`

	// CurrentNode is set when the selection changed. ClearedCurrent marks
	// a selection that went away.
	CurrentNode    *int  `json:"current_node,omitempty"`
	ClearedCurrent bool  `json:"cleared_current,omitempty"`
	Intermediate   *bool `json:"intermediate,omitempty"`
	Terminated     *bool `json:"terminated,omitempty"`
	StepCounter    *int  `json:"step_counter,omitempty"`

	// Flows contains only edges whose flow changed, keyed "from->to".
	Flows map[string]int64 `json:"flows,omitempty"`
}

// Diff calculates the difference between oldSnap and newSnap.
// If oldSnap is nil, it returns a diff representing the entire newSnap (initial load).
// A nil result means nothing changed.
func Diff(sessionID string, oldSnap, newSnap *Snapshot) *SnapshotDiff {
	if newSnap == nil {
		return nil
	}
	diff := &SnapshotDiff{SessionID: sessionID}
	ns := &newSnap.State

	if oldSnap == nil {
		diff.Labeled = slices.Clone(ns.Labeled)
		diff.Scanned = slices.Clone(ns.Scanned)
		diff.Predecessor = maps.Clone(ns.Predecessor)
		diff.CurrentNode = ns.CurrentNode
		diff.Intermediate = &ns.Intermediate
		diff.Terminated = &ns.Terminated
		diff.StepCounter = &ns.StepCounter
		diff.Flows = diffFlows(nil, &newSnap.Network)
		return diff
	}

	os := &oldSnap.State
	if !slices.Equal(os.Labeled, ns.Labeled) {
		diff.Labeled = slices.Clone(ns.Labeled)
		if diff.Labeled == nil {
			diff.Labeled = []int{}
		}
	}
	if !slices.Equal(os.Scanned, ns.Scanned) {
		diff.Scanned = slices.Clone(ns.Scanned)
		if diff.Scanned == nil {
			diff.Scanned = []int{}
		}
	}
	if !maps.Equal(os.Predecessor, ns.Predecessor) {
		diff.Predecessor = maps.Clone(ns.Predecessor)
		if diff.Predecessor == nil {
			diff.Predecessor = map[int]int{}
		}
	}
	switch {
	case ns.CurrentNode != nil && (os.CurrentNode == nil || *os.CurrentNode != *ns.CurrentNode):
		diff.CurrentNode = ns.CurrentNode
	case ns.CurrentNode == nil && os.CurrentNode != nil:
		diff.ClearedCurrent = true
	}
	if os.Intermediate != ns.Intermediate {
		diff.Intermediate = &ns.Intermediate
	}
	if os.Terminated != ns.Terminated {
		diff.Terminated = &ns.Terminated
	}
	if os.StepCounter != ns.StepCounter {
		diff.StepCounter = &ns.StepCounter
	}
	diff.Flows = diffFlows(&oldSnap.Network, &newSnap.Network)

	if diff.IsEmpty() {
		return nil
	}
	return diff
}

func diffFlows(old, new *Network) map[string]int64 {
	delta := make(map[string]int64)
	for _, e := range new.Edges {
		if old != nil {
			if prev, ok := old.Edge(e.From, e.To); ok && prev.Flow == e.Flow {
				continue
			}
		}
		delta[e.Key()] = e.Flow
	}
	if len(delta) == 0 {
		return nil
	}
	return delta
}

// IsEmpty checks if the diff contains any actionable changes.
func (d *SnapshotDiff) IsEmpty() bool {
	return d.Labeled == nil &&
		d.Scanned == nil &&
		d.Predecessor == nil &&
		d.CurrentNode == nil &&
		!d.ClearedCurrent &&
		d.Intermediate == nil &&
		d.Terminated == nil &&
		d.StepCounter == nil &&
		len(d.Flows) == 0
}
