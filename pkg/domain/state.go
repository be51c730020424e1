package domain

import "slices"

// State is the labeling algorithm's bookkeeping. It is owned by a single
// engine and replaced wholesale on undo.
type State struct {
	// Labeled always contains the source, in the order nodes were labeled.
	Labeled []int `json:"labeled"`

	// Scanned is the subset of Labeled whose neighbors have been processed.
	Scanned []int `json:"scanned"`

	// Predecessor maps a labeled node to the node that labeled it. Right
	// after an augmentation it holds the augmenting path instead.
	Predecessor map[int]int `json:"predecessor"`

	// CurrentNode is the node picked by a select sub-step and not yet scanned.
	CurrentNode *int `json:"current_node,omitempty"`

	// Intermediate is set by an augmentation and cleared by the next step.
	Intermediate bool `json:"intermediate"`

	Terminated  bool `json:"terminated"`
	StepCounter int  `json:"step_counter"`
}

// NewState creates the bootstrap state: only the source is labeled.
func NewState(source int) State {
	return State{
		Labeled:     []int{source},
		Scanned:     []int{},
		Predecessor: map[int]int{},
	}
}

// IsLabeled reports whether v has been labeled.
func (s *State) IsLabeled(v int) bool {
	return slices.Contains(s.Labeled, v)
}

// IsScanned reports whether v has been scanned.
func (s *State) IsScanned(v int) bool {
	return slices.Contains(s.Scanned, v)
}

// NextUnscanned returns the first labeled node not yet scanned.
func (s *State) NextUnscanned() (int, bool) {
	for _, v := range s.Labeled {
		if !s.IsScanned(v) {
			return v, true
		}
	}
	return 0, false
}

// Clone returns a deep copy.
func (s State) Clone() State {
	out := State{
		Labeled:      slices.Clone(s.Labeled),
		Scanned:      slices.Clone(s.Scanned),
		Intermediate: s.Intermediate,
		Terminated:   s.Terminated,
		StepCounter:  s.StepCounter,
	}
	if s.Predecessor != nil {
		out.Predecessor = make(map[int]int, len(s.Predecessor))
		for k, v := range s.Predecessor {
			out.Predecessor[k] = v
		}
	}
	if s.CurrentNode != nil {
		c := *s.CurrentNode
		out.CurrentNode = &c
	}
	return out
}
