package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventStep      EventType = "step"
	EventUndo      EventType = "undo"
	EventAugment   EventType = "augment"
	EventTerminate EventType = "terminate"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
}

// StepEvent is emitted after every step and undo.
type StepEvent struct {
	EventBase
	Kind        StepKind      `json:"kind"`
	StepCounter int           `json:"step_counter"`
	Node        *int          `json:"node,omitempty"`
	Duration    time.Duration `json:"duration"`
}

// AugmentEvent is emitted when flow is pushed along a path.
type AugmentEvent struct {
	EventBase
	Path      []int `json:"path"`
	Amount    int64 `json:"amount"`
	FlowValue int64 `json:"flow_value"`
}

// TerminateEvent is emitted once no augmenting path remains.
type TerminateEvent struct {
	EventBase
	FlowValue   int64 `json:"flow_value"`
	CutCapacity int64 `json:"cut_capacity"`
	Steps       int   `json:"steps"`
}

// LifecycleHooks defines callbacks for engine observability.
type LifecycleHooks struct {
	OnStep      func(context.Context, *StepEvent)
	OnUndo      func(context.Context, *StepEvent)
	OnAugment   func(context.Context, *AugmentEvent)
	OnTerminate func(context.Context, *TerminateEvent)
}

// Merge returns hooks that call h first and then other.
func (h LifecycleHooks) Merge(other LifecycleHooks) LifecycleHooks {
	return LifecycleHooks{
		OnStep:      chain(h.OnStep, other.OnStep),
		OnUndo:      chain(h.OnUndo, other.OnUndo),
		OnAugment:   chain(h.OnAugment, other.OnAugment),
		OnTerminate: chain(h.OnTerminate, other.OnTerminate),
	}
}

func chain[E any](a, b func(context.Context, E)) func(context.Context, E) {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	}
	return func(ctx context.Context, e E) {
		a(ctx, e)
		b(ctx, e)
	}
}
