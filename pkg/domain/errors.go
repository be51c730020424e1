package domain

import (
	"errors"
	"fmt"
)

// ErrConfiguration is matched by every construction-time validation failure.
var ErrConfiguration = errors.New("invalid network configuration")

// ErrInternalInconsistency signals a labeling defect detected while augmenting.
var ErrInternalInconsistency = errors.New("internal inconsistency")

// ErrSessionNotFound is returned when a session ID cannot be found in the store.
var ErrSessionNotFound = errors.New("session not found")

// ErrNothingToUndo is returned by adapters when an undo finds an empty history.
var ErrNothingToUndo = errors.New("nothing to undo")

// ErrLockHeld is returned when a distributed lock could not be acquired in time.
var ErrLockHeld = errors.New("lock held by another owner")

// ConfigurationError describes one invalid piece of construction input.
type ConfigurationError struct {
	Field  string // from, to, capacity, edge, nodes
	Reason string
	Value  any
	Index  int // edge position, -1 for network-level problems
}

func (e *ConfigurationError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("field %q: %s (got %v)", e.Field, e.Reason, e.Value)
	}
	return fmt.Sprintf("edge #%d field %q: %s (got %v)", e.Index, e.Field, e.Reason, e.Value)
}

func (e *ConfigurationError) Unwrap() error { return ErrConfiguration }

// AggregateError represents multiple configuration failures.
type AggregateError struct {
	Errors []error
}

func (e *AggregateError) Error() string {
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	msg := fmt.Sprintf("%d configuration errors:\n", len(e.Errors))
	for i, err := range e.Errors {
		msg += fmt.Sprintf("  %d. %s\n", i+1, err.Error())
	}
	return msg
}

func (e *AggregateError) Unwrap() []error { return e.Errors }

// ConfigurationErrors returns all failures carried by err, or nil.
func ConfigurationErrors(err error) []error {
	var aggr *AggregateError
	if errors.As(err, &aggr) {
		return aggr.Errors
	}
	var single *ConfigurationError
	if errors.As(err, &single) {
		return []error{single}
	}
	return nil
}

// InconsistencyError reports the path pair that broke an augmentation.
type InconsistencyError struct {
	From, To int
	Reason   string
}

func (e *InconsistencyError) Error() string {
	return fmt.Sprintf("internal inconsistency at %d->%d: %s", e.From, e.To, e.Reason)
}

func (e *InconsistencyError) Unwrap() error { return ErrInternalInconsistency }
