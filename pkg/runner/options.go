package runner

import (
	"log/slog"

	"github.com/aretw0/flowstep/pkg/ports"
)

// Option defines a functional option for configuring the Runner.
type Option func(*Runner)

// WithStore configures the SessionStore for persistence.
func WithStore(store ports.SessionStore) Option {
	return func(r *Runner) {
		r.Store = store
	}
}

// WithLogger configures the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		r.Logger = logger
	}
}

// WithInputHandler configures a custom IOHandler.
func WithInputHandler(handler IOHandler) Option {
	return func(r *Runner) {
		r.Handler = handler
	}
}

// WithSessionID sets the session ID for persistence context.
// This is required if WithStore is used.
func WithSessionID(id string) Option {
	return func(r *Runner) {
		r.SessionID = id
	}
}

// WithSolveLimit caps how many steps a single solve command may take.
// Zero means no limit.
func WithSolveLimit(n int) Option {
	return func(r *Runner) {
		r.SolveLimit = n
	}
}

// WithExitOnTerminate ends the loop as soon as the algorithm terminates.
func WithExitOnTerminate(exit bool) Option {
	return func(r *Runner) {
		r.ExitOnTerminate = exit
	}
}
