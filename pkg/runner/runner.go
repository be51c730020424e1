package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/aretw0/flowstep"
	"github.com/aretw0/flowstep/pkg/domain"
	"github.com/aretw0/flowstep/pkg/ports"
)

// Runner handles the command loop of a flowstep engine using provided IO.
// It uses an IOHandler strategy to abstract the interaction mode (Text vs JSON).
type Runner struct {
	// Handler is the strategy for IO. If nil, a TextHandler on Stdin/Stdout is used.
	Handler IOHandler

	// Logger is used for internal debug logging.
	// If nil, a no-op logger is used.
	Logger *slog.Logger

	// Store is the persistence adapter for durable execution.
	// If nil, sessions are ephemeral.
	Store     ports.SessionStore
	SessionID string

	SolveLimit      int
	ExitOnTerminate bool
}

// NewRunner creates a Runner with the given options.
func NewRunner(opts ...Option) *Runner {
	r := &Runner{
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run presents the engine's current state and then executes commands until
// quit, end of input, an interrupt or ctx cancellation. Every state change is
// saved before it is shown.
func (r *Runner) Run(ctx context.Context, eng *flowstep.Engine) error {
	handler := r.resolveHandler()

	signals := NewSignalManager()
	defer signals.Stop()

	if err := handler.Output(ctx, eng.Session(r.SessionID), nil); err != nil {
		return fmt.Errorf("output error: %w", err)
	}

	for {
		if r.ExitOnTerminate && eng.IsTerminated() {
			return nil
		}

		raw, err := r.readInput(ctx, handler, signals)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if signals.Context().Err() != nil {
				r.Logger.Debug("runner interrupted", "session_id", r.SessionID)
				_ = handler.SystemOutput(ctx, "interrupted")
				return nil
			}
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("input error: %w", err)
		}

		cmd, err := ParseCommand(raw)
		if err != nil {
			if err := handler.SystemOutput(ctx, err.Error()+"; "+helpText); err != nil {
				return fmt.Errorf("output error: %w", err)
			}
			continue
		}

		done, err := r.execute(ctx, eng, handler, cmd)
		if err != nil || done {
			return err
		}
	}
}

// readInput waits for the next command, giving up when ctx ends or an OS
// interrupt arrives.
func (r *Runner) readInput(ctx context.Context, handler IOHandler, signals *SignalManager) (string, error) {
	inputCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	stop := context.AfterFunc(signals.Context(), cancel)
	defer stop()

	raw, err := handler.Input(inputCtx)
	if err != nil {
		signals.CheckRace()
	}
	return raw, err
}

func (r *Runner) execute(ctx context.Context, eng *flowstep.Engine, handler IOHandler, cmd Command) (bool, error) {
	switch cmd.Op {
	case OpQuit:
		return true, nil

	case OpView:
		if err := handler.ShowView(ctx, eng.View(cmd.View)); err != nil {
			return false, fmt.Errorf("output error: %w", err)
		}
		return false, nil

	case OpPrev:
		res, ok := eng.Undo(ctx)
		if !ok {
			return false, handler.SystemOutput(ctx, "nothing to undo")
		}
		return false, r.commit(ctx, eng, handler, res)

	case OpNext:
		res, err := eng.Step(ctx)
		if err != nil {
			return false, fmt.Errorf("step error: %w", err)
		}
		return false, r.commitStep(ctx, eng, handler, res)

	case OpSolve:
		res, err := eng.Solve(ctx, r.SolveLimit)
		if err != nil {
			return false, fmt.Errorf("solve error: %w", err)
		}
		if res == nil {
			return false, nil
		}
		return false, r.commitStep(ctx, eng, handler, res)
	}
	return false, fmt.Errorf("unsupported command %q", cmd.Op)
}

func (r *Runner) commitStep(ctx context.Context, eng *flowstep.Engine, handler IOHandler, res *domain.StepResult) error {
	if res.Kind == domain.KindNoopTerminated {
		return handler.SystemOutput(ctx, "the algorithm has terminated; p to undo, q to quit")
	}
	return r.commit(ctx, eng, handler, res)
}

func (r *Runner) commit(ctx context.Context, eng *flowstep.Engine, handler IOHandler, res *domain.StepResult) error {
	sess := eng.Session(r.SessionID)
	if err := r.saveState(ctx, sess); err != nil {
		return fmt.Errorf("critical persistence error: %w", err)
	}
	if err := handler.Output(ctx, sess, res); err != nil {
		return fmt.Errorf("output error: %w", err)
	}
	return nil
}

func (r *Runner) saveState(ctx context.Context, sess *domain.Session) error {
	if r.Store != nil && r.SessionID != "" {
		if err := r.Store.Save(ctx, r.SessionID, sess); err != nil {
			return err
		}
		r.Logger.Debug("state saved", "session_id", r.SessionID, "step", sess.Current.State.StepCounter)
	}
	return nil
}

// resolveHandler ensures a valid IOHandler is set.
func (r *Runner) resolveHandler() IOHandler {
	if r.Handler == nil {
		// Memoize to prevent creating new pumps on subsequent Run() calls
		r.Handler = NewTextHandler(os.Stdin, os.Stdout)
	}
	return r.Handler
}
