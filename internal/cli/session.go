package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"

	"github.com/aretw0/flowstep"
	"github.com/aretw0/flowstep/internal/compiler"
	"github.com/aretw0/flowstep/internal/presentation/tui"
	"github.com/aretw0/flowstep/pkg/domain"
	"github.com/aretw0/flowstep/pkg/runner"
)

// RunOptions contains all the configuration for the run command.
type RunOptions struct {
	File       string
	JSON       bool
	Pretty     bool
	Debug      bool
	Watch      bool
	SessionID  string
	Fresh      bool
	SolveLimit int
	Store      StoreOptions
	Overrides  Overrides

	In  io.Reader
	Out io.Writer
}

// Execute handles the run command, dispatching to session or watch mode.
func Execute(ctx context.Context, opts RunOptions) error {
	if opts.Watch {
		if opts.JSON {
			return fmt.Errorf("--watch and --json cannot be used together")
		}
		return RunWatch(ctx, opts)
	}
	return RunSession(ctx, opts)
}

// RunSession runs one interactive session over a network file. With a
// session ID, progress is loaded from and saved to the configured store.
func RunSession(ctx context.Context, opts RunOptions) error {
	logger := createLogger(opts.Debug)
	_, out := outputs(&opts)
	quiet := opts.JSON

	def, err := LoadNetwork(opts.File, opts.Overrides)
	if err != nil {
		return err
	}

	p, err := setupPersistence(opts)
	if err != nil {
		return err
	}
	defer p.Close()

	sigCtx := NewSignalContext(ctx)
	defer sigCtx.Cancel()

	eng, loaded, err := hydrate(sigCtx, def, p, opts, logger)
	if err != nil {
		return fmt.Errorf("failed to init session: %w", err)
	}

	if !quiet {
		tui.PrintBanner(out)
	}
	logSessionStatus(out, logger, opts.SessionID, eng, loaded, quiet)

	handler := newHandler(&opts)
	r := runner.NewRunner(createRunnerOptions(logger, &opts, p, handler)...)
	runErr := r.Run(sigCtx, eng)
	if sigCtx.Err() != nil && runErr == nil {
		runErr = sigCtx.Err()
	}

	logCompletion(out, eng, runErr, quiet, sigCtx.Signal() != nil)
	return handleExecutionError(runErr)
}

// setupPersistence opens a store only when the run is bound to a session.
func setupPersistence(opts RunOptions) (*Persistence, error) {
	if opts.SessionID == "" {
		return &Persistence{}, nil
	}
	return OpenStore(opts.Store)
}

// hydrate resumes the stored session when it was built from the same
// network, and starts over otherwise.
func hydrate(ctx context.Context, def *compiler.Definition, p *Persistence, opts RunOptions, logger *slog.Logger) (*flowstep.Engine, bool, error) {
	if p.Store == nil || opts.SessionID == "" {
		eng, err := NewEngine(def, logger, opts.Debug)
		return eng, false, err
	}

	if opts.Fresh {
		if err := p.Store.Delete(ctx, opts.SessionID); err != nil && !errors.Is(err, domain.ErrSessionNotFound) {
			return nil, false, err
		}
	}

	sess, err := p.Store.Load(ctx, opts.SessionID)
	switch {
	case errors.Is(err, domain.ErrSessionNotFound):
	case err != nil:
		return nil, false, err
	case !sameNetwork(&sess.Current.Network, def):
		// Reload guardrail: progress on another network is meaningless here.
		logger.Warn("Stored session does not match network file, starting over", "session_id", opts.SessionID)
	default:
		eng, err := flowstep.NewFromSession(sess, engineOptions(def.Config, logger, opts.Debug, nil)...)
		return eng, err == nil, err
	}

	eng, err := NewEngine(def, logger, opts.Debug)
	return eng, false, err
}

func sameNetwork(net *domain.Network, def *compiler.Definition) bool {
	if net.NumberOfNodes != def.Nodes || len(net.Edges) != len(def.Edges) {
		return false
	}
	specs := make([]domain.EdgeSpec, len(net.Edges))
	for i, e := range net.Edges {
		specs[i] = domain.EdgeSpec{From: e.From, To: e.To, Capacity: e.Capacity}
	}
	return slices.Equal(specs, def.Edges)
}

func logSessionStatus(w io.Writer, logger *slog.Logger, sessionID string, eng *flowstep.Engine, loaded, quiet bool) {
	switch {
	case loaded:
		logger.Info("Session Resumed", "session_id", sessionID, "step", eng.StepCount())
		if !quiet {
			printSystemMessage(w, "Resuming session '%s' at step %d.", sessionID, eng.StepCount())
		}
	case sessionID != "":
		logger.Info("Session Created", "session_id", sessionID)
		if !quiet {
			printSystemMessage(w, "Session '%s' active.", sessionID)
		}
	}
}

func logCompletion(w io.Writer, eng *flowstep.Engine, err error, quiet, signalled bool) {
	if quiet {
		return
	}
	switch {
	case err != nil && !isInterrupted(err):
		return
	case signalled:
		printSystemMessage(w, "Interrupted at step %d.", eng.StepCount())
	case eng.IsTerminated():
		cut, capacity := eng.MinCut()
		printSystemMessage(w, "Finished at step %d: flow %d, minimum cut %v with capacity %d.", eng.StepCount(), eng.FlowValue(), cut, capacity)
	default:
		printSystemMessage(w, "Stopped at step %d with flow %d.", eng.StepCount(), eng.FlowValue())
	}
}
