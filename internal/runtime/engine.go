package runtime

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/aretw0/flowstep/pkg/domain"
)

// Engine owns a live snapshot and its undo history. It is not safe for
// concurrent use; callers serialize access (see pkg/session).
type Engine struct {
	cfg     domain.Config
	current domain.Snapshot
	history *HistoryStack
	hooks   domain.LifecycleHooks
	logger  *slog.Logger
}

// EngineOption configures the runtime engine.
type EngineOption func(*Engine)

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) EngineOption {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithHistory seeds the undo stack, oldest entry first.
func WithHistory(entries []domain.Snapshot) EngineOption {
	return func(e *Engine) {
		e.history = NewHistoryStack(e.cfg.HistoryLimit, entries...)
	}
}

// NewEngine creates an engine positioned at snap.
func NewEngine(snap domain.Snapshot, cfg domain.Config, opts ...EngineOption) *Engine {
	e := &Engine{
		cfg:     cfg,
		current: snap.Clone(),
		history: NewHistoryStack(cfg.HistoryLimit),
		logger:  slog.New(slog.NewJSONHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Step advances the algorithm by one elementary unit of work.
func (e *Engine) Step(ctx context.Context) (*domain.StepResult, error) {
	start := time.Now()
	next, res, err := Transition(e.current, e.cfg)
	if err != nil {
		e.logger.Error("step failed", "step", e.current.State.StepCounter, "err", err)
		return nil, err
	}

	if res.Kind.Mutating() {
		e.history.Push(e.current)
		e.current = next
	}

	e.logger.Debug("step",
		"kind", res.Kind,
		"step", e.current.State.StepCounter,
		"labeled", len(e.current.State.Labeled),
		"history", e.history.Len(),
	)
	e.emit(ctx, &res, time.Since(start))
	return &res, nil
}

// Undo restores the most recent snapshot. It reports false when there is
// nothing to undo.
func (e *Engine) Undo(ctx context.Context) (*domain.StepResult, bool) {
	prev, ok := e.history.Pop()
	if !ok {
		return nil, false
	}
	e.current = prev

	res := &domain.StepResult{Kind: domain.KindUndo, Snapshot: e.current.Clone()}
	e.logger.Debug("undo", "step", e.current.State.StepCounter, "history", e.history.Len())
	if e.hooks.OnUndo != nil {
		e.hooks.OnUndo(ctx, &domain.StepEvent{
			EventBase:   domain.EventBase{Timestamp: time.Now(), Type: domain.EventUndo},
			Kind:        domain.KindUndo,
			StepCounter: e.current.State.StepCounter,
		})
	}
	return res, true
}

func (e *Engine) emit(ctx context.Context, res *domain.StepResult, elapsed time.Duration) {
	now := time.Now()
	if e.hooks.OnStep != nil {
		e.hooks.OnStep(ctx, &domain.StepEvent{
			EventBase:   domain.EventBase{Timestamp: now, Type: domain.EventStep},
			Kind:        res.Kind,
			StepCounter: e.current.State.StepCounter,
			Node:        res.Node,
			Duration:    elapsed,
		})
	}
	switch res.Kind {
	case domain.KindAugment:
		if e.hooks.OnAugment != nil {
			e.hooks.OnAugment(ctx, &domain.AugmentEvent{
				EventBase: domain.EventBase{Timestamp: now, Type: domain.EventAugment},
				Path:      res.Path,
				Amount:    res.Amount,
				FlowValue: e.current.Network.FlowValue(),
			})
		}
	case domain.KindTerminate:
		if e.hooks.OnTerminate != nil {
			e.hooks.OnTerminate(ctx, &domain.TerminateEvent{
				EventBase:   domain.EventBase{Timestamp: now, Type: domain.EventTerminate},
				FlowValue:   e.current.Network.FlowValue(),
				CutCapacity: e.current.Network.CutCapacity(e.current.State.Labeled),
				Steps:       e.current.State.StepCounter,
			})
		}
	}
}

// Current returns a copy of the live snapshot.
func (e *Engine) Current() domain.Snapshot { return e.current.Clone() }

// State exposes the live algorithm state for read-only accessors.
func (e *Engine) State() *domain.State { return &e.current.State }

// Network exposes the live network for read-only accessors.
func (e *Engine) Network() *domain.Network { return &e.current.Network }

// Config returns the engine configuration.
func (e *Engine) Config() domain.Config { return e.cfg }

// History returns the undo stack.
func (e *Engine) History() *HistoryStack { return e.history }
