package flowstep

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"slices"
	"time"

	"github.com/aretw0/flowstep/internal/runtime"
	"github.com/aretw0/flowstep/pkg/domain"
	"github.com/aretw0/flowstep/pkg/view"
)

// Engine is the high-level entry point for the flowstep library.
// It wraps the internal runtime and provides a simplified API for consumers.
type Engine struct {
	runtime *runtime.Engine
	cfg     domain.Config
	hooks   domain.LifecycleHooks
	logger  *slog.Logger
	created time.Time
}

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = e.hooks.Merge(hooks)
	}
}

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithGranularity selects how much work a single Step performs.
func WithGranularity(g domain.Granularity) Option {
	return func(e *Engine) {
		e.cfg.Granularity = g
	}
}

// WithLabeling selects which edges a scan may label across.
func WithLabeling(m domain.LabelingMode) Option {
	return func(e *Engine) {
		e.cfg.Labeling = m
	}
}

// WithHistoryLimit caps the undo depth. Zero keeps every step.
func WithHistoryLimit(n int) Option {
	return func(e *Engine) {
		e.cfg.HistoryLimit = n
	}
}

// WithConfig replaces the whole engine configuration.
func WithConfig(cfg domain.Config) Option {
	return func(e *Engine) {
		e.cfg = cfg
	}
}

// New validates the network and returns an engine at the bootstrap state:
// only the source labeled, no flow.
func New(numberOfNodes int, edges []domain.EdgeSpec, opts ...Option) (*Engine, error) {
	net, err := domain.NewNetwork(numberOfNodes, edges)
	if err != nil {
		return nil, err
	}
	return build(domain.NewSnapshot(net), nil, time.Now(), opts)
}

// NewFromSession resumes a persisted run, history included. The session's
// configuration is applied before opts.
func NewFromSession(sess *domain.Session, opts ...Option) (*Engine, error) {
	if sess == nil {
		return nil, fmt.Errorf("resume: %w", domain.ErrSessionNotFound)
	}
	if sess.Sealed != "" {
		return nil, fmt.Errorf("resume %s: session is sealed", sess.ID)
	}
	if n := sess.Current.Network.NumberOfNodes; n < 2 {
		return nil, &domain.ConfigurationError{Field: "nodes", Reason: "session holds no network", Value: n, Index: -1}
	}
	opts = append([]Option{WithConfig(sess.Config)}, opts...)
	return build(sess.Current, sess.History, sess.CreatedAt, opts)
}

func build(snap domain.Snapshot, history []domain.Snapshot, created time.Time, opts []Option) (*Engine, error) {
	eng := &Engine{cfg: domain.DefaultConfig(), created: created}
	for _, opt := range opts {
		opt(eng)
	}

	cfg, err := eng.cfg.Validate()
	if err != nil {
		return nil, err
	}
	eng.cfg = cfg

	if eng.logger == nil {
		eng.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	eng.logger = eng.logger.With("nodes", snap.Network.NumberOfNodes)

	eng.runtime = runtime.NewEngine(snap, eng.cfg,
		runtime.WithLifecycleHooks(eng.hooks),
		runtime.WithLogger(eng.logger),
		runtime.WithHistory(history),
	)
	return eng, nil
}

// Step advances the algorithm by one elementary unit of work. A terminated
// engine answers with a noop_terminated result and records nothing.
func (e *Engine) Step(ctx context.Context) (*domain.StepResult, error) {
	return e.runtime.Step(ctx)
}

// Undo rewinds the most recent step. It reports false when the history is empty.
func (e *Engine) Undo(ctx context.Context) (*domain.StepResult, bool) {
	return e.runtime.Undo(ctx)
}

// Solve steps until the algorithm terminates, maxSteps is reached (0 means
// no limit) or ctx is done. It returns the last result.
func (e *Engine) Solve(ctx context.Context, maxSteps int) (*domain.StepResult, error) {
	var last *domain.StepResult
	for n := 0; maxSteps == 0 || n < maxSteps; n++ {
		if err := ctx.Err(); err != nil {
			return last, err
		}
		res, err := e.runtime.Step(ctx)
		if err != nil {
			return last, err
		}
		last = res
		if res.Kind == domain.KindNoopTerminated || e.IsTerminated() {
			return last, nil
		}
	}
	return last, nil
}

// LabeledNodes returns the labeled nodes in labeling order.
func (e *Engine) LabeledNodes() []int { return slices.Clone(e.runtime.State().Labeled) }

// ScannedNodes returns the scanned nodes in scanning order.
func (e *Engine) ScannedNodes() []int { return slices.Clone(e.runtime.State().Scanned) }

// Predecessors returns a copy of the predecessor map.
func (e *Engine) Predecessors() map[int]int { return maps.Clone(e.runtime.State().Predecessor) }

// EdgeFlows returns the edges with their current flow, in insertion order.
func (e *Engine) EdgeFlows() []domain.Edge { return slices.Clone(e.runtime.Network().Edges) }

func (e *Engine) IsTerminated() bool { return e.runtime.State().Terminated }

func (e *Engine) StepCount() int { return e.runtime.State().StepCounter }

// CurrentNode returns the node chosen by a select step that has not been
// scanned yet.
func (e *Engine) CurrentNode() (int, bool) {
	if c := e.runtime.State().CurrentNode; c != nil {
		return *c, true
	}
	return 0, false
}

// FlowValue is the net flow currently leaving the source.
func (e *Engine) FlowValue() int64 { return e.runtime.Network().FlowValue() }

// MinCut returns the labeled side of the cut and its capacity. It is only
// meaningful once the engine has terminated.
func (e *Engine) MinCut() ([]int, int64) {
	labeled := e.LabeledNodes()
	return labeled, e.runtime.Network().CutCapacity(labeled)
}

// Config returns the validated engine configuration.
func (e *Engine) Config() domain.Config { return e.cfg }

// Snapshot returns a deep copy of the live state.
func (e *Engine) Snapshot() domain.Snapshot { return e.runtime.Current() }

// CanUndo reports whether history holds at least one snapshot.
func (e *Engine) CanUndo() bool { return !e.runtime.History().IsEmpty() }

// Session packages the live snapshot and history for a store.
func (e *Engine) Session(id string) *domain.Session {
	return &domain.Session{
		ID:        id,
		Config:    e.cfg,
		Current:   e.runtime.Current(),
		History:   e.runtime.History().Entries(),
		CreatedAt: e.created,
		UpdatedAt: time.Now(),
	}
}

// NetworkView renders the forward network.
func (e *Engine) NetworkView() view.Graph {
	snap := e.runtime.Current()
	return view.Network(&snap)
}

// ResidualView renders the residual network.
func (e *Engine) ResidualView() view.Graph {
	snap := e.runtime.Current()
	return view.Residual(&snap)
}

// View renders the view of the given kind.
func (e *Engine) View(kind view.Kind) view.Graph {
	snap := e.runtime.Current()
	return view.Build(kind, &snap)
}
