package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aretw0/flowstep"
	"github.com/aretw0/flowstep/internal/compiler"
	"github.com/aretw0/flowstep/pkg/domain"
)

// Overrides are engine settings given on the command line. Empty values keep
// what the network file says.
type Overrides struct {
	Granularity  string
	Labeling     string
	HistoryLimit int // negative keeps the file value
}

// NoOverrides keeps every file setting.
var NoOverrides = Overrides{HistoryLimit: -1}

// Apply layers o on top of cfg and validates the result.
func (o Overrides) Apply(cfg domain.Config) (domain.Config, error) {
	if o.Granularity != "" {
		cfg.Granularity = domain.Granularity(o.Granularity)
	}
	if o.Labeling != "" {
		cfg.Labeling = domain.LabelingMode(o.Labeling)
	}
	if o.HistoryLimit >= 0 {
		cfg.HistoryLimit = o.HistoryLimit
	}
	return cfg.Validate()
}

// LoadNetwork reads and compiles a network file and applies overrides.
func LoadNetwork(path string, o Overrides) (*compiler.Definition, error) {
	def, err := compiler.LoadFile(path)
	if err != nil {
		return nil, err
	}
	if def.Config, err = o.Apply(def.Config); err != nil {
		return nil, err
	}
	return def, nil
}

// NewEngine builds an engine at the initial state of def.
func NewEngine(def *compiler.Definition, logger *slog.Logger, debug bool, extra ...flowstep.Option) (*flowstep.Engine, error) {
	eng, err := flowstep.New(def.Nodes, def.Edges, engineOptions(def.Config, logger, debug, extra)...)
	if err != nil {
		return nil, fmt.Errorf("error initializing engine: %w", err)
	}
	return eng, nil
}

func engineOptions(cfg domain.Config, logger *slog.Logger, debug bool, extra []flowstep.Option) []flowstep.Option {
	opts := []flowstep.Option{flowstep.WithConfig(cfg), flowstep.WithLogger(logger)}
	if debug {
		opts = append(opts, flowstep.WithLifecycleHooks(createDebugHooks(logger)))
	}
	return append(opts, extra...)
}

func createDebugHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnUndo: func(ctx context.Context, e *domain.StepEvent) {
			logger.Debug("Undo", "step", e.StepCounter)
		},
		OnAugment: func(ctx context.Context, e *domain.AugmentEvent) {
			logger.Debug("Augment", "path", e.Path, "amount", e.Amount, "flow_value", e.FlowValue)
		},
		OnTerminate: func(ctx context.Context, e *domain.TerminateEvent) {
			logger.Debug("Terminate", "flow_value", e.FlowValue, "cut_capacity", e.CutCapacity, "steps", e.Steps)
		},
	}
}
