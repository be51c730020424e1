package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/aretw0/flowstep/internal/dto"
	"github.com/aretw0/flowstep/pkg/domain"
)

// SolveOptions configures the solve command.
type SolveOptions struct {
	File      string
	Overrides Overrides
	MaxSteps  int
	Trace     bool
	JSON      bool
	Debug     bool
}

// Solve steps a network to termination (or MaxSteps) and reports the flow
// and the minimum cut.
func Solve(ctx context.Context, opts SolveOptions, w io.Writer) error {
	def, err := LoadNetwork(opts.File, opts.Overrides)
	if err != nil {
		return err
	}
	eng, err := NewEngine(def, createLogger(opts.Debug), opts.Debug)
	if err != nil {
		return err
	}

	snap := eng.Snapshot()
	net := &snap.Network
	for n := 0; !eng.IsTerminated() && (opts.MaxSteps == 0 || n < opts.MaxSteps); n++ {
		res, err := eng.Step(ctx)
		if err != nil {
			return err
		}
		if opts.Trace && !opts.JSON {
			fmt.Fprintf(w, "%4d  %s\n", eng.StepCount(), describeStep(net, res))
		}
	}

	if opts.JSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(dto.FromSession(eng.Session(def.Name)))
	}

	fmt.Fprintf(w, "network:    %s (%d nodes, %d edges)\n", def.Name, def.Nodes, len(def.Edges))
	fmt.Fprintf(w, "steps:      %d\n", eng.StepCount())
	fmt.Fprintf(w, "flow value: %d\n", eng.FlowValue())
	if !eng.IsTerminated() {
		fmt.Fprintln(w, "status:     step limit reached before termination")
		return nil
	}
	cut, capacity := eng.MinCut()
	fmt.Fprintf(w, "min cut:    %s (capacity %d)\n", nodeNames(net, cut), capacity)
	for _, e := range eng.EdgeFlows() {
		fmt.Fprintf(w, "  %s -> %s  %d/%d\n", net.NodeName(e.From), net.NodeName(e.To), e.Flow, e.Capacity)
	}
	return nil
}

func describeStep(net *domain.Network, res *domain.StepResult) string {
	switch {
	case res.Kind == domain.KindAugment:
		return fmt.Sprintf("augment %s by %d", nodeNames(net, res.Path), res.Amount)
	case res.Kind == domain.KindScan && res.Node != nil:
		return fmt.Sprintf("scan %s, labeled %s", net.NodeName(*res.Node), nodeNames(net, res.Labeled))
	case res.Node != nil:
		return fmt.Sprintf("%s %s", res.Kind, net.NodeName(*res.Node))
	}
	return string(res.Kind)
}

func nodeNames(net *domain.Network, nodes []int) string {
	names := make([]string, len(nodes))
	for i, v := range nodes {
		names[i] = net.NodeName(v)
	}
	return "{" + strings.Join(names, ", ") + "}"
}
