package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/aretw0/flowstep/internal/presentation/graph"
	"github.com/aretw0/flowstep/pkg/view"
)

// Graph output formats.
const (
	FormatMermaid = "mermaid"
	FormatDOT     = "dot"
	FormatSVG     = "svg"
	FormatJSON    = "json"
)

// GraphOptions configures the graph command.
type GraphOptions struct {
	File      string
	Overrides Overrides
	View      string
	Format    string
	// Steps runs that many steps first; negative solves to termination.
	Steps int
}

// Graph writes a view of the network after the requested number of steps.
func Graph(ctx context.Context, opts GraphOptions, w io.Writer) error {
	kind, ok := view.ParseKind(opts.View)
	if !ok {
		return fmt.Errorf("unknown view %q (expected network or residual)", opts.View)
	}

	def, err := LoadNetwork(opts.File, opts.Overrides)
	if err != nil {
		return err
	}
	eng, err := NewEngine(def, createLogger(false), false)
	if err != nil {
		return err
	}
	if opts.Steps != 0 {
		limit := max(opts.Steps, 0)
		if _, err := eng.Solve(ctx, limit); err != nil {
			return err
		}
	}

	g := eng.View(kind)
	switch opts.Format {
	case "", FormatMermaid:
		_, err = io.WriteString(w, graph.GenerateMermaid(g))
	case FormatDOT:
		_, err = io.WriteString(w, graph.GenerateDOT(g))
	case FormatSVG:
		var svg []byte
		if svg, err = graph.RenderSVG(ctx, graph.GenerateDOT(g)); err == nil {
			_, err = w.Write(svg)
		}
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		err = enc.Encode(g)
	default:
		return fmt.Errorf("unknown format %q (expected mermaid, dot, svg or json)", opts.Format)
	}
	return err
}
