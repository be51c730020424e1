package graph

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/aretw0/flowstep/pkg/view"
)

// GenerateDOT converts a view to Graphviz DOT. The result can be rendered
// with RenderSVG.
func GenerateDOT(g view.Graph) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=circle, style=filled, fillcolor=white, fontsize=14];\n")
	buf.WriteString("\n")

	for _, n := range g.Nodes {
		attrs := []string{fmt.Sprintf("label=%q", n.Label)}
		switch {
		case n.HasClass(view.ClassCurrent):
			attrs = append(attrs, "fillcolor=\"#ffeb3b\"", "penwidth=3")
		case n.HasClass(view.ClassScanned):
			attrs = append(attrs, "fillcolor=\"#c8e6c9\"")
		case n.HasClass(view.ClassLabeled):
			attrs = append(attrs, "fillcolor=\"#e1f5fe\"")
		}
		if n.HasClass(view.ClassSource) || n.HasClass(view.ClassSink) {
			attrs = append(attrs, "shape=doublecircle")
		}
		fmt.Fprintf(&buf, "  %d [%s];\n", n.ID, strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, e := range g.Edges {
		attrs := []string{fmt.Sprintf("label=%q", e.Label)}
		switch {
		case e.HasClass(view.ClassPath):
			attrs = append(attrs, "color=\"#d32f2f\"", "penwidth=2")
		case e.HasClass(view.ClassFull):
			attrs = append(attrs, "color=\"#9e9e9e\"")
		}
		if e.HasClass(view.ClassBackward) {
			attrs = append(attrs, "style=dashed")
		}
		fmt.Fprintf(&buf, "  %d -> %d [%s];\n", e.From, e.To, strings.Join(attrs, ", "))
	}

	buf.WriteString("}\n")
	return buf.String()
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}
