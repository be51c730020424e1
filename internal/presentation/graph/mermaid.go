package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/flowstep/pkg/view"
)

// GenerateMermaid produces a Mermaid flowchart from a view.
// It applies semantic styling:
// - Source and sink: ((Circle))
// - Other nodes: (Rounded)
// - Residual backward arcs: dotted
// Node classes become classDef styles; path and saturated edges get a linkStyle.
func GenerateMermaid(g view.Graph) string {
	var sb strings.Builder
	sb.WriteString("graph LR\n")

	for _, n := range g.Nodes {
		opener, closer := "(", ")"
		if n.HasClass(view.ClassSource) || n.HasClass(view.ClassSink) {
			opener, closer = "((", "))"
		}
		fmt.Fprintf(&sb, "    %s%s\"%s\"%s\n", mermaidID(n.ID), opener, n.Label, closer)
	}

	var pathLinks, fullLinks []string
	for i, e := range g.Edges {
		arrow := fmt.Sprintf("-- \"%s\" -->", e.Label)
		if e.HasClass(view.ClassBackward) {
			arrow = fmt.Sprintf("-. \"%s\" .->", e.Label)
		}
		fmt.Fprintf(&sb, "    %s %s %s\n", mermaidID(e.From), arrow, mermaidID(e.To))

		switch {
		case e.HasClass(view.ClassPath):
			pathLinks = append(pathLinks, fmt.Sprint(i))
		case e.HasClass(view.ClassFull):
			fullLinks = append(fullLinks, fmt.Sprint(i))
		}
	}

	// Force black text (color:#000) for contrast on light fills, regardless of theme.
	sb.WriteString("\n    %% Algorithm State\n")
	sb.WriteString("    classDef labeled fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
	sb.WriteString("    classDef scanned fill:#c8e6c9,stroke:#1b5e20,stroke-width:2px,color:#000;\n")
	sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

	for _, n := range g.Nodes {
		// Mermaid applies one class per node; the most specific wins.
		var class string
		switch {
		case n.HasClass(view.ClassCurrent):
			class = view.ClassCurrent
		case n.HasClass(view.ClassScanned):
			class = view.ClassScanned
		case n.HasClass(view.ClassLabeled):
			class = view.ClassLabeled
		default:
			continue
		}
		fmt.Fprintf(&sb, "    class %s %s;\n", mermaidID(n.ID), class)
	}

	if len(pathLinks) > 0 {
		fmt.Fprintf(&sb, "    linkStyle %s stroke:#d32f2f,stroke-width:3px;\n", strings.Join(pathLinks, ","))
	}
	if len(fullLinks) > 0 {
		fmt.Fprintf(&sb, "    linkStyle %s stroke:#9e9e9e;\n", strings.Join(fullLinks, ","))
	}

	return sb.String()
}

func mermaidID(v int) string {
	return fmt.Sprintf("n%d", v)
}
