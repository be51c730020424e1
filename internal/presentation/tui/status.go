package tui

import (
	"fmt"
	"strings"

	"github.com/aretw0/flowstep/pkg/domain"
)

// StatusMarkdown describes a snapshot, and optionally the step that produced
// it, as a markdown report.
func StatusMarkdown(snap *domain.Snapshot, res *domain.StepResult) string {
	var sb strings.Builder
	st := &snap.State
	net := &snap.Network

	fmt.Fprintf(&sb, "## Step %d\n\n", st.StepCounter)
	if res != nil {
		fmt.Fprintf(&sb, "**%s**", res.Kind)
		switch {
		case res.Kind == domain.KindAugment:
			fmt.Fprintf(&sb, " along `%s` by %d", pathString(net, res.Path), res.Amount)
		case res.Node != nil && res.Kind == domain.KindScan:
			fmt.Fprintf(&sb, " node %s, labeled %s", net.NodeName(*res.Node), nodeList(net, res.Labeled))
		case res.Node != nil:
			fmt.Fprintf(&sb, " node %s", net.NodeName(*res.Node))
		}
		sb.WriteString("\n\n")
	}

	fmt.Fprintf(&sb, "- Flow value: **%d**\n", net.FlowValue())
	fmt.Fprintf(&sb, "- Labeled: %s\n", nodeList(net, st.Labeled))
	fmt.Fprintf(&sb, "- Scanned: %s\n", nodeList(net, st.Scanned))
	if st.CurrentNode != nil {
		fmt.Fprintf(&sb, "- Selected: %s\n", net.NodeName(*st.CurrentNode))
	}
	if st.Terminated {
		fmt.Fprintf(&sb, "- Terminated: minimum cut %s with capacity %d\n", nodeList(net, st.Labeled), net.CutCapacity(st.Labeled))
	}

	sb.WriteString("\n| Edge | Flow | Capacity | Predecessor |\n|---|---|---|---|\n")
	for _, e := range net.Edges {
		mark := ""
		if p, ok := st.Predecessor[e.To]; ok && p == e.From {
			mark = "yes"
		}
		fmt.Fprintf(&sb, "| %s → %s | %d | %d | %s |\n", net.NodeName(e.From), net.NodeName(e.To), e.Flow, e.Capacity, mark)
	}
	return sb.String()
}

func nodeList(net *domain.Network, nodes []int) string {
	if len(nodes) == 0 {
		return "none"
	}
	names := make([]string, len(nodes))
	for i, v := range nodes {
		names[i] = net.NodeName(v)
	}
	return "{" + strings.Join(names, ", ") + "}"
}

func pathString(net *domain.Network, path []int) string {
	names := make([]string, 0, len(path))
	for _, v := range path {
		names = append(names, net.NodeName(v))
	}
	return strings.Join(names, " → ")
}
