package graphviz

import (
	"bytes"
	"fmt"

	"github.com/matzehuels/bpmnlayout/pkg/layout/bridge"
)

// pointsPerInch converts pixel sizes to dot's inches.
const pointsPerInch = 72.0

// ToDOT converts the children of n and the edges between them to a flat
// left-to-right digraph. Self-loops are left out.
func ToDOT(n *bridge.Node, opts bridge.Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  splines=ortho;\n")
	buf.WriteString("  ordering=out;\n")
	fmt.Fprintf(&buf, "  nodesep=%s;\n", inches(opts.NodeSpacing))
	fmt.Fprintf(&buf, "  ranksep=%s;\n", inches(opts.LayerSpacing))
	buf.WriteString("  node [shape=box, fixedsize=true, label=\"\"];\n")
	buf.WriteString("\n")

	for _, c := range n.Children {
		fmt.Fprintf(&buf, "  %q [width=%s, height=%s];\n", c.ID, inches(c.Width), inches(c.Height))
	}

	buf.WriteString("\n")
	for _, e := range n.Edges {
		if e.Source == e.Target {
			continue
		}
		fmt.Fprintf(&buf, "  %q -> %q [id=%q];\n", e.Source, e.Target, e.ID)
	}

	buf.WriteString("}\n")
	return buf.String()
}

func inches(px float64) string {
	return fmt.Sprintf("%.4f", px/pointsPerInch)
}
