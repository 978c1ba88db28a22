// Package render draws hierarchies as Graphviz diagrams. Systems appear
// as boxes, containment as solid arrows, and gene membership (optionally)
// as dashed arrows to ellipse leaves.
package render

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/cellmaps/hierkit/pkg/hierarchy"
	"github.com/cellmaps/hierkit/pkg/hierdiff"
)

// Options configures hierarchy rendering.
type Options struct {
	// ShowMembers draws gene-level members as dashed leaf nodes. Off by
	// default: interactome-scale member sets swamp the layout.
	ShowMembers bool

	// ShowSizes appends the resolved member count to each system label.
	ShowSizes bool

	// ColorByRobustness shades systems by their robustness score when the
	// attribute is present, white (0) through dark green (1).
	ColorByRobustness bool
}

// ToDOT converts a hierarchy to Graphviz DOT source. The output is
// deterministic for a given hierarchy, so it diffs cleanly across runs.
// Render it with [SVG], or feed it to external Graphviz tooling.
func ToDOT(h *hierarchy.Hierarchy, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph hierarchy {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	for _, id := range h.NodeIDs() {
		n, _ := h.Node(id)
		attrs := []string{fmt.Sprintf("label=%q", nodeLabel(h, n, opts))}
		if opts.ColorByRobustness {
			if score, ok := n.Attr[hierdiff.AttrRobustness].(float64); ok {
				attrs = append(attrs, fmt.Sprintf("fillcolor=%q", robustnessColor(score)))
			}
		}
		fmt.Fprintf(&buf, "  %q [%s];\n", id, strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, e := range h.ContainmentEdges() {
		fmt.Fprintf(&buf, "  %q -> %q;\n", e.Parent, e.Child)
	}

	if opts.ShowMembers {
		buf.WriteString("\n")
		buf.WriteString("  node [shape=ellipse, style=solid];\n")
		for _, id := range h.NodeIDs() {
			n, _ := h.Node(id)
			for _, m := range n.Members {
				fmt.Fprintf(&buf, "  %q -> %q [style=dashed];\n", id, "gene:"+m)
			}
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

func nodeLabel(h *hierarchy.Hierarchy, n *hierarchy.Node, opts Options) string {
	label := n.ID
	if n.Label != "" {
		label = n.Label
	}
	if opts.ShowSizes {
		label = fmt.Sprintf("%s\n%d genes", label, len(h.Members(n.ID)))
	}
	return label
}

// robustnessColor maps a score in [0,1] to a graphviz HSV color from
// white to dark green.
func robustnessColor(score float64) string {
	score = min(max(score, 0), 1)
	return fmt.Sprintf("0.333 %.3f 1.000", score)
}

// SVG renders DOT source to SVG bytes using in-process Graphviz.
func SVG(ctx context.Context, dot string) ([]byte, error) {
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

// HierarchySVG is a convenience wrapper that converts and renders in one
// call.
func HierarchySVG(ctx context.Context, h *hierarchy.Hierarchy, opts Options) ([]byte, error) {
	return SVG(ctx, ToDOT(h, opts))
}
