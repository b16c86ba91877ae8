package render

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/stagger/pkg/layout"
)

// ToDOT describes the lane assignment of frames as a Graphviz graph: one
// cluster per lane holding its items in main-axis order, chained by edges.
// Frames are ordered within a lane by their main-axis start, so the chain
// reads the way the lane fills.
func ToDOT(frames []layout.Frame, opts ...Option) string {
	o := newOptions(opts...)

	byLane := map[int][]layout.Frame{}
	lastLane := -1
	for _, f := range frames {
		byLane[f.Lane] = append(byLane[f.Lane], f)
		lastLane = max(lastLane, f.Lane)
	}
	lastLane = max(lastLane, o.laneCount-1)

	var buf bytes.Buffer
	buf.WriteString("digraph lanes {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fontcolor=white, fontsize=14];\n")
	buf.WriteString("  edge [arrowsize=0.6];\n")

	for lane := 0; lane <= lastLane; lane++ {
		chain := byLane[lane]
		sortByMainStart(chain, o)

		fmt.Fprintf(&buf, "\n  subgraph cluster_%d {\n", lane)
		fmt.Fprintf(&buf, "    label=%q;\n", fmt.Sprintf("lane %d", lane))
		buf.WriteString("    style=dashed;\n")
		if len(chain) == 0 {
			// Graphviz drops empty clusters; keep the lane visible.
			fmt.Fprintf(&buf, "    \"lane%d_empty\" [label=\"\", style=invis];\n", lane)
		}
		for _, f := range chain {
			fmt.Fprintf(&buf, "    %q [label=%q, fillcolor=%q];\n", nodeID(f.Position), nodeLabel(f, o), laneColor(lane))
		}
		for i := 1; i < len(chain); i++ {
			fmt.Fprintf(&buf, "    %q -> %q;\n", nodeID(chain[i-1].Position), nodeID(chain[i].Position))
		}
		buf.WriteString("  }\n")
	}

	buf.WriteString("}\n")
	return buf.String()
}

func nodeID(position int) string { return "p" + strconv.Itoa(position) }

func nodeLabel(f layout.Frame, o options) string {
	if o.label != nil {
		if l := o.label(f.Position); l != "" {
			return fmt.Sprintf("%d: %s", f.Position, l)
		}
	}
	return strconv.Itoa(f.Position)
}

// sortByMainStart orders a lane's frames by their main-axis start, breaking
// ties by position. Lanes hold few frames, so insertion sort is enough.
func sortByMainStart(chain []layout.Frame, o options) {
	less := func(a, b layout.Frame) bool {
		sa, sb := o.orientation.MainStart(a.Rect), o.orientation.MainStart(b.Rect)
		if sa != sb {
			return sa < sb
		}
		return a.Position < b.Position
	}
	for i := 1; i < len(chain); i++ {
		for j := i; j > 0 && less(chain[j], chain[j-1]); j-- {
			chain[j], chain[j-1] = chain[j-1], chain[j]
		}
	}
}

// RenderGraphSVG lays out the lane graph of frames with Graphviz and returns
// the SVG with a normalized viewBox.
func RenderGraphSVG(ctx context.Context, frames []layout.Frame, opts ...Option) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(ToDOT(frames, opts...)))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces the Graphviz root element with one whose viewBox
// starts at the origin and whose size matches it, so browsers scale it.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}
	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}
	root := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`, w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(root))
}
