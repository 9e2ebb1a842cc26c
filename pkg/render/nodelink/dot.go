package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/provmap/pkg/geo"
	"github.com/matzehuels/provmap/pkg/network"
)

// DefaultScale is the number of inches per degree used to pin city positions.
const DefaultScale = 4.0

// Options configures node-link diagram rendering.
type Options struct {
	// Detailed adds coordinates and degree to node labels and the great-circle
	// length to edge labels. When false, only city names are shown.
	Detailed bool

	// Scale is the drawing size of one degree in inches. Zero means [DefaultScale].
	Scale float64
}

func (o Options) scale() float64 {
	if o.Scale <= 0 {
		return DefaultScale
	}
	return o.Scale
}

// ToDOT converts a province graph to Graphviz DOT format.
//
// Cities are pinned at their geographic position (longitude on the x axis,
// latitude on the y axis) so the diagram reads like a map; render it with the
// neato engine, as [RenderSVG] does. Placeholder nodes for dangling
// connections have no position and are drawn dashed.
func ToDOT(g *network.Graph, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("graph G {\n")
	fmt.Fprintf(&buf, "  label=%q;\n", g.Province)
	buf.WriteString("  labelloc=t;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  outputorder=edgesfirst;\n")
	buf.WriteString("  node [shape=circle, style=filled, fillcolor=\"#00ffff8c\", color=\"#008b8b\", fontsize=10, width=0.15, fixedsize=false];\n")
	buf.WriteString("  edge [color=\"#ff0000\", penwidth=2];\n")
	buf.WriteString("\n")

	scale := opts.scale()
	for _, n := range g.Nodes() {
		attrs := fmtAttrs(g, *n, opts.Detailed, scale)
		fmt.Fprintf(&buf, "  %q [%s];\n", n.Name, strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, e := range g.Edges() {
		label := edgeLabel(g, e, opts.Detailed)
		if label == "" {
			fmt.Fprintf(&buf, "  %q -- %q;\n", e.A, e.B)
			continue
		}
		fmt.Fprintf(&buf, "  %q -- %q [label=%q, fontsize=8];\n", e.A, e.B, label)
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtLabel(g *network.Graph, n network.Node, detailed bool) string {
	if !detailed || n.Placeholder {
		return n.Name
	}
	return fmt.Sprintf("%s\n%.4f, %.4f\ndegree: %d", n.Name, n.Coordinates.Lat, n.Coordinates.Lon, g.Degree(n.Name))
}

func fmtAttrs(g *network.Graph, n network.Node, detailed bool, scale float64) []string {
	attrs := []string{
		fmt.Sprintf("label=%q", fmtLabel(g, n, detailed)),
	}
	if n.Placeholder {
		return append(attrs, "style=\"filled,dashed\"", "fillcolor=lightgrey", "color=grey")
	}
	x := n.Coordinates.Lon * scale
	y := n.Coordinates.Lat * scale
	return append(attrs, fmt.Sprintf("pos=\"%.4f,%.4f!\"", x, y))
}

func edgeLabel(g *network.Graph, e network.Edge, detailed bool) string {
	if !detailed {
		return ""
	}
	a, _ := g.Node(e.A)
	b, _ := g.Node(e.B)
	if a == nil || b == nil || a.Placeholder || b.Placeholder {
		return ""
	}
	return fmt.Sprintf("%.1f km", geo.Distance(a.Coordinates, b.Coordinates))
}

// RenderSVG renders a DOT graph to SVG using the Graphviz neato engine.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	out, err := render(ctx, dot, graphviz.SVG)
	if err != nil {
		return nil, err
	}
	return normalizeViewBox(out), nil
}

// RenderPNG renders a DOT graph to PNG using the Graphviz neato engine.
func RenderPNG(ctx context.Context, dot string) ([]byte, error) {
	return render(ctx, dot, graphviz.PNG)
}

func render(ctx context.Context, dot string, format graphviz.Format) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()
	gv.SetLayout(graphviz.NEATO)

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, format, &buf); err != nil {
		return nil, fmt.Errorf("render %s: %w", format, err)
	}
	return buf.Bytes(), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.-]+)\s+([0-9.-]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's pt-sized root element with one that
// scales to its container.
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

	root := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(root))
}
