// Package nodelink renders a province graph as a Graphviz node-link diagram.
//
// Unlike the deck.gl map, the diagram needs no tile server: cities are pinned
// at their coordinates and connections are drawn as straight lines, which
// makes it suitable for reports and offline inspection.
//
//	dot := nodelink.ToDOT(g, nodelink.Options{Detailed: true})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//	png, err := nodelink.RenderPNG(ctx, dot)
//
// Rendering runs Graphviz in-process through [github.com/goccy/go-graphviz];
// no external binaries are required.
package nodelink
