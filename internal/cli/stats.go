package cli

import (
	"context"
	"fmt"
	"slices"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/matzehuels/provmap/pkg/geo"
	"github.com/matzehuels/provmap/pkg/network"
)

// statsCommand prints graph statistics for a province.
func (c *CLI) statsCommand() *cobra.Command {
	var top int

	cmd := &cobra.Command{
		Use:   "stats <province>",
		Short: "Show city, connection and distance statistics for a province",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runStats(cmd.Context(), args[0], top)
		},
	}

	cmd.Flags().IntVar(&top, "top", 10, "number of cities listed by degree")

	return cmd
}

func (c *CLI) runStats(ctx context.Context, province string, top int) error {
	ds, ok := c.loadDataset(ctx)
	if !ok {
		return errReported
	}
	g, err := network.Build(ds, province)
	if err != nil {
		c.reporter().Error(err)
		return errReported
	}

	points := geo.Points(g)
	fmt.Fprintln(stdout, StyleTitle.Render(province))
	printKeyValue("Cities", strconv.Itoa(len(points)))
	printKeyValue("Connections", strconv.Itoa(g.EdgeCount()))
	printKeyValue("Length", fmt.Sprintf("%.1f km", geo.Length(g)))
	if b, ok := geo.BoundsOf(points); ok {
		center := b.Center()
		printKeyValue("Centre", fmt.Sprintf("%.4f, %.4f", center.Lat, center.Lon))
		latSpan, lonSpan := b.Span()
		printKeyValue("Extent", fmt.Sprintf("%.3f° × %.3f°", latSpan, lonSpan))
	}
	if ph := g.Placeholders(); len(ph) > 0 {
		printKeyValue("Unknown", fmt.Sprintf("%d (%v)", len(ph), ph))
	}

	nodes := make([]*network.Node, 0, g.NodeCount())
	for _, n := range g.Nodes() {
		if !n.Placeholder {
			nodes = append(nodes, n)
		}
	}
	if len(nodes) == 0 {
		return nil
	}
	// Stable sort keeps source order among equal degrees.
	slices.SortStableFunc(nodes, func(a, b *network.Node) int {
		return g.Degree(b.Name) - g.Degree(a.Name)
	})
	if top > 0 && len(nodes) > top {
		nodes = nodes[:top]
	}

	t := newTable([]string{"City", "Degree", "Neighbours", "Geohash", "S2 cell"}, 1, 2)
	for _, n := range nodes {
		t.Row(n.Name,
			strconv.Itoa(g.Degree(n.Name)),
			strconv.Itoa(len(g.Neighbors(n.Name))),
			geo.Geohash(n.Coordinates),
			geo.CellToken(n.Coordinates))
	}
	printNewline()
	fmt.Fprintln(stdout, t.Render())
	return nil
}
