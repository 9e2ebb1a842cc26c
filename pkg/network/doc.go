// Package network builds the road graph of a province.
//
// The graph is derived from a [dataset.Dataset] on demand and discarded after
// rendering. It is an undirected multigraph: each connection entry of each
// city is one edge, so a road listed on both of its ends appears twice. This
// mirrors the connection lists exactly and keeps edge counts predictable:
//
//	g, err := network.Build(ds, "West Java")
//	if errors.Is(err, network.ErrNotFound) {
//	    // unknown province
//	}
//	fmt.Println(g.NodeCount(), g.EdgeCount())
//
// Connection targets that are not cities of the province appear as
// placeholder nodes without coordinates. Renderers that need positions
// skip them.
package network
