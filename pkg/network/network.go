package network

import (
	"errors"

	"github.com/matzehuels/provmap/pkg/dataset"
	perrors "github.com/matzehuels/provmap/pkg/errors"
)

var (
	// ErrNotFound is returned by [Build] when the province is not in the
	// dataset. It is distinct from an empty province, which yields an empty graph.
	ErrNotFound = errors.New("province not found")

	// ErrInvalidNodeName is returned by [Graph.AddNode] for a city with an
	// empty name. Placeholders may have an empty name: a connection entry ""
	// is dangling like any other unknown target.
	ErrInvalidNodeName = errors.New("node name must not be empty")
)

// Node is a city in the graph.
//
// Placeholder nodes are created for connection targets that are not cities of
// the province. They carry no coordinates.
type Node struct {
	Name        string
	Coordinates dataset.Coordinates
	Placeholder bool
}

// Edge is an undirected connection between two nodes. A and B keep the
// direction in which the connection was listed, but the edge is unordered:
// A-B and B-A are the same road.
type Edge struct {
	A string
	B string
}

// Other returns the endpoint of e that is not name.
func (e Edge) Other(name string) string {
	if e.A == name {
		return e.B
	}
	return e.A
}

// Graph is an undirected multigraph of the cities of one province.
//
// Parallel edges are kept: a connection listed on both sides yields two
// edges. Nodes and edges keep insertion order.
//
// The zero value is not usable; use [New] or [Build].
// Graph is not safe for concurrent mutation.
type Graph struct {
	Province string

	nodes []*Node
	index map[string]int
	edges []Edge
	adj   map[string][]int // node name -> indexes into edges
}

// New creates an empty graph for the named province.
func New(province string) *Graph {
	return &Graph{
		Province: province,
		index:    make(map[string]int),
		adj:      make(map[string][]int),
	}
}

// AddNode inserts n. Adding a node that already exists replaces its
// coordinates and clears the placeholder flag if n is a real city.
func (g *Graph) AddNode(n Node) error {
	if n.Name == "" && !n.Placeholder {
		return ErrInvalidNodeName
	}
	if i, ok := g.index[n.Name]; ok {
		if !n.Placeholder {
			g.nodes[i].Coordinates = n.Coordinates
			g.nodes[i].Placeholder = false
		}
		return nil
	}
	g.index[n.Name] = len(g.nodes)
	g.nodes = append(g.nodes, &n)
	return nil
}

// AddEdge connects a and b. Missing endpoints are created as placeholder nodes.
func (g *Graph) AddEdge(a, b string) error {
	for _, name := range []string{a, b} {
		if _, ok := g.index[name]; !ok {
			if err := g.AddNode(Node{Name: name, Placeholder: true}); err != nil {
				return err
			}
		}
	}
	i := len(g.edges)
	g.edges = append(g.edges, Edge{A: a, B: b})
	g.adj[a] = append(g.adj[a], i)
	if a != b {
		g.adj[b] = append(g.adj[b], i)
	}
	return nil
}

// Node looks up a node by name.
func (g *Graph) Node(name string) (*Node, bool) {
	i, ok := g.index[name]
	if !ok {
		return nil, false
	}
	return g.nodes[i], true
}

// Nodes returns all nodes in insertion order.
func (g *Graph) Nodes() []*Node { return g.nodes }

// Edges returns all edges in insertion order.
func (g *Graph) Edges() []Edge { return g.edges }

// NodeCount returns the number of nodes, placeholders included.
func (g *Graph) NodeCount() int { return len(g.nodes) }

// EdgeCount returns the number of edges, parallel edges included.
func (g *Graph) EdgeCount() int { return len(g.edges) }

// Degree returns the number of edge ends at name. A self-loop counts twice.
func (g *Graph) Degree(name string) int {
	d := 0
	for _, i := range g.adj[name] {
		d++
		if g.edges[i].A == g.edges[i].B {
			d++
		}
	}
	return d
}

// Neighbors returns the names adjacent to name, one entry per edge.
func (g *Graph) Neighbors(name string) []string {
	idx := g.adj[name]
	out := make([]string, 0, len(idx))
	for _, i := range idx {
		out = append(out, g.edges[i].Other(name))
	}
	return out
}

// Placeholders returns the names of nodes created for dangling connections.
func (g *Graph) Placeholders() []string {
	var out []string
	for _, n := range g.nodes {
		if n.Placeholder {
			out = append(out, n.Name)
		}
	}
	return out
}

// Build constructs the graph of one province of ds.
//
// Every city becomes a node, in source order. Every connection entry becomes
// one edge; nothing is deduplicated. A connection to a name that is not a
// city of the province adds a placeholder node, so Build never fails on
// dangling names.
//
// An unknown province returns an error that matches both [ErrNotFound] and the
// PROVINCE_NOT_FOUND code.
func Build(ds *dataset.Dataset, province string) (*Graph, error) {
	p, ok := ds.Province(province)
	if !ok {
		return nil, perrors.Wrap(perrors.ErrCodeProvinceNotFound, ErrNotFound, "province %q not found", province)
	}

	g := New(province)
	for _, c := range p.Cities() {
		if err := g.AddNode(Node{Name: c.Name, Coordinates: c.Coordinates}); err != nil {
			return nil, perrors.Wrap(perrors.ErrCodeInvalidFormat, err, "province %q", province)
		}
	}
	for _, c := range p.Cities() {
		for _, target := range c.Connections {
			if err := g.AddEdge(c.Name, target); err != nil {
				return nil, perrors.Wrap(perrors.ErrCodeInvalidFormat, err, "province %q", province)
			}
		}
	}
	return g, nil
}
