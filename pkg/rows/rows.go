// Package rows flattens a province into the two tables the map layers draw:
// one row per city and one row per connection entry.
//
// [Build] walks the dataset directly. [FromGraph] derives the same tables
// from a [network.Graph]; both produce identical rows for the same province.
package rows

import (
	"fmt"
	"strings"

	"github.com/matzehuels/provmap/pkg/dataset"
	perrors "github.com/matzehuels/provmap/pkg/errors"
	"github.com/matzehuels/provmap/pkg/network"
	"github.com/matzehuels/provmap/pkg/report"
)

// NodeRow is one city with its coordinates as stored.
type NodeRow struct {
	City string  `json:"city"`
	Lat  float64 `json:"lat"`
	Lon  float64 `json:"lon"`
}

// EdgeRow is one connection: coordinates of the listing city, then of the
// target city.
type EdgeRow struct {
	Lat1 float64 `json:"lat1"`
	Lon1 float64 `json:"lon1"`
	Lat2 float64 `json:"lat2"`
	Lon2 float64 `json:"lon2"`
}

// Rows holds the flattened tables of one province.
type Rows struct {
	Province string    `json:"province"`
	Nodes    []NodeRow `json:"nodes"`
	Edges    []EdgeRow `json:"edges"`
}

// Policy decides what happens to a connection whose target is not a city of
// the province.
type Policy int

const (
	// HardFail rejects the whole province with a DANGLING_CONNECTION error.
	HardFail Policy = iota
	// SkipAndWarn drops the connection and reports one warning for it.
	SkipAndWarn
)

var policyNames = map[Policy]string{
	HardFail:    "fail",
	SkipAndWarn: "skip",
}

// String returns the configuration name of the policy.
func (p Policy) String() string {
	if s, ok := policyNames[p]; ok {
		return s
	}
	return fmt.Sprintf("Policy(%d)", int(p))
}

// ParsePolicy parses a configuration value. The empty string is [HardFail].
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "fail", "hardfail", "hard-fail":
		return HardFail, nil
	case "skip", "warn", "skipandwarn", "skip-and-warn":
		return SkipAndWarn, nil
	}
	return HardFail, perrors.New(perrors.ErrCodeInvalidPolicy, "unknown dangling policy %q (want fail or skip)", s)
}

// Options configures flattening.
type Options struct {
	Policy   Policy
	Reporter report.Reporter // receives SkipAndWarn warnings; nil discards them
}

func (o Options) reporter() report.Reporter {
	if o.Reporter == nil {
		return report.Discard
	}
	return o.Reporter
}

// Build flattens one province of ds.
//
// Node rows follow the source order of the cities. Edge rows follow the
// cities and, within a city, its connection list; a connection listed on both
// ends yields two rows.
//
// An unknown province returns a PROVINCE_NOT_FOUND error and no rows.
// Dangling connections are handled according to opts.Policy.
func Build(ds *dataset.Dataset, province string, opts Options) (Rows, error) {
	p, ok := ds.Province(province)
	if !ok {
		return Rows{}, perrors.Wrap(perrors.ErrCodeProvinceNotFound, network.ErrNotFound, "province %q not found", province)
	}

	if opts.Policy == HardFail {
		if dangling := dataset.CheckProvince(p); len(dangling) > 0 {
			return Rows{}, danglingError(province, dangling)
		}
	}

	out := Rows{
		Province: province,
		Nodes:    make([]NodeRow, 0, p.Len()),
		Edges:    make([]EdgeRow, 0, p.ConnectionCount()),
	}
	for _, c := range p.Cities() {
		out.Nodes = append(out.Nodes, NodeRow{City: c.Name, Lat: c.Coordinates.Lat, Lon: c.Coordinates.Lon})
	}
	for _, c := range p.Cities() {
		for _, target := range c.Connections {
			t, ok := p.City(target)
			if !ok {
				opts.reporter().Warn("dangling connection skipped", "province", province, "city", c.Name, "target", target)
				continue
			}
			out.Edges = append(out.Edges, EdgeRow{
				Lat1: c.Coordinates.Lat, Lon1: c.Coordinates.Lon,
				Lat2: t.Coordinates.Lat, Lon2: t.Coordinates.Lon,
			})
		}
	}
	return out, nil
}

// FromGraph flattens a graph built by [network.Build]. Placeholder nodes are
// dangling targets: they produce no node row, and their edges are handled
// according to opts.Policy.
func FromGraph(g *network.Graph, opts Options) (Rows, error) {
	if opts.Policy == HardFail {
		var dangling []dataset.Dangling
		for _, e := range g.Edges() {
			if b, _ := g.Node(e.B); b.Placeholder {
				dangling = append(dangling, dataset.Dangling{Province: g.Province, City: e.A, Target: e.B})
			}
		}
		if len(dangling) > 0 {
			return Rows{}, danglingError(g.Province, dangling)
		}
	}

	out := Rows{Province: g.Province, Nodes: []NodeRow{}, Edges: []EdgeRow{}}
	for _, n := range g.Nodes() {
		if n.Placeholder {
			continue
		}
		out.Nodes = append(out.Nodes, NodeRow{City: n.Name, Lat: n.Coordinates.Lat, Lon: n.Coordinates.Lon})
	}
	for _, e := range g.Edges() {
		a, _ := g.Node(e.A)
		b, _ := g.Node(e.B)
		if b.Placeholder {
			opts.reporter().Warn("dangling connection skipped", "province", g.Province, "city", e.A, "target", e.B)
			continue
		}
		out.Edges = append(out.Edges, EdgeRow{
			Lat1: a.Coordinates.Lat, Lon1: a.Coordinates.Lon,
			Lat2: b.Coordinates.Lat, Lon2: b.Coordinates.Lon,
		})
	}
	return out, nil
}

const maxListedDangling = 3

func danglingError(province string, dangling []dataset.Dangling) error {
	parts := make([]string, 0, maxListedDangling)
	for i, d := range dangling {
		if i == maxListedDangling {
			parts = append(parts, fmt.Sprintf("and %d more", len(dangling)-maxListedDangling))
			break
		}
		parts = append(parts, fmt.Sprintf("%s -> %s", d.City, d.Target))
	}
	return perrors.New(perrors.ErrCodeDanglingConnection,
		"province %q has %d dangling connection(s): %s", province, len(dangling), strings.Join(parts, ", "))
}
