// Package pkg holds the provmap libraries.
//
// provmap reads a dataset of provinces, their cities and the connections
// between them, and turns one province into map-ready tables and artifacts.
//
// # Layout
//
//   - [dataset]: loading and validating the provinces/cities dataset
//   - [network]: the per-province city graph
//   - [rows]: flattening a province into node and edge rows
//   - [geo]: great-circle lengths, bounds and camera fitting
//   - [render]: deck.gl, GeoJSON and Graphviz output
//   - [pipeline]: load, flatten and render with caching
//   - [cache], [config], [errors], [report], [observability], [retry], [buildinfo]: supporting infrastructure
//
// # Data flow
//
//	province_data.json, MongoDB or SQL
//	         ↓
//	    [dataset] (decode, quarantine bad cities)
//	         ↓
//	    [network] (cities and connections of one province)
//	         ↓
//	    [rows] (node rows, edge rows, dangling policy)
//	         ↓
//	    [render] (HTML map, deck.gl JSON, GeoJSON, CSV, DOT/SVG/PNG)
//
// # Quick start
//
//	ds, err := dataset.Load("province_data.json")
//	if err != nil {
//	    return err
//	}
//	r := pipeline.NewRunner(ds, cache.NewNullCache(), nil, nil)
//	res, err := r.Execute(ctx, pipeline.Options{Province: "West Java"})
//	if err != nil {
//	    return err
//	}
//	os.WriteFile("map.html", res.Artifacts[pipeline.FormatHTML], 0o644)
//
// [dataset]: github.com/matzehuels/provmap/pkg/dataset
// [network]: github.com/matzehuels/provmap/pkg/network
// [rows]: github.com/matzehuels/provmap/pkg/rows
// [geo]: github.com/matzehuels/provmap/pkg/geo
// [render]: github.com/matzehuels/provmap/pkg/render
// [pipeline]: github.com/matzehuels/provmap/pkg/pipeline
// [cache]: github.com/matzehuels/provmap/pkg/cache
// [config]: github.com/matzehuels/provmap/pkg/config
// [errors]: github.com/matzehuels/provmap/pkg/errors
// [report]: github.com/matzehuels/provmap/pkg/report
// [observability]: github.com/matzehuels/provmap/pkg/observability
// [retry]: github.com/matzehuels/provmap/pkg/retry
// [buildinfo]: github.com/matzehuels/provmap/pkg/buildinfo
package pkg
