// Package render groups the province renderers.
//
//   - [deck]: deck.gl JSON spec and the standalone HTML map page
//   - [geojson]: a GeoJSON FeatureCollection of cities and connections
//   - [nodelink]: a Graphviz node-link diagram as DOT, SVG or PNG
//
// Renderers take flattened [rows.Rows] or a [network.Graph] and never read
// the dataset themselves.
//
// [deck]: github.com/matzehuels/provmap/pkg/render/deck
// [geojson]: github.com/matzehuels/provmap/pkg/render/geojson
// [nodelink]: github.com/matzehuels/provmap/pkg/render/nodelink
// [rows.Rows]: github.com/matzehuels/provmap/pkg/rows.Rows
// [network.Graph]: github.com/matzehuels/provmap/pkg/network.Graph
package render
