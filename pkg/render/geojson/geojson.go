// Package geojson renders flattened province rows as a GeoJSON
// FeatureCollection: one Point feature per city and one LineString feature
// per connection. Positions are written [lon, lat] as GeoJSON requires.
package geojson

import (
	"encoding/json"
	"io"
	"math"

	"github.com/matzehuels/provmap/pkg/dataset"
	"github.com/matzehuels/provmap/pkg/geo"
	"github.com/matzehuels/provmap/pkg/rows"
)

// Feature kinds stored in the "kind" property.
const (
	KindCity       = "city"
	KindConnection = "connection"
)

// FeatureCollection is a GeoJSON feature collection.
type FeatureCollection struct {
	Type     string    `json:"type"`
	Name     string    `json:"name,omitempty"`
	Features []Feature `json:"features"`
}

// Feature is a GeoJSON feature.
type Feature struct {
	Type       string         `json:"type"`
	Geometry   Geometry       `json:"geometry"`
	Properties map[string]any `json:"properties"`
}

// Geometry is a Point ([lon, lat]) or a LineString ([[lon, lat], ...]).
type Geometry struct {
	Type        string `json:"type"`
	Coordinates any    `json:"coordinates"`
}

func position(lat, lon float64) []float64 { return []float64{lon, lat} }

// Build converts r into a feature collection named after the province.
func Build(r rows.Rows) FeatureCollection {
	fc := FeatureCollection{
		Type:     "FeatureCollection",
		Name:     r.Province,
		Features: make([]Feature, 0, len(r.Nodes)+len(r.Edges)),
	}
	for _, n := range r.Nodes {
		fc.Features = append(fc.Features, Feature{
			Type:     "Feature",
			Geometry: Geometry{Type: "Point", Coordinates: position(n.Lat, n.Lon)},
			Properties: map[string]any{
				"kind":    KindCity,
				"name":    n.City,
				"s2_cell": geo.CellToken(dataset.Coordinates{Lat: n.Lat, Lon: n.Lon}),
			},
		})
	}
	for _, e := range r.Edges {
		km := geo.Distance(dataset.Coordinates{Lat: e.Lat1, Lon: e.Lon1}, dataset.Coordinates{Lat: e.Lat2, Lon: e.Lon2})
		fc.Features = append(fc.Features, Feature{
			Type: "Feature",
			Geometry: Geometry{
				Type:        "LineString",
				Coordinates: [][]float64{position(e.Lat1, e.Lon1), position(e.Lat2, e.Lon2)},
			},
			Properties: map[string]any{
				"kind":      KindConnection,
				"length_km": math.Round(km*100) / 100,
			},
		})
	}
	return fc
}

// Write encodes the feature collection of r to w.
func Write(w io.Writer, r rows.Rows) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(Build(r))
}
