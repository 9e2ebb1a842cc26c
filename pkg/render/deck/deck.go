// Package deck renders flattened province rows as a deck.gl map.
//
// The output is a deck.gl JSON description with two layers: a scatterplot of
// cities and a line layer of connections. It can be written as raw JSON with
// [WriteJSON] or embedded in a standalone HTML page with [WritePage].
//
// Rows store positions as (lat, lon); deck.gl expects [lon, lat]. The layer
// accessors perform that swap, so row data is passed through unchanged.
package deck

import (
	"encoding/json"
	"io"

	"github.com/matzehuels/provmap/pkg/geo"
	"github.com/matzehuels/provmap/pkg/rows"
)

// Layer identifiers.
const (
	CitiesLayerID      = "cities"
	ConnectionsLayerID = "connections"
)

// DefaultMapStyle is the Mapbox base map.
const DefaultMapStyle = "mapbox://styles/mapbox/streets-v11"

// Color is an RGBA color with 0-255 channels.
type Color [4]uint8

// Style holds the visual parameters of both layers.
type Style struct {
	Radius    float64 `json:"radius" toml:"radius"`
	FillColor Color   `json:"fill_color" toml:"fill_color"`
	LineColor Color   `json:"line_color" toml:"line_color"`
	LineWidth float64 `json:"line_width" toml:"line_width"`
	MapStyle  string  `json:"map_style" toml:"map_style"`
}

// DefaultStyle returns cyan city markers of 2 km radius and 2 px red
// connection lines on the Mapbox streets style.
func DefaultStyle() Style {
	return Style{
		Radius:    2000,
		FillColor: Color{0, 255, 255, 140},
		LineColor: Color{255, 0, 0, 255},
		LineWidth: 2,
		MapStyle:  DefaultMapStyle,
	}
}

// DefaultView is the initial camera over West Java.
func DefaultView() geo.View {
	return geo.View{Lat: -6.9175, Lon: 107.6191, Zoom: 8, Pitch: 0}
}

// Spec is a deck.gl JSON description, as understood by @deck.gl/json.
type Spec struct {
	InitialViewState ViewState `json:"initialViewState"`
	Views            []View    `json:"views"`
	Layers           []Layer   `json:"layers"`
	MapStyle         string    `json:"mapStyle"`
}

// ViewState is the camera.
type ViewState struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Zoom      float64 `json:"zoom"`
	Pitch     float64 `json:"pitch"`
	Bearing   float64 `json:"bearing"`
}

// View is a deck.gl view.
type View struct {
	Type       string `json:"@@type"`
	Controller bool   `json:"controller"`
}

// Layer is one deck.gl layer. Accessor fields hold either constants or
// "@@=" expressions evaluated per datum.
type Layer struct {
	Type          string `json:"@@type"`
	ID            string `json:"id"`
	Data          any    `json:"data"`
	Pickable      bool   `json:"pickable"`
	AutoHighlight bool   `json:"autoHighlight,omitempty"`

	GetPosition    string  `json:"getPosition,omitempty"`
	GetRadius      float64 `json:"getRadius,omitempty"`
	GetFillColor   *Color  `json:"getFillColor,omitempty"`
	RadiusMinPixel float64 `json:"radiusMinPixels,omitempty"`

	GetSourcePosition string  `json:"getSourcePosition,omitempty"`
	GetTargetPosition string  `json:"getTargetPosition,omitempty"`
	GetColor          *Color  `json:"getColor,omitempty"`
	GetWidth          float64 `json:"getWidth,omitempty"`
}

// Build assembles the map description for r.
func Build(r rows.Rows, view geo.View, style Style) Spec {
	nodes := r.Nodes
	if nodes == nil {
		nodes = []rows.NodeRow{}
	}
	edges := r.Edges
	if edges == nil {
		edges = []rows.EdgeRow{}
	}
	fill, line := style.FillColor, style.LineColor

	return Spec{
		InitialViewState: ViewState{
			Latitude:  view.Lat,
			Longitude: view.Lon,
			Zoom:      view.Zoom,
			Pitch:     view.Pitch,
		},
		Views:    []View{{Type: "MapView", Controller: true}},
		MapStyle: style.MapStyle,
		Layers: []Layer{
			{
				Type:           "ScatterplotLayer",
				ID:             CitiesLayerID,
				Data:           nodes,
				Pickable:       true,
				AutoHighlight:  true,
				GetPosition:    "@@=[lon, lat]",
				GetRadius:      style.Radius,
				GetFillColor:   &fill,
				RadiusMinPixel: 2,
			},
			{
				Type:              "LineLayer",
				ID:                ConnectionsLayerID,
				Data:              edges,
				GetSourcePosition: "@@=[lon1, lat1]",
				GetTargetPosition: "@@=[lon2, lat2]",
				GetColor:          &line,
				GetWidth:          style.LineWidth,
			},
		},
	}
}

// WriteJSON writes spec as indented JSON.
func WriteJSON(w io.Writer, spec Spec) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(spec)
}
