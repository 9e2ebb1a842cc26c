// Package geo provides the geometry used to describe and frame a province:
// great-circle edge lengths, bounding boxes and a camera that fits them.
//
// All computations go through S2 so that distances are measured on the
// sphere rather than in raw degrees.
package geo

import (
	"math"

	"github.com/TomiHiltunen/geohash-golang"
	"github.com/golang/geo/s2"

	"github.com/matzehuels/provmap/pkg/dataset"
	"github.com/matzehuels/provmap/pkg/network"
)

// EarthRadiusKm is the mean Earth radius.
const EarthRadiusKm = 6371.0088

// CellLevel is the S2 level used for city cell tokens (roughly 10 km cells).
const CellLevel = 10

// GeohashPrecision is the geohash length used for city labels (about 1 km).
const GeohashPrecision = 6

// Zoom limits for [Fit].
const (
	MinZoom = 1.0
	MaxZoom = 16.0
)

func latLng(c dataset.Coordinates) s2.LatLng {
	return s2.LatLngFromDegrees(c.Lat, c.Lon)
}

// Distance returns the great-circle distance between a and b in kilometres.
func Distance(a, b dataset.Coordinates) float64 {
	return latLng(a).Distance(latLng(b)).Radians() * EarthRadiusKm
}

// CellToken returns the S2 cell token containing c at [CellLevel].
func CellToken(c dataset.Coordinates) string {
	return s2.CellIDFromLatLng(latLng(c)).Parent(CellLevel).ToToken()
}

// Geohash returns the geohash of c at [GeohashPrecision].
func Geohash(c dataset.Coordinates) string {
	return geohash.EncodeWithPrecision(c.Lat, c.Lon, GeohashPrecision)
}

// Length returns the total great-circle length of the edges of g in
// kilometres. Edges touching a placeholder node have no length.
func Length(g *network.Graph) float64 {
	total := 0.0
	for _, e := range g.Edges() {
		a, okA := g.Node(e.A)
		b, okB := g.Node(e.B)
		if !okA || !okB || a.Placeholder || b.Placeholder {
			continue
		}
		total += Distance(a.Coordinates, b.Coordinates)
	}
	return total
}

// Bounds is a latitude/longitude box in degrees.
type Bounds struct {
	MinLat float64 `json:"min_lat"`
	MinLon float64 `json:"min_lon"`
	MaxLat float64 `json:"max_lat"`
	MaxLon float64 `json:"max_lon"`

	rect s2.Rect
}

// BoundsOf returns the smallest box containing every point. It reports false
// when points is empty.
func BoundsOf(points []dataset.Coordinates) (Bounds, bool) {
	if len(points) == 0 {
		return Bounds{}, false
	}
	rect := s2.EmptyRect()
	for _, p := range points {
		rect = rect.AddPoint(latLng(p))
	}
	lo, hi := rect.Lo(), rect.Hi()
	return Bounds{
		MinLat: lo.Lat.Degrees(),
		MinLon: lo.Lng.Degrees(),
		MaxLat: hi.Lat.Degrees(),
		MaxLon: hi.Lng.Degrees(),
		rect:   rect,
	}, true
}

// Center returns the centre of the box.
func (b Bounds) Center() dataset.Coordinates {
	c := b.rect.Center()
	return dataset.Coordinates{Lat: c.Lat.Degrees(), Lon: c.Lng.Degrees()}
}

// Span returns the height and width of the box in degrees.
func (b Bounds) Span() (lat, lon float64) {
	s := b.rect.Size()
	return s.Lat.Degrees(), s.Lng.Degrees()
}

// View is a map camera.
type View struct {
	Lat   float64 `json:"latitude" toml:"lat"`
	Lon   float64 `json:"longitude" toml:"lon"`
	Zoom  float64 `json:"zoom" toml:"zoom"`
	Pitch float64 `json:"pitch" toml:"pitch"`
}

// Fit returns a view centred on points whose zoom shows all of them with some
// margin. Pitch is copied from base. With no points, base is returned
// unchanged; with a single point the view centres on it at base's zoom.
func Fit(points []dataset.Coordinates, base View) View {
	b, ok := BoundsOf(points)
	if !ok {
		return base
	}
	c := b.Center()
	v := View{Lat: c.Lat, Lon: c.Lon, Zoom: base.Zoom, Pitch: base.Pitch}

	latSpan, lonSpan := b.Span()
	if latSpan == 0 && lonSpan == 0 {
		return v
	}
	// Web Mercator shows 360 degrees of longitude at zoom 0; leave a 20% margin.
	zoomLon := math.Log2(360 / (lonSpan * 1.2))
	zoomLat := math.Log2(170 / (latSpan * 1.2))
	v.Zoom = math.Min(zoomLon, zoomLat)
	v.Zoom = math.Max(MinZoom, math.Min(MaxZoom, v.Zoom))
	v.Zoom = math.Floor(v.Zoom*10) / 10
	return v
}

// Points returns the coordinates of the non-placeholder nodes of g.
func Points(g *network.Graph) []dataset.Coordinates {
	out := make([]dataset.Coordinates, 0, g.NodeCount())
	for _, n := range g.Nodes() {
		if !n.Placeholder {
			out = append(out, n.Coordinates)
		}
	}
	return out
}
