package geo

import (
	"math"
	"strings"
	"testing"

	"github.com/matzehuels/provmap/pkg/dataset"
	"github.com/matzehuels/provmap/pkg/network"
)

var (
	bandung = dataset.Coordinates{Lat: -6.9175, Lon: 107.6191}
	cimahi  = dataset.Coordinates{Lat: -6.8841, Lon: 107.5413}
	bogor   = dataset.Coordinates{Lat: -6.5971, Lon: 106.8060}
	cirebon = dataset.Coordinates{Lat: -6.7320, Lon: 108.5523}
)

func approx(a, b, tol float64) bool { return math.Abs(a-b) <= tol }

func TestDistance(t *testing.T) {
	tests := []struct {
		name string
		a, b dataset.Coordinates
		want float64
		tol  float64
	}{
		{"same point", bandung, bandung, 0, 1e-9},
		{"bandung-cimahi", bandung, cimahi, 9.4, 0.5},
		{"bandung-bogor", bandung, bogor, 96.5, 2},
		{"one degree on equator", dataset.Coordinates{}, dataset.Coordinates{Lon: 1}, 111.2, 0.1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Distance(tt.a, tt.b); !approx(got, tt.want, tt.tol) {
				t.Errorf("Distance() = %.3f, want %.1f±%.1f", got, tt.want, tt.tol)
			}
			if Distance(tt.a, tt.b) != Distance(tt.b, tt.a) {
				t.Error("Distance() should be symmetric")
			}
		})
	}
}

func TestBoundsOf(t *testing.T) {
	if _, ok := BoundsOf(nil); ok {
		t.Error("BoundsOf(nil) should report false")
	}

	b, ok := BoundsOf([]dataset.Coordinates{bandung, bogor, cirebon})
	if !ok {
		t.Fatal("BoundsOf() reported false")
	}
	if !approx(b.MinLat, -6.9175, 1e-9) || !approx(b.MaxLat, -6.5971, 1e-9) {
		t.Errorf("lat range = [%v, %v]", b.MinLat, b.MaxLat)
	}
	if !approx(b.MinLon, 106.806, 1e-9) || !approx(b.MaxLon, 108.5523, 1e-9) {
		t.Errorf("lon range = [%v, %v]", b.MinLon, b.MaxLon)
	}
	c := b.Center()
	if !approx(c.Lon, (106.806+108.5523)/2, 1e-6) {
		t.Errorf("Center().Lon = %v", c.Lon)
	}
}

func TestFit(t *testing.T) {
	base := View{Lat: -6.9175, Lon: 107.6191, Zoom: 8, Pitch: 30}

	if got := Fit(nil, base); got != base {
		t.Errorf("Fit(nil) = %+v, want base", got)
	}

	single := Fit([]dataset.Coordinates{bogor}, base)
	if single.Zoom != 8 || !approx(single.Lat, bogor.Lat, 1e-9) {
		t.Errorf("Fit(single) = %+v", single)
	}

	wide := Fit([]dataset.Coordinates{bandung, bogor, cirebon}, base)
	if wide.Zoom < 6 || wide.Zoom > 9 {
		t.Errorf("Fit(province).Zoom = %v, want a province-level zoom", wide.Zoom)
	}
	if wide.Pitch != 30 {
		t.Errorf("Pitch = %v, want 30", wide.Pitch)
	}

	near := Fit([]dataset.Coordinates{bandung, cimahi}, base)
	if near.Zoom <= wide.Zoom {
		t.Errorf("closer cities should zoom in further: %v <= %v", near.Zoom, wide.Zoom)
	}
	if near.Zoom > MaxZoom {
		t.Errorf("Zoom %v exceeds MaxZoom", near.Zoom)
	}
}

func TestLength(t *testing.T) {
	ds, err := dataset.ReadJSON(strings.NewReader(`{"P": {
		"Bandung": {"coordinates": [-6.9175, 107.6191], "connections": ["Cimahi", "Nowhere"]},
		"Cimahi": {"coordinates": [-6.8841, 107.5413], "connections": ["Bandung"]}
	}}`))
	if err != nil {
		t.Fatal(err)
	}
	g, err := network.Build(ds, "P")
	if err != nil {
		t.Fatal(err)
	}

	want := 2 * Distance(bandung, cimahi)
	if got := Length(g); !approx(got, want, 1e-9) {
		t.Errorf("Length() = %v, want %v", got, want)
	}
	if got := len(Points(g)); got != 2 {
		t.Errorf("len(Points()) = %d, want 2", got)
	}
}

func TestCellToken(t *testing.T) {
	a := CellToken(bandung)
	if a == "" {
		t.Fatal("CellToken() is empty")
	}
	if a != CellToken(bandung) {
		t.Error("CellToken() should be deterministic")
	}
	if a == CellToken(bogor) {
		t.Errorf("Bandung and Bogor share cell %s", a)
	}
}

func TestGeohash(t *testing.T) {
	tests := []struct {
		name string
		c    dataset.Coordinates
		want string
	}{
		{"Bandung", bandung, "qqu88u"},
		{"Cimahi", cimahi, "qqu2z4"},
	}
	for _, tt := range tests {
		if got := Geohash(tt.c); got != tt.want {
			t.Errorf("Geohash(%s) = %q, want %q", tt.name, got, tt.want)
		}
	}
}
