package nodelink

import (
	"strings"
	"testing"

	"github.com/matzehuels/provmap/pkg/dataset"
	"github.com/matzehuels/provmap/pkg/network"
)

func sampleGraph() *network.Graph {
	g := network.New("West Java")
	_ = g.AddNode(network.Node{Name: "Bandung", Coordinates: dataset.Coordinates{Lat: -6.9175, Lon: 107.6191}})
	_ = g.AddNode(network.Node{Name: "Cimahi", Coordinates: dataset.Coordinates{Lat: -6.8841, Lon: 107.5413}})
	_ = g.AddEdge("Bandung", "Cimahi")
	return g
}

func TestToDOT_Basic(t *testing.T) {
	dot := ToDOT(sampleGraph(), Options{})

	if !strings.HasPrefix(dot, "graph G {") {
		t.Error("ToDOT() output missing undirected graph declaration")
	}
	if !strings.Contains(dot, `label="West Java"`) {
		t.Error("ToDOT() output missing province label")
	}
	if !strings.Contains(dot, `"Bandung" [label="Bandung"`) {
		t.Error("ToDOT() output missing node Bandung")
	}
	if !strings.Contains(dot, `"Bandung" -- "Cimahi";`) {
		t.Error("ToDOT() output missing edge")
	}
	if strings.Contains(dot, "->") {
		t.Error("ToDOT() should not emit directed edges")
	}
}

func TestToDOT_Positions(t *testing.T) {
	dot := ToDOT(sampleGraph(), Options{Scale: 1})
	if !strings.Contains(dot, `pos="107.6191,-6.9175!"`) {
		t.Errorf("ToDOT() should pin Bandung at lon,lat:\n%s", dot)
	}

	dot = ToDOT(sampleGraph(), Options{})
	if !strings.Contains(dot, `pos="430.4764,-27.6700!"`) {
		t.Errorf("ToDOT() should apply DefaultScale:\n%s", dot)
	}
}

func TestToDOT_Detailed(t *testing.T) {
	dot := ToDOT(sampleGraph(), Options{Detailed: true})

	if !strings.Contains(dot, "degree: 1") {
		t.Error("ToDOT() detailed output missing degree")
	}
	if !strings.Contains(dot, "-6.9175, 107.6191") {
		t.Error("ToDOT() detailed output missing coordinates")
	}
	if !strings.Contains(dot, " km") {
		t.Error("ToDOT() detailed output missing edge length")
	}
}

func TestToDOT_Placeholder(t *testing.T) {
	g := sampleGraph()
	_ = g.AddEdge("Bandung", "Nowhere")

	dot := ToDOT(g, Options{Detailed: true})
	if !strings.Contains(dot, `"Nowhere" [label="Nowhere", style="filled,dashed"`) {
		t.Errorf("placeholder should be dashed without position:\n%s", dot)
	}
	if !strings.Contains(dot, `"Bandung" -- "Nowhere";`) {
		t.Error("edge to placeholder should be unlabeled")
	}
}

func TestNormalizeViewBox(t *testing.T) {
	in := []byte(`<svg width="100pt" height="50pt" viewBox="0.00 0.00 100.00 50.00" xmlns="http://www.w3.org/2000/svg"><g/></svg>`)
	out := string(normalizeViewBox(in))
	if !strings.Contains(out, `viewBox="0 0 100.00 50.00" width="100" height="50"`) {
		t.Errorf("normalizeViewBox() = %s", out)
	}

	plain := []byte("<svg><g/></svg>")
	if string(normalizeViewBox(plain)) != string(plain) {
		t.Error("normalizeViewBox() should leave SVG without viewBox untouched")
	}
}
