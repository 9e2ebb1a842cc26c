package network

import (
	"errors"
	"strings"
	"testing"

	"github.com/matzehuels/provmap/pkg/dataset"
	perrors "github.com/matzehuels/provmap/pkg/errors"
)

func mustRead(t *testing.T, input string) *dataset.Dataset {
	t.Helper()
	ds, err := dataset.ReadJSON(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ReadJSON: %v", err)
	}
	return ds
}

func TestBuild(t *testing.T) {
	ds := mustRead(t, `{"P": {
		"A": {"coordinates": [1, 2], "connections": ["B"]},
		"B": {"coordinates": [3, 4], "connections": ["A"]}
	}}`)

	g, err := Build(ds, "P")
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if g.Province != "P" {
		t.Errorf("Province = %q, want P", g.Province)
	}
	if g.NodeCount() != 2 {
		t.Errorf("NodeCount() = %d, want 2", g.NodeCount())
	}
	// A->B and B->A are kept as two parallel edges.
	if g.EdgeCount() != 2 {
		t.Errorf("EdgeCount() = %d, want 2", g.EdgeCount())
	}
	if d := g.Degree("A"); d != 2 {
		t.Errorf("Degree(A) = %d, want 2", d)
	}
	b, ok := g.Node("B")
	if !ok {
		t.Fatal("node B missing")
	}
	if b.Coordinates != (dataset.Coordinates{Lat: 3, Lon: 4}) || b.Placeholder {
		t.Errorf("node B = %+v", b)
	}
}

func TestBuildNodeOrder(t *testing.T) {
	ds := mustRead(t, `{"P": {"C": {"coordinates": [0, 0]}, "A": {"coordinates": [0, 1]}, "B": {"coordinates": [0, 2]}}}`)
	g, err := Build(ds, "P")
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	var names []string
	for _, n := range g.Nodes() {
		names = append(names, n.Name)
	}
	if got := strings.Join(names, ","); got != "C,A,B" {
		t.Errorf("node order = %s, want C,A,B", got)
	}
	if g.EdgeCount() != 0 {
		t.Errorf("EdgeCount() = %d, want 0", g.EdgeCount())
	}
}

func TestBuildDanglingCreatesPlaceholder(t *testing.T) {
	ds := mustRead(t, `{"P": {"X": {"coordinates": [0, 0], "connections": ["Y"]}}}`)
	g, err := Build(ds, "P")
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if g.NodeCount() != 2 || g.EdgeCount() != 1 {
		t.Fatalf("got %d nodes %d edges, want 2 and 1", g.NodeCount(), g.EdgeCount())
	}
	y, ok := g.Node("Y")
	if !ok || !y.Placeholder {
		t.Errorf("Y = %+v, want placeholder node", y)
	}
	if got := g.Placeholders(); len(got) != 1 || got[0] != "Y" {
		t.Errorf("Placeholders() = %v, want [Y]", got)
	}
}

func TestBuildUnknownProvince(t *testing.T) {
	ds := mustRead(t, `{"P": {}}`)

	tests := []struct {
		name     string
		ds       *dataset.Dataset
		province string
	}{
		{"missing province", ds, "Q"},
		{"empty dataset", dataset.Empty(), "P"},
		{"nil dataset", nil, "P"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := Build(tt.ds, tt.province)
			if g != nil {
				t.Errorf("Build() graph = %v, want nil", g)
			}
			if !errors.Is(err, ErrNotFound) {
				t.Errorf("errors.Is(err, ErrNotFound) = false for %v", err)
			}
			if !perrors.Is(err, perrors.ErrCodeProvinceNotFound) {
				t.Errorf("code = %s, want PROVINCE_NOT_FOUND", perrors.GetCode(err))
			}
		})
	}
}

func TestBuildEmptyProvince(t *testing.T) {
	g, err := Build(mustRead(t, `{"P": {}}`), "P")
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if g.NodeCount() != 0 || g.EdgeCount() != 0 {
		t.Errorf("empty province produced %d nodes %d edges", g.NodeCount(), g.EdgeCount())
	}
}

func TestGraphNeighborsAndSelfLoop(t *testing.T) {
	g := New("P")
	_ = g.AddNode(Node{Name: "A"})
	_ = g.AddNode(Node{Name: "B"})
	_ = g.AddEdge("A", "B")
	_ = g.AddEdge("B", "A")
	_ = g.AddEdge("A", "A")

	if got := strings.Join(g.Neighbors("A"), ","); got != "B,B,A" {
		t.Errorf("Neighbors(A) = %s, want B,B,A", got)
	}
	if d := g.Degree("A"); d != 4 {
		t.Errorf("Degree(A) = %d, want 4", d)
	}
	if d := g.Degree("missing"); d != 0 {
		t.Errorf("Degree(missing) = %d, want 0", d)
	}
}

func TestAddNode(t *testing.T) {
	g := New("P")
	if err := g.AddNode(Node{}); !errors.Is(err, ErrInvalidNodeName) {
		t.Errorf("AddNode(empty) = %v, want ErrInvalidNodeName", err)
	}

	if err := g.AddNode(Node{Placeholder: true}); err != nil {
		t.Errorf("AddNode(empty placeholder) = %v, want nil", err)
	}

	_ = g.AddEdge("A", "B")
	a, _ := g.Node("A")
	if !a.Placeholder {
		t.Fatal("A should start as placeholder")
	}
	_ = g.AddNode(Node{Name: "A", Coordinates: dataset.Coordinates{Lat: 1, Lon: 2}})
	a, _ = g.Node("A")
	if a.Placeholder || a.Coordinates.Lat != 1 {
		t.Errorf("A = %+v, want real city replacing placeholder", a)
	}
	if g.NodeCount() != 3 {
		t.Errorf("NodeCount() = %d, want 3", g.NodeCount())
	}
}

func TestBuildEmptyConnectionTarget(t *testing.T) {
	ds := mustRead(t, `{"P": {"A": {"coordinates": [1, 2], "connections": ["", "A"]}}}`)
	g, err := Build(ds, "P")
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if got := g.Placeholders(); len(got) != 1 || got[0] != "" {
		t.Errorf("Placeholders() = %q, want one empty-named placeholder", got)
	}
	if g.EdgeCount() != 2 {
		t.Errorf("EdgeCount() = %d, want 2", g.EdgeCount())
	}
}
