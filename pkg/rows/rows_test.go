package rows

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/matzehuels/provmap/pkg/dataset"
	perrors "github.com/matzehuels/provmap/pkg/errors"
	"github.com/matzehuels/provmap/pkg/network"
	"github.com/matzehuels/provmap/pkg/report"
)

func mustRead(t *testing.T, input string) *dataset.Dataset {
	t.Helper()
	ds, err := dataset.ReadJSON(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ReadJSON: %v", err)
	}
	return ds
}

func TestBuildEndToEnd(t *testing.T) {
	ds := mustRead(t, `{"P": {
		"A": {"coordinates": [1, 2], "connections": ["B"]},
		"B": {"coordinates": [3, 4], "connections": ["A"]}
	}}`)

	got, err := Build(ds, "P", Options{})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	wantNodes := []NodeRow{{"A", 1, 2}, {"B", 3, 4}}
	wantEdges := []EdgeRow{{1, 2, 3, 4}, {3, 4, 1, 2}}
	if !reflect.DeepEqual(got.Nodes, wantNodes) {
		t.Errorf("Nodes = %v, want %v", got.Nodes, wantNodes)
	}
	if !reflect.DeepEqual(got.Edges, wantEdges) {
		t.Errorf("Edges = %v, want %v", got.Edges, wantEdges)
	}
}

func TestBuildNodeRowsMatchCities(t *testing.T) {
	ds := mustRead(t, `{"West Java": {
		"Bandung": {"coordinates": [-6.9175, 107.6191]},
		"Bogor": {"coordinates": [-6.5971, 106.806]},
		"Cirebon": {"coordinates": [-6.732, 108.5523]},
		"Garut": {"coordinates": [-7.2279, 107.9087]}
	}}`)
	p, _ := ds.Province("West Java")

	got, err := Build(ds, "West Java", Options{})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(got.Nodes) != p.Len() {
		t.Fatalf("len(Nodes) = %d, want %d", len(got.Nodes), p.Len())
	}
	for i, c := range p.Cities() {
		n := got.Nodes[i]
		if n.City != c.Name || n.Lat != c.Coordinates.Lat || n.Lon != c.Coordinates.Lon {
			t.Errorf("Nodes[%d] = %+v, want %s %v", i, n, c.Name, c.Coordinates)
		}
	}
	if len(got.Edges) != 0 {
		t.Errorf("Edges = %v, want none", got.Edges)
	}
}

func TestBuildAsymmetricConnections(t *testing.T) {
	ds := mustRead(t, `{"P": {
		"A": {"coordinates": [0, 0], "connections": ["B", "C", "B"]},
		"B": {"coordinates": [1, 1], "connections": []},
		"C": {"coordinates": [2, 2], "connections": ["A"]}
	}}`)

	got, err := Build(ds, "P", Options{})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(got.Edges) != 4 {
		t.Errorf("len(Edges) = %d, want 4 (one per connection entry)", len(got.Edges))
	}
	if got.Edges[3] != (EdgeRow{2, 2, 0, 0}) {
		t.Errorf("Edges[3] = %v, want C->A", got.Edges[3])
	}
}

func TestBuildUnknownProvince(t *testing.T) {
	ds := mustRead(t, `{"P": {"A": {"coordinates": [1, 2]}}}`)
	rec := report.NewRecorder()

	got, err := Build(ds, "Q", Options{Reporter: rec})
	if !perrors.Is(err, perrors.ErrCodeProvinceNotFound) || !errors.Is(err, network.ErrNotFound) {
		t.Fatalf("Build() error = %v, want PROVINCE_NOT_FOUND", err)
	}
	if len(got.Nodes) != 0 || len(got.Edges) != 0 {
		t.Errorf("Build() returned partial rows %+v", got)
	}
	if len(rec.Messages()) != 0 {
		t.Errorf("Build() should leave reporting to the caller, got %v", rec.Messages())
	}
}

func TestBuildDangling(t *testing.T) {
	input := `{"P": {
		"X": {"coordinates": [5, 6], "connections": ["Y"]},
		"Z": {"coordinates": [7, 8], "connections": ["X"]}
	}}`

	t.Run("hard fail", func(t *testing.T) {
		rec := report.NewRecorder()
		got, err := Build(mustRead(t, input), "P", Options{Policy: HardFail, Reporter: rec})
		if !perrors.Is(err, perrors.ErrCodeDanglingConnection) {
			t.Fatalf("Build() error = %v, want DANGLING_CONNECTION", err)
		}
		if !strings.Contains(err.Error(), "X -> Y") {
			t.Errorf("error should name the connection: %v", err)
		}
		if got.Nodes != nil || got.Edges != nil {
			t.Errorf("Build() returned rows %+v, want none", got)
		}
		if len(rec.Warnings()) != 0 {
			t.Errorf("warnings = %v, want none", rec.Warnings())
		}
	})

	t.Run("skip and warn", func(t *testing.T) {
		rec := report.NewRecorder()
		got, err := Build(mustRead(t, input), "P", Options{Policy: SkipAndWarn, Reporter: rec})
		if err != nil {
			t.Fatalf("Build: %v", err)
		}
		if len(got.Nodes) != 2 || got.Nodes[0] != (NodeRow{"X", 5, 6}) {
			t.Errorf("Nodes = %v, want X present", got.Nodes)
		}
		if want := []EdgeRow{{7, 8, 5, 6}}; !reflect.DeepEqual(got.Edges, want) {
			t.Errorf("Edges = %v, want %v", got.Edges, want)
		}
		if len(rec.Warnings()) != 1 {
			t.Errorf("got %d warnings, want 1", len(rec.Warnings()))
		}
		if len(rec.Errors()) != 0 {
			t.Errorf("errors = %v, want none", rec.Errors())
		}
	})
}

func TestFromGraphMatchesBuild(t *testing.T) {
	inputs := map[string]string{
		"symmetric":   `{"P": {"A": {"coordinates": [1, 2], "connections": ["B"]}, "B": {"coordinates": [3, 4], "connections": ["A"]}}}`,
		"parallel":    `{"P": {"A": {"coordinates": [0, 0], "connections": ["B", "B", "C"]}, "B": {"coordinates": [1, 1]}, "C": {"coordinates": [2, 2], "connections": ["A"]}}}`,
		"dangling":    `{"P": {"X": {"coordinates": [5, 6], "connections": ["Y", "Z"]}, "Z": {"coordinates": [7, 8], "connections": ["W"]}}}`,
		"empty":       `{"P": {}}`,
		"blankTarget": `{"P": {"A": {"coordinates": [1, 2], "connections": [""]}}}`,
		"blankCity":   `{"P": {"": {"coordinates": [3, 4], "connections": ["A"]}, "A": {"coordinates": [1, 2], "connections": [""]}}}`,
		"selfLoop":    `{"P": {"A": {"coordinates": [1, 2], "connections": ["A", "B"]}}}`,
		"duplicates":  `{"P": {"A": {"coordinates": [1, 2], "connections": ["B"]}, "A": {"coordinates": [5, 6], "connections": ["B"]}, "B": {"coordinates": [3, 4]}}}`,
		"dupProvince": `{"P": {"A": {"coordinates": [1, 2], "connections": ["Z"]}}, "P": {"B": {"coordinates": [3, 4], "connections": ["B"]}}}`,
		"quarantined": `{"P": {"A": {"coordinates": [1, 2], "connections": ["Bad"]}, "Bad": {"coordinates": [1]}}}`,
	}

	for name, input := range inputs {
		for _, policy := range []Policy{HardFail, SkipAndWarn} {
			t.Run(name+"/"+policy.String(), func(t *testing.T) {
				ds := mustRead(t, input)
				g, err := network.Build(ds, "P")
				if err != nil {
					t.Fatalf("network.Build: %v", err)
				}

				recA, recB := report.NewRecorder(), report.NewRecorder()
				want, errA := Build(ds, "P", Options{Policy: policy, Reporter: recA})
				got, errB := FromGraph(g, Options{Policy: policy, Reporter: recB})

				if perrors.GetCode(errA) != perrors.GetCode(errB) {
					t.Fatalf("error codes differ: Build=%v FromGraph=%v", errA, errB)
				}
				if !reflect.DeepEqual(got, want) {
					t.Errorf("FromGraph() = %+v, want %+v", got, want)
				}
				if len(recA.Warnings()) != len(recB.Warnings()) {
					t.Errorf("warnings differ: %d vs %d", len(recA.Warnings()), len(recB.Warnings()))
				}
			})
		}
	}
}

func TestParsePolicy(t *testing.T) {
	tests := []struct {
		in      string
		want    Policy
		wantErr bool
	}{
		{"", HardFail, false},
		{"fail", HardFail, false},
		{"Hard-Fail", HardFail, false},
		{"skip", SkipAndWarn, false},
		{" skip-and-warn ", SkipAndWarn, false},
		{"ignore", HardFail, true},
	}
	for _, tt := range tests {
		got, err := ParsePolicy(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParsePolicy(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("ParsePolicy(%q) = %v, want %v", tt.in, got, tt.want)
		}
		if err != nil && !perrors.Is(err, perrors.ErrCodeInvalidPolicy) {
			t.Errorf("ParsePolicy(%q) code = %s", tt.in, perrors.GetCode(err))
		}
	}
}
