package nodelink_test

import (
	"fmt"
	"strings"

	"github.com/matzehuels/provmap/pkg/dataset"
	"github.com/matzehuels/provmap/pkg/network"
	"github.com/matzehuels/provmap/pkg/render/nodelink"
)

func ExampleToDOT() {
	ds, _ := dataset.ReadJSON(strings.NewReader(`{"P": {
		"A": {"coordinates": [1, 2], "connections": ["B"]},
		"B": {"coordinates": [3, 4]}
	}}`))
	g, _ := network.Build(ds, "P")

	dot := nodelink.ToDOT(g, nodelink.Options{Scale: 1})
	for _, line := range strings.Split(dot, "\n") {
		if strings.Contains(line, "--") || strings.Contains(line, "pos=") {
			fmt.Println(strings.TrimSpace(line))
		}
	}
	// Output:
	// "A" [label="A", pos="2.0000,1.0000!"];
	// "B" [label="B", pos="4.0000,3.0000!"];
	// "A" -- "B";
}
