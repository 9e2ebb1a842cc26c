package network_test

import (
	"fmt"
	"strings"

	"github.com/matzehuels/provmap/pkg/dataset"
	"github.com/matzehuels/provmap/pkg/network"
)

func ExampleBuild() {
	ds, _ := dataset.ReadJSON(strings.NewReader(`{"West Java": {
		"Bandung": {"coordinates": [-6.9175, 107.6191], "connections": ["Cimahi", "Sumedang"]},
		"Cimahi":  {"coordinates": [-6.8841, 107.5413], "connections": ["Bandung"]}
	}}`))

	g, err := network.Build(ds, "West Java")
	if err != nil {
		fmt.Println(err)
		return
	}
	fmt.Println("nodes:", g.NodeCount())
	fmt.Println("edges:", g.EdgeCount())
	fmt.Println("placeholders:", g.Placeholders())
	// Output:
	// nodes: 3
	// edges: 3
	// placeholders: [Sumedang]
}
