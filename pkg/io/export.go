package io

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/matzehuels/provmap/pkg/rows"
)

var (
	nodesHeader = []string{"city", "lat", "lon"}
	edgesHeader = []string{"lat1", "lon1", "lat2", "lon2"}
)

// WriteJSON encodes r as indented JSON. Empty tables are written as [].
func WriteJSON(r rows.Rows, w io.Writer) error {
	if r.Nodes == nil {
		r.Nodes = []rows.NodeRow{}
	}
	if r.Edges == nil {
		r.Edges = []rows.EdgeRow{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("encode rows: %w", err)
	}
	return nil
}

// WriteNodesCSV writes the node table.
func WriteNodesCSV(r rows.Rows, w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(nodesHeader); err != nil {
		return err
	}
	for _, n := range r.Nodes {
		if err := cw.Write([]string{n.City, ftoa(n.Lat), ftoa(n.Lon)}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteEdgesCSV writes the edge table.
func WriteEdgesCSV(r rows.Rows, w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(edgesHeader); err != nil {
		return err
	}
	for _, e := range r.Edges {
		if err := cw.Write([]string{ftoa(e.Lat1), ftoa(e.Lon1), ftoa(e.Lat2), ftoa(e.Lon2)}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func ftoa(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
