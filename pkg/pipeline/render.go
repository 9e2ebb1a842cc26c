package pipeline

import (
	"bytes"
	"context"
	"fmt"

	"github.com/matzehuels/provmap/pkg/geo"
	pio "github.com/matzehuels/provmap/pkg/io"
	"github.com/matzehuels/provmap/pkg/network"
	"github.com/matzehuels/provmap/pkg/render/deck"
	"github.com/matzehuels/provmap/pkg/render/geojson"
	"github.com/matzehuels/provmap/pkg/render/nodelink"
	"github.com/matzehuels/provmap/pkg/rows"
)

// Render produces one format for a flattened province. g must be the graph
// r was flattened from.
func Render(ctx context.Context, g *network.Graph, r rows.Rows, format string, opts Options) ([]byte, error) {
	var buf bytes.Buffer
	var err error

	switch format {
	case FormatHTML:
		spec := MapSpec(g, r, opts)
		err = deck.WritePage(&buf, deck.Page{
			Title:       opts.Title,
			Province:    r.Province,
			Spec:        &spec,
			MapboxToken: opts.MapboxToken,
		})
	case FormatDeck:
		err = deck.WriteJSON(&buf, MapSpec(g, r, opts))
	case FormatGeoJSON:
		err = geojson.Write(&buf, r)
	case FormatJSON:
		err = pio.WriteJSON(r, &buf)
	case FormatNodesCSV:
		err = pio.WriteNodesCSV(r, &buf)
	case FormatEdgesCSV:
		err = pio.WriteEdgesCSV(r, &buf)
	case FormatDOT:
		buf.WriteString(nodelink.ToDOT(g, nodelinkOptions(opts)))
	case FormatSVG:
		return nodelink.RenderSVG(ctx, nodelink.ToDOT(g, nodelinkOptions(opts)))
	case FormatPNG:
		return nodelink.RenderPNG(ctx, nodelink.ToDOT(g, nodelinkOptions(opts)))
	default:
		return nil, ValidateFormat(format)
	}
	if err != nil {
		return nil, fmt.Errorf("render %s: %w", format, err)
	}
	return buf.Bytes(), nil
}

// MapSpec builds the deck.gl description of r with the camera from opts.
func MapSpec(g *network.Graph, r rows.Rows, opts Options) deck.Spec {
	return deck.Build(r, MapView(g, opts), opts.Style)
}

// MapView returns the initial camera for g: the configured view, or with
// FitView one centred on the province's cities.
func MapView(g *network.Graph, opts Options) geo.View {
	if !opts.FitView || g == nil {
		return opts.View
	}
	return geo.Fit(geo.Points(g), opts.View)
}

func nodelinkOptions(opts Options) nodelink.Options {
	return nodelink.Options{Detailed: opts.Detailed}
}
