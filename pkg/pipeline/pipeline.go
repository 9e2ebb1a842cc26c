// Package pipeline runs the load → flatten → render cycle shared by the CLI
// and the HTTP server.
//
// # Stages
//
//  1. Load: read the dataset once at startup ([Load]); failures are reported
//     and leave an empty dataset.
//  2. Flatten: build the province graph and its node and edge rows.
//  3. Render: produce each requested format from the rows or the graph.
//
// Rendered artifacts are cached by dataset content hash, province, policy and
// render options. Flattening is never cached: it is cheap, and running it on
// every request keeps dangling-connection warnings flowing to the reporter.
//
// # Usage
//
//	ds := pipeline.Load(ctx, dataset.FileSource{Path: "province_data.json"}, reporter, logger)
//	runner := pipeline.NewRunner(ds, cache, nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    Province: "West Java",
//	    Formats:  []string{pipeline.FormatHTML},
//	    Reporter: reporter,
//	})
//	page := result.Artifacts[pipeline.FormatHTML]
package pipeline

import (
	"fmt"
	"strings"
	"time"

	"github.com/matzehuels/provmap/pkg/cache"
	perrors "github.com/matzehuels/provmap/pkg/errors"
	"github.com/matzehuels/provmap/pkg/geo"
	"github.com/matzehuels/provmap/pkg/network"
	"github.com/matzehuels/provmap/pkg/render/deck"
	"github.com/matzehuels/provmap/pkg/report"
	"github.com/matzehuels/provmap/pkg/rows"
)

// Output formats.
const (
	FormatHTML     = "html"      // standalone deck.gl map page
	FormatDeck     = "deck"      // deck.gl JSON description
	FormatGeoJSON  = "geojson"   // GeoJSON feature collection
	FormatJSON     = "json"      // node and edge rows
	FormatNodesCSV = "nodes.csv" // node rows
	FormatEdgesCSV = "edges.csv" // edge rows
	FormatDOT      = "dot"       // Graphviz source
	FormatSVG      = "svg"       // Graphviz node-link diagram
	FormatPNG      = "png"       // Graphviz node-link diagram
)

// DefaultFormat is rendered when no format is requested.
const DefaultFormat = FormatHTML

// formatInfo describes how an artifact is served and saved.
type formatInfo struct {
	ext         string
	contentType string
}

var formats = map[string]formatInfo{
	FormatHTML:     {".html", "text/html; charset=utf-8"},
	FormatDeck:     {".deck.json", "application/json"},
	FormatGeoJSON:  {".geojson", "application/geo+json"},
	FormatJSON:     {".rows.json", "application/json"},
	FormatNodesCSV: {".nodes.csv", "text/csv; charset=utf-8"},
	FormatEdgesCSV: {".edges.csv", "text/csv; charset=utf-8"},
	FormatDOT:      {".dot", "text/vnd.graphviz"},
	FormatSVG:      {".svg", "image/svg+xml"},
	FormatPNG:      {".png", "image/png"},
}

// Formats lists the supported formats in display order.
var Formats = []string{
	FormatHTML, FormatDeck, FormatGeoJSON, FormatJSON,
	FormatNodesCSV, FormatEdgesCSV, FormatDOT, FormatSVG, FormatPNG,
}

// ValidateFormat checks that format is supported.
func ValidateFormat(format string) error {
	if _, ok := formats[format]; !ok {
		return perrors.New(perrors.ErrCodeInvalidInput, "invalid format: %q (must be one of: %s)", format, strings.Join(Formats, ", "))
	}
	return nil
}

// Extension returns the file suffix for format, including the dot.
func Extension(format string) string { return formats[format].ext }

// ContentType returns the MIME type for format.
func ContentType(format string) string { return formats[format].contentType }

// ParseFormats splits a comma-separated list. An empty list means [DefaultFormat].
func ParseFormats(s string) []string {
	var out []string
	for _, f := range strings.Split(s, ",") {
		if f = strings.TrimSpace(strings.ToLower(f)); f != "" {
			out = append(out, f)
		}
	}
	if len(out) == 0 {
		return []string{DefaultFormat}
	}
	return out
}

// Options configures one render.
type Options struct {
	Province string   `json:"province"`
	Formats  []string `json:"formats,omitempty"`

	// Policy decides what happens to dangling connections.
	Policy rows.Policy `json:"policy"`

	// Map options. With FitView the camera is centred on the province and
	// View only contributes its pitch and fallback zoom.
	View        geo.View   `json:"view"`
	FitView     bool       `json:"fit_view,omitempty"`
	Style       deck.Style `json:"style"`
	Title       string     `json:"title,omitempty"`
	MapboxToken string     `json:"-"`

	// Detailed adds coordinates, degrees and lengths to node-link diagrams.
	Detailed bool `json:"detailed,omitempty"`

	// Refresh bypasses cached artifacts and overwrites them.
	Refresh bool `json:"-"`

	// Reporter receives warnings raised while flattening.
	Reporter report.Reporter `json:"-"`

	validated bool
}

// ValidateAndSetDefaults checks the options and fills in defaults. It is
// idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if o.Province == "" {
		return perrors.New(perrors.ErrCodeInvalidInput, "province is required")
	}
	if len(o.Formats) == 0 {
		o.Formats = []string{DefaultFormat}
	}
	for _, f := range o.Formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	if o.View == (geo.View{}) {
		o.View = deck.DefaultView()
	}
	if o.Style == (deck.Style{}) {
		o.Style = deck.DefaultStyle()
	}
	if o.Title == "" {
		o.Title = deck.DefaultTitle
	}
	if o.Reporter == nil {
		o.Reporter = report.Discard
	}
	o.validated = true
	return nil
}

// renderOptions is the subset of Options that changes rendered bytes.
type renderOptions struct {
	View     geo.View   `json:"view"`
	FitView  bool       `json:"fit_view"`
	Style    deck.Style `json:"style"`
	Title    string     `json:"title"`
	Token    string     `json:"token"`
	Detailed bool       `json:"detailed"`
}

// ArtifactKeyOpts returns the cache key options for one format.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	return cache.ArtifactKeyOpts{
		Province: o.Province,
		Format:   format,
		Policy:   o.Policy.String(),
		Render: cache.HashValue(renderOptions{
			View:     o.View,
			FitView:  o.FitView,
			Style:    o.Style,
			Title:    o.Title,
			Token:    cache.Hash([]byte(o.MapboxToken)),
			Detailed: o.Detailed,
		}),
	}
}

// Result holds the outputs of one render.
type Result struct {
	Province  string
	Graph     *network.Graph
	Rows      rows.Rows
	Artifacts map[string][]byte
	Stats     Stats

	// CacheHit is true when every artifact came from the cache.
	CacheHit bool
}

// Stats describes the rendered province and the time spent.
type Stats struct {
	Nodes        int
	Edges        int
	Placeholders int
	LengthKm     float64
	FlattenTime  time.Duration
	RenderTime   time.Duration
}

// String formats the stats for log lines.
func (s Stats) String() string {
	return fmt.Sprintf("%d nodes, %d edges, %.1f km", s.Nodes, s.Edges, s.LengthKm)
}
