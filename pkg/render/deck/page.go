package deck

import (
	"html/template"
	"io"
)

// DefaultTitle is the page heading.
const DefaultTitle = "Peta Koneksi Kota di Provinsi Jawa Barat"

// Page is the data of the HTML map page.
type Page struct {
	Title string

	// Province is the current selection. Empty means nothing is selected and
	// no map is drawn.
	Province string

	// Provinces lists the selector entries. The selector is only shown when
	// Action is set.
	Provinces []string
	Action    string

	// Spec is the map to draw; nil draws no map.
	Spec *Spec

	MapboxToken string
	Errors      []string
	Warnings    []string
}

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<meta name="viewport" content="width=device-width, initial-scale=1">
<script src="https://unpkg.com/deck.gl@8.9.36/dist.min.js"></script>
<script src="https://unpkg.com/@deck.gl/json@8.9.36/dist.min.js"></script>
<script src="https://api.tiles.mapbox.com/mapbox-gl-js/v1.13.0/mapbox-gl.js"></script>
<link href="https://api.tiles.mapbox.com/mapbox-gl-js/v1.13.0/mapbox-gl.css" rel="stylesheet">
<style>
  body { margin: 0; font-family: system-ui, sans-serif; }
  header { padding: 12px 16px; background: #fafafa; border-bottom: 1px solid #ddd; }
  h1 { font-size: 20px; margin: 0 0 8px; }
  .msg { margin: 4px 0; padding: 6px 10px; border-radius: 4px; }
  .error { background: #fde8e8; color: #9b1c1c; }
  .warning { background: #fdf6b2; color: #723b13; }
  #map { position: relative; height: calc(100vh - 120px); }
</style>
</head>
<body>
<header>
  <h1>{{.Title}}</h1>
  {{- if .Action}}
  <form method="get" action="{{.Action}}">
    <label for="province">Province</label>
    <select id="province" name="province" onchange="this.form.submit()">
      <option value=""{{if not .Province}} selected{{end}}>Select a province</option>
      {{- range .Provinces}}
      <option value="{{.}}"{{if eq . $.Province}} selected{{end}}>{{.}}</option>
      {{- end}}
    </select>
    <noscript><button type="submit">Show</button></noscript>
  </form>
  {{- end}}
  {{- range .Errors}}
  <div class="msg error">{{.}}</div>
  {{- end}}
  {{- range .Warnings}}
  <div class="msg warning">{{.}}</div>
  {{- end}}
</header>
{{- if .Spec}}
<div id="map"></div>
<script>
  mapboxgl.accessToken = {{.MapboxToken}};
  const spec = {{.Spec}};
  const converter = new deck.JSONConverter({
    configuration: new deck.JSONConfiguration({classes: deck})
  });
  const props = converter.convert(spec);
  new deck.DeckGL({
    container: "map",
    map: mapboxgl,
    mapStyle: props.mapStyle,
    initialViewState: props.initialViewState,
    controller: true,
    layers: props.layers,
    getTooltip: ({object}) => object && object.city
  });
</script>
{{- end}}
</body>
</html>
`))

// WritePage renders p as a standalone HTML document.
func WritePage(w io.Writer, p Page) error {
	if p.Title == "" {
		p.Title = DefaultTitle
	}
	return pageTemplate.Execute(w, p)
}
