package server

import (
	"bytes"
	"net/http"
	"net/url"
	"slices"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/provmap/pkg/buildinfo"
	perrors "github.com/matzehuels/provmap/pkg/errors"
	"github.com/matzehuels/provmap/pkg/pipeline"
	"github.com/matzehuels/provmap/pkg/render/deck"
	"github.com/matzehuels/provmap/pkg/report"
	"github.com/matzehuels/provmap/pkg/rows"
)

// WarningHeader lists the warnings raised while rendering an API artifact,
// one header value per warning.
const WarningHeader = "X-Provmap-Warning"

// artifactRoutes maps province sub-paths to pipeline formats.
var artifactRoutes = map[string]string{
	"rows":      pipeline.FormatJSON,
	"geojson":   pipeline.FormatGeoJSON,
	"deck":      pipeline.FormatDeck,
	"nodes.csv": pipeline.FormatNodesCSV,
	"edges.csv": pipeline.FormatEdgesCSV,
	"graph.dot": pipeline.FormatDOT,
	"graph.svg": pipeline.FormatSVG,
	"graph.png": pipeline.FormatPNG,
}

// options builds render options from the configuration and the query string.
func (s *Server) options(r *http.Request, province string, rep report.Reporter) (pipeline.Options, error) {
	policy, err := s.cfg.Policy()
	if err != nil {
		return pipeline.Options{}, err
	}
	opts := pipeline.Options{
		Province:    province,
		Policy:      policy,
		View:        s.cfg.View.View,
		FitView:     s.cfg.View.Fit,
		Style:       s.cfg.Style,
		Title:       s.cfg.Title,
		MapboxToken: s.cfg.Mapbox.Token,
		Reporter:    rep,
	}

	q := r.URL.Query()
	if v := q.Get("dangling"); v != "" {
		if opts.Policy, err = rows.ParsePolicy(v); err != nil {
			return pipeline.Options{}, err
		}
	}
	if opts.FitView, err = boolParam(q, "fit", opts.FitView); err != nil {
		return pipeline.Options{}, err
	}
	if opts.Detailed, err = boolParam(q, "detailed", false); err != nil {
		return pipeline.Options{}, err
	}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return pipeline.Options{}, err
	}
	return opts, nil
}

func boolParam(q url.Values, name string, def bool) (bool, error) {
	v := q.Get(name)
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, perrors.New(perrors.ErrCodeInvalidInput, "invalid %s: %q (want true or false)", name, v)
	}
	return b, nil
}

// provinceParam returns the decoded {province} path segment.
func provinceParam(r *http.Request) string {
	raw := chi.URLParam(r, "province")
	if p, err := url.PathUnescape(raw); err == nil {
		return p
	}
	return raw
}

// =============================================================================
// Pages
// =============================================================================

// basePage returns the selector page without a map.
func (s *Server) basePage() deck.Page {
	p := deck.Page{
		Title:       s.cfg.Title,
		Provinces:   s.cfg.Provinces,
		Action:      "/map",
		MapboxToken: s.cfg.Mapbox.Token,
	}
	for _, err := range s.loadErrors {
		p.Errors = append(p.Errors, perrors.UserMessage(err))
	}
	return p
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.writePage(w, http.StatusOK, s.basePage())
}

// handleMap renders the selected province. An empty selection shows the
// selector only; a failed render shows the error instead of the map.
func (s *Server) handleMap(w http.ResponseWriter, r *http.Request) {
	page := s.basePage()
	province := r.URL.Query().Get("province")
	if province == "" {
		s.writePage(w, http.StatusOK, page)
		return
	}
	page.Province = province

	rec := report.NewRecorder()
	status := http.StatusOK
	if err := s.renderMap(r, province, rec, &page); err != nil {
		page.Errors = append(page.Errors, perrors.UserMessage(err))
		status = perrors.HTTPStatus(err)
		s.logger.Warn("map not rendered", "province", province, "code", perrors.GetCode(err), "id", requestIDFrom(r.Context()))
	}
	for _, warn := range rec.Warnings() {
		page.Warnings = append(page.Warnings, warn.String())
	}
	s.writePage(w, status, page)
}

func (s *Server) renderMap(r *http.Request, province string, rep report.Reporter, page *deck.Page) error {
	opts, err := s.options(r, province, rep)
	if err != nil {
		return err
	}
	g, rs, err := s.runner.Flatten(r.Context(), opts)
	if err != nil {
		return err
	}
	spec := pipeline.MapSpec(g, rs, opts)
	page.Spec = &spec
	return nil
}

func (s *Server) writePage(w http.ResponseWriter, status int, p deck.Page) {
	var buf bytes.Buffer
	if err := deck.WritePage(&buf, p); err != nil {
		s.logger.Error("render page", "err", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", pipeline.ContentType(pipeline.FormatHTML))
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

// =============================================================================
// API
// =============================================================================

// provinceInfo is one entry of /api/provinces.
type provinceInfo struct {
	Name        string `json:"name"`
	Cities      int    `json:"cities"`
	Connections int    `json:"connections"`
	Selectable  bool   `json:"selectable"`
}

func (s *Server) handleProvinces(w http.ResponseWriter, r *http.Request) {
	ds := s.runner.Dataset
	out := make([]provinceInfo, 0, ds.Len())
	for _, p := range ds.Provinces() {
		out = append(out, provinceInfo{
			Name:        p.Name,
			Cities:      p.Len(),
			Connections: p.ConnectionCount(),
			Selectable:  slices.Contains(s.cfg.Provinces, p.Name),
		})
	}
	writeJSON(w, http.StatusOK, out)
}

// handleArtifact serves one rendered format of the {province} segment.
func (s *Server) handleArtifact(format string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rec := report.NewRecorder()
		opts, err := s.options(r, provinceParam(r), report.Tee(rec, report.NewLogReporter(s.logger)))
		if err != nil {
			writeError(w, r, err)
			return
		}
		data, err := s.runner.RenderFormat(r.Context(), opts, format)
		if err != nil {
			writeError(w, r, err)
			return
		}
		for _, warn := range rec.Warnings() {
			w.Header().Add(WarningHeader, warn.String())
		}
		w.Header().Set("Content-Type", pipeline.ContentType(format))
		_, _ = w.Write(data)
	}
}

// health is the /healthz body.
type health struct {
	Status     string   `json:"status"`
	Version    string   `json:"version"`
	Commit     string   `json:"commit"`
	Built      string   `json:"built"`
	Provinces  int      `json:"provinces"`
	Skipped    int      `json:"skipped_entries"`
	LoadErrors []string `json:"load_errors,omitempty"`
}

// handleHealth reports "degraded" with status 503 when the dataset failed
// to load.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	h := health{
		Status:    "ok",
		Version:   buildinfo.Version,
		Commit:    buildinfo.Commit,
		Built:     buildinfo.Date,
		Provinces: s.runner.Dataset.Len(),
		Skipped:   len(s.runner.Dataset.Issues()),
	}
	status := http.StatusOK
	if len(s.loadErrors) > 0 {
		h.Status = "degraded"
		status = http.StatusServiceUnavailable
		for _, err := range s.loadErrors {
			h.LoadErrors = append(h.LoadErrors, perrors.UserMessage(err))
		}
	}
	writeJSON(w, status, h)
}
