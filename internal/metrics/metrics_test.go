package metrics

import (
	"context"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	perrors "github.com/matzehuels/provmap/pkg/errors"
	"github.com/matzehuels/provmap/pkg/observability"
)

// counterValue sums the samples of a registered metric family whose labels
// include want.
func counterValue(t *testing.T, name string, want map[string]string) float64 {
	t.Helper()
	families, err := prometheus.DefaultGatherer.Gather()
	if err != nil {
		t.Fatalf("Gather: %v", err)
	}
	total := 0.0
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
	samples:
		for _, m := range mf.GetMetric() {
			labels := map[string]string{}
			for _, lp := range m.GetLabel() {
				labels[lp.GetName()] = lp.GetValue()
			}
			for k, v := range want {
				if labels[k] != v {
					continue samples
				}
			}
			total += m.GetCounter().GetValue()
		}
	}
	return total
}

func TestCode(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, "ok"},
		{perrors.New(perrors.ErrCodeDanglingConnection, "x"), "DANGLING_CONNECTION"},
		{errors.New("plain"), "UNKNOWN"},
	}
	for _, tt := range tests {
		if got := code(tt.err); got != tt.want {
			t.Errorf("code(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}

func TestPipelineHooks(t *testing.T) {
	ctx := context.Background()
	h := PipelineHooks{}

	before := counterValue(t, "provmap_flatten_total", map[string]string{"code": "PROVINCE_NOT_FOUND"})
	h.OnFlattenComplete(ctx, "Q", 0, 0, time.Millisecond, perrors.New(perrors.ErrCodeProvinceNotFound, "q"))
	after := counterValue(t, "provmap_flatten_total", map[string]string{"code": "PROVINCE_NOT_FOUND"})
	if after-before != 1 {
		t.Errorf("flatten failures grew by %v, want 1", after-before)
	}

	beforeNodes := counterValue(t, "provmap_rows_total", map[string]string{"table": "nodes"})
	h.OnFlattenComplete(ctx, "P", 12, 30, time.Millisecond, nil)
	if got := counterValue(t, "provmap_rows_total", map[string]string{"table": "nodes"}) - beforeNodes; got != 12 {
		t.Errorf("node rows grew by %v, want 12", got)
	}

	h.OnLoadComplete(ctx, "file", 3, 1, time.Millisecond, nil)
	if got := counterValue(t, "provmap_dataset_loads_total", map[string]string{"source": "file", "code": "ok"}); got < 1 {
		t.Errorf("dataset loads = %v, want at least 1", got)
	}
}

func TestCacheAndServerHooks(t *testing.T) {
	ctx := context.Background()

	hits := counterValue(t, "provmap_cache_events_total", map[string]string{"key_type": "artifact", "event": "hit"})
	CacheHooks{}.OnCacheHit(ctx, "artifact")
	if got := counterValue(t, "provmap_cache_events_total", map[string]string{"key_type": "artifact", "event": "hit"}); got-hits != 1 {
		t.Errorf("cache hits grew by %v, want 1", got-hits)
	}

	reqs := counterValue(t, "provmap_http_requests_total", map[string]string{"route": "/map", "status": "200"})
	ServerHooks{}.OnRequest(ctx, "GET", "/map", 200, 3*time.Millisecond)
	if got := counterValue(t, "provmap_http_requests_total", map[string]string{"route": "/map", "status": "200"}); got-reqs != 1 {
		t.Errorf("requests grew by %v, want 1", got-reqs)
	}
}

func TestInstallAndHandler(t *testing.T) {
	Install()
	defer observability.Reset()

	if _, ok := observability.Cache().(CacheHooks); !ok {
		t.Error("Install() should register CacheHooks")
	}

	observability.Server().OnRequest(context.Background(), "GET", "/healthz", 200, time.Millisecond)

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	if !strings.Contains(rec.Body.String(), "provmap_http_requests_total") {
		t.Error("/metrics output should include provmap_http_requests_total")
	}
}
