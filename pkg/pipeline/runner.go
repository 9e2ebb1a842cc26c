package pipeline

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/singleflight"

	"github.com/matzehuels/provmap/pkg/cache"
	"github.com/matzehuels/provmap/pkg/dataset"
	"github.com/matzehuels/provmap/pkg/geo"
	"github.com/matzehuels/provmap/pkg/network"
	"github.com/matzehuels/provmap/pkg/observability"
	"github.com/matzehuels/provmap/pkg/rows"
)

// Runner renders provinces of one loaded dataset, caching artifacts.
// The CLI and the HTTP server share it.
//
// The dataset is read-only and the runner keeps no per-render state, so
// one Runner may serve concurrent renders. Concurrent misses for the same
// artifact key share a single render.
type Runner struct {
	Dataset *dataset.Dataset
	Cache   cache.Cache
	Keyer   cache.Keyer
	Logger  *log.Logger

	// TTL is the lifetime of cached artifacts.
	TTL time.Duration

	hashOnce sync.Once
	hash     string
	renders  singleflight.Group
}

// NewRunner creates a runner over ds. A nil cache disables caching, a nil
// keyer uses [cache.DefaultKeyer] and a nil logger uses log.Default().
func NewRunner(ds *dataset.Dataset, c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if ds == nil {
		ds = dataset.Empty()
	}
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Dataset: ds,
		Cache:   c,
		Keyer:   keyer,
		Logger:  logger,
		TTL:     cache.TTLArtifact,
	}
}

// DatasetHash returns the content hash of the dataset, computed once.
func (r *Runner) DatasetHash() string {
	r.hashOnce.Do(func() { r.hash = r.Dataset.Hash() })
	return r.hash
}

// Execute runs flatten → render for one province.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	result := &Result{Province: opts.Province}

	flattenStart := time.Now()
	g, rs, err := r.Flatten(ctx, opts)
	if err != nil {
		return nil, err
	}
	result.Graph = g
	result.Rows = rs
	result.Stats.FlattenTime = time.Since(flattenStart)
	result.Stats.Nodes = len(rs.Nodes)
	result.Stats.Edges = len(rs.Edges)
	result.Stats.Placeholders = len(g.Placeholders())
	result.Stats.LengthKm = geo.Length(g)

	r.Logger.Debug("flattened province",
		"province", opts.Province,
		"nodes", result.Stats.Nodes,
		"edges", result.Stats.Edges,
		"duration", result.Stats.FlattenTime)

	renderStart := time.Now()
	artifacts, hit, err := r.RenderWithCacheInfo(ctx, g, rs, opts)
	if err != nil {
		return nil, err
	}
	result.Artifacts = artifacts
	result.CacheHit = hit
	result.Stats.RenderTime = time.Since(renderStart)

	r.Logger.Debug("rendered outputs",
		"formats", opts.Formats,
		"cached", hit,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// Flatten builds the province graph and its rows. It runs on every call:
// warnings for skipped dangling connections reach opts.Reporter each time.
func (r *Runner) Flatten(ctx context.Context, opts Options) (*network.Graph, rows.Rows, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, rows.Rows{}, err
	}
	hooks := observability.Pipeline()
	hooks.OnFlattenStart(ctx, opts.Province)
	start := time.Now()

	g, rs, err := r.flatten(opts)
	hooks.OnFlattenComplete(ctx, opts.Province, len(rs.Nodes), len(rs.Edges), time.Since(start), err)
	if err != nil {
		return nil, rows.Rows{}, err
	}
	return g, rs, nil
}

// flatten builds the graph for the DOT output and the statistics, and the
// rows for the map layers straight from the dataset.
func (r *Runner) flatten(opts Options) (*network.Graph, rows.Rows, error) {
	g, err := network.Build(r.Dataset, opts.Province)
	if err != nil {
		return nil, rows.Rows{}, err
	}
	rs, err := rows.Build(r.Dataset, opts.Province, rows.Options{Policy: opts.Policy, Reporter: opts.Reporter})
	if err != nil {
		return nil, rows.Rows{}, err
	}
	return g, rs, nil
}

// RenderWithCacheInfo renders every requested format, reusing cached
// artifacts, and reports whether all of them came from the cache. Only the
// formats missing from the cache are rendered.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, g *network.Graph, rs rows.Rows, opts Options) (map[string][]byte, bool, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, false, err
	}
	hooks := observability.Pipeline()
	cacheHooks := observability.Cache()
	hooks.OnRenderStart(ctx, opts.Province, opts.Formats)
	start := time.Now()

	artifacts := make(map[string][]byte, len(opts.Formats))
	allCached := true
	for _, format := range opts.Formats {
		if _, done := artifacts[format]; done {
			continue
		}
		key := r.Keyer.ArtifactKey(r.DatasetHash(), opts.ArtifactKeyOpts(format))
		if !opts.Refresh {
			data, hit, err := r.Cache.Get(ctx, key)
			if err != nil {
				r.Logger.Warn("cache read failed", "format", format, "err", err)
			}
			if hit {
				cacheHooks.OnCacheHit(ctx, format)
				artifacts[format] = data
				continue
			}
			cacheHooks.OnCacheMiss(ctx, format)
		}
		allCached = false

		v, err, shared := r.renders.Do(key, func() (any, error) {
			data, err := Render(ctx, g, rs, format, opts)
			if err != nil {
				return nil, err
			}
			if err := r.Cache.Set(ctx, key, data, r.TTL); err != nil {
				r.Logger.Warn("cache write failed", "format", format, "err", err)
			} else {
				cacheHooks.OnCacheSet(ctx, format, len(data))
			}
			return data, nil
		})
		if err != nil {
			hooks.OnRenderComplete(ctx, opts.Province, opts.Formats, time.Since(start), err)
			return nil, false, err
		}
		if shared {
			r.Logger.Debug("render shared with a concurrent request", "province", opts.Province, "format", format)
		}
		artifacts[format] = v.([]byte)
	}

	hooks.OnRenderComplete(ctx, opts.Province, opts.Formats, time.Since(start), nil)
	return artifacts, allCached, nil
}

// RenderFormat renders a single format of a province.
func (r *Runner) RenderFormat(ctx context.Context, opts Options, format string) ([]byte, error) {
	opts.Formats = []string{format}
	opts.validated = false
	res, err := r.Execute(ctx, opts)
	if err != nil {
		return nil, err
	}
	data, ok := res.Artifacts[format]
	if !ok {
		return nil, fmt.Errorf("render %s: no output", format)
	}
	return data, nil
}

// Close releases the cache.
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}
