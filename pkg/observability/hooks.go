// Package observability lets an application observe provmap without the
// core packages depending on a metrics backend.
//
// Core packages emit events through the registered hooks; by default every
// hook is a no-op. The application installs real hooks once at startup:
//
//	observability.SetPipelineHooks(metrics.PipelineHooks{})
//	observability.SetCacheHooks(metrics.CacheHooks{})
//	observability.SetServerHooks(metrics.ServerHooks{})
//
// and libraries call them around the work they do:
//
//	start := time.Now()
//	r, err := rows.Build(ds, province, opts)
//	observability.Pipeline().OnFlattenComplete(ctx, province, len(r.Nodes), len(r.Edges), time.Since(start), err)
package observability

import (
	"context"
	"sync"
	"time"
)

// PipelineHooks receives events from dataset loading and rendering.
type PipelineHooks interface {
	// OnLoadComplete fires after a dataset source was read. provinces is 0
	// when err is set; issues counts quarantined entries.
	OnLoadComplete(ctx context.Context, source string, provinces, issues int, duration time.Duration, err error)

	OnFlattenStart(ctx context.Context, province string)
	OnFlattenComplete(ctx context.Context, province string, nodes, edges int, duration time.Duration, err error)

	OnRenderStart(ctx context.Context, province string, formats []string)
	OnRenderComplete(ctx context.Context, province string, formats []string, duration time.Duration, err error)
}

// CacheHooks receives events from cache lookups. keyType names the kind of
// entry; the pipeline passes the artifact format.
type CacheHooks interface {
	OnCacheHit(ctx context.Context, keyType string)
	OnCacheMiss(ctx context.Context, keyType string)
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// ServerHooks receives one event per HTTP request served. route is the
// matched route pattern, not the raw path.
type ServerHooks interface {
	OnRequest(ctx context.Context, method, route string, status int, duration time.Duration)
}

// NoopPipelineHooks ignores all events.
type NoopPipelineHooks struct{}

func (NoopPipelineHooks) OnLoadComplete(context.Context, string, int, int, time.Duration, error) {}
func (NoopPipelineHooks) OnFlattenStart(context.Context, string)                                 {}
func (NoopPipelineHooks) OnFlattenComplete(context.Context, string, int, int, time.Duration, error) {
}
func (NoopPipelineHooks) OnRenderStart(context.Context, string, []string) {}
func (NoopPipelineHooks) OnRenderComplete(context.Context, string, []string, time.Duration, error) {
}

// NoopCacheHooks ignores all events.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopServerHooks ignores all events.
type NoopServerHooks struct{}

func (NoopServerHooks) OnRequest(context.Context, string, string, int, time.Duration) {}

var (
	pipelineHooks PipelineHooks = NoopPipelineHooks{}
	cacheHooks    CacheHooks    = NoopCacheHooks{}
	serverHooks   ServerHooks   = NoopServerHooks{}
	hooksMu       sync.RWMutex
)

// SetPipelineHooks installs h. A nil h is ignored.
func SetPipelineHooks(h PipelineHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		pipelineHooks = h
	}
}

// SetCacheHooks installs h. A nil h is ignored.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// SetServerHooks installs h. A nil h is ignored.
func SetServerHooks(h ServerHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		serverHooks = h
	}
}

// Pipeline returns the installed pipeline hooks.
func Pipeline() PipelineHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return pipelineHooks
}

// Cache returns the installed cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// Server returns the installed server hooks.
func Server() ServerHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return serverHooks
}

// Reset restores the no-op hooks. Tests use it to isolate global state.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	pipelineHooks = NoopPipelineHooks{}
	cacheHooks = NoopCacheHooks{}
	serverHooks = NoopServerHooks{}
}
