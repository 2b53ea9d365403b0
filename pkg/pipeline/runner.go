package pipeline

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/tracelayer/gridroute/pkg/cache"
	"github.com/tracelayer/gridroute/pkg/observability"
	"github.com/tracelayer/gridroute/pkg/problem"
	"github.com/tracelayer/gridroute/pkg/render/jsonout"
	"github.com/tracelayer/gridroute/pkg/store"
)

// Runner encapsulates pipeline execution with caching and optional run
// persistence. Both CLI and API use it to avoid duplicating cache logic.
//
// The Runner is stateless apart from its collaborators - it does not hold
// pipeline results, so multiple goroutines can share one Runner with
// different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Store  store.RunStore // optional; Execute records runs when set
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// A nil keyer falls back to the DefaultKeyer, a nil cache disables caching,
// and a nil logger discards output. Attach a run store by setting the
// Store field.
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = silentLogger()
	}
	return &Runner{Cache: c, Keyer: keyer, Logger: logger}
}

// applyLogger fills the options logger from the runner's.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}

// Execute runs the complete pipeline: load, route, render, and - when a
// store is attached - record the run.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	r.applyLogger(&opts)

	result := &Result{}
	obs := observability.Pipeline()

	// Stage 1: Load
	source := opts.ProblemPath
	if source == "" {
		source = "inline"
	}
	obs.OnLoadStart(ctx, source)
	start := time.Now()
	p, tech, err := Load(opts)
	if err != nil {
		obs.OnLoadComplete(ctx, source, 0, time.Since(start), err)
		return nil, err
	}
	result.Problem = p
	result.Stats.LoadTime = time.Since(start)
	obs.OnLoadComplete(ctx, source, len(p.Requests), result.Stats.LoadTime, nil)

	hash, err := ContentHash(p, tech)
	if err != nil {
		return nil, err
	}
	result.ProblemHash = hash
	opts.Logger.Info("problem loaded",
		"name", p.Name,
		"requests", len(p.Requests),
		"duration", result.Stats.LoadTime)

	// Stage 2: Route
	obs.OnRouteStart(ctx, p.Name, len(p.Requests))
	start = time.Now()
	doc, docBytes, routeHit, err := r.RouteWithCacheInfo(ctx, p, tech, hash, opts)
	if err != nil {
		obs.OnRouteComplete(ctx, p.Name, 0, 0, time.Since(start), err)
		return nil, err
	}
	result.Layout = doc
	result.Routing = doc.Result
	result.CacheInfo.RouteHit = routeHit
	result.Stats.RouteTime = time.Since(start)
	obs.OnRouteComplete(ctx, p.Name, doc.Result.Routed, doc.Result.Failed, result.Stats.RouteTime, nil)
	logRouting(opts.Logger, doc.Result, routeHit, result.Stats.RouteTime)

	// Stage 3: Render
	obs.OnRenderStart(ctx, opts.Formats)
	start = time.Now()
	artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, doc, docBytes, p, opts)
	if err != nil {
		obs.OnRenderComplete(ctx, opts.Formats, time.Since(start), err)
		return nil, err
	}
	result.Artifacts = artifacts
	result.CacheInfo.RenderHit = renderHit
	result.Stats.RenderTime = time.Since(start)
	obs.OnRenderComplete(ctx, opts.Formats, result.Stats.RenderTime, nil)
	opts.Logger.Info("artifacts rendered",
		"formats", strings.Join(opts.Formats, ","),
		"cached", renderHit,
		"duration", result.Stats.RenderTime)

	if r.Store != nil {
		if id, err := r.recordRun(ctx, result, opts); err != nil {
			opts.Logger.Warn("run not recorded", "error", err)
		} else {
			result.RunID = id
		}
	}
	return result, nil
}

// RouteWithCacheInfo routes the problem, returning the layout document, its
// canonical bytes, and whether it came from cache. hash is the problem
// content hash from [ContentHash].
func (r *Runner) RouteWithCacheInfo(ctx context.Context, p *problem.Problem, tech *problem.Tech, hash string, opts Options) (*jsonout.Document, []byte, bool, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, nil, false, err
	}
	r.applyLogger(&opts)

	key := r.Keyer.RouteKey(hash, opts.RouteKeyOpts())
	if opts.readCache() {
		if data, ok, err := r.Cache.Get(ctx, key); err == nil && ok {
			if doc, err := jsonout.Unmarshal(data); err == nil && doc.Result != nil {
				observability.Cache().OnCacheHit(ctx, "route")
				return doc, data, true, nil
			}
			opts.Logger.Warn("cached route unreadable, rerouting", "key", key)
		}
		observability.Cache().OnCacheMiss(ctx, "route")
	}

	doc, data, err := Route(ctx, p, tech, opts)
	if err != nil {
		return nil, nil, false, err
	}
	if opts.writeCache() {
		_ = r.Cache.Set(ctx, key, data, cache.TTLRoute)
		observability.Cache().OnCacheSet(ctx, "route", len(data))
	}
	return doc, data, false, nil
}

// Route routes the problem, using the cache when possible.
func (r *Runner) Route(ctx context.Context, p *problem.Problem, tech *problem.Tech, hash string, opts Options) (*jsonout.Document, []byte, error) {
	doc, data, _, err := r.RouteWithCacheInfo(ctx, p, tech, hash, opts)
	return doc, data, err
}

// RenderWithCacheInfo renders the requested formats, returning the artifact
// map and whether every format came from cache. Artifacts are keyed by the
// document's own hash, so two problems that route to identical geometry
// share rendered output.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, doc *jsonout.Document, docBytes []byte, p *problem.Problem, opts Options) (map[string][]byte, bool, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, false, err
	}
	r.applyLogger(&opts)

	docHash := cache.Hash(docBytes)
	if opts.readCache() {
		artifacts := make(map[string][]byte, len(opts.Formats))
		hit := true
		for _, format := range opts.Formats {
			key := r.Keyer.ArtifactKey(docHash, opts.ArtifactKeyOpts(format))
			data, ok, err := r.Cache.Get(ctx, key)
			if err != nil || !ok {
				hit = false
				break
			}
			artifacts[format] = data
		}
		if hit {
			observability.Cache().OnCacheHit(ctx, "artifact")
			return artifacts, true, nil
		}
		observability.Cache().OnCacheMiss(ctx, "artifact")
	}

	artifacts, err := Render(doc, docBytes, p, opts)
	if err != nil {
		return nil, false, err
	}
	if opts.writeCache() {
		for format, data := range artifacts {
			key := r.Keyer.ArtifactKey(docHash, opts.ArtifactKeyOpts(format))
			_ = r.Cache.Set(ctx, key, data, cache.TTLArtifact)
			observability.Cache().OnCacheSet(ctx, "artifact", len(data))
		}
	}
	return artifacts, false, nil
}

// Render renders the requested formats, using the cache when possible.
func (r *Runner) Render(ctx context.Context, doc *jsonout.Document, docBytes []byte, p *problem.Problem, opts Options) (map[string][]byte, error) {
	artifacts, _, err := r.RenderWithCacheInfo(ctx, doc, docBytes, p, opts)
	return artifacts, err
}

// recordRun persists the finished execution to the run store.
func (r *Runner) recordRun(ctx context.Context, result *Result, opts Options) (string, error) {
	name := opts.Name
	if name == "" && result.Problem != nil {
		name = result.Problem.Name
	}
	run := store.NewRun(name, result.ProblemHash, store.Options{
		Straps:  opts.Straps,
		Formats: opts.Formats,
	})
	run.Result = result.Routing
	run.Elapsed = result.Stats.LoadTime + result.Stats.RouteTime + result.Stats.RenderTime
	run.Artifacts = result.Artifacts
	if err := r.Store.Put(ctx, run); err != nil {
		return "", err
	}
	return run.ID, nil
}

// logRouting reports the route stage outcome. A pass with failures is worth
// a warning even though the pipeline continues.
func logRouting(logger *log.Logger, res *problem.Result, cached bool, d time.Duration) {
	fields := []any{
		"routed", res.Routed,
		"failed", res.Failed,
		"cached", cached,
		"duration", d,
	}
	if res.Failed > 0 {
		logger.Warn("routing finished with failures", fields...)
		return
	}
	logger.Info("routing complete", fields...)
}

// Close releases the runner's cache and store resources.
func (r *Runner) Close() error {
	var firstErr error
	if r.Cache != nil {
		firstErr = r.Cache.Close()
	}
	if r.Store != nil {
		if err := r.Store.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
