// Package pipeline provides the core routing pipeline for gridroute.
//
// This package implements the complete load → route → render pipeline that
// can be used by CLI and API components. By centralizing this logic, we
// ensure consistent behavior across all entry points: the same caching, the
// same artifact formats, the same run records.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Load: Read the routing problem and resolve its technology
//  2. Route: Build the physical router and route every request
//  3. Render: Generate output in various formats (SVG, PNG, PDF, JSON, DOT)
//
// Each stage can be run independently or as part of the complete pipeline.
//
// # Usage
//
// Create a Runner and execute the pipeline:
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	opts := pipeline.Options{
//	    ProblemPath: "problems/pair.json",
//	    Formats:     []string{"svg"},
//	}
//	result, err := runner.Execute(ctx, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Artifacts["svg"]
//
// Run individual stages:
//
//	// Load only
//	p, tech, err := pipeline.Load(opts)
//
//	// Route a loaded problem
//	doc, _, err := pipeline.Route(ctx, p, tech, opts)
//
// # Caching
//
// Routing is deterministic, so the runner caches by content hash: the
// routed layout document is keyed by the problem-plus-technology hash and
// the options that change routing, and each rendered artifact is keyed by
// the document's hash and format options. Identical problems never route
// twice, and a cached route can still render into a format it has not been
// rendered to before.
package pipeline

import (
	"encoding/json"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/tracelayer/gridroute/pkg/cache"
	"github.com/tracelayer/gridroute/pkg/errors"
	"github.com/tracelayer/gridroute/pkg/problem"
	"github.com/tracelayer/gridroute/pkg/render/jsonout"
)

// =============================================================================
// Constants and Defaults
// =============================================================================

// Default values for pipeline options.
const (
	// DefaultFormat is the artifact format produced when none is requested.
	DefaultFormat = FormatSVG

	// DefaultScale is the raster scale applied to PNG output.
	DefaultScale = 2.0
)

// Output format constants.
const (
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatPDF  = "pdf"
	FormatJSON = "json"
	FormatDOT  = "dot"
)

// ValidFormats contains all supported output formats.
var ValidFormats = map[string]bool{
	FormatSVG:  true,
	FormatPNG:  true,
	FormatPDF:  true,
	FormatJSON: true,
	FormatDOT:  true,
}

// =============================================================================
// Options
// =============================================================================

// Options contains all configuration for a pipeline execution.
type Options struct {
	// Load options
	ProblemPath string `json:"problem_path,omitempty"` // path to the problem document
	Problem     []byte `json:"problem,omitempty"`      // inline problem document, takes precedence over ProblemPath
	TechPath    string `json:"tech_path,omitempty"`    // technology override; defaults to the problem's own

	// Route options
	Straps bool `json:"straps,omitempty"` // fill supply straps after routing

	// Render options
	Formats  []string `json:"formats,omitempty"`  // output formats (default: svg)
	Scale    float64  `json:"scale,omitempty"`    // PNG raster scale (default: 2.0)
	Detailed bool     `json:"detailed,omitempty"` // detailed DOT endpoint labels

	// Cache options
	NoCache bool `json:"no_cache,omitempty"` // skip cache reads and writes
	Refresh bool `json:"refresh,omitempty"`  // skip cache reads, still write

	// Name overrides the problem's own name in run records.
	Name string `json:"name,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has run.
	validated bool
}

// Validate checks that the options are complete and consistent.
func (o *Options) Validate() error {
	if o.ProblemPath == "" && len(o.Problem) == 0 {
		return errors.New(errors.ErrCodeInvalidInput,
			"a problem document is required (path or inline)")
	}
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	if o.Scale < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "scale must be positive")
	}
	return nil
}

// ValidateAndSetDefaults validates the options and fills in defaults.
// It is idempotent; later calls are no-ops.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.Validate(); err != nil {
		return err
	}
	if len(o.Formats) == 0 {
		o.Formats = []string{DefaultFormat}
	}
	if o.Scale == 0 {
		o.Scale = DefaultScale
	}
	o.validated = true
	return nil
}

// RouteKeyOpts returns the cache key options for the routing stage.
func (o *Options) RouteKeyOpts() cache.RouteKeyOpts {
	return cache.RouteKeyOpts{Straps: o.Straps}
}

// ArtifactKeyOpts returns the cache key options for one output format.
// Only the fields that change that format's bytes are set, so a new PNG
// scale does not invalidate cached SVGs.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	ko := cache.ArtifactKeyOpts{Format: format}
	switch format {
	case FormatPNG:
		ko.Scale = o.Scale
	case FormatDOT:
		ko.Detailed = o.Detailed
	}
	return ko
}

// readCache reports whether cached stage results may be reused.
func (o *Options) readCache() bool { return !o.NoCache && !o.Refresh }

// writeCache reports whether fresh stage results should be cached.
func (o *Options) writeCache() bool { return !o.NoCache }

// =============================================================================
// Validation Helpers
// =============================================================================

// ValidateFormat checks a single output format.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidInput,
			"invalid format %q (valid: svg, png, pdf, json, dot)", format)
	}
	return nil
}

// ValidateFormats checks a list of output formats.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// Result
// =============================================================================

// Stats captures per-stage execution times.
type Stats struct {
	LoadTime   time.Duration `json:"load_time"`
	RouteTime  time.Duration `json:"route_time"`
	RenderTime time.Duration `json:"render_time"`
}

// CacheInfo reports which stages were served from cache.
type CacheInfo struct {
	RouteHit  bool `json:"route_hit"`
	RenderHit bool `json:"render_hit"`
}

// Result is the complete output of a pipeline execution.
type Result struct {
	// Problem is the loaded routing problem.
	Problem *problem.Problem `json:"-"`

	// Routing is the per-request outcome summary.
	Routing *problem.Result `json:"routing,omitempty"`

	// Layout is the routed geometry document, the unit the cache stores.
	Layout *jsonout.Document `json:"-"`

	// ProblemHash identifies the problem-plus-technology content.
	ProblemHash string `json:"problem_hash,omitempty"`

	// RunID is the persisted run's id, when the runner carries a store.
	RunID string `json:"run_id,omitempty"`

	// Artifacts holds the rendered outputs keyed by format.
	Artifacts map[string][]byte `json:"-"`

	Stats     Stats     `json:"stats"`
	CacheInfo CacheInfo `json:"cache_info"`
}

// =============================================================================
// Hashing
// =============================================================================

// ContentHash builds the cache identity of a loaded problem: the canonical
// problem document plus the resolved technology, so edits to an external
// tech file invalidate cached routes even though the problem bytes did not
// change.
func ContentHash(p *problem.Problem, t *problem.Tech) (string, error) {
	pb, err := p.Marshal()
	if err != nil {
		return "", err
	}
	tb, err := json.Marshal(t)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInternal, err, "marshal technology")
	}
	return cache.Hash(append(pb, tb...)), nil
}

// silentLogger is the fallback when no logger is configured.
func silentLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{})
}
