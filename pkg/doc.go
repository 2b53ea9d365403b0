// Package pkg provides the core libraries for Gridroute net routing.
//
// # Overview
//
// Gridroute routes nets across a gridded multi-layer stack: wires run on
// per-layer tracks in alternating directions and change layers through vias.
// The pkg directory is organized into four main areas:
//
//  1. Geometry foundations (geom, track, layout, via, jog)
//  2. Routing (route/abs lattice router, route physical router)
//  3. Problem model and orchestration (problem, pipeline)
//  4. Infrastructure (render, cache, store, errors, observability)
//
// # Architecture
//
// The typical data flow through Gridroute:
//
//	Problem file (JSON) + Technology file (TOML)
//	         ↓
//	    [problem] package (validate, build the router)
//	         ↓
//	    [route] package (physical routing over [route/abs] lattice BFS)
//	         ↓
//	    [render] package (layout document + artifacts)
//	         ↓
//	    SVG/PDF/PNG/JSON/DOT output
//
// # Quick Start
//
// Route a problem file and write the rendered SVG:
//
//	import (
//	    "context"
//	    "os"
//
//	    "github.com/tracelayer/gridroute/pkg/pipeline"
//	)
//
//	runner := pipeline.NewRunner(nil, nil, nil)
//	res, _ := runner.Execute(context.Background(), pipeline.Options{
//	    ProblemPath: "adder.json",
//	    Formats:     []string{pipeline.FormatSVG},
//	})
//	os.WriteFile("adder.svg", res.Artifacts[pipeline.FormatSVG], 0o644)
//
// Or drive the router directly:
//
//	r := route.New(route.Config{
//	    Area:   area,
//	    Layers: layers,
//	    Vias:   viaGen,
//	})
//	err := r.RouteWithNet(ctx, layout.Layer("m1"), src, layout.Layer("m2"), dst, "clk")
//
// # Main Packages
//
// ## Geometry Foundations
//
// [geom] - Integer Manhattan geometry: points, spans, rectangles, directions,
// sides, and corners, with grid snapping helpers. Every other package builds
// on these value types.
//
// [track] - Track arithmetic. UniformTracks maps track indices to physical
// spans from a line/space pitch; FixedTracks centers a fixed count in a span;
// Locator finds tracks relative to a coordinate.
//
// [layout] - Layers, elements, and groups: the drawing sink the router emits
// into, with an R-tree index for region queries.
//
// [via] - Via generation: given two overlapping metal rects, pick the cut
// array and enclosures that fit, per the technology's via rules.
//
// [jog] - Manual jog generators (S, elbow, offset, simple) for connecting
// misaligned geometry outside the router.
//
// ## Routing
//
// [route/abs] - The abstract lattice router: occupancy grids per layer, net
// and connectivity-group bookkeeping, and the BFS that finds paths in track
// coordinates.
//
// [route] - The physical router: translates between physical geometry and
// lattice positions, draws routed paths as wire rects plus vias, reports free
// track segments, fills leftover tracks with power straps, and provides
// grid-alignment utilities (expand-to-grid, jog-to-grid, off-grid bus
// translation).
//
// ## Problem Model & Orchestration
//
// [problem] - The routing problem file model: area, obstacles, occupied
// seeds, and requests in JSON; the technology stack (layers, via rules) in
// TOML; conversion into a configured router; RouteAll with per-net outcomes.
//
// [pipeline] - Complete routing pipeline (load → route → render) used by CLI
// and API. Caches routed layouts and rendered artifacts, and records runs.
//
// ## Rendering
//
// [render] - Format conversion helpers (SVG to PDF/PNG).
//
// [render/svg] - Layer-colored scale drawings of routed layouts.
//
// [render/dot] - Net connectivity diagrams via Graphviz.
//
// [render/jsonout] - The canonical layout document: machine-readable JSON
// that also rebuilds an indexed group for region queries.
//
// ## Infrastructure
//
// [cache] - Key/value caching for routed layouts and artifacts. FileCache
// for the CLI, RedisCache for server deployments, ScopedKeyer for sharing a
// backend between both.
//
// [store] - Run persistence: every pipeline execution with its options,
// outcome, and artifacts. FileStore for local use, MongoStore for servers.
//
// [errors] - Coded errors shared by every package, so CLI and API map
// failures to messages and statuses consistently.
//
// [observability] - Optional instrumentation hooks for pipeline stages,
// cache operations, and API requests.
//
// [buildinfo] - Version metadata injected at build time.
//
// # Common Workflows
//
// Inspect what is left after routing:
//
//	for _, ti := range r.Layers() {
//	    for _, seg := range r.Segments(ti.Layer()) {
//	        fmt.Printf("%s track %d: %v\n", ti.Layer(), seg.TrackID, seg.Rect)
//	    }
//	}
//
// Fill leftover tracks with power straps:
//
//	straps := route.NewRoutedStraps().
//	    SetStrapLayers(layout.Layer("m2"), layout.Layer("m3")).
//	    AddTarget(layout.Layer("m1"), route.NewTarget(route.Vss, railRect))
//	placed, err := straps.Fill(ctx, r, r.Group())
//
// Persist and query runs:
//
//	st, _ := store.NewFileStore("")
//	runner.Store = st
//	runs, _ := st.List(ctx, 20)
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...              # All tests
//	go test ./pkg/route/...        # Specific package
//	go test -run Example           # Examples only
//
// [geom]: https://pkg.go.dev/github.com/tracelayer/gridroute/pkg/geom
// [track]: https://pkg.go.dev/github.com/tracelayer/gridroute/pkg/track
// [layout]: https://pkg.go.dev/github.com/tracelayer/gridroute/pkg/layout
// [via]: https://pkg.go.dev/github.com/tracelayer/gridroute/pkg/via
// [jog]: https://pkg.go.dev/github.com/tracelayer/gridroute/pkg/jog
// [route/abs]: https://pkg.go.dev/github.com/tracelayer/gridroute/pkg/route/abs
// [route]: https://pkg.go.dev/github.com/tracelayer/gridroute/pkg/route
// [problem]: https://pkg.go.dev/github.com/tracelayer/gridroute/pkg/problem
// [pipeline]: https://pkg.go.dev/github.com/tracelayer/gridroute/pkg/pipeline
// [render]: https://pkg.go.dev/github.com/tracelayer/gridroute/pkg/render
// [render/svg]: https://pkg.go.dev/github.com/tracelayer/gridroute/pkg/render/svg
// [render/dot]: https://pkg.go.dev/github.com/tracelayer/gridroute/pkg/render/dot
// [render/jsonout]: https://pkg.go.dev/github.com/tracelayer/gridroute/pkg/render/jsonout
// [cache]: https://pkg.go.dev/github.com/tracelayer/gridroute/pkg/cache
// [store]: https://pkg.go.dev/github.com/tracelayer/gridroute/pkg/store
// [errors]: https://pkg.go.dev/github.com/tracelayer/gridroute/pkg/errors
// [observability]: https://pkg.go.dev/github.com/tracelayer/gridroute/pkg/observability
// [buildinfo]: https://pkg.go.dev/github.com/tracelayer/gridroute/pkg/buildinfo
package pkg
