package route

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/tracelayer/gridroute/pkg/errors"
	"github.com/tracelayer/gridroute/pkg/geom"
	"github.com/tracelayer/gridroute/pkg/layout"
	"github.com/tracelayer/gridroute/pkg/route/abs"
	"github.com/tracelayer/gridroute/pkg/track"
	"github.com/tracelayer/gridroute/pkg/via"
)

var (
	m1 = layout.Layer("m1")
	m2 = layout.Layer("m2")
	m3 = layout.Layer("m3")
)

func rect(x0, y0, x1, y1 int64) geom.Rect {
	return geom.NewRect(geom.Pt(x0, y0), geom.Pt(x1, y1))
}

// testLayers is a three-layer alternating stack sharing a 200-unit pitch, so
// every layer's track n covers [200n-50, 200n+50] over the test area.
func testLayers() []LayerConfig {
	return []LayerConfig{
		{Line: 100, Space: 100, Dir: geom.Vert, Layer: m1},
		{Line: 100, Space: 100, Dir: geom.Horiz, Layer: m2},
		{Line: 100, Space: 100, Dir: geom.Vert, Layer: m3},
	}
}

func testVias(t *testing.T) *via.Generator {
	t.Helper()
	gen, err := via.NewGenerator([]via.Rule{
		{Bot: "m1", Top: "m2", Cut: "via1", Size: 100, Space: 100},
		{Bot: "m2", Top: "m3", Cut: "via2", Size: 100, Space: 100},
	}, 5)
	if err != nil {
		t.Fatalf("NewGenerator() returned %v", err)
	}
	return gen
}

func testRouter(t *testing.T) *Router {
	t.Helper()
	return New(Config{
		Area:   rect(0, 0, 2000, 2000),
		Layers: testLayers(),
		Vias:   testVias(t),
	})
}

func TestNewPanics(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{
			name: "no layers",
			cfg:  Config{Area: rect(0, 0, 2000, 2000)},
		},
		{
			name: "pitch not a multiple of the base pitch",
			cfg: Config{
				Area: rect(0, 0, 2000, 2000),
				Layers: []LayerConfig{
					{Line: 100, Space: 100, Dir: geom.Vert, Layer: m1},
					{Line: 150, Space: 150, Dir: geom.Horiz, Layer: m2},
				},
			},
		},
		{
			name: "adjacent layers share a direction",
			cfg: Config{
				Area: rect(0, 0, 2000, 2000),
				Layers: []LayerConfig{
					{Line: 100, Space: 100, Dir: geom.Vert, Layer: m1},
					{Line: 100, Space: 100, Dir: geom.Vert, Layer: m2},
				},
			},
		},
		{
			name: "negative manufacturing grid",
			cfg: Config{
				Area:   rect(0, 0, 2000, 2000),
				Layers: testLayers(),
				Grid:   -5,
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer func() {
				if recover() == nil {
					t.Fatalf("New() did not panic")
				}
			}()
			New(tt.cfg)
		})
	}
}

func TestTrackInfo(t *testing.T) {
	r := testRouter(t)
	ti := r.TrackInfo(m2)
	if ti.Layer() != m2 {
		t.Errorf("Layer() = %v, want %v", ti.Layer(), m2)
	}
	if ti.Dir() != geom.Horiz {
		t.Errorf("Dir() = %v, want horiz", ti.Dir())
	}
	want := track.UniformTracks{Line: 100, Space: 100, Start: -50, Sign: geom.Pos}
	if ti.Tracks() != want {
		t.Errorf("Tracks() = %+v, want %+v", ti.Tracks(), want)
	}
}

func TestTrackInfoUnknownLayer(t *testing.T) {
	r := testRouter(t)
	defer func() {
		if recover() == nil {
			t.Fatalf("TrackInfo() did not panic for an unknown layer")
		}
	}()
	r.TrackInfo(layout.Layer("poly"))
}

func TestPosSpanConversions(t *testing.T) {
	r := testRouter(t)
	in := rect(140, 340, 460, 660)

	shrink := r.shrinkToPosSpan(m1, in)
	want := abs.PosSpan{Layer: 0, TxMin: 1, TxMax: 2, TyMin: 2, TyMax: 3}
	if shrink != want {
		t.Errorf("shrinkToPosSpan() = %+v, want %+v", shrink, want)
	}

	expand := r.expandToPosSpan(m1, in)
	want = abs.PosSpan{Layer: 0, TxMin: 0, TxMax: 3, TyMin: 1, TyMax: 4}
	if expand != want {
		t.Errorf("expandToPosSpan() = %+v, want %+v", expand, want)
	}

	// Shrinking stays inside the rectangle; expanding encloses it.
	inner := geom.RectFromSpans(
		r.gridVTracks.Index(int64(shrink.TxMin)).Union(r.gridVTracks.Index(int64(shrink.TxMax))),
		r.gridHTracks.Index(int64(shrink.TyMin)).Union(r.gridHTracks.Index(int64(shrink.TyMax))),
	)
	if !in.Contains(inner) {
		t.Errorf("shrunk span %v sticks out of %v", inner, in)
	}
	outer := geom.RectFromSpans(
		r.gridVTracks.Index(int64(expand.TxMin)).Union(r.gridVTracks.Index(int64(expand.TxMax))),
		r.gridHTracks.Index(int64(expand.TyMin)).Union(r.gridHTracks.Index(int64(expand.TyMax))),
	)
	if !outer.Contains(in) {
		t.Errorf("expanded span %v does not cover %v", outer, in)
	}
}

func TestRouteStraightWire(t *testing.T) {
	r := testRouter(t)
	err := r.Route(context.Background(), m1, rect(150, 150, 250, 250), m1, rect(150, 950, 250, 1050))
	if err != nil {
		t.Fatalf("Route() returned %v", err)
	}
	elems := r.Group().Elements()
	if len(elems) != 1 {
		t.Fatalf("group has %d elements, want 1", len(elems))
	}
	e := elems[0]
	if e.Kind != layout.KindRect || e.Layer != m1 {
		t.Fatalf("element = %+v, want a rect on m1", e)
	}
	if want := rect(150, 150, 250, 1050); e.Rect != want {
		t.Errorf("wire = %v, want %v", e.Rect, want)
	}

	var out layout.Group
	r.Draw(&out)
	if out.Len() != r.Group().Len() {
		t.Errorf("Draw() copied %d elements, want %d", out.Len(), r.Group().Len())
	}
}

func TestRouteLayerChange(t *testing.T) {
	r := testRouter(t)
	err := r.Route(context.Background(), m1, rect(150, 150, 250, 250), m2, rect(950, 150, 1050, 250))
	if err != nil {
		t.Fatalf("Route() returned %v", err)
	}
	elems := r.Group().Elements()
	if len(elems) != 3 {
		t.Fatalf("group has %d elements, want 3", len(elems))
	}
	if e := elems[0]; e.Layer != m1 || e.Rect != rect(150, 150, 250, 250) {
		t.Errorf("m1 stub = %v on %v, want %v on m1", e.Rect, e.Layer, rect(150, 150, 250, 250))
	}
	if e := elems[1]; e.Layer != m2 || e.Rect != rect(150, 150, 1050, 250) {
		t.Errorf("m2 wire = %v on %v, want %v on m2", e.Rect, e.Layer, rect(150, 150, 1050, 250))
	}
	v := elems[2]
	if v.Kind != layout.KindInstance || v.Name != "via_m1_m2" {
		t.Fatalf("element 2 = %+v, want a via_m1_m2 instance", v)
	}
	if want := rect(150, 150, 250, 250); v.Rect != want {
		t.Errorf("via bbox = %v, want %v", v.Rect, want)
	}
}

func TestRouteWithNetJumpsThroughWiring(t *testing.T) {
	r := testRouter(t)
	// A long vertical m1 wire on column x=5 already belongs to the net; the
	// route may enter it near the bottom and leave it near the top.
	if err := r.Occupy(m1, rect(950, 150, 1050, 2050), "bus"); err != nil {
		t.Fatalf("Occupy() returned %v", err)
	}

	err := r.RouteWithNet(context.Background(),
		m2, rect(150, 150, 250, 250), m2, rect(1750, 1750, 1850, 1850), "bus")
	if err != nil {
		t.Fatalf("RouteWithNet() returned %v", err)
	}

	elems := r.Group().Elements()
	if len(elems) != 6 {
		t.Fatalf("group has %d elements, want 6", len(elems))
	}
	vias := 0
	for _, e := range elems {
		if e.Kind == layout.KindInstance {
			vias++
		}
	}
	if vias != 2 {
		t.Errorf("group has %d via instances, want 2", vias)
	}
	if want := rect(150, 150, 1050, 250); elems[0].Rect != want {
		t.Errorf("first wire = %v, want %v", elems[0].Rect, want)
	}
	// The stretch travelled inside the existing wire is not redrawn: the
	// middle of the x=5 column stays clear.
	if hits := r.Group().Query(rect(960, 900, 1040, 1100)); len(hits) != 0 {
		t.Errorf("Query() midway returned %d elements, want 0", len(hits))
	}
}

func TestRouteNotFound(t *testing.T) {
	// A single vertical layer cannot connect two distinct columns.
	r := New(Config{
		Area:   rect(0, 0, 2000, 2000),
		Layers: []LayerConfig{{Line: 100, Space: 100, Dir: geom.Vert, Layer: m1}},
	})
	err := r.Route(context.Background(), m1, rect(150, 150, 250, 250), m1, rect(550, 150, 650, 250))
	if err == nil {
		t.Fatalf("Route() succeeded, want error")
	}
	var re *errors.RouteError
	if !stderrors.As(err, &re) {
		t.Fatalf("Route() returned %T, want *errors.RouteError", err)
	}
	if re.SrcLayer != "m1" || re.DstLayer != "m1" {
		t.Errorf("RouteError layers = (%s, %s), want (m1, m1)", re.SrcLayer, re.DstLayer)
	}
	if !stderrors.Is(err, abs.ErrNoRouteFound) {
		t.Errorf("error does not unwrap to ErrNoRouteFound: %v", err)
	}
}

func TestRouteOutsideAreaPanics(t *testing.T) {
	r := testRouter(t)
	defer func() {
		if recover() == nil {
			t.Fatalf("Route() did not panic for out-of-area geometry")
		}
	}()
	_ = r.Route(context.Background(), m1, rect(-200, 150, 250, 250), m1, rect(150, 950, 250, 1050))
}

func TestOccupyConflicts(t *testing.T) {
	r := testRouter(t)
	if err := r.Occupy(m1, rect(150, 150, 250, 650), "clk"); err != nil {
		t.Fatalf("Occupy() returned %v", err)
	}
	if got := r.inner.LayerInfo(0).State(1, 2); !got.IsOccupied() {
		t.Errorf("cell (1,2) = %v, want occupied", got.Kind)
	}

	err := r.Occupy(m1, rect(150, 150, 250, 650), "rst")
	if errors.GetCode(err) != errors.ErrCodeOccupied {
		t.Errorf("occupying foreign wiring: code = %q, want %q",
			errors.GetCode(err), errors.ErrCodeOccupied)
	}

	r.Block(m1, rect(350, 150, 450, 250))
	if got := r.inner.LayerInfo(0).State(2, 1); !got.IsBlocked() {
		t.Errorf("cell (2,1) = %v, want blocked", got.Kind)
	}
	err = r.Occupy(m1, rect(350, 150, 450, 250), "rst")
	if errors.GetCode(err) != errors.ErrCodeBlocked {
		t.Errorf("occupying a blockage: code = %q, want %q",
			errors.GetCode(err), errors.ErrCodeBlocked)
	}
}

func TestSegmentsAroundBlock(t *testing.T) {
	r := testRouter(t)
	r.Block(m1, rect(150, 750, 250, 850))

	segs := r.Segments(m1)
	if len(segs) != 13 {
		t.Fatalf("Segments() returned %d segments, want 13", len(segs))
	}
	if want := rect(-50, -50, 50, 2250); segs[0].Rect != want {
		t.Errorf("track 0 segment = %v, want %v", segs[0].Rect, want)
	}
	if !segs[0].LowerBoundary || !segs[0].UpperBoundary {
		t.Errorf("track 0 boundaries = (%v, %v), want both true",
			segs[0].LowerBoundary, segs[0].UpperBoundary)
	}

	var track1 []Segment
	for _, seg := range segs {
		if seg.TrackID == 1 {
			track1 = append(track1, seg)
		}
	}
	if len(track1) != 2 {
		t.Fatalf("track 1 has %d segments, want 2", len(track1))
	}
	low, high := track1[0], track1[1]
	if want := rect(150, -50, 250, 650); low.Rect != want {
		t.Errorf("lower segment = %v, want %v", low.Rect, want)
	}
	if !low.LowerBoundary || low.UpperBoundary {
		t.Errorf("lower segment boundaries = (%v, %v), want (true, false)",
			low.LowerBoundary, low.UpperBoundary)
	}
	if want := rect(150, 950, 250, 2250); high.Rect != want {
		t.Errorf("upper segment = %v, want %v", high.Rect, want)
	}
	if high.LowerBoundary || !high.UpperBoundary {
		t.Errorf("upper segment boundaries = (%v, %v), want (false, true)",
			high.LowerBoundary, high.UpperBoundary)
	}
}

func TestGetNetStable(t *testing.T) {
	r := testRouter(t)
	a := r.GetNet("scan")
	if got := r.GetNet("scan"); got != a {
		t.Errorf("GetNet() changed: %v then %v", a, got)
	}
	if got := r.GetNet("reset"); got == a {
		t.Errorf("GetNet() reused net %v for a different name", got)
	}
}
