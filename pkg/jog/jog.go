// Package jog draws fixed-shape routing bends: hand-placed wire doglegs
// connecting geometry the grid router does not manage, such as cell pins
// that face each other at mismatched offsets.
//
// Each jog type is assembled through a builder and renders itself into a
// [layout.Group]. The jogs draw plain rectangles on a single layer; the
// caller is responsible for picking positions that clear other wiring.
package jog

import (
	"github.com/tracelayer/gridroute/pkg/geom"
	"github.com/tracelayer/gridroute/pkg/layout"
)

// SJog is an S-shaped bend between two rectangles: a leg out of the source,
// a cross bar, and a leg into the destination, all on one layer. The jog
// runs along dir; the cross bar sits between the two rectangles, halfway by
// default.
type SJog struct {
	src   geom.Rect
	dst   geom.Rect
	dir   geom.Dir
	layer layout.LayerKey
	width int64

	// l1 pins the source leg length instead of centering the cross bar.
	l1    int64
	hasL1 bool
	// grid snaps the cross bar onto a placement grid.
	grid    int64
	hasGrid bool
}

// crossSpan returns the extent of the cross bar along the jog direction.
func (j SJog) crossSpan() geom.Span {
	s1 := j.src.Span(j.dir)
	s2 := j.dst.Span(j.dir)

	var c int64
	switch {
	case j.hasL1 && s1.Start > s2.Start:
		c = s1.Start - j.l1
	case j.hasL1:
		c = s1.Stop + j.l1
	case s1.Start > s2.Start:
		c = (s1.Start + s2.Stop) / 2
	default:
		c = (s2.Start + s1.Stop) / 2
	}
	if j.hasGrid {
		return geom.SpanFromCenterGridded(c, j.width, j.grid)
	}
	return geom.SpanFromCenter(c, j.width)
}

// R1 returns the leg extending the source rectangle to the cross bar.
func (j SJog) R1() geom.Rect {
	return geom.RectFromDirSpans(j.dir,
		j.src.Span(j.dir).Union(j.crossSpan()),
		j.src.Span(j.dir.Other()))
}

// R2 returns the cross bar spanning between the two legs.
func (j SJog) R2() geom.Rect {
	return geom.RectFromDirSpans(j.dir,
		j.crossSpan(),
		j.src.Span(j.dir.Other()).Union(j.dst.Span(j.dir.Other())))
}

// R3 returns the leg extending the destination rectangle to the cross bar.
func (j SJog) R3() geom.Rect {
	return geom.RectFromDirSpans(j.dir,
		j.dst.Span(j.dir).Union(j.crossSpan()),
		j.dst.Span(j.dir.Other()))
}

// Draw implements [layout.Drawer].
func (j SJog) Draw(dst *layout.Group) {
	dst.AddRect(j.layer, j.R1())
	dst.AddRect(j.layer, j.R2())
	dst.AddRect(j.layer, j.R3())
}

// SJogBuilder assembles an [SJog].
type SJogBuilder struct {
	jog      SJog
	hasSrc   bool
	hasDst   bool
	hasDir   bool
	hasLayer bool
	hasWidth bool
}

// NewSJog returns a builder for an [SJog].
func NewSJog() *SJogBuilder {
	return &SJogBuilder{}
}

// Src sets the source rectangle.
func (b *SJogBuilder) Src(src geom.Rect) *SJogBuilder {
	b.jog.src = src
	b.hasSrc = true
	return b
}

// Dst sets the destination rectangle.
func (b *SJogBuilder) Dst(dst geom.Rect) *SJogBuilder {
	b.jog.dst = dst
	b.hasDst = true
	return b
}

// Dir sets the direction the jog runs along.
func (b *SJogBuilder) Dir(dir geom.Dir) *SJogBuilder {
	b.jog.dir = dir
	b.hasDir = true
	return b
}

// Layer sets the layer the jog is drawn on.
func (b *SJogBuilder) Layer(layer layout.LayerKey) *SJogBuilder {
	b.jog.layer = layer
	b.hasLayer = true
	return b
}

// Width sets the cross-bar width. Defaults to the source rectangle's extent
// across the jog direction. The width must be even.
func (b *SJogBuilder) Width(width int64) *SJogBuilder {
	b.jog.width = width
	b.hasWidth = true
	return b
}

// L1 pins the length of the source leg. Without it the cross bar is
// centered between the two rectangles.
func (b *SJogBuilder) L1(l1 int64) *SJogBuilder {
	b.jog.l1 = l1
	b.jog.hasL1 = true
	return b
}

// Grid snaps the cross bar onto the given placement grid. The width must be
// a multiple of the grid.
func (b *SJogBuilder) Grid(grid int64) *SJogBuilder {
	b.jog.grid = grid
	b.jog.hasGrid = true
	return b
}

// Build returns the assembled jog. It panics if a required field is
// missing.
func (b *SJogBuilder) Build() SJog {
	if !b.hasSrc {
		panic("jog: s-jog built without source geometry")
	}
	if !b.hasDst {
		panic("jog: s-jog built without destination geometry")
	}
	if !b.hasDir {
		panic("jog: s-jog built without a direction")
	}
	if !b.hasLayer {
		panic("jog: s-jog built without a layer")
	}
	if !b.hasWidth {
		b.jog.width = b.jog.src.Span(b.jog.dir.Other()).Length()
	}
	return b.jog
}

// ElbowJog is a right-angle bend from a rectangle edge to a coordinate
// pair: a first leg extending the edge outward to coord1, then a second leg
// running along the edge direction to coord2.
type ElbowJog struct {
	src    geom.Edge
	coord1 int64
	coord2 int64
	width2 int64
	layer  layout.LayerKey
}

// R1 returns the first leg, extending the source edge out to coord1.
func (j ElbowJog) R1() geom.Rect {
	return geom.RectFromDirSpans(j.src.NormDir(),
		geom.SpanFromPoint(j.src.Coord).AddPoint(j.coord1),
		j.src.Span)
}

// R2 returns the second leg, running from the first leg to coord2.
func (j ElbowJog) R2() geom.Rect {
	return geom.RectFromDirSpans(j.src.EdgeDir(),
		j.src.Span.AddPoint(j.coord2),
		geom.SpanWithPointAndLength(j.src.Side.Sign(), j.coord1, j.width2))
}

// Draw implements [layout.Drawer].
func (j ElbowJog) Draw(dst *layout.Group) {
	dst.AddRect(j.layer, j.R1())
	dst.AddRect(j.layer, j.R2())
}

// ElbowJogBuilder assembles an [ElbowJog].
type ElbowJogBuilder struct {
	jog       ElbowJog
	hasSrc    bool
	hasCoord1 bool
	hasCoord2 bool
	hasLayer  bool
	hasWidth2 bool
}

// NewElbowJog returns a builder for an [ElbowJog].
func NewElbowJog() *ElbowJogBuilder {
	return &ElbowJogBuilder{}
}

// Src sets the source edge. The edge's span gives the first leg its width
// and the edge's side gives the jog its initial direction.
func (b *ElbowJogBuilder) Src(src geom.Edge) *ElbowJogBuilder {
	b.jog.src = src
	b.hasSrc = true
	return b
}

// Coord1 sets the end coordinate of the first leg.
func (b *ElbowJogBuilder) Coord1(coord int64) *ElbowJogBuilder {
	b.jog.coord1 = coord
	b.hasCoord1 = true
	return b
}

// Coord2 sets the end coordinate of the second leg.
func (b *ElbowJogBuilder) Coord2(coord int64) *ElbowJogBuilder {
	b.jog.coord2 = coord
	b.hasCoord2 = true
	return b
}

// Width2 sets the width of the second leg. Defaults to the source edge
// length.
func (b *ElbowJogBuilder) Width2(width int64) *ElbowJogBuilder {
	b.jog.width2 = width
	b.hasWidth2 = true
	return b
}

// Layer sets the layer the jog is drawn on.
func (b *ElbowJogBuilder) Layer(layer layout.LayerKey) *ElbowJogBuilder {
	b.jog.layer = layer
	b.hasLayer = true
	return b
}

// Build returns the assembled jog. It panics if a required field is
// missing.
func (b *ElbowJogBuilder) Build() ElbowJog {
	if !b.hasSrc {
		panic("jog: elbow jog built without a source edge")
	}
	if !b.hasCoord1 {
		panic("jog: elbow jog built without a first-leg coordinate")
	}
	if !b.hasCoord2 {
		panic("jog: elbow jog built without a second-leg coordinate")
	}
	if !b.hasLayer {
		panic("jog: elbow jog built without a layer")
	}
	if !b.hasWidth2 {
		b.jog.width2 = b.jog.src.Span.Length()
	}
	return b.jog
}

// OffsetJog dodges a wire sideways: a leg extends the source rectangle
// along dir past a clearance gap, then a perpendicular bar carries the wire
// to the dst coordinate.
type OffsetJog struct {
	dir   geom.Dir
	sign  geom.Sign
	src   geom.Rect
	dst   int64
	layer layout.LayerKey
	space int64
}

func (j OffsetJog) line() int64 {
	return j.src.Span(j.dir.Other()).Length()
}

// p1 is the far edge of the dodge bar; p2 is its near edge.
func (j OffsetJog) p1() int64 {
	return j.src.Span(j.dir).Point(j.sign) + j.sign.Int()*(j.line()+j.space)
}

func (j OffsetJog) p2() int64 {
	return j.src.Span(j.dir).Point(j.sign) + j.sign.Int()*j.space
}

// R1 returns the leg extending the source rectangle along dir.
func (j OffsetJog) R1() geom.Rect {
	return geom.RectFromDirSpans(j.dir,
		j.src.Span(j.dir).AddPoint(j.p1()),
		j.src.Span(j.dir.Other()))
}

// R2 returns the perpendicular bar running out to dst.
func (j OffsetJog) R2() geom.Rect {
	return geom.RectFromDirSpans(j.dir,
		geom.NewSpan(j.p1(), j.p2()),
		j.src.Span(j.dir.Other()).AddPoint(j.dst))
}

// Draw implements [layout.Drawer].
func (j OffsetJog) Draw(dst *layout.Group) {
	dst.AddRect(j.layer, j.R1())
	dst.AddRect(j.layer, j.R2())
}

// OffsetJogBuilder assembles an [OffsetJog].
type OffsetJogBuilder struct {
	jog      OffsetJog
	hasDir   bool
	hasSign  bool
	hasSrc   bool
	hasDst   bool
	hasLayer bool
	hasSpace bool
}

// NewOffsetJog returns a builder for an [OffsetJog].
func NewOffsetJog() *OffsetJogBuilder {
	return &OffsetJogBuilder{}
}

// Dir sets the direction of the initial leg.
func (b *OffsetJogBuilder) Dir(dir geom.Dir) *OffsetJogBuilder {
	b.jog.dir = dir
	b.hasDir = true
	return b
}

// Sign sets the orientation of the initial leg along its direction.
func (b *OffsetJogBuilder) Sign(sign geom.Sign) *OffsetJogBuilder {
	b.jog.sign = sign
	b.hasSign = true
	return b
}

// Src sets the source rectangle.
func (b *OffsetJogBuilder) Src(src geom.Rect) *OffsetJogBuilder {
	b.jog.src = src
	b.hasSrc = true
	return b
}

// Dst sets the coordinate the dodge bar runs out to.
func (b *OffsetJogBuilder) Dst(dst int64) *OffsetJogBuilder {
	b.jog.dst = dst
	b.hasDst = true
	return b
}

// Space sets the clearance between the source rectangle and the dodge bar.
// Defaults to the source wire width.
func (b *OffsetJogBuilder) Space(space int64) *OffsetJogBuilder {
	b.jog.space = space
	b.hasSpace = true
	return b
}

// Layer sets the layer the jog is drawn on.
func (b *OffsetJogBuilder) Layer(layer layout.LayerKey) *OffsetJogBuilder {
	b.jog.layer = layer
	b.hasLayer = true
	return b
}

// Build returns the assembled jog. It panics if a required field is
// missing.
func (b *OffsetJogBuilder) Build() OffsetJog {
	if !b.hasDir {
		panic("jog: offset jog built without a direction")
	}
	if !b.hasSign {
		panic("jog: offset jog built without a sign")
	}
	if !b.hasSrc {
		panic("jog: offset jog built without source geometry")
	}
	if !b.hasDst {
		panic("jog: offset jog built without a destination coordinate")
	}
	if !b.hasLayer {
		panic("jog: offset jog built without a layer")
	}
	if !b.hasSpace {
		b.jog.space = b.jog.src.Span(b.jog.dir.Other()).Length()
	}
	return b.jog
}

// SimpleJog fans a parallel bundle of wires across a gap: every wire gets a
// stub reaching into the gap from each side and a bar joining the two
// stubs, so bundles with mismatched spans stay connected wire-for-wire.
type SimpleJog struct {
	dir    geom.Dir
	srcPos int64
	src    []geom.Span
	dst    []geom.Span
	line   int64
	space  int64
	layer  layout.LayerKey
}

// DstPos returns the coordinate along dir where the jog hands the bundle
// off, one line and two spaces past the source position.
func (j SimpleJog) DstPos() int64 {
	return j.srcPos + j.space + j.line + j.space
}

// Draw implements [layout.Drawer].
func (j SimpleJog) Draw(dst *layout.Group) {
	reach := geom.NewSpan(j.srcPos, j.srcPos+j.space+j.line)
	bar := geom.NewSpan(j.srcPos+j.space, j.srcPos+j.space+j.line)
	dstPos := j.DstPos()
	for i := range j.src {
		dst.AddRect(j.layer, geom.RectFromDirSpans(j.dir, reach, j.src[i]))
		dst.AddRect(j.layer, geom.RectFromDirSpans(j.dir,
			geom.NewSpan(dstPos-j.space-j.line, dstPos), j.dst[i]))
		dst.AddRect(j.layer, geom.RectFromDirSpans(j.dir, bar,
			geom.NewSpan(j.src[i].Start, j.dst[i].Stop)))
	}
}

// SimpleJogBuilder assembles a [SimpleJog].
type SimpleJogBuilder struct {
	jog       SimpleJog
	hasDir    bool
	hasSrcPos bool
	hasLine   bool
	hasLayer  bool
}

// NewSimpleJog returns a builder for a [SimpleJog].
func NewSimpleJog() *SimpleJogBuilder {
	return &SimpleJogBuilder{}
}

// Dir sets the direction the bundle travels in.
func (b *SimpleJogBuilder) Dir(dir geom.Dir) *SimpleJogBuilder {
	b.jog.dir = dir
	b.hasDir = true
	return b
}

// SrcPos sets the coordinate along dir where the source bundle ends.
func (b *SimpleJogBuilder) SrcPos(pos int64) *SimpleJogBuilder {
	b.jog.srcPos = pos
	b.hasSrcPos = true
	return b
}

// Src sets the cross spans of the source wires, in bundle order.
func (b *SimpleJogBuilder) Src(spans ...geom.Span) *SimpleJogBuilder {
	b.jog.src = append(b.jog.src[:0], spans...)
	return b
}

// Dst sets the cross spans of the destination wires, in bundle order.
func (b *SimpleJogBuilder) Dst(spans ...geom.Span) *SimpleJogBuilder {
	b.jog.dst = append(b.jog.dst[:0], spans...)
	return b
}

// LineAndSpace sets the width of the joining bar and the clearance on each
// side of it.
func (b *SimpleJogBuilder) LineAndSpace(line, space int64) *SimpleJogBuilder {
	b.jog.line = line
	b.jog.space = space
	b.hasLine = true
	return b
}

// Layer sets the layer the jog is drawn on.
func (b *SimpleJogBuilder) Layer(layer layout.LayerKey) *SimpleJogBuilder {
	b.jog.layer = layer
	b.hasLayer = true
	return b
}

// Build returns the assembled jog. It panics if a required field is missing
// or the wire lists disagree.
func (b *SimpleJogBuilder) Build() SimpleJog {
	if !b.hasDir {
		panic("jog: simple jog built without a direction")
	}
	if !b.hasSrcPos {
		panic("jog: simple jog built without a source position")
	}
	if !b.hasLine {
		panic("jog: simple jog built without line and space")
	}
	if !b.hasLayer {
		panic("jog: simple jog built without a layer")
	}
	if len(b.jog.src) == 0 {
		panic("jog: simple jog needs at least one wire")
	}
	if len(b.jog.src) != len(b.jog.dst) {
		panic("jog: simple jog source and destination wire counts differ")
	}
	return b.jog
}

var (
	_ layout.Drawer = SJog{}
	_ layout.Drawer = ElbowJog{}
	_ layout.Drawer = OffsetJog{}
	_ layout.Drawer = SimpleJog{}
)
