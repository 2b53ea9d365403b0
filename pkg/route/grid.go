package route

import (
	"context"
	"math"

	"github.com/tracelayer/gridroute/pkg/errors"
	"github.com/tracelayer/gridroute/pkg/geom"
	"github.com/tracelayer/gridroute/pkg/layout"
	"github.com/tracelayer/gridroute/pkg/route/abs"
	"github.com/tracelayer/gridroute/pkg/track"
	"github.com/tracelayer/gridroute/pkg/via"
)

// ExpandToGridStrategy selects which sides of an off-grid rectangle may move
// when aligning it to the routing grid.
type ExpandToGridStrategy struct {
	kind   expandKind
	side   geom.Side
	corner geom.Corner
}

type expandKind uint8

const (
	expandMinimum expandKind = iota
	expandAll
	expandSide
	expandCorner
)

// ExpandMinimum tries every pair of perpendicular expansion sides and keeps
// the candidate with the smallest area.
var ExpandMinimum = ExpandToGridStrategy{kind: expandMinimum}

// ExpandAll pushes all four sides outward to the nearest enclosing tracks.
var ExpandAll = ExpandToGridStrategy{kind: expandAll}

// ExpandSide lands the given side on the nearest track that does not cross
// it, then lets the two perpendicular sides move as little as possible.
func ExpandSide(s geom.Side) ExpandToGridStrategy {
	return ExpandToGridStrategy{kind: expandSide, side: s}
}

// ExpandCorner lands both sides meeting at the given corner on their nearest
// non-crossing tracks.
func ExpandCorner(c geom.Corner) ExpandToGridStrategy {
	return ExpandToGridStrategy{kind: expandCorner, corner: c}
}

// JogToGrid describes a one- or two-leg jog that lands a rectangle on the
// routing grid. Build one with [NewJogToGrid].
type JogToGrid struct {
	layer        layout.LayerKey
	rect         geom.Rect
	dstLayer     layout.LayerKey
	width        int64
	firstDir     geom.Side
	hasFirstDir  bool
	secondDir    geom.Side
	hasSecondDir bool
	extendFirst  int64
	extendSecond int64
}

// JogToGridBuilder assembles a [JogToGrid]. Layer, rect, and width are
// required; the destination layer defaults to the geometry layer.
type JogToGridBuilder struct {
	jog      JogToGrid
	hasLayer bool
	hasRect  bool
	hasWidth bool
	hasDst   bool
}

// NewJogToGrid returns a builder for a [JogToGrid].
func NewJogToGrid() *JogToGridBuilder {
	return &JogToGridBuilder{}
}

// Layer sets the layer the jog geometry is drawn on.
func (b *JogToGridBuilder) Layer(layer layout.LayerKey) *JogToGridBuilder {
	b.jog.layer = layer
	b.hasLayer = true
	return b
}

// Rect sets the off-grid geometry to bring onto the grid.
func (b *JogToGridBuilder) Rect(rect geom.Rect) *JogToGridBuilder {
	b.jog.rect = rect
	b.hasRect = true
	return b
}

// DstLayer sets the layer whose track grid the jog should land on.
func (b *JogToGridBuilder) DstLayer(layer layout.LayerKey) *JogToGridBuilder {
	b.jog.dstLayer = layer
	b.hasDst = true
	return b
}

// Width sets the wire width of the jog legs.
func (b *JogToGridBuilder) Width(width int64) *JogToGridBuilder {
	b.jog.width = width
	b.hasWidth = true
	return b
}

// FirstDir pins the side the first jog leg extends toward. Without it, all
// four sides are tried and the shortest jog wins.
func (b *JogToGridBuilder) FirstDir(side geom.Side) *JogToGridBuilder {
	b.jog.firstDir = side
	b.jog.hasFirstDir = true
	return b
}

// SecondDir pins the side the second jog leg extends toward. It must be
// perpendicular to the first direction and is ignored without one.
func (b *JogToGridBuilder) SecondDir(side geom.Side) *JogToGridBuilder {
	b.jog.secondDir = side
	b.jog.hasSecondDir = true
	return b
}

// ExtendFirst moves the first leg's landing track outward by the given
// number of grid tracks.
func (b *JogToGridBuilder) ExtendFirst(amount int64) *JogToGridBuilder {
	b.jog.extendFirst = amount
	return b
}

// ExtendSecond moves the second leg's landing track outward by the given
// number of grid tracks.
func (b *JogToGridBuilder) ExtendSecond(amount int64) *JogToGridBuilder {
	b.jog.extendSecond = amount
	return b
}

// Build returns the assembled jog. It panics if a required field is missing
// or the pinned directions are not perpendicular.
func (b *JogToGridBuilder) Build() JogToGrid {
	if !b.hasLayer {
		panic("route: jog built without a layer")
	}
	if !b.hasRect {
		panic("route: jog built without geometry")
	}
	if !b.hasWidth {
		panic("route: jog built without a width")
	}
	jog := b.jog
	if !b.hasDst {
		jog.dstLayer = jog.layer
	}
	if jog.hasFirstDir && jog.hasSecondDir &&
		jog.firstDir.CoordDir() == jog.secondDir.CoordDir() {
		panic("route: jog directions must be perpendicular")
	}
	return jog
}

// OffGridBusStrategy selects how an off-grid bus reaches the grid.
type OffGridBusStrategy struct {
	layer layout.LayerKey
	perp  bool
}

// BusParallel lands the bus on grid tracks of its own layer, jogging each
// wire sideways as needed.
var BusParallel = OffGridBusStrategy{}

// BusPerpendicular lands the bus on grid tracks of the given crossing layer,
// dropping a via stack on every wire.
func BusPerpendicular(layer layout.LayerKey) OffGridBusStrategy {
	return OffGridBusStrategy{layer: layer, perp: true}
}

// OffGridBusTranslation describes a bus of uniformly spaced off-grid wires
// and the edge at which they should be translated onto the grid. Build one
// with [NewOffGridBusTranslation].
type OffGridBusTranslation struct {
	strategy OffGridBusStrategy
	layer    layout.LayerKey
	// output is the bus edge to translate. For [BusParallel] it must run in
	// the direction of the bus wires. For [BusPerpendicular] it must run in
	// the direction of the output wires and be centered where the output bus
	// should be centered.
	output      geom.Edge
	line        int64
	space       int64
	start       int64
	n           int64
	shift       int64
	outputPitch int64
}

// OutputSpan returns the extent of the bus across all of its wires.
func (b OffGridBusTranslation) OutputSpan() geom.Span {
	return geom.SpanWithStartAndLength(b.start, b.line+(b.line+b.space)*(b.n-1))
}

// OffGridBusTranslationBuilder assembles an [OffGridBusTranslation].
// Strategy, layer, output edge, line and space, start, and wire count are
// required.
type OffGridBusTranslationBuilder struct {
	bus         OffGridBusTranslation
	hasStrategy bool
	hasLayer    bool
	hasOutput   bool
	hasLine     bool
	hasStart    bool
	hasN        bool
}

// NewOffGridBusTranslation returns a builder for an [OffGridBusTranslation].
func NewOffGridBusTranslation() *OffGridBusTranslationBuilder {
	b := &OffGridBusTranslationBuilder{}
	b.bus.outputPitch = 1
	return b
}

// Strategy sets the translation strategy.
func (b *OffGridBusTranslationBuilder) Strategy(s OffGridBusStrategy) *OffGridBusTranslationBuilder {
	b.bus.strategy = s
	b.hasStrategy = true
	return b
}

// Layer sets the layer the bus geometry lives on.
func (b *OffGridBusTranslationBuilder) Layer(layer layout.LayerKey) *OffGridBusTranslationBuilder {
	b.bus.layer = layer
	b.hasLayer = true
	return b
}

// Output sets the bus edge to translate onto the grid.
func (b *OffGridBusTranslationBuilder) Output(output geom.Edge) *OffGridBusTranslationBuilder {
	b.bus.output = output
	b.hasOutput = true
	return b
}

// LineAndSpace sets the wire width and wire-to-wire spacing of the bus.
func (b *OffGridBusTranslationBuilder) LineAndSpace(line, space int64) *OffGridBusTranslationBuilder {
	b.bus.line = line
	b.bus.space = space
	b.hasLine = true
	return b
}

// Start sets the coordinate of the first bus wire's near edge.
func (b *OffGridBusTranslationBuilder) Start(start int64) *OffGridBusTranslationBuilder {
	b.bus.start = start
	b.hasStart = true
	return b
}

// N sets the number of wires in the bus.
func (b *OffGridBusTranslationBuilder) N(n int64) *OffGridBusTranslationBuilder {
	b.bus.n = n
	b.hasN = true
	return b
}

// Shift offsets the selected output tracks by the given number of grid
// tracks.
func (b *OffGridBusTranslationBuilder) Shift(shift int64) *OffGridBusTranslationBuilder {
	b.bus.shift = shift
	return b
}

// OutputPitch sets the number of grid tracks between adjacent output wires.
// The default of 1 places output wires on adjacent tracks.
func (b *OffGridBusTranslationBuilder) OutputPitch(pitch int64) *OffGridBusTranslationBuilder {
	b.bus.outputPitch = pitch
	return b
}

// Build returns the assembled translation. It panics if a required field is
// missing or the bus has no wires.
func (b *OffGridBusTranslationBuilder) Build() OffGridBusTranslation {
	if !b.hasStrategy {
		panic("route: bus translation built without a strategy")
	}
	if !b.hasLayer {
		panic("route: bus translation built without a layer")
	}
	if !b.hasOutput {
		panic("route: bus translation built without an output edge")
	}
	if !b.hasLine {
		panic("route: bus translation built without line and space")
	}
	if !b.hasStart {
		panic("route: bus translation built without a start coordinate")
	}
	if !b.hasN {
		panic("route: bus translation built without a wire count")
	}
	if b.bus.n < 1 {
		panic("route: bus translation needs at least one wire")
	}
	return b.bus
}

// OnGridBus is the result of translating an off-grid bus onto the grid.
type OnGridBus struct {
	// Ports holds one on-grid port rectangle per bus wire, in wire order.
	Ports []geom.Rect
}

// trackSpan returns the physical span of the given abstract track.
func (r *Router) trackSpan(layer abs.Layer, coord int) geom.Span {
	gridSpace := r.inner.LayerInfo(layer).GridSpace()
	return r.layers[layer].tracks.Index(int64(coord / gridSpace))
}

// gridTrack returns the base track generator whose tracks run in the given
// direction.
func (r *Router) gridTrack(d geom.Dir) track.UniformTracks {
	if d == geom.Horiz {
		return r.gridHTracks
	}
	return r.gridVTracks
}

// shrinkToPosSpan returns the largest abstract span lying entirely inside
// rect.
func (r *Router) shrinkToPosSpan(layer layout.LayerKey, rect geom.Rect) abs.PosSpan {
	return abs.PosSpan{
		Layer: r.absLayer(layer),
		TxMin: clampTrack(r.gridVTracks.TrackWithLoc(track.StartsAfter, rect.Left())),
		TxMax: clampTrack(r.gridVTracks.TrackWithLoc(track.EndsBefore, rect.Right())),
		TyMin: clampTrack(r.gridHTracks.TrackWithLoc(track.StartsAfter, rect.Bottom())),
		TyMax: clampTrack(r.gridHTracks.TrackWithLoc(track.EndsBefore, rect.Top())),
	}
}

// expandToPosSpan returns the smallest abstract span fully containing rect.
func (r *Router) expandToPosSpan(layer layout.LayerKey, rect geom.Rect) abs.PosSpan {
	return abs.PosSpan{
		Layer: r.absLayer(layer),
		TxMin: clampTrack(r.gridVTracks.TrackWithLoc(track.StartsBefore, rect.Left())),
		TxMax: clampTrack(r.gridVTracks.TrackWithLoc(track.EndsAfter, rect.Right())),
		TyMin: clampTrack(r.gridHTracks.TrackWithLoc(track.StartsBefore, rect.Bottom())),
		TyMax: clampTrack(r.gridHTracks.TrackWithLoc(track.EndsAfter, rect.Top())),
	}
}

func clampTrack(idx int64) int {
	if idx < 0 {
		return 0
	}
	return int(idx)
}

// moveToTrackIndex returns the base grid track nearest coord on the far side
// named by side.
func (r *Router) moveToTrackIndex(coord int64, side geom.Side) int64 {
	grid := r.gridVTracks
	if side.CoordDir() == geom.Vert {
		grid = r.gridHTracks
	}
	if side.Sign() == geom.Pos {
		return grid.TrackWithLoc(track.EndsAfter, coord)
	}
	return grid.TrackWithLoc(track.StartsBefore, coord)
}

// offGridBusOutSpan returns the on-grid output track span for wire i of the
// bus, centering the output wires on the bus extent.
func (r *Router) offGridBusOutSpan(bus OffGridBusTranslation, i int64) geom.Span {
	tracks := r.TrackInfo(bus.layer).tracks
	centerTrack := tracks.TrackAt(bus.OutputSpan().Center())
	return tracks.Index(centerTrack - (bus.n/2-1-i)*bus.outputPitch + bus.shift)
}

// ExpandToGrid returns rect expanded onto the base routing grid using the
// given strategy.
func (r *Router) ExpandToGrid(rect geom.Rect, strategy ExpandToGridStrategy) geom.Rect {
	return r.expandToGridInner(rect, strategy, r.gridVTracks, r.gridHTracks)
}

// ExpandToLayerGrid returns rect expanded onto the grid of the given layer:
// the layer's own tracks bound the expansion along the layer direction, the
// base grid bounds it across.
func (r *Router) ExpandToLayerGrid(rect geom.Rect, layer layout.LayerKey, strategy ExpandToGridStrategy) geom.Rect {
	ti := r.TrackInfo(layer)
	if ti.dir == geom.Horiz {
		return r.expandToGridInner(rect, strategy, r.gridVTracks, ti.tracks)
	}
	return r.expandToGridInner(rect, strategy, ti.tracks, r.gridHTracks)
}

func (r *Router) expandToGridInner(rect geom.Rect, strategy ExpandToGridStrategy, xGrid, yGrid track.UniformTracks) geom.Rect {
	if strategy.kind == expandAll {
		txMin := xGrid.TrackWithLoc(track.StartsBefore, rect.Left())
		txMax := xGrid.TrackWithLoc(track.EndsAfter, rect.Right())
		tyMin := yGrid.TrackWithLoc(track.StartsBefore, rect.Bottom())
		tyMax := yGrid.TrackWithLoc(track.EndsAfter, rect.Top())
		return geom.RectFromSpans(
			xGrid.Index(txMin).Union(xGrid.Index(txMax)),
			yGrid.Index(tyMin).Union(yGrid.Index(tyMax)),
		)
	}

	// Tracks that may straddle the rectangle's sides.
	txMin := xGrid.TrackWithLoc(track.EndsAfter, rect.Left())
	txMax := xGrid.TrackWithLoc(track.StartsBefore, rect.Right())
	tyMin := yGrid.TrackWithLoc(track.EndsAfter, rect.Bottom())
	tyMax := yGrid.TrackWithLoc(track.StartsBefore, rect.Top())

	// Tracks guaranteed not to straddle the rectangle's sides.
	trackRight := xGrid.TrackWithLoc(track.StartsAfter, rect.Left())
	trackLeft := xGrid.TrackWithLoc(track.EndsBefore, rect.Right())
	trackTop := yGrid.TrackWithLoc(track.StartsAfter, rect.Bottom())
	trackBot := yGrid.TrackWithLoc(track.EndsBefore, rect.Top())

	// Non-straddling tracks only win when fully enclosed by the rectangle.
	if trackRight <= trackLeft {
		txMin, txMax = trackRight, trackLeft
	}
	if trackTop <= trackBot {
		tyMin, tyMax = trackTop, trackBot
	}

	// When a track is fully enclosed the two constrained indices cross; swap
	// them back so left and bottom are truly the leftmost and bottommost.
	if trackRight < trackLeft {
		trackRight, trackLeft = trackLeft, trackRight
	}
	if trackTop < trackBot {
		trackTop, trackBot = trackBot, trackTop
	}

	tracks := geom.Sides[geom.Span]{
		Top:   yGrid.Index(tyMax),
		Right: xGrid.Index(txMax),
		Bot:   yGrid.Index(tyMin),
		Left:  xGrid.Index(txMin),
	}
	constrained := geom.Sides[geom.Span]{
		Top:   yGrid.Index(trackTop),
		Right: xGrid.Index(trackRight),
		Bot:   yGrid.Index(trackBot),
		Left:  xGrid.Index(trackLeft),
	}

	var firstDirs []geom.Side
	var secondDirs [][]geom.Side
	switch strategy.kind {
	case expandSide:
		s := strategy.side
		tracks.Set(s, constrained.Get(s))
		second := geom.SidesOf(s.EdgeDir())
		firstDirs = []geom.Side{s}
		secondDirs = [][]geom.Side{second[:]}
	case expandCorner:
		hs := strategy.corner.Side(geom.Horiz)
		vs := strategy.corner.Side(geom.Vert)
		tracks.Set(hs, constrained.Get(hs))
		tracks.Set(vs, constrained.Get(vs))
		firstDirs = []geom.Side{hs}
		secondDirs = [][]geom.Side{{vs}}
	default:
		horiz := geom.SidesOf(geom.Horiz)
		vert := geom.SidesOf(geom.Vert)
		firstDirs = []geom.Side{geom.Top, geom.Bot, geom.Left, geom.Right}
		secondDirs = [][]geom.Side{horiz[:], horiz[:], vert[:], vert[:]}
	}

	var best geom.Rect
	bestArea := int64(math.MaxInt64)
	for i, firstDir := range firstDirs {
		for _, secondDir := range secondDirs[i] {
			cand := geom.RectFromDirSpans(firstDir.CoordDir(),
				tracks.Get(firstDir).Union(rect.Span(firstDir.CoordDir())),
				tracks.Get(secondDir).Union(rect.Span(secondDir.CoordDir())))
			if cand.Area() < bestArea {
				best = cand
				bestArea = cand.Area()
			}
		}
	}
	return best
}

// RegisterJogToGrid draws the shortest jog landing the jog's rectangle on
// the destination layer's grid and returns the resulting on-grid port. If
// the rectangle already covers an on-grid target no legs are drawn.
func (r *Router) RegisterJogToGrid(jog JogToGrid) geom.Rect {
	ti := r.TrackInfo(jog.dstLayer)
	xGrid, yGrid := r.gridVTracks, r.gridHTracks
	if ti.dir == geom.Horiz {
		yGrid = ti.tracks
	} else {
		xGrid = ti.tracks
	}

	trackRight := xGrid.TrackWithLoc(track.StartsAfter, jog.rect.Left())
	trackLeft := xGrid.TrackWithLoc(track.EndsBefore, jog.rect.Right())
	trackTop := yGrid.TrackWithLoc(track.StartsAfter, jog.rect.Bottom())
	trackBot := yGrid.TrackWithLoc(track.EndsBefore, jog.rect.Top())

	if trackRight < trackLeft {
		trackRight, trackLeft = trackLeft, trackRight
	}
	if trackTop < trackBot {
		trackTop, trackBot = trackBot, trackTop
	}

	trackIdx := geom.Sides[int64]{
		Top:   trackTop,
		Right: trackRight,
		Bot:   trackBot,
		Left:  trackLeft,
	}

	var firstDirs []geom.Side
	var secondDirs [][]geom.Side
	if jog.hasFirstDir {
		trackIdx.Set(jog.firstDir, trackIdx.Get(jog.firstDir)+jog.extendFirst)
		firstDirs = []geom.Side{jog.firstDir}
		if jog.hasSecondDir {
			trackIdx.Set(jog.secondDir, trackIdx.Get(jog.secondDir)+jog.extendSecond)
			secondDirs = [][]geom.Side{{jog.secondDir}}
		} else {
			second := geom.SidesOf(jog.firstDir.EdgeDir())
			secondDirs = [][]geom.Side{second[:]}
		}
	} else {
		horiz := geom.SidesOf(geom.Horiz)
		vert := geom.SidesOf(geom.Vert)
		firstDirs = []geom.Side{geom.Top, geom.Bot, geom.Left, geom.Right}
		secondDirs = [][]geom.Side{horiz[:], horiz[:], vert[:], vert[:]}
	}

	tracks := geom.Sides[geom.Span]{}
	for _, s := range []geom.Side{geom.Top, geom.Right, geom.Bot, geom.Left} {
		if s.CoordDir() == geom.Horiz {
			tracks.Set(s, xGrid.Index(trackIdx.Get(s)))
		} else {
			tracks.Set(s, yGrid.Index(trackIdx.Get(s)))
		}
	}

	var bestLegs []geom.Rect
	var bestTarget geom.Rect
	bestLen := int64(math.MaxInt64)
	for i, firstDir := range firstDirs {
		for _, secondDir := range secondDirs[i] {
			target := geom.RectFromDirSpans(firstDir.CoordDir(),
				tracks.Get(firstDir), tracks.Get(secondDir))

			needsFirst := !jog.rect.Span(firstDir.CoordDir()).
				Contains(target.Span(firstDir.CoordDir()))
			needsSecond := !jog.rect.Span(secondDir.CoordDir()).
				Contains(target.Span(secondDir.CoordDir()))

			var legs []geom.Rect
			var length int64
			switch {
			case needsFirst && needsSecond:
				srcSpan := geom.SpanWithPointAndLength(
					secondDir.Sign(), jog.rect.Side(secondDir), jog.width)
				r1 := geom.RectFromDirSpans(firstDir.EdgeDir(), srcSpan,
					target.Span(firstDir.CoordDir()).AddPoint(jog.rect.Side(firstDir)))
				r2 := geom.RectFromDirSpans(secondDir.EdgeDir(),
					target.Span(secondDir.EdgeDir()),
					target.Span(secondDir.CoordDir()).AddPoint(srcSpan.Point(secondDir.Sign().Other())))
				legs = []geom.Rect{r1, r2}
				length = r1.Length(firstDir.CoordDir()) + r2.Length(secondDir.CoordDir())
			case needsFirst:
				r1 := geom.RectFromDirSpans(firstDir.EdgeDir(),
					target.Span(firstDir.EdgeDir()),
					target.Span(firstDir.CoordDir()).AddPoint(jog.rect.Side(firstDir)))
				legs = []geom.Rect{r1}
				length = r1.Length(firstDir.CoordDir())
			case needsSecond:
				r2 := geom.RectFromDirSpans(secondDir.EdgeDir(),
					target.Span(secondDir.EdgeDir()),
					target.Span(secondDir.CoordDir()).AddPoint(jog.rect.Side(secondDir)))
				legs = []geom.Rect{r2}
				length = r2.Length(firstDir.CoordDir())
			default:
				return target
			}

			if length < bestLen {
				bestLegs = legs
				bestTarget = target
				bestLen = length
			}
		}
	}

	for _, leg := range bestLegs {
		r.group.AddRect(jog.layer, leg)
	}
	r.group.AddRect(jog.layer, bestTarget)
	return bestTarget
}

// RegisterOffGridBusTranslation draws the geometry fanning an off-grid bus
// out onto the grid, blocks the grid cells the fanout covers, and returns
// the on-grid ports.
func (r *Router) RegisterOffGridBusTranslation(ctx context.Context, bus OffGridBusTranslation) (OnGridBus, error) {
	inTracks := track.UniformTracks{
		Line:  bus.line,
		Space: bus.space,
		Start: bus.start,
		Sign:  geom.Pos,
	}
	if bus.strategy.perp {
		return r.perpendicularBusFanout(ctx, bus, inTracks)
	}
	return r.parallelBusFanout(bus, inTracks), nil
}

// parallelBusFanout jogs each wire sideways on the bus layer: a stub out of
// the bus, a crossing hop on a dedicated perpendicular track, and an on-grid
// landing reaching past the last perpendicular grid track.
func (r *Router) parallelBusFanout(bus OffGridBusTranslation, inTracks track.UniformTracks) OnGridBus {
	dir := bus.output.NormDir()
	start := bus.output.Coord
	sign := bus.output.Side.Sign()

	perpTracks := track.UniformTracks{
		Line:  bus.line,
		Space: bus.space,
		Start: start,
		Sign:  sign,
	}

	// Wires whose input track sits below their output track jog upward and
	// claim perpendicular tracks from the top of the stack; the rest claim
	// from the bottom. This keeps the hops from crossing each other.
	up := int64(0)
	for i := int64(0); i < bus.n; i++ {
		if inTracks.Index(i).Start < r.offGridBusOutSpan(bus, i).Start {
			up++
		}
	}

	maxPerpIndex := max(up, bus.n-up) - 1
	maxPerpTrack := perpTracks.Index(maxPerpIndex)
	lastPerpGridTrack := r.gridTrack(dir.Other()).
		Index(r.moveToTrackIndex(maxPerpTrack.Point(sign), bus.output.Side))

	down := int64(0)
	ports := make([]geom.Rect, 0, bus.n)
	rects := make([]geom.Rect, 0, 3*bus.n)
	for i := int64(0); i < bus.n; i++ {
		inSpan := inTracks.Index(i)
		outSpan := r.offGridBusOutSpan(bus, i)
		perpSpan := outSpan.Union(inSpan)

		var perpIndex int64
		if inSpan.Start < outSpan.Start {
			up--
			if inSpan.Stop > outSpan.Stop {
				down++
			}
			perpIndex = up
		} else {
			perpIndex = down
			down++
		}
		perpTrack := perpTracks.Index(perpIndex)

		rects = append(rects,
			geom.RectFromDirSpans(dir, perpTrack, perpSpan),
			geom.RectFromDirSpans(dir, geom.NewSpan(start, perpTrack.Point(sign)), inSpan))

		landing := geom.RectFromDirSpans(dir, perpTrack.Union(lastPerpGridTrack), outSpan)
		rects = append(rects, landing)
		ports = append(ports, landing)
	}

	bbox := rects[0]
	for _, rc := range rects[1:] {
		bbox = bbox.Union(rc)
	}
	r.Block(bus.layer, bbox)

	for _, rc := range rects {
		r.group.AddRect(bus.layer, rc)
	}
	return OnGridBus{Ports: ports}
}

// perpendicularBusFanout lands each wire on a track of the crossing layer
// with a via stack where the two layers overlap.
func (r *Router) perpendicularBusFanout(ctx context.Context, bus OffGridBusTranslation, inTracks track.UniformTracks) (OnGridBus, error) {
	outLayer := bus.strategy.layer
	if r.vias == nil {
		return OnGridBus{}, errors.New(errors.ErrCodeInternal,
			"bus translation crosses from %q to %q but no via generator is configured",
			bus.layer, outLayer)
	}

	outputSign := bus.output.Side.Sign()
	parallelGrid := r.gridTrack(bus.output.EdgeDir())
	loc := track.EndsAfter
	if outputSign == geom.Neg {
		loc = track.StartsBefore
	}
	outputEdge := parallelGrid.Index(parallelGrid.TrackWithLoc(loc, bus.output.Coord))

	outTracks := r.TrackInfo(outLayer).tracks
	centerTrack := outTracks.TrackAt(bus.output.Span.Center())

	busLayerIdx := r.layerIdx(bus.layer)
	outLayerIdx := r.layerIdx(outLayer)

	ports := make([]geom.Rect, 0, bus.n)
	var vias []*via.Instance
	for i := int64(0); i < bus.n; i++ {
		inSpan := inTracks.Index(i)
		outSpan := outTracks.Index(centerTrack - (bus.n/2-1-i)*bus.outputPitch + bus.shift)

		port := geom.RectFromDirSpans(bus.output.EdgeDir(), outSpan, inSpan.Union(outputEdge))
		ports = append(ports, port)

		src := geom.RectFromDirSpans(bus.output.EdgeDir(), outSpan, inSpan)
		// Overlong source geometry on the bus side biases the via enclosures
		// to run along the bus direction.
		srcExpanded := geom.RectFromDirSpans(bus.output.EdgeDir(),
			outSpan.ExpandAll(outSpan.Length()*10), inSpan)

		bot, top := busLayerIdx, outLayerIdx
		botSrc, topSrc := srcExpanded, src
		if busLayerIdx > outLayerIdx {
			bot, top = outLayerIdx, busLayerIdx
			botSrc, topSrc = src, srcExpanded
		}

		for j := bot; j < top; j++ {
			botGeom, topGeom := src, src
			if j == bot {
				botGeom = botSrc
			}
			if j == top-1 {
				topGeom = topSrc
			}
			params := via.NewParams().
				Layers(r.layers[j].layer, r.layers[j+1].layer).
				Geometry(botGeom, topGeom).
				Build()
			inst, err := r.vias.MakeVia(ctx, params)
			if err != nil {
				return OnGridBus{}, err
			}
			vias = append(vias, inst)
		}
	}

	for _, v := range vias {
		v.Draw(&r.group)
	}
	for _, port := range ports {
		r.Block(outLayer, port)
		r.group.AddRect(outLayer, port)
	}
	return OnGridBus{Ports: ports}, nil
}
