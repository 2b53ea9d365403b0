package via

import (
	"context"
	"fmt"
	"math"

	"github.com/tracelayer/gridroute/pkg/errors"
	"github.com/tracelayer/gridroute/pkg/geom"
	"github.com/tracelayer/gridroute/pkg/layout"
)

// Rule holds the technology constraints for vias between one pair of layers.
//
// All lengths are in layout database units. Enclosure comes in two flavors:
// Enclosure applies on all four sides, EnclosureOne is the larger enclosure a
// process typically requires in one direction only. The generator chooses
// which direction receives the larger enclosure unless the caller pins it
// with an extension hint.
type Rule struct {
	// Bot, Top and Cut name the connected layers and the cut layer drawn
	// between them.
	Bot string `json:"bot" toml:"bot"`
	Top string `json:"top" toml:"top"`
	Cut string `json:"cut" toml:"cut"`

	// Size is the width and height of a single cut; Space is the minimum
	// spacing between adjacent cuts in an array.
	Size  int64 `json:"size" toml:"size"`
	Space int64 `json:"space" toml:"space"`

	// BotEnclosure and BotEnclosureOne are the bottom layer enclosures;
	// TopEnclosure and TopEnclosureOne the top layer ones.
	BotEnclosure    int64 `json:"bot_enclosure" toml:"bot_enclosure"`
	BotEnclosureOne int64 `json:"bot_enclosure_one" toml:"bot_enclosure_one"`
	TopEnclosure    int64 `json:"top_enclosure" toml:"top_enclosure"`
	TopEnclosureOne int64 `json:"top_enclosure_one" toml:"top_enclosure_one"`
}

// Validate checks that the rule is internally consistent.
func (r Rule) Validate() error {
	if err := errors.ValidateLayerName(r.Bot); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidTech, err, "invalid via rule bottom layer")
	}
	if err := errors.ValidateLayerName(r.Top); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidTech, err, "invalid via rule top layer")
	}
	if err := errors.ValidateLayerName(r.Cut); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidTech, err, "invalid via rule cut layer")
	}
	if r.Bot == r.Top {
		return errors.New(errors.ErrCodeInvalidTech, "via rule connects layer %q to itself", r.Bot)
	}
	if r.Size <= 0 {
		return errors.New(errors.ErrCodeInvalidTech,
			"via rule %s-%s: cut size must be positive", r.Bot, r.Top)
	}
	if r.Space < 0 {
		return errors.New(errors.ErrCodeInvalidTech,
			"via rule %s-%s: cut spacing must be non-negative", r.Bot, r.Top)
	}
	for _, enc := range []int64{r.BotEnclosure, r.BotEnclosureOne, r.TopEnclosure, r.TopEnclosureOne} {
		if enc < 0 {
			return errors.New(errors.ErrCodeInvalidTech,
				"via rule %s-%s: enclosures must be non-negative", r.Bot, r.Top)
		}
	}
	return nil
}

type layerPair struct {
	bot, top string
}

// Generator draws via arrays according to a set of technology rules.
//
// For each request it tiles as many cuts as fit inside the overlap of the
// two metal rectangles and their enclosures, trying both orientations of the
// one-directional enclosure on each layer and keeping the candidate with the
// most cuts. Ties are broken by the smallest metal area spilled outside the
// provided geometry.
type Generator struct {
	rules map[layerPair]Rule
	grid  int64
}

// NewGenerator builds a [Generator] from technology via rules. grid is the
// layout database placement grid; all via geometry is aligned to it.
func NewGenerator(rules []Rule, grid int64) (*Generator, error) {
	if grid <= 0 {
		return nil, errors.New(errors.ErrCodeInvalidTech, "layout grid must be positive")
	}
	g := &Generator{
		rules: make(map[layerPair]Rule, len(rules)),
		grid:  grid,
	}
	for _, r := range rules {
		if err := r.Validate(); err != nil {
			return nil, err
		}
		key := layerPair{bot: r.Bot, top: r.Top}
		if _, ok := g.rules[key]; ok {
			return nil, errors.New(errors.ErrCodeInvalidTech,
				"duplicate via rule for %s-%s", r.Bot, r.Top)
		}
		g.rules[key] = r
	}
	return g, nil
}

// Grid returns the layout database placement grid.
func (g *Generator) Grid() int64 { return g.grid }

// Rule returns the rule connecting the two layers, if one exists.
func (g *Generator) Rule(bot, top layout.LayerKey) (Rule, bool) {
	r, ok := g.rules[layerPair{bot: bot.Name, top: top.Name}]
	return r, ok
}

// extDims is a per-direction enclosure amount.
type extDims struct {
	w, h int64
}

func (e extDims) dim(d geom.Dir) int64 {
	if d == geom.Horiz {
		return e.w
	}
	return e.h
}

func (e extDims) transpose() extDims {
	return extDims{w: e.h, h: e.w}
}

// extensions derives the enclosure dimensions and whether their orientation
// is pinned, for one layer of the request.
func extensions(enc, encOne int64, pinned bool, d geom.Dir) (extDims, bool) {
	if !pinned {
		return extDims{w: enc, h: encOne}, false
	}
	if d == geom.Horiz {
		return extDims{w: encOne, h: enc}, true
	}
	return extDims{w: enc, h: encOne}, true
}

// MakeVia draws the largest via array connecting the two layers described by
// params. It fails with [errors.ErrCodeViaNotFound] if no rule connects the
// layers, and with [errors.ErrCodeViaNoFit] if the geometry cannot admit a
// via under the requested expansion mode.
func (g *Generator) MakeVia(ctx context.Context, params Params) (*Instance, error) {
	rule, ok := g.Rule(params.Bot, params.Top)
	if !ok {
		return nil, errors.New(errors.ErrCodeViaNotFound,
			"no via rule connects %q and %q", params.Bot, params.Top)
	}

	ov, ok := params.BotRect.Intersection(params.TopRect)
	if !ok {
		return nil, errors.New(errors.ErrCodeViaNoFit,
			"geometry on %q and %q does not overlap", params.Bot, params.Top)
	}

	botExt, botFixed := extensions(rule.BotEnclosure, rule.BotEnclosureOne,
		params.HasBotExtension, params.BotExtension)
	topExt, topFixed := extensions(rule.TopEnclosure, rule.TopEnclosureOne,
		params.HasTopExtension, params.TopExtension)

	// Try every allowed orientation of the one-directional enclosures and
	// keep the candidate with the most cuts, breaking ties by the least
	// metal area spilled outside the provided geometry. Later candidates
	// win exact ties.
	var best *candidate
	maxCuts := 0
	minDiff := int64(math.MaxInt64)
	for _, tt := range []bool{false, true} {
		for _, tb := range []bool{false, true} {
			if (topFixed && tt) || (botFixed && tb) {
				continue
			}
			be, te := botExt, topExt
			if tt {
				te = te.transpose()
			}
			if tb {
				be = be.transpose()
			}

			nx, ny := selectCuts(rule, be, te, params, ov)
			if nx < 1 || ny < 1 {
				continue
			}
			if nx*ny < maxCuts {
				continue
			}
			cand := place(rule, be, te, nx, ny, ov, g.grid)
			diff := cand.spill(params.BotRect, params.TopRect)
			if nx*ny > maxCuts || diff <= minDiff {
				minDiff = diff
				best = cand
			}
			maxCuts = nx * ny
		}
	}
	if best == nil {
		return nil, errors.New(errors.ErrCodeViaNoFit,
			"via between %q and %q does not fit within the provided geometry",
			params.Bot, params.Top)
	}

	group := &layout.Group{}
	group.AddRect(params.Bot, best.bot)
	group.AddRect(params.Top, best.top)
	cut := layout.Layer(rule.Cut)
	for _, c := range best.cuts {
		group.AddRect(cut, c)
	}
	return &Instance{
		name:  fmt.Sprintf("via_%s_%s", rule.Bot, rule.Top),
		bot:   params.Bot,
		top:   params.Top,
		cut:   cut,
		nx:    best.nx,
		ny:    best.ny,
		group: group,
	}, nil
}

// maxCutsMetal returns how many cuts fit along dir inside one metal
// rectangle after subtracting its enclosure on both sides.
func maxCutsMetal(rule Rule, metal geom.Rect, ext extDims, d geom.Dir) int {
	pitch := rule.Size + rule.Space
	n := (metal.Length(d) + rule.Space - 2*ext.dim(d)) / pitch
	if n < 1 {
		return 0
	}
	return int(n)
}

// maxCutsOverlap returns how many cuts fit along dir inside the overlap of
// the two metal rectangles.
func maxCutsOverlap(rule Rule, ov geom.Rect, d geom.Dir) int {
	pitch := rule.Size + rule.Space
	n := (ov.Length(d) + rule.Space) / pitch
	if n < 1 {
		return 0
	}
	return int(n)
}

func maxCutsDir(rule Rule, be, te extDims, params Params, ov geom.Rect, d geom.Dir) int {
	n := maxCutsMetal(rule, params.BotRect, be, d)
	n = min(n, maxCutsMetal(rule, params.TopRect, te, d))
	n = min(n, maxCutsOverlap(rule, ov, d))
	return n
}

// selectCuts applies the expansion mode to the natural fit counts. A zero
// count in either direction means nothing fits without expanding.
func selectCuts(rule Rule, be, te extDims, params Params, ov geom.Rect) (int, int) {
	nx := maxCutsDir(rule, be, te, params, ov, geom.Horiz)
	ny := maxCutsDir(rule, be, te, params, ov, geom.Vert)
	if nx == 0 || ny == 0 {
		switch params.Expand {
		case ExpandNone:
			return 0, 0
		case ExpandMinimum:
			return 1, 1
		case ExpandLongerDirection:
			return max(nx, 1), max(ny, 1)
		}
	}
	return nx, ny
}

// candidate is a fully placed via array.
type candidate struct {
	nx, ny   int
	bot, top geom.Rect
	cuts     []geom.Rect
}

// place tiles an nx-by-ny cut array with the given enclosures, centers it on
// the overlap region and snaps the result to the placement grid.
func place(rule Rule, be, te extDims, nx, ny int, ov geom.Rect, grid int64) *candidate {
	pitch := rule.Size + rule.Space
	arrayW := rule.Size*int64(nx) + rule.Space*int64(nx-1)
	arrayH := rule.Size*int64(ny) + rule.Space*int64(ny-1)
	array := geom.NewRect(geom.Pt(0, 0), geom.Pt(arrayW, arrayH))

	bot := array.ExpandDir(geom.Horiz, be.w).ExpandDir(geom.Vert, be.h)
	top := array.ExpandDir(geom.Horiz, te.w).ExpandDir(geom.Vert, te.h)

	// Center the overall bounding box on the overlap region, then snap its
	// corner to the placement grid.
	bbox := bot.Union(top)
	offset := geom.Pt(
		alignGridded(bbox.HSpan(), ov.HSpan(), grid),
		alignGridded(bbox.VSpan(), ov.VSpan(), grid),
	)

	cuts := make([]geom.Rect, 0, nx*ny)
	for i := 0; i < nx; i++ {
		for j := 0; j < ny; j++ {
			base := geom.Pt(int64(i)*pitch, int64(j)*pitch)
			c := geom.NewRect(base, base.Add(geom.Pt(rule.Size, rule.Size)))
			cuts = append(cuts, c.Translate(offset))
		}
	}
	return &candidate{
		nx:   nx,
		ny:   ny,
		bot:  bot.Translate(offset),
		top:  top.Translate(offset),
		cuts: cuts,
	}
}

// alignGridded returns the translation that centers span s on span target
// and then snaps the start of s to the grid.
func alignGridded(s, target geom.Span, grid int64) int64 {
	d := ((target.Start + target.Stop) - (s.Start + s.Stop)) / 2
	start := s.Start + d
	return d + geom.SnapToGrid(start, grid) - start
}

// spill returns the total metal area lying outside the provided geometry.
func (c *candidate) spill(botRect, topRect geom.Rect) int64 {
	var diff int64
	for _, m := range []struct {
		drawn, given geom.Rect
	}{
		{drawn: c.bot, given: botRect},
		{drawn: c.top, given: topRect},
	} {
		inside := int64(0)
		if isect, ok := m.drawn.Intersection(m.given); ok {
			inside = isect.Area()
		}
		diff += m.drawn.Area() - inside
	}
	return diff
}
