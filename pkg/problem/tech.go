// Package problem models complete routing problems: a technology layer
// stack, a routing area, pre-existing geometry, and the point-to-point
// requests to route over it.
//
// A [Tech] describes the process side (layers, wire dimensions, via rules)
// and is loaded from TOML. A [Problem] describes one routing job and
// round-trips through JSON; it either references a tech file or carries the
// technology inline. [Problem.Router] turns the pair into a configured
// physical router, and [Problem.RouteAll] runs every request against it,
// producing a [Result].
package problem

import (
	"os"

	"github.com/BurntSushi/toml"

	"github.com/tracelayer/gridroute/pkg/errors"
	"github.com/tracelayer/gridroute/pkg/geom"
	"github.com/tracelayer/gridroute/pkg/layout"
	"github.com/tracelayer/gridroute/pkg/route"
	"github.com/tracelayer/gridroute/pkg/via"
)

// =============================================================================
// Tech - Technology Description
// =============================================================================

// TechLayer describes one routing layer: the process layer it draws on and
// the width, spacing and direction of its wires.
type TechLayer struct {
	Name    string         `toml:"name" json:"name" bson:"name"`
	Purpose layout.Purpose `toml:"purpose,omitempty" json:"purpose,omitempty" bson:"purpose,omitempty"`
	Line    int64          `toml:"line" json:"line" bson:"line"`
	Space   int64          `toml:"space" json:"space" bson:"space"`
	Dir     geom.Dir       `toml:"dir" json:"dir" bson:"dir"`
}

// Key returns the layout layer wires on this routing layer draw on.
func (l TechLayer) Key() layout.LayerKey {
	k := layout.Layer(l.Name)
	if l.Purpose != "" {
		k = k.WithPurpose(l.Purpose)
	}
	return k
}

// Pitch returns the center-to-center wire distance on this layer.
func (l TechLayer) Pitch() int64 { return l.Line + l.Space }

// Tech is a routing technology: the ordered layer stack, the manufacturing
// grid, and the via rules connecting pairs of layers.
//
// The canonical on-disk form is TOML:
//
//	name = "demo180"
//	grid = 5
//
//	[[layers]]
//	name  = "m1"
//	line  = 100
//	space = 100
//	dir   = "vert"
//
//	[[vias]]
//	bot  = "m1"
//	top  = "m2"
//	cut  = "via1"
//	size = 100
type Tech struct {
	Name   string      `toml:"name,omitempty" json:"name,omitempty" bson:"name,omitempty"`
	Grid   int64       `toml:"grid,omitempty" json:"grid,omitempty" bson:"grid,omitempty"`
	Layers []TechLayer `toml:"layers" json:"layers" bson:"layers"`
	Vias   []via.Rule  `toml:"vias,omitempty" json:"vias,omitempty" bson:"vias,omitempty"`
}

// LoadTech reads and validates a technology description from a TOML file.
func LoadTech(path string) (*Tech, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "tech file %q", path)
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidTech, err, "read tech file %q", path)
	}
	var t Tech
	if err := toml.Unmarshal(data, &t); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidTech, err, "parse tech file %q", path)
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return &t, nil
}

// Validate checks the layer stack and via rules. The constraints mirror what
// [route.New] enforces, reported as coded errors instead of panics so that
// malformed input files fail cleanly.
func (t *Tech) Validate() error {
	if len(t.Layers) == 0 {
		return errors.New(errors.ErrCodeInvalidTech, "tech has no routing layers")
	}
	if t.Grid < 0 {
		return errors.New(errors.ErrCodeInvalidTech, "manufacturing grid must be non-negative")
	}
	seen := make(map[string]bool, len(t.Layers))
	base := t.Layers[0].Pitch()
	for i, l := range t.Layers {
		if err := errors.ValidateLayerName(l.Name); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidTech, err, "layer %d", i)
		}
		if seen[l.Name] {
			return errors.New(errors.ErrCodeInvalidTech, "duplicate layer %q", l.Name)
		}
		seen[l.Name] = true
		if l.Line <= 0 || l.Space <= 0 {
			return errors.New(errors.ErrCodeInvalidTech,
				"layer %q: line and space must be positive", l.Name)
		}
		if l.Pitch()%base != 0 {
			return errors.New(errors.ErrCodeInvalidTech,
				"layer %q: pitch %d is not a multiple of the base pitch %d",
				l.Name, l.Pitch(), base)
		}
		if i > 0 && l.Dir == t.Layers[i-1].Dir {
			return errors.New(errors.ErrCodeInvalidTech,
				"layers %q and %q run in the same direction", t.Layers[i-1].Name, l.Name)
		}
	}
	for _, r := range t.Vias {
		if err := r.Validate(); err != nil {
			return err
		}
		if !seen[r.Bot] || !seen[r.Top] {
			return errors.New(errors.ErrCodeInvalidTech,
				"via rule %s-%s references an unknown routing layer", r.Bot, r.Top)
		}
	}
	return nil
}

// HasLayer reports whether the stack contains a routing layer with the name.
func (t *Tech) HasLayer(name string) bool {
	for _, l := range t.Layers {
		if l.Name == name {
			return true
		}
	}
	return false
}

// LayerConfigs converts the stack into router layer configs, bottom-up.
func (t *Tech) LayerConfigs() []route.LayerConfig {
	out := make([]route.LayerConfig, len(t.Layers))
	for i, l := range t.Layers {
		out[i] = route.LayerConfig{Line: l.Line, Space: l.Space, Dir: l.Dir, Layer: l.Key()}
	}
	return out
}

// Generator builds the via generator for the technology. The manufacturing
// grid defaults to 1 when unset.
func (t *Tech) Generator() (*via.Generator, error) {
	grid := t.Grid
	if grid == 0 {
		grid = 1
	}
	return via.NewGenerator(t.Vias, grid)
}
