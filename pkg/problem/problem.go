package problem

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/tracelayer/gridroute/pkg/errors"
	"github.com/tracelayer/gridroute/pkg/geom"
)

// =============================================================================
// Problem - Routing Problem Serialization
// =============================================================================

// Rect is the wire form of a rectangle: [x0, y0, x1, y1].
type Rect [4]int64

// RectFrom converts a geometry rectangle to its wire form.
func RectFrom(r geom.Rect) Rect {
	return Rect{r.Min.X, r.Min.Y, r.Max.X, r.Max.Y}
}

// Geom converts the wire form back to a geometry rectangle, canonicalizing
// swapped corners.
func (r Rect) Geom() geom.Rect {
	return geom.NewRect(geom.Point{X: r[0], Y: r[1]}, geom.Point{X: r[2], Y: r[3]})
}

// Obstacle is pre-existing geometry routes must stay clear of. When Net is
// set the geometry belongs to that net, and routes on the same net may still
// land on or cross it.
type Obstacle struct {
	Layer string `json:"layer" bson:"layer"`
	Rect  Rect   `json:"rect" bson:"rect"`
	Net   string `json:"net,omitempty" bson:"net,omitempty"`
}

// Seed is wiring that already carries a net. Its cells are occupied:
// same-net routes may ride along them, every other net must avoid them.
type Seed struct {
	Layer string `json:"layer" bson:"layer"`
	Rect  Rect   `json:"rect" bson:"rect"`
	Net   string `json:"net" bson:"net"`
}

// Endpoint names one end of a routing request.
type Endpoint struct {
	Layer string `json:"layer" bson:"layer"`
	Rect  Rect   `json:"rect" bson:"rect"`
}

// Request asks for a route between two endpoints on the named net.
type Request struct {
	Net string   `json:"net" bson:"net"`
	Src Endpoint `json:"src" bson:"src"`
	Dst Endpoint `json:"dst" bson:"dst"`
}

// Problem is a complete routing problem.
//
// The technology comes either from a referenced tech file (TechPath,
// resolved relative to the problem file) or inline (Tech); carrying both is
// invalid. Obstacles and occupied seeds are applied to the router before any
// request routes.
type Problem struct {
	Name      string     `json:"name,omitempty" bson:"name,omitempty"`
	TechPath  string     `json:"tech,omitempty" bson:"tech,omitempty"`
	Tech      *Tech      `json:"technology,omitempty" bson:"technology,omitempty"`
	Area      Rect       `json:"area" bson:"area"`
	Obstacles []Obstacle `json:"obstacles,omitempty" bson:"obstacles,omitempty"`
	Seeds     []Seed     `json:"occupied,omitempty" bson:"occupied,omitempty"`
	Requests  []Request  `json:"requests,omitempty" bson:"requests,omitempty"`
}

// Unmarshal deserializes JSON bytes to a Problem.
func Unmarshal(data []byte) (*Problem, error) {
	var p Problem
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidProblem, err, "parse problem")
	}
	return &p, nil
}

// Load reads and validates a problem from a JSON file.
func Load(path string) (*Problem, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "problem file %q", path)
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidProblem, err, "read problem file %q", path)
	}
	p, err := Unmarshal(data)
	if err != nil {
		return nil, err
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// Marshal serializes the problem as indented JSON.
func (p *Problem) Marshal() ([]byte, error) {
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "marshal problem")
	}
	return data, nil
}

// Save writes the problem as indented JSON.
func (p *Problem) Save(path string) error {
	data, err := p.Marshal()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrap(errors.ErrCodeStorage, err, "write problem file %q", path)
	}
	return nil
}

// Validate checks the problem's own structure. Layer references are checked
// against the inline technology when one is present; with a tech file
// reference they are deferred until [Problem.Router] resolves the stack.
func (p *Problem) Validate() error {
	if p.TechPath != "" && p.Tech != nil {
		return errors.New(errors.ErrCodeInvalidProblem,
			"problem carries both a tech file reference and an inline technology")
	}
	area := p.Area.Geom()
	if area.Length(geom.Horiz) == 0 || area.Length(geom.Vert) == 0 {
		return errors.New(errors.ErrCodeInvalidProblem, "routing area is degenerate")
	}
	if p.Tech != nil {
		if err := p.Tech.Validate(); err != nil {
			return err
		}
	}
	for i, o := range p.Obstacles {
		if err := p.checkLayer(o.Layer); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidProblem, err, "obstacle %d", i)
		}
		if o.Net != "" {
			if err := errors.ValidateNetName(o.Net); err != nil {
				return errors.Wrap(errors.ErrCodeInvalidProblem, err, "obstacle %d", i)
			}
		}
	}
	for i, s := range p.Seeds {
		if err := p.checkLayer(s.Layer); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidProblem, err, "occupied %d", i)
		}
		if err := errors.ValidateNetName(s.Net); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidProblem, err, "occupied %d", i)
		}
	}
	for i, req := range p.Requests {
		if err := errors.ValidateNetName(req.Net); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidProblem, err, "request %d", i)
		}
		for _, end := range []struct {
			name string
			ep   Endpoint
		}{{"src", req.Src}, {"dst", req.Dst}} {
			if err := p.checkLayer(end.ep.Layer); err != nil {
				return errors.Wrap(errors.ErrCodeInvalidProblem, err, "request %d (%s) %s", i, req.Net, end.name)
			}
			if !area.Contains(end.ep.Rect.Geom()) {
				return errors.New(errors.ErrCodeInvalidProblem,
					"request %d (%s): %s geometry lies outside the routing area", i, req.Net, end.name)
			}
		}
	}
	return nil
}

// ResolveTech returns the problem's technology: the inline one when present,
// otherwise the referenced tech file loaded relative to baseDir.
func (p *Problem) ResolveTech(baseDir string) (*Tech, error) {
	if p.Tech != nil {
		return p.Tech, nil
	}
	if p.TechPath == "" {
		return nil, errors.New(errors.ErrCodeInvalidProblem,
			"problem names neither a tech file nor an inline technology")
	}
	path := p.TechPath
	if !filepath.IsAbs(path) && baseDir != "" {
		path = filepath.Join(baseDir, path)
	}
	return LoadTech(path)
}

// checkLayer validates one layer reference.
func (p *Problem) checkLayer(name string) error {
	if err := errors.ValidateLayerName(name); err != nil {
		return err
	}
	if p.Tech != nil && !p.Tech.HasLayer(name) {
		return errors.New(errors.ErrCodeInvalidLayer, "unknown routing layer %q", name)
	}
	return nil
}
