package problem

import (
	"path/filepath"
	"reflect"
	"testing"

	"github.com/tracelayer/gridroute/pkg/errors"
	"github.com/tracelayer/gridroute/pkg/geom"
)

func testProblem() *Problem {
	return &Problem{
		Name: "pair",
		Tech: testTech(),
		Area: Rect{0, 0, 2000, 2000},
		Obstacles: []Obstacle{
			{Layer: "m1", Rect: Rect{950, 150, 1050, 1850}, Net: "bus"},
		},
		Seeds: []Seed{
			{Layer: "m2", Rect: Rect{150, 550, 1050, 650}, Net: "bus"},
		},
		Requests: []Request{
			{
				Net: "a",
				Src: Endpoint{Layer: "m1", Rect: Rect{150, 150, 250, 250}},
				Dst: Endpoint{Layer: "m1", Rect: Rect{150, 950, 250, 1050}},
			},
		},
	}
}

func TestRectRoundTrip(t *testing.T) {
	r := RectFrom(geom.NewRect(geom.Point{X: 10, Y: 20}, geom.Point{X: 30, Y: 40}))
	if r != (Rect{10, 20, 30, 40}) {
		t.Errorf("RectFrom() = %v, want [10 20 30 40]", r)
	}
	// Swapped corners canonicalize on the way back in.
	if got := (Rect{30, 40, 10, 20}).Geom(); got != r.Geom() {
		t.Errorf("Geom() = %v, want %v", got, r.Geom())
	}
}

func TestUnmarshalProblem(t *testing.T) {
	data := `{
		"name": "tiny",
		"tech": "tech.toml",
		"area": [0, 0, 1000, 1000],
		"occupied": [{"layer": "m1", "rect": [150, 150, 250, 850], "net": "bus"}],
		"requests": [
			{
				"net": "a",
				"src": {"layer": "m1", "rect": [150, 150, 250, 250]},
				"dst": {"layer": "m2", "rect": [550, 550, 650, 650]}
			}
		]
	}`
	p, err := Unmarshal([]byte(data))
	if err != nil {
		t.Fatalf("Unmarshal() error: %v", err)
	}
	if p.Name != "tiny" || p.TechPath != "tech.toml" {
		t.Errorf("Unmarshal() = name %q tech %q, want tiny/tech.toml", p.Name, p.TechPath)
	}
	if p.Area.Geom() != geom.NewRect(geom.Point{}, geom.Point{X: 1000, Y: 1000}) {
		t.Errorf("area = %v, want (0,0)-(1000,1000)", p.Area.Geom())
	}
	if len(p.Seeds) != 1 || p.Seeds[0].Net != "bus" {
		t.Fatalf("seeds = %+v, want one on net bus", p.Seeds)
	}
	if len(p.Requests) != 1 || p.Requests[0].Dst.Layer != "m2" {
		t.Fatalf("requests = %+v, want one ending on m2", p.Requests)
	}
}

func TestUnmarshalProblemBadJSON(t *testing.T) {
	_, err := Unmarshal([]byte("{"))
	if !errors.Is(err, errors.ErrCodeInvalidProblem) {
		t.Errorf("Unmarshal() error = %v, want code %s", err, errors.ErrCodeInvalidProblem)
	}
}

func TestProblemValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Problem)
		code   errors.Code
	}{
		{
			"tech reference and inline tech",
			func(p *Problem) { p.TechPath = "tech.toml" },
			errors.ErrCodeInvalidProblem,
		},
		{
			"degenerate area",
			func(p *Problem) { p.Area = Rect{0, 0, 0, 2000} },
			errors.ErrCodeInvalidProblem,
		},
		{
			"broken inline tech",
			func(p *Problem) { p.Tech.Layers = nil },
			errors.ErrCodeInvalidTech,
		},
		{
			"obstacle on unknown layer",
			func(p *Problem) { p.Obstacles[0].Layer = "m9" },
			errors.ErrCodeInvalidProblem,
		},
		{
			"seed with empty net",
			func(p *Problem) { p.Seeds[0].Net = "" },
			errors.ErrCodeInvalidProblem,
		},
		{
			"request with bad net name",
			func(p *Problem) { p.Requests[0].Net = "a\x00b" },
			errors.ErrCodeInvalidProblem,
		},
		{
			"request outside area",
			func(p *Problem) { p.Requests[0].Dst.Rect = Rect{150, 1950, 250, 2100} },
			errors.ErrCodeInvalidProblem,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := testProblem()
			tc.mutate(p)
			err := p.Validate()
			if !errors.Is(err, tc.code) {
				t.Errorf("Validate() error = %v, want code %s", err, tc.code)
			}
		})
	}

	if err := testProblem().Validate(); err != nil {
		t.Errorf("Validate() on a good problem returned %v", err)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	p := testProblem()
	path := filepath.Join(t.TempDir(), "problem.json")
	if err := p.Save(path); err != nil {
		t.Fatalf("Save() error: %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if !reflect.DeepEqual(got, p) {
		t.Errorf("Load() = %+v, want %+v", got, p)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("Load() error = %v, want code %s", err, errors.ErrCodeFileNotFound)
	}
}

func TestResolveTech(t *testing.T) {
	inline := testProblem()
	got, err := inline.ResolveTech("")
	if err != nil || got != inline.Tech {
		t.Errorf("ResolveTech() = %v, %v, want the inline tech", got, err)
	}

	path := writeFile(t, "tech.toml", techTOML)
	byRef := testProblem()
	byRef.Tech = nil
	byRef.TechPath = filepath.Base(path)
	loaded, err := byRef.ResolveTech(filepath.Dir(path))
	if err != nil {
		t.Fatalf("ResolveTech() error: %v", err)
	}
	if loaded.Name != "tech3" || len(loaded.Layers) != 3 {
		t.Errorf("ResolveTech() loaded %q with %d layers, want tech3 with 3", loaded.Name, len(loaded.Layers))
	}

	neither := testProblem()
	neither.Tech = nil
	if _, err := neither.ResolveTech(""); !errors.Is(err, errors.ErrCodeInvalidProblem) {
		t.Errorf("ResolveTech() error = %v, want code %s", err, errors.ErrCodeInvalidProblem)
	}
}
