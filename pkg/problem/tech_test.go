package problem

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/tracelayer/gridroute/pkg/errors"
	"github.com/tracelayer/gridroute/pkg/geom"
	"github.com/tracelayer/gridroute/pkg/layout"
	"github.com/tracelayer/gridroute/pkg/via"
)

const techTOML = `
name = "tech3"
grid = 5

[[layers]]
name  = "m1"
line  = 100
space = 100
dir   = "vert"

[[layers]]
name  = "m2"
line  = 100
space = 100
dir   = "horiz"

[[layers]]
name  = "m3"
line  = 100
space = 100
dir   = "vert"

[[vias]]
bot   = "m1"
top   = "m2"
cut   = "via1"
size  = 100
space = 100

[[vias]]
bot   = "m2"
top   = "m3"
cut   = "via2"
size  = 100
space = 100
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func testTech() *Tech {
	return &Tech{
		Name: "tech3",
		Grid: 5,
		Layers: []TechLayer{
			{Name: "m1", Line: 100, Space: 100, Dir: geom.Vert},
			{Name: "m2", Line: 100, Space: 100, Dir: geom.Horiz},
			{Name: "m3", Line: 100, Space: 100, Dir: geom.Vert},
		},
		Vias: []via.Rule{
			{Bot: "m1", Top: "m2", Cut: "via1", Size: 100, Space: 100},
			{Bot: "m2", Top: "m3", Cut: "via2", Size: 100, Space: 100},
		},
	}
}

func TestLoadTech(t *testing.T) {
	path := writeFile(t, "tech.toml", techTOML)
	got, err := LoadTech(path)
	if err != nil {
		t.Fatalf("LoadTech() error: %v", err)
	}
	if got.Name != "tech3" || got.Grid != 5 {
		t.Errorf("LoadTech() = %q grid %d, want %q grid 5", got.Name, got.Grid, "tech3")
	}
	if len(got.Layers) != 3 {
		t.Fatalf("LoadTech() returned %d layers, want 3", len(got.Layers))
	}
	if got.Layers[1].Dir != geom.Horiz {
		t.Errorf("layer m2 dir = %v, want horiz", got.Layers[1].Dir)
	}
	if len(got.Vias) != 2 {
		t.Fatalf("LoadTech() returned %d via rules, want 2", len(got.Vias))
	}
	if got.Vias[0].Cut != "via1" || got.Vias[0].Size != 100 {
		t.Errorf("via rule 0 = %+v, want cut via1 size 100", got.Vias[0])
	}
}

func TestLoadTechMissingFile(t *testing.T) {
	_, err := LoadTech(filepath.Join(t.TempDir(), "nope.toml"))
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("LoadTech() error = %v, want code %s", err, errors.ErrCodeFileNotFound)
	}
}

func TestLoadTechBadTOML(t *testing.T) {
	path := writeFile(t, "tech.toml", "[[layers]\nname=")
	_, err := LoadTech(path)
	if !errors.Is(err, errors.ErrCodeInvalidTech) {
		t.Errorf("LoadTech() error = %v, want code %s", err, errors.ErrCodeInvalidTech)
	}
}

func TestTechValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Tech)
	}{
		{"no layers", func(tc *Tech) { tc.Layers = nil }},
		{"negative grid", func(tc *Tech) { tc.Grid = -1 }},
		{"bad layer name", func(tc *Tech) { tc.Layers[0].Name = "1m" }},
		{"duplicate layer", func(tc *Tech) { tc.Layers[2].Name = "m1" }},
		{"zero line", func(tc *Tech) { tc.Layers[1].Line = 0 }},
		{"pitch mismatch", func(tc *Tech) { tc.Layers[1].Space = 150 }},
		{"same direction", func(tc *Tech) { tc.Layers[1].Dir = geom.Vert }},
		{"via rule bad size", func(tc *Tech) { tc.Vias[0].Size = 0 }},
		{"via rule unknown layer", func(tc *Tech) { tc.Vias[1].Top = "m9" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tech := testTech()
			tc.mutate(tech)
			err := tech.Validate()
			if !errors.Is(err, errors.ErrCodeInvalidTech) {
				t.Errorf("Validate() error = %v, want code %s", err, errors.ErrCodeInvalidTech)
			}
		})
	}

	if err := testTech().Validate(); err != nil {
		t.Errorf("Validate() on a good tech returned %v", err)
	}
}

func TestTechLayerKey(t *testing.T) {
	plain := TechLayer{Name: "m1"}
	if got := plain.Key(); got != layout.Layer("m1") {
		t.Errorf("Key() = %v, want %v", got, layout.Layer("m1"))
	}
	pinned := TechLayer{Name: "m1", Purpose: layout.PurposePin}
	if got := pinned.Key(); got != layout.Layer("m1").WithPurpose(layout.PurposePin) {
		t.Errorf("Key() = %v, want m1.pin", got)
	}
}

func TestLayerConfigs(t *testing.T) {
	cfgs := testTech().LayerConfigs()
	if len(cfgs) != 3 {
		t.Fatalf("LayerConfigs() returned %d configs, want 3", len(cfgs))
	}
	if cfgs[1].Layer != layout.Layer("m2") || cfgs[1].Dir != geom.Horiz || cfgs[1].Pitch() != 200 {
		t.Errorf("config 1 = %+v, want m2 horiz pitch 200", cfgs[1])
	}
}

func TestGeneratorDefaultGrid(t *testing.T) {
	tech := testTech()
	tech.Grid = 0
	gen, err := tech.Generator()
	if err != nil {
		t.Fatalf("Generator() error: %v", err)
	}
	if gen.Grid() != 1 {
		t.Errorf("Grid() = %d, want 1", gen.Grid())
	}
}
