package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/tracelayer/gridroute/pkg/errors"
	"github.com/tracelayer/gridroute/pkg/geom"
	"github.com/tracelayer/gridroute/pkg/problem"
	"github.com/tracelayer/gridroute/pkg/via"
)

// writeProblemFixture saves a two-layer routable problem and returns its path.
func writeProblemFixture(t *testing.T) string {
	t.Helper()
	p := &problem.Problem{
		Name: "pair",
		Tech: &problem.Tech{
			Name: "tech2",
			Layers: []problem.TechLayer{
				{Name: "m1", Line: 100, Space: 100, Dir: geom.Vert},
				{Name: "m2", Line: 100, Space: 100, Dir: geom.Horiz},
			},
			Vias: []via.Rule{
				{Bot: "m1", Top: "m2", Cut: "via1", Size: 100, Space: 100},
			},
		},
		Area: problem.Rect{0, 0, 1000, 1000},
		Requests: []problem.Request{
			{
				Net: "a",
				Src: problem.Endpoint{Layer: "m1", Rect: problem.Rect{150, 150, 250, 250}},
				Dst: problem.Endpoint{Layer: "m1", Rect: problem.Rect{150, 750, 250, 850}},
			},
		},
	}
	path := filepath.Join(t.TempDir(), "pair.json")
	if err := p.Save(path); err != nil {
		t.Fatalf("Save() error: %v", err)
	}
	return path
}

func TestBoundaryMark(t *testing.T) {
	tests := []struct {
		lower, upper bool
		want         string
	}{
		{true, true, "full track"},
		{true, false, "reaches lower edge"},
		{false, true, "reaches upper edge"},
		{false, false, "interior"},
	}
	for _, tt := range tests {
		if got := boundaryMark(tt.lower, tt.upper); got != tt.want {
			t.Errorf("boundaryMark(%v, %v) = %q, want %q", tt.lower, tt.upper, got, tt.want)
		}
	}
}

func TestRunSegments(t *testing.T) {
	input := writeProblemFixture(t)
	output := filepath.Join(t.TempDir(), "segments.txt")

	c := New(io.Discard, log.InfoLevel)
	if err := c.runSegments(context.Background(), input, "", "", output, false); err != nil {
		t.Fatalf("runSegments() error: %v", err)
	}

	data, err := os.ReadFile(output)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	report := string(data)

	// Both layers appear, and an empty router has free tracks on each.
	for _, want := range []string{"m1 (vert)", "m2 (horiz)", "full track"} {
		if !strings.Contains(report, want) {
			t.Errorf("report missing %q:\n%s", want, report)
		}
	}
}

func TestRunSegmentsLayerFilter(t *testing.T) {
	input := writeProblemFixture(t)
	output := filepath.Join(t.TempDir(), "segments.txt")

	c := New(io.Discard, log.InfoLevel)
	if err := c.runSegments(context.Background(), input, "m2", "", output, false); err != nil {
		t.Fatalf("runSegments() error: %v", err)
	}

	data, err := os.ReadFile(output)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if strings.Contains(string(data), "m1 (") {
		t.Error("report should only cover m2")
	}
}

func TestRunSegmentsUnknownLayer(t *testing.T) {
	input := writeProblemFixture(t)

	c := New(io.Discard, log.InfoLevel)
	err := c.runSegments(context.Background(), input, "m9", "", filepath.Join(t.TempDir(), "out.txt"), false)
	if err == nil {
		t.Fatal("expected error for unknown layer")
	}
	if !errors.Is(err, errors.ErrCodeInvalidLayer) {
		t.Errorf("code = %v, want %v", errors.GetCode(err), errors.ErrCodeInvalidLayer)
	}
}

func TestRunSegmentsRouted(t *testing.T) {
	input := writeProblemFixture(t)
	output := filepath.Join(t.TempDir(), "segments.txt")

	c := New(io.Discard, log.InfoLevel)
	if err := c.runSegments(context.Background(), input, "m1", "", output, true); err != nil {
		t.Fatalf("runSegments() error: %v", err)
	}

	data, err := os.ReadFile(output)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	// The routed wire splits or shortens its track, so not every m1 track
	// is a full free track anymore.
	if !strings.Contains(string(data), "m1 (vert)") {
		t.Errorf("report missing m1 header:\n%s", data)
	}
}
