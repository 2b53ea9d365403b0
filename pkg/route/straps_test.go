package route

import (
	"context"
	"testing"

	"github.com/tracelayer/gridroute/pkg/errors"
	"github.com/tracelayer/gridroute/pkg/layout"
)

// strapRouter covers a small area so every layer carries seven tracks
// centered at multiples of 200.
func strapRouter(t *testing.T) *Router {
	t.Helper()
	return New(Config{
		Area:   rect(0, 0, 1000, 1000),
		Layers: testLayers(),
		Vias:   testVias(t),
		Grid:   5,
	})
}

func TestNetForTrack(t *testing.T) {
	for trackID, want := range map[int]SupplyNet{0: Vss, 1: Vdd, 2: Vss, 7: Vdd} {
		if got := netForTrack(trackID); got != want {
			t.Errorf("netForTrack(%d) = %v, want %v", trackID, got, want)
		}
	}
}

func TestFillStraps(t *testing.T) {
	r := strapRouter(t)
	var dst layout.Group
	placed, err := NewRoutedStraps().
		SetStrapLayers(m2, m3).
		Fill(context.Background(), r, &dst)
	if err != nil {
		t.Fatalf("Fill() returned %v", err)
	}

	for _, layer := range []layout.LayerKey{m2, m3} {
		straps := placed.OnLayer(layer)
		if len(straps) != 7 {
			t.Fatalf("%v has %d straps, want 7", layer, len(straps))
		}
		for i, s := range straps {
			if want := netForTrack(i); s.Net != want {
				t.Errorf("%v strap %d carries %v, want %v", layer, i, s.Net, want)
			}
			if !s.LowerBoundary || !s.UpperBoundary {
				t.Errorf("%v strap %d boundaries = (%v, %v), want both true",
					layer, i, s.LowerBoundary, s.UpperBoundary)
			}
		}
	}
	if want := rect(-50, 350, 1250, 450); placed.OnLayer(m2)[2].Rect != want {
		t.Errorf("m2 strap 2 = %v, want %v", placed.OnLayer(m2)[2].Rect, want)
	}

	// Seven straps per layer plus a via at each of the 25 same-rail
	// crossings.
	rects, instances := 0, 0
	for _, e := range dst.Elements() {
		switch e.Kind {
		case layout.KindRect:
			rects++
		case layout.KindInstance:
			instances++
		}
	}
	if rects != 14 {
		t.Errorf("drew %d strap rects, want 14", rects)
	}
	if instances != 25 {
		t.Errorf("drew %d stitch vias, want 25", instances)
	}

	stamped := false
	for _, e := range dst.Elements() {
		if e.Kind == layout.KindInstance && e.Rect == rect(350, 350, 450, 450) {
			stamped = true
		}
	}
	if !stamped {
		t.Errorf("no stitch via at the (350,350)-(450,450) crossing")
	}
}

func TestFillStrapsConnectsTargets(t *testing.T) {
	r := strapRouter(t)
	var dst layout.Group
	// The first target is wide enough for a full via cut inside its overlap
	// with the vss strap on track 2; the second is not and stays unhooked.
	_, err := NewRoutedStraps().
		SetStrapLayers(m2, m3).
		AddTarget(m1, NewTarget(Vss, rect(350, 150, 450, 450))).
		AddTarget(m1, NewTarget(Vss, rect(370, 150, 430, 650))).
		Fill(context.Background(), r, &dst)
	if err != nil {
		t.Fatalf("Fill() returned %v", err)
	}

	hits := 0
	for _, e := range dst.Elements() {
		if e.Kind == layout.KindInstance && e.Name == "via_m1_m2" {
			hits++
			if want := rect(350, 350, 450, 450); e.Rect != want {
				t.Errorf("target via bbox = %v, want %v", e.Rect, want)
			}
		}
	}
	if hits != 1 {
		t.Errorf("drew %d target vias, want 1", hits)
	}
}

func TestFillStrapsSkipsUsedTracks(t *testing.T) {
	r := strapRouter(t)
	r.Block(m2, rect(350, 350, 450, 450))

	var dst layout.Group
	placed, err := NewRoutedStraps().
		SetStrapLayers(m2, m3).
		Fill(context.Background(), r, &dst)
	if err != nil {
		t.Fatalf("Fill() returned %v", err)
	}
	straps := placed.OnLayer(m2)
	if len(straps) != 8 {
		t.Fatalf("m2 has %d straps, want 8 after splitting track 2", len(straps))
	}
	if got := placed.OnLayer(m3); len(got) != 7 {
		t.Errorf("m3 has %d straps, want 7", len(got))
	}

	var left, right *Strap
	for i := range straps {
		switch straps[i].Rect {
		case rect(-50, 350, 250, 450):
			left = &straps[i]
		case rect(550, 350, 1250, 450):
			right = &straps[i]
		}
	}
	if left == nil || right == nil {
		t.Fatalf("split straps not found in %+v", straps)
	}
	if !left.LowerBoundary || left.UpperBoundary {
		t.Errorf("left fragment boundaries = (%v, %v), want (true, false)",
			left.LowerBoundary, left.UpperBoundary)
	}
	if right.LowerBoundary || !right.UpperBoundary {
		t.Errorf("right fragment boundaries = (%v, %v), want (false, true)",
			right.LowerBoundary, right.UpperBoundary)
	}
	if left.Net != Vss || right.Net != Vss {
		t.Errorf("fragments carry (%v, %v), want vss", left.Net, right.Net)
	}
}

func TestFillStrapsRequiresViaGenerator(t *testing.T) {
	r := New(Config{Area: rect(0, 0, 1000, 1000), Layers: testLayers()})
	_, err := NewRoutedStraps().
		SetStrapLayers(m2, m3).
		Fill(context.Background(), r, &layout.Group{})
	if errors.GetCode(err) != errors.ErrCodeInternal {
		t.Errorf("Fill() code = %q, want %q", errors.GetCode(err), errors.ErrCodeInternal)
	}
}

func TestFillStrapsPanicsBelowTwoLayers(t *testing.T) {
	r := strapRouter(t)
	defer func() {
		if recover() == nil {
			t.Fatalf("Fill() did not panic with a single strap layer")
		}
	}()
	_, _ = NewRoutedStraps().
		SetStrapLayers(m2).
		Fill(context.Background(), r, &layout.Group{})
}
