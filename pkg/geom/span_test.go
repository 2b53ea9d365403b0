package geom

import "testing"

func TestNewSpanOrdersEndpoints(t *testing.T) {
	tests := []struct {
		name string
		a, b int64
		want Span
	}{
		{name: "ordered", a: 10, b: 20, want: Span{Start: 10, Stop: 20}},
		{name: "reversed", a: 20, b: 10, want: Span{Start: 10, Stop: 20}},
		{name: "point", a: 5, b: 5, want: Span{Start: 5, Stop: 5}},
		{name: "negative", a: -4, b: -9, want: Span{Start: -9, Stop: -4}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NewSpan(tt.a, tt.b); got != tt.want {
				t.Errorf("NewSpan(%d, %d) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestSpanIntersects(t *testing.T) {
	tests := []struct {
		name string
		a, b Span
		want bool
	}{
		{name: "overlap", a: NewSpan(0, 10), b: NewSpan(5, 15), want: true},
		{name: "touching", a: NewSpan(0, 10), b: NewSpan(10, 20), want: true},
		{name: "disjoint", a: NewSpan(0, 10), b: NewSpan(11, 20), want: false},
		{name: "contained", a: NewSpan(0, 10), b: NewSpan(2, 4), want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Intersects(tt.b); got != tt.want {
				t.Errorf("Intersects(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
			if got := tt.b.Intersects(tt.a); got != tt.want {
				t.Errorf("Intersects(%v, %v) = %v, want %v", tt.b, tt.a, got, tt.want)
			}
		})
	}
}

func TestSpanIntersection(t *testing.T) {
	a := NewSpan(0, 10)
	b := NewSpan(5, 15)

	got, ok := a.Intersection(b)
	if !ok {
		t.Fatal("Intersection() ok = false, want true")
	}
	if want := NewSpan(5, 10); got != want {
		t.Errorf("Intersection() = %v, want %v", got, want)
	}

	if _, ok := a.Intersection(NewSpan(20, 30)); ok {
		t.Error("Intersection() of disjoint spans ok = true, want false")
	}
}

func TestSpanUnionAndContains(t *testing.T) {
	a := NewSpan(0, 10)
	b := NewSpan(20, 30)

	u := a.Union(b)
	if want := NewSpan(0, 30); u != want {
		t.Errorf("Union() = %v, want %v", u, want)
	}
	if !u.Contains(a) || !u.Contains(b) {
		t.Error("union does not contain its inputs")
	}
	if a.Contains(u) {
		t.Error("Contains() = true for strictly larger span")
	}
}

func TestSpanExpandShrink(t *testing.T) {
	s := NewSpan(10, 20)

	if got, want := s.Expand(Pos, 5), NewSpan(10, 25); got != want {
		t.Errorf("Expand(Pos, 5) = %v, want %v", got, want)
	}
	if got, want := s.Expand(Neg, 5), NewSpan(5, 20); got != want {
		t.Errorf("Expand(Neg, 5) = %v, want %v", got, want)
	}
	if got, want := s.ExpandAll(2), NewSpan(8, 22); got != want {
		t.Errorf("ExpandAll(2) = %v, want %v", got, want)
	}
	if got, want := s.Shrink(Pos, 4), NewSpan(10, 16); got != want {
		t.Errorf("Shrink(Pos, 4) = %v, want %v", got, want)
	}
	if got, want := s.ShrinkAll(3), NewSpan(13, 17); got != want {
		t.Errorf("ShrinkAll(3) = %v, want %v", got, want)
	}
}

func TestSpanFromCenter(t *testing.T) {
	if got, want := SpanFromCenter(100, 40), NewSpan(80, 120); got != want {
		t.Errorf("SpanFromCenter(100, 40) = %v, want %v", got, want)
	}

	defer func() {
		if recover() == nil {
			t.Error("SpanFromCenter with odd length did not panic")
		}
	}()
	SpanFromCenter(0, 3)
}

func TestSpanFromCenterGridded(t *testing.T) {
	got := SpanFromCenterGridded(103, 40, 10)
	if got.Length() != 40 {
		t.Errorf("length = %d, want 40", got.Length())
	}
	if got.Start%10 != 0 {
		t.Errorf("start %d not on grid 10", got.Start)
	}
}

func TestSpanMinDistance(t *testing.T) {
	tests := []struct {
		name string
		a, b Span
		want int64
	}{
		{name: "gap", a: NewSpan(0, 10), b: NewSpan(25, 30), want: 15},
		{name: "touching", a: NewSpan(0, 10), b: NewSpan(10, 20), want: 0},
		{name: "overlap", a: NewSpan(0, 10), b: NewSpan(5, 20), want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.MinDistance(tt.b); got != tt.want {
				t.Errorf("MinDistance() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestSnapToGrid(t *testing.T) {
	tests := []struct {
		name      string
		pos, grid int64
		want      int64
	}{
		{name: "already on grid", pos: 40, grid: 10, want: 40},
		{name: "round down", pos: 44, grid: 10, want: 40},
		{name: "half rounds down", pos: 45, grid: 10, want: 40},
		{name: "round up", pos: 46, grid: 10, want: 50},
		{name: "negative rounds correctly", pos: -44, grid: 10, want: -40},
		{name: "negative rounds down", pos: -46, grid: 10, want: -50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SnapToGrid(tt.pos, tt.grid); got != tt.want {
				t.Errorf("SnapToGrid(%d, %d) = %d, want %d", tt.pos, tt.grid, got, tt.want)
			}
		})
	}
}
